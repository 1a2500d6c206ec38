package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/application/dto"
	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// ConnectionHandler consulta de instalaciones registradas (protegido). El alta
// ocurre por el flujo de chat; la API no crea conexiones.
type ConnectionHandler struct {
	uc   *connection.CreateConnectionUseCase
	acta ActaRenderer
}

// ActaRenderer genera el acta PDF de una instalación.
type ActaRenderer interface {
	Generate(conn *entity.Connection) ([]byte, error)
}

// NewConnectionHandler construye el handler.
func NewConnectionHandler(uc *connection.CreateConnectionUseCase, acta ActaRenderer) *ConnectionHandler {
	return &ConnectionHandler{uc: uc, acta: acta}
}

func toConnectionResponse(c *entity.Connection) dto.ConnectionResponse {
	crew := make([]dto.CrewMemberResponse, 0, len(c.Crew))
	for _, m := range c.Crew {
		crew = append(crew, dto.CrewMemberResponse{EmployeeID: m.EmployeeID, FullName: m.FullName})
	}
	photos := c.Photos
	if photos == nil {
		photos = []string{}
	}
	return dto.ConnectionResponse{
		ID:                c.ID,
		Type:              c.Type,
		Address:           c.Address,
		RouterModel:       c.RouterModel,
		RouterQuantity:    c.RouterQuantity,
		RouterAccess:      c.RouterAccess,
		Port:              c.Port,
		FiberMeters:       c.FiberMeters.StringFixed(2),
		TwistedPairMeters: c.TwistedPairMeters.StringFixed(2),
		ContractSigned:    c.ContractSigned,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
		CreatedBy:         c.CreatedBy,
		MaterialPayerID:   c.MaterialPayerID,
		RouterPayerID:     c.RouterPayerID,
		Crew:              crew,
		Photos:            photos,
	}
}

// GetByID godoc
// @Summary      Obtener instalación por id
// @Tags         connections
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la instalación"
// @Success      200  {object}  dto.ConnectionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/connections/{id} [get]
func (h *ConnectionHandler) GetByID(c *fiber.Ctx) error {
	conn, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "instalación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toConnectionResponse(conn))
}

// GetActa godoc
// @Summary      Descargar el acta PDF de una instalación
// @Tags         connections
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "id de la instalación"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/connections/{id}/acta [get]
func (h *ConnectionHandler) GetActa(c *fiber.Ctx) error {
	conn, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "instalación no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	pdf, err := h.acta.Generate(conn)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="acta_`+conn.ID+`.pdf"`)
	return c.Send(pdf)
}
