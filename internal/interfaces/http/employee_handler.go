package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldops-api/internal/application/dto"
	"github.com/jhoicas/fieldops-api/internal/application/employee"
	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// EmployeeHandler maneja las peticiones HTTP de técnicos (protegido).
type EmployeeHandler struct {
	uc *employee.UseCase
}

// NewEmployeeHandler construye el handler.
func NewEmployeeHandler(uc *employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{uc: uc}
}

func toEmployeeResponse(e *entity.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:                 e.ID,
		FullName:           e.FullName,
		FiberBalance:       e.FiberBalance.StringFixed(2),
		TwistedPairBalance: e.TwistedPairBalance.StringFixed(2),
		CreatedAt:          e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register godoc
// @Summary      Registrar técnico
// @Tags         employees
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterEmployeeRequest  true  "full_name"
// @Success      201   {object}  dto.EmployeeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/employees [post]
func (h *EmployeeHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	emp, err := h.uc.Register(c.Context(), in.FullName)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "full_name es requerido"})
		}
		// Duplicado: se devuelve el técnico existente con 409, sin crear otro.
		if errors.Is(err, domain.ErrDuplicateEmployee) {
			return c.Status(fiber.StatusConflict).JSON(toEmployeeResponse(emp))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(emp))
}

// List godoc
// @Summary      Listar técnicos con saldos
// @Tags         employees
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.EmployeeResponse
// @Router       /api/employees [get]
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	emps, err := h.uc.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		out = append(out, toEmployeeResponse(&emps[i]))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener técnico por id
// @Tags         employees
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del técnico"
// @Success      200  {object}  dto.EmployeeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/employees/{id} [get]
func (h *EmployeeHandler) GetByID(c *fiber.Ctx) error {
	emp, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "técnico no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toEmployeeResponse(emp))
}

// Delete godoc
// @Summary      Dar de baja un técnico
// @Description  Elimina al técnico y sus conteos de routers. Las instalaciones
//
//	pasadas conservan su nombre en la cuadrilla.
//
// @Tags         employees
// @Security     Bearer
// @Param        id  path  string  true  "id del técnico"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "técnico no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
