package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/application/dto"
	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

func toBalances(b inventory.Balances) dto.BalancesResponse {
	return dto.BalancesResponse{
		Fiber:       b.Fiber.StringFixed(2),
		TwistedPair: b.TwistedPair.StringFixed(2),
	}
}

// parseMeters acepta coma o punto decimal, igual que el flujo de chat.
func parseMeters(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}

// AddMaterial godoc
// @Summary      Cargar metros al saldo de un técnico
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "id del técnico"
// @Param        body  body  dto.AddMaterialRequest  true  "fiber, twisted_pair (metros)"
// @Success      200   {object}  dto.BalancesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/employees/{id}/material [post]
func (h *InventoryHandler) AddMaterial(c *fiber.Ctx) error {
	var in dto.AddMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	fiberMeters, err := parseMeters(in.Fiber)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fiber no es un número válido"})
	}
	twisted, err := parseMeters(in.TwistedPair)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "twisted_pair no es un número válido"})
	}
	if fiberMeters.IsNegative() || twisted.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "los metros no pueden ser negativos"})
	}

	balances, err := h.ledger.AddMaterial(c.Context(), c.Params("id"), fiberMeters, twisted, GetSubject(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toBalances(balances))
}

// DeductMaterial godoc
// @Summary      Descontar metros del saldo de un técnico
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "id del técnico"
// @Param        body  body  dto.AddMaterialRequest  true  "fiber, twisted_pair (metros)"
// @Success      200   {object}  dto.BalancesResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/employees/{id}/material/deduct [post]
func (h *InventoryHandler) DeductMaterial(c *fiber.Ctx) error {
	var in dto.AddMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	fiberMeters, err := parseMeters(in.Fiber)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fiber no es un número válido"})
	}
	twisted, err := parseMeters(in.TwistedPair)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "twisted_pair no es un número válido"})
	}
	if fiberMeters.IsNegative() || twisted.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "los metros no pueden ser negativos"})
	}

	balances, err := h.ledger.DeductMaterial(c.Context(), c.Params("id"), fiberMeters, twisted, nil, GetSubject(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(toBalances(balances))
}

// AddRouters godoc
// @Summary      Cargar unidades de un modelo de router
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "id del técnico"
// @Param        body  body  dto.AddRoutersRequest  true  "router_model, quantity"
// @Success      200   {object}  dto.RouterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/employees/{id}/routers [post]
func (h *InventoryHandler) AddRouters(c *fiber.Ctx) error {
	var in dto.AddRoutersRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.RouterModel) == "" || in.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "router_model y quantity > 0 son requeridos"})
	}
	newQty, err := h.ledger.AddRouters(c.Context(), c.Params("id"), strings.TrimSpace(in.RouterModel), in.Quantity, GetSubject(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.RouterResponse{RouterModel: strings.TrimSpace(in.RouterModel), Quantity: newQty})
}

// DeductRouter godoc
// @Summary      Descontar unidades de un modelo de router
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "id del técnico"
// @Param        body  body  dto.AddRoutersRequest  true  "router_model, quantity"
// @Success      200   {object}  dto.RouterResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/employees/{id}/routers/deduct [post]
func (h *InventoryHandler) DeductRouter(c *fiber.Ctx) error {
	var in dto.AddRoutersRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.RouterModel) == "" || in.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "router_model y quantity > 0 son requeridos"})
	}
	newQty, err := h.ledger.DeductRouter(c.Context(), c.Params("id"), strings.TrimSpace(in.RouterModel), in.Quantity, nil, GetSubject(c))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.RouterResponse{RouterModel: strings.TrimSpace(in.RouterModel), Quantity: newQty})
}

// ListRouters godoc
// @Summary      Conteos de routers de un técnico
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del técnico"
// @Success      200  {array}  dto.RouterResponse
// @Router       /api/employees/{id}/routers [get]
func (h *InventoryHandler) ListRouters(c *fiber.Ctx) error {
	routers, err := h.ledger.RoutersOf(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	out := make([]dto.RouterResponse, 0, len(routers))
	for _, r := range routers {
		out = append(out, dto.RouterResponse{RouterModel: r.RouterModel, Quantity: r.Quantity})
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Libro de movimientos de un técnico
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "id del técnico"
// @Param        from  query  string  false  "fecha inicial RFC3339 (default: 30 días atrás)"
// @Param        to    query  string  false  "fecha final RFC3339 (default: ahora)"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/employees/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if q := c.Query("from"); q != "" {
		t, err := time.Parse(time.RFC3339, q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = t
	}
	if q := c.Query("to"); q != "" {
		t, err := time.Parse(time.RFC3339, q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = t
	}

	movements, err := h.ledger.Movements(c.Context(), c.Params("id"), from, to)
	if err != nil {
		return h.mapError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:           m.ID,
			Operation:    m.Operation,
			ItemType:     m.ItemType,
			ItemName:     m.ItemName,
			Quantity:     m.Quantity.StringFixed(2),
			BalanceAfter: m.BalanceAfter.StringFixed(2),
			ConnectionID: m.ConnectionID,
			CreatedBy:    m.CreatedBy,
			CreatedAt:    m.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(out)
}

func (h *InventoryHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "técnico no encontrado"})
	case errors.Is(err, domain.ErrInsufficientMaterial):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_MATERIAL", Message: "material insuficiente"})
	case errors.Is(err, domain.ErrInsufficientRouter):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_ROUTER", Message: "unidades de router insuficientes"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
