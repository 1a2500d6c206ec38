package http

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fieldops-api/internal/application/dto"
	"github.com/jhoicas/fieldops-api/internal/application/report"
	"github.com/jhoicas/fieldops-api/internal/domain"
)

// ReportHandler reportes de instalaciones por técnico (protegido).
type ReportHandler struct {
	uc       *report.UseCase
	exporter ReportExporter
}

// ReportExporter serializa un reporte a planilla .xlsx.
type ReportExporter interface {
	Export(r *report.Report) ([]byte, error)
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase, exporter ReportExporter) *ReportHandler {
	return &ReportHandler{uc: uc, exporter: exporter}
}

// Download godoc
// @Summary      Descargar planilla de instalaciones de un técnico
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id    path   string  true   "id del técnico"
// @Param        days  query  int     false  "período en días (7, 30); omitido = historial completo"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/employees/{id} [get]
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	var periodDays *int
	if q := c.Query("days"); q != "" {
		days, err := strconv.Atoi(q)
		if err != nil || days <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe ser un entero positivo"})
		}
		periodDays = &days
	}

	rep, err := h.uc.Build(c.Context(), c.Params("id"), periodDays)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "técnico no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	content, err := h.exporter.Export(rep)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	filename := fmt.Sprintf("reporte_%s_%s.xlsx", c.Params("id"), time.Now().Format("20060102"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(content)
}
