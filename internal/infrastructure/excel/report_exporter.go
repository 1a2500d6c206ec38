// Package excel genera las planillas de reporte de instalaciones con excelize.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/fieldops-api/internal/application/report"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

const sheetName = "Instalaciones"

// Columnas de la planilla, en el orden esperado por los reportes existentes:
// fibra y par trenzado siempre en las posiciones 6 y 7.
var headers = []string{
	"#", "Cuadrilla", "Dirección", "Router", "Puerto",
	"Fibra (m)", "Par trenzado (m)", "Fecha",
}

// ReportExporter serializa un reporte de período a .xlsx.
type ReportExporter struct{}

// NewReportExporter construye el exportador.
func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// Export arma la planilla: encabezado con estilo, una fila por instalación y
// dos filas de totales al pie (total general y total del técnico), ambas con
// los metros de fibra y par trenzado.
func (e *ReportExporter) Export(r *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("crear hoja: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("eliminar hoja por defecto: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("crear estilo: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("crear estilo: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("escribir encabezado: %w", err)
		}
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastCol, headerStyle); err != nil {
		return nil, fmt.Errorf("estilar encabezado: %w", err)
	}

	for i, row := range r.Rows {
		n := i + 2
		values := []any{
			i + 1,
			crewNames(row.Connection.Crew),
			row.Connection.Address,
			dash(row.Connection.RouterModel),
			dash(row.Connection.Port),
			row.FiberShare.InexactFloat64(),
			row.TwistedPairShare.InexactFloat64(),
			row.Connection.CreatedAt.Format("02.01.2006 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, n)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("escribir fila %d: %w", n, err)
			}
		}
	}

	// Dos filas de totales al pie, como los reportes que reemplaza esta
	// planilla: el total general y el total del técnico, las dos con los
	// metros en las columnas de fibra y par trenzado.
	totalRow := len(r.Rows) + 3
	if err := e.writeTotals(f, totalRow, "Total general:", r.Totals); err != nil {
		return nil, err
	}
	label := fmt.Sprintf("Total %s:", r.Employee.FullName)
	if err := e.writeTotals(f, totalRow+1, label, r.Totals); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", totalRow),
		fmt.Sprintf("H%d", totalRow+1), boldStyle); err != nil {
		return nil, fmt.Errorf("estilar totales: %w", err)
	}

	// Los metros siempre con dos decimales visibles.
	numStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("0.00")})
	if err != nil {
		return nil, fmt.Errorf("crear formato numérico: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "F2", fmt.Sprintf("G%d", totalRow+1), numStyle); err != nil {
		return nil, fmt.Errorf("formatear metros: %w", err)
	}

	if err := f.SetColWidth(sheetName, "B", "C", 32); err != nil {
		return nil, fmt.Errorf("ajustar columnas: %w", err)
	}
	if err := f.SetColWidth(sheetName, "D", "H", 18); err != nil {
		return nil, fmt.Errorf("ajustar columnas: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializar planilla: %w", err)
	}
	return buf.Bytes(), nil
}

// writeTotals escribe una fila de totales: etiqueta combinada A:E y los
// metros en las columnas de fibra (F) y par trenzado (G).
func (e *ReportExporter) writeTotals(f *excelize.File, row int, label string, t report.Totals) error {
	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row)); err != nil {
		return fmt.Errorf("combinar fila de totales: %w", err)
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), label); err != nil {
		return fmt.Errorf("escribir totales: %w", err)
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), t.Fiber.InexactFloat64()); err != nil {
		return fmt.Errorf("escribir totales: %w", err)
	}
	if err := f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), t.TwistedPair.InexactFloat64()); err != nil {
		return fmt.Errorf("escribir totales: %w", err)
	}
	return nil
}

func crewNames(crew []entity.CrewMember) string {
	out := ""
	for i, m := range crew {
		if i > 0 {
			out += ", "
		}
		out += m.FullName
	}
	return out
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func strPtr(s string) *string { return &s }
