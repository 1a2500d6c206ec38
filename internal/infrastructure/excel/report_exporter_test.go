package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/fieldops-api/internal/application/report"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sampleReport() *report.Report {
	created := time.Date(2025, 3, 14, 9, 45, 0, 0, time.UTC)
	conn := entity.Connection{
		ID:                "c-1",
		Type:              entity.ConnectionTypePrivate,
		Address:           "Calle Falsa 123",
		RouterModel:       "HG8145V5",
		Port:              "GPON-3",
		FiberMeters:       dec("100"),
		TwistedPairMeters: dec("50"),
		CreatedAt:         created,
		Crew: []entity.CrewMember{
			{EmployeeID: "e1", FullName: "Juan Pérez"},
			{EmployeeID: "e2", FullName: "María López"},
		},
	}
	noRouter := entity.Connection{
		ID:        "c-2",
		Type:      entity.ConnectionTypeMDU,
		Address:   "Av. Siempreviva 742",
		CreatedAt: created.Add(24 * time.Hour),
		Crew:      []entity.CrewMember{{EmployeeID: "e1", FullName: "Juan Pérez"}},
	}
	return &report.Report{
		Employee: entity.Employee{ID: "e1", FullName: "Juan Pérez"},
		Rows:     []report.Row{report.NewRow(conn), report.NewRow(noRouter)},
		Totals: report.Totals{
			Connections: 2,
			Fiber:       dec("50"),
			TwistedPair: dec("25"),
		},
	}
}

func TestExport_LayoutDePlanilla(t *testing.T) {
	content, err := NewReportExporter().Export(sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, content)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{sheetName}, f.GetSheetList(), "solo la hoja de instalaciones")

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 6, "encabezado + 2 filas + separador + 2 totales")

	assert.Equal(t, headers, rows[0][:len(headers)])

	// Primera instalación: cuadrilla unida por coma y parte dividida entre
	// dos, con fibra y par trenzado en las columnas 6 y 7.
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Juan Pérez, María López", rows[1][1])
	assert.Equal(t, "Calle Falsa 123", rows[1][2])
	assert.Equal(t, "HG8145V5", rows[1][3])
	assert.Equal(t, "GPON-3", rows[1][4])
	assert.Equal(t, "50.00", rows[1][5])
	assert.Equal(t, "25.00", rows[1][6])
	assert.Equal(t, "14.03.2025 09:45", rows[1][7])

	// Sin router ni puerto se muestra guion.
	assert.Equal(t, "—", rows[2][3])
	assert.Equal(t, "—", rows[2][4])

	// Total general y total del técnico, los dos con los metros.
	assert.Equal(t, "Total general:", rows[4][0])
	assert.Equal(t, "50.00", rows[4][5])
	assert.Equal(t, "25.00", rows[4][6])
	assert.Equal(t, "Total Juan Pérez:", rows[5][0])
	assert.Equal(t, "50.00", rows[5][5])
	assert.Equal(t, "25.00", rows[5][6])
}

func TestExport_ReporteVacio(t *testing.T) {
	rep := &report.Report{Employee: entity.Employee{FullName: "Juan Pérez"}}
	content, err := NewReportExporter().Export(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, headers, rows[0][:len(headers)])
}
