// Package pdf implementa la generación del acta de instalación: el comprobante
// que el técnico entrega al cliente al cerrar el trabajo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Acta de instalación  │  N° de conexión + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TRABAJO: Tipo / Dirección / Puerto / Contrato              │
//	│  EQUIPO: Modelo de router + cantidad + acceso               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MATERIALES: Fibra óptica + Par trenzado en metros          │
//	│  CUADRILLA: Técnicos participantes                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ActaGenerator genera el acta de instalación usando Maroto v2.
type ActaGenerator struct{}

// NewActaGenerator construye el generador.
func NewActaGenerator() *ActaGenerator { return &ActaGenerator{} }

// Generate genera el PDF del acta y devuelve sus bytes.
func (g *ActaGenerator) Generate(conn *entity.Connection) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acta de instalación", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(conn))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(workRow(conn))
	m.AddRows(equipmentRow(conn))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(materialsRow(conn))
	m.AddRows(crewRow(conn))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acta: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) y número de conexión + fecha (der).
func headerRow(conn *entity.Connection) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ACTA DE INSTALACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(entity.ConnectionTypeLabels[conn.Type], props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("N° "+conn.ID, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 3,
			}),
			text.New("Fecha: "+conn.CreatedAt.Format("02.01.2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// workRow: datos del trabajo realizado.
func workRow(conn *entity.Connection) core.Row {
	contract := "Pendiente"
	if conn.ContractSigned {
		contract = "Firmado"
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("TRABAJO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Dirección: "+conn.Address, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Puerto: %s   |   Contrato: %s",
				nonEmpty(conn.Port, "—"), contract,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// equipmentRow: router instalado, si lo hubo.
func equipmentRow(conn *entity.Connection) core.Row {
	detail := "Sin router"
	if conn.HasRouter() {
		access := "sin configurar"
		if conn.RouterAccess {
			access = "acceso configurado"
		}
		detail = fmt.Sprintf("%s × %d (%s)", conn.RouterModel, conn.RouterQuantity, access)
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("EQUIPO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(detail, props.Text{Size: 9, Top: 7}),
		),
	)
}

// materialsRow: metros consumidos de cada material.
func materialsRow(conn *entity.Connection) core.Row {
	return row.New(12).Add(
		col.New(6).Add(
			text.New("FIBRA ÓPTICA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(conn.FiberMeters.StringFixed(2)+" m", props.Text{Size: 10, Top: 7}),
		),
		col.New(6).Add(
			text.New("PAR TRENZADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(conn.TwistedPairMeters.StringFixed(2)+" m", props.Text{Size: 10, Top: 7}),
		),
	)
}

// crewRow: técnicos que participaron.
func crewRow(conn *entity.Connection) core.Row {
	names := make([]string, 0, len(conn.Crew))
	for _, m := range conn.Crew {
		names = append(names, m.FullName)
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CUADRILLA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(strings.Join(names, ", "), props.Text{Size: 9, Top: 7}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
