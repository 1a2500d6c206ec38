package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// Row es una instalación del período con la parte que le corresponde al
// técnico: total del trabajo dividido por el tamaño de la cuadrilla,
// redondeado a 2 decimales (mitad lejos de cero).
type Row struct {
	Connection       entity.Connection
	CrewSize         int
	FiberShare       decimal.Decimal
	TwistedPairShare decimal.Decimal
}

// Totals acumulados del período. Se suman las partes YA redondeadas de cada
// fila (no se redondea al final): el arrastre de redondeo es intencional y
// los reportes existentes dependen de él.
type Totals struct {
	Connections int
	Fiber       decimal.Decimal
	TwistedPair decimal.Decimal
}

// Report resultado de la consulta para un técnico y un período.
type Report struct {
	Employee   entity.Employee
	PeriodDays *int // nil = todo el historial
	Rows       []Row
	Totals     Totals
}

// UseCase arma el reporte por técnico a partir de las instalaciones donde
// participó. El render (Excel, chat) queda fuera: este caso de uso solo
// entrega filas y totales.
type UseCase struct {
	employees   repository.EmployeeRepository
	connections repository.ConnectionRepository
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(employees repository.EmployeeRepository, connections repository.ConnectionRepository) *UseCase {
	return &UseCase{employees: employees, connections: connections, now: time.Now}
}

// Build consulta las instalaciones del técnico desde now−periodDays (nil =
// sin límite) y calcula la parte por fila y los totales.
func (uc *UseCase) Build(ctx context.Context, employeeID string, periodDays *int) (*Report, error) {
	emp, err := uc.employees.GetByID(employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, domain.ErrEmployeeNotFound
	}

	var since *time.Time
	if periodDays != nil {
		t := uc.now().AddDate(0, 0, -*periodDays)
		since = &t
	}
	conns, err := uc.connections.ListForEmployee(employeeID, since)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Employee:   *emp,
		PeriodDays: periodDays,
		Rows:       make([]Row, 0, len(conns)),
		Totals:     Totals{Fiber: decimal.Zero, TwistedPair: decimal.Zero},
	}
	for _, c := range conns {
		row := NewRow(c)
		rep.Rows = append(rep.Rows, row)
		rep.Totals.Connections++
		rep.Totals.Fiber = rep.Totals.Fiber.Add(row.FiberShare)
		rep.Totals.TwistedPair = rep.Totals.TwistedPair.Add(row.TwistedPairShare)
	}
	return rep, nil
}

// NewRow calcula la parte del técnico para una instalación. La parte refleja
// el reparto igualitario entre la cuadrilla sin importar a quién se le
// descontó realmente el material.
func NewRow(c entity.Connection) Row {
	crewSize := len(c.Crew)
	if crewSize == 0 {
		crewSize = 1
	}
	n := decimal.NewFromInt(int64(crewSize))
	return Row{
		Connection:       c,
		CrewSize:         crewSize,
		FiberShare:       c.FiberMeters.Div(n).Round(2),
		TwistedPairShare: c.TwistedPairMeters.Div(n).Round(2),
	}
}
