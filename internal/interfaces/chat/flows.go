package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/application/report"
	"github.com/jhoicas/fieldops-api/internal/application/workflow"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// Mini-flujos de dos pasos que comparten el contrato de turnos del motor de
// instalación, de modo que el Manager los trata igual que al flujo grande.

func cancelledPrompt() workflow.Prompt {
	return workflow.Prompt{Text: "Operación cancelada.", Terminal: true}
}

func employeeOptions(staff []entity.Employee) []workflow.Option {
	opts := make([]workflow.Option, 0, len(staff))
	for _, emp := range staff {
		opts = append(opts, workflow.Option{ID: "emp:" + emp.ID, Label: emp.FullName})
	}
	return opts
}

// ── Reporte por técnico ───────────────────────────────────────────────────────

type reportFlow struct {
	employees repository.EmployeeRepository
	reports   *report.UseCase
	exporter  ReportExporter

	staff      []entity.Employee
	employeeID string
}

func newReportFlow(employees repository.EmployeeRepository, reports *report.UseCase, exporter ReportExporter) *reportFlow {
	return &reportFlow{employees: employees, reports: reports, exporter: exporter}
}

func (f *reportFlow) start() (workflow.Prompt, error) {
	staff, err := f.employees.List()
	if err != nil {
		return workflow.Prompt{}, err
	}
	if len(staff) == 0 {
		return workflow.Prompt{Text: "No hay técnicos registrados.", Terminal: true}, nil
	}
	f.staff = staff
	return workflow.Prompt{
		Text:    "¿De qué técnico querés el reporte?",
		Options: employeeOptions(staff),
	}, nil
}

func (f *reportFlow) promptPeriod() workflow.Prompt {
	return workflow.Prompt{
		Text: "¿Qué período?",
		Options: []workflow.Option{
			{ID: "period:7", Label: "Última semana"},
			{ID: "period:30", Label: "Último mes"},
			{ID: "period:all", Label: "Todo el historial"},
		},
	}
}

func (f *reportFlow) Apply(ctx context.Context, in workflow.Input) (workflow.Prompt, error) {
	if in.Kind == workflow.InputCancel {
		return cancelledPrompt(), nil
	}
	if f.employeeID == "" {
		if in.Kind == workflow.InputSelect && strings.HasPrefix(in.Value, "emp:") {
			f.employeeID = strings.TrimPrefix(in.Value, "emp:")
			return f.promptPeriod(), nil
		}
		return workflow.Prompt{
			Text:    "¿De qué técnico querés el reporte?",
			Options: employeeOptions(f.staff),
			Hint:    "Elegí un técnico de la lista.",
		}, nil
	}

	if in.Kind != workflow.InputSelect || !strings.HasPrefix(in.Value, "period:") {
		p := f.promptPeriod()
		p.Hint = "Elegí un período de la lista."
		return p, nil
	}
	var periodDays *int
	if v := strings.TrimPrefix(in.Value, "period:"); v != "all" {
		days, err := strconv.Atoi(v)
		if err != nil {
			p := f.promptPeriod()
			p.Hint = "Elegí un período de la lista."
			return p, nil
		}
		periodDays = &days
	}

	rep, err := f.reports.Build(ctx, f.employeeID, periodDays)
	if err != nil {
		return workflow.Prompt{}, err
	}
	if len(rep.Rows) == 0 {
		return workflow.Prompt{
			Text:     fmt.Sprintf("%s no tiene instalaciones en el período elegido.", rep.Employee.FullName),
			Terminal: true,
		}, nil
	}
	content, err := f.exporter.Export(rep)
	if err != nil {
		return workflow.Prompt{}, err
	}

	period := "historial completo"
	if periodDays != nil {
		period = fmt.Sprintf("últimos %d días", *periodDays)
	}
	return workflow.Prompt{
		Text: fmt.Sprintf("Reporte de %s (%s): %d instalaciones, fibra %sm, par %sm.",
			rep.Employee.FullName, period, rep.Totals.Connections,
			rep.Totals.Fiber.StringFixed(2), rep.Totals.TwistedPair.StringFixed(2)),
		Document: &workflow.Document{
			Name:    fmt.Sprintf("reporte_%s_%s.xlsx", sanitizeName(rep.Employee.FullName), time.Now().Format("20060102")),
			Content: content,
			Caption: "Reporte de instalaciones",
		},
		Terminal: true,
	}, nil
}

func sanitizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// ── Saldo por técnico ─────────────────────────────────────────────────────────

type balanceFlow struct {
	employees repository.EmployeeRepository
	ledger    *inventory.LedgerUseCase

	staff []entity.Employee
}

func newBalanceFlow(employees repository.EmployeeRepository, ledger *inventory.LedgerUseCase) *balanceFlow {
	return &balanceFlow{employees: employees, ledger: ledger}
}

func (f *balanceFlow) start() (workflow.Prompt, error) {
	staff, err := f.employees.List()
	if err != nil {
		return workflow.Prompt{}, err
	}
	if len(staff) == 0 {
		return workflow.Prompt{Text: "No hay técnicos registrados.", Terminal: true}, nil
	}
	f.staff = staff
	return workflow.Prompt{
		Text:    "¿De qué técnico querés el saldo?",
		Options: employeeOptions(staff),
	}, nil
}

func (f *balanceFlow) Apply(ctx context.Context, in workflow.Input) (workflow.Prompt, error) {
	if in.Kind == workflow.InputCancel {
		return cancelledPrompt(), nil
	}
	if in.Kind != workflow.InputSelect || !strings.HasPrefix(in.Value, "emp:") {
		return workflow.Prompt{
			Text:    "¿De qué técnico querés el saldo?",
			Options: employeeOptions(f.staff),
			Hint:    "Elegí un técnico de la lista.",
		}, nil
	}
	id := strings.TrimPrefix(in.Value, "emp:")

	var name string
	for _, emp := range f.staff {
		if emp.ID == id {
			name = emp.FullName
		}
	}
	balances, err := f.ledger.Balance(ctx, id)
	if err != nil {
		return workflow.Prompt{}, err
	}
	routers, err := f.ledger.RoutersOf(ctx, id)
	if err != nil {
		return workflow.Prompt{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Saldo de %s:\n", name)
	fmt.Fprintf(&b, "• Fibra óptica: %sm\n", balances.Fiber.StringFixed(2))
	fmt.Fprintf(&b, "• Par trenzado: %sm\n", balances.TwistedPair.StringFixed(2))
	if len(routers) == 0 {
		b.WriteString("• Routers: sin stock")
	} else {
		b.WriteString("• Routers:\n")
		for _, r := range routers {
			fmt.Fprintf(&b, "   %s × %d\n", r.RouterModel, r.Quantity)
		}
	}
	return workflow.Prompt{Text: b.String(), Terminal: true}, nil
}
