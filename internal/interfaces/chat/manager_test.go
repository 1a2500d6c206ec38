package chat

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/application/report"
	"github.com/jhoicas/fieldops-api/internal/application/workflow"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// ── Dobles ────────────────────────────────────────────────────────────────────

type memEmployees struct{ staff []entity.Employee }

func (r *memEmployees) Create(*entity.Employee) error { return nil }
func (r *memEmployees) GetByID(id string) (*entity.Employee, error) {
	for _, e := range r.staff {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}
func (r *memEmployees) GetByIDForUpdate(id string) (*entity.Employee, error) { return r.GetByID(id) }
func (r *memEmployees) GetByName(string) (*entity.Employee, error)           { return nil, nil }
func (r *memEmployees) List() ([]entity.Employee, error)                     { return r.staff, nil }
func (r *memEmployees) UpdateBalances(string, decimal.Decimal, decimal.Decimal) error {
	return nil
}
func (r *memEmployees) Delete(string) error { return nil }

type memRouters struct{}

func (memRouters) Get(e, m string) (*entity.EmployeeRouter, error) {
	return &entity.EmployeeRouter{EmployeeID: e, RouterModel: m}, nil
}
func (r memRouters) GetForUpdate(e, m string) (*entity.EmployeeRouter, error) { return r.Get(e, m) }
func (memRouters) Add(_, _ string, q int) (int, error)                        { return q, nil }
func (memRouters) Upsert(*entity.EmployeeRouter) error                        { return nil }
func (memRouters) Delete(string, string) error                                { return nil }
func (memRouters) DeleteByEmployee(string) error                              { return nil }
func (memRouters) ListByEmployee(string) ([]entity.EmployeeRouter, error) {
	return []entity.EmployeeRouter{{RouterModel: "HG8145V5", Quantity: 2}}, nil
}
func (memRouters) ModelsInStock() ([]string, error) { return []string{"HG8145V5"}, nil }

type memMovements struct{}

func (memMovements) Create(*entity.MaterialMovement) error { return nil }
func (memMovements) ListByEmployee(string, time.Time, time.Time) ([]entity.MaterialMovement, error) {
	return nil, nil
}

type memConnections struct{ conns []entity.Connection }

func (r *memConnections) Create(*entity.Connection) error          { return nil }
func (r *memConnections) GetByID(string) (*entity.Connection, error) { return nil, nil }
func (r *memConnections) ListForEmployee(string, *time.Time) ([]entity.Connection, error) {
	return r.conns, nil
}
func (r *memConnections) Count() (int, error) { return len(r.conns), nil }

// noTx ejecuta la función directamente; alcanza porque los dobles no mutan.
type noTx struct {
	emps repository.EmployeeRepository
	rtrs repository.RouterRepository
	movs repository.MovementRepository
}

func (t noTx) Run(_ context.Context, fn func(
	repository.EmployeeRepository, repository.RouterRepository, repository.MovementRepository,
) error) error {
	return fn(t.emps, t.rtrs, t.movs)
}

type recordingSender struct{ prompts []workflow.Prompt }

func (s *recordingSender) Send(_ string, p workflow.Prompt) error {
	s.prompts = append(s.prompts, p)
	return nil
}

func (s *recordingSender) last() workflow.Prompt {
	return s.prompts[len(s.prompts)-1]
}

type fakeExporter struct{}

func (fakeExporter) Export(*report.Report) ([]byte, error) { return []byte("xlsx"), nil }

type fakeCreator struct{ created int }

func (c *fakeCreator) Create(context.Context, connection.CreateInput) (*entity.Connection, error) {
	c.created++
	return &entity.Connection{ID: "c-1", CreatedAt: time.Now()}, nil
}

func newTestManager(allowed []string) (*Manager, *recordingSender, *fakeCreator) {
	emps := &memEmployees{staff: []entity.Employee{
		{ID: "e1", FullName: "Juan Pérez", FiberBalance: decimal.RequireFromString("120.5"), TwistedPairBalance: decimal.RequireFromString("80")},
	}}
	rtrs := memRouters{}
	movs := memMovements{}
	ledger := inventory.NewLedgerUseCase(noTx{emps, rtrs, movs}, emps, rtrs, movs)
	reports := report.NewUseCase(emps, &memConnections{conns: []entity.Connection{{
		ID: "c-1", Type: entity.ConnectionTypePrivate, Address: "Calle Falsa 123",
		FiberMeters:       decimal.RequireFromString("100"),
		TwistedPairMeters: decimal.RequireFromString("50"),
		Crew:              []entity.CrewMember{{EmployeeID: "e1", FullName: "Juan Pérez"}},
		CreatedAt:         time.Now(),
	}}})
	creator := &fakeCreator{}
	sender := &recordingSender{}
	mgr := NewManager(emps, rtrs, ledger, reports, fakeExporter{}, creator, nil, sender,
		Config{AllowedUsers: allowed, MaxPhotos: 5}, zerolog.Nop())
	return mgr, sender, creator
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestManager_UsuarioNoAutorizado(t *testing.T) {
	mgr, sender, _ := newTestManager([]string{"u1"})

	mgr.Handle(context.Background(), Event{UserID: "intruso", Kind: EventCommand, Value: CmdNew})

	require.Len(t, sender.prompts, 1)
	assert.Contains(t, sender.last().Text, "No estás autorizado")
	assert.Zero(t, mgr.ActiveSessions())
}

func TestManager_ListaVaciaPermiteATodos(t *testing.T) {
	mgr, sender, _ := newTestManager(nil)

	mgr.Handle(context.Background(), Event{UserID: "cualquiera", Kind: EventCommand, Value: CmdNew})

	require.Len(t, sender.prompts, 1)
	assert.Equal(t, workflow.StateSelectType, sender.last().State)
}

func TestManager_ComandoNuevoDescartaSesionAnterior(t *testing.T) {
	mgr, sender, creator := newTestManager(nil)
	ctx := context.Background()

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdNew})
	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventSelect, Value: "type:private"})
	require.Equal(t, 1, mgr.ActiveSessions())

	// Arrancar de nuevo descarta el borrador a medias sin persistir nada.
	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdNew})
	assert.Equal(t, 1, mgr.ActiveSessions())
	assert.Equal(t, workflow.StateSelectType, sender.last().State)
	assert.Zero(t, creator.created)
}

func TestManager_CancelarCierraLaSesion(t *testing.T) {
	mgr, sender, _ := newTestManager(nil)
	ctx := context.Background()

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdNew})
	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdCancel})

	assert.True(t, sender.last().Terminal)
	assert.Zero(t, mgr.ActiveSessions())

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdCancel})
	assert.Contains(t, sender.last().Text, "No hay nada que cancelar")
}

func TestManager_SesionesPorUsuarioIndependientes(t *testing.T) {
	mgr, _, _ := newTestManager(nil)
	ctx := context.Background()

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdNew})
	mgr.Handle(ctx, Event{UserID: "u2", Kind: EventCommand, Value: CmdNew})
	assert.Equal(t, 2, mgr.ActiveSessions())

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdCancel})
	assert.Equal(t, 1, mgr.ActiveSessions())
}

func TestManager_FlujoDeReporteEntregaPlanilla(t *testing.T) {
	mgr, sender, _ := newTestManager(nil)
	ctx := context.Background()

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdReport})
	require.NotEmpty(t, sender.last().Options)

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventSelect, Value: "emp:e1"})
	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventSelect, Value: "period:7"})

	p := sender.last()
	assert.True(t, p.Terminal)
	require.NotNil(t, p.Document)
	assert.Equal(t, []byte("xlsx"), p.Document.Content)
	assert.Contains(t, p.Document.Name, ".xlsx")
	assert.Contains(t, p.Text, "Juan Pérez")
	assert.Zero(t, mgr.ActiveSessions())
}

func TestManager_FlujoDeSaldo(t *testing.T) {
	mgr, sender, _ := newTestManager(nil)
	ctx := context.Background()

	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventCommand, Value: CmdBalance})
	mgr.Handle(ctx, Event{UserID: "u1", Kind: EventSelect, Value: "emp:e1"})

	p := sender.last()
	assert.True(t, p.Terminal)
	assert.Contains(t, p.Text, "120.50")
	assert.Contains(t, p.Text, "HG8145V5 × 2")
	assert.Zero(t, mgr.ActiveSessions())
}

func TestManager_TextoSinSesionMuestraAyuda(t *testing.T) {
	mgr, sender, _ := newTestManager(nil)

	mgr.Handle(context.Background(), Event{UserID: "u1", Kind: EventText, Value: "hola"})

	assert.Contains(t, sender.last().Text, "/nueva")
}
