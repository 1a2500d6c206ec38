package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// ── Dobles en memoria ─────────────────────────────────────────────────────────

type stubEmployees struct {
	byID    map[string]entity.Employee
	listErr error
}

func (s *stubEmployees) Create(*entity.Employee) error { return nil }
func (s *stubEmployees) GetByID(id string) (*entity.Employee, error) {
	if e, ok := s.byID[id]; ok {
		return &e, nil
	}
	return nil, nil
}
func (s *stubEmployees) GetByIDForUpdate(id string) (*entity.Employee, error) { return s.GetByID(id) }
func (s *stubEmployees) GetByName(string) (*entity.Employee, error)           { return nil, nil }
func (s *stubEmployees) List() ([]entity.Employee, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	// Orden estable para que los prompts sean deterministas en los tests.
	out := make([]entity.Employee, 0, len(s.byID))
	for _, id := range []string{"e1", "e2", "e3"} {
		if e, ok := s.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}
func (s *stubEmployees) UpdateBalances(string, decimal.Decimal, decimal.Decimal) error { return nil }
func (s *stubEmployees) Delete(string) error                                           { return nil }

type stubRouters struct {
	counts map[string]int // "empID/model" -> cantidad
	models []string
}

func (s *stubRouters) Get(employeeID, model string) (*entity.EmployeeRouter, error) {
	return &entity.EmployeeRouter{
		EmployeeID:  employeeID,
		RouterModel: model,
		Quantity:    s.counts[employeeID+"/"+model],
	}, nil
}
func (s *stubRouters) GetForUpdate(e, m string) (*entity.EmployeeRouter, error) { return s.Get(e, m) }
func (s *stubRouters) Add(e, m string, q int) (int, error) {
	s.counts[e+"/"+m] += q
	return s.counts[e+"/"+m], nil
}
func (s *stubRouters) Upsert(*entity.EmployeeRouter) error                      { return nil }
func (s *stubRouters) Delete(string, string) error                              { return nil }
func (s *stubRouters) DeleteByEmployee(string) error                            { return nil }
func (s *stubRouters) ListByEmployee(string) ([]entity.EmployeeRouter, error)   { return nil, nil }
func (s *stubRouters) ModelsInStock() ([]string, error)                         { return s.models, nil }

type stubCreator struct {
	got *connection.CreateInput
	err error
}

func (s *stubCreator) Create(_ context.Context, in connection.CreateInput) (*entity.Connection, error) {
	s.got = &in
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Connection{ID: "c-1", CreatedAt: time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)}, nil
}

type stubActa struct{ content []byte }

func (s *stubActa) Generate(*entity.Connection) ([]byte, error) { return s.content, nil }

// ── Armado ────────────────────────────────────────────────────────────────────

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newTestDeps() (Deps, *stubEmployees, *stubRouters, *stubCreator) {
	emps := &stubEmployees{byID: map[string]entity.Employee{
		"e1": {ID: "e1", FullName: "Juan Pérez", FiberBalance: dec("500"), TwistedPairBalance: dec("300")},
		"e2": {ID: "e2", FullName: "María López", FiberBalance: dec("10"), TwistedPairBalance: dec("5")},
		"e3": {ID: "e3", FullName: "Pedro Gómez", FiberBalance: dec("500"), TwistedPairBalance: dec("300")},
	}}
	routers := &stubRouters{
		counts: map[string]int{"e1/HG8145V5": 3},
		models: []string{"HG8145V5"},
	}
	creator := &stubCreator{}
	return Deps{
		Employees: emps,
		Routers:   routers,
		Creator:   creator,
		Policy:    connection.PolicySinglePayer,
		MaxPhotos: 3,
	}, emps, routers, creator
}

func sel(v string) Input  { return Input{Kind: InputSelect, Value: v} }
func txt(v string) Input  { return Input{Kind: InputText, Value: v} }
func foto(v string) Input { return Input{Kind: InputPhoto, Value: v} }

// advance aplica una entrada y exige que no haya error ni Hint.
func advance(t *testing.T, m *Machine, in Input) Prompt {
	t.Helper()
	p, err := m.Apply(context.Background(), in)
	require.NoError(t, err)
	require.Empty(t, p.Hint, "entrada válida no debería producir hint (estado %s)", p.State)
	return p
}

// driveToCrew lleva la máquina hasta la selección de cuadrilla con datos fijos.
func driveToCrew(t *testing.T, m *Machine, withRouter bool) Prompt {
	t.Helper()
	advance(t, m, sel("type:private"))
	advance(t, m, foto("ph1"))
	advance(t, m, sel("continue"))
	advance(t, m, txt("Calle Falsa 123"))
	if withRouter {
		advance(t, m, sel("model:HG8145V5"))
		advance(t, m, txt("1"))
	} else {
		advance(t, m, sel("skip"))
	}
	advance(t, m, sel("access:skip"))
	advance(t, m, sel("skip")) // puerto omitido
	advance(t, m, txt("100"))
	advance(t, m, txt("50,5")) // coma decimal aceptada
	p := advance(t, m, sel("contract:signed"))
	require.Equal(t, StateSelectCrew, p.State)
	return p
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestMachine_FlujoCompletoConRouter(t *testing.T) {
	deps, _, _, creator := newTestDeps()
	m := New("tech-1", deps)

	p := m.Start()
	assert.Equal(t, StateSelectType, p.State)

	driveToCrew(t, m, true)
	advance(t, m, sel("crew:e1"))
	p = advance(t, m, sel("done"))

	// e1 es el único con material y router suficientes: dos auto-selecciones
	// seguidas y directo a la confirmación.
	require.Equal(t, StateConfirm, p.State)
	assert.Contains(t, p.Text, "Juan Pérez")
	assert.Contains(t, p.Text, "HG8145V5")
	assert.Contains(t, p.Text, "100.00")
	assert.Contains(t, p.Text, "50.50")

	p = advance(t, m, sel("confirm:yes"))
	require.True(t, p.Terminal)
	assert.True(t, m.Done())

	require.NotNil(t, creator.got, "la confirmación debe invocar el alta")
	assert.Equal(t, "private", creator.got.Type)
	assert.Equal(t, []string{"e1"}, creator.got.CrewIDs)
	require.NotNil(t, creator.got.MaterialPayerID)
	assert.Equal(t, "e1", *creator.got.MaterialPayerID)
	require.NotNil(t, creator.got.RouterPayerID)
	assert.Equal(t, "e1", *creator.got.RouterPayerID)
	assert.True(t, decimal.RequireFromString("50.5").Equal(creator.got.TwistedPairMeters))
	assert.Equal(t, "tech-1", creator.got.CreatedBy)
}

func TestMachine_SinRouterSaltaCantidad(t *testing.T) {
	deps, _, _, creator := newTestDeps()
	m := New("tech-1", deps)

	driveToCrew(t, m, false)
	advance(t, m, sel("crew:e1"))
	p := advance(t, m, sel("done"))

	require.Equal(t, StateConfirm, p.State)
	assert.Contains(t, p.Text, "Router: —")

	advance(t, m, sel("confirm:yes"))
	require.NotNil(t, creator.got)
	assert.Empty(t, creator.got.RouterModel)
	assert.Nil(t, creator.got.RouterPayerID, "sin router no debe haber pagador de router")
}

func TestMachine_FotoObligatoria(t *testing.T) {
	deps, _, _, _ := newTestDeps()
	m := New("tech-1", deps)

	advance(t, m, sel("type:mdu"))
	p, err := m.Apply(context.Background(), sel("continue"))
	require.NoError(t, err)
	assert.Equal(t, StateUploadPhotos, p.State, "sin fotos el flujo no avanza")
	assert.NotEmpty(t, p.Hint)
}

func TestMachine_LimiteDeFotos(t *testing.T) {
	deps, _, _, _ := newTestDeps()
	m := New("tech-1", deps)

	advance(t, m, sel("type:mdu"))
	advance(t, m, foto("ph1"))
	advance(t, m, foto("ph2"))
	advance(t, m, foto("ph3"))
	p, err := m.Apply(context.Background(), foto("ph4"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.Hint, "la cuarta foto supera el límite configurado")

	advance(t, m, sel("continue"))
	assert.Equal(t, StateEnterAddress, m.State())
}

func TestMachine_MetrosInvalidosRepiten(t *testing.T) {
	deps, _, _, _ := newTestDeps()
	m := New("tech-1", deps)

	advance(t, m, sel("type:private"))
	advance(t, m, foto("ph1"))
	advance(t, m, sel("continue"))
	advance(t, m, txt("Calle Falsa 123"))
	advance(t, m, sel("skip"))
	advance(t, m, sel("access:skip"))
	advance(t, m, sel("skip"))

	for _, bad := range []string{"abc", "-5", "10..5"} {
		p, err := m.Apply(context.Background(), txt(bad))
		require.NoError(t, err)
		assert.Equal(t, StateEnterFiber, p.State, "entrada %q debe repetir el paso", bad)
		assert.NotEmpty(t, p.Hint)
	}

	advance(t, m, txt("0"))
	assert.Equal(t, StateEnterTwisted, m.State(), "cero metros es válido")
}

func TestMachine_CuadrillaToggleYVacia(t *testing.T) {
	deps, _, _, _ := newTestDeps()
	m := New("tech-1", deps)

	driveToCrew(t, m, false)

	// Marcar y desmarcar deja la cuadrilla vacía; "Listo" se rechaza.
	p := advance(t, m, sel("crew:e1"))
	assert.Contains(t, p.Options[0].Label, "✅")
	advance(t, m, sel("crew:e1"))

	p, err := m.Apply(context.Background(), sel("done"))
	require.NoError(t, err)
	assert.Equal(t, StateSelectCrew, p.State)
	assert.NotEmpty(t, p.Hint)
}

func TestMachine_PagadorMaterial_Eleccion(t *testing.T) {
	deps, _, _, creator := newTestDeps()
	m := New("tech-1", deps)

	driveToCrew(t, m, false)
	advance(t, m, sel("crew:e1"))
	advance(t, m, sel("crew:e3"))
	p := advance(t, m, sel("done"))

	// e1 y e3 alcanzan: hay que elegir. e2 ni figura entre las opciones.
	require.Equal(t, StateSelectMaterialPayer, p.State)
	require.Len(t, p.Options, 2)

	// Un id fuera del conjunto suficiente se ignora.
	p, err := m.Apply(context.Background(), sel("payer:e2"))
	require.NoError(t, err)
	assert.Equal(t, StateSelectMaterialPayer, p.State)

	p = advance(t, m, sel("payer:e3"))
	require.Equal(t, StateConfirm, p.State)

	advance(t, m, sel("confirm:yes"))
	require.NotNil(t, creator.got.MaterialPayerID)
	assert.Equal(t, "e3", *creator.got.MaterialPayerID)
}

func TestMachine_PagadorMaterial_NadieAlcanza(t *testing.T) {
	deps, emps, _, creator := newTestDeps()
	emps.byID["e1"] = entity.Employee{ID: "e1", FullName: "Juan Pérez", FiberBalance: dec("50"), TwistedPairBalance: dec("10")}
	m := New("tech-1", deps)

	driveToCrew(t, m, false) // pide fibra 100 / par 50.5
	advance(t, m, sel("crew:e1"))
	p, err := m.Apply(context.Background(), sel("done"))
	require.NoError(t, err)

	require.True(t, p.Terminal, "sin candidato suficiente el flujo aborta")
	assert.Contains(t, p.Text, "Juan Pérez")
	assert.Contains(t, p.Text, "50.00")
	assert.Nil(t, creator.got, "el aborto no debe registrar nada")
	assert.True(t, m.Done())
}

func TestMachine_PagadorRouter_NadieTieneNoAborta(t *testing.T) {
	deps, _, routers, creator := newTestDeps()
	routers.counts = map[string]int{} // nadie tiene el modelo
	m := New("tech-1", deps)

	driveToCrew(t, m, true)
	advance(t, m, sel("crew:e1"))
	p := advance(t, m, sel("done"))

	require.Equal(t, StateConfirm, p.State)
	assert.Contains(t, p.Text, "sin descuento de stock")

	advance(t, m, sel("confirm:yes"))
	require.NotNil(t, creator.got)
	assert.Nil(t, creator.got.RouterPayerID)
	assert.Equal(t, "HG8145V5", creator.got.RouterModel)
}

func TestMachine_PoliticaRepartoSaltaPagador(t *testing.T) {
	deps, _, _, creator := newTestDeps()
	deps.Policy = connection.PolicySplitCrew
	m := New("tech-1", deps)

	driveToCrew(t, m, false)
	advance(t, m, sel("crew:e1"))
	advance(t, m, sel("crew:e2")) // e2 no alcanza solo, pero con reparto no importa
	advance(t, m, sel("crew:e3"))
	p := advance(t, m, sel("done"))

	require.Equal(t, StateConfirm, p.State, "con reparto igualitario no hay resolución de pagador")
	assert.Contains(t, p.Text, "Descuento por técnico")
	assert.Contains(t, p.Text, "33.33", "100 / 3 redondeado a dos decimales")

	advance(t, m, sel("confirm:yes"))
	assert.Nil(t, creator.got.MaterialPayerID)
}

func TestMachine_CancelarEnCualquierEstado(t *testing.T) {
	deps, _, _, creator := newTestDeps()

	for i := 0; i < 3; i++ {
		m := New("tech-1", deps)
		advance(t, m, sel("type:private"))
		if i > 0 {
			advance(t, m, foto("ph1"))
		}
		p, err := m.Apply(context.Background(), Input{Kind: InputCancel})
		require.NoError(t, err)
		assert.True(t, p.Terminal)
		assert.True(t, m.Done())

		// La cancelación es idempotente: nuevas entradas no reviven la sesión.
		p, err = m.Apply(context.Background(), txt("hola"))
		require.NoError(t, err)
		assert.True(t, p.Terminal)
	}
	assert.Nil(t, creator.got)
}

func TestMachine_ConfirmarNoDescarta(t *testing.T) {
	deps, _, _, creator := newTestDeps()
	m := New("tech-1", deps)

	driveToCrew(t, m, false)
	advance(t, m, sel("crew:e1"))
	advance(t, m, sel("done"))

	p := advance(t, m, sel("confirm:no"))
	assert.True(t, p.Terminal)
	assert.Nil(t, creator.got)
}

func TestMachine_ErrorDePersistenciaConservaEstado(t *testing.T) {
	deps, _, _, creator := newTestDeps()
	creator.err = fmt.Errorf("error al insertar conexión: %w", errors.New("conexión rechazada"))
	m := New("tech-1", deps)

	driveToCrew(t, m, false)
	advance(t, m, sel("crew:e1"))
	advance(t, m, sel("done"))

	_, err := m.Apply(context.Background(), sel("confirm:yes"))
	require.Error(t, err)
	assert.Equal(t, StateConfirm, m.State(), "el error de BD no debe matar la sesión")

	// Reintento exitoso sobre la misma sesión.
	creator.err = nil
	p := advance(t, m, sel("confirm:yes"))
	assert.True(t, p.Terminal)
	assert.True(t, m.Done())
}

func TestMachine_SaldoDrenadoEntreResolucionYConfirmacion(t *testing.T) {
	deps, _, _, creator := newTestDeps()
	creator.err = domain.ErrInsufficientMaterial
	m := New("tech-1", deps)

	driveToCrew(t, m, false)
	advance(t, m, sel("crew:e1"))
	advance(t, m, sel("done"))

	p, err := m.Apply(context.Background(), sel("confirm:yes"))
	require.NoError(t, err, "la insuficiencia concurrente se reporta como prompt, no como error")
	assert.True(t, p.Terminal)
	assert.Contains(t, p.Text, "Nada fue guardado")
}

func TestMachine_ActaAdjuntaAlConfirmar(t *testing.T) {
	deps, _, _, _ := newTestDeps()
	deps.Acta = &stubActa{content: []byte("%PDF-1.4")}
	m := New("tech-1", deps)

	driveToCrew(t, m, false)
	advance(t, m, sel("crew:e1"))
	advance(t, m, sel("done"))
	p := advance(t, m, sel("confirm:yes"))

	require.NotNil(t, p.Document)
	assert.Equal(t, "acta_c-1.pdf", p.Document.Name)
	assert.Equal(t, []byte("%PDF-1.4"), p.Document.Content)
}

func TestMachine_SinPlantillaAborta(t *testing.T) {
	deps, emps, _, _ := newTestDeps()
	emps.byID = map[string]entity.Employee{}
	m := New("tech-1", deps)

	advance(t, m, sel("type:private"))
	advance(t, m, foto("ph1"))
	advance(t, m, sel("continue"))
	advance(t, m, txt("Calle Falsa 123"))
	advance(t, m, sel("skip"))
	advance(t, m, sel("access:skip"))
	advance(t, m, sel("skip"))
	advance(t, m, txt("10"))
	advance(t, m, txt("10"))

	p, err := m.Apply(context.Background(), sel("contract:signed"))
	require.NoError(t, err)
	assert.True(t, p.Terminal)
	assert.True(t, m.Done())
}

func TestNext_DesvioPorRouterOmitido(t *testing.T) {
	withRouter := Draft{RouterModel: "HG8145V5"}
	assert.Equal(t, StateEnterRouterQuantity, Next(StateSelectRouter, withRouter))
	assert.Equal(t, StateRouterAccess, Next(StateSelectRouter, Draft{}))
	assert.Equal(t, StateRouterAccess, Next(StateEnterRouterQuantity, withRouter))
}
