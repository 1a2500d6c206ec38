package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// ── Dobles con estado ─────────────────────────────────────────────────────────

type fakeEmployees struct{ byID map[string]*entity.Employee }

func (r *fakeEmployees) Create(e *entity.Employee) error { r.byID[e.ID] = e; return nil }
func (r *fakeEmployees) GetByID(id string) (*entity.Employee, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}
func (r *fakeEmployees) GetByIDForUpdate(id string) (*entity.Employee, error) { return r.GetByID(id) }
func (r *fakeEmployees) GetByName(string) (*entity.Employee, error)          { return nil, nil }
func (r *fakeEmployees) List() ([]entity.Employee, error)                    { return nil, nil }
func (r *fakeEmployees) UpdateBalances(id string, fiber, twisted decimal.Decimal) error {
	e, ok := r.byID[id]
	if !ok {
		return domain.ErrEmployeeNotFound
	}
	e.FiberBalance = fiber
	e.TwistedPairBalance = twisted
	return nil
}
func (r *fakeEmployees) Delete(id string) error { delete(r.byID, id); return nil }

type fakeRouters struct {
	counts map[string]int
	deltas []int // incrementos recibidos por Add, en orden
}

func routerKey(e, m string) string { return e + "/" + m }

func (r *fakeRouters) Get(e, m string) (*entity.EmployeeRouter, error) {
	return &entity.EmployeeRouter{EmployeeID: e, RouterModel: m, Quantity: r.counts[routerKey(e, m)]}, nil
}
func (r *fakeRouters) GetForUpdate(e, m string) (*entity.EmployeeRouter, error) { return r.Get(e, m) }
func (r *fakeRouters) Add(e, m string, q int) (int, error) {
	r.deltas = append(r.deltas, q)
	r.counts[routerKey(e, m)] += q
	return r.counts[routerKey(e, m)], nil
}
func (r *fakeRouters) Upsert(er *entity.EmployeeRouter) error {
	r.counts[routerKey(er.EmployeeID, er.RouterModel)] = er.Quantity
	return nil
}
func (r *fakeRouters) Delete(e, m string) error { delete(r.counts, routerKey(e, m)); return nil }
func (r *fakeRouters) DeleteByEmployee(string) error { return nil }
func (r *fakeRouters) ListByEmployee(string) ([]entity.EmployeeRouter, error) { return nil, nil }
func (r *fakeRouters) ModelsInStock() ([]string, error)                       { return nil, nil }

type fakeMovements struct{ log []entity.MaterialMovement }

func (r *fakeMovements) Create(m *entity.MaterialMovement) error {
	r.log = append(r.log, *m)
	return nil
}
func (r *fakeMovements) ListByEmployee(string, time.Time, time.Time) ([]entity.MaterialMovement, error) {
	return r.log, nil
}

// passTx ejecuta la función directamente sobre los dobles.
type passTx struct {
	emps repository.EmployeeRepository
	rtrs repository.RouterRepository
	movs repository.MovementRepository
}

func (t passTx) Run(_ context.Context, fn func(
	repository.EmployeeRepository, repository.RouterRepository, repository.MovementRepository,
) error) error {
	return fn(t.emps, t.rtrs, t.movs)
}

func newTestLedger(fiber, twisted string) (*LedgerUseCase, *fakeEmployees, *fakeRouters, *fakeMovements) {
	emps := &fakeEmployees{byID: map[string]*entity.Employee{
		"e1": {
			ID: "e1", FullName: "Juan Pérez",
			FiberBalance:       decimal.RequireFromString(fiber),
			TwistedPairBalance: decimal.RequireFromString(twisted),
		},
	}}
	rtrs := &fakeRouters{counts: map[string]int{}}
	movs := &fakeMovements{}
	uc := NewLedgerUseCase(passTx{emps, rtrs, movs}, emps, rtrs, movs)
	return uc, emps, rtrs, movs
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestAddMaterial_ActualizaSaldoYRegistraMovimientos(t *testing.T) {
	uc, _, _, movs := newTestLedger("10", "5")

	out, err := uc.AddMaterial(context.Background(), "e1", dec("90.5"), dec("45"), "admin")
	require.NoError(t, err)

	assert.True(t, out.Fiber.Equal(dec("100.5")), "fibra: %s", out.Fiber)
	assert.True(t, out.TwistedPair.Equal(dec("50")), "par trenzado: %s", out.TwistedPair)

	require.Len(t, movs.log, 2, "un movimiento por recurso")
	assert.Equal(t, entity.MovementOpAdd, movs.log[0].Operation)
	assert.Equal(t, entity.ItemTypeFiber, movs.log[0].ItemType)
	assert.True(t, movs.log[0].BalanceAfter.Equal(dec("100.5")))
	assert.Equal(t, entity.ItemTypeTwistedPair, movs.log[1].ItemType)
	assert.Equal(t, "admin", movs.log[1].CreatedBy)
}

func TestAddMaterial_SoloUnRecursoLogueaUnMovimiento(t *testing.T) {
	uc, _, _, movs := newTestLedger("0", "0")

	_, err := uc.AddMaterial(context.Background(), "e1", dec("30"), decimal.Zero, "admin")
	require.NoError(t, err)

	require.Len(t, movs.log, 1)
	assert.Equal(t, entity.ItemTypeFiber, movs.log[0].ItemType)
}

func TestAddMaterial_EntradaInvalida(t *testing.T) {
	uc, _, _, _ := newTestLedger("10", "10")
	ctx := context.Background()

	_, err := uc.AddMaterial(ctx, "e1", dec("-1"), dec("5"), "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")

	_, err = uc.AddMaterial(ctx, "e1", decimal.Zero, decimal.Zero, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ambas cantidades en cero")
}

func TestDeductMaterial_DescuentaAmbosYVinculaConexion(t *testing.T) {
	uc, emps, _, movs := newTestLedger("100", "50")
	connID := "c-1"

	out, err := uc.DeductMaterial(context.Background(), "e1", dec("40"), dec("20"), &connID, "bot")
	require.NoError(t, err)

	assert.True(t, out.Fiber.Equal(dec("60")))
	assert.True(t, out.TwistedPair.Equal(dec("30")))

	emp, _ := emps.GetByID("e1")
	assert.True(t, emp.FiberBalance.Equal(dec("60")), "el saldo persistido debe reflejar el descuento")

	require.Len(t, movs.log, 2)
	for _, m := range movs.log {
		require.NotNil(t, m.ConnectionID)
		assert.Equal(t, "c-1", *m.ConnectionID)
		assert.Equal(t, entity.MovementOpDeduct, m.Operation)
	}
}

func TestDeductMaterial_InsuficienteNoMutaNada(t *testing.T) {
	// Fibra alcanza pero par trenzado no: ninguno de los dos debe cambiar.
	uc, emps, _, movs := newTestLedger("100", "10")

	_, err := uc.DeductMaterial(context.Background(), "e1", dec("40"), dec("20"), nil, "bot")
	assert.ErrorIs(t, err, domain.ErrInsufficientMaterial)

	emp, _ := emps.GetByID("e1")
	assert.True(t, emp.FiberBalance.Equal(dec("100")))
	assert.True(t, emp.TwistedPairBalance.Equal(dec("10")))
	assert.Empty(t, movs.log, "sin movimientos cuando la operación falla")
}

func TestDeductMaterial_TecnicoInexistente(t *testing.T) {
	uc, _, _, _ := newTestLedger("100", "50")

	_, err := uc.DeductMaterial(context.Background(), "nadie", dec("1"), decimal.Zero, nil, "bot")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}

func TestAddRouters_CreaYAcumula(t *testing.T) {
	uc, _, rtrs, movs := newTestLedger("0", "0")
	ctx := context.Background()

	qty, err := uc.AddRouters(ctx, "e1", "HG8145V5", 2, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	qty, err = uc.AddRouters(ctx, "e1", "HG8145V5", 3, "admin")
	require.NoError(t, err)
	assert.Equal(t, 5, qty)
	assert.Equal(t, 5, rtrs.counts["e1/HG8145V5"])

	require.Len(t, movs.log, 2)
	assert.Equal(t, entity.ItemTypeRouter, movs.log[0].ItemType)
	assert.Equal(t, "HG8145V5", movs.log[0].ItemName)
}

// El alta de routers debe llegar al repositorio como incremento, nunca como
// cantidad absoluta leída antes: dos cargas simultáneas sobre un modelo sin
// fila previa se pisarían el conteo y el saldo dejaría de cuadrar con los
// movimientos.
func TestAddRouters_EnviaIncrementosAlRepositorio(t *testing.T) {
	uc, _, rtrs, movs := newTestLedger("0", "0")
	ctx := context.Background()

	_, err := uc.AddRouters(ctx, "e1", "HG8145V5", 2, "admin")
	require.NoError(t, err)
	_, err = uc.AddRouters(ctx, "e1", "HG8145V5", 3, "admin")
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, rtrs.deltas, "el repositorio recibe los incrementos")
	assert.Equal(t, 5, rtrs.counts["e1/HG8145V5"])

	// El saldo final coincide con la suma de los movimientos registrados.
	total := 0
	for _, m := range movs.log {
		total += int(m.Quantity.IntPart())
	}
	assert.Equal(t, rtrs.counts["e1/HG8145V5"], total)
}

func TestDeductRouter_EliminaLaFilaEnCero(t *testing.T) {
	uc, _, rtrs, _ := newTestLedger("0", "0")
	ctx := context.Background()
	rtrs.counts["e1/HG8145V5"] = 1

	qty, err := uc.DeductRouter(ctx, "e1", "HG8145V5", 1, nil, "bot")
	require.NoError(t, err)
	assert.Zero(t, qty)
	_, ok := rtrs.counts["e1/HG8145V5"]
	assert.False(t, ok, "la fila en cero se elimina")

	// Un segundo descuento sobre el conteo ausente falla.
	_, err = uc.DeductRouter(ctx, "e1", "HG8145V5", 1, nil, "bot")
	assert.ErrorIs(t, err, domain.ErrInsufficientRouter)
}

func TestDeductRouter_ModeloDistintoNoDescuenta(t *testing.T) {
	// La comparación de modelos es por cadena exacta.
	uc, _, rtrs, _ := newTestLedger("0", "0")
	rtrs.counts["e1/HG8145V5"] = 3

	_, err := uc.DeductRouter(context.Background(), "e1", "hg8145v5", 1, nil, "bot")
	assert.ErrorIs(t, err, domain.ErrInsufficientRouter)
	assert.Equal(t, 3, rtrs.counts["e1/HG8145V5"])
}

func TestBalance_TecnicoInexistente(t *testing.T) {
	uc, _, _, _ := newTestLedger("0", "0")

	_, err := uc.Balance(context.Background(), "nadie")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}
