package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// Nombres legibles de los materiales en el libro de movimientos.
const (
	itemNameFiber       = "Fibra óptica"
	itemNameTwistedPair = "Par trenzado"
)

// LedgerUseCase administra los saldos de materiales y routers de los técnicos.
// Toda mutación corre dentro de una transacción con la fila del técnico
// bloqueada: verificación + descuento + log son una sola unidad, todo o nada.
type LedgerUseCase struct {
	txRunner  TxRunner
	employees repository.EmployeeRepository
	routers   repository.RouterRepository
	movements repository.MovementRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	employees repository.EmployeeRepository,
	routers repository.RouterRepository,
	movements repository.MovementRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		employees: employees,
		routers:   routers,
		movements: movements,
	}
}

// Balances par de saldos de un técnico.
type Balances struct {
	Fiber       decimal.Decimal
	TwistedPair decimal.Decimal
}

// Balance devuelve los saldos actuales (lectura pura, sin reglas de negocio).
func (uc *LedgerUseCase) Balance(ctx context.Context, employeeID string) (Balances, error) {
	emp, err := uc.employees.GetByID(employeeID)
	if err != nil {
		return Balances{}, err
	}
	if emp == nil {
		return Balances{}, domain.ErrEmployeeNotFound
	}
	return Balances{Fiber: emp.FiberBalance, TwistedPair: emp.TwistedPairBalance}, nil
}

// RouterCount devuelve las unidades del modelo en poder del técnico
// (comparación exacta de cadena, 0 si no hay fila).
func (uc *LedgerUseCase) RouterCount(ctx context.Context, employeeID, routerModel string) (int, error) {
	r, err := uc.routers.Get(employeeID, routerModel)
	if err != nil {
		return 0, err
	}
	return r.Quantity, nil
}

// RoutersOf lista los modelos en poder del técnico.
func (uc *LedgerUseCase) RoutersOf(ctx context.Context, employeeID string) ([]entity.EmployeeRouter, error) {
	return uc.routers.ListByEmployee(employeeID)
}

// ModelsInStock lista los modelos de router con al menos una unidad en el sistema.
func (uc *LedgerUseCase) ModelsInStock(ctx context.Context) ([]string, error) {
	return uc.routers.ModelsInStock()
}

// Movements devuelve el libro de movimientos del técnico en un rango de fechas.
func (uc *LedgerUseCase) Movements(ctx context.Context, employeeID string, from, to time.Time) ([]entity.MaterialMovement, error) {
	return uc.movements.ListByEmployee(employeeID, from, to)
}

// AddMaterial incrementa los saldos y registra un movimiento por cada recurso
// con cantidad distinta de cero. Devuelve los saldos resultantes.
func (uc *LedgerUseCase) AddMaterial(ctx context.Context, employeeID string, fiber, twisted decimal.Decimal, actor string) (Balances, error) {
	if fiber.IsNegative() || twisted.IsNegative() || (fiber.IsZero() && twisted.IsZero()) {
		return Balances{}, domain.ErrInvalidInput
	}
	var out Balances
	err := uc.txRunner.Run(ctx, func(
		empRepo repository.EmployeeRepository,
		_ repository.RouterRepository,
		movRepo repository.MovementRepository,
	) error {
		emp, err := empRepo.GetByIDForUpdate(employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return domain.ErrEmployeeNotFound
		}
		now := time.Now()
		newFiber := emp.FiberBalance.Add(fiber)
		newTwisted := emp.TwistedPairBalance.Add(twisted)
		if err := empRepo.UpdateBalances(employeeID, newFiber, newTwisted); err != nil {
			return err
		}
		if err := logMaterialMovements(movRepo, employeeID, entity.MovementOpAdd, fiber, twisted, newFiber, newTwisted, nil, actor, now); err != nil {
			return err
		}
		out = Balances{Fiber: newFiber, TwistedPair: newTwisted}
		return nil
	})
	return out, err
}

// DeductMaterial descuenta ambos materiales de forma atómica. Si cualquiera de
// los dos saldos no alcanza, falla con ErrInsufficientMaterial y nada cambia.
func (uc *LedgerUseCase) DeductMaterial(ctx context.Context, employeeID string, fiber, twisted decimal.Decimal, connectionID *string, actor string) (Balances, error) {
	var out Balances
	err := uc.txRunner.Run(ctx, func(
		empRepo repository.EmployeeRepository,
		_ repository.RouterRepository,
		movRepo repository.MovementRepository,
	) error {
		b, err := uc.DeductMaterialInTx(empRepo, movRepo, employeeID, fiber, twisted, connectionID, actor, time.Now())
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// DeductMaterialInTx ejecuta el descuento usando los repositorios del caller
// (misma transacción). Lo usa CreateConnection para que el alta de la
// instalación y el descuento sean una sola unidad lógica.
func (uc *LedgerUseCase) DeductMaterialInTx(
	empRepo repository.EmployeeRepository,
	movRepo repository.MovementRepository,
	employeeID string,
	fiber, twisted decimal.Decimal,
	connectionID *string,
	actor string,
	now time.Time,
) (Balances, error) {
	if fiber.IsNegative() || twisted.IsNegative() {
		return Balances{}, domain.ErrInvalidInput
	}
	emp, err := empRepo.GetByIDForUpdate(employeeID)
	if err != nil {
		return Balances{}, err
	}
	if emp == nil {
		return Balances{}, domain.ErrEmployeeNotFound
	}
	// Verificación de ambos recursos antes de mutar cualquiera: todo o nada.
	if !emp.HasEnough(fiber, twisted) {
		return Balances{}, domain.ErrInsufficientMaterial
	}
	newFiber := emp.FiberBalance.Sub(fiber)
	newTwisted := emp.TwistedPairBalance.Sub(twisted)
	if err := empRepo.UpdateBalances(employeeID, newFiber, newTwisted); err != nil {
		return Balances{}, err
	}
	if err := logMaterialMovements(movRepo, employeeID, entity.MovementOpDeduct, fiber, twisted, newFiber, newTwisted, connectionID, actor, now); err != nil {
		return Balances{}, err
	}
	return Balances{Fiber: newFiber, TwistedPair: newTwisted}, nil
}

// AddRouters incrementa (o crea) el conteo del modelo para el técnico.
func (uc *LedgerUseCase) AddRouters(ctx context.Context, employeeID, routerModel string, quantity int, actor string) (int, error) {
	if routerModel == "" || quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	var newQty int
	err := uc.txRunner.Run(ctx, func(
		empRepo repository.EmployeeRepository,
		routerRepo repository.RouterRepository,
		movRepo repository.MovementRepository,
	) error {
		emp, err := empRepo.GetByID(employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return domain.ErrEmployeeNotFound
		}
		// El incremento lo resuelve la base en una sola sentencia: un
		// SELECT FOR UPDATE no bloquea nada cuando la fila todavía no
		// existe y dos altas concurrentes se pisarían el conteo.
		newQty, err = routerRepo.Add(employeeID, routerModel, quantity)
		if err != nil {
			return err
		}
		return movRepo.Create(newRouterMovement(employeeID, entity.MovementOpAdd, routerModel, quantity, newQty, nil, actor, time.Now()))
	})
	return newQty, err
}

// DeductRouter descuenta unidades del modelo. Con el conteo en cero la fila
// se elimina; un segundo descuento falla con ErrInsufficientRouter.
func (uc *LedgerUseCase) DeductRouter(ctx context.Context, employeeID, routerModel string, quantity int, connectionID *string, actor string) (int, error) {
	var newQty int
	err := uc.txRunner.Run(ctx, func(
		_ repository.EmployeeRepository,
		routerRepo repository.RouterRepository,
		movRepo repository.MovementRepository,
	) error {
		q, err := uc.DeductRouterInTx(routerRepo, movRepo, employeeID, routerModel, quantity, connectionID, actor, time.Now())
		if err != nil {
			return err
		}
		newQty = q
		return nil
	})
	return newQty, err
}

// DeductRouterInTx versión para componer dentro de la transacción del caller.
func (uc *LedgerUseCase) DeductRouterInTx(
	routerRepo repository.RouterRepository,
	movRepo repository.MovementRepository,
	employeeID, routerModel string,
	quantity int,
	connectionID *string,
	actor string,
	now time.Time,
) (int, error) {
	if routerModel == "" || quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	current, err := routerRepo.GetForUpdate(employeeID, routerModel)
	if err != nil {
		return 0, err
	}
	if current.Quantity < quantity {
		return 0, domain.ErrInsufficientRouter
	}
	newQty := current.Quantity - quantity
	if newQty == 0 {
		if err := routerRepo.Delete(employeeID, routerModel); err != nil {
			return 0, err
		}
	} else {
		if err := routerRepo.Upsert(&entity.EmployeeRouter{
			EmployeeID:  employeeID,
			RouterModel: routerModel,
			Quantity:    newQty,
		}); err != nil {
			return 0, err
		}
	}
	if err := movRepo.Create(newRouterMovement(employeeID, entity.MovementOpDeduct, routerModel, quantity, newQty, connectionID, actor, now)); err != nil {
		return 0, err
	}
	return newQty, nil
}

// logMaterialMovements agrega una entrada al log por cada recurso con cantidad
// distinta de cero.
func logMaterialMovements(
	movRepo repository.MovementRepository,
	employeeID, operation string,
	fiber, twisted, fiberAfter, twistedAfter decimal.Decimal,
	connectionID *string,
	actor string,
	now time.Time,
) error {
	if !fiber.IsZero() {
		if err := movRepo.Create(&entity.MaterialMovement{
			ID:           uuid.New().String(),
			EmployeeID:   employeeID,
			Operation:    operation,
			ItemType:     entity.ItemTypeFiber,
			ItemName:     itemNameFiber,
			Quantity:     fiber,
			BalanceAfter: fiberAfter,
			ConnectionID: connectionID,
			CreatedBy:    actor,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
	}
	if !twisted.IsZero() {
		if err := movRepo.Create(&entity.MaterialMovement{
			ID:           uuid.New().String(),
			EmployeeID:   employeeID,
			Operation:    operation,
			ItemType:     entity.ItemTypeTwistedPair,
			ItemName:     itemNameTwistedPair,
			Quantity:     twisted,
			BalanceAfter: twistedAfter,
			ConnectionID: connectionID,
			CreatedBy:    actor,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
	}
	return nil
}

func newRouterMovement(employeeID, operation, routerModel string, quantity, balanceAfter int, connectionID *string, actor string, now time.Time) *entity.MaterialMovement {
	return &entity.MaterialMovement{
		ID:           uuid.New().String(),
		EmployeeID:   employeeID,
		Operation:    operation,
		ItemType:     entity.ItemTypeRouter,
		ItemName:     routerModel,
		Quantity:     decimal.NewFromInt(int64(quantity)),
		BalanceAfter: decimal.NewFromInt(int64(balanceAfter)),
		ConnectionID: connectionID,
		CreatedBy:    actor,
		CreatedAt:    now,
	}
}
