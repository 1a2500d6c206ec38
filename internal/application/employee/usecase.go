package employee

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/fieldops-api/internal/application/inventory"
	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

var nameCaser = cases.Title(language.Spanish)

// NormalizeFullName compacta espacios y aplica mayúscula inicial por palabra,
// para que "juan  pérez" y "Juan Pérez" registren al mismo técnico.
func NormalizeFullName(name string) string {
	return nameCaser.String(strings.Join(strings.Fields(name), " "))
}

// UseCase administra el alta, baja y consulta de técnicos.
type UseCase struct {
	txRunner  inventory.TxRunner
	employees repository.EmployeeRepository
	routers   repository.RouterRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner inventory.TxRunner, employees repository.EmployeeRepository, routers repository.RouterRepository) *UseCase {
	return &UseCase{txRunner: txRunner, employees: employees, routers: routers}
}

// Register da de alta un técnico con saldos en cero. Un nombre ya registrado
// devuelve ErrDuplicateEmployee; el caller lo trata como aviso, no como falla.
func (uc *UseCase) Register(ctx context.Context, fullName string) (*entity.Employee, error) {
	name := NormalizeFullName(fullName)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.employees.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, domain.ErrDuplicateEmployee
	}
	emp := &entity.Employee{
		ID:                 uuid.New().String(),
		FullName:           name,
		FiberBalance:       decimal.Zero,
		TwistedPairBalance: decimal.Zero,
		CreatedAt:          time.Now(),
	}
	if err := uc.employees.Create(emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Delete elimina al técnico y sus filas de routers en una transacción.
// Los vínculos de cuadrilla de instalaciones pasadas se conservan: guardan el
// nombre copiado y siguen alimentando los reportes históricos.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		empRepo repository.EmployeeRepository,
		routerRepo repository.RouterRepository,
		_ repository.MovementRepository,
	) error {
		emp, err := empRepo.GetByID(id)
		if err != nil {
			return err
		}
		if emp == nil {
			return domain.ErrEmployeeNotFound
		}
		if err := routerRepo.DeleteByEmployee(id); err != nil {
			return err
		}
		return empRepo.Delete(id)
	})
}

// Get devuelve un técnico por id.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Employee, error) {
	emp, err := uc.employees.GetByID(id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return emp, nil
}

// List devuelve todos los técnicos ordenados por nombre.
func (uc *UseCase) List(ctx context.Context) ([]entity.Employee, error) {
	return uc.employees.List()
}
