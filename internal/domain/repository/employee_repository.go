package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// EmployeeRepository define el puerto de persistencia de técnicos y sus saldos.
// Las variantes ForUpdate bloquean la fila (SELECT FOR UPDATE) y solo tienen
// sentido dentro de una transacción.
type EmployeeRepository interface {
	Create(e *entity.Employee) error
	GetByID(id string) (*entity.Employee, error)
	GetByIDForUpdate(id string) (*entity.Employee, error)
	GetByName(fullName string) (*entity.Employee, error)
	List() ([]entity.Employee, error)
	UpdateBalances(id string, fiber, twisted decimal.Decimal) error
	Delete(id string) error
}
