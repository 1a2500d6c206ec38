package repository

import "github.com/jhoicas/fieldops-api/internal/domain/entity"

// RouterRepository define el puerto para los conteos de routers por técnico.
// Get y GetForUpdate devuelven una entidad con Quantity = 0 cuando la fila no
// existe (mismo contrato que el stock materializado).
type RouterRepository interface {
	Get(employeeID, routerModel string) (*entity.EmployeeRouter, error)
	GetForUpdate(employeeID, routerModel string) (*entity.EmployeeRouter, error)
	// Add incrementa el conteo en forma atómica (crea la fila si no existe)
	// y devuelve la cantidad resultante.
	Add(employeeID, routerModel string, quantity int) (int, error)
	Upsert(r *entity.EmployeeRouter) error
	Delete(employeeID, routerModel string) error
	DeleteByEmployee(employeeID string) error
	ListByEmployee(employeeID string) ([]entity.EmployeeRouter, error)
	ModelsInStock() ([]string, error)
}
