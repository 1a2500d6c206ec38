package repository

import (
	"time"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// ConnectionRepository define el puerto de persistencia de instalaciones.
// Create guarda la fila principal, los vínculos de cuadrilla y las fotos
// ordenadas con el mismo Querier, de modo que bajo una transacción las tres
// escrituras son atómicas.
type ConnectionRepository interface {
	Create(c *entity.Connection) error
	GetByID(id string) (*entity.Connection, error)
	// ListForEmployee devuelve las conexiones donde el técnico participó,
	// más recientes primero. since = nil significa sin límite de fecha.
	ListForEmployee(employeeID string, since *time.Time) ([]entity.Connection, error)
	Count() (int, error)
}
