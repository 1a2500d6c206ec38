package repository

import (
	"time"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos (append-only).
// No hay Update ni Delete: el log es la fuente de verdad histórica.
type MovementRepository interface {
	Create(m *entity.MaterialMovement) error
	ListByEmployee(employeeID string, from, to time.Time) ([]entity.MaterialMovement, error)
}
