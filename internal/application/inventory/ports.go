package inventory

import (
	"context"

	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la verificación de suficiencia
// y la mutación del saldo ocurran como una sola unidad (fila bloqueada con
// SELECT FOR UPDATE), sin intercalado entre sesiones concurrentes.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		empRepo repository.EmployeeRepository,
		routerRepo repository.RouterRepository,
		movRepo repository.MovementRepository,
	) error) error
}
