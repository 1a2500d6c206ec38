package connection

import (
	"context"

	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

// TxRunner variante con el repositorio de conexiones, para que el alta de la
// instalación y los descuentos de inventario compartan una sola transacción.
type TxRunner interface {
	RunConnection(ctx context.Context, fn func(
		connRepo repository.ConnectionRepository,
		empRepo repository.EmployeeRepository,
		routerRepo repository.RouterRepository,
		movRepo repository.MovementRepository,
	) error) error
}
