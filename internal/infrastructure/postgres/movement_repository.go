package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lista: el log es append-only.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta una entrada del libro.
func (r *MovementRepo) Create(m *entity.MaterialMovement) error {
	query := `
		INSERT INTO material_movements
			(id, employee_id, operation, item_type, item_name, quantity,
			 balance_after, connection_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.EmployeeID, m.Operation, m.ItemType, m.ItemName,
		m.Quantity, m.BalanceAfter, m.ConnectionID, m.CreatedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByEmployee devuelve los movimientos de un técnico en [from, to],
// más recientes primero.
func (r *MovementRepo) ListByEmployee(employeeID string, from, to time.Time) ([]entity.MaterialMovement, error) {
	query := `
		SELECT id, employee_id, operation, item_type, item_name, quantity,
		       balance_after, connection_id, created_by, created_at
		FROM material_movements
		WHERE employee_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []entity.MaterialMovement
	for rows.Next() {
		var m entity.MaterialMovement
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.Operation, &m.ItemType, &m.ItemName,
			&m.Quantity, &m.BalanceAfter, &m.ConnectionID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
