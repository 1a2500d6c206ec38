package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/domain"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

// EmployeeRepo implementación de EmployeeRepository sobre PostgreSQL
// (usable con pool o tx).
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

const employeeColumns = `id, full_name, fiber_balance, twisted_pair_balance, created_at`

// Create inserta un técnico. El nombre completo tiene constraint único.
func (r *EmployeeRepo) Create(e *entity.Employee) error {
	query := `
		INSERT INTO employees (id, full_name, fiber_balance, twisted_pair_balance, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.FullName, e.FiberBalance, e.TwistedPairBalance, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmployee
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetByID obtiene un técnico por id; nil sin error cuando no existe.
func (r *EmployeeRepo) GetByID(id string) (*entity.Employee, error) {
	return r.scanOne(`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el técnico bloqueando la fila (SELECT FOR UPDATE).
func (r *EmployeeRepo) GetByIDForUpdate(id string) (*entity.Employee, error) {
	return r.scanOne(`SELECT `+employeeColumns+` FROM employees WHERE id = $1 FOR UPDATE`, id)
}

// GetByName busca por nombre completo normalizado (comparación exacta).
func (r *EmployeeRepo) GetByName(fullName string) (*entity.Employee, error) {
	return r.scanOne(`SELECT `+employeeColumns+` FROM employees WHERE full_name = $1`, fullName)
}

func (r *EmployeeRepo) scanOne(query string, arg any) (*entity.Employee, error) {
	var e entity.Employee
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&e.ID, &e.FullName, &e.FiberBalance, &e.TwistedPairBalance, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}

// List devuelve toda la plantilla ordenada por nombre.
func (r *EmployeeRepo) List() ([]entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY full_name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []entity.Employee
	for rows.Next() {
		var e entity.Employee
		if err := rows.Scan(&e.ID, &e.FullName, &e.FiberBalance, &e.TwistedPairBalance, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateBalances fija ambos saldos del técnico.
func (r *EmployeeRepo) UpdateBalances(id string, fiber, twisted decimal.Decimal) error {
	query := `UPDATE employees SET fiber_balance = $2, twisted_pair_balance = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, fiber, twisted)
	if err != nil {
		return fmt.Errorf("update balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

// Delete elimina al técnico. Los vínculos de cuadrilla quedan: guardan copia
// del nombre y el FK está declarado ON DELETE SET NULL.
func (r *EmployeeRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}
