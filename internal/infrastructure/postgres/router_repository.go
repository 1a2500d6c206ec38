package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

var _ repository.RouterRepository = (*RouterRepo)(nil)

// RouterRepo implementación de RouterRepository sobre PostgreSQL
// (usable con pool o tx).
type RouterRepo struct {
	q Querier
}

// NewRouterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRouterRepository(q Querier) *RouterRepo {
	return &RouterRepo{q: q}
}

// Get obtiene el conteo de un modelo para un técnico. Sin fila devuelve
// Quantity = 0, mismo contrato que el resto del stock.
func (r *RouterRepo) Get(employeeID, routerModel string) (*entity.EmployeeRouter, error) {
	return r.get(employeeID, routerModel, false)
}

// GetForUpdate obtiene el conteo bloqueando la fila (SELECT FOR UPDATE).
func (r *RouterRepo) GetForUpdate(employeeID, routerModel string) (*entity.EmployeeRouter, error) {
	return r.get(employeeID, routerModel, true)
}

func (r *RouterRepo) get(employeeID, routerModel string, forUpdate bool) (*entity.EmployeeRouter, error) {
	query := `
		SELECT employee_id, router_model, quantity
		FROM employee_routers WHERE employee_id = $1 AND router_model = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var er entity.EmployeeRouter
	err := r.q.QueryRow(context.Background(), query, employeeID, routerModel).Scan(
		&er.EmployeeID, &er.RouterModel, &er.Quantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.EmployeeRouter{EmployeeID: employeeID, RouterModel: routerModel}, nil
		}
		return nil, fmt.Errorf("get employee router: %w", err)
	}
	return &er, nil
}

// Add incrementa el conteo de un modelo en forma atómica. Sin fila previa la
// crea; con fila suma sobre la cantidad almacenada, de modo que dos cargas
// concurrentes nunca se pisan. Devuelve la cantidad resultante.
func (r *RouterRepo) Add(employeeID, routerModel string, quantity int) (int, error) {
	query := `
		INSERT INTO employee_routers (employee_id, router_model, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, router_model)
		DO UPDATE SET quantity = employee_routers.quantity + EXCLUDED.quantity
		RETURNING quantity`
	var total int
	err := r.q.QueryRow(context.Background(), query, employeeID, routerModel, quantity).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("add employee routers: %w", err)
	}
	return total, nil
}

// Upsert inserta o actualiza el conteo (por técnico y modelo).
func (r *RouterRepo) Upsert(er *entity.EmployeeRouter) error {
	query := `
		INSERT INTO employee_routers (employee_id, router_model, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, router_model)
		DO UPDATE SET quantity = EXCLUDED.quantity`
	_, err := r.q.Exec(context.Background(), query, er.EmployeeID, er.RouterModel, er.Quantity)
	if err != nil {
		return fmt.Errorf("upsert employee router: %w", err)
	}
	return nil
}

// Delete elimina la fila de un modelo (conteo llegó a cero).
func (r *RouterRepo) Delete(employeeID, routerModel string) error {
	query := `DELETE FROM employee_routers WHERE employee_id = $1 AND router_model = $2`
	if _, err := r.q.Exec(context.Background(), query, employeeID, routerModel); err != nil {
		return fmt.Errorf("delete employee router: %w", err)
	}
	return nil
}

// DeleteByEmployee elimina todos los conteos de un técnico (al darlo de baja).
func (r *RouterRepo) DeleteByEmployee(employeeID string) error {
	query := `DELETE FROM employee_routers WHERE employee_id = $1`
	if _, err := r.q.Exec(context.Background(), query, employeeID); err != nil {
		return fmt.Errorf("delete employee routers: %w", err)
	}
	return nil
}

// ListByEmployee devuelve los conteos de un técnico ordenados por modelo.
func (r *RouterRepo) ListByEmployee(employeeID string) ([]entity.EmployeeRouter, error) {
	query := `
		SELECT employee_id, router_model, quantity
		FROM employee_routers WHERE employee_id = $1
		ORDER BY router_model`
	rows, err := r.q.Query(context.Background(), query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list employee routers: %w", err)
	}
	defer rows.Close()

	var out []entity.EmployeeRouter
	for rows.Next() {
		var er entity.EmployeeRouter
		if err := rows.Scan(&er.EmployeeID, &er.RouterModel, &er.Quantity); err != nil {
			return nil, fmt.Errorf("scan employee router: %w", err)
		}
		out = append(out, er)
	}
	return out, rows.Err()
}

// ModelsInStock devuelve los modelos con al menos una unidad en toda la
// plantilla, ordenados alfabéticamente. Alimenta las opciones del flujo de alta.
func (r *RouterRepo) ModelsInStock() ([]string, error) {
	query := `
		SELECT DISTINCT router_model FROM employee_routers
		WHERE quantity > 0 ORDER BY router_model`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list router models: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var model string
		if err := rows.Scan(&model); err != nil {
			return nil, fmt.Errorf("scan router model: %w", err)
		}
		out = append(out, model)
	}
	return out, rows.Err()
}
