package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fieldops-api/internal/domain/entity"
	"github.com/jhoicas/fieldops-api/internal/domain/repository"
)

var _ repository.ConnectionRepository = (*ConnectionRepo)(nil)

// ConnectionRepo implementación de ConnectionRepository sobre PostgreSQL
// (usable con pool o tx).
type ConnectionRepo struct {
	q Querier
}

// NewConnectionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConnectionRepository(q Querier) *ConnectionRepo {
	return &ConnectionRepo{q: q}
}

const connectionColumns = `
	id, type, address, router_model, router_quantity, router_access, port,
	fiber_meters, twisted_pair_meters, contract_signed, created_at, created_by,
	material_payer_id, router_payer_id`

// Create inserta la conexión con sus vínculos de cuadrilla y sus fotos usando
// el mismo Querier. Bajo el TxRunner las tres escrituras son una sola unidad.
func (r *ConnectionRepo) Create(c *entity.Connection) error {
	ctx := context.Background()
	query := `
		INSERT INTO connections (` + connectionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Type, c.Address, nullIfEmpty(c.RouterModel), c.RouterQuantity,
		c.RouterAccess, nullIfEmpty(c.Port), c.FiberMeters, c.TwistedPairMeters,
		c.ContractSigned, c.CreatedAt, c.CreatedBy, c.MaterialPayerID, c.RouterPayerID)
	if err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}

	for _, member := range c.Crew {
		_, err := r.q.Exec(ctx, `
			INSERT INTO connection_crew (connection_id, employee_id, full_name)
			VALUES ($1, $2, $3)`,
			c.ID, member.EmployeeID, member.FullName)
		if err != nil {
			return fmt.Errorf("insert crew member: %w", err)
		}
	}
	for i, photo := range c.Photos {
		_, err := r.q.Exec(ctx, `
			INSERT INTO connection_photos (connection_id, position, reference)
			VALUES ($1, $2, $3)`,
			c.ID, i, photo)
		if err != nil {
			return fmt.Errorf("insert photo: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la conexión completa; nil sin error cuando no existe.
func (r *ConnectionRepo) GetByID(id string) (*entity.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	c, err := r.scanConnection(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get connection: %w", err)
	}
	if err := r.loadDetails(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListForEmployee devuelve las conexiones donde el técnico aparece en la
// cuadrilla, más recientes primero. since = nil significa sin límite.
func (r *ConnectionRepo) ListForEmployee(employeeID string, since *time.Time) ([]entity.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections c
		JOIN connection_crew cc ON cc.connection_id = c.id
		WHERE cc.employee_id = $1 AND ($2::timestamptz IS NULL OR c.created_at >= $2)
		ORDER BY c.created_at DESC`
	rows, err := r.q.Query(context.Background(), query, employeeID, since)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var out []entity.Connection
	for rows.Next() {
		c, err := r.scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadDetails(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Count total de conexiones registradas.
func (r *ConnectionRepo) Count() (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM connections`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count connections: %w", err)
	}
	return n, nil
}

// scanConnection lee la fila principal. router_model y port viajan como NULL
// cuando fueron omitidos y se mapean a cadena vacía.
func (r *ConnectionRepo) scanConnection(row pgx.Row) (*entity.Connection, error) {
	var c entity.Connection
	var routerModel, port *string
	err := row.Scan(
		&c.ID, &c.Type, &c.Address, &routerModel, &c.RouterQuantity, &c.RouterAccess,
		&port, &c.FiberMeters, &c.TwistedPairMeters, &c.ContractSigned,
		&c.CreatedAt, &c.CreatedBy, &c.MaterialPayerID, &c.RouterPayerID,
	)
	if err != nil {
		return nil, err
	}
	if routerModel != nil {
		c.RouterModel = *routerModel
	}
	if port != nil {
		c.Port = *port
	}
	return &c, nil
}

func (r *ConnectionRepo) loadDetails(c *entity.Connection) error {
	ctx := context.Background()
	rows, err := r.q.Query(ctx, `
		SELECT employee_id, full_name FROM connection_crew
		WHERE connection_id = $1 ORDER BY full_name`, c.ID)
	if err != nil {
		return fmt.Errorf("list crew: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.CrewMember
		var employeeID *string
		if err := rows.Scan(&employeeID, &m.FullName); err != nil {
			return fmt.Errorf("scan crew member: %w", err)
		}
		// employee_id queda NULL cuando el técnico fue dado de baja.
		if employeeID != nil {
			m.EmployeeID = *employeeID
		}
		c.Crew = append(c.Crew, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	photoRows, err := r.q.Query(ctx, `
		SELECT reference FROM connection_photos
		WHERE connection_id = $1 ORDER BY position`, c.ID)
	if err != nil {
		return fmt.Errorf("list photos: %w", err)
	}
	defer photoRows.Close()
	for photoRows.Next() {
		var ref string
		if err := photoRows.Scan(&ref); err != nil {
			return fmt.Errorf("scan photo: %w", err)
		}
		c.Photos = append(c.Photos, ref)
	}
	return photoRows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
