package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrTenantNotFound is returned when no tenant row matches the lookup.
	ErrTenantNotFound = errors.New("tenant: not found")
	// ErrDuplicateEmail signals the tenants email uniqueness constraint fired.
	ErrDuplicateEmail = errors.New("tenant: email already exists")
)

// Repository defines the data access required by the resolver and CRUD surface.
type Repository interface {
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetByUserID(ctx context.Context, userID string) (Tenant, error)
	GetByEmail(ctx context.Context, email string) (Tenant, error)
	Create(ctx context.Context, params CreateParams) (Tenant, error)
	LinkUser(ctx context.Context, tenantID, userID string) (Tenant, error)
	Update(ctx context.Context, id string, params UpdateParams) (Tenant, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, sortColumn string, desc bool, limit, offset int) ([]Tenant, int, error)
}

const tenantColumns = `id, full_name, email, phone, user_id, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Tenant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row, "get by id")
}

func (r *PGRepository) GetByUserID(ctx context.Context, userID string) (Tenant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE user_id = $1`, userID)
	return scanTenant(row, "get by user id")
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (Tenant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE lower(email) = lower($1)`, email)
	return scanTenant(row, "get by email")
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Tenant, error) {
	const insertSQL = `
		INSERT INTO tenants (full_name, email, phone, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tenantColumns

	row := r.pool.QueryRow(ctx, insertSQL, params.FullName, params.Email, params.Phone, params.UserID)
	rec, err := scanTenant(row, "create")
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Tenant{}, ErrDuplicateEmail
		}
		return Tenant{}, err
	}
	return rec, nil
}

// LinkUser backfills the user_id on a tenant row that predates its owner's
// first authenticated interaction.
func (r *PGRepository) LinkUser(ctx context.Context, tenantID, userID string) (Tenant, error) {
	const updateSQL = `
		UPDATE tenants
		SET user_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + tenantColumns

	row := r.pool.QueryRow(ctx, updateSQL, tenantID, userID)
	return scanTenant(row, "link user")
}

func (r *PGRepository) Update(ctx context.Context, id string, params UpdateParams) (Tenant, error) {
	const updateSQL = `
		UPDATE tenants
		SET full_name = $2, email = $3, phone = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + tenantColumns

	row := r.pool.QueryRow(ctx, updateSQL, id, params.FullName, params.Email, params.Phone)
	rec, err := scanTenant(row, "update")
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Tenant{}, ErrDuplicateEmail
		}
		return Tenant{}, err
	}
	return rec, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("tenant: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, sortColumn string, desc bool, limit, offset int) ([]Tenant, int, error) {
	order := "ASC"
	if desc {
		order = "DESC"
	}

	// sortColumn has been validated against the resource allow-list upstream.
	// Limit < 0 means the caller wants the whole result set.
	query := fmt.Sprintf(`SELECT %s FROM tenants ORDER BY %s %s`, tenantColumns, sortColumn, order)
	if limit >= 0 {
		if limit == 0 {
			limit = 25
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("tenant: list: %w", err)
	}
	defer rows.Close()

	tenants := []Tenant{}
	for rows.Next() {
		rec, err := scanTenant(rows, "scan")
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("tenant: iterate: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("tenant: count: %w", err)
	}

	return tenants, total, nil
}

func scanTenant(row pgx.Row, op string) (Tenant, error) {
	var rec Tenant
	err := row.Scan(&rec.ID, &rec.FullName, &rec.Email, &rec.Phone, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrTenantNotFound
		}
		return Tenant{}, fmt.Errorf("tenant: %s: %w", op, err)
	}
	return rec, nil
}
