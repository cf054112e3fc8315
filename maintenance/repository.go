package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRequestNotFound is returned when no maintenance request matches.
var ErrRequestNotFound = errors.New("maintenance: request not found")

// Repository defines the data access for maintenance requests.
type Repository interface {
	GetByID(ctx context.Context, id string) (Request, error)
	Create(ctx context.Context, params CreateParams) (Request, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Request, error)
	AppendPhoto(ctx context.Context, id, url string) (Request, error)
	List(ctx context.Context, filters ListFilters) ([]Request, int, error)
}

const requestColumns = `id, property_id, tenant_id, category, description, urgency, status,
	photo_urls, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM maintenance_requests WHERE id = $1`, id)
	rec, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("maintenance: get: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Request, error) {
	const insertSQL = `
		INSERT INTO maintenance_requests (property_id, tenant_id, category, description, urgency, status)
		VALUES ($1, $2, $3, $4, $5, 'reported')
		RETURNING ` + requestColumns

	rec, err := scanRequest(r.pool.QueryRow(ctx, insertSQL,
		params.PropertyID, params.TenantID, params.Category, params.Description, params.Urgency))
	if err != nil {
		return Request{}, fmt.Errorf("maintenance: insert: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status Status) (Request, error) {
	const updateSQL = `
		UPDATE maintenance_requests
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + requestColumns

	rec, err := scanRequest(r.pool.QueryRow(ctx, updateSQL, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("maintenance: update status: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) AppendPhoto(ctx context.Context, id, url string) (Request, error) {
	const updateSQL = `
		UPDATE maintenance_requests
		SET photo_urls = array_append(photo_urls, $2), updated_at = now()
		WHERE id = $1
		RETURNING ` + requestColumns

	rec, err := scanRequest(r.pool.QueryRow(ctx, updateSQL, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("maintenance: append photo: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Request, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.TenantID != "" {
		args = append(args, filters.TenantID)
		where += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}
	if filters.PropertyID != "" {
		args = append(args, filters.PropertyID)
		where += fmt.Sprintf(" AND property_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	sortColumn := filters.SortColumn
	if sortColumn == "" {
		sortColumn = "created_at"
	}
	order := "ASC"
	if filters.SortDesc {
		order = "DESC"
	}
	// Limit < 0 means the caller wants the whole result set.
	page := ""
	if filters.Limit >= 0 {
		limit := filters.Limit
		if limit == 0 {
			limit = 25
		}
		page = fmt.Sprintf(" LIMIT %d OFFSET %d", limit, filters.Offset)
	}

	query := `SELECT ` + requestColumns + ` FROM maintenance_requests` + where +
		fmt.Sprintf(" ORDER BY %s %s", sortColumn, order) + page

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("maintenance: list: %w", err)
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		rec, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("maintenance: scan: %w", err)
		}
		requests = append(requests, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("maintenance: iterate: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("maintenance: count: %w", err)
	}

	return requests, total, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var rec Request
	err := row.Scan(
		&rec.ID,
		&rec.PropertyID,
		&rec.TenantID,
		&rec.Category,
		&rec.Description,
		&rec.Urgency,
		&rec.Status,
		&rec.PhotoURLs,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return Request{}, err
	}
	return rec, nil
}
