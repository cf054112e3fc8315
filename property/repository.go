package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/contract"
)

// ErrPropertyNotFound is returned when no property row matches.
var ErrPropertyNotFound = errors.New("property: not found")

// Repository defines the data access for properties.
type Repository interface {
	GetByID(ctx context.Context, id string) (Property, error)
	Create(ctx context.Context, params CreateParams) (Property, error)
	Update(ctx context.Context, id string, params UpdateParams) (Property, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters ListFilters) ([]Property, int, error)
	AppendPhoto(ctx context.Context, id, url string) (Property, error)
}

// projectedColumns includes the occupancy subquery so every read carries the
// globally computed projection, not just the stored column.
var projectedColumns = `p.id, p.title, p.address, p.city, p.price, p.charges, p.status,
	p.owner_id, p.photo_urls, p.created_at, p.updated_at,
	EXISTS (
		SELECT 1 FROM contracts c
		WHERE c.property_id = p.id AND c.status IN ` + contract.OpenStatusSQLList() + `
	) AS has_open_contract`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectedColumns+` FROM properties p WHERE p.id = $1`, id)
	rec, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, fmt.Errorf("property: get: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Property, error) {
	const insertSQL = `
		INSERT INTO properties (title, address, city, price, charges, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, insertSQL,
		params.Title, params.Address, params.City, params.Price, params.Charges, params.OwnerID).Scan(&id)
	if err != nil {
		return Property{}, fmt.Errorf("property: insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *PGRepository) Update(ctx context.Context, id string, params UpdateParams) (Property, error) {
	const updateSQL = `
		UPDATE properties
		SET title = $2, address = $3, city = $4, price = $5, charges = $6,
		    status = $7, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, updateSQL,
		id, params.Title, params.Address, params.City, params.Price, params.Charges, params.Status)
	if err != nil {
		return Property{}, fmt.Errorf("property: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Property{}, ErrPropertyNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("property: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *PGRepository) AppendPhoto(ctx context.Context, id, url string) (Property, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE properties SET photo_urls = array_append(photo_urls, $2), updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return Property{}, fmt.Errorf("property: append photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Property{}, ErrPropertyNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Property, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.City != "" {
		args = append(args, filters.City)
		where += fmt.Sprintf(" AND lower(p.city) = lower($%d)", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
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

	query := `SELECT ` + projectedColumns + ` FROM properties p` + where +
		fmt.Sprintf(" ORDER BY p.%s %s", sortColumn, order) + page

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("property: list: %w", err)
	}
	defer rows.Close()

	properties := []Property{}
	for rows.Next() {
		rec, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("property: scan: %w", err)
		}
		properties = append(properties, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("property: iterate: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("property: count: %w", err)
	}

	return properties, total, nil
}

func scanProperty(row pgx.Row) (Property, error) {
	var (
		rec     Property
		hasOpen bool
	)
	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Address,
		&rec.City,
		&rec.Price,
		&rec.Charges,
		&rec.StoredStatus,
		&rec.OwnerID,
		&rec.PhotoURLs,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&hasOpen,
	)
	if err != nil {
		return Property{}, err
	}

	rec.HasActiveContract = hasOpen
	rec.Status = Project(rec.StoredStatus, hasOpen)
	rec.IsContractable = rec.Status == StatusAvailable
	return rec, nil
}

// Project computes the effective status from the stored column and the
// globally observed open-contract existence. The stored value is advisory:
// an open contract always reads as rented, and a stored 'rented' without one
// self-corrects to available.
func Project(stored Status, hasOpenContract bool) Status {
	if hasOpenContract {
		return StatusRented
	}
	if stored == StatusRented {
		return StatusAvailable
	}
	return stored
}
