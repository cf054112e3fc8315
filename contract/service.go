package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/auth"
	"rentflow/payment"
	"rentflow/tenant"
)

var (
	// ErrContractNotFound is returned when no contract row exists for the id.
	ErrContractNotFound = errors.New("contract: not found")
	// ErrPropertyNotFound is returned when the target property does not exist.
	ErrPropertyNotFound = errors.New("contract: property not found")
	// ErrPropertyUnavailable signals the property already carries an open contract.
	ErrPropertyUnavailable = errors.New("contract: property unavailable")
	// ErrInvalidTransition signals an operation against a contract in the wrong state.
	ErrInvalidTransition = errors.New("contract: invalid state transition")
	// ErrNotOwned signals a tenant operating on a contract that is not theirs.
	ErrNotOwned = errors.New("contract: not owned by tenant")
)

// TenantResolver maps principals to tenant rows, creating them on demand for
// the mobile self-service flow.
type TenantResolver interface {
	ResolveOrCreate(ctx context.Context, principal auth.Principal) (tenant.Tenant, error)
	Resolve(ctx context.Context, principal auth.Principal) (tenant.Tenant, error)
}

// Service owns the contract lifecycle. Multi-step transitions (accept, delete)
// run inside a single transaction with the contract row locked, so a crash can
// never leave an active contract without its first payment or a deleted
// contract with a still-rented property.
type Service struct {
	pool     *pgxpool.Pool
	resolver TenantResolver
	now      func() time.Time
}

func NewService(pool *pgxpool.Pool, resolver TenantResolver) *Service {
	return &Service{
		pool:     pool,
		resolver: resolver,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

const contractColumns = `id, property_id, tenant_id, monthly_rent, charges, payment_day,
	grace_period_days, status, signed_by_tenant, signed_by_landlord,
	start_date, end_date, created_at, updated_at`

// Create inserts a staff-authored contract directly in the active state and
// flips the property to rented.
func (s *Service) Create(ctx context.Context, params CreateParams) (Contract, error) {
	if params.PropertyID == "" || params.TenantID == "" {
		return Contract{}, fmt.Errorf("contract: property and tenant ids required")
	}
	if params.MonthlyRent < 0 || params.Charges < 0 {
		return Contract{}, fmt.Errorf("contract: negative amounts")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Contract{}, fmt.Errorf("contract: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rent, charges, err := lockAvailableProperty(ctx, tx, params.PropertyID)
	if err != nil {
		return Contract{}, err
	}
	if params.MonthlyRent == 0 {
		params.MonthlyRent = rent
	}
	if params.Charges == 0 {
		params.Charges = charges
	}
	if params.PaymentDay == 0 {
		params.PaymentDay = defaultPaymentDay
	}
	if params.GracePeriodDays == 0 {
		params.GracePeriodDays = defaultGracePeriodDays
	}

	now := s.now()
	const insertSQL = `
		INSERT INTO contracts (property_id, tenant_id, monthly_rent, charges, payment_day,
			grace_period_days, status, signed_by_tenant, signed_by_landlord, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', true, true, $7)
		RETURNING ` + contractColumns

	rec, err := scanContract(tx.QueryRow(ctx, insertSQL,
		params.PropertyID, params.TenantID, params.MonthlyRent, params.Charges,
		params.PaymentDay, params.GracePeriodDays, now))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Contract{}, ErrPropertyUnavailable
		}
		return Contract{}, fmt.Errorf("contract: insert: %w", err)
	}

	if err := markProperty(ctx, tx, params.PropertyID, "rented"); err != nil {
		return Contract{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Contract{}, fmt.Errorf("contract: commit create: %w", err)
	}
	return rec, nil
}

// Request files a draft contract on behalf of an authenticated tenant,
// resolving (or creating) their tenant record first. Rent and charges are
// copied from the property.
func (s *Service) Request(ctx context.Context, principal auth.Principal, propertyID string) (Contract, error) {
	if propertyID == "" {
		return Contract{}, fmt.Errorf("contract: property id required")
	}

	rec, err := s.resolver.ResolveOrCreate(ctx, principal)
	if err != nil {
		return Contract{}, fmt.Errorf("contract: resolve tenant: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Contract{}, fmt.Errorf("contract: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rent, charges, err := lockAvailableProperty(ctx, tx, propertyID)
	if err != nil {
		return Contract{}, err
	}

	const insertSQL = `
		INSERT INTO contracts (property_id, tenant_id, monthly_rent, charges, status)
		VALUES ($1, $2, $3, $4, 'draft')
		RETURNING ` + contractColumns

	c, err := scanContract(tx.QueryRow(ctx, insertSQL, propertyID, rec.ID, rent, charges))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Contract{}, ErrPropertyUnavailable
		}
		return Contract{}, fmt.Errorf("contract: insert draft: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Contract{}, fmt.Errorf("contract: commit request: %w", err)
	}
	return c, nil
}

// Accept transitions a tenant's draft contract to active in one transaction:
// both signatures are recorded, the property flips to rented, and the first
// rent payment for the following month is created.
func (s *Service) Accept(ctx context.Context, principal auth.Principal, contractID string) (Contract, error) {
	rec, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return Contract{}, ErrNotOwned
		}
		return Contract{}, fmt.Errorf("contract: resolve tenant: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Contract{}, fmt.Errorf("contract: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockContract(ctx, tx, contractID)
	if err != nil {
		return Contract{}, err
	}
	if current.TenantID != rec.ID {
		return Contract{}, ErrNotOwned
	}
	if !CanTransition(current.Status, StatusActive) {
		return Contract{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusActive)
	}

	now := s.now()
	const updateSQL = `
		UPDATE contracts
		SET status = 'active',
		    signed_by_tenant = true,
		    signed_by_landlord = true,
		    start_date = $2,
		    payment_day = $3,
		    grace_period_days = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + contractColumns

	accepted, err := scanContract(tx.QueryRow(ctx, updateSQL, contractID, now, defaultPaymentDay, defaultGracePeriodDays))
	if err != nil {
		return Contract{}, fmt.Errorf("contract: activate: %w", err)
	}

	if err := markProperty(ctx, tx, accepted.PropertyID, "rented"); err != nil {
		return Contract{}, err
	}

	// First rent payment: due on the 1st of the following calendar month.
	firstDue := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	const paymentSQL = `
		INSERT INTO payments (contract_id, period_month, amount, due_date, status, validation_status)
		VALUES ($1, $2, $3, $4, 'pending', 'not_submitted')
	`
	amount := accepted.MonthlyRent + accepted.Charges
	if _, err := tx.Exec(ctx, paymentSQL, accepted.ID, payment.MonthLabel(firstDue), amount, firstDue); err != nil {
		return Contract{}, fmt.Errorf("contract: insert first payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Contract{}, fmt.Errorf("contract: commit accept: %w", err)
	}
	return accepted, nil
}

// Reject deletes a tenant's draft contract. The property was never flipped
// for a draft, so no status change is needed.
func (s *Service) Reject(ctx context.Context, principal auth.Principal, contractID string) error {
	rec, err := s.resolver.Resolve(ctx, principal)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return ErrNotOwned
		}
		return fmt.Errorf("contract: resolve tenant: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("contract: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockContract(ctx, tx, contractID)
	if err != nil {
		return err
	}
	if current.TenantID != rec.ID {
		return ErrNotOwned
	}
	if current.Status != StatusDraft {
		return fmt.Errorf("%w: reject requires draft, contract is %s", ErrInvalidTransition, current.Status)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, contractID); err != nil {
		return fmt.Errorf("contract: delete draft: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("contract: commit reject: %w", err)
	}
	return nil
}

// Delete removes a contract in any state (staff surface) and unconditionally
// reverts the property to available.
func (s *Service) Delete(ctx context.Context, contractID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("contract: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var propertyID string
	err = tx.QueryRow(ctx, `DELETE FROM contracts WHERE id = $1 RETURNING property_id`, contractID).Scan(&propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrContractNotFound
		}
		return fmt.Errorf("contract: delete: %w", err)
	}

	if err := markProperty(ctx, tx, propertyID, "available"); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("contract: commit delete: %w", err)
	}
	return nil
}

// Terminate ends an active contract (staff surface) and frees the property.
func (s *Service) Terminate(ctx context.Context, contractID string) (Contract, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Contract{}, fmt.Errorf("contract: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockContract(ctx, tx, contractID)
	if err != nil {
		return Contract{}, err
	}
	if !CanTransition(current.Status, StatusTerminated) {
		return Contract{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusTerminated)
	}

	const updateSQL = `
		UPDATE contracts
		SET status = 'terminated', end_date = now(), updated_at = now()
		WHERE id = $1
		RETURNING ` + contractColumns

	terminated, err := scanContract(tx.QueryRow(ctx, updateSQL, contractID))
	if err != nil {
		return Contract{}, fmt.Errorf("contract: terminate: %w", err)
	}

	if err := markProperty(ctx, tx, terminated.PropertyID, "available"); err != nil {
		return Contract{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Contract{}, fmt.Errorf("contract: commit terminate: %w", err)
	}
	return terminated, nil
}

// Get fetches a contract. A non-empty tenantID constrains the read to that
// tenant's own contracts.
func (s *Service) Get(ctx context.Context, contractID, tenantID string) (Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	args := []any{contractID}
	if tenantID != "" {
		query += ` AND tenant_id = $2`
		args = append(args, tenantID)
	}

	rec, err := scanContract(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contract{}, ErrContractNotFound
		}
		return Contract{}, fmt.Errorf("contract: get: %w", err)
	}
	return rec, nil
}

// List returns contracts matching the filters plus the total count.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Contract, int, error) {
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

	query := `SELECT ` + contractColumns + ` FROM contracts` + where +
		fmt.Sprintf(" ORDER BY %s %s", sortColumn, order) + page

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("contract: list: %w", err)
	}
	defer rows.Close()

	contracts := []Contract{}
	for rows.Next() {
		rec, err := scanContract(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("contract: scan: %w", err)
		}
		contracts = append(contracts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("contract: iterate: %w", err)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contracts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("contract: count: %w", err)
	}

	return contracts, total, nil
}

// lockAvailableProperty locks the property row and returns its rent and
// charges, failing when the stored status is not available.
func lockAvailableProperty(ctx context.Context, tx pgx.Tx, propertyID string) (float64, float64, error) {
	var (
		status  string
		rent    float64
		charges float64
	)
	err := tx.QueryRow(ctx, `SELECT status::text, price, charges FROM properties WHERE id = $1 FOR UPDATE`, propertyID).
		Scan(&status, &rent, &charges)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrPropertyNotFound
		}
		return 0, 0, fmt.Errorf("contract: lock property: %w", err)
	}
	if status != "available" {
		return 0, 0, ErrPropertyUnavailable
	}
	return rent, charges, nil
}

func lockContract(ctx context.Context, tx pgx.Tx, contractID string) (Contract, error) {
	rec, err := scanContract(tx.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, contractID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contract{}, ErrContractNotFound
		}
		return Contract{}, fmt.Errorf("contract: lock: %w", err)
	}
	return rec, nil
}

func markProperty(ctx context.Context, tx pgx.Tx, propertyID, status string) error {
	if _, err := tx.Exec(ctx, `UPDATE properties SET status = $2::property_status, updated_at = now() WHERE id = $1`, propertyID, status); err != nil {
		return fmt.Errorf("contract: mark property %s: %w", status, err)
	}
	return nil
}

func scanContract(row pgx.Row) (Contract, error) {
	var rec Contract
	err := row.Scan(
		&rec.ID,
		&rec.PropertyID,
		&rec.TenantID,
		&rec.MonthlyRent,
		&rec.Charges,
		&rec.PaymentDay,
		&rec.GracePeriodDays,
		&rec.Status,
		&rec.SignedByTenant,
		&rec.SignedByLandlord,
		&rec.StartDate,
		&rec.EndDate,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return Contract{}, err
	}
	return rec, nil
}
