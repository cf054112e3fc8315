package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrPaymentNotFound is returned when no payment row matches.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrDuplicatePeriod signals a second payment for the same (contract, month).
	ErrDuplicatePeriod = errors.New("payment: period already billed")
)

// ActiveContract is the slice of a contract the billing engine needs.
type ActiveContract struct {
	ID          string
	MonthlyRent float64
	Charges     float64
}

// Repository defines the data access for payments and the billing engine.
type Repository interface {
	GetByID(ctx context.Context, id string) (Payment, error)
	Insert(ctx context.Context, contractID, periodMonth string, amount float64, dueDate time.Time) (Payment, error)
	AppendProof(ctx context.Context, id, url string) (Payment, error)
	MarkValidated(ctx context.Context, id string, paymentDate time.Time) (Payment, error)
	MarkRejected(ctx context.Context, id, reason string) (Payment, error)
	List(ctx context.Context, filters ListFilters) ([]Payment, int, error)

	ListActiveContracts(ctx context.Context) ([]ActiveContract, error)
	PeriodExists(ctx context.Context, contractID, periodMonth string) (bool, error)
	ListLateFeeCandidates(ctx context.Context, cutoff time.Time) ([]Payment, error)
	ApplyLateFee(ctx context.Context, id string, fee float64) error
}

const paymentColumns = `id, contract_id, period_month, amount, due_date, status,
	validation_status, late_fee, proof_urls, rejection_reason, payment_date,
	created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	rec, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, fmt.Errorf("payment: get: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) Insert(ctx context.Context, contractID, periodMonth string, amount float64, dueDate time.Time) (Payment, error) {
	const insertSQL = `
		INSERT INTO payments (contract_id, period_month, amount, due_date, status, validation_status)
		VALUES ($1, $2, $3, $4, 'pending', 'not_submitted')
		RETURNING ` + paymentColumns

	rec, err := scanPayment(r.pool.QueryRow(ctx, insertSQL, contractID, periodMonth, amount, dueDate))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Payment{}, ErrDuplicatePeriod
		}
		return Payment{}, fmt.Errorf("payment: insert: %w", err)
	}
	return rec, nil
}

// AppendProof accumulates a proof URL and re-opens human review.
func (r *PGRepository) AppendProof(ctx context.Context, id, url string) (Payment, error) {
	const updateSQL = `
		UPDATE payments
		SET proof_urls = array_append(proof_urls, $2),
		    validation_status = 'pending',
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + paymentColumns

	rec, err := scanPayment(r.pool.QueryRow(ctx, updateSQL, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, fmt.Errorf("payment: append proof: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) MarkValidated(ctx context.Context, id string, paymentDate time.Time) (Payment, error) {
	const updateSQL = `
		UPDATE payments
		SET status = 'paid',
		    validation_status = 'validated',
		    payment_date = $2,
		    rejection_reason = NULL,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + paymentColumns

	rec, err := scanPayment(r.pool.QueryRow(ctx, updateSQL, id, paymentDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, fmt.Errorf("payment: validate: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) MarkRejected(ctx context.Context, id, reason string) (Payment, error) {
	const updateSQL = `
		UPDATE payments
		SET validation_status = 'rejected',
		    status = 'pending',
		    rejection_reason = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + paymentColumns

	rec, err := scanPayment(r.pool.QueryRow(ctx, updateSQL, id, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, fmt.Errorf("payment: reject: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Payment, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.ContractID != "" {
		args = append(args, filters.ContractID)
		where += fmt.Sprintf(" AND p.contract_id = $%d", len(args))
	}
	if filters.TenantID != "" {
		args = append(args, filters.TenantID)
		where += fmt.Sprintf(" AND c.tenant_id = $%d", len(args))
	}

	sortColumn := filters.SortColumn
	if sortColumn == "" {
		sortColumn = "due_date"
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

	cols := "p.id, p.contract_id, p.period_month, p.amount, p.due_date, p.status, " +
		"p.validation_status, p.late_fee, p.proof_urls, p.rejection_reason, p.payment_date, " +
		"p.created_at, p.updated_at"
	query := `SELECT ` + cols + ` FROM payments p JOIN contracts c ON c.id = p.contract_id` + where +
		fmt.Sprintf(" ORDER BY p.%s %s", sortColumn, order) + page

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("payment: list: %w", err)
	}
	defer rows.Close()

	payments := []Payment{}
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("payment: scan: %w", err)
		}
		payments = append(payments, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("payment: iterate: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM payments p JOIN contracts c ON c.id = p.contract_id` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("payment: count: %w", err)
	}

	return payments, total, nil
}

func (r *PGRepository) ListActiveContracts(ctx context.Context) ([]ActiveContract, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, monthly_rent, charges FROM contracts WHERE status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("payment: list active contracts: %w", err)
	}
	defer rows.Close()

	contracts := []ActiveContract{}
	for rows.Next() {
		var c ActiveContract
		if err := rows.Scan(&c.ID, &c.MonthlyRent, &c.Charges); err != nil {
			return nil, fmt.Errorf("payment: scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payment: iterate contracts: %w", err)
	}
	return contracts, nil
}

func (r *PGRepository) PeriodExists(ctx context.Context, contractID, periodMonth string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE contract_id = $1 AND period_month = $2)`,
		contractID, periodMonth).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("payment: period exists: %w", err)
	}
	return exists, nil
}

// ListLateFeeCandidates selects never-penalized payments past the grace
// cutoff that are neither paid nor validated.
func (r *PGRepository) ListLateFeeCandidates(ctx context.Context, cutoff time.Time) ([]Payment, error) {
	const query = `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status <> 'paid'
		  AND validation_status <> 'validated'
		  AND late_fee = 0
		  AND due_date <= $1
	`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("payment: list late candidates: %w", err)
	}
	defer rows.Close()

	payments := []Payment{}
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("payment: scan candidate: %w", err)
		}
		payments = append(payments, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payment: iterate candidates: %w", err)
	}
	return payments, nil
}

// ApplyLateFee stamps the penalty once; the late_fee = 0 guard makes a
// concurrent or repeated run a no-op.
func (r *PGRepository) ApplyLateFee(ctx context.Context, id string, fee float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET late_fee = $2, status = 'overdue', updated_at = now()
		WHERE id = $1 AND late_fee = 0
	`, id, fee)
	if err != nil {
		return fmt.Errorf("payment: apply late fee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already penalized by an earlier run.
		return nil
	}
	return nil
}

func scanPayment(row pgx.Row) (Payment, error) {
	var rec Payment
	err := row.Scan(
		&rec.ID,
		&rec.ContractID,
		&rec.PeriodMonth,
		&rec.Amount,
		&rec.DueDate,
		&rec.Status,
		&rec.ValidationStatus,
		&rec.LateFee,
		&rec.ProofURLs,
		&rec.RejectionReason,
		&rec.PaymentDate,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return Payment{}, err
	}
	return rec, nil
}
