package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// BillingSummary reports the outcome of one billing run. Per-row failures are
// collected rather than aborting the batch.
type BillingSummary struct {
	PaymentsCreated int      `json:"paymentsCreated"`
	LateFeesApplied int      `json:"lateFeesApplied"`
	Errors          []string `json:"errors"`
}

// BillingEngine runs the scheduled billing passes: monthly rent generation
// and late-fee accrual. Both passes are idempotent and safe to re-run daily.
type BillingEngine struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewBillingEngine(repo Repository, logger *slog.Logger) *BillingEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillingEngine{repo: repo, logger: logger, now: time.Now}
}

func (e *BillingEngine) WithClock(now func() time.Time) *BillingEngine {
	e.now = now
	return e
}

// Run executes both passes and always returns a summary. The error return is
// non-nil only when an upstream fetch fails, not for per-row failures.
func (e *BillingEngine) Run(ctx context.Context) (BillingSummary, error) {
	summary := BillingSummary{Errors: []string{}}

	if err := e.generateMonthly(ctx, &summary); err != nil {
		return summary, err
	}
	if err := e.accrueLateFees(ctx, &summary); err != nil {
		return summary, err
	}

	e.logger.Info("billing run complete",
		"payments_created", summary.PaymentsCreated,
		"late_fees_applied", summary.LateFeesApplied,
		"errors", len(summary.Errors))
	return summary, nil
}

// generateMonthly creates the current month's rent payment for every active
// contract that lacks one. The existence check makes re-runs no-ops; the
// (contract_id, period_month) unique constraint is the backstop against races.
func (e *BillingEngine) generateMonthly(ctx context.Context, summary *BillingSummary) error {
	contracts, err := e.repo.ListActiveContracts(ctx)
	if err != nil {
		return fmt.Errorf("payment: billing fetch contracts: %w", err)
	}

	now := e.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	label := MonthLabel(monthStart)

	for _, c := range contracts {
		exists, err := e.repo.PeriodExists(ctx, c.ID, label)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("contract %s: %v", c.ID, err))
			continue
		}
		if exists {
			continue
		}

		amount := c.MonthlyRent + c.Charges
		if _, err := e.repo.Insert(ctx, c.ID, label, amount, monthStart); err != nil {
			if errors.Is(err, ErrDuplicatePeriod) {
				// Concurrent run won the insert; the month is covered.
				continue
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("contract %s: %v", c.ID, err))
			continue
		}
		summary.PaymentsCreated++
	}

	return nil
}

// accrueLateFees applies the flat penalty once to payments past the grace
// cutoff. The late_fee = 0 guard ensures the fee is only ever applied once,
// even if the payment stays unpaid afterwards.
func (e *BillingEngine) accrueLateFees(ctx context.Context, summary *BillingSummary) error {
	cutoff := e.now().AddDate(0, 0, -GracePeriodDays)

	candidates, err := e.repo.ListLateFeeCandidates(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("payment: billing fetch candidates: %w", err)
	}

	for _, p := range candidates {
		fee := p.Amount * LateFeeRate
		if err := e.repo.ApplyLateFee(ctx, p.ID, fee); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("payment %s: %v", p.ID, err))
			continue
		}
		summary.LateFeesApplied++
	}

	return nil
}
