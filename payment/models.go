package payment

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
	StatusPartial   Status = "partial"
)

// ValidationStatus tracks human review of uploaded proof, independent of the
// payment's own lifecycle.
type ValidationStatus string

const (
	ValidationNotSubmitted ValidationStatus = "not_submitted"
	ValidationPending      ValidationStatus = "pending"
	ValidationValidated    ValidationStatus = "validated"
	ValidationRejected     ValidationStatus = "rejected"
)

// Payment mirrors the payments table. (contract_id, period_month) is unique.
type Payment struct {
	ID               string
	ContractID       string
	PeriodMonth      string
	Amount           float64
	DueDate          time.Time
	Status           Status
	ValidationStatus ValidationStatus
	LateFee          float64
	ProofURLs        []string
	RejectionReason  *string
	PaymentDate      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MonthLabel renders the human-readable month key for a payment period,
// e.g. "January 2026". It doubles as the uniqueness key per contract.
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}

// CreateManualParams describes a tenant-initiated payment for a future month.
type CreateManualParams struct {
	ContractID string
	Year       int
	Month      time.Month
	Amount     float64
}

// ListFilters scopes payment listings.
type ListFilters struct {
	ContractID string
	TenantID   string
	SortColumn string
	SortDesc   bool
	Limit      int
	Offset     int
}

// LateFeeRate is the flat penalty applied once to an overdue payment.
const LateFeeRate = 0.05

// GracePeriodDays is the fixed accrual grace window.
const GracePeriodDays = 5
