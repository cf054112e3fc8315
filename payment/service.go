package payment

import (
	"context"
	"fmt"
	"time"
)

// Service exposes payment operations outside the billing run.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateManual registers a tenant-initiated payment for a future month. The
// target month must be strictly after the current one: no back-dating and no
// same-month self-service payments.
func (s *Service) CreateManual(ctx context.Context, params CreateManualParams) (Payment, error) {
	if params.ContractID == "" {
		return Payment{}, fmt.Errorf("payment: contract id required")
	}
	if params.Amount <= 0 {
		return Payment{}, fmt.Errorf("payment: amount must be positive")
	}
	if params.Month < time.January || params.Month > time.December {
		return Payment{}, fmt.Errorf("payment: invalid month %d", params.Month)
	}

	now := s.now()
	if params.Year < now.Year() || (params.Year == now.Year() && params.Month <= now.Month()) {
		return Payment{}, fmt.Errorf("payment: month must be after the current month")
	}

	due := time.Date(params.Year, params.Month, 1, 0, 0, 0, 0, time.UTC)
	return s.repo.Insert(ctx, params.ContractID, MonthLabel(due), params.Amount, due)
}

// Get fetches one payment.
func (s *Service) Get(ctx context.Context, id string) (Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// AddProof appends an uploaded evidence URL and re-opens review, even when a
// prior proof already existed.
func (s *Service) AddProof(ctx context.Context, id, url string) (Payment, error) {
	if url == "" {
		return Payment{}, fmt.Errorf("payment: proof url required")
	}
	return s.repo.AppendProof(ctx, id, url)
}

// Validate marks the payment paid after staff review of its proof.
func (s *Service) Validate(ctx context.Context, id string) (Payment, error) {
	return s.repo.MarkValidated(ctx, id, s.now())
}

// Reject records a review rejection and returns the payment to pending.
func (s *Service) Reject(ctx context.Context, id, reason string) (Payment, error) {
	if reason == "" {
		return Payment{}, fmt.Errorf("payment: rejection reason required")
	}
	return s.repo.MarkRejected(ctx, id, reason)
}

// List returns payments matching the filters plus a total for pagination.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Payment, int, error) {
	return s.repo.List(ctx, filters)
}
