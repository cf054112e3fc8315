package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

var billingNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func newEngine(repo *fakeBillingRepo) *BillingEngine {
	return NewBillingEngine(repo, nil).WithClock(func() time.Time { return billingNow })
}

func TestBillingRun_GeneratesCurrentMonth(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.contracts = []ActiveContract{
		{ID: "c-1", MonthlyRent: 800, Charges: 50},
		{ID: "c-2", MonthlyRent: 1200, Charges: 0},
	}

	summary, err := newEngine(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.PaymentsCreated != 2 {
		t.Fatalf("expected 2 payments created, got %d", summary.PaymentsCreated)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", summary.Errors)
	}

	label := MonthLabel(billingNow)
	p1 := repo.byPeriod["c-1|"+label]
	if p1.Amount != 850 {
		t.Fatalf("expected amount rent+charges=850, got %v", p1.Amount)
	}
	if p1.DueDate != time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("expected due date on the 1st, got %v", p1.DueDate)
	}
	if p1.Status != StatusPending {
		t.Fatalf("expected pending, got %s", p1.Status)
	}
}

func TestBillingRun_SecondRunIsIdempotent(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.contracts = []ActiveContract{{ID: "c-1", MonthlyRent: 800, Charges: 50}}
	engine := newEngine(repo)

	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.PaymentsCreated != 0 {
		t.Fatalf("second run created %d payments, want 0", summary.PaymentsCreated)
	}
	if got := len(repo.byPeriod); got != 1 {
		t.Fatalf("expected exactly one payment row, got %d", got)
	}
}

func TestBillingRun_AppliesLateFeeOnce(t *testing.T) {
	repo := newFakeBillingRepo()
	overdue := Payment{
		ID:          "p-1",
		ContractID:  "c-1",
		PeriodMonth: "February 2026",
		Amount:      1000,
		DueDate:     billingNow.AddDate(0, 0, -10),
		Status:      StatusPending,
	}
	repo.seed(overdue)

	engine := newEngine(repo)
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.LateFeesApplied != 1 {
		t.Fatalf("expected 1 late fee, got %d", summary.LateFeesApplied)
	}

	got := repo.paymentByID("p-1")
	if got.LateFee != 50 {
		t.Fatalf("expected late fee 50 (5%% of 1000), got %v", got.LateFee)
	}
	if got.Status != StatusOverdue {
		t.Fatalf("expected overdue, got %s", got.Status)
	}

	// A second run finds no candidate: late_fee is no longer zero.
	summary, err = engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.LateFeesApplied != 0 {
		t.Fatalf("second run applied %d fees, want 0", summary.LateFeesApplied)
	}
	if repo.paymentByID("p-1").LateFee != 50 {
		t.Fatal("late fee changed on second run")
	}
}

func TestBillingRun_SkipsPaidValidatedAndInGrace(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.seed(Payment{ID: "paid", Amount: 100, DueDate: billingNow.AddDate(0, 0, -10), Status: StatusPaid})
	repo.seed(Payment{ID: "validated", Amount: 100, DueDate: billingNow.AddDate(0, 0, -10), Status: StatusPending, ValidationStatus: ValidationValidated})
	repo.seed(Payment{ID: "in-grace", Amount: 100, DueDate: billingNow.AddDate(0, 0, -3), Status: StatusPending})

	summary, err := newEngine(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.LateFeesApplied != 0 {
		t.Fatalf("expected no late fees, got %d", summary.LateFeesApplied)
	}
}

func TestBillingRun_CollectsPerRowErrors(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.contracts = []ActiveContract{
		{ID: "c-bad", MonthlyRent: 800},
		{ID: "c-good", MonthlyRent: 900},
	}
	repo.insertErrFor = "c-bad"

	summary, err := newEngine(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.PaymentsCreated != 1 {
		t.Fatalf("expected the healthy contract billed, got %d", summary.PaymentsCreated)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "c-bad") {
		t.Fatalf("expected one error naming c-bad, got %v", summary.Errors)
	}
}

func TestBillingRun_UpstreamFetchFailure(t *testing.T) {
	repo := newFakeBillingRepo()
	repo.listContractsErr = errors.New("connection refused")

	_, err := newEngine(repo).Run(context.Background())
	if err == nil {
		t.Fatal("expected error when the contract fetch fails")
	}
}

type fakeBillingRepo struct {
	mu               sync.Mutex
	contracts        []ActiveContract
	byPeriod         map[string]*Payment
	nextID           int
	insertErrFor     string
	listContractsErr error
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{byPeriod: make(map[string]*Payment)}
}

func (f *fakeBillingRepo) seed(p Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ValidationStatus == "" {
		p.ValidationStatus = ValidationNotSubmitted
	}
	f.byPeriod[p.ContractID+"|"+p.PeriodMonth] = &p
}

func (f *fakeBillingRepo) paymentByID(id string) Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byPeriod {
		if p.ID == id {
			return *p
		}
	}
	return Payment{}
}

func (f *fakeBillingRepo) ListActiveContracts(_ context.Context) ([]ActiveContract, error) {
	if f.listContractsErr != nil {
		return nil, f.listContractsErr
	}
	return f.contracts, nil
}

func (f *fakeBillingRepo) PeriodExists(_ context.Context, contractID, periodMonth string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byPeriod[contractID+"|"+periodMonth]
	return ok, nil
}

func (f *fakeBillingRepo) Insert(_ context.Context, contractID, periodMonth string, amount float64, dueDate time.Time) (Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if contractID == f.insertErrFor {
		return Payment{}, errors.New("insert failed")
	}
	key := contractID + "|" + periodMonth
	if _, ok := f.byPeriod[key]; ok {
		return Payment{}, ErrDuplicatePeriod
	}
	f.nextID++
	p := Payment{
		ID:               fmt.Sprintf("p-%d", f.nextID),
		ContractID:       contractID,
		PeriodMonth:      periodMonth,
		Amount:           amount,
		DueDate:          dueDate,
		Status:           StatusPending,
		ValidationStatus: ValidationNotSubmitted,
	}
	f.byPeriod[key] = &p
	return p, nil
}

func (f *fakeBillingRepo) ListLateFeeCandidates(_ context.Context, cutoff time.Time) ([]Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []Payment{}
	for _, p := range f.byPeriod {
		if p.Status == StatusPaid || p.ValidationStatus == ValidationValidated {
			continue
		}
		if p.LateFee != 0 {
			continue
		}
		if p.DueDate.After(cutoff) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeBillingRepo) ApplyLateFee(_ context.Context, id string, fee float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.byPeriod {
		if p.ID == id && p.LateFee == 0 {
			p.LateFee = fee
			p.Status = StatusOverdue
		}
	}
	return nil
}

func (f *fakeBillingRepo) GetByID(_ context.Context, id string) (Payment, error) {
	p := f.paymentByID(id)
	if p.ID == "" {
		return Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakeBillingRepo) AppendProof(_ context.Context, id, url string) (Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byPeriod {
		if p.ID == id {
			p.ProofURLs = append(p.ProofURLs, url)
			p.ValidationStatus = ValidationPending
			return *p, nil
		}
	}
	return Payment{}, ErrPaymentNotFound
}

func (f *fakeBillingRepo) MarkValidated(_ context.Context, id string, paymentDate time.Time) (Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byPeriod {
		if p.ID == id {
			p.Status = StatusPaid
			p.ValidationStatus = ValidationValidated
			p.PaymentDate = &paymentDate
			p.RejectionReason = nil
			return *p, nil
		}
	}
	return Payment{}, ErrPaymentNotFound
}

func (f *fakeBillingRepo) MarkRejected(_ context.Context, id, reason string) (Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byPeriod {
		if p.ID == id {
			p.Status = StatusPending
			p.ValidationStatus = ValidationRejected
			p.RejectionReason = &reason
			return *p, nil
		}
	}
	return Payment{}, ErrPaymentNotFound
}

func (f *fakeBillingRepo) List(_ context.Context, _ ListFilters) ([]Payment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Payment{}
	for _, p := range f.byPeriod {
		out = append(out, *p)
	}
	return out, len(out), nil
}
