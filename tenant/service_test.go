package tenant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"rentflow/auth"
)

func principal(userID, email string) auth.Principal {
	return auth.Principal{
		UserID:   userID,
		Email:    email,
		FullName: "Marie Tenant",
		Role:     auth.RoleTenant,
	}
}

func TestResolve_ByUserID(t *testing.T) {
	repo := newFakeRepo()
	uid := "user-1"
	repo.seed(Tenant{ID: "t-1", FullName: "Marie Tenant", Email: "marie@example.com", UserID: &uid})

	svc := NewService(repo)
	rec, err := svc.Resolve(context.Background(), principal("user-1", "other@example.com"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec.ID != "t-1" {
		t.Fatalf("expected t-1, got %s", rec.ID)
	}
}

func TestResolve_EmailFallbackIsNormalized(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(Tenant{ID: "t-1", FullName: "Marie Tenant", Email: "marie@example.com"})

	svc := NewService(repo)
	rec, err := svc.Resolve(context.Background(), principal("user-1", "  MARIE@Example.com "))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec.ID != "t-1" {
		t.Fatalf("expected email fallback to match, got %s", rec.ID)
	}
}

func TestResolve_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Resolve(context.Background(), principal("user-1", "marie@example.com"))
	if !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestResolveOrCreate_BackfillsUserLink(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(Tenant{ID: "t-1", FullName: "Marie Tenant", Email: "marie@example.com"})

	svc := NewService(repo)
	rec, err := svc.ResolveOrCreate(context.Background(), principal("user-1", "marie@example.com"))
	if err != nil {
		t.Fatalf("resolve or create: %v", err)
	}
	if rec.UserID == nil || *rec.UserID != "user-1" {
		t.Fatalf("expected user link backfilled, got %+v", rec.UserID)
	}
}

func TestResolveOrCreate_CreatesFromProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	rec, err := svc.ResolveOrCreate(context.Background(), principal("user-1", "Marie@Example.com"))
	if err != nil {
		t.Fatalf("resolve or create: %v", err)
	}
	if rec.Email != "marie@example.com" {
		t.Fatalf("expected normalized email, got %q", rec.Email)
	}
	if rec.UserID == nil || *rec.UserID != "user-1" {
		t.Fatalf("expected user link on created row, got %+v", rec.UserID)
	}
}

func TestResolveOrCreate_RetriesOnInsertRace(t *testing.T) {
	repo := newFakeRepo()
	// Simulate a concurrent winner: the first Create fails with duplicate and
	// the winner's row becomes visible for the re-resolve.
	winner := Tenant{ID: "t-win", FullName: "Marie Tenant", Email: "marie@example.com"}
	repo.createHook = func() error {
		repo.seed(winner)
		return ErrDuplicateEmail
	}

	svc := NewService(repo)
	rec, err := svc.ResolveOrCreate(context.Background(), principal("user-1", "marie@example.com"))
	if err != nil {
		t.Fatalf("resolve or create: %v", err)
	}
	if rec.ID != "t-win" {
		t.Fatalf("expected the winner's row, got %s", rec.ID)
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected exactly one insert attempt, got %d", repo.createCalls)
	}
}

type fakeRepo struct {
	mu          sync.Mutex
	byID        map[string]Tenant
	nextID      int
	createHook  func() error
	createCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]Tenant)}
}

func (f *fakeRepo) seed(rec Tenant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[rec.ID] = rec
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return Tenant{}, ErrTenantNotFound
	}
	return rec, nil
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID string) (Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byID {
		if rec.UserID != nil && *rec.UserID == userID {
			return rec, nil
		}
	}
	return Tenant{}, ErrTenantNotFound
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byID {
		if NormalizeEmail(rec.Email) == NormalizeEmail(email) {
			return rec, nil
		}
	}
	return Tenant{}, ErrTenantNotFound
}

func (f *fakeRepo) Create(_ context.Context, params CreateParams) (Tenant, error) {
	f.mu.Lock()
	hook := f.createHook
	f.createCalls++
	f.mu.Unlock()

	if hook != nil {
		if err := hook(); err != nil {
			return Tenant{}, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byID {
		if NormalizeEmail(rec.Email) == NormalizeEmail(params.Email) {
			return Tenant{}, ErrDuplicateEmail
		}
	}
	f.nextID++
	rec := Tenant{
		ID:        fmt.Sprintf("t-%d", f.nextID),
		FullName:  params.FullName,
		Email:     params.Email,
		Phone:     params.Phone,
		UserID:    params.UserID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.byID[rec.ID] = rec
	return rec, nil
}

func (f *fakeRepo) LinkUser(_ context.Context, tenantID, userID string) (Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[tenantID]
	if !ok {
		return Tenant{}, ErrTenantNotFound
	}
	rec.UserID = &userID
	f.byID[tenantID] = rec
	return rec, nil
}

func (f *fakeRepo) Update(_ context.Context, id string, params UpdateParams) (Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return Tenant{}, ErrTenantNotFound
	}
	rec.FullName = params.FullName
	rec.Email = params.Email
	rec.Phone = params.Phone
	f.byID[id] = rec
	return rec, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return ErrTenantNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ string, _ bool, limit, offset int) ([]Tenant, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]Tenant, 0, len(f.byID))
	for _, rec := range f.byID {
		all = append(all, rec)
	}
	total := len(all)
	if offset >= total {
		return []Tenant{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
