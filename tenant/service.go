package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentflow/auth"
)

// Service resolves authenticated principals to tenant rows and exposes the
// staff CRUD surface.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NormalizeEmail is the canonical form used for tenant email matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Resolve maps a principal to its tenant record, by user id first and then by
// normalized email. Returns ErrTenantNotFound when neither matches.
func (s *Service) Resolve(ctx context.Context, principal auth.Principal) (Tenant, error) {
	rec, err := s.repo.GetByUserID(ctx, principal.UserID)
	switch {
	case err == nil:
		return rec, nil
	case !errors.Is(err, ErrTenantNotFound):
		return Tenant{}, err
	}

	return s.repo.GetByEmail(ctx, NormalizeEmail(principal.Email))
}

// ResolveOrCreate behaves like Resolve but creates the tenant on a miss,
// seeding it from the principal's profile. A tenant found by email without a
// user link gets the link backfilled. A create losing the race to a concurrent
// request re-resolves instead of failing.
func (s *Service) ResolveOrCreate(ctx context.Context, principal auth.Principal) (Tenant, error) {
	rec, err := s.Resolve(ctx, principal)
	switch {
	case err == nil:
		if rec.UserID == nil || *rec.UserID == "" {
			return s.repo.LinkUser(ctx, rec.ID, principal.UserID)
		}
		return rec, nil
	case !errors.Is(err, ErrTenantNotFound):
		return Tenant{}, err
	}

	userID := principal.UserID
	created, err := s.repo.Create(ctx, CreateParams{
		FullName: principal.FullName,
		Email:    NormalizeEmail(principal.Email),
		Phone:    principal.Phone,
		UserID:   &userID,
	})
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrDuplicateEmail) {
		return Tenant{}, err
	}

	// Lost the insert race; the winner's row is authoritative.
	return s.Resolve(ctx, principal)
}

// Create registers a tenant explicitly (staff surface).
func (s *Service) Create(ctx context.Context, params CreateParams) (Tenant, error) {
	if params.FullName == "" {
		return Tenant{}, fmt.Errorf("tenant: full_name required")
	}
	if params.Email == "" {
		return Tenant{}, fmt.Errorf("tenant: email required")
	}
	params.Email = NormalizeEmail(params.Email)
	return s.repo.Create(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Tenant, error) {
	if params.FullName == "" || params.Email == "" {
		return Tenant{}, fmt.Errorf("tenant: full_name and email required")
	}
	params.Email = NormalizeEmail(params.Email)
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, sortColumn string, desc bool, limit, offset int) ([]Tenant, int, error) {
	return s.repo.List(ctx, sortColumn, desc, limit, offset)
}
