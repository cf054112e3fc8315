package maintenance

import (
	"context"
	"fmt"
)

// Service exposes the maintenance request surface.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create files a new request. Urgency defaults to medium.
func (s *Service) Create(ctx context.Context, params CreateParams) (Request, error) {
	if params.PropertyID == "" || params.TenantID == "" {
		return Request{}, fmt.Errorf("maintenance: property and tenant ids required")
	}
	if params.Category == "" || params.Description == "" {
		return Request{}, fmt.Errorf("maintenance: category and description required")
	}
	if params.Urgency == "" {
		params.Urgency = UrgencyMedium
	}
	if !params.Urgency.IsValid() {
		return Request{}, fmt.Errorf("maintenance: invalid urgency %q", params.Urgency)
	}
	return s.repo.Create(ctx, params)
}

// Get fetches one request. A non-empty tenantID constrains the read to that
// tenant's own requests.
func (s *Service) Get(ctx context.Context, id, tenantID string) (Request, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if tenantID != "" && rec.TenantID != tenantID {
		return Request{}, ErrRequestNotFound
	}
	return rec, nil
}

// UpdateStatus moves a request through the closed status set (staff surface).
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Request, error) {
	if !status.IsValid() {
		return Request{}, fmt.Errorf("maintenance: invalid status %q", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) AppendPhoto(ctx context.Context, id, url string) (Request, error) {
	if url == "" {
		return Request{}, fmt.Errorf("maintenance: photo url required")
	}
	return s.repo.AppendPhoto(ctx, id, url)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Request, int, error) {
	return s.repo.List(ctx, filters)
}
