package property

import (
	"context"
	"fmt"
)

// Service exposes the property CRUD surface. All reads carry the repository's
// occupancy projection.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Property, error) {
	if params.Title == "" || params.Address == "" || params.City == "" {
		return Property{}, fmt.Errorf("property: title, address and city required")
	}
	if params.Price < 0 || params.Charges < 0 {
		return Property{}, fmt.Errorf("property: negative amounts")
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) Get(ctx context.Context, id string) (Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Property, error) {
	if params.Title == "" || params.Address == "" || params.City == "" {
		return Property{}, fmt.Errorf("property: title, address and city required")
	}
	if !params.Status.IsValid() {
		return Property{}, fmt.Errorf("property: invalid status %q", params.Status)
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Property, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) AppendPhoto(ctx context.Context, id, url string) (Property, error) {
	if url == "" {
		return Property{}, fmt.Errorf("property: photo url required")
	}
	return s.repo.AppendPhoto(ctx, id, url)
}
