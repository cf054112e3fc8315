package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentflow/property"
)

var propertySortColumns = map[string]bool{
	"created_at": true,
	"title":      true,
	"city":       true,
	"price":      true,
	"status":     true,
}

type propertyBody struct {
	Title   string  `json:"title" validate:"required"`
	Address string  `json:"address" validate:"required"`
	City    string  `json:"city" validate:"required"`
	Price   float64 `json:"price" validate:"required,gt=0"`
	Charges float64 `json:"charges" validate:"gte=0"`
	OwnerID *string `json:"owner_id"`
	Status  string  `json:"status" validate:"omitempty,oneof=available rented maintenance"`
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var body propertyBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	created, err := s.Properties.Create(r.Context(), property.CreateParams{
		Title:   body.Title,
		Address: body.Address,
		City:    body.City,
		Price:   body.Price,
		Charges: body.Charges,
		OwnerID: body.OwnerID,
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyView(created))
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Properties.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyView(rec))
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var body propertyBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")
	if body.Status == "" {
		// Status omitted means keep the stored one.
		current, err := s.Properties.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, s.Logger, err)
			return
		}
		body.Status = string(current.StoredStatus)
	}
	updated, err := s.Properties.Update(r.Context(), id, property.UpdateParams{
		Title:   body.Title,
		Address: body.Address,
		City:    body.City,
		Price:   body.Price,
		Charges: body.Charges,
		Status:  property.Status(body.Status),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyView(updated))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.Properties.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, propertySortColumns, "created_at")
	filters := property.ListFilters{
		City:       r.URL.Query().Get("city"),
		Status:     property.Status(r.URL.Query().Get("status")),
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	}
	properties, total, err := s.Properties.List(r.Context(), filters)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toPropertyViews(properties), total)
}

// The mobile catalogue only shows properties a tenant could rent.
func (s *Server) handleListAvailableProperties(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, propertySortColumns, "created_at")
	filters := property.ListFilters{
		City:       r.URL.Query().Get("city"),
		Status:     property.StatusAvailable,
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	}
	properties, total, err := s.Properties.List(r.Context(), filters)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toPropertyViews(properties), total)
}
