package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentflow/tenant"
)

var tenantSortColumns = map[string]bool{
	"created_at": true,
	"full_name":  true,
	"email":      true,
}

type tenantBody struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
}

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var body tenantBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	created, err := s.Tenants.Create(r.Context(), tenant.CreateParams{
		FullName: body.FullName,
		Email:    body.Email,
		Phone:    body.Phone,
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTenantView(created))
}

func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Tenants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantView(rec))
}

func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	var body tenantBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	updated, err := s.Tenants.Update(r.Context(), chi.URLParam(r, "id"), tenant.UpdateParams{
		FullName: body.FullName,
		Email:    body.Email,
		Phone:    body.Phone,
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantView(updated))
}

func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := s.Tenants.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, tenantSortColumns, "created_at")
	tenants, total, err := s.Tenants.List(r.Context(), q.SortBy, q.SortDesc, q.LimitOrAll(), q.Offset())
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toTenantViews(tenants), total)
}
