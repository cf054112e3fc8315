package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentflow/maintenance"
	"rentflow/notification"
)

var maintenanceSortColumns = map[string]bool{
	"created_at": true,
	"urgency":    true,
	"status":     true,
}

type createMaintenanceBody struct {
	PropertyID  string `json:"property_id" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required"`
	Urgency     string `json:"urgency" validate:"omitempty,oneof=low medium high urgent"`
}

func (s *Server) handleCreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var body createMaintenanceBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	created, err := s.Maintenance.Create(r.Context(), maintenance.CreateParams{
		PropertyID:  body.PropertyID,
		TenantID:    owner.ID,
		Category:    body.Category,
		Description: body.Description,
		Urgency:     maintenance.Urgency(body.Urgency),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMaintenanceView(created))
}

func (s *Server) handleGetMaintenance(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Maintenance.Get(r.Context(), chi.URLParam(r, "id"), "")
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMaintenanceView(rec))
}

func (s *Server) handleGetOwnMaintenance(w http.ResponseWriter, r *http.Request) {
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	rec, err := s.Maintenance.Get(r.Context(), chi.URLParam(r, "id"), owner.ID)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMaintenanceView(rec))
}

type updateMaintenanceStatusBody struct {
	Status string `json:"status" validate:"required,oneof=reported pending in_progress completed cancelled"`
}

func (s *Server) handleUpdateMaintenanceStatus(w http.ResponseWriter, r *http.Request) {
	var body updateMaintenanceStatusBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	updated, err := s.Maintenance.UpdateStatus(r.Context(), chi.URLParam(r, "id"), maintenance.Status(body.Status))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	s.notifyTenant(r, updated.TenantID, notification.CreateParams{
		Title:      "Demande d'intervention mise à jour",
		Message:    "Votre demande d'intervention est passée au statut " + string(updated.Status) + ".",
		Type:       "maintenance",
		EntityType: "maintenance_request",
		EntityID:   updated.ID,
	})
	writeJSON(w, http.StatusOK, toMaintenanceView(updated))
}

func (s *Server) handleListMaintenance(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, maintenanceSortColumns, "created_at")
	requests, total, err := s.Maintenance.List(r.Context(), maintenance.ListFilters{
		TenantID:   r.URL.Query().Get("tenant_id"),
		PropertyID: r.URL.Query().Get("property_id"),
		Status:     maintenance.Status(r.URL.Query().Get("status")),
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toMaintenanceViews(requests), total)
}

func (s *Server) handleListOwnMaintenance(w http.ResponseWriter, r *http.Request) {
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	q := parseListQuery(r, maintenanceSortColumns, "created_at")
	requests, total, err := s.Maintenance.List(r.Context(), maintenance.ListFilters{
		TenantID:   owner.ID,
		Status:     maintenance.Status(r.URL.Query().Get("status")),
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toMaintenanceViews(requests), total)
}
