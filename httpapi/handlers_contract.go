package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentflow/contract"
	"rentflow/notification"
	"rentflow/tenant"
)

var contractSortColumns = map[string]bool{
	"created_at":   true,
	"start_date":   true,
	"monthly_rent": true,
	"status":       true,
}

// resolveTenant maps the authenticated principal to its tenant row for
// tenant-scoped reads.
func (s *Server) resolveTenant(r *http.Request) (tenant.Tenant, error) {
	principal, _ := principalFrom(r.Context())
	return s.Tenants.Resolve(r.Context(), principal)
}

type createContractBody struct {
	PropertyID      string  `json:"property_id" validate:"required"`
	TenantID        string  `json:"tenant_id" validate:"required"`
	MonthlyRent     float64 `json:"monthly_rent" validate:"gte=0"`
	Charges         float64 `json:"charges" validate:"gte=0"`
	PaymentDay      int     `json:"payment_day" validate:"gte=0,lte=28"`
	GracePeriodDays int     `json:"grace_period_days" validate:"gte=0"`
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var body createContractBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	created, err := s.Contracts.Create(r.Context(), contract.CreateParams{
		PropertyID:      body.PropertyID,
		TenantID:        body.TenantID,
		MonthlyRent:     body.MonthlyRent,
		Charges:         body.Charges,
		PaymentDay:      body.PaymentDay,
		GracePeriodDays: body.GracePeriodDays,
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractView(created))
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Contracts.Get(r.Context(), chi.URLParam(r, "id"), "")
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractView(rec))
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := s.Contracts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleTerminateContract(w http.ResponseWriter, r *http.Request) {
	terminated, err := s.Contracts.Terminate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	s.notifyTenant(r, terminated.TenantID, notification.CreateParams{
		Title:      "Contrat résilié",
		Message:    "Votre contrat de location a été résilié.",
		Type:       "contract",
		EntityType: "contract",
		EntityID:   terminated.ID,
	})
	writeJSON(w, http.StatusOK, toContractView(terminated))
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, contractSortColumns, "created_at")
	contracts, total, err := s.Contracts.List(r.Context(), contract.ListFilters{
		TenantID:   r.URL.Query().Get("tenant_id"),
		PropertyID: r.URL.Query().Get("property_id"),
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toContractViews(contracts), total)
}

type requestContractBody struct {
	PropertyID string `json:"property_id" validate:"required"`
}

func (s *Server) handleRequestContract(w http.ResponseWriter, r *http.Request) {
	var body requestContractBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	principal, _ := principalFrom(r.Context())
	created, err := s.Contracts.Request(r.Context(), principal, body.PropertyID)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractView(created))
}

func (s *Server) handleGetOwnContract(w http.ResponseWriter, r *http.Request) {
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	rec, err := s.Contracts.Get(r.Context(), chi.URLParam(r, "id"), owner.ID)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractView(rec))
}

func (s *Server) handleListOwnContracts(w http.ResponseWriter, r *http.Request) {
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	q := parseListQuery(r, contractSortColumns, "created_at")
	contracts, total, err := s.Contracts.List(r.Context(), contract.ListFilters{
		TenantID:   owner.ID,
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toContractViews(contracts), total)
}

func (s *Server) handleAcceptContract(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	accepted, err := s.Contracts.Accept(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	s.Notifications.Notify(r.Context(), notification.CreateParams{
		UserID:     principal.UserID,
		Title:      "Contrat activé",
		Message:    "Votre contrat de location est actif. Le premier loyer est dû le mois prochain.",
		Type:       "contract",
		EntityType: "contract",
		EntityID:   accepted.ID,
	})
	writeJSON(w, http.StatusOK, toContractView(accepted))
}

func (s *Server) handleRejectContract(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	if err := s.Contracts.Reject(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// notifyTenant resolves a tenant row to its linked user and drops a
// best-effort notification. Tenants without an account are skipped.
func (s *Server) notifyTenant(r *http.Request, tenantID string, params notification.CreateParams) {
	rec, err := s.Tenants.Get(r.Context(), tenantID)
	if err != nil || rec.UserID == nil {
		if err != nil {
			s.Logger.Error("notify tenant", "tenant_id", tenantID, "error", fmt.Errorf("httpapi: resolve tenant user: %w", err))
		}
		return
	}
	params.UserID = *rec.UserID
	s.Notifications.Notify(r.Context(), params)
}
