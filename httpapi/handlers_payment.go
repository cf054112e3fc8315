package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rentflow/notification"
	"rentflow/payment"
)

var paymentSortColumns = map[string]bool{
	"due_date":     true,
	"created_at":   true,
	"amount":       true,
	"period_month": true,
	"status":       true,
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(rec))
}

func (s *Server) handleValidatePayment(w http.ResponseWriter, r *http.Request) {
	validated, err := s.Payments.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	s.notifyPaymentOwner(r, validated, notification.CreateParams{
		Title:      "Paiement validé",
		Message:    "Votre paiement de " + validated.PeriodMonth + " a été validé.",
		Type:       "payment",
		EntityType: "payment",
		EntityID:   validated.ID,
	})
	writeJSON(w, http.StatusOK, toPaymentView(validated))
}

type rejectPaymentBody struct {
	Reason string `json:"reason" validate:"required"`
}

func (s *Server) handleRejectPayment(w http.ResponseWriter, r *http.Request) {
	var body rejectPaymentBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	rejected, err := s.Payments.Reject(r.Context(), chi.URLParam(r, "id"), body.Reason)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	s.notifyPaymentOwner(r, rejected, notification.CreateParams{
		Title:      "Justificatif refusé",
		Message:    "Le justificatif de votre paiement de " + rejected.PeriodMonth + " a été refusé : " + body.Reason,
		Type:       "payment",
		EntityType: "payment",
		EntityID:   rejected.ID,
	})
	writeJSON(w, http.StatusOK, toPaymentView(rejected))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, paymentSortColumns, "due_date")
	payments, total, err := s.Payments.List(r.Context(), payment.ListFilters{
		ContractID: r.URL.Query().Get("contract_id"),
		TenantID:   r.URL.Query().Get("tenant_id"),
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toPaymentViews(payments), total)
}

type createPaymentBody struct {
	ContractID string  `json:"contract_id" validate:"required"`
	Year       int     `json:"year" validate:"required,gte=2000"`
	Month      int     `json:"month" validate:"required,gte=1,lte=12"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}

// Tenants can pre-declare a payment for a future month on their own contract.
func (s *Server) handleCreateManualPayment(w http.ResponseWriter, r *http.Request) {
	var body createPaymentBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	if _, err := s.Contracts.Get(r.Context(), body.ContractID, owner.ID); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	created, err := s.Payments.CreateManual(r.Context(), payment.CreateManualParams{
		ContractID: body.ContractID,
		Year:       body.Year,
		Month:      time.Month(body.Month),
		Amount:     body.Amount,
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentView(created))
}

func (s *Server) handleGetOwnPayment(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ownPayment(r, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentView(rec))
}

func (s *Server) handleListOwnPayments(w http.ResponseWriter, r *http.Request) {
	owner, err := s.resolveTenant(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	q := parseListQuery(r, paymentSortColumns, "due_date")
	payments, total, err := s.Payments.List(r.Context(), payment.ListFilters{
		TenantID:   owner.ID,
		ContractID: r.URL.Query().Get("contract_id"),
		SortColumn: q.SortBy,
		SortDesc:   q.SortDesc,
		Limit:      q.LimitOrAll(),
		Offset:     q.Offset(),
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toPaymentViews(payments), total)
}

// ownPayment fetches a payment and verifies it belongs to the caller's
// tenant. Payments on someone else's contract read as not found.
func (s *Server) ownPayment(r *http.Request, id string) (payment.Payment, error) {
	owner, err := s.resolveTenant(r)
	if err != nil {
		return payment.Payment{}, err
	}
	rec, err := s.Payments.Get(r.Context(), id)
	if err != nil {
		return payment.Payment{}, err
	}
	if _, err := s.Contracts.Get(r.Context(), rec.ContractID, owner.ID); err != nil {
		return payment.Payment{}, payment.ErrPaymentNotFound
	}
	return rec, nil
}

func (s *Server) notifyPaymentOwner(r *http.Request, p payment.Payment, params notification.CreateParams) {
	rec, err := s.Contracts.Get(r.Context(), p.ContractID, "")
	if err != nil {
		s.Logger.Error("notify payment owner", "payment_id", p.ID, "error", err)
		return
	}
	s.notifyTenant(r, rec.TenantID, params)
}
