package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"rentflow/auth"
	"rentflow/contract"
	"rentflow/maintenance"
	"rentflow/notification"
	"rentflow/payment"
	"rentflow/property"
	"rentflow/tenant"
)

type errorPayload struct {
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

// statusFor maps domain errors to HTTP statuses. Database errors that escape
// the repositories unmapped are translated by SQLSTATE here so constraint
// violations never surface as 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, contract.ErrNotOwned):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, tenant.ErrTenantNotFound),
		errors.Is(err, property.ErrPropertyNotFound),
		errors.Is(err, contract.ErrContractNotFound),
		errors.Is(err, contract.ErrPropertyNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, maintenance.ErrRequestNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, tenant.ErrDuplicateEmail),
		errors.Is(err, payment.ErrDuplicatePeriod),
		errors.Is(err, contract.ErrPropertyUnavailable),
		errors.Is(err, contract.ErrInvalidTransition):
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return http.StatusConflict
		case "42501":
			return http.StatusForbidden
		case "P0001":
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeStatusError(w, r, status, err)
}

// writeStatusError emits the error envelope for a known status. The internal
// error text never reaches the client; only the catalogue message does.
func writeStatusError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorEnvelope{Error: errorPayload{
		Message:   userMessage(err, status),
		Status:    status,
		RequestID: requestIDFrom(r.Context()),
	}}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
