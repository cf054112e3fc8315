package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

// handleCronDaily runs the billing passes. The scheduler authenticates with a
// shared secret header instead of a user token; the gate only applies when a
// secret is configured.
func (s *Server) handleCronDaily(w http.ResponseWriter, r *http.Request) {
	if s.CronSecret != "" {
		secret := r.Header.Get("x-cron-secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(s.CronSecret)) != 1 {
			writeStatusError(w, r, http.StatusUnauthorized, errors.New("httpapi: bad cron secret"))
			return
		}
	}

	summary, err := s.Billing.Run(r.Context())
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	s.Logger.Info("billing run",
		"payments_created", summary.PaymentsCreated,
		"late_fees_applied", summary.LateFeesApplied,
		"row_errors", len(summary.Errors))
	writeJSON(w, http.StatusOK, summary)
}
