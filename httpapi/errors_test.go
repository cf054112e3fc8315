package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"rentflow/auth"
	"rentflow/contract"
	"rentflow/payment"
	"rentflow/tenant"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"weak password", auth.ErrWeakPassword, http.StatusBadRequest},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"revoked token", auth.ErrTokenRevoked, http.StatusUnauthorized},
		{"not owned", contract.ErrNotOwned, http.StatusForbidden},
		{"tenant missing", tenant.ErrTenantNotFound, http.StatusNotFound},
		{"contract missing", contract.ErrContractNotFound, http.StatusNotFound},
		{"duplicate email", auth.ErrDuplicateEmail, http.StatusConflict},
		{"duplicate period", payment.ErrDuplicatePeriod, http.StatusConflict},
		{"bad transition", contract.ErrInvalidTransition, http.StatusConflict},
		{"property taken", contract.ErrPropertyUnavailable, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestStatusFor_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("contract: accept: %w", contract.ErrInvalidTransition)
	if got := statusFor(err); got != http.StatusConflict {
		t.Fatalf("got %d", got)
	}
}

func TestStatusFor_PgErrorCodes(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"23505", http.StatusConflict},
		{"42501", http.StatusForbidden},
		{"P0001", http.StatusBadRequest},
		{"40001", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: tc.code})
		if got := statusFor(err); got != tc.want {
			t.Fatalf("code %s: got %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestUserMessage_CatalogueAndFallback(t *testing.T) {
	if msg := userMessage(payment.ErrDuplicatePeriod, http.StatusConflict); msg != "Un paiement existe déjà pour ce mois." {
		t.Fatalf("got %q", msg)
	}
	// Unknown errors never leak internals to the client.
	if msg := userMessage(errors.New("pq: deadlock detected"), http.StatusConflict); msg != statusMessages[http.StatusConflict] {
		t.Fatalf("got %q", msg)
	}
	if msg := userMessage(errors.New("boom"), 599); msg != statusMessages[http.StatusInternalServerError] {
		t.Fatalf("got %q", msg)
	}
}
