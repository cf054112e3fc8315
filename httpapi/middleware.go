package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentflow/auth"
	"rentflow/realtime"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	principalKey contextKey = "principal"
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func principalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

// requestIDMiddleware tags every request with an id, honoring an incoming
// x-request-id so callers can correlate across systems.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("x-request-id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("x-request-id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"request_id", requestIDFrom(r.Context()))
		})
	}
}

// authMiddleware resolves the bearer token to a Principal. SSE clients cannot
// set headers from EventSource, so a token query parameter is accepted too.
func authMiddleware(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				writeStatusError(w, r, http.StatusUnauthorized, errors.New("httpapi: missing token"))
				return
			}
			principal, err := svc.VerifyToken(r.Context(), token)
			if err != nil {
				writeStatusError(w, r, http.StatusUnauthorized, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// requireBackoffice gates routes to admin and manager roles.
func requireBackoffice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := principalFrom(r.Context())
		if !ok || !principal.Role.IsBackoffice() {
			writeStatusError(w, r, http.StatusForbidden, errors.New("httpapi: backoffice role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFrom(r.Context())
			if !ok || principal.Role != role {
				writeStatusError(w, r, http.StatusForbidden, errors.New("httpapi: insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// mutationEvents publishes a realtime event after every successful mutating
// request. The entity name is taken from the path, so new resources get
// events without per-handler wiring.
func mutationEvents(hub *realtime.Hub) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if !isMutation(r.Method) || rec.status >= http.StatusBadRequest {
				return
			}
			event := realtime.Event{
				Type:   "mutation",
				Action: strings.ToLower(r.Method),
				Entity: entityFromPath(r.URL.Path),
				Path:   r.URL.Path,
				Status: rec.status,
			}
			if principal, ok := principalFrom(r.Context()); ok {
				event.ActorID = principal.UserID
			}
			hub.Publish(event)
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// entityFromPath extracts the resource name from paths like
// /api/web/properties/123 or /api/mobile/payments/42/proof.
func entityFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if part == "web" || part == "mobile" || part == "auth" || part == "cron" {
			if i+1 < len(parts) {
				return parts[i+1]
			}
			return part
		}
	}
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
