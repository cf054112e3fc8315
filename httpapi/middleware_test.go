package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"rentflow/auth"
	"rentflow/realtime"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]auth.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]auth.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, params auth.CreateUserParams) (auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == params.Email {
			return auth.User{}, auth.ErrDuplicateEmail
		}
	}
	user := auth.User{
		ID:           uuid.NewString(),
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: params.PasswordHash,
		Phone:        params.Phone,
		Role:         params.Role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByID(_ context.Context, userID string) (auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (f *fakeUserStore) ListUsers(_ context.Context, _, _ int) ([]auth.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]auth.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, len(users), nil
}

func newTestAuthService(t *testing.T) (*auth.Service, string) {
	t.Helper()
	svc := auth.NewService(newFakeUserStore(), nil, "test-secret")
	ctx := context.Background()
	if _, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "lea@example.com",
		Password: "correct horse",
		FullName: "Léa Martin",
		Role:     auth.RoleTenant,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.Login(ctx, auth.LoginRequest{Email: "lea@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return svc, result.Token
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" {
		t.Fatal("expected a generated request id")
	}
	if rec.Header().Get("x-request-id") != seen {
		t.Fatal("request id not echoed in response header")
	}

	// An incoming id is preserved for cross-system correlation.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("x-request-id", "upstream-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "upstream-42" {
		t.Fatalf("got %q", seen)
	}
}

func TestAuthMiddleware(t *testing.T) {
	svc, token := newTestAuthService(t)

	var principal auth.Principal
	handler := authMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = principalFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer token, got %d: %s", rec.Code, rec.Body.String())
	}
	if principal.Email != "lea@example.com" {
		t.Fatalf("got principal %+v", principal)
	}

	// EventSource clients pass the token as a query parameter.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/?token="+token, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with query token, got %d", rec.Code)
	}
}

func TestRequireBackoffice(t *testing.T) {
	handler := requireBackoffice(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	ctx := context.WithValue(req.Context(), principalKey, auth.Principal{Role: auth.RoleTenant})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant, got %d", rec.Code)
	}

	ctx = context.WithValue(req.Context(), principalKey, auth.Principal{Role: auth.RoleManager})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager, got %d", rec.Code)
	}
}

func TestMutationEvents(t *testing.T) {
	hub := realtime.NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe()
	defer sub.Close()

	handler := mutationEvents(hub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/api/web/properties", nil)
	ctx := context.WithValue(req.Context(), principalKey, auth.Principal{UserID: "u1", Role: auth.RoleManager})
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	select {
	case msg := <-sub.C:
		if msg.Event.Entity != "properties" || msg.Event.Action != "post" {
			t.Fatalf("got event %+v", msg.Event)
		}
		if msg.Event.ActorID != "u1" || msg.Event.Status != http.StatusCreated {
			t.Fatalf("got event %+v", msg.Event)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a mutation event")
	}

	// Reads and failed mutations stay silent.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/web/properties", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("DELETE", "/api/web/properties/9", nil))
	select {
	case msg := <-sub.C:
		t.Fatalf("unexpected event %+v", msg.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEntityFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/api/web/properties/123", "properties"},
		{"/api/mobile/payments/42/proof", "payments"},
		{"/api/auth/login", "login"},
		{"/health", "health"},
	}
	for _, tc := range cases {
		if got := entityFromPath(tc.path); got != tc.want {
			t.Fatalf("entityFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "bearer  abc123 ")
	if got := bearerToken(req); got != "abc123" {
		t.Fatalf("got %q", got)
	}
	req.Header.Set("Authorization", "Basic abc123")
	if got := bearerToken(req); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestStatusRecorderFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	if _, ok := interface{}(wrapped).(http.Flusher); !ok {
		t.Fatal("statusRecorder must keep Flusher for SSE")
	}
	wrapped.Flush()
	if !rec.Flushed {
		t.Fatal("flush not forwarded")
	}
}
