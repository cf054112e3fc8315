package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"rentflow/auth"
	"rentflow/contract"
	"rentflow/maintenance"
	"rentflow/notification"
	"rentflow/payment"
	"rentflow/property"
	"rentflow/realtime"
	"rentflow/storage"
	"rentflow/tenant"
)

// Server bundles the domain services behind the HTTP surface.
type Server struct {
	Logger        *slog.Logger
	Auth          *auth.Service
	Tenants       *tenant.Service
	Properties    *property.Service
	Contracts     *contract.Service
	Payments      *payment.Service
	Billing       *payment.BillingEngine
	Maintenance   *maintenance.Service
	Notifications *notification.Service
	Hub           *realtime.Hub
	Uploader      storage.Uploader
	CronSecret    string

	validate *validator.Validate
}

func NewServer(s Server) *Server {
	s.validate = validator.New()
	return &s
}

// Router assembles the full route tree. Three surfaces share the domain
// services: /api/web for backoffice staff, /api/mobile for tenants, and
// /api/auth for the credential flows.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(logMiddleware(s.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/refresh", s.handleRefresh)
		r.With(authMiddleware(s.Auth)).Get("/profile", s.handleProfile)
	})

	r.Route("/api/web", func(r chi.Router) {
		r.Use(authMiddleware(s.Auth))
		r.Use(requireBackoffice)
		r.Use(mutationEvents(s.Hub))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.With(requireRole(auth.RoleAdmin)).Post("/", s.handleCreateStaff)
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.handleListProperties)
			r.Post("/", s.handleCreateProperty)
			r.Get("/{id}", s.handleGetProperty)
			r.Put("/{id}", s.handleUpdateProperty)
			r.Delete("/{id}", s.handleDeleteProperty)
			r.Post("/{id}/photos", s.handleUploadPropertyPhoto)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", s.handleListTenants)
			r.Post("/", s.handleCreateTenant)
			r.Get("/{id}", s.handleGetTenant)
			r.Put("/{id}", s.handleUpdateTenant)
			r.Delete("/{id}", s.handleDeleteTenant)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", s.handleListContracts)
			r.Post("/", s.handleCreateContract)
			r.Get("/{id}", s.handleGetContract)
			r.Delete("/{id}", s.handleDeleteContract)
			r.Post("/{id}/terminate", s.handleTerminateContract)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", s.handleListPayments)
			r.Get("/{id}", s.handleGetPayment)
			r.Post("/{id}/validate", s.handleValidatePayment)
			r.Post("/{id}/reject", s.handleRejectPayment)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/", s.handleListMaintenance)
			r.Get("/{id}", s.handleGetMaintenance)
			r.Put("/{id}/status", s.handleUpdateMaintenanceStatus)
		})

		r.Post("/documents/{entityType}/{entityID}", s.handleUploadDocument)

		s.mountNotificationRoutes(r)
	})

	r.Route("/api/mobile", func(r chi.Router) {
		r.Use(authMiddleware(s.Auth))
		r.Use(requireRole(auth.RoleTenant))
		r.Use(mutationEvents(s.Hub))

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.handleListAvailableProperties)
			r.Get("/{id}", s.handleGetProperty)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", s.handleListOwnContracts)
			r.Post("/", s.handleRequestContract)
			r.Get("/{id}", s.handleGetOwnContract)
			r.Post("/{id}/accept", s.handleAcceptContract)
			r.Post("/{id}/reject", s.handleRejectContract)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", s.handleListOwnPayments)
			r.Post("/", s.handleCreateManualPayment)
			r.Get("/{id}", s.handleGetOwnPayment)
			r.Post("/{id}/proof", s.handleUploadPaymentProof)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/", s.handleListOwnMaintenance)
			r.Post("/", s.handleCreateMaintenance)
			r.Get("/{id}", s.handleGetOwnMaintenance)
			r.Post("/{id}/photos", s.handleUploadMaintenancePhoto)
		})

		s.mountNotificationRoutes(r)
	})

	r.Post("/api/cron/daily", s.handleCronDaily)

	r.With(authMiddleware(s.Auth)).Get("/realtime/stream", s.handleStream)

	return r
}

// Notifications belong to the authenticated user on both surfaces.
func (s *Server) mountNotificationRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.handleListNotifications)
		r.Get("/unread-count", s.handleUnreadCount)
		r.Post("/{id}/read", s.handleMarkNotificationRead)
		r.Post("/read-all", s.handleMarkAllNotificationsRead)
	})
}
