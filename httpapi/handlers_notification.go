package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	q := parseListQuery(r, map[string]bool{"created_at": true}, "created_at")
	notifications, total, err := s.Notifications.ListForUser(r.Context(), principal.UserID, q.LimitOrAll(), q.Offset())
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toNotificationViews(notifications), total)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	count, err := s.Notifications.UnreadCount(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	if err := s.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id"), principal.UserID); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	if err := s.Notifications.MarkAllRead(r.Context(), principal.UserID); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
