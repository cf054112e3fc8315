package httpapi

import (
	"errors"
	"net/http"

	"rentflow/auth"
)

type registerBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

// Public registration always yields the tenant role; staff accounts are
// created by an admin through /api/web/users.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	user, err := s.Auth.Register(r.Context(), auth.RegisterRequest{
		Email:    body.Email,
		Password: body.Password,
		FullName: body.FullName,
		Phone:    body.Phone,
		Role:     auth.RoleTenant,
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*user))
}

type createStaffBody struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required"`
	FullName string    `json:"full_name" validate:"required"`
	Phone    string    `json:"phone"`
	Role     auth.Role `json:"role" validate:"required,oneof=admin manager tenant"`
}

func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var body createStaffBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	user, err := s.Auth.Register(r.Context(), auth.RegisterRequest{
		Email:    body.Email,
		Password: body.Password,
		FullName: body.FullName,
		Phone:    body.Phone,
		Role:     body.Role,
	})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*user))
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := s.decode(r, &body); err != nil {
		writeStatusError(w, r, http.StatusBadRequest, err)
		return
	}
	result, err := s.Auth.Login(r.Context(), auth.LoginRequest{Email: body.Email, Password: body.Password})
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: result.Token, User: toUserView(result.User)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeStatusError(w, r, http.StatusUnauthorized, errors.New("httpapi: missing token"))
		return
	}
	if err := s.Auth.Logout(r.Context(), token); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeStatusError(w, r, http.StatusUnauthorized, errors.New("httpapi: missing token"))
		return
	}
	refreshed, err := s.Auth.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": refreshed})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	user, err := s.Auth.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, map[string]bool{"created_at": true}, "created_at")
	users, total, err := s.Auth.ListUsers(r.Context(), q.LimitOrAll(), q.Offset())
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeList(w, q, toUserViews(users), total)
}
