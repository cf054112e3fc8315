package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
	// ErrTokenRevoked signals the token was invalidated by logout.
	ErrTokenRevoked = errors.New("auth: token revoked")
)

// Blocklist tracks revoked token ids until their natural expiry.
type Blocklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service handles authentication business logic.
type Service struct {
	repo      Repository
	blocklist Blocklist
	jwtSecret []byte
	now       func() time.Time
}

// LoginResult bundles the token and domain user returned after a successful login.
type LoginResult struct {
	Token string
	User  User
}

// NewService creates a new authentication service. blocklist may be nil, in
// which case logout is a no-op and tokens stay valid until expiry.
func NewService(repo Repository, blocklist Blocklist, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		blocklist: blocklist,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates a new user account. Self-service registration always
// yields a tenant; staff roles are assigned by an admin via the users surface.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if req.Email == "" || req.FullName == "" {
		return nil, fmt.Errorf("auth: email and full_name are required")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	role := Role(strings.TrimSpace(string(req.Role)))
	if role == "" {
		role = RoleTenant
	}
	if !isValidRole(role) {
		return nil, fmt.Errorf("auth: invalid role %q", role)
	}

	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     req.FullName,
		PasswordHash: string(passwordHash),
		Phone:        phone,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login authenticates a user and returns a JWT token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: generate token: %w", err)
	}

	return LoginResult{Token: token, User: user}, nil
}

// GetUserByID retrieves user information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns users for the admin console.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

// Refresh re-issues a token for a still-valid credential, revoking the old one.
func (s *Service) Refresh(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.parseClaims(ctx, tokenString)
	if err != nil {
		return "", err
	}

	userID, _ := claims["user_id"].(string)
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.revokeClaims(ctx, claims); err != nil {
		return "", err
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	return token, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseClaims(ctx, tokenString)
	if err != nil {
		return err
	}
	return s.revokeClaims(ctx, claims)
}

// VerifyToken validates a JWT token and returns the authenticated principal.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (Principal, error) {
	claims, err := s.parseClaims(ctx, tokenString)
	if err != nil {
		return Principal{}, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return Principal{}, fmt.Errorf("auth: invalid user_id in token")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return Principal{}, fmt.Errorf("auth: invalid role in token")
	}
	role := Role(roleStr)
	if !isValidRole(role) {
		return Principal{}, fmt.Errorf("auth: invalid role %q in token", roleStr)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return Principal{}, err
	}

	return Principal{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Role:     role,
	}, nil
}

func (s *Service) parseClaims(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token")
	}

	if s.blocklist != nil {
		if jti, _ := claims["jti"].(string); jti != "" {
			revoked, err := s.blocklist.IsRevoked(ctx, jti)
			if err != nil {
				return nil, fmt.Errorf("auth: check blocklist: %w", err)
			}
			if revoked {
				return nil, ErrTokenRevoked
			}
		}
	}

	return claims, nil
}

func (s *Service) revokeClaims(ctx context.Context, claims jwt.MapClaims) error {
	if s.blocklist == nil {
		return nil
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil
	}

	ttl := tokenLifetime
	if exp, ok := claims["exp"].(float64); ok {
		if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
			ttl = remaining
		}
	}

	if err := s.blocklist.Revoke(ctx, jti, ttl); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// generateToken creates a JWT token for the user.
func (s *Service) generateToken(userID string, role Role) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"jti":     uuid.NewString(),
		"exp":     now.Add(tokenLifetime).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func isValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleTenant:
		return true
	default:
		return false
	}
}
