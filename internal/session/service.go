// Package session keeps the customer and admin sessions in durable storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ssbags/storefront/internal/domain"
	"github.com/ssbags/storefront/internal/storage"
	apperrors "github.com/ssbags/storefront/pkg/errors"
	"github.com/ssbags/storefront/pkg/logger"
	"github.com/ssbags/storefront/pkg/validator"
)

// Login failure messages shown to the user.
const (
	MsgInvalidCredentials = "Invalid email or password. Please try again."
	MsgNotAdmin           = "Access denied. You do not have admin privileges."
	MsgTooManyAttempts    = "Too many login attempts. Please try again later."
)

// Authenticator exchanges credentials with the backend.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.User, string, error)
	Register(ctx context.Context, reg domain.Registration) error
	AdminLogin(ctx context.Context, creds domain.Credentials) (string, error)
}

// CartClearer empties the cart on logout.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// RegisterForm is the registration form as the user filled it in.
type RegisterForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,pkphone"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required,eqfield=Password"`
}

type adminLoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Service is the session store. The customer session is the user and token
// pair; the admin session is a token of its own.
type Service struct {
	mu         sync.RWMutex
	store      storage.Store
	auth       Authenticator
	cart       CartClearer
	logger     *slog.Logger
	user       *domain.User
	token      string
	adminToken string
}

// NewService creates a signed-out session store. Call Load to restore a
// stored session.
func NewService(store storage.Store, auth Authenticator, cart CartClearer, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		auth:   auth,
		cart:   cart,
		logger: logger,
	}
}

// Load restores stored sessions. A user without a token, or a token without
// a user, is not a session and is ignored.
func (s *Service) Load(ctx context.Context) error {
	var user domain.User
	hasUser, err := s.read(ctx, storage.KeyUser, func(b []byte) error {
		return json.Unmarshal(b, &user)
	})
	if err != nil {
		return err
	}
	var token string
	hasToken, err := s.read(ctx, storage.KeyToken, func(b []byte) error {
		token = string(b)
		return nil
	})
	if err != nil {
		return err
	}
	var adminToken string
	if _, err := s.read(ctx, storage.KeyAdminToken, func(b []byte) error {
		adminToken = string(b)
		return nil
	}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminToken = adminToken
	s.user, s.token = nil, ""

	switch {
	case hasUser && hasToken && token != "":
		s.user, s.token = &user, token
	case hasUser || hasToken:
		s.logger.WarnContext(ctx, "ignoring incomplete stored session",
			slog.Bool("has_user", hasUser),
			slog.Bool("has_token", hasToken),
		)
	}
	return nil
}

// read fetches key and hands the value to decode. found is false when the
// key is absent. An undecodable value is logged and reported as absent.
func (s *Service) read(ctx context.Context, key string, decode func([]byte) error) (bool, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := decode(data); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable stored value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	return true, nil
}

// Login exchanges credentials for a session and stores user and token in one
// write. On any failure the previous session is left untouched.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, apperrors.InvalidInput("Email and password required")
	}

	user, token, err := s.auth.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		return domain.User{}, loginError(err, false)
	}
	if token == "" {
		return domain.User{}, apperrors.Unauthorized("login response carried no token")
	}

	userEntry, err := storage.JSONEntry(storage.KeyUser, user)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.store.Set(ctx, userEntry, storage.Entry{Key: storage.KeyToken, Value: []byte(token)}); err != nil {
		return domain.User{}, fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.user, s.token = &user, token
	s.mu.Unlock()

	s.logger.InfoContext(logger.WithUserID(ctx, user.IDString()), "user logged in")
	return user, nil
}

// Logout ends the customer session and empties the cart.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.KeyUser, storage.KeyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.mu.Lock()
	s.user, s.token = nil, ""
	s.mu.Unlock()

	if s.cart != nil {
		if err := s.cart.Clear(ctx); err != nil {
			return fmt.Errorf("clear cart on logout: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "user logged out")
	return nil
}

// IsAuthenticated reports whether a user is signed in. The token is not checked.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns the signed-in user.
func (s *Service) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// Token returns the customer bearer token, or "".
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// TokenClaims decodes the customer token without verifying its signature.
func (s *Service) TokenClaims() (domain.Claims, error) {
	token := s.Token()
	if token == "" {
		return domain.Claims{}, apperrors.Unauthorized("not logged in")
	}
	return DecodeClaims(token)
}

// DecodeClaims reads subject, role and expiry from a JWT without verifying it.
func DecodeClaims(token string) (domain.Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Claims{}, apperrors.InvalidInput("token is not a JWT: " + err.Error())
	}

	var out domain.Claims
	out.Subject, _ = claims.GetSubject()
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = domain.Timestamp{Time: exp.Time.UTC()}
	}
	return out, nil
}

// Register validates the form and creates the account. It does not log in.
func (s *Service) Register(ctx context.Context, form RegisterForm) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	if err := validator.Validate(form); err != nil {
		return apperrors.Validation(err)
	}

	err := s.auth.Register(ctx, domain.Registration{
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user registered")
	return nil
}

// AdminLogin signs in to the admin panel and stores the admin token.
func (s *Service) AdminLogin(ctx context.Context, email, password string) error {
	form := adminLoginForm{Email: strings.TrimSpace(email), Password: password}
	if err := validator.Validate(form); err != nil {
		return apperrors.Validation(err)
	}

	token, err := s.auth.AdminLogin(ctx, domain.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		return loginError(err, true)
	}
	if token == "" {
		return apperrors.Unauthorized("admin login response carried no token")
	}

	if err := s.store.Set(ctx, storage.Entry{Key: storage.KeyAdminToken, Value: []byte(token)}); err != nil {
		return fmt.Errorf("save admin session: %w", err)
	}

	s.mu.Lock()
	s.adminToken = token
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "admin logged in")
	return nil
}

// AdminLogout ends the admin session.
func (s *Service) AdminLogout(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.KeyAdminToken); err != nil {
		return fmt.Errorf("clear admin session: %w", err)
	}
	s.mu.Lock()
	s.adminToken = ""
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "admin logged out")
	return nil
}

// IsAdmin reports whether an admin token is held.
func (s *Service) IsAdmin() bool {
	return s.AdminToken() != ""
}

// AdminToken returns the admin bearer token, or "".
func (s *Service) AdminToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminToken
}

// loginError replaces the backend message of a rejected login with the
// message for its status. A 403 only gets the admin message on the admin
// login; everything else passes through with the backend detail.
func loginError(err error, admin bool) error {
	var msg string
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		msg = MsgInvalidCredentials
	case admin && errors.Is(err, apperrors.ErrForbidden):
		msg = MsgNotAdmin
	case errors.Is(err, apperrors.ErrTooManyRequests):
		msg = MsgTooManyAttempts
	default:
		return err
	}
	return &apperrors.AppError{
		Code:    "LOGIN_REJECTED",
		Message: msg,
		Status:  apperrors.HTTPStatus(err),
		Err:     err,
	}
}
