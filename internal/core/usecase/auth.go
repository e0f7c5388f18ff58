package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/ports"
	"github.com/kirillkom/blood-insights/internal/core/session"
)

type AuthService struct {
	backend ports.AuthBackend
	session *session.Store
}

func NewAuthService(backend ports.AuthBackend, store *session.Store) *AuthService {
	return &AuthService{
		backend: backend,
		session: store,
	}
}

func (s *AuthService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "signup", fmt.Errorf("email and password are required"))
	}

	sess, err := s.backend.Signup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if err := s.session.SetSession(ctx, sess.Token, sess.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "login", fmt.Errorf("email and password are required"))
	}

	sess, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.session.SetSession(ctx, sess.Token, sess.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Logout clears local state even when the backend call fails; the backend
// error is still returned so callers can report it.
func (s *AuthService) Logout(ctx context.Context) error {
	backendErr := s.backend.Logout(ctx)
	if backendErr != nil {
		slog.Default().Warn("backend_logout_failed", "error", backendErr)
	}
	if err := s.session.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if backendErr != nil {
		return fmt.Errorf("logout: %w", backendErr)
	}
	return nil
}

// CurrentUser asks the backend who owns the stored token. A 401 here is the
// only place an expired session gets cleared.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	if !s.session.IsAuthenticated(ctx) {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnauthorized) {
			if clearErr := s.session.Clear(ctx); clearErr != nil {
				slog.Default().Error("session_clear_failed", "error", clearErr)
			}
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return s.session.IsAuthenticated(ctx)
}
