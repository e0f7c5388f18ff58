package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/ports"
)

const (
	KeyToken    = "auth_token"
	KeyUser     = "user"
	KeyLanguage = "selectedLanguage"
)

// Store owns the bearer token, the cached user record and the selected
// narration language. It is passed explicitly to every service that needs it.
type Store struct {
	kv ports.KVStore
	mu sync.Mutex
}

func NewStore(kv ports.KVStore) *Store {
	return &Store{kv: kv}
}

func (s *Store) SetSession(ctx context.Context, token string, user domain.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.WrapError(domain.ErrInvalidInput, "set session", fmt.Errorf("empty token"))
	}
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// Token returns the stored token or "" when no session exists.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, _, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (s *Store) User(ctx context.Context) (*domain.User, error) {
	s.mu.Lock()
	raw, ok, err := s.kv.Get(ctx, KeyUser)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	if !ok || raw == "" {
		return nil, domain.ErrNotAuthenticated
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, nil
}

// Clear drops the token and user. The language preference survives.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a non-empty token is present. Expiry is
// only discovered when the backend answers 401.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && strings.TrimSpace(token) != ""
}

func (s *Store) Language(ctx context.Context, fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lang, ok, err := s.kv.Get(ctx, KeyLanguage)
	if err != nil || !ok || strings.TrimSpace(lang) == "" {
		return fallback
	}
	return lang
}

func (s *Store) SetLanguage(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.WrapError(domain.ErrInvalidInput, "set language", fmt.Errorf("empty language code"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, KeyLanguage, code); err != nil {
		return fmt.Errorf("store language: %w", err)
	}
	return nil
}
