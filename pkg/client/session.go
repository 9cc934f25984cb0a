package client

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/bodega-inventory/pkg/logger"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// Profile is the public snapshot of the signed-in user. It is a copy taken
// at login or refresh and can go stale.
type Profile struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Role     permission.Role `json:"role"`
}

// SessionStore is the only place that reads or writes the token and the
// cached profile.
type SessionStore struct {
	storage Storage
	logger  *slog.Logger
}

func NewSessionStore(storage Storage, lg *slog.Logger) *SessionStore {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &SessionStore{storage: storage, logger: lg}
}

func (s *SessionStore) Save(token string, user Profile) error {
	if token == "" {
		return fmt.Errorf("save session: empty token")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.storage.Set(tokenKey, token)
	s.storage.Set(userKey, string(raw))
	return nil
}

// UpdateUser replaces the cached profile and keeps the token.
func (s *SessionStore) UpdateUser(user Profile) error {
	token := s.Token()
	if token == "" {
		return ErrUnauthorized
	}
	return s.Save(token, user)
}

func (s *SessionStore) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *SessionStore) Token() string {
	token, _ := s.storage.Get(tokenKey)
	return token
}

// CurrentUser returns nil when there is no session or the stored profile
// cannot be parsed. Corrupt data is logged, not raised.
func (s *SessionStore) CurrentUser() *Profile {
	raw, ok := s.storage.Get(userKey)
	if !ok || raw == "" {
		return nil
	}

	var user Profile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding unreadable session profile", "error", fmt.Errorf("%w: %v", ErrMalformedSession, err))
		return nil
	}
	return &user
}

func (s *SessionStore) Clear() {
	s.storage.Remove(tokenKey)
	s.storage.Remove(userKey)
}
