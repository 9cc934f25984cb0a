package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/core/common/validation"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

// Service is the main auth service with dependencies
type Service struct {
	userRepo    UserRepository
	tokens      *JWTTokenGenerator
	revocations RevocationStore
	hasher      *PasswordHasher
	timeout     time.Duration
	recorder    Recorder
	logger      *slog.Logger
}

// NewService creates a new auth service. timeout bounds every store round
// trip made while logging in or checking a token.
func NewService(userRepo UserRepository, tokens *JWTTokenGenerator, revocations RevocationStore, hasher *PasswordHasher, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		userRepo:    userRepo,
		tokens:      tokens,
		revocations: revocations,
		hasher:      hasher,
		timeout:     timeout,
		recorder:    noopRecorder{},
		logger:      logger,
	}
}

func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Login checks credentials and mints a new session token. Unknown username
// and wrong password produce the same error. Store failures and deadlines
// produce ErrAuthUnavailable.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := validation.Struct(dto); err != nil {
		if dto.Username == "" || dto.Password == "" {
			return nil, err
		}
		// an over-long field cannot match any account
		s.hasher.VerifyDummy(dto.Password)
		s.recorder.ObserveLogin(LoginRejected)
		return nil, internal.ErrInvalidCredentials
	}

	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.userRepo.GetByUsername(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.VerifyDummy(dto.Password)
			s.recorder.ObserveLogin(LoginRejected)
			return nil, internal.ErrInvalidCredentials
		}
		s.logger.Error("login: user lookup failed", "error", err)
		s.recorder.ObserveLogin(LoginUnavailable)
		return nil, internal.ErrAuthUnavailable.WithCause(err)
	}

	if !s.hasher.Verify(dto.Password, u.PasswordHash) {
		s.recorder.ObserveLogin(LoginRejected)
		return nil, internal.ErrInvalidCredentials
	}
	s.upgradeHash(ctx, u, dto.Password)

	if !permission.ValidRole(u.Role) {
		s.logger.Error("login: stored role is not recognised", "user_id", u.ID, "role", u.Role)
		s.recorder.ObserveLogin(LoginUnavailable)
		return nil, internal.ErrAuthUnavailable
	}

	token, claims, err := s.tokens.Generate(u)
	if err != nil {
		s.recorder.ObserveLogin(LoginUnavailable)
		return nil, internal.ErrAuthUnavailable.WithCause(err)
	}

	if err := s.revocations.Track(ctx, u.ID, claims.ID, s.tokens.TTL()); err != nil {
		s.logger.Error("login: session tracking failed", "user_id", u.ID, "error", err)
		s.recorder.ObserveLogin(LoginUnavailable)
		return nil, internal.ErrAuthUnavailable.WithCause(err)
	}

	s.recorder.ObserveLogin(LoginSucceeded)
	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)

	return &LoginResult{User: u.Profile(), Token: token}, nil
}

// upgradeHash re-hashes a verified password when its stored cost differs
// from the configured one. Failure is logged and the login goes on.
func (s *Service) upgradeHash(ctx context.Context, u *User, plaintext string) {
	up, ok := s.userRepo.(PasswordUpgrader)
	if !ok || !s.hasher.NeedsRehash(u.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.logger.Warn("login: password rehash failed", "user_id", u.ID, "error", err)
		return
	}
	if err := up.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		s.logger.Warn("login: storing upgraded hash failed", "user_id", u.ID, "error", err)
		return
	}
	s.logger.Info("login: password hash upgraded", "user_id", u.ID, "cost", s.hasher.Cost())
}

// ValidateToken checks signature, expiry and the revocation list.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("revocation lookup failed", "error", err)
		return nil, ErrSessionStoreUnavailable.WithCause(err)
	}
	if revoked {
		return nil, internal.ErrTokenRevoked
	}
	return claims, nil
}

// Authenticate validates the token and loads the caller from the user
// store, so role changes and deletions apply to live sessions.
func (s *Service) Authenticate(ctx context.Context, token string) (*internal.Principal, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, internal.ErrInvalidToken
	}

	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, ErrSessionStoreUnavailable.WithCause(err)
	}

	return u.Principal(claims.ID), nil
}

// VerifyToken never fails: any problem with the token, or with checking it,
// is reported as false.
func (s *Service) VerifyToken(ctx context.Context, token string) bool {
	_, err := s.Authenticate(ctx, token)
	if err != nil {
		s.logger.Debug("token verification failed", "error", err)
		return false
	}
	return true
}

// RefreshProfile returns the current record for the token's user.
func (s *Service) RefreshProfile(ctx context.Context, token string) (*Profile, error) {
	p, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	profile := ProfileFromPrincipal(p)
	return &profile, nil
}

// Logout revokes the token until its natural expiry. Expired tokens are
// already dead, so logging them out succeeds without touching the store.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, internal.ErrTokenExpired) {
			return nil
		}
		return err
	}

	ttl := claims.Remaining(s.tokens.Now())
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return ErrSessionStoreUnavailable.WithCause(err)
	}

	s.logger.Info("user logged out", "subject", claims.Subject)
	return nil
}

// RevokeUserSessions invalidates every live token issued to userID.
func (s *Service) RevokeUserSessions(ctx context.Context, userID int64) error {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.revocations.RevokeUser(ctx, userID, s.tokens.TTL())
	if err != nil {
		return fmt.Errorf("revoke sessions for user %d: %w", userID, err)
	}
	s.logger.Info("user sessions revoked", "user_id", userID, "count", n)
	return nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}
