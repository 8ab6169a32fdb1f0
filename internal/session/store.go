package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
)

// ErrInvalidSession is returned for unknown, revoked or expired tokens.
var ErrInvalidSession = errors.New("invalid or expired session")

// DefaultRevalidateInterval is how long a cached session is trusted before Resolve reads
// its row and the user's stored roles again.
const DefaultRevalidateInterval = 30 * time.Second

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRevalidateInterval sets how long a cached session is trusted. Zero re-reads on every Resolve.
func WithRevalidateInterval(d time.Duration) StoreOption {
	return func(s *Store) {
		s.revalidateEvery = d
	}
}

// Store keeps live sessions in an expiring LRU keyed by token hash. Session rows make
// a session survive eviction and restarts: on a miss it is rebuilt from the row and the
// user's persisted roles.
type Store struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	live     *expirable.LRU[string, *Session]
	ttl      time.Duration
	logger   zerolog.Logger

	// revalidateEvery bounds how stale a cached session may be with respect to revocations
	// and role changes written by other processes.
	revalidateEvery time.Duration

	// missMu serialises rebuilds so one token maps to one live Session.
	missMu sync.Mutex
	now    func() time.Time
}

// NewStore creates a Store holding at most size live sessions.
func NewStore(sessions repository.SessionRepository, users repository.UserRepository, size int, ttl time.Duration, logger zerolog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		sessions:        sessions,
		users:           users,
		live:            expirable.NewLRU[string, *Session](size, nil, ttl),
		ttl:             ttl,
		logger:          logger,
		revalidateEvery: DefaultRevalidateInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session for user with the given ID token attributes and returns the raw token.
// The principal's authorities are the user's persisted roles. A non-positive ttl uses the store default.
func (s *Store) Create(ctx context.Context, user *models.User, attributes map[string]any, ttl time.Duration) (string, *Session, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	token, hash, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	row := &models.Session{
		UserID:     user.ID,
		TokenHash:  hash,
		Attributes: models.AttributeMap(attributes),
		ExpiresAt:  s.now().UTC().Add(ttl),
	}
	if err := s.sessions.Create(ctx, row); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	principal := auth.NewPrincipal(user.Subject, attributes, auth.RolesFromStrings(user.Roles))
	sess := newSession(row.ID, user.ID, hash, row.ExpiresAt, principal, s.now())
	s.live.Add(hash, sess)
	return token, sess, nil
}

// Resolve returns the live session for a raw token.
func (s *Store) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	hash := auth.HashSessionToken(token)

	if sess, ok := s.live.Get(hash); ok {
		now := s.now()
		if sess.Expired(now) {
			s.live.Remove(hash)
			return nil, ErrInvalidSession
		}
		if now.Sub(sess.validatedAt()) < s.revalidateEvery {
			return sess, nil
		}
		return s.revalidate(ctx, hash, sess)
	}

	s.missMu.Lock()
	defer s.missMu.Unlock()
	if sess, ok := s.live.Get(hash); ok {
		return sess, nil
	}

	row, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if row.Revoked || !s.now().Before(row.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("resolve session user: %w", err)
	}

	principal := auth.NewPrincipal(user.Subject, row.Attributes, auth.RolesFromStrings(user.Roles))
	sess := newSession(row.ID, user.ID, hash, row.ExpiresAt, principal, s.now())
	s.live.Add(hash, sess)

	if err := s.sessions.UpdateLastUsed(ctx, row.ID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", row.ID).Msg("failed to update session last used")
	}
	return sess, nil
}

// revalidate re-reads the row and stored roles of a cached session. Revoked or expired rows
// evict the session; stored roles that differ from the live authorities replace them.
func (s *Store) revalidate(ctx context.Context, hash string, sess *Session) (*Session, error) {
	before := sess.Principal()

	row, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.live.Remove(hash)
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("revalidate session: %w", err)
	}
	if row.Revoked || !s.now().Before(row.ExpiresAt) {
		s.live.Remove(hash)
		return nil, ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.live.Remove(hash)
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("revalidate session user: %w", err)
	}

	stored := auth.RolesFromStrings(user.Roles)
	if !auth.SameRoles(before.Authorities(), stored) && sess.replaceAuthoritiesIf(before, stored) {
		s.logger.Info().Str("session_id", sess.ID).Str("subject", user.Subject).
			Strs("roles", auth.RoleStrings(stored)).Msg("session authorities refreshed from stored roles")
	}
	sess.markValidated(s.now())
	return sess, nil
}

// RevokeUser ends every session of userID, in memory and in the session table, and
// returns how many active session rows were revoked.
// Other processes drop their cached copies at their next revalidation.
func (s *Store) RevokeUser(ctx context.Context, userID string) (int, error) {
	for _, hash := range s.live.Keys() {
		if sess, ok := s.live.Peek(hash); ok && sess.UserID == userID {
			s.live.Remove(hash)
		}
	}
	n, err := s.sessions.RevokeByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Int64("sessions", n).Msg("revoked user sessions")
	return int(n), nil
}

// Revoke ends the session identified by sess.
func (s *Store) Revoke(ctx context.Context, sess *Session) error {
	s.live.Remove(sess.TokenHash)
	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ForSubject returns the live sessions whose principal has the given subject.
func (s *Store) ForSubject(subject string) []*Session {
	var out []*Session
	for _, sess := range s.live.Values() {
		if sess.Principal().SubjectID() == subject {
			out = append(out, sess)
		}
	}
	return out
}

// ApplyRoleEdit applies one role edit to every live session of subject and returns how many were updated.
// Sessions not in memory pick up the persisted roles when they are next resolved.
func (s *Store) ApplyRoleEdit(subject string, role auth.Role, action auth.RoleEditAction) int {
	sessions := s.ForSubject(subject)
	for _, sess := range sessions {
		sess.ApplyRoleEdit(role, action)
	}
	return len(sessions)
}

// ReplaceAuthorities sets the authorities of every live session of subject.
func (s *Store) ReplaceAuthorities(subject string, roles []auth.Role) int {
	sessions := s.ForSubject(subject)
	for _, sess := range sessions {
		sess.ReplaceAuthorities(roles)
	}
	return len(sessions)
}

// Len returns the number of live sessions held in memory.
func (s *Store) Len() int {
	return s.live.Len()
}

// PurgeExpired deletes expired session rows. Live entries expire on their own.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}
