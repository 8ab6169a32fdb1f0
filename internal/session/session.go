// Package session holds the live authenticated sessions and the principal bound to each.
package session

import (
	"sync"
	"time"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
)

// CookieName is the cookie carrying the raw session token.
const CookieName = "muzfi.session"

// Session is one live login. Its principal is replaced in place when roles change,
// so later checks in the same session see the new authorities without a new login.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time

	mu        sync.RWMutex
	principal auth.Principal
	// checkedAt is when the session row and stored roles were last read.
	checkedAt time.Time
}

func newSession(id, userID, tokenHash string, expiresAt time.Time, p auth.Principal, checkedAt time.Time) *Session {
	return &Session{ID: id, UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt, principal: p, checkedAt: checkedAt}
}

// Principal returns the current principal.
func (s *Session) Principal() auth.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// Replace swaps the current principal.
func (s *Session) Replace(p auth.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = p
}

// ApplyRoleEdit adds or removes one authority. Subject and attributes are kept.
// The read-modify-write holds the session lock, so concurrent edits are not lost.
func (s *Session) ApplyRoleEdit(role auth.Role, action auth.RoleEditAction) auth.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := auth.ApplyEdit(s.principal.Authorities(), role, action)
	s.principal = auth.WithAuthorities(s.principal, next)
	return s.principal
}

// ReplaceAuthorities sets the authorities to roles. Subject and attributes are kept.
func (s *Session) ReplaceAuthorities(roles []auth.Role) auth.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = auth.WithAuthorities(s.principal, roles)
	return s.principal
}

// replaceAuthoritiesIf sets the authorities to roles only while the principal is still old.
// A principal replaced in between by a role edit wins.
func (s *Session) replaceAuthoritiesIf(old auth.Principal, roles []auth.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal != old {
		return false
	}
	s.principal = auth.WithAuthorities(s.principal, roles)
	return true
}

func (s *Session) validatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkedAt
}

func (s *Session) markValidated(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkedAt = t
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
