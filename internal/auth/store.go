package auth

import (
	"strings"
	"sync"
	"time"
)

// Store holds the player's bearer credential. Tokens that do not parse as a
// JWT are kept as opaque strings and never considered expired.
type Store struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

func NewStore(token string) *Store {
	s := &Store{now: time.Now}
	s.Set(token)
	return s
}

func (s *Store) Set(token string) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "Bearer ")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Store) Clear() {
	s.Set("")
}

// Token returns the credential to attach to requests, or "" when there is
// none or it has expired.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.expiredLocked() {
		return ""
	}
	return s.token
}

// Valid reports whether a usable credential is present.
func (s *Store) Valid() bool {
	return s.Token() != ""
}

// Subject returns the user id carried by the token, if readable.
func (s *Store) Subject() string {
	token := s.Token()
	if token == "" {
		return ""
	}
	claims, err := peekClaims(token)
	if err != nil {
		return ""
	}
	if claims.UserID != "" {
		return claims.UserID
	}
	return claims.Subject
}

func (s *Store) expiredLocked() bool {
	claims, err := peekClaims(s.token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}
