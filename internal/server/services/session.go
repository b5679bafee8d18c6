package services

import (
	"sync"
	"time"
)

// RecoveryState is the position of a RecoverySession in the
// Unverified -> Verified -> Reset handshake.
type RecoveryState int

const (
	StateUnverified RecoveryState = iota
	StateVerified
	StateReset
)

func (s RecoveryState) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateVerified:
		return "verified"
	case StateReset:
		return "reset"
	}
	return "unknown"
}

// RecoverySession binds a successful identity check to exactly one account.
// Only RecoveryService.VerifyIdentity produces a verified session; the zero
// value is unverified and is rejected by ResetPassword. A session may be
// shared between goroutines; at most one reset succeeds.
type RecoverySession struct {
	mu        sync.Mutex
	id        string
	username  string
	accountID int64
	state     RecoveryState
	expiresAt time.Time
}

// ID is an opaque identifier for log correlation.
func (s *RecoverySession) ID() string {
	return s.id
}

func (s *RecoverySession) Username() string {
	return s.username
}

func (s *RecoverySession) State() RecoveryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExpiresAt is zero when the session never expires.
func (s *RecoverySession) ExpiresAt() time.Time {
	return s.expiresAt
}

func (s *RecoverySession) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && now.After(s.expiresAt)
}
