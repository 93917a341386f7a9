// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-elev.
//
// go-elev is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package session

import (
	"time"

	"github.com/jeremyhahn/go-elev/pkg/logging"
)

const (
	// LockoutThreshold is the cumulative failure count that triggers
	// a lockout.
	LockoutThreshold = 5

	// LockoutDuration is how long a triggered lockout lasts.
	LockoutDuration = 900 * time.Second
)

// Session is the authentication state for one user during one
// invocation. It is rebuilt from the persisted record every
// invocation; success and failure transitions write back through the
// store so concurrent and subsequent invocations observe them.
type Session struct {
	username string
	timeout  time.Duration
	roles    []string

	lastProof      time.Time
	failedAttempts int
	lockoutUntil   time.Time

	store  *Store
	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New constructs the session for username, reloading persisted proof
// and lockout state. A record that cannot be read is treated as
// absent: the user re-authenticates, which is the safe degradation.
func New(store *Store, username string, timeout time.Duration, roles []string, logger *logging.Logger, opts ...Option) *Session {
	s := &Session{
		username: username,
		timeout:  timeout,
		roles:    roles,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	rec, err := store.Load(username)
	if err != nil {
		logger.Warnf("session: %v, requiring re-authentication", err)
		return s
	}
	s.apply(rec)
	return s
}

// Username returns the user this session belongs to.
func (s *Session) Username() string {
	return s.username
}

// Roles returns the roles resolved for this user at construction.
func (s *Session) Roles() []string {
	return s.roles
}

// FailedAttempts returns the cumulative failed verification count.
func (s *Session) FailedAttempts() int {
	return s.failedAttempts
}

// CheckTimeout reports whether a previous proof of authentication is
// still within the timeout window. A session with no prior proof is
// never valid.
func (s *Session) CheckTimeout() bool {
	if s.lastProof.IsZero() {
		return false
	}
	return s.now().Sub(s.lastProof) < s.timeout
}

// CheckLockout reports whether the session is inside a lockout
// window. While locked, the credential backend must not be consulted.
func (s *Session) CheckLockout() bool {
	if s.lockoutUntil.IsZero() {
		return false
	}
	return s.now().Before(s.lockoutUntil)
}

// RecordFailure registers a failed verification attempt. The lockout
// window starts when the counter reaches the threshold; an active
// lockout is never extended by further failures, but once it expires
// without a success the still-elevated counter re-arms on the next
// failure. Persistence errors are logged and the in-memory state
// still advances so the current invocation behaves correctly.
func (s *Session) RecordFailure() {
	now := s.now()
	rec, err := s.store.Update(s.username, func(rec record) record {
		rec.FailedAttempts++
		locked := rec.LockoutUntilUnix > 0 && now.Unix() < rec.LockoutUntilUnix
		if rec.FailedAttempts >= LockoutThreshold && !locked {
			rec.LockoutUntilUnix = now.Add(LockoutDuration).Unix()
		}
		return rec
	})
	if err != nil {
		s.logger.Warnf("session: failed to persist failure for %q: %v", s.username, err)
		s.failedAttempts++
		if s.failedAttempts >= LockoutThreshold && !s.CheckLockout() {
			s.lockoutUntil = now.Add(LockoutDuration)
		}
		return
	}
	s.apply(rec)
}

// RecordSuccess registers a successful verification: the proof time
// becomes now and the failure counter resets. An existing lockout is
// left to expire naturally. A persistence failure only means the next
// invocation re-authenticates, so it is logged and not returned.
func (s *Session) RecordSuccess() {
	now := s.now()
	rec, err := s.store.Update(s.username, func(rec record) record {
		rec.LastProofUnix = now.Unix()
		rec.FailedAttempts = 0
		return rec
	})
	if err != nil {
		s.logger.Warnf("session: failed to persist proof for %q, next invocation will re-authenticate: %v", s.username, err)
		s.lastProof = now
		s.failedAttempts = 0
		return
	}
	s.apply(rec)
}

// Invalidate removes the persisted record and resets the in-memory
// state, forcing re-authentication on next use.
func (s *Session) Invalidate() error {
	if err := s.store.Clear(s.username); err != nil {
		return err
	}
	s.lastProof = time.Time{}
	s.failedAttempts = 0
	s.lockoutUntil = time.Time{}
	return nil
}

func (s *Session) apply(rec record) {
	if rec.LastProofUnix > 0 {
		s.lastProof = time.Unix(rec.LastProofUnix, 0)
	} else {
		s.lastProof = time.Time{}
	}
	s.failedAttempts = rec.FailedAttempts
	if rec.LockoutUntilUnix > 0 {
		s.lockoutUntil = time.Unix(rec.LockoutUntilUnix, 0)
	} else {
		s.lockoutUntil = time.Time{}
	}
}
