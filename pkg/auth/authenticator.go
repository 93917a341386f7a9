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

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeremyhahn/go-elev/pkg/logging"
	"github.com/jeremyhahn/go-elev/pkg/session"
)

// MaxAttempts is the per-invocation retry budget. It is distinct from
// the cumulative failure threshold that triggers a lockout across
// invocations.
const MaxAttempts = 3

// Authenticator drives credential verification for one invocation:
// prompt through the conversation, check with the verifier, and
// record the outcome on the session.
type Authenticator struct {
	conv     Conversation
	verifier Verifier
	logger   *logging.Logger
	limiter  *rate.Limiter
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithPromptInterval sets the minimum spacing between verification
// attempts. Zero disables pacing; the default is one second.
func WithPromptInterval(d time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if d <= 0 {
			a.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		a.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewAuthenticator creates an authenticator over the given
// conversation and verifier.
func NewAuthenticator(conv Conversation, verifier Verifier, logger *logging.Logger, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		conv:     conv,
		verifier: verifier,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate collects and verifies a secret, updating sess on each
// outcome. While the session is locked the verifier is never
// consulted. An empty secret aborts without consuming further
// retries. Exhausting the budget returns ErrAuthenticationFailed.
func (a *Authenticator) Authenticate(ctx context.Context, sess *session.Session) error {
	if sess.CheckLockout() {
		a.conv.Error("Account temporarily locked due to too many failures.")
		return ErrAccountLocked
	}

	username := sess.Username()
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("auth: %w", err)
		}

		secret, err := a.conv.PromptEchoOff("Password: ")
		if err != nil {
			return err
		}
		if len(secret) == 0 {
			a.conv.Error("No password entered. Aborting.")
			return ErrNoSecret
		}

		err = a.verifier.Verify(ctx, username, secret)
		zeroSecret(secret)
		if err == nil {
			sess.RecordSuccess()
			if err := a.verifier.AccountCheck(ctx, username); err != nil {
				// Informational only; the proof already stands.
				a.logger.Warnf("account check failed for %q: %v", username, err)
			}
			a.logger.Infof("successful authentication for %q", username)
			return nil
		}

		a.logger.Warnf("failed authentication attempt %d/%d for %q", attempt, MaxAttempts, username)
		sess.RecordFailure()
		if sess.CheckLockout() {
			a.conv.Error("Account temporarily locked due to too many failures.")
			return ErrAccountLocked
		}
		if attempt < MaxAttempts {
			a.conv.Error(fmt.Sprintf("Incorrect password. %d attempt(s) left.", MaxAttempts-attempt))
		}
	}

	a.logger.Warnf("user %q failed to authenticate after %d attempts", username, MaxAttempts)
	return ErrAuthenticationFailed
}

// zeroSecret overwrites secret material once it is no longer needed.
func zeroSecret(secret []byte) {
	for i := range secret {
		secret[i] = 0
	}
	subtle.ConstantTimeCopy(1, secret, make([]byte, len(secret)))
}
