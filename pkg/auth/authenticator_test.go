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
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-elev/pkg/logging"
	"github.com/jeremyhahn/go-elev/pkg/session"
	"github.com/jeremyhahn/go-elev/pkg/storage"
)

// fakeConversation replays scripted secrets and records notices.
type fakeConversation struct {
	secrets [][]byte
	prompts int
	notices []string
}

func (c *fakeConversation) PromptEchoOff(prompt string) ([]byte, error) {
	c.prompts++
	if len(c.secrets) == 0 {
		return nil, io.EOF
	}
	secret := c.secrets[0]
	c.secrets = c.secrets[1:]
	// Copy: the authenticator zeroes what it is handed.
	out := make([]byte, len(secret))
	copy(out, secret)
	return out, nil
}

func (c *fakeConversation) PromptEchoOn(prompt string) ([]byte, error) {
	return c.PromptEchoOff(prompt)
}

func (c *fakeConversation) Info(msg string)  { c.notices = append(c.notices, msg) }
func (c *fakeConversation) Error(msg string) { c.notices = append(c.notices, msg) }

// fakeVerifier accepts a single password and counts consultations.
type fakeVerifier struct {
	password         string
	verifyCalls      int
	accountCheckErr  error
	accountCheckRuns int
}

func (v *fakeVerifier) Verify(ctx context.Context, username string, secret []byte) error {
	v.verifyCalls++
	if string(secret) == v.password {
		return nil
	}
	return assert.AnError
}

func (v *fakeVerifier) AccountCheck(ctx context.Context, username string) error {
	v.accountCheckRuns++
	return v.accountCheckErr
}

func newAuthTestSession(t *testing.T) *session.Session {
	t.Helper()
	backend, err := storage.NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	logger := logging.NewWriterLogger(io.Discard, true)
	store, err := session.NewStore(backend, logger)
	require.NoError(t, err)
	return session.New(store, "alice", 60*time.Second, nil, logger)
}

func newTestAuthenticator(conv Conversation, verifier Verifier) *Authenticator {
	return NewAuthenticator(conv, verifier,
		logging.NewWriterLogger(io.Discard, true), WithPromptInterval(0))
}

func TestAuthenticate_SuccessFirstAttempt(t *testing.T) {
	sess := newAuthTestSession(t)
	conv := &fakeConversation{secrets: [][]byte{[]byte("hunter2")}}
	verifier := &fakeVerifier{password: "hunter2"}

	err := newTestAuthenticator(conv, verifier).Authenticate(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, 1, verifier.verifyCalls)
	assert.Equal(t, 1, verifier.accountCheckRuns)
	assert.True(t, sess.CheckTimeout())
	assert.Zero(t, sess.FailedAttempts())
}

func TestAuthenticate_SuccessAfterFailures(t *testing.T) {
	sess := newAuthTestSession(t)
	conv := &fakeConversation{secrets: [][]byte{
		[]byte("wrong"), []byte("wronger"), []byte("hunter2"),
	}}
	verifier := &fakeVerifier{password: "hunter2"}

	err := newTestAuthenticator(conv, verifier).Authenticate(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, 3, verifier.verifyCalls)
	assert.True(t, sess.CheckTimeout())
	// Success resets the counter.
	assert.Zero(t, sess.FailedAttempts())
}

func TestAuthenticate_ExhaustsRetryBudget(t *testing.T) {
	sess := newAuthTestSession(t)
	conv := &fakeConversation{secrets: [][]byte{
		[]byte("a"), []byte("b"), []byte("c"), []byte("d"),
	}}
	verifier := &fakeVerifier{password: "hunter2"}

	err := newTestAuthenticator(conv, verifier).Authenticate(context.Background(), sess)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	// Exactly three attempts, below the five-failure lockout.
	assert.Equal(t, 3, conv.prompts)
	assert.Equal(t, 3, verifier.verifyCalls)
	assert.Equal(t, 3, sess.FailedAttempts())
	assert.False(t, sess.CheckLockout())
	assert.False(t, sess.CheckTimeout())
}

func TestAuthenticate_EmptySecretAborts(t *testing.T) {
	sess := newAuthTestSession(t)
	conv := &fakeConversation{secrets: [][]byte{{}, []byte("hunter2")}}
	verifier := &fakeVerifier{password: "hunter2"}

	err := newTestAuthenticator(conv, verifier).Authenticate(context.Background(), sess)
	assert.ErrorIs(t, err, ErrNoSecret)

	// No retry after an empty secret, no backend consultation, no
	// failure recorded.
	assert.Equal(t, 1, conv.prompts)
	assert.Zero(t, verifier.verifyCalls)
	assert.Zero(t, sess.FailedAttempts())
}

func TestAuthenticate_LockedSessionNeverConsultsVerifier(t *testing.T) {
	sess := newAuthTestSession(t)
	for i := 0; i < session.LockoutThreshold; i++ {
		sess.RecordFailure()
	}
	require.True(t, sess.CheckLockout())

	conv := &fakeConversation{secrets: [][]byte{[]byte("hunter2")}}
	verifier := &fakeVerifier{password: "hunter2"}

	err := newTestAuthenticator(conv, verifier).Authenticate(context.Background(), sess)
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.Zero(t, conv.prompts)
	assert.Zero(t, verifier.verifyCalls)
}

func TestAuthenticate_CrossingThresholdMidInvocation(t *testing.T) {
	sess := newAuthTestSession(t)
	// Four failures from earlier invocations; one more locks.
	for i := 0; i < 4; i++ {
		sess.RecordFailure()
	}
	require.False(t, sess.CheckLockout())

	conv := &fakeConversation{secrets: [][]byte{[]byte("wrong"), []byte("wrong")}}
	verifier := &fakeVerifier{password: "hunter2"}

	err := newTestAuthenticator(conv, verifier).Authenticate(context.Background(), sess)
	assert.ErrorIs(t, err, ErrAccountLocked)

	// The lockout cut the loop short of its 3-attempt budget.
	assert.Equal(t, 1, verifier.verifyCalls)
	assert.True(t, sess.CheckLockout())
}

func TestAuthenticate_AccountCheckFailureIsInformational(t *testing.T) {
	sess := newAuthTestSession(t)
	conv := &fakeConversation{secrets: [][]byte{[]byte("hunter2")}}
	verifier := &fakeVerifier{password: "hunter2", accountCheckErr: assert.AnError}

	err := newTestAuthenticator(conv, verifier).Authenticate(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, sess.CheckTimeout())
}

func TestZeroSecret(t *testing.T) {
	secret := []byte("hunter2")
	zeroSecret(secret)
	for i, b := range secret {
		assert.Zero(t, b, "byte %d not zeroed", i)
	}
}
