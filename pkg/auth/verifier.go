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
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Verifier is the external credential-verification backend boundary.
// The authenticator depends only on this interface; how the secret is
// checked against the host's identity database is the backend's
// concern.
type Verifier interface {
	// Verify checks the secret for username. Any error counts as a
	// failed attempt.
	Verify(ctx context.Context, username string, secret []byte) error

	// AccountCheck validates the account after a successful Verify
	// (expiry, availability). Failures here are informational to the
	// caller.
	AccountCheck(ctx context.Context, username string) error
}

// HelperVerifier shells out to an authentication helper program,
// passing the username as the sole argument and the secret on stdin.
// Exit status zero means the credentials are valid. This keeps the
// identity-database dependency outside the elev process.
type HelperVerifier struct {
	// Path is the helper executable, e.g. /usr/libexec/elev-auth.
	Path string
}

var _ Verifier = (*HelperVerifier)(nil)

// NewHelperVerifier creates a verifier using the helper at path.
func NewHelperVerifier(path string) *HelperVerifier {
	return &HelperVerifier{Path: path}
}

// Verify runs the helper with the secret on stdin.
func (v *HelperVerifier) Verify(ctx context.Context, username string, secret []byte) error {
	cmd := exec.CommandContext(ctx, v.Path, username)
	cmd.Stdin = bytes.NewReader(secret)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("auth: verification rejected for %q: %w", username, err)
	}
	return nil
}

// AccountCheck runs the helper in account mode ("-a").
func (v *HelperVerifier) AccountCheck(ctx context.Context, username string) error {
	cmd := exec.CommandContext(ctx, v.Path, "-a", username)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("auth: account check failed for %q: %w", username, err)
	}
	return nil
}
