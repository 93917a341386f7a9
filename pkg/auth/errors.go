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

import "errors"

var (
	// ErrAuthenticationFailed is returned when the verifier rejected
	// the secret on every attempt in the retry budget.
	ErrAuthenticationFailed = errors.New("auth: authentication failed")

	// ErrAccountLocked is returned when the cumulative failure
	// threshold was reached; the verifier is not consulted until the
	// lockout window elapses.
	ErrAccountLocked = errors.New("auth: account temporarily locked")

	// ErrNoSecret is returned when the user supplies no secret; the
	// attempt loop aborts immediately without further retries.
	ErrNoSecret = errors.New("auth: no secret entered")

	// ErrNoTerminal is returned when /dev/tty cannot be opened for
	// the conversation.
	ErrNoTerminal = errors.New("auth: no controlling terminal")
)
