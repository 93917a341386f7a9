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

// Package auth runs the credential verification flow: the
// conversation with the user, the external verifier boundary, and
// the bounded retry loop that drives the session state machine.
package auth

// Conversation is the capability the authenticator needs from its
// environment: prompt for a secret with or without echo, and deliver
// notices. The terminal implementation talks to /dev/tty; tests
// substitute a scripted fake.
type Conversation interface {
	// PromptEchoOff asks for a secret with terminal echo suppressed.
	PromptEchoOff(prompt string) ([]byte, error)

	// PromptEchoOn asks for a response with echo visible.
	PromptEchoOn(prompt string) ([]byte, error)

	// Info shows an informational notice to the user.
	Info(msg string)

	// Error shows an error notice to the user.
	Error(msg string)
}
