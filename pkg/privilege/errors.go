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

package privilege

import "errors"

var (
	// ErrTargetNotFound is returned when the target identity does not
	// exist in the host's user database.
	ErrTargetNotFound = errors.New("privilege: target user not found")

	// ErrTransitionFailed is returned when the OS refused the
	// identity switch.
	ErrTransitionFailed = errors.New("privilege: identity switch failed")

	// ErrCommandNotFound is returned when the requested command does
	// not resolve to an executable on the minimal PATH.
	ErrCommandNotFound = errors.New("privilege: command not found")

	// ErrExecutionFailed is returned when the command could not be
	// launched; the original OS error is preserved in the wrap.
	ErrExecutionFailed = errors.New("privilege: execution failed")
)
