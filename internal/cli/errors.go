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

package cli

import "errors"

var (
	// ErrNotSetuid is returned when the binary is missing its
	// setuid-root installation.
	ErrNotSetuid = errors.New("elev must be installed setuid root")

	// ErrAlreadyRoot is returned when the invoking (real) user is
	// already root.
	ErrAlreadyRoot = errors.New("already running as root")

	// ErrNoCommand is returned when no command was given.
	ErrNoCommand = errors.New("no command specified")

	// ErrNonInteractive is returned when authentication is required
	// but prompting was disabled with -n.
	ErrNonInteractive = errors.New("authentication required but running non-interactively")
)
