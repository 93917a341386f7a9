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

package policy

import "errors"

var (
	// ErrParse is returned when the policy file cannot be read or a
	// global directive is malformed. Fatal at startup.
	ErrParse = errors.New("policy: parse error")

	// ErrPermissionDenied is the terminal outcome when no allow rule
	// matches a request.
	ErrPermissionDenied = errors.New("policy: permission denied")
)
