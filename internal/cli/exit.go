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

import (
	"errors"
	"fmt"
)

// ExitError carries the executed command's exit status so it can be
// propagated as elev's own exit status. The command already reported
// its failure; elev stays silent.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// HandleError prints err for the user and returns the process exit
// status: the child's status when the command ran and failed, 1 for
// every elev failure, 0 on nil.
func HandleError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	stderr.Errorf("%v", err)
	return 1
}
