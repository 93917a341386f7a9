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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeremyhahn/go-elev/pkg/policy"
)

func TestHandleError(t *testing.T) {
	t.Run("nil is success", func(t *testing.T) {
		assert.Zero(t, HandleError(nil))
	})

	t.Run("child status propagated", func(t *testing.T) {
		assert.Equal(t, 7, HandleError(&ExitError{Code: 7}))
	})

	t.Run("wrapped child status propagated", func(t *testing.T) {
		err := fmt.Errorf("pipeline: %w", &ExitError{Code: 42})
		assert.Equal(t, 42, HandleError(err))
	})

	t.Run("denial maps to one", func(t *testing.T) {
		assert.Equal(t, 1, HandleError(policy.ErrPermissionDenied))
	})

	t.Run("generic failure maps to one", func(t *testing.T) {
		assert.Equal(t, 1, HandleError(errors.New("boom")))
	})
}

func TestResolveConfigPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		flagConfig = "/tmp/flag.yaml"
		defer func() { flagConfig = "" }()
		t.Setenv("ELEV_CONFIG", "/tmp/env.yaml")
		assert.Equal(t, "/tmp/flag.yaml", resolveConfigPath())
	})

	t.Run("environment beats default", func(t *testing.T) {
		flagConfig = ""
		t.Setenv("ELEV_CONFIG", "/tmp/env.yaml")
		assert.Equal(t, "/tmp/env.yaml", resolveConfigPath())
	})

	t.Run("default otherwise", func(t *testing.T) {
		flagConfig = ""
		t.Setenv("ELEV_CONFIG", "")
		assert.Equal(t, "/etc/elev/elev.yaml", resolveConfigPath())
	})
}

func TestVersionString(t *testing.T) {
	assert.Contains(t, versionString(), "elev ")
	assert.Contains(t, versionString(), GitCommit)
}
