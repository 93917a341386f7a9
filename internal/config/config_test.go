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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elev.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultPolicyPath, cfg.PolicyFile)
	assert.Equal(t, DefaultSessionDir, cfg.SessionDir)
	assert.Equal(t, DefaultAuthHelper, cfg.AuthHelper)
	assert.True(t, cfg.Logging.Syslog)
	assert.Equal(t, "elev", cfg.Logging.Tag)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
policy_file: /etc/custom.conf
session_dir: /var/run/elev
auth_helper: /usr/local/libexec/check
logging:
  syslog: false
  tag: elevated
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/etc/custom.conf", cfg.PolicyFile)
		assert.Equal(t, "/var/run/elev", cfg.SessionDir)
		assert.Equal(t, "/usr/local/libexec/check", cfg.AuthHelper)
		assert.False(t, cfg.Logging.Syslog)
		assert.Equal(t, "elevated", cfg.Logging.Tag)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		path := writeConfig(t, "policy_file: /etc/other.conf\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/etc/other.conf", cfg.PolicyFile)
		assert.Equal(t, DefaultSessionDir, cfg.SessionDir)
		assert.Equal(t, DefaultAuthHelper, cfg.AuthHelper)
	})

	t.Run("missing default path yields defaults", func(t *testing.T) {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			t.Skip("default config path exists on this host")
		}
		cfg, err := Load(DefaultConfigPath)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing explicit path fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := writeConfig(t, "policy_file: [unterminated\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("relative path rejected", func(t *testing.T) {
		path := writeConfig(t, "policy_file: etc/elev.conf\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
}
