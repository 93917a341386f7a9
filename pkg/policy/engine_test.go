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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, text string) *Engine {
	t.Helper()
	return NewEngine(loadPolicy(t, text), testLogger())
}

func TestEngine_DefaultDeny(t *testing.T) {
	engine := newTestEngine(t, "")
	assert.False(t, engine.IsPermitted(Request{
		Actor:      "alice",
		TargetUser: "root",
		Command:    "ls",
	}))
}

func TestEngine_HigherPriorityDenyWins(t *testing.T) {
	// Declaration order deliberately puts the allow first; priority
	// must still let the deny pre-empt it.
	engine := newTestEngine(t, `
allow :wheel cmd * priority 5
deny :wheel cmd rm priority 10
`)
	req := Request{
		Actor:      "alice",
		Groups:     []string{"wheel"},
		TargetUser: "root",
		Command:    "rm",
	}
	assert.False(t, engine.IsPermitted(req))

	req.Command = "ls"
	assert.True(t, engine.IsPermitted(req))
}

func TestEngine_EqualPriorityFirstDeclaredWins(t *testing.T) {
	engine := newTestEngine(t, `
deny alice cmd ls
allow alice cmd ls
`)
	assert.False(t, engine.IsPermitted(Request{Actor: "alice", Command: "ls"}))

	engine = newTestEngine(t, `
allow alice cmd ls
deny alice cmd ls
`)
	assert.True(t, engine.IsPermitted(Request{Actor: "alice", Command: "ls"}))
}

func TestEngine_LowerPriorityDenyIsShadowed(t *testing.T) {
	// First-match semantics: a lower-priority deny never pre-empts a
	// higher-priority allow.
	engine := newTestEngine(t, `
deny alice cmd ls priority 1
allow alice cmd ls priority 5
`)
	assert.True(t, engine.IsPermitted(Request{Actor: "alice", Command: "ls"}))
}

func TestEngine_SubjectPredicates(t *testing.T) {
	t.Run("user match", func(t *testing.T) {
		engine := newTestEngine(t, "allow alice cmd *")
		assert.True(t, engine.IsPermitted(Request{Actor: "alice", Command: "ls"}))
		assert.False(t, engine.IsPermitted(Request{Actor: "bob", Command: "ls"}))
	})

	t.Run("group match", func(t *testing.T) {
		engine := newTestEngine(t, "allow :wheel cmd *")
		assert.True(t, engine.IsPermitted(Request{Actor: "bob", Groups: []string{"users", "wheel"}, Command: "ls"}))
		assert.False(t, engine.IsPermitted(Request{Actor: "bob", Groups: []string{"users"}, Command: "ls"}))
	})

	t.Run("user and group are inclusive-or", func(t *testing.T) {
		engine := newTestEngine(t, "allow alice :wheel cmd *")
		assert.True(t, engine.IsPermitted(Request{Actor: "alice", Command: "ls"}))
		assert.True(t, engine.IsPermitted(Request{Actor: "bob", Groups: []string{"wheel"}, Command: "ls"}))
		assert.False(t, engine.IsPermitted(Request{Actor: "carol", Groups: []string{"users"}, Command: "ls"}))
	})

	t.Run("no subject matches anyone", func(t *testing.T) {
		engine := newTestEngine(t, "allow cmd ls")
		assert.True(t, engine.IsPermitted(Request{Actor: "whoever", Command: "ls"}))
	})
}

func TestEngine_TargetPredicate(t *testing.T) {
	engine := newTestEngine(t, "allow alice as backup cmd *")
	assert.True(t, engine.IsPermitted(Request{Actor: "alice", TargetUser: "backup", Command: "ls"}))
	assert.False(t, engine.IsPermitted(Request{Actor: "alice", TargetUser: "root", Command: "ls"}))
}

func TestEngine_RolePredicate(t *testing.T) {
	engine := newTestEngine(t, `
role ops alice
allow :ops roles ops priority 1
`)

	t.Run("actor with resolved role but no groups allowed", func(t *testing.T) {
		// ":ops" is satisfied by the resolved role even though alice
		// is in no OS group of that name.
		req := Request{Actor: "alice", Roles: []string{"ops"}, Command: "ls"}
		assert.True(t, engine.IsPermitted(req))
	})

	t.Run("actor without role denied", func(t *testing.T) {
		// bob is in an OS group named ops, but the roles predicate
		// still requires the resolved role.
		req := Request{Actor: "bob", Groups: []string{"ops"}, Roles: nil, Command: "ls"}
		assert.False(t, engine.IsPermitted(req))
	})
}

func TestEngine_RolePredicateWithoutSubject(t *testing.T) {
	// alice holds role ops without any OS group membership.
	engine := newTestEngine(t, `
role ops alice
allow roles ops priority 1
`)
	assert.True(t, engine.IsPermitted(Request{Actor: "alice", Roles: []string{"ops"}, Command: "ls"}))
	assert.False(t, engine.IsPermitted(Request{Actor: "bob", Command: "ls"}))
}

func TestEngine_CatchAllRule(t *testing.T) {
	engine := newTestEngine(t, "deny")
	assert.False(t, engine.IsPermitted(Request{Actor: "anyone", TargetUser: "root", Command: "anything"}))
}

func TestEngine_PasswordRequirement(t *testing.T) {
	t.Run("global default applies", func(t *testing.T) {
		engine := newTestEngine(t, "allow alice cmd *")
		d := engine.Evaluate(Request{Actor: "alice", Command: "ls"})
		assert.True(t, d.Permitted)
		assert.True(t, d.PasswordRequired)
	})

	t.Run("per-rule override wins", func(t *testing.T) {
		engine := newTestEngine(t, "allow alice cmd * password false")
		d := engine.Evaluate(Request{Actor: "alice", Command: "ls"})
		assert.True(t, d.Permitted)
		assert.False(t, d.PasswordRequired)
	})

	t.Run("default deny keeps global default", func(t *testing.T) {
		engine := newTestEngine(t, "password_required false")
		d := engine.Evaluate(Request{Actor: "alice", Command: "ls"})
		assert.False(t, d.Permitted)
		assert.False(t, d.PasswordRequired)
		require.Nil(t, d.Rule)
	})
}
