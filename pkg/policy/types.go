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

// Package policy implements the elev authorization policy: the rule
// and role store parsed from the policy file, the decision engine
// that evaluates requests against it, and the resolver that maps a
// username to its currently held roles.
package policy

import (
	"fmt"
	"time"
)

// Effect is the outcome a rule produces when it matches.
type Effect string

const (
	// EffectAllow permits the request.
	EffectAllow Effect = "allow"
	// EffectDeny rejects the request.
	EffectDeny Effect = "deny"
)

// DefaultTimeout is the proof-of-authentication validity window used
// when the policy file does not set one.
const DefaultTimeout = 60 * time.Second

// Rule is a single policy statement. A rule with no predicates
// matches every request at its priority tier.
type Rule struct {
	// Effect is allow or deny.
	Effect Effect

	// User is an optional exact username predicate.
	User string

	// Group is an optional exact OS group predicate. When both User
	// and Group are set, the subject matches if either side matches.
	Group string

	// TargetUser is an optional required target identity.
	TargetUser string

	// Command is an optional compiled command pattern.
	Command *Pattern

	// RequiredRoles requires the subject to hold at least one of the
	// named roles when non-empty.
	RequiredRoles []string

	// Priority orders evaluation; higher evaluates first. Default 0.
	Priority int

	// PasswordOverride optionally overrides the global
	// password-required default for requests this rule decides.
	PasswordOverride *bool

	// index is the declaration order, the tie-break at equal priority.
	index int
}

// Role is a named set of member usernames with an optional
// time-of-day eligibility window.
type Role struct {
	// Name identifies the role in rule predicates.
	Name string

	// Members are the usernames holding the role.
	Members []string

	// Window optionally restricts when the role applies.
	Window *TimeWindow

	// windowInvalid marks a role whose declared window failed to
	// parse; the role is never eligible rather than always eligible.
	windowInvalid bool
}

// HasMember reports whether username is in the role's member list.
func (r *Role) HasMember(username string) bool {
	for _, m := range r.Members {
		if m == username {
			return true
		}
	}
	return false
}

// TimeWindow is a daily eligibility window expressed as minutes of
// the day. Windows where Start > End cross midnight.
type TimeWindow struct {
	Start int // minutes since 00:00, inclusive
	End   int // minutes since 00:00, exclusive
}

// Contains reports whether the time-of-day of t falls inside the
// window.
func (w *TimeWindow) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	if w.Start <= w.End {
		return minute >= w.Start && minute < w.End
	}
	// Crosses midnight, e.g. 22:00-06:00.
	return minute >= w.Start || minute < w.End
}

// String formats the window as HH:MM-HH:MM.
func (w *TimeWindow) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// PolicySet is the parsed policy: rules sorted for evaluation, the
// role table, and the global defaults. Built once per invocation and
// immutable thereafter.
type PolicySet struct {
	// Rules in evaluation order: descending priority, declaration
	// order as the tie-break.
	Rules []Rule

	// Roles is the role table keyed by role name.
	Roles map[string]*Role

	// Timeout is how long a successful authentication remains valid.
	Timeout time.Duration

	// PasswordRequired is the global password default, overridable
	// per rule.
	PasswordRequired bool
}

// Request is the input to the decision engine: who is asking to run
// what as whom.
type Request struct {
	// Actor is the invoking username.
	Actor string

	// Groups are the actor's OS groups.
	Groups []string

	// Roles are the actor's resolved policy roles.
	Roles []string

	// TargetUser is the identity the command should run as.
	TargetUser string

	// Command is the requested command. The CLI passes the command
	// name (argv[0]); the engine matches whatever string it is given.
	Command string
}

// Decision is the engine's verdict for a request.
type Decision struct {
	// Permitted is true iff the first matching rule allows.
	Permitted bool

	// Rule is the rule that decided the request, nil when no rule
	// matched (default deny).
	Rule *Rule

	// PasswordRequired reflects the deciding rule's override when
	// present, else the policy default.
	PasswordRequired bool
}
