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
	"sort"

	"github.com/jeremyhahn/go-elev/pkg/logging"
)

// Engine evaluates requests against a PolicySet. Evaluation is a
// single pass over the rules in descending priority order
// (declaration order breaks ties); the first fully matching rule
// decides the outcome, and an absent match is a deny.
type Engine struct {
	set    *PolicySet
	logger *logging.Logger
}

// NewEngine creates a decision engine for the given policy set.
func NewEngine(set *PolicySet, logger *logging.Logger) *Engine {
	return &Engine{
		set:    set,
		logger: logger,
	}
}

// IsPermitted reports whether the request is allowed.
func (e *Engine) IsPermitted(req Request) bool {
	return e.Evaluate(req).Permitted
}

// Evaluate returns the full decision for a request, including the
// rule that decided it and whether a password is required.
func (e *Engine) Evaluate(req Request) Decision {
	for i := range e.set.Rules {
		rule := &e.set.Rules[i]
		if !ruleMatches(rule, req) {
			continue
		}

		decision := Decision{
			Permitted:        rule.Effect == EffectAllow,
			Rule:             rule,
			PasswordRequired: e.set.PasswordRequired,
		}
		if rule.PasswordOverride != nil {
			decision.PasswordRequired = *rule.PasswordOverride
		}

		e.logger.Debug("policy decision",
			"actor", req.Actor,
			"target", req.TargetUser,
			"command", req.Command,
			"effect", string(rule.Effect),
			"priority", rule.Priority)
		return decision
	}

	e.logger.Debug("policy decision",
		"actor", req.Actor,
		"target", req.TargetUser,
		"command", req.Command,
		"effect", "default-deny")
	return Decision{
		Permitted:        false,
		PasswordRequired: e.set.PasswordRequired,
	}
}

// ruleMatches computes the predicate conjunction for a single rule.
func ruleMatches(rule *Rule, req Request) bool {
	// Subject: absent user and group predicates match anyone; when
	// present, user or group matching is an inclusive or. A ":name"
	// predicate is satisfied by an OS group or a resolved role of
	// that name.
	if rule.User != "" || rule.Group != "" {
		userMatch := rule.User != "" && rule.User == req.Actor
		groupMatch := rule.Group != "" &&
			(containsString(req.Groups, rule.Group) || containsString(req.Roles, rule.Group))
		if !userMatch && !groupMatch {
			return false
		}
	}

	if rule.TargetUser != "" && rule.TargetUser != req.TargetUser {
		return false
	}

	if len(rule.RequiredRoles) > 0 && !intersects(rule.RequiredRoles, req.Roles) {
		return false
	}

	if rule.Command != nil && !rule.Command.Match(req.Command) {
		return false
	}

	return true
}

// sortRules orders rules for evaluation: descending priority, stable
// on declaration order.
func sortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsString(b, x) {
			return true
		}
	}
	return false
}
