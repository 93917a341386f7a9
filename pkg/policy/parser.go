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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jeremyhahn/go-elev/pkg/logging"
)

// Policy file grammar (line oriented, "#" comments, blank lines
// ignored):
//
//	allow|deny [<user>|:<group>] [as <target_user>] [cmd <pattern>] [priority <N>] [roles <r1,r2>] [password <true|false>]
//	role <name> <user1,user2,...> [<HH:MM-HH:MM>]
//	timeout <seconds>
//	password_required <true|false>
//
// Unknown tokens inside a rule are skipped for forward compatibility.
// A line whose first token is not a recognized keyword is dropped
// with a warning. Malformed timeout and password_required values are
// fatal because they change the security posture of every rule.

// Load parses a policy from r. Warnings go through the logger; only
// I/O failures and malformed global directives are errors.
func Load(r io.Reader, logger *logging.Logger) (*PolicySet, error) {
	set := &PolicySet{
		Roles:            make(map[string]*Role),
		Timeout:          DefaultTimeout,
		PasswordRequired: true,
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens := strings.Fields(line)
		switch tokens[0] {
		case "allow", "deny":
			rule := parseRule(tokens, logger)
			rule.index = len(set.Rules)
			set.Rules = append(set.Rules, rule)

		case "role":
			parseRole(tokens, set, logger)

		case "timeout":
			if len(tokens) != 2 {
				return nil, fmt.Errorf("%w: line %d: timeout takes one value", ErrParse, lineNo)
			}
			secs, err := strconv.Atoi(tokens[1])
			if err != nil || secs < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid timeout %q", ErrParse, lineNo, tokens[1])
			}
			set.Timeout = time.Duration(secs) * time.Second

		case "password_required":
			if len(tokens) != 2 {
				return nil, fmt.Errorf("%w: line %d: password_required takes one value", ErrParse, lineNo)
			}
			v, err := strconv.ParseBool(tokens[1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: invalid password_required %q", ErrParse, lineNo, tokens[1])
			}
			set.PasswordRequired = v

		default:
			logger.Warnf("policy line %d dropped: no allow/deny effect: %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	warnUndefinedRoles(set, logger)
	sortRules(set.Rules)
	return set, nil
}

// LoadFile parses the policy file at path.
func LoadFile(path string, logger *logging.Logger) (*PolicySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, logger)
}

// parseRule consumes an allow/deny line. Leading tokens before the
// first keyword name the subject: ":group" or a bare username. A rule
// may name both a user and a group; either satisfies the subject. At
// most one of each is consumed; further non-keyword tokens are
// unknown and skipped, never allowed to replace the subject.
func parseRule(tokens []string, logger *logging.Logger) Rule {
	rule := Rule{Effect: Effect(tokens[0])}

	i := 1
	for i < len(tokens) && !isRuleKeyword(tokens[i]) {
		token := tokens[i]
		switch {
		case strings.HasPrefix(token, ":"):
			if rule.Group != "" {
				logger.Debugf("skipping unknown policy token %q", token)
			} else {
				rule.Group = token[1:]
			}
		case rule.User == "":
			rule.User = token
		default:
			// Forward compatible: unknown tokens are skipped.
			logger.Debugf("skipping unknown policy token %q", token)
		}
		i++
	}

	for i < len(tokens) {
		keyword := tokens[i]
		value := ""
		if i+1 < len(tokens) {
			value = tokens[i+1]
		}
		if isRuleKeyword(keyword) && value == "" {
			logger.Warnf("policy keyword %q missing value, ignored", keyword)
			break
		}

		switch keyword {
		case "as":
			rule.TargetUser = value
			i += 2
		case "cmd":
			rule.Command = CompilePattern(value, logger)
			i += 2
		case "priority":
			n, err := strconv.Atoi(value)
			if err != nil {
				logger.Warnf("ignoring invalid rule priority %q", value)
			} else {
				rule.Priority = n
			}
			i += 2
		case "roles":
			rule.RequiredRoles = splitList(value)
			i += 2
		case "password":
			v, err := strconv.ParseBool(value)
			if err != nil {
				logger.Warnf("ignoring invalid rule password override %q", value)
			} else {
				rule.PasswordOverride = &v
			}
			i += 2
		default:
			// Forward compatible: unknown tokens are skipped.
			logger.Debugf("skipping unknown policy token %q", keyword)
			i++
		}
	}

	return rule
}

// parseRole consumes a "role <name> <members> [window]" line.
func parseRole(tokens []string, set *PolicySet, logger *logging.Logger) {
	if len(tokens) < 3 {
		logger.Warnf("role line dropped: expected name and members: %q", strings.Join(tokens, " "))
		return
	}

	role := &Role{
		Name:    tokens[1],
		Members: splitList(tokens[2]),
	}

	if len(tokens) >= 4 {
		window, err := parseTimeWindow(tokens[3])
		if err != nil {
			// A malformed window must narrow access, not widen it.
			logger.Warnf("role %q has invalid time window %q, role disabled: %v", role.Name, tokens[3], err)
			role.windowInvalid = true
		} else {
			role.Window = window
		}
	}

	if _, ok := set.Roles[role.Name]; ok {
		logger.Warnf("role %q redefined, last definition wins", role.Name)
	}
	set.Roles[role.Name] = role
}

// parseTimeWindow parses HH:MM-HH:MM into a daily window.
func parseTimeWindow(s string) (*TimeWindow, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected HH:MM-HH:MM")
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return nil, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return nil, err
	}
	return &TimeWindow{Start: start, End: end}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time-of-day %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func isRuleKeyword(token string) bool {
	switch token {
	case "as", "cmd", "priority", "roles", "password":
		return true
	}
	return false
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// warnUndefinedRoles flags rule role predicates that reference roles
// the policy never defines. The rules are kept; such predicates can
// simply never match.
func warnUndefinedRoles(set *PolicySet, logger *logging.Logger) {
	for _, rule := range set.Rules {
		for _, name := range rule.RequiredRoles {
			if _, ok := set.Roles[name]; !ok {
				logger.Warnf("rule references undefined role %q", name)
			}
		}
	}
}
