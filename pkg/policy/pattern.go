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
	"regexp"
	"strings"

	"github.com/jeremyhahn/go-elev/pkg/logging"
)

// Pattern is a compiled command matcher. Three forms are supported:
//
//   - "*" matches any command;
//   - a pattern containing "*" or "?" is compiled to an anchored
//     regular expression ("*" any sequence, "?" any single character,
//     everything else literal);
//   - a pattern prefixed with "~" is compiled as a raw anchored
//     regular expression;
//   - anything else is an exact literal match.
//
// A "~" pattern that fails to compile matches nothing. Parse-time
// compilation never panics on user-supplied input.
type Pattern struct {
	raw       string
	re        *regexp.Regexp
	matchAll  bool
	matchNone bool
}

// CompilePattern compiles a command pattern. Compilation failures are
// reported through the logger and yield a pattern that matches
// nothing.
func CompilePattern(raw string, logger *logging.Logger) *Pattern {
	p := &Pattern{raw: raw}

	switch {
	case raw == "*":
		p.matchAll = true

	case strings.HasPrefix(raw, "~"):
		re, err := regexp.Compile("^(?:" + raw[1:] + ")$")
		if err != nil {
			logger.Warnf("invalid command regexp %q, rule will match nothing: %v", raw, err)
			p.matchNone = true
			break
		}
		p.re = re

	case strings.ContainsAny(raw, "*?"):
		p.re = globToRegexp(raw)
	}

	return p
}

// Match reports whether command satisfies the pattern.
func (p *Pattern) Match(command string) bool {
	switch {
	case p.matchNone:
		return false
	case p.matchAll:
		return true
	case p.re != nil:
		return p.re.MatchString(command)
	default:
		return p.raw == command
	}
}

// String returns the original pattern text.
func (p *Pattern) String() string {
	return p.raw
}

// globToRegexp builds an anchored regular expression from a glob
// pattern. The construction escapes every literal rune, so the result
// always compiles.
func globToRegexp(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
