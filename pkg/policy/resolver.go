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
	"time"

	"github.com/jeremyhahn/go-elev/pkg/logging"
)

// Resolver maps a username to the roles it currently holds. A role
// applies when the username is a member and, if the role declares a
// time window, the current time-of-day falls inside it. Stateless
// with respect to the role table snapshot it was built from.
type Resolver struct {
	roles  map[string]*Role
	logger *logging.Logger
	now    func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the resolver's time source. Used by tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a role resolver over the given role table.
func NewResolver(roles map[string]*Role, logger *logging.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		roles:  roles,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the sorted set of role names username holds right
// now.
func (r *Resolver) Resolve(username string) []string {
	now := r.now()
	held := make([]string, 0, len(r.roles))
	for name, role := range r.roles {
		if !role.HasMember(username) {
			continue
		}
		if role.windowInvalid {
			r.logger.Debugf("role %q skipped for %q: invalid time window", name, username)
			continue
		}
		if role.Window != nil && !role.Window.Contains(now) {
			r.logger.Debugf("role %q skipped for %q: outside window %s", name, username, role.Window)
			continue
		}
		held = append(held, name)
	}
	sort.Strings(held)
	return held
}
