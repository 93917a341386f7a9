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

// Package privilege wraps the OS-specific parts of elev: resolving
// identities, switching the process identity, and spawning commands
// with a minimal environment. The core treats these operations as
// atomic; their failures map into the elev error taxonomy.
package privilege

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const fallbackShell = "/bin/sh"

// Creds is a resolved OS identity.
type Creds struct {
	Username string
	UID      int
	GID      int
	Groups   []int
	HomeDir  string
	Shell    string
}

// Lookup resolves username to its credentials, including
// supplementary groups and login shell.
func Lookup(username string) (*Creds, error) {
	u, err := user.Lookup(username)
	if err != nil {
		if _, ok := err.(user.UnknownUserError); ok {
			return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, username)
		}
		return nil, fmt.Errorf("%w: lookup %q: %v", ErrTargetNotFound, username, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, fmt.Errorf("%w: non-numeric uid for %q", ErrTargetNotFound, username)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, fmt.Errorf("%w: non-numeric gid for %q", ErrTargetNotFound, username)
	}

	creds := &Creds{
		Username: u.Username,
		UID:      uid,
		GID:      gid,
		HomeDir:  u.HomeDir,
		Shell:    loginShell(u.Username),
	}

	ids, err := u.GroupIds()
	if err == nil {
		for _, id := range ids {
			if g, err := strconv.Atoi(id); err == nil {
				creds.Groups = append(creds.Groups, g)
			}
		}
	}

	return creds, nil
}

// CurrentUsername resolves the invoking user from the real uid. Falls
// back to the numeric uid string when the lookup fails.
func CurrentUsername() string {
	uid := unix.Getuid()
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return strconv.Itoa(uid)
	}
	return u.Username
}

// UserGroups returns the names of the OS groups username belongs to.
// Resolution failures yield an empty set; the decision engine then
// simply has no group predicates to satisfy, which is the deny-safe
// direction.
func UserGroups(username string) ([]string, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return nil, fmt.Errorf("privilege: failed to look up %q: %w", username, err)
	}
	ids, err := u.GroupIds()
	if err != nil {
		return nil, fmt.Errorf("privilege: failed to resolve groups for %q: %w", username, err)
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		g, err := user.LookupGroupId(id)
		if err != nil {
			continue
		}
		names = append(names, g.Name)
	}
	return names, nil
}

// RealUID returns the invoking (real) uid.
func RealUID() int {
	return unix.Getuid()
}

// EffectiveUID returns the effective uid; elev requires 0 here from
// its setuid installation.
func EffectiveUID() int {
	return unix.Geteuid()
}

// loginShell reads the user's shell from the system password file.
// os/user does not expose the shell field.
func loginShell(username string) string {
	f, err := os.Open("/etc/passwd")
	if err != nil {
		return fallbackShell
	}
	defer func() { _ = f.Close() }()
	return shellFromPasswd(f, username)
}

// shellFromPasswd scans passwd-format lines for username's shell.
func shellFromPasswd(r io.Reader, username string) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 || fields[0] != username {
			continue
		}
		if shell := strings.TrimSpace(fields[6]); shell != "" {
			return shell
		}
		return fallbackShell
	}
	return fallbackShell
}
