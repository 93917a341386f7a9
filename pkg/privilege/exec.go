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

package privilege

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/jeremyhahn/go-elev/pkg/logging"
)

// MinimalPath is the only environment the executed command inherits.
// The invoking user's environment never crosses the privilege
// boundary.
const MinimalPath = "/usr/bin:/bin:/usr/sbin:/sbin"

// Switcher changes the current process identity. Atomic from the
// core's point of view: after Become succeeds the process is the
// target identity, with supplementary groups applied.
type Switcher interface {
	Become(creds *Creds) error
}

// Runner spawns a command with explicit arguments and a minimal
// environment, returning the child's exit status.
type Runner interface {
	Run(ctx context.Context, argv []string) (int, error)
}

// UnixSwitcher implements Switcher with setresuid/setresgid.
type UnixSwitcher struct {
	logger *logging.Logger
}

var _ Switcher = (*UnixSwitcher)(nil)

// NewUnixSwitcher creates the production identity switcher.
func NewUnixSwitcher(logger *logging.Logger) *UnixSwitcher {
	return &UnixSwitcher{logger: logger}
}

// Become switches the process to creds. Groups are set first so the
// privilege to call setgroups is not dropped prematurely.
func (s *UnixSwitcher) Become(creds *Creds) error {
	groups := creds.Groups
	if len(groups) == 0 {
		groups = []int{creds.GID}
	}
	if err := unix.Setgroups(groups); err != nil {
		return fmt.Errorf("%w: setgroups: %v", ErrTransitionFailed, err)
	}
	if err := unix.Setresgid(creds.GID, creds.GID, creds.GID); err != nil {
		return fmt.Errorf("%w: setresgid: %v", ErrTransitionFailed, err)
	}
	if err := unix.Setresuid(creds.UID, creds.UID, creds.UID); err != nil {
		return fmt.Errorf("%w: setresuid: %v", ErrTransitionFailed, err)
	}
	s.logger.Debugf("switched identity to %q (uid %d)", creds.Username, creds.UID)
	return nil
}

// UnixRunner implements Runner with os/exec and the minimal
// environment. stdin/stdout/stderr pass through to the terminal.
type UnixRunner struct {
	logger *logging.Logger
}

var _ Runner = (*UnixRunner)(nil)

// NewUnixRunner creates the production command runner.
func NewUnixRunner(logger *logging.Logger) *UnixRunner {
	return &UnixRunner{logger: logger}
}

// Run executes argv and returns the child's exit status. The command
// is resolved against MinimalPath, not the caller's PATH.
func (r *UnixRunner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("%w: empty command", ErrExecutionFailed)
	}

	path, err := resolveCommand(argv[0])
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Env = []string{"PATH=" + MinimalPath}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.logger.Infof("running command: %s", strings.Join(argv, " "))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}
	return 0, nil
}

// ExecLoginShell replaces the current process with the target user's
// login shell, started from their home directory with a minimal login
// environment. Only returns on failure.
func ExecLoginShell(creds *Creds) error {
	env := []string{
		"HOME=" + creds.HomeDir,
		"USER=" + creds.Username,
		"LOGNAME=" + creds.Username,
		"SHELL=" + creds.Shell,
		"PATH=" + MinimalPath,
	}
	if err := os.Chdir(creds.HomeDir); err != nil {
		// A missing home directory should not block a login shell.
		_ = os.Chdir("/")
	}
	err := unix.Exec(creds.Shell, []string{creds.Shell, "-l"}, env)
	return fmt.Errorf("%w: exec login shell %q: %v", ErrExecutionFailed, creds.Shell, err)
}

// resolveCommand locates name on MinimalPath. Names containing a path
// separator are used as given.
func resolveCommand(name string) (string, error) {
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %q", ErrCommandNotFound, name)
	}
	for _, dir := range strings.Split(MinimalPath, ":") {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrCommandNotFound, name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
