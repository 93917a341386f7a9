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
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-elev/internal/config"
	"github.com/jeremyhahn/go-elev/pkg/auth"
	"github.com/jeremyhahn/go-elev/pkg/logging"
	"github.com/jeremyhahn/go-elev/pkg/policy"
	"github.com/jeremyhahn/go-elev/pkg/privilege"
	"github.com/jeremyhahn/go-elev/pkg/session"
	"github.com/jeremyhahn/go-elev/pkg/storage/file"
)

// run is the elev pipeline: guards, policy decision, authentication,
// identity switch, execution. Every refusal path returns an error
// mapping to exit status 1; only a command that actually ran can
// produce another status.
func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	invoker := privilege.CurrentUsername()
	logger = logger.With("invocation", uuid.NewString(), "user", invoker)

	if privilege.RealUID() == 0 {
		return ErrAlreadyRoot
	}
	if privilege.EffectiveUID() != 0 {
		return ErrNotSetuid
	}

	if flagClearTimestamp {
		store, closeStore, err := openSessionStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()
		if err := store.Clear(invoker); err != nil {
			return fmt.Errorf("failed to clear cached authentication: %w", err)
		}
		logger.Info("cleared cached authentication")
		return nil
	}

	if flagLogin && len(args) > 0 {
		return fmt.Errorf("%w: -i starts a login shell and takes no command", ErrNoCommand)
	}
	if !flagLogin && len(args) == 0 {
		return ErrNoCommand
	}

	target, err := privilege.Lookup(flagTargetUser)
	if err != nil {
		return err
	}

	// Group resolution failures degrade to an empty set; fewer
	// predicates satisfied means deny, never allow.
	groups, err := privilege.UserGroups(invoker)
	if err != nil {
		logger.Warnf("failed to resolve groups: %v", err)
		groups = nil
	}

	set, err := policy.LoadFile(cfg.PolicyFile, logger)
	if err != nil {
		return err
	}

	roles := policy.NewResolver(set.Roles, logger).Resolve(invoker)

	command := target.Shell
	if !flagLogin {
		command = args[0]
	}

	decision := policy.NewEngine(set, logger).Evaluate(policy.Request{
		Actor:      invoker,
		Groups:     groups,
		Roles:      roles,
		TargetUser: flagTargetUser,
		Command:    command,
	})
	if !decision.Permitted {
		logger.Warn("request denied by policy",
			"target", flagTargetUser,
			"command", command)
		return policy.ErrPermissionDenied
	}

	store, closeStore, err := openSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sess := session.New(store, invoker, set.Timeout, roles, logger)

	if decision.PasswordRequired && !sess.CheckTimeout() {
		if flagNonInteractive {
			return ErrNonInteractive
		}
		conv, err := auth.NewTerminalConversation()
		if err != nil {
			return err
		}
		defer func() { logger.MaybeError(conv.Close()) }()

		verifier := auth.NewHelperVerifier(cfg.AuthHelper)
		if err := auth.NewAuthenticator(conv, verifier, logger).Authenticate(ctx, sess); err != nil {
			return err
		}
	}

	if err := privilege.NewUnixSwitcher(logger).Become(target); err != nil {
		return err
	}

	if flagLogin {
		// Only returns on failure.
		return privilege.ExecLoginShell(target)
	}

	logger.Info("executing command",
		"target", flagTargetUser,
		"command", command)

	code, err := privilege.NewUnixRunner(logger).Run(ctx, args)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// newLogger builds the invocation logger per the settings; -v turns
// on debug lines.
func newLogger(cfg *config.Config) *logging.Logger {
	if cfg.Logging.Syslog {
		return logging.NewSyslogLogger(cfg.Logging.Tag, flagVerbose)
	}
	return logging.NewLogger(flagVerbose)
}

// openSessionStore opens the per-user session records under the
// configured state directory.
func openSessionStore(cfg *config.Config, logger *logging.Logger) (*session.Store, func(), error) {
	backend, err := file.New(cfg.SessionDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session state at %s: %w", cfg.SessionDir, err)
	}
	store, err := session.NewStore(backend, logger)
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return store, func() { logger.MaybeError(backend.Close()) }, nil
}
