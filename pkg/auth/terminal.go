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

package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalConversation prompts on the controlling terminal. Secrets
// are read with echo suppressed via the terminal driver, never from
// stdin, so pipes and redirection cannot feed the password prompt.
type TerminalConversation struct {
	tty *os.File
}

var _ Conversation = (*TerminalConversation)(nil)

// NewTerminalConversation opens /dev/tty for the conversation.
// Returns ErrNoTerminal when the process has no controlling terminal.
func NewTerminalConversation() (*TerminalConversation, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTerminal, err)
	}
	return &TerminalConversation{tty: tty}, nil
}

// Close releases the terminal handle.
func (c *TerminalConversation) Close() error {
	return c.tty.Close()
}

// PromptEchoOff writes the prompt and reads a secret with echo
// disabled.
func (c *TerminalConversation) PromptEchoOff(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(c.tty, prompt); err != nil {
		return nil, err
	}
	secret, err := term.ReadPassword(int(c.tty.Fd()))
	// ReadPassword swallows the trailing newline; emit one so the
	// next output starts on a fresh line.
	fmt.Fprintln(c.tty)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read secret: %w", err)
	}
	return secret, nil
}

// PromptEchoOn writes the prompt and reads a visible line.
func (c *TerminalConversation) PromptEchoOn(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(c.tty, prompt); err != nil {
		return nil, err
	}
	line, err := bufio.NewReader(c.tty).ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read response: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// Info shows an informational notice on the terminal.
func (c *TerminalConversation) Info(msg string) {
	fmt.Fprintln(c.tty, msg)
}

// Error shows an error notice on the terminal.
func (c *TerminalConversation) Error(msg string) {
	fmt.Fprintln(c.tty, msg)
}
