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
	"io"
	"os"

	"github.com/fatih/color"
)

// Diagnostics go to stderr; stdout belongs to the executed command.
var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
)

// Printer writes user-facing diagnostics.
type Printer struct {
	writer io.Writer
}

// NewPrinter creates a Printer on writer.
func NewPrinter(writer io.Writer) *Printer {
	return &Printer{writer: writer}
}

// Errorf prints a highlighted error line.
func (p *Printer) Errorf(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(p.writer, "elev: "+format+"\n", args...)
}

// Warnf prints a highlighted warning line.
func (p *Printer) Warnf(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(p.writer, "elev: "+format+"\n", args...)
}

// Infof prints a plain informational line.
func (p *Printer) Infof(format string, args ...interface{}) {
	fmt.Fprintf(p.writer, "elev: "+format+"\n", args...)
}

// stderr is the default diagnostics printer.
var stderr = NewPrinter(os.Stderr)
