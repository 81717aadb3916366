// Package diag renders compiler diagnostics the way evanw/esbuild's
// internal/logger does: a single line naming the file, line and
// column, optionally followed by the offending source line and a
// caret pointing at the exact column, in color when stdout is a
// terminal.
package diag

import (
	"fmt"
	"strings"
)

// MsgKind distinguishes a hard failure from an advisory note.
type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
)

func (k MsgKind) String() string {
	if k == Warning {
		return "warning"
	}
	return "error"
}

// Source is the text being diagnosed, kept around so Msg can render
// the offending line without the caller threading it through again.
type Source struct {
	Path     string
	Contents string
}

// Loc is a 1-based line and column into a Source.
type Loc struct {
	Line   int
	Column int
}

// Msg is one diagnostic: a kind, an optional source location, and the
// text to show.
type Msg struct {
	Kind   MsgKind
	Source *Source
	Loc    Loc
	Text   string
}

// Colors are the ANSI escapes used to render a Msg. They mirror
// esbuild's logger.Colors palette exactly, down to the unusual choice
// of "\033[37m" for Dim.
type Colors struct {
	Reset, Bold, Dim, Underline string
	Red, Green, Blue            string
	Cyan, Magenta, Yellow       string
}

// TerminalColors is the palette used when color output is enabled.
var TerminalColors = Colors{
	Reset:     "\033[0m",
	Bold:      "\033[1m",
	Dim:       "\033[37m",
	Underline: "\033[4m",
	Red:       "\033[31m",
	Green:     "\033[32m",
	Blue:      "\033[34m",
	Cyan:      "\033[36m",
	Magenta:   "\033[35m",
	Yellow:    "\033[33m",
}

// noColors is every field of Colors set to "", used when UseColor is
// false so the rendering code never needs an if/else per escape.
var noColors = Colors{}

// UseColor is the one deliberately global, mutable setting in this
// module: whether to-be-rendered diagnostics include ANSI escapes.
// Only cmd/etplc's main ever assigns it, based on terminal detection;
// every other package treats it as read-only.
var UseColor = false

func colors() Colors {
	if UseColor {
		return TerminalColors
	}
	return noColors
}

func kindColor(c Colors, kind MsgKind) string {
	if kind == Warning {
		return c.Yellow
	}
	return c.Red
}

// String renders m as a single summary line followed, if m carries a
// Source, by the offending line and a caret under the column.
func (m Msg) String() string {
	c := colors()
	kc := kindColor(c, m.Kind)

	var b strings.Builder
	if m.Source != nil {
		fmt.Fprintf(&b, "%s%s:%d:%d:%s ", c.Bold, m.Source.Path, m.Loc.Line, m.Loc.Column, c.Reset)
	}
	fmt.Fprintf(&b, "%s%s%s: %s%s\n", kc, m.Kind, c.Reset, m.Text, c.Reset)

	if m.Source != nil {
		if line, ok := sourceLine(m.Source.Contents, m.Loc.Line); ok {
			fmt.Fprintf(&b, "%s%s%s\n", c.Dim, line, c.Reset)
			fmt.Fprintf(&b, "%s%s%s^%s\n", kc, strings.Repeat(" ", max(0, m.Loc.Column-1)), c.Bold, c.Reset)
		}
	}

	return b.String()
}

func sourceLine(contents string, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	lines := strings.Split(contents, "\n")
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Log collects diagnostics in the order they were added and reports
// whether any Error-kind message was seen.
type Log struct {
	Msgs []Msg
}

// Add appends m to the log.
func (l *Log) Add(m Msg) {
	l.Msgs = append(l.Msgs, m)
}

// Addf is a convenience wrapper building a Msg with no Source from a
// format string, for diagnostics that are not tied to one input line
// (e.g. a dependency cycle spanning several definitions).
func (l *Log) Addf(kind MsgKind, format string, args ...any) {
	l.Add(Msg{Kind: kind, Text: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any logged message is Error-kind.
func (l *Log) HasErrors() bool {
	for _, m := range l.Msgs {
		if m.Kind == Error {
			return true
		}
	}
	return false
}

// String renders every message in order, separated by blank lines.
func (l *Log) String() string {
	parts := make([]string, len(l.Msgs))
	for i, m := range l.Msgs {
		parts[i] = m.String()
	}
	return strings.Join(parts, "\n")
}
