// Package diag implements the Logger collaborator described in spec.md
// §6 and §7: a sink for formatted diagnostics plus an overall
// success/failure verdict. A ConsoleLogger prints colorized output in the
// teacher's cmd/ailang / internal/repl palette; a MockLogger records
// silently, for tests that only care about which errors fired.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/llamalang/llamac/internal/ast"
)

// Diagnostic is one reported problem: a stable Code (see errcode), the
// primary Message, the offending node's Pos, and an optional previous-node
// reference (PrevPos/PrevMessage) used by redefinition-style errors.
type Diagnostic struct {
	Code        string
	Pos         ast.Pos
	Message     string
	PrevPos     ast.Pos
	PrevMessage string
}

// HasPrev reports whether this diagnostic carries a previous-occurrence
// reference line.
func (d Diagnostic) HasPrev() bool { return d.PrevMessage != "" }

// String formats the diagnostic using the spec.md §6 error string format:
// "<line>:<col>:error: <message>", with an optional
// "\n-> <line>:<col>: <message>" continuation.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%serror: %s", d.Pos, d.Message)
	if d.HasPrev() {
		s += fmt.Sprintf("\n-> %s %s", d.PrevPos, d.PrevMessage)
	}
	return s
}

// Logger is the diagnostic sink. Error and Warning take an already
// code-and-position-formatted Diagnostic; Success reports whether no
// Error call has been made so far (warnings do not count).
type Logger interface {
	Error(d Diagnostic)
	Warning(d Diagnostic)
	Success() bool
}

// ConsoleLogger writes colorized diagnostics to an io.Writer (normally
// os.Stderr), mirroring the teacher's color palette: red for errors,
// yellow for warnings, bold for the error code.
type ConsoleLogger struct {
	Out      io.Writer
	errCount int
}

// NewConsoleLogger creates a ConsoleLogger writing to os.Stderr.
func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{Out: os.Stderr}
}

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func (l *ConsoleLogger) Error(d Diagnostic) {
	l.errCount++
	fmt.Fprintf(l.Out, "%s %s: %s\n", red("error"), bold(d.Code), d.String())
}

func (l *ConsoleLogger) Warning(d Diagnostic) {
	fmt.Fprintf(l.Out, "%s %s: %s\n", yellow("warning"), bold(d.Code), d.String())
}

func (l *ConsoleLogger) Success() bool { return l.errCount == 0 }

// MockLogger silently records diagnostics; used by tests and by any
// caller that wants to silence output (grounded on the original source's
// error.LoggerMock / quiet_analyze).
type MockLogger struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger { return &MockLogger{} }

func (l *MockLogger) Error(d Diagnostic)   { l.Errors = append(l.Errors, d) }
func (l *MockLogger) Warning(d Diagnostic) { l.Warnings = append(l.Warnings, d) }
func (l *MockLogger) Success() bool        { return len(l.Errors) == 0 }

// Codes returns the error codes reported so far, in report order.
func (l *MockLogger) Codes() []string {
	out := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		out[i] = e.Code
	}
	return out
}
