// Package exit describes how the treeq binary terminates.
package exit

import (
	"fmt"
	"io"
	"os"
)

const (
	CodeOK = 0
	// CodeError covers usage errors and unreadable inputs.
	CodeError = 1
	// CodeInterrupted is used when a signal stops a lazy run.
	CodeInterrupted = 130
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message to the output; an empty message prints nothing.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success prints message to stdout and exits with CodeOK.
func Success(message string) *Result {
	return &Result{Output: os.Stdout, ExitCode: CodeOK, Message: message}
}

// Error prints message to stderr and exits with CodeError.
func Error(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeError, Message: message}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// Interrupted reports a run stopped by a signal.
func Interrupted(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: CodeInterrupted, Message: message}
}
