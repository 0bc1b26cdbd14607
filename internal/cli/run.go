package cli

import (
	"fmt"
	"io"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Handler is the program entrypoint for CLI execution.
//
// It is set by the main package (wired in init) so tests can call Run without
// forking processes while keeping the actual implementation out of this package.
var Handler func(args []string, stdout, stderr io.Writer) int

func Run(args []string, stdout, stderr io.Writer) int {
	if Handler == nil {
		fmt.Fprintln(stderr, "internal error: cli handler not configured")
		return ExitFailure
	}
	return Handler(args, stdout, stderr)
}

// UsageError is an invalid flag combination or value, reported before any
// network access.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func Usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}
