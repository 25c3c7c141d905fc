// Package cli holds the argument handling and run logic behind the
// command-line tools, so that main packages stay thin and testable.
package cli

import (
	"errors"
	"fmt"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError reports missing or malformed command-line input. Nothing has
// touched the filesystem when one is returned.
type UsageError struct {
	Usage   string
	Message string
}

func (e *UsageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Usage
	}
	return e.Message + "\n" + e.Usage
}

func usageErrorf(usage, format string, args ...any) error {
	return &UsageError{Usage: usage, Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}
	return ExitFailure
}
