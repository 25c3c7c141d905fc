package embed

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPatternNotFound is returned under NoMatchFail when the loader script
	// has no load statement.
	ErrPatternNotFound = errors.New("load statement not found")

	// ErrArtifactMissing is returned when the binary artifact does not exist
	// and the script has not been embedded by an earlier run.
	ErrArtifactMissing = errors.New("binary artifact missing")

	// ErrVerifyFailed means the rewritten script does not decode back to the
	// artifact. The script is not written in that case.
	ErrVerifyFailed = errors.New("embedded payload does not match artifact")
)

// NoMatchPolicy decides what a run does when the script has no load statement.
type NoMatchPolicy string

const (
	// NoMatchWarn logs a warning and succeeds. The artifact is kept.
	NoMatchWarn NoMatchPolicy = "warn"
	// NoMatchFail returns ErrPatternNotFound. The artifact is kept.
	NoMatchFail NoMatchPolicy = "fail"
)

// ParseNoMatchPolicy parses "warn" or "fail". Empty means warn.
func ParseNoMatchPolicy(s string) (NoMatchPolicy, error) {
	switch NoMatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", NoMatchWarn:
		return NoMatchWarn, nil
	case NoMatchFail:
		return NoMatchFail, nil
	default:
		return "", fmt.Errorf("invalid no-match policy %q (expected warn|fail)", s)
	}
}
