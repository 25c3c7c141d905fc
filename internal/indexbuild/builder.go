// Package indexbuild drives the external search-index builder: it feeds a
// document collection to the builder and stores the binary index it returns.
package indexbuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultBuilder is the builder executable looked up on PATH when none is
// configured.
const DefaultBuilder = "docfind-build-index"

// Builder turns a JSON document collection into a binary index. The index
// format belongs to the builder and is never inspected here.
type Builder interface {
	Build(ctx context.Context, documentsJSON string) ([]byte, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(ctx context.Context, documentsJSON string) ([]byte, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, documentsJSON string) ([]byte, error) {
	return f(ctx, documentsJSON)
}

// CapabilityError is a rejection reported by the builder itself, such as
// malformed JSON. Message is the builder's own diagnostic, untouched.
type CapabilityError struct {
	Message string
	Err     error
}

func (e *CapabilityError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("index builder failed: %v", e.Err)
	}
	return fmt.Sprintf("index builder failed: %s", e.Message)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// CommandBuilder runs an external builder executable. The document
// collection goes to its stdin and the index is read from its stdout.
type CommandBuilder struct {
	Path string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the current environment.
	Env []string
}

// Build runs the command once. A non-zero exit becomes a *CapabilityError
// carrying the command's stderr.
func (b *CommandBuilder) Build(ctx context.Context, documentsJSON string) ([]byte, error) {
	if strings.TrimSpace(b.Path) == "" {
		return nil, errors.New("index builder command is not configured")
	}

	cmd := exec.CommandContext(ctx, b.Path, b.Args...) // #nosec G204 -- builder command comes from local config
	cmd.Dir = b.Dir
	if len(b.Env) > 0 {
		cmd.Env = append(os.Environ(), b.Env...)
	}
	cmd.Stdin = strings.NewReader(documentsJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return nil, &CapabilityError{Message: strings.TrimSpace(stderr.String()), Err: err}
		}
		return nil, fmt.Errorf("run index builder %s: %w", b.Path, err)
	}
	return stdout.Bytes(), nil
}
