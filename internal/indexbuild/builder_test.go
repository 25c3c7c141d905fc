package indexbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. CommandBuilder tests re-run the test
// binary with DOCFIND_HELPER_MODE set so it behaves like a builder executable.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv("DOCFIND_HELPER_MODE")
	if mode == "" {
		return
	}

	in, _ := io.ReadAll(os.Stdin)
	switch mode {
	case "echo":
		_, _ = os.Stdout.Write([]byte{0x00, 0xFF})
		_, _ = os.Stdout.Write(in)
		os.Exit(0)
	case "reject":
		fmt.Fprintln(os.Stderr, "Failed to parse JSON: EOF while parsing a value")
		os.Exit(1)
	}
	os.Exit(2)
}

func helperBuilder(mode string) *CommandBuilder {
	return &CommandBuilder{
		Path: os.Args[0],
		Args: []string{"-test.run=TestHelperProcess", "--"},
		Env:  []string{"DOCFIND_HELPER_MODE=" + mode},
	}
}

func TestCommandBuilder_ReturnsStdout(t *testing.T) {
	t.Parallel()

	out, err := helperBuilder("echo").Build(context.Background(), `[{"id":"a"}]`)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x00, 0xFF}, `[{"id":"a"}]`...), out)
}

func TestCommandBuilder_RejectionIsCapabilityError(t *testing.T) {
	t.Parallel()

	_, err := helperBuilder("reject").Build(context.Background(), "not json")
	require.Error(t, err)

	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "Failed to parse JSON: EOF while parsing a value", capErr.Message)
	assert.Contains(t, err.Error(), "Failed to parse JSON")

	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestCommandBuilder_MissingExecutable(t *testing.T) {
	t.Parallel()

	b := &CommandBuilder{Path: "/nonexistent/docfind-build-index"}
	_, err := b.Build(context.Background(), "[]")
	require.Error(t, err)

	var capErr *CapabilityError
	assert.False(t, errors.As(err, &capErr), "a missing tool is not a builder rejection")
}

func TestCommandBuilder_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := (&CommandBuilder{}).Build(context.Background(), "[]")
	assert.Error(t, err)
}

func TestBuilderFunc(t *testing.T) {
	t.Parallel()

	var got string
	f := BuilderFunc(func(_ context.Context, docs string) ([]byte, error) {
		got = docs
		return []byte("idx"), nil
	})

	out, err := f.Build(context.Background(), "[]")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
	assert.Equal(t, []byte("idx"), out)
}

func TestCapabilityError_Error(t *testing.T) {
	t.Parallel()

	inner := errors.New("exit status 1")
	assert.Equal(t, "index builder failed: bad input", (&CapabilityError{Message: "bad input", Err: inner}).Error())
	assert.Equal(t, "index builder failed: exit status 1", (&CapabilityError{Err: inner}).Error())
	assert.ErrorIs(t, &CapabilityError{Err: inner}, inner)
}
