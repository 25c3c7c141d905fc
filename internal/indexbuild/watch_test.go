package indexbuild

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outputEquals(path string, want []byte) func() bool {
	return func() bool {
		got, err := os.ReadFile(path)
		return err == nil && bytes.Equal(got, want)
	}
}

func TestDemo_Watch_RebuildsOnChange(t *testing.T) {
	f := newDemoFixture(t)
	d := newTestDemo(t, f, &recordingBuilder{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx, "") }()

	initial, err := os.ReadFile(f.documents)
	require.NoError(t, err)
	want, _ := (&recordingBuilder{}).Build(ctx, string(initial))
	require.Eventually(t, outputEquals(f.output, want), 5*time.Second, 20*time.Millisecond)

	const updated = `[{"id":"item-002","searchTerms":[]}]`
	require.NoError(t, os.WriteFile(f.documents, []byte(updated), 0600))

	want, _ = (&recordingBuilder{}).Build(ctx, updated)
	require.Eventually(t, outputEquals(f.output, want), 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestDemo_Watch_KeepsRunningAfterFailedBuild(t *testing.T) {
	f := newDemoFixture(t)
	require.NoError(t, os.Remove(f.documents))
	d := newTestDemo(t, f, &recordingBuilder{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx, "") }()

	// Initial build fails on the missing input; creating it triggers a rebuild.
	time.Sleep(100 * time.Millisecond)
	const docs = `[{"id":"late"}]`
	require.NoError(t, os.WriteFile(f.documents, []byte(docs), 0600))

	want, _ := (&recordingBuilder{}).Build(ctx, docs)
	require.Eventually(t, outputEquals(f.output, want), 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestDemo_Watch_MissingDirectory(t *testing.T) {
	t.Parallel()

	f := newDemoFixture(t)
	d := newTestDemo(t, f, &recordingBuilder{})
	d.defaultInput = filepath.Join(f.dir, "missing", "documents.json")

	err := d.Watch(context.Background(), "")
	assert.Error(t, err)
}
