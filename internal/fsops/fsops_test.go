package fsops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/sandboxfs/internal/sandbox"
)

// TestFileLifecycle runs a complete write, read, edit, move flow against a
// single root and confirms the boundary holds throughout.
func TestFileLifecycle(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	sb := newSandbox(t, root)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("secret"), 0o644))

	draft := filepath.Join(root, "notes.txt")
	require.NoError(t, WriteFile(ctx, sb, draft, "draft: hello\n"))

	content, err := ReadFile(ctx, sb, draft, 0)
	require.NoError(t, err)
	assert.Equal(t, "draft: hello\n", content)

	result, err := EditFile(ctx, sb, draft, []Edit{{Old: "draft", New: "final"}}, false)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Contains(t, result.Diff, "+final: hello")

	status, err := CreateDirectory(ctx, sb, filepath.Join(root, "archive"))
	require.NoError(t, err)
	assert.Empty(t, status)

	archived := filepath.Join(root, "archive", "notes.txt")
	require.NoError(t, MoveFile(ctx, sb, draft, archived))

	content, err = ReadFile(ctx, sb, archived, 0)
	require.NoError(t, err)
	assert.Equal(t, "final: hello\n", content)

	entries, err := ListDirectory(ctx, sb, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive/"}, entries)

	found, err := SearchFiles(ctx, sb, root, "notes.*", nil)
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = ReadFile(ctx, sb, filepath.Join(outside, "secret.txt"), 0)
	assert.ErrorIs(t, err, sandbox.ErrOutsideSandbox)
	_, err = ReadFile(ctx, sb, filepath.Join(root, "..", filepath.Base(outside), "secret.txt"), 0)
	assert.ErrorIs(t, err, sandbox.ErrOutsideSandbox)
}

func TestCancelledContext(t *testing.T) {
	root := t.TempDir()
	sb := newSandbox(t, root)
	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadFile(ctx, sb, path, 0)
	assert.ErrorIs(t, err, context.Canceled)
	err = WriteFile(ctx, sb, path, "y")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = SearchFiles(ctx, sb, root, "*", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
