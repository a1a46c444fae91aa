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

func TestListDirectory(t *testing.T) {
	root := t.TempDir()
	sb := newSandbox(t, root)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	t.Run("sorted names with directory suffix", func(t *testing.T) {
		entries, err := ListDirectory(ctx, sb, root)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.txt", "sub/"}, entries)
	})

	t.Run("skips symlinked entries", func(t *testing.T) {
		require.NoError(t, os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link.txt")))

		entries, err := ListDirectory(ctx, sb, root)
		require.NoError(t, err)
		assert.NotContains(t, entries, "link.txt")
	})

	t.Run("rejects path outside sandbox", func(t *testing.T) {
		_, err := ListDirectory(ctx, sb, "/etc")
		assert.ErrorIs(t, err, sandbox.ErrOutsideSandbox)
	})

	t.Run("rejects missing directory", func(t *testing.T) {
		_, err := ListDirectory(ctx, sb, filepath.Join(root, "gone"))
		assert.ErrorIs(t, err, sandbox.ErrNotFound)
	})
}

func TestSearchFiles(t *testing.T) {
	root := t.TempDir()
	sb := newSandbox(t, root)
	ctx := context.Background()

	mkfile := func(t *testing.T, parts ...string) string {
		t.Helper()
		path := filepath.Join(append([]string{root}, parts...)...)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		return path
	}

	readme := mkfile(t, "README.md")
	mainGo := mkfile(t, "src", "main.go")
	utilGo := mkfile(t, "src", "nested", "util.go")
	mkfile(t, "src", "nested", "util_test.go")

	t.Run("matches recursively by bare name", func(t *testing.T) {
		found, err := SearchFiles(ctx, sb, root, "*.go", nil)
		require.NoError(t, err)
		canonicalRoot, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		for _, p := range found {
			assert.True(t, filepath.IsAbs(p))
			assert.Contains(t, p, canonicalRoot)
		}
		assert.Len(t, found, 3)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		found, err := SearchFiles(ctx, sb, root, "readme.MD", nil)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, filepath.Base(readme), filepath.Base(found[0]))
	})

	t.Run("exclude patterns remove matches", func(t *testing.T) {
		found, err := SearchFiles(ctx, sb, root, "*.go", []string{"*_test.go"})
		require.NoError(t, err)
		names := make([]string, 0, len(found))
		for _, p := range found {
			names = append(names, filepath.Base(p))
		}
		assert.ElementsMatch(t, []string{filepath.Base(mainGo), filepath.Base(utilGo)}, names)
	})

	t.Run("results are sorted", func(t *testing.T) {
		found, err := SearchFiles(ctx, sb, root, "*", nil)
		require.NoError(t, err)
		assert.IsNonDecreasing(t, found)
	})

	t.Run("no matches yields empty non-nil slice", func(t *testing.T) {
		found, err := SearchFiles(ctx, sb, root, "*.rs", nil)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("rejects invalid include pattern", func(t *testing.T) {
		_, err := SearchFiles(ctx, sb, root, "[", nil)
		assert.ErrorIs(t, err, ErrInvalidPattern)
	})

	t.Run("rejects invalid exclude pattern", func(t *testing.T) {
		_, err := SearchFiles(ctx, sb, root, "*", []string{"["})
		assert.ErrorIs(t, err, ErrInvalidPattern)
	})

	t.Run("rejects start directory outside sandbox", func(t *testing.T) {
		_, err := SearchFiles(ctx, sb, "/etc", "*", nil)
		assert.ErrorIs(t, err, sandbox.ErrOutsideSandbox)
	})

	t.Run("does not follow symlinked directories", func(t *testing.T) {
		outside := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.go"), []byte("s"), 0o644))
		require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

		found, err := SearchFiles(ctx, sb, root, "secret.go", nil)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
