package fsops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codefionn/sandboxfs/internal/sandbox"
)

// renameFile is swapped out by tests to inject a failure between the temp
// write and the rename.
var renameFile = os.Rename

// WriteFile writes content to path, creating or overwriting the file. The
// file itself need not exist, but its parent directory must resolve inside
// the sandbox. The write goes to a temp file in the target directory which
// is then renamed onto the final name, so a reader never observes a
// partially written file and a crash leaves at worst an orphan temp file.
func WriteFile(ctx context.Context, sb *sandbox.Sandbox, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := sb.ResolveForCreate(path)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := atomicWrite(sb, target, []byte(content)); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

// atomicWrite performs the temp-file + same-directory-rename sequence.
// target must already be canonical. The temp file is removed on every
// failure path.
func atomicWrite(sb *sandbox.Sandbox, target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".sandboxfs-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Re-verify containment right before the mutating rename. The window
	// between this check and the rename syscall itself is an accepted
	// residual race.
	if _, err := sb.ResolvePath(dir); err != nil {
		return err
	}
	return renameFile(tmpName, target)
}

// MoveFile renames source onto destination. The source must resolve inside
// the sandbox; the destination leaf need not exist, but its parent must.
// A pre-existing destination file is replaced by the rename.
func MoveFile(ctx context.Context, sb *sandbox.Sandbox, source, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := sb.ResolvePath(source)
	if err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	dst, err := sb.ResolveForCreate(destination)
	if err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	// Same re-check as atomicWrite: the destination parent must still be
	// contained right before the mutating rename.
	if _, err := sb.ResolvePath(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	if err := renameFile(src, dst); err != nil {
		return fmt.Errorf("move %s to %s: %w", source, destination, err)
	}
	return nil
}

// CreateDirectory creates path and any missing parents. A path that already
// exists, file or directory, is left untouched and reported through the
// status string; a fresh creation returns an empty status.
func CreateDirectory(ctx context.Context, sb *sandbox.Sandbox, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("create directory %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err == nil {
		if _, rerr := sb.ResolvePath(abs); rerr != nil {
			return "", fmt.Errorf("create directory: %w", rerr)
		}
		return fmt.Sprintf("path already exists: %s", path), nil
	}
	if !sb.CheckNewFolders(abs) {
		return "", fmt.Errorf("create directory: %w: %s", sandbox.ErrOutsideSandbox, path)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", path, err)
	}
	return "", nil
}
