// Package fsops implements the filesystem operations exposed through the
// sandbox: reads with a size ceiling, atomic writes and edits, move and
// directory creation, flat listing, and recursive glob search. Every
// function resolves its path arguments through the Sandbox before touching
// the filesystem and wraps failures with the operation and path that caused
// them.
package fsops

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/codefionn/sandboxfs/internal/logger"
	"github.com/codefionn/sandboxfs/internal/sandbox"
)

// DefaultMaxReadBytes is the ceiling on single-file read size when no
// override is configured.
const DefaultMaxReadBytes int64 = 1 << 20

// readCeiling maps the configured value to an effective ceiling; zero or
// negative selects the default.
func readCeiling(maxBytes int64) int64 {
	if maxBytes <= 0 {
		return DefaultMaxReadBytes
	}
	return maxBytes
}

// ReadFile returns the text content of the file at path. It fails when the
// resolved entry is not a regular file, when the content exceeds the size
// ceiling (maxBytes, or DefaultMaxReadBytes when maxBytes is zero), or when
// the content is not valid UTF-8.
func ReadFile(ctx context.Context, sb *sandbox.Sandbox, path string, maxBytes int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ceiling := readCeiling(maxBytes)
	resolved, err := sb.ResolvePath(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if info.Size() > ceiling {
		return "", fmt.Errorf("%w: %s (%d bytes)", ErrSizeLimit, path, info.Size())
	}

	f, err := os.Open(resolved)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	// Read one byte past the ceiling and re-check: the file may have grown
	// between the metadata check and this read.
	data, err := io.ReadAll(io.LimitReader(f, ceiling+1))
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	if int64(len(data)) > ceiling {
		return "", fmt.Errorf("%w: %s", ErrSizeLimit, path)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrEncoding, path)
	}
	return string(data), nil
}

// readResult is the per-item outcome of a multi-read. The boundary contract
// drops failed items, but the richer form is kept for internal use.
type readResult struct {
	Path    string
	Content string
	Err     error
}

func readAll(ctx context.Context, sb *sandbox.Sandbox, paths []string, maxBytes int64) []readResult {
	results := make([]readResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		results[i].Path = path
		g.Go(func() error {
			results[i].Content, results[i].Err = ReadFile(ctx, sb, path, maxBytes)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ReadMultipleFiles reads every path concurrently. A failed path is logged
// and omitted from the result; the aggregate call never fails. Output order
// follows input order by index, so the result may be shorter than the input.
func ReadMultipleFiles(ctx context.Context, sb *sandbox.Sandbox, paths []string, maxBytes int64) []string {
	contents := make([]string, 0, len(paths))
	for _, r := range readAll(ctx, sb, paths, maxBytes) {
		if r.Err != nil {
			logger.Warn("read_multiple_files: skipping %s: %v", r.Path, r.Err)
			continue
		}
		contents = append(contents, r.Content)
	}
	return contents
}
