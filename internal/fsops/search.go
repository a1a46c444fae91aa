package fsops

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codefionn/sandboxfs/internal/logger"
	"github.com/codefionn/sandboxfs/internal/sandbox"
)

// ListDirectory returns the names of path's immediate children, sorted
// lexicographically, with directory names suffixed by "/". Symlinked entries
// are skipped, not surfaced as errors.
func ListDirectory(ctx context.Context, sb *sandbox.Sandbox, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := sb.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", path, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink != 0 {
			logger.Debug("list_directory %s: skipping symlink %s", path, entry.Name())
			continue
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// matcher holds a compiled include/exclude pattern pair. Patterns are
// lowercased at compile time and tested against lowercased bare file names,
// never full paths.
type matcher struct {
	include  string
	excludes []string
}

func compilePatterns(include string, excludes []string) (*matcher, error) {
	m := &matcher{include: strings.ToLower(include)}
	if !doublestar.ValidatePattern(m.include) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, include)
	}
	for _, ex := range excludes {
		lowered := strings.ToLower(ex)
		if !doublestar.ValidatePattern(lowered) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, ex)
		}
		m.excludes = append(m.excludes, lowered)
	}
	return m, nil
}

func (m *matcher) matches(name string) bool {
	lowered := strings.ToLower(name)
	if ok, _ := doublestar.Match(m.include, lowered); !ok {
		return false
	}
	for _, ex := range m.excludes {
		if ok, _ := doublestar.Match(ex, lowered); ok {
			return false
		}
	}
	return true
}

// SearchFiles walks the subtree under path without following symlinks and
// without honoring ignore files, and returns the absolute paths of regular
// files whose lowercased name matches the include pattern and none of the
// exclude patterns, sorted lexicographically. Per-entry walk errors are
// logged and skipped; they never abort the walk.
func SearchFiles(ctx context.Context, sb *sandbox.Sandbox, path, include string, excludes []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := sb.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	m, err := compilePatterns(include, excludes)
	if err != nil {
		return nil, fmt.Errorf("search files in %s: %w", path, err)
	}

	matches := []string{}
	walkErr := filepath.WalkDir(resolved, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("search_files %s: skipping %s: %v", path, p, err)
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if m.matches(d.Name()) {
			matches = append(matches, p)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("search files in %s: %w", path, walkErr)
	}
	sort.Strings(matches)
	return matches, nil
}
