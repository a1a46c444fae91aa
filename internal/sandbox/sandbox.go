// Package sandbox is the sole authority on which filesystem paths the engine
// may touch. A Sandbox holds a fixed set of canonicalized root directories;
// every operation resolves caller-supplied paths through it before touching
// the filesystem. Containment is decided on canonical paths, never on the
// raw input string: a textual prefix check is defeated by ".." segments and
// symlinks, so paths are fully resolved first and only then compared against
// the already-canonical roots.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrConfiguration reports an unusable root at startup.
	ErrConfiguration = errors.New("invalid sandbox configuration")
	// ErrOutsideSandbox reports a containment violation. It is never
	// auto-corrected: an escaping path is rejected, not clamped.
	ErrOutsideSandbox = errors.New("path is outside the sandbox")
	// ErrNotFound reports a path that could not be canonicalized because it
	// does not exist.
	ErrNotFound = errors.New("path not found")
)

// Sandbox owns the canonical root set. The set is immutable after New, so
// concurrent callers need no locking.
type Sandbox struct {
	roots []string
}

// New canonicalizes every supplied root, verifies each is an existing
// directory, and returns the installed sandbox. It is called exactly once at
// process start.
func New(roots []string) (*Sandbox, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no roots supplied", ErrConfiguration)
	}

	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("%w: root %q: %v", ErrConfiguration, root, err)
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: root %q is not resolvable: %v", ErrConfiguration, root, err)
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return nil, fmt.Errorf("%w: root %q: %v", ErrConfiguration, root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: root %q is not a directory", ErrConfiguration, root)
		}
		canonical = append(canonical, resolved)
	}
	return &Sandbox{roots: canonical}, nil
}

// ResolvePath canonicalizes path (which must already exist on disk) and
// verifies the canonical result is equal to, or a descendant of, some root.
// This is the gate in front of every read, edit, move source, and listing.
func (s *Sandbox) ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	if !s.contains(resolved) {
		return "", fmt.Errorf("%w: %s", ErrOutsideSandbox, path)
	}
	return resolved, nil
}

// ResolveForCreate resolves a path whose leaf need not exist yet: the
// existing parent directory is canonicalized and containment-checked, and
// the leaf name is re-appended. Used for write targets and move
// destinations.
func (s *Sandbox) ResolveForCreate(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	parent, err := s.ResolvePath(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}

// CheckNewFolders reports whether a not-yet-existing path may be created.
// It walks the path's ancestors from most to least specific; the first
// ancestor that canonicalizes decides containment. This lets new subtrees
// be created under an existing contained ancestor without the full leaf
// chain existing.
func (s *Sandbox) CheckNewFolders(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for cur := filepath.Clean(abs); ; {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return s.contains(resolved)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return false
		}
		cur = parent
	}
}

// Roots returns a copy of the canonical root set for disclosure to callers.
func (s *Sandbox) Roots() []string {
	return append([]string(nil), s.roots...)
}

func (s *Sandbox) contains(resolved string) bool {
	for _, root := range s.roots {
		if resolved == root || strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
