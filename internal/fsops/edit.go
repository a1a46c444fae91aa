package fsops

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/codefionn/sandboxfs/internal/diff"
	"github.com/codefionn/sandboxfs/internal/logger"
	"github.com/codefionn/sandboxfs/internal/sandbox"
)

// Edit is one literal search/replace fragment pair. Every occurrence of Old
// in the current content is replaced with New.
type Edit struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// EditResult carries the line diff between the original and edited content.
// Applied reports whether a write was attempted (dry runs never write); it
// does not report whether any fragment actually matched.
type EditResult struct {
	Diff    string `json:"diff"`
	Applied bool   `json:"applied"`
}

// EditFile applies edits to the file at path in list order. An edit whose
// Old fragment is absent from the current content is logged and skipped,
// never fatal. An empty Old fragment is skipped the same way: replacing the
// empty string would splice New between every pair of characters, which no
// caller can want. Unless dryRun is set, the edited content is persisted
// with the same temp-file + rename sequence as WriteFile.
func EditFile(ctx context.Context, sb *sandbox.Sandbox, path string, edits []Edit, dryRun bool) (*EditResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := sb.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("edit file: %w", err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("edit file %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrEncoding, path)
	}

	original := string(data)
	edited := original
	for i, e := range edits {
		if e.Old == "" || !strings.Contains(edited, e.Old) {
			logger.Info("edit_file %s: edit %d does not match current content, skipping", path, i)
			continue
		}
		edited = strings.ReplaceAll(edited, e.Old, e.New)
	}

	result := &EditResult{
		Diff:    diff.Unified(original, edited),
		Applied: !dryRun,
	}
	if dryRun {
		return result, nil
	}
	if err := atomicWrite(sb, resolved, []byte(edited)); err != nil {
		return nil, fmt.Errorf("edit file %s: %w", path, err)
	}
	return result, nil
}
