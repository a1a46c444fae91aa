package fsops

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/codefionn/sandboxfs/internal/sandbox"
)

// FileInfo is the metadata returned by GetFileInfo.
type FileInfo struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Permissions string    `json:"permissions"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	IsDir       bool      `json:"is_dir"`
	IsFile      bool      `json:"is_file"`
}

// GetFileInfo returns metadata for the entry at path: permission bits, size,
// and creation/modification timestamps.
func GetFileInfo(ctx context.Context, sb *sandbox.Sandbox, path string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := sb.ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("get file info: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("get file info %s: %w", path, err)
	}
	return &FileInfo{
		Path:        resolved,
		Size:        info.Size(),
		Permissions: fmt.Sprintf("%04o", info.Mode().Perm()),
		Created:     createdTime(resolved, info),
		Modified:    info.ModTime(),
		IsDir:       info.IsDir(),
		IsFile:      info.Mode().IsRegular(),
	}, nil
}
