//go:build !linux

package fsops

import (
	"os"
	"time"
)

func createdTime(path string, info os.FileInfo) time.Time {
	return info.ModTime()
}
