//go:build linux

package fsops

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// createdTime returns the inode change time, the closest thing Linux offers
// to a creation timestamp without statx support on every filesystem.
func createdTime(path string, info os.FileInfo) time.Time {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return info.ModTime()
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
}
