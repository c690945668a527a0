//go:build !windows

package logtail

import (
	"os"

	"golang.org/x/sys/unix"
)

// handleIdentity returns the device and inode of an open file.
func handleIdentity(f *os.File) (identity, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return identity{}, &os.PathError{Op: "fstat", Path: f.Name(), Err: err}
	}
	return identity{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}

// pathIdentity returns the device and inode of the file path points to,
// following symlinks.
func pathIdentity(path string) (identity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return identity{}, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return identity{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}
