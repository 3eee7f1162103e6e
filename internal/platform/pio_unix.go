//go:build unix

package platform

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// preadFull fills p from f at off, failing with io.ErrUnexpectedEOF if the
// file ends first.
//
//nolint:gosec // G115: fd values are small non-negative integers
func preadFull(f *os.File, p []byte, off int64) error {
	fd := int(f.Fd())
	for len(p) > 0 {
		n, err := unix.Pread(fd, p, off)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrUnexpectedEOF
		}
		p = p[n:]
		off += int64(n)
	}
	return nil
}

//nolint:gosec // G115: fd values are small non-negative integers
func pwriteFull(f *os.File, p []byte, off int64) error {
	fd := int(f.Fd())
	for len(p) > 0 {
		n, err := unix.Pwrite(fd, p, off)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
		off += int64(n)
	}
	return nil
}
