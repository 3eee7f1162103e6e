//go:build !unix

package platform

import (
	"errors"
	"io"
	"os"
)

func preadFull(f *os.File, p []byte, off int64) error {
	_, err := f.ReadAt(p, off)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func pwriteFull(f *os.File, p []byte, off int64) error {
	_, err := f.WriteAt(p, off)
	return err
}
