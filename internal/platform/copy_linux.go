//go:build linux

package platform

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// CopyRange copies params.Length bytes, preferring copy_file_range for
// forward copies between distinct files and falling back to read/write.
func CopyRange(params CopyRangeParams) (CopyResult, error) {
	if params.Length == 0 {
		return CopyResult{Method: ReadWrite}, nil
	}
	preallocate(params.Dst, params.DstOffset, params.Length)

	if params.Direction == Forward && !params.SameFile {
		result, err := copyFileRange(params)
		// Only fall back when the kernel refused before anything moved.
		if err == nil || result.BytesWritten > 0 || !isFallbackErr(err) {
			return result, err
		}
	}

	return copyReadWrite(params)
}

//nolint:gosec // G115: fd values are small non-negative integers
func copyFileRange(params CopyRangeParams) (CopyResult, error) {
	srcFd := int(params.Src.Fd())
	dstFd := int(params.Dst.Fd())
	roff := params.SrcOffset
	woff := params.DstOffset
	step := int64(params.chunkSize())

	var total int64
	for total < params.Length {
		want := min(step, params.Length-total)
		n, err := unix.CopyFileRange(srcFd, &roff, dstFd, &woff, int(want), 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
		if n == 0 {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, io.ErrUnexpectedEOF
		}
		total += int64(n)
		if err := params.notify(int64(n)); err != nil {
			return CopyResult{BytesWritten: total, Method: CopyFileRange}, err
		}
	}

	return CopyResult{BytesWritten: total, Method: CopyFileRange}, nil
}

// isFallbackErr returns true if err should trigger a fallback to read/write.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP, unix.EBADF:
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return isFallbackErr(pathErr.Err)
	}
	return false
}
