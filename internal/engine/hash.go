package engine

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// HashRange computes the BLAKE3 digest of n bytes of r starting at off,
// returning it hex-encoded. A range that runs past the end of r is an error.
func HashRange(r io.ReaderAt, off, n int64) (string, error) {
	h := blake3.New()
	buf := make([]byte, 32*1024)
	got, err := io.CopyBuffer(h, io.NewSectionReader(r, off, n), buf)
	if err != nil {
		return "", fmt.Errorf("hash range at offset %d: %w", off, err)
	}
	if got != n {
		return "", fmt.Errorf("hash range at offset %d: read %d of %d bytes: %w", off, got, n, io.ErrUnexpectedEOF)
	}

	digest := h.Sum(nil)
	return hex.EncodeToString(digest), nil
}
