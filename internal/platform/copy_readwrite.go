package platform

import (
	"fmt"
	"sync"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copyReadWrite copies data using pread/pwrite with a pooled buffer, visiting
// chunks in params.Direction order.
func copyReadWrite(params CopyRangeParams) (CopyResult, error) {
	bufp := bufPool.Get().(*[]byte) //nolint:errcheck,forcetypeassert // pool only holds *[]byte
	defer bufPool.Put(bufp)
	buf := (*bufp)[:params.chunkSize()]

	if params.Direction == Backward {
		return copyBackward(params, buf)
	}
	return copyForward(params, buf)
}

func copyForward(params CopyRangeParams, buf []byte) (CopyResult, error) {
	var total int64
	for total < params.Length {
		n := min(int64(len(buf)), params.Length-total)
		if err := copyChunk(params, buf[:n], total); err != nil {
			return CopyResult{BytesWritten: total, Method: ReadWrite}, err
		}
		total += n
		if err := params.notify(n); err != nil {
			return CopyResult{BytesWritten: total, Method: ReadWrite}, err
		}
	}
	return CopyResult{BytesWritten: total, Method: ReadWrite}, nil
}

// copyBackward walks the range from its end. When Dst overlaps Src at a higher
// offset, every chunk is read before any write can land on it.
func copyBackward(params CopyRangeParams, buf []byte) (CopyResult, error) {
	var total int64
	end := params.Length
	for end > 0 {
		n := min(int64(len(buf)), end)
		start := end - n
		if err := copyChunk(params, buf[:n], start); err != nil {
			return CopyResult{BytesWritten: total, Method: ReadWrite}, err
		}
		end = start
		total += n
		if err := params.notify(n); err != nil {
			return CopyResult{BytesWritten: total, Method: ReadWrite}, err
		}
	}
	return CopyResult{BytesWritten: total, Method: ReadWrite}, nil
}

// copyChunk moves len(chunk) bytes found rel bytes into the range.
func copyChunk(params CopyRangeParams, chunk []byte, rel int64) error {
	roff := params.SrcOffset + rel
	if err := preadFull(params.Src, chunk, roff); err != nil {
		return fmt.Errorf("read %s at offset %d: %w", params.Src.Name(), roff, err)
	}
	woff := params.DstOffset + rel
	if err := pwriteFull(params.Dst, chunk, woff); err != nil {
		return fmt.Errorf("write %s at offset %d: %w", params.Dst.Name(), woff, err)
	}
	return nil
}

// CopyReadWrite is the exported version for use by other packages during testing.
func CopyReadWrite(params CopyRangeParams) (CopyResult, error) {
	return copyReadWrite(params)
}
