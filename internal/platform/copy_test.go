package platform

import (
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openPair(t *testing.T, srcData, dstData []byte) (*os.File, *os.File, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, srcData, 0644))
	require.NoError(t, os.WriteFile(dst, dstData, 0644))

	srcFd, err := os.Open(src)
	require.NoError(t, err)
	t.Cleanup(func() { srcFd.Close() })

	dstFd, err := os.OpenFile(dst, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { dstFd.Close() })

	return srcFd, dstFd, dst
}

func TestCopyRangeBasic(t *testing.T) {
	data := []byte("hello, bcp!")
	srcFd, dstFd, dst := openPair(t, data, nil)

	result, err := CopyRange(CopyRangeParams{
		Src:    srcFd,
		Dst:    dstFd,
		Length: int64(len(data)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.BytesWritten)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyRangeLarge(t *testing.T) {
	// 4 MiB plus change, larger than the 1 MiB buffer and not a multiple of it.
	size := 4*1024*1024 + 123
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	srcFd, dstFd, dst := openPair(t, data, nil)

	var chunks int
	result, err := CopyRange(CopyRangeParams{
		Src:    srcFd,
		Dst:    dstFd,
		Length: int64(size),
		OnChunk: func(int64) error {
			chunks++
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(size), result.BytesWritten)
	assert.GreaterOrEqual(t, chunks, 5)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyRangeOffsets(t *testing.T) {
	srcFd, dstFd, dst := openPair(t, []byte("AAAA_BBBB_CCCC"), []byte("xyz"))

	// Copy "BBBB" to the end of a 3 byte destination.
	result, err := CopyRange(CopyRangeParams{
		Src:       srcFd,
		Dst:       dstFd,
		SrcOffset: 5,
		DstOffset: 3,
		Length:    4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.BytesWritten)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("xyzBBBB"), got)
}

func TestCopyRangeEmpty(t *testing.T) {
	srcFd, dstFd, dst := openPair(t, []byte("data"), []byte("keep"))

	result, err := CopyRange(CopyRangeParams{Src: srcFd, Dst: dstFd})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.BytesWritten)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), got)
}

func TestCopyReadWrite(t *testing.T) {
	data := []byte("read-write fallback test")
	srcFd, dstFd, dst := openPair(t, data, nil)

	result, err := CopyReadWrite(CopyRangeParams{
		Src:       srcFd,
		Dst:       dstFd,
		Length:    int64(len(data)),
		ChunkSize: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, ReadWrite, result.Method)
	assert.Equal(t, int64(len(data)), result.BytesWritten)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func openSelf(t *testing.T, data []byte) (*os.File, *os.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "self")
	require.NoError(t, os.WriteFile(path, data, 0644))

	r, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	w, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return r, w, path
}

func TestCopyReadWriteOverlap(t *testing.T) {
	tests := []struct {
		name      string
		srcOffset int64
		dstOffset int64
		length    int64
		dir       Direction
		want      string
	}{
		{
			name: "shift up backward", srcOffset: 2, dstOffset: 5, length: 8, dir: Backward,
			want: "0123423456789DEF",
		},
		{
			name: "shift down forward", srcOffset: 5, dstOffset: 2, length: 8, dir: Forward,
			want: "0156789ABCABCDEF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, w, path := openSelf(t, []byte("0123456789ABCDEF"))
			_, err := CopyRange(CopyRangeParams{
				Src:       r,
				Dst:       w,
				SrcOffset: tt.srcOffset,
				DstOffset: tt.dstOffset,
				Length:    tt.length,
				Direction: tt.dir,
				SameFile:  true,
				ChunkSize: 3,
			})
			require.NoError(t, err)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got)[:len(tt.want)])
		})
	}
}

func TestCopyReadWriteWrongDirectionCorrupts(t *testing.T) {
	// Guards the overlap tests: forward order on an upward shift smears data.
	r, w, path := openSelf(t, []byte("0123456789ABCDEF"))
	_, err := CopyReadWrite(CopyRangeParams{
		Src: r, Dst: w, SrcOffset: 2, DstOffset: 5, Length: 8,
		Direction: Forward, SameFile: true, ChunkSize: 3,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "0123423456789DEF", string(got))
}

func TestCopyRangeShortSource(t *testing.T) {
	srcFd, dstFd, _ := openPair(t, []byte("short"), nil)

	result, err := CopyRange(CopyRangeParams{
		Src:    srcFd,
		Dst:    dstFd,
		Length: 10,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)
	assert.Less(t, result.BytesWritten, int64(10))
}

func TestCopyRangeOnChunkAbort(t *testing.T) {
	data := make([]byte, 64)
	srcFd, dstFd, _ := openPair(t, data, nil)

	stop := errors.New("stop")
	for _, dir := range []Direction{Forward, Backward} {
		t.Run(dir.String(), func(t *testing.T) {
			calls := 0
			result, err := CopyRange(CopyRangeParams{
				Src:       srcFd,
				Dst:       dstFd,
				Length:    int64(len(data)),
				Direction: dir,
				ChunkSize: 16,
				OnChunk: func(int64) error {
					calls++
					return stop
				},
			})
			require.ErrorIs(t, err, stop)
			assert.Equal(t, 1, calls)
			assert.Equal(t, int64(16), result.BytesWritten)
		})
	}
}

func TestCopyMethodString(t *testing.T) {
	assert.Equal(t, "read_write", ReadWrite.String())
	assert.Equal(t, "copy_file_range", CopyFileRange.String())
	assert.Equal(t, "unknown", CopyMethod(99).String())
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "forward", Forward.String())
	assert.Equal(t, "backward", Backward.String())
	assert.Equal(t, "unknown", Direction(7).String())
}
