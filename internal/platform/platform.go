package platform

import "os"

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	default:
		return "unknown"
	}
}

// Direction is the order in which chunks of a range are visited.
type Direction int

const (
	Forward  Direction = iota // lowest offset first
	Backward                  // highest offset first
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyRangeParams describes one bounded transfer between two open files.
// Offsets are absolute; file positions of Src and Dst are not used.
type CopyRangeParams struct {
	Src       *os.File
	Dst       *os.File
	SrcOffset int64
	DstOffset int64
	Length    int64
	Direction Direction

	// SameFile disables kernel offload, which rejects overlapping ranges.
	SameFile bool

	// ChunkSize caps each read/write. Zero or anything above the pooled
	// buffer size means the pooled buffer size.
	ChunkSize int

	// OnChunk is called after each chunk lands in Dst. A non-nil error
	// aborts the copy and is returned as is.
	OnChunk func(n int64) error
}

func (p CopyRangeParams) chunkSize() int {
	if p.ChunkSize <= 0 || p.ChunkSize > bufferSize {
		return bufferSize
	}
	return p.ChunkSize
}

func (p CopyRangeParams) notify(n int64) error {
	if p.OnChunk == nil {
		return nil
	}
	return p.OnChunk(n)
}
