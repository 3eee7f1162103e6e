package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bamsammich/bcp/internal/platform"
)

// Request describes one range copy as given by the caller.
type Request struct {
	SrcPath   string
	DstPath   string
	SrcOffset int64
	DstOffset int64
	// Count is the number of bytes to copy. Nil means the rest of the
	// source from SrcOffset; it is resolved against the live size by Validate.
	Count *int64
}

// CountOf returns a pointer to n, for filling Request.Count.
func CountOf(n int64) *int64 { return &n }

// State is the lifecycle position of a Plan.
type State int

const (
	Unvalidated State = iota
	Validated
	Copying
	Completed
	Failed
)

var stateNames = [...]string{
	Unvalidated: "unvalidated",
	Validated:   "validated",
	Copying:     "copying",
	Completed:   "completed",
	Failed:      "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Plan is a Request resolved against the file system: every offset and the
// count are concrete and both files are open. Plans are single use and must
// be closed.
type Plan struct {
	src *os.File
	dst *os.File
	err error

	srcPath   string
	dstPath   string
	srcOffset int64
	dstOffset int64
	count     int64
	srcSize   int64
	dstSize   int64 // destination size before the copy

	direction  platform.Direction
	state      State
	dstCreated bool
	sameFile   bool
	skip       bool // same file, same offset
}

// Resolved values are read-only so a plan always matches what Validate checked.

func (p *Plan) SrcPath() string { return p.srcPath }
func (p *Plan) DstPath() string { return p.dstPath }
func (p *Plan) SrcOffset() int64 { return p.srcOffset }
func (p *Plan) DstOffset() int64 { return p.dstOffset }
func (p *Plan) Count() int64 { return p.count }
func (p *Plan) SrcSize() int64 { return p.srcSize }
func (p *Plan) DstSize() int64 { return p.dstSize }
func (p *Plan) DstCreated() bool { return p.dstCreated }
func (p *Plan) SameFile() bool { return p.sameFile }

// Direction is the chunk order Execute will use.
func (p *Plan) Direction() platform.Direction { return p.direction }

// State returns the current lifecycle state.
func (p *Plan) State() State { return p.state }

// Err returns the error that moved the plan to Failed, if any.
func (p *Plan) Err() error { return p.err }

// Close releases both file handles. Closing the destination can surface a
// deferred write error. Failures are returned as IoError.
func (p *Plan) Close() error {
	var errs []error
	if p.src != nil {
		if err := p.src.Close(); err != nil {
			errs = append(errs, &Error{Kind: IoError, Path: p.srcPath, Detail: "close", Err: err})
		}
		p.src = nil
	}
	if p.dst != nil {
		if err := p.dst.Close(); err != nil {
			errs = append(errs, &Error{Kind: IoError, Path: p.dstPath, Detail: "close", Err: err})
		}
		p.dst = nil
	}
	if p.state == Validated {
		p.state = Unvalidated
	}
	return errors.Join(errs...)
}

// Validate checks req against the current sizes of both files and opens
// them. On error nothing has been created or written.
func Validate(req Request) (*Plan, error) {
	if req.SrcOffset < 0 {
		return nil, &Error{
			Kind: SourceOffsetOutOfRange, Path: req.SrcPath,
			Detail: fmt.Sprintf("offset %d is negative", req.SrcOffset),
		}
	}
	if req.DstOffset < 0 {
		return nil, &Error{
			Kind: DestOffsetOutOfRange, Path: req.DstPath,
			Detail: fmt.Sprintf("offset %d is negative", req.DstOffset),
		}
	}
	if req.Count != nil && *req.Count < 0 {
		return nil, &Error{Kind: InvalidCount, Detail: fmt.Sprintf("count %d is negative", *req.Count)}
	}

	src, srcInfo, err := openSource(req.SrcPath)
	if err != nil {
		return nil, err
	}

	plan, err := resolve(req, srcInfo)
	if err != nil {
		src.Close()
		return nil, err
	}

	dst, dstInfo, err := openDest(req.DstPath)
	if err != nil {
		src.Close()
		return nil, err
	}
	// The destination may have changed between the stat and the open.
	if req.DstOffset > dstInfo.Size() {
		src.Close()
		dst.Close()
		return nil, &Error{
			Kind: DestOffsetOutOfRange, Path: req.DstPath,
			Detail: fmt.Sprintf("offset %d > size %d", req.DstOffset, dstInfo.Size()),
		}
	}

	plan.src = src
	plan.dst = dst
	plan.dstSize = dstInfo.Size()
	plan.sameFile = os.SameFile(srcInfo, dstInfo)
	plan.direction, plan.skip = ChooseDirection(plan.sameFile, plan.srcOffset, plan.dstOffset)
	plan.state = Validated

	slog.Debug("plan resolved",
		"src", plan.srcPath,
		"dst", plan.dstPath,
		"src_offset", plan.srcOffset,
		"dst_offset", plan.dstOffset,
		"count", plan.count,
		"src_size", plan.srcSize,
		"dst_size", plan.dstSize,
		"dst_created", plan.dstCreated,
		"same_file", plan.sameFile,
		"direction", plan.direction.String(),
	)
	return plan, nil
}

// openSource stats before opening so a FIFO or device is rejected without
// blocking in open(2). The second check covers a swap between the two calls.
func openSource(path string) (*os.File, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, &Error{Kind: SourceNotFound, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, nil, &Error{Kind: SourceNotFound, Path: path, Detail: "not a regular file"}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &Error{Kind: SourceNotFound, Path: path, Err: err}
	}
	info, err = f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &Error{Kind: SourceNotFound, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, &Error{Kind: SourceNotFound, Path: path, Detail: "not a regular file"}
	}
	return f, info, nil
}

// resolve applies every size check that needs no open destination handle.
func resolve(req Request, srcInfo os.FileInfo) (*Plan, error) {
	srcSize := srcInfo.Size()
	if req.SrcOffset > srcSize {
		return nil, &Error{
			Kind: SourceOffsetOutOfRange, Path: req.SrcPath,
			Detail: fmt.Sprintf("offset %d > size %d", req.SrcOffset, srcSize),
		}
	}

	count := srcSize - req.SrcOffset
	if req.Count != nil {
		// Compared as count > remaining so huge counts cannot overflow.
		if *req.Count > count {
			return nil, &Error{
				Kind: ReadPastEnd, Path: req.SrcPath,
				Detail: fmt.Sprintf("offset %d + count %d > size %d", req.SrcOffset, *req.Count, srcSize),
			}
		}
		count = *req.Count
	}

	plan := &Plan{
		srcPath:   req.SrcPath,
		dstPath:   req.DstPath,
		srcOffset: req.SrcOffset,
		dstOffset: req.DstOffset,
		count:     count,
		srcSize:   srcSize,
	}

	dstInfo, err := os.Stat(req.DstPath)
	switch {
	case err == nil:
		if !dstInfo.Mode().IsRegular() {
			return nil, &Error{Kind: DestNotRegularFile, Path: req.DstPath}
		}
		if req.DstOffset > dstInfo.Size() {
			return nil, &Error{
				Kind: DestOffsetOutOfRange, Path: req.DstPath,
				Detail: fmt.Sprintf("offset %d > size %d", req.DstOffset, dstInfo.Size()),
			}
		}
	case errors.Is(err, fs.ErrNotExist):
		if req.DstOffset > 0 {
			return nil, &Error{
				Kind: DestMustPreexistForNonzeroOffset, Path: req.DstPath,
				Detail: fmt.Sprintf("offset %d", req.DstOffset),
			}
		}
		plan.dstCreated = true
	default:
		return nil, &Error{Kind: IoError, Path: req.DstPath, Detail: "stat", Err: err}
	}

	return plan, nil
}

// openDest opens the destination read-write, creating it if absent. It is
// never truncated.
func openDest(path string) (*os.File, os.FileInfo, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, nil, &Error{Kind: IoError, Path: path, Detail: "open", Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &Error{Kind: IoError, Path: path, Detail: "stat", Err: err}
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, &Error{Kind: DestNotRegularFile, Path: path}
	}
	return f, info, nil
}

// ChooseDirection picks the chunk order for a copy. Only a copy within one
// file can overlap: when the destination lies above the source the range is
// walked from the top down so no chunk is overwritten before it is read, and
// identical offsets need no copy at all (skip is true).
func ChooseDirection(sameFile bool, srcOffset, dstOffset int64) (dir platform.Direction, skip bool) {
	if !sameFile {
		return platform.Forward, false
	}
	switch {
	case dstOffset > srcOffset:
		return platform.Backward, false
	case dstOffset < srcOffset:
		return platform.Forward, false
	default:
		return platform.Forward, true
	}
}
