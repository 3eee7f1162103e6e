package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/bamsammich/bcp/internal/platform"
)

// chunkSize bounds each read/write of a copy. Tests shrink it to force many
// chunks over small files.
var chunkSize = 1 << 20

// hashRange is swapped by tests to simulate a corrupted destination.
var hashRange = HashRange

// Options controls how a plan is executed. The zero value copies without
// progress, throttling or verification.
type Options struct {
	Progress Progress
	Limiter  *rate.Limiter // nil means unlimited
	Verify   bool          // compare BLAKE3 of source and destination ranges
}

func (o Options) progress() Progress {
	if o.Progress == nil {
		return NopProgress{}
	}
	return o.Progress
}

// Execute transfers plan.count bytes and returns how many landed in the
// destination. On failure the destination may hold a partial copy; nothing
// is rolled back. ctx is only consulted while waiting on opts.Limiter.
func Execute(ctx context.Context, plan *Plan, opts Options) (int64, error) {
	if plan == nil || plan.state != Validated || plan.src == nil || plan.dst == nil {
		return 0, ErrPlanNotExecutable
	}
	plan.state = Copying

	copied, err := execute(ctx, plan, opts)
	if err != nil {
		plan.state = Failed
		plan.err = err
		slog.Debug("range copy failed", "dst", plan.dstPath, "copied", copied, "error", err)
		return copied, err
	}
	plan.state = Completed
	return copied, nil
}

func execute(ctx context.Context, plan *Plan, opts Options) (int64, error) {
	if _, err := plan.src.Seek(plan.srcOffset, io.SeekStart); err != nil {
		return 0, &Error{Kind: IoError, Path: plan.srcPath, Detail: "seek", Err: err}
	}
	if _, err := plan.dst.Seek(plan.dstOffset, io.SeekStart); err != nil {
		return 0, &Error{Kind: IoError, Path: plan.dstPath, Detail: "seek", Err: err}
	}

	var srcHash string
	if opts.Verify {
		h, err := hashRange(plan.src, plan.srcOffset, plan.count)
		if err != nil {
			return 0, &Error{Kind: IoError, Path: plan.srcPath, Detail: "verify", Err: err}
		}
		srcHash = h
	}

	progress := opts.progress()
	progress.Start(plan.count)

	var copied int64
	if plan.skip {
		// Same file, same offset: the bytes are already in place.
		copied = plan.count
		if copied > 0 {
			progress.Add(copied)
		}
	} else {
		result, err := platform.CopyRange(platform.CopyRangeParams{
			Src:       plan.src,
			Dst:       plan.dst,
			SrcOffset: plan.srcOffset,
			DstOffset: plan.dstOffset,
			Length:    plan.count,
			Direction: plan.direction,
			SameFile:  plan.sameFile,
			ChunkSize: chunkSize,
			OnChunk: func(n int64) error {
				progress.Add(n)
				return waitN(ctx, opts.Limiter, n)
			},
		})
		copied = result.BytesWritten
		if err != nil {
			progress.Finish(copied)
			return copied, &Error{
				Kind:   IoError,
				Path:   plan.dstPath,
				Detail: fmt.Sprintf("after %d of %d bytes", copied, plan.count),
				Err:    err,
			}
		}
		slog.Debug("range copied",
			"dst", plan.dstPath,
			"bytes", copied,
			"method", result.Method.String(),
			"direction", plan.direction.String(),
		)
	}
	progress.Finish(copied)

	if opts.Verify {
		dstHash, err := hashRange(plan.dst, plan.dstOffset, plan.count)
		if err != nil {
			return copied, &Error{Kind: IoError, Path: plan.dstPath, Detail: "verify", Err: err}
		}
		if dstHash != srcHash {
			return copied, &Error{
				Kind:   ChecksumMismatch,
				Path:   plan.dstPath,
				Detail: fmt.Sprintf("source %s, destination %s", srcHash, dstHash),
			}
		}
		slog.Debug("range verified", "dst", plan.dstPath, "blake3", dstHash)
	}

	return copied, nil
}

// Result is the outcome of Run.
type Result struct {
	Plan   *Plan // nil when validation failed
	Copied int64
	Err    error
}

// Run validates req, executes it and closes the plan. A close failure is
// reported only when the copy itself succeeded.
func Run(ctx context.Context, req Request, opts Options) Result {
	plan, err := Validate(req)
	if err != nil {
		return Result{Err: err}
	}

	copied, err := Execute(ctx, plan, opts)
	if closeErr := plan.Close(); closeErr != nil && err == nil {
		err = closeErr
		plan.state = Failed
		plan.err = err
	}
	return Result{Plan: plan, Copied: copied, Err: err}
}
