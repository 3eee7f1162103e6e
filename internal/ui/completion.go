package ui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/bcp/internal/stats"
)

// CompletionSummary renders the line printed after a copy, e.g.
//
//	done ✓  size 2.1 GiB  chunks 2,150  avg 641 MiB/s  time 3m 17s
//
// A failed copy is marked ✗ and also shows how much was planned.
func CompletionSummary(snap stats.Snapshot, err error) string {
	var avg float64
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		avg = float64(snap.BytesCopied) / secs
	}

	var b strings.Builder
	if err != nil {
		b.WriteString("done ✗")
	} else {
		b.WriteString("done ✓")
	}
	fmt.Fprintf(&b, "  size %s", FormatBytes(snap.BytesCopied))
	if err != nil {
		fmt.Fprintf(&b, " of %s", FormatBytes(snap.BytesTotal))
	}
	fmt.Fprintf(&b, "  chunks %s  avg %s  time %s",
		FormatCount(snap.ChunksCopied), FormatRate(avg), FormatDuration(snap.Elapsed))
	return b.String()
}
