package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/bcp/internal/stats"
)

const plainInterval = 5 * time.Second

// plainProgress writes a progress line every few seconds, for output that is
// not a terminal (logs, pipes).
type plainProgress struct {
	w     io.Writer
	stats *stats.Collector
	label string
	now   func() time.Time

	lastTick  time.Time
	lastPrint time.Time
}

func (p *plainProgress) Start(total int64) {
	p.stats.SetTotal(total)
	p.lastTick = p.now()
	p.lastPrint = p.lastTick
	if p.label != "" {
		fmt.Fprintf(p.w, "copying %s (%s)\n", p.label, FormatBytes(total))
	}
}

func (p *plainProgress) Add(n int64) {
	p.stats.AddChunk(n)
	now := p.now()
	for now.Sub(p.lastTick) >= time.Second {
		p.stats.Tick()
		p.lastTick = p.lastTick.Add(time.Second)
	}
	if now.Sub(p.lastPrint) >= plainInterval {
		p.lastPrint = now
		p.printProgress()
	}
}

func (p *plainProgress) Finish(int64) {
	p.printProgress()
}

func (p *plainProgress) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
		fmt.Fprintf(p.w, "progress: %.0f%% %s/%s %s eta %s\n",
			pct,
			FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
			FormatRate(p.stats.RollingSpeed(10)),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.w, "progress: %s copied\n", FormatBytes(snap.BytesCopied))
}

func (p *plainProgress) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), nil)
}
