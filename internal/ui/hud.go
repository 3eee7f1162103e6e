package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/bcp/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim       = "\033[2m"
	ansiReset     = "\033[0m"
	ansiClearLine = "\r\033[K"
)

const (
	sparklineWidth   = 12
	progressBarWidth = 20
	hudMinInterval   = 100 * time.Millisecond // don't redraw faster than this
)

// hudProgress redraws a single status line in place on a terminal.
type hudProgress struct {
	w     io.Writer
	stats *stats.Collector
	label string
	width int
	now   func() time.Time

	lastTick time.Time
	lastDraw time.Time
}

func (p *hudProgress) Start(total int64) {
	p.stats.SetTotal(total)
	p.lastTick = p.now()
	if p.label != "" {
		fmt.Fprintf(p.w, "%s%s%s\n", ansiDim, truncate(p.label, p.width), ansiReset)
	}
	p.draw()
}

func (p *hudProgress) Add(n int64) {
	p.stats.AddChunk(n)
	now := p.now()
	for now.Sub(p.lastTick) >= time.Second {
		p.stats.Tick()
		p.lastTick = p.lastTick.Add(time.Second)
	}
	if now.Sub(p.lastDraw) >= hudMinInterval {
		p.draw()
	}
}

func (p *hudProgress) Finish(int64) {
	p.draw()
	fmt.Fprintln(p.w)
}

func (p *hudProgress) draw() {
	fmt.Fprint(p.w, ansiClearLine)
	fmt.Fprint(p.w, p.line())
	p.lastDraw = p.now()
}

// line renders: " 42%  ▪▪▪▪□□□□  12.0 MiB / 28.0 MiB  ▂▃▅▇  3.20 MB/s  eta 5s"
// dropping the sparkline when the terminal is too narrow.
func (p *hudProgress) line() string {
	snap := p.stats.Snapshot()

	pct := 1.0
	if snap.BytesTotal > 0 {
		pct = float64(snap.BytesCopied) / float64(snap.BytesTotal)
	}

	head := fmt.Sprintf(" %3.0f%%  %s  %s / %s",
		pct*100, ProgressBar(pct, progressBarWidth),
		FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal))
	tail := fmt.Sprintf("  %s  eta %s",
		FormatRate(p.stats.RollingSpeed(10)), FormatETA(p.stats.ETA()))

	spark := "  " + Sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
	if len([]rune(head+spark+tail)) <= p.width {
		return head + spark + tail
	}
	return truncate(head+tail, p.width)
}

func (p *hudProgress) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), nil)
}

// truncate shortens s to fit within maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
