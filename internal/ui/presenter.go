package ui

import (
	"io"
	"time"

	"github.com/bamsammich/bcp/internal/stats"
)

// Progress receives byte counts from the copy loop and renders them. All
// methods are called synchronously from the copy loop, so implementations
// throttle their own output.
type Progress interface {
	Start(total int64)
	Add(n int64)
	Finish(total int64)
	// Summary returns the final summary line, or "" when nothing should be printed.
	Summary() string
}

// Config configures a Progress.
type Config struct {
	Writer  io.Writer
	Stats   *stats.Collector
	Label   string // shown in front of the progress line, usually "src -> dst"
	Width   int    // terminal width in columns; 0 means defaultWidth
	IsTTY   bool
	Quiet   bool
	Verbose bool

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewProgress creates the appropriate progress renderer based on configuration.
// Progress is drawn only with Verbose; Quiet wins over Verbose.
//
//nolint:ireturn // callers only need the Progress interface
func NewProgress(cfg Config) Progress {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Quiet || !cfg.Verbose {
		return &quietProgress{stats: cfg.Stats}
	}
	if !cfg.IsTTY {
		return &plainProgress{
			w:     cfg.Writer,
			stats: cfg.Stats,
			label: cfg.Label,
			now:   cfg.Now,
		}
	}
	width := cfg.Width
	if width <= 0 {
		width = defaultWidth
	}
	return &hudProgress{
		w:     cfg.Writer,
		stats: cfg.Stats,
		label: cfg.Label,
		width: width,
		now:   cfg.Now,
	}
}
