package ui

import "github.com/bamsammich/bcp/internal/stats"

// quietProgress counts bytes but produces no output.
type quietProgress struct {
	stats *stats.Collector
}

func (p *quietProgress) Start(total int64) { p.stats.SetTotal(total) }

func (p *quietProgress) Add(n int64) { p.stats.AddChunk(n) }

func (p *quietProgress) Finish(int64) {}

func (p *quietProgress) Summary() string {
	return ""
}
