package ui

import "slices"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws the most recent width throughput samples as block
// characters, scaled against the busiest sample shown. Missing history is
// padded on the left with the lowest block so the line never changes width.
func Sparkline(samples []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	out := make([]rune, width)
	pad := width - len(samples)
	for i := range pad {
		out[i] = sparkBlocks[0]
	}
	if len(samples) == 0 {
		return string(out)
	}

	peak := slices.Max(samples)
	top := len(sparkBlocks) - 1
	for i, v := range samples {
		level := 0
		if peak > 0 && v > 0 {
			level = min(int(v/peak*float64(top)), top)
		}
		out[pad+i] = sparkBlocks[level]
	}
	return string(out)
}
