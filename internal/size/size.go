// Package size parses human-readable byte counts used on the command line
// and in the config file.
package size

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100M, 100G, 100T (case-insensitive), with an
// optional trailing "iB" or "B" after the unit letter (1MiB, 1MB).
// Uses powers of 1024. Negative sizes are rejected.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	numStr := strings.ToUpper(s)
	// "iB" is only a suffix after a unit letter: "1iB" is not a size.
	if u, ok := strings.CutSuffix(numStr, "IB"); ok && u != "" && strings.ContainsRune("KMGT", rune(u[len(u)-1])) {
		numStr = u
	} else if len(numStr) > 1 && strings.HasSuffix(numStr, "B") {
		numStr = numStr[:len(numStr)-1]
	}

	multiplier := int64(1)
	switch numStr[len(numStr)-1] {
	case 'K':
		multiplier = 1 << 10
	case 'M':
		multiplier = 1 << 20
	case 'G':
		multiplier = 1 << 30
	case 'T':
		multiplier = 1 << 40
	}
	if multiplier > 1 {
		numStr = numStr[:len(numStr)-1]
	}

	if numStr == "" || strings.HasPrefix(numStr, "-") {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	// Try integer first, then float.
	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n > (1<<63-1)/multiplier {
			return 0, fmt.Errorf("size out of range: %q", s)
		}
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil || !(f >= 0) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	v := f * float64(multiplier)
	if v >= 1<<63 {
		return 0, fmt.Errorf("size out of range: %q", s)
	}

	return int64(v), nil
}
