package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidSize is returned by ParseSize for size strings it cannot interpret.
var ErrInvalidSize = errors.New("invalid size")

const (
	kb = 1024
	mb = kb * 1024
	gb = mb * 1024
	tb = gb * 1024
)

// sizeUnits maps two-letter unit suffixes to their byte multipliers.
var sizeUnits = map[string]float64{
	"kb": kb,
	"mb": mb,
	"gb": gb,
	"tb": tb,
}

// ParseSize converts an Elasticsearch store size such as "1.5gb" or "512b"
// into a byte count. Units are case-insensitive and may be separated from the
// magnitude by whitespace. Empty strings, "0b" and "-" (unknown) yield 0.
// Malformed input yields 0 and an error wrapping ErrInvalidSize.
func ParseSize(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "-" || s == "0b" {
		return 0, nil
	}

	mult := 1.0
	num := s
	if len(s) > 2 {
		if m, ok := sizeUnits[s[len(s)-2:]]; ok {
			mult = m
			num = s[:len(s)-2]
		}
	}
	if mult == 1 {
		num = strings.TrimSuffix(num, "b")
	}
	num = strings.TrimSpace(num)

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	if v*mult >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows int64", ErrInvalidSize, s)
	}
	return int64(v * mult), nil
}

// FormatBytes formats a byte count into a human-readable string with 1 decimal place.
// Thresholds: <1KB → B, <1MB → KB, <1GB → MB, <1TB → GB, else TB.
func FormatBytes(bytes int64) string {
	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	case bytes < gb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes < tb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	default:
		return fmt.Sprintf("%.1f TB", float64(bytes)/tb)
	}
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		// s starts with "-"; strip it, insert commas, restore sign.
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
