// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Time unit rescaling and value formatting

package report

import (
	"fmt"
	"strconv"
)

// unitScale maps metric time unit names to seconds
var unitScale = map[string]float64{
	"s":    1.0,
	"sec":  1.0,
	"ms":   1e-3,
	"msec": 1e-3,
	"us":   1e-6,
	"usec": 1e-6,
	"ns":   1e-9,
	"nsec": 1e-9,
}

// Rescale converts a time value between metric units
func Rescale(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}

	fromScale, ok := unitScale[from]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q", from)
	}
	toScale, ok := unitScale[to]
	if !ok {
		return 0, fmt.Errorf("unknown target time unit %q", to)
	}

	return value * fromScale / toScale, nil
}

// formatTime renders a time value with the configured digit count.
// Nanosecond scales read better as integers.
func formatTime(value float64, unit string, digits int) string {
	if unit == "ns" || unit == "nsec" {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', digits, 64)
}

// formatDelta renders a signed relative difference as a percentage
func formatDelta(delta float64, digits int) string {
	return fmt.Sprintf("%+.*f%%", digits, delta*100)
}

// formatSpeedup renders a speedup factor
func formatSpeedup(speedup float64, digits int) string {
	return fmt.Sprintf("%.*fx", digits, speedup)
}
