// Package duration parses the short duration strings accepted by config
// keys such as cache.ttl: a bare number of seconds, or a number with one
// of the units s, m, h or d.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(\d+)([smhd]?)$`)

// Parse parses "300" (seconds), "90s", "5m", "2h" or "1d".
func Parse(s string) (time.Duration, error) {
	matches := pattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid duration %q (use 300, 90s, 5m, 2h or 1d)", s)
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}

	unit := time.Second
	switch matches[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	return time.Duration(num) * unit, nil
}

// Seconds parses s and returns whole seconds.
func Seconds(s string) (int, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return int(d / time.Second), nil
}
