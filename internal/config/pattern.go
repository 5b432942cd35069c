package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wesleyorama2/blitz/pkg/blitz"
)

// ParseInterval parses a ramp written as "start-end:duration" (for example
// "1-250:60") or a constant level written as "level:duration".
func ParseInterval(s string) (blitz.Interval, error) {
	s = strings.TrimSpace(s)
	rng, dur, ok := strings.Cut(s, ":")
	if !ok {
		return blitz.Interval{}, fmt.Errorf("invalid interval %q: expected start-end:duration", s)
	}

	duration, err := strconv.Atoi(dur)
	if err != nil || duration <= 0 {
		return blitz.Interval{}, fmt.Errorf("invalid interval %q: duration must be a positive integer", s)
	}

	startStr, endStr, isRamp := strings.Cut(rng, "-")
	if !isRamp {
		endStr = startStr
	}

	start, err := strconv.Atoi(startStr)
	if err != nil || start < 0 {
		return blitz.Interval{}, fmt.Errorf("invalid interval %q: bad start %q", s, startStr)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil || end < 0 {
		return blitz.Interval{}, fmt.Errorf("invalid interval %q: bad end %q", s, endStr)
	}

	return blitz.Interval{Start: start, End: end, Duration: duration}, nil
}

// ParsePattern parses every interval, in order.
func ParsePattern(intervals []string) (*blitz.Pattern, error) {
	pattern := &blitz.Pattern{Intervals: make([]blitz.Interval, 0, len(intervals))}
	for _, s := range intervals {
		interval, err := ParseInterval(s)
		if err != nil {
			return nil, err
		}
		pattern.Intervals = append(pattern.Intervals, interval)
	}
	return pattern, nil
}
