package utils

import (
	"fmt"
	"time"
)

// ParseISOTime accepts the datetime shapes clients actually send: RFC3339
// with or without nanoseconds, plus a few common fallbacks interpreted as
// UTC.
func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return &t, nil
	}

	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return &t, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, time.UTC); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}
