package mcp

import (
	"fmt"
	"time"
)

func parseTimestamp(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format, use RFC 3339: %w", err)
	}
	return parsed, nil
}
