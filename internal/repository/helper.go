package repository

import (
	"fmt"
	"time"
)

// ParseTime parses a timestamp string in RFC3339 or "2006-01-02 15:04:05"
// format (the layout SQLite's CURRENT_TIMESTAMP produces) and normalizes
// it to UTC.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(time.RFC3339, str)
	if err != nil {
		returnTime, err = time.Parse("2006-01-02 15:04:05", str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
		}
	}
	return returnTime.UTC(), nil
}
