package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04:05"
)

// ParseTimeOfDay parses an HH:MM:SS string and applies it to the given date.
func ParseTimeOfDay(timeStr string, date time.Time) (time.Time, error) {
	if timeStr == "" {
		return date, nil
	}

	parsedTime, err := time.Parse(TimeOfDayLayout, timeStr)
	if err != nil {
		return date, err
	}

	return time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		parsedTime.Hour(),
		parsedTime.Minute(),
		parsedTime.Second(),
		0,
		date.Location(),
	), nil
}

// FormatElapsed renders the gap between two HH:MM:SS times of the same day as
// "{H}h {M}m". Malformed input or a reference before the start collapses to
// "0h 0m" so a bad record never fails a whole reminder run.
func FormatElapsed(startOfDay, referenceOfDay string) string {
	start, err1 := time.Parse(TimeOfDayLayout, startOfDay)
	ref, err2 := time.Parse(TimeOfDayLayout, referenceOfDay)
	if err1 != nil || err2 != nil {
		return "0h 0m"
	}

	minutes := int(ref.Sub(start).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FirstName returns the leading word of a display name for notification copy.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}
