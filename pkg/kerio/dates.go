package kerio

import (
	"fmt"
	"time"
)

const (
	compactLayout = "20060102T150405"
	dayLayout     = "20060102"
)

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime parses a host dateTime field value.
// Values without a zone are read in loc; a bare date is read as UTC midnight.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	if t, err := time.ParseInLocation(time.DateOnly, value, time.UTC); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// FormatZulu encodes t as YYYYMMDDTHHMMSS+0000 in UTC.
// Used for calendar event bounds and Tasks.set via updateTask.
func FormatZulu(t time.Time) string {
	return t.UTC().Format(compactLayout) + "+0000"
}

// FormatLocal encodes t as YYYYMMDDTHHMMSS±HHMM in loc.
// Used for task due dates, task reminders and note modification stamps.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return t.In(loc).Format(compactLayout + "-0700")
}

// FormatDay encodes t as YYYYMMDD in UTC, the contact birthday format.
func FormatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
