package model

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// Today is the default recap date.
func Today() string { return time.Now().Format(dayLayout) }

// FormatDate renders an epoch-ms timestamp as "14. Oktober 2026".
func FormatDate(ms int64) string {
	return formatGerman(time.UnixMilli(ms))
}

// FormatDay renders a YYYY-MM-DD date the same way, or returns it
// unchanged if it does not parse.
func FormatDay(day string) string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return day
	}
	return formatGerman(t)
}

func formatGerman(t time.Time) string {
	return fmt.Sprintf("%d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
}

// ValidDay reports whether s is empty or a YYYY-MM-DD date.
func ValidDay(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(dayLayout, s)
	return err == nil
}
