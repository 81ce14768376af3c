package model

import "time"

// DeadlineLayout is the display and wire format for task deadlines.
// The backend stores deadlines as opaque dd/mm/yyyy strings and filtering
// compares them textually, so this is deliberately not RFC 3339.
const DeadlineLayout = "02/01/2006"

// ParseDeadline parses a dd/mm/yyyy deadline string
func ParseDeadline(s string) (time.Time, error) {
	return time.Parse(DeadlineLayout, s)
}

// FormatDeadline renders a time as a dd/mm/yyyy deadline string
func FormatDeadline(t time.Time) string {
	return t.Format(DeadlineLayout)
}

// ValidDeadline reports whether s is a well-formed deadline string
func ValidDeadline(s string) bool {
	_, err := ParseDeadline(s)
	return err == nil
}
