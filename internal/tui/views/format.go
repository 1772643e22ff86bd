package views

import "time"

// formatTimestamp renders today's times as a clock and older ones as a date.
func formatTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	if t.Year() == now.Year() {
		return t.Format("01/02")
	}
	return t.Format("2006-01-02")
}
