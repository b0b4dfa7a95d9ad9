package util

import (
	"fmt"
	"strings"
	"time"
)

// timeLayouts are tried in order by ParseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTime parses an ISO-8601 timestamp and returns it in UTC.
// Timestamps without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FloorMinute truncates t to the start of its minute.
func FloorMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// CeilMinute rounds t up to the next minute boundary unless it is on one.
func CeilMinute(t time.Time) time.Time {
	f := t.Truncate(time.Minute)
	if f.Equal(t) {
		return t
	}
	return f.Add(time.Minute)
}

// FormatSpan renders a duration as HH:MM:SS, prefixed with a day count
// when it spans at least one day.
func FormatSpan(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	days := total / 86400
	total %= 86400
	h, m, s := total/3600, (total%3600)/60, total%60
	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if days == 1 {
		return "1 day, " + out
	}
	if days > 1 {
		return fmt.Sprintf("%d days, %s", days, out)
	}
	return out
}

// FormatSeconds formats a float second count compactly ("850ms", "12.5s",
// "3m20s", "2h05m").
func FormatSeconds(sec float64) string {
	switch {
	case sec < 1:
		return fmt.Sprintf("%dms", int(sec*1000))
	case sec < 60:
		return fmt.Sprintf("%.1fs", sec)
	case sec < 3600:
		return fmt.Sprintf("%dm%02ds", int(sec)/60, int(sec)%60)
	}
	return fmt.Sprintf("%dh%02dm", int(sec)/3600, (int(sec)%3600)/60)
}
