package util

import (
	"strings"
	"time"
)

const DateLayout = "20060102"

// NormalizeDate accepts YYYYMMDD, YYYY-MM-DD or RFC3339 input and returns
// the canonical YYYYMMDD form. Returns ("", false) on anything else.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range []string{DateLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// ParseDate parses a canonical YYYYMMDD date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// OrderRange normalizes both ends of a date range and swaps them when they
// arrive reversed.
func OrderRange(start, end string) (string, string, bool) {
	s, ok := NormalizeDate(start)
	if !ok {
		return "", "", false
	}
	e, ok := NormalizeDate(end)
	if !ok {
		return "", "", false
	}
	if s > e {
		s, e = e, s
	}
	return s, e, true
}
