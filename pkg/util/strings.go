package util

import "strconv"

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// PadSymbol left-pads a numeric exchange code to six digits. Non-numeric
// symbols pass through untouched.
func PadSymbol(s string) string {
	if s == "" || len(s) >= 6 {
		return s
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}
