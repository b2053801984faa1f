package http

import (
	xutil "FundFlow/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// NormalizeDateParam canonicalizes a date query parameter to YYYYMMDD.
func NormalizeDateParam(s string) (string, bool) { return xutil.NormalizeDate(s) }
