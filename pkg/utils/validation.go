package utils

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for schedules and snapshots.
const DateLayout = "2006-01-02"

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether s is a 24h HH:MM time.
func ValidClock(s string) bool {
	return clockRegex.MatchString(s)
}

// ValidDate reports whether s is a real YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidEmail does a syntactic check only.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
