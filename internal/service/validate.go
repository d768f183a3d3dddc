package service

import (
	"regexp"
	"strconv"
)

var (
	isoDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeHHMMRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// IsValidISODate reports whether s has the YYYY-MM-DD shape.
func IsValidISODate(s string) bool {
	return isoDateRe.MatchString(s)
}

// IsValidTimeHHMM reports whether s is a zero-padded 24-hour HH:mm time.
func IsValidTimeHHMM(s string) bool {
	if !timeHHMMRe.MatchString(s) {
		return false
	}
	hh, _ := strconv.Atoi(s[:2])
	mm, _ := strconv.Atoi(s[3:])
	return hh >= 0 && hh <= 23 && mm >= 0 && mm <= 59
}
