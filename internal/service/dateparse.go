package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	qualifiedWeekdayRe = regexp.MustCompile(`\b(next|this)\s+([a-z]+)\b`)
	dayMonthRe         = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\b`)
	monthDayRe         = regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	wordRe             = regexp.MustCompile(`[a-z]+`)
)

// resolvePhrase parses a natural-language date/time phrase relative to ref,
// which must be local midnight of the reference date. A phrase with only a
// time resolves on the reference date; a phrase with only a date resolves at
// 00:00. When neither a date nor a time component parses, ok is false.
func resolvePhrase(phrase string, ref time.Time) (resolved time.Time, ok bool) {
	lower := strings.ToLower(phrase)

	day, hasDate := resolveDay(lower, ref)
	hh, mm, hasTime := resolveClock(lower)
	if !hasDate && !hasTime {
		return time.Time{}, false
	}
	if !hasDate {
		day = ref
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, ref.Location()), true
}

func resolveDay(lower string, ref time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return ref.AddDate(0, 0, 2), true
	case strings.Contains(lower, "tomorrow"):
		return ref.AddDate(0, 0, 1), true
	case strings.Contains(lower, "today"):
		return ref, true
	}

	if m := qualifiedWeekdayRe.FindStringSubmatch(lower); m != nil {
		if wd, known := weekdayNames[m[2]]; known {
			// "next Friday" resolves strictly after the reference date;
			// "this Friday" allows the reference date itself.
			return upcomingWeekday(ref, wd, m[1] == "this"), true
		}
	}
	for _, word := range wordRe.FindAllString(lower, -1) {
		if wd, known := weekdayNames[word]; known {
			return upcomingWeekday(ref, wd, true), true
		}
	}

	if m := dayMonthRe.FindStringSubmatch(lower); m != nil {
		if month, known := monthNames[m[2]]; known {
			if d, valid := dayInMonth(m[1], month, ref); valid {
				return d, true
			}
		}
	}
	if m := monthDayRe.FindStringSubmatch(lower); m != nil {
		if month, known := monthNames[m[1]]; known {
			if d, valid := dayInMonth(m[2], month, ref); valid {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

func upcomingWeekday(ref time.Time, wd time.Weekday, includeToday bool) time.Time {
	if includeToday && ref.Weekday() == wd {
		return ref
	}
	d := ref.AddDate(0, 0, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// dayInMonth places day-of-month dayStr into month within the reference
// year. Overflow days ("31st February") are rejected rather than rolled over.
func dayInMonth(dayStr string, month time.Month, ref time.Time) (time.Time, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(ref.Year(), month, day, 0, 0, 0, 0, ref.Location())
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func resolveClock(lower string) (hh, mm int, ok bool) {
	if m := time12Re.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if h >= 1 && h <= 12 && minute <= 59 {
			if m[3] == "pm" && h != 12 {
				h += 12
			}
			if m[3] == "am" && h == 12 {
				h = 0
			}
			return h, minute, true
		}
	}
	if m := time24Re.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return h, minute, true
	}
	return 0, 0, false
}
