package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultHour is used when a message names a day but no time.
const DefaultHour = 9

var (
	isoRe      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:[ tT](\d{1,2}):(\d{2}))?\b`)
	meridiemRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)`)
	atHourRe   = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\b`)
	clockRe    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	noonRe     = regexp.MustCompile(`(?i)\b(noon|midday)\b`)
	relDayRe   = regexp.MustCompile(`(?i)\b(day after tomorrow|tomorrow|today|tonight)\b`)
	weekdayRe  = regexp.MustCompile(`(?i)\b(next\s+|this\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday|tues|tue|thurs|thu|fri)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// parseDay finds a calendar day in text relative to now. A bare weekday is
// the next such day including today; "next <weekday>" always lies after
// today.
func parseDay(text string, now time.Time) (time.Time, bool) {
	today := midnight(now)
	if m := isoRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if mo < 1 || mo > 12 || d < 1 || d > 31 {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location()), true
	}
	if m := relDayRe.FindStringSubmatch(text); m != nil {
		switch strings.ToLower(m[1]) {
		case "day after tomorrow":
			return today.AddDate(0, 0, 2), true
		case "tomorrow":
			return today.AddDate(0, 0, 1), true
		default:
			return today, true
		}
	}
	if m := weekdayRe.FindStringSubmatch(text); m != nil {
		want := weekdays[strings.ToLower(m[2])]
		delta := (int(want) - int(today.Weekday()) + 7) % 7
		if strings.HasPrefix(strings.ToLower(m[1]), "next") && delta == 0 {
			delta = 7
		}
		return today.AddDate(0, 0, delta), true
	}
	return time.Time{}, false
}

// parseClock finds a time of day. Bare hours from 1 to 6 without am/pm are
// read as afternoon.
func parseClock(text string) (hour, minute int, ok bool) {
	if m := isoRe.FindStringSubmatch(text); m != nil && m[4] != "" {
		h, _ := strconv.Atoi(m[4])
		mi, _ := strconv.Atoi(m[5])
		return h, mi, validClock(h, mi)
	}
	if m := meridiemRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi := 0
		if m[2] != "" {
			mi, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 {
			return 0, 0, false
		}
		pm := strings.HasPrefix(strings.ToLower(m[3]), "p")
		switch {
		case pm && h != 12:
			h += 12
		case !pm && h == 12:
			h = 0
		}
		return h, mi, validClock(h, mi)
	}
	if noonRe.MatchString(text) {
		return 12, 0, true
	}
	for _, re := range []*regexp.Regexp{atHourRe, clockRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			h, _ := strconv.Atoi(m[1])
			mi := 0
			if m[2] != "" {
				mi, _ = strconv.Atoi(m[2])
			}
			if h >= 1 && h <= 6 {
				h += 12
			}
			return h, mi, validClock(h, mi)
		}
	}
	return 0, 0, false
}

func validClock(h, m int) bool { return h >= 0 && h < 24 && m >= 0 && m < 60 }

// ParseDateTime extracts a point in time from text. A time without a day
// means the next occurrence of that time; a day without a time uses
// DefaultHour.
func ParseDateTime(text string, now time.Time) (time.Time, bool) {
	day, hasDay := parseDay(text, now)
	h, mi, hasClock := parseClock(text)
	switch {
	case hasDay && hasClock:
		return time.Date(day.Year(), day.Month(), day.Day(), h, mi, 0, 0, now.Location()), true
	case hasDay:
		return time.Date(day.Year(), day.Month(), day.Day(), DefaultHour, 0, 0, 0, now.Location()), true
	case hasClock:
		t := time.Date(now.Year(), now.Month(), now.Day(), h, mi, 0, 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseDate extracts a calendar day from text.
func ParseDate(text string, now time.Time) (time.Time, bool) {
	return parseDay(text, now)
}
