// Package temporal turns free-text appointment times ("tomorrow 3pm",
// "next monday 9am", "2025-03-14 10:30") into absolute instants.
package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the wire rendering of resolved instants: UTC with milliseconds.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	looseISOPattern  = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2})`)
	timeOfDayPattern = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?|(\d{1,2})h`)

	weekdayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
)

// Layouts carrying their own offset or zone name.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.UnixDate,
	time.RubyDate,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// Layouts without zone information, read in the resolver's location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	time.ANSIC,
	"January 2, 2006 15:04",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 3:04pm",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 3:04pm",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"01/02/2006 3:04pm",
	"January 2, 2006",
	"01/02/2006",
}

// Resolver converts one utterance into an instant relative to its clock and
// location. It holds no mutable state; Resolve is safe for concurrent use.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver builds a resolver. A nil loc selects time.Local and a nil now
// selects time.Now.
func NewResolver(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{loc: loc, now: now}
}

// Location returns the zone used for wall-clock interpretation.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve returns the instant described by text. The second result is false
// when no usable date/time could be extracted.
//
// Strategies run in order and the first success wins: a full date/time
// literal, a loose "YYYY-MM-DD HH:MM" anywhere in the text, then keyword
// extraction ("tomorrow", "today", "next week", weekday names) combined with
// a time of day. The keyword path only yields a result when a time of day is
// present, so "friday" or "tomorrow" alone fail.
func (r *Resolver) Resolve(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}
	if t, ok := r.parseDirect(trimmed); ok {
		return t, true
	}
	if t, ok := r.parseLooseISO(trimmed); ok {
		return t, true
	}
	return r.parseRelative(strings.ToLower(trimmed))
}

func (r *Resolver) parseDirect(text string) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, text, r.loc); err == nil {
			return t, true
		}
	}
	// A bare ISO date is a UTC midnight, like other general-purpose parsers.
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (r *Resolver) parseLooseISO(text string) (time.Time, bool) {
	m := looseISOPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	parts := make([]int, 5)
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = n
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, r.loc), true
}

func (r *Resolver) parseRelative(lower string) (time.Time, bool) {
	base := r.now().In(r.loc)

	switch {
	case strings.Contains(lower, "tomorrow"):
		base = base.AddDate(0, 0, 1)
	case strings.Contains(lower, "today"):
	case strings.Contains(lower, "next week"):
		base = base.AddDate(0, 0, 7)
	default:
		if target, ok := findWeekday(lower); ok {
			base = base.AddDate(0, 0, weekdayDelta(base.Weekday(), target, strings.Contains(lower, "next")))
		}
	}

	m := timeOfDayPattern.FindStringSubmatch(lower)
	if m == nil {
		return time.Time{}, false
	}
	hourStr := m[1]
	if hourStr == "" {
		hourStr = m[4]
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return time.Time{}, false
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return time.Time{}, false
		}
	}
	hour = applyMeridiem(hour, m[3])

	return time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, r.loc), true
}

// applyMeridiem converts a 12-hour clock reading: 12am is midnight, 12pm stays noon.
func applyMeridiem(hour int, meridiem string) int {
	switch meridiem {
	case "pm":
		if hour < 12 {
			return hour + 12
		}
	case "am":
		if hour == 12 {
			return 0
		}
	}
	return hour
}

func findWeekday(lower string) (time.Weekday, bool) {
	for i, name := range weekdayNames {
		if strings.Contains(lower, name) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// weekdayDelta is the number of days until the next target weekday, strictly
// after today. The extra week for "next" is absorbed by the modulo, so
// "next friday" and "friday" land on the same date.
func weekdayDelta(current, target time.Weekday, hasNext bool) int {
	extra := 0
	if hasNext {
		extra = 7
	}
	delta := (int(target) + 7 - int(current) + extra) % 7
	if delta == 0 {
		delta = 7
	}
	return delta
}

// FormatISO renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
