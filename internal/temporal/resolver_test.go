package temporal

import (
	"testing"
	"time"
	_ "time/tzdata"
)

// 2025-01-06 is a Monday.
var mondayMorning = time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveHeuristics(t *testing.T) {
	r := NewResolver(time.UTC, fixedClock(mondayMorning))

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"tomorrow with meridiem", "tomorrow 3pm", time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC)},
		{"upper case and padding", "  TOMORROW 3PM ", time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC)},
		{"tomorrow with minutes and space", "tomorrow at 3:45 pm", time.Date(2025, 1, 7, 15, 45, 0, 0, time.UTC)},
		{"today", "today 10:30", time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)},
		{"next week", "next week 2pm", time.Date(2025, 1, 13, 14, 0, 0, 0, time.UTC)},
		{"tomorrow beats today", "today or tomorrow 5pm", time.Date(2025, 1, 7, 17, 0, 0, 0, time.UTC)},
		{"later weekday this week", "friday 4pm", time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)},
		{"same weekday means next week", "monday 9am", time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)},
		{"next monday", "next monday 9am", time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC)},
		{"next is absorbed by the modulo", "next friday 4pm", time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)},
		{"sunday wraps", "sunday 11am", time.Date(2025, 1, 12, 11, 0, 0, 0, time.UTC)},
		{"24h shorthand", "9h", time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)},
		{"24h clock", "tomorrow 17:15", time.Date(2025, 1, 7, 17, 15, 0, 0, time.UTC)},
		{"midnight", "tomorrow 12am", time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)},
		{"noon", "tomorrow 12pm", time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)},
		{"bare am", "7am", time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.input)
			if !ok {
				t.Fatalf("Resolve(%q) failed", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Resolve(%q) = %s, want %s", tt.input, got, tt.want)
			}
			if got.Second() != 0 || got.Nanosecond() != 0 {
				t.Fatalf("expected seconds zeroed, got %s", got)
			}
		})
	}
}

func TestResolveFailures(t *testing.T) {
	r := NewResolver(time.UTC, fixedClock(mondayMorning))

	for _, input := range []string{
		"",
		"   ",
		"friday",
		"next week",
		"whenever works",
		// A bare date anchor without a time of day fails today. Callers re-prompt.
		"tomorrow",
	} {
		if got, ok := r.Resolve(input); ok {
			t.Errorf("Resolve(%q) = %s, expected failure", input, got)
		}
	}
}

func TestResolveDirectLiterals(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	r := NewResolver(toronto, fixedClock(mondayMorning))

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-01-07T15:00:00.000Z", time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC)},
		{"2025-01-07T10:00:00-05:00", time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC)},
		{"Tue, 07 Jan 2025 15:00:00 +0000", time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC)},
		{"2025-01-07T10:00:00", time.Date(2025, 1, 7, 10, 0, 0, 0, toronto)},
		{"January 7, 2025 3:30 PM", time.Date(2025, 1, 7, 15, 30, 0, 0, toronto)},
		{"01/07/2025 09:15", time.Date(2025, 1, 7, 9, 15, 0, 0, toronto)},
		{"2025-01-07", time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.input)
		if !ok {
			t.Fatalf("Resolve(%q) failed", tt.input)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("Resolve(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestResolveLooseISO(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	r := NewResolver(toronto, fixedClock(mondayMorning))

	for _, input := range []string{"2025-02-03 14:30", "please book 2025-02-03T14:30 thanks"} {
		got, ok := r.Resolve(input)
		if !ok {
			t.Fatalf("Resolve(%q) failed", input)
		}
		want := time.Date(2025, 2, 3, 14, 30, 0, 0, toronto)
		if !got.Equal(want) {
			t.Fatalf("Resolve(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestResolveUsesLocationForWallClock(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// 10:00 UTC on Monday is 05:00 in Toronto, still Monday.
	r := NewResolver(toronto, fixedClock(mondayMorning))
	got, ok := r.Resolve("tomorrow 3pm")
	if !ok {
		t.Fatal("expected resolution")
	}
	want := time.Date(2025, 1, 7, 15, 0, 0, 0, toronto)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
	if FormatISO(got) != "2025-01-07T20:00:00.000Z" {
		t.Fatalf("unexpected ISO rendering %s", FormatISO(got))
	}
}

func TestWeekdayDelta(t *testing.T) {
	tests := []struct {
		current, target time.Weekday
		hasNext         bool
		want            int
	}{
		{time.Monday, time.Tuesday, false, 1},
		{time.Monday, time.Monday, false, 7},
		{time.Monday, time.Monday, true, 7},
		{time.Saturday, time.Sunday, false, 1},
		{time.Wednesday, time.Monday, true, 5},
	}
	for _, tt := range tests {
		if got := weekdayDelta(tt.current, tt.target, tt.hasNext); got != tt.want {
			t.Errorf("weekdayDelta(%s, %s, %v) = %d, want %d", tt.current, tt.target, tt.hasNext, got, tt.want)
		}
	}
}

func TestApplyMeridiem(t *testing.T) {
	tests := []struct {
		hour     int
		meridiem string
		want     int
	}{
		{12, "am", 0},
		{12, "pm", 12},
		{3, "pm", 15},
		{3, "am", 3},
		{15, "pm", 15},
		{9, "", 9},
	}
	for _, tt := range tests {
		if got := applyMeridiem(tt.hour, tt.meridiem); got != tt.want {
			t.Errorf("applyMeridiem(%d, %q) = %d, want %d", tt.hour, tt.meridiem, got, tt.want)
		}
	}
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver(nil, nil)
	if r.Location() != time.Local {
		t.Fatalf("expected time.Local default")
	}
	if _, ok := r.Resolve("today 9am"); !ok {
		t.Fatalf("expected default clock to work")
	}
}
