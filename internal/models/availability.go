package models

import (
	"fmt"
	"time"

	appErrors "github.com/meetwise/availability-api/pkg/errors"
)

// Wire formats for calendar dates and wall-clock times.
const (
	DateLayout  = "02/01/2006"
	ClockLayout = "15:04"
)

// TimeOfDay is a wall-clock time with minute precision, valid on any day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a strict HH:MM 24-hour value.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parsed, err := time.Parse(ClockLayout, raw)
	if err != nil {
		return TimeOfDay{}, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid time %q, expected HH:MM", raw))
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// MinuteOfDay returns minutes elapsed since midnight.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t precedes other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinuteOfDay() < other.MinuteOfDay()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeOfDayFromMinutes converts minutes since midnight back into a clock value.
func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	return TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

// Date is a pure calendar date, free of timezone and instant semantics.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a strict DD/MM/YYYY value.
func ParseDate(raw string) (Date, error) {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, appErrors.Clone(appErrors.ErrFormat, fmt.Sprintf("invalid date %q, expected DD/MM/YYYY", raw))
	}
	return Date{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}, nil
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// After reports whether d falls after other.
func (d Date) After(other Date) bool {
	if d.Year != other.Year {
		return d.Year > other.Year
	}
	if d.Month != other.Month {
		return d.Month > other.Month
	}
	return d.Day > other.Day
}

// Weekday resolves the calendar weekday of the date.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// TimeSlot is one discretized availability unit. Slots are compared by
// exact boundary equality, never by numeric overlap.
type TimeSlot struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Label renders the canonical HH:MM-HH:MM form.
func (s TimeSlot) Label() string {
	return s.Start.String() + "-" + s.End.String()
}

// TimeWindow is a raw {start, end} wall-clock interval as stored and transported.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyAvailability maps weekday names to recurring availability windows.
type WeeklyAvailability map[string][]TimeWindow

// Schedule maps DD/MM/YYYY dates to busy intervals on that exact date.
type Schedule map[string][]TimeWindow
