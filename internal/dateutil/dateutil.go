// Package dateutil provides weekday and clock utilities for the week grid.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrInvalidWeekday     = errors.New("weekday must be monday through sunday")
	ErrInvalidClockFormat = errors.New("time must be in HH:MM format")
)

// Weekday is a day of the planning week, Monday (0) through Sunday (6).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of columns in the week grid.
const DaysPerWeek = 7

var weekdayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// weekdayMap maps lowercase weekday names and abbreviations to Weekday values.
var weekdayMap = map[string]Weekday{
	"monday":    Monday,
	"mon":       Monday,
	"tuesday":   Tuesday,
	"tue":       Tuesday,
	"wednesday": Wednesday,
	"wed":       Wednesday,
	"thursday":  Thursday,
	"thu":       Thursday,
	"friday":    Friday,
	"fri":       Friday,
	"saturday":  Saturday,
	"sat":       Saturday,
	"sunday":    Sunday,
	"sun":       Sunday,
}

// Weekdays returns all days of the week in grid order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid returns true if d is Monday through Sunday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the full English name of the weekday.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ShortName returns the three-letter abbreviation of the weekday.
func (d Weekday) ShortName() string {
	if !d.Valid() {
		return ""
	}
	return weekdayNames[d][:3]
}

// ParseWeekday parses a weekday name. Full names and three-letter
// abbreviations are accepted, case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	d, ok := weekdayMap[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return d, nil
}

// MarshalText encodes the weekday as its full name.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a weekday name.
func (d *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ClockToMinutes converts "HH:MM" to minutes since midnight.
func ClockToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockFormat, s)
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	mins := int(s[3]-'0')*10 + int(s[4]-'0')
	if hours > 24 || mins > 59 || (hours == 24 && mins != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockFormat, s)
	}
	return hours*60 + mins, nil
}

// MinutesToClock converts minutes since midnight to "HH:MM" format.
// 24:00 is representable so the end of a full-day grid can be labelled.
func MinutesToClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m > 24*60 {
		m = 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
