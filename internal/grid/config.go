// Package grid models the week as 7 days of fixed-length time slots.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/javiermolinar/weekfit/internal/dateutil"
)

// ErrConfig is wrapped by every configuration failure: bad hour range,
// interval not dividing 60, durations that do not fill whole slots, and
// rejected fatigue expressions.
var ErrConfig = errors.New("configuration error")

// slotEpsilon absorbs float noise when turning hours into slot counts.
const slotEpsilon = 1e-9

// Config describes the daily window and slot length of the week grid.
type Config struct {
	StartHour       int
	EndHour         int
	IntervalMinutes int
	slotsPerDay     int
}

// DefaultConfig returns the 09:00-17:00 grid with 30 minute slots.
func DefaultConfig() Config {
	cfg, _ := NewConfig(9, 17, 30)
	return cfg
}

// NewConfig validates the schedule window and derives the slot count.
// start must be before end, both within [0,24], and interval must divide 60.
func NewConfig(startHour, endHour, intervalMinutes int) (Config, error) {
	if startHour < 0 || startHour > 24 || endHour < 0 || endHour > 24 {
		return Config{}, fmt.Errorf("%w: hours must be within 0 and 24, got %d-%d", ErrConfig, startHour, endHour)
	}
	if startHour >= endHour {
		return Config{}, fmt.Errorf("%w: start hour %d must be before end hour %d", ErrConfig, startHour, endHour)
	}
	if intervalMinutes <= 0 || 60%intervalMinutes != 0 {
		return Config{}, fmt.Errorf("%w: interval of %d minutes does not divide 60", ErrConfig, intervalMinutes)
	}
	return Config{
		StartHour:       startHour,
		EndHour:         endHour,
		IntervalMinutes: intervalMinutes,
		slotsPerDay:     (endHour - startHour) * 60 / intervalMinutes,
	}, nil
}

// SlotsPerDay returns the number of slots in one day column.
func (c Config) SlotsPerDay() int {
	return c.slotsPerDay
}

// HourMinuteToSlot converts a wall-clock time to a slot index.
// ok is false when the time is before the window start or does not fall
// on a slot boundary. Indexes past the window end are returned as-is and
// left for range checks to reject.
func (c Config) HourMinuteToSlot(hour, minute int) (slot int, ok bool) {
	offset := (hour-c.StartHour)*60 + minute
	if offset < 0 || c.IntervalMinutes <= 0 || offset%c.IntervalMinutes != 0 {
		return 0, false
	}
	return offset / c.IntervalMinutes, true
}

// SlotsNeeded converts a duration in hours to a whole number of slots.
func (c Config) SlotsNeeded(hours float64) (int, error) {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, fmt.Errorf("%w: duration %v must be positive", ErrConfig, hours)
	}
	exact := hours * 60 / float64(c.IntervalMinutes)
	slots := math.Round(exact)
	if math.Abs(exact-slots) > slotEpsilon || slots < 1 {
		return 0, fmt.Errorf("%w: duration %vh is not a whole number of %d minute slots", ErrConfig, hours, c.IntervalMinutes)
	}
	return int(slots), nil
}

// SlotStartMinutes returns the start of slot as minutes since midnight.
func (c Config) SlotStartMinutes(slot int) int {
	return c.StartHour*60 + slot*c.IntervalMinutes
}

// SlotLabel returns the "HH:MM" start time of slot.
func (c Config) SlotLabel(slot int) string {
	return dateutil.MinutesToClock(c.SlotStartMinutes(slot))
}
