// Package placement enumerates the legal slot ranges for a task given the
// current occupancy of the week grid.
package placement

import (
	"fmt"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/task"
)

// Enumerator lists candidate placements on grids built from one Config.
type Enumerator struct {
	cfg      grid.Config
	reserved []grid.Range
}

// New creates an Enumerator for cfg.
func New(cfg grid.Config) *Enumerator {
	return &Enumerator{cfg: cfg}
}

// SlotsNeeded returns the slot length of t.
// Fails with grid.ErrConfig if the duration is not a whole number of slots.
func (e *Enumerator) SlotsNeeded(t *task.Task) (int, error) {
	n, err := e.cfg.SlotsNeeded(t.Duration)
	if err != nil {
		return 0, fmt.Errorf("task %q: %w", t.Name, err)
	}
	return n, nil
}

// FixedRange returns the pinned range of t. ok is false when t is free or
// its start cannot be expressed as a slot (before the window or off a slot
// boundary). The returned range may still extend past the window end.
func (e *Enumerator) FixedRange(t *task.Task, length int) (r grid.Range, ok bool) {
	if t.Fixed == nil {
		return grid.Range{}, false
	}
	start, ok := e.cfg.HourMinuteToSlot(t.Fixed.Hour, t.Fixed.Minute)
	if !ok {
		return grid.Range{}, false
	}
	return grid.Range{Day: t.Fixed.Day, Start: start, Length: length}, true
}

// Reserve keeps r away from free tasks for as long as it is entirely
// empty. Once any slot of r is taken, by its owner or another pinned task,
// the reservation no longer applies.
func (e *Enumerator) Reserve(r grid.Range) {
	e.reserved = append(e.reserved, r)
}

// Candidates returns every range where t can be placed on g right now.
//
// A pinned task yields its single range if it is in bounds and free, or
// nothing; it is never relocated. A free task yields every fully empty run
// of length slots that does not overlap a live reservation, day-major then
// slot-ascending. That order decides
// search tie-breaking and must stay stable.
func (e *Enumerator) Candidates(t *task.Task, length int, g *grid.Grid) []grid.Range {
	if t.Fixed != nil {
		r, ok := e.FixedRange(t, length)
		if !ok || !g.IsRangeFree(r) {
			return nil
		}
		return []grid.Range{r}
	}

	var result []grid.Range
	e.scan(length, g, func(r grid.Range) {
		result = append(result, r)
	})
	return result
}

// CandidateCount returns len(Candidates(t, length, g)) without allocating.
func (e *Enumerator) CandidateCount(t *task.Task, length int, g *grid.Grid) int {
	if t.Fixed != nil {
		r, ok := e.FixedRange(t, length)
		if !ok || !g.IsRangeFree(r) {
			return 0
		}
		return 1
	}
	count := 0
	e.scan(length, g, func(grid.Range) { count++ })
	return count
}

// scan calls visit for every free run of length slots. A run of free slots
// is tracked per day so each slot is inspected once.
func (e *Enumerator) scan(length int, g *grid.Grid, visit func(grid.Range)) {
	perDay := e.cfg.SlotsPerDay()
	if length <= 0 || length > perDay {
		return
	}
	live := e.liveReservations(g)
	for _, day := range dateutil.Weekdays() {
		free := 0
		for s := 0; s < perDay; s++ {
			if g.At(day, s) != nil {
				free = 0
				continue
			}
			free++
			if free < length {
				continue
			}
			r := grid.Range{Day: day, Start: s - length + 1, Length: length}
			if !overlapsAny(r, live) {
				visit(r)
			}
		}
	}
}

func (e *Enumerator) liveReservations(g *grid.Grid) []grid.Range {
	var live []grid.Range
	for _, r := range e.reserved {
		if g.IsRangeFree(r) {
			live = append(live, r)
		}
	}
	return live
}

func overlapsAny(r grid.Range, ranges []grid.Range) bool {
	for _, o := range ranges {
		if o.Day == r.Day && r.Start < o.End() && o.Start < r.End() {
			return true
		}
	}
	return false
}
