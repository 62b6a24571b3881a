package grid

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/task"
)

// Domain errors.
var (
	ErrOutOfBounds   = errors.New("slot range is outside the grid")
	ErrRangeOccupied = errors.New("slot range is already occupied")
	ErrNotOwner      = errors.New("slot range is not held by task")
)

// Range is a contiguous run of slots within one day.
type Range struct {
	Day    dateutil.Weekday
	Start  int
	Length int
}

// End returns the exclusive end slot.
func (r Range) End() int {
	return r.Start + r.Length
}

// String returns the range as "Friday[0,4)".
func (r Range) String() string {
	return fmt.Sprintf("%s[%d,%d)", r.Day, r.Start, r.End())
}

// Placement is a task together with the range it occupies.
type Placement struct {
	Task  *task.Task
	Range Range
}

// Grid is a 7 x SlotsPerDay array of optional task references.
// A slot is empty (nil) or references exactly one task.
type Grid struct {
	cfg   Config
	cells [dateutil.DaysPerWeek][]*task.Task
}

// New creates an empty grid for cfg.
func New(cfg Config) *Grid {
	g := &Grid{cfg: cfg}
	for d := range g.cells {
		g.cells[d] = make([]*task.Task, cfg.SlotsPerDay())
	}
	return g
}

// Config returns the grid configuration.
func (g *Grid) Config() Config {
	return g.cfg
}

// InBounds returns true if r lies entirely within one day of the grid.
func (g *Grid) InBounds(r Range) bool {
	return r.Day.Valid() && r.Start >= 0 && r.Length > 0 && r.End() <= g.cfg.SlotsPerDay()
}

// At returns the task in the given slot, or nil when empty or out of bounds.
func (g *Grid) At(day dateutil.Weekday, slot int) *task.Task {
	if !day.Valid() || slot < 0 || slot >= g.cfg.SlotsPerDay() {
		return nil
	}
	return g.cells[day][slot]
}

// IsRangeFree returns true if r is in bounds and every slot is empty.
// Out-of-bounds ranges are reported as not free.
func (g *Grid) IsRangeFree(r Range) bool {
	if !g.InBounds(r) {
		return false
	}
	for _, cell := range g.cells[r.Day][r.Start:r.End()] {
		if cell != nil {
			return false
		}
	}
	return true
}

// Occupy assigns every slot of r to t.
func (g *Grid) Occupy(r Range, t *task.Task) error {
	if !g.InBounds(r) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, r)
	}
	if !g.IsRangeFree(r) {
		return fmt.Errorf("%w: %s", ErrRangeOccupied, r)
	}
	row := g.cells[r.Day]
	for s := r.Start; s < r.End(); s++ {
		row[s] = t
	}
	return nil
}

// Release empties every slot of r. All slots must be held by t.
func (g *Grid) Release(r Range, t *task.Task) error {
	if !g.InBounds(r) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, r)
	}
	row := g.cells[r.Day]
	for s := r.Start; s < r.End(); s++ {
		if row[s] != t {
			return fmt.Errorf("%w: %s", ErrNotOwner, r)
		}
	}
	for s := r.Start; s < r.End(); s++ {
		row[s] = nil
	}
	return nil
}

// Day returns a copy of one day column.
func (g *Grid) Day(day dateutil.Weekday) []*task.Task {
	if !day.Valid() {
		return nil
	}
	row := make([]*task.Task, len(g.cells[day]))
	copy(row, g.cells[day])
	return row
}

// Clone returns a deep copy of the grid. Task pointers are shared.
func (g *Grid) Clone() *Grid {
	c := &Grid{cfg: g.cfg}
	for d := range g.cells {
		c.cells[d] = make([]*task.Task, len(g.cells[d]))
		copy(c.cells[d], g.cells[d])
	}
	return c
}

// Equal reports whether both grids hold the same task in every slot.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.cfg != other.cfg {
		return false
	}
	for d := range g.cells {
		for s, cell := range g.cells[d] {
			if other.cells[d][s] != cell {
				return false
			}
		}
	}
	return true
}

// Placements returns every contiguous run held by one task, day-major
// then slot-ascending.
func (g *Grid) Placements() []Placement {
	var result []Placement
	for d := range g.cells {
		row := g.cells[d]
		for s := 0; s < len(row); {
			t := row[s]
			if t == nil {
				s++
				continue
			}
			start := s
			for s < len(row) && row[s] == t {
				s++
			}
			result = append(result, Placement{
				Task:  t,
				Range: Range{Day: dateutil.Weekday(d), Start: start, Length: s - start},
			})
		}
	}
	return result
}

// IsEmpty returns true if no slot is occupied.
func (g *Grid) IsEmpty() bool {
	for d := range g.cells {
		for _, cell := range g.cells[d] {
			if cell != nil {
				return false
			}
		}
	}
	return true
}
