package solver

import (
	"fmt"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/fatigue"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/task"
)

// entry is a task prepared for search: its slot length and cached cost.
type entry struct {
	task   *task.Task
	length int
	cost   float64
	count  int // candidates on the empty grid after pin reservations, used for ordering
}

// dayState holds the running aggregates of one day.
type dayState struct {
	present    map[string]int // appearances per task name
	difficulty float64
	cost       float64
	fatigue    float64
}

// state is the grid plus the per-day aggregates derived from it. It is
// owned by one search and mutated only through apply and revert.
type state struct {
	grid  *grid.Grid
	days  [dateutil.DaysPerWeek]dayState
	total float64
}

func newState(cfg grid.Config) *state {
	s := &state{grid: grid.New(cfg)}
	for d := range s.days {
		s.days[d].present = make(map[string]int)
	}
	return s
}

// undo restores the state to what it was before one apply.
type undo struct {
	entry      *entry
	r          grid.Range
	difficulty float64
	cost       float64
	fatigue    float64
	total      float64
}

// apply places e at r and updates the day aggregates. A task adds its cost
// and difficulty only on its first appearance in a day.
func (s *state) apply(e *entry, r grid.Range) (undo, error) {
	day := &s.days[r.Day]
	u := undo{
		entry:      e,
		r:          r,
		difficulty: day.difficulty,
		cost:       day.cost,
		fatigue:    day.fatigue,
		total:      s.total,
	}
	if err := s.grid.Occupy(r, e.task); err != nil {
		return undo{}, err
	}

	name := e.task.Name
	if day.present[name] == 0 {
		day.cost += e.cost
		day.difficulty += e.task.Difficulty
		day.fatigue = fatigue.DayFatigue(day.cost, day.difficulty)
		s.total = s.sumDays()
	}
	day.present[name]++
	return u, nil
}

// revert undoes one apply. Saved values are restored rather than
// subtracted so the state is bit-for-bit what it was before.
func (s *state) revert(u undo) {
	if err := s.grid.Release(u.r, u.entry.task); err != nil {
		panic(fmt.Sprintf("solver: reverting %s: %v", u.r, err))
	}

	day := &s.days[u.r.Day]
	name := u.entry.task.Name
	day.present[name]--
	if day.present[name] == 0 {
		delete(day.present, name)
	}
	day.difficulty = u.difficulty
	day.cost = u.cost
	day.fatigue = u.fatigue
	s.total = u.total
}

func (s *state) sumDays() float64 {
	var total float64
	for d := range s.days {
		total += s.days[d].fatigue
	}
	return total
}

// dayFatigue returns the per-day fatigue vector.
func (s *state) dayFatigue() [dateutil.DaysPerWeek]float64 {
	var v [dateutil.DaysPerWeek]float64
	for d := range s.days {
		v[d] = s.days[d].fatigue
	}
	return v
}
