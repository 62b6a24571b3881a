// Package schedule turns solver results into per-day slot listings for
// rendering and persistence.
package schedule

import (
	"gonum.org/v1/gonum/floats"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/solver"
)

// Slot is one cell of a projected day.
type Slot struct {
	Label string // slot start as HH:MM
	Task  string // empty when Empty is true
	Empty bool
}

// Day is the ordered slot listing of one weekday.
type Day struct {
	Weekday dateutil.Weekday
	Slots   []Slot
	Fatigue float64
}

// BusySlots returns the number of occupied slots.
func (d Day) BusySlots() int {
	n := 0
	for _, s := range d.Slots {
		if !s.Empty {
			n++
		}
	}
	return n
}

// Projection is a solver result laid out day by day.
type Projection struct {
	Config   grid.Config
	Status   solver.Status
	Days     [dateutil.DaysPerWeek]Day
	Total    float64
	Placed   []string
	Unplaced []string
}

// Project lays out res on the grid described by cfg. A result without a
// grid projects to an all-empty week with zero fatigue.
func Project(cfg grid.Config, res *solver.Result) *Projection {
	p := &Projection{
		Config:   cfg,
		Status:   res.Status,
		Total:    res.TotalFatigue,
		Placed:   append([]string(nil), res.Placed...),
		Unplaced: append([]string(nil), res.Unplaced...),
	}
	for _, wd := range dateutil.Weekdays() {
		day := Day{
			Weekday: wd,
			Slots:   make([]Slot, cfg.SlotsPerDay()),
			Fatigue: res.DayFatigue[wd],
		}
		for s := range day.Slots {
			day.Slots[s] = Slot{Label: cfg.SlotLabel(s), Empty: true}
			if res.Grid == nil {
				continue
			}
			if t := res.Grid.At(wd, s); t != nil {
				day.Slots[s].Task = t.Name
				day.Slots[s].Empty = false
			}
		}
		p.Days[wd] = day
	}
	return p
}

// Labels returns the HH:MM label of every slot in a day.
func (p *Projection) Labels() []string {
	labels := make([]string, p.Config.SlotsPerDay())
	for s := range labels {
		labels[s] = p.Config.SlotLabel(s)
	}
	return labels
}

// BusyHours returns the scheduled hours per day.
func (p *Projection) BusyHours() [dateutil.DaysPerWeek]float64 {
	var hours [dateutil.DaysPerWeek]float64
	perSlot := float64(p.Config.IntervalMinutes) / 60
	for d, day := range p.Days {
		hours[d] = float64(day.BusySlots()) * perSlot
	}
	return hours
}

// Utilization returns the share of the week's slots that are occupied.
func (p *Projection) Utilization() float64 {
	capacity := float64(p.Config.SlotsPerDay()*dateutil.DaysPerWeek) * float64(p.Config.IntervalMinutes) / 60
	if capacity == 0 {
		return 0
	}
	hours := p.BusyHours()
	return floats.Sum(hours[:]) / capacity
}

// PeakDay returns the weekday with the highest fatigue. Ties go to the
// earliest day.
func (p *Projection) PeakDay() (dateutil.Weekday, float64) {
	var fatigue [dateutil.DaysPerWeek]float64
	for d, day := range p.Days {
		fatigue[d] = day.Fatigue
	}
	i := floats.MaxIdx(fatigue[:])
	return dateutil.Weekday(i), fatigue[i]
}

// Block is a contiguous run of slots held by one task.
type Block struct {
	Task  string
	Start int // first slot
	Len   int
}

// Blocks returns the task blocks of a day in slot order.
func (d Day) Blocks() []Block {
	var blocks []Block
	for s := 0; s < len(d.Slots); s++ {
		if d.Slots[s].Empty {
			continue
		}
		b := Block{Task: d.Slots[s].Task, Start: s, Len: 1}
		for s+1 < len(d.Slots) && !d.Slots[s+1].Empty && d.Slots[s+1].Task == b.Task {
			s++
			b.Len++
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Span returns the "HH:MM-HH:MM" interval covered by b.
func (p *Projection) Span(b Block) string {
	return p.Config.SlotLabel(b.Start) + "-" + p.Config.SlotLabel(b.Start+b.Len)
}
