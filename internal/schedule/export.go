package schedule

import (
	"encoding/json"
	"fmt"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/solver"
)

// EmptySlot marks an unoccupied slot in an export.
const EmptySlot = ""

// GridSpec records the grid an export was produced on.
type GridSpec struct {
	StartHour       int `json:"start_hour"`
	EndHour         int `json:"end_hour"`
	IntervalMinutes int `json:"interval_minutes"`
}

// Export is the serialized form of a projection: day name to slot values,
// plus the fatigue totals.
type Export struct {
	Status       string              `json:"status"`
	Grid         GridSpec            `json:"grid"`
	Slots        []string            `json:"slots"`
	Schedule     map[string][]string `json:"schedule"`
	TotalFatigue float64             `json:"total_fatigue"`
	DayFatigue   map[string]float64  `json:"day_fatigue"`
	Unplaced     []string            `json:"unplaced"`
}

// Export converts p to its serialized form.
func (p *Projection) Export() Export {
	e := Export{
		Status: p.Status.String(),
		Grid: GridSpec{
			StartHour:       p.Config.StartHour,
			EndHour:         p.Config.EndHour,
			IntervalMinutes: p.Config.IntervalMinutes,
		},
		Slots:        p.Labels(),
		Schedule:     make(map[string][]string, dateutil.DaysPerWeek),
		TotalFatigue: p.Total,
		DayFatigue:   make(map[string]float64, dateutil.DaysPerWeek),
		Unplaced:     append([]string{}, p.Unplaced...),
	}
	for _, day := range p.Days {
		values := make([]string, len(day.Slots))
		for i, s := range day.Slots {
			if s.Empty {
				values[i] = EmptySlot
			} else {
				values[i] = s.Task
			}
		}
		name := day.Weekday.String()
		e.Schedule[name] = values
		e.DayFatigue[name] = day.Fatigue
	}
	return e
}

// JSON encodes the export with indentation.
func (e Export) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// ParseExport decodes an export produced by Export.JSON.
func ParseExport(data []byte) (*Export, error) {
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	return &e, nil
}

// Projection rebuilds the projection an export was made from.
func (e *Export) Projection() (*Projection, error) {
	cfg, err := grid.NewConfig(e.Grid.StartHour, e.Grid.EndHour, e.Grid.IntervalMinutes)
	if err != nil {
		return nil, err
	}
	p := &Projection{
		Config:   cfg,
		Status:   parseStatus(e.Status),
		Total:    e.TotalFatigue,
		Unplaced: append([]string(nil), e.Unplaced...),
	}
	placed := make(map[string]bool)
	for _, wd := range dateutil.Weekdays() {
		values := e.Schedule[wd.String()]
		if len(values) != 0 && len(values) != cfg.SlotsPerDay() {
			return nil, fmt.Errorf("%w: %s has %d slots, grid has %d",
				grid.ErrConfig, wd, len(values), cfg.SlotsPerDay())
		}
		day := Day{
			Weekday: wd,
			Slots:   make([]Slot, cfg.SlotsPerDay()),
			Fatigue: e.DayFatigue[wd.String()],
		}
		for s := range day.Slots {
			day.Slots[s] = Slot{Label: cfg.SlotLabel(s), Empty: true}
			if s < len(values) && values[s] != EmptySlot {
				day.Slots[s].Task = values[s]
				day.Slots[s].Empty = false
				if !placed[values[s]] {
					placed[values[s]] = true
					p.Placed = append(p.Placed, values[s])
				}
			}
		}
		p.Days[wd] = day
	}
	return p, nil
}

func parseStatus(s string) solver.Status {
	for _, st := range []solver.Status{solver.StatusComplete, solver.StatusTimedOut, solver.StatusCancelled} {
		if st.String() == s {
			return st
		}
	}
	return solver.StatusComplete
}
