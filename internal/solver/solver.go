// Package solver assigns tasks to the week grid minimizing total fatigue.
//
// The search is a depth-first branch and bound over the candidates of the
// placement enumerator. Per-day aggregates are maintained incrementally
// while backtracking, and a branch is abandoned as soon as its running
// total reaches the best complete assignment found so far; fatigue never
// decreases as tasks are added, so nothing below such a branch can win.
package solver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/fatigue"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/placement"
	"github.com/javiermolinar/weekfit/internal/task"
)

// Search interruption errors. Solve returns them together with the best
// result found before the interruption.
var (
	ErrSearchTimedOut  = errors.New("search budget exhausted before all branches were explored")
	ErrSearchCancelled = errors.New("search cancelled")
)

// Status describes how a search ended.
type Status int

const (
	// StatusComplete means every branch was explored or pruned.
	StatusComplete Status = iota
	// StatusTimedOut means the node budget or deadline stopped the search.
	StatusTimedOut
	// StatusCancelled means the caller cancelled the context.
	StatusCancelled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusTimedOut:
		return "timed_out"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Stats counts the work done by one search.
type Stats struct {
	Nodes     int64 // exploring transitions entered
	Pruned    int64 // candidates not descended into
	Solutions int64 // improving complete assignments
	Elapsed   time.Duration
}

// Result is the best assignment found by Solve.
type Result struct {
	Status       Status
	Grid         *grid.Grid // nil when no task could be placed
	TotalFatigue float64
	DayFatigue   [dateutil.DaysPerWeek]float64
	Placed       []string // task names on the grid, in catalog order
	Unplaced     []string // task names missing from the grid, in catalog order
	Order        []string // task names in search order
	Stats        Stats
}

// Found returns true if at least one task was placed.
func (r *Result) Found() bool {
	return r.Grid != nil
}

// Observer receives every finished search, e.g. to record metrics.
type Observer interface {
	ObserveSearch(r *Result)
}

type options struct {
	maxNodes int64
	logger   zerolog.Logger
	observer Observer
	prune    bool
}

// Option configures Solve.
type Option func(*options)

// WithMaxNodes stops the search after n exploring transitions.
// Zero means unbounded.
func WithMaxNodes(n int64) Option {
	return func(o *options) {
		o.maxNodes = n
	}
}

// WithLogger sets the logger for start and finish events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver registers an observer for the finished search.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithoutPruning disables the bound check. The reported minimum is the
// same; only the amount of work changes.
func WithoutPruning() Option {
	return func(o *options) {
		o.prune = false
	}
}

// Solve searches for the assignment of tasks to the grid described by cfg
// with the lowest total fatigue under model (fatigue.Default when nil).
//
// Configuration problems (durations that do not fill whole slots, costs
// that are negative or not finite) fail with grid.ErrConfig before any
// search. A pinned task whose range is in bounds and not claimed by an
// earlier pin is always placed there. Tasks that cannot be placed are
// skipped and listed in Result.Unplaced. When the node budget or ctx stops the search early, the
// best result so far is returned along with ErrSearchTimedOut or
// ErrSearchCancelled.
func Solve(ctx context.Context, tasks []*task.Task, cfg grid.Config, model fatigue.Model, opts ...Option) (*Result, error) {
	o := options{logger: zerolog.Nop(), prune: true}
	for _, opt := range opts {
		opt(&o)
	}
	if model == nil {
		model = fatigue.Default
	}

	catalog, err := task.NewCatalog(tasks)
	if err != nil {
		return nil, err
	}

	enum := placement.New(cfg)
	entries, err := prepare(catalog, enum, cfg, model)
	if err != nil {
		return nil, err
	}

	s := &search{
		enum:      enum,
		entries:   entries,
		state:     newState(cfg),
		bestTotal: math.Inf(1),
		maxNodes:  o.maxNodes,
		prune:     o.prune,
		done:      ctx.Done(),
		ctx:       ctx,
	}

	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.task.Name
	}
	o.logger.Debug().
		Int("tasks", len(entries)).
		Strs("order", order).
		Int("slots_per_day", cfg.SlotsPerDay()).
		Msg("search started")

	start := time.Now()
	if len(entries) > 0 {
		s.explore(0)
	}
	s.stats.Elapsed = time.Since(start)

	res := s.result(catalog, order)

	o.logger.Info().
		Str("status", res.Status.String()).
		Int64("nodes", res.Stats.Nodes).
		Int64("pruned", res.Stats.Pruned).
		Float64("total_fatigue", res.TotalFatigue).
		Strs("unplaced", res.Unplaced).
		Dur("elapsed", res.Stats.Elapsed).
		Msg("search finished")

	if o.observer != nil {
		o.observer.ObserveSearch(res)
	}

	switch res.Status {
	case StatusTimedOut:
		return res, ErrSearchTimedOut
	case StatusCancelled:
		return res, fmt.Errorf("%w: %w", ErrSearchCancelled, ctx.Err())
	}
	return res, nil
}

// prepare resolves slot lengths and costs, then orders the tasks: tasks
// with a priority first by ascending priority, tasks without one last, and
// fewest candidates first among equals. The sort is stable.
//
// Pinned ranges are reserved on enum so free tasks cannot take them. Only
// pins that still fit after every earlier pin in search order is placed
// get a reservation; the others are skipped by the search anyway.
func prepare(catalog *task.Catalog, enum *placement.Enumerator, cfg grid.Config, model fatigue.Model) ([]*entry, error) {
	empty := grid.New(cfg)
	entries := make([]*entry, 0, catalog.Len())
	for _, t := range catalog.Tasks() {
		length, err := enum.SlotsNeeded(t)
		if err != nil {
			return nil, err
		}
		cost := model.Cost(t, fatigue.Env{TaskCount: catalog.Len(), Slots: length})
		if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
			return nil, fmt.Errorf("%w: fatigue cost of task %q is %v, must be a non-negative number",
				grid.ErrConfig, t.Name, cost)
		}
		entries = append(entries, &entry{
			task:   t,
			length: length,
			cost:   cost,
			count:  enum.CandidateCount(t, length, empty),
		})
	}
	sortEntries(entries)

	pins := grid.New(cfg)
	for _, e := range entries {
		r, ok := enum.FixedRange(e.task, e.length)
		if !ok || !pins.IsRangeFree(r) {
			continue
		}
		if err := pins.Occupy(r, e.task); err != nil {
			return nil, err
		}
		enum.Reserve(r)
	}

	// Reservations shrink the choices of free tasks; pinned counts and
	// therefore the relative order of pins are unchanged.
	for _, e := range entries {
		if !e.task.IsFixed() {
			e.count = enum.CandidateCount(e.task, e.length, empty)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func sortEntries(entries []*entry) {
	slices.SortStableFunc(entries, func(a, b *entry) int {
		if a.task.HasPriority() != b.task.HasPriority() {
			if a.task.HasPriority() {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.task.PriorityValue(), b.task.PriorityValue()); c != 0 {
			return c
		}
		return cmp.Compare(a.count, b.count)
	})
}

// search is the mutable bundle of one Solve call.
type search struct {
	enum    *placement.Enumerator
	entries []*entry
	state   *state

	bestTotal float64
	bestGrid  *grid.Grid
	bestDays  [dateutil.DaysPerWeek]float64

	maxNodes int64
	prune    bool
	ctx      context.Context
	done     <-chan struct{}
	halted   bool
	status   Status
	stats    Stats
}

// stop checks the node budget and the context. It runs only at the top of
// explore, where no apply is half done.
func (s *search) stop() bool {
	if s.halted {
		return true
	}
	if s.maxNodes > 0 && s.stats.Nodes >= s.maxNodes {
		s.halt(StatusTimedOut)
		return true
	}
	if s.done != nil {
		select {
		case <-s.done:
			if errors.Is(s.ctx.Err(), context.DeadlineExceeded) {
				s.halt(StatusTimedOut)
			} else {
				s.halt(StatusCancelled)
			}
			return true
		default:
		}
	}
	return false
}

func (s *search) halt(status Status) {
	s.halted = true
	s.status = status
}

// explore tries every candidate of entries[index]. A task without
// candidates is skipped and the search moves on to the next one.
func (s *search) explore(index int) {
	if s.stop() {
		return
	}
	s.stats.Nodes++

	if index == len(s.entries) {
		s.complete()
		return
	}

	e := s.entries[index]
	candidates := s.enum.Candidates(e.task, e.length, s.state.grid)
	if len(candidates) == 0 {
		s.explore(index + 1)
		return
	}

	for _, r := range candidates {
		if s.halted {
			return
		}
		u, err := s.state.apply(e, r)
		if err != nil {
			continue
		}
		if s.prune && s.state.total >= s.bestTotal {
			s.stats.Pruned++
		} else {
			s.explore(index + 1)
		}
		s.state.revert(u)
	}
}

// complete records the current assignment if it strictly improves.
func (s *search) complete() {
	if s.state.total >= s.bestTotal {
		return
	}
	s.bestTotal = s.state.total
	s.bestGrid = s.state.grid.Clone()
	s.bestDays = s.state.dayFatigue()
	s.stats.Solutions++
}

func (s *search) result(catalog *task.Catalog, order []string) *Result {
	res := &Result{
		Status: s.status,
		Order:  order,
		Stats:  s.stats,
	}
	if s.bestGrid != nil && !s.bestGrid.IsEmpty() {
		res.Grid = s.bestGrid
		res.TotalFatigue = s.bestTotal
		res.DayFatigue = s.bestDays
	}

	placed := make(map[string]bool)
	if res.Grid != nil {
		for _, p := range res.Grid.Placements() {
			placed[p.Task.Name] = true
		}
	}
	for _, name := range catalog.Names() {
		if placed[name] {
			res.Placed = append(res.Placed, name)
		} else {
			res.Unplaced = append(res.Unplaced, name)
		}
	}
	return res
}
