// Package task defines the core domain types for weekfit.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/weekfit/internal/dateutil"
)

// Validation errors.
var (
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrNegativeDifficulty = errors.New("difficulty cannot be negative")
	ErrInvalidDuration    = errors.New("duration must be positive")
	ErrInvalidFixedTime   = errors.New("fixed time must be a valid hour and minute")
)

// Domain errors.
var (
	ErrDuplicateName = errors.New("task name already exists")
	ErrTaskNotFound  = errors.New("task not found")
)

// FixedPlacement pins a task to an exact start within the week.
type FixedPlacement struct {
	Day    dateutil.Weekday
	Hour   int
	Minute int
}

// String returns the placement as "Friday 09:00".
func (p FixedPlacement) String() string {
	return fmt.Sprintf("%s %s", p.Day, dateutil.MinutesToClock(p.Hour*60+p.Minute))
}

// Task is a duration-bounded unit of work to be placed on the week grid.
// Name is the identity key; the solver never mutates a Task.
type Task struct {
	ID           int64
	Name         string
	Difficulty   float64
	Duration     float64         // hours
	Priority     *float64        // optional, lower is scheduled earlier
	Fixed        *FixedPlacement // optional, nil means place anywhere
	Dependencies []string        // carried for callers, not enforced
	CreatedAt    time.Time
}

// Option configures optional Task fields.
type Option func(*Task)

// WithPriority sets the task priority.
func WithPriority(p float64) Option {
	return func(t *Task) {
		t.Priority = &p
	}
}

// WithFixedPlacement pins the task to day at hour:minute.
func WithFixedPlacement(day dateutil.Weekday, hour, minute int) Option {
	return func(t *Task) {
		t.Fixed = &FixedPlacement{Day: day, Hour: hour, Minute: minute}
	}
}

// WithDependencies records the names of tasks this one depends on.
func WithDependencies(names ...string) Option {
	return func(t *Task) {
		t.Dependencies = append([]string(nil), names...)
	}
}

// New creates a new Task with validation.
// difficulty must be non-negative and duration (hours) positive.
func New(name string, difficulty, duration float64, opts ...Option) (*Task, error) {
	t := &Task{
		Name:       strings.TrimSpace(name),
		Difficulty: difficulty,
		Duration:   duration,
		CreatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the task fields.
func (t *Task) Validate() error {
	if t.Name == "" {
		return ErrEmptyName
	}
	if t.Difficulty < 0 {
		return fmt.Errorf("task %q: %w", t.Name, ErrNegativeDifficulty)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("task %q: %w", t.Name, ErrInvalidDuration)
	}
	if t.Fixed != nil {
		f := t.Fixed
		if !f.Day.Valid() || f.Hour < 0 || f.Hour > 24 || f.Minute < 0 || f.Minute > 59 {
			return fmt.Errorf("task %q: %w", t.Name, ErrInvalidFixedTime)
		}
	}
	return nil
}

// HasPriority returns true if the task carries a priority.
func (t *Task) HasPriority() bool {
	return t.Priority != nil
}

// PriorityValue returns the priority, or 0 when none is set.
func (t *Task) PriorityValue() float64 {
	if t.Priority == nil {
		return 0
	}
	return *t.Priority
}

// IsFixed returns true if the task is pinned to a specific start.
func (t *Task) IsFixed() bool {
	return t.Fixed != nil
}
