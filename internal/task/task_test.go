package task

import (
	"errors"
	"testing"

	"github.com/javiermolinar/weekfit/internal/dateutil"
)

func TestNew(t *testing.T) {
	tsk, err := New("  Write report ", 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tsk.Name != "Write report" {
		t.Errorf("expected trimmed name, got %q", tsk.Name)
	}
	if tsk.HasPriority() {
		t.Error("expected no priority")
	}
	if tsk.PriorityValue() != 0 {
		t.Errorf("expected priority value 0, got %v", tsk.PriorityValue())
	}
	if tsk.IsFixed() {
		t.Error("expected task to be free")
	}
	if tsk.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestNew_WithOptions(t *testing.T) {
	tsk, err := New("Standup", 1, 0.5,
		WithPriority(2),
		WithFixedPlacement(dateutil.Monday, 9, 30),
		WithDependencies("Plan", "Review"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tsk.HasPriority() || tsk.PriorityValue() != 2 {
		t.Errorf("expected priority 2, got %v", tsk.Priority)
	}
	if !tsk.IsFixed() {
		t.Fatal("expected fixed placement")
	}
	if got := tsk.Fixed.String(); got != "Monday 09:30" {
		t.Errorf("expected Monday 09:30, got %q", got)
	}
	if len(tsk.Dependencies) != 2 || tsk.Dependencies[0] != "Plan" {
		t.Errorf("unexpected dependencies: %v", tsk.Dependencies)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name       string
		taskName   string
		difficulty float64
		duration   float64
		opts       []Option
		wantErr    error
	}{
		{"empty name", "  ", 1, 1, nil, ErrEmptyName},
		{"negative difficulty", "a", -1, 1, nil, ErrNegativeDifficulty},
		{"zero duration", "a", 1, 0, nil, ErrInvalidDuration},
		{"negative duration", "a", 1, -2, nil, ErrInvalidDuration},
		{"bad hour", "a", 1, 1, []Option{WithFixedPlacement(dateutil.Friday, 25, 0)}, ErrInvalidFixedTime},
		{"bad minute", "a", 1, 1, []Option{WithFixedPlacement(dateutil.Friday, 9, 60)}, ErrInvalidFixedTime},
		{"bad day", "a", 1, 1, []Option{WithFixedPlacement(dateutil.Weekday(8), 9, 0)}, ErrInvalidFixedTime},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.taskName, tc.difficulty, tc.duration, tc.opts...)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewCatalog(t *testing.T) {
	a, _ := New("A", 1, 1)
	b, _ := New("B", 2, 2)

	c, err := NewCatalog([]*Task{a, nil, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", c.Len())
	}
	if c.Get("B") != b {
		t.Error("expected lookup by name to return B")
	}
	if c.Get("missing") != nil {
		t.Error("expected nil for unknown name")
	}
	names := c.Names()
	if names[0] != "A" || names[1] != "B" {
		t.Errorf("expected insertion order, got %v", names)
	}

	tasks := c.Tasks()
	tasks[0] = nil
	if c.Tasks()[0] != a {
		t.Error("Tasks should return a copy")
	}
}

func TestNewCatalog_DuplicateName(t *testing.T) {
	a1, _ := New("A", 1, 1)
	a2, _ := New("A", 3, 2)

	_, err := NewCatalog([]*Task{a1, a2})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("got error %v, want %v", err, ErrDuplicateName)
	}
}

func TestNewCatalog_InvalidTask(t *testing.T) {
	bad := &Task{Name: "bad", Difficulty: 1, Duration: 0}

	_, err := NewCatalog([]*Task{bad})
	if !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("got error %v, want %v", err, ErrInvalidDuration)
	}
}
