package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no stored run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// Run is a stored solve result.
type Run struct {
	ID           string
	Status       string
	TotalFatigue float64
	TaskCount    int
	Unplaced     int
	Nodes        int64
	Export       []byte // JSON produced by Export.JSON
	CreatedAt    time.Time
}

// NewRun wraps a projection into a Run with a fresh ID.
func NewRun(p *Projection, nodes int64) (*Run, error) {
	data, err := p.Export().JSON()
	if err != nil {
		return nil, err
	}
	return &Run{
		ID:           uuid.NewString(),
		Status:       p.Status.String(),
		TotalFatigue: p.Total,
		TaskCount:    len(p.Placed) + len(p.Unplaced),
		Unplaced:     len(p.Unplaced),
		Nodes:        nodes,
		Export:       data,
	}, nil
}

// Projection decodes the stored export.
func (r *Run) Projection() (*Projection, error) {
	e, err := ParseExport(r.Export)
	if err != nil {
		return nil, err
	}
	return e.Projection()
}

// ShortID returns the first block of the run ID.
func (r *Run) ShortID() string {
	if len(r.ID) < 8 {
		return r.ID
	}
	return r.ID[:8]
}

// RunRepository stores solve runs.
type RunRepository interface {
	// SaveRun stores r and sets its CreatedAt.
	SaveRun(ctx context.Context, r *Run) error

	// GetRun retrieves a run by full ID or unique ID prefix.
	// Returns ErrRunNotFound if nothing matches.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the most recent runs first, at most limit (0 = all).
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}
