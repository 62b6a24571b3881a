package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/weekfit/internal/schedule"
)

const selectRunColumns = `
	SELECT id, status, total_fatigue, task_count, unplaced, nodes, export, created_at
	FROM runs
`

// SaveRun stores a solve run and sets its CreatedAt.
func (s *SQLite) SaveRun(ctx context.Context, r *schedule.Run) error {
	if r.ID == "" {
		return errors.New("run id cannot be empty")
	}
	r.CreatedAt = time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO runs (
			id, status, total_fatigue, task_count, unplaced, nodes, export, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Status,
		r.TotalFatigue,
		r.TaskCount,
		r.Unplaced,
		r.Nodes,
		string(r.Export),
		r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by full ID or unique ID prefix.
func (s *SQLite) GetRun(ctx context.Context, id string) (*schedule.Run, error) {
	id = strings.TrimSpace(id)
	prefix := stripWildcards(id)
	if prefix == "" {
		return nil, fmt.Errorf("%w: %q", schedule.ErrRunNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx, selectRunColumns+`WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`,
		id, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*schedule.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if r.ID == id {
			return r, nil
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", schedule.ErrRunNotFound, id)
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// ListRuns returns the most recent runs first, at most limit (0 = all).
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]*schedule.Run, error) {
	query := selectRunColumns + `ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*schedule.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

func scanRun(sc scanner) (*schedule.Run, error) {
	var (
		r         schedule.Run
		export    string
		createdAt string
	)

	err := sc.Scan(
		&r.ID,
		&r.Status,
		&r.TotalFatigue,
		&r.TaskCount,
		&r.Unplaced,
		&r.Nodes,
		&export,
		&createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	r.Export = []byte(export)

	r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &r, nil
}

// stripWildcards removes LIKE wildcards from a user supplied prefix.
func stripWildcards(s string) string {
	r := strings.NewReplacer(`%`, ``, `_`, ``)
	return r.Replace(s)
}
