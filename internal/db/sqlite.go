// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/task"
)

// SQLite implements task.Repository and schedule.RunRepository using SQLite.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const insertTaskQuery = `
	INSERT INTO tasks (
		name, difficulty, duration, priority,
		fixed_day, fixed_hour, fixed_minute, dependencies, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectTaskColumns = `
	SELECT id, name, difficulty, duration, priority,
	       fixed_day, fixed_hour, fixed_minute, dependencies, created_at
	FROM tasks
`

// CreateTask adds a new task to the repository.
// Returns task.ErrDuplicateName if a task with the same name exists.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return insertTask(ctx, s.db, t)
}

// CreateTasks adds multiple tasks in a batch using a transaction.
// Either every task is stored or none is.
func (s *SQLite) CreateTasks(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	// First, check the batch itself
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: %q", task.ErrDuplicateName, t.Name)
		}
		seen[t.Name] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tasks {
		if err := insertTask(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertTask(ctx context.Context, q querier, t *task.Task) error {
	exists, err := taskExists(ctx, q, t.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", task.ErrDuplicateName, t.Name)
	}

	deps, err := json.Marshal(nonNil(t.Dependencies))
	if err != nil {
		return fmt.Errorf("encoding dependencies: %w", err)
	}

	var fixedDay, fixedHour, fixedMinute sql.NullInt64
	if t.Fixed != nil {
		fixedDay = sql.NullInt64{Int64: int64(t.Fixed.Day), Valid: true}
		fixedHour = sql.NullInt64{Int64: int64(t.Fixed.Hour), Valid: true}
		fixedMinute = sql.NullInt64{Int64: int64(t.Fixed.Minute), Valid: true}
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	result, err := q.ExecContext(ctx, insertTaskQuery,
		t.Name,
		t.Difficulty,
		t.Duration,
		t.Priority,
		fixedDay,
		fixedHour,
		fixedMinute,
		string(deps),
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task %q: %w", t.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	t.ID = id

	return nil
}

func taskExists(ctx context.Context, q querier, name string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking task name: %w", err)
	}
	return count > 0, nil
}

// GetTask retrieves a task by name. Returns nil if not found.
func (s *SQLite) GetTask(ctx context.Context, name string) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, selectTaskColumns+`WHERE name = ?`, name)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns all tasks in creation order.
func (s *SQLite) ListTasks(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, selectTaskColumns+`ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}

// DeleteTask removes a task by name.
func (s *SQLite) DeleteTask(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %q", task.ErrTaskNotFound, name)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*task.Task, error) {
	var (
		t           task.Task
		priority    sql.NullFloat64
		fixedDay    sql.NullInt64
		fixedHour   sql.NullInt64
		fixedMinute sql.NullInt64
		deps        string
		createdAt   string
	)

	err := sc.Scan(
		&t.ID,
		&t.Name,
		&t.Difficulty,
		&t.Duration,
		&priority,
		&fixedDay,
		&fixedHour,
		&fixedMinute,
		&deps,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	if priority.Valid {
		p := priority.Float64
		t.Priority = &p
	}

	if fixedDay.Valid {
		t.Fixed = &task.FixedPlacement{
			Day:    dateutil.Weekday(fixedDay.Int64),
			Hour:   int(fixedHour.Int64),
			Minute: int(fixedMinute.Int64),
		}
	}

	if err := json.Unmarshal([]byte(deps), &t.Dependencies); err != nil {
		return nil, fmt.Errorf("decoding dependencies of %q: %w", t.Name, err)
	}
	if len(t.Dependencies) == 0 {
		t.Dependencies = nil
	}

	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	return &t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
