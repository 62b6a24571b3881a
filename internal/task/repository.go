package task

import "context"

// Repository defines the storage interface for tasks.
type Repository interface {
	// CreateTask adds a new task to the repository.
	// Returns ErrDuplicateName if a task with the same name exists.
	CreateTask(ctx context.Context, task *Task) error

	// CreateTasks adds multiple tasks in a batch.
	CreateTasks(ctx context.Context, tasks []*Task) error

	// GetTask retrieves a task by name. Returns nil if not found.
	GetTask(ctx context.Context, name string) (*Task, error)

	// ListTasks returns all tasks in creation order.
	ListTasks(ctx context.Context) ([]*Task, error)

	// DeleteTask removes a task by name.
	// Returns ErrTaskNotFound if no task has that name.
	DeleteTask(ctx context.Context, name string) error

	// Close releases any resources held by the repository.
	Close() error
}
