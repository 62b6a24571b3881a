package task

import "fmt"

// Catalog holds the tasks of one solve run, indexed by name.
type Catalog struct {
	tasks  []*Task
	byName map[string]*Task
}

// NewCatalog builds a catalog, validating every task and rejecting
// duplicate names.
func NewCatalog(tasks []*Task) (*Catalog, error) {
	c := &Catalog{
		tasks:  make([]*Task, 0, len(tasks)),
		byName: make(map[string]*Task, len(tasks)),
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.byName[t.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, t.Name)
		}
		c.tasks = append(c.tasks, t)
		c.byName[t.Name] = t
	}
	return c, nil
}

// Get returns the task with the given name, or nil.
func (c *Catalog) Get(name string) *Task {
	return c.byName[name]
}

// Tasks returns a copy of the task slice in insertion order.
func (c *Catalog) Tasks() []*Task {
	result := make([]*Task, len(c.tasks))
	copy(result, c.tasks)
	return result
}

// Names returns task names in insertion order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.tasks))
	for i, t := range c.tasks {
		names[i] = t.Name
	}
	return names
}

// Len returns the number of tasks.
func (c *Catalog) Len() int {
	return len(c.tasks)
}
