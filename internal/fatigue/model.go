// Package fatigue computes task costs and the daily fatigue objective.
//
// A Model turns a task into a base cost. The built-in Default model is
// difficulty * duration; a user formula can be compiled with Compile into
// an Expression that only evaluates arithmetic over a closed set of
// variables.
package fatigue

import (
	"github.com/javiermolinar/weekfit/internal/task"
)

// Variable names available to fatigue expressions.
const (
	VarDifficulty = "difficulty"
	VarDuration   = "duration"
	VarTime       = "time" // alias of duration
	VarPriority   = "priority"
	VarTaskCount  = "task_count"
	VarTaskNum    = "task_num" // alias of task_count
	VarSlots      = "slots"
)

// variableOrder fixes the evaluation slot of each variable.
var variableOrder = []string{
	VarDifficulty,
	VarDuration,
	VarTime,
	VarPriority,
	VarTaskCount,
	VarTaskNum,
	VarSlots,
}

// Defaults are substituted when a variable has no value for a task:
// a task without priority evaluates priority as 0, and a missing
// task count or slot count evaluates as 1.
var Defaults = map[string]float64{
	VarDifficulty: 1,
	VarDuration:   1,
	VarTime:       1,
	VarPriority:   0,
	VarTaskCount:  1,
	VarTaskNum:    1,
	VarSlots:      1,
}

// Variables returns every variable name a fatigue expression may use.
func Variables() []string {
	return append([]string(nil), variableOrder...)
}

// Env carries run-level values that are not stored on the task.
// Zero values mean "unknown" and fall back to Defaults.
type Env struct {
	TaskCount int // number of tasks in the run
	Slots     int // slots the task occupies
}

// Model produces the base cost of a task.
type Model interface {
	Cost(t *task.Task, env Env) float64
}

// DefaultModel costs a task as difficulty * duration in hours.
type DefaultModel struct{}

// Cost implements Model.
func (DefaultModel) Cost(t *task.Task, _ Env) float64 {
	return t.Difficulty * t.Duration
}

// Default is the built-in fatigue model.
var Default Model = DefaultModel{}

// bind resolves every variable for t into a value vector indexed like
// variableOrder.
func bind(t *task.Task, env Env) [7]float64 {
	var v [7]float64
	v[0] = t.Difficulty
	v[1] = t.Duration
	v[2] = t.Duration
	if t.HasPriority() {
		v[3] = t.PriorityValue()
	} else {
		v[3] = Defaults[VarPriority]
	}
	if env.TaskCount > 0 {
		v[4] = float64(env.TaskCount)
	} else {
		v[4] = Defaults[VarTaskCount]
	}
	v[5] = v[4]
	if env.Slots > 0 {
		v[6] = float64(env.Slots)
	} else {
		v[6] = Defaults[VarSlots]
	}
	return v
}
