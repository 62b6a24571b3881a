package fatigue

import (
	"gonum.org/v1/gonum/floats"

	"github.com/javiermolinar/weekfit/internal/dateutil"
	"github.com/javiermolinar/weekfit/internal/grid"
	"github.com/javiermolinar/weekfit/internal/task"
)

// DayFatigue applies the daily compounding rule:
// (sum of distinct task costs) * (1 + sum of distinct task difficulties).
func DayFatigue(costSum, difficultySum float64) float64 {
	return costSum * (1 + difficultySum)
}

// Breakdown is the fatigue of every day and of the whole week.
type Breakdown struct {
	Days  [dateutil.DaysPerWeek]float64
	Total float64
}

// Recompute derives the breakdown from scratch by scanning g. Each task
// counts once per day no matter how many slots it holds. cost returns the
// base cost of a task.
func Recompute(g *grid.Grid, cost func(*task.Task) float64) Breakdown {
	var b Breakdown
	for _, day := range dateutil.Weekdays() {
		seen := make(map[string]bool)
		var costs, difficulties []float64
		for _, t := range g.Day(day) {
			if t == nil || seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			costs = append(costs, cost(t))
			difficulties = append(difficulties, t.Difficulty)
		}
		b.Days[day] = DayFatigue(floats.Sum(costs), floats.Sum(difficulties))
	}
	b.Total = floats.Sum(b.Days[:])
	return b
}
