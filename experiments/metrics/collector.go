package metrics

import (
	"time"
)

type GameMetric struct {
	Scenario       string
	Seating        []int // roster index per seat
	Survivors      []int // roster indexes
	Turns          int
	Cutoff         bool
	IllegalActions int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// Collector measures a single game.
type Collector interface {
	Start(scenario string, seating []int)
	Complete(survivors []int, turns int, cutoff bool, illegalActions int) GameMetric
}

type collector struct {
	scenario  string
	seating   []int
	startTime time.Time
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(scenario string, seating []int) {
	m.startTime = time.Now()
	m.scenario = scenario
	m.seating = append([]int(nil), seating...)
}

func (m *collector) Complete(survivors []int, turns int, cutoff bool, illegalActions int) GameMetric {
	end := time.Now()
	return GameMetric{
		Scenario:       m.scenario,
		Seating:        m.seating,
		Survivors:      append([]int(nil), survivors...),
		Turns:          turns,
		Cutoff:         cutoff,
		IllegalActions: illegalActions,
		StartTime:      m.startTime,
		EndTime:        end,
		Duration:       end.Sub(m.startTime),
	}
}
