package experiments

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"territory/engine"
	"territory/experiments/metrics"
	"territory/game"
	"territory/replay"

	"github.com/rs/zerolog/log"
)

type Option func(e *Evaluation)

// WithAllCombinations plays every seating of every subset of the roster
// instead of a single game.
func WithAllCombinations() Option {
	return func(e *Evaluation) {
		e.all = true
	}
}

// WithSeats sets the number of players per game.
func WithSeats(n int) Option {
	return func(e *Evaluation) {
		e.seats = n
	}
}

func WithMaxTurns(n int) Option {
	return func(e *Evaluation) {
		e.maxTurns = n
	}
}

// WithReplayDir writes a replay of every game into dir.
func WithReplayDir(dir string) Option {
	return func(e *Evaluation) {
		e.replayDir = dir
	}
}

func WithAgentFactory(f func(Entry) engine.Agent) Option {
	return func(e *Evaluation) {
		e.newAgent = f
	}
}

func WithCounters(c *metrics.Counters) Option {
	return func(e *Evaluation) {
		e.counters = c
	}
}

// Evaluation plays one scenario with a roster and scores every roster entry
// by the number of games it survived.
type Evaluation struct {
	catalog   *game.Catalog
	scenario  *game.Scenario
	roster    Roster
	seats     int
	all       bool
	maxTurns  int
	replayDir string
	newAgent  func(Entry) engine.Agent
	counters  *metrics.Counters
	played    bool
	records   []metrics.GameRecord
}

func NewEvaluation(catalog *game.Catalog, scenario *game.Scenario, roster Roster, options ...Option) *Evaluation {
	e := &Evaluation{
		catalog:  catalog,
		scenario: scenario,
		roster:   roster,
		seats:    min(scenario.MaxPlayers, len(roster)),
		maxTurns: engine.DefaultMaxTurns,
		newAgent: NewAgentFactory().New,
	}
	for _, option := range options {
		option(e)
	}
	if e.counters == nil {
		e.counters = metrics.Default()
	}
	return e
}

// Records returns the per-game results of the last Play.
func (e *Evaluation) Records() []metrics.GameRecord {
	return e.records
}

// Play runs all games and returns the points per roster index. An
// Evaluation can only be played once.
func (e *Evaluation) Play(ctx context.Context) ([]int, error) {
	if e.played {
		panic("evaluation has already been played")
	}
	e.played = true

	if e.seats <= 0 || e.seats > len(e.roster) {
		return nil, fmt.Errorf("cannot seat %d of %d roster entries", e.seats, len(e.roster))
	}
	if e.seats > e.scenario.MaxPlayers {
		return nil, fmt.Errorf("scenario %s allows %d players, got %d", e.scenario.ID, e.scenario.MaxPlayers, e.seats)
	}

	seatings := Seatings(len(e.roster), e.seats, e.all)
	scores := make([]int, len(e.roster))
	log.Info().Msgf("starting evaluation of scenario %s with %d games...", e.scenario.ID, len(seatings))

	for i, seating := range seatings {
		log.Info().Msgf("starting game %d of %d with seating %v...", i+1, len(seatings), seating)

		record, err := e.runGame(ctx, i, seating)
		if err != nil {
			return scores, err
		}
		for _, idx := range record.Survivors {
			scores[idx]++
		}
		e.records = append(e.records, record)

		log.Info().Msgf("completed game %d of %d after %d turns with survivors %v", i+1, len(seatings), record.Turns, record.Survivors)
	}

	log.Info().Msgf("completed evaluation of scenario %s", e.scenario.ID)
	return scores, nil
}

// runGame plays a single game and reports survivors by roster index.
func (e *Evaluation) runGame(ctx context.Context, id int, seating []int) (metrics.GameRecord, error) {
	names := make([]string, len(seating))
	agents := make([]engine.Agent, len(seating))
	for seat, idx := range seating {
		names[seat] = e.roster[idx].Name
		agents[seat] = e.newAgent(e.roster[idx])
	}
	defer closeAgents(agents)

	world, err := game.NewGame(e.catalog, e.scenario, game.NewPlayers(names))
	if err != nil {
		return metrics.GameRecord{}, fmt.Errorf("failed to set up game %d: %w", id, err)
	}
	c := engine.NewController(world, agents, engine.WithMaxTurns(e.maxTurns))

	logger := replay.Nop()
	if e.replayDir != "" {
		logger = replay.Create(filepath.Join(e.replayDir, fmt.Sprintf("%s-%03d.replay", e.scenario.ID, id)))
	}
	defer func() {
		if err := logger.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close replay")
		}
	}()
	logger.Attach(c)

	collector := metrics.NewCollector()
	collector.Start(e.scenario.ID, seating)
	result, err := c.Run(ctx)
	if err != nil {
		return metrics.GameRecord{}, err
	}

	survivors := make([]int, len(result.Survivors))
	for i, seat := range result.Survivors {
		survivors[i] = seating[seat]
	}
	e.counters.GamePlayed(ctx, e.scenario.ID, world.Rejected())
	return metrics.GameRecord{
		ID:         id,
		GameMetric: collector.Complete(survivors, result.Turns, result.Cutoff, world.Rejected()),
	}, nil
}

func closeAgents(agents []engine.Agent) {
	for _, a := range agents {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close agent")
			}
		}
	}
}
