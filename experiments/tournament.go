package experiments

import (
	"context"
	"errors"
	"fmt"

	"territory/experiments/metrics"
	"territory/game"

	"github.com/rs/zerolog/log"
)

var ErrUnknownScenario = errors.New("unknown scenario")

// Tournament plays one Evaluation per scenario against the same roster and
// sums their points.
type Tournament struct {
	catalog   *game.Catalog
	roster    Roster
	scenarios []string
	options   []Option
	played    bool
	records   []metrics.GameRecord
}

// NewTournament creates a tournament over scenario ids. The options apply to every evaluation.
func NewTournament(catalog *game.Catalog, roster Roster, scenarios []string, options ...Option) *Tournament {
	return &Tournament{
		catalog:   catalog,
		roster:    roster,
		scenarios: scenarios,
		options:   options,
	}
}

// LoadScenarioIDs reads a tournament file with one scenario id per line.
func LoadScenarioIDs(path string) ([]string, error) {
	return ReadLines(path)
}

// Records returns the games of all evaluations, tagged with the evaluation index.
func (t *Tournament) Records() []metrics.GameRecord {
	return t.records
}

// Play runs every evaluation in order and returns the total points per
// roster index. Unknown scenarios are logged and skipped. A Tournament can
// only be played once.
func (t *Tournament) Play(ctx context.Context) ([]int, error) {
	if t.played {
		panic("tournament has already been played")
	}
	t.played = true

	totals := make([]int, len(t.roster))
	for i, id := range t.scenarios {
		scenario, ok := t.catalog.Scenario(id)
		if !ok {
			log.Error().Err(fmt.Errorf("%w: %s", ErrUnknownScenario, id)).Msg("skipping scenario")
			continue
		}
		log.Info().Msgf("starting tournament round %d of %d with scenario %s...", i+1, len(t.scenarios), id)

		eval := NewEvaluation(t.catalog, scenario, t.roster, t.options...)
		scores, err := eval.Play(ctx)
		for _, r := range eval.Records() {
			r.Evaluation = i
			t.records = append(t.records, r)
		}
		if err != nil {
			return totals, fmt.Errorf("failed to play scenario %s: %w", id, err)
		}
		for idx, s := range scores {
			totals[idx] += s
		}
	}
	return totals, nil
}
