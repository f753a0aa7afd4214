package experiments

import (
	"fmt"
	"path/filepath"
	"time"

	"territory/experiments/metrics"

	"github.com/rs/zerolog/log"
)

// ResultSinks names where results are stored. Empty fields disable a sink.
type ResultSinks struct {
	Dir    string // CSV files go into a timestamped folder below Dir
	SQLite string // database file collecting all runs
}

// StoreResults writes the scores and game records of a run to the configured sinks.
func StoreResults(sinks ResultSinks, roster Roster, scores []int, records []metrics.GameRecord) error {
	if sinks.Dir != "" {
		writer, err := metrics.NewWriter(sinks.Dir)
		if err != nil {
			return fmt.Errorf("failed to create results writer: %w", err)
		}
		if err := writer.WriteScores(roster.Names(), scores); err != nil {
			return err
		}
		log.Info().Str("dir", writer.Dir()).Msg("stored scores")
		if err := writer.WriteGameRecords(records); err != nil {
			return err
		}
		log.Info().Int("games", len(records)).Msg("stored game records")
	}

	if sinks.SQLite != "" {
		run := time.Now().UTC().Format(time.RFC3339)
		store, err := metrics.OpenStore(filepath.Clean(sinks.SQLite), run)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveGameRecords(records); err != nil {
			return err
		}
		log.Info().Str("run", run).Msg("stored game records in database")
	}
	return nil
}
