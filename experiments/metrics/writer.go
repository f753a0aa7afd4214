package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type GameRecord struct {
	ID         int
	Evaluation int // index of the evaluation within a tournament
	GameMetric
}

// Writer stores results as CSV files in a timestamped folder.
type Writer struct {
	baseDir string
}

func NewWriter(root string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "game_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "evaluation", "scenario", "seating", "survivors", "turns", "cutoff", "illegal_actions", "start_time", "end_time", "duration"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write game records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Evaluation),
			record.Scenario,
			joinInts(record.Seating),
			joinInts(record.Survivors),
			strconv.Itoa(record.Turns),
			strconv.FormatBool(record.Cutoff),
			strconv.Itoa(record.IllegalActions),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write game record row: %w", err)
		}
	}

	return nil
}

// WriteScores writes one row per roster entry with its accumulated points.
func (w *Writer) WriteScores(names []string, scores []int) error {
	path := filepath.Join(w.baseDir, "scores.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scores file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	err = writer.Write([]string{"index", "name", "score"})
	if err != nil {
		return fmt.Errorf("failed to write scores header: %w", err)
	}
	for i, name := range names {
		score := 0
		if i < len(scores) {
			score = scores[i]
		}
		err = writer.Write([]string{strconv.Itoa(i), name, strconv.Itoa(score)})
		if err != nil {
			return fmt.Errorf("failed to write score row: %w", err)
		}
	}

	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
