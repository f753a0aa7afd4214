package metrics

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GameRow is the persisted form of a GameRecord.
type GameRow struct {
	ID             uint   `gorm:"primaryKey"`
	Run            string `gorm:"index"`
	Game           int
	Evaluation     int
	Scenario       string
	Seating        datatypes.JSONSlice[int]
	Survivors      datatypes.JSONSlice[int]
	Turns          int
	Cutoff         bool
	IllegalActions int
	StartTime      time.Time
	EndTime        time.Time
	DurationMs     int64
}

// Store keeps game records of a run in a SQLite database.
type Store struct {
	db  *gorm.DB
	run string
}

// OpenStore opens (or creates) the database at path. An empty path uses an
// in-memory database.
func OpenStore(path string, run string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	if err := db.AutoMigrate(&GameRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate results database: %w", err)
	}
	log.Info().Str("path", path).Str("run", run).Msg("using SQLite results store")
	return &Store{db: db, run: run}, nil
}

func (s *Store) SaveGameRecords(records []GameRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]GameRow, len(records))
	for i, r := range records {
		rows[i] = GameRow{
			Run:            s.run,
			Game:           r.ID,
			Evaluation:     r.Evaluation,
			Scenario:       r.Scenario,
			Seating:        datatypes.NewJSONSlice(r.Seating),
			Survivors:      datatypes.NewJSONSlice(r.Survivors),
			Turns:          r.Turns,
			Cutoff:         r.Cutoff,
			IllegalActions: r.IllegalActions,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			DurationMs:     r.Duration.Milliseconds(),
		}
	}
	if err := s.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save game records: %w", err)
	}
	return nil
}

// GameRecords returns the records of this store's run ordered by game id.
func (s *Store) GameRecords() ([]GameRecord, error) {
	var rows []GameRow
	if err := s.db.Where("run = ?", s.run).Order("evaluation, game").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load game records: %w", err)
	}
	records := make([]GameRecord, len(rows))
	for i, row := range rows {
		records[i] = GameRecord{
			ID:         row.Game,
			Evaluation: row.Evaluation,
			GameMetric: GameMetric{
				Scenario:       row.Scenario,
				Seating:        []int(row.Seating),
				Survivors:      []int(row.Survivors),
				Turns:          row.Turns,
				Cutoff:         row.Cutoff,
				IllegalActions: row.IllegalActions,
				StartTime:      row.StartTime,
				EndTime:        row.EndTime,
				Duration:       time.Duration(row.DurationMs) * time.Millisecond,
			},
		}
	}
	return records, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
