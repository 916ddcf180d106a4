package store

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ugaemi/missionroom-server/internal/leaderboard"
)

// entryRow is the SQLite row for a leaderboard entry. Creation time is stored in
// microseconds so ordering does not depend on the driver's time text format.
type entryRow struct {
	ID             string   `gorm:"primaryKey"`
	TeamName       string   `gorm:"not null"`
	Players        []string `gorm:"serializer:json"`
	ElapsedSeconds int      `gorm:"not null;index:idx_leaderboard_entries_rank,priority:1"`
	CreatedAtMicro int64    `gorm:"column:created_at_us;not null;index:idx_leaderboard_entries_rank,priority:2"`
}

func (entryRow) TableName() string {
	return "leaderboard_entries"
}

func (r entryRow) toEntry() leaderboard.Entry {
	return leaderboard.Entry{
		ID:             r.ID,
		TeamName:       r.TeamName,
		Players:        lo.Ternary(r.Players == nil, []string{}, r.Players),
		ElapsedSeconds: r.ElapsedSeconds,
		CreatedAt:      time.UnixMicro(r.CreatedAtMicro).UTC(),
	}
}

// SQLiteStore implements LeaderboardStore on a SQLite file through GORM.
type SQLiteStore struct {
	db    *gorm.DB
	clock clock
}

// NewSQLiteStore opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entryRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate leaderboard schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// RecordFinishedRun inserts a run and computes its rank.
func (s *SQLiteStore) RecordFinishedRun(ctx context.Context, teamName string, players []string, elapsedSeconds int) (*leaderboard.Entry, error) {
	entry := leaderboard.NewEntry(teamName, players, elapsedSeconds, s.clock.now())
	row := entryRow{
		ID:             entry.ID,
		TeamName:       entry.TeamName,
		Players:        entry.Players,
		ElapsedSeconds: entry.ElapsedSeconds,
		CreatedAtMicro: entry.CreatedAt.UnixMicro(),
	}

	db := s.db.WithContext(ctx)
	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert leaderboard entry: %w", err)
	}

	var better int64
	err := db.Model(&entryRow{}).
		Where("elapsed_seconds < ? OR (elapsed_seconds = ? AND created_at_us < ?)",
			row.ElapsedSeconds, row.ElapsedSeconds, row.CreatedAtMicro).
		Count(&better).Error
	if err != nil {
		return nil, fmt.Errorf("rank leaderboard entry: %w", err)
	}
	entry.Rank = int(better) + 1

	return entry, nil
}

// TopEntries returns the best runs.
func (s *SQLiteStore) TopEntries(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	var rows []entryRow
	err := s.db.WithContext(ctx).
		Order("elapsed_seconds ASC, created_at_us ASC").
		Limit(leaderboard.ClampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}

	return lo.Map(rows, func(r entryRow, i int) leaderboard.Entry {
		e := r.toEntry()
		e.Rank = i + 1
		return e
	}), nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
