package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/skoeller/rankscrape/internal/types"
)

// Schema for the rankings table. One row per athlete per publication week
// per category; re-running a scrape overwrites, never duplicates.
const schema = `
CREATE TABLE IF NOT EXISTS rankings (
  Rank         INTEGER,
  RankChange   INTEGER,
  PreviousRank INTEGER,
  Player       TEXT,
  PlayerId     INTEGER,
  BirthYear    INTEGER,
  Points       INTEGER,
  Region       TEXT,
  Club         TEXT,
  Tournaments  INTEGER,
  RankWeek     TEXT,
  Caption      TEXT,
  PRIMARY KEY (RankWeek, Caption, PlayerId)
);
CREATE INDEX IF NOT EXISTS idx_rankings_week_caption_rank
  ON rankings (RankWeek, Caption, Rank);
`

// Existing rows for the same key are fully overwritten on all non-key
// columns. Raw audit snapshots are never persisted here.
const upsert = `
INSERT INTO rankings
  (Rank, RankChange, PreviousRank, Player, PlayerId, BirthYear, Points, Region, Club, Tournaments, RankWeek, Caption)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(RankWeek, Caption, PlayerId) DO UPDATE SET
  Rank         = excluded.Rank,
  RankChange   = excluded.RankChange,
  PreviousRank = excluded.PreviousRank,
  Player       = excluded.Player,
  BirthYear    = excluded.BirthYear,
  Points       = excluded.Points,
  Region       = excluded.Region,
  Club         = excluded.Club,
  Tournaments  = excluded.Tournaments;
`

// SQLiteSink upserts records into a SQLite database keyed by
// (RankWeek, Caption, PlayerId).
type SQLiteSink struct {
	db       *sql.DB
	caption  string
	rankWeek string
	count    int
	logger   *slog.Logger
}

// NewSQLiteSink opens (creating if needed) the database and ensures the
// schema exists.
func NewSQLiteSink(dbPath, caption, rankWeek string, logger *slog.Logger) (*SQLiteSink, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &SQLiteSink{
		db:       db,
		caption:  caption,
		rankWeek: rankWeek,
		logger:   logger.With("component", "sqlite_sink"),
	}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Write(records []*types.RankingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare(upsert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.Rank.Export(),
			rec.RankChange.Export(),
			rec.PreviousRank.Export(),
			rec.Player,
			rec.PlayerID.Export(),
			rec.BirthYear.Export(),
			rec.Points.Export(),
			rec.Region,
			rec.Club,
			rec.Tournaments.Export(),
			s.rankWeek,
			s.caption,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert record (rank %s): %w", rec.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.count += len(records)
	s.logger.Debug("records upserted", "count", len(records), "total", s.count)
	return nil
}

func (s *SQLiteSink) Close() error {
	s.logger.Info("sqlite sink closing", "total_records", s.count)
	return s.db.Close()
}
