package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/skoeller/rankscrape/internal/types"
)

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteSinkWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "rankings.sqlite")

	sink, err := NewSQLiteSink(path, "U19 Jungen Einzel", "2026-07", testLogger)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.Write(sampleRecords()); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	db := openTestDB(t, path)

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM rankings`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}

	var player string
	var points int
	err = db.QueryRow(
		`SELECT Player, Points FROM rankings WHERE RankWeek = ? AND Caption = ? AND PlayerId = ?`,
		"2026-07", "U19 Jungen Einzel", 42,
	).Scan(&player, &points)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if player != "Jane Doe" || points != 500 {
		t.Errorf("unexpected row: %s / %d", player, points)
	}
}

func TestSQLiteSinkUpsertOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankings.sqlite")

	first, err := NewSQLiteSink(path, "U19 Jungen Einzel", "2026-07", testLogger)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := first.Write(sampleRecords()); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	// Re-run of the same week and category with updated values.
	updated := sampleRecords()
	updated[0].Rank = types.IntOf(4)
	updated[0].Points = types.IntOf(480)

	second, err := NewSQLiteSink(path, "U19 Jungen Einzel", "2026-07", testLogger)
	if err != nil {
		t.Fatalf("reopen sink: %v", err)
	}
	if err := second.Write(updated); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	db := openTestDB(t, path)

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM rankings`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows after re-run, got %d", count)
	}

	var rank, points int
	err = db.QueryRow(`SELECT Rank, Points FROM rankings WHERE PlayerId = ?`, 42).Scan(&rank, &points)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if rank != 4 || points != 480 {
		t.Errorf("expected overwritten row (4, 480), got (%d, %d)", rank, points)
	}
}

func TestSQLiteSinkSeparateWeeksCoexist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankings.sqlite")

	for _, week := range []string{"2026-06", "2026-07"} {
		sink, err := NewSQLiteSink(path, "U19 Jungen Einzel", week, testLogger)
		if err != nil {
			t.Fatalf("create sink: %v", err)
		}
		if err := sink.Write(sampleRecords()); err != nil {
			t.Fatalf("write error: %v", err)
		}
		if err := sink.Close(); err != nil {
			t.Fatalf("close error: %v", err)
		}
	}

	db := openTestDB(t, path)
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM rankings`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 rows across two weeks, got %d", count)
	}
}

func TestSQLiteSinkTextFallbackPreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankings.sqlite")

	sink, err := NewSQLiteSink(path, "Test", "2026-07", testLogger)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	rec := &types.RankingRecord{
		Rank:      types.IntOf(9),
		Player:    "No Year",
		PlayerID:  types.IntOf(7),
		BirthYear: types.TextCell("-"),
		RankWeek:  "2026-07",
	}
	if err := sink.Write([]*types.RankingRecord{rec}); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	db := openTestDB(t, path)
	var birthYear string
	if err := db.QueryRow(`SELECT BirthYear FROM rankings WHERE PlayerId = ?`, 7).Scan(&birthYear); err != nil {
		t.Fatalf("select: %v", err)
	}
	if birthYear != "-" {
		t.Errorf("expected '-' preserved, got %q", birthYear)
	}
}
