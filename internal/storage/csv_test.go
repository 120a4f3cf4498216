package storage

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/skoeller/rankscrape/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func sampleRecords() []*types.RankingRecord {
	return []*types.RankingRecord{
		{
			Rank:         types.IntOf(1),
			RankChange:   types.IntOf(2),
			PreviousRank: types.IntOf(3),
			Player:       "Jane Doe",
			PlayerID:     types.IntOf(42),
			BirthYear:    types.IntOf(1990),
			Points:       types.IntOf(500),
			Tournaments:  types.IntOf(12),
			Club:         "BC Phoenix",
			RankWeek:     "2026-07",
			Raw: map[string]string{
				"Rank_raw":        "1.",
				"RankChange_raw":  "3",
				"BirthYear_raw":   "1990",
				"Points_raw":      "500",
				"Tournaments_raw": "12",
			},
		},
		{
			Rank:       types.IntOf(2),
			RankChange: types.IntOf(0),
			Player:     "Max Muster",
			BirthYear:  types.TextCell("-"),
			Points:     types.IntOf(450),
			Club:       "SV Adler",
			RankWeek:   "2026-07",
		},
	}
}

var sampleSchema = []string{"Rank", "RankChange", "PreviousRank", "Player", "PlayerId", "BirthYear", "Club", "Points", "Tournaments", "RankWeek"}

func TestFieldnamesOrder(t *testing.T) {
	t.Run("rank week last", func(t *testing.T) {
		got := Fieldnames(sampleSchema, false)
		if got[len(got)-1] != "RankWeek" {
			t.Errorf("expected RankWeek last, got %v", got)
		}
		if len(got) != len(sampleSchema) {
			t.Errorf("expected %d fields, got %d", len(sampleSchema), len(got))
		}
	})
	t.Run("raw columns before rank week", func(t *testing.T) {
		got := Fieldnames(sampleSchema, true)
		if got[len(got)-1] != "RankWeek" {
			t.Fatalf("expected RankWeek last, got %v", got)
		}
		want := []string{"RankChange_raw", "Rank_raw", "BirthYear_raw", "Points_raw", "Tournaments_raw"}
		offset := len(got) - 1 - len(want)
		for i, name := range want {
			if got[offset+i] != name {
				t.Errorf("raw field %d: expected %q, got %q (%v)", i, name, got[offset+i], got)
			}
		}
	})
}

func TestCSVSinkWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week", "out.csv")

	sink, err := NewCSVSink(path, sampleSchema, false, testLogger)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.Write(sampleRecords()); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][len(rows[0])-1] != "RankWeek" {
		t.Errorf("unexpected header %v", rows[0])
	}

	first := rows[1]
	if first[0] != "1" || first[3] != "Jane Doe" || first[4] != "42" {
		t.Errorf("unexpected first row %v", first)
	}
	if first[len(first)-1] != "2026-07" {
		t.Errorf("expected RankWeek in last cell, got %v", first)
	}

	second := rows[2]
	// Uncoerced text and absent values survive as-is.
	if second[5] != "-" {
		t.Errorf("expected '-' BirthYear, got %q", second[5])
	}
	if second[4] != "" {
		t.Errorf("expected empty PlayerId, got %q", second[4])
	}
}

func TestCSVSinkRawColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	sink, err := NewCSVSink(path, sampleSchema, true, testLogger)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.Write(sampleRecords()[:1]); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	header, row := rows[0], rows[1]
	byName := make(map[string]string, len(header))
	for i, name := range header {
		byName[name] = row[i]
	}
	if byName["Rank_raw"] != "1." {
		t.Errorf("expected Rank_raw '1.', got %q", byName["Rank_raw"])
	}
	if byName["RankChange_raw"] != "3" {
		t.Errorf("expected RankChange_raw '3', got %q", byName["RankChange_raw"])
	}
	if byName["Rank"] != "1" {
		t.Errorf("expected coerced Rank '1', got %q", byName["Rank"])
	}
}

func TestMultiSinkFanOut(t *testing.T) {
	dir := t.TempDir()
	a, err := NewCSVSink(filepath.Join(dir, "a.csv"), sampleSchema, false, testLogger)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	b, err := NewCSVSink(filepath.Join(dir, "b.csv"), sampleSchema, false, testLogger)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	multi := NewMultiSink(a, b)
	if err := multi.Write(sampleRecords()); err != nil {
		t.Fatalf("write error: %v", err)
	}
	if err := multi.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	for _, name := range []string{"a.csv", "b.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
