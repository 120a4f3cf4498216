package storage

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/skoeller/rankscrape/internal/parser"
	"github.com/skoeller/rankscrape/internal/types"
)

// CSVSink streams records to a CSV file, one row per record, with the run's
// header schema written up front.
type CSVSink struct {
	path       string
	file       *os.File
	writer     *csv.Writer
	fieldnames []string
	count      int
	logger     *slog.Logger
}

// Fieldnames orders the CSV columns: the header schema with RankWeek forced
// last and, when raw retention is on, the fixed _raw columns just before it.
func Fieldnames(headerSchema []string, keepRaw bool) []string {
	out := make([]string, 0, len(headerSchema)+len(parser.RawFields))
	hasRankWeek := false
	seen := make(map[string]bool, len(headerSchema))
	for _, k := range headerSchema {
		if k == types.ColRankWeek {
			hasRankWeek = true
			continue
		}
		out = append(out, k)
		seen[k] = true
	}
	if keepRaw {
		for _, k := range parser.RawFields {
			if !seen[k] {
				out = append(out, k)
				seen[k] = true
			}
		}
	}
	if hasRankWeek {
		out = append(out, types.ColRankWeek)
	}
	return out
}

// NewCSVSink creates the output file (and its directory) and writes the
// header row.
func NewCSVSink(path string, headerSchema []string, keepRaw bool, logger *slog.Logger) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	s := &CSVSink{
		path:       path,
		file:       f,
		writer:     csv.NewWriter(f),
		fieldnames: Fieldnames(headerSchema, keepRaw),
		logger:     logger.With("component", "csv_sink"),
	}
	if err := s.writer.Write(s.fieldnames); err != nil {
		f.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	return s, nil
}

func (s *CSVSink) Name() string { return "csv" }

// Path returns the output file location.
func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Write(records []*types.RankingRecord) error {
	for _, rec := range records {
		row := make([]string, len(s.fieldnames))
		for i, name := range s.fieldnames {
			row[i] = rec.Field(name)
		}
		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVSink) Close() error {
	s.logger.Info("CSV written", "path", s.path, "records", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
