package storage

import (
	"errors"

	"github.com/skoeller/rankscrape/internal/types"
)

// Sink is the interface for all export backends. Records arrive one parsed
// page at a time, fully normalized and immutable.
type Sink interface {
	// Write persists a batch of records.
	Write(records []*types.RankingRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the sink identifier.
	Name() string
}

// MultiSink fans records out to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Write(records []*types.RankingRecord) error {
	for _, s := range m.sinks {
		if err := s.Write(records); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: err}
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, &types.StorageError{Backend: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}
