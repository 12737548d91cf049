package syncstate

import (
	"time"

	"github.com/standardhub/stdsync/internal/compare"
	"github.com/standardhub/stdsync/internal/corpus"
)

// StateComparison classifies current files against the persisted manifest
// and carries the base record's provenance.
type StateComparison struct {
	*compare.Result
	BaseTimestamp  time.Time
	BaseVersion    string
	BaseCategories []string
}

// CompareWithCurrentFiles partitions the current manifest against the last
// recorded one. Returns nil when no valid state exists.
func (s *Store) CompareWithCurrentFiles(current corpus.Manifest) *StateComparison {
	record := s.Load()
	if record == nil {
		return nil
	}

	return &StateComparison{
		Result:         compare.Partition(record.Manifest, current),
		BaseTimestamp:  record.Timestamp,
		BaseVersion:    record.SourceVersion,
		BaseCategories: record.Categories,
	}
}
