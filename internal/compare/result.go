package compare

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/standardhub/stdsync/internal/corpus"
)

// Result classifies every path of two manifests into exactly one of four
// buckets. Added/Modified/Removed/Unchanged partition the union of both
// path sets.
type Result struct {
	Added     []string `json:"added"`
	Modified  []string `json:"modified"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`
}

// Total returns the number of classified paths.
func (r *Result) Total() int {
	return len(r.Added) + len(r.Modified) + len(r.Removed) + len(r.Unchanged)
}

// HasChanges reports whether anything differs between base and current.
func (r *Result) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Modified) > 0 || len(r.Removed) > 0
}

// Partition classifies current against base: current-only paths are added,
// base-only paths are removed, shared paths split into modified and
// unchanged by hash equality. Output slices are sorted.
func Partition(base, current corpus.Manifest) *Result {
	baseSet := mapset.NewThreadUnsafeSet[string]()
	for p := range base {
		baseSet.Add(p)
	}
	currentSet := mapset.NewThreadUnsafeSet[string]()
	for p := range current {
		currentSet.Add(p)
	}

	result := &Result{
		Added:     currentSet.Difference(baseSet).ToSlice(),
		Removed:   baseSet.Difference(currentSet).ToSlice(),
		Modified:  []string{},
		Unchanged: []string{},
	}

	for p := range baseSet.Intersect(currentSet).Iter() {
		if base[p] == current[p] {
			result.Unchanged = append(result.Unchanged, p)
		} else {
			result.Modified = append(result.Modified, p)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Modified)
	sort.Strings(result.Removed)
	sort.Strings(result.Unchanged)
	return result
}
