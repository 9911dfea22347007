// Package batch accumulates eligible cache objects until a flush threshold.
package batch

import "github.com/edgecache/cachereport/internal/domain"

// Accumulator holds descriptors for the in-flight batch. Re-adding a logical
// name overwrites the existing entry in place, so a batch never carries
// duplicates. The accumulator is owned and mutated by the pipeline driver
// only.
type Accumulator struct {
	threshold int
	order     []string
	entries   map[string]*domain.CacheObject
}

// New creates an accumulator that signals a flush at the given threshold
func New(threshold int) *Accumulator {
	return &Accumulator{
		threshold: threshold,
		entries:   make(map[string]*domain.CacheObject),
	}
}

// Add inserts or overwrites a descriptor and reports whether the batch has
// reached the flush threshold
func (a *Accumulator) Add(obj *domain.CacheObject) bool {
	if _, seen := a.entries[obj.LogicalName]; !seen {
		a.order = append(a.order, obj.LogicalName)
	}
	a.entries[obj.LogicalName] = obj
	return len(a.order) >= a.threshold
}

// Len returns the number of descriptors currently held
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Drain returns the held descriptors in discovery order and resets the
// accumulator for the next batch
func (a *Accumulator) Drain() []*domain.CacheObject {
	objs := make([]*domain.CacheObject, 0, len(a.order))
	for _, name := range a.order {
		objs = append(objs, a.entries[name])
	}
	a.order = a.order[:0]
	a.entries = make(map[string]*domain.CacheObject)
	return objs
}
