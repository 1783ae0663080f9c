// Package filters holds the cascading filter selection driving every query.
// Two ordered hierarchies (geography and organization) enforce the
// invalidation rule: choosing a value at one level clears every deeper level
// of the same hierarchy. Time fields are flat and never cascade.
package filters

import (
	"sync"

	"github.com/scoutlabs/retail-pulse/internal/source"
)

// GeographyHierarchy is the ordered geography drill-down.
var GeographyHierarchy = []string{"region", "city", "municipality", "barangay"}

// OrganizationHierarchy is the ordered organization drill-down.
var OrganizationHierarchy = []string{"holding_company", "client", "category", "brand", "sku"}

// TimeFields are the flat time filters.
var TimeFields = []string{"year", "quarter", "month", "week", "day", "hour"}

// Store holds the current filter selection. Safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	values     map[string]string
	generation uint64
}

// NewStore creates an empty filter selection.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Set assigns a filter value. If key belongs to a hierarchy, every deeper
// slot of that hierarchy is cleared first; the other hierarchy and the time
// fields are untouched. An empty value clears the slot (and, for hierarchy
// keys, everything below it). Unknown keys are ignored.
// Returns the new generation.
func (s *Store) Set(key, value string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case indexOf(GeographyHierarchy, key) >= 0:
		s.cascade(GeographyHierarchy, key, value)
	case indexOf(OrganizationHierarchy, key) >= 0:
		s.cascade(OrganizationHierarchy, key, value)
	case indexOf(TimeFields, key) >= 0:
		if value == "" {
			delete(s.values, key)
		} else {
			s.values[key] = value
		}
	default:
		return s.generation
	}

	s.generation++
	return s.generation
}

// cascade clears every slot deeper than key in its hierarchy, then assigns.
// Must be called with mu held.
func (s *Store) cascade(hierarchy []string, key, value string) {
	idx := indexOf(hierarchy, key)
	for _, deeper := range hierarchy[idx+1:] {
		delete(s.values, deeper)
	}
	if value == "" {
		delete(s.values, key)
	} else {
		s.values[key] = value
	}
}

// Clear resets every field. Returns the new generation.
func (s *Store) Clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	s.generation++
	return s.generation
}

// Get returns the current value of one field, if set.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Active returns the flattened map of all non-empty fields plus the
// generation it was taken at. The map is a copy and is used verbatim as
// query parameters; callers compare generations to discard responses that
// raced with a newer selection.
func (s *Store) Active() (source.Params, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := make(source.Params, len(s.values))
	for k, v := range s.values {
		params[k] = v
	}
	return params, s.generation
}

// Generation returns the current mutation counter.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func indexOf(list []string, key string) int {
	for i, v := range list {
		if v == key {
			return i
		}
	}
	return -1
}
