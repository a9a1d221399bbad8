// Package history keeps running performance statistics per (category, model)
// pair and moves them to and from a persistence backend.
package history

import (
	"sort"
	"strings"
	"sync"

	"github.com/spboyer/modeleval/internal/models"
)

// keySep joins category and model in snapshot keys. Category names contain
// '/' so a two-character separator is used.
const keySep = "::"

// Key identifies one history entry.
type Key struct {
	Category string
	Model    string
}

// String renders the key in snapshot form, "category::model".
func (k Key) String() string {
	return k.Category + keySep + k.Model
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, bool) {
	cat, model, ok := strings.Cut(s, keySep)
	if !ok || cat == "" || model == "" {
		return Key{}, false
	}
	return Key{Category: cat, Model: model}, true
}

// Snapshot is the flat, persistable form of the store.
type Snapshot map[string]models.PerformanceEntry

// Store owns every PerformanceEntry. Each mutating call is a single atomic
// read-modify-write, so results from concurrent prompts never lose updates.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]*models.PerformanceEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Key]*models.PerformanceEntry)}
}

// Record folds score into the running mean for (category, model). It is not
// idempotent: every call is a new observation.
func (s *Store) Record(category, model string, score float64) {
	score = models.Clamp01(score)

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(category, model)
	e.MeanScore += (score - e.MeanScore) / float64(e.SampleCount+1)
	e.SampleCount++
}

// RecordWin increments the win count for (category, model).
func (s *Store) RecordWin(category, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entryLocked(category, model).WinCount++
}

// Lookup returns the entry for (category, model). The boolean is false when
// nothing has been observed yet, which means "no prior evidence".
func (s *Store) Lookup(category, model string) (models.PerformanceEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[Key{Category: category, Model: model}]
	if !ok {
		return models.PerformanceEntry{}, false
	}
	return *e, true
}

// BestFor returns the model with the highest mean score in category among
// entries with at least one sample. Ties go to the lexicographically
// smallest model name.
func (s *Store) BestFor(category string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best, bestScore, found := "", 0.0, false
	for k, e := range s.entries {
		if k.Category != category || e.SampleCount < 1 {
			continue
		}
		if !found || e.MeanScore > bestScore || (e.MeanScore == bestScore && k.Model < best) {
			best, bestScore, found = k.Model, e.MeanScore, true
		}
	}
	return best, found
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[Key]*models.PerformanceEntry)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Entries returns copies of all entries sorted by category, then model.
func (s *Store) Entries() []models.PerformanceEntry {
	s.mu.RLock()
	out := make([]models.PerformanceEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// Snapshot returns a deep copy of the store in persistable form.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Snapshot, len(s.entries))
	for k, e := range s.entries {
		snap[k.String()] = *e
	}
	return snap
}

// Restore replaces the store contents with snap. Entries whose key cannot be
// parsed fall back to the Category and Model fields of the entry itself.
func (s *Store) Restore(snap Snapshot) {
	entries := make(map[Key]*models.PerformanceEntry, len(snap))
	for raw, e := range snap {
		k, ok := ParseKey(raw)
		if !ok {
			k = Key{Category: e.Category, Model: e.Model}
		}
		if k.Category == "" || k.Model == "" {
			continue
		}
		e.Category, e.Model = k.Category, k.Model
		e.MeanScore = models.Clamp01(e.MeanScore)
		if e.SampleCount < 0 {
			e.SampleCount = 0
		}
		if e.WinCount < 0 {
			e.WinCount = 0
		}
		entry := e
		entries[k] = &entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

func (s *Store) entryLocked(category, model string) *models.PerformanceEntry {
	k := Key{Category: category, Model: model}
	e, ok := s.entries[k]
	if !ok {
		e = &models.PerformanceEntry{Category: category, Model: model}
		s.entries[k] = e
	}
	return e
}
