package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordRunningMean(t *testing.T) {
	s := NewStore()
	scores := []float64{0.9, 0.7, 0.8, 0.6}
	for _, v := range scores {
		s.Record("AI/Technology", "GPT2", v)
	}

	e, ok := s.Lookup("AI/Technology", "GPT2")
	require.True(t, ok)
	assert.Equal(t, 4, e.SampleCount)
	assert.InDelta(t, 0.75, e.MeanScore, 1e-9)
}

func TestStore_RecordIsNotIdempotent(t *testing.T) {
	s := NewStore()
	s.Record("General", "GPT2", 0.5)
	before, _ := s.Lookup("General", "GPT2")

	s.Record("General", "GPT2", 0.8)
	s.Record("General", "GPT2", 0.8)

	after, _ := s.Lookup("General", "GPT2")
	assert.Equal(t, before.SampleCount+2, after.SampleCount)
	assert.InDelta(t, 0.7, after.MeanScore, 1e-9)
}

func TestStore_RecordClampsScore(t *testing.T) {
	s := NewStore()
	s.Record("General", "m", 1.7)
	s.Record("General", "m", -3)

	e, _ := s.Lookup("General", "m")
	assert.InDelta(t, 0.5, e.MeanScore, 1e-9)
}

func TestStore_LookupMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Lookup("General", "nobody")
	assert.False(t, ok)
}

func TestStore_RecordWinCreatesEntry(t *testing.T) {
	s := NewStore()
	s.RecordWin("General", "T5-Small")
	s.RecordWin("General", "T5-Small")

	e, ok := s.Lookup("General", "T5-Small")
	require.True(t, ok)
	assert.Equal(t, 2, e.WinCount)
	assert.Zero(t, e.SampleCount)
}

func TestStore_BestFor(t *testing.T) {
	s := NewStore()
	_, ok := s.BestFor("General")
	assert.False(t, ok, "empty store has no best model")

	s.RecordWin("General", "Zeta") // no samples, ignored
	s.Record("General", "GPT2", 0.6)
	s.Record("General", "DistilGPT2", 0.8)
	s.Record("General", "BERT-Base", 0.8)
	s.Record("Business/Economics", "GPT2", 0.99)

	best, ok := s.BestFor("General")
	require.True(t, ok)
	assert.Equal(t, "BERT-Base", best, "ties go to the smallest name")
}

func TestStore_ClearAndLen(t *testing.T) {
	s := NewStore()
	s.Record("General", "a", 0.1)
	s.Record("General", "b", 0.1)
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	_, ok := s.Lookup("General", "a")
	assert.False(t, ok)
}

func TestStore_ConcurrentRecords(t *testing.T) {
	s := NewStore()
	const workers, perWorker = 8, 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Record("General", "GPT2", 0.4)
				s.RecordWin("General", "GPT2")
			}
		}()
	}
	wg.Wait()

	e, ok := s.Lookup("General", "GPT2")
	require.True(t, ok)
	assert.Equal(t, workers*perWorker, e.SampleCount)
	assert.Equal(t, workers*perWorker, e.WinCount)
	assert.InDelta(t, 0.4, e.MeanScore, 1e-9)
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	s.Record("Electric Vehicles", "GPT2", 0.7)
	s.RecordWin("Electric Vehicles", "GPT2")
	s.Record("General", "DistilGPT2", 0.4)

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Contains(t, snap, "Electric Vehicles::GPT2")

	// mutating the snapshot does not touch the store
	delete(snap, "General::DistilGPT2")
	assert.Equal(t, 2, s.Len())

	other := NewStore()
	other.Restore(s.Snapshot())
	assert.Equal(t, s.Entries(), other.Entries())
}

func TestStore_Entries_Sorted(t *testing.T) {
	s := NewStore()
	for _, m := range []string{"c", "a", "b"} {
		s.Record("Z", m, 0.5)
		s.Record("A", m, 0.5)
	}

	var got []string
	for _, e := range s.Entries() {
		got = append(got, fmt.Sprintf("%s/%s", e.Category, e.Model))
	}
	assert.Equal(t, []string{"A/a", "A/b", "A/c", "Z/a", "Z/b", "Z/c"}, got)
}

func TestParseKey(t *testing.T) {
	k, ok := ParseKey("AI/Technology::GPT2")
	require.True(t, ok)
	assert.Equal(t, Key{Category: "AI/Technology", Model: "GPT2"}, k)

	for _, bad := range []string{"", "GPT2", "::GPT2", "General::"} {
		_, ok := ParseKey(bad)
		assert.False(t, ok, bad)
	}
}
