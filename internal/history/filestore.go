package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"

	"github.com/spboyer/modeleval/internal/models"
)

// fileVersion is written into every history file.
const fileVersion = 1

type fileDoc struct {
	Version int                                `json:"version"`
	Entries map[string]models.PerformanceEntry `json:"entries"`
}

// FileStore persists snapshots as a JSON document.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

// Load reads the file. A missing file yields an empty snapshot. Both the
// versioned layout and the legacy per-model layout are accepted.
func (f *FileStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, &models.StorageError{Op: "load", Path: f.path, Err: err}
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return nil, &models.StorageError{Op: "load", Path: f.path, Err: err}
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, &models.StorageError{Op: "load", Path: f.path, Err: err}
	}
	return snap, nil
}

// Save writes snap atomically: a temp file in the same directory is renamed
// over the target.
func (f *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return &models.StorageError{Op: "save", Path: f.path, Err: err}
	}
	doc := fileDoc{Version: fileVersion, Entries: snap}
	if doc.Entries == nil {
		doc.Entries = Snapshot{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "save", Path: f.path, Err: err}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &models.StorageError{Op: "save", Path: f.path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return &models.StorageError{Op: "save", Path: f.path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.StorageError{Op: "save", Path: f.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "save", Path: f.path, Err: err}
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return &models.StorageError{Op: "save", Path: f.path, Err: err}
	}
	return nil
}

// legacyStats is one category cell of the legacy per-model layout.
type legacyStats struct {
	AvgScore   float64 `mapstructure:"avg_score"`
	SampleSize int     `mapstructure:"sample_size"`
	Wins       int     `mapstructure:"wins"`
}

// DecodeSnapshot parses a history document. Documents carrying an "entries"
// object use the current layout; anything else is treated as the legacy
// layout {model: {category: {avg_score, sample_size}}}.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	if entries, ok := raw["entries"]; ok {
		return decodeEntries(entries)
	}
	return decodeLegacy(raw)
}

func decodeEntries(in any) (Snapshot, error) {
	var snap Snapshot
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &snap,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(in); err != nil {
		return nil, fmt.Errorf("decoding entries: %w", err)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

func decodeLegacy(raw map[string]any) (Snapshot, error) {
	var legacy map[string]map[string]legacyStats
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &legacy,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding legacy history: %w", err)
	}

	snap := make(Snapshot)
	for model, byCategory := range legacy {
		for cat, st := range byCategory {
			if st.SampleSize <= 0 {
				continue
			}
			k := Key{Category: cat, Model: model}
			snap[k.String()] = models.PerformanceEntry{
				Category:    cat,
				Model:       model,
				SampleCount: st.SampleSize,
				MeanScore:   models.Clamp01(st.AvgScore),
				WinCount:    st.Wins,
			}
		}
	}
	return snap, nil
}
