package stems

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MetadataFile is the analyzer output stored beside the stems.
const MetadataFile = "metadata.json"

// Metadata carries the externally estimated tempo and beat positions
// (seconds, non-decreasing) for one song.
type Metadata struct {
	BPM   float64   `json:"bpm"`
	Beats []float64 `json:"beats"`
}

// ReadMetadata loads metadata.json from a stems directory.
func ReadMetadata(dir string) (*Metadata, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// Write stores the metadata beside the stems.
func (m *Metadata) Write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	path := filepath.Join(dir, MetadataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
