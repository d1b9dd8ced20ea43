package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Manifest records the provenance of one generation run alongside the data.
type Manifest struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Seed        int64          `json:"seed"`
	Messiness   string         `json:"messiness"`
	WindowStart string         `json:"window_start"`
	WindowEnd   string         `json:"window_end"`
	RowCounts   map[string]int `json:"row_counts"`
	Version     string         `json:"version,omitempty"`
}

// WriteManifest assigns the run its ID and writes manifest.json into dir.
func WriteManifest(dir string, m Manifest) (string, error) {
	m.RunID = uuid.NewString()
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	log.Info().Str("run_id", m.RunID).Str("path", path).Msg("Wrote run manifest")
	return m.RunID, nil
}
