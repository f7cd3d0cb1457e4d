package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/opercjy/CPNR-modular-sim/internal/run"
)

type ExportData struct {
	Run    RunMetadata       `json:"run"`
	Events []run.EventRecord `json:"events"`
}

// ExportJSON writes a run with its events to path.
func (s *Store) ExportJSON(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.WriteJSON(runID, file)
}

// WriteJSON writes a run with its events to w.
func (s *Store) WriteJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Events: events})
}
