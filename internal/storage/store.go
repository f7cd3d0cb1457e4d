package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/run"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string         `json:"id"`
	Material    string         `json:"material"`
	Timestamp   time.Time      `json:"timestamp"`
	Seed        int64          `json:"seed"`
	Events      int            `json:"events"`
	Workers     int            `json:"workers"`
	Energy      float64        `json:"energy_mev"`
	Temperature float64        `json:"temperature_k"`
	CaptureMode string         `json:"capture_mode"`
	CascadeMode string         `json:"cascade_mode"`
	ScaleGammas bool           `json:"scale_gammas"`
	Elapsed     float64        `json:"elapsed_s"`
	Summary     run.Summary    `json:"summary"`
	Histogram   *run.Histogram `json:"histogram"`
}

var eventHeader = []string{
	"event", "worker", "z", "a", "gammas", "electrons",
	"gamma_mev", "electron_mev", "recoil_mev", "has_recoil", "residual_mev",
}

// Save writes metadata.json and events.csv under a new run directory and
// returns the run ID.
func (s *Store) Save(cfg *config.Config, result *run.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Material, uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	mode := cfg.Mode.Snapshot()
	meta := RunMetadata{
		ID:          runID,
		Material:    cfg.Material,
		Timestamp:   time.Now(),
		Seed:        cfg.Seed,
		Events:      len(result.Events),
		Workers:     cfg.Workers,
		Energy:      cfg.Energy,
		Temperature: cfg.Temperature,
		CaptureMode: mode.CaptureMode.String(),
		CascadeMode: mode.CascadeMode.String(),
		ScaleGammas: cfg.ScaleGammas,
		Elapsed:     result.Elapsed.Seconds(),
		Summary:     result.Summary,
		Histogram:   result.Histogram,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "events.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(eventHeader); err != nil {
		return "", err
	}
	for _, e := range result.Events {
		if err := w.Write(eventRow(e)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func eventRow(e run.EventRecord) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{
		strconv.Itoa(e.Event),
		strconv.Itoa(e.Worker),
		strconv.Itoa(e.Z),
		strconv.Itoa(e.A),
		strconv.Itoa(e.Gammas),
		strconv.Itoa(e.Electrons),
		f(e.GammaEnergy),
		f(e.ElectronEnergy),
		f(e.RecoilEnergy),
		strconv.FormatBool(e.HasRecoil),
		f(e.Residual),
	}
}

// List returns every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEvents reads the event records of a run.
func (s *Store) LoadEvents(runID string) ([]run.EventRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "events.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(eventHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []run.EventRecord{}, nil
	}

	events := make([]run.EventRecord, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := parseEvent(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", runID, i+2, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func parseEvent(rec []string) (run.EventRecord, error) {
	var (
		e    run.EventRecord
		errs []error
	)
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}
	e.Event = atoi(rec[0])
	e.Worker = atoi(rec[1])
	e.Z = atoi(rec[2])
	e.A = atoi(rec[3])
	e.Gammas = atoi(rec[4])
	e.Electrons = atoi(rec[5])
	e.GammaEnergy = atof(rec[6])
	e.ElectronEnergy = atof(rec[7])
	e.RecoilEnergy = atof(rec[8])
	hasRecoil, err := strconv.ParseBool(rec[9])
	errs = append(errs, err)
	e.HasRecoil = hasRecoil
	e.Residual = atof(rec[10])

	for _, err := range errs {
		if err != nil {
			return run.EventRecord{}, err
		}
	}
	return e, nil
}
