package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/run"
)

func sampleResult() *run.Result {
	events := []run.EventRecord{
		{Event: 0, Worker: 0, Z: 64, A: 157, Gammas: 4, GammaEnergy: 7.9368, HasRecoil: true, RecoilEnergy: 2.1e-4},
		{Event: 1, Worker: 1, Z: 64, A: 155, Gammas: 3, Electrons: 1, GammaEnergy: 8.4, ElectronEnergy: 0.1, HasRecoil: true, RecoilEnergy: 1e-4, Residual: 1.5e-11},
		{Event: 2, Worker: 0, Z: 1, A: 1, Gammas: 1, GammaEnergy: 2.2233},
	}
	h := run.NewHistogram(run.DefaultBins, run.DefaultMin, run.DefaultMax)
	vis := make([]float64, len(events))
	for i, e := range events {
		vis[i] = e.Visible()
	}
	h.Fill(vis)
	return &run.Result{Events: events, Histogram: h, Summary: run.Summarize(events), Elapsed: 1500 * time.Millisecond}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	result := sampleResult()

	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Material != "gdls" {
		t.Errorf("expected material 'gdls', got '%s'", meta.Material)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.CaptureMode != "natural" || meta.CascadeMode != "all" {
		t.Errorf("expected natural/all, got %s/%s", meta.CaptureMode, meta.CascadeMode)
	}
	if meta.Summary.Captures["157Gd"] != 1 {
		t.Errorf("expected one 157Gd capture, got %d", meta.Summary.Captures["157Gd"])
	}
	if meta.Histogram == nil || meta.Histogram.Entries() != 3 {
		t.Errorf("expected histogram with 3 entries, got %+v", meta.Histogram)
	}
	if meta.Elapsed != 1.5 {
		t.Errorf("expected elapsed 1.5, got %f", meta.Elapsed)
	}

	events, err := st.LoadEvents(runID)
	if err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if len(events) != len(result.Events) {
		t.Fatalf("expected %d events, got %d", len(result.Events), len(events))
	}
	for i := range events {
		if events[i] != result.Events[i] {
			t.Errorf("event %d: expected %+v, got %+v", i, result.Events[i], events[i])
		}
	}
}

func TestStoreSave_SingleEvent(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	events := []run.EventRecord{{Event: 0, Z: 64, A: 157, Gammas: 4, GammaEnergy: 7.9368, HasRecoil: true, RecoilEnergy: 2.1e-4}}
	h := run.NewHistogram(run.DefaultBins, run.DefaultMin, run.DefaultMax)
	h.Fill([]float64{events[0].Visible()})
	result := &run.Result{Events: events, Histogram: h, Summary: run.Summarize(events)}

	cfg := config.DefaultConfig()
	cfg.Events = 1
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Summary.Events != 1 || meta.Summary.StdVisible != 0 {
		t.Errorf("unexpected summary %+v", meta.Summary)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	cfg := config.DefaultConfig()
	for i := 0; i < 2; i++ {
		if _, err := st.Save(cfg, sampleResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if len(runs) == 2 && runs[0].ID == runs[1].ID {
		t.Error("expected distinct run ids")
	}
}

func TestLoadEvents_Corrupt(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(st.baseDir, runID, "events.csv")
	data, _ := os.ReadFile(path)
	data = append(data, []byte("3,0,x,1,1,0,1,0,0,false,0\n")...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadEvents(runID); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.WriteJSON(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Run.ID != runID || len(out.Events) != 3 {
		t.Errorf("expected run %s with 3 events, got %s with %d", runID, out.Run.ID, len(out.Events))
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := st.ExportJSON(runID, path); err != nil {
		t.Fatalf("export to file failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected export file: %v", err)
	}
}
