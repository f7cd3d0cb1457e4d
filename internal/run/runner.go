// Package run drives batches of captures over worker goroutines, standing
// in for the host kernel's event loop.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/opercjy/CPNR-modular-sim/internal/capture"
	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/finalstate"
	"github.com/opercjy/CPNR-modular-sim/internal/material"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/registry"
)

// EventRecord summarises one capture.
type EventRecord struct {
	Event          int     `json:"event"`
	Worker         int     `json:"worker"`
	Z              int     `json:"z"`
	A              int     `json:"a"`
	Gammas         int     `json:"gammas"`
	Electrons      int     `json:"electrons"`
	GammaEnergy    float64 `json:"gamma_energy_mev"`
	ElectronEnergy float64 `json:"electron_energy_mev"`
	RecoilEnergy   float64 `json:"recoil_energy_mev"`
	HasRecoil      bool    `json:"has_recoil"`
	Residual       float64 `json:"residual_mev"`
}

// Target returns the captured isotope.
func (e EventRecord) Target() nuclide.Isotope { return nuclide.New(e.Z, e.A) }

// Visible returns the energy carried by gammas and electrons.
func (e EventRecord) Visible() float64 { return e.GammaEnergy + e.ElectronEnergy }

// Multiplicity returns the number of emitted gammas and electrons.
func (e EventRecord) Multiplicity() int { return e.Gammas + e.Electrons }

// Record condenses a final state.
func Record(event, worker int, fs *finalstate.FinalState) EventRecord {
	rec := EventRecord{Event: event, Worker: worker, Z: fs.Target.Z, A: fs.Target.A}
	for _, s := range fs.Secondaries {
		switch s.Name {
		case finalstate.GammaDef.Name:
			rec.Gammas++
			rec.GammaEnergy += s.KineticEnergy()
		case finalstate.ElectronDef.Name:
			rec.Electrons++
			rec.ElectronEnergy += s.KineticEnergy()
		}
	}
	if fs.Recoil != nil {
		rec.HasRecoil = true
		rec.RecoilEnergy = fs.Recoil.KineticEnergy()
	}
	res := fs.Residual()
	rec.Residual = res.E()
	return rec
}

// Summary holds aggregate statistics of a run.
type Summary struct {
	Events           int            `json:"events"`
	Captures         map[string]int `json:"captures"`
	MeanVisible      float64        `json:"mean_visible_mev"`
	StdVisible       float64        `json:"std_visible_mev"`
	MeanMultiplicity float64        `json:"mean_multiplicity"`
	MeanRecoil       float64        `json:"mean_recoil_kev"`
	RecoilsOmitted   int            `json:"recoils_omitted"`
	MaxResidual      float64        `json:"max_residual_mev"`
}

// Summarize computes the run statistics of events.
func Summarize(events []EventRecord) Summary {
	s := Summary{Events: len(events), Captures: make(map[string]int)}
	if len(events) == 0 {
		return s
	}
	visible := make([]float64, len(events))
	mult := make([]float64, len(events))
	recoil := make([]float64, 0, len(events))
	for i, e := range events {
		visible[i] = e.Visible()
		mult[i] = float64(e.Multiplicity())
		s.Captures[e.Target().String()]++
		if e.HasRecoil {
			recoil = append(recoil, e.RecoilEnergy*1e3)
		} else {
			s.RecoilsOmitted++
		}
		s.MaxResidual = math.Max(s.MaxResidual, math.Abs(e.Residual))
	}
	if len(visible) < 2 {
		s.MeanVisible = visible[0]
	} else {
		s.MeanVisible, s.StdVisible = stat.MeanStdDev(visible, nil)
	}
	s.MeanMultiplicity = stat.Mean(mult, nil)
	if len(recoil) > 0 {
		s.MeanRecoil = stat.Mean(recoil, nil)
	}
	return s
}

// Result is the outcome of a run.
type Result struct {
	Events    []EventRecord
	Histogram *Histogram
	Summary   Summary
	Elapsed   time.Duration
}

// ProgressFunc is told how many events are done. Calls are serialised.
type ProgressFunc func(done, total int)

type Option func(*Runner)

func WithDataDir(dir string) Option {
	return func(r *Runner) { r.dataDir = dir }
}

func WithLookup(lookup nucdata.LookupFunc) Option {
	return func(r *Runner) { r.lookup = lookup }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) { r.progress = fn }
}

// Runner executes cfg.Events captures in mat over cfg.Workers workers.
// Each worker owns a registry.Context seeded with cfg.Seed plus its
// index, so a run is reproducible for a fixed worker count.
type Runner struct {
	model    *capture.Model
	material *material.Material
	cfg      *config.Config
	dataDir  string
	lookup   nucdata.LookupFunc
	logger   *slog.Logger
	progress ProgressFunc
}

func NewRunner(model *capture.Model, mat *material.Material, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{model: model, material: mat, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run builds the physics table and processes every event. A fatal
// configuration error stops all workers.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := r.model.BuildPhysicsTable(); err != nil {
		return nil, err
	}

	start := time.Now()
	total := r.cfg.Events
	workers := r.cfg.Workers
	if workers > total {
		workers = total
	}
	events := make([]EventRecord, total)
	proj := finalstate.Projectile{
		KineticEnergy: r.cfg.Energy,
		Direction:     r3.Vec{X: r.cfg.Direction[0], Y: r.cfg.Direction[1], Z: r.cfg.Direction[2]},
	}

	var (
		done int
		mu   sync.Mutex
	)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			rc := r.context(w)
			for i := w; i < total; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				fs, err := r.model.ApplyYourself(rc, proj, r.material)
				if err != nil {
					return fmt.Errorf("run: event %d: %w", i, err)
				}
				events[i] = Record(i, w, fs)

				mu.Lock()
				done++
				if r.progress != nil {
					r.progress(done, total)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	visible := make([]float64, len(events))
	for i, e := range events {
		visible[i] = e.Visible()
	}
	hist := NewHistogram(DefaultBins, DefaultMin, DefaultMax)
	hist.Fill(visible)

	res := &Result{
		Events:    events,
		Histogram: hist,
		Summary:   Summarize(events),
		Elapsed:   time.Since(start),
	}
	r.logger.Info("run complete",
		"material", r.material.Name,
		"events", total,
		"workers", workers,
		"mean_visible_mev", res.Summary.MeanVisible,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (r *Runner) context(worker int) *registry.Context {
	opts := []registry.Option{
		registry.WithSeed(r.cfg.Seed + int64(worker)),
		registry.WithLogger(r.logger.With("worker", worker)),
	}
	if r.dataDir != "" {
		opts = append(opts, registry.WithDataDir(r.dataDir))
	}
	if r.lookup != nil {
		opts = append(opts, registry.WithLookup(r.lookup))
	}
	return registry.New(r.cfg.Mode, opts...)
}
