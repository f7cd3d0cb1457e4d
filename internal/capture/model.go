// Package capture is the neutron capture model: it owns the element table
// and the dispatch table, and turns (projectile, material) into a final
// state on a worker context.
package capture

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opercjy/CPNR-modular-sim/internal/dispatch"
	"github.com/opercjy/CPNR-modular-sim/internal/finalstate"
	"github.com/opercjy/CPNR-modular-sim/internal/material"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/registry"
	"github.com/opercjy/CPNR-modular-sim/internal/selector"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

const (
	fatalRelativeLevel = 10 * units.Percent
	fatalAbsoluteLevel = 10 * units.GeV
)

type Options struct {
	Assembler  finalstate.Options
	DataDir    string
	Lookup     nucdata.LookupFunc
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

func DefaultOptions() Options {
	return Options{Assembler: finalstate.DefaultOptions()}
}

type Model struct {
	elements *material.ElementTable
	builder  *dispatch.Builder
	metrics  *Metrics
	logger   *slog.Logger
}

func New(elements *material.ElementTable, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := finalstate.New(opts.Assembler)
	bopts := []dispatch.Option{dispatch.WithLogger(logger)}
	if opts.DataDir != "" {
		bopts = append(bopts, dispatch.WithDataDir(opts.DataDir))
	}
	if opts.Lookup != nil {
		bopts = append(bopts, dispatch.WithLookup(opts.Lookup))
	}
	return &Model{
		elements: elements,
		builder:  dispatch.NewBuilder(elements, dispatch.NewCustomHandler(a), dispatch.NewGenericHandler(a), bopts...),
		metrics:  NewMetrics(opts.Registerer),
		logger:   logger,
	}
}

func (m *Model) Elements() *material.ElementTable { return m.elements }

func (m *Model) Metrics() *Metrics { return m.metrics }

// Table returns the published dispatch table.
func (m *Model) Table() *dispatch.Table { return m.builder.Table() }

// BuildPhysicsTable extends the dispatch table to every registered element.
// It is called from the setup phase before any reaction, and again whenever
// materials add elements. Errors satisfying IsFatal must stop the process.
func (m *Model) BuildPhysicsTable() error {
	t, err := m.builder.Build()
	if err != nil {
		return err
	}
	m.logger.Info("physics table built", "elements", t.Len())
	return nil
}

// FatalEnergyCheckLevels returns the relative and absolute tolerances the
// host uses to sanity-check energy conservation.
func (m *Model) FatalEnergyCheckLevels() (relative, absolute float64) {
	return fatalRelativeLevel, fatalAbsoluteLevel
}

// ApplyYourself selects the absorbing element and isotope of mat and runs
// the element's handler on rc.
func (m *Model) ApplyYourself(rc *registry.Context, proj finalstate.Projectile, mat *material.Material) (*finalstate.FinalState, error) {
	if len(mat.Components) == 0 {
		return nil, &Error{Material: mat.Name, Energy: proj.KineticEnergy, Wrapped: ErrEmptyMaterial}
	}
	table := m.builder.Table()
	for _, c := range mat.Components {
		if c.Element >= table.Len() {
			return nil, &Error{Material: mat.Name, Target: nuclide.Isotope{Z: c.Z}, Energy: proj.KineticEnergy, Wrapped: ErrNoTable}
		}
	}

	rng := rc.Rand()
	sel := selector.New(table)
	comp := mat.Components[sel.SelectElement(mat, proj.KineticEnergy, rng)]
	entry, _ := table.Entry(comp.Element)

	target := sel.SelectIsotope(entry.XS, proj.KineticEnergy, mat.Temperature, rng)
	if target.Z == 0 {
		target = nuclide.Isotope{Z: comp.Z}
	}

	fs, err := entry.Handler.Apply(rc, finalstate.Request{
		Projectile:  proj,
		Target:      target,
		Temperature: mat.Temperature,
	})
	if err != nil {
		return nil, &Error{Material: mat.Name, Target: target, Energy: proj.KineticEnergy, Wrapped: err}
	}

	m.metrics.Captures.WithLabelValues(entry.Handler.Name(), entry.Element.Symbol).Inc()
	for _, s := range fs.Secondaries {
		m.metrics.Products.WithLabelValues(s.Name).Inc()
	}
	if fs.Recoil == nil {
		m.metrics.RecoilsOmitted.Inc()
		rc.Logger().Debug("recoil omitted", "target", target.String())
	}
	return fs, nil
}

// CheckConservation compares fs against its initial four-momentum. It
// fails only when the energy residual exceeds both the relative and the
// absolute level.
func (m *Model) CheckConservation(fs *finalstate.FinalState, relative, absolute float64) error {
	res := fs.Residual()
	de := math.Abs(res.E())
	initial := fs.Initial
	if de > relative*initial.E() && de > absolute {
		m.metrics.Violations.Inc()
		return &Error{Target: fs.Target, Wrapped: fmt.Errorf("%w: residual %.4g MeV", ErrNonConservation, res.E())}
	}
	return nil
}
