package cascade

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/kinematics"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

const (
	maxContinuumSteps = 32
	maxGammaTries     = 64
)

var (
	gd155 = nuclide.New(nuclide.Gadolinium, 155)
	gd157 = nuclide.New(nuclide.Gadolinium, 157)
)

// Generator produces cascades for the two gadolinium compound nuclei. It is
// built from a configuration snapshot and never sees later changes to the
// configuration it came from. A Generator holds no mutable state and may be
// shared, but each caller must supply its own random source.
type Generator struct {
	settings config.ModeConfig
	gd156    *nucdata.CascadeTable
	gd158    *nucdata.CascadeTable
	logger   *slog.Logger
}

// New builds a generator from a snapshot and the two cascade tables.
func New(settings config.ModeConfig, gd156, gd158 *nucdata.CascadeTable, logger *slog.Logger) (*Generator, error) {
	if gd156 == nil || gd158 == nil {
		return nil, fmt.Errorf("cascade: both 156Gd and 158Gd tables are required")
	}
	if gd156.Compound != gd155.Compound() || gd158.Compound != gd157.Compound() {
		return nil, fmt.Errorf("cascade: tables for %s and %s, want 156Gd and 158Gd", gd156.Compound, gd158.Compound)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		settings: settings.Snapshot(),
		gd156:    gd156,
		gd158:    gd158,
		logger:   logger,
	}, nil
}

// Load reads both cascade tables from dir, honouring the data file
// overrides of the snapshot, and builds a generator.
func Load(dir string, settings config.ModeConfig, logger *slog.Logger) (*Generator, error) {
	snap := settings.Snapshot()
	gd156, err := nucdata.LoadCascade(dir, gd155.Compound(), snap.DataFile155)
	if err != nil {
		return nil, err
	}
	gd158, err := nucdata.LoadCascade(dir, gd157.Compound(), snap.DataFile157)
	if err != nil {
		return nil, err
	}
	return New(snap, gd156, gd158, logger)
}

// Settings returns the snapshot the generator was built from.
func (g *Generator) Settings() config.ModeConfig { return g.settings }

// Table returns the cascade table of compound, or nil.
func (g *Generator) Table(compound nuclide.Isotope) *nucdata.CascadeTable {
	switch compound {
	case g.gd156.Compound:
		return g.gd156
	case g.gd158.Compound:
		return g.gd158
	}
	return nil
}

func (g *Generator) Generate156Gd(rng *rand.Rand) []Product { return g.all(g.gd156, rng) }

func (g *Generator) Generate156GdDiscrete(rng *rand.Rand) []Product { return g.discrete(g.gd156, rng) }

func (g *Generator) Generate156GdContinuum(rng *rand.Rand) []Product {
	return g.continuum(g.gd156, rng)
}

func (g *Generator) Generate158Gd(rng *rand.Rand) []Product { return g.all(g.gd158, rng) }

func (g *Generator) Generate158GdDiscrete(rng *rand.Rand) []Product { return g.discrete(g.gd158, rng) }

func (g *Generator) Generate158GdContinuum(rng *rand.Rand) []Product {
	return g.continuum(g.gd158, rng)
}

// GenerateNatGd picks the compound nucleus from the natural capture
// weights of 155Gd and 157Gd, then generates its full cascade.
func (g *Generator) GenerateNatGd(rng *rand.Rand) []Product { return g.all(g.natural(rng), rng) }

func (g *Generator) GenerateNatGdDiscrete(rng *rand.Rand) []Product {
	return g.discrete(g.natural(rng), rng)
}

func (g *Generator) GenerateNatGdContinuum(rng *rand.Rand) []Product {
	return g.continuum(g.natural(rng), rng)
}

// Products routes one request to the matching named routine. An enriched
// mode fixes the compound nucleus. The natural mode uses the isotope when
// it is 155Gd or 157Gd, falls back to the natural mix when the mass number
// is unresolved, and yields no products for any other isotope.
func (g *Generator) Products(capture config.CaptureMode, mode config.CascadeMode, target nuclide.Isotope, rng *rand.Rand) []Product {
	var compound string
	switch capture {
	case config.CaptureEnriched155:
		compound = "156Gd"
	case config.CaptureEnriched157:
		compound = "158Gd"
	case config.CaptureNatural:
		switch {
		case target.A == 0:
			compound = "natGd"
		case target == gd155:
			compound = "156Gd"
		case target == gd157:
			compound = "158Gd"
		default:
			g.logger.Debug("no cascade for isotope", "target", target.String(), "capture_mode", capture.String())
			return nil
		}
	default:
		return nil
	}

	routine := g.routine(compound, mode)
	if routine == nil {
		return nil
	}
	out := routine(rng)
	if g.settings.Verbose >= 3 {
		g.logger.Debug("cascade generated",
			"compound", compound,
			"cascade_mode", mode.String(),
			"products", len(out),
		)
	}
	return out
}

// routine returns the generation routine for a compound ("156Gd", "158Gd"
// or "natGd") and cascade mode. An unset cascade mode runs the full
// cascade.
func (g *Generator) routine(compound string, mode config.CascadeMode) func(*rand.Rand) []Product {
	type key struct {
		compound string
		mode     config.CascadeMode
	}
	if mode == config.CascadeUnset {
		mode = config.CascadeAll
	}
	routines := map[key]func(*rand.Rand) []Product{
		{"156Gd", config.CascadeAll}:       g.Generate156Gd,
		{"156Gd", config.CascadeDiscrete}:  g.Generate156GdDiscrete,
		{"156Gd", config.CascadeContinuum}: g.Generate156GdContinuum,
		{"158Gd", config.CascadeAll}:       g.Generate158Gd,
		{"158Gd", config.CascadeDiscrete}:  g.Generate158GdDiscrete,
		{"158Gd", config.CascadeContinuum}: g.Generate158GdContinuum,
		{"natGd", config.CascadeAll}:       g.GenerateNatGd,
		{"natGd", config.CascadeDiscrete}:  g.GenerateNatGdDiscrete,
		{"natGd", config.CascadeContinuum}: g.GenerateNatGdContinuum,
	}
	return routines[key{compound, mode}]
}

func (g *Generator) natural(rng *rand.Rand) *nucdata.CascadeTable {
	total := g.gd156.NaturalWeight + g.gd158.NaturalWeight
	if total <= 0 || rng.Float64()*total < g.gd156.NaturalWeight {
		return g.gd156
	}
	return g.gd158
}

func (g *Generator) all(t *nucdata.CascadeTable, rng *rand.Rand) []Product {
	if rng.Float64() < t.DiscreteFraction {
		return g.discrete(t, rng)
	}
	return g.continuum(t, rng)
}

// discrete emits one primary line to a tabulated level followed by the
// level scheme down to the ground state.
func (g *Generator) discrete(t *nucdata.CascadeTable, rng *rand.Rand) []Product {
	weights := make([]float64, len(t.Primaries))
	for i, p := range t.Primaries {
		weights[i] = p.Weight
	}
	level := t.Primaries[pick(weights, rng)].To
	out := emit(nil, t, t.SeparationEnergy-t.Levels[level].Energy, 0, rng)
	return decay(out, t, level, rng)
}

// continuum emits statistical gammas with spectrum E^3 exp(-E/T) until the
// excitation falls below the highest tabulated level, then lands on a level
// and follows the level scheme.
func (g *Generator) continuum(t *nucdata.CascadeTable, rng *rand.Rand) []Product {
	var out []Product
	ex := t.SeparationEnergy
	cutoff := t.Cutoff()
	for step := 0; step < maxContinuumSteps; step++ {
		e := sampleStatistical(t.Temperature, ex, rng)
		if ex-e <= cutoff {
			break
		}
		out = emit(out, t, e, 0, rng)
		ex -= e
	}
	level := landing(t, ex, rng)
	out = emit(out, t, ex-t.Levels[level].Energy, 0, rng)
	return decay(out, t, level, rng)
}

// landing picks the level reached from excitation ex, weighting each lower
// level by the cube of the transition energy.
func landing(t *nucdata.CascadeTable, ex float64, rng *rand.Rand) int {
	weights := make([]float64, 0, len(t.Levels))
	for _, lvl := range t.Levels {
		if lvl.Energy >= ex {
			break
		}
		d := ex - lvl.Energy
		weights = append(weights, d*d*d)
	}
	if len(weights) == 0 {
		return 0
	}
	return pick(weights, rng)
}

func decay(out []Product, t *nucdata.CascadeTable, level int, rng *rand.Rand) []Product {
	for level > 0 {
		lvl := t.Levels[level]
		weights := make([]float64, len(lvl.Decays))
		for i, d := range lvl.Decays {
			weights[i] = d.Weight
		}
		d := lvl.Decays[pick(weights, rng)]
		out = emit(out, t, lvl.Energy-t.Levels[d.To].Energy, d.Alpha, rng)
		level = d.To
	}
	return out
}

// emit appends a transition of energy e. With probability alpha/(1+alpha)
// it is converted into a K-shell electron carrying e minus the binding.
func emit(out []Product, t *nucdata.CascadeTable, e, alpha float64, rng *rand.Rand) []Product {
	if e <= 0 {
		return out
	}
	dir := kinematics.IsotropicDirection(rng)
	if alpha > 0 && e > t.KBinding && rng.Float64() < alpha/(1+alpha) {
		return append(out, Product{
			Kind: Electron,
			P4:   kinematics.FromKinetic(units.ElectronMass, e-t.KBinding, dir),
		})
	}
	return append(out, Product{Kind: Gamma, P4: kinematics.Massless(e, dir)})
}

// sampleStatistical draws from E^3 exp(-E/T) truncated to (0, limit].
func sampleStatistical(temp, limit float64, rng *rand.Rand) float64 {
	for try := 0; try < maxGammaTries; try++ {
		u := rng.Float64() * rng.Float64() * rng.Float64() * rng.Float64()
		if u <= 0 {
			continue
		}
		if e := -temp * math.Log(u); e <= limit {
			return e
		}
	}
	return limit * rng.Float64()
}

func pick(weights []float64, rng *rand.Rand) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	draw := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if w > 0 && cum >= draw {
			return i
		}
	}
	return len(weights) - 1
}
