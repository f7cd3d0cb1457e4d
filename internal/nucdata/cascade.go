package nucdata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
)

// Transition is one de-excitation branch between two levels. Alpha is the
// internal conversion coefficient of the transition.
type Transition struct {
	To     int     `yaml:"to"`
	Weight float64 `yaml:"weight"`
	Alpha  float64 `yaml:"alpha,omitempty"`
}

// Level is a bound level of the compound nucleus. Level 0 is the ground
// state.
type Level struct {
	Energy float64      `yaml:"energy_mev"`
	Decays []Transition `yaml:"decays,omitempty,flow"`
}

// Primary is a primary transition from the capture state to a level.
type Primary struct {
	To     int     `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

// CascadeTable describes the de-excitation of one compound nucleus after
// neutron capture.
type CascadeTable struct {
	Compound         nuclide.Isotope `yaml:"compound"`
	SeparationEnergy float64         `yaml:"separation_energy_mev"`
	// NaturalWeight is abundance times thermal cross-section of the target
	// in natural gadolinium. It weights this table in the natural mix.
	NaturalWeight    float64   `yaml:"natural_weight"`
	DiscreteFraction float64   `yaml:"discrete_fraction"`
	Temperature      float64   `yaml:"temperature_mev"`
	KBinding         float64   `yaml:"k_binding_mev"`
	Levels           []Level   `yaml:"levels"`
	Primaries        []Primary `yaml:"primaries,flow"`
}

// Cutoff returns the energy of the highest tabulated level. Statistical
// emission stops below it.
func (t *CascadeTable) Cutoff() float64 {
	if len(t.Levels) == 0 {
		return 0
	}
	return t.Levels[len(t.Levels)-1].Energy
}

// Validate checks the level scheme is consistent: levels ascend from a
// ground state at zero, every decay goes to a lower level and every
// primary to an existing one.
func (t *CascadeTable) Validate() error {
	if t.SeparationEnergy <= 0 {
		return fmt.Errorf("nucdata: %s: separation energy must be positive", t.Compound)
	}
	if t.DiscreteFraction < 0 || t.DiscreteFraction > 1 {
		return fmt.Errorf("nucdata: %s: discrete fraction %g outside [0,1]", t.Compound, t.DiscreteFraction)
	}
	if t.Temperature <= 0 {
		return fmt.Errorf("nucdata: %s: continuum temperature must be positive", t.Compound)
	}
	if len(t.Levels) == 0 || t.Levels[0].Energy != 0 {
		return fmt.Errorf("nucdata: %s: level 0 must be the ground state", t.Compound)
	}
	if len(t.Levels[0].Decays) != 0 {
		return fmt.Errorf("nucdata: %s: ground state cannot decay", t.Compound)
	}
	for i := 1; i < len(t.Levels); i++ {
		lvl := t.Levels[i]
		if lvl.Energy <= t.Levels[i-1].Energy {
			return fmt.Errorf("nucdata: %s: level %d not above level %d", t.Compound, i, i-1)
		}
		if lvl.Energy >= t.SeparationEnergy {
			return fmt.Errorf("nucdata: %s: level %d above separation energy", t.Compound, i)
		}
		if len(lvl.Decays) == 0 {
			return fmt.Errorf("nucdata: %s: level %d has no decays", t.Compound, i)
		}
		for _, d := range lvl.Decays {
			if d.To < 0 || d.To >= i || d.Weight <= 0 || d.Alpha < 0 {
				return fmt.Errorf("nucdata: %s: bad decay %d -> %d", t.Compound, i, d.To)
			}
		}
	}
	if len(t.Primaries) == 0 {
		return fmt.Errorf("nucdata: %s: no primary transitions", t.Compound)
	}
	for _, p := range t.Primaries {
		if p.To < 0 || p.To >= len(t.Levels) || p.Weight <= 0 {
			return fmt.Errorf("nucdata: %s: bad primary to level %d", t.Compound, p.To)
		}
	}
	return nil
}

// LoadCascadeTable reads the cascade table at path. Unlike cross-sections
// the cascade tables are mandatory, so a missing file wraps ErrMissingData.
func LoadCascadeTable(path string) (*CascadeTable, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingData, path)
	}
	if err != nil {
		return nil, err
	}
	t := &CascadeTable{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("nucdata: %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadCascade reads the table of compound from the data directory, or from
// override when it is non-empty. A relative override is resolved against
// dir.
func LoadCascade(dir string, compound nuclide.Isotope, override string) (*CascadeTable, error) {
	path := CascadePath(dir, compound)
	if override != "" {
		path = override
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
	}
	t, err := LoadCascadeTable(path)
	if err != nil {
		return nil, err
	}
	if t.Compound != compound {
		return nil, fmt.Errorf("nucdata: %s describes %s, want %s", path, t.Compound, compound)
	}
	return t, nil
}

// WriteCascadeTable stores t under dir.
func WriteCascadeTable(dir string, t *CascadeTable) error {
	return writeYAML(CascadePath(dir, t.Compound), t)
}

func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
