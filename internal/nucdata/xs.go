package nucdata

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// Point is one tabulated (energy, cross-section) pair. Energy in MeV,
// cross-section in barn.
type Point struct {
	E     float64 `yaml:"e"`
	Sigma float64 `yaml:"sigma"`
}

// IsotopeXS is the capture cross-section of one isotope.
type IsotopeXS struct {
	A         int     `yaml:"a"`
	Abundance float64 `yaml:"abundance"`
	Points    []Point `yaml:"points,flow"`
}

// At returns the cross-section at energy e by log-log interpolation.
// Below the table it follows 1/v from the first point; above it the last
// value is held.
func (x *IsotopeXS) At(e float64) float64 {
	n := len(x.Points)
	if n == 0 {
		return 0
	}
	if e <= 0 {
		e = x.Points[0].E
	}
	first, last := x.Points[0], x.Points[n-1]
	if e <= first.E {
		return first.Sigma * math.Sqrt(first.E/e)
	}
	if e >= last.E {
		return last.Sigma
	}
	i := sort.Search(n, func(i int) bool { return x.Points[i].E >= e })
	lo, hi := x.Points[i-1], x.Points[i]
	if lo.Sigma <= 0 || hi.Sigma <= 0 {
		t := (e - lo.E) / (hi.E - lo.E)
		return lo.Sigma + t*(hi.Sigma-lo.Sigma)
	}
	t := math.Log(e/lo.E) / math.Log(hi.E/lo.E)
	return math.Exp(math.Log(lo.Sigma) + t*math.Log(hi.Sigma/lo.Sigma))
}

// ElementXS is the channel record of one element.
type ElementXS struct {
	Z            int         `yaml:"z"`
	Symbol       string      `yaml:"symbol"`
	TemperatureK float64     `yaml:"temperature_k"`
	Isotopes     []IsotopeXS `yaml:"isotopes"`
}

// HasData reports whether any cross-section was tabulated for the element.
func (x *ElementXS) HasData() bool {
	if x == nil {
		return false
	}
	for _, iso := range x.Isotopes {
		if len(iso.Points) > 0 {
			return true
		}
	}
	return false
}

// Isotope returns the record for mass number a, or nil.
func (x *ElementXS) Isotope(a int) *IsotopeXS {
	for i := range x.Isotopes {
		if x.Isotopes[i].A == a {
			return &x.Isotopes[i]
		}
	}
	return nil
}

// At returns the abundance-weighted element cross-section at energy e.
func (x *ElementXS) At(e float64) float64 {
	if x == nil {
		return 0
	}
	var sum float64
	for i := range x.Isotopes {
		sum += x.Isotopes[i].Abundance * x.Isotopes[i].At(e)
	}
	return sum
}

// LoadElementXS reads the channel record of element z. A missing file is
// not an error: the element is returned without data and contributes no
// cross-section.
func LoadElementXS(dir string, z int) (*ElementXS, error) {
	path := XSPath(dir, z)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		sym, _ := nuclide.Symbol(z)
		return &ElementXS{Z: z, Symbol: sym, TemperatureK: units.RoomTemperature}, nil
	}
	if err != nil {
		return nil, err
	}

	x := &ElementXS{TemperatureK: units.RoomTemperature}
	if err := yaml.Unmarshal(data, x); err != nil {
		return nil, fmt.Errorf("nucdata: %s: %w", path, err)
	}
	if x.Z != z {
		return nil, fmt.Errorf("nucdata: %s describes Z=%d, want Z=%d", path, x.Z, z)
	}
	for _, iso := range x.Isotopes {
		if !sort.SliceIsSorted(iso.Points, func(i, j int) bool { return iso.Points[i].E < iso.Points[j].E }) {
			return nil, fmt.Errorf("nucdata: %s: A=%d points not sorted by energy", path, iso.A)
		}
		for _, pt := range iso.Points {
			if !(pt.E > 0) || !(pt.Sigma >= 0) || math.IsInf(pt.E, 0) || math.IsInf(pt.Sigma, 0) {
				return nil, fmt.Errorf("nucdata: %s: A=%d invalid point E=%g sigma=%g", path, iso.A, pt.E, pt.Sigma)
			}
		}
	}
	return x, nil
}

// WriteElementXS stores x under dir.
func WriteElementXS(dir string, x *ElementXS) error {
	return writeYAML(XSPath(dir, x.Z), x)
}
