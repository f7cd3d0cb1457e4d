package material

import (
	"fmt"
	"math"
	"sort"

	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// Component is one element of a material.
type Component struct {
	Element       int     // index in the ElementTable
	Z             int
	NumberDensity float64 // atoms/cm3
}

// Material is a medium as the capture engine sees it.
type Material struct {
	Name        string
	Density     float64 // g/cm3
	Temperature float64 // K
	Components  []Component
}

// Atom is one entry of a chemical formula.
type Atom struct {
	Z     int
	Count int
}

// Part is a mass fraction of a blend.
type Part struct {
	Fraction      float64
	MassFractions map[int]float64
}

// Definition describes a material by element mass fractions.
type Definition struct {
	Name          string
	Density       float64
	Temperature   float64
	MassFractions map[int]float64
}

// Formula converts a chemical formula into element mass fractions.
func Formula(atoms ...Atom) map[int]float64 {
	out := make(map[int]float64, len(atoms))
	var total float64
	for _, a := range atoms {
		el, ok := nuclide.Natural(a.Z)
		if !ok {
			continue
		}
		m := float64(a.Count) * el.AtomicWeight()
		out[a.Z] += m
		total += m
	}
	for z := range out {
		out[z] /= total
	}
	return out
}

// Blend mixes parts by mass.
func Blend(parts ...Part) map[int]float64 {
	out := make(map[int]float64)
	for _, p := range parts {
		for z, w := range p.MassFractions {
			out[z] += p.Fraction * w
		}
	}
	return out
}

// Pure returns the mass fractions of a single element.
func Pure(z int) map[int]float64 {
	return map[int]float64{z: 1}
}

// Build registers the elements of d in table and converts mass fractions
// into number densities. Components are ordered by atomic number.
func (d Definition) Build(table *ElementTable) (*Material, error) {
	if d.Density <= 0 {
		return nil, fmt.Errorf("material %s: density must be positive", d.Name)
	}
	var sum float64
	zs := make([]int, 0, len(d.MassFractions))
	for z, w := range d.MassFractions {
		if w < 0 {
			return nil, fmt.Errorf("material %s: negative mass fraction for Z=%d", d.Name, z)
		}
		sum += w
		if w > 0 {
			zs = append(zs, z)
		}
	}
	if len(zs) == 0 {
		return nil, fmt.Errorf("material %s: no elements", d.Name)
	}
	if math.Abs(sum-1) > 1e-6 {
		return nil, fmt.Errorf("material %s: mass fractions sum to %g", d.Name, sum)
	}
	sort.Ints(zs)

	temp := d.Temperature
	if temp <= 0 {
		temp = units.RoomTemperature
	}
	m := &Material{Name: d.Name, Density: d.Density, Temperature: temp}
	for _, z := range zs {
		idx, err := table.Register(z)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", d.Name, err)
		}
		el := table.At(idx)
		n := d.Density * d.MassFractions[z] / sum * units.Avogadro / el.AtomicWeight()
		m.Components = append(m.Components, Component{Element: idx, Z: z, NumberDensity: n})
	}
	return m, nil
}

// Component returns the component for element z.
func (m *Material) Component(z int) (Component, bool) {
	for _, c := range m.Components {
		if c.Z == z {
			return c, true
		}
	}
	return Component{}, false
}
