// Package selector samples which element of a compound material, and which
// isotope of that element, absorbs a neutron.
package selector

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opercjy/CPNR-modular-sim/internal/kinematics"
	"github.com/opercjy/CPNR-modular-sim/internal/material"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// temperatureTolerance is how far, in kelvin, the medium may be from the
// tabulation temperature before thermal boosting applies.
const temperatureTolerance = 1e-3

// Channels gives the capture cross-section record of an element index.
type Channels interface {
	Channel(element int) *nucdata.ElementXS
}

// Selector is stateless apart from its channel lookup and is safe for
// concurrent use when each caller brings its own random source.
type Selector struct {
	channels Channels
}

func New(channels Channels) *Selector {
	return &Selector{channels: channels}
}

// SelectElement returns the position in m.Components of the element that
// absorbs a neutron of kinetic energy ekin. A single-component material is
// returned without drawing. When every weight is zero the element is drawn
// uniformly.
func (s *Selector) SelectElement(m *material.Material, ekin float64, rng *rand.Rand) int {
	n := len(m.Components)
	if n == 1 {
		return 0
	}
	if n == 0 {
		return -1
	}

	weights := make([]float64, n)
	var total float64
	for i, c := range m.Components {
		x := s.channels.Channel(c.Element)
		weights[i] = s.CrossSection(x, ekin, m.Temperature, rng) * c.NumberDensity
		total += weights[i]
	}
	if total <= 0 {
		return rng.Intn(n)
	}
	return Pick(weights, total, rng)
}

// SelectIsotope picks the reacting isotope of x by abundance times isotope
// cross-section. An element with one isotope is returned without drawing;
// one without usable weights falls back to the most abundant natural
// isotope.
func (s *Selector) SelectIsotope(x *nucdata.ElementXS, ekin, temp float64, rng *rand.Rand) nuclide.Isotope {
	if x == nil {
		return nuclide.Isotope{}
	}
	if len(x.Isotopes) == 1 {
		return nuclide.New(x.Z, x.Isotopes[0].A)
	}

	weights := make([]float64, len(x.Isotopes))
	var total float64
	if x.HasData() {
		e := s.effectiveEnergy(x, ekin, temp, rng)
		for i := range x.Isotopes {
			weights[i] = x.Isotopes[i].Abundance * x.Isotopes[i].At(e)
			total += weights[i]
		}
	}
	if total <= 0 {
		if el, ok := nuclide.Natural(x.Z); ok {
			return el.MostAbundant()
		}
		return nuclide.Isotope{}
	}
	return nuclide.New(x.Z, x.Isotopes[Pick(weights, total, rng)].A)
}

// CrossSection returns the capture cross-section of x in barn for a neutron
// of kinetic energy ekin in a medium at temperature temp. Away from the
// tabulation temperature the lookup happens at the energy relative to a
// sampled Maxwellian nucleus, scaled by the relative speed.
func (s *Selector) CrossSection(x *nucdata.ElementXS, ekin, temp float64, rng *rand.Rand) float64 {
	if !x.HasData() {
		return 0
	}
	if !boosted(x, temp) {
		return x.At(ekin)
	}
	rel := s.effectiveEnergy(x, ekin, temp, rng)
	if ekin <= 0 {
		return x.At(rel)
	}
	return x.At(rel) * math.Sqrt(rel/ekin)
}

func (s *Selector) effectiveEnergy(x *nucdata.ElementXS, ekin, temp float64, rng *rand.Rand) float64 {
	if !boosted(x, temp) {
		return ekin
	}
	el, ok := nuclide.Natural(x.Z)
	if !ok {
		return ekin
	}
	m := el.AtomicWeight() * units.AMU
	beta := kinematics.ThermalVelocity(rng, m, temp)
	neutron := kinematics.FromKinetic(units.NeutronMass, ekin, r3.Vec{Z: 1})
	nucleus := kinematics.FromVelocity(m, beta)
	return kinematics.RelativeKineticEnergy(neutron, units.NeutronMass, nucleus)
}

func boosted(x *nucdata.ElementXS, temp float64) bool {
	return temp > 0 && math.Abs(temp-x.TemperatureK) > temperatureTolerance
}

// Pick draws u*total and returns the first index with positive weight whose
// running sum reaches the draw.
func Pick(weights []float64, total float64, rng *rand.Rand) int {
	draw := rng.Float64() * total
	var cum float64
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cum += w
		if cum >= draw {
			return i
		}
	}
	return last
}
