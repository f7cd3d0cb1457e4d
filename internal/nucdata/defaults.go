package nucdata

import (
	"fmt"
	"math"

	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// thermalXS holds 2200 m/s capture cross-sections in barn.
var thermalXS = map[nuclide.Isotope]float64{
	{Z: 1, A: 1}: 0.3326, {Z: 1, A: 2}: 0.000519,
	{Z: 6, A: 12}: 0.00353, {Z: 6, A: 13}: 0.00137,
	{Z: 7, A: 14}: 0.075, {Z: 7, A: 15}: 0.000024,
	{Z: 8, A: 16}: 0.00019, {Z: 8, A: 17}: 0.000538, {Z: 8, A: 18}: 0.00016,
	{Z: 9, A: 19}: 0.0096,
	{Z: 11, A: 23}: 0.53,
	{Z: 14, A: 28}: 0.177, {Z: 14, A: 29}: 0.101, {Z: 14, A: 30}: 0.107,
	{Z: 19, A: 39}: 2.1, {Z: 19, A: 40}: 30, {Z: 19, A: 41}: 1.46,
	{Z: 51, A: 121}: 5.9, {Z: 51, A: 123}: 4.1,
	{Z: 55, A: 133}: 29,
	{Z: 64, A: 152}: 735, {Z: 64, A: 154}: 85, {Z: 64, A: 155}: 60900,
	{Z: 64, A: 156}: 1.8, {Z: 64, A: 157}: 254000, {Z: 64, A: 158}: 2.2,
	{Z: 64, A: 160}: 0.77,
}

// ThermalXS returns the 2200 m/s capture cross-section of i in barn.
func ThermalXS(i nuclide.Isotope) float64 {
	return thermalXS[i]
}

// gridEnergies is the energy grid of the generated tables, in MeV.
var gridEnergies = []float64{1e-11, 1e-9, units.ThermalEnergy, 1e-6, 1e-4, 1e-2, 1, 20}

// DefaultElementXS builds a 1/v capture table for a natural element,
// normalised to its thermal cross-sections. Above 100 keV the cross-section
// is held at its 100 keV value.
func DefaultElementXS(el nuclide.Element) *ElementXS {
	x := &ElementXS{Z: el.Z, Symbol: el.Symbol, TemperatureK: units.RoomTemperature}
	for _, ab := range el.Isotopes {
		s0 := ThermalXS(nuclide.New(el.Z, ab.A))
		iso := IsotopeXS{A: ab.A, Abundance: ab.Fraction}
		for _, e := range gridEnergies {
			eff := e
			if eff > 0.1 {
				eff = 0.1
			}
			iso.Points = append(iso.Points, Point{E: e, Sigma: s0 * math.Sqrt(units.ThermalEnergy/eff)})
		}
		x.Isotopes = append(x.Isotopes, iso)
	}
	return x
}

// DefaultCascadeTables returns the built-in level schemes of 156Gd and
// 158Gd. Level energies, branchings and conversion coefficients follow the
// evaluated low-lying structure; primaries are a coarse grouping of the
// strongest thermal-capture lines.
func DefaultCascadeTables() []*CascadeTable {
	gd155 := nuclide.New(nuclide.Gadolinium, 155)
	gd157 := nuclide.New(nuclide.Gadolinium, 157)
	natWeight := func(target nuclide.Isotope) float64 {
		el, _ := nuclide.Natural(nuclide.Gadolinium)
		for _, ab := range el.Isotopes {
			if ab.A == target.A {
				return ab.Fraction * ThermalXS(target)
			}
		}
		return 0
	}

	gd156 := &CascadeTable{
		Compound:         gd155.Compound(),
		SeparationEnergy: nuclide.SeparationEnergy(gd155),
		NaturalWeight:    natWeight(gd155),
		DiscreteFraction: 0.1,
		Temperature:      0.55,
		KBinding:         50.24 * units.KeV,
		Levels: []Level{
			{Energy: 0},
			{Energy: 0.08897, Decays: []Transition{{To: 0, Weight: 1, Alpha: 3.9}}},
			{Energy: 0.28819, Decays: []Transition{{To: 1, Weight: 1, Alpha: 0.16}}},
			{Energy: 1.04947, Decays: []Transition{{To: 1, Weight: 1, Alpha: 0.002}}},
			{Energy: 1.15415, Decays: []Transition{{To: 0, Weight: 0.4, Alpha: 0.002}, {To: 1, Weight: 0.5, Alpha: 0.002}, {To: 2, Weight: 0.1, Alpha: 0.003}}},
			{Energy: 1.24254, Decays: []Transition{{To: 0, Weight: 0.4, Alpha: 0.001}, {To: 1, Weight: 0.6, Alpha: 0.001}}},
			{Energy: 1.36607, Decays: []Transition{{To: 0, Weight: 0.3, Alpha: 0.001}, {To: 1, Weight: 0.5, Alpha: 0.001}, {To: 4, Weight: 0.2, Alpha: 0.05}}},
			{Energy: 1.96584, Decays: []Transition{{To: 1, Weight: 0.5, Alpha: 0.001}, {To: 4, Weight: 0.3, Alpha: 0.002}, {To: 5, Weight: 0.2, Alpha: 0.002}}},
		},
		Primaries: []Primary{{To: 5, Weight: 0.3}, {To: 6, Weight: 0.25}, {To: 4, Weight: 0.2}, {To: 7, Weight: 0.15}, {To: 3, Weight: 0.1}},
	}

	gd158 := &CascadeTable{
		Compound:         gd157.Compound(),
		SeparationEnergy: nuclide.SeparationEnergy(gd157),
		NaturalWeight:    natWeight(gd157),
		DiscreteFraction: 0.1,
		Temperature:      0.55,
		KBinding:         50.24 * units.KeV,
		Levels: []Level{
			{Energy: 0},
			{Energy: 0.07951, Decays: []Transition{{To: 0, Weight: 1, Alpha: 6.0}}},
			{Energy: 0.26146, Decays: []Transition{{To: 1, Weight: 1, Alpha: 0.18}}},
			{Energy: 0.97717, Decays: []Transition{{To: 0, Weight: 0.45, Alpha: 0.003}, {To: 1, Weight: 0.55, Alpha: 0.003}}},
			{Energy: 1.18714, Decays: []Transition{{To: 0, Weight: 0.3, Alpha: 0.002}, {To: 1, Weight: 0.6, Alpha: 0.002}, {To: 2, Weight: 0.1, Alpha: 0.003}}},
			{Energy: 1.26360, Decays: []Transition{{To: 1, Weight: 0.7, Alpha: 0.002}, {To: 2, Weight: 0.3, Alpha: 0.002}}},
			{Energy: 1.51727, Decays: []Transition{{To: 1, Weight: 0.5, Alpha: 0.001}, {To: 3, Weight: 0.5, Alpha: 0.01}}},
		},
		Primaries: []Primary{{To: 3, Weight: 0.3}, {To: 4, Weight: 0.25}, {To: 5, Weight: 0.2}, {To: 6, Weight: 0.15}, {To: 1, Weight: 0.1}},
	}
	return []*CascadeTable{gd156, gd158}
}

// WriteDefaults populates dir with the built-in data set: one cross-section
// file per catalogued element and the two gadolinium cascade tables.
func WriteDefaults(dir string) error {
	for _, el := range nuclide.Catalogue() {
		if err := WriteElementXS(dir, DefaultElementXS(el)); err != nil {
			return fmt.Errorf("nucdata: write %s: %w", el.Symbol, err)
		}
	}
	for _, t := range DefaultCascadeTables() {
		if err := WriteCascadeTable(dir, t); err != nil {
			return fmt.Errorf("nucdata: write %s: %w", t.Compound, err)
		}
	}
	return nil
}
