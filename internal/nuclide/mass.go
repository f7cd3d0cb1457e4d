package nuclide

import (
	"math"

	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// massExcess holds atomic mass excesses in keV (AME2016) for the isotopes of
// the catalogue and the compound nuclei they form after capture.
var massExcess = map[Isotope]float64{
	{1, 1}: 7288.971, {1, 2}: 13135.722, {1, 3}: 14949.810,
	{6, 12}: 0, {6, 13}: 3125.009, {6, 14}: 3019.893,
	{7, 14}: 2863.417, {7, 15}: 101.439, {7, 16}: 5683.9,
	{8, 16}: -4737.001, {8, 17}: -808.764, {8, 18}: -782.816, {8, 19}: 3332.9,
	{9, 19}: -1487.444, {9, 20}: -17.463,
	{11, 23}: -9529.853, {11, 24}: -8417.9,
	{14, 28}: -21492.794, {14, 29}: -21895.079, {14, 30}: -24432.961, {14, 31}: -22949.0,
	{19, 39}: -33807.190, {19, 40}: -33535.49, {19, 41}: -35559.07, {19, 42}: -35022.0,
	{51, 121}: -89593.5, {51, 122}: -88330.0, {51, 123}: -89222.6, {51, 124}: -87617.0,
	{55, 133}: -88070.93, {55, 134}: -86891.15,
	{64, 152}: -74714, {64, 153}: -72890, {64, 154}: -73713, {64, 155}: -72077,
	{64, 156}: -72542, {64, 157}: -70831, {64, 158}: -70697, {64, 159}: -68568,
	{64, 160}: -67949, {64, 161}: -65513,
}

// Bethe-Weizsacker coefficients in MeV.
const (
	aVolume    = 15.75
	aSurface   = 17.8
	aCoulomb   = 0.711
	aAsymmetry = 23.7
	aPairing   = 11.18
)

// Tabulated reports whether the mass of i comes from the evaluated table.
func Tabulated(i Isotope) bool {
	_, ok := massExcess[i]
	return ok
}

// Mass returns the nuclear (ion) mass of i in MeV. Isotopes missing from
// the table fall back to the liquid-drop formula.
func Mass(i Isotope) float64 {
	if i.Z == 0 && i.A == 1 {
		return units.NeutronMass
	}
	if me, ok := massExcess[i]; ok {
		return float64(i.A)*units.AMU + me*units.KeV - float64(i.Z)*units.ElectronMass
	}
	return liquidDropMass(i)
}

// AtomicMass returns the neutral-atom mass of i in atomic mass units.
func AtomicMass(i Isotope) float64 {
	return (Mass(i) + float64(i.Z)*units.ElectronMass) / units.AMU
}

// SeparationEnergy returns the neutron separation energy of the compound
// nucleus formed by i capturing a neutron, i.e. the capture Q-value.
func SeparationEnergy(target Isotope) float64 {
	return Mass(target) + units.NeutronMass - Mass(target.Compound())
}

func liquidDropMass(i Isotope) float64 {
	if i.A <= 0 {
		return 0
	}
	a := float64(i.A)
	z := float64(i.Z)
	n := float64(i.N())

	b := aVolume*a -
		aSurface*math.Pow(a, 2.0/3.0) -
		aCoulomb*z*(z-1)/math.Cbrt(a) -
		aAsymmetry*(a-2*z)*(a-2*z)/a

	switch {
	case i.Z%2 == 0 && i.N()%2 == 0:
		b += aPairing / math.Sqrt(a)
	case i.Z%2 == 1 && i.N()%2 == 1:
		b -= aPairing / math.Sqrt(a)
	}

	return z*units.ProtonMass + n*units.NeutronMass - b
}
