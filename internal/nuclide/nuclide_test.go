package nuclide

import (
	"math"
	"testing"
)

func TestSeparationEnergy(t *testing.T) {
	tests := []struct {
		target   Isotope
		expected float64
	}{
		{New(1, 1), 2.2246},
		{New(64, 155), 8.536},
		{New(64, 157), 7.937},
		{New(55, 133), 6.892},
	}

	for _, tt := range tests {
		got := SeparationEnergy(tt.target)
		if math.Abs(got-tt.expected) > 0.005 {
			t.Errorf("Sn(%s) = %.4f MeV, want %.4f", tt.target.Compound(), got, tt.expected)
		}
	}
}

func TestMass_LiquidDropFallback(t *testing.T) {
	iso := New(50, 120)
	if Tabulated(iso) {
		t.Fatal("expected 120Sn to be outside the table")
	}
	m := Mass(iso)
	approx := 120 * 931.494
	if math.Abs(m-approx)/approx > 0.01 {
		t.Errorf("liquid-drop mass %.1f too far from %.1f", m, approx)
	}
}

func TestIsotopeIdentity(t *testing.T) {
	iso := New(64, 157)
	if iso.String() != "157Gd" {
		t.Errorf("String() = %q", iso.String())
	}
	if FromID(iso.ID()) != iso {
		t.Errorf("FromID(ID()) round trip failed for %v", iso)
	}
	if iso.Compound() != New(64, 158) {
		t.Errorf("Compound() = %v", iso.Compound())
	}
	if !(Isotope{}).IsZero() {
		t.Error("zero isotope should be unresolved")
	}
}

func TestNaturalAbundances(t *testing.T) {
	for _, e := range Catalogue() {
		sum := 0.0
		for _, iso := range e.Isotopes {
			sum += iso.Fraction
		}
		if math.Abs(sum-1) > 1e-3 {
			t.Errorf("%s abundances sum to %.5f", e.Symbol, sum)
		}
	}

	gd, ok := Natural(Gadolinium)
	if !ok {
		t.Fatal("gadolinium missing from catalogue")
	}
	if w := gd.AtomicWeight(); math.Abs(w-157.25) > 0.05 {
		t.Errorf("Gd atomic weight = %.3f", w)
	}
	if gd.MostAbundant() != New(64, 158) {
		t.Errorf("most abundant Gd isotope = %v", gd.MostAbundant())
	}
}

func TestBySymbol(t *testing.T) {
	e, err := BySymbol("gd")
	if err != nil {
		t.Fatal(err)
	}
	if e.Z != 64 {
		t.Errorf("Z = %d", e.Z)
	}
	if _, err := BySymbol("Xx"); err == nil {
		t.Error("expected error for unknown symbol")
	}
}
