package nuclide

import (
	"fmt"
	"sort"
	"strings"
)

// Gadolinium is the atomic number routed to the custom capture path.
const Gadolinium = 64

// Abundance is the natural atom fraction of one isotope of an element.
type Abundance struct {
	A        int     `yaml:"a"`
	Fraction float64 `yaml:"fraction"`
}

// Element is a natural element with its isotopic composition.
type Element struct {
	Z        int
	Symbol   string
	Name     string
	Isotopes []Abundance
}

// AtomicWeight returns the abundance-weighted atomic mass in g/mol.
func (e Element) AtomicWeight() float64 {
	if len(e.Isotopes) == 0 {
		return 2 * float64(e.Z)
	}
	var w, norm float64
	for _, iso := range e.Isotopes {
		w += iso.Fraction * AtomicMass(New(e.Z, iso.A))
		norm += iso.Fraction
	}
	return w / norm
}

// MostAbundant returns the dominant isotope of e.
func (e Element) MostAbundant() Isotope {
	best := Abundance{A: int(e.AtomicWeight() + 0.5)}
	for _, iso := range e.Isotopes {
		if iso.Fraction > best.Fraction {
			best = iso
		}
	}
	return New(e.Z, best.A)
}

var natural = map[int]Element{
	1: {Z: 1, Symbol: "H", Name: "hydrogen", Isotopes: []Abundance{{1, 0.999885}, {2, 0.000115}}},
	6: {Z: 6, Symbol: "C", Name: "carbon", Isotopes: []Abundance{{12, 0.9893}, {13, 0.0107}}},
	7: {Z: 7, Symbol: "N", Name: "nitrogen", Isotopes: []Abundance{{14, 0.99636}, {15, 0.00364}}},
	8: {Z: 8, Symbol: "O", Name: "oxygen", Isotopes: []Abundance{{16, 0.99757}, {17, 0.00038}, {18, 0.00205}}},
	9: {Z: 9, Symbol: "F", Name: "fluorine", Isotopes: []Abundance{{19, 1}}},
	11: {Z: 11, Symbol: "Na", Name: "sodium", Isotopes: []Abundance{{23, 1}}},
	14: {Z: 14, Symbol: "Si", Name: "silicon", Isotopes: []Abundance{{28, 0.92223}, {29, 0.04685}, {30, 0.03092}}},
	19: {Z: 19, Symbol: "K", Name: "potassium", Isotopes: []Abundance{{39, 0.932581}, {40, 0.000117}, {41, 0.067302}}},
	51: {Z: 51, Symbol: "Sb", Name: "antimony", Isotopes: []Abundance{{121, 0.5721}, {123, 0.4279}}},
	55: {Z: 55, Symbol: "Cs", Name: "caesium", Isotopes: []Abundance{{133, 1}}},
	64: {Z: 64, Symbol: "Gd", Name: "gadolinium", Isotopes: []Abundance{
		{152, 0.0020}, {154, 0.0218}, {155, 0.1480}, {156, 0.2047},
		{157, 0.1565}, {158, 0.2484}, {160, 0.2186},
	}},
}

// Natural returns the natural element with atomic number z.
func Natural(z int) (Element, bool) {
	e, ok := natural[z]
	return e, ok
}

// BySymbol looks an element up by its chemical symbol (case-insensitive).
func BySymbol(sym string) (Element, error) {
	for _, e := range natural {
		if strings.EqualFold(e.Symbol, sym) {
			return e, nil
		}
	}
	return Element{}, fmt.Errorf("nuclide: unknown element %q", sym)
}

// Symbol returns the chemical symbol for z.
func Symbol(z int) (string, bool) {
	e, ok := natural[z]
	if !ok {
		return "", false
	}
	return e.Symbol, true
}

// Catalogue lists every known element ordered by atomic number.
func Catalogue() []Element {
	out := make([]Element, 0, len(natural))
	for _, e := range natural {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}
