// Package nuclide identifies isotopes and provides their nuclear masses
// together with the natural isotopic composition of the elements the
// engine knows about.
package nuclide

import (
	"fmt"
)

// Isotope identifies a nucleus by atomic number and mass number.
// The zero value means "unresolved".
type Isotope struct {
	Z int `yaml:"z" json:"z"`
	A int `yaml:"a" json:"a"`
}

// New returns the isotope (z, a).
func New(z, a int) Isotope {
	return Isotope{Z: z, A: a}
}

// FromID decodes a ZZZAAA identifier.
func FromID(id int) Isotope {
	return Isotope{Z: id / 1000, A: id % 1000}
}

// ID encodes the isotope as ZZZAAA.
func (i Isotope) ID() int {
	return i.Z*1000 + i.A
}

// IsZero reports whether the isotope is unresolved.
func (i Isotope) IsZero() bool {
	return i.Z == 0 && i.A == 0
}

// N returns the neutron number.
func (i Isotope) N() int {
	return i.A - i.Z
}

// Compound returns the nucleus formed by absorbing one neutron.
func (i Isotope) Compound() Isotope {
	return Isotope{Z: i.Z, A: i.A + 1}
}

func (i Isotope) String() string {
	if i.IsZero() {
		return "unresolved"
	}
	if sym, ok := Symbol(i.Z); ok {
		return fmt.Sprintf("%d%s", i.A, sym)
	}
	return fmt.Sprintf("Z%d-A%d", i.Z, i.A)
}
