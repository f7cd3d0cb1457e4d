// Package cascade generates the de-excitation products of a gadolinium
// compound nucleus in its rest frame.
package cascade

import (
	"fmt"

	"go-hep.org/x/hep/fmom"

	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// Kind identifies the species of a cascade product.
type Kind int

const (
	Gamma Kind = iota
	Electron
)

// PDG codes of the emitted species.
const (
	PDGGamma    = 22
	PDGElectron = 11
)

func (k Kind) String() string {
	switch k {
	case Gamma:
		return "gamma"
	case Electron:
		return "e-"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// PDG returns the particle data group code of k.
func (k Kind) PDG() int {
	if k == Electron {
		return PDGElectron
	}
	return PDGGamma
}

// Mass returns the rest mass of k in MeV.
func (k Kind) Mass() float64 {
	if k == Electron {
		return units.ElectronMass
	}
	return 0
}

// Product is one emitted particle with its four-momentum.
type Product struct {
	Kind Kind
	P4   fmom.PxPyPzE
}

// KineticEnergy returns E - m.
func (p Product) KineticEnergy() float64 {
	return p.P4.E() - p.Kind.Mass()
}
