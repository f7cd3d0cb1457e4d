// Package finalstate assembles the conserving final state of one capture:
// the boosted reaction products, the recoil nucleus and the fate of the
// incoming neutron.
package finalstate

import (
	"fmt"

	"go-hep.org/x/hep/fmom"

	"github.com/opercjy/CPNR-modular-sim/internal/cascade"
	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/kinematics"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// Status is the fate of the incoming neutron.
type Status int

const (
	Alive Status = iota
	StopAndKill
)

func (s Status) String() string {
	if s == StopAndKill {
		return "stop_and_kill"
	}
	return "alive"
}

// Particle is a particle definition.
type Particle struct {
	Name string
	PDG  int
	Mass float64
	Ion  nuclide.Isotope
}

var (
	GammaDef    = Particle{Name: "gamma", PDG: cascade.PDGGamma}
	ElectronDef = Particle{Name: "e-", PDG: cascade.PDGElectron, Mass: units.ElectronMass}
)

// IonDef returns the ground-state ion of iso.
func IonDef(iso nuclide.Isotope) Particle {
	return Particle{
		Name: iso.String(),
		PDG:  1000000000 + iso.Z*10000 + iso.A*10,
		Mass: nuclide.Mass(iso),
		Ion:  iso,
	}
}

func definition(k cascade.Kind) Particle {
	if k == cascade.Electron {
		return ElectronDef
	}
	return GammaDef
}

// Secondary is an emitted particle with its lab four-momentum.
type Secondary struct {
	Particle
	P4 fmom.PxPyPzE
}

// KineticEnergy returns E - m.
func (s Secondary) KineticEnergy() float64 {
	return s.P4.E() - s.Mass
}

// FinalState is the outcome of one capture.
type FinalState struct {
	Target      nuclide.Isotope
	CaptureMode config.CaptureMode
	Initial     fmom.PxPyPzE
	Secondaries []Secondary
	Recoil      *Secondary
	Status      Status
	// Scale is the factor applied to photon momenta, 1 when unscaled.
	Scale float64
}

// All returns the secondaries followed by the recoil, if any.
func (fs *FinalState) All() []Secondary {
	out := make([]Secondary, 0, len(fs.Secondaries)+1)
	out = append(out, fs.Secondaries...)
	if fs.Recoil != nil {
		out = append(out, *fs.Recoil)
	}
	return out
}

// Total returns the summed four-momentum of everything emitted.
func (fs *FinalState) Total() fmom.PxPyPzE {
	var sum fmom.PxPyPzE
	for _, s := range fs.All() {
		sum = kinematics.Add(sum, s.P4)
	}
	return sum
}

// Residual returns initial minus total four-momentum.
func (fs *FinalState) Residual() fmom.PxPyPzE {
	return kinematics.Sub(fs.Initial, fs.Total())
}

func (fs *FinalState) String() string {
	recoil := "none"
	if fs.Recoil != nil {
		recoil = fmt.Sprintf("%s(%.3g keV)", fs.Recoil.Name, fs.Recoil.KineticEnergy()/units.KeV)
	}
	return fmt.Sprintf("%s: %d secondaries, recoil %s, %s", fs.Target, len(fs.Secondaries), recoil, fs.Status)
}
