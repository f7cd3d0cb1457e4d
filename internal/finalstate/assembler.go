package finalstate

import (
	"fmt"
	"math"
	"math/rand"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opercjy/CPNR-modular-sim/internal/cascade"
	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/kinematics"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/registry"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// ProductSource yields reaction products in the nuclear rest frame.
// *cascade.Generator is the custom source.
type ProductSource interface {
	Products(capture config.CaptureMode, mode config.CascadeMode, target nuclide.Isotope, rng *rand.Rand) []cascade.Product
}

// Projectile is the incoming neutron.
type Projectile struct {
	KineticEnergy float64
	Direction     r3.Vec
}

// Request describes one capture.
type Request struct {
	Projectile  Projectile
	Target      nuclide.Isotope
	Temperature float64
}

type Options struct {
	// ScaleToRecoilShell rescales photon momenta by a common factor so the
	// recoil nucleus lands on its mass shell.
	ScaleToRecoilShell bool
}

func DefaultOptions() Options {
	return Options{ScaleToRecoilShell: true}
}

// Assembler builds final states. It holds no per-event state.
type Assembler struct {
	opts Options
}

func New(opts Options) *Assembler {
	return &Assembler{opts: opts}
}

func (a *Assembler) Options() Options { return a.opts }

// Assemble runs one capture through initial state, product generation,
// secondary assembly, recoil computation and finalisation.
//
// The reacting isotope is the one recorded in rc's reaction slot, or
// req.Target when the slot is empty. An isotope without a mass number is
// treated as the element's most abundant isotope for kinematics and is
// handed to src unresolved.
//
// Products releasing more energy than the capture makes available are not
// rescaled; the recoil is then omitted.
func (a *Assembler) Assemble(rc *registry.Context, req Request, src ProductSource) (*FinalState, error) {
	iso := req.Target
	if r := rc.Reaction(); !r.Target.IsZero() {
		iso = r.Target
	}
	if iso.Z <= 0 {
		return nil, fmt.Errorf("finalstate: unresolved target element")
	}
	nucleus := iso
	if nucleus.A == 0 {
		el, ok := nuclide.Natural(iso.Z)
		if !ok {
			return nil, fmt.Errorf("finalstate: no isotope for Z=%d", iso.Z)
		}
		nucleus = el.MostAbundant()
	}
	rng := rc.Rand()

	// initial state
	mt := nuclide.Mass(nucleus)
	beta := kinematics.ThermalVelocity(rng, mt, req.Temperature)
	neutron := kinematics.FromKinetic(units.NeutronMass, req.Projectile.KineticEnergy, req.Projectile.Direction)
	initial := kinematics.Add(neutron, kinematics.FromVelocity(mt, beta))

	// product generation
	mode := rc.ResolveCaptureMode(iso)
	products := src.Products(mode, rc.Config().CascadeMode, iso, rng)

	// secondary assembly
	fs := &FinalState{
		Target:      iso,
		CaptureMode: mode,
		Initial:     initial,
		Secondaries: make([]Secondary, 0, len(products)),
		Scale:       1,
	}
	for _, p := range products {
		fs.Secondaries = append(fs.Secondaries, Secondary{
			Particle: definition(p.Kind),
			P4:       kinematics.Boost(p.P4, beta),
		})
	}

	// recoil
	recoil := IonDef(nucleus.Compound())
	if a.opts.ScaleToRecoilShell && !overcommitted(initial, beta, products, recoil.Mass) {
		fs.Scale = scaleToShell(initial, fs.Secondaries, recoil.Mass)
	}
	rp := remainder(initial, fs.Secondaries)
	if validRecoil(rp, recoil.Mass) {
		fs.Recoil = &Secondary{Particle: recoil, P4: rp}
	}

	fs.Status = StopAndKill
	return fs, nil
}

// overcommitted reports whether the products, taken in the nuclear rest
// frame, release more energy than the capture makes available above the
// recoil mass m. Electrons count with their kinetic energy only since they
// come from the atomic shell.
func overcommitted(initial fmom.PxPyPzE, beta r3.Vec, products []cascade.Product, m float64) bool {
	rest := kinematics.Boost(initial, r3.Scale(-1, beta))
	available := rest.E() - m
	var released float64
	for _, p := range products {
		released += p.KineticEnergy()
	}
	return released > available
}

func remainder(initial fmom.PxPyPzE, secondaries []Secondary) fmom.PxPyPzE {
	var emitted fmom.PxPyPzE
	for _, s := range secondaries {
		emitted = kinematics.Add(emitted, s.P4)
	}
	return kinematics.Sub(initial, emitted)
}

// validRecoil reports whether p can be a nucleus of mass m with positive
// kinetic energy.
func validRecoil(p fmom.PxPyPzE, m float64) bool {
	e := p.E()
	return e >= m && e-m > 0
}

// scaleToShell multiplies photon momenta in place by the factor s solving
// (P - sQ)^2 = m^2, where Q sums the photons and P is the initial momentum
// less everything else. The smaller positive root is taken. When none
// exists the photons are left untouched and 1 is returned.
func scaleToShell(initial fmom.PxPyPzE, secondaries []Secondary, m float64) float64 {
	p := initial
	var q fmom.PxPyPzE
	photons := 0
	for _, s := range secondaries {
		if s.PDG == cascade.PDGGamma {
			q = kinematics.Add(q, s.P4)
			photons++
		} else {
			p = kinematics.Sub(p, s.P4)
		}
	}
	if photons == 0 {
		return 1
	}

	pq := kinematics.Dot(p, q)
	c := kinematics.Dot(p, p) - m*m
	d := pq*pq - kinematics.Dot(q, q)*c
	if pq <= 0 || d < 0 {
		return 1
	}
	s := c / (pq + math.Sqrt(d))
	if !(s > 0) || math.IsInf(s, 0) {
		return 1
	}
	for i := range secondaries {
		if secondaries[i].PDG == cascade.PDGGamma {
			secondaries[i].P4 = kinematics.Scale(s, secondaries[i].P4)
		}
	}
	return s
}
