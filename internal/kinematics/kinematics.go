// Package kinematics provides the special-relativistic helpers used to build
// reaction final states. Four-vectors are go-hep fmom.PxPyPzE values in
// MeV; velocities are dimensionless (beta = v/c) gonum r3 vectors.
package kinematics

import (
	"math"
	"math/rand"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

// P4 builds a four-vector.
func P4(px, py, pz, e float64) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(px, py, pz, e)
}

// AtRest returns the four-momentum of a particle of mass m at rest.
func AtRest(m float64) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(0, 0, 0, m)
}

// FromKinetic returns the four-momentum of a particle of mass m with
// kinetic energy ek travelling along dir. dir need not be normalised.
func FromKinetic(m, ek float64, dir r3.Vec) fmom.PxPyPzE {
	if ek <= 0 || r3.Norm(dir) == 0 {
		return AtRest(m + math.Max(ek, 0))
	}
	p := math.Sqrt(ek * (ek + 2*m))
	u := r3.Scale(p, r3.Unit(dir))
	return fmom.NewPxPyPzE(u.X, u.Y, u.Z, ek+m)
}

// FromVelocity returns the four-momentum of mass m moving with velocity beta.
func FromVelocity(m float64, beta r3.Vec) fmom.PxPyPzE {
	return Boost(AtRest(m), beta)
}

// Massless returns the four-momentum of a massless particle of energy e.
func Massless(e float64, dir r3.Vec) fmom.PxPyPzE {
	u := r3.Scale(e, r3.Unit(dir))
	return fmom.NewPxPyPzE(u.X, u.Y, u.Z, e)
}

// Boost transforms p from a frame moving with velocity beta into the frame
// where that frame is seen moving with beta (the lab, for products
// generated in the nuclear rest frame).
func Boost(p fmom.PxPyPzE, beta r3.Vec) fmom.PxPyPzE {
	if beta == (r3.Vec{}) {
		return p
	}
	var out fmom.PxPyPzE
	out.Set(fmom.Boost(&p, beta))
	return out
}

// Velocity returns beta of p.
func Velocity(p fmom.PxPyPzE) r3.Vec {
	if p.E() == 0 {
		return r3.Vec{}
	}
	return fmom.BoostOf(&p)
}

// Add returns a+b.
func Add(a, b fmom.PxPyPzE) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(a.Px()+b.Px(), a.Py()+b.Py(), a.Pz()+b.Pz(), a.E()+b.E())
}

// Sub returns a-b.
func Sub(a, b fmom.PxPyPzE) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(a.Px()-b.Px(), a.Py()-b.Py(), a.Pz()-b.Pz(), a.E()-b.E())
}

// Scale returns s*p.
func Scale(s float64, p fmom.PxPyPzE) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(s*p.Px(), s*p.Py(), s*p.Pz(), s*p.E())
}

// Dot returns the Minkowski product a.b with metric (+,-,-,-).
func Dot(a, b fmom.PxPyPzE) float64 {
	return a.E()*b.E() - a.Px()*b.Px() - a.Py()*b.Py() - a.Pz()*b.Pz()
}

// Momentum returns the spatial part of p.
func Momentum(p fmom.PxPyPzE) r3.Vec {
	return r3.Vec{X: p.Px(), Y: p.Py(), Z: p.Pz()}
}

// Invariant returns sqrt(p.p), or 0 for space-like vectors.
func Invariant(p fmom.PxPyPzE) float64 {
	m2 := Dot(p, p)
	if m2 <= 0 {
		return 0
	}
	return math.Sqrt(m2)
}

// IsotropicDirection samples a unit vector uniformly on the sphere.
func IsotropicDirection(rng *rand.Rand) r3.Vec {
	cost := 1 - 2*rng.Float64()
	sint := math.Sqrt(math.Max(0, 1-cost*cost))
	phi := 2 * math.Pi * rng.Float64()
	return r3.Vec{X: sint * math.Cos(phi), Y: sint * math.Sin(phi), Z: cost}
}

// ThermalVelocity samples the velocity of a nucleus of mass m (MeV) in
// thermal equilibrium at temperature t (K) from the Maxwell-Boltzmann
// distribution. Non-positive temperatures yield a nucleus at rest.
func ThermalVelocity(rng *rand.Rand, m, t float64) r3.Vec {
	if t <= 0 || m <= 0 {
		return r3.Vec{}
	}
	sigma := math.Sqrt(units.Boltzmann * t / m)
	return r3.Vec{
		X: sigma * rng.NormFloat64(),
		Y: sigma * rng.NormFloat64(),
		Z: sigma * rng.NormFloat64(),
	}
}

// RelativeKineticEnergy returns the kinetic energy of projectile p (mass m)
// in the rest frame of target.
func RelativeKineticEnergy(p fmom.PxPyPzE, m float64, target fmom.PxPyPzE) float64 {
	beta := Velocity(target)
	rest := Boost(p, r3.Scale(-1, beta))
	return math.Max(rest.E()-m, 0)
}
