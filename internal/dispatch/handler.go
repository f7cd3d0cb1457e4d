// Package dispatch routes a capture on an element to its final-state
// handler: the custom cascade path for gadolinium and a generic single-line
// path for everything else.
package dispatch

import (
	"math/rand"

	"github.com/opercjy/CPNR-modular-sim/internal/cascade"
	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/finalstate"
	"github.com/opercjy/CPNR-modular-sim/internal/kinematics"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/registry"
)

// Handler produces the final state of a capture on one element.
type Handler interface {
	Name() string
	Apply(rc *registry.Context, req finalstate.Request) (*finalstate.FinalState, error)
}

// CustomHandler runs the isotope-resolved cascade generator of the worker
// context.
type CustomHandler struct {
	assembler *finalstate.Assembler
}

func NewCustomHandler(a *finalstate.Assembler) *CustomHandler {
	return &CustomHandler{assembler: a}
}

func (h *CustomHandler) Name() string { return "custom" }

// Apply records the target in the reaction slot for the duration of the
// capture. A generator initialisation error is returned unchanged and is
// fatal to the run.
func (h *CustomHandler) Apply(rc *registry.Context, req finalstate.Request) (*finalstate.FinalState, error) {
	gen, err := rc.Generator()
	if err != nil {
		return nil, err
	}
	r := rc.SetReaction(req.Target)
	defer rc.ClearReaction()

	if rc.Config().Verbose >= 2 {
		rc.Logger().Debug("gadolinium capture",
			"target", r.Target.String(),
			"capture_mode", r.CaptureMode.String(),
			"energy_mev", req.Projectile.KineticEnergy,
		)
	}
	return h.assembler.Assemble(rc, req, gen)
}

// GenericHandler emits a single gamma carrying the neutron separation
// energy, isotropic in the nuclear rest frame.
type GenericHandler struct {
	assembler *finalstate.Assembler
}

func NewGenericHandler(a *finalstate.Assembler) *GenericHandler {
	return &GenericHandler{assembler: a}
}

func (h *GenericHandler) Name() string { return "generic" }

func (h *GenericHandler) Apply(rc *registry.Context, req finalstate.Request) (*finalstate.FinalState, error) {
	return h.assembler.Assemble(rc, req, singleLine{})
}

type singleLine struct{}

func (singleLine) Products(_ config.CaptureMode, _ config.CascadeMode, target nuclide.Isotope, rng *rand.Rand) []cascade.Product {
	if target.A == 0 {
		el, ok := nuclide.Natural(target.Z)
		if !ok {
			return nil
		}
		target = el.MostAbundant()
	}
	sn := nuclide.SeparationEnergy(target)
	if sn <= 0 {
		return nil
	}
	return []cascade.Product{{
		Kind: cascade.Gamma,
		P4:   kinematics.Massless(sn, kinematics.IsotropicDirection(rng)),
	}}
}
