package capture

import (
	"errors"
	"fmt"

	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
)

var (
	// ErrNoTable means a reaction was requested for an element the dispatch
	// table does not cover, usually because BuildPhysicsTable was not run.
	ErrNoTable = errors.New("capture: physics table not built for element")

	// ErrEmptyMaterial means the material has no components.
	ErrEmptyMaterial = errors.New("capture: material has no elements")

	// ErrNonConservation means a final state failed the energy check.
	ErrNonConservation = errors.New("capture: energy non-conservation")
)

// IsFatal reports whether err is a configuration error the engine cannot
// recover from.
func IsFatal(err error) bool {
	return errors.Is(err, nucdata.ErrDataDirUnset) || errors.Is(err, nucdata.ErrMissingData)
}

// Error wraps an error with the capture it happened in.
type Error struct {
	Material string
	Target   nuclide.Isotope
	Energy   float64
	Wrapped  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v (material %s, target %s, %.4g MeV)", e.Wrapped, e.Material, e.Target, e.Energy)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}
