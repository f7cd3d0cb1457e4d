// Package nucdata reads the on-disk nuclear data the capture engine needs:
// per-element capture cross-sections and the gamma-cascade tables of the
// gadolinium compound nuclei.
//
// Layout under the data directory:
//
//	xs/<Symbol>.yaml       capture cross-sections of one element
//	cascade/<A><Sym>.yaml  level scheme and cascade parameters
package nucdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
)

// EnvDataDir names the environment variable holding the data directory.
const EnvDataDir = "CAPTURE_DATA_DIR"

var (
	// ErrDataDirUnset means EnvDataDir is not set. The engine cannot run
	// without nuclear data, so callers treat it as fatal.
	ErrDataDirUnset = errors.New("nucdata: " + EnvDataDir + " is not set")

	// ErrMissingData means a mandatory data file or directory is absent.
	ErrMissingData = errors.New("nucdata: mandatory data missing")
)

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// DataDir resolves and checks the data directory. A nil lookup uses the
// process environment.
func DataDir(lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	dir, ok := lookup(EnvDataDir)
	if !ok || dir == "" {
		return "", ErrDataDirUnset
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: data directory %s: %v", ErrMissingData, dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrMissingData, dir)
	}
	return dir, nil
}

// XSPath returns the cross-section file of element z.
func XSPath(dir string, z int) string {
	sym, ok := nuclide.Symbol(z)
	if !ok {
		sym = fmt.Sprintf("Z%03d", z)
	}
	return filepath.Join(dir, "xs", sym+".yaml")
}

// CascadePath returns the cascade table file of a compound nucleus.
func CascadePath(dir string, compound nuclide.Isotope) string {
	return filepath.Join(dir, "cascade", compound.String()+".yaml")
}
