package dispatch_test

import (
	"os"

	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
)

func removeXS(dir string, z int) error {
	return os.Remove(nucdata.XSPath(dir, z))
}
