package material

import (
	"fmt"
	"sort"

	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

const (
	hydrogen   = 1
	carbon     = 6
	nitrogen   = 7
	oxygen     = 8
	gadolinium = 64
)

var (
	lab    = Formula(Atom{carbon, 18}, Atom{hydrogen, 30})
	ppo    = Formula(Atom{carbon, 15}, Atom{hydrogen, 11}, Atom{nitrogen, 1}, Atom{oxygen, 1})
	bisMSB = Formula(Atom{carbon, 24}, Atom{hydrogen, 22})
	water  = Formula(Atom{hydrogen, 2}, Atom{oxygen, 1})

	// liquid scintillator: LAB with 3 g/L PPO and 30 mg/L bis-MSB
	ls = Blend(
		Part{99.64 * units.Percent, lab},
		Part{0.35 * units.Percent, ppo},
		Part{0.01 * units.Percent, bisMSB},
	)
)

// Catalogue maps material names to their definitions.
type Catalogue struct {
	defs map[string]func() Definition
}

func NewCatalogue() *Catalogue {
	c := &Catalogue{defs: make(map[string]func() Definition)}

	c.defs["lab"] = func() Definition {
		return Definition{Name: "lab", Density: 0.863, MassFractions: lab}
	}
	c.defs["ppo"] = func() Definition {
		return Definition{Name: "ppo", Density: 1.06, MassFractions: ppo}
	}
	c.defs["bismsb"] = func() Definition {
		return Definition{Name: "bismsb", Density: 1.13, MassFractions: bisMSB}
	}
	c.defs["ls"] = func() Definition {
		return Definition{Name: "ls", Density: 0.863, MassFractions: ls}
	}
	c.defs["gdls"] = func() Definition {
		return Definition{Name: "gdls", Density: 0.865, MassFractions: Blend(
			Part{99.8 * units.Percent, ls},
			Part{0.2 * units.Percent, Pure(gadolinium)},
		)}
	}
	c.defs["natgd"] = func() Definition {
		return Definition{Name: "natgd", Density: 7.90, MassFractions: Pure(gadolinium)}
	}
	c.defs["water"] = func() Definition {
		return Definition{Name: "water", Density: 1.0, MassFractions: water}
	}

	return c
}

// Register adds or replaces a definition.
func (c *Catalogue) Register(name string, fn func() Definition) {
	c.defs[name] = fn
}

// Get returns the definition called name.
func (c *Catalogue) Get(name string) (Definition, error) {
	fn, ok := c.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown material: %s", name)
	}
	return fn(), nil
}

// Build looks up name and builds it against table at temperature temp.
// A non-positive temp keeps the definition's temperature.
func (c *Catalogue) Build(name string, table *ElementTable, temp float64) (*Material, error) {
	d, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	if temp > 0 {
		d.Temperature = temp
	}
	return d.Build(table)
}

func (c *Catalogue) List() []string {
	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
