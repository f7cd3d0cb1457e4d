package nucdata

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

func lookup(env map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDataDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	got, err := DataDir(lookup(map[string]string{EnvDataDir: dir}))
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = DataDir(lookup(nil))
	assert.ErrorIs(t, err, ErrDataDirUnset)

	_, err = DataDir(lookup(map[string]string{EnvDataDir: ""}))
	assert.ErrorIs(t, err, ErrDataDirUnset)

	_, err = DataDir(lookup(map[string]string{EnvDataDir: filepath.Join(dir, "missing")}))
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = DataDir(lookup(map[string]string{EnvDataDir: file}))
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestIsotopeXS_Interpolation(t *testing.T) {
	x := IsotopeXS{A: 1, Abundance: 1, Points: []Point{
		{E: 1e-8, Sigma: 10},
		{E: 1e-6, Sigma: 1},
		{E: 1, Sigma: 1},
	}}

	assert.InDelta(t, 10, x.At(1e-8), 1e-12)
	// log-log midpoint of a power law
	assert.InDelta(t, math.Sqrt(10), x.At(1e-7), 1e-9)
	// 1/v below the table
	assert.InDelta(t, 20, x.At(0.25e-8), 1e-9)
	// held above the table
	assert.Equal(t, 1.0, x.At(5))

	empty := IsotopeXS{}
	assert.Zero(t, empty.At(1))
}

func TestDefaultElementXS_ThermalValue(t *testing.T) {
	gd, ok := nuclide.Natural(nuclide.Gadolinium)
	require.True(t, ok)
	x := DefaultElementXS(gd)
	require.True(t, x.HasData())

	gd157 := x.Isotope(157)
	require.NotNil(t, gd157)
	assert.InEpsilon(t, 254000, gd157.At(units.ThermalEnergy), 1e-9)

	// natural Gd is about 49 kb at thermal energy
	assert.InDelta(t, 49000, x.At(units.ThermalEnergy), 1500)

	// 1/v: four times the energy halves the cross-section
	assert.InEpsilon(t, gd157.At(1e-6)/2, gd157.At(4e-6), 1e-6)
}

func TestWriteDefaults_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefaults(dir))

	h, err := LoadElementXS(dir, 1)
	require.NoError(t, err)
	assert.Equal(t, "H", h.Symbol)
	assert.InEpsilon(t, 0.3326*0.999885+0.000519*0.000115, h.At(units.ThermalEnergy), 1e-6)

	for _, want := range DefaultCascadeTables() {
		got, err := LoadCascade(dir, want.Compound, "")
		require.NoError(t, err)
		assert.Equal(t, want.Compound, got.Compound)
		assert.Len(t, got.Levels, len(want.Levels))
		assert.InDelta(t, want.SeparationEnergy, got.SeparationEnergy, 1e-9)
	}
}

func TestLoadElementXS_MissingFileHasNoData(t *testing.T) {
	x, err := LoadElementXS(t.TempDir(), 55)
	require.NoError(t, err)
	assert.False(t, x.HasData())
	assert.Zero(t, x.At(units.ThermalEnergy))
}

func TestLoadElementXS_WrongElement(t *testing.T) {
	dir := t.TempDir()
	x := DefaultElementXS(mustNatural(t, 6))
	require.NoError(t, writeYAML(XSPath(dir, 7), x))

	_, err := LoadElementXS(dir, 7)
	assert.Error(t, err)
}

func TestLoadElementXS_RejectsInvalidPoints(t *testing.T) {
	tests := []struct {
		name  string
		point Point
	}{
		{"zero energy", Point{E: 0, Sigma: 1}},
		{"negative sigma", Point{E: 1e-9, Sigma: -1}},
		{"nan sigma", Point{E: 1e-9, Sigma: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			x := DefaultElementXS(mustNatural(t, 1))
			x.Isotopes[0].Points[0] = tt.point
			require.NoError(t, writeYAML(XSPath(dir, 1), x))

			_, err := LoadElementXS(dir, 1)
			assert.Error(t, err)
		})
	}
}

func TestLoadCascade_Missing(t *testing.T) {
	_, err := LoadCascade(t.TempDir(), nuclide.New(64, 158), "")
	if !errors.Is(err, ErrMissingData) {
		t.Errorf("expected ErrMissingData, got %v", err)
	}
}

func TestLoadCascade_Override(t *testing.T) {
	dir := t.TempDir()
	tables := DefaultCascadeTables()
	require.NoError(t, writeYAML(filepath.Join(dir, "custom", "mine.yaml"), tables[1]))

	got, err := LoadCascade(dir, tables[1].Compound, "custom/mine.yaml")
	require.NoError(t, err)
	assert.Equal(t, tables[1].Compound, got.Compound)

	_, err = LoadCascade(dir, tables[0].Compound, "custom/mine.yaml")
	assert.Error(t, err, "table for the wrong compound must be rejected")
}

func TestCascadeTable_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CascadeTable)
	}{
		{"no separation energy", func(c *CascadeTable) { c.SeparationEnergy = 0 }},
		{"fraction above one", func(c *CascadeTable) { c.DiscreteFraction = 1.5 }},
		{"zero temperature", func(c *CascadeTable) { c.Temperature = 0 }},
		{"excited ground", func(c *CascadeTable) { c.Levels[0].Energy = 0.1 }},
		{"upward decay", func(c *CascadeTable) { c.Levels[1].Decays[0].To = 2 }},
		{"unsorted levels", func(c *CascadeTable) { c.Levels[2].Energy = 0.01 }},
		{"primary out of range", func(c *CascadeTable) { c.Primaries[0].To = 99 }},
		{"no primaries", func(c *CascadeTable) { c.Primaries = nil }},
	}

	for _, tt := range DefaultCascadeTables() {
		if err := tt.Validate(); err != nil {
			t.Fatalf("default table %s invalid: %v", tt.Compound, err)
		}
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCascadeTables()[0]
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNaturalWeights(t *testing.T) {
	tables := DefaultCascadeTables()
	total := tables[0].NaturalWeight + tables[1].NaturalWeight
	frac158 := tables[1].NaturalWeight / total
	if frac158 < 0.79 || frac158 > 0.83 {
		t.Errorf("expected 158Gd share near 0.81, got %.3f", frac158)
	}
}

func mustNatural(t *testing.T, z int) nuclide.Element {
	t.Helper()
	el, ok := nuclide.Natural(z)
	require.True(t, ok)
	return el
}
