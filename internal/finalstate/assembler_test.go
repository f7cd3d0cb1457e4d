package finalstate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opercjy/CPNR-modular-sim/internal/cascade"
	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/kinematics"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/registry"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

type fixedSource struct {
	products []cascade.Product
	capture  config.CaptureMode
	target   nuclide.Isotope
}

func (f *fixedSource) Products(capture config.CaptureMode, _ config.CascadeMode, target nuclide.Isotope, _ *rand.Rand) []cascade.Product {
	f.capture = capture
	f.target = target
	out := make([]cascade.Product, len(f.products))
	copy(out, f.products)
	return out
}

func gamma(e float64, dir r3.Vec) cascade.Product {
	return cascade.Product{Kind: cascade.Gamma, P4: kinematics.Massless(e, dir)}
}

func thermal() Projectile {
	return Projectile{KineticEnergy: units.ThermalEnergy, Direction: r3.Vec{Z: 1}}
}

func generator(t *testing.T, rc *registry.Context) *cascade.Generator {
	t.Helper()
	g, err := rc.Generator()
	require.NoError(t, err)
	return g
}

func newContext(t *testing.T, seed int64) *registry.Context {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, nucdata.WriteDefaults(dir))
	return registry.New(config.DefaultModeConfig(), registry.WithDataDir(dir), registry.WithSeed(seed))
}

func TestAssemble_Conservation(t *testing.T) {
	rc := newContext(t, 1)
	gen := generator(t, rc)
	a := New(DefaultOptions())

	for _, a155 := range []int{155, 157} {
		target := nuclide.New(nuclide.Gadolinium, a155)
		for i := 0; i < 300; i++ {
			rc.SetReaction(target)
			fs, err := a.Assemble(rc, Request{Projectile: thermal(), Target: target, Temperature: units.RoomTemperature}, gen)
			require.NoError(t, err)
			rc.ClearReaction()

			require.NotEmpty(t, fs.Secondaries)
			require.NotNil(t, fs.Recoil, "event %d", i)
			res := fs.Residual()
			assert.InDelta(t, 0, res.E(), 1e-6)
			assert.InDelta(t, 0, res.Px(), 1e-6)
			assert.InDelta(t, 0, res.Py(), 1e-6)
			assert.InDelta(t, 0, res.Pz(), 1e-6)

			assert.InDelta(t, fs.Recoil.Mass, kinematics.Invariant(fs.Recoil.P4), 1e-6, "recoil on mass shell")
			// photons also absorb the K binding left by conversion electrons
			assert.InDelta(t, 1, fs.Scale, 0.05)
			assert.Equal(t, StopAndKill, fs.Status)
		}
	}
}

func TestAssemble_RecoilIdentity(t *testing.T) {
	rc := newContext(t, 2)
	gen := generator(t, rc)
	target := nuclide.New(nuclide.Gadolinium, 157)

	fs, err := New(DefaultOptions()).Assemble(rc, Request{Projectile: thermal(), Target: target}, gen)
	require.NoError(t, err)
	require.NotNil(t, fs.Recoil)
	assert.Equal(t, nuclide.New(nuclide.Gadolinium, 158), fs.Recoil.Ion)
	assert.Equal(t, 1000641580, fs.Recoil.PDG)
	assert.Positive(t, fs.Recoil.KineticEnergy())
	assert.Len(t, fs.All(), len(fs.Secondaries)+1)
}

func TestAssemble_RecoilOmitted(t *testing.T) {
	rc := registry.New(config.DefaultModeConfig())
	src := &fixedSource{products: []cascade.Product{gamma(20, r3.Vec{X: 1})}}
	target := nuclide.New(1, 1)

	fs, err := New(Options{}).Assemble(rc, Request{Projectile: thermal(), Target: target}, src)
	require.NoError(t, err)
	assert.Nil(t, fs.Recoil)
	assert.Len(t, fs.Secondaries, 1)
	assert.Equal(t, StopAndKill, fs.Status)
	assert.Equal(t, 1.0, fs.Scale)
}

func TestAssemble_RecoilOmittedWithScaling(t *testing.T) {
	rc := registry.New(config.DefaultModeConfig())
	src := &fixedSource{products: []cascade.Product{gamma(20, r3.Vec{X: 1})}}
	target := nuclide.New(1, 1)

	fs, err := New(DefaultOptions()).Assemble(rc, Request{Projectile: thermal(), Target: target}, src)
	require.NoError(t, err)
	assert.Nil(t, fs.Recoil, "excess energy is not rescaled away")
	require.Len(t, fs.Secondaries, 1)
	assert.InDelta(t, 20, fs.Secondaries[0].KineticEnergy(), 1e-6)
	assert.Equal(t, 1.0, fs.Scale)
	assert.Equal(t, StopAndKill, fs.Status)
}

func TestOvercommitted(t *testing.T) {
	target := nuclide.New(nuclide.Gadolinium, 157)
	sn := nuclide.SeparationEnergy(target)
	m := nuclide.Mass(target.Compound())
	beta := r3.Vec{X: 3e-7, Y: -2e-7}
	initial := kinematics.Add(
		kinematics.FromKinetic(units.NeutronMass, units.ThermalEnergy, r3.Vec{Z: 1}),
		kinematics.FromVelocity(nuclide.Mass(target), beta),
	)
	kBinding := 50.24e-3
	electron := cascade.Product{Kind: cascade.Electron, P4: kinematics.FromKinetic(units.ElectronMass, 0.0796-kBinding, r3.Vec{Y: 1})}

	tests := []struct {
		name     string
		products []cascade.Product
		want     bool
	}{
		{"full cascade", []cascade.Product{gamma(sn-0.0796, r3.Vec{X: 1}), gamma(0.0796, r3.Vec{X: -1})}, false},
		{"conversion electron", []cascade.Product{gamma(sn-0.0796, r3.Vec{X: 1}), electron}, false},
		{"excess energy", []cascade.Product{gamma(sn+0.01, r3.Vec{X: 1})}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overcommitted(initial, beta, tt.products, m))
		})
	}
}

func TestAssemble_EmptyProducts(t *testing.T) {
	rc := newContext(t, 3)
	gen := generator(t, rc)
	target := nuclide.New(nuclide.Gadolinium, 156)

	fs, err := New(DefaultOptions()).Assemble(rc, Request{Projectile: thermal(), Target: target}, gen)
	require.NoError(t, err)
	assert.Empty(t, fs.Secondaries)
	require.NotNil(t, fs.Recoil, "recoil absorbs everything")
	sn := nuclide.SeparationEnergy(target)
	assert.InDelta(t, sn, fs.Recoil.KineticEnergy(), 1e-3)
	res := fs.Residual()
	assert.InDelta(t, 0, res.E(), 1e-9)
}

func TestAssemble_NoBoostAtRest(t *testing.T) {
	rc := registry.New(config.DefaultModeConfig())
	src := &fixedSource{products: []cascade.Product{gamma(1, r3.Vec{Z: 1}), gamma(2, r3.Vec{X: -1})}}
	target := nuclide.New(1, 1)

	fs, err := New(Options{}).Assemble(rc, Request{Projectile: Projectile{}, Target: target, Temperature: 0}, src)
	require.NoError(t, err)
	require.Len(t, fs.Secondaries, 2)
	assert.Equal(t, 1.0, fs.Secondaries[0].P4.E())
	assert.Equal(t, 2.0, fs.Secondaries[1].P4.E())
	assert.Equal(t, "gamma", fs.Secondaries[0].Name)
}

func TestAssemble_BoostPreservesMass(t *testing.T) {
	rc := registry.New(config.DefaultModeConfig(), registry.WithSeed(4))
	e := cascade.Product{Kind: cascade.Electron, P4: kinematics.FromKinetic(units.ElectronMass, 0.03, r3.Vec{Y: 1})}
	src := &fixedSource{products: []cascade.Product{e}}

	fs, err := New(Options{}).Assemble(rc, Request{Projectile: thermal(), Target: nuclide.New(64, 157), Temperature: 1e6}, src)
	require.NoError(t, err)
	require.Len(t, fs.Secondaries, 1)
	assert.InEpsilon(t, units.ElectronMass, kinematics.Invariant(fs.Secondaries[0].P4), 1e-9)
	assert.NotEqual(t, e.P4.Py(), fs.Secondaries[0].P4.Py())
}

func TestAssemble_UsesReactionSlot(t *testing.T) {
	rc := registry.New(config.DefaultModeConfig())
	src := &fixedSource{}

	rc.SetReaction(nuclide.New(64, 157))
	fs, err := New(DefaultOptions()).Assemble(rc, Request{Projectile: thermal(), Target: nuclide.New(64, 155)}, src)
	require.NoError(t, err)
	assert.Equal(t, nuclide.New(64, 157), fs.Target)
	assert.Equal(t, config.CaptureEnriched157, src.capture)
	assert.Equal(t, nuclide.New(64, 157), src.target)

	rc.ClearReaction()
	_, err = New(DefaultOptions()).Assemble(rc, Request{Projectile: thermal(), Target: nuclide.New(64, 155)}, src)
	require.NoError(t, err)
	assert.Equal(t, config.CaptureEnriched155, src.capture)
}

func TestAssemble_UnresolvedMassNumber(t *testing.T) {
	rc := registry.New(config.DefaultModeConfig())
	src := &fixedSource{}

	fs, err := New(DefaultOptions()).Assemble(rc, Request{Projectile: thermal(), Target: nuclide.Isotope{Z: 64}}, src)
	require.NoError(t, err)
	assert.Equal(t, config.CaptureNatural, src.capture)
	require.NotNil(t, fs.Recoil)
	assert.Equal(t, nuclide.New(64, 159), fs.Recoil.Ion)

	_, err = New(DefaultOptions()).Assemble(rc, Request{Projectile: thermal()}, src)
	assert.Error(t, err)
}

func TestScaleToShell(t *testing.T) {
	target := nuclide.New(64, 157)
	m := nuclide.Mass(target.Compound())
	initial := kinematics.Add(kinematics.AtRest(units.NeutronMass), kinematics.AtRest(nuclide.Mass(target)))
	sn := nuclide.SeparationEnergy(target)

	secs := []Secondary{
		{Particle: GammaDef, P4: kinematics.Massless(sn*0.6, r3.Vec{X: 1})},
		{Particle: GammaDef, P4: kinematics.Massless(sn*0.4, r3.Vec{Y: 1})},
	}
	s := scaleToShell(initial, secs, m)
	if s >= 1 || s < 0.999 {
		t.Fatalf("expected scale slightly below 1, got %.9f", s)
	}
	recoil := kinematics.Sub(initial, kinematics.Add(secs[0].P4, secs[1].P4))
	if d := math.Abs(kinematics.Invariant(recoil) - m); d > 1e-6 {
		t.Errorf("expected recoil on shell, off by %g MeV", d)
	}

	if got := scaleToShell(initial, nil, m); got != 1 {
		t.Errorf("expected 1 without photons, got %g", got)
	}
}
