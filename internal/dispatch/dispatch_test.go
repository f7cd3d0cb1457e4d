package dispatch_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/dispatch"
	"github.com/opercjy/CPNR-modular-sim/internal/finalstate"
	"github.com/opercjy/CPNR-modular-sim/internal/material"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
	"github.com/opercjy/CPNR-modular-sim/internal/registry"
	"github.com/opercjy/CPNR-modular-sim/internal/units"
)

var _ = Describe("Builder", func() {
	var (
		dir      string
		elements *material.ElementTable
		custom   *dispatch.CustomHandler
		generic  *dispatch.GenericHandler
		builder  *dispatch.Builder
	)

	register := func(zs ...int) {
		for _, z := range zs {
			_, err := elements.Register(z)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		Expect(nucdata.WriteDefaults(dir)).To(Succeed())
		elements = material.NewElementTable()
		a := finalstate.New(finalstate.DefaultOptions())
		custom = dispatch.NewCustomHandler(a)
		generic = dispatch.NewGenericHandler(a)
		builder = dispatch.NewBuilder(elements, custom, generic, dispatch.WithDataDir(dir))
	})

	It("publishes nothing before the first build", func() {
		Expect(builder.Table()).To(BeNil())
		Expect(builder.Table().Len()).To(Equal(0))
	})

	It("routes gadolinium to the custom handler and the rest to the generic one", func() {
		register(1, 6, 64)
		table, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Len()).To(Equal(3))

		Expect(table.Handler(0)).To(BeIdenticalTo(generic))
		Expect(table.Handler(1)).To(BeIdenticalTo(generic))
		Expect(table.Handler(2)).To(BeIdenticalTo(custom))
		Expect(table.Channel(2).HasData()).To(BeTrue())
		Expect(table.Handler(3)).To(BeNil())
	})

	It("routes a configured element to the custom handler", func() {
		builder = dispatch.NewBuilder(elements, custom, generic, dispatch.WithDataDir(dir), dispatch.WithTargetZ(1))
		register(1, 64)
		table, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(table.Handler(0)).To(BeIdenticalTo(custom))
		Expect(table.Handler(1)).To(BeIdenticalTo(generic))
	})

	It("is a no-op when no elements were added", func() {
		register(1, 64)
		first, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())

		second, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(BeIdenticalTo(first))
		Expect(second.Len()).To(Equal(2))
	})

	It("only appends entries for new elements", func() {
		register(1, 64)
		first, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		before0, _ := first.Entry(0)
		before1, _ := first.Entry(1)

		register(8, 6)
		second, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Len()).To(Equal(4))

		after0, _ := second.Entry(0)
		after1, _ := second.Entry(1)
		Expect(after0.XS).To(BeIdenticalTo(before0.XS))
		Expect(after1.XS).To(BeIdenticalTo(before1.XS))
		Expect(after1.Handler).To(BeIdenticalTo(custom))

		e3, _ := second.Entry(3)
		Expect(e3.Element.Symbol).To(Equal("C"))
		Expect(e3.Index).To(Equal(3))

		// the old snapshot is untouched
		Expect(first.Len()).To(Equal(2))
	})

	It("gives elements without a data file an empty channel", func() {
		register(55)
		Expect(removeXS(dir, 55)).To(Succeed())
		table, err := builder.Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Channel(0).HasData()).To(BeFalse())
	})

	It("fails when the data directory is not configured", func() {
		register(1)
		b := dispatch.NewBuilder(elements, custom, generic, dispatch.WithLookup(func(string) (string, bool) { return "", false }))
		_, err := b.Build()
		Expect(err).To(MatchError(nucdata.ErrDataDirUnset))
		Expect(b.Table()).To(BeNil())
	})

	It("survives concurrent builds", func() {
		register(1, 6, 7, 8, 64)
		var wg sync.WaitGroup
		tables := make([]*dispatch.Table, 8)
		for i := range tables {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				t, err := builder.Build()
				Expect(err).NotTo(HaveOccurred())
				tables[i] = t
			}(i)
		}
		wg.Wait()
		for _, t := range tables {
			Expect(t).To(BeIdenticalTo(builder.Table()))
		}
	})
})

var _ = Describe("Handlers", func() {
	var (
		dir string
		rc  *registry.Context
		a   *finalstate.Assembler
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		Expect(nucdata.WriteDefaults(dir)).To(Succeed())
		rc = registry.New(config.DefaultModeConfig(), registry.WithDataDir(dir), registry.WithSeed(7))
		a = finalstate.New(finalstate.DefaultOptions())
	})

	req := func(target nuclide.Isotope) finalstate.Request {
		return finalstate.Request{
			Projectile:  finalstate.Projectile{KineticEnergy: units.ThermalEnergy, Direction: r3.Vec{Z: 1}},
			Target:      target,
			Temperature: units.RoomTemperature,
		}
	}

	It("emits one separation-energy gamma for a generic capture", func() {
		fs, err := dispatch.NewGenericHandler(a).Apply(rc, req(nuclide.New(1, 1)))
		Expect(err).NotTo(HaveOccurred())
		Expect(fs.Secondaries).To(HaveLen(1))
		Expect(fs.Secondaries[0].Name).To(Equal("gamma"))
		Expect(fs.Secondaries[0].KineticEnergy()).To(BeNumerically("~", 2.2246, 0.002))
		Expect(fs.Recoil).NotTo(BeNil())
		Expect(fs.Recoil.Ion).To(Equal(nuclide.New(1, 2)))
	})

	It("runs the cascade and clears the reaction slot for a custom capture", func() {
		fs, err := dispatch.NewCustomHandler(a).Apply(rc, req(nuclide.New(64, 157)))
		Expect(err).NotTo(HaveOccurred())
		Expect(fs.Secondaries).NotTo(BeEmpty())
		Expect(fs.CaptureMode).To(Equal(config.CaptureEnriched157))
		Expect(fs.Recoil.Ion).To(Equal(nuclide.New(64, 158)))
		Expect(rc.Reaction()).To(Equal(registry.Reaction{}))
	})

	It("propagates a fatal generator error", func() {
		bad := registry.New(config.DefaultModeConfig(), registry.WithDataDir(GinkgoT().TempDir()))
		_, err := dispatch.NewCustomHandler(a).Apply(bad, req(nuclide.New(64, 157)))
		Expect(err).To(MatchError(nucdata.ErrMissingData))
	})
})
