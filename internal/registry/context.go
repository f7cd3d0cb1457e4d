// Package registry holds the per-worker capture context: the mode
// configuration, the lazily built cascade generator, the worker's random
// source and logger, and the reaction handoff slot.
//
// A Context belongs to exactly one goroutine. Workers create their own with
// New and pass it down the reaction pipeline; nothing in this package is
// global.
package registry

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/opercjy/CPNR-modular-sim/internal/cascade"
	"github.com/opercjy/CPNR-modular-sim/internal/config"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
)

// Reaction is the handoff slot between the capture handler and the cascade
// selection: the isotope under reaction and its resolved capture mode.
type Reaction struct {
	Target      nuclide.Isotope
	CaptureMode config.CaptureMode
}

// Option customises a Context.
type Option func(*Context)

// WithSeed seeds the worker's random source.
func WithSeed(seed int64) Option {
	return func(c *Context) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand uses rng as the worker's random source.
func WithRand(rng *rand.Rand) Option {
	return func(c *Context) { c.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithLookup resolves the data directory through lookup instead of the
// process environment.
func WithLookup(lookup nucdata.LookupFunc) Option {
	return func(c *Context) { c.lookup = lookup }
}

// WithDataDir fixes the data directory, bypassing the environment.
func WithDataDir(dir string) Option {
	return func(c *Context) { c.dataDir = dir }
}

// WithGenerator installs a prebuilt generator. It is discarded like any
// other on the next configuration change.
func WithGenerator(g *cascade.Generator) Option {
	return func(c *Context) { c.gen = g }
}

// Context is the capture registry of one worker. It is not safe for
// concurrent use.
type Context struct {
	cfg      config.ModeConfig
	rng      *rand.Rand
	logger   *slog.Logger
	lookup   nucdata.LookupFunc
	dataDir  string
	gen      *cascade.Generator
	reaction Reaction
	builds   int
}

// New creates a worker context with configuration cfg.
func New(cfg config.ModeConfig, opts ...Option) *Context {
	c := &Context{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(1))
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Config returns a normalised snapshot of the current configuration.
func (c *Context) Config() config.ModeConfig { return c.cfg.Snapshot() }

// Set applies one key/value setting. Changing the configuration after the
// generator exists discards it; the next call to Generator rebuilds it from
// the new snapshot.
func (c *Context) Set(key, value string) error {
	next := c.cfg
	if err := next.Set(key, value); err != nil {
		return err
	}
	c.apply(next)
	return nil
}

// SetConfig replaces the whole configuration, with the same rebuild policy
// as Set.
func (c *Context) SetConfig(cfg config.ModeConfig) {
	c.apply(cfg)
}

func (c *Context) apply(next config.ModeConfig) {
	changed := next != c.cfg
	c.cfg = next
	if changed && c.gen != nil {
		c.logger.Info("capture configuration changed, cascade generator will be rebuilt",
			"capture_mode", next.Snapshot().CaptureMode.String(),
			"cascade_mode", next.Snapshot().CascadeMode.String(),
		)
		c.gen = nil
	}
}

// Generator returns the worker's cascade generator, building it on first
// use from the current configuration snapshot. Errors wrapping
// nucdata.ErrDataDirUnset or nucdata.ErrMissingData are fatal.
func (c *Context) Generator() (*cascade.Generator, error) {
	if c.gen != nil {
		return c.gen, nil
	}
	dir := c.dataDir
	if dir == "" {
		d, err := nucdata.DataDir(c.lookup)
		if err != nil {
			return nil, fmt.Errorf("registry: cascade generator: %w", err)
		}
		dir = d
	}
	snap := c.cfg.Snapshot()
	gen, err := cascade.Load(dir, snap, c.logger)
	if err != nil {
		return nil, fmt.Errorf("registry: cascade generator: %w", err)
	}
	c.gen = gen
	c.builds++
	if snap.Verbose >= 1 {
		c.logger.Info("cascade generator initialised",
			"data_dir", dir,
			"capture_mode", snap.CaptureMode.String(),
			"cascade_mode", snap.CascadeMode.String(),
		)
	}
	return gen, nil
}

// ResolveCaptureMode returns the capture mode to use for target. Under the
// natural mode 155Gd maps to enriched155 and 157Gd to enriched157; any other
// or unresolved isotope stays natural. Other global modes are returned as
// configured.
func (c *Context) ResolveCaptureMode(target nuclide.Isotope) config.CaptureMode {
	mode := c.cfg.Snapshot().CaptureMode
	if mode != config.CaptureNatural {
		return mode
	}
	if target.Z == nuclide.Gadolinium {
		switch target.A {
		case 155:
			return config.CaptureEnriched155
		case 157:
			return config.CaptureEnriched157
		}
	}
	return config.CaptureNatural
}

// SetReaction records target as the isotope under reaction.
func (c *Context) SetReaction(target nuclide.Isotope) Reaction {
	c.reaction = Reaction{Target: target, CaptureMode: c.ResolveCaptureMode(target)}
	return c.reaction
}

// Reaction returns the current handoff slot.
func (c *Context) Reaction() Reaction { return c.reaction }

// ClearReaction empties the handoff slot.
func (c *Context) ClearReaction() { c.reaction = Reaction{} }

// Rand returns the worker's random source.
func (c *Context) Rand() *rand.Rand { return c.rng }

// Logger returns the worker's logger.
func (c *Context) Logger() *slog.Logger { return c.logger }
