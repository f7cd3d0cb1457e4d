package dispatch

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/opercjy/CPNR-modular-sim/internal/material"
	"github.com/opercjy/CPNR-modular-sim/internal/nucdata"
	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
)

// Entry is the dispatch record of one element.
type Entry struct {
	Index   int
	Element nuclide.Element
	XS      *nucdata.ElementXS
	Handler Handler
}

// Table is an immutable snapshot of the dispatch table, indexed by element
// index. It is safe for concurrent reads.
type Table struct {
	entries []Entry
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entry returns the record of element i.
func (t *Table) Entry(i int) (Entry, bool) {
	if i < 0 || i >= t.Len() {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Channel returns the cross-section record of element i, or nil.
func (t *Table) Channel(i int) *nucdata.ElementXS {
	e, ok := t.Entry(i)
	if !ok {
		return nil
	}
	return e.XS
}

// Handler returns the handler of element i, or nil.
func (t *Table) Handler(i int) Handler {
	e, ok := t.Entry(i)
	if !ok {
		return nil
	}
	return e.Handler
}

// Option customises a Builder.
type Option func(*Builder)

// WithDataDir fixes the data directory.
func WithDataDir(dir string) Option {
	return func(b *Builder) { b.dataDir = dir }
}

// WithLookup resolves the data directory through lookup.
func WithLookup(lookup nucdata.LookupFunc) Option {
	return func(b *Builder) { b.lookup = lookup }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithTargetZ routes element z to the custom handler instead of
// gadolinium.
func WithTargetZ(z int) Option {
	return func(b *Builder) { b.targetZ = z }
}

// Builder owns the process-wide dispatch table. Build is called from the
// setup phase; workers only ever read the published Table.
type Builder struct {
	mu       sync.Mutex
	current  atomic.Pointer[Table]
	elements *material.ElementTable
	custom   Handler
	generic  Handler
	targetZ  int
	dataDir  string
	lookup   nucdata.LookupFunc
	logger   *slog.Logger
}

func NewBuilder(elements *material.ElementTable, custom, generic Handler, opts ...Option) *Builder {
	b := &Builder{
		elements: elements,
		custom:   custom,
		generic:  generic,
		targetZ:  nuclide.Gadolinium,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Table returns the published table, nil before the first Build.
func (b *Builder) Table() *Table {
	return b.current.Load()
}

// Build extends the table with every element registered since the last
// build and publishes the result. With no new elements it returns the
// current table unchanged. An unset or missing data directory is fatal.
func (b *Builder) Build() (*Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.current.Load()
	known := b.elements.Elements()
	if cur != nil && cur.Len() == len(known) {
		return cur, nil
	}

	dir := b.dataDir
	if dir == "" {
		d, err := nucdata.DataDir(b.lookup)
		if err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
		dir = d
	}

	next := &Table{entries: make([]Entry, cur.Len(), len(known))}
	if cur != nil {
		copy(next.entries, cur.entries)
	}
	for i := cur.Len(); i < len(known); i++ {
		el := known[i]
		xs, err := nucdata.LoadElementXS(dir, el.Z)
		if err != nil {
			return nil, fmt.Errorf("dispatch: %s: %w", el.Symbol, err)
		}
		h := b.generic
		if el.Z == b.targetZ {
			h = b.custom
		}
		if !xs.HasData() {
			b.logger.Warn("no capture data for element", "element", el.Symbol)
		}
		next.entries = append(next.entries, Entry{Index: i, Element: el, XS: xs, Handler: h})
		b.logger.Debug("dispatch entry", "index", i, "element", el.Symbol, "handler", h.Name())
	}
	b.current.Store(next)
	return next, nil
}
