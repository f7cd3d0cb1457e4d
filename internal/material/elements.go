// Package material is the host-side description of detector media: a
// process-wide element table with dense indices and compound materials
// expressed as per-element number densities.
package material

import (
	"fmt"
	"sync"

	"github.com/opercjy/CPNR-modular-sim/internal/nuclide"
)

// ElementTable assigns dense indices to elements in registration order.
// Entries are only ever appended. It is safe for concurrent use.
type ElementTable struct {
	mu       sync.RWMutex
	elements []nuclide.Element
	byZ      map[int]int
}

func NewElementTable() *ElementTable {
	return &ElementTable{byZ: make(map[int]int)}
}

// Register returns the index of element z, appending it when new.
func (t *ElementTable) Register(z int) (int, error) {
	t.mu.RLock()
	idx, ok := t.byZ[z]
	t.mu.RUnlock()
	if ok {
		return idx, nil
	}

	el, ok := nuclide.Natural(z)
	if !ok {
		return -1, fmt.Errorf("material: no natural composition for Z=%d", z)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if idx, ok := t.byZ[z]; ok {
		return idx, nil
	}
	t.elements = append(t.elements, el)
	idx = len(t.elements) - 1
	t.byZ[z] = idx
	return idx, nil
}

// Index returns the index of element z if registered.
func (t *ElementTable) Index(z int) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, ok := t.byZ[z]
	return idx, ok
}

func (t *ElementTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.elements)
}

// At returns the element with index i.
func (t *ElementTable) At(i int) nuclide.Element {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.elements[i]
}

// Elements returns a copy of the registered elements in index order.
func (t *ElementTable) Elements() []nuclide.Element {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]nuclide.Element, len(t.elements))
	copy(out, t.elements)
	return out
}
