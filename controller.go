package geosphere

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// State is the controller's build state.
type State int32

const (
	// Built means a Mesh exists and is servable.
	Built State = iota
	// Rebuilding means a new detail level has been requested and is being built.
	Rebuilding
)

func (s State) String() string {
	switch s {
	case Built:
		return "built"
	case Rebuilding:
		return "rebuilding"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Controller owns the current Mesh of one sphere and replaces it wholesale
// when a new detail level is requested. Radius and attribute are fixed at
// construction.
//
// Mesh may be called from any goroutine at any time; it always returns a
// complete Mesh. Rebuilds are serialized.
type Controller[A Attribute] struct {
	radius    float64
	attribute A
	opts      Options

	mu      sync.Mutex // held for the whole of a rebuild
	onSwap  []func(*Mesh)
	state   atomic.Int32
	current atomic.Pointer[Mesh]
}

// NewController builds the initial mesh. It fails with the same errors as
// Build and never returns a controller without a mesh.
func NewController[A Attribute](detail int, radius float64, attr A, opts ...Option) (*Controller[A], error) {
	c := &Controller[A]{
		radius:    radius,
		attribute: attr,
		opts:      buildOptions(opts),
	}
	m, err := build(detail, radius, attr, c.opts)
	if err != nil {
		return nil, err
	}
	c.current.Store(m)
	return c, nil
}

// Mesh returns the current mesh.
func (c *Controller[A]) Mesh() *Mesh {
	return c.current.Load()
}

// Detail returns the detail level of the current mesh.
func (c *Controller[A]) Detail() int {
	return c.current.Load().Detail
}

func (c *Controller[A]) Radius() float64 {
	return c.radius
}

func (c *Controller[A]) Attribute() A {
	return c.attribute
}

func (c *Controller[A]) State() State {
	return State(c.state.Load())
}

// OnSwap registers fn to run after every successful rebuild with the new
// mesh, typically to re-upload GPU buffers. Callbacks run on the rebuilding
// goroutine in registration order.
func (c *Controller[A]) OnSwap(fn func(*Mesh)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSwap = append(c.onSwap, fn)
}

// Rebuild constructs a brand-new mesh at detail from the stored radius and
// attribute and swaps it in as the current one. On error the current mesh
// is left untouched.
func (c *Controller[A]) Rebuild(detail int) (*Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(Rebuilding))
	defer c.state.Store(int32(Built))

	m, err := build(detail, c.radius, c.attribute, c.opts)
	if err != nil {
		return nil, fmt.Errorf("rebuild at detail %d: %w", detail, err)
	}

	old := c.current.Swap(m)
	c.opts.logf("Swapped mesh: detail %d -> %d", old.Detail, m.Detail)

	for _, fn := range c.onSwap {
		fn(m)
	}
	return m, nil
}
