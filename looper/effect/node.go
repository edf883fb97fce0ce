package effect

import (
	"fmt"

	"github.com/gopxl/beep"
)

// Node is one entry of an effect chain.
type Node struct {
	ID     int
	Type   Type
	Params Params
	Bypass bool

	stage Stage
}

// NewNode returns a node of type t with catalog defaults.
func NewNode(id int, t Type) (*Node, error) {
	p, err := Defaults(t)
	if err != nil {
		return nil, err
	}

	return &Node{ID: id, Type: t, Params: p}, nil
}

// Wired reports whether the node takes part in the audio path: it is not
// bypassed and not logical-only.
func (n *Node) Wired() bool {
	return !n.Bypass && n.Type != TypePitch
}

// Realized reports whether the node currently owns a stage.
func (n *Node) Realized() bool {
	return n.stage != nil
}

// Realize creates and configures the stage if the node has none yet.
// Pitch nodes never realize.
func (n *Node) Realize(reg *Registry, ctx Context) error {
	if n.stage != nil || n.Type == TypePitch {
		return nil
	}

	factory := reg.Lookup(n.Type)
	if factory == nil {
		return fmt.Errorf("%w: no stage for %s", ErrUnknownType, n.Type)
	}

	st, err := factory(ctx)
	if err != nil {
		return fmt.Errorf("effect: realize node %d (%s): %w", n.ID, n.Type, err)
	}

	err = st.Configure(ctx, n.Params)
	if err != nil {
		st.Dispose()
		return fmt.Errorf("effect: realize node %d (%s): %w", n.ID, n.Type, err)
	}

	n.stage = st

	return nil
}

// Connect feeds in into the realized stage and returns its output. An
// unrealized node passes in through unchanged.
func (n *Node) Connect(in beep.Streamer) beep.Streamer {
	if n.stage == nil {
		return in
	}

	return n.stage.Connect(in)
}

// Dispose releases the stage. The node may be realized again later.
func (n *Node) Dispose() {
	if n.stage == nil {
		return
	}

	n.stage.Dispose()
	n.stage = nil
}

// Set updates one parameter and reconfigures a realized stage in place.
func (n *Node) Set(ctx Context, name string, value float64) error {
	p, err := n.Params.With(name, value)
	if err != nil {
		return err
	}

	n.Params = p
	if n.stage == nil {
		return nil
	}

	return n.stage.Configure(ctx, p)
}

// Rate returns the playback-rate multiplier of a Pitch node, 1 otherwise.
func (n *Node) Rate() float64 {
	if p, ok := n.Params.(PitchParams); ok {
		return p.Rate()
	}

	return 1
}

// Info is a read-only view of a node.
type Info struct {
	ID       int
	Type     Type
	Params   Params
	Bypass   bool
	Realized bool
}

// Info returns a snapshot of n.
func (n *Node) Info() Info {
	return Info{ID: n.ID, Type: n.Type, Params: n.Params, Bypass: n.Bypass, Realized: n.stage != nil}
}
