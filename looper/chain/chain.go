package chain

import (
	"errors"
	"slices"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-looper/looper/effect"
)

// ErrMissingNode reports an edit naming a node id the chain does not hold.
// Edits carrying it are ignored.
var ErrMissingNode = errors.New("effect chain: no such node")

// resampleQuality is the beep resampler quality used for the pitch rate.
const resampleQuality = 4

// Direction selects the neighbour a node is swapped with by Move.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}

	return "down"
}

// Chain is the ordered effect list of one track. It is not safe for
// concurrent use; the owning track drives it from the control loop.
type Chain struct {
	reg *effect.Registry
	ctx effect.Context
	log logrus.FieldLogger

	nodes  []*effect.Node
	nextID int

	// live route, nil while detached
	source beep.Streamer
	sink   *Gain

	resampler *beep.Resampler
	resampled beep.Streamer
}

// New returns an empty chain realizing stages through reg. A nil reg uses
// effect.DefaultRegistry and a nil log the standard logger.
func New(reg *effect.Registry, ctx effect.Context, log logrus.FieldLogger) *Chain {
	if reg == nil {
		reg = effect.DefaultRegistry()
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Chain{reg: reg, ctx: ctx, log: log, nextID: 1}
}

// Len returns the number of nodes, bypassed ones included.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Nodes returns a snapshot of the chain in processing order.
func (c *Chain) Nodes() []effect.Info {
	out := make([]effect.Info, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = n.Info()
	}

	return out
}

// Node returns the snapshot of node id.
func (c *Chain) Node(id int) (effect.Info, bool) {
	i := c.index(id)
	if i < 0 {
		return effect.Info{}, false
	}

	return c.nodes[i].Info(), true
}

// Attached reports whether the chain currently feeds a live sink.
func (c *Chain) Attached() bool {
	return c.sink != nil
}

// Add appends a node of type t with catalog defaults and returns its id.
// Unknown types are ignored.
func (c *Chain) Add(t effect.Type) (int, bool) {
	n, err := effect.NewNode(c.nextID, t)
	if err != nil {
		c.log.WithError(err).WithField("type", int(t)).Debug("effect add ignored")
		return 0, false
	}

	c.nextID++
	c.nodes = append(c.nodes, n)

	c.log.WithFields(logrus.Fields{"node": n.ID, "type": t.String()}).Debug("effect added")
	c.rewireIfAttached()

	return n.ID, true
}

// Remove deletes node id and disposes its stage.
func (c *Chain) Remove(id int) bool {
	i := c.index(id)
	if i < 0 {
		c.missing("remove", id)
		return false
	}

	n := c.nodes[i]
	c.nodes = slices.Delete(c.nodes, i, i+1)

	// the new path must be live before the stage loses its input
	c.rewireIfAttached()
	n.Dispose()

	c.log.WithFields(logrus.Fields{"node": id, "type": n.Type.String()}).Debug("effect removed")

	return true
}

// Move swaps node id with its neighbour in direction dir. Moving the first
// node up or the last node down changes nothing.
func (c *Chain) Move(id int, dir Direction) bool {
	i := c.index(id)
	if i < 0 {
		c.missing("move", id)
		return false
	}

	j := i - 1
	if dir == Down {
		j = i + 1
	}

	if j < 0 || j >= len(c.nodes) {
		return false
	}

	c.nodes[i], c.nodes[j] = c.nodes[j], c.nodes[i]

	c.log.WithFields(logrus.Fields{"node": id, "dir": dir.String()}).Debug("effect moved")
	c.rewireIfAttached()

	return true
}

// ToggleBypass flips the bypass flag of node id. The node keeps its position
// and parameters.
func (c *Chain) ToggleBypass(id int) bool {
	i := c.index(id)
	if i < 0 {
		c.missing("bypass", id)
		return false
	}

	n := c.nodes[i]
	n.Bypass = !n.Bypass

	c.log.WithFields(logrus.Fields{"node": id, "bypass": n.Bypass}).Debug("effect bypass toggled")
	c.rewireIfAttached()

	return true
}

// SetParam updates one parameter of node id. A realized stage is
// reconfigured in place; a pitch change re-applies the playback rate.
func (c *Chain) SetParam(id int, name string, value float64) bool {
	i := c.index(id)
	if i < 0 {
		c.missing("set", id)
		return false
	}

	n := c.nodes[i]

	var err error

	set := func() { err = n.Set(c.ctx, name, value) }
	if c.sink != nil {
		c.sink.Locked(set)
	} else {
		set()
	}

	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"node": id, "param": name}).Debug("effect param ignored")
		return false
	}

	if n.Type == effect.TypePitch && !n.Bypass {
		c.rewireIfAttached()
	}

	return true
}

// PlaybackRate returns the product of the rates of all active pitch nodes.
func (c *Chain) PlaybackRate() float64 {
	rate := 1.0

	for _, n := range c.nodes {
		if n.Type == effect.TypePitch && !n.Bypass {
			rate *= n.Rate()
		}
	}

	return rate
}

// Rewire tears the signal path down and rebuilds it from source through
// every wired node into sink. The chain stays attached to this route and
// later edits rebuild it again.
func (c *Chain) Rewire(source beep.Streamer, sink *Gain) {
	if c.sink != nil && c.sink != sink {
		c.sink.Replace(nil)
	}

	c.source = source
	c.sink = sink

	sink.Replace(c.rebuild)
}

// Detach disconnects the chain from its sink. Realized stages are kept for
// the next Rewire.
func (c *Chain) Detach() {
	if c.sink == nil {
		return
	}

	c.sink.Replace(func() beep.Streamer {
		c.disconnect()
		return nil
	})

	c.source = nil
	c.sink = nil
}

// Teardown detaches the chain and disposes every realized stage.
func (c *Chain) Teardown() {
	c.Detach()

	for _, n := range c.nodes {
		n.Dispose()
	}
}

func (c *Chain) rewireIfAttached() {
	if c.sink == nil {
		return
	}

	c.sink.Replace(c.rebuild)
}

// rebuild runs with the sink lock held and returns the new head.
func (c *Chain) rebuild() beep.Streamer {
	c.disconnect()

	if c.source == nil {
		return nil
	}

	head := c.rateStage(c.source)

	for _, n := range c.nodes {
		if !n.Wired() {
			continue
		}

		err := n.Realize(c.reg, c.ctx)
		if err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{"node": n.ID, "type": n.Type.String()}).
				Warn("effect stage unavailable, skipping")

			continue
		}

		head = n.Connect(head)
	}

	return head
}

func (c *Chain) disconnect() {
	for _, n := range c.nodes {
		n.Connect(nil)
	}
}

func (c *Chain) rateStage(source beep.Streamer) beep.Streamer {
	rate := c.PlaybackRate()
	if rate == 1 {
		c.resampler = nil
		c.resampled = nil

		return source
	}

	if c.resampler == nil || c.resampled != source {
		c.resampler = beep.ResampleRatio(resampleQuality, rate, source)
		c.resampled = source
	} else {
		c.resampler.SetRatio(rate)
	}

	return c.resampler
}

func (c *Chain) index(id int) int {
	return slices.IndexFunc(c.nodes, func(n *effect.Node) bool { return n.ID == id })
}

func (c *Chain) missing(op string, id int) {
	c.log.WithError(ErrMissingNode).WithFields(logrus.Fields{"node": id, "op": op}).Debug("effect edit ignored")
}
