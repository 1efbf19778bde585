package sound

// Node is a named, stateful handle to a single sound-emitting resource.
// It carries no behavior of its own; the Controller drives its transitions
// and the Host produces the actual sound. A node is owned by exactly one of
// PreparedPool or TemporaryCache at any time; the Host only holds a
// non-owning attachment reference while the node is attached.
type Node struct {
	id     string
	state  NodeState
	loop   bool
	volume float64

	// cancelStop cancels the pending scheduled auto-stop, if any.
	// It must be invoked before the node is detached, evicted, paused,
	// or re-activated. See Controller.activate.
	cancelStop func()

	// generation increments on every activation and pause so that a
	// scheduled completion which lost the cancellation race can detect
	// it is stale and leave the node alone.
	generation uint64
}

// NewNode creates a detached node for id, neither playing nor paused.
// Nodes are normally created through PreparedPool.Prepare or the
// Controller's temporary path.
func NewNode(id string) *Node {
	return &Node{id: id, volume: 1.0}
}

// ID returns the logical sound name. Immutable after creation.
func (n *Node) ID() string { return n.id }

// State returns the node's current playback state.
func (n *Node) State() NodeState { return n.state }

// IsPlaying reports whether the node is actively emitting sound.
func (n *Node) IsPlaying() bool { return n.state == StatePlaying }

// IsPaused reports whether playback was explicitly paused.
func (n *Node) IsPaused() bool { return n.state == StatePaused }

// Loop reports whether playback auto-repeats.
func (n *Node) Loop() bool { return n.loop }

// Volume returns the last volume applied to the node.
func (n *Node) Volume() float64 { return n.volume }

// setState applies a transition, forcing it even if illegal so that
// teardown paths always converge; illegal edges never occur through the
// Controller, which checks canTransition in its own logic.
func (n *Node) setState(to NodeState) {
	n.state = to
}

// cancelPending cancels and forgets the scheduled auto-stop, if any.
func (n *Node) cancelPending() {
	if n.cancelStop != nil {
		n.cancelStop()
		n.cancelStop = nil
	}
}
