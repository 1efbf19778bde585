package sound

// NodeState represents the playback state of a single node.
type NodeState int

const (
	// StateIdle indicates the node is attached but silent.
	StateIdle NodeState = iota
	// StatePlaying indicates the node is actively emitting sound.
	StatePlaying
	// StatePaused indicates playback was explicitly paused.
	StatePaused
)

// String returns the string representation of the state.
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// validTransitions holds the legal state edges. Looping nodes simply never
// take the Playing->Idle edge on their own; it is still legal when forced.
var validTransitions = map[NodeState][]NodeState{
	StateIdle:    {StatePlaying, StatePaused},
	StatePlaying: {StateIdle, StatePaused},
	StatePaused:  {StatePlaying, StateIdle},
}

// canTransition reports whether moving from one state to another is legal.
func canTransition(from, to NodeState) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
