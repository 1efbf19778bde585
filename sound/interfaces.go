package sound

import (
	"time"
)

// Host is the external render-graph and engine collaborator that owns
// actual sound production. The core only decides which node plays; every
// audible effect goes through the Host. Implementations live in
// internal/host; tests inject mocks.
type Host interface {
	// Attach adds a node to the host's render graph.
	Attach(node *Node)

	// Detach removes a node from the render graph and releases any
	// playback resources the host holds for it.
	Detach(node *Node)

	// EnsureEngineRunning starts the underlying audio engine if it is
	// not already running. It is idempotent. Failures are logged by the
	// caller and never propagated to playback operations.
	EnsureEngineRunning() error

	// Play begins emitting sound for an attached node.
	Play(node *Node)

	// Pause suspends emission for an attached node.
	Pause(node *Node)

	// Stop halts emission for an attached node and rewinds it.
	Stop(node *Node)

	// SetVolume applies a volume in [0.0, 1.0] to an attached node.
	SetVolume(node *Node, volume float64)

	// Schedule runs fn after d on the host's own scheduling primitive.
	// The returned cancel func prevents fn from running if invoked
	// first; cancellation is always explicit, never assumed to happen
	// on detach. Completions scheduled with equal durations fire in
	// scheduling order.
	Schedule(d time.Duration, fn func()) (cancel func())
}

// PlayOptions controls a single play request.
type PlayOptions struct {
	Duration time.Duration // Scheduled stop for non-looping playback
	Loop     bool          // Repeat until paused or removed
	Volume   float64       // Applied immediately, 0.0 to 1.0
}

// DefaultPlayOptions returns the standard one-second, full-volume,
// non-looping request.
func DefaultPlayOptions() PlayOptions {
	return PlayOptions{
		Duration: time.Second,
		Volume:   1.0,
	}
}
