// Package sound manages a bounded pool of reusable sound-emitting nodes.
// Sounds are either prepared up front (long-lived, multiple instances per
// name for concurrent playback) or created on demand and retained in a
// fixed-capacity FIFO cache. The package decides which node instance plays
// a named sound; the Host collaborator produces the actual audio.
package sound

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Controller routes play requests to prepared or cached nodes and drives
// each node through its play, pause, and stop transitions.
//
// The original design is single-threaded; in Go the scheduled auto-stop
// fires on a timer goroutine, so one mutex serializes every public
// operation together with the completion callback. The pools are reached
// only through the Controller and carry no locking of their own.
type Controller struct {
	mu       sync.Mutex
	host     Host
	prepared *PreparedPool
	cache    *TemporaryCache

	config       Config
	logger       *log.Logger
	cacheEnabled bool
	closed       bool
}

// NewController creates a controller backed by the given host. Invalid
// config fields are clamped to their defaults rather than rejected.
func NewController(host Host, config Config) *Controller {
	config = config.normalized()
	return &Controller{
		host:         host,
		prepared:     NewPreparedPool(host),
		cache:        NewTemporaryCache(host, config.CacheCapacity),
		config:       config,
		logger:       log.NewWithOptions(os.Stderr, log.Options{Prefix: "sound"}),
		cacheEnabled: config.CacheEnabled,
	}
}

// PrepareSound creates one long-lived node for name.
func (c *Controller) PrepareSound(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.prepared.Prepare(name)
}

// PrepareSounds applies PrepareSound to each name in order.
func (c *Controller) PrepareSounds(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.prepared.PrepareAll(names)
}

// SetMaxConcurrentPlayback replaces the prepared nodes for name with
// exactly max(count, 1) fresh ones.
func (c *Controller) SetMaxConcurrentPlayback(name string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.prepared.SetMaxConcurrent(name, count)
}

// PlayPreparedSound plays name on a prepared node, falling back to the
// temporary cache when every prepared instance is busy. With no node
// available and the cache disabled, the call is a silent no-op.
//
// The prepared scan resumes every paused matching node in a single call
// and keeps scanning past each one; a first idle, unpaused node ends the
// call immediately. This wake-all-paused behavior is deliberate and must
// not be collapsed into the idle branch.
func (c *Controller) PlayPreparedSound(name string, opts PlayOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	opts = c.normalizeOptions(opts)

	nodes := c.prepared.Lookup(name)
	if len(nodes) > 0 {
		resumed := false
		for _, node := range nodes {
			if node.IsPlaying() {
				continue
			}
			if node.IsPaused() {
				c.activate(node, opts)
				resumed = true
				continue
			}
			c.activate(node, opts)
			return
		}
		if resumed || !c.cacheEnabled {
			return
		}
		c.playTemporary(name, opts)
		return
	}

	if !c.cacheEnabled {
		c.logger.Debug("no node available", "sound", name)
		return
	}
	c.playTemporary(name, opts)
}

// PlaySoundFileNamed plays name on a cached node, bypassing the prepared
// pool entirely. Intended for ad hoc one-off sounds.
func (c *Controller) PlaySoundFileNamed(name string, opts PlayOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.cacheEnabled {
		return
	}
	c.playTemporary(name, c.normalizeOptions(opts))
}

// PausePreparedSound pauses every prepared node matching name. Cached
// nodes are unaffected; an unprepared name is a no-op.
func (c *Controller) PausePreparedSound(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, node := range c.prepared.Lookup(name) {
		node.cancelPending()
		node.generation++
		node.setState(StatePaused)
		c.host.Pause(node)
	}
}

// SoundIsPlaying reports whether every prepared node matching name is
// currently playing. It returns false as soon as a matching node is found
// idle or paused, and false when no node matches at all.
func (c *Controller) SoundIsPlaying(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	nodes := c.prepared.Lookup(name)
	for _, node := range nodes {
		if !node.IsPlaying() {
			return false
		}
	}
	return len(nodes) > 0
}

// RemovePreparedSound detaches and discards every prepared node matching
// name, cancelling any pending completions.
func (c *Controller) RemovePreparedSound(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.prepared.Remove(name)
}

// RemoveEveryPreparedSound detaches and discards all prepared nodes.
func (c *Controller) RemoveEveryPreparedSound() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.prepared.RemoveAll()
}

// RemoveEveryCachedSound detaches and discards all cached nodes.
func (c *Controller) RemoveEveryCachedSound() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cache.Clear()
}

// EnableCachedSounds allows on-demand node creation. The cache starts
// empty; nodes are created lazily on the next temporary play.
func (c *Controller) EnableCachedSounds() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cacheEnabled = true
}

// DisableCachedSounds stops on-demand node creation and clears the cache
// immediately.
func (c *Controller) DisableCachedSounds() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cacheEnabled = false
	c.cache.Clear()
}

// CachedSoundsEnabled reports whether the temporary path is available.
func (c *Controller) CachedSoundsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cacheEnabled
}

// PreparedNodes returns a snapshot of the prepared nodes for name.
func (c *Controller) PreparedNodes(name string) []*Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	nodes := c.prepared.Lookup(name)
	out := make([]*Node, len(nodes))
	copy(out, nodes)
	return out
}

// CacheStats returns a snapshot of the temporary cache metrics.
func (c *Controller) CacheStats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Stats()
}

// Shutdown tears down both pools deterministically: every node is
// detached and every pending completion cancelled. The host is never used
// again afterwards. Shutdown is idempotent; the owner must call it on
// every exit path.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.prepared.RemoveAll()
	c.cache.Clear()
	c.closed = true
	c.logger.Debug("controller shut down")
}

// playTemporary reuses the oldest compatible cached node or creates a new
// one, inserting it (and possibly evicting the oldest entry) before
// activation.
func (c *Controller) playTemporary(name string, opts PlayOptions) {
	node := c.cache.FindAvailable(name)
	if node == nil {
		node = NewNode(name)
		c.cache.Insert(node)
	}
	c.activate(node, opts)
}

// activate transitions a node into Playing: any pending completion is
// cancelled first, volume applies immediately, the engine is started best
// effort, and non-looping playback schedules its own stop.
func (c *Controller) activate(node *Node, opts PlayOptions) {
	if !canTransition(node.state, StatePlaying) {
		return
	}
	node.cancelPending()
	node.generation++
	node.setState(StatePlaying)
	node.loop = opts.Loop
	node.volume = opts.Volume
	c.host.SetVolume(node, opts.Volume)
	if err := c.host.EnsureEngineRunning(); err != nil {
		// Best effort: playback proceeds as if the engine were up.
		c.logger.Error("audio engine failed to start", "sound", node.id, "err", err)
	}
	c.host.Play(node)

	if opts.Loop {
		return
	}
	gen := node.generation
	node.cancelStop = c.host.Schedule(opts.Duration, func() {
		c.completePlayback(node, gen)
	})
}

// completePlayback is the scheduled natural stop for non-looping
// playback. A completion that lost the cancellation race detects it is
// stale through the generation counter and the ownership index, and
// leaves the node alone.
func (c *Controller) completePlayback(node *Node, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || node.generation != gen || !node.IsPlaying() {
		return
	}
	if !c.prepared.Contains(node) && !c.cache.Contains(node) {
		return
	}
	node.cancelStop = nil
	node.setState(StateIdle)
	c.host.Stop(node)
}

func (c *Controller) normalizeOptions(opts PlayOptions) PlayOptions {
	if opts.Duration <= 0 {
		opts.Duration = c.config.DefaultDuration
	}
	if opts.Volume <= 0 {
		opts.Volume = c.config.DefaultVolume
	}
	if opts.Volume > 1.0 {
		opts.Volume = 1.0
	}
	return opts
}
