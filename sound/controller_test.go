package sound_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/soundstage/internal/host"
	"github.com/dgnsrekt/soundstage/sound"
)

func newTestController(t *testing.T) (*sound.Controller, *host.MockHost) {
	t.Helper()
	mock := host.NewMockHost()
	c := sound.NewController(mock, sound.DefaultConfig())
	t.Cleanup(c.Shutdown)
	return c, mock
}

func TestPlayPreparedSoundActivatesFirstIdleNode(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSounds([]string{"laser", "laser", "laser"})

	c.PlayPreparedSound("laser", sound.DefaultPlayOptions())

	nodes := c.PreparedNodes("laser")
	if len(nodes) != 3 {
		t.Fatalf("expected 3 prepared nodes, got %d", len(nodes))
	}
	if !nodes[0].IsPlaying() {
		t.Error("first node should be playing")
	}
	if nodes[1].IsPlaying() || nodes[2].IsPlaying() {
		t.Error("only the first node should be playing")
	}
	if got := len(mock.EventsOf("play")); got != 1 {
		t.Errorf("expected 1 play event, got %d", got)
	}
}

func TestPlayPreparedSoundUsesNodesInInsertionOrder(t *testing.T) {
	c, _ := newTestController(t)
	c.PrepareSounds([]string{"drum", "drum"})

	c.PlayPreparedSound("drum", sound.DefaultPlayOptions())
	c.PlayPreparedSound("drum", sound.DefaultPlayOptions())

	nodes := c.PreparedNodes("drum")
	if !nodes[0].IsPlaying() || !nodes[1].IsPlaying() {
		t.Error("both nodes should be playing after two calls")
	}
}

func TestPlayPreparedSoundFallsThroughToCacheWhenBusy(t *testing.T) {
	c, _ := newTestController(t)
	c.PrepareSound("horn")
	c.PlayPreparedSound("horn", sound.DefaultPlayOptions())

	// Prepared instance busy: the second call goes to the cache.
	c.PlayPreparedSound("horn", sound.DefaultPlayOptions())

	if got := c.CacheStats().Size; got != 1 {
		t.Errorf("expected 1 cached node, got %d", got)
	}
}

func TestPlayPreparedSoundUnpreparedUsesCache(t *testing.T) {
	c, _ := newTestController(t)

	c.PlayPreparedSound("wind", sound.DefaultPlayOptions())

	if got := c.CacheStats().Size; got != 1 {
		t.Errorf("expected 1 cached node, got %d", got)
	}
}

func TestExhaustionWithDisabledCacheIsSilentNoOp(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSounds([]string{"x", "x"})

	c.PlayPreparedSound("x", sound.DefaultPlayOptions())
	c.PlayPreparedSound("x", sound.DefaultPlayOptions())
	c.DisableCachedSounds()

	before := len(mock.EventsOf("play"))
	c.PlayPreparedSound("x", sound.DefaultPlayOptions())

	if got := len(mock.EventsOf("play")); got != before {
		t.Errorf("expected no new play events, got %d extra", got-before)
	}
	if got := c.CacheStats().Size; got != 0 {
		t.Errorf("expected empty cache, got %d", got)
	}
}

func TestPausedResumeScanWakesEveryPausedNode(t *testing.T) {
	c, _ := newTestController(t)
	c.PrepareSounds([]string{"y", "y", "y"})
	c.PausePreparedSound("y")

	c.PlayPreparedSound("y", sound.DefaultPlayOptions())

	for i, node := range c.PreparedNodes("y") {
		if !node.IsPlaying() {
			t.Errorf("node %d should have resumed", i)
		}
	}
	// A resumed-paused call never falls through to the cache.
	if got := c.CacheStats().Size; got != 0 {
		t.Errorf("expected empty cache, got %d", got)
	}
}

func TestSoundIsPlayingAllMatchingSemantics(t *testing.T) {
	c, _ := newTestController(t)

	if c.SoundIsPlaying("a") {
		t.Error("zero prepared nodes should report not playing")
	}

	c.PrepareSounds([]string{"a", "a", "a"})
	if c.SoundIsPlaying("a") {
		t.Error("idle nodes should report not playing")
	}

	c.PlayPreparedSound("a", sound.DefaultPlayOptions())
	c.PlayPreparedSound("a", sound.DefaultPlayOptions())
	c.PlayPreparedSound("a", sound.DefaultPlayOptions())
	if !c.SoundIsPlaying("a") {
		t.Error("all three playing should report true")
	}

	c.PausePreparedSound("a")
	if c.SoundIsPlaying("a") {
		t.Error("paused nodes should report not playing")
	}
}

func TestPrepareRemoveRoundTrip(t *testing.T) {
	c, mock := newTestController(t)

	c.PrepareSound("z")
	nodes := c.PreparedNodes("z")
	if len(nodes) != 1 {
		t.Fatalf("expected 1 prepared node, got %d", len(nodes))
	}
	if !mock.IsAttached(nodes[0]) {
		t.Error("prepared node should be attached")
	}

	c.RemovePreparedSound("z")
	if got := len(c.PreparedNodes("z")); got != 0 {
		t.Errorf("expected empty lookup after remove, got %d", got)
	}
	if mock.IsAttached(nodes[0]) {
		t.Error("removed node should be detached")
	}
}

func TestRemoveNeverPreparedNameIsNoOp(t *testing.T) {
	c, _ := newTestController(t)
	c.RemovePreparedSound("ghost") // must not panic or error
}

func TestSetMaxConcurrentPlayback(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"three instances", 3, 3},
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t)
			c.PrepareSounds([]string{"s", "s"})
			old := c.PreparedNodes("s")

			c.SetMaxConcurrentPlayback("s", tt.count)

			nodes := c.PreparedNodes("s")
			if len(nodes) != tt.want {
				t.Fatalf("expected %d nodes, got %d", tt.want, len(nodes))
			}
			for _, fresh := range nodes {
				for _, prior := range old {
					if fresh == prior {
						t.Error("prior nodes must be replaced, not reused")
					}
				}
			}
		})
	}
}

func TestNonLoopingPlaybackSchedulesCompletion(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSound("beep")

	c.PlayPreparedSound("beep", sound.PlayOptions{Duration: 250 * time.Millisecond, Volume: 1.0})

	if got := mock.PendingScheduled(); got != 1 {
		t.Fatalf("expected 1 pending completion, got %d", got)
	}
	if !mock.FireNext() {
		t.Fatal("completion should fire")
	}

	node := c.PreparedNodes("beep")[0]
	if node.IsPlaying() {
		t.Error("node should be idle after natural stop")
	}
	if got := len(mock.EventsOf("stop")); got != 1 {
		t.Errorf("expected 1 stop event, got %d", got)
	}
}

func TestLoopingPlaybackNeverSchedulesCompletion(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSound("ambience")

	c.PlayPreparedSound("ambience", sound.PlayOptions{Duration: time.Second, Loop: true, Volume: 1.0})

	if got := mock.PendingScheduled(); got != 0 {
		t.Errorf("looping playback must not schedule a stop, got %d pending", got)
	}
	if !c.PreparedNodes("ambience")[0].Loop() {
		t.Error("node should be marked looping")
	}
}

func TestPauseCancelsPendingCompletion(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSound("chime")
	c.PlayPreparedSound("chime", sound.DefaultPlayOptions())

	c.PausePreparedSound("chime")

	if got := mock.PendingScheduled(); got != 0 {
		t.Errorf("pause should cancel the scheduled stop, got %d pending", got)
	}
	node := c.PreparedNodes("chime")[0]
	if !node.IsPaused() || node.IsPlaying() {
		t.Errorf("expected paused state, got %s", node.State())
	}
	if got := len(mock.EventsOf("pause")); got != 1 {
		t.Errorf("expected 1 pause event, got %d", got)
	}
}

func TestStaleCompletionLeavesReusedNodeAlone(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSound("riff")
	c.PlayPreparedSound("riff", sound.DefaultPlayOptions())

	// Pause and replay: the first completion is cancelled, the second
	// playback owns the node now.
	c.PausePreparedSound("riff")
	c.PlayPreparedSound("riff", sound.DefaultPlayOptions())

	// Only the second completion is still pending.
	if got := mock.PendingScheduled(); got != 1 {
		t.Fatalf("expected 1 pending completion, got %d", got)
	}
	mock.FireNext()
	if c.PreparedNodes("riff")[0].IsPlaying() {
		t.Error("second completion should stop the node")
	}
}

func TestEngineStartFailureIsAbsorbed(t *testing.T) {
	c, mock := newTestController(t)
	mock.EngineErr = errors.New("device unavailable")
	c.PrepareSound("alarm")

	c.PlayPreparedSound("alarm", sound.DefaultPlayOptions())

	// Best effort: playback proceeds despite the engine failure.
	if got := len(mock.EventsOf("play")); got != 1 {
		t.Errorf("expected playback to proceed, got %d play events", got)
	}
	if !c.PreparedNodes("alarm")[0].IsPlaying() {
		t.Error("node should be playing despite engine failure")
	}
}

func TestVolumeAppliesImmediately(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSound("voice")

	c.PlayPreparedSound("voice", sound.PlayOptions{Duration: time.Second, Volume: 0.5})

	node := c.PreparedNodes("voice")[0]
	if got := mock.Volume(node); got != 0.5 {
		t.Errorf("expected volume 0.5, got %f", got)
	}
}

func TestPlaySoundFileNamedBypassesPreparedPool(t *testing.T) {
	c, _ := newTestController(t)
	c.PrepareSound("click")

	c.PlaySoundFileNamed("click", sound.DefaultPlayOptions())

	if c.PreparedNodes("click")[0].IsPlaying() {
		t.Error("prepared node must not be used by the file path")
	}
	if got := c.CacheStats().Size; got != 1 {
		t.Errorf("expected 1 cached node, got %d", got)
	}
}

func TestPlaySoundFileNamedReusesIdleCachedNode(t *testing.T) {
	c, mock := newTestController(t)

	c.PlaySoundFileNamed("tap", sound.DefaultPlayOptions())
	mock.FireAll() // natural stop: cached node back to idle
	c.PlaySoundFileNamed("tap", sound.DefaultPlayOptions())

	stats := c.CacheStats()
	if stats.Size != 1 {
		t.Errorf("expected the cached node to be reused, size %d", stats.Size)
	}
	if stats.Hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", stats.Hits)
	}
}

func TestDisableCachedSoundsClearsImmediately(t *testing.T) {
	c, mock := newTestController(t)
	c.PlaySoundFileNamed("one", sound.DefaultPlayOptions())
	c.PlaySoundFileNamed("two", sound.DefaultPlayOptions())

	c.DisableCachedSounds()

	if got := c.CacheStats().Size; got != 0 {
		t.Errorf("expected empty cache, got %d", got)
	}
	if got := mock.AttachedCount(); got != 0 {
		t.Errorf("expected all cached nodes detached, got %d attached", got)
	}

	// Re-enabling does not repopulate; nodes come back lazily.
	c.EnableCachedSounds()
	if got := c.CacheStats().Size; got != 0 {
		t.Errorf("expected cache to stay empty after enable, got %d", got)
	}
}

func TestShutdownDetachesEverythingAndIsIdempotent(t *testing.T) {
	mock := host.NewMockHost()
	c := sound.NewController(mock, sound.DefaultConfig())
	c.PrepareSounds([]string{"a", "b"})
	c.PlaySoundFileNamed("c", sound.DefaultPlayOptions())

	c.Shutdown()
	c.Shutdown()

	if got := mock.AttachedCount(); got != 0 {
		t.Errorf("expected all nodes detached, got %d", got)
	}
	if got := mock.PendingScheduled(); got != 0 {
		t.Errorf("expected all completions cancelled, got %d pending", got)
	}

	// Operations after shutdown are silent no-ops.
	c.PrepareSound("late")
	c.PlayPreparedSound("late", sound.DefaultPlayOptions())
	if got := mock.AttachedCount(); got != 0 {
		t.Errorf("post-shutdown operations must not touch the host, got %d attached", got)
	}
}

func TestDefaultsAppliedToZeroOptions(t *testing.T) {
	c, mock := newTestController(t)
	c.PrepareSound("blip")

	c.PlayPreparedSound("blip", sound.PlayOptions{})

	node := c.PreparedNodes("blip")[0]
	if got := mock.Volume(node); got != 1.0 {
		t.Errorf("expected default volume 1.0, got %f", got)
	}
	events := mock.EventsOf("schedule")
	if len(events) != 1 || events[0].Delay != time.Second {
		t.Errorf("expected default 1s completion, got %+v", events)
	}
}
