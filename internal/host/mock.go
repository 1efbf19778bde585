package host

import (
	"sync"
	"time"

	"github.com/dgnsrekt/soundstage/sound"
)

// MockHost implements sound.Host for testing. It records every host
// interaction, keeps scheduled completions pending until a test fires
// them, and supports error injection for the engine-start path.
type MockHost struct {
	mu sync.Mutex

	attached map[*sound.Node]bool
	volumes  map[*sound.Node]float64

	engineRunning bool
	engineStarts  int

	// EngineErr, when set, is returned by every EnsureEngineRunning
	// call. Playback operations must still proceed afterwards.
	EngineErr error

	events    []HostEvent
	scheduled []*scheduledCall
}

// HostEvent records one interaction for test verification.
type HostEvent struct {
	Type   string // "attach", "detach", "play", "pause", "stop", "volume", "schedule"
	Node   *sound.Node
	Volume float64
	Delay  time.Duration
}

type scheduledCall struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

// NewMockHost creates an empty mock host.
func NewMockHost() *MockHost {
	return &MockHost{
		attached: make(map[*sound.Node]bool),
		volumes:  make(map[*sound.Node]float64),
	}
}

// Attach implements sound.Host.
func (m *MockHost) Attach(node *sound.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached[node] = true
	m.record(HostEvent{Type: "attach", Node: node})
}

// Detach implements sound.Host.
func (m *MockHost) Detach(node *sound.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attached, node)
	m.record(HostEvent{Type: "detach", Node: node})
}

// EnsureEngineRunning implements sound.Host. It counts start attempts and
// returns the injected error, if any.
func (m *MockHost) EnsureEngineRunning() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EngineErr != nil {
		return m.EngineErr
	}
	if !m.engineRunning {
		m.engineRunning = true
		m.engineStarts++
	}
	return nil
}

// Play implements sound.Host.
func (m *MockHost) Play(node *sound.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(HostEvent{Type: "play", Node: node})
}

// Pause implements sound.Host.
func (m *MockHost) Pause(node *sound.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(HostEvent{Type: "pause", Node: node})
}

// Stop implements sound.Host.
func (m *MockHost) Stop(node *sound.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(HostEvent{Type: "stop", Node: node})
}

// SetVolume implements sound.Host.
func (m *MockHost) SetVolume(node *sound.Node, volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes[node] = volume
	m.record(HostEvent{Type: "volume", Node: node, Volume: volume})
}

// Schedule implements sound.Host. The callback stays pending until the
// test calls FireNext or FireAll; cancel marks it dead either way.
func (m *MockHost) Schedule(d time.Duration, fn func()) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := &scheduledCall{delay: d, fn: fn}
	m.scheduled = append(m.scheduled, call)
	m.record(HostEvent{Type: "schedule", Delay: d})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		call.cancelled = true
	}
}

// FireNext fires the oldest pending completion, honoring FIFO scheduling
// order. It reports whether anything fired.
func (m *MockHost) FireNext() bool {
	m.mu.Lock()
	var next *scheduledCall
	for _, call := range m.scheduled {
		if !call.fired && !call.cancelled {
			next = call
			break
		}
	}
	if next == nil {
		m.mu.Unlock()
		return false
	}
	next.fired = true
	fn := next.fn
	m.mu.Unlock()

	// Fired outside the lock: the completion re-enters the controller.
	fn()
	return true
}

// FireAll fires every pending completion in scheduling order and returns
// how many fired.
func (m *MockHost) FireAll() int {
	fired := 0
	for m.FireNext() {
		fired++
	}
	return fired
}

// PendingScheduled returns the number of completions neither fired nor
// cancelled.
func (m *MockHost) PendingScheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := 0
	for _, call := range m.scheduled {
		if !call.fired && !call.cancelled {
			pending++
		}
	}
	return pending
}

// IsAttached reports whether the node is currently in the mock graph.
func (m *MockHost) IsAttached(node *sound.Node) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attached[node]
}

// AttachedCount returns the number of attached nodes.
func (m *MockHost) AttachedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attached)
}

// EngineStarts returns how many times the engine actually started.
func (m *MockHost) EngineStarts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engineStarts
}

// Volume returns the last volume applied to the node.
func (m *MockHost) Volume(node *sound.Node) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volumes[node]
}

// Events returns a copy of the recorded event history.
func (m *MockHost) Events() []HostEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]HostEvent, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOf returns the recorded events of one type, oldest first.
func (m *MockHost) EventsOf(eventType string) []HostEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []HostEvent
	for _, ev := range m.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// Reset clears the event history and pending completions but keeps
// attachments, so a test can zero its counters mid-scenario.
func (m *MockHost) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.scheduled = nil
}

func (m *MockHost) record(ev HostEvent) {
	m.events = append(m.events, ev)
}
