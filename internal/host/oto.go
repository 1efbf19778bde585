package host

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/soundstage/sound"
)

// SampleSource resolves a sound name to raw PCM data in the device
// format. The bank package provides the standard implementation.
type SampleSource interface {
	Sample(name string) ([]byte, error)
}

// DeviceConfig contains the audio device parameters.
type DeviceConfig struct {
	SampleRate int // 44100 or 48000 Hz
	Channels   int // 1 = mono, 2 = stereo
}

// DefaultDeviceConfig returns CD-quality stereo output.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		SampleRate: 44100,
		Channels:   2,
	}
}

// DeviceHost implements sound.Host on top of oto. The oto context is
// created lazily by EnsureEngineRunning; each playing node owns one oto
// player fed from the sample source.
type DeviceHost struct {
	mu      sync.Mutex
	config  DeviceConfig
	samples SampleSource
	logger  *log.Logger

	context *oto.Context

	// attached is the set of nodes in the graph; streams keeps the PCM
	// readers alive for the duration of playback so the data cannot be
	// collected out from under oto.
	attached map[*sound.Node]bool
	players  map[*sound.Node]*oto.Player
	streams  map[*sound.Node]io.Reader
	volumes  map[*sound.Node]float64
}

// NewDeviceHost creates a host that resolves samples through src. The
// audio device is not opened until EnsureEngineRunning.
func NewDeviceHost(config DeviceConfig, src SampleSource) *DeviceHost {
	return &DeviceHost{
		config:   config,
		samples:  src,
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "host"}),
		attached: make(map[*sound.Node]bool),
		players:  make(map[*sound.Node]*oto.Player),
		streams:  make(map[*sound.Node]io.Reader),
		volumes:  make(map[*sound.Node]float64),
	}
}

// Attach adds a node to the graph. Playback resources are allocated
// lazily on the first Play.
func (h *DeviceHost) Attach(node *sound.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached[node] = true
}

// Detach removes a node from the graph and releases its player.
func (h *DeviceHost) Detach(node *sound.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closePlayer(node)
	delete(h.attached, node)
	delete(h.volumes, node)
}

// EnsureEngineRunning opens the audio device if it is not already open.
func (h *DeviceHost) EnsureEngineRunning() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.context != nil {
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   h.config.SampleRate,
		ChannelCount: h.config.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	h.context = ctx
	h.logger.Debug("audio device opened",
		"sample_rate", h.config.SampleRate, "channels", h.config.Channels)
	return nil
}

// Play begins emission for an attached node. A paused player resumes;
// otherwise a fresh player is built from the node's sample.
func (h *DeviceHost) Play(node *sound.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.attached[node] || h.context == nil {
		return
	}

	if player, ok := h.players[node]; ok {
		player.Play()
		return
	}

	data, err := h.samples.Sample(node.ID())
	if err != nil {
		h.logger.Warn("sample unavailable", "sound", node.ID(), "err", err)
		return
	}

	var stream io.Reader
	if node.Loop() {
		stream = &loopReader{data: data}
	} else {
		stream = bytes.NewReader(data)
	}

	player := h.context.NewPlayer(stream)
	if vol, ok := h.volumes[node]; ok {
		player.SetVolume(vol)
	}
	h.players[node] = player
	h.streams[node] = stream
	player.Play()
}

// Pause suspends emission, keeping the player so Play resumes in place.
func (h *DeviceHost) Pause(node *sound.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if player, ok := h.players[node]; ok {
		player.Pause()
	}
}

// Stop halts emission and drops the player; the next Play restarts the
// sample from the beginning.
func (h *DeviceHost) Stop(node *sound.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closePlayer(node)
}

// SetVolume applies a volume to the node, remembered across player
// rebuilds.
func (h *DeviceHost) SetVolume(node *sound.Node, volume float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volumes[node] = volume
	if player, ok := h.players[node]; ok {
		player.SetVolume(volume)
	}
}

// Schedule runs fn after d. The returned cancel stops the timer; a timer
// that already fired is a no-op to cancel.
func (h *DeviceHost) Schedule(d time.Duration, fn func()) (cancel func()) {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

// Close releases every player and the audio device reference.
func (h *DeviceHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for node := range h.players {
		h.closePlayer(node)
	}
	// oto contexts have no Close in v3; drop the reference and let the
	// process tear it down.
	h.context = nil
}

// closePlayer must be called with the lock held.
func (h *DeviceHost) closePlayer(node *sound.Node) {
	if player, ok := h.players[node]; ok {
		player.Pause()
		if err := player.Close(); err != nil {
			h.logger.Debug("player close failed", "sound", node.ID(), "err", err)
		}
		delete(h.players, node)
		delete(h.streams, node)
	}
}

// loopReader replays its PCM data forever, wrapping at the end of the
// buffer. oto keeps reading, so looping playback never reaches EOF.
type loopReader struct {
	data   []byte
	offset int
}

func (r *loopReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	total := 0
	for total < len(p) {
		n := copy(p[total:], r.data[r.offset:])
		total += n
		r.offset += n
		if r.offset >= len(r.data) {
			r.offset = 0
		}
	}
	return total, nil
}
