// Package bank stores the raw PCM samples the device host plays. Samples
// live in memory once loaded; a zstd-compressed disk layer with a gob
// index persists them across runs and is pruned oldest-first when it
// outgrows its capacity.
package bank

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

const indexFileName = "bank.index"

// Bank implements host.SampleSource.
type Bank struct {
	basePath string
	capacity int64 // Disk layer capacity in compressed bytes

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu      sync.RWMutex
	samples map[string][]byte
	index   map[string]*diskEntry
	logger  *log.Logger
	stats   Stats
}

// New creates a bank whose disk layer lives under basePath, capped at
// capacity compressed bytes. The directory is created if missing and any
// existing index is loaded.
func New(basePath string, capacity int64) (*Bank, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bank directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	b := &Bank{
		basePath: basePath,
		capacity: capacity,
		encoder:  encoder,
		decoder:  decoder,
		samples:  make(map[string][]byte),
		index:    make(map[string]*diskEntry),
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "bank"}),
	}

	if err := b.loadIndex(); err != nil {
		// Non-fatal: start with an empty disk layer.
		b.index = make(map[string]*diskEntry)
	}
	return b, nil
}

// Put stores a sample in memory and writes it through to the disk layer.
func (b *Bank) Put(name string, data []byte) error {
	compressed := b.encoder.EncodeAll(data, nil)
	if b.capacity > 0 && int64(len(compressed)) > b.capacity {
		return ErrSampleTooLarge
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples[name] = data

	path := filepath.Join(b.basePath, sanitize(name)+".zst")
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("failed to write sample %s: %w", name, err)
	}
	if old, ok := b.index[name]; ok {
		b.stats.DiskSize -= old.Size
	}
	b.index[name] = &diskEntry{
		Name:         name,
		FilePath:     path,
		Size:         int64(len(compressed)),
		OriginalSize: int64(len(data)),
		Timestamp:    time.Now(),
	}
	b.stats.DiskSize += int64(len(compressed))
	b.pruneLocked()

	b.logger.Debug("sample stored", "sound", name,
		"size", humanize.Bytes(uint64(len(data))),
		"compressed", humanize.Bytes(uint64(len(compressed))))
	return b.saveIndexLocked()
}

// Sample returns the PCM data for name, pulling it back from the disk
// layer if it is not resident. Implements host.SampleSource.
func (b *Bank) Sample(name string) ([]byte, error) {
	b.mu.RLock()
	data, ok := b.samples[name]
	b.mu.RUnlock()
	if ok {
		return data, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if data, ok := b.samples[name]; ok {
		return data, nil
	}

	entry, ok := b.index[name]
	if !ok {
		b.stats.Misses++
		return nil, fmt.Errorf("%w: %s", ErrUnknownSound, name)
	}
	compressed, err := os.ReadFile(entry.FilePath)
	if err != nil {
		b.stats.Misses++
		return nil, fmt.Errorf("failed to read sample %s: %w", name, err)
	}
	data, err = b.decoder.DecodeAll(compressed, nil)
	if err != nil {
		b.stats.Misses++
		return nil, fmt.Errorf("failed to decompress sample %s: %w", name, err)
	}
	b.samples[name] = data
	b.stats.DiskHits++
	return data, nil
}

// LoadDir loads every regular file in dir as a raw PCM sample named after
// its base name without extension. Returns the names loaded, in sorted
// order.
func (b *Bank) LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			b.logger.Warn("skipping unreadable sample", "file", entry.Name(), "err", err)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if err := b.Put(name, data); err != nil {
			b.logger.Warn("skipping sample", "sound", name, "err", err)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Contains reports whether a sample exists in memory or on disk.
func (b *Bank) Contains(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.samples[name]; ok {
		return true
	}
	_, ok := b.index[name]
	return ok
}

// Stats returns a snapshot of the bank metrics.
func (b *Bank) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	stats := b.stats
	stats.Samples = len(b.samples)
	for _, data := range b.samples {
		stats.MemorySize += int64(len(data))
	}
	return stats
}

// pruneLocked evicts the oldest disk entries until the layer fits its
// capacity. Memory copies survive pruning; only the persisted form goes.
func (b *Bank) pruneLocked() {
	if b.capacity <= 0 {
		return
	}
	for b.stats.DiskSize > b.capacity {
		oldest := b.oldestLocked()
		if oldest == nil {
			return
		}
		if err := os.Remove(oldest.FilePath); err != nil {
			b.logger.Debug("prune failed", "sound", oldest.Name, "err", err)
		}
		b.stats.DiskSize -= oldest.Size
		b.stats.Pruned++
		delete(b.index, oldest.Name)
	}
}

func (b *Bank) oldestLocked() *diskEntry {
	var oldest *diskEntry
	for _, entry := range b.index {
		if oldest == nil || entry.Timestamp.Before(oldest.Timestamp) {
			oldest = entry
		}
	}
	return oldest
}

func (b *Bank) loadIndex() error {
	f, err := os.Open(filepath.Join(b.basePath, indexFileName))
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	index := make(map[string]*diskEntry)
	if err := gob.NewDecoder(f).Decode(&index); err != nil {
		return fmt.Errorf("failed to decode bank index: %w", err)
	}
	b.index = index
	b.stats.DiskSize = 0
	for _, entry := range index {
		b.stats.DiskSize += entry.Size
	}
	return nil
}

func (b *Bank) saveIndexLocked() error {
	f, err := os.Create(filepath.Join(b.basePath, indexFileName))
	if err != nil {
		return fmt.Errorf("failed to create bank index: %w", err)
	}
	defer f.Close() //nolint:errcheck
	if err := gob.NewEncoder(f).Encode(b.index); err != nil {
		return fmt.Errorf("failed to encode bank index: %w", err)
	}
	return nil
}

// sanitize keeps sample file names filesystem-safe.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
