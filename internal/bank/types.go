package bank

import (
	"errors"
	"time"
)

// Common errors for bank operations.
var (
	// ErrUnknownSound is returned when no sample exists for a name.
	ErrUnknownSound = errors.New("unknown sound")

	// ErrSampleTooLarge is returned when a sample exceeds the disk
	// cache capacity.
	ErrSampleTooLarge = errors.New("sample too large for bank")
)

// Stats holds bank metrics.
type Stats struct {
	Samples    int   // Samples resident in memory
	MemorySize int64 // Bytes held in memory
	DiskSize   int64 // Compressed bytes on disk
	DiskHits   int64 // Loads served from the disk layer
	Misses     int64 // Lookups that found nothing anywhere
	Pruned     int64 // Disk entries removed to stay under capacity
}

// diskEntry describes one compressed sample in the on-disk index.
type diskEntry struct {
	Name         string
	FilePath     string
	Size         int64 // Compressed size on disk
	OriginalSize int64
	Timestamp    time.Time
}
