package sound

import (
	"fmt"
	"time"
)

// Config contains the tunable knobs of the pool. Fields carry yaml tags
// for file-based configuration and env tags for environment overrides.
type Config struct {
	// Cache settings
	CacheEnabled  bool `yaml:"cache_enabled" env:"SOUNDSTAGE_CACHE_ENABLED" envDefault:"true"`
	CacheCapacity int  `yaml:"cache_capacity" env:"SOUNDSTAGE_CACHE_CAPACITY" envDefault:"32"`

	// Playback defaults applied when a play request leaves them unset
	DefaultDuration time.Duration `yaml:"default_duration" env:"SOUNDSTAGE_DEFAULT_DURATION" envDefault:"1s"`
	DefaultVolume   float64       `yaml:"default_volume" env:"SOUNDSTAGE_DEFAULT_VOLUME" envDefault:"1.0"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CacheEnabled:    true,
		CacheCapacity:   DefaultCacheCapacity,
		DefaultDuration: time.Second,
		DefaultVolume:   1.0,
	}
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.CacheCapacity < 1 {
		return fmt.Errorf("cache capacity must be at least 1, got %d", c.CacheCapacity)
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("default duration must be positive, got %s", c.DefaultDuration)
	}
	if c.DefaultVolume < 0.0 || c.DefaultVolume > 1.0 {
		return fmt.Errorf("default volume must be between 0.0 and 1.0, got %f", c.DefaultVolume)
	}
	return nil
}

// normalized clamps out-of-range values to their defaults. The pool never
// rejects configuration; it degrades to the defensive floor.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.CacheCapacity < 1 {
		c.CacheCapacity = def.CacheCapacity
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = def.DefaultDuration
	}
	if c.DefaultVolume <= 0.0 || c.DefaultVolume > 1.0 {
		c.DefaultVolume = def.DefaultVolume
	}
	return c
}
