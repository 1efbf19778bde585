package sound

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// LoadConfigFromViper loads pool configuration from Viper under the
// "sound" key space, starting from defaults.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("sound.cache_enabled") {
		cfg.CacheEnabled = viper.GetBool("sound.cache_enabled")
	}
	if viper.IsSet("sound.cache_capacity") {
		cfg.CacheCapacity = viper.GetInt("sound.cache_capacity")
	}
	if viper.IsSet("sound.default_duration") {
		if d, err := time.ParseDuration(viper.GetString("sound.default_duration")); err == nil {
			cfg.DefaultDuration = d
		}
	}
	if viper.IsSet("sound.default_volume") {
		cfg.DefaultVolume = viper.GetFloat64("sound.default_volume")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid sound configuration: %w", err)
	}
	return cfg, nil
}

// LoadConfigFromEnv loads pool configuration from SOUNDSTAGE_* variables.
// Unset variables fall back to the envDefault tags, which mirror
// DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse sound environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid sound configuration: %w", err)
	}
	return cfg, nil
}
