package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# enable the temporary sound cache
sound:
  cache_enabled: true
  # cached nodes retained before FIFO eviction
  cache_capacity: 32
  # playback defaults applied when a play request leaves them unset
  default_duration: "1s"
  default_volume: 1.0

# enable debug logging
debug: false
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the configuration file, creating it if missing",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}
		c := viper.GetViper().ConfigFileUsed()
		data, err := os.ReadFile(c)
		if err != nil {
			return fmt.Errorf("unable to read configuration: %w", err)
		}
		fmt.Println("Configuration:", c)
		fmt.Println()
		fmt.Print(string(data))
		return nil
	},
}

// ensureConfigFile writes the default configuration to the standard
// location when no configuration file exists yet.
func ensureConfigFile() error {
	if c := viper.GetViper().ConfigFileUsed(); c != "" {
		return nil
	}

	configPath, err := defaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(configPath, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	}
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

func defaultConfigPath() (string, error) {
	if c := os.Getenv("SOUNDSTAGE_CONFIG_HOME"); c != "" {
		return filepath.Join(c, "soundstage.yml"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to locate config directory: %w", err)
	}
	return filepath.Join(configDir, "soundstage", "soundstage.yml"), nil
}
