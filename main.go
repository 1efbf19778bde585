// Package main provides the entry point for the soundstage demo CLI,
// which plays a directory of raw PCM samples through the node pool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/soundstage/internal/bank"
	"github.com/dgnsrekt/soundstage/internal/host"
	"github.com/dgnsrekt/soundstage/sound"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	duration   time.Duration
	loop       bool
	volume     float64
	noCache    bool
	playGap    time.Duration

	rootCmd = &cobra.Command{
		Use:   "soundstage [DIR]",
		Short: "Play a directory of PCM samples through a pooled audio scene",
		Long: "Loads every sample in DIR into the bank, prepares a node per sound,\n" +
			"and plays them back through the prepared pool and temporary cache.",
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug || viper.GetBool("debug") {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: execute,
	}
)

// bankEnv holds the bank settings read from the environment, mirroring
// the SOUNDSTAGE_* override convention of sound.Config.
type bankEnv struct {
	Dir      string `env:"SOUNDSTAGE_BANK_DIR"`
	Capacity int64  `env:"SOUNDSTAGE_BANK_CAPACITY" envDefault:"67108864"` // 64 MB
}

func execute(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	cfg, err := sound.LoadConfigFromViper()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("no-cache") && noCache {
		cfg.CacheEnabled = false
	}
	if cmd.Flags().Changed("duration") {
		cfg.DefaultDuration = duration
	}
	if cmd.Flags().Changed("volume") {
		cfg.DefaultVolume = volume
	}

	benv, err := env.ParseAs[bankEnv]()
	if err != nil {
		return fmt.Errorf("error parsing bank environment: %w", err)
	}
	if benv.Dir == "" {
		scope := gap.NewScope(gap.User, "soundstage")
		cacheDir, err := scope.CacheDir()
		if err != nil {
			return fmt.Errorf("could not locate cache directory: %w", err)
		}
		benv.Dir = filepath.Join(cacheDir, "bank")
	}

	samples, err := bank.New(benv.Dir, benv.Capacity)
	if err != nil {
		return fmt.Errorf("unable to open sample bank: %w", err)
	}
	names, err := samples.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no samples found in %s", dir)
	}

	device := host.NewDeviceHost(host.DefaultDeviceConfig(), samples)
	defer device.Close()

	controller := sound.NewController(device, cfg)
	defer controller.Shutdown()

	controller.PrepareSounds(names)
	opts := sound.PlayOptions{
		Duration: cfg.DefaultDuration,
		Loop:     loop,
		Volume:   cfg.DefaultVolume,
	}
	for _, name := range names {
		log.Info("playing", "sound", name, "duration", opts.Duration, "loop", opts.Loop)
		controller.PlayPreparedSound(name, opts)
		time.Sleep(opts.Duration + playGap)
	}

	stats := controller.CacheStats()
	log.Debug("cache",
		"size", stats.Size, "capacity", stats.Capacity,
		"hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	return nil
}

func main() {
	log.SetReportTimestamp(false)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().DurationVarP(&duration, "duration", "t", time.Second, "playback duration per sound")
	rootCmd.Flags().BoolVarP(&loop, "loop", "l", false, "loop each sound instead of auto-stopping")
	rootCmd.Flags().Float64VarP(&volume, "volume", "v", 1.0, "playback volume (0.0 to 1.0)")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the temporary sound cache")
	rootCmd.Flags().DurationVar(&playGap, "gap", 100*time.Millisecond, "silence between sounds")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("sound.default_duration", rootCmd.Flags().Lookup("duration"))
	_ = viper.BindPFlag("sound.default_volume", rootCmd.Flags().Lookup("volume"))

	viper.SetDefault("sound.cache_enabled", true)
	viper.SetDefault("sound.cache_capacity", sound.DefaultCacheCapacity)

	rootCmd.AddCommand(configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "soundstage")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "soundstage")}, dirs...)
	}
	if c := os.Getenv("SOUNDSTAGE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("soundstage")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("soundstage")
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("could not read configuration", "err", err)
		}
	}
}
