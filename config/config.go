package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BridgeConfig holds the external player settings.
type BridgeConfig struct {
	ShortTimeout   time.Duration `mapstructure:"shortTimeout"`
	LongTimeout    time.Duration `mapstructure:"longTimeout"`
	TimeoutBudget  time.Duration `mapstructure:"timeoutBudget"`
	KillGrace      time.Duration `mapstructure:"killGrace"`
	StderrMaxLines int           `mapstructure:"stderrMaxLines"`
	QueueSize      int           `mapstructure:"queueSize"`
}

type GameConfig struct {
	MaxTurns int `mapstructure:"maxTurns"`
}

type ResultsConfig struct {
	Dir    string `mapstructure:"dir"`
	SQLite string `mapstructure:"sqlite"`
}

type ReplayConfig struct {
	Dir string `mapstructure:"dir"`
}

// MetricsConfig controls the OTel counter export.
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	File     string        `mapstructure:"file"`
	Interval time.Duration `mapstructure:"interval"`
}

type RosterConfig struct {
	HumanToken string `mapstructure:"humanToken"`
	AIToken    string `mapstructure:"aiToken"`
}

// Settings is the typed view of the configuration.
type Settings struct {
	LogLevel string        `mapstructure:"logLevel"`
	LogFile  string        `mapstructure:"logFile"`
	Catalog  string        `mapstructure:"catalog"`
	Game     GameConfig    `mapstructure:"game"`
	Bridge   BridgeConfig  `mapstructure:"bridge"`
	Results  ResultsConfig `mapstructure:"results"`
	Replay   ReplayConfig  `mapstructure:"replay"`
	Roster   RosterConfig  `mapstructure:"roster"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")
	viper.SetDefault("catalog", "")

	viper.SetDefault("game.maxTurns", 300)

	viper.SetDefault("bridge.shortTimeout", time.Second)
	viper.SetDefault("bridge.longTimeout", 5*time.Second)
	viper.SetDefault("bridge.timeoutBudget", 30*time.Second)
	viper.SetDefault("bridge.killGrace", 500*time.Millisecond)
	viper.SetDefault("bridge.stderrMaxLines", 100)
	viper.SetDefault("bridge.queueSize", 10)

	viper.SetDefault("results.dir", "results")
	viper.SetDefault("results.sqlite", "")

	viper.SetDefault("replay.dir", "")

	viper.SetDefault("roster.humanToken", "human")
	viper.SetDefault("roster.aiToken", "ai")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.file", "")
	viper.SetDefault("metrics.interval", 30*time.Second)
}

// Load sets defaults, enables TERRITORY_* environment overrides and reads
// territory.yaml from configDir if it exists.
func Load(configDir string) error {
	SetDefaults()

	viper.SetEnvPrefix("TERRITORY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("territory")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Get decodes the current configuration.
func Get() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return s, nil
}
