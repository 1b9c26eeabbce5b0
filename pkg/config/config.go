package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/hiway/sfzmap/pkg/sfz"
)

// Preview configures the audition tones played for each mapped region.
type Preview struct {
	DurationMs int     `toml:"duration_ms"` // Tone length in milliseconds
	GapMs      int     `toml:"gap_ms"`      // Silence between tones
	Volume     float64 `toml:"volume"`      // Master volume (0.0 to 1.0)
}

// Validate checks if the preview configuration is valid.
func (p *Preview) Validate() error {
	if p.DurationMs <= 0 {
		return fmt.Errorf("preview duration must be positive")
	}
	if p.GapMs < 0 {
		return fmt.Errorf("preview gap cannot be negative")
	}
	if p.Volume < 0.0 || p.Volume > 1.0 {
		return fmt.Errorf("preview volume must be between 0.0 and 1.0, got %f", p.Volume)
	}
	return nil
}

// Server configures the key map inspection API.
type Server struct {
	Addr string `toml:"addr"`
}

// Config holds the complete sfzmap configuration.
type Config struct {
	LogLevel      string  `toml:"log_level"`
	OnOpenFailure string  `toml:"on_open_failure"` // "skip" or "abort"
	Preview       Preview `toml:"preview"`
	Server        Server  `toml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:      "info",
		OnOpenFailure: "skip",
		Preview: Preview{
			DurationMs: 250,
			GapMs:      50,
			Volume:     0.3,
		},
		Server: Server{Addr: "127.0.0.1:8321"},
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if _, err := sfz.ParseFailurePolicy(c.OnOpenFailure); err != nil {
		return fmt.Errorf("invalid on_open_failure: %w", err)
	}
	if err := c.Preview.Validate(); err != nil {
		return fmt.Errorf("invalid preview: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr cannot be empty")
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// FailurePolicy returns the parsed sample open failure policy.
func (c *Config) FailurePolicy() sfz.FailurePolicy {
	p, _ := sfz.ParseFailurePolicy(c.OnOpenFailure)
	return p
}

// LoadConfig reads and validates configuration from a TOML file. Keys the
// file leaves out keep their defaults.
func LoadConfig(path string, log zerolog.Logger) (*Config, error) {
	log.Debug().Str("path", path).Msg("Loading configuration file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().Msg("Configuration loaded and validated successfully")
	return &cfg, nil
}

// SearchPaths lists config files in order of increasing priority: system-wide,
// user (XDG), then the working directory.
func SearchPaths(log zerolog.Logger) []string {
	paths := []string{"/usr/local/etc/sfzmap.toml"}

	userPath, err := xdg.ConfigFile("sfzmap/sfzmap.toml")
	if err == nil {
		paths = append(paths, userPath)
	} else {
		log.Warn().Err(err).Msg("Could not determine user config directory")
	}

	return append(paths, "./sfzmap.toml")
}

// Discover merges every existing file from paths over the defaults, later
// files overriding earlier ones. Unreadable files are logged and skipped.
func Discover(paths []string, log zerolog.Logger) (*Config, error) {
	cfg := Default()
	for _, file := range paths {
		if _, err := os.Stat(file); err != nil {
			if !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", file).Msg("Error checking config file")
			}
			continue
		}
		if _, err := toml.DecodeFile(file, &cfg); err != nil {
			log.Warn().Err(err).Str("path", file).Msg("Failed to load config file")
			continue
		}
		log.Debug().Str("path", file).Msg("Loaded config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
