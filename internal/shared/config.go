package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// TokenEnvVar names the environment variable that overrides the configured SoundCloud token.
const TokenEnvVar = "SC_TOKEN"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Tools       ToolsConfig       `toml:"tools"`
	Pacing      PacingConfig      `toml:"pacing"`
	Matching    MatchingConfig    `toml:"matching"`
	Output      OutputConfig      `toml:"output"`
}

// CredentialsConfig contains provider credentials.
type CredentialsConfig struct {
	SoundCloud SoundCloudConfig `toml:"soundcloud"`
}

// SoundCloudConfig contains the SoundCloud OAuth token.
type SoundCloudConfig struct {
	Token string `toml:"token"`
}

// ToolsConfig locates external binaries.
type ToolsConfig struct {
	YTDLPPath string `toml:"ytdlp_path"`
}

// PacingConfig bounds the delays imposed on the remote service.
type PacingConfig struct {
	MinDelay        time.Duration `toml:"min_delay"`
	MaxDelay        time.Duration `toml:"max_delay"`
	RequestInterval time.Duration `toml:"request_interval"`
}

// MatchingConfig tunes reconciliation.
type MatchingConfig struct {
	TieBreak string `toml:"tie_break"`
}

// OutputConfig contains default artifact locations.
type OutputConfig struct {
	Dir        string `toml:"dir"`
	LogPath    string `toml:"log_path"`
	TracksCSV  string `toml:"tracks_csv"`
	LocalCSV   string `toml:"local_csv"`
	JoinedCSV  string `toml:"joined_csv"`
	MissingCSV string `toml:"missing_csv"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the pacing bounds and matching options.
func (c *Config) Validate() error {
	if c.Pacing.MinDelay < 0 || c.Pacing.MaxDelay < 0 || c.Pacing.RequestInterval < 0 {
		return fmt.Errorf("%w: pacing durations must not be negative", ErrInvalidConfig)
	}
	if c.Pacing.MinDelay > c.Pacing.MaxDelay {
		return fmt.Errorf("%w: pacing.min_delay (%s) exceeds pacing.max_delay (%s)",
			ErrInvalidConfig, c.Pacing.MinDelay, c.Pacing.MaxDelay)
	}
	switch c.Matching.TieBreak {
	case "", "similarity", "lowest":
	default:
		return fmt.Errorf("%w: unknown matching.tie_break %q", ErrInvalidConfig, c.Matching.TieBreak)
	}
	return nil
}

// ApplyEnv loads dotenv files (missing files are ignored) and applies environment overrides.
//
// Only the entry point calls this; everything downstream receives the resulting Config.
func (c *Config) ApplyEnv(files ...string) {
	_ = godotenv.Load(files...)
	if token := os.Getenv(TokenEnvVar); token != "" {
		c.Credentials.SoundCloud.Token = token
	}
}
