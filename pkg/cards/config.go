package cards

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, CARDSTATS_DATA_PATH etc.
const EnvPrefix = "CARDSTATS_"

// ConfigFileEnv names a YAML file layered over the defaults
const ConfigFileEnv = EnvPrefix + "CONFIG"

// CardsConfig contains everything a refresh or a stats run needs
type CardsConfig struct {
	// Storage
	DataPath  string `koanf:"data_path"`  // root of the per league / per team datasets
	CachePath string `koanf:"cache_path"` // where snapshots of unparseable pages are written

	// Source
	BaseURL     string        `koanf:"base_url"`     // prefix for relative links found on pages
	League      string        `koanf:"league"`       // key into Leagues
	Pause       time.Duration `koanf:"pause"`        // minimum gap between two teams
	HTTPTimeout time.Duration `koanf:"http_timeout"` // per request timeout
	CABundle    string        `koanf:"ca_bundle"`    // optional extra root certificates
	UserAgent   string        `koanf:"user_agent"`

	// Reconstruction
	CautionType      string `koanf:"caution_type"`      // event icon class counted as a caution
	SnapshotFailures bool   `koanf:"snapshot_failures"` // keep a markdown copy of detail pages that failed to parse

	// Observability
	MetricsFile string `koanf:"metrics_file"` // prometheus textfile, empty disables
	LogLevel    string `koanf:"log_level"`
	LogOutput   string `koanf:"log_output"` // c, f or b
	LogFile     string `koanf:"log_file"`
}

// DefaultCardsConfig returns the default configuration with all standard values
func DefaultCardsConfig() *CardsConfig {
	return &CardsConfig{
		DataPath:  "parquet_data",
		CachePath: ".cardstats/cache",

		BaseURL:     "https://fbref.com",
		League:      "italska_liga",
		Pause:       3 * time.Second,
		HTTPTimeout: 30 * time.Second,

		CautionType:      "yellow_card",
		SnapshotFailures: false,

		LogLevel:  "info",
		LogOutput: "c",
		LogFile:   "/tmp/cardstats.log",
	}
}

// LoadConfig layers, lowest precedence first:
//  1. DefaultCardsConfig
//  2. the YAML file at path, or at $CARDSTATS_CONFIG when path is empty
//  3. CARDSTATS_* environment variables (a .env file in the working dir is read first)
func LoadConfig(path string) (*CardsConfig, error) {
	_ = godotenv.Load()

	base := DefaultCardsConfig()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig ensures all configuration values are usable
func ValidateConfig(config *CardsConfig) error {
	if config.DataPath == "" {
		return fmt.Errorf("data_path must not be empty")
	}
	if config.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if _, err := LookupLeague(config.League); err != nil {
		return err
	}
	if config.Pause < 0 {
		return fmt.Errorf("pause must not be negative, got: %s", config.Pause)
	}
	if config.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got: %s", config.HTTPTimeout)
	}
	if config.CautionType == "" {
		return fmt.Errorf("caution_type must not be empty")
	}
	switch config.LogOutput {
	case "c", "f", "b":
	default:
		return fmt.Errorf("log_output must be one of c, f or b, got: %q", config.LogOutput)
	}
	return nil
}
