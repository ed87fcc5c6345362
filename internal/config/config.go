package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds service configuration from environment variables, with an
// optional YAML file (CONFIG_FILE) supplying base values that the
// environment overrides.
type AppConfig struct {
	// HistoryPath is the CSV file holding the observation log.
	HistoryPath string

	// AttributesPath is the externally curated city-attributes CSV.
	AttributesPath string

	// FetchTimeout bounds the single remote weather GET.
	FetchTimeout time.Duration

	// WttrBaseURL overrides the provider endpoint (used in tests).
	WttrBaseURL string

	// Tail is the default number of history rows shown after an update.
	Tail int

	Port string
}

type fileConfig struct {
	HistoryPath    string `yaml:"history_path"`
	AttributesPath string `yaml:"attributes_path"`
	FetchTimeout   string `yaml:"fetch_timeout"`
	WttrBaseURL    string `yaml:"wttr_base_url"`
	Tail           *int   `yaml:"tail"`
	Port           string `yaml:"port"`
}

const (
	defaultHistoryPath    = "weather_history.csv"
	defaultAttributesPath = "city_attributes.csv"
	defaultFetchTimeout   = "15s"
	defaultTail           = 5
	defaultPort           = "8080"
)

// Load reads configuration with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		HistoryPath:    defaultHistoryPath,
		AttributesPath: defaultAttributesPath,
		Tail:           defaultTail,
		Port:           defaultPort,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.HistoryPath = getenvDefault("HISTORY_PATH", cfg.HistoryPath)
	cfg.AttributesPath = getenvDefault("ATTRIBUTES_PATH", cfg.AttributesPath)
	cfg.WttrBaseURL = getenvDefault("WTTR_BASE_URL", cfg.WttrBaseURL)
	cfg.Tail = getenvInt("HISTORY_TAIL", cfg.Tail)
	cfg.Port = getenvDefault("PORT", cfg.Port)

	if timeoutStr := os.Getenv("FETCH_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		cfg.FetchTimeout = timeout
	} else if cfg.FetchTimeout == 0 {
		timeout, _ := time.ParseDuration(defaultFetchTimeout)
		cfg.FetchTimeout = timeout
	}

	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fc.HistoryPath != "" {
		cfg.HistoryPath = fc.HistoryPath
	}
	if fc.AttributesPath != "" {
		cfg.AttributesPath = fc.AttributesPath
	}
	if fc.FetchTimeout != "" {
		d, err := time.ParseDuration(fc.FetchTimeout)
		if err != nil {
			return fmt.Errorf("invalid fetch_timeout in config file: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if fc.WttrBaseURL != "" {
		cfg.WttrBaseURL = fc.WttrBaseURL
	}
	if fc.Tail != nil {
		cfg.Tail = *fc.Tail
	}
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
