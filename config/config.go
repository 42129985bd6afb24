// Package config loads service configuration from an optional YAML file
// plus environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration.
type Config struct {
	HTTPPort           string
	DataDir            string
	DBPath             string
	HostBaseURL        string
	OGTemplatePath     string
	FetchTimeoutSec    int
	TrendingWindowDays int
	TrendingLimit      int
	VisitQueueSize     int
	WatchCatalogs      bool
	StrictConfig       bool
	Summary            SummaryConfig
}

// SummaryConfig captures the LLM summarization settings.
type SummaryConfig struct {
	Enabled bool
	Model   string
	BaseURL string
	APIKey  string
}

type fileConfig struct {
	HTTPPort           string            `json:"http_port" yaml:"http_port"`
	DataDir            string            `json:"data_dir" yaml:"data_dir"`
	DBPath             string            `json:"db_path" yaml:"db_path"`
	HostBaseURL        string            `json:"host_base_url" yaml:"host_base_url"`
	OGTemplatePath     string            `json:"og_template_path" yaml:"og_template_path"`
	FetchTimeoutSec    *int              `json:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
	TrendingWindowDays *int              `json:"trending_window_days" yaml:"trending_window_days"`
	TrendingLimit      *int              `json:"trending_limit" yaml:"trending_limit"`
	VisitQueueSize     *int              `json:"visit_queue_size" yaml:"visit_queue_size"`
	WatchCatalogs      *bool             `json:"watch_catalogs" yaml:"watch_catalogs"`
	Summary            summaryFileConfig `json:"summary" yaml:"summary"`
}

type summaryFileConfig struct {
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

const (
	defaultPort            = ":8000"
	defaultDataDir         = "data"
	defaultDBFile          = "explorer.db"
	defaultFetchTimeoutSec = 15
	defaultTrendingWindow  = 7
	defaultTrendingLimit   = 5
	minVisitQueueSize      = 16
	defaultVisitQueueSize  = 256
	maxVisitQueueSize      = 4096
	defaultSummaryModel    = "gpt-4o"
	defaultSummaryBaseURL  = "https://api.openai.com"
)

// Load reads configuration from CONFIG_PATH (default config/config.yaml)
// and environment variables, applying sane defaults. Outside strict mode
// a broken file logs and falls back to defaults.
func Load() (Config, error) {
	cfg := Config{
		FetchTimeoutSec:    defaultFetchTimeoutSec,
		TrendingWindowDays: defaultTrendingWindow,
		TrendingLimit:      defaultTrendingLimit,
		VisitQueueSize:     defaultVisitQueueSize,
		WatchCatalogs:      true,
		StrictConfig:       parseBoolEnv("STRICT_CONFIG"),
		Summary: SummaryConfig{
			Enabled: true,
			Model:   defaultSummaryModel,
			BaseURL: defaultSummaryBaseURL,
			APIKey:  os.Getenv("OPENAI_API_KEY"),
		},
	}

	configPath := getEnv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	fileCfg, fileErr := loadFileConfig(configPath)
	if fileErr != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("config load failed (%s): %w", configPath, fileErr)
		}
		log.Printf("config load failed (%s): %v (using defaults)", configPath, fileErr)
	}

	cfg.DataDir = firstNonEmpty(os.Getenv("DATA_DIR"), fileCfg.DataDir, defaultDataDir)
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	} else if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	} else {
		cfg.DBPath = filepath.Join(cfg.DataDir, defaultDBFile)
	}

	cfg.HTTPPort = firstNonEmpty(os.Getenv("HTTP_PORT"), fileCfg.HTTPPort, defaultPort)
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	cfg.HostBaseURL = strings.TrimRight(
		firstNonEmpty(os.Getenv("HOST"), fileCfg.HostBaseURL, "http://localhost"+cfg.HTTPPort), "/")
	cfg.OGTemplatePath = firstNonEmpty(os.Getenv("OG_TEMPLATE_PATH"), fileCfg.OGTemplatePath)

	if fileCfg.FetchTimeoutSec != nil && *fileCfg.FetchTimeoutSec > 0 {
		cfg.FetchTimeoutSec = *fileCfg.FetchTimeoutSec
	}
	if fileCfg.TrendingWindowDays != nil && *fileCfg.TrendingWindowDays > 0 {
		cfg.TrendingWindowDays = *fileCfg.TrendingWindowDays
	}
	if fileCfg.TrendingLimit != nil && *fileCfg.TrendingLimit > 0 {
		cfg.TrendingLimit = *fileCfg.TrendingLimit
	}
	if fileCfg.VisitQueueSize != nil {
		cfg.VisitQueueSize = *fileCfg.VisitQueueSize
	}
	if fileCfg.WatchCatalogs != nil {
		cfg.WatchCatalogs = *fileCfg.WatchCatalogs
	}
	if fileCfg.Summary.Enabled != nil {
		cfg.Summary.Enabled = *fileCfg.Summary.Enabled
	}
	if v := strings.TrimSpace(fileCfg.Summary.Model); v != "" {
		cfg.Summary.Model = v
	}
	if v := strings.TrimSpace(fileCfg.Summary.BaseURL); v != "" {
		cfg.Summary.BaseURL = v
	}

	if v, ok, err := parseIntEnv("FETCH_TIMEOUT_SEC"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid FETCH_TIMEOUT_SEC: %w", err)
		}
		log.Printf("invalid FETCH_TIMEOUT_SEC: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.FetchTimeoutSec = v
	}
	if v, ok, err := parseIntEnv("TRENDING_WINDOW_DAYS"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid TRENDING_WINDOW_DAYS: %w", err)
		}
		log.Printf("invalid TRENDING_WINDOW_DAYS: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.TrendingWindowDays = v
	}
	if v, ok, err := parseIntEnv("TRENDING_LIMIT"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid TRENDING_LIMIT: %w", err)
		}
		log.Printf("invalid TRENDING_LIMIT: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.TrendingLimit = v
	}
	if v, ok, err := parseIntEnv("VISIT_QUEUE_SIZE"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid VISIT_QUEUE_SIZE: %w", err)
		}
		log.Printf("invalid VISIT_QUEUE_SIZE: %v (using default)", err)
	} else if ok {
		cfg.VisitQueueSize = v
	}
	if cfg.VisitQueueSize < minVisitQueueSize {
		log.Printf("VISIT_QUEUE_SIZE raised to minimum %d (was %d)", minVisitQueueSize, cfg.VisitQueueSize)
		cfg.VisitQueueSize = minVisitQueueSize
	}
	if cfg.VisitQueueSize > maxVisitQueueSize {
		log.Printf("VISIT_QUEUE_SIZE capped at %d (was %d)", maxVisitQueueSize, cfg.VisitQueueSize)
		cfg.VisitQueueSize = maxVisitQueueSize
	}

	if v := os.Getenv("WATCH_CATALOGS"); strings.TrimSpace(v) != "" {
		cfg.WatchCatalogs = parseBoolEnv("WATCH_CATALOGS")
	}
	if v := os.Getenv("SUMMARY_ENABLED"); strings.TrimSpace(v) != "" {
		cfg.Summary.Enabled = parseBoolEnv("SUMMARY_ENABLED")
	}
	if v := strings.TrimSpace(os.Getenv("SUMMARY_MODEL")); v != "" {
		cfg.Summary.Model = v
	}
	cfg.Summary.BaseURL = firstNonEmpty(
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_API_BASE"),
		cfg.Summary.BaseURL,
	)

	if err := validateConfig(cfg); err != nil {
		if cfg.StrictConfig {
			return cfg, err
		}
		log.Printf("config validation failed: %v (continuing)", err)
	}
	return cfg, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("DATA_DIR is required")
	}
	if strings.TrimSpace(cfg.HTTPPort) == "" {
		return errors.New("HTTP_PORT is required")
	}
	if cfg.Summary.Enabled && strings.TrimSpace(cfg.Summary.APIKey) == "" {
		return errors.New("OPENAI_API_KEY is required when summaries are enabled")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseIntEnv(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	val, err := strconv.Atoi(raw)
	return val, true, err
}
