package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "GSAU_CONFIG"
	dataDirEnv    = "GSAU_DATA_DIR"
	cacheDirEnv   = "GSAU_CACHE_DIR"
	storesFileEnv = "GSAU_STORES_FILE"
	logLevelEnv   = "GSAU_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Paths   PathsConfig   `yaml:"paths"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Quality QualityConfig `yaml:"quality"`
	History HistoryConfig `yaml:"history"`
}

// LoggingConfig controls console log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PathsConfig locates inputs and output artifacts on disk.
type PathsConfig struct {
	DataDir    string `yaml:"dataDir"`    // public/data artifacts
	CacheDir   string `yaml:"cacheDir"`   // raw response cache for offline runs
	StoresFile string `yaml:"storesFile"` // store registry (stores.json)
	RunArchive string `yaml:"runArchive"` // sqlite archive of run stats
}

// FetchConfig tunes the HTTP crawl behavior.
type FetchConfig struct {
	RequestDelay   time.Duration `yaml:"requestDelay"`
	ShopifyDelay   time.Duration `yaml:"shopifyDelay"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	MaxPages       int           `yaml:"maxPages"`
	Workers        int           `yaml:"workers"`
	UserAgent      string        `yaml:"userAgent"`
}

// QualityConfig sets data-quality floors and matching knobs.
type QualityConfig struct {
	MinPrice       float64 `yaml:"minPrice"`
	FuzzyThreshold int     `yaml:"fuzzyThreshold"`
	MaxTags        int     `yaml:"maxTags"`
}

// HistoryConfig controls the price-history ledger.
type HistoryConfig struct {
	RetentionDays int `yaml:"retentionDays"`
	// LowestStaleDays drops a vendor's carried-forward price from the
	// consolidated lowest series once it is older than this many days at a
	// given point. Zero keeps stale prices forever.
	LowestStaleDays int `yaml:"lowestStaleDays"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// A missing or unparsable file degrades to defaults; it never aborts the run.
func Load() Config {
	return LoadPath(os.Getenv(configPathEnv))
}

// LoadPath behaves like Load but reads the given file instead of $GSAU_CONFIG.
func LoadPath(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dataDirEnv); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv(cacheDirEnv); v != "" {
		c.Paths.CacheDir = v
	}
	if v := os.Getenv(storesFileEnv); v != "" {
		c.Paths.StoresFile = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Paths.DataDir != "" {
		base.Paths.DataDir = override.Paths.DataDir
	}
	if override.Paths.CacheDir != "" {
		base.Paths.CacheDir = override.Paths.CacheDir
	}
	if override.Paths.StoresFile != "" {
		base.Paths.StoresFile = override.Paths.StoresFile
	}
	if override.Paths.RunArchive != "" {
		base.Paths.RunArchive = override.Paths.RunArchive
	}

	if override.Fetch.RequestDelay > 0 {
		base.Fetch.RequestDelay = override.Fetch.RequestDelay
	}
	if override.Fetch.ShopifyDelay > 0 {
		base.Fetch.ShopifyDelay = override.Fetch.ShopifyDelay
	}
	if override.Fetch.RequestTimeout > 0 {
		base.Fetch.RequestTimeout = override.Fetch.RequestTimeout
	}
	if override.Fetch.MaxPages > 0 {
		base.Fetch.MaxPages = override.Fetch.MaxPages
	}
	if override.Fetch.Workers > 0 {
		base.Fetch.Workers = override.Fetch.Workers
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}

	if override.Quality.MinPrice > 0 {
		base.Quality.MinPrice = override.Quality.MinPrice
	}
	if override.Quality.FuzzyThreshold > 0 {
		base.Quality.FuzzyThreshold = override.Quality.FuzzyThreshold
	}
	if override.Quality.MaxTags > 0 {
		base.Quality.MaxTags = override.Quality.MaxTags
	}

	if override.History.RetentionDays > 0 {
		base.History.RetentionDays = override.History.RetentionDays
	}
	if override.History.LowestStaleDays > 0 {
		base.History.LowestStaleDays = override.History.LowestStaleDays
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Paths: PathsConfig{
			DataDir:    "public/data",
			CacheDir:   ".cache/raw",
			StoresFile: "stores.json",
			RunArchive: ".cache/runs.db",
		},
		Fetch: FetchConfig{
			RequestDelay:   time.Second,
			ShopifyDelay:   2 * time.Second,
			RequestTimeout: 30 * time.Second,
			MaxPages:       40,
			Workers:        5,
			UserAgent:      "GSAU.gg/1.0 (+https://gsau.gg; gel blaster price comparison for Australian retailers)",
		},
		Quality: QualityConfig{
			MinPrice:       0.50,
			FuzzyThreshold: 90,
			MaxTags:        10,
		},
		History: HistoryConfig{
			RetentionDays:   30,
			LowestStaleDays: 0,
		},
	}
}
