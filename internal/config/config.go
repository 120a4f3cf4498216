package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for rankscrape.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"    yaml:"http"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// HTTPConfig controls the page fetcher.
type HTTPConfig struct {
	Fetcher         string        `mapstructure:"fetcher"          yaml:"fetcher"` // http or browser
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"  yaml:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"      yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"      yaml:"retry_delay"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	FollowRedirects bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"    yaml:"max_redirects"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"     yaml:"tls_insecure"`
	NoProxy         bool          `mapstructure:"no_proxy"         yaml:"no_proxy"`
}

// ScrapeConfig controls pagination and record normalization.
type ScrapeConfig struct {
	PageSize        int           `mapstructure:"page_size"        yaml:"page_size"`
	StartPage       int           `mapstructure:"start_page"       yaml:"start_page"`
	MaxPages        int           `mapstructure:"max_pages"        yaml:"max_pages"` // 0 = unlimited
	MaxRank         int           `mapstructure:"max_rank"         yaml:"max_rank"`  // 0 = no cutoff
	KeepFlag        bool          `mapstructure:"keep_flag"        yaml:"keep_flag"`
	KeepRaw         bool          `mapstructure:"keep_raw"         yaml:"keep_raw"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
}

// OutputConfig controls the export sinks.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"       yaml:"dir"`
	File     string `mapstructure:"file"      yaml:"file"` // override auto-generated CSV name
	ToSQLite bool   `mapstructure:"to_sqlite" yaml:"to_sqlite"`
	DBPath   string `mapstructure:"db_path"   yaml:"db_path"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Fetcher:         "http",
			UserAgent:       "Mozilla/5.0 (compatible; rankscrape/1.0; +https://example.org)",
			RequestTimeout:  30 * time.Second,
			MaxRetries:      5,
			RetryDelay:      600 * time.Millisecond,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			FollowRedirects: true,
			MaxRedirects:    10,
		},
		Scrape: ScrapeConfig{
			PageSize:        100,
			StartPage:       1,
			PolitenessDelay: 900 * time.Millisecond,
		},
		Output: OutputConfig{
			Dir:    "output-csv",
			DBPath: "db/rankings.sqlite",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
