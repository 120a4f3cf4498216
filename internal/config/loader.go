package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("RANKSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("rankscrape")
		v.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".rankscrape"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("http.fetcher", cfg.HTTP.Fetcher)
	v.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	v.SetDefault("http.request_timeout", cfg.HTTP.RequestTimeout)
	v.SetDefault("http.max_retries", cfg.HTTP.MaxRetries)
	v.SetDefault("http.retry_delay", cfg.HTTP.RetryDelay)
	v.SetDefault("http.max_body_size", cfg.HTTP.MaxBodySize)
	v.SetDefault("http.follow_redirects", cfg.HTTP.FollowRedirects)
	v.SetDefault("http.max_redirects", cfg.HTTP.MaxRedirects)
	v.SetDefault("http.tls_insecure", cfg.HTTP.TLSInsecure)
	v.SetDefault("http.no_proxy", cfg.HTTP.NoProxy)

	v.SetDefault("scrape.page_size", cfg.Scrape.PageSize)
	v.SetDefault("scrape.start_page", cfg.Scrape.StartPage)
	v.SetDefault("scrape.max_pages", cfg.Scrape.MaxPages)
	v.SetDefault("scrape.max_rank", cfg.Scrape.MaxRank)
	v.SetDefault("scrape.keep_flag", cfg.Scrape.KeepFlag)
	v.SetDefault("scrape.keep_raw", cfg.Scrape.KeepRaw)
	v.SetDefault("scrape.politeness_delay", cfg.Scrape.PolitenessDelay)

	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.file", cfg.Output.File)
	v.SetDefault("output.to_sqlite", cfg.Output.ToSQLite)
	v.SetDefault("output.db_path", cfg.Output.DBPath)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
