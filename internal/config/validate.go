package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.HTTP.Fetcher != "http" && cfg.HTTP.Fetcher != "browser" {
		return fmt.Errorf("http.fetcher must be 'http' or 'browser', got %q", cfg.HTTP.Fetcher)
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be > 0")
	}
	if cfg.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0, got %d", cfg.HTTP.MaxRetries)
	}
	if cfg.HTTP.MaxBodySize <= 0 {
		return fmt.Errorf("http.max_body_size must be > 0")
	}
	if cfg.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("http.max_redirects must be >= 0")
	}

	if cfg.Scrape.PageSize < 1 {
		return fmt.Errorf("scrape.page_size must be >= 1, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.StartPage < 1 {
		return fmt.Errorf("scrape.start_page must be >= 1, got %d", cfg.Scrape.StartPage)
	}
	if cfg.Scrape.MaxPages < 0 {
		return fmt.Errorf("scrape.max_pages must be >= 0, got %d", cfg.Scrape.MaxPages)
	}
	if cfg.Scrape.MaxRank < 0 {
		return fmt.Errorf("scrape.max_rank must be >= 0, got %d", cfg.Scrape.MaxRank)
	}
	if cfg.Scrape.PolitenessDelay < 0 {
		return fmt.Errorf("scrape.politeness_delay must be >= 0")
	}

	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if cfg.Output.ToSQLite && cfg.Output.DBPath == "" {
		return fmt.Errorf("output.db_path must not be empty when output.to_sqlite is set")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a scrape seed.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
