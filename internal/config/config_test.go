package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.HTTP.Fetcher != "http" {
		t.Errorf("expected http fetcher default, got %q", cfg.HTTP.Fetcher)
	}
	if cfg.Scrape.PageSize != 100 {
		t.Errorf("expected page size 100, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Output.Dir != "output-csv" {
		t.Errorf("expected output-csv dir, got %q", cfg.Output.Dir)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankscrape.yaml")
	yaml := `
http:
  user_agent: file-agent/1.0
scrape:
  page_size: 25
  politeness_delay: 2s
output:
  to_sqlite: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.HTTP.UserAgent != "file-agent/1.0" {
		t.Errorf("expected file user agent, got %q", cfg.HTTP.UserAgent)
	}
	if cfg.Scrape.PageSize != 25 {
		t.Errorf("expected page size 25, got %d", cfg.Scrape.PageSize)
	}
	if cfg.Scrape.PolitenessDelay != 2*time.Second {
		t.Errorf("expected 2s delay, got %s", cfg.Scrape.PolitenessDelay)
	}
	if !cfg.Output.ToSQLite {
		t.Error("expected to_sqlite from file")
	}
	// Untouched values keep their defaults.
	if cfg.HTTP.MaxRetries != 5 {
		t.Errorf("expected default max retries, got %d", cfg.HTTP.MaxRetries)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RANKSCRAPE_SCRAPE_PAGE_SIZE", "50")
	t.Setenv("RANKSCRAPE_HTTP_FETCHER", "browser")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Scrape.PageSize != 50 {
		t.Errorf("expected env page size 50, got %d", cfg.Scrape.PageSize)
	}
	if cfg.HTTP.Fetcher != "browser" {
		t.Errorf("expected env fetcher browser, got %q", cfg.HTTP.Fetcher)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad fetcher", func(c *Config) { c.HTTP.Fetcher = "carrier-pigeon" }},
		{"zero page size", func(c *Config) { c.Scrape.PageSize = 0 }},
		{"zero start page", func(c *Config) { c.Scrape.StartPage = 0 }},
		{"negative max rank", func(c *Config) { c.Scrape.MaxRank = -1 }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
		{"sqlite without path", func(c *Config) { c.Output.ToSQLite = true; c.Output.DBPath = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://example.org/ranking.aspx?id=205"); err != nil {
		t.Errorf("valid URL rejected: %v", err)
	}
	for _, bad := range []string{"ftp://example.org", "example.org/x", "https://"} {
		if err := ValidateURL(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
