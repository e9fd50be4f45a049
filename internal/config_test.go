package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `{"accounting": {"timezone": "UTC"}}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.Store.PreferPrimary {
		t.Error("Expected prefer_primary to default to true")
	}
	if cfg.Store.TimeoutSeconds != 10 {
		t.Errorf("timeout_seconds = %d, want 10", cfg.Store.TimeoutSeconds)
	}
	if cfg.Store.MaxConnections != MaxStoreConnections {
		t.Errorf("max_connections = %d, want %d", cfg.Store.MaxConnections, MaxStoreConnections)
	}
	if cfg.Accounting.CategoryCacheSeconds != 60 {
		t.Errorf("category_cache_seconds = %d, want 60", cfg.Accounting.CategoryCacheSeconds)
	}
	if cfg.Events.Subject != "carniceria.accounting" {
		t.Errorf("events.subject = %q, want carniceria.accounting", cfg.Events.Subject)
	}
	if cfg.Events.NATSURL != "" {
		t.Errorf("events.nats_url = %q, want empty (disabled)", cfg.Events.NATSURL)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfigFile(t, `{
		"store": {
			"primary_url": "https://store.example.com",
			"primary_key": "key-123",
			"timeout_seconds": 3,
			"max_connections": 5
		},
		"accounting": {"timezone": "UTC", "category_cache_seconds": 0}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Store.PrimaryURL != "https://store.example.com" {
		t.Errorf("primary_url = %q", cfg.Store.PrimaryURL)
	}
	if cfg.StoreTimeout() != 3*time.Second {
		t.Errorf("StoreTimeout() = %s, want 3s", cfg.StoreTimeout())
	}
	if cfg.Store.MaxConnections != 5 {
		t.Errorf("max_connections = %d, want 5", cfg.Store.MaxConnections)
	}
	if cfg.CategoryCacheTTL() != 0 {
		t.Errorf("CategoryCacheTTL() = %s, want 0 (cache disabled)", cfg.CategoryCacheTTL())
	}
}

func TestLoadConfig_ConnectionCap(t *testing.T) {
	// Values above the hard cap are clamped; the cap protects the host from
	// descriptor exhaustion.
	path := writeConfigFile(t, `{
		"store": {"max_connections": 500},
		"accounting": {"timezone": "UTC"}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Store.MaxConnections != MaxStoreConnections {
		t.Errorf("max_connections = %d, want clamped to %d", cfg.Store.MaxConnections, MaxStoreConnections)
	}
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	path := writeConfigFile(t, `{"accounting": {"timezone": "Mars/Olympus_Mons"}}`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() with an invalid timezone should fail")
	}
}

func TestConfig_DurationFallbacks(t *testing.T) {
	var cfg Config

	if cfg.StoreTimeout() != 10*time.Second {
		t.Errorf("StoreTimeout() zero value = %s, want 10s", cfg.StoreTimeout())
	}

	cfg.Accounting.CategoryCacheSeconds = -5
	if cfg.CategoryCacheTTL() != 0 {
		t.Errorf("CategoryCacheTTL() negative value = %s, want 0", cfg.CategoryCacheTTL())
	}
}
