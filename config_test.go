package gatito

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
site:
  name: Gatito
  url: https://gatito.example.com/
  page: index.html
business:
  name: Gatito Cocina
  telephone: "+34 600 123 456"
product:
  name: Chicken & Pumpkin Stew
  price: "12.50"
  priceCurrency: EUR
order:
  phone: "+34 600 123 456"
cache:
  maxSize: 50
  ttl: 2m
trackers:
  - name: gtag
    category: analytics
    src: https://www.googletagmanager.com/gtag/js?id=G-TEST
faq:
  - question: Do you deliver?
    answer: Within the city, every Saturday.
`

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvRedisURL, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "gatito.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Site.URL != "https://gatito.example.com" {
		t.Errorf("Site.URL = %q, trailing slash should be trimmed", cfg.Site.URL)
	}
	if cfg.Site.Page != filepath.Join(dir, "index.html") {
		t.Errorf("Site.Page = %q, want path relative to config", cfg.Site.Page)
	}
	if cfg.Product.URL != "https://gatito.example.com/" {
		t.Errorf("Product.URL = %q, want site URL", cfg.Product.URL)
	}
	if cfg.CacheTTL() != 2*time.Minute {
		t.Errorf("CacheTTL = %v, want 2m", cfg.CacheTTL())
	}
	if cfg.AnalyticsTimeout() != 10*time.Second {
		t.Errorf("AnalyticsTimeout = %v, want 10s", cfg.AnalyticsTimeout())
	}
	if cfg.Order.MaxQuantity != DefaultMaxQuantity || cfg.Order.Unit != DefaultUnit {
		t.Errorf("order defaults not applied: %+v", cfg.Order)
	}
	if len(cfg.Trackers) != 1 || cfg.Trackers[0].Category != ConsentAnalytics {
		t.Errorf("Trackers = %+v", cfg.Trackers)
	}
	if len(cfg.FAQ) != 1 {
		t.Errorf("FAQ = %+v", cfg.FAQ)
	}
	if cfg.ListenAddr() != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("cause should be os.ErrNotExist")
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "site: [unclosed"},
		{"missing site url", "order:\n  phone: '12345678'\n"},
		{"missing phone", "site:\n  url: https://a.example.com\n"},
		{"bad port", "server:\n  port: 70000\nsite:\n  url: https://a.example.com\norder:\n  phone: '12345678'\n"},
		{"bad ttl", "site:\n  url: https://a.example.com\norder:\n  phone: '12345678'\ncache:\n  ttl: soon\n"},
		{"unknown tracker category", "site:\n  url: https://a.example.com\norder:\n  phone: '12345678'\ntrackers:\n  - name: x\n    category: social\n    src: https://x.example.com/x.js\n"},
		{"tracker with both sources", "site:\n  url: https://a.example.com\norder:\n  phone: '12345678'\ntrackers:\n  - name: x\n    category: analytics\n    src: https://x.example.com/x.js\n    inline: x()\n"},
		{"tracker src not a URL", "site:\n  url: https://a.example.com\norder:\n  phone: '12345678'\ntrackers:\n  - name: x\n    category: analytics\n    src: https//x.example.com/x.js\n"},
		{"tracker src without scheme", "site:\n  url: https://a.example.com\norder:\n  phone: '12345678'\ntrackers:\n  - name: x\n    category: analytics\n    src: x.example.com/x.js\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *ConfigError, got %v", err)
			}
		})
	}
}

func TestParseConfig_RedisEnvOverride(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://cache:6379/1")
	cfg, err := ParseConfig([]byte("site:\n  url: https://a.example.com\norder:\n  phone: '12345678'\ncache:\n  redisURL: redis://localhost:6379\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.RedisURL != "redis://cache:6379/1" {
		t.Errorf("RedisURL = %q, env should win", cfg.Cache.RedisURL)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/gatito.yaml")
	if got := ConfigPath("site.yaml"); got != "site.yaml" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := ConfigPath(""); got != "/etc/gatito.yaml" {
		t.Errorf("env fallback, got %q", got)
	}
	t.Setenv(EnvConfig, "")
	if got := ConfigPath(""); got != "gatito.yaml" {
		t.Errorf("default, got %q", got)
	}
}

func TestConfig_OrderForm(t *testing.T) {
	cfg, err := ParseConfig([]byte("site:\n  url: https://a.example.com\norder:\n  phone: '+54 9 11 5555 0000'\n  unit: kg\n"))
	if err != nil {
		t.Fatal(err)
	}
	link, err := OrderLink(cfg.OrderForm(2))
	if err != nil {
		t.Fatalf("OrderLink failed: %v", err)
	}
	want := "https://wa.me/5491155550000?text=Hi%21%20I%27d%20like%20to%20order%202%20kg%20of%20homemade%20cat%20food."
	if link != want {
		t.Errorf("link = %q\nwant   %q", link, want)
	}
}
