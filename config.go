package gatito

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/gatito/validate"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig and the CLI.
const (
	EnvConfig   = "GATITO_CONFIG"
	EnvRedisURL = "GATITO_REDIS_URL"
)

// Config is the site configuration file.
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Site struct {
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
		Page string `yaml:"page"` // HTML page, relative to the config file
	} `yaml:"site"`

	Business BusinessConfig `yaml:"business"`
	Product  ProductConfig  `yaml:"product"`

	Order struct {
		Phone       string `yaml:"phone"`
		MaxQuantity int    `yaml:"maxQuantity"`
		Unit        string `yaml:"unit"`
		Template    string `yaml:"template"`
	} `yaml:"order"`

	Cache struct {
		MaxSize  int    `yaml:"maxSize"`
		TTL      string `yaml:"ttl"`
		RedisURL string `yaml:"redisURL"`

		ttl time.Duration
	} `yaml:"cache"`

	Analytics struct {
		Endpoint          string `yaml:"endpoint"`
		RequestsPerMinute int    `yaml:"requestsPerMinute"`
		Timeout           string `yaml:"timeout"`

		timeout time.Duration
	} `yaml:"analytics"`

	Trackers []Tracker `yaml:"trackers"`
	FAQ      []FAQItem `yaml:"faq"`
}

// CacheTTL returns the parsed cache.ttl.
func (c Config) CacheTTL() time.Duration { return c.Cache.ttl }

// AnalyticsTimeout returns the parsed analytics.timeout.
func (c Config) AnalyticsTimeout() time.Duration { return c.Analytics.timeout }

// ListenAddr returns the address the server binds to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}

// OrderForm returns an order form for quantity using the configured phone,
// unit and template.
func (c Config) OrderForm(quantity int) OrderForm {
	return OrderForm{
		Phone:       c.Order.Phone,
		Quantity:    quantity,
		Unit:        c.Order.Unit,
		Template:    c.Order.Template,
		MaxQuantity: c.Order.MaxQuantity,
	}
}

// ConfigPath returns flagValue, falling back to $GATITO_CONFIG and then
// "gatito.yaml".
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	return "gatito.yaml"
}

// LoadConfig reads and checks a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Message: "read " + path, Cause: err}
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return Config{}, err
	}
	if cfg.Site.Page != "" && !filepath.IsAbs(cfg.Site.Page) {
		cfg.Site.Page = filepath.Join(filepath.Dir(path), cfg.Site.Page)
	}
	return cfg, nil
}

// ParseConfig decodes YAML, applies defaults and checks required fields.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, &ConfigError{Message: "decode yaml", Cause: err}
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return Config{}, &ConfigError{Message: fmt.Sprintf("server.port %d out of range", cfg.Server.Port)}
	}

	cfg.Site.URL = strings.TrimRight(cfg.Site.URL, "/")
	if cfg.Site.URL == "" {
		return Config{}, &ConfigError{Message: "site.url is required"}
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = cfg.Business.Name
	}
	if cfg.Product.URL == "" {
		cfg.Product.URL = cfg.Site.URL + "/"
	}
	if cfg.Business.URL == "" {
		cfg.Business.URL = cfg.Site.URL + "/"
	}

	if cfg.Order.Phone == "" {
		return Config{}, &ConfigError{Message: "order.phone is required"}
	}
	if cfg.Order.MaxQuantity == 0 {
		cfg.Order.MaxQuantity = DefaultMaxQuantity
	}
	if cfg.Order.MaxQuantity < 0 {
		return Config{}, &ConfigError{Message: "order.maxQuantity must be positive"}
	}
	if cfg.Order.Unit == "" {
		cfg.Order.Unit = DefaultUnit
	}
	if cfg.Order.Template == "" {
		cfg.Order.Template = DefaultOrderTemplate
	}

	if cfg.Cache.TTL != "" {
		d, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil {
			return Config{}, &ConfigError{Message: "cache.ttl", Cause: err}
		}
		cfg.Cache.ttl = d
	}
	if env := os.Getenv(EnvRedisURL); env != "" {
		cfg.Cache.RedisURL = env
	}

	cfg.Analytics.timeout = 10 * time.Second
	if cfg.Analytics.Timeout != "" {
		d, err := time.ParseDuration(cfg.Analytics.Timeout)
		if err != nil {
			return Config{}, &ConfigError{Message: "analytics.timeout", Cause: err}
		}
		cfg.Analytics.timeout = d
	}

	for i, t := range cfg.Trackers {
		if t.Name == "" {
			return Config{}, &ConfigError{Message: fmt.Sprintf("trackers[%d].name is required", i)}
		}
		switch t.Category {
		case ConsentNecessary, ConsentAnalytics, ConsentMarketing:
		default:
			return Config{}, &ConfigError{Message: fmt.Sprintf("trackers[%d].category %q is unknown", i, t.Category)}
		}
		if (t.Src == "") == (t.Inline == "") {
			return Config{}, &ConfigError{Message: fmt.Sprintf("trackers[%d] needs exactly one of src or inline", i)}
		}
		if t.Src != "" && !validate.URL(t.Src) {
			return Config{}, &ConfigError{Message: fmt.Sprintf("trackers[%d].src %q is not a valid URL", i, t.Src)}
		}
	}

	return cfg, nil
}
