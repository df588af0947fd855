package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PPStructureConfig points at the PP-Structure inference sidecar.
type PPStructureConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// TesseractConfig tunes the local Tesseract engine.
type TesseractConfig struct {
	Language string `yaml:"language"`
}

// ServerConfig holds configuration for the layout service.
type ServerConfig struct {
	Port           int               `yaml:"port"`
	MetricsAddr    string            `yaml:"metrics_addr"`
	APIKey         string            `yaml:"api_key"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	RequestTimeout time.Duration     `yaml:"request_timeout"`
	DrainTimeout   time.Duration     `yaml:"drain_timeout"`
	ConfigFile     string            `yaml:"-"`
	LogLevel       string            `yaml:"log_level"`
	LogJSON        bool              `yaml:"log_json"`
	RedisAddr      string            `yaml:"redis_addr"`
	CacheTTL       time.Duration     `yaml:"cache_ttl"`
	RenderDPI      int               `yaml:"render_dpi"`
	TempDir        string            `yaml:"temp_dir"`
	PdftoppmPath   string            `yaml:"pdftoppm_path"`
	DefaultEngine  string            `yaml:"default_engine"`
	PPStructure    PPStructureConfig `yaml:"ppstructure"`
	Tesseract      TesseractConfig   `yaml:"tesseract"`
}

// SetDefaults initializes c with built-in defaults.
func (c *ServerConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = fmt.Sprintf(":%d", c.Port)
	}
	if c.AllowedOrigins == nil {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Minute
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 30 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.RenderDPI == 0 {
		c.RenderDPI = 200
	}
	if c.PdftoppmPath == "" {
		c.PdftoppmPath = "pdftoppm"
	}
	if c.DefaultEngine == "" {
		c.DefaultEngine = "pp-structure"
	}
	if c.PPStructure.URL == "" {
		c.PPStructure.URL = "http://127.0.0.1:8866"
	}
	if c.PPStructure.Timeout == 0 {
		c.PPStructure.Timeout = 2 * time.Minute
	}
	if c.Tesseract.Language == "" {
		c.Tesseract.Language = "eng"
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath("layout.yaml")
	}
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *ServerConfig) ApplyEnv() {
	if v := GetEnv("CONFIG_FILE", ""); v != "" {
		c.ConfigFile = v
	}
	if v := GetEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := GetEnv("LOG_JSON", ""); v != "" {
		c.LogJSON = strings.EqualFold(v, "true") || v == "1"
	}
	if v := GetEnv("PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := GetEnv("METRICS_PORT", ""); v != "" {
		if strings.Contains(v, ":") {
			c.MetricsAddr = v
		} else {
			c.MetricsAddr = ":" + v
		}
	}
	if v := GetEnv("API_KEY", ""); v != "" {
		c.APIKey = v
	}
	if v := GetEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	if v := GetEnv("REDIS_ADDR", ""); v != "" {
		c.RedisAddr = v
	}
	if v := GetEnv("CACHE_TTL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheTTL = d
		}
	}
	if v := GetEnv("RENDER_DPI", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RenderDPI = n
		}
	}
	if v := GetEnv("TEMP_DIR", ""); v != "" {
		c.TempDir = v
	}
	if v := GetEnv("PDFTOPPM_PATH", ""); v != "" {
		c.PdftoppmPath = v
	}
	if v := GetEnv("DEFAULT_ENGINE", ""); v != "" {
		c.DefaultEngine = v
	}
	if v := GetEnv("PPSTRUCTURE_URL", ""); v != "" {
		c.PPStructure.URL = v
	}
	if v := GetEnv("PPSTRUCTURE_API_KEY", ""); v != "" {
		c.PPStructure.APIKey = v
	}
	if v := GetEnv("ENGINE_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PPStructure.Timeout = d
		}
	}
	if v := GetEnv("TESSERACT_LANG", ""); v != "" {
		c.Tesseract.Language = v
	}
	if v := GetEnv("REQUEST_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
	if v := GetEnv("DRAIN_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DrainTimeout = d
		}
	}
}

// BindFlags binds command line flags on fs using the current config values
// as defaults, so main can call fs.Parse after SetDefaults and ApplyEnv.
func (c *ServerConfig) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "layout service config file path")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	fs.BoolVar(&c.LogJSON, "log-json", c.LogJSON, "emit JSON log lines instead of console output")
	fs.IntVar(&c.Port, "port", c.Port, "HTTP listen port for the public API")
	fs.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port; defaults to the value of --port")
	fs.StringVar(&c.APIKey, "api-key", c.APIKey, "client API key required for parse requests; leave empty to disable auth")
	fs.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis connection URL for the parse result cache; empty disables caching")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "how long cached parse results are kept")
	fs.IntVar(&c.RenderDPI, "render-dpi", c.RenderDPI, "resolution used to rasterise PDF pages")
	fs.StringVar(&c.TempDir, "temp-dir", c.TempDir, "directory for rendered page images; defaults to the OS temp dir")
	fs.StringVar(&c.PdftoppmPath, "pdftoppm", c.PdftoppmPath, "path to the poppler pdftoppm binary")
	fs.StringVar(&c.DefaultEngine, "engine", c.DefaultEngine, "layout engine used when a request does not name one (pp-structure, tesseract)")
	fs.StringVar(&c.PPStructure.URL, "ppstructure-url", c.PPStructure.URL, "base URL of the PP-Structure inference backend")
	fs.StringVar(&c.PPStructure.APIKey, "ppstructure-api-key", c.PPStructure.APIKey, "bearer key sent to the PP-Structure backend")
	fs.DurationVar(&c.PPStructure.Timeout, "engine-timeout", c.PPStructure.Timeout, "per-page timeout for PP-Structure inference")
	fs.StringVar(&c.Tesseract.Language, "tesseract-lang", c.Tesseract.Language, "Tesseract language list, e.g. eng+chi_sim")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "maximum duration of a single parse request")
	fs.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "time to wait for in-flight requests on shutdown (0 to exit immediately)")
}

// LoadFile populates the config from a YAML file.
func (c *ServerConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// Validate reports settings the service cannot run with.
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RenderDPI < 36 || c.RenderDPI > 1200 {
		return fmt.Errorf("render dpi %d out of range [36, 1200]", c.RenderDPI)
	}
	return nil
}
