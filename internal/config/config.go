package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Feeds     FeedsConfig     `yaml:"feeds" envconfig:"FEEDS"`
	Registry  RegistryConfig  `yaml:"registry" envconfig:"REGISTRY"`
	Engine    EngineConfig    `yaml:"engine" envconfig:"ENGINE"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains inbound rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/mnav.log"`
}

// PathsConfig contains file system paths. Relative paths resolve against the
// executable directory.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ExportsDir    string `yaml:"exports_dir" envconfig:"EXPORTS_DIR" default:"exports"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	// CompaniesFile is the local JSON fallback for company records when the
	// registry sheet is unreachable.
	CompaniesFile string `yaml:"companies_file" envconfig:"COMPANIES_FILE" default:"data/companies.json"`
	// ActionsFile holds the corporate-action records.
	ActionsFile string `yaml:"actions_file" envconfig:"ACTIONS_FILE" default:"data/corporate_actions.json"`
	// StaticQuotesFile holds the fallback quote table for tickers the stock
	// feed does not cover; refreshed by the scraper command.
	StaticQuotesFile string `yaml:"static_quotes_file" envconfig:"STATIC_QUOTES_FILE" default:"data/static_quotes.json"`
	// OverridesFile holds the manual market-cap override table.
	OverridesFile string `yaml:"overrides_file" envconfig:"OVERRIDES_FILE" default:"data/quote_overrides.json"`
}

// FeedsConfig configures the external price-feed clients.
type FeedsConfig struct {
	Crypto FeedEndpoint `yaml:"crypto" envconfig:"CRYPTO"`
	Stocks FeedEndpoint `yaml:"stocks" envconfig:"STOCKS"`
	Forex  FeedEndpoint `yaml:"forex" envconfig:"FOREX"`
	LST    FeedEndpoint `yaml:"lst" envconfig:"LST"`
	// FetchTimeout bounds one whole snapshot assembly.
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"30s"`
}

// FeedEndpoint configures one upstream feed.
type FeedEndpoint struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey  string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
	RPS     float64       `yaml:"rps" envconfig:"RPS" default:"5"`
	Burst   int           `yaml:"burst" envconfig:"BURST" default:"5"`
}

// RegistryConfig configures the company-record registry.
type RegistryConfig struct {
	// SpreadsheetID identifies the Google Sheets workbook holding company
	// records. Empty disables the sheet source and uses the local file only.
	SpreadsheetID string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	// CompaniesRange is the A1 range of the companies sheet.
	CompaniesRange string `yaml:"companies_range" envconfig:"COMPANIES_RANGE" default:"Companies!A2:Z"`
	// CacheTTL bounds how long a parsed sheet is served before a reload.
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"5m"`
}

// EngineConfig carries the valuation-engine bounds.
type EngineConfig struct {
	OutlierThreshold float64 `yaml:"outlier_threshold" envconfig:"OUTLIER_THRESHOLD" default:"10"`
	SanityUpperBound float64 `yaml:"sanity_upper_bound" envconfig:"SANITY_UPPER_BOUND" default:"1000"`
	// SnapshotHistoryTTL bounds how long computed valuations stay in the
	// rolling history store.
	SnapshotHistoryTTL time.Duration `yaml:"snapshot_history_ttl" envconfig:"SNAPSHOT_HISTORY_TTL" default:"24h"`
	// RefreshInterval is how often the server recomputes the universe.
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL" default:"1m"`
	// MaxConcurrency bounds parallel per-company computation.
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" default:"8"`
}

// WebSocketConfig contains WebSocket hub configuration.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and the optional
// config file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MNAV", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// File values fill gaps; env keeps precedence through Process below.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if err := envconfig.Process("MNAV", &cfg); err != nil {
			return nil, fmt.Errorf("failed to re-apply env config: %w", err)
		}
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// configFilePath returns the expected config file location: next to the
// executable, overridable via MNAV_CONFIG_FILE.
func configFilePath() string {
	if p := os.Getenv("MNAV_CONFIG_FILE"); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}

// resolvePaths pins the executable directory and makes all relative paths
// absolute against it.
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to determine executable path: %w", err)
		}
		c.Paths.ExecutableDir = filepath.Dir(exe)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.Paths.ExecutableDir, p)
	}
	c.Paths.DataDir = resolve(c.Paths.DataDir)
	c.Paths.ExportsDir = resolve(c.Paths.ExportsDir)
	c.Paths.LogsDir = resolve(c.Paths.LogsDir)
	c.Paths.CompaniesFile = resolve(c.Paths.CompaniesFile)
	c.Paths.ActionsFile = resolve(c.Paths.ActionsFile)
	c.Paths.StaticQuotesFile = resolve(c.Paths.StaticQuotesFile)
	c.Paths.OverridesFile = resolve(c.Paths.OverridesFile)
	c.Logging.FilePath = resolve(c.Logging.FilePath)

	for _, dir := range []string{c.Paths.DataDir, c.Paths.ExportsDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// validate checks the configuration for unusable values.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Engine.OutlierThreshold <= 0 {
		return fmt.Errorf("engine outlier threshold must be positive")
	}
	if c.Engine.SanityUpperBound <= 0 {
		return fmt.Errorf("engine sanity upper bound must be positive")
	}
	if c.Engine.MaxConcurrency <= 0 {
		return fmt.Errorf("engine max concurrency must be positive")
	}
	if c.Registry.CacheTTL <= 0 {
		return fmt.Errorf("registry cache TTL must be positive")
	}

	// Logging is always JSON; anything else is silently corrected.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "both"
	}
	return nil
}
