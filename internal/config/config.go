package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "GIE"

// Config represents the complete application configuration
type Config struct {
	AppEnv    string                 `yaml:"app_env" envconfig:"APP_ENV"`
	Server    ServerConfig           `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig         `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig          `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig             `yaml:"data" envconfig:"DATA"`
	Cache     CacheConfig            `yaml:"cache" envconfig:"CACHE"`
	Analysis  AnalysisConfig         `yaml:"analysis" envconfig:"ANALYSIS"`
	WebSocket WebSocketConfig        `yaml:"websocket" envconfig:"WEBSOCKET"`
	OTel      OTelSettings           `yaml:"otel" envconfig:"OTEL"`
	Colors    map[string]ColorScheme `yaml:"colors" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig locates the input CSVs and every generated artifact
type DataConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
	ExportDir    string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	SnapshotFile string `yaml:"snapshot_file" envconfig:"SNAPSHOT_FILE"`
	// LoadFromSnapshot makes the first load read the SQLite snapshot when it exists.
	// Reloads always run the pipeline.
	LoadFromSnapshot bool `yaml:"load_from_snapshot" envconfig:"LOAD_FROM_SNAPSHOT"`
}

// CacheConfig controls the query result cache
type CacheConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout" envconfig:"DEFAULT_TIMEOUT"`
	MaxEntries     int           `yaml:"max_entries" envconfig:"MAX_ENTRIES"`
}

// AnalysisConfig bounds the interactive analysis endpoints
type AnalysisConfig struct {
	MaxCountriesComparison int `yaml:"max_countries_comparison" envconfig:"MAX_COUNTRIES_COMPARISON"`
	MaxRankings            int `yaml:"max_rankings" envconfig:"MAX_RANKINGS"`
	DefaultRankings        int `yaml:"default_rankings" envconfig:"DEFAULT_RANKINGS"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
	SendBuffer      int           `yaml:"send_buffer" envconfig:"SEND_BUFFER"`
}

// OTelSettings selects the telemetry exporters
type OTelSettings struct {
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// ColorScheme is a named palette served to the dashboard
type ColorScheme struct {
	Low   string `yaml:"low" json:"low"`
	Mid   string `yaml:"mid" json:"mid"`
	High  string `yaml:"high" json:"high"`
	Scale string `yaml:"scale" json:"scale"`
}

// IsProduction reports whether the production profile is active
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// Load builds the configuration in three layers: built-in defaults, then the optional
// config.yaml, then GIE_* environment variables. Later layers only override the keys
// they actually set.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path; an empty path skips the file layer
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyProfile()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; absent keys keep their current value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyProfile fills values that depend on the environment profile
func (c *Config) applyProfile() {
	if c.AppEnv == "" {
		c.AppEnv = EnvDevelopment
	}
	if c.IsProduction() {
		if c.Cache.DefaultTimeout == DevelopmentCacheTimeout {
			c.Cache.DefaultTimeout = ProductionCacheTimeout
		}
		c.Logging.Development = false
	}
	if len(c.Colors) == 0 {
		c.Colors = DefaultColorSchemes()
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	switch strings.ToLower(c.AppEnv) {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown app_env %q", c.AppEnv)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.Data.DataDir == "" {
		return fmt.Errorf("data directory must be set")
	}

	if c.Cache.DefaultTimeout < 0 {
		return fmt.Errorf("cache timeout must not be negative")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be positive")
	}

	if c.Analysis.MaxCountriesComparison < 2 {
		return fmt.Errorf("max_countries_comparison must be at least 2, got %d", c.Analysis.MaxCountriesComparison)
	}
	if c.Analysis.DefaultRankings <= 0 || c.Analysis.DefaultRankings > c.Analysis.MaxRankings {
		return fmt.Errorf("default_rankings must be between 1 and max_rankings")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "console", "stdout", "file", "both":
	default:
		return fmt.Errorf("unknown log output %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path required for output %q", c.Logging.Output)
	}

	return nil
}

// getConfigFilePath returns the first config file found, or "" when there is none
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	if exeDir, err := executableDir(); err == nil {
		locations = append(locations, exeDir+string(os.PathSeparator)+"config.yaml")
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		AppEnv: EnvDevelopment,
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8050", "http://127.0.0.1:8050"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    "logs/app.log",
			Development: true,
		},
		Data: DataConfig{
			DataDir:      DefaultDataDir,
			ProcessedDir: DefaultProcessedDir,
			ExportDir:    DefaultExportDir,
			LogsDir:      DefaultLogsDir,
			SnapshotFile: DefaultSnapshotFile,
		},
		Cache: CacheConfig{
			DefaultTimeout: DevelopmentCacheTimeout,
			MaxEntries:     DefaultCacheEntries,
		},
		Analysis: AnalysisConfig{
			MaxCountriesComparison: MaxCountriesComparison,
			MaxRankings:            MaxRankings,
			DefaultRankings:        DefaultRankings,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  WebSocketReadBufferSize,
			WriteBufferSize: WebSocketWriteBufferSize,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
			SendBuffer:      256,
		},
		OTel: OTelSettings{
			EnableMetrics: true,
			EnableTracing: false,
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
		Colors: DefaultColorSchemes(),
	}
}

// DefaultColorSchemes returns the palettes for each dashboard theme
func DefaultColorSchemes() map[string]ColorScheme {
	return map[string]ColorScheme{
		"economy":        {Low: "#fee5d9", Mid: "#fb6a4a", High: "#a50f15", Scale: "Reds"},
		"environment":    {Low: "#edf8e9", Mid: "#74c476", High: "#006d2c", Scale: "Greens"},
		"demographics":   {Low: "#eff3ff", Mid: "#6baed6", High: "#08519c", Scale: "Blues"},
		"energy":         {Low: "#feedde", Mid: "#fd8d3c", High: "#a63603", Scale: "Oranges"},
		"infrastructure": {Low: "#f2f0f7", Mid: "#9e9ac8", High: "#54278f", Scale: "Purples"},
	}
}
