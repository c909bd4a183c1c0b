package config

import "time"

// Application constants for the Global Insights Explorer
const (
	AppName    = "Global Insights Explorer"
	AppVersion = "1.0.0"

	// Environment profiles
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Server defaults
	DefaultHost = "127.0.0.1"
	DefaultPort = 8050

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// File Paths (relative to the base directory)
	DefaultDataDir      = "Dataset"
	DefaultProcessedDir = "processed"
	DefaultExportDir    = "exports"
	DefaultLogsDir      = "logs"
	DefaultSnapshotFile = "processed/countries.db"

	// Well-known processed artifacts
	MergedDataFile  = "merged_data.csv"
	MetricsInfoFile = "metrics_info.json"

	// Cache Settings
	DevelopmentCacheTimeout = 3600 * time.Second
	ProductionCacheTimeout  = 7200 * time.Second
	DefaultCacheEntries     = 1024

	// Analysis limits
	MaxCountriesComparison = 8
	MaxRankings            = 250
	DefaultRankings        = 10

	// WebSocket
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
