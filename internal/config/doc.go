// Package config provides centralized configuration management for the Global Insights
// Explorer. It loads configuration from layered sources, validates it, and resolves the
// directory layout used by the pipeline and the HTTP service.
//
// # Configuration Sources
//
// Configuration is built in the following order, each layer overriding only the keys it sets:
//
//	1. Built-in defaults (Default)
//	2. config.yaml (GIE_CONFIG_FILE, ./config.yaml, ./configs/config.yaml, next to the executable)
//	3. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern GIE_<SECTION>_<KEY>:
//
//	GIE_APP_ENV=production
//	GIE_SERVER_PORT=8050
//	GIE_DATA_DATA_DIR=/srv/datasets
//	GIE_CACHE_DEFAULT_TIMEOUT=2h
//	GIE_LOGGING_LEVEL=debug
//
// # Profiles
//
// app_env selects development (default) or production. Production raises the default
// cache timeout from one hour to two hours and disables development logging.
//
// # Paths
//
// ResolvePaths converts DataConfig into absolute locations. Relative directories are
// resolved against data.base_dir, or the working directory when it is unset:
//
//	Dataset/            input CSVs (never created)
//	processed/          merged_data.csv, metrics_info.json, countries.db
//	exports/            on-demand exports
//	logs/               application logs
package config
