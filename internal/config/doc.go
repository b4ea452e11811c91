// Package config provides centralized configuration management for the
// enrollment ranking service.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// The YAML file is read from ENROLL_CONFIG_FILE when set, otherwise from
// config.yaml or configs/config.yaml in the working directory.
//
// # Environment Variables
//
// All environment variables follow the pattern ENROLL_<SECTION>_<FIELD>:
//
//	ENROLL_SERVER_PORT=8080
//	ENROLL_LOGGING_LEVEL=debug
//	ENROLL_DASHBOARD_PERIODS=2023,2022,2021
//	ENROLL_DASHBOARD_MIN_TOTAL=100
//	ENROLL_TELEMETRY_TRACE_EXPORTER=stdout
//
// Slices are comma separated and durations use time.ParseDuration syntax.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return fmt.Errorf("failed to load configuration: %w", err)
//	}
//	addr := fmt.Sprintf(":%d", cfg.Server.Port)
package config
