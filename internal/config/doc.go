// Package config provides centralized configuration management for the
// prolongation report tools.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml, configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PROLONG_<SECTION>_<FIELD>:
//
//	PROLONG_SERVER_PORT=8080
//	PROLONG_LOGGING_LEVEL=debug
//	PROLONG_REPORT_SEPARATOR=;
//	PROLONG_REPORT_EXPORT_CSV=true
//	PROLONG_PATHS_INPUT_DIR=/srv/prolongation/input
//
// # Path Management
//
// Relative paths are resolved against the executable directory:
//
//	paths, err := cfg.GetPaths()
//	out := paths.ReportPath(cfg.Report.OutputFile)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
