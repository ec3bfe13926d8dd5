// Package config loads runtime configuration for the cloud drive CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote service
//	-d string   path of the local client database
//	-o string   directory downloads are saved into
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "server_base_url": "http://localhost:8000",
//	  "database_path": "clouddrive.db",
//	  "download_dir": "download",
//	  "log_level": "info"
//	}
//
// Keys missing from the file keep their previous value.
package config
