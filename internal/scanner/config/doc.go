// Package config loads runtime configuration for the scansync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string    base URL of the nutrition backend
//	-u string    user id for committed diary entries
//	-d string    data directory for the embedded database
//	-i int       online status check interval (seconds)
//	-offline     force offline mode
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "service_base_url": "http://127.0.0.1:8080",
//	  "lookup_timeout": "10s",
//	  "debounce_window": "1.5s",
//	  "queue_max_size": 50,
//	  "force_offline": false
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
