// Package config loads runtime configuration for the Beiwe device client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment, optionally seeded from a .env file given with -e or -env
//     (see parseEnv). Variables already set in the process win over the file.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-u string   study server URL
//	-b string   build channel ("production" or "staging")
//	-d string   data directory (database and upload queue)
//	-t int      connect timeout (seconds)
//	-r int      read timeout (seconds)
//	-l int      upload batch ceiling (minutes)
//	-i int      background upload interval (seconds, 0 disables)
//	-v string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "https://studies.beiwe.org",
//	  "build_channel": "production",
//	  "customizable_server_url": true,
//	  "data_dir": "/var/lib/beiwe",
//	  "db_path": "beiwe.db",
//	  "connect_timeout": "3s",
//	  "read_timeout": "5s",
//	  "upload_ceiling": "1h",
//	  "upload_interval": "10m",
//	  "log_level": "info",
//	  "app_version": "3.1.3"
//	}
//
// # Environment
//
//	BEIWE_SERVER_URL      same as -u
//	BEIWE_BUILD_CHANNEL   same as -b
//	BEIWE_DATA_DIR        same as -d
package config
