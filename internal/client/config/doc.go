// Package config loads runtime configuration for the gophchat CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file plus GOPHCHAT_* environment variables (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   SQLite database path
//	-r int      OTP resend cooldown (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "1.5s"
// or integer nanoseconds. Absent keys keep their earlier value:
//
//	{
//	  "database_dsn": "chat.db",
//	  "resend_cooldown": "60s",
//	  "reply_delay_text": "1s",
//	  "reply_delay_image": "1.5s",
//	  "max_image_bytes": 5242880,
//	  "token_secret": "change-me",
//	  "token_ttl": "720h",
//	  "countries_url": "https://example.org/countries.json",
//	  "log_level": "info",
//	  "log_format": "zap",
//	  "log_dir": "logs"
//	}
package config
