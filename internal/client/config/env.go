package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "GOPHCHAT_"

// parseEnv overlays Config with GOPHCHAT_* environment variables. A .env file
// in the working directory is loaded first if it exists; variables already
// set in the process environment win over it.
//
// Durations accept time.ParseDuration syntax ("90s", "1.5s").
// Panics on malformed values, like the other loaders.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	str(&cfg.DatabaseDSN, "DATABASE_DSN")
	dur(&cfg.ResendCooldown, "RESEND_COOLDOWN")
	dur(&cfg.CooldownTick, "COOLDOWN_TICK")
	num(&cfg.MaxAttempts, "MAX_ATTEMPTS")
	dur(&cfg.ReplyDelayText, "REPLY_DELAY_TEXT")
	dur(&cfg.ReplyDelayImage, "REPLY_DELAY_IMAGE")
	num64(&cfg.MaxImageBytes, "MAX_IMAGE_BYTES")
	str(&cfg.TokenSecret, "TOKEN_SECRET")
	dur(&cfg.TokenTTL, "TOKEN_TTL")
	str(&cfg.CountriesURL, "COUNTRIES_URL")
	dur(&cfg.CountriesTimeout, "COUNTRIES_TIMEOUT")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.LogFormat, "LOG_FORMAT")
	str(&cfg.LogDir, "LOG_DIR")
}

func lookup(name string) (string, bool) {
	return os.LookupEnv(envPrefix + name)
}

func str(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func dur(dst *time.Duration, name string) {
	if v, ok := lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

func num(dst *int, name string) {
	if v, ok := lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func num64(dst *int64, name string) {
	if v, ok := lookup(name); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}
