package config

import "time"

// Config holds runtime settings for the gophchat CLI.
//
// Units: all intervals are time.Duration; MaxImageBytes is a byte count and
// 0 disables the limit.
type Config struct {
	DatabaseDSN string

	ResendCooldown time.Duration
	CooldownTick   time.Duration
	MaxAttempts    int

	ReplyDelayText  time.Duration
	ReplyDelayImage time.Duration
	MaxImageBytes   int64

	TokenSecret string
	TokenTTL    time.Duration

	CountriesURL     string
	CountriesTimeout time.Duration

	LogLevel  string
	LogFormat string
	LogDir    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "chat.db"
	c.ResendCooldown = 60 * time.Second
	c.CooldownTick = time.Second
	c.MaxAttempts = 0
	c.ReplyDelayText = time.Second
	c.ReplyDelayImage = 1500 * time.Millisecond
	c.MaxImageBytes = 5 << 20
	c.TokenSecret = "gophchat-local-secret"
	c.TokenTTL = 720 * time.Hour
	c.CountriesURL = ""
	c.CountriesTimeout = 3 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "zap"
	c.LogDir = "logs"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
