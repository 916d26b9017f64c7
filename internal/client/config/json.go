package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from zero so a partial file only overrides
// what it names.
type JsonConfig struct {
	DatabaseDSN      *string         `json:"database_dsn"`
	ResendCooldown   *timex.Duration `json:"resend_cooldown"`
	CooldownTick     *timex.Duration `json:"cooldown_tick"`
	MaxAttempts      *int            `json:"max_attempts"`
	ReplyDelayText   *timex.Duration `json:"reply_delay_text"`
	ReplyDelayImage  *timex.Duration `json:"reply_delay_image"`
	MaxImageBytes    *int64          `json:"max_image_bytes"`
	TokenSecret      *string         `json:"token_secret"`
	TokenTTL         *timex.Duration `json:"token_ttl"`
	CountriesURL     *string         `json:"countries_url"`
	CountriesTimeout *timex.Duration `json:"countries_timeout"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
	LogDir           *string         `json:"log_dir"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag it does nothing.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setVal(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setDur(&cfg.ResendCooldown, jc.ResendCooldown)
	setDur(&cfg.CooldownTick, jc.CooldownTick)
	setVal(&cfg.MaxAttempts, jc.MaxAttempts)
	setDur(&cfg.ReplyDelayText, jc.ReplyDelayText)
	setDur(&cfg.ReplyDelayImage, jc.ReplyDelayImage)
	setVal(&cfg.MaxImageBytes, jc.MaxImageBytes)
	setVal(&cfg.TokenSecret, jc.TokenSecret)
	setDur(&cfg.TokenTTL, jc.TokenTTL)
	setVal(&cfg.CountriesURL, jc.CountriesURL)
	setDur(&cfg.CountriesTimeout, jc.CountriesTimeout)
	setVal(&cfg.LogLevel, jc.LogLevel)
	setVal(&cfg.LogFormat, jc.LogFormat)
	setVal(&cfg.LogDir, jc.LogDir)
}

func setVal[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDur(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
