// Package config loads the process configuration from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/remnawizard/pkg/access"
	"github.com/aretw0/remnawizard/pkg/domain"
)

// Config is the full set of recognized settings.
type Config struct {
	BotToken         string `mapstructure:"BOT_TOKEN"`
	RemnawaveBaseURL string `mapstructure:"REMNAWAVE_BASE_URL"`
	RemnawaveToken   string `mapstructure:"REMNAWAVE_TOKEN"`
	RemnawaveCookie  string `mapstructure:"REMNAWAVE_COOKIE"`
	AdminIDs         string `mapstructure:"ADMIN_IDS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	SessionDir          string        `mapstructure:"SESSION_DIR"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	SessionKey          string        `mapstructure:"SESSION_KEY"`
	SessionFallbackKeys []string      `mapstructure:"SESSION_FALLBACK_KEYS"`

	SquadCatalog string `mapstructure:"SQUAD_CATALOG"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogFormat    string `mapstructure:"LOG_FORMAT"`
	HTTPAddr     string `mapstructure:"HTTP_ADDR"`
	APIToken     string `mapstructure:"API_TOKEN"`
	MaxInputSize int    `mapstructure:"MAX_INPUT_SIZE"`
}

// ErrMissing is returned by Require for unset keys.
var ErrMissing = errors.New("missing required setting")

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel:     "info",
		LogFormat:    "text",
		HTTPAddr:     ":8080",
		MaxInputSize: 4096,
	}
}

// Load reads the given dotenv files (".env" when none are given), then
// decodes the process environment. Variables already set in the
// environment win over the files. Missing files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return FromMap(environ())
}

// FromMap decodes settings from a key/value map on top of the defaults.
func FromMap(values map[string]string) (Config, error) {
	cfg := Default()
	input := make(map[string]any, len(values))
	for k, v := range values {
		if v == "" {
			continue
		}
		input[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(input); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Require fails when any of the named keys is empty.
func (c Config) Require(keys ...string) error {
	set := map[string]bool{
		"BOT_TOKEN":          c.BotToken != "",
		"REMNAWAVE_BASE_URL": c.RemnawaveBaseURL != "",
		"REMNAWAVE_TOKEN":    c.RemnawaveToken != "",
		"ADMIN_IDS":          c.AdminIDs != "",
		"REDIS_ADDR":         c.RedisAddr != "",
		"SESSION_KEY":        c.SessionKey != "",
		"API_TOKEN":          c.APIToken != "",
	}
	var missing []string
	for _, k := range keys {
		if !set[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Admins parses ADMIN_IDS.
func (c Config) Admins() (access.AllowList, error) {
	return access.ParseAllowList(c.AdminIDs)
}

// EncryptionKeys decodes the hex session keys. The active key is nil when
// SESSION_KEY is unset.
func (c Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.SessionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey("SESSION_KEY", c.SessionKey); err != nil {
		return nil, nil, err
	}
	for _, k := range c.SessionFallbackKeys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key, err := decodeKey("SESSION_FALLBACK_KEYS", k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

// Catalog loads SQUAD_CATALOG, or the embedded default when unset.
func (c Config) Catalog() (domain.Catalog, error) {
	if c.SquadCatalog == "" {
		return DefaultCatalog(), nil
	}
	return LoadCatalog(c.SquadCatalog)
}

func decodeKey(name, raw string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s must be hex: %w", name, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must be 32 bytes, got %d", name, len(key))
	}
	return key, nil
}

func environ() map[string]string {
	env := os.Environ()
	out := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
