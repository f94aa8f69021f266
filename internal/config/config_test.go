package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/remnawizard/internal/config"
	"github.com/aretw0/remnawizard/pkg/domain"
)

const hexKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := config.FromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 4096, cfg.MaxInputSize)
}

func TestFromMap_Decodes(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		"BOT_TOKEN":             "123:abc",
		"REMNAWAVE_BASE_URL":    "https://panel.example",
		"REDIS_DB":              "3",
		"SESSION_TTL":           "90m",
		"SESSION_FALLBACK_KEYS": "aa,bb",
		"MAX_INPUT_SIZE":        "512",
		"API_TOKEN":             "s3cret",
		"LOG_LEVEL":             "",
		"UNRELATED":             "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, "https://panel.example", cfg.RemnawaveBaseURL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"aa", "bb"}, cfg.SessionFallbackKeys)
	assert.Equal(t, 512, cfg.MaxInputSize)
	assert.Equal(t, "s3cret", cfg.APIToken)
	assert.Equal(t, "info", cfg.LogLevel, "empty values keep the default")
}

func TestFromMap_BadValue(t *testing.T) {
	_, err := config.FromMap(map[string]string{"SESSION_TTL": "soon"})
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("REMNAWAVE_TOKEN=from-file\nHTTP_ADDR=:9999\n"), 0o600))
	t.Setenv("HTTP_ADDR", ":7000")
	t.Cleanup(func() { os.Unsetenv("REMNAWAVE_TOKEN") })

	cfg, err := config.Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.RemnawaveToken)
	assert.Equal(t, ":7000", cfg.HTTPAddr, "environment wins over the file")
}

func TestRequire(t *testing.T) {
	cfg := config.Config{BotToken: "x"}
	assert.NoError(t, cfg.Require("BOT_TOKEN"))

	err := cfg.Require("BOT_TOKEN", "REMNAWAVE_BASE_URL", "ADMIN_IDS")
	require.ErrorIs(t, err, config.ErrMissing)
	assert.Contains(t, err.Error(), "REMNAWAVE_BASE_URL, ADMIN_IDS")
}

func TestAdmins(t *testing.T) {
	allow, err := config.Config{AdminIDs: "1, 2"}.Admins()
	require.NoError(t, err)
	assert.True(t, allow.Allowed(domain.UserID(2)))

	_, err = config.Config{AdminIDs: "1,x"}.Admins()
	assert.Error(t, err)
}

func TestEncryptionKeys(t *testing.T) {
	active, fallback, err := config.Config{}.EncryptionKeys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	active, fallback, err = config.Config{SessionKey: hexKey, SessionFallbackKeys: []string{hexKey, " "}}.EncryptionKeys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Len(t, fallback, 1)

	_, _, err = config.Config{SessionKey: "zz"}.EncryptionKeys()
	assert.Error(t, err)
	_, _, err = config.Config{SessionKey: "abcd"}.EncryptionKeys()
	assert.Error(t, err)
	_, _, err = config.Config{SessionKey: hexKey, SessionFallbackKeys: []string{"abcd"}}.EncryptionKeys()
	assert.Error(t, err)
}
