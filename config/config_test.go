package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/encarworker/pkg/errors"
)

const sampleConfig = `{
	"tg_api_token": "123:abc",
	"tg_chat_id": -1001234567,
	"headless": true,
	"user_dir": true,
	"table_timeout": "10s",
	"webdriver": {
		"bot1": {
			"ua": "Mozilla/5.0 test",
			"use_proxy": true,
			"proxy": {"login": "u", "password": "p", "host": "10.0.0.1", "port": 3128}
		}
	}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "-1001234567", cfg.TelegramChatID)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 10*time.Second, cfg.TableTimeout)

	// Defaults survive
	assert.Equal(t, "encar_links.txt", cfg.LinksFile)
	assert.Equal(t, filepath.Join("user_data", "cars.db"), cfg.DBPath)
	assert.Equal(t, time.Second, cfg.MessageDelay)
	assert.Equal(t, 3*time.Second, cfg.LinkDelay)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
	assert.Equal(t, []string{"encar.com", "www.encar.com"}, cfg.AllowedHosts)

	id := cfg.Identity()
	assert.Equal(t, "Mozilla/5.0 test", id.UA)
	assert.True(t, id.UseProxy)
	assert.Equal(t, "u", id.Proxy.Login)
	assert.Equal(t, "http://10.0.0.1:3128", id.Proxy.Server())
	assert.Equal(t, filepath.Join("user_data", "bot1"), cfg.BrowserProfileDir())

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("ENCAR_TG_CHAT_ID", "42")
	t.Setenv("ENCAR_LINK_DELAY", "7s")
	t.Setenv("ENCAR_REDIS_ADDR", "redis.example.com:6379")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "42", cfg.TelegramChatID)
	assert.Equal(t, 7*time.Second, cfg.LinkDelay)
	assert.Equal(t, "redis.example.com:6379", cfg.RedisAddr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
	assert.Contains(t, err.Error(), "tg_api_token")
}

func TestLoadConfigBrokenFile(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"tg_api_token": `))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.TelegramToken = "t"
		cfg.TelegramChatID = "c"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.TelegramChatID = " "
	assert.ErrorContains(t, cfg.Validate(), "tg_chat_id")

	cfg = valid()
	cfg.Fetcher = "selenium"
	assert.ErrorContains(t, cfg.Validate(), "unknown fetcher")

	cfg = valid()
	cfg.WebDriver = map[string]WebDriverConfig{"bot1": {UseProxy: true}}
	assert.ErrorContains(t, cfg.Validate(), "proxy needs host and port")

	cfg = valid()
	cfg.LinkDelay = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "delays")

	cfg = valid()
	assert.Empty(t, cfg.BrowserProfileDir())
}
