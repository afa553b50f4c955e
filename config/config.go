package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sjsage522/encarworker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Telegram configuration
	TelegramToken  string `mapstructure:"tg_api_token"`
	TelegramChatID string `mapstructure:"tg_chat_id"`
	TelegramAPIURL string `mapstructure:"telegram_api_url"`

	// Browser configuration
	Headless        bool                       `mapstructure:"headless"`
	UserDir         bool                       `mapstructure:"user_dir"`
	User            string                     `mapstructure:"user"`
	WebDriver       map[string]WebDriverConfig `mapstructure:"webdriver"`
	Fetcher         string                     `mapstructure:"fetcher"`
	BrowserBin      string                     `mapstructure:"browser_bin"`
	PageLoadTimeout time.Duration              `mapstructure:"page_load_timeout"`
	TableTimeout    time.Duration              `mapstructure:"table_timeout"`

	// Files
	LinksFile      string   `mapstructure:"links_file"`
	AllowedHosts   []string `mapstructure:"allowed_hosts"`
	DBPath         string   `mapstructure:"db_path"`
	UserDataDir    string   `mapstructure:"user_data_dir"`
	LogsDir        string   `mapstructure:"logs_dir"`
	DictionaryPath string   `mapstructure:"dictionary"`

	// Throttling
	MessageDelay time.Duration `mapstructure:"message_delay"`
	LinkDelay    time.Duration `mapstructure:"link_delay"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`

	// Redis configuration, empty address disables publishing
	RedisAddr            string `mapstructure:"redis_addr"`
	RedisDB              int    `mapstructure:"redis_db"`
	RedisStream          string `mapstructure:"redis_stream"`
	RedisStreamCount     int    `mapstructure:"redis_stream_count"`
	RedisStreamMaxLength int    `mapstructure:"redis_stream_max_length"`

	// Memcache configuration, empty address disables the notification guard
	MemcacheAddr   string        `mapstructure:"memcache_addr"`
	NotifyGuardTTL time.Duration `mapstructure:"notify_guard_ttl"`

	// Logging
	LogLevel    string `mapstructure:"log_level"`
	Environment string `mapstructure:"environment"`
}

// WebDriverConfig holds per-identity browser settings
type WebDriverConfig struct {
	UA       string      `mapstructure:"ua"`
	UseProxy bool        `mapstructure:"use_proxy"`
	Proxy    ProxyConfig `mapstructure:"proxy"`
}

// ProxyConfig holds a single authenticated HTTP proxy
type ProxyConfig struct {
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
}

// Server returns the proxy address without credentials
func (p ProxyConfig) Server() string {
	return fmt.Sprintf("http://%s:%s", p.Host, p.Port)
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		TelegramAPIURL:       "https://api.telegram.org",
		User:                 "bot1",
		Fetcher:              "browser",
		PageLoadTimeout:      60 * time.Second,
		TableTimeout:         30 * time.Second,
		LinksFile:            "encar_links.txt",
		AllowedHosts:         []string{"encar.com", "www.encar.com"},
		DBPath:               filepath.Join("user_data", "cars.db"),
		UserDataDir:          "user_data",
		LogsDir:              "logs",
		DictionaryPath:       "dictionary.json",
		MessageDelay:         1 * time.Second,
		LinkDelay:            3 * time.Second,
		RetryDelay:           5 * time.Second,
		RedisStream:          "encar:listings",
		RedisStreamCount:     1,
		RedisStreamMaxLength: 1000,
		NotifyGuardTTL:       24 * time.Hour,
		LogLevel:             "info",
		Environment:          "development",
	}
}

// LoadConfig reads the JSON config file at path and ENCAR_* environment
// variables. A missing file is not an error; Validate reports missing keys.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v, cfg)

	v.SetEnvPrefix("ENCAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.NewConfiguration("failed to read "+path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.NewConfiguration("failed to stat "+path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfiguration("failed to unmarshal config", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides apply
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("tg_api_token", cfg.TelegramToken)
	v.SetDefault("tg_chat_id", cfg.TelegramChatID)
	v.SetDefault("telegram_api_url", cfg.TelegramAPIURL)

	v.SetDefault("headless", cfg.Headless)
	v.SetDefault("user_dir", cfg.UserDir)
	v.SetDefault("user", cfg.User)
	v.SetDefault("fetcher", cfg.Fetcher)
	v.SetDefault("browser_bin", cfg.BrowserBin)
	v.SetDefault("page_load_timeout", cfg.PageLoadTimeout)
	v.SetDefault("table_timeout", cfg.TableTimeout)

	v.SetDefault("links_file", cfg.LinksFile)
	v.SetDefault("allowed_hosts", cfg.AllowedHosts)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("user_data_dir", cfg.UserDataDir)
	v.SetDefault("logs_dir", cfg.LogsDir)
	v.SetDefault("dictionary", cfg.DictionaryPath)

	v.SetDefault("message_delay", cfg.MessageDelay)
	v.SetDefault("link_delay", cfg.LinkDelay)
	v.SetDefault("retry_delay", cfg.RetryDelay)

	v.SetDefault("redis_addr", cfg.RedisAddr)
	v.SetDefault("redis_db", cfg.RedisDB)
	v.SetDefault("redis_stream", cfg.RedisStream)
	v.SetDefault("redis_stream_count", cfg.RedisStreamCount)
	v.SetDefault("redis_stream_max_length", cfg.RedisStreamMaxLength)

	v.SetDefault("memcache_addr", cfg.MemcacheAddr)
	v.SetDefault("notify_guard_ttl", cfg.NotifyGuardTTL)

	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("environment", cfg.Environment)
}

// Identity returns the browser settings of the configured user
func (c *Config) Identity() WebDriverConfig {
	// viper lowercases map keys
	return c.WebDriver[strings.ToLower(c.User)]
}

// BrowserProfileDir returns the persistent profile directory, or "" when
// user_dir is off
func (c *Config) BrowserProfileDir() string {
	if !c.UserDir {
		return ""
	}
	return filepath.Join(c.UserDataDir, c.User)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TelegramToken) == "" {
		return errors.NewConfiguration("tg_api_token is required", nil)
	}
	if strings.TrimSpace(c.TelegramChatID) == "" {
		return errors.NewConfiguration("tg_chat_id is required", nil)
	}
	if c.Fetcher != "browser" && c.Fetcher != "http" {
		return errors.NewConfiguration(fmt.Sprintf("unknown fetcher %q", c.Fetcher), nil)
	}
	if len(c.AllowedHosts) == 0 {
		return errors.NewConfiguration("allowed_hosts must not be empty", nil)
	}
	if c.TableTimeout <= 0 || c.PageLoadTimeout <= 0 {
		return errors.NewConfiguration("timeouts must be positive", nil)
	}
	if c.MessageDelay < 0 || c.LinkDelay < 0 || c.RetryDelay < 0 {
		return errors.NewConfiguration("delays must not be negative", nil)
	}
	if id := c.Identity(); id.UseProxy && (id.Proxy.Host == "" || id.Proxy.Port == "") {
		return errors.NewConfiguration(fmt.Sprintf("webdriver.%s.proxy needs host and port", c.User), nil)
	}
	if c.RedisAddr != "" && c.RedisStreamCount < 1 {
		return errors.NewConfiguration("redis_stream_count must be at least 1", nil)
	}
	return nil
}
