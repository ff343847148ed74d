package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the tabdedup daemon.
type Config struct {
	// CDP connection settings
	CDPAddress  string
	CDPPort     int
	OpTimeoutMS int
	TrackLoads  bool

	// HTTP API
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Storage
	DataDir          string
	SettingsSeedFile string
	JournalEnabled   bool
	JournalMaxSizeMB int
	JournalBuffer    int

	// Deduplication behavior
	SettleDelayMS     int
	ActivateOnResolve bool

	// Notifications
	NotifyEndpoint string
	NotifyTitle    string

	// Logging
	LogLevel string
	LogFile  string

	// Browser launch
	LaunchBrowser     bool
	BrowserBinary     string
	BrowserProfileDir string
	BrowserStartURL   string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:        getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		OpTimeoutMS:       getEnvIntOrDefault("DEDUP_OP_TIMEOUT_MS", 5000),
		TrackLoads:        getEnvBoolOrDefault("DEDUP_TRACK_LOADS", true),
		BindAddr:          getEnvOrDefault("DEDUP_BIND_ADDR", "127.0.0.1:8191"),
		PortCandidates:    getEnvListOrDefault("DEDUP_PORT_CANDIDATES", []string{"127.0.0.1:8192", "127.0.0.1:8193"}),
		PortAutoFallback:  getEnvBoolOrDefault("DEDUP_PORT_AUTO_FALLBACK", true),
		DataDir:           getEnvOrDefault("DEDUP_DATA_DIR", "./data"),
		SettingsSeedFile:  getEnvOrDefault("DEDUP_SETTINGS_SEED", "./config/settings.yaml"),
		JournalEnabled:    getEnvBoolOrDefault("DEDUP_JOURNAL", true),
		JournalMaxSizeMB:  getEnvIntOrDefault("DEDUP_JOURNAL_MAX_SIZE_MB", 10),
		JournalBuffer:     getEnvIntOrDefault("DEDUP_JOURNAL_BUFFER", 512),
		SettleDelayMS:     getEnvIntOrDefault("DEDUP_SETTLE_DELAY_MS", 500),
		ActivateOnResolve: getEnvBoolOrDefault("DEDUP_ACTIVATE_ON_RESOLVE", false),
		NotifyEndpoint:    getEnvOrDefault("DEDUP_NOTIFY_ENDPOINT", ""),
		NotifyTitle:       getEnvOrDefault("DEDUP_NOTIFY_TITLE", "Tab Deduplicator"),
		LogLevel:          strings.ToLower(getEnvOrDefault("DEDUP_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("DEDUP_LOG_FILE", "logs/tabdedup.log"),
		LaunchBrowser:     getEnvBoolOrDefault("DEDUP_LAUNCH_BROWSER", false),
		BrowserBinary:     getEnvOrDefault("DEDUP_BROWSER_BIN", ""),
		BrowserProfileDir: getEnvOrDefault("DEDUP_BROWSER_PROFILE_DIR", "./browser_profile"),
		BrowserStartURL:   getEnvOrDefault("DEDUP_BROWSER_START_URL", "about:blank"),
	}

	if cfg.OpTimeoutMS < 500 {
		cfg.OpTimeoutMS = 500
	}
	if cfg.SettleDelayMS < 0 {
		cfg.SettleDelayMS = 0
	}
	if cfg.CDPPort <= 0 || cfg.CDPPort > 65535 {
		return nil, fmt.Errorf("CHROMIUM_CDP_PORT out of range: %d", cfg.CDPPort)
	}
	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint of the browser.
func (c *Config) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
