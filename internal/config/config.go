package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures everything the CLI needs to reach the marketplace API
// and run the payment flow.
type Config struct {
	// BaseURL of the marketplace API. Defaults to the development box on
	// the local network, matching the deployed client's fallback.
	BaseURL string `mapstructure:"base_url"`
	// DataDir holds the local sqlite store and key file.
	DataDir string `mapstructure:"data_dir"`

	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PollMaxAttempts int           `mapstructure:"poll_max_attempts"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`

	MetricsEnabled  bool   `mapstructure:"metrics_enabled"`
	MetricsEndpoint string `mapstructure:"metrics_endpoint"`
	MetricsInsecure bool   `mapstructure:"metrics_insecure"`
	Environment     string `mapstructure:"environment"`

	DevServerAddr string `mapstructure:"devserver_addr"`
	DevRedisAddr  string `mapstructure:"devserver_redis_addr"`
	// DevVerifyAfter is how many verify calls the simulator needs before a
	// payment reaches escrow.
	DevVerifyAfter int `mapstructure:"devserver_verify_after"`
}

func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		BaseURL:         "http://192.168.1.16:8000/api/",
		DataDir:         filepath.Join(home, ".kiraye"),
		PollInterval:    5 * time.Second,
		PollMaxAttempts: 60,
		HTTPTimeout:     30 * time.Second,
		MetricsEnabled:  false,
		MetricsEndpoint: "localhost:4317",
		MetricsInsecure: true,
		Environment:     "dev",
		DevServerAddr:   ":8000",
		DevVerifyAfter:  3,
	}
}

// Load merges defaults, the optional yaml config file, and environment
// variables (KIRAYE_*), in that order of precedence.
func Load() (Config, error) {
	cfg := defaults()

	path := filepath.Join(cfg.DataDir, "config.yaml")
	if override := strings.TrimSpace(os.Getenv("KIRAYE_CONFIG")); override != "" {
		path = override
	}
	if _, err := os.Stat(path); err == nil {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			recordConfigLoad(context.Background(), "file", "error")
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			recordConfigLoad(context.Background(), "file", "error")
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	invalid := make([]string, 0, 2)
	if base := strings.TrimSpace(os.Getenv("KIRAYE_BASE_URL")); base != "" {
		cfg.BaseURL = base
	}
	if dir := strings.TrimSpace(os.Getenv("KIRAYE_DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}
	if raw := strings.TrimSpace(os.Getenv("KIRAYE_POLL_INTERVAL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			invalid = append(invalid, "KIRAYE_POLL_INTERVAL")
		} else {
			cfg.PollInterval = d
		}
	}
	if raw := strings.TrimSpace(os.Getenv("KIRAYE_POLL_MAX_ATTEMPTS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			invalid = append(invalid, "KIRAYE_POLL_MAX_ATTEMPTS")
		} else {
			cfg.PollMaxAttempts = n
		}
	}
	if raw := strings.TrimSpace(os.Getenv("KIRAYE_HTTP_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			invalid = append(invalid, "KIRAYE_HTTP_TIMEOUT")
		} else {
			cfg.HTTPTimeout = d
		}
	}
	if raw := strings.TrimSpace(os.Getenv("KIRAYE_METRICS_ENABLED")); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, "KIRAYE_METRICS_ENABLED")
		} else {
			cfg.MetricsEnabled = enabled
		}
	}
	if endpoint := strings.TrimSpace(os.Getenv("KIRAYE_METRICS_ENDPOINT")); endpoint != "" {
		cfg.MetricsEndpoint = endpoint
	}
	if env := strings.TrimSpace(os.Getenv("KIRAYE_ENVIRONMENT")); env != "" {
		cfg.Environment = env
	}
	if addr := strings.TrimSpace(os.Getenv("KIRAYE_DEVSERVER_ADDR")); addr != "" {
		cfg.DevServerAddr = addr
	}
	if addr := strings.TrimSpace(os.Getenv("KIRAYE_DEVSERVER_REDIS_ADDR")); addr != "" {
		cfg.DevRedisAddr = addr
	}

	if len(invalid) > 0 {
		recordConfigLoad(context.Background(), cfg.Environment, "invalid")
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	recordConfigLoad(context.Background(), cfg.Environment, "ok")
	return cfg, nil
}
