package config

import (
    "fmt"
    "os"
    "time"

    "github.com/caarlos0/env/v11"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/yaml.v2"
)

// Config holds the server settings. Values come from an optional YAML file
// and are then overridden by environment variables.
type Config struct {
    Addr      string        `yaml:"addr" env:"STT_ADDR"`
    DataDir   string        `yaml:"data_dir" env:"STT_DATA_DIR"`
    Heartbeat time.Duration `yaml:"heartbeat" env:"STT_HEARTBEAT"`
    LogLevel  string        `yaml:"log_level" env:"STT_LOG_LEVEL"`
    DevLog    bool          `yaml:"dev_log" env:"STT_DEV_LOG"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
    return Config{
        Addr:      ":8080",
        DataDir:   "data",
        Heartbeat: 15 * time.Second,
        LogLevel:  "info",
    }
}

// Load reads path (skipped when empty) on top of Default, then applies the
// environment.
func Load(path string) (Config, error) {
    cfg := Default()
    if path != "" {
        raw, err := os.ReadFile(path)
        if err != nil {
            return Config{}, fmt.Errorf("read config: %w", err)
        }
        if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
            return Config{}, fmt.Errorf("parse config %s: %w", path, err)
        }
    }
    if err := env.Parse(&cfg); err != nil {
        return Config{}, fmt.Errorf("parse env: %w", err)
    }
    if err := cfg.Validate(); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
    if c.Addr == "" {
        return fmt.Errorf("config: addr is required")
    }
    if c.Heartbeat <= 0 {
        return fmt.Errorf("config: heartbeat must be positive, got %s", c.Heartbeat)
    }
    if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    return nil
}

// Logger builds the process logger.
func (c Config) Logger() (*zap.Logger, error) {
    lvl, err := zapcore.ParseLevel(c.LogLevel)
    if err != nil {
        return nil, err
    }
    zc := zap.NewProductionConfig()
    if c.DevLog {
        zc = zap.NewDevelopmentConfig()
    }
    zc.Level = zap.NewAtomicLevelAt(lvl)
    return zc.Build()
}
