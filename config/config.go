package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/doom_map_browser/catalogue"
)

type Config struct {
	// Wads are layered, later ones override earlier (doom.wad, doom.gwa)
	Wads      []string        `yaml:"wads" toml:"wads"`
	Directory string          `yaml:"directory" toml:"directory"` // unpacked lumps, used when no wads set
	Sky       string          `yaml:"sky" toml:"sky"`
	Maps      []string        `yaml:"maps" toml:"maps"` // empty means every level
	Skill     catalogue.Skill `yaml:"skill" toml:"skill"`
	Catalogue string          `yaml:"catalogue" toml:"catalogue"` // empty means built-in
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // console or json
}

func Default() *Config {
	return &Config{
		Sky:   "SKY1",
		Skill: catalogue.SKILL_MEDIUM,
		Server: ServerConfig{
			Addr: ":8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads yaml or toml (by .toml extension) file over defaults.
// Missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "Failed to read config %q", path)
	}
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		unmarshal = toml.Unmarshal
	}
	if err := unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Invalid config %q", path)
	}
	return cfg, nil
}

// Validate checks values that can come from file or command line
func (cfg *Config) Validate() error {
	if cfg.Skill < catalogue.SKILL_BABY || cfg.Skill > catalogue.SKILL_NIGHTMARE {
		return errors.Errorf("skill %d is not in range 1..5", cfg.Skill)
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return errors.Errorf("unknown logging format %q", cfg.Logging.Format)
	}
	return nil
}

// NewLogger builds zap logger, unknown level falls back to info
func (cfg LoggingConfig) NewLogger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
