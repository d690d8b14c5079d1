package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/submission"
)

// Submission modes.
const (
	ModeLoopback = "loopback"
	ModeHTTP     = "http"
)

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type AttachmentConfig struct {
	MaxBytes   int64    `yaml:"max_bytes"`
	Extensions []string `yaml:"extensions"`
}

type HourlyRateConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type SubmissionConfig struct {
	Mode     string        `yaml:"mode"` // loopback|http
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Config struct {
	Log         LogConfig        `yaml:"log"`
	Server      ServerConfig     `yaml:"server"`
	Attachments AttachmentConfig `yaml:"attachments"`
	HourlyRate  HourlyRateConfig `yaml:"hourly_rate"`
	Subjects    []string         `yaml:"subjects"`
	Submission  SubmissionConfig `yaml:"submission"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Load reads a YAML file, applies defaults and validates the result. An empty
// path yields the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 30 * time.Minute
	}
	if cfg.Server.SweepInterval <= 0 {
		cfg.Server.SweepInterval = time.Minute
	}
	if cfg.Attachments.MaxBytes <= 0 {
		cfg.Attachments.MaxBytes = attachment.DefaultMaxBytes
	}
	if len(cfg.Attachments.Extensions) == 0 {
		cfg.Attachments.Extensions = append([]string(nil), attachment.DefaultExtensions...)
	}
	if cfg.HourlyRate.Min == 0 && cfg.HourlyRate.Max == 0 {
		cfg.HourlyRate.Min = submission.DefaultMinHourlyRate
		cfg.HourlyRate.Max = submission.DefaultMaxHourlyRate
	}
	if cfg.Subjects == nil {
		cfg.Subjects = append([]string(nil), model.DefaultSubjects...)
	}
	if cfg.Submission.Mode == "" {
		cfg.Submission.Mode = ModeLoopback
	}
	if cfg.Submission.Timeout <= 0 {
		cfg.Submission.Timeout = 15 * time.Second
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.HourlyRate.Min <= 0 || c.HourlyRate.Max < c.HourlyRate.Min {
		return fmt.Errorf("hourly_rate: invalid range [%v, %v]", c.HourlyRate.Min, c.HourlyRate.Max)
	}
	switch c.Submission.Mode {
	case ModeLoopback:
	case ModeHTTP:
		if strings.TrimSpace(c.Submission.Endpoint) == "" {
			return errors.New("submission.endpoint is required in http mode")
		}
	default:
		return fmt.Errorf("submission.mode must be loopback or http, got %q", c.Submission.Mode)
	}
	return nil
}

// AttachmentPolicy converts the attachment section into a policy.
func (c Config) AttachmentPolicy() attachment.Policy {
	return attachment.Policy{
		MaxBytes:   c.Attachments.MaxBytes,
		Extensions: append([]string(nil), c.Attachments.Extensions...),
	}
}

// AssemblerOptions converts the catalog and rate sections into assembler
// options.
func (c Config) AssemblerOptions() []submission.Option {
	return []submission.Option{
		submission.WithSubjectCatalog(c.Subjects),
		submission.WithHourlyRateRange(c.HourlyRate.Min, c.HourlyRate.Max),
	}
}
