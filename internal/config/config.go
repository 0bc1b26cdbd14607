package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"emperror.dev/errors"
	validator "gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRepo         = "koron/vim-kaoriya"
	DefaultAPIBase      = "https://api.github.com"
	DefaultLogLevel     = "warn"
	DefaultTimeout      = "0s"
	DefaultPollInterval = "100ms"
	DefaultSkipMarker   = "pdb"
	DefaultDestDir      = "."
)

// Config holds the optional settings file.
type Config struct {
	Repo         string `yaml:"repo" validate:"required,contains=/"`
	APIBase      string `yaml:"api_base" validate:"required,url"`
	LogLevel     string `yaml:"log_level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	UserAgent    string `yaml:"user_agent"`
	Timeout      string `yaml:"timeout" validate:"required"`
	PollInterval string `yaml:"poll_interval" validate:"required"`
	SkipMarker   string `yaml:"skip_marker" validate:"required"`
	DestDir      string `yaml:"dest_dir" validate:"required"`

	path string
}

func Default() *Config {
	return &Config{
		Repo:         DefaultRepo,
		APIBase:      DefaultAPIBase,
		LogLevel:     DefaultLogLevel,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		SkipMarker:   DefaultSkipMarker,
		DestDir:      DefaultDestDir,
	}
}

// DefaultPath returns DLKV_CONFIG, or config.yaml under the user config dir.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv("DLKV_CONFIG")); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "dl-kaoriya-vim", "config.yaml")
	}
	return ""
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if strings.TrimSpace(c.Repo) == "" {
		c.Repo = d.Repo
	}
	if strings.TrimSpace(c.APIBase) == "" {
		c.APIBase = d.APIBase
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = d.LogLevel
	}
	if strings.TrimSpace(c.Timeout) == "" {
		c.Timeout = d.Timeout
	}
	if strings.TrimSpace(c.PollInterval) == "" {
		c.PollInterval = d.PollInterval
	}
	if c.SkipMarker == "" {
		c.SkipMarker = d.SkipMarker
	}
	if strings.TrimSpace(c.DestDir) == "" {
		c.DestDir = d.DestDir
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d < 0 {
		return errors.Errorf("invalid timeout: %s", c.Timeout)
	}
	if d, err := time.ParseDuration(c.PollInterval); err != nil || d <= 0 {
		return errors.Errorf("invalid poll_interval: %s", c.PollInterval)
	}
	return nil
}

// TimeoutDuration is the release query timeout; zero disables it.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

func (c *Config) Path() string {
	return c.path
}
