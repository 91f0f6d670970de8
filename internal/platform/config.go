package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName marks a data directory and holds its settings.
	ConfigFileName = "tally.yaml"
	// DefaultDatabase is the note database inside the data directory.
	DefaultDatabase = "tally.db"
	// DefaultAssets is the asset directory inside the data directory.
	DefaultAssets = "images"
	// HomeEnv overrides the data directory.
	HomeEnv = "TALLY_HOME"
)

// FileConfig is the on-disk form of tally.yaml. Empty fields keep defaults.
type FileConfig struct {
	Database    string `yaml:"database,omitempty"`
	Assets      string `yaml:"assets,omitempty"`
	Debounce    string `yaml:"debounce,omitempty"`
	GracePeriod string `yaml:"grace_period,omitempty"`
	WeekStart   string `yaml:"week_start,omitempty"`
	AppVersion  string `yaml:"app_version,omitempty"`
}

// LoadConfig reads tally.yaml from dir. A missing file yields an empty config.
func LoadConfig(dir string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to dir/tally.yaml.
func SaveConfig(dir string, cfg FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644)
}

// Options converts the file settings to functional options.
func (c FileConfig) Options() ([]Option, error) {
	var opts []Option
	if c.Database != "" {
		opts = append(opts, WithDatabase(c.Database))
	}
	if c.Assets != "" {
		opts = append(opts, WithAssets(c.Assets))
	}
	if c.Debounce != "" {
		d, err := time.ParseDuration(c.Debounce)
		if err != nil {
			return nil, fmt.Errorf("debounce: %w", err)
		}
		opts = append(opts, WithDebounce(d))
	}
	if c.GracePeriod != "" {
		d, err := time.ParseDuration(c.GracePeriod)
		if err != nil {
			return nil, fmt.Errorf("grace_period: %w", err)
		}
		opts = append(opts, WithGracePeriod(d))
	}
	if c.WeekStart != "" {
		day, err := ParseWeekday(c.WeekStart)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithWeekStart(day))
	}
	if c.AppVersion != "" {
		opts = append(opts, WithAppVersion(c.AppVersion))
	}
	return opts, nil
}

// ParseWeekday parses an English day name such as "monday" or "Sun".
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown week day %q", s)
}
