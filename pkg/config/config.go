// Package config handles loading and saving oasftree configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/oasftree/config.yaml
//   - Data:    ~/.local/share/oasftree/taxonomy/ (user taxonomy files)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/oasftree/pkg/model"
)

const appName = "oasftree"

// Environment overrides, applied on top of the config file.
const (
	EnvType    = "OASFTREE_TYPE"
	EnvDataDir = "OASFTREE_DATA_DIR"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	ShowDetail *bool   `yaml:"show_detail,omitempty"` // Detail pane visible at start (default true)
	SplitRatio float64 `yaml:"split_ratio,omitempty"` // Tree pane share of the width (0.2-0.8)
}

// ExportConfig holds defaults for the export wizard.
type ExportConfig struct {
	Dir string `yaml:"dir,omitempty"` // Output directory (default ".")
}

// Config is the top-level configuration for oasftree.
type Config struct {
	DataDir     string       `yaml:"data_dir,omitempty"`     // Taxonomy files; embedded data when empty
	DefaultType string       `yaml:"default_type,omitempty"` // skill or domain
	MatchSlug   bool         `yaml:"match_slug,omitempty"`   // Also match queries against slugs
	ExpandDepth int          `yaml:"expand_depth,omitempty"` // Levels shown at start, 0 = roots only
	UI          UIConfig     `yaml:"ui,omitempty"`
	Export      ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultType: string(model.TypeSkill),
		UI: UIConfig{
			SplitRatio: 0.5,
		},
		Export: ExportConfig{
			Dir: ".",
		},
	}
}

// ConfigDir returns the XDG config directory for oasftree.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG data directory for oasftree.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from OASFTREE_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvType)); v != "" {
		c.DefaultType = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.DataDir = expandHome(v)
	}
}

// Validate checks field values. Errors from all fields are joined.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Type(); err != nil {
		errs = append(errs, fmt.Errorf("default_type: %w", err))
	}
	if c.ExpandDepth < 0 {
		errs = append(errs, fmt.Errorf("expand_depth must be >= 0, got %d", c.ExpandDepth))
	}
	if r := c.UI.SplitRatio; r != 0 && (r < 0.2 || r > 0.8) {
		errs = append(errs, fmt.Errorf("ui.split_ratio must be between 0.2 and 0.8, got %g", r))
	}
	return errors.Join(errs...)
}

// Type returns the parsed default taxonomy type.
func (c Config) Type() (model.TaxonomyType, error) {
	if c.DefaultType == "" {
		return model.TypeSkill, nil
	}
	return model.ParseTaxonomyType(c.DefaultType)
}

// DetailVisible reports whether the detail pane starts open.
func (c Config) DetailVisible() bool {
	return c.UI.ShowDetail == nil || *c.UI.ShowDetail
}

// ResolvedDataDir returns the taxonomy directory to load from: data_dir when
// set, otherwise <XDG data dir>/taxonomy if it exists, otherwise "" (the
// embedded dataset).
func (c Config) ResolvedDataDir() string {
	if c.DataDir != "" {
		return expandHome(c.DataDir)
	}
	base := DataDir()
	if base == "" {
		return ""
	}
	dir := filepath.Join(base, "taxonomy")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
