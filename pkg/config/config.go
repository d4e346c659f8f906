// Package config loads pantheon's user configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/pantheon/config.yaml
//   - Data:    ~/.local/share/pantheon/ (fallback dataset location)
//
// Command-line flags override every value read here.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "pantheon"

// SlugPlaceholder is replaced by the entity slug in URL templates.
const SlugPlaceholder = "{slug}"

// DataConfig says where the dataset comes from.
type DataConfig struct {
	// Path is a file path or an http(s) URL. Empty means discovery.
	Path string `yaml:"path,omitempty"`
	// Timeout bounds the initial load.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// AssetsConfig holds the URL templates resolved per entity.
type AssetsConfig struct {
	// BaseURL is prefixed to profile links opened in a browser.
	BaseURL         string `yaml:"base_url,omitempty"`
	FacesTemplate   string `yaml:"faces_template,omitempty"`
	ProfileTemplate string `yaml:"profile_template,omitempty"`
}

// UIConfig holds display preferences.
type UIConfig struct {
	// AnimationFrames is how many frames a node takes to enter or leave.
	// Zero disables animation.
	AnimationFrames int           `yaml:"animation_frames"`
	FrameInterval   time.Duration `yaml:"frame_interval,omitempty"`
	// Theme is "auto", "dark" or "light".
	Theme string `yaml:"theme,omitempty"`
	Mouse bool   `yaml:"mouse"`
}

// Config is the top-level configuration.
type Config struct {
	Data DataConfig `yaml:"data,omitempty"`
	// DefaultSlug is the entity shown when none is given on the command line.
	DefaultSlug string `yaml:"default_slug,omitempty"`
	// Culture restricts the start-up picker to one culture. Empty lists all.
	Culture string       `yaml:"culture,omitempty"`
	Assets  AssetsConfig `yaml:"assets,omitempty"`
	UI      UIConfig     `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with the defaults used when no file exists.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{Timeout: 10 * time.Second},
		Assets: AssetsConfig{
			FacesTemplate:   "/faces/{slug}.webp",
			ProfileTemplate: "/dieux/{slug}/",
		},
		UI: UIConfig{
			AnimationFrames: 6,
			FrameInterval:   30 * time.Millisecond,
			Theme:           "auto",
			Mouse:           true,
		},
	}
}

// ConfigDir returns the XDG config directory.
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

// DataDir returns the XDG data directory, searched for a dataset after the
// working directory.
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

// LoadFrom reads config from a specific path. Missing keys keep their
// defaults; a missing file is not an error.
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
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if !strings.Contains(cfg.Data.Path, "://") {
		cfg.Data.Path = expandHome(cfg.Data.Path)
	}
	cfg.Culture = strings.ToLower(strings.TrimSpace(cfg.Culture))
	return cfg, nil
}

// Validate rejects values the viewer cannot honour.
func (c Config) Validate() error {
	var errs []error
	switch c.UI.Theme {
	case "", "auto", "dark", "light":
	default:
		errs = append(errs, fmt.Errorf("ui.theme %q: want auto, dark or light", c.UI.Theme))
	}
	if c.UI.AnimationFrames < 0 {
		errs = append(errs, fmt.Errorf("ui.animation_frames must not be negative"))
	}
	if c.Data.Timeout < 0 {
		errs = append(errs, fmt.Errorf("data.timeout must not be negative"))
	}
	if c.Assets.BaseURL != "" {
		if _, err := url.Parse(c.Assets.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("assets.base_url: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
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

// FaceURL resolves the portrait asset path for slug. The asset is never
// fetched or checked.
func (a AssetsConfig) FaceURL(slug string) string {
	return expandTemplate(a.FacesTemplate, slug)
}

// ProfileURL resolves the profile page for slug, prefixed with BaseURL.
func (a AssetsConfig) ProfileURL(slug string) string {
	p := expandTemplate(a.ProfileTemplate, slug)
	if a.BaseURL == "" {
		return p
	}
	return strings.TrimRight(a.BaseURL, "/") + "/" + strings.TrimLeft(p, "/")
}

func expandTemplate(tmpl, slug string) string {
	return strings.ReplaceAll(tmpl, SlugPlaceholder, url.PathEscape(slug))
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
