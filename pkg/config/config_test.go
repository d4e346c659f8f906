package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.UI.AnimationFrames != 6 || !cfg.UI.Mouse || cfg.UI.Theme != "auto" {
		t.Errorf("unexpected UI defaults: %+v", cfg.UI)
	}
	if cfg.Data.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Data.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Assets.FacesTemplate != "/faces/{slug}.webp" {
		t.Errorf("expected defaults, got %+v", cfg.Assets)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data:
  path: ~/myths/genealogie.json
  timeout: 3s
default_slug: athena
culture: " Grecque "
assets:
  base_url: https://example.org/
ui:
  animation_frames: 0
  theme: light
  mouse: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "myths/genealogie.json"); cfg.Data.Path != want {
		t.Errorf("data path = %q, want %q", cfg.Data.Path, want)
	}
	if cfg.Data.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Data.Timeout)
	}
	if cfg.DefaultSlug != "athena" || cfg.Culture != "grecque" {
		t.Errorf("slug=%q culture=%q", cfg.DefaultSlug, cfg.Culture)
	}
	if cfg.UI.AnimationFrames != 0 || cfg.UI.Mouse || cfg.UI.Theme != "light" {
		t.Errorf("ui = %+v", cfg.UI)
	}
	// Unset keys keep their defaults.
	if cfg.Assets.ProfileTemplate != "/dieux/{slug}/" {
		t.Errorf("profile template = %q", cfg.Assets.ProfileTemplate)
	}
}

func TestLoadFrom_URLPathUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data:\n  path: https://example.org/data/genealogie.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Path != "https://example.org/data/genealogie.json" {
		t.Errorf("url path rewritten: %q", cfg.Data.Path)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("ui: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(bad); err == nil {
		t.Error("expected parse error")
	}

	theme := filepath.Join(dir, "theme.yaml")
	if err := os.WriteFile(theme, []byte("ui:\n  theme: neon\n  animation_frames: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(theme)
	if err == nil || !strings.Contains(err.Error(), "neon") || !strings.Contains(err.Error(), "animation_frames") {
		t.Errorf("expected both validation errors, got %v", err)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.DefaultSlug = "hera"
	if err := SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.DefaultSlug != "hera" || got.UI != cfg.UI {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestAssetURLs(t *testing.T) {
	a := DefaultConfig().Assets
	if got := a.FaceURL("zeus"); got != "/faces/zeus.webp" {
		t.Errorf("FaceURL = %q", got)
	}
	if got := a.ProfileURL("zeus"); got != "/dieux/zeus/" {
		t.Errorf("ProfileURL = %q", got)
	}
	a.BaseURL = "https://example.org/"
	if got := a.ProfileURL("gaia"); got != "https://example.org/dieux/gaia/" {
		t.Errorf("ProfileURL with base = %q", got)
	}
	if got := a.FaceURL("a b"); got != "/faces/a%20b.webp" {
		t.Errorf("slug should be escaped, got %q", got)
	}
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := ConfigPath(); got != "/tmp/cfg/pantheon/config.yaml" {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := DataDir(); got != "/tmp/data/pantheon" {
		t.Errorf("DataDir = %q", got)
	}
}
