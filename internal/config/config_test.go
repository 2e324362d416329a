package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Widget.Host != HostGTK {
		t.Errorf("expected host %q, got %q", HostGTK, cfg.Widget.Host)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
socket_path = "/tmp/pw-test.sock"

[widget]
host = "text"
fallback_width = 800

[buttons]
brightness_levels = [10, 200]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAndValidateConfig(path)
	if err != nil {
		t.Fatalf("LoadAndValidateConfig: %v", err)
	}
	if cfg.SocketPath != "/tmp/pw-test.sock" {
		t.Errorf("socket path = %q", cfg.SocketPath)
	}
	if cfg.Widget.Host != HostText || cfg.Widget.FallbackWidth != 800 {
		t.Errorf("widget section not applied: %+v", cfg.Widget)
	}
	if cfg.Widget.Anchor != "bottom" {
		t.Errorf("unset anchor should keep default, got %q", cfg.Widget.Anchor)
	}
	if len(cfg.Buttons.BrightnessLevels) != 2 || cfg.Buttons.BrightnessLevels[1] != 200 {
		t.Errorf("brightness levels = %v", cfg.Buttons.BrightnessLevels)
	}
}

func TestLoadConfigDoesNotMutateDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Buttons.BrightnessLevels[0] = 99
	if DefaultConfig.Buttons.BrightnessLevels[0] == 99 {
		t.Error("default brightness levels were shared with a loaded config")
	}
}

func TestLoadConfigExpandsHome(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(cfg.SettingsPath, "~") {
		t.Errorf("settings path not expanded: %s", cfg.SettingsPath)
	}
}

func TestLoadConfigInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[widget\nhost = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
	if err := ValidateConfig(path); err == nil {
		t.Error("expected ValidateConfig to fail")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Widget.Anchor = "top"
	cfg.Styling.OnColor = "#ff0000"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, err := LoadAndValidateConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Widget.Anchor != "top" || loaded.Styling.OnColor != "#ff0000" {
		t.Errorf("round trip lost values: %+v %+v", loaded.Widget, loaded.Styling)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty socket", func(c *Config) { c.SocketPath = "" }, "socket_path"},
		{"unknown host", func(c *Config) { c.Widget.Host = "qt" }, "widget host"},
		{"bad anchor", func(c *Config) { c.Widget.Anchor = "left" }, "anchor"},
		{"tiny height", func(c *Config) { c.Widget.Height = 2 }, "height"},
		{"negative margin", func(c *Config) { c.Widget.Margin = -1 }, "margin"},
		{"zero fallback width", func(c *Config) { c.Widget.FallbackWidth = 0 }, "fallback_width"},
		{"huge icons", func(c *Config) { c.Widget.IconSize = 1000 }, "icon_size"},
		{"no icon cache", func(c *Config) { c.Widget.IconCacheSize = 0 }, "icon_cache_size"},
		{"font size", func(c *Config) { c.Styling.FontSize = 1 }, "font_size"},
		{"missing css", func(c *Config) { c.Styling.CustomCSS = "/nonexistent/pw.css" }, "custom_css"},
		{"no levels", func(c *Config) { c.Buttons.BrightnessLevels = nil }, "brightness_levels"},
		{"level out of range", func(c *Config) { c.Buttons.BrightnessLevels = []int{0, 300} }, "brightness level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
