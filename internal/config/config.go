package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Host kinds
const (
	HostGTK  = "gtk"
	HostText = "text"
)

type Config struct {
	AppName      string `toml:"app_name"`
	SocketPath   string `toml:"socket_path"`
	SettingsPath string `toml:"settings_path"`
	LogFile      string `toml:"log_file"`
	PidFile      string `toml:"pid_file"`
	// DBus exports the broadcast bus on the session bus
	DBus bool `toml:"dbus"`

	Widget  WidgetConfig  `toml:"widget"`
	Styling StylingConfig `toml:"styling"`
	Buttons ButtonsConfig `toml:"buttons"`
}

type WidgetConfig struct {
	Host          string `toml:"host"`
	Anchor        string `toml:"anchor"`
	Height        int    `toml:"height"`
	Margin        int    `toml:"margin"`
	FallbackWidth int    `toml:"fallback_width"`
	UseSway       bool   `toml:"use_sway"`
	IconSize      int    `toml:"icon_size"`
	IconCacheSize int    `toml:"icon_cache_size"`
}

type StylingConfig struct {
	Background      string `toml:"background"`
	Foreground      string `toml:"foreground"`
	OnColor         string `toml:"on_color"`
	OffColor        string `toml:"off_color"`
	TransitionColor string `toml:"transition_color"`
	Font            string `toml:"font"`
	FontSize        int    `toml:"font_size"`
	CustomCSS       string `toml:"custom_css"`
}

type ButtonsConfig struct {
	// BrightnessLevels are the values the brightness button cycles through
	BrightnessLevels []int `toml:"brightness_levels"`
}

var DefaultConfig = Config{
	AppName:      "powerwidget",
	SocketPath:   "/tmp/powerwidget_socket",
	SettingsPath: "~/.config/powerwidget/settings.toml",
	LogFile:      "~/.cache/powerwidget/powerwidget.log",
	PidFile:      "/tmp/powerwidget.pid",
	DBus:         true,
	Widget: WidgetConfig{
		Host:          HostGTK,
		Anchor:        "bottom",
		Height:        48,
		Margin:        0,
		FallbackWidth: 1080,
		UseSway:       true,
		IconSize:      24,
		IconCacheSize: 64,
	},
	Styling: StylingConfig{
		Background:      "#282828",
		Foreground:      "#ebdbb2",
		OnColor:         "#83a598",
		OffColor:        "#504945",
		TransitionColor: "#fabd2f",
		Font:            "Iosevka",
		FontSize:        14,
	},
	Buttons: ButtonsConfig{
		BrightnessLevels: []int{30, 102, 255},
	},
}

// Default returns a copy of DefaultConfig that does not share slices with it
func Default() *Config {
	cfg := DefaultConfig
	cfg.Buttons.BrightnessLevels = append([]int(nil), DefaultConfig.Buttons.BrightnessLevels...)
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	expandedPath := expandPath(path)

	cfg := Default()
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		cfg.expandPaths()
		return cfg, nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, err
	}

	// unset keys keep their defaults
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.expandPaths()
	return cfg, nil
}

func (c *Config) expandPaths() {
	c.SocketPath = expandPath(c.SocketPath)
	c.SettingsPath = expandPath(c.SettingsPath)
	c.LogFile = expandPath(c.LogFile)
	c.PidFile = expandPath(c.PidFile)
	c.Styling.CustomCSS = expandPath(c.Styling.CustomCSS)
}

func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
	}
	return path
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWidget(); err != nil {
		return err
	}
	if err := c.validateStyling(); err != nil {
		return err
	}
	if err := c.validateButtons(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if c.SettingsPath == "" {
		return fmt.Errorf("settings_path must not be empty")
	}
	return nil
}

func (c *Config) validateWidget() error {
	w := c.Widget
	if w.Host != HostGTK && w.Host != HostText {
		return fmt.Errorf("invalid widget host: %s (must be one of: gtk, text)", w.Host)
	}
	if w.Anchor != "top" && w.Anchor != "bottom" {
		return fmt.Errorf("invalid widget anchor: %s (must be one of: top, bottom)", w.Anchor)
	}
	if w.Height < 16 || w.Height > 200 {
		return fmt.Errorf("invalid widget height: %d (must be 16-200px)", w.Height)
	}
	if w.Margin < 0 || w.Margin > 500 {
		return fmt.Errorf("invalid widget margin: %d (must be 0-500px)", w.Margin)
	}
	if w.FallbackWidth < 1 || w.FallbackWidth > 16384 {
		return fmt.Errorf("invalid fallback_width: %d (must be 1-16384)", w.FallbackWidth)
	}
	if w.IconSize < 8 || w.IconSize > 256 {
		return fmt.Errorf("invalid icon_size: %d (must be 8-256)", w.IconSize)
	}
	if w.IconCacheSize < 1 || w.IconCacheSize > 10000 {
		return fmt.Errorf("invalid icon_cache_size: %d (must be 1-10000)", w.IconCacheSize)
	}
	return nil
}

func (c *Config) validateStyling() error {
	s := c.Styling
	if s.FontSize < 6 || s.FontSize > 72 {
		return fmt.Errorf("invalid font_size: %d (must be 6-72px)", s.FontSize)
	}
	if s.CustomCSS != "" {
		if _, err := os.Stat(s.CustomCSS); err != nil {
			return fmt.Errorf("custom_css not readable: %w", err)
		}
	}
	return nil
}

func (c *Config) validateButtons() error {
	levels := c.Buttons.BrightnessLevels
	if len(levels) == 0 {
		return fmt.Errorf("brightness_levels must not be empty")
	}
	for _, l := range levels {
		if l < 1 || l > 255 {
			return fmt.Errorf("invalid brightness level: %d (must be 1-255)", l)
		}
	}
	return nil
}

func ValidateConfig(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
