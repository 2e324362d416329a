package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chess10kp/powerwidget/internal/config"
	"github.com/chess10kp/powerwidget/internal/powerwidget"
	"github.com/chess10kp/powerwidget/internal/powerwidget/buttons"
	"github.com/chess10kp/powerwidget/internal/settings"
)

func main() {
	configPath := "~/.config/powerwidget/config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	if err := validate(configPath, os.Stdout); err != nil {
		os.Exit(1)
	}
}

// validate checks the daemon config and the settings file it points at. Every
// problem is printed; the returned error joins them.
func validate(configPath string, out io.Writer) error {
	fmt.Fprintf(out, "Validating config: %s\n", configPath)

	cfg, err := config.LoadAndValidateConfig(configPath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅ Config is valid! host=%s anchor=%s socket=%s\n",
		cfg.Widget.Host, cfg.Widget.Anchor, cfg.SocketPath)

	fmt.Fprintf(out, "Validating settings: %s\n", cfg.SettingsPath)
	store, err := settings.OpenFile(cfg.SettingsPath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	defer store.Close()

	problems := checkSettings(store, cfg)
	for _, p := range problems {
		fmt.Fprintf(out, "❌ %v\n", p)
	}
	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	raw, ok := store.GetString(powerwidget.SettingButtons)
	fmt.Fprintf(out, "✅ Settings are valid! buttons=%s\n",
		powerwidget.JoinButtons(powerwidget.ParseButtons(raw, ok)))
	return nil
}

func checkSettings(store *settings.FileStore, cfg *config.Config) []error {
	registry := powerwidget.NewRegistry()
	if err := registry.Register(buttons.NewFactory(buttons.Deps{
		Settings:         store,
		BrightnessLevels: cfg.Buttons.BrightnessLevels,
	})); err != nil {
		return []error{err}
	}

	var problems []error

	raw, ok := store.GetString(powerwidget.SettingButtons)
	recognized := 0
	for _, id := range powerwidget.ParseButtons(raw, ok) {
		// empty tokens are skipped by the widget
		if id == "" {
			continue
		}
		if err := registry.Recognize(id); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", powerwidget.SettingButtons, err))
			continue
		}
		recognized++
	}
	if recognized == 0 {
		problems = append(problems, fmt.Errorf("%s lists no buttons", powerwidget.SettingButtons))
	}

	if v, ok := store.GetString(powerwidget.SettingVisibility); ok {
		if _, err := strconv.Atoi(v); err != nil {
			problems = append(problems, fmt.Errorf("%s: %q is not a number", powerwidget.SettingVisibility, v))
		}
	}

	return problems
}
