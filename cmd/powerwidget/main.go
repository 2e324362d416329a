package main

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chess10kp/powerwidget/internal/config"
	"github.com/chess10kp/powerwidget/internal/core"
)

const defaultConfigPath = "~/.config/powerwidget/config.toml"

func ensureSingleInstance(pidFile string) error {
	if data, err := os.ReadFile(pidFile); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			process, err := os.FindProcess(pid)
			if err == nil {
				// Check if process is still running
				if err := process.Signal(syscall.Signal(0)); err == nil {
					process.Signal(syscall.SIGTERM)
				}
			}
		}
	}
	currentPid := os.Getpid()
	return os.WriteFile(pidFile, []byte(strconv.Itoa(currentPid)), 0644)
}

func main() {
	var configPath, host string

	rootCmd := &cobra.Command{
		Use:   "powerwidget",
		Short: "Row of quick settings toggles anchored to a screen edge",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			run(configPath, host)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config.toml")
	rootCmd.Flags().StringVar(&host, "host", "", "override the widget host (gtk or text)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, host string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		cfg = config.Default()
	}
	if host != "" {
		cfg.Widget.Host = host
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Set up logging to file
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err == nil {
			logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				log.SetOutput(logFile)
				defer logFile.Close()
			}
		}
	}

	// Ensure single instance
	if err := ensureSingleInstance(cfg.PidFile); err != nil {
		log.Fatalf("Failed to ensure single instance: %v", err)
	}
	defer os.Remove(cfg.PidFile)

	app, err := core.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}
