package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chess10kp/powerwidget/internal/config"
	"github.com/chess10kp/powerwidget/internal/ipc"
)

const defaultConfigPath = "~/.config/powerwidget/config.toml"

// sender delivers one command to the daemon and returns the reply detail
type sender func(socketPath string, cmd ipc.Command) (string, error)

func sendToDaemon(socketPath string, cmd ipc.Command) (string, error) {
	return ipc.SendCommand(socketPath, cmd, ipc.DefaultTimeout)
}

// socketPath prefers the flag, then POWERWIDGET_SOCKET, then the config file
func socketPath(flagValue, configPath string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("POWERWIDGET_SOCKET"); env != "" {
		return env
	}
	cfg, err := config.LoadConfig(configPath)
	if err == nil && cfg.SocketPath != "" {
		return cfg.SocketPath
	}
	return config.DefaultConfig.SocketPath
}

func newRootCmd(send sender, out io.Writer) *cobra.Command {
	var socketFlag, configPath string

	rootCmd := &cobra.Command{
		Use:           "powerwidgetctl",
		Short:         "Control a running powerwidget",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&socketFlag, "socket", "s", "", "control socket (default from config)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config.toml")

	do := func(cmd ipc.Command) error {
		detail, err := send(socketPath(socketFlag, configPath), cmd)
		if err != nil {
			return err
		}
		if detail != "" {
			fmt.Fprintln(out, detail)
		}
		return nil
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "broadcast <action> [key=value...]",
			Short: "Send a broadcast; prints how many receivers got it",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				extras := make(map[string]string, len(args)-1)
				for _, kv := range args[1:] {
					k, v, ok := strings.Cut(kv, "=")
					if !ok || k == "" {
						return fmt.Errorf("extra %q is not key=value", kv)
					}
					extras[k] = v
				}
				return do(ipc.Command{Name: ipc.CmdBroadcast, Action: args[0], Extras: extras})
			},
		},
		&cobra.Command{
			Use:   "set <key> [value]",
			Short: "Write a setting, an omitted value writes an empty string",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return do(ipc.Command{Name: ipc.CmdSet, Key: args[0], Value: strings.Join(args[1:], " ")})
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Read a setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return do(ipc.Command{Name: ipc.CmdGet, Key: args[0]})
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Show or hide the widget",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return do(ipc.Command{Name: ipc.CmdToggle})
			},
		},
		indexCmd("click", "Press the button at index", ipc.CmdClick, do),
		indexCmd("longclick", "Long press the button at index", ipc.CmdLongClick, do),
		&cobra.Command{
			Use:   "rebuild",
			Short: "Reload the button list",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return do(ipc.Command{Name: ipc.CmdRebuild})
			},
		},
		&cobra.Command{
			Use:   "ping",
			Short: "Check that the daemon is running",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return do(ipc.Command{Name: ipc.CmdPing})
			},
		},
	)

	return rootCmd
}

func indexCmd(name, short, command string, do func(ipc.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <index>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return fmt.Errorf("invalid index %q", args[0])
			}
			return do(ipc.Command{Name: command, Index: index})
		},
	}
}

func main() {
	if err := newRootCmd(sendToDaemon, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "powerwidgetctl: %v\n", err)
		os.Exit(1)
	}
}
