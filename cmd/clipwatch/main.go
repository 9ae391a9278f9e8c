// clipwatch: clipboard monitor child process for editor extensions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clipwatch/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipwatch",
		Short: "Clipboard monitor speaking line-delimited JSON over stdio",
		Long: `clipwatch is spawned by a host process (an editor extension) and watches
the system clipboard for text changes.

Protocol: one JSON object per line. stdout carries ready / clipboard_update /
trigger_xml / error messages to the host; stdin carries pause / resume
commands from it. Diagnostics go to stderr only, so every stdout line is a
well-formed protocol message.

Run "clipwatch monitor" as the long-lived child. "clipwatch copy-files" is a
one-shot helper that places file paths on the clipboard.

Config file search order (first found wins):
  /etc/clipwatch/clipwatch.toml
  $HOME/.config/clipwatch/clipwatch.toml
  path supplied via --config

All flags can be set via CLIPWATCH_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newMonitorCmd(),
		newCopyFilesCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipwatch %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(formatStr, levelStr string) {
	logging.Setup(logging.ParseFormat(formatStr), logging.ParseLevel(levelStr))
}
