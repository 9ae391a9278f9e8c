package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"clipwatch/internal/clip"
	"clipwatch/internal/protocol"
	"clipwatch/internal/watch"
	"clipwatch/internal/wire"
)

func newMonitorCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the clipboard poll loop (spawned by the host)",
		Long: `Watches the system clipboard and reports text changes on stdout as
line-delimited JSON. Reads pause/resume commands from stdin. Runs until the
host closes stdin, stops reading stdout, or sends SIGINT/SIGTERM.

The poll cadence is fixed internal configuration, not part of the protocol;
poll-interval and paused-interval can be tuned via the config file or
CLIPWATCH_* env vars when debugging.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runMonitor(v) },
	}

	addLoggingFlags(cmd)
	addConfigFlag(cmd)
	v.SetDefault("poll-interval", watch.DefaultActiveInterval)
	v.SetDefault("paused-interval", watch.DefaultPausedInterval)

	return cmd
}

func runMonitor(v *viper.Viper) error {
	setupLogging(v)

	emitter := wire.NewEmitter(os.Stdout)

	// Clipboard backend failure at startup is the one fatal condition the
	// host learns about over the protocol before we exit non-zero.
	if err := clip.Init(); err != nil {
		_ = emitter.Emit(protocol.Errorf("failed to initialize clipboard: %v", err))
		return err
	}

	state := watch.NewState()
	listener := watch.NewListener(os.Stdin, state)
	go listener.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor := watch.NewMonitor(clip.System{}, emitter, state, watch.NewScanner(), watch.Config{
		ActiveInterval: v.GetDuration("poll-interval"),
		PausedInterval: v.GetDuration("paused-interval"),
	})

	slog.Info("clipwatch starting", "version", Version)
	return monitor.Run(ctx, listener.Done())
}
