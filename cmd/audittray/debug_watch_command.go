package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"audittray/internal/events"
)

func newDebugWatchCommand(ctx *commandContext) *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "debug-watch",
		Short: "Print signal notifications as the daemon would see them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if backend == "" {
				backend = cfg.Signal.Backend
			}
			logger, err := ctx.logger(cfg, "stderr")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			sink := events.NewQueue[events.WakeEvent]()
			defer sink.Close()
			watcher := events.NewSignalWatcher(events.WatcherOptions{
				Dir:     cfg.Signal.Dir,
				Backend: backend,
				Logger:  logger,
				Observer: func(name string) {
					if name == "" {
						name = "(overflow)"
					}
					fmt.Fprintf(out, "%s %s\n", time.Now().Format(time.TimeOnly), name)
				},
			}, sink)
			if err := watcher.Start(runCtx); err != nil {
				return err
			}
			defer watcher.Stop()
			if err := watcher.SetupError(); err != nil {
				return fmt.Errorf("watch %s: %w", cfg.Signal.Dir, err)
			}
			fmt.Fprintf(out, "Watching %s with %s; press Ctrl-C to stop\n", cfg.Signal.Dir, backend)

			for {
				select {
				case <-runCtx.Done():
					return nil
				case <-sink.Out():
				}
			}
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "Override the configured backend (inotify or fsnotify)")
	return cmd
}
