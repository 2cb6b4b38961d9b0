package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"audittray/internal/config"
	"audittray/internal/events"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	var markerFlag string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Signal the daemon that packages changed (used by the pacman hook)",
		Long: "Writes the signal marker file watched by the daemon. A running daemon\n" +
			"re-checks only when the previous check reported missing updates.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			marker := strings.TrimSpace(markerFlag)
			if marker == "" {
				marker = defaultMarkerPath(ctx)
			}
			if err := events.Touch(marker); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signalled %s\n", marker)
			return nil
		},
	}
	cmd.Flags().StringVar(&markerFlag, "marker", "", "Marker file to write (defaults to the configured signal path)")
	return cmd
}

// The hook runs as root where no user config may exist, so a broken
// config falls back to the built-in marker instead of failing the upgrade.
func defaultMarkerPath(ctx *commandContext) string {
	if cfg, err := ctx.ensureConfig(); err == nil {
		return cfg.MarkerPath()
	}
	defaults := config.Default()
	return filepath.Join(defaults.Signal.Dir, defaults.Signal.Marker)
}
