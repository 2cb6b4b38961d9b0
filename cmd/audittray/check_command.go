package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audittray/internal/audit"
	"audittray/internal/status"
)

type checkOutput struct {
	Text         string         `json:"text"`
	Icon         status.Icon    `json:"icon"`
	NeedsUpdates bool           `json:"needs_updates"`
	Updates      []audit.Update `json:"updates"`
	Error        string         `json:"error,omitempty"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run arch-audit once and print the result without a daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg, "stderr")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			invoker := audit.NewInvoker(audit.Options{
				Binary:          cfg.Audit.Binary,
				AdvisoryBaseURL: cfg.Audit.AdvisoryBaseURL,
				Timeout:         cfg.AuditTimeout(),
				Logger:          logger,
			})
			result := invoker.Check(cmd.Context())
			text, icon := status.Project(result)

			if jsonOutput {
				out := checkOutput{
					Text:         text,
					Icon:         icon,
					NeedsUpdates: result.NeedsUpdates(),
					Updates:      result.Updates,
					Error:        result.Err,
				}
				if out.Updates == nil {
					out.Updates = []audit.Update{}
				}
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, text)
				if len(result.Updates) > 0 {
					fmt.Fprintln(w, renderUpdates(w, result.Updates))
				}
			}
			if result.Failed() {
				return fmt.Errorf("audit failed: %s", result.Err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}
