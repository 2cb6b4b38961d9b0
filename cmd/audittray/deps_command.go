package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audittray/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external programs and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.Check(cfg)
			if jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				rows := make([][]string, 0, len(statuses))
				for _, s := range statuses {
					state := "ok"
					if !s.Available {
						state = "missing"
						if s.Optional {
							state = "missing (optional)"
						}
					}
					location := s.Path
					if !s.Available {
						location = s.Detail
					}
					rows = append(rows, []string{s.Name, state, location})
				}
				fmt.Fprintln(w, renderTable(w, []string{"Dependency", "State", "Location"}, rows, nil))
			}
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}
