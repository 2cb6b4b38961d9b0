package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"audittray/internal/audit"
	"audittray/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the latest check result from the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}
				printStatus(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the status as JSON")
	return cmd
}

func printStatus(w io.Writer, resp *ipc.StatusResponse) {
	if !resp.Checked {
		fmt.Fprintln(w, "No check has completed yet")
	} else {
		fmt.Fprintf(w, "%s\n", resp.Text)
	}

	rows := [][]string{
		{"PID", strconv.Itoa(resp.PID)},
		{"Audit binary", resp.AuditBinary},
		{"Icon", resp.Icon},
		{"Needs updates", yesNo(resp.NeedsUpdates)},
		{"Checks", strconv.FormatUint(resp.Checks, 10)},
		{"Last check", formatTime(resp.CheckedAt)},
		{"Next check", formatTime(resp.NextCheck)},
		{"Signal watcher", yesNo(resp.WatcherRunning)},
	}
	if resp.WatcherError != "" {
		rows = append(rows, []string{"Watcher error", resp.WatcherError})
	}
	if resp.IconDir != "" {
		rows = append(rows, []string{"Icon theme", resp.IconTheme + " (" + resp.IconDir + ")"})
	}
	fmt.Fprintln(w, renderTable(w, []string{"Field", "Value"}, rows, nil))

	if len(resp.Updates) > 0 {
		fmt.Fprintln(w, renderUpdates(w, resp.Updates))
	}
}

func renderUpdates(w io.Writer, updates []audit.Update) string {
	rows := make([][]string, 0, len(updates))
	for _, u := range updates {
		rows = append(rows, []string{u.Severity.String(), u.Package, strings.TrimSpace(u.Kind), u.Advisory, u.Link})
	}
	return renderTable(w, []string{"Severity", "Package", "Kind", "Advisory", "Link"}, rows, nil)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func newCheckNowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-now",
		Short: "Ask the daemon to check immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CheckNow()
				if err != nil {
					return err
				}
				if !resp.Queued {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon is shutting down; check not queued")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Check queued")
				return nil
			})
		},
	}
}
