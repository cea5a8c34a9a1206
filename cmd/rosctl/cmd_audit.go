package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/rosctl/pkg/audit"
	"github.com/newtron-network/rosctl/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View the audit log of executed reconciliations.

Every executed (non-preview) run is logged with the user, device, entry,
action, command sent and whether the device accepted it.

Examples:
  rosctl audit list --device core-rtr1
  rosctl audit list --last 24h --changed
  rosctl audit list --kind ip-pool --failures`,
}

var (
	auditDevice   string
	auditKind     string
	auditAction   string
	auditLast     string
	auditLimit    int
	auditChanged  bool
	auditFailures bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Device:      auditDevice,
			Kind:        auditKind,
			Action:      auditAction,
			Limit:       auditLimit,
			ChangedOnly: auditChanged,
			FailureOnly: auditFailures,
		}

		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "DEVICE", "KIND", "KEY", "ACTION", "STATUS")
		for _, event := range events {
			st := green("ok")
			switch {
			case !event.Success:
				st = red("failed")
			case event.Changed:
				st = green("changed")
			}
			action := event.Action
			if action == "" {
				action = "-"
			}
			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Device,
				event.Kind,
				event.Key,
				action,
				st,
			)
		}
		t.Flush()
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditDevice, "device", "", "Filter by device")
	auditListCmd.Flags().StringVar(&auditKind, "kind", "", "Filter by entry kind")
	auditListCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action (create, remove, enable, disable, none)")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditChanged, "changed", false, "Show only runs that changed the device")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed runs")

	auditCmd.AddCommand(auditListCmd)
}
