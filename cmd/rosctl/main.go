// rosctl - RouterOS entry reconciliation tool
//
// Brings one configuration entry on a RouterOS device to a desired state
// (present, absent, enabled, disabled) with at most one mutating command:
//
//   - Count matching entries with "print count-only where ..."
//   - Decide: create, remove, enable, disable or nothing
//   - Send the single command and report what the device said
//
// Write commands preview by default (the count query still runs) and
// require -x to execute.
//
// Examples:
//
//	rosctl -d core-rtr1 ip-address --address 10.0.0.1/24 --interface bridge-lan
//	rosctl -d core-rtr1 ip-address --address 10.0.0.1/24 --interface bridge-lan --state disabled -x
//	rosctl -d edge-rtr2 ip-pool --name guest --ranges 10.9.0.10-10.9.0.99 -x
//	rosctl -d edge-rtr2 ip-pool --name guest --state absent -x
//	rosctl apply -f tasks.yaml -x --keep-going
//	rosctl audit list --device core-rtr1 --last 24h
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/newtron-network/rosctl/pkg/audit"
	"github.com/newtron-network/rosctl/pkg/cli"
	"github.com/newtron-network/rosctl/pkg/settings"
	"github.com/newtron-network/rosctl/pkg/util"
	"github.com/newtron-network/rosctl/pkg/version"
)

var (
	// Global context flags
	deviceName    string // -d, --device
	inventoryPath string // -I, --inventory

	// Global option flags
	executeMode bool
	verbose     bool
	jsonOutput  bool

	// Global state
	userSettings *settings.Settings
	auditLogger  audit.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if auditLogger != nil {
		auditLogger.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "rosctl",
	Short:             "RouterOS entry reconciliation tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `rosctl brings one RouterOS configuration entry to a desired state.

Write commands preview changes by default. Use -x to execute.

  rosctl -d <device> <kind> --<key> <value>... [--state S] [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set log level: quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if jsonOutput {
			util.SetJSONFormat()
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		// Apply defaults from settings
		if deviceName == "" {
			deviceName = userSettings.DefaultDevice
		}
		if inventoryPath == "" {
			inventoryPath = userSettings.Inventory
		}

		auditPath := userSettings.GetAuditLog()
		util.Debugf("audit log: %s", auditPath)
		fl, err := audit.NewFileLogger(auditPath, audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			auditLogger = fl
			audit.SetDefaultLogger(fl)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "", "Device name (inventory entry, or host when no inventory is set)")
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "I", "", "Inventory file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")

	for _, cmd := range []*cobra.Command{ipAddressCmd, ipPoolCmd, applyCmd} {
		addWriteFlags(cmd)
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "entry", Title: "Entry Reconciliation:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{ipAddressCmd, ipPoolCmd, applyCmd} {
		cmd.GroupID = "entry"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line("rosctl"))
	},
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help, or version command.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// addWriteFlags registers -x/--execute as a local flag.
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&executeMode, "execute", "x", false, "Execute changes (default is preview)")
}

// Color helpers, delegating to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
