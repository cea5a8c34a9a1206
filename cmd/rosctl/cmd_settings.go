package main

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/rosctl/pkg/cli"
	"github.com/newtron-network/rosctl/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.rosctl/settings.json.

Settings provide defaults for flags and the inventory:
  default_device     Used when -d is not specified
  inventory          Used when -I is not specified
  default_user       SSH login when the inventory has none
  port               SSH port when the inventory has none
  known_hosts_file   Host key file (default ~/.ssh/known_hosts)
  insecure_host_key  Skip host key verification (lab use)
  audit_log          Audit log path (default ~/.rosctl/audit.log)
  redis_addr         Enables the per-device lock
  lock_ttl           Lock expiry (default 60s)

Examples:
  rosctl settings show
  rosctl settings set default_device core-rtr1
  rosctl settings set redis_addr 127.0.0.1:6379
  rosctl settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), s)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")
		values := settingValues(s)
		for _, key := range settings.Keys() {
			v := values[key]
			if v == "" {
				v = cli.Dim("(not set)")
			}
			t.Row(key, v)
		}
		t.Flush()
		return nil
	},
}

// settingValues maps each json key of s to its printed value; zero values
// print as empty.
func settingValues(s *settings.Settings) map[string]string {
	out := make(map[string]string)
	v := reflect.ValueOf(*s)
	for i := 0; i < v.NumField(); i++ {
		tag, _, _ := strings.Cut(v.Type().Field(i).Tag.Get("json"), ",")
		f := v.Field(i)
		if f.IsZero() {
			out[tag] = ""
			continue
		}
		if f.Kind() == reflect.Bool {
			out[tag] = cli.YesNo(f.Bool())
			continue
		}
		out[tag] = fmt.Sprint(f.Interface())
	}
	return out
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s set to: %s\n", args[0], args[1])
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		s.Clear()
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
