package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/rosctl/pkg/entry"
)

var (
	stateFlag     string
	addressFlag   string
	interfaceFlag string
	poolNameFlag  string
	rangesFlag    string
)

var ipAddressCmd = &cobra.Command{
	Use:   "ip-address",
	Short: "Reconcile an /ip address entry",
	Long: `Reconcile an /ip address entry identified by address and interface.

States:
  present   add the entry if missing (default)
  absent    remove every matching entry
  enabled   enable matching entries
  disabled  disable matching entries

Examples:
  rosctl -d core-rtr1 ip-address --address 10.0.0.1/24 --interface bridge-lan
  rosctl -d core-rtr1 ip-address --address 10.0.0.1/24 --interface bridge-lan --state absent -x`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reconcileEntry(cmd, entry.IPAddress, map[string]string{
			"address":   addressFlag,
			"interface": interfaceFlag,
		})
	},
}

var ipPoolCmd = &cobra.Command{
	Use:   "ip-pool",
	Short: "Reconcile an /ip pool entry",
	Long: `Reconcile an /ip pool entry identified by name.

--ranges is only used to create the pool and is required with --state present.

Examples:
  rosctl -d edge-rtr2 ip-pool --name guest --ranges 10.9.0.10-10.9.0.99 -x
  rosctl -d edge-rtr2 ip-pool --name guest --state disabled`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reconcileEntry(cmd, entry.IPPool, map[string]string{
			"name":   poolNameFlag,
			"ranges": rangesFlag,
		})
	},
}

func reconcileEntry(cmd *cobra.Command, kind entry.Kind, values map[string]string) error {
	if deviceName == "" {
		return fmt.Errorf("device required: use -d <device> flag")
	}
	state, err := entry.ParseState(stateFlag)
	if err != nil {
		return err
	}
	spec, err := kind.NewSpec(values)
	if err != nil {
		return err
	}

	r, cleanup, err := newRunner(false)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := r.RunOne(cmd.Context(), deviceName, spec, state)
	if err != nil {
		return err
	}
	return printResult(os.Stdout, deviceName, res)
}

func init() {
	for _, cmd := range []*cobra.Command{ipAddressCmd, ipPoolCmd} {
		cmd.Flags().StringVar(&stateFlag, "state", string(entry.StatePresent), "Desired state: present, absent, enabled, disabled")
	}
	ipAddressCmd.Flags().StringVar(&addressFlag, "address", "", "Address with prefix length (e.g. 10.0.0.1/24)")
	ipAddressCmd.Flags().StringVar(&interfaceFlag, "interface", "", "Interface name")
	ipPoolCmd.Flags().StringVar(&poolNameFlag, "name", "", "Pool name")
	ipPoolCmd.Flags().StringVar(&rangesFlag, "ranges", "", "Address ranges (create only)")
}
