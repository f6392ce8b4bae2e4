// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/hostvpc/vpcctl/internal/firewall"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	firewallPolicyFlag string
	firewallModeFlag   string
)

var firewallCmd = &cobra.Command{
	Use:   "firewall",
	Short: "Apply or clear packet-filter policy",
}

var firewallApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Compile a policy document and install it per subnet",
	Long: `Compile the JSON policy document and install the resulting rule
programs inside each targeted subnet's routing domain. Entries whose
subnet cannot be resolved are skipped with a warning.

Modes:
  strict      deny-by-default for inbound and forwarded traffic,
              baseline accepts installed first
  permissive  rules layered onto the active baseline`,
	Args: cobra.NoArgs,
	RunE: mutating(func(a *app, _ []string) error {
		mode, err := firewall.ParseMode(firewallModeFlag)
		if err != nil {
			return err
		}

		path := firewallPolicyFlag
		if len(path) == 0 {
			path = cfg.PolicyPath
		}

		doc, err := firewall.LoadDocument(afero.NewOsFs(), path)
		if err != nil {
			return err
		}
		if err := a.fw.Apply(doc, mode); err != nil {
			return err
		}
		fmt.Printf("firewall policy applied from %s (%s mode)\n", path, mode)
		return nil
	}),
}

var firewallClearCmd = &cobra.Command{
	Use:   "clear <subnet-cidr>",
	Short: "Flush all packet-filter rules of a subnet's routing domain",
	Long: `Flush every packet-filter rule and custom chain inside the routing
domain serving the subnet. Chain policies are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: mutating(func(a *app, args []string) error {
		if err := a.fw.Clear(args[0]); err != nil {
			return err
		}
		fmt.Printf("firewall rules cleared for subnet %s\n", args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(firewallCmd)

	firewallApplyCmd.Flags().StringVar(&firewallPolicyFlag, "policy", "", "policy document path (default from config)")
	firewallApplyCmd.Flags().StringVar(&firewallModeFlag, "mode", string(firewall.ModeStrict), "strict or permissive")

	firewallCmd.AddCommand(firewallApplyCmd)
	firewallCmd.AddCommand(firewallClearCmd)
}
