// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/hostvpc/vpcctl/pkg/human"
	"github.com/spf13/cobra"
)

var vpcCmd = &cobra.Command{
	Use:   "vpc",
	Short: "Manage virtual networks",
}

var vpcCreateCmd = &cobra.Command{
	Use:   "create <name> <cidr>",
	Short: "Create a virtual network",
	Long: `Create a virtual network: a bridge acting as its router, carrying
the gateway address (network address + 1), with host IP forwarding enabled.

Example:
  vpcctl vpc create alpha 10.0.0.0/16`,
	Args: cobra.ExactArgs(2),
	RunE: mutating(func(a *app, args []string) error {
		vpc, err := a.mgr.CreateVPC(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("vpc %q created: cidr %s, router %s, gateway .1\n", vpc.Name, vpc.CIDR, vpc.Router)
		return nil
	}),
}

var vpcDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a virtual network and everything attached to it",
	Long: `Delete a virtual network. Its subnets and peerings are torn down
first; the command is safe to repeat for partially deleted networks.`,
	Args: cobra.ExactArgs(1),
	RunE: mutating(func(a *app, args []string) error {
		if err := a.mgr.DeleteVPC(args[0]); err != nil {
			return err
		}
		fmt.Printf("vpc %q deleted\n", args[0])
		return nil
	}),
}

var vpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List virtual networks",
	RunE: readonly(func(a *app, _ []string) error {
		vpcs, err := a.mgr.ListVPCs()
		if err != nil {
			return err
		}
		if len(vpcs) == 0 {
			fmt.Println("no vpcs")
			return nil
		}

		fmt.Printf("%-20s %-18s %-16s %s\n", "NAME", "CIDR", "ROUTER", "AGE")
		for _, vpc := range vpcs {
			age := "-"
			if vpc.Created != nil {
				age = human.Age(vpc.Created.Time)
			}
			fmt.Printf("%-20s %-18s %-16s %s\n", vpc.Name, vpc.CIDR, vpc.Router, age)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(vpcCmd)

	vpcCmd.AddCommand(vpcCreateCmd)
	vpcCmd.AddCommand(vpcDeleteCmd)
	vpcCmd.AddCommand(vpcListCmd)
}
