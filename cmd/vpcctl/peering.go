// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/hostvpc/vpcctl/pkg/human"
	"github.com/spf13/cobra"
)

var peeringCmd = &cobra.Command{
	Use:   "peering",
	Short: "Manage peerings between virtual networks",
}

var peeringCreateCmd = &cobra.Command{
	Use:   "create <vpc1> <vpc2>",
	Short: "Connect two virtual networks",
	Long: `Connect two virtual networks with a veth link, one end attached
to each router. Repeating the command for an established peering is a
no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: mutating(func(a *app, args []string) error {
		peering, err := a.mgr.Peer(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("peering %s <-> %s established (%s <-> %s)\n",
			peering.VPC1, peering.VPC2, peering.Endpoint1, peering.Endpoint2)
		return nil
	}),
}

var peeringDeleteCmd = &cobra.Command{
	Use:   "delete <vpc1> <vpc2>",
	Short: "Disconnect two virtual networks",
	Args:  cobra.ExactArgs(2),
	RunE: mutating(func(a *app, args []string) error {
		if err := a.mgr.Unpeer(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("peering %s <-> %s removed\n", args[0], args[1])
		return nil
	}),
}

var peeringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List peerings",
	RunE: readonly(func(a *app, _ []string) error {
		peerings, err := a.mgr.ListPeerings()
		if err != nil {
			return err
		}
		if len(peerings) == 0 {
			fmt.Println("no peerings")
			return nil
		}

		fmt.Printf("%-20s %-20s %-18s %-18s %s\n", "VPC1", "VPC2", "CIDR1", "CIDR2", "AGE")
		for _, p := range peerings {
			age := "-"
			if p.Created != nil {
				age = human.Age(p.Created.Time)
			}
			fmt.Printf("%-20s %-20s %-18s %-18s %s\n", p.VPC1, p.VPC2, p.CIDR1, p.CIDR2, age)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(peeringCmd)

	peeringCmd.AddCommand(peeringCreateCmd)
	peeringCmd.AddCommand(peeringDeleteCmd)
	peeringCmd.AddCommand(peeringListCmd)
}
