// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded state of all virtual networks",
	RunE: readonly(func(a *app, _ []string) error {
		vpcs, err := a.mgr.ListVPCs()
		if err != nil {
			return err
		}
		peerings, err := a.mgr.ListPeerings()
		if err != nil {
			return err
		}

		fmt.Printf("config:  %s\n", cfg.ConfigDir())
		fmt.Printf("records: %s\n", cfg.SQLitePath)

		subnetTotal := 0
		for _, vpc := range vpcs {
			subnets, err := a.mgr.ListSubnets(vpc.Name)
			if err != nil {
				return err
			}
			subnetTotal += len(subnets)

			fmt.Printf("\nvpc %s  %s  router %s\n", vpc.Name, vpc.CIDR, vpc.Router)
			for _, s := range subnets {
				fmt.Printf("  subnet %-16s %-18s %-8s %s\n", s.Name, s.CIDR, s.Type, s.Netns)
			}
		}

		if len(peerings) > 0 {
			fmt.Println()
			for _, p := range peerings {
				fmt.Printf("peering %s <-> %s\n", p.VPC1, p.VPC2)
			}
		}

		fmt.Printf("\n%d vpcs, %d subnets, %d peerings\n", len(vpcs), subnetTotal, len(peerings))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
