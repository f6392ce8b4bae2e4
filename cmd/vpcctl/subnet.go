// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/hostvpc/vpcctl/pkg/human"
	"github.com/spf13/cobra"
)

var subnetVPCFlag string

var subnetCmd = &cobra.Command{
	Use:   "subnet",
	Short: "Manage subnets",
}

var subnetCreateCmd = &cobra.Command{
	Use:   "create <vpc> <name> <cidr> <public|private>",
	Short: "Create a subnet inside a virtual network",
	Long: `Create a subnet: an isolated network namespace cabled to the VPC
router, addressed at network address + 10 and routed through the VPC
gateway. Public subnets additionally get outbound NAT and their own
resolver configuration.

Examples:
  vpcctl subnet create alpha web 10.0.1.0/24 public
  vpcctl subnet create alpha db  10.0.2.0/24 private`,
	Args: cobra.ExactArgs(4),
	RunE: mutating(func(a *app, args []string) error {
		subnet, err := a.mgr.CreateSubnet(args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}
		fmt.Printf("subnet %q created in vpc %q: cidr %s, type %s, domain %s\n",
			subnet.Name, subnet.VPC, subnet.CIDR, subnet.Type, subnet.Netns)
		return nil
	}),
}

var subnetDeleteCmd = &cobra.Command{
	Use:   "delete <vpc> <name>",
	Short: "Delete a subnet",
	Args:  cobra.ExactArgs(2),
	RunE: mutating(func(a *app, args []string) error {
		if err := a.mgr.DeleteSubnet(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("subnet %q deleted from vpc %q\n", args[1], args[0])
		return nil
	}),
}

var subnetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subnets",
	RunE: readonly(func(a *app, _ []string) error {
		subnets, err := a.mgr.ListSubnets(subnetVPCFlag)
		if err != nil {
			return err
		}
		if len(subnets) == 0 {
			fmt.Println("no subnets")
			return nil
		}

		fmt.Printf("%-20s %-20s %-18s %-8s %-28s %s\n", "VPC", "NAME", "CIDR", "TYPE", "DOMAIN", "AGE")
		for _, s := range subnets {
			age := "-"
			if s.Created != nil {
				age = human.Age(s.Created.Time)
			}
			fmt.Printf("%-20s %-20s %-18s %-8s %-28s %s\n", s.VPC, s.Name, s.CIDR, s.Type, s.Netns, age)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(subnetCmd)

	subnetListCmd.Flags().StringVar(&subnetVPCFlag, "vpc", "", "only subnets of this vpc")

	subnetCmd.AddCommand(subnetCreateCmd)
	subnetCmd.AddCommand(subnetDeleteCmd)
	subnetCmd.AddCommand(subnetListCmd)
}
