// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package firewall

import (
	"strconv"

	"github.com/hostvpc/vpcctl/internal/network"
	"go.uber.org/zap"
)

// Resolver maps a subnet CIDR onto its routing-domain identifier.
type Resolver interface {
	NetnsBySubnetCIDR(cidr string) (string, error)
}

// ChainPolicy is a default target for a built-in chain.
type ChainPolicy struct {
	Chain  string
	Target string
}

// Rule is one packet-filter rule destined for a chain. Rules are
// evaluated first-match-wins, so their order is significant.
type Rule struct {
	Chain string
	Args  []string
}

// Program is the compiled form of one policy entry: everything to
// install inside a single routing domain, in order.
type Program struct {
	Subnet   string
	Netns    string
	Policies []ChainPolicy
	Rules    []Rule
}

// Compile turns a policy document into per-domain rule programs.
// Entries whose subnet can't be resolved to a routing domain are
// skipped with a warning; one bad entry never sinks the batch.
func Compile(doc *Document, mode Mode, resolver Resolver) []Program {
	programs := make([]Program, 0, len(doc.Policies))

	for _, policy := range doc.Policies {
		netns, err := resolver.NetnsBySubnetCIDR(policy.Subnet)
		if err != nil {
			zap.L().Warn("skipping unresolvable policy entry",
				zap.String("subnet", policy.Subnet), zap.Error(err))
			continue
		}
		programs = append(programs, compileEntry(policy, mode, netns))
	}

	return programs
}

func compileEntry(policy Policy, mode Mode, netns string) Program {
	program := Program{Subnet: policy.Subnet, Netns: netns}

	if mode == ModeStrict {
		program.Policies = []ChainPolicy{
			{Chain: network.ChainInput, Target: network.TargetDrop},
			{Chain: network.ChainForward, Target: network.TargetDrop},
			{Chain: network.ChainOutput, Target: network.TargetAccept},
		}
		// baseline accepts must precede everything the policy adds
		program.Rules = []Rule{
			{Chain: network.ChainInput, Args: conntrackAccept()},
			{Chain: network.ChainForward, Args: conntrackAccept()},
			{Chain: network.ChainInput, Args: []string{"-i", "lo", "-j", network.TargetAccept}},
			{Chain: network.ChainOutput, Args: []string{"-o", "lo", "-j", network.TargetAccept}},
		}
	}

	for _, r := range policy.Ingress {
		program.Rules = append(program.Rules, Rule{
			Chain: network.ChainInput,
			Args: []string{
				"-p", r.Protocol,
				"--dport", strconv.Itoa(r.Port),
				"-s", r.Source,
				"-j", target(r.Action),
			},
		})
	}
	for _, r := range policy.Egress {
		program.Rules = append(program.Rules, Rule{
			Chain: network.ChainOutput,
			Args:  []string{"-d", r.Destination, "-j", target(r.Action)},
		})
	}

	return program
}

func conntrackAccept() []string {
	return []string{"-m", "conntrack", "--ctstate", "ESTABLISHED,RELATED", "-j", network.TargetAccept}
}

// anything that isn't an explicit allow drops
func target(action string) string {
	if action == ActionAllow {
		return network.TargetAccept
	}
	return network.TargetDrop
}
