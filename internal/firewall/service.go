// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package firewall

import (
	"github.com/hostvpc/vpcctl/internal/network"
	"github.com/hostvpc/vpcctl/internal/storage"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Service resolves policy targets against the record store and
// drives compiled programs into the kernel.
type Service struct {
	storage *storage.Storage
	driver  network.Driver
}

func NewService(store *storage.Storage, driver network.Driver) *Service {
	return &Service{storage: store, driver: driver}
}

var _ Resolver = (*Service)(nil)

func (s *Service) NetnsBySubnetCIDR(cidr string) (string, error) {
	subnets, err := s.storage.SearchSubnets(&storage.SubnetFilter{CIDR: &cidr})
	if err != nil {
		return "", err
	}
	if len(subnets) == 0 {
		return "", xerror.WEntryNotFound("subnet", "no subnet with such cidr", nil, zap.String("cidr", cidr))
	}
	return subnets[0].Netns, nil
}

// Apply compiles the document and installs every resulting program.
// A failing domain does not stop the others; all failures come back
// accumulated.
func (s *Service) Apply(doc *Document, mode Mode) error {
	programs := Compile(doc, mode, s)

	var failures error
	applied := 0
	for _, program := range programs {
		if err := s.applyProgram(program); err != nil {
			zap.L().Warn("can't apply firewall program",
				zap.String("subnet", program.Subnet), zap.String("netns", program.Netns), zap.Error(err))
			failures = multierr.Append(failures, err)
			continue
		}
		applied++
	}

	zap.L().Info("firewall policy applied",
		zap.String("mode", string(mode)),
		zap.Int("programs", len(programs)), zap.Int("applied", applied))
	return failures
}

func (s *Service) applyProgram(program Program) error {
	for _, p := range program.Policies {
		if err := s.driver.SetFilterPolicy(program.Netns, p.Chain, p.Target); err != nil {
			return err
		}
	}
	for _, r := range program.Rules {
		if err := s.driver.AppendFilterRule(program.Netns, r.Chain, r.Args...); err != nil {
			return err
		}
	}
	return nil
}

// Clear flushes every filter rule inside the routing domain serving
// the subnet. Chain policies stay as they are.
func (s *Service) Clear(subnetCIDR string) error {
	netns, err := s.NetnsBySubnetCIDR(subnetCIDR)
	if err != nil {
		return err
	}
	if err := s.driver.FlushFilters(netns); err != nil {
		return err
	}

	zap.L().Info("firewall rules cleared",
		zap.String("subnet", subnetCIDR), zap.String("netns", netns))
	return nil
}
