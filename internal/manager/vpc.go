// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package manager

import (
	"github.com/hostvpc/vpcctl/internal/network"
	"github.com/hostvpc/vpcctl/internal/storage"
	"github.com/hostvpc/vpcctl/internal/types"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xnet"
	"go.uber.org/zap"
)

// CreateVPC provisions the virtual router for a network: a bridge
// carrying the gateway address, with host IP forwarding enabled.
func (m *Manager) CreateVPC(name, cidrStr string) (_ types.VPC, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vpc := types.VPC{
		Name:   name,
		CIDR:   cidrStr,
		Router: network.RouterName(name),
	}
	if err := vpc.Validate(); err != nil {
		return types.VPC{}, err
	}

	if m.driver.BridgeExists(vpc.Router) {
		return types.VPC{}, xerror.EExists("vpc already exists", nil, zap.String("vpc", name))
	}

	gateway, err := xnet.HostAddr(cidrStr, gatewayHostOffset)
	if err != nil {
		return types.VPC{}, err
	}

	undo := &unwinder{}
	defer undo.Finish(&err)

	if err = m.driver.CreateBridge(vpc.Router); err != nil {
		return types.VPC{}, err
	}
	undo.Push(func() error { return m.driver.DeleteBridge(vpc.Router) })

	if err = m.driver.LinkSetUp(vpc.Router); err != nil {
		return types.VPC{}, err
	}
	if err = m.driver.AddrAdd(vpc.Router, gateway); err != nil {
		return types.VPC{}, err
	}

	// forwarding is host-global and shared between networks, so a
	// failed create never turns it back off
	if err = m.driver.EnableIPForwarding(); err != nil {
		return types.VPC{}, err
	}

	if _, err = m.storage.CreateVPC(vpc); err != nil {
		return types.VPC{}, err
	}
	undo.Commit()

	zap.L().Info("vpc created",
		zap.String("vpc", name), zap.String("cidr", cidrStr), zap.String("router", vpc.Router))
	return vpc, nil
}

// DeleteVPC tears a network down along with everything attached to
// it: subnets first, then peering links, then the router itself.
// Calling it for a half-deleted or unknown network is safe.
func (m *Manager) DeleteVPC(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	vpc, err := m.storage.GetVPC(name)
	vpcKnown := err == nil
	if err != nil && !xerror.IsKind(err, xerror.EEntryNotFoundType) {
		return err
	}

	router := network.RouterName(name)
	if !m.driver.BridgeExists(router) {
		zap.L().Info("vpc router already gone, removing records", zap.String("vpc", name))
		return m.dropVPCRecords(name)
	}

	subnets, err := m.storage.SearchSubnets(&storage.SubnetFilter{VPC: &name})
	if err != nil {
		return err
	}
	for _, subnet := range subnets {
		if err := m.deleteSubnet(name, subnet.Name); err != nil {
			zap.L().Warn("subnet teardown failed, continuing",
				zap.String("vpc", name), zap.String("subnet", subnet.Name), zap.Error(err))
		}
	}

	peerings, err := m.storage.PeeringsOf(name)
	if err != nil {
		return err
	}
	for _, p := range peerings {
		if err := m.unpeer(p.VPC1, p.VPC2); err != nil {
			zap.L().Warn("peering teardown failed, continuing",
				zap.String("vpc1", p.VPC1), zap.String("vpc2", p.VPC2), zap.Error(err))
		}
	}

	if vpcKnown {
		if err := m.driver.DisableMasquerade(vpc.CIDR); err != nil {
			zap.L().Warn("can't remove vpc nat rule", zap.String("vpc", name), zap.Error(err))
		}
	}

	if err := m.driver.DeleteBridge(router); err != nil {
		return err
	}

	if err := m.dropVPCRecords(name); err != nil {
		return err
	}

	zap.L().Info("vpc deleted", zap.String("vpc", name))
	return nil
}

func (m *Manager) dropVPCRecords(name string) error {
	if err := m.storage.DeleteSubnetsOfVPC(name); err != nil {
		return err
	}
	peerings, err := m.storage.PeeringsOf(name)
	if err != nil {
		return err
	}
	for _, p := range peerings {
		if err := m.storage.DeletePeering(p.VPC1, p.VPC2); err != nil {
			return err
		}
	}
	return m.storage.DeleteVPC(name)
}

func (m *Manager) ListVPCs() ([]types.VPC, error) {
	return m.storage.ListVPCs()
}
