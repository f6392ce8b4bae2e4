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

// CreateSubnet provisions an isolated routing domain inside a
// network: a namespace wired to the network's router over a veth
// pair, addressed within the subnet range and routed through the
// network gateway. Public subnets additionally get outbound NAT and
// their own resolver configuration.
func (m *Manager) CreateSubnet(vpcName, name, cidrStr, subnetType string) (_ types.Subnet, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subnet := types.Subnet{
		VPC:   vpcName,
		Name:  name,
		CIDR:  cidrStr,
		Type:  subnetType,
		Netns: network.NetnsName(vpcName, name),
	}
	if err := subnet.Validate(); err != nil {
		return types.Subnet{}, err
	}

	vpc, err := m.storage.GetVPC(vpcName)
	if err != nil {
		return types.Subnet{}, err
	}
	if !m.driver.BridgeExists(vpc.Router) {
		return types.Subnet{}, xerror.EEntryNotFound("vpc router is absent", nil, zap.String("vpc", vpcName))
	}
	if m.driver.NetnsExists(subnet.Netns) {
		return types.Subnet{}, xerror.EExists("subnet already exists", nil,
			zap.String("vpc", vpcName), zap.String("subnet", name))
	}

	hostAddr, err := xnet.HostAddr(cidrStr, subnetHostOffset)
	if err != nil {
		return types.Subnet{}, err
	}
	gateway, err := xnet.HostIP(vpc.CIDR, gatewayHostOffset)
	if err != nil {
		return types.Subnet{}, err
	}

	hostEnd, innerEnd := network.VethNames(vpcName, name)

	undo := &unwinder{}
	defer undo.Finish(&err)

	if err = m.driver.CreateNetns(subnet.Netns); err != nil {
		return types.Subnet{}, err
	}
	undo.Push(func() error { return m.driver.DeleteNetns(subnet.Netns) })

	if err = m.driver.CreateVethPair(hostEnd, innerEnd); err != nil {
		return types.Subnet{}, err
	}
	undo.Push(func() error { return m.driver.DeleteLink(hostEnd) })

	if err = m.driver.MoveLinkToNetns(innerEnd, subnet.Netns); err != nil {
		return types.Subnet{}, err
	}
	if err = m.driver.AttachLinkToBridge(hostEnd, vpc.Router); err != nil {
		return types.Subnet{}, err
	}
	if err = m.driver.LinkSetUp(hostEnd); err != nil {
		return types.Subnet{}, err
	}

	if err = m.driver.NetnsLinkSetUp(subnet.Netns, "lo"); err != nil {
		return types.Subnet{}, err
	}
	if err = m.driver.NetnsLinkSetUp(subnet.Netns, innerEnd); err != nil {
		return types.Subnet{}, err
	}
	if err = m.driver.NetnsAddrAdd(subnet.Netns, innerEnd, hostAddr); err != nil {
		return types.Subnet{}, err
	}

	// the gateway lives on the wider network range, so the domain
	// needs an on-link route to it before the default route
	if err = m.driver.NetnsRouteAdd(subnet.Netns, vpc.CIDR, "", innerEnd); err != nil {
		return types.Subnet{}, err
	}
	if err = m.driver.NetnsRouteAdd(subnet.Netns, "", gateway, innerEnd); err != nil {
		return types.Subnet{}, err
	}

	if subnet.Public() {
		if err = m.enableNAT(cidrStr); err != nil {
			return types.Subnet{}, err
		}
		undo.Push(func() error { return m.disableNAT(cidrStr) })

		if err = m.driver.SetNetnsResolver(subnet.Netns, m.resolvers); err != nil {
			return types.Subnet{}, err
		}
		undo.Push(func() error { return m.driver.RemoveNetnsResolver(subnet.Netns) })
	}

	if _, err = m.storage.CreateSubnet(subnet); err != nil {
		return types.Subnet{}, err
	}
	undo.Commit()

	zap.L().Info("subnet created",
		zap.String("vpc", vpcName), zap.String("subnet", name),
		zap.String("cidr", cidrStr), zap.String("type", subnetType),
		zap.String("netns", subnet.Netns))
	return subnet, nil
}

// enableNAT masquerades the subnet range out of the host's current
// default egress interface and opens forwarding both ways.
func (m *Manager) enableNAT(cidrStr string) error {
	egress, err := m.driver.DefaultEgressInterface()
	if err != nil {
		return err
	}
	if err := m.driver.EnableMasquerade(cidrStr, egress); err != nil {
		return err
	}
	return m.driver.AllowForwarding(cidrStr)
}

func (m *Manager) disableNAT(cidrStr string) error {
	if err := m.driver.DisableMasquerade(cidrStr); err != nil {
		return err
	}
	return m.driver.DisallowForwarding(cidrStr)
}

// DeleteSubnet is idempotent: an absent routing domain only means
// stale records to clean up.
func (m *Manager) DeleteSubnet(vpcName, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteSubnet(vpcName, name)
}

func (m *Manager) deleteSubnet(vpcName, name string) error {
	subnet, err := m.storage.GetSubnet(vpcName, name)
	subnetKnown := err == nil
	if err != nil && !xerror.IsKind(err, xerror.EEntryNotFoundType) {
		return err
	}

	netnsName := network.NetnsName(vpcName, name)
	if !m.driver.NetnsExists(netnsName) {
		zap.L().Info("subnet domain already gone, removing records",
			zap.String("vpc", vpcName), zap.String("subnet", name))
		return m.storage.DeleteSubnet(vpcName, name)
	}

	if subnetKnown && subnet.Public() {
		if err := m.disableNAT(subnet.CIDR); err != nil {
			zap.L().Warn("can't remove subnet nat rules",
				zap.String("subnet", name), zap.Error(err))
		}
		if err := m.driver.RemoveNetnsResolver(netnsName); err != nil {
			zap.L().Warn("can't remove subnet resolver config",
				zap.String("subnet", name), zap.Error(err))
		}
	}

	hostEnd, _ := network.VethNames(vpcName, name)
	if err := m.driver.DeleteLink(hostEnd); err != nil {
		return err
	}
	if err := m.driver.DeleteNetns(netnsName); err != nil {
		return err
	}
	if err := m.storage.DeleteSubnet(vpcName, name); err != nil {
		return err
	}

	zap.L().Info("subnet deleted", zap.String("vpc", vpcName), zap.String("subnet", name))
	return nil
}

// ListSubnets returns all subnets, or only those of one network when
// vpcName is non-empty.
func (m *Manager) ListSubnets(vpcName string) ([]types.Subnet, error) {
	var filter *storage.SubnetFilter
	if len(vpcName) > 0 {
		filter = &storage.SubnetFilter{VPC: &vpcName}
	}
	return m.storage.SearchSubnets(filter)
}
