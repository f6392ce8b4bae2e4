// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package manager

import (
	"github.com/hostvpc/vpcctl/internal/network"
	"github.com/hostvpc/vpcctl/internal/types"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"go.uber.org/zap"
)

// Peer joins two networks with a veth pair, one end attached to each
// router. The link carries traffic at L2; neither network gets routes
// installed, the recorded CIDRs are informational.
func (m *Manager) Peer(a, b string) (_ types.Peering, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a == b {
		return types.Peering{}, xerror.EInvalidArgument("can't peer a vpc with itself", nil,
			zap.String("vpc", a))
	}

	vpcA, err := m.storage.GetVPC(a)
	if err != nil {
		return types.Peering{}, err
	}
	vpcB, err := m.storage.GetVPC(b)
	if err != nil {
		return types.Peering{}, err
	}

	if !m.driver.BridgeExists(vpcA.Router) {
		return types.Peering{}, xerror.EEntryNotFound("vpc router is absent", nil, zap.String("vpc", a))
	}
	if !m.driver.BridgeExists(vpcB.Router) {
		return types.Peering{}, xerror.EEntryNotFound("vpc router is absent", nil, zap.String("vpc", b))
	}

	epA, epB := network.PeeringEndpointNames(a, b)
	if m.driver.LinkExists(epA) {
		zap.L().Info("peering link already present",
			zap.String("vpc1", a), zap.String("vpc2", b))
		if existing, err := m.storage.FindPeering(a, b); err == nil {
			return existing, nil
		}
		return types.Peering{VPC1: a, VPC2: b, Endpoint1: epA, Endpoint2: epB}, nil
	}

	peering := types.Peering{
		VPC1:      a,
		VPC2:      b,
		Endpoint1: epA,
		Endpoint2: epB,
		CIDR1:     vpcA.CIDR,
		CIDR2:     vpcB.CIDR,
	}
	if err := peering.Validate(); err != nil {
		return types.Peering{}, err
	}

	undo := &unwinder{}
	defer undo.Finish(&err)

	if err = m.driver.CreateVethPair(epA, epB); err != nil {
		return types.Peering{}, err
	}
	undo.Push(func() error { return m.driver.DeleteLink(epA) })

	if err = m.driver.AttachLinkToBridge(epA, vpcA.Router); err != nil {
		return types.Peering{}, err
	}
	if err = m.driver.AttachLinkToBridge(epB, vpcB.Router); err != nil {
		return types.Peering{}, err
	}
	if err = m.driver.LinkSetUp(epA); err != nil {
		return types.Peering{}, err
	}
	if err = m.driver.LinkSetUp(epB); err != nil {
		return types.Peering{}, err
	}

	if _, err = m.storage.CreatePeering(peering); err != nil {
		return types.Peering{}, err
	}
	undo.Commit()

	zap.L().Info("peering established",
		zap.String("vpc1", a), zap.String("vpc2", b),
		zap.String("endpoint1", epA), zap.String("endpoint2", epB))
	return peering, nil
}

// Unpeer disconnects two networks. Unknown or already-removed
// peerings are not an error.
func (m *Manager) Unpeer(a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unpeer(a, b)
}

func (m *Manager) unpeer(a, b string) error {
	epA, _ := network.PeeringEndpointNames(a, b)
	if m.driver.LinkExists(epA) {
		// one delete removes both ends of the pair
		if err := m.driver.DeleteLink(epA); err != nil {
			return err
		}
	}
	if err := m.storage.DeletePeering(a, b); err != nil {
		return err
	}

	zap.L().Info("peering removed", zap.String("vpc1", a), zap.String("vpc2", b))
	return nil
}

func (m *Manager) ListPeerings() ([]types.Peering, error) {
	return m.storage.ListPeerings()
}
