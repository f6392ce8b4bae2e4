// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

//go:build !linux

package network

import (
	"github.com/hostvpc/vpcctl/pkg/xerror"
)

// LinuxDriver exists on non-linux platforms for compilation only.
// Every call fails: bridges, namespaces and iptables require linux.
type LinuxDriver struct{}

var _ Driver = (*LinuxDriver)(nil)

func NewLinuxDriver() *LinuxDriver {
	return &LinuxDriver{}
}

func errUnsupported() error {
	return xerror.EPrecheckFailure("network primitives are available on linux only", nil)
}

func (d *LinuxDriver) BridgeExists(name string) bool             { return false }
func (d *LinuxDriver) CreateBridge(name string) error            { return errUnsupported() }
func (d *LinuxDriver) DeleteBridge(name string) error            { return errUnsupported() }
func (d *LinuxDriver) LinkSetUp(name string) error               { return errUnsupported() }
func (d *LinuxDriver) AddrAdd(link, addr string) error           { return errUnsupported() }
func (d *LinuxDriver) EnableIPForwarding() error                 { return errUnsupported() }
func (d *LinuxDriver) NetnsExists(name string) bool              { return false }
func (d *LinuxDriver) CreateNetns(name string) error             { return errUnsupported() }
func (d *LinuxDriver) DeleteNetns(name string) error             { return errUnsupported() }
func (d *LinuxDriver) LinkExists(name string) bool               { return false }
func (d *LinuxDriver) CreateVethPair(a, b string) error          { return errUnsupported() }
func (d *LinuxDriver) DeleteLink(name string) error              { return errUnsupported() }
func (d *LinuxDriver) MoveLinkToNetns(link, ns string) error     { return errUnsupported() }
func (d *LinuxDriver) AttachLinkToBridge(link, br string) error  { return errUnsupported() }
func (d *LinuxDriver) NetnsLinkSetUp(ns, link string) error      { return errUnsupported() }
func (d *LinuxDriver) NetnsAddrAdd(ns, link, addr string) error  { return errUnsupported() }
func (d *LinuxDriver) NetnsRouteAdd(ns, dst, gw, dev string) error {
	return errUnsupported()
}
func (d *LinuxDriver) SetNetnsResolver(ns string, servers []string) error {
	return errUnsupported()
}
func (d *LinuxDriver) RemoveNetnsResolver(ns string) error      { return errUnsupported() }
func (d *LinuxDriver) DefaultEgressInterface() (string, error)  { return "", errUnsupported() }
func (d *LinuxDriver) EnableMasquerade(cidr, egress string) error {
	return errUnsupported()
}
func (d *LinuxDriver) DisableMasquerade(cidr string) error      { return errUnsupported() }
func (d *LinuxDriver) AllowForwarding(cidr string) error        { return errUnsupported() }
func (d *LinuxDriver) DisallowForwarding(cidr string) error     { return errUnsupported() }
func (d *LinuxDriver) SetFilterPolicy(ns, chain, target string) error {
	return errUnsupported()
}
func (d *LinuxDriver) AppendFilterRule(ns, chain string, rule ...string) error {
	return errUnsupported()
}
func (d *LinuxDriver) FlushFilters(ns string) error { return errUnsupported() }
