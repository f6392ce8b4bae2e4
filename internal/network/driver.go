// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

// Package network is the primitive adapter: a thin capability interface
// over the kernel objects the orchestrator composes (bridges, network
// namespaces, veth pairs, addresses, routes, NAT and filter rules).
// Failures are reported to the caller, never silently retried.
package network

// Filter chain names as the kernel spells them.
const (
	ChainInput   = "INPUT"
	ChainForward = "FORWARD"
	ChainOutput  = "OUTPUT"
)

// Filter targets.
const (
	TargetAccept = "ACCEPT"
	TargetDrop   = "DROP"
)

// Driver issues the actual kernel-object operations. One method per
// operation; every delete is idempotent (absence of the target is
// success). The real implementation is LinuxDriver; FakeDriver backs
// the tests.
type Driver interface {
	// Virtual routers (bridges).
	BridgeExists(name string) bool
	CreateBridge(name string) error
	DeleteBridge(name string) error
	LinkSetUp(name string) error
	AddrAdd(link, addrCIDR string) error

	// Host-wide IP forwarding. Idempotent; never rolled back.
	EnableIPForwarding() error

	// Isolated routing domains (network namespaces).
	NetnsExists(name string) bool
	CreateNetns(name string) error
	DeleteNetns(name string) error

	// Virtual cables (veth pairs). Deleting either end removes both.
	LinkExists(name string) bool
	CreateVethPair(a, b string) error
	DeleteLink(name string) error
	MoveLinkToNetns(link, netns string) error
	AttachLinkToBridge(link, bridge string) error

	// Operations inside a routing domain.
	NetnsLinkSetUp(netns, link string) error
	NetnsAddrAdd(netns, link, addrCIDR string) error
	// NetnsRouteAdd adds a route inside netns. An empty dstCIDR means
	// the default route; an empty gateway means a direct route via dev.
	NetnsRouteAdd(netns, dstCIDR, gateway, dev string) error
	SetNetnsResolver(netns string, nameservers []string) error
	RemoveNetnsResolver(netns string) error

	// Address translation on the host.
	DefaultEgressInterface() (string, error)
	EnableMasquerade(srcCIDR, egress string) error
	DisableMasquerade(srcCIDR string) error
	AllowForwarding(cidr string) error
	DisallowForwarding(cidr string) error

	// Packet filtering inside a routing domain. Rules are evaluated in
	// order, first match wins; append order is therefore significant.
	SetFilterPolicy(netns, chain, target string) error
	AppendFilterRule(netns, chain string, rule ...string) error
	FlushFilters(netns string) error
}
