// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package network

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hostvpc/vpcctl/pkg/xerror"
)

// FakeLink is the remembered state of a simulated interface.
type FakeLink struct {
	Peer   string
	Master string
	Netns  string
	Up     bool
	Addrs  []string
}

// FakeRoute is a route installed inside a simulated namespace.
type FakeRoute struct {
	Netns string
	Dst   string
	Gw    string
	Dev   string
}

// FakeFilterRule is a single compiled rule appended to a chain.
type FakeFilterRule struct {
	Netns string
	Chain string
	Args  []string
}

// FakeDriver keeps the whole network state in memory. Tests drive the
// managers against it and then assert on the maps directly, or inject
// a failure for a named operation to exercise rollback.
type FakeDriver struct {
	mu sync.Mutex

	Bridges     map[string]bool
	Namespaces  map[string]bool
	Links       map[string]*FakeLink
	Routes      []FakeRoute
	Resolvers   map[string][]string
	Masquerades map[string]string
	ForwardOK   map[string]bool
	Policies    map[string]string
	FilterRules []FakeFilterRule

	Forwarding bool
	Egress     string

	// FailOn maps an op key, e.g. "CreateBridge" or
	// "CreateVethPair:sv-1a2b3c4d-h", to the error it should return.
	FailOn map[string]error

	// Ops journals every mutating call in order.
	Ops []string

	// loopback stands in for "lo" in every simulated namespace.
	loopback *FakeLink
}

var _ Driver = (*FakeDriver)(nil)

func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Bridges:     map[string]bool{},
		Namespaces:  map[string]bool{},
		Links:       map[string]*FakeLink{},
		Resolvers:   map[string][]string{},
		Masquerades: map[string]string{},
		ForwardOK:   map[string]bool{},
		Policies:    map[string]string{},
		FailOn:      map[string]error{},
		Egress:      "eth0",
		loopback:    &FakeLink{},
	}
}

// record journals the op and reports the injected failure, if any.
// Failures match either the bare op name or "op:first-arg".
func (d *FakeDriver) record(op string, args ...string) error {
	d.Ops = append(d.Ops, strings.Join(append([]string{op}, args...), " "))
	if err, ok := d.FailOn[op]; ok {
		return err
	}
	if len(args) > 0 {
		if err, ok := d.FailOn[op+":"+args[0]]; ok {
			return err
		}
	}
	return nil
}

func (d *FakeDriver) BridgeExists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Bridges[name]
}

func (d *FakeDriver) CreateBridge(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("CreateBridge", name); err != nil {
		return err
	}
	if d.Bridges[name] {
		return xerror.EPrimitiveFailure("bridge already exists", nil)
	}
	d.Bridges[name] = true
	d.Links[name] = &FakeLink{}
	return nil
}

func (d *FakeDriver) DeleteBridge(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("DeleteBridge", name); err != nil {
		return err
	}
	delete(d.Bridges, name)
	delete(d.Links, name)
	return nil
}

func (d *FakeDriver) LinkSetUp(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("LinkSetUp", name); err != nil {
		return err
	}
	link, ok := d.Links[name]
	if !ok {
		return xerror.EPrimitiveFailure("no such link", nil)
	}
	link.Up = true
	return nil
}

func (d *FakeDriver) AddrAdd(name, addr string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("AddrAdd", name, addr); err != nil {
		return err
	}
	link, ok := d.Links[name]
	if !ok {
		return xerror.EPrimitiveFailure("no such link", nil)
	}
	link.Addrs = append(link.Addrs, addr)
	return nil
}

func (d *FakeDriver) EnableIPForwarding() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("EnableIPForwarding"); err != nil {
		return err
	}
	d.Forwarding = true
	return nil
}

func (d *FakeDriver) NetnsExists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Namespaces[name]
}

func (d *FakeDriver) CreateNetns(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("CreateNetns", name); err != nil {
		return err
	}
	if d.Namespaces[name] {
		return xerror.EPrimitiveFailure("netns already exists", nil)
	}
	d.Namespaces[name] = true
	return nil
}

func (d *FakeDriver) DeleteNetns(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("DeleteNetns", name); err != nil {
		return err
	}
	delete(d.Namespaces, name)
	// kernel behaviour: interfaces inside a namespace die with it
	for ln, link := range d.Links {
		if link.Netns == name {
			d.dropLink(ln)
		}
	}
	return nil
}

func (d *FakeDriver) LinkExists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.Links[name]
	return ok
}

func (d *FakeDriver) CreateVethPair(a, b string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("CreateVethPair", a, b); err != nil {
		return err
	}
	if _, ok := d.Links[a]; ok {
		return xerror.EPrimitiveFailure("link already exists", nil)
	}
	if _, ok := d.Links[b]; ok {
		return xerror.EPrimitiveFailure("link already exists", nil)
	}
	d.Links[a] = &FakeLink{Peer: b}
	d.Links[b] = &FakeLink{Peer: a}
	return nil
}

func (d *FakeDriver) dropLink(name string) {
	link, ok := d.Links[name]
	if !ok {
		return
	}
	delete(d.Links, name)
	if len(link.Peer) > 0 {
		delete(d.Links, link.Peer)
	}
}

func (d *FakeDriver) DeleteLink(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("DeleteLink", name); err != nil {
		return err
	}
	d.dropLink(name)
	return nil
}

func (d *FakeDriver) MoveLinkToNetns(linkName, nsName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("MoveLinkToNetns", linkName, nsName); err != nil {
		return err
	}
	link, ok := d.Links[linkName]
	if !ok {
		return xerror.EPrimitiveFailure("no such link", nil)
	}
	if !d.Namespaces[nsName] {
		return xerror.EPrimitiveFailure("no such netns", nil)
	}
	link.Netns = nsName
	return nil
}

func (d *FakeDriver) AttachLinkToBridge(linkName, bridgeName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("AttachLinkToBridge", linkName, bridgeName); err != nil {
		return err
	}
	link, ok := d.Links[linkName]
	if !ok {
		return xerror.EPrimitiveFailure("no such link", nil)
	}
	if !d.Bridges[bridgeName] {
		return xerror.EPrimitiveFailure("no such bridge", nil)
	}
	link.Master = bridgeName
	return nil
}

func (d *FakeDriver) netnsLink(nsName, linkName string) (*FakeLink, error) {
	if linkName == "lo" {
		if !d.Namespaces[nsName] {
			return nil, xerror.EPrimitiveFailure("no such netns", nil)
		}
		return d.loopback, nil
	}
	link, ok := d.Links[linkName]
	if !ok || link.Netns != nsName {
		return nil, xerror.EPrimitiveFailure("no such link in netns", nil)
	}
	return link, nil
}

func (d *FakeDriver) NetnsLinkSetUp(nsName, linkName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("NetnsLinkSetUp", nsName, linkName); err != nil {
		return err
	}
	link, err := d.netnsLink(nsName, linkName)
	if err != nil {
		return err
	}
	link.Up = true
	return nil
}

func (d *FakeDriver) NetnsAddrAdd(nsName, linkName, addr string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("NetnsAddrAdd", nsName, linkName, addr); err != nil {
		return err
	}
	link, err := d.netnsLink(nsName, linkName)
	if err != nil {
		return err
	}
	link.Addrs = append(link.Addrs, addr)
	return nil
}

func (d *FakeDriver) NetnsRouteAdd(nsName, dst, gw, dev string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("NetnsRouteAdd", nsName, dst, gw, dev); err != nil {
		return err
	}
	if !d.Namespaces[nsName] {
		return xerror.EPrimitiveFailure("no such netns", nil)
	}
	d.Routes = append(d.Routes, FakeRoute{Netns: nsName, Dst: dst, Gw: gw, Dev: dev})
	return nil
}

func (d *FakeDriver) SetNetnsResolver(nsName string, servers []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("SetNetnsResolver", nsName); err != nil {
		return err
	}
	d.Resolvers[nsName] = append([]string{}, servers...)
	return nil
}

func (d *FakeDriver) RemoveNetnsResolver(nsName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("RemoveNetnsResolver", nsName); err != nil {
		return err
	}
	delete(d.Resolvers, nsName)
	return nil
}

func (d *FakeDriver) DefaultEgressInterface() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("DefaultEgressInterface"); err != nil {
		return "", err
	}
	if len(d.Egress) == 0 {
		return "", xerror.EConfigError("no default-route egress interface found", nil)
	}
	return d.Egress, nil
}

func (d *FakeDriver) EnableMasquerade(cidr, egress string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("EnableMasquerade", cidr, egress); err != nil {
		return err
	}
	d.Masquerades[cidr] = egress
	return nil
}

func (d *FakeDriver) DisableMasquerade(cidr string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("DisableMasquerade", cidr); err != nil {
		return err
	}
	delete(d.Masquerades, cidr)
	return nil
}

func (d *FakeDriver) AllowForwarding(cidr string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("AllowForwarding", cidr); err != nil {
		return err
	}
	d.ForwardOK[cidr] = true
	return nil
}

func (d *FakeDriver) DisallowForwarding(cidr string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("DisallowForwarding", cidr); err != nil {
		return err
	}
	delete(d.ForwardOK, cidr)
	return nil
}

func (d *FakeDriver) SetFilterPolicy(nsName, chain, target string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("SetFilterPolicy", nsName, chain, target); err != nil {
		return err
	}
	if !d.Namespaces[nsName] {
		return xerror.EPrimitiveFailure("no such netns", nil)
	}
	d.Policies[fmt.Sprintf("%s/%s", nsName, chain)] = target
	return nil
}

func (d *FakeDriver) AppendFilterRule(nsName, chain string, rule ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("AppendFilterRule", nsName, chain); err != nil {
		return err
	}
	if !d.Namespaces[nsName] {
		return xerror.EPrimitiveFailure("no such netns", nil)
	}
	d.FilterRules = append(d.FilterRules, FakeFilterRule{
		Netns: nsName,
		Chain: chain,
		Args:  append([]string{}, rule...),
	})
	return nil
}

func (d *FakeDriver) FlushFilters(nsName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("FlushFilters", nsName); err != nil {
		return err
	}
	if !d.Namespaces[nsName] {
		return xerror.EPrimitiveFailure("no such netns", nil)
	}
	kept := d.FilterRules[:0]
	for _, r := range d.FilterRules {
		if r.Netns != nsName {
			kept = append(kept, r)
		}
	}
	d.FilterRules = kept
	return nil
}

// NetnsRules returns the rules of one namespace in insertion order.
func (d *FakeDriver) NetnsRules(nsName string) []FakeFilterRule {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []FakeFilterRule
	for _, r := range d.FilterRules {
		if r.Netns == nsName {
			out = append(out, r)
		}
	}
	return out
}
