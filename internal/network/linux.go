// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

//go:build linux

package network

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
	"go.uber.org/zap"
)

const (
	ipForwardSysctl = "/proc/sys/net/ipv4/ip_forward"
	netnsEtcDir     = "/etc/netns"
)

// LinuxDriver drives the kernel via netlink, named network namespaces
// and iptables. All calls are synchronous; nothing is retried.
type LinuxDriver struct{}

var _ Driver = (*LinuxDriver)(nil)

func NewLinuxDriver() *LinuxDriver {
	return &LinuxDriver{}
}

func (d *LinuxDriver) BridgeExists(name string) bool {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return false
	}
	_, ok := link.(*netlink.Bridge)
	return ok
}

func (d *LinuxDriver) CreateBridge(name string) error {
	attrs := netlink.NewLinkAttrs()
	attrs.Name = name
	if err := netlink.LinkAdd(&netlink.Bridge{LinkAttrs: attrs}); err != nil {
		return xerror.EPrimitiveFailure("can't create bridge", err, zap.String("bridge", name))
	}
	return nil
}

func (d *LinuxDriver) DeleteBridge(name string) error {
	return d.DeleteLink(name)
}

func (d *LinuxDriver) LinkSetUp(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find link", err, zap.String("link", name))
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return xerror.EPrimitiveFailure("can't set link up", err, zap.String("link", name))
	}
	return nil
}

func (d *LinuxDriver) AddrAdd(linkName, addrCIDR string) error {
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find link", err, zap.String("link", linkName))
	}
	addr, err := netlink.ParseAddr(addrCIDR)
	if err != nil {
		return xerror.EInvalidArgument("can't parse address", err, zap.String("addr", addrCIDR))
	}
	if err := netlink.AddrAdd(link, addr); err != nil {
		return xerror.EPrimitiveFailure("can't assign address", err,
			zap.String("link", linkName), zap.String("addr", addrCIDR))
	}
	return nil
}

func (d *LinuxDriver) EnableIPForwarding() error {
	if err := os.WriteFile(ipForwardSysctl, []byte("1"), 0o644); err != nil {
		return xerror.EPrimitiveFailure("can't enable ip forwarding", err)
	}
	return nil
}

func (d *LinuxDriver) NetnsExists(name string) bool {
	ns, err := netns.GetFromName(name)
	if err != nil {
		return false
	}
	_ = ns.Close()
	return true
}

func (d *LinuxDriver) CreateNetns(name string) error {
	// netns.NewNamed switches the calling thread into the new
	// namespace, so pin the thread and switch back.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	origin, err := netns.Get()
	if err != nil {
		return xerror.EPrimitiveFailure("can't get current netns", err)
	}
	defer origin.Close()

	ns, err := netns.NewNamed(name)
	if err != nil {
		return xerror.EPrimitiveFailure("can't create netns", err, zap.String("netns", name))
	}
	defer ns.Close()

	if err := netns.Set(origin); err != nil {
		return xerror.EPrimitiveFailure("can't return to host netns", err)
	}
	return nil
}

func (d *LinuxDriver) DeleteNetns(name string) error {
	if !d.NetnsExists(name) {
		return nil
	}
	if err := netns.DeleteNamed(name); err != nil {
		return xerror.EPrimitiveFailure("can't delete netns", err, zap.String("netns", name))
	}
	return nil
}

func (d *LinuxDriver) LinkExists(name string) bool {
	_, err := netlink.LinkByName(name)
	return err == nil
}

func (d *LinuxDriver) CreateVethPair(a, b string) error {
	attrs := netlink.NewLinkAttrs()
	attrs.Name = a
	veth := &netlink.Veth{LinkAttrs: attrs, PeerName: b}
	if err := netlink.LinkAdd(veth); err != nil {
		return xerror.EPrimitiveFailure("can't create veth pair", err,
			zap.String("end1", a), zap.String("end2", b))
	}
	return nil
}

func (d *LinuxDriver) DeleteLink(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		if _, notFound := err.(netlink.LinkNotFoundError); notFound {
			return nil
		}
		return xerror.EPrimitiveFailure("can't find link", err, zap.String("link", name))
	}
	if err := netlink.LinkDel(link); err != nil {
		return xerror.EPrimitiveFailure("can't delete link", err, zap.String("link", name))
	}
	return nil
}

func (d *LinuxDriver) MoveLinkToNetns(linkName, nsName string) error {
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find link", err, zap.String("link", linkName))
	}
	ns, err := netns.GetFromName(nsName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find netns", err, zap.String("netns", nsName))
	}
	defer ns.Close()

	if err := netlink.LinkSetNsFd(link, int(ns)); err != nil {
		return xerror.EPrimitiveFailure("can't move link into netns", err,
			zap.String("link", linkName), zap.String("netns", nsName))
	}
	return nil
}

func (d *LinuxDriver) AttachLinkToBridge(linkName, bridgeName string) error {
	link, err := netlink.LinkByName(linkName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find link", err, zap.String("link", linkName))
	}
	br, err := netlink.LinkByName(bridgeName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find bridge", err, zap.String("bridge", bridgeName))
	}
	bridge, ok := br.(*netlink.Bridge)
	if !ok {
		return xerror.EPrimitiveFailure("link is not a bridge", nil, zap.String("bridge", bridgeName))
	}
	if err := netlink.LinkSetMaster(link, bridge); err != nil {
		return xerror.EPrimitiveFailure("can't attach link to bridge", err,
			zap.String("link", linkName), zap.String("bridge", bridgeName))
	}
	return nil
}

func (d *LinuxDriver) nsHandle(nsName string) (*netlink.Handle, netns.NsHandle, error) {
	ns, err := netns.GetFromName(nsName)
	if err != nil {
		return nil, 0, xerror.EPrimitiveFailure("can't find netns", err, zap.String("netns", nsName))
	}
	handle, err := netlink.NewHandleAt(ns)
	if err != nil {
		_ = ns.Close()
		return nil, 0, xerror.EPrimitiveFailure("can't open netlink handle in netns", err, zap.String("netns", nsName))
	}
	return handle, ns, nil
}

func (d *LinuxDriver) NetnsLinkSetUp(nsName, linkName string) error {
	handle, ns, err := d.nsHandle(nsName)
	if err != nil {
		return err
	}
	defer ns.Close()
	defer handle.Delete()

	link, err := handle.LinkByName(linkName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find link in netns", err,
			zap.String("link", linkName), zap.String("netns", nsName))
	}
	if err := handle.LinkSetUp(link); err != nil {
		return xerror.EPrimitiveFailure("can't set link up in netns", err,
			zap.String("link", linkName), zap.String("netns", nsName))
	}
	return nil
}

func (d *LinuxDriver) NetnsAddrAdd(nsName, linkName, addrCIDR string) error {
	handle, ns, err := d.nsHandle(nsName)
	if err != nil {
		return err
	}
	defer ns.Close()
	defer handle.Delete()

	link, err := handle.LinkByName(linkName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find link in netns", err,
			zap.String("link", linkName), zap.String("netns", nsName))
	}
	addr, err := netlink.ParseAddr(addrCIDR)
	if err != nil {
		return xerror.EInvalidArgument("can't parse address", err, zap.String("addr", addrCIDR))
	}
	if err := handle.AddrAdd(link, addr); err != nil {
		return xerror.EPrimitiveFailure("can't assign address in netns", err,
			zap.String("link", linkName), zap.String("addr", addrCIDR), zap.String("netns", nsName))
	}
	return nil
}

func (d *LinuxDriver) NetnsRouteAdd(nsName, dstCIDR, gateway, dev string) error {
	handle, ns, err := d.nsHandle(nsName)
	if err != nil {
		return err
	}
	defer ns.Close()
	defer handle.Delete()

	route := &netlink.Route{}

	if len(dstCIDR) > 0 {
		_, dst, err := net.ParseCIDR(dstCIDR)
		if err != nil {
			return xerror.EInvalidArgument("can't parse route destination", err, zap.String("dst", dstCIDR))
		}
		route.Dst = dst
	}

	if len(gateway) > 0 {
		gw := net.ParseIP(gateway)
		if gw == nil {
			return xerror.EInvalidArgument("can't parse route gateway", nil, zap.String("gw", gateway))
		}
		route.Gw = gw
	}

	if len(dev) > 0 {
		link, err := handle.LinkByName(dev)
		if err != nil {
			return xerror.EPrimitiveFailure("can't find route device in netns", err,
				zap.String("dev", dev), zap.String("netns", nsName))
		}
		route.LinkIndex = link.Attrs().Index
		if len(gateway) == 0 {
			route.Scope = netlink.SCOPE_LINK
		}
	}

	if err := handle.RouteAdd(route); err != nil {
		return xerror.EPrimitiveFailure("can't add route in netns", err,
			zap.String("dst", dstCIDR), zap.String("gw", gateway), zap.String("netns", nsName))
	}
	return nil
}

// SetNetnsResolver installs a static resolver configuration scoped to
// the routing domain, using the /etc/netns/<name>/resolv.conf
// convention honoured on namespace entry.
func (d *LinuxDriver) SetNetnsResolver(nsName string, nameservers []string) error {
	dir := filepath.Join(netnsEtcDir, nsName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return xerror.EPrimitiveFailure("can't create netns etc dir", err, zap.String("netns", nsName))
	}

	var b strings.Builder
	for _, ns := range nameservers {
		fmt.Fprintf(&b, "nameserver %s\n", ns)
	}
	if err := os.WriteFile(filepath.Join(dir, "resolv.conf"), []byte(b.String()), 0o644); err != nil {
		return xerror.EPrimitiveFailure("can't write resolv.conf", err, zap.String("netns", nsName))
	}
	return nil
}

func (d *LinuxDriver) RemoveNetnsResolver(nsName string) error {
	if err := os.RemoveAll(filepath.Join(netnsEtcDir, nsName)); err != nil {
		return xerror.EPrimitiveFailure("can't remove netns etc dir", err, zap.String("netns", nsName))
	}
	return nil
}

// DefaultEgressInterface resolves the device carrying the host's
// current default route.
func (d *LinuxDriver) DefaultEgressInterface() (string, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return "", xerror.EPrimitiveFailure("can't list routes", err)
	}

	for _, r := range routes {
		if r.Dst != nil || r.Gw == nil {
			continue
		}
		link, err := netlink.LinkByIndex(r.LinkIndex)
		if err != nil {
			continue
		}
		return link.Attrs().Name, nil
	}

	return "", xerror.EConfigError("no default-route egress interface found", nil)
}

func (d *LinuxDriver) EnableMasquerade(srcCIDR, egress string) error {
	ipt, err := iptables.New()
	if err != nil {
		return xerror.EPrimitiveFailure("can't initialize iptables", err)
	}

	err = ipt.AppendUnique("nat", "POSTROUTING", "-s", srcCIDR, "-o", egress, "-j", "MASQUERADE")
	if err != nil {
		return xerror.EPrimitiveFailure("can't add masquerade rule", err,
			zap.String("cidr", srcCIDR), zap.String("egress", egress))
	}
	return nil
}

// DisableMasquerade removes every POSTROUTING masquerade rule matching
// the source CIDR, whatever egress interface it was installed with.
func (d *LinuxDriver) DisableMasquerade(srcCIDR string) error {
	ipt, err := iptables.New()
	if err != nil {
		return xerror.EPrimitiveFailure("can't initialize iptables", err)
	}

	rules, err := ipt.List("nat", "POSTROUTING")
	if err != nil {
		return xerror.EPrimitiveFailure("can't list nat rules", err)
	}

	for _, rule := range rules {
		if !strings.Contains(rule, "MASQUERADE") || !strings.Contains(rule, sourceMatch(srcCIDR)) {
			continue
		}
		args := strings.Fields(rule)
		if len(args) < 3 || args[0] != "-A" {
			continue
		}
		if err := ipt.Delete("nat", "POSTROUTING", args[2:]...); err != nil {
			return xerror.EPrimitiveFailure("can't delete masquerade rule", err, zap.String("rule", rule))
		}
	}
	return nil
}

// iptables prints plain host prefixes as /32; keep the match aligned.
func sourceMatch(cidr string) string {
	return "-s " + cidr
}

func (d *LinuxDriver) AllowForwarding(cidr string) error {
	ipt, err := iptables.New()
	if err != nil {
		return xerror.EPrimitiveFailure("can't initialize iptables", err)
	}

	if err := ipt.AppendUnique("filter", "FORWARD", "-d", cidr, "-j", "ACCEPT"); err != nil {
		return xerror.EPrimitiveFailure("can't add forward-accept rule", err, zap.String("cidr", cidr))
	}
	if err := ipt.AppendUnique("filter", "FORWARD", "-s", cidr, "-j", "ACCEPT"); err != nil {
		return xerror.EPrimitiveFailure("can't add forward-accept rule", err, zap.String("cidr", cidr))
	}
	return nil
}

func (d *LinuxDriver) DisallowForwarding(cidr string) error {
	ipt, err := iptables.New()
	if err != nil {
		return xerror.EPrimitiveFailure("can't initialize iptables", err)
	}

	for _, rule := range [][]string{
		{"-d", cidr, "-j", "ACCEPT"},
		{"-s", cidr, "-j", "ACCEPT"},
	} {
		exists, err := ipt.Exists("filter", "FORWARD", rule...)
		if err != nil {
			return xerror.EPrimitiveFailure("can't check forward rule", err, zap.String("cidr", cidr))
		}
		if !exists {
			continue
		}
		if err := ipt.Delete("filter", "FORWARD", rule...); err != nil {
			return xerror.EPrimitiveFailure("can't delete forward rule", err, zap.String("cidr", cidr))
		}
	}
	return nil
}

// inNetns runs fn with the calling thread switched into the named
// namespace. Child processes spawned by fn (iptables) inherit it.
func (d *LinuxDriver) inNetns(nsName string, fn func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	origin, err := netns.Get()
	if err != nil {
		return xerror.EPrimitiveFailure("can't get current netns", err)
	}
	defer origin.Close()

	target, err := netns.GetFromName(nsName)
	if err != nil {
		return xerror.EPrimitiveFailure("can't find netns", err, zap.String("netns", nsName))
	}
	defer target.Close()

	if err := netns.Set(target); err != nil {
		return xerror.EPrimitiveFailure("can't enter netns", err, zap.String("netns", nsName))
	}
	defer func() {
		if err := netns.Set(origin); err != nil {
			zap.L().Error("can't return to host netns", zap.Error(err))
		}
	}()

	return fn()
}

func (d *LinuxDriver) SetFilterPolicy(nsName, chain, target string) error {
	return d.inNetns(nsName, func() error {
		ipt, err := iptables.New()
		if err != nil {
			return xerror.EPrimitiveFailure("can't initialize iptables", err)
		}
		if err := ipt.ChangePolicy("filter", chain, target); err != nil {
			return xerror.EPrimitiveFailure("can't set chain policy", err,
				zap.String("netns", nsName), zap.String("chain", chain), zap.String("target", target))
		}
		return nil
	})
}

func (d *LinuxDriver) AppendFilterRule(nsName, chain string, rule ...string) error {
	return d.inNetns(nsName, func() error {
		ipt, err := iptables.New()
		if err != nil {
			return xerror.EPrimitiveFailure("can't initialize iptables", err)
		}
		if err := ipt.Append("filter", chain, rule...); err != nil {
			return xerror.EPrimitiveFailure("can't append filter rule", err,
				zap.String("netns", nsName), zap.String("chain", chain), zap.Strings("rule", rule))
		}
		return nil
	})
}

// FlushFilters removes every filter rule and custom chain inside the
// routing domain. Chain policies are left untouched: clearing rules
// does not restore a baseline.
func (d *LinuxDriver) FlushFilters(nsName string) error {
	return d.inNetns(nsName, func() error {
		ipt, err := iptables.New()
		if err != nil {
			return xerror.EPrimitiveFailure("can't initialize iptables", err)
		}

		chains, err := ipt.ListChains("filter")
		if err != nil {
			return xerror.EPrimitiveFailure("can't list filter chains", err, zap.String("netns", nsName))
		}

		for _, chain := range chains {
			if err := ipt.ClearChain("filter", chain); err != nil {
				return xerror.EPrimitiveFailure("can't flush filter chain", err,
					zap.String("netns", nsName), zap.String("chain", chain))
			}
		}
		for _, chain := range chains {
			if builtinChain(chain) {
				continue
			}
			if err := ipt.DeleteChain("filter", chain); err != nil {
				return xerror.EPrimitiveFailure("can't delete filter chain", err,
					zap.String("netns", nsName), zap.String("chain", chain))
			}
		}
		return nil
	})
}

func builtinChain(chain string) bool {
	switch chain {
	case ChainInput, ChainForward, ChainOutput:
		return true
	}
	return false
}
