// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xnet

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

// ParseIPv4CIDR parses s as an IPv4 prefix and returns the masked network.
// IPv6 prefixes are rejected: the whole orchestrator is v4-only.
func ParseIPv4CIDR(s string) (*net.IPNet, error) {
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", s, err)
	}
	if ip.To4() == nil {
		return nil, fmt.Errorf("not an IPv4 CIDR: %q", s)
	}
	return ipnet, nil
}

// IsIPv4CIDR tells whether s is a syntactically valid IPv4 prefix.
func IsIPv4CIDR(s string) bool {
	_, err := ParseIPv4CIDR(s)
	return err == nil
}

// HostIP returns the n-th host address of the prefix, e.g.
// HostIP("10.0.0.0/16", 1) == "10.0.0.1".
func HostIP(cidrStr string, n int) (string, error) {
	ipnet, err := ParseIPv4CIDR(cidrStr)
	if err != nil {
		return "", err
	}

	ip, err := cidr.Host(ipnet, n)
	if err != nil {
		return "", fmt.Errorf("no host %d in %s: %w", n, cidrStr, err)
	}
	return ip.String(), nil
}

// HostAddr returns the n-th host address carrying the prefix length of
// the CIDR itself, e.g. HostAddr("10.0.0.0/16", 1) == "10.0.0.1/16".
// This is the form interface addresses are assigned in.
func HostAddr(cidrStr string, n int) (string, error) {
	ipnet, err := ParseIPv4CIDR(cidrStr)
	if err != nil {
		return "", err
	}

	ip, err := cidr.Host(ipnet, n)
	if err != nil {
		return "", fmt.Errorf("no host %d in %s: %w", n, cidrStr, err)
	}

	ones, _ := ipnet.Mask.Size()
	return fmt.Sprintf("%s/%d", ip.String(), ones), nil
}
