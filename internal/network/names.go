// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package network

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Kernel interface names are capped at IFNAMSIZ-1 bytes.
const maxLinkName = 15

// Derived identifiers. All of them are pure functions of resource
// identity, so any invocation can re-derive the kernel object names
// without consulting the record store. Names that would exceed the
// kernel limit are shortened with a hash of the full identity instead
// of a plain prefix cut: truncated prefixes collide for resources
// sharing a long common prefix, and a collision here makes the
// orchestrator mistake a foreign object for its own.

// RouterName derives the bridge name for a VPC.
func RouterName(vpc string) string {
	return shorten("vbr-"+slug(vpc), "vbr", vpc)
}

// NetnsName derives the routing-domain name for a subnet. Namespace
// names are not limited to IFNAMSIZ, but keep them bounded anyway so
// they stay usable in resolver paths and log lines.
func NetnsName(vpc, subnet string) string {
	name := fmt.Sprintf("vns-%s-%s", slug(vpc), slug(subnet))
	if len(name) <= 32 {
		return name
	}
	return fmt.Sprintf("vns-%s", identityHash(vpc+"/"+subnet))
}

// VethNames derives the cable-end names for a subnet: the bridge-side
// end and the in-domain end. Both embed the same identity hash.
func VethNames(vpc, subnet string) (host string, inner string) {
	h := identityHash(vpc + "/" + subnet)
	return "sv-" + h + "-h", "sv-" + h + "-n"
}

// PeeringEndpointNames derives the two cable-end names for a VPC pair.
// The pair is unordered: both orderings yield the same names, and the
// hash covers both full names, so distinct pairs never collide the way
// fixed-length name prefixes did.
func PeeringEndpointNames(a, b string) (epA string, epB string) {
	pair := []string{a, b}
	sort.Strings(pair)
	h := identityHash(pair[0] + "|" + pair[1])

	epFirst, epSecond := "pr-"+h+"-a", "pr-"+h+"-b"
	if a == pair[0] {
		return epFirst, epSecond
	}
	return epSecond, epFirst
}

func identityHash(identity string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(identity))
	return fmt.Sprintf("%08x", h.Sum64()&0xffffffff)
}

func shorten(name, prefix, identity string) string {
	if len(name) <= maxLinkName {
		return name
	}
	return fmt.Sprintf("%s-%s", prefix, identityHash(identity))
}

// slug folds a name into the kernel-safe alphabet. The fold is lossy,
// "A.b", "a_b" and "a-b" all land on "a-b", so whenever it changes the
// name the identity hash is appended to keep distinct resources on
// distinct derived names.
func slug(s string) string {
	folded := sanitize(s)
	if folded == s {
		return folded
	}
	return folded + "-" + identityHash(s)
}

func sanitize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
			b.WriteRune(c)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
