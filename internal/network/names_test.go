// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterName(t *testing.T) {
	assert.Equal(t, "vbr-demo", RouterName("demo"))
	assert.LessOrEqual(t, len(RouterName("a-rather-long-vpc-name")), maxLinkName)
	assert.LessOrEqual(t, len(RouterName("Demo")), maxLinkName)

	// long names sharing a prefix must not collide
	n1 := RouterName("production-network-east")
	n2 := RouterName("production-network-west")
	assert.NotEqual(t, n1, n2)
}

func TestRouterNameLossyFold(t *testing.T) {
	// "Demo", "a.b" and "a_b" all fold onto the plain-dash alphabet,
	// but each must keep a router of its own
	assert.NotEqual(t, RouterName("Demo"), RouterName("demo"))
	assert.NotEqual(t, RouterName("a.b"), RouterName("a-b"))
	assert.NotEqual(t, RouterName("a_b"), RouterName("a-b"))
	assert.NotEqual(t, RouterName("a.b"), RouterName("a_b"))

	// deterministic
	assert.Equal(t, RouterName("a.b"), RouterName("a.b"))
}

func TestVethNamesBounded(t *testing.T) {
	host, inner := VethNames("Demo", "web")
	assert.NotEqual(t, host, inner)
	assert.LessOrEqual(t, len(host), maxLinkName)
	assert.LessOrEqual(t, len(inner), maxLinkName)

	// deterministic
	host2, inner2 := VethNames("Demo", "web")
	assert.Equal(t, host, host2)
	assert.Equal(t, inner, inner2)
}

func TestPeeringEndpointNames(t *testing.T) {
	epA, epB := PeeringEndpointNames("A", "B")
	assert.NotEqual(t, epA, epB)
	assert.LessOrEqual(t, len(epA), maxLinkName)

	// unordered: both orderings yield the same endpoints, swapped
	epB2, epA2 := PeeringEndpointNames("B", "A")
	assert.Equal(t, epA, epA2)
	assert.Equal(t, epB, epB2)

	// pairs sharing name prefixes must not share endpoints
	x1, _ := PeeringEndpointNames("production-one", "staging")
	x2, _ := PeeringEndpointNames("production-two", "staging")
	assert.NotEqual(t, x1, x2)
}

func TestNetnsName(t *testing.T) {
	assert.Equal(t, "vns-demo-web", NetnsName("demo", "web"))
	assert.NotEqual(t, NetnsName("Demo", "web"), NetnsName("demo", "web"))
	assert.NotEqual(t, NetnsName("a.b", "web"), NetnsName("a-b", "web"))

	long := NetnsName("a-very-long-vpc-name-indeed", "and-a-long-subnet-name")
	assert.LessOrEqual(t, len(long), 32)
	other := NetnsName("a-very-long-vpc-name-indeed", "and-a-long-subnet-nam2")
	assert.NotEqual(t, long, other)
}
