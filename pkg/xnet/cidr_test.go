// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostAddrDerivation(t *testing.T) {
	tests := []struct {
		cidr    string
		n       int
		want    string
		wantIP  string
	}{
		{"10.0.0.0/16", 1, "10.0.0.1/16", "10.0.0.1"},
		{"10.0.0.0/16", 10, "10.0.0.10/16", "10.0.0.10"},
		{"10.0.1.0/24", 1, "10.0.1.1/24", "10.0.1.1"},
		{"10.0.1.0/24", 10, "10.0.1.10/24", "10.0.1.10"},
		{"192.168.0.0/16", 1, "192.168.0.1/16", "192.168.0.1"},
	}

	for _, tt := range tests {
		addr, err := HostAddr(tt.cidr, tt.n)
		require.NoError(t, err, tt.cidr)
		assert.Equal(t, tt.want, addr)

		ip, err := HostIP(tt.cidr, tt.n)
		require.NoError(t, err, tt.cidr)
		assert.Equal(t, tt.wantIP, ip)
	}
}

func TestHostAddrOutOfRange(t *testing.T) {
	// a /30 has hosts 1 and 2 only
	_, err := HostAddr("10.0.0.0/30", 10)
	require.Error(t, err)
}

func TestIsIPv4CIDR(t *testing.T) {
	assert.True(t, IsIPv4CIDR("10.0.0.0/16"))
	assert.True(t, IsIPv4CIDR("192.168.1.0/24"))
	assert.False(t, IsIPv4CIDR(""))
	assert.False(t, IsIPv4CIDR("10.0.0.0"))
	assert.False(t, IsIPv4CIDR("10.0.0.0/33"))
	assert.False(t, IsIPv4CIDR("banana/24"))
	assert.False(t, IsIPv4CIDR("fd00::/64"))
}

func TestParseIPv4CIDRMasksNetwork(t *testing.T) {
	ipnet, err := ParseIPv4CIDR("10.0.1.17/24")
	require.NoError(t, err)
	assert.Equal(t, "10.0.1.0/24", ipnet.String())
}
