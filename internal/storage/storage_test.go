// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hostvpc/vpcctl/internal/types"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func TestVPCRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreateVPC(types.VPC{Name: "alpha", CIDR: "10.0.0.0/16", Router: "vbr-alpha"})
	require.NoError(t, err)

	got, err := s.GetVPC("alpha")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/16", got.CIDR)
	assert.Equal(t, "vbr-alpha", got.Router)
	assert.NotNil(t, got.Created)

	vpcs, err := s.ListVPCs()
	require.NoError(t, err)
	assert.Len(t, vpcs, 1)

	require.NoError(t, s.DeleteVPC("alpha"))
	_, err = s.GetVPC("alpha")
	assert.True(t, errors.Is(err, xerror.EEntryNotFound("", nil)))

	// deleting again is fine
	require.NoError(t, s.DeleteVPC("alpha"))
}

func TestVPCNameUnique(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreateVPC(types.VPC{Name: "alpha", CIDR: "10.0.0.0/16", Router: "vbr-alpha"})
	require.NoError(t, err)

	_, err = s.CreateVPC(types.VPC{Name: "alpha", CIDR: "10.1.0.0/16", Router: "vbr-alpha"})
	require.Error(t, err)
	assert.True(t, xerror.IsKind(err, xerror.EExistsType))
}

func TestVPCValidation(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreateVPC(types.VPC{Name: "", CIDR: "10.0.0.0/16", Router: "r"})
	assert.True(t, xerror.IsKind(err, xerror.EInvalidArgumentType))

	_, err = s.CreateVPC(types.VPC{Name: "a:b", CIDR: "10.0.0.0/16", Router: "r"})
	assert.True(t, xerror.IsKind(err, xerror.EInvalidArgumentType))

	_, err = s.CreateVPC(types.VPC{Name: "alpha", CIDR: "not-a-cidr", Router: "r"})
	assert.True(t, xerror.IsKind(err, xerror.EInvalidArgumentType))
}

func TestSubnetUniquePerVPC(t *testing.T) {
	s := newTestStorage(t)

	rec := types.Subnet{VPC: "alpha", Name: "web", CIDR: "10.0.1.0/24", Type: "public", Netns: "vns-alpha-web"}
	_, err := s.CreateSubnet(rec)
	require.NoError(t, err)

	_, err = s.CreateSubnet(rec)
	require.Error(t, err)
	assert.True(t, xerror.IsKind(err, xerror.EExistsType))

	// same name under another vpc is fine
	other := rec
	other.VPC = "beta"
	other.Netns = "vns-beta-web"
	_, err = s.CreateSubnet(other)
	require.NoError(t, err)

	subnets, err := s.SearchSubnets(nil)
	require.NoError(t, err)
	assert.Len(t, subnets, 2)

	vpc := "alpha"
	subnets, err = s.SearchSubnets(&SubnetFilter{VPC: &vpc})
	require.NoError(t, err)
	require.Len(t, subnets, 1)
	assert.Equal(t, "web", subnets[0].Name)
}

func TestDeleteSubnetsOfVPC(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range []string{"web", "db"} {
		_, err := s.CreateSubnet(types.Subnet{
			VPC: "alpha", Name: name, CIDR: "10.0.1.0/24", Type: "private", Netns: "vns-alpha-" + name,
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteSubnetsOfVPC("alpha"))
	subnets, err := s.SearchSubnets(nil)
	require.NoError(t, err)
	assert.Empty(t, subnets)
}

func TestPeeringUnorderedPair(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreatePeering(types.Peering{
		VPC1: "alpha", VPC2: "beta", Endpoint1: "pr-x-a", Endpoint2: "pr-x-b",
		CIDR1: "10.0.0.0/16", CIDR2: "192.168.0.0/16",
	})
	require.NoError(t, err)

	// lookup works in both orders
	p, err := s.FindPeering("beta", "alpha")
	require.NoError(t, err)
	assert.True(t, p.Matches("alpha", "beta"))

	refs, err := s.PeeringsOf("beta")
	require.NoError(t, err)
	assert.Len(t, refs, 1)

	// delete works for the reversed order too
	require.NoError(t, s.DeletePeering("beta", "alpha"))
	all, err := s.ListPeerings()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSelfPeeringRejected(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CreatePeering(types.Peering{
		VPC1: "alpha", VPC2: "alpha", Endpoint1: "e1", Endpoint2: "e2",
	})
	require.Error(t, err)
	assert.True(t, xerror.IsKind(err, xerror.EInvalidArgumentType))
}

func TestStateExportImport(t *testing.T) {
	s := newTestStorage(t)

	created := xtime.FromUnix(1700000000)
	_, err := s.CreateVPC(types.VPC{Name: "alpha", CIDR: "10.0.0.0/16", Router: "vbr-alpha", Created: created})
	require.NoError(t, err)
	_, err = s.CreateSubnet(types.Subnet{
		VPC: "alpha", Name: "web", CIDR: "10.0.1.0/24", Type: "public", Netns: "vns-alpha-web", Created: created,
	})
	require.NoError(t, err)
	_, err = s.CreatePeering(types.Peering{
		VPC1: "alpha", VPC2: "beta", Endpoint1: "pr-x-a", Endpoint2: "pr-x-b", Created: created,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "VPC:alpha:10.0.0.0/16:vbr-alpha:1700000000", lines[0])
	assert.Equal(t, "SUBNET:alpha:web:10.0.1.0/24:public:vns-alpha-web:1700000000", lines[1])
	assert.Equal(t, "PEERING:alpha:beta:pr-x-a:pr-x-b:1700000000", lines[2])

	// import into a fresh store round-trips everything
	dst := newTestStorage(t)
	n, err := dst.Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := dst.GetVPC("alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got.Created.Unix())
}

func TestImportSkipsGarbage(t *testing.T) {
	s := newTestStorage(t)

	in := strings.NewReader(strings.Join([]string{
		"VPC:alpha:10.0.0.0/16:vbr-alpha:1700000000",
		"BOGUS:what:is:this",
		"VPC:broken-too-few",
		"",
		"SUBNET:alpha:web:10.0.1.0/24:public:vns-alpha-web:1700000000",
	}, "\n"))

	n, err := s.Import(in)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
