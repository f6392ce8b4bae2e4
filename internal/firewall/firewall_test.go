// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package firewall

import (
	"testing"

	"github.com/hostvpc/vpcctl/internal/network"
	"github.com/hostvpc/vpcctl/internal/storage"
	"github.com/hostvpc/vpcctl/internal/types"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicy = `{
  "policies": [
    {
      "subnet": "10.0.1.0/24",
      "description": "web tier",
      "ingress": [
        {"port": 80, "description": "http"}
      ],
      "egress": [
        {"destination": "0.0.0.0/0", "action": "allow"}
      ]
    }
  ]
}`

type resolverFunc func(cidr string) (string, error)

func (f resolverFunc) NetnsBySubnetCIDR(cidr string) (string, error) { return f(cidr) }

func staticResolver(netns string) Resolver {
	return resolverFunc(func(string) (string, error) { return netns, nil })
}

func TestParseDocumentDefaults(t *testing.T) {
	doc, err := ParseDocument([]byte(samplePolicy))
	require.NoError(t, err)
	require.Len(t, doc.Policies, 1)

	ingress := doc.Policies[0].Ingress[0]
	assert.Equal(t, "tcp", ingress.Protocol)
	assert.Equal(t, "0.0.0.0/0", ingress.Source)
	assert.Equal(t, "allow", ingress.Action)
}

func TestParseDocumentGarbage(t *testing.T) {
	_, err := ParseDocument([]byte("{nope"))
	require.Error(t, err)
	assert.True(t, xerror.IsKind(err, xerror.EInvalidArgumentType))
}

func TestCompileStrictOrdering(t *testing.T) {
	doc, err := ParseDocument([]byte(samplePolicy))
	require.NoError(t, err)

	programs := Compile(doc, ModeStrict, staticResolver("vns-a-web"))
	require.Len(t, programs, 1)
	program := programs[0]

	assert.Equal(t, []ChainPolicy{
		{Chain: "INPUT", Target: "DROP"},
		{Chain: "FORWARD", Target: "DROP"},
		{Chain: "OUTPUT", Target: "ACCEPT"},
	}, program.Policies)

	require.Len(t, program.Rules, 6)
	assert.Equal(t, Rule{Chain: "INPUT", Args: []string{"-m", "conntrack", "--ctstate", "ESTABLISHED,RELATED", "-j", "ACCEPT"}}, program.Rules[0])
	assert.Equal(t, Rule{Chain: "FORWARD", Args: []string{"-m", "conntrack", "--ctstate", "ESTABLISHED,RELATED", "-j", "ACCEPT"}}, program.Rules[1])
	assert.Equal(t, Rule{Chain: "INPUT", Args: []string{"-i", "lo", "-j", "ACCEPT"}}, program.Rules[2])
	assert.Equal(t, Rule{Chain: "OUTPUT", Args: []string{"-o", "lo", "-j", "ACCEPT"}}, program.Rules[3])
	assert.Equal(t, Rule{Chain: "INPUT", Args: []string{"-p", "tcp", "--dport", "80", "-s", "0.0.0.0/0", "-j", "ACCEPT"}}, program.Rules[4])
	assert.Equal(t, Rule{Chain: "OUTPUT", Args: []string{"-d", "0.0.0.0/0", "-j", "ACCEPT"}}, program.Rules[5])
}

func TestCompilePermissive(t *testing.T) {
	doc, err := ParseDocument([]byte(samplePolicy))
	require.NoError(t, err)

	programs := Compile(doc, ModePermissive, staticResolver("vns-a-web"))
	require.Len(t, programs, 1)

	assert.Empty(t, programs[0].Policies)
	require.Len(t, programs[0].Rules, 2)
	assert.Equal(t, "--dport", programs[0].Rules[0].Args[2])
}

func TestCompileDenyAction(t *testing.T) {
	doc := &Document{Policies: []Policy{{
		Subnet:  "10.0.1.0/24",
		Ingress: []IngressRule{{Port: 22, Action: "deny"}},
	}}}
	doc.normalize()

	programs := Compile(doc, ModePermissive, staticResolver("vns-a-web"))
	require.Len(t, programs, 1)
	require.Len(t, programs[0].Rules, 1)
	assert.Equal(t, "DROP", programs[0].Rules[0].Args[len(programs[0].Rules[0].Args)-1])
}

func TestCompileSkipsUnresolvable(t *testing.T) {
	doc := &Document{Policies: []Policy{
		{Subnet: "10.9.9.0/24"},
		{Subnet: "10.0.1.0/24"},
	}}
	doc.normalize()

	resolver := resolverFunc(func(cidr string) (string, error) {
		if cidr == "10.0.1.0/24" {
			return "vns-a-web", nil
		}
		return "", xerror.WEntryNotFound("subnet", "no subnet with such cidr", nil)
	})

	programs := Compile(doc, ModeStrict, resolver)
	require.Len(t, programs, 1)
	assert.Equal(t, "10.0.1.0/24", programs[0].Subnet)
}

func newTestService(t *testing.T) (*Service, *network.FakeDriver, *storage.Storage) {
	t.Helper()
	store, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Shutdown() })

	driver := network.NewFakeDriver()
	return NewService(store, driver), driver, store
}

func addSubnet(t *testing.T, store *storage.Storage, driver *network.FakeDriver, vpc, name, cidr string) string {
	t.Helper()
	netns := network.NetnsName(vpc, name)
	_, err := store.CreateSubnet(types.Subnet{
		VPC: vpc, Name: name, CIDR: cidr, Type: types.SubnetTypePrivate, Netns: netns,
	})
	require.NoError(t, err)
	require.NoError(t, driver.CreateNetns(netns))
	return netns
}

func TestServiceApplyStrict(t *testing.T) {
	svc, driver, store := newTestService(t)
	netns := addSubnet(t, store, driver, "alpha", "web", "10.0.1.0/24")

	doc, err := ParseDocument([]byte(samplePolicy))
	require.NoError(t, err)
	require.NoError(t, svc.Apply(doc, ModeStrict))

	assert.Equal(t, "DROP", driver.Policies[netns+"/INPUT"])
	assert.Equal(t, "DROP", driver.Policies[netns+"/FORWARD"])
	assert.Equal(t, "ACCEPT", driver.Policies[netns+"/OUTPUT"])

	rules := driver.NetnsRules(netns)
	require.Len(t, rules, 6)
	assert.Equal(t, []string{"-m", "conntrack", "--ctstate", "ESTABLISHED,RELATED", "-j", "ACCEPT"}, rules[0].Args)
	assert.Equal(t, []string{"-p", "tcp", "--dport", "80", "-s", "0.0.0.0/0", "-j", "ACCEPT"}, rules[4].Args)
}

func TestServiceApplyContinuesPastFailure(t *testing.T) {
	svc, driver, store := newTestService(t)
	nsWeb := addSubnet(t, store, driver, "alpha", "web", "10.0.1.0/24")
	nsDB := addSubnet(t, store, driver, "alpha", "db", "10.0.2.0/24")

	driver.FailOn["SetFilterPolicy:"+nsWeb] = xerror.EPrimitiveFailure("injected", nil)

	doc := &Document{Policies: []Policy{
		{Subnet: "10.0.1.0/24"},
		{Subnet: "10.0.2.0/24"},
	}}
	doc.normalize()

	err := svc.Apply(doc, ModeStrict)
	require.Error(t, err)

	// the second domain still got its program
	assert.Equal(t, "DROP", driver.Policies[nsDB+"/INPUT"])
	assert.Len(t, driver.NetnsRules(nsDB), 4)
}

func TestServiceClear(t *testing.T) {
	svc, driver, store := newTestService(t)
	netns := addSubnet(t, store, driver, "alpha", "web", "10.0.1.0/24")

	doc, err := ParseDocument([]byte(samplePolicy))
	require.NoError(t, err)
	require.NoError(t, svc.Apply(doc, ModeStrict))
	require.NotEmpty(t, driver.NetnsRules(netns))

	require.NoError(t, svc.Clear("10.0.1.0/24"))
	assert.Empty(t, driver.NetnsRules(netns))
	// clearing rules leaves the chain policies alone
	assert.Equal(t, "DROP", driver.Policies[netns+"/INPUT"])
}

func TestServiceClearUnknownSubnet(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Clear("10.99.0.0/24")
	require.Error(t, err)
	assert.True(t, xerror.IsKind(err, xerror.EEntryNotFoundType))
}
