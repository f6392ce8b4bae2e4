package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeVethLifecycle(t *testing.T) {
	d := NewFakeDriver()

	require.NoError(t, d.CreateVethPair("sv-aa-h", "sv-aa-n"))
	assert.True(t, d.LinkExists("sv-aa-h"))
	assert.True(t, d.LinkExists("sv-aa-n"))

	// deleting one end takes its peer down with it
	require.NoError(t, d.DeleteLink("sv-aa-h"))
	assert.False(t, d.LinkExists("sv-aa-h"))
	assert.False(t, d.LinkExists("sv-aa-n"))

	// deletes are idempotent
	require.NoError(t, d.DeleteLink("sv-aa-h"))
}

func TestFakeNetnsDeleteDropsLinks(t *testing.T) {
	d := NewFakeDriver()

	require.NoError(t, d.CreateNetns("vns-a-web"))
	require.NoError(t, d.CreateVethPair("sv-bb-h", "sv-bb-n"))
	require.NoError(t, d.MoveLinkToNetns("sv-bb-n", "vns-a-web"))

	require.NoError(t, d.DeleteNetns("vns-a-web"))
	assert.False(t, d.LinkExists("sv-bb-n"))
	assert.False(t, d.LinkExists("sv-bb-h"))
}

func TestFakeLoopbackPerDriver(t *testing.T) {
	d1 := NewFakeDriver()
	d2 := NewFakeDriver()
	require.NoError(t, d1.CreateNetns("vns-a-web"))
	require.NoError(t, d2.CreateNetns("vns-b-web"))

	// bringing lo up in one driver must not leak into another
	require.NoError(t, d1.NetnsLinkSetUp("vns-a-web", "lo"))
	assert.True(t, d1.loopback.Up)
	assert.False(t, d2.loopback.Up)
}

func TestFakeFailureInjection(t *testing.T) {
	d := NewFakeDriver()
	boom := errors.New("boom")
	d.FailOn["CreateBridge:vbr-beta"] = boom

	require.NoError(t, d.CreateBridge("vbr-alpha"))
	err := d.CreateBridge("vbr-beta")
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, d.BridgeExists("vbr-beta"))
}

func TestFakeFilterRulesOrdered(t *testing.T) {
	d := NewFakeDriver()
	require.NoError(t, d.CreateNetns("vns-a-web"))

	require.NoError(t, d.SetFilterPolicy("vns-a-web", ChainInput, TargetDrop))
	require.NoError(t, d.AppendFilterRule("vns-a-web", ChainInput, "-i", "lo", "-j", "ACCEPT"))
	require.NoError(t, d.AppendFilterRule("vns-a-web", ChainInput, "-p", "tcp", "--dport", "80", "-j", "ACCEPT"))

	rules := d.NetnsRules("vns-a-web")
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"-i", "lo", "-j", "ACCEPT"}, rules[0].Args)
	assert.Equal(t, "80", rules[1].Args[3])

	require.NoError(t, d.FlushFilters("vns-a-web"))
	assert.Empty(t, d.NetnsRules("vns-a-web"))
	assert.Equal(t, TargetDrop, d.Policies["vns-a-web/INPUT"])
}
