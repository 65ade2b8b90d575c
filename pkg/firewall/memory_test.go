package firewall

import (
	"net/netip"
	"testing"

	"Netlab/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var masquerade = api.Rule{
	Table:  api.TableNAT,
	Chain:  api.ChainPostrouting,
	Match:  api.Match{Source: netip.MustParsePrefix("10.1.1.0/24"), OutIntf: "h9-eth0"},
	Action: api.Action{Target: api.TargetMasquerade},
}

func TestMemoryAppendAndList(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Append(masquerade))

	lines, err := m.List(api.TableNAT, api.ChainPostrouting)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-P POSTROUTING ACCEPT",
		"-A POSTROUTING -o h9-eth0 -s 10.1.1.0/24 -j MASQUERADE",
	}, lines)

	assert.Error(t, m.Append(api.Rule{Table: api.TableNAT, Chain: api.ChainForward}))
}

func TestMemoryFlush(t *testing.T) {
	m := NewMemory()
	m.NewChain(api.TableNAT, "CUSTOM")
	require.NoError(t, m.Append(masquerade))
	require.NoError(t, m.SetPolicy(api.TableFilter, api.ChainForward, api.TargetDrop))

	require.NoError(t, m.Flush(api.TableNAT))
	lines, err := m.List(api.TableNAT, api.ChainPostrouting)
	require.NoError(t, err)
	assert.Equal(t, []string{"-P POSTROUTING ACCEPT"}, lines)
	_, err = m.List(api.TableNAT, "CUSTOM")
	assert.Error(t, err)

	// policies survive a flush, like with iptables -F
	require.NoError(t, m.Flush(api.TableFilter))
	lines, _ = m.List(api.TableFilter, api.ChainForward)
	assert.Equal(t, []string{"-P FORWARD DROP"}, lines)

	assert.Error(t, m.Flush("mangle"))
}

func TestSetPolicyOnUserChain(t *testing.T) {
	m := NewMemory()
	m.NewChain(api.TableFilter, "CUSTOM")
	assert.Error(t, m.SetPolicy(api.TableFilter, "CUSTOM", api.TargetDrop))
}

func TestDump(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Append(masquerade))
	dump, err := Dump(m, api.TableFilter, api.TableNAT)
	require.NoError(t, err)
	assert.Len(t, dump, 7)
	assert.Len(t, dump["nat/POSTROUTING"], 2)
	assert.Equal(t, []string{"-P INPUT ACCEPT"}, dump["filter/INPUT"])
}

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltin(api.TableNAT, api.ChainPrerouting))
	assert.False(t, IsBuiltin(api.TableFilter, api.ChainPrerouting))
	assert.False(t, IsBuiltin(api.TableFilter, "DOCKER-USER"))
}
