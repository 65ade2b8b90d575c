package topology

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
	"time"

	"Netlab/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNamesInterfaces(t *testing.T) {
	b := NewBuilder("small")
	b.AddSwitch("s1", false)
	b.AddHost("h1", netip.MustParsePrefix("10.0.0.2/24"))
	b.AddGateway("h9")
	b.AddLink("h1", "s1", api.LinkProperties{Latency: 5 * time.Millisecond})
	b.AddLink("h9", "s1", api.LinkProperties{}, WithIntfNames("h9-pub", ""))

	topo, err := b.Build()
	require.NoError(t, err)
	require.Len(t, topo.Links, 2)
	assert.Equal(t, "small", topo.Name)
	assert.Equal(t, "h1-eth0", topo.Links[0].Intf1)
	assert.Equal(t, "s1-eth1", topo.Links[0].Intf2)
	assert.Equal(t, "h9-pub", topo.Links[1].Intf1)
	assert.Equal(t, "s1-eth2", topo.Links[1].Intf2)
}

func TestBuildUnknownNode(t *testing.T) {
	b := NewBuilder("broken")
	b.AddSwitch("s1", false)
	b.AddLink("h1", "s1", api.LinkProperties{})

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	assert.Contains(t, err.Error(), `"h1"`)
}

func TestBuildDuplicateNode(t *testing.T) {
	b := NewBuilder("dup")
	b.AddSwitch("s1", false)
	b.AddHost("s1", netip.Prefix{})

	_, err := b.Build()
	assert.True(t, errors.Is(err, ErrDuplicateNode))
}

func TestValidate(t *testing.T) {
	base := func() *api.Topology {
		return &api.Topology{
			Nodes: []api.Node{
				{Name: "s1", Role: api.RoleSwitch},
				{Name: "h1", Role: api.RoleHost},
			},
			Links: []api.Link{{Node1: "h1", Node2: "s1", Intf1: "h1-eth0", Intf2: "s1-eth1"}},
		}
	}
	require.NoError(t, Validate(base()))

	tests := map[string]func(*api.Topology){
		"self loop":       func(t *api.Topology) { t.Links[0].Node2 = "h1" },
		"long intf name":  func(t *api.Topology) { t.Links[0].Intf1 = strings.Repeat("x", IfNameMax+1) },
		"same intf twice": func(t *api.Topology) { t.Links[0].Intf2 = "h1-eth0" },
		"missing intf":    func(t *api.Topology) { t.Links[0].Intf2 = "" },
		"bad role":        func(t *api.Topology) { t.Nodes[1].Role = "router" },
		"switch address":  func(t *api.Topology) { t.Nodes[0].Addr = netip.MustParsePrefix("10.0.0.1/24") },
		"network address": func(t *api.Topology) { t.Nodes[1].Addr = netip.MustParsePrefix("10.0.0.0/24") },
		"loss > 100":      func(t *api.Topology) { t.Links[0].Properties.Loss = 101 },
		"dangling link":   func(t *api.Topology) { t.Links[0].Node1 = "h2" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			topo := base()
			mutate(topo)
			assert.Error(t, Validate(topo))
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
name: pair
nodes:
  - {name: s1, role: switch, stp: true}
  - {name: h1, role: host, addr: 10.0.0.2/24}
  - {name: h2, role: host}
links:
  - {node1: h1, node2: s1, properties: {latency: 5ms}}
  - {node1: h2, node2: s1, intf1: h2-lan, properties: {latency: 1ms, loss: 0.5, rate: 10}}
nat:
  gateway: h2
  natAddress: 172.16.10.10
  servicePort: 5201
  privateHosts:
    - {name: h1, intf: h1-eth0, addr: 10.1.1.2/24, aliases: [172.16.10.11]}
`)
	topo, plan, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "pair", topo.Name)
	s1, _ := topo.Node("s1")
	assert.True(t, s1.STP)
	h1, _ := topo.Node("h1")
	assert.Equal(t, netip.MustParsePrefix("10.0.0.2/24"), h1.Addr)
	h2, _ := topo.Node("h2")
	assert.False(t, h2.HasAddr())

	assert.Equal(t, 5*time.Millisecond, topo.Links[0].Properties.Latency)
	assert.Equal(t, "h2-lan", topo.Links[1].Intf1)
	assert.Equal(t, "s1-eth2", topo.Links[1].Intf2)
	assert.EqualValues(t, 10, topo.Links[1].Properties.Rate)

	require.NotNil(t, plan)
	assert.Equal(t, netip.MustParseAddr("172.16.10.10"), plan.NATAddress)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("172.16.10.11")}, plan.PrivateHosts[0].Aliases)
}

func TestParseRejectsDanglingLink(t *testing.T) {
	_, _, err := Parse([]byte(`
nodes: [{name: s1, role: switch}]
links: [{node1: s1, node2: s9}]
`))
	assert.True(t, errors.Is(err, ErrUnknownNode))
}
