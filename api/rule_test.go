package api

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleSpec(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{
			name: "masquerade",
			rule: Rule{
				Table:  TableNAT,
				Chain:  ChainPostrouting,
				Match:  Match{Source: netip.MustParsePrefix("10.1.1.0/24"), OutIntf: "h9-eth0"},
				Action: Action{Target: TargetMasquerade},
			},
			want: "-o h9-eth0 -s 10.1.1.0/24 -j MASQUERADE",
		},
		{
			name: "icmp dnat",
			rule: Rule{
				Table:  TableNAT,
				Chain:  ChainPrerouting,
				Match:  Match{InIntf: "h9-eth0", Destination: netip.MustParsePrefix("172.16.10.11/32"), Protocol: ProtoICMP},
				Action: Action{Target: TargetDNAT, ToDestination: netip.MustParseAddr("10.1.1.2")},
			},
			want: "-i h9-eth0 -d 172.16.10.11 -p icmp -j DNAT --to-destination 10.1.1.2",
		},
		{
			name: "tcp dnat",
			rule: Rule{
				Table:  TableNAT,
				Chain:  ChainPrerouting,
				Match:  Match{InIntf: "h9-eth0", Destination: netip.MustParsePrefix("172.16.10.12/32"), Protocol: ProtoTCP, DPort: 5201},
				Action: Action{Target: TargetDNAT, ToDestination: netip.MustParseAddr("10.1.1.3"), ToPort: 5201},
			},
			want: "-i h9-eth0 -d 172.16.10.12 -p tcp --dport 5201 -j DNAT --to-destination 10.1.1.3:5201",
		},
		{
			name: "established",
			rule: Rule{
				Table:  TableFilter,
				Chain:  ChainForward,
				Match:  Match{InIntf: "h9-eth0", OutIntf: "h9-eth1", States: []string{"RELATED", "ESTABLISHED"}},
				Action: Action{Target: TargetAccept},
			},
			want: "-i h9-eth0 -o h9-eth1 -m state --state RELATED,ESTABLISHED -j ACCEPT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strings.Join(tt.rule.Spec(), " "))
		})
	}
}

func TestRuleKinds(t *testing.T) {
	masq := Rule{Table: TableNAT, Action: Action{Target: TargetMasquerade}}
	dnat := Rule{Table: TableNAT, Action: Action{Target: TargetDNAT}}
	accept := Rule{Table: TableFilter, Action: Action{Target: TargetAccept}}

	assert.True(t, masq.IsMasquerade())
	assert.False(t, masq.IsDNAT())
	assert.True(t, dnat.IsDNAT())
	assert.False(t, accept.IsMasquerade() || accept.IsDNAT())
}

func TestCommandString(t *testing.T) {
	via := netip.MustParseAddr("10.0.0.1")
	assert.Equal(t, "h3: ip route add default via 10.0.0.1", RouteAdd{Node: "h3", Via: via}.String())
	assert.Equal(t, "h3: ip route add 172.16.10.0/24 via 10.0.0.1",
		RouteAdd{Node: "h3", Dst: netip.MustParsePrefix("172.16.10.0/24"), Via: via}.String())
	assert.Equal(t, "h9: iptables -t filter -F && iptables -t filter -X && iptables -t nat -F && iptables -t nat -X",
		FlushFilter{Node: "h9", Tables: []string{TableFilter, TableNAT}}.String())
	assert.Equal(t, "h9: iptables -t filter -P FORWARD DROP",
		SetPolicy{Node: "h9", Table: TableFilter, Chain: ChainForward, Policy: TargetDrop}.String())

	var c Command = AddrAdd{Node: "h1", Intf: "h1-eth0", Addr: netip.MustParsePrefix("10.1.1.2/24")}
	assert.Equal(t, "h1", c.Target())
	assert.Equal(t, "h1: ip addr add 10.1.1.2/24 dev h1-eth0 && ip link set h1-eth0 up", c.String())
}

func TestTopologyHelpers(t *testing.T) {
	topo := &Topology{
		Nodes: []Node{
			{Name: "s1", Role: RoleSwitch},
			{Name: "s2", Role: RoleSwitch},
			{Name: "h1", Role: RoleHost, Addr: netip.MustParsePrefix("10.0.0.2/24")},
			{Name: "h9", Role: RoleGateway},
		},
		Links: []Link{
			{Node1: "h1", Node2: "s1", Intf1: "h1-eth0", Intf2: "s1-eth1"},
			{Node1: "s1", Node2: "s2", Intf1: "s1-eth2", Intf2: "s2-eth1"},
			{Node1: "h9", Node2: "s2", Intf1: "h9-eth0", Intf2: "s2-eth2"},
		},
	}

	assert.Len(t, topo.Switches(), 2)
	assert.Len(t, topo.Hosts(), 2)
	assert.Len(t, topo.LinksOf("s1"), 2)
	assert.Equal(t, []Link{topo.Links[1]}, topo.Backbone())

	h1, ok := topo.Node("h1")
	assert.True(t, ok)
	assert.True(t, h1.HasAddr())
	h9, _ := topo.Node("h9")
	assert.False(t, h9.HasAddr())
	_, ok = topo.Node("nope")
	assert.False(t, ok)

	l := topo.Links[0]
	assert.Equal(t, "s1", l.Other("h1"))
	assert.Equal(t, "s1-eth1", l.Intf("s1"))
}
