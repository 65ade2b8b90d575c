// Package scenario holds the fixed topologies shipped with netlab.
package scenario

import (
	"fmt"
	"net/netip"
	"sort"
	"time"

	"Netlab/api"
	"Netlab/pkg/topology"
)

const (
	HostDelay     = 5 * time.Millisecond
	BackboneDelay = 7 * time.Millisecond
	PrivateDelay  = 1 * time.Millisecond

	ServicePort uint16 = 5201 // iperf3
)

// Scenario is a topology plus, optionally, the address plan configured on
// top of it once the network runs.
type Scenario struct {
	Topology *api.Topology
	Plan     *api.AddressPlan
}

var registry = map[string]func() (Scenario, error){
	"flat": func() (Scenario, error) {
		t, err := Flat()
		return Scenario{Topology: t}, err
	},
	"nat": func() (Scenario, error) {
		t, p, err := Segmented()
		return Scenario{Topology: t, Plan: p}, err
	},
}

func ByName(name string) (Scenario, error) {
	f, ok := registry[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q (have %v)", name, Names())
	}
	return f()
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ring adds s1..s4 as a ring plus the s1-s3 diagonal.
func ring(b *topology.Builder) {
	props := api.LinkProperties{Latency: BackboneDelay}
	b.AddLink("s1", "s2", props)
	b.AddLink("s2", "s3", props)
	b.AddLink("s3", "s4", props)
	b.AddLink("s4", "s1", props)
	b.AddLink("s1", "s3", props)
}

// Flat is four switches in a ring with a diagonal, two hosts per switch,
// all hosts in 10.0.0.0/24.
func Flat() (*api.Topology, error) {
	b := topology.NewBuilder("flat")
	for i := 1; i <= 4; i++ {
		b.AddSwitch(fmt.Sprintf("s%d", i), false)
	}
	for i := 1; i <= 8; i++ {
		addr := netip.PrefixFrom(netip.AddrFrom4([4]byte{10, 0, 0, byte(i + 1)}), 24)
		b.AddHost(fmt.Sprintf("h%d", i), addr)
	}
	for i := 1; i <= 8; i++ {
		b.AddLink(fmt.Sprintf("h%d", i), fmt.Sprintf("s%d", (i+1)/2), api.LinkProperties{Latency: HostDelay})
	}
	ring(b)
	return b.Build()
}

// Segmented splits the network in a public part (s1-s4, h3-h8) and a
// private part (s5, h1, h2) joined by the NAT gateway h9.
func Segmented() (*api.Topology, *api.AddressPlan, error) {
	b := topology.NewBuilder("nat")
	for i := 1; i <= 4; i++ {
		b.AddSwitch(fmt.Sprintf("s%d", i), true)
	}
	b.AddSwitch("s5", false)

	var public []string
	for i := 3; i <= 8; i++ {
		name := fmt.Sprintf("h%d", i)
		public = append(public, name)
		b.AddHost(name, netip.PrefixFrom(netip.AddrFrom4([4]byte{10, 0, 0, byte(i + 1)}), 24))
	}
	b.AddGateway("h9")
	b.AddHost("h1", netip.Prefix{})
	b.AddHost("h2", netip.Prefix{})

	host := api.LinkProperties{Latency: HostDelay}
	b.AddLink("h3", "s2", host)
	b.AddLink("h4", "s2", host)
	b.AddLink("h5", "s3", host)
	b.AddLink("h6", "s3", host)
	b.AddLink("h7", "s4", host)
	b.AddLink("h8", "s4", host)

	private := api.LinkProperties{Latency: PrivateDelay}
	b.AddLink("h9", "s1", host, topology.WithIntfNames("h9-eth0", ""))
	b.AddLink("h9", "s5", private, topology.WithIntfNames("h9-eth1", ""))
	b.AddLink("h1", "s5", private)
	b.AddLink("h2", "s5", private)

	ring(b)

	t, err := b.Build()
	if err != nil {
		return nil, nil, err
	}

	plan := &api.AddressPlan{
		Gateway:        "h9",
		PublicIntf:     "h9-eth0",
		PrivateIntf:    "h9-eth1",
		PublicSubnet:   netip.MustParsePrefix("10.0.0.0/24"),
		PrivateSubnet:  netip.MustParsePrefix("10.1.1.0/24"),
		GatewayPublic:  netip.MustParsePrefix("10.0.0.1/24"),
		GatewayPrivate: netip.MustParsePrefix("10.1.1.1/24"),
		NATBlock:       netip.MustParsePrefix("172.16.10.0/24"),
		NATAddress:     netip.MustParseAddr("172.16.10.10"),
		ServicePort:    ServicePort,
		PrivateHosts: []api.PrivateHost{
			{
				Name:    "h1",
				Intf:    "h1-eth0",
				Addr:    netip.MustParsePrefix("10.1.1.2/24"),
				Aliases: []netip.Addr{netip.MustParseAddr("172.16.10.11")},
			},
			{
				Name:    "h2",
				Intf:    "h2-eth0",
				Addr:    netip.MustParsePrefix("10.1.1.3/24"),
				Aliases: []netip.Addr{netip.MustParseAddr("172.16.10.12")},
			},
		},
		PublicHosts: public,
	}
	return t, plan, nil
}
