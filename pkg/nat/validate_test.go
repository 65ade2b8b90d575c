package nat

import (
	"net/netip"
	"testing"

	"Netlab/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(testPlan()))

	tests := map[string]func(p *api.AddressPlan){
		"private host outside subnet": func(p *api.AddressPlan) {
			p.PrivateHosts[0].Addr = netip.MustParsePrefix("10.2.2.2/24")
		},
		"alias outside NAT block": func(p *api.AddressPlan) {
			p.PrivateHosts[0].Aliases[0] = netip.MustParseAddr("10.0.0.50")
		},
		"alias reused": func(p *api.AddressPlan) {
			p.PrivateHosts[1].Aliases[0] = p.PrivateHosts[0].Aliases[0]
		},
		"alias is NAT address": func(p *api.AddressPlan) {
			p.PrivateHosts[0].Aliases[0] = p.NATAddress
		},
		"private address reused": func(p *api.AddressPlan) {
			p.PrivateHosts[1].Addr = p.PrivateHosts[0].Addr
		},
		"private address is gateway": func(p *api.AddressPlan) {
			p.PrivateHosts[0].Addr = p.GatewayPrivate
		},
		"gateway public outside subnet": func(p *api.AddressPlan) {
			p.GatewayPublic = netip.MustParsePrefix("10.9.0.1/24")
		},
		"NAT address outside block": func(p *api.AddressPlan) {
			p.NATAddress = netip.MustParseAddr("172.16.11.10")
		},
		"same interfaces": func(p *api.AddressPlan) {
			p.PrivateIntf = p.PublicIntf
		},
		"no service port": func(p *api.AddressPlan) {
			p.ServicePort = 0
		},
		"subnet with host bits": func(p *api.AddressPlan) {
			p.PrivateSubnet = netip.MustParsePrefix("10.1.1.1/24")
		},
		"overlapping subnets": func(p *api.AddressPlan) {
			p.PrivateSubnet = netip.MustParsePrefix("10.0.0.0/16")
		},
		"missing interface": func(p *api.AddressPlan) {
			p.PrivateHosts[0].Intf = ""
		},
		"alias is gateway public address": func(p *api.AddressPlan) {
			p.NATBlock = netip.MustParsePrefix("10.0.0.0/24")
			p.NATAddress = netip.MustParseAddr("10.0.0.10")
			p.PrivateHosts[0].Aliases[0] = netip.MustParseAddr("10.0.0.1")
			p.PrivateHosts[1].Aliases[0] = netip.MustParseAddr("10.0.0.12")
		},
		"NAT address is gateway public address": func(p *api.AddressPlan) {
			p.NATBlock = netip.MustParsePrefix("10.0.0.0/24")
			p.NATAddress = netip.MustParseAddr("10.0.0.1")
			p.PrivateHosts[0].Aliases[0] = netip.MustParseAddr("10.0.0.11")
			p.PrivateHosts[1].Aliases[0] = netip.MustParseAddr("10.0.0.12")
		},
		"NAT block is private subnet": func(p *api.AddressPlan) {
			p.NATBlock = netip.MustParsePrefix("10.1.1.0/24")
			p.NATAddress = netip.MustParseAddr("10.1.1.10")
			p.PrivateHosts[0].Aliases[0] = netip.MustParseAddr("10.1.1.3")
			p.PrivateHosts[1].Aliases[0] = netip.MustParseAddr("10.1.1.1")
		},
		"NAT block overlaps private subnet": func(p *api.AddressPlan) {
			p.NATBlock = netip.MustParsePrefix("10.1.0.0/16")
			p.NATAddress = netip.MustParseAddr("10.1.0.10")
			p.PrivateHosts[0].Aliases[0] = netip.MustParseAddr("10.1.0.11")
			p.PrivateHosts[1].Aliases[0] = netip.MustParseAddr("10.1.0.12")
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := testPlan()
			mutate(p)
			assert.Error(t, Validate(p))
		})
	}
}

func TestValidateAliasesInPublicSubnet(t *testing.T) {
	p := testPlan()
	p.NATBlock = netip.MustParsePrefix("10.0.0.0/24")
	p.NATAddress = netip.MustParseAddr("10.0.0.10")
	p.PrivateHosts[0].Aliases[0] = netip.MustParseAddr("10.0.0.11")
	p.PrivateHosts[1].Aliases[0] = netip.MustParseAddr("10.0.0.12")
	assert.NoError(t, Validate(p))
}
