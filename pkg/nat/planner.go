// Package nat turns an address plan into the ordered configuration that
// makes a gateway masquerade a private subnet and forward selected
// inbound traffic to it.
package nat

import (
	"net/netip"

	"Netlab/api"
)

// Plan returns the configuration steps for p, in the order they have to
// be applied:
//
//  1. private host addresses and default routes
//  2. gateway addresses, NAT address and one alias per private host
//  3. IP forwarding on the gateway
//  4. flush of the gateway's filter and nat tables
//  5. masquerading of the private subnet
//  6. ICMP and service-port DNAT per alias
//  7. forward accepts
//  8. public host routes towards the NAT block
//
// Plan does not validate p; callers run Validate first.
func Plan(p *api.AddressPlan) []api.Command {
	var cmds []api.Command
	gw := p.Gateway
	pubVia := p.GatewayPublic.Addr()
	privVia := p.GatewayPrivate.Addr()

	for _, h := range p.PrivateHosts {
		cmds = append(cmds,
			api.AddrAdd{Node: h.Name, Intf: h.Intf, Addr: h.Addr},
			api.RouteAdd{Node: h.Name, Via: privVia},
		)
	}

	cmds = append(cmds,
		api.AddrAdd{Node: gw, Intf: p.PublicIntf, Addr: p.GatewayPublic},
		api.AddrAdd{Node: gw, Intf: p.PublicIntf, Addr: inBlock(p, p.NATAddress)},
	)
	for _, h := range p.PrivateHosts {
		for _, a := range h.Aliases {
			cmds = append(cmds, api.AddrAdd{Node: gw, Intf: p.PublicIntf, Addr: inBlock(p, a)})
		}
	}
	cmds = append(cmds, api.AddrAdd{Node: gw, Intf: p.PrivateIntf, Addr: p.GatewayPrivate})

	cmds = append(cmds,
		api.EnableForwarding{Node: gw},
		api.FlushFilter{Node: gw, Tables: []string{api.TableFilter, api.TableNAT}},
	)

	for _, r := range Rules(p) {
		cmds = append(cmds, api.AppendRule{Node: gw, Rule: r})
	}
	if p.ForwardPolicy != "" {
		cmds = append(cmds, api.SetPolicy{Node: gw, Table: api.TableFilter, Chain: api.ChainForward, Policy: p.ForwardPolicy})
	}

	for _, h := range p.PublicHosts {
		cmds = append(cmds,
			api.RouteAdd{Node: h, Via: pubVia},
			api.RouteAdd{Node: h, Dst: p.NATBlock, Via: pubVia},
		)
	}
	return cmds
}

// Rules returns the gateway's packet-filter rules in append order.
func Rules(p *api.AddressPlan) []api.Rule {
	rules := []api.Rule{{
		Table: api.TableNAT,
		Chain: api.ChainPostrouting,
		Match: api.Match{
			Source:  p.PrivateSubnet,
			OutIntf: p.PublicIntf,
		},
		Action: api.Action{Target: api.TargetMasquerade},
	}}

	for _, h := range p.PrivateHosts {
		for _, a := range h.Aliases {
			dst := netip.PrefixFrom(a, 32)
			rules = append(rules,
				api.Rule{
					Table:  api.TableNAT,
					Chain:  api.ChainPrerouting,
					Match:  api.Match{InIntf: p.PublicIntf, Destination: dst, Protocol: api.ProtoICMP},
					Action: api.Action{Target: api.TargetDNAT, ToDestination: h.Addr.Addr()},
				},
				api.Rule{
					Table:  api.TableNAT,
					Chain:  api.ChainPrerouting,
					Match:  api.Match{InIntf: p.PublicIntf, Destination: dst, Protocol: api.ProtoTCP, DPort: p.ServicePort},
					Action: api.Action{Target: api.TargetDNAT, ToDestination: h.Addr.Addr(), ToPort: p.ServicePort},
				},
			)
		}
	}

	accept := api.Action{Target: api.TargetAccept}
	rules = append(rules,
		api.Rule{
			Table:  api.TableFilter,
			Chain:  api.ChainForward,
			Match:  api.Match{InIntf: p.PrivateIntf, OutIntf: p.PublicIntf, Source: p.PrivateSubnet},
			Action: accept,
		},
		api.Rule{
			Table:  api.TableFilter,
			Chain:  api.ChainForward,
			Match:  api.Match{InIntf: p.PublicIntf, OutIntf: p.PrivateIntf, States: []string{"RELATED", "ESTABLISHED"}},
			Action: accept,
		},
	)
	for _, h := range p.PrivateHosts {
		if len(h.Aliases) == 0 {
			continue
		}
		dst := netip.PrefixFrom(h.Addr.Addr(), 32)
		rules = append(rules,
			api.Rule{
				Table:  api.TableFilter,
				Chain:  api.ChainForward,
				Match:  api.Match{InIntf: p.PublicIntf, OutIntf: p.PrivateIntf, Destination: dst, Protocol: api.ProtoICMP},
				Action: accept,
			},
			api.Rule{
				Table:  api.TableFilter,
				Chain:  api.ChainForward,
				Match:  api.Match{InIntf: p.PublicIntf, OutIntf: p.PrivateIntf, Destination: dst, Protocol: api.ProtoTCP, DPort: p.ServicePort},
				Action: accept,
			},
		)
	}
	return rules
}

// inBlock gives a as an interface address with the NAT block's mask.
func inBlock(p *api.AddressPlan, a netip.Addr) netip.Prefix {
	return netip.PrefixFrom(a, p.NATBlock.Bits())
}
