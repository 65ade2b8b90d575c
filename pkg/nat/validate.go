package nat

import (
	"fmt"
	"net/netip"

	"Netlab/api"
	"Netlab/pkg/util"
)

// Validate checks that the plan is internally consistent: every private
// address lies in the private subnet, every alias lies in the NAT block
// and is used once, and no alias collides with an address of the gateway
// or of a private host. The NAT block must stay clear of the private
// subnet.
func Validate(p *api.AddressPlan) error {
	if p.Gateway == "" || p.PublicIntf == "" || p.PrivateIntf == "" {
		return fmt.Errorf("gateway and both of its interfaces must be named")
	}
	if p.PublicIntf == p.PrivateIntf {
		return fmt.Errorf("gateway interfaces must differ, both are %s", p.PublicIntf)
	}
	if p.ServicePort == 0 {
		return fmt.Errorf("service port must be set")
	}
	for _, s := range []struct {
		name   string
		prefix netip.Prefix
	}{{"public subnet", p.PublicSubnet}, {"private subnet", p.PrivateSubnet}, {"NAT block", p.NATBlock}} {
		if !s.prefix.IsValid() {
			return fmt.Errorf("%s is not set", s.name)
		}
		if s.prefix != s.prefix.Masked() {
			return fmt.Errorf("%s %s has host bits set", s.name, s.prefix)
		}
	}
	if p.PublicSubnet.Overlaps(p.PrivateSubnet) {
		return fmt.Errorf("public subnet %s overlaps private subnet %s", p.PublicSubnet, p.PrivateSubnet)
	}
	if p.NATBlock.Overlaps(p.PrivateSubnet) {
		return fmt.Errorf("NAT block %s overlaps private subnet %s", p.NATBlock, p.PrivateSubnet)
	}
	if err := inside("gateway public address", p.GatewayPublic, p.PublicSubnet); err != nil {
		return err
	}
	if err := inside("gateway private address", p.GatewayPrivate, p.PrivateSubnet); err != nil {
		return err
	}
	if !p.NATBlock.Contains(p.NATAddress) {
		return fmt.Errorf("NAT address %s outside %s", p.NATAddress, p.NATBlock)
	}

	// every address owned by a node; aliases may not take any of them
	used := map[netip.Addr]string{
		p.NATAddress:            p.Gateway,
		p.GatewayPublic.Addr():  p.Gateway,
		p.GatewayPrivate.Addr(): p.Gateway,
	}
	if p.NATAddress == p.GatewayPublic.Addr() {
		return fmt.Errorf("NAT address %s is also the public address of %s", p.NATAddress, p.Gateway)
	}
	for _, h := range p.PrivateHosts {
		if err := inside("host "+h.Name, h.Addr, p.PrivateSubnet); err != nil {
			return err
		}
		if owner, ok := used[h.Addr.Addr()]; ok {
			return fmt.Errorf("host %s: address %s already used by %s", h.Name, h.Addr.Addr(), owner)
		}
		used[h.Addr.Addr()] = h.Name
		if h.Intf == "" {
			return fmt.Errorf("host %s: interface not named", h.Name)
		}
	}
	for _, h := range p.PrivateHosts {
		for _, a := range h.Aliases {
			if !p.NATBlock.Contains(a) {
				return fmt.Errorf("host %s: alias %s outside NAT block %s", h.Name, a, p.NATBlock)
			}
			if owner, ok := used[a]; ok {
				return fmt.Errorf("host %s: alias %s already used by %s", h.Name, a, owner)
			}
			used[a] = h.Name
		}
	}
	return nil
}

func inside(what string, addr, subnet netip.Prefix) error {
	if err := util.CheckHostPrefix(addr); err != nil {
		return fmt.Errorf("%s: %v", what, err)
	}
	if !subnet.Contains(addr.Addr()) || addr.Bits() != subnet.Bits() {
		return fmt.Errorf("%s %s not in %s", what, addr, subnet)
	}
	return nil
}
