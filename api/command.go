package api

import (
	"fmt"
	"net/netip"
	"strings"
)

// Command is one configuration step executed on a node. The concrete
// types below are the only implementations.
type Command interface {
	Target() string
	String() string
	command()
}

// AddrAdd assigns Addr to Intf and brings the interface up.
type AddrAdd struct {
	Node string
	Intf string
	Addr netip.Prefix
}

// RouteAdd installs a route via the gateway Via. An invalid Dst is the
// default route.
type RouteAdd struct {
	Node string
	Dst  netip.Prefix
	Via  netip.Addr
}

// EnableForwarding turns on IPv4 forwarding for the node.
type EnableForwarding struct {
	Node string
}

// FlushFilter removes every rule and every user-defined chain of Tables.
type FlushFilter struct {
	Node   string
	Tables []string
}

type AppendRule struct {
	Node string
	Rule Rule
}

type SetPolicy struct {
	Node   string
	Table  string
	Chain  string
	Policy string
}

func (c AddrAdd) Target() string          { return c.Node }
func (c RouteAdd) Target() string         { return c.Node }
func (c EnableForwarding) Target() string { return c.Node }
func (c FlushFilter) Target() string      { return c.Node }
func (c AppendRule) Target() string       { return c.Node }
func (c SetPolicy) Target() string        { return c.Node }

func (AddrAdd) command()          {}
func (RouteAdd) command()         {}
func (EnableForwarding) command() {}
func (FlushFilter) command()      {}
func (AppendRule) command()       {}
func (SetPolicy) command()        {}

func (c AddrAdd) String() string {
	return fmt.Sprintf("%s: ip addr add %s dev %s && ip link set %s up", c.Node, c.Addr, c.Intf, c.Intf)
}

func (c RouteAdd) String() string {
	dst := "default"
	if c.Dst.IsValid() {
		dst = c.Dst.String()
	}
	return fmt.Sprintf("%s: ip route add %s via %s", c.Node, dst, c.Via)
}

func (c EnableForwarding) String() string {
	return fmt.Sprintf("%s: sysctl -w net.ipv4.ip_forward=1", c.Node)
}

func (c FlushFilter) String() string {
	parts := make([]string, 0, 2*len(c.Tables))
	for _, t := range c.Tables {
		parts = append(parts, fmt.Sprintf("iptables -t %s -F", t), fmt.Sprintf("iptables -t %s -X", t))
	}
	return fmt.Sprintf("%s: %s", c.Node, strings.Join(parts, " && "))
}

func (c AppendRule) String() string {
	return fmt.Sprintf("%s: iptables -t %s -A %s %s", c.Node, c.Rule.Table, c.Rule.Chain, strings.Join(c.Rule.Spec(), " "))
}

func (c SetPolicy) String() string {
	return fmt.Sprintf("%s: iptables -t %s -P %s %s", c.Node, c.Table, c.Chain, c.Policy)
}
