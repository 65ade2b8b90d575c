package api

import "net/netip"

type NodeRole string

const (
	RoleSwitch  NodeRole = "switch"
	RoleHost    NodeRole = "host"
	RoleGateway NodeRole = "gateway"
)

// Node is a switch, host or gateway of the emulated network.
// Addr is the address declared with the topology. Hosts that are addressed
// later by configuration leave it as the zero Prefix.
type Node struct {
	Name  string       `yaml:"name"`
	Role  NodeRole     `yaml:"role"`
	Addr  netip.Prefix `yaml:"addr,omitempty"`
	Image string       `yaml:"image,omitempty"`
	STP   bool         `yaml:"stp,omitempty"` // switches only

	NetNs string `yaml:"-"` // filled in once the node is running
}

// HasAddr reports whether the node was declared with an address.
func (n Node) HasAddr() bool {
	return n.Addr.IsValid()
}

func (n Node) IsSwitch() bool {
	return n.Role == RoleSwitch
}
