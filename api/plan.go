package api

import "net/netip"

// AddressPlan describes the public/private split behind a NAT gateway.
//
// Public hosts sit in PublicSubnet next to the gateway's GatewayPublic
// address. The gateway additionally owns NATAddress and one alias per
// private host inside NATBlock; those are what the outside world uses to
// reach private hosts.
type AddressPlan struct {
	Gateway     string `yaml:"gateway"`
	PublicIntf  string `yaml:"publicIntf"`
	PrivateIntf string `yaml:"privateIntf"`

	PublicSubnet   netip.Prefix `yaml:"publicSubnet"`
	PrivateSubnet  netip.Prefix `yaml:"privateSubnet"`
	GatewayPublic  netip.Prefix `yaml:"gatewayPublic"`
	GatewayPrivate netip.Prefix `yaml:"gatewayPrivate"`

	NATBlock   netip.Prefix `yaml:"natBlock"`
	NATAddress netip.Addr   `yaml:"natAddress"`

	ServicePort uint16 `yaml:"servicePort"`

	PrivateHosts []PrivateHost `yaml:"privateHosts"`
	PublicHosts  []string      `yaml:"publicHosts"`

	// ForwardPolicy, when set, replaces the default policy of the
	// filter FORWARD chain (e.g. DROP). Empty leaves the policy alone.
	ForwardPolicy string `yaml:"forwardPolicy,omitempty"`
}

type PrivateHost struct {
	Name    string       `yaml:"name"`
	Intf    string       `yaml:"intf"`
	Addr    netip.Prefix `yaml:"addr"`
	Aliases []netip.Addr `yaml:"aliases"`
}
