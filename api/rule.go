package api

import (
	"net/netip"
	"strconv"
	"strings"
)

const (
	TableFilter = "filter"
	TableNAT    = "nat"

	ChainInput       = "INPUT"
	ChainForward     = "FORWARD"
	ChainOutput      = "OUTPUT"
	ChainPrerouting  = "PREROUTING"
	ChainPostrouting = "POSTROUTING"

	TargetAccept     = "ACCEPT"
	TargetDrop       = "DROP"
	TargetMasquerade = "MASQUERADE"
	TargetDNAT       = "DNAT"

	ProtoICMP = "icmp"
	ProtoTCP  = "tcp"
	ProtoUDP  = "udp"
)

// Rule is one packet-filter rule. Rules are evaluated first-match within
// a chain, so the order they are appended in is significant.
type Rule struct {
	Table  string
	Chain  string
	Match  Match
	Action Action
}

// Match holds the predicates of a rule. Zero values mean "any".
type Match struct {
	InIntf      string
	OutIntf     string
	Source      netip.Prefix
	Destination netip.Prefix
	Protocol    string
	DPort       uint16
	States      []string // conntrack states, e.g. RELATED, ESTABLISHED
}

type Action struct {
	Target        string
	ToDestination netip.Addr // DNAT only
	ToPort        uint16     // DNAT only, 0 keeps the original port
}

func (r Rule) IsMasquerade() bool {
	return r.Table == TableNAT && r.Action.Target == TargetMasquerade
}

func (r Rule) IsDNAT() bool {
	return r.Table == TableNAT && r.Action.Target == TargetDNAT
}

// Spec renders the rule as iptables rule-spec arguments, without the
// table and chain selectors.
func (r Rule) Spec() []string {
	var spec []string
	m := r.Match
	if m.InIntf != "" {
		spec = append(spec, "-i", m.InIntf)
	}
	if m.OutIntf != "" {
		spec = append(spec, "-o", m.OutIntf)
	}
	if m.Source.IsValid() {
		spec = append(spec, "-s", prefixArg(m.Source))
	}
	if m.Destination.IsValid() {
		spec = append(spec, "-d", prefixArg(m.Destination))
	}
	if m.Protocol != "" {
		spec = append(spec, "-p", m.Protocol)
		if m.DPort != 0 {
			spec = append(spec, "--dport", strconv.Itoa(int(m.DPort)))
		}
	}
	if len(m.States) > 0 {
		spec = append(spec, "-m", "state", "--state", strings.Join(m.States, ","))
	}

	spec = append(spec, "-j", r.Action.Target)
	if r.Action.Target == TargetDNAT && r.Action.ToDestination.IsValid() {
		to := r.Action.ToDestination.String()
		if r.Action.ToPort != 0 {
			to = netip.AddrPortFrom(r.Action.ToDestination, r.Action.ToPort).String()
		}
		spec = append(spec, "--to-destination", to)
	}
	return spec
}

// prefixArg prints single addresses without their /32.
func prefixArg(p netip.Prefix) string {
	if p.IsSingleIP() {
		return p.Addr().String()
	}
	return p.String()
}
