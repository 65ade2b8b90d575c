package api

import (
	"fmt"
	"time"
)

type Link struct {
	Node1      string         `yaml:"node1"`
	Node2      string         `yaml:"node2"`
	Intf1      string         `yaml:"intf1,omitempty"` // interface name override on Node1
	Intf2      string         `yaml:"intf2,omitempty"` // interface name override on Node2
	Properties LinkProperties `yaml:"properties"`
}

type LinkProperties struct {
	Latency time.Duration `yaml:"latency"`
	Loss    float32       `yaml:"loss"` // in percentage
	Rate    uint64        `yaml:"rate"` // in mbps
}

// Shaped reports whether the link needs any qdisc at all.
func (p LinkProperties) Shaped() bool {
	return p.Latency > 0 || p.Loss > 0 || p.Rate > 0
}

// Has reports whether the link has name as one of its endpoints.
func (l Link) Has(name string) bool {
	return l.Node1 == name || l.Node2 == name
}

// Other returns the endpoint opposite to name.
func (l Link) Other(name string) string {
	if l.Node1 == name {
		return l.Node2
	}
	return l.Node1
}

// Intf returns the interface name the link uses on node name.
func (l Link) Intf(name string) string {
	if l.Node1 == name {
		return l.Intf1
	}
	return l.Intf2
}

func (l Link) String() string {
	return fmt.Sprintf("%s(%s) <-> %s(%s)", l.Node1, l.Intf1, l.Node2, l.Intf2)
}
