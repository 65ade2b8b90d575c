package nat

import (
	"fmt"

	"Netlab/api"
	"Netlab/pkg/topology"

	"github.com/pkg/errors"
)

// CheckTopology verifies that every node and interface p configures
// exists in t: the gateway with both of its interfaces, each private host
// on its named interface, and each public host.
func CheckTopology(p *api.AddressPlan, t *api.Topology) error {
	if err := onIntf(t, p.Gateway, p.PublicIntf); err != nil {
		return errors.Wrap(err, "gateway public side")
	}
	if err := onIntf(t, p.Gateway, p.PrivateIntf); err != nil {
		return errors.Wrap(err, "gateway private side")
	}
	for _, h := range p.PrivateHosts {
		if err := onIntf(t, h.Name, h.Intf); err != nil {
			return errors.Wrap(err, "private host")
		}
	}
	for _, name := range p.PublicHosts {
		if _, err := host(t, name); err != nil {
			return errors.Wrap(err, "public host")
		}
	}
	return nil
}

func host(t *api.Topology, name string) (api.Node, error) {
	n, ok := t.Node(name)
	if !ok {
		return n, errors.Wrap(topology.ErrUnknownNode, name)
	}
	if n.IsSwitch() {
		return n, fmt.Errorf("%s is a switch", name)
	}
	return n, nil
}

func onIntf(t *api.Topology, name, intf string) error {
	if _, err := host(t, name); err != nil {
		return err
	}
	for _, l := range t.LinksOf(name) {
		if l.Intf(name) == intf {
			return nil
		}
	}
	return fmt.Errorf("%s has no interface %s", name, intf)
}
