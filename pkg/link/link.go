package link

import (
	"net/netip"

	"Netlab/api"
	"Netlab/pkg/netcfg"
	"Netlab/pkg/ovs"

	ns "github.com/containernetworking/plugins/pkg/ns"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

const DefaultMTU = 1500

type LinkManager struct {
	om *ovs.OvsManager
}

func NewLinkManager(o *ovs.OvsManager) *LinkManager {
	return &LinkManager{
		om: o,
	}
}

// End is one side of a link: the node, the interface name used on it and
// the address to assign, if any.
type End struct {
	Node api.Node
	Intf string
	Addr netip.Prefix
}

// ApplyLink creates the veth pair of l, hands each end to its node and
// shapes both directions with l's properties.
func (lm *LinkManager) ApplyLink(l *api.Link, a, z End) error {
	attrs := netlink.NewLinkAttrs()
	attrs.Name = a.Intf
	attrs.MTU = DefaultMTU
	veth := &netlink.Veth{
		LinkAttrs: attrs,
		PeerName:  z.Intf,
	}
	if err := netlink.LinkAdd(veth); err != nil {
		return errors.Wrapf(err, "failed to create veth pair %s", l)
	}

	for _, end := range []End{a, z} {
		if err := lm.attach(end, l.Properties); err != nil {
			return errors.Wrapf(err, "link %s", l)
		}
	}
	log.Debugf("link %s up (%+v)", l, l.Properties)
	return nil
}

func (lm *LinkManager) attach(end End, props api.LinkProperties) error {
	if end.Node.IsSwitch() {
		if err := lm.om.AddPort(end.Node.Name, end.Intf); err != nil {
			return err
		}
		return Shape(end.Intf, props)
	}

	link, err := netlink.LinkByName(end.Intf)
	if err != nil {
		return errors.Wrapf(err, "failed to get link %s", end.Intf)
	}
	nodeNs, err := ns.GetNS(end.Node.NetNs)
	if err != nil {
		return errors.Wrapf(err, "failed to get namespace of %s", end.Node.Name)
	}
	defer nodeNs.Close()
	if err = netlink.LinkSetNsFd(link, int(nodeNs.Fd())); err != nil {
		return errors.Wrapf(err, "failed to move %s into %s", end.Intf, end.Node.Name)
	}

	err = nodeNs.Do(func(_ ns.NetNS) error {
		l, err := netlink.LinkByName(end.Intf)
		if err != nil {
			return err
		}
		if err := netlink.LinkSetUp(l); err != nil {
			return err
		}
		return Shape(end.Intf, props)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to configure %s in %s", end.Intf, end.Node.Name)
	}

	if end.Addr.IsValid() {
		h := &netcfg.NsHost{Name: end.Node.Name, NetNs: end.Node.NetNs}
		return h.AddrAdd(end.Intf, end.Addr)
	}
	return nil
}

// DeleteLink removes a veth pair that is still in the root namespace,
// which is the case for links between two switches.
func (lm *LinkManager) DeleteLink(intf string) error {
	link, err := netlink.LinkByName(intf)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return netlink.LinkDel(link)
}
