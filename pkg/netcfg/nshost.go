package netcfg

import (
	"net"
	"net/netip"

	"Netlab/api"
	"Netlab/pkg/firewall"

	"github.com/containernetworking/plugins/pkg/ip"
	"github.com/containernetworking/plugins/pkg/ns"
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// NsHost configures a node from the outside by entering its network
// namespace. Every operation opens the namespace, so an NsHost stays
// valid for as long as the namespace path does.
type NsHost struct {
	Name  string
	NetNs string // e.g. /proc/<pid>/ns/net
}

func (h *NsHost) do(fn func() error) error {
	netNs, err := ns.GetNS(h.NetNs)
	if err != nil {
		return errors.Wrapf(err, "failed to get namespace of %s", h.Name)
	}
	defer netNs.Close()
	return netNs.Do(func(_ ns.NetNS) error {
		return fn()
	})
}

// AddrAdd assigns addr and brings intf up. An address that is already
// present is not an error, so configuration can be re-applied.
func (h *NsHost) AddrAdd(intf string, addr netip.Prefix) error {
	return h.do(func() error {
		link, err := netlink.LinkByName(intf)
		if err != nil {
			return errors.Wrapf(err, "failed to get link %s", intf)
		}
		a := &netlink.Addr{IPNet: ipNet(addr)}
		if err := netlink.AddrAdd(link, a); err != nil && !errors.Is(err, unix.EEXIST) {
			return errors.Wrapf(err, "failed to add %s to %s", addr, intf)
		}
		return errors.Wrapf(netlink.LinkSetUp(link), "failed to set %s up", intf)
	})
}

func (h *NsHost) RouteAdd(dst netip.Prefix, via netip.Addr) error {
	return h.do(func() error {
		route := &netlink.Route{Gw: net.IP(via.AsSlice())}
		if dst.IsValid() {
			route.Dst = ipNet(dst.Masked())
		}
		if err := netlink.RouteAdd(route); err != nil && !errors.Is(err, unix.EEXIST) {
			return errors.Wrapf(err, "failed to add route via %s", via)
		}
		return nil
	})
}

func (h *NsHost) EnableForwarding() error {
	return h.do(func() error {
		return errors.Wrap(ip.EnableIP4Forward(), "failed to enable ip forwarding")
	})
}

// Filter returns a filter bound to the node's namespace.
func (h *NsHost) Filter() (firewall.Filter, error) {
	return &nsFilter{host: h}, nil
}

// nsFilter runs each iptables call inside the node's namespace.
type nsFilter struct {
	host *NsHost
}

func (f *nsFilter) with(fn func(*firewall.IPTables) error) error {
	return f.host.do(func() error {
		ipt, err := firewall.NewIPTables()
		if err != nil {
			return err
		}
		return fn(ipt)
	})
}

func (f *nsFilter) Flush(tables ...string) error {
	return f.with(func(ipt *firewall.IPTables) error { return ipt.Flush(tables...) })
}

func (f *nsFilter) Append(r api.Rule) error {
	return f.with(func(ipt *firewall.IPTables) error { return ipt.Append(r) })
}

func (f *nsFilter) SetPolicy(table, chain, policy string) error {
	return f.with(func(ipt *firewall.IPTables) error { return ipt.SetPolicy(table, chain, policy) })
}

func (f *nsFilter) List(table, chain string) (lines []string, err error) {
	err = f.with(func(ipt *firewall.IPTables) error {
		lines, err = ipt.List(table, chain)
		return err
	})
	return lines, err
}

func ipNet(p netip.Prefix) *net.IPNet {
	return &net.IPNet{
		IP:   net.IP(p.Addr().AsSlice()),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}
