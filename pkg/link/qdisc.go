package link

import (
	"Netlab/api"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

const (
	netemLimit = 300000
	htbBuffer  = 10000
)

var (
	htbRoot   = netlink.MakeHandle(1, 0)
	htbClass  = netlink.MakeHandle(1, 1)
	netemRoot = netlink.MakeHandle(10, 0)
)

// Shape installs the qdiscs for props on intf, in the calling namespace.
//
// Without a rate the netem qdisc is the root qdisc:
//
//	tc qdisc replace dev eth0 root handle 10: netem delay 5ms
//
// With a rate an HTB tree limits bandwidth first and netem hangs below
// its only class:
//
//	tc qdisc replace dev eth0 root handle 1: htb default 1
//	tc class replace dev eth0 parent 1: classid 1:1 htb rate 10mbit burst 10000
//	tc qdisc replace dev eth0 parent 1:1 handle 10: netem delay 5ms
//
// Replace is used throughout so shaping a link twice updates it.
func Shape(intf string, props api.LinkProperties) error {
	if !props.Shaped() {
		return nil
	}
	link, err := netlink.LinkByName(intf)
	if err != nil {
		return errors.Wrapf(err, "failed to get link %s", intf)
	}
	index := link.Attrs().Index

	netemParent := uint32(netlink.HANDLE_ROOT)
	if props.Rate > 0 {
		qdisc := netlink.NewHtb(netlink.QdiscAttrs{
			LinkIndex: index,
			Handle:    htbRoot,
			Parent:    netlink.HANDLE_ROOT,
		})
		qdisc.Defcls = 1
		if err := netlink.QdiscReplace(qdisc); err != nil {
			return errors.Wrapf(err, "failed to add HTB root qdisc to %s", intf)
		}

		class := netlink.NewHtbClass(
			netlink.ClassAttrs{
				LinkIndex: index,
				Handle:    htbClass,
				Parent:    htbRoot,
			},
			netlink.HtbClassAttrs{
				Rate:   props.Rate * 1000 * 1000,
				Buffer: htbBuffer,
				Prio:   1,
			},
		)
		if err := netlink.ClassReplace(class); err != nil {
			return errors.Wrapf(err, "failed to add HTB class to %s", intf)
		}
		netemParent = htbClass
	}

	if props.Latency > 0 || props.Loss > 0 {
		netem := netlink.NewNetem(netlink.QdiscAttrs{
			LinkIndex: index,
			Parent:    netemParent,
			Handle:    netemRoot,
		}, NetemAttrs(props))
		if err := netlink.QdiscReplace(netem); err != nil {
			return errors.Wrapf(err, "failed to add netem qdisc to %s", intf)
		}
	}
	return nil
}

// NetemAttrs converts link properties to netem parameters. Latency is
// given to netem in microseconds.
func NetemAttrs(props api.LinkProperties) netlink.NetemQdiscAttrs {
	return netlink.NetemQdiscAttrs{
		Latency: uint32(props.Latency.Microseconds()),
		Loss:    props.Loss,
		Limit:   netemLimit,
	}
}
