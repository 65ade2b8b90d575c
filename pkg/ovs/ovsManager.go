package ovs

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"Netlab/pkg/convergence"

	"github.com/digitalocean/go-openvswitch/ovs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// STP port states as reported in the Port status column.
const (
	StpDisabled   = "disabled"
	StpListening  = "listening"
	StpLearning   = "learning"
	StpForwarding = "forwarding"
	StpBlocking   = "blocking"
)

// OvsManager maps every emulated switch to its own standalone OVS bridge,
// named after the switch. Without a controller the bridges behave as
// plain learning switches.
type OvsManager struct {
	oClient *ovs.Client
	bridges map[string]bool // bridge name -> stp enabled
}

func NewOvsManager() *OvsManager {
	return &OvsManager{
		oClient: ovs.New(),
		bridges: map[string]bool{},
	}
}

func (om *OvsManager) CreateBridge(name string, stp bool) error {
	if err := om.oClient.VSwitch.AddBridge(name); err != nil {
		return errors.Wrapf(err, "failed to add bridge %s", name)
	}
	om.bridges[name] = stp
	if err := om.oClient.VSwitch.SetFailMode(name, ovs.FailModeStandalone); err != nil {
		return errors.Wrapf(err, "failed to set fail mode of %s", name)
	}
	if err := om.SetSTP(name, stp); err != nil {
		return err
	}
	log.Debugf("bridge %s created (stp=%v)", name, stp)
	return nil
}

func (om *OvsManager) SetSTP(name string, enabled bool) error {
	_, err := vsctl("set", "Bridge", name, fmt.Sprintf("stp_enable=%t", enabled))
	return err
}

func (om *OvsManager) DeleteBridge(name string) error {
	if err := om.oClient.VSwitch.DeleteBridge(name); err != nil {
		return errors.Wrapf(err, "failed to delete bridge %s", name)
	}
	delete(om.bridges, name)
	return nil
}

// DeleteAll removes every bridge this manager created. It keeps going on
// errors and returns the first one.
func (om *OvsManager) DeleteAll() error {
	var first error
	for name := range om.bridges {
		if err := om.DeleteBridge(name); err != nil {
			log.Warn(err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// AddPort brings the root-namespace interface up and plugs it into bridge.
func (om *OvsManager) AddPort(bridge, intf string) error {
	link, err := netlink.LinkByName(intf)
	if err != nil {
		return errors.Wrapf(err, "failed to find interface %s", intf)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return errors.Wrapf(err, "failed to bring up %s", intf)
	}
	if err := om.oClient.VSwitch.AddPort(bridge, intf); err != nil {
		return errors.Wrapf(err, "failed to add %s to bridge %s", intf, bridge)
	}
	return nil
}

func (om *OvsManager) Ports(bridge string) ([]string, error) {
	ports, err := om.oClient.VSwitch.ListPorts(bridge)
	return ports, errors.Wrapf(err, "failed to list ports of %s", bridge)
}

// PortSTPState returns the STP state of a port as ovs-vsctl reports it.
// It is empty while the bridge has not filled in the port status yet, and
// also when the bridge does not run STP at all.
func PortSTPState(ctx context.Context, port string) (string, error) {
	out, err := vsctlContext(ctx, "--if-exists", "get", "Port", port, "status:stp_state")
	if err != nil {
		return "", err
	}
	return strings.Trim(out, `"`), nil
}

// STPSignal is ready when every port of an STP enabled bridge reports a
// final state.
func (om *OvsManager) STPSignal() convergence.Signal {
	return convergence.SignalFunc(func(ctx context.Context) (bool, error) {
		return stpReady(ctx, om.bridges, om.Ports, PortSTPState)
	})
}

// stpReady checks the ports of the bridges with STP on. A port without a
// state yet counts as not settled.
func stpReady(ctx context.Context, bridges map[string]bool,
	ports func(bridge string) ([]string, error),
	state func(ctx context.Context, port string) (string, error)) (bool, error) {
	for bridge, stp := range bridges {
		if !stp {
			continue
		}
		names, err := ports(bridge)
		if err != nil {
			return false, err
		}
		for _, p := range names {
			st, err := state(ctx, p)
			if err != nil {
				return false, err
			}
			if !Settled(st) {
				log.Debugf("port %s of %s is %q", p, bridge, st)
				return false, nil
			}
		}
	}
	return true, nil
}

// Settled reports whether an STP port state is final.
func Settled(state string) bool {
	switch state {
	case StpForwarding, StpBlocking, StpDisabled:
		return true
	}
	return false
}

func vsctl(args ...string) (string, error) {
	return vsctlContext(context.Background(), args...)
}

func vsctlContext(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "ovs-vsctl", args...)
	output, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "ovs-vsctl %s", strings.Join(args, " "))
	}
	return strings.TrimSpace(string(output)), nil
}
