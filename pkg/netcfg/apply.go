// Package netcfg applies configuration commands to running nodes.
package netcfg

import (
	"context"
	"fmt"
	"net/netip"

	"Netlab/api"
	"Netlab/pkg/firewall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownNode = errors.New("unknown node")

// Host is the configuration surface of one node.
type Host interface {
	AddrAdd(intf string, addr netip.Prefix) error
	// RouteAdd installs a route; an invalid dst means the default route.
	RouteAdd(dst netip.Prefix, via netip.Addr) error
	EnableForwarding() error
	Filter() (firewall.Filter, error)
}

// Resolver finds the Host for a node name.
type Resolver func(name string) (Host, error)

// Apply runs cmds in order and stops at the first failure. Nothing that
// was applied before the failure is rolled back.
func Apply(ctx context.Context, cmds []api.Command, resolve Resolver) error {
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		h, err := resolve(cmd.Target())
		if err != nil {
			return errors.Wrapf(err, "step %d (%s)", i+1, cmd)
		}
		log.Debugf("step %d: %s", i+1, cmd)
		if err := run(h, cmd); err != nil {
			return errors.Wrapf(err, "step %d (%s)", i+1, cmd)
		}
	}
	return nil
}

func run(h Host, cmd api.Command) error {
	switch c := cmd.(type) {
	case api.AddrAdd:
		return h.AddrAdd(c.Intf, c.Addr)
	case api.RouteAdd:
		return h.RouteAdd(c.Dst, c.Via)
	case api.EnableForwarding:
		return h.EnableForwarding()
	case api.FlushFilter:
		f, err := h.Filter()
		if err != nil {
			return err
		}
		return f.Flush(c.Tables...)
	case api.AppendRule:
		f, err := h.Filter()
		if err != nil {
			return err
		}
		return f.Append(c.Rule)
	case api.SetPolicy:
		f, err := h.Filter()
		if err != nil {
			return err
		}
		return f.SetPolicy(c.Table, c.Chain, c.Policy)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

// MapResolver resolves from a fixed set of hosts.
func MapResolver(hosts map[string]Host) Resolver {
	return func(name string) (Host, error) {
		h, ok := hosts[name]
		if !ok {
			return nil, errors.Wrap(ErrUnknownNode, name)
		}
		return h, nil
	}
}
