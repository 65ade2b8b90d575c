package pkg

import (
	"context"
	"io"
	"net/netip"

	"Netlab/api"
	"Netlab/pkg/convergence"
	"Netlab/pkg/firewall"
	"Netlab/pkg/link"
	"Netlab/pkg/netcfg"
	"Netlab/pkg/node"
	"Netlab/pkg/ovs"
	"Netlab/pkg/topology"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Manager handles the lifecycle of an emulated network: switches become
// OVS bridges, hosts become containers and links become shaped veth
// pairs. It also applies runtime configuration to the running nodes and
// tears everything down again.
type Manager struct {
	Topo  *api.Topology
	Nodes map[string]api.Node // map node name to node, with NetNs set once running
	om    *ovs.OvsManager
	lm    *link.LinkManager
	cm    *node.ContainerManager

	containers []string
	rootVeths  []string // veth ends left in the root namespace
}

// NewManager creates a Manager whose hosts run image.
func NewManager(image string) (*Manager, error) {
	om := ovs.NewOvsManager()
	cm, err := node.NewContainerManager(image)
	if err != nil {
		return nil, err
	}
	return &Manager{
		Nodes: make(map[string]api.Node),
		om:    om,
		lm:    link.NewLinkManager(om),
		cm:    cm,
	}, nil
}

// Start brings up t. On error the caller is expected to call Destroy,
// which removes whatever was created so far.
func (m *Manager) Start(ctx context.Context, t *api.Topology) error {
	if err := topology.Validate(t); err != nil {
		return err
	}
	m.Topo = t

	for _, n := range t.Switches() {
		if err := m.om.CreateBridge(n.Name, n.STP); err != nil {
			return err
		}
		m.Nodes[n.Name] = n
		log.Infof("switch %s up", n.Name)
	}

	for _, n := range t.Hosts() {
		m.containers = append(m.containers, n.Name)
		if err := m.cm.AddNode(ctx, &n); err != nil {
			return err
		}
		m.Nodes[n.Name] = n
		log.Infof("%s %s up", n.Role, n.Name)
	}

	addrs := DeclaredAddrs(t)
	for i := range t.Links {
		l := &t.Links[i]
		a, z := m.Nodes[l.Node1], m.Nodes[l.Node2]
		if a.IsSwitch() && z.IsSwitch() {
			m.rootVeths = append(m.rootVeths, l.Intf1)
		}
		err := m.lm.ApplyLink(l,
			link.End{Node: a, Intf: l.Intf1, Addr: addrs[l.Intf1]},
			link.End{Node: z, Intf: l.Intf2, Addr: addrs[l.Intf2]},
		)
		if err != nil {
			return err
		}
	}
	log.Infof("%d links up", len(t.Links))
	return nil
}

// DeclaredAddrs maps interface names to the address declared on their
// node. A host's address goes on the first link declared for it.
func DeclaredAddrs(t *api.Topology) map[string]netip.Prefix {
	out := map[string]netip.Prefix{}
	for _, n := range t.Hosts() {
		if !n.HasAddr() {
			continue
		}
		if links := t.LinksOf(n.Name); len(links) > 0 {
			out[links[0].Intf(n.Name)] = n.Addr
		}
	}
	return out
}

// Host returns the configuration surface of a running host or gateway.
func (m *Manager) Host(name string) (netcfg.Host, error) {
	n, ok := m.Nodes[name]
	if !ok || n.IsSwitch() || n.NetNs == "" {
		return nil, errors.Wrap(netcfg.ErrUnknownNode, name)
	}
	return &netcfg.NsHost{Name: n.Name, NetNs: n.NetNs}, nil
}

// Configure applies cmds to the running nodes, stopping at the first
// failure.
func (m *Manager) Configure(ctx context.Context, cmds []api.Command) error {
	return netcfg.Apply(ctx, cmds, m.Host)
}

func (m *Manager) Filter(name string) (firewall.Filter, error) {
	h, err := m.Host(name)
	if err != nil {
		return nil, err
	}
	return h.Filter()
}

// Exec runs a command inside a host.
func (m *Manager) Exec(ctx context.Context, name string, argv []string, stdout, stderr io.Writer) error {
	if _, err := m.Host(name); err != nil {
		return err
	}
	return m.cm.Exec(ctx, name, argv, stdout, stderr)
}

// Wait blocks on gate. A gate without a Signal waits for the STP port
// states of the running switches.
func (m *Manager) Wait(ctx context.Context, gate *convergence.Gate) error {
	g := *gate
	if g.Signal == nil {
		g.Signal = m.STPSignal()
	}
	return g.Wait(ctx)
}

// STPSignal reports convergence from the STP port states of the switches.
func (m *Manager) STPSignal() convergence.Signal {
	return m.om.STPSignal()
}

// Destroy removes containers, root namespace veths and bridges. Errors
// are logged and do not stop the teardown.
func (m *Manager) Destroy() {
	ctx := context.Background()
	for _, name := range m.containers {
		if err := m.cm.DeleteNode(ctx, name); err != nil {
			log.Warn(err)
		}
	}
	for _, intf := range m.rootVeths {
		if err := m.lm.DeleteLink(intf); err != nil {
			log.Warnf("failed to delete %s: %v", intf, err)
		}
	}
	if err := m.om.DeleteAll(); err != nil {
		log.Warn(err)
	}
	if err := m.cm.Close(); err != nil {
		log.Debug(err)
	}
	m.containers, m.rootVeths = nil, nil
}

func (m *Manager) Topology() *api.Topology {
	return m.Topo
}
