package topology

import (
	"fmt"
	"net/netip"

	"Netlab/api"
	"Netlab/pkg/util"

	"github.com/pkg/errors"
)

// IfNameMax is the longest interface name the kernel accepts (IFNAMSIZ-1).
const IfNameMax = 15

var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrDuplicateNode = errors.New("duplicate node")
)

// Builder collects nodes and links and turns them into an api.Topology.
// Errors are remembered and reported by Build, so scenario code can chain
// declarations without checking each one.
type Builder struct {
	name  string
	nodes []api.Node
	seen  map[string]bool
	links []api.Link
	errs  []error
}

type LinkOption func(*api.Link)

// WithIntfNames overrides the interface names used on the two endpoints.
// An empty name keeps the generated one.
func WithIntfNames(intf1, intf2 string) LinkOption {
	return func(l *api.Link) {
		l.Intf1 = intf1
		l.Intf2 = intf2
	}
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name: name,
		seen: map[string]bool{},
	}
}

func (b *Builder) AddSwitch(name string, stp bool) {
	b.add(api.Node{Name: name, Role: api.RoleSwitch, STP: stp})
}

// AddHost declares a host. A zero addr leaves the host unaddressed until
// it is configured at runtime.
func (b *Builder) AddHost(name string, addr netip.Prefix) {
	b.add(api.Node{Name: name, Role: api.RoleHost, Addr: addr})
}

// AddGateway declares a routing host. Gateways are always addressed at
// runtime since they sit on more than one network.
func (b *Builder) AddGateway(name string) {
	b.add(api.Node{Name: name, Role: api.RoleGateway})
}

// AddNode declares an already populated node, used when loading files.
func (b *Builder) AddNode(n api.Node) {
	b.add(n)
}

func (b *Builder) add(n api.Node) {
	if b.seen[n.Name] {
		b.errs = append(b.errs, errors.Wrap(ErrDuplicateNode, n.Name))
		return
	}
	b.seen[n.Name] = true
	b.nodes = append(b.nodes, n)
}

func (b *Builder) AddLink(a, z string, props api.LinkProperties, opts ...LinkOption) {
	l := api.Link{Node1: a, Node2: z, Properties: props}
	for _, o := range opts {
		o(&l)
	}
	b.links = append(b.links, l)
}

// Build names every interface that was not named explicitly and validates
// the result. The first error found is returned.
func (b *Builder) Build() (*api.Topology, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	t := &api.Topology{
		Name:  b.name,
		Nodes: append([]api.Node(nil), b.nodes...),
		Links: append([]api.Link(nil), b.links...),
	}
	if err := checkEndpoints(t); err != nil {
		return nil, err
	}
	assignIntfNames(t)
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// assignIntfNames numbers ports per node in link declaration order,
// starting at 0 on hosts and 1 on switches. Overridden names still use up
// a port number.
func assignIntfNames(t *api.Topology) {
	next := map[string]int{}
	for _, n := range t.Nodes {
		if n.IsSwitch() {
			next[n.Name] = 1
		}
	}
	name := func(node string) string {
		s := fmt.Sprintf("%s-eth%d", node, next[node])
		next[node]++
		return s
	}
	for i := range t.Links {
		l := &t.Links[i]
		if n := name(l.Node1); l.Intf1 == "" {
			l.Intf1 = n
		}
		if n := name(l.Node2); l.Intf2 == "" {
			l.Intf2 = n
		}
	}
}

func checkEndpoints(t *api.Topology) error {
	for _, l := range t.Links {
		for _, end := range []string{l.Node1, l.Node2} {
			if _, ok := t.Node(end); !ok {
				return errors.Wrapf(ErrUnknownNode, "link %s-%s references %q", l.Node1, l.Node2, end)
			}
		}
	}
	return nil
}

// Validate checks a topology that is about to be started: endpoints exist,
// no self loops, declared host addresses are usable and interface names
// are unique and short enough for the kernel.
func Validate(t *api.Topology) error {
	names := map[string]bool{}
	for _, n := range t.Nodes {
		if names[n.Name] {
			return errors.Wrap(ErrDuplicateNode, n.Name)
		}
		names[n.Name] = true

		switch n.Role {
		case api.RoleSwitch, api.RoleHost, api.RoleGateway:
		default:
			return fmt.Errorf("node %s: unknown role %q", n.Name, n.Role)
		}
		if n.IsSwitch() && n.HasAddr() {
			return fmt.Errorf("switch %s cannot carry an address", n.Name)
		}
		if n.HasAddr() {
			if err := util.CheckHostPrefix(n.Addr); err != nil {
				return errors.Wrapf(err, "node %s", n.Name)
			}
		}
	}

	if err := checkEndpoints(t); err != nil {
		return err
	}

	intfs := map[string]string{}
	for _, l := range t.Links {
		if l.Node1 == l.Node2 {
			return fmt.Errorf("link %s-%s is a self loop", l.Node1, l.Node2)
		}
		for _, end := range []struct{ node, intf string }{{l.Node1, l.Intf1}, {l.Node2, l.Intf2}} {
			if end.intf == "" {
				return fmt.Errorf("link %s: no interface name on %s", l, end.node)
			}
			if len(end.intf) > IfNameMax {
				return fmt.Errorf("link %s: interface name %q longer than %d", l, end.intf, IfNameMax)
			}
			if owner, ok := intfs[end.intf]; ok {
				return fmt.Errorf("interface %s used twice (%s, %s)", end.intf, owner, end.node)
			}
			intfs[end.intf] = end.node
		}
		if l.Properties.Latency < 0 || l.Properties.Loss < 0 || l.Properties.Loss > 100 {
			return fmt.Errorf("link %s: invalid properties %+v", l, l.Properties)
		}
	}
	return nil
}
