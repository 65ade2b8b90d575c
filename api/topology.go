package api

// Topology is the static graph handed to the emulator. It is built once
// and not modified after the network starts.
type Topology struct {
	Name  string `yaml:"name"`
	Nodes []Node `yaml:"nodes"`
	Links []Link `yaml:"links"`
}

// Node looks a node up by name.
func (t *Topology) Node(name string) (Node, bool) {
	for _, n := range t.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

func (t *Topology) Switches() []Node {
	return t.filter(func(n Node) bool { return n.Role == RoleSwitch })
}

// Hosts returns hosts and gateways, everything that runs in a container.
func (t *Topology) Hosts() []Node {
	return t.filter(func(n Node) bool { return n.Role != RoleSwitch })
}

func (t *Topology) filter(keep func(Node) bool) []Node {
	var out []Node
	for _, n := range t.Nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// LinksOf returns every link that has name as an endpoint.
func (t *Topology) LinksOf(name string) []Link {
	var out []Link
	for _, l := range t.Links {
		if l.Has(name) {
			out = append(out, l)
		}
	}
	return out
}

// Backbone returns the switch-to-switch links.
func (t *Topology) Backbone() []Link {
	var out []Link
	for _, l := range t.Links {
		a, _ := t.Node(l.Node1)
		b, _ := t.Node(l.Node2)
		if a.IsSwitch() && b.IsSwitch() {
			out = append(out, l)
		}
	}
	return out
}
