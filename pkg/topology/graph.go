package topology

import "Netlab/api"

// Connected reports whether every node in nodes can reach every other one
// using links whose both endpoints are in nodes.
func Connected(nodes []string, links []api.Link) bool {
	if len(nodes) <= 1 {
		return true
	}
	adj := adjacency(nodes, links)
	seen := map[string]bool{nodes[0]: true}
	queue := []string{nodes[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(seen) == len(nodes)
}

// HasCycle reports whether the undirected graph contains a cycle.
func HasCycle(nodes []string, links []api.Link) bool {
	parent := map[string]string{}
	for _, n := range nodes {
		parent[n] = n
	}
	var find func(string) string
	find = func(n string) string {
		if parent[n] != n {
			parent[n] = find(parent[n])
		}
		return parent[n]
	}
	for _, l := range links {
		if _, ok := parent[l.Node1]; !ok {
			continue
		}
		if _, ok := parent[l.Node2]; !ok {
			continue
		}
		a, b := find(l.Node1), find(l.Node2)
		if a == b {
			return true
		}
		parent[a] = b
	}
	return false
}

// BackboneResilient reports whether the backbone switches stay connected
// after removing any single switch-to-switch link. Switches without any
// switch-to-switch link, like a segment switch behind a gateway, are not
// part of the backbone.
func BackboneResilient(t *api.Topology) bool {
	backbone := t.Backbone()
	var switches []string
	seen := map[string]bool{}
	for _, l := range backbone {
		for _, n := range []string{l.Node1, l.Node2} {
			if !seen[n] {
				seen[n] = true
				switches = append(switches, n)
			}
		}
	}
	if len(switches) == 0 {
		return false
	}
	if !Connected(switches, backbone) {
		return false
	}
	for i := range backbone {
		rest := make([]api.Link, 0, len(backbone)-1)
		rest = append(rest, backbone[:i]...)
		rest = append(rest, backbone[i+1:]...)
		if !Connected(switches, rest) {
			return false
		}
	}
	return true
}

// Report summarises the structural properties of a topology.
type Report struct {
	Switches  int
	Hosts     int
	Links     int
	Backbone  int
	Connected bool
	Cyclic    bool
	Resilient bool
}

func Analyze(t *api.Topology) Report {
	all := names(t.Nodes)
	switches := names(t.Switches())
	backbone := t.Backbone()
	return Report{
		Switches:  len(switches),
		Hosts:     len(all) - len(switches),
		Links:     len(t.Links),
		Backbone:  len(backbone),
		Connected: Connected(all, t.Links),
		Cyclic:    HasCycle(switches, backbone),
		Resilient: BackboneResilient(t),
	}
}

func names(nodes []api.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func adjacency(nodes []string, links []api.Link) map[string][]string {
	in := map[string]bool{}
	for _, n := range nodes {
		in[n] = true
	}
	adj := map[string][]string{}
	for _, l := range links {
		if !in[l.Node1] || !in[l.Node2] {
			continue
		}
		adj[l.Node1] = append(adj[l.Node1], l.Node2)
		adj[l.Node2] = append(adj[l.Node2], l.Node1)
	}
	return adj
}
