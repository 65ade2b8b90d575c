// Package routing computes switch-to-switch routes with a distance-vector
// exchange: every router only talks to its direct neighbours and keeps a
// table of costs per destination and next hop.
package routing

import (
	"fmt"
	"sort"
	"time"

	"Netlab/api"

	log "github.com/sirupsen/logrus"
)

// Infinity is the cost of an unreachable destination. Sums are capped at
// it so that counting to infinity terminates.
const Infinity = 999

// Edge is a bidirectional link between two routers with a symmetric cost.
type Edge struct {
	A, B string
	Cost int
}

// Route is the best known path from a router to Dest.
type Route struct {
	Dest string
	Via  string
	Cost int
}

type packet struct {
	from, to int
	mincost  []int
}

// router holds the distance table of one node: costs[dest][via].
type router struct {
	costs [][]int
	heard [][]int // last vector received from each neighbour
	sent  []int   // last vector advertised
}

// Network simulates the routers of a topology exchanging distance vectors.
// It is not safe for concurrent use.
type Network struct {
	names   []string
	index   map[string]int
	link    [][]int // direct cost, Infinity without a link
	routers []*router
	queue   []packet

	Delivered int // packets processed so far
}

// New builds a network of nodes connected by edges and runs the exchange
// until no router changes its vector.
func New(nodes []string, edges []Edge) (*Network, error) {
	n := &Network{
		names: append([]string(nil), nodes...),
		index: map[string]int{},
	}
	for i, name := range n.names {
		if _, ok := n.index[name]; ok {
			return nil, fmt.Errorf("duplicate router %s", name)
		}
		n.index[name] = i
	}
	size := len(n.names)
	n.link = square(size, Infinity)
	for i := range n.link {
		n.link[i][i] = 0
	}
	for _, e := range edges {
		a, b, err := n.pair(e.A, e.B)
		if err != nil {
			return nil, err
		}
		if e.Cost <= 0 || e.Cost >= Infinity {
			return nil, fmt.Errorf("edge %s-%s: cost %d out of range", e.A, e.B, e.Cost)
		}
		n.link[a][b], n.link[b][a] = e.Cost, e.Cost
	}

	for range n.names {
		r := &router{costs: square(size, Infinity), heard: square(size, Infinity)}
		for v := range n.names {
			r.heard[v][v] = 0
		}
		n.routers = append(n.routers, r)
	}
	for x := range n.names {
		for _, v := range n.neighbours(x) {
			n.recompute(x, v)
		}
		n.advertise(x)
	}
	n.Run()
	return n, nil
}

// FromTopology builds the network of the switches of t. A link costs its
// latency in whole milliseconds, at least 1.
func FromTopology(t *api.Topology) (*Network, error) {
	var nodes []string
	for _, s := range t.Switches() {
		nodes = append(nodes, s.Name)
	}
	var edges []Edge
	for _, l := range t.Backbone() {
		edges = append(edges, Edge{A: l.Node1, B: l.Node2, Cost: Cost(l.Properties)})
	}
	return New(nodes, edges)
}

// Cost maps link properties to a routing metric.
func Cost(p api.LinkProperties) int {
	c := int(p.Latency / time.Millisecond)
	if c < 1 {
		return 1
	}
	if c >= Infinity {
		return Infinity - 1
	}
	return c
}

// Run delivers queued vectors until the network is quiet.
func (n *Network) Run() {
	for len(n.queue) > 0 {
		p := n.queue[0]
		n.queue = n.queue[1:]
		n.Delivered++
		n.update(p)
	}
}

// SetLinkCost changes the cost of an existing link, lets both ends react
// and runs the exchange again. Infinity takes the link down for good.
func (n *Network) SetLinkCost(a, b string, cost int) error {
	x, y, err := n.pair(a, b)
	if err != nil {
		return err
	}
	if n.link[x][y] == Infinity {
		return fmt.Errorf("no link %s-%s", a, b)
	}
	if cost <= 0 || cost > Infinity {
		return fmt.Errorf("link %s-%s: cost %d out of range", a, b, cost)
	}
	log.Debugf("link %s-%s cost %d -> %d", a, b, n.link[x][y], cost)
	n.link[x][y], n.link[y][x] = cost, cost
	for _, end := range [][2]int{{x, y}, {y, x}} {
		n.recompute(end[0], end[1])
		n.advertise(end[0])
	}
	n.Run()
	return nil
}

func (n *Network) update(p packet) {
	r := n.routers[p.to]
	copy(r.heard[p.from], p.mincost)
	n.recompute(p.to, p.from)
	n.advertise(p.to)
}

// recompute applies D_x(y, v) = c(x, v) + D_v(y) for every destination y.
func (n *Network) recompute(x, v int) {
	r := n.routers[x]
	for y := range n.names {
		r.costs[y][v] = min(n.link[x][v]+r.heard[v][y], Infinity)
	}
}

// advertise sends the router's vector to its neighbours if it changed.
func (n *Network) advertise(x int) {
	vec := n.vector(x)
	r := n.routers[x]
	if r.sent != nil && equal(r.sent, vec) {
		return
	}
	r.sent = vec
	for _, v := range n.neighbours(x) {
		n.queue = append(n.queue, packet{from: x, to: v, mincost: append([]int(nil), vec...)})
	}
	log.Debugf("%s advertises %v", n.names[x], vec)
}

func (n *Network) vector(x int) []int {
	vec := make([]int, len(n.names))
	for y := range n.names {
		if y == x {
			continue
		}
		vec[y] = Infinity
		for _, v := range n.neighbours(x) {
			vec[y] = min(vec[y], n.routers[x].costs[y][v])
		}
	}
	return vec
}

func (n *Network) neighbours(x int) []int {
	var out []int
	for v, c := range n.link[x] {
		if v != x && c < Infinity {
			out = append(out, v)
		}
	}
	return out
}

// Distance returns the converged cost from src to dst.
func (n *Network) Distance(src, dst string) (int, error) {
	x, y, err := n.pair(src, dst)
	if err != nil {
		return 0, err
	}
	return n.vector(x)[y], nil
}

// Table returns the distance table of src: cost to each destination
// through each neighbour.
func (n *Network) Table(src string) (map[string]map[string]int, error) {
	x, ok := n.index[src]
	if !ok {
		return nil, fmt.Errorf("unknown router %s", src)
	}
	out := map[string]map[string]int{}
	for y, dest := range n.names {
		if y == x {
			continue
		}
		out[dest] = map[string]int{}
		for _, v := range n.neighbours(x) {
			out[dest][n.names[v]] = n.routers[x].costs[y][v]
		}
	}
	return out, nil
}

// Routes returns the best route from src to every other router, sorted by
// destination. Ties go to the first neighbour in declaration order.
func (n *Network) Routes(src string) ([]Route, error) {
	x, ok := n.index[src]
	if !ok {
		return nil, fmt.Errorf("unknown router %s", src)
	}
	var out []Route
	for y, dest := range n.names {
		if y == x {
			continue
		}
		best := Route{Dest: dest, Cost: Infinity}
		for _, v := range n.neighbours(x) {
			if c := n.routers[x].costs[y][v]; c < best.Cost {
				best.Cost, best.Via = c, n.names[v]
			}
		}
		out = append(out, best)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dest < out[j].Dest })
	return out, nil
}

// Routers returns the router names in declaration order.
func (n *Network) Routers() []string {
	return append([]string(nil), n.names...)
}

func (n *Network) pair(a, b string) (int, int, error) {
	x, ok := n.index[a]
	if !ok {
		return 0, 0, fmt.Errorf("unknown router %s", a)
	}
	y, ok := n.index[b]
	if !ok {
		return 0, 0, fmt.Errorf("unknown router %s", b)
	}
	if x == y {
		return 0, 0, fmt.Errorf("link %s-%s is a self loop", a, b)
	}
	return x, y, nil
}

func square(size, fill int) [][]int {
	out := make([][]int, size)
	for i := range out {
		out[i] = make([]int, size)
		for j := range out[i] {
			out[i][j] = fill
		}
	}
	return out
}

func equal(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return len(a) == len(b)
}
