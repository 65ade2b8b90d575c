package pkg

import (
	"fmt"
	"io"
	"strings"

	"Netlab/api"
	"Netlab/pkg/routing"
	"Netlab/pkg/topology"

	"github.com/awalterschulze/gographviz"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func ShowNodes(w io.Writer, t *api.Topology) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Node", "Role", "Address", "Interfaces", "STP"})
	for _, n := range t.Nodes {
		addr := "-"
		if n.HasAddr() {
			addr = n.Addr.String()
		}
		var intfs []string
		for _, l := range t.LinksOf(n.Name) {
			intfs = append(intfs, l.Intf(n.Name))
		}
		stp := ""
		if n.IsSwitch() {
			stp = fmt.Sprint(n.STP)
		}
		tw.AppendRow(table.Row{n.Name, n.Role, addr, strings.Join(intfs, ","), stp})
	}
	tw.Render()
}

func ShowLinks(w io.Writer, t *api.Topology) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Src", "Dst", "Delay", "Loss", "Bw"})
	for _, l := range t.Links {
		bw := "-"
		if l.Properties.Rate > 0 {
			bw = fmt.Sprintf("%dMbps", l.Properties.Rate)
		}
		tw.AppendRow(table.Row{
			l.Node1 + ":" + l.Intf1,
			l.Node2 + ":" + l.Intf2,
			l.Properties.Latency,
			fmt.Sprintf("%.2f%%", l.Properties.Loss),
			bw,
		})
	}
	tw.Render()
}

func ShowReport(w io.Writer, r topology.Report) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Property", "Value"})
	tw.AppendRows([]table.Row{
		{"switches", r.Switches},
		{"hosts", r.Hosts},
		{"links", r.Links},
		{"backbone links", r.Backbone},
		{"connected", r.Connected},
		{"backbone has cycle", r.Cyclic},
		{"survives single backbone link loss", r.Resilient},
	})
	tw.Render()
}

// ShowRoutes prints the best route from every router to every other one.
func ShowRoutes(w io.Writer, n *routing.Network) error {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Router", "Dest", "Via", "Cost"})
	for _, src := range n.Routers() {
		routes, err := n.Routes(src)
		if err != nil {
			return err
		}
		for _, r := range routes {
			via, cost := r.Via, fmt.Sprint(r.Cost)
			if r.Cost >= routing.Infinity {
				via, cost = "-", "unreachable"
			}
			tw.AppendRow(table.Row{src, r.Dest, via, cost})
		}
	}
	tw.Render()
	return nil
}

// ShowPlan prints the configuration commands one per line, numbered.
func ShowPlan(w io.Writer, cmds []api.Command) {
	for i, c := range cmds {
		fmt.Fprintf(w, "%3d  %s\n", i+1, c)
	}
}

// Graph renders t in Graphviz DOT.
func Graph(t *api.Topology) (string, error) {
	g := gographviz.NewGraph()
	name := t.Name
	if name == "" {
		name = "topology"
	}
	if err := g.SetName(quote(name)); err != nil {
		return "", err
	}
	if err := g.SetDir(false); err != nil {
		return "", err
	}
	for _, n := range t.Nodes {
		attrs := map[string]string{"shape": "ellipse"}
		label := n.Name
		switch n.Role {
		case api.RoleSwitch:
			attrs["shape"] = "box"
		case api.RoleGateway:
			attrs["shape"] = "diamond"
		}
		if n.HasAddr() {
			label += `\n` + n.Addr.String()
		}
		attrs["label"] = quote(label)
		if err := g.AddNode(g.Name, quote(n.Name), attrs); err != nil {
			return "", err
		}
	}
	for _, l := range t.Links {
		attrs := map[string]string{"label": quote(l.Properties.Latency.String())}
		if err := g.AddEdge(quote(l.Node1), quote(l.Node2), false, attrs); err != nil {
			return "", err
		}
	}
	return g.String(), nil
}

func quote(s string) string {
	return `"` + s + `"`
}
