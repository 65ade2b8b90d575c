// Package shell is the interactive control surface handed the running
// network.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"Netlab/api"
	"Netlab/pkg"
	"Netlab/pkg/firewall"
)

// Network is what the shell needs from a running emulation.
type Network interface {
	Topology() *api.Topology
	Exec(ctx context.Context, node string, argv []string, stdout, stderr io.Writer) error
	Filter(node string) (firewall.Filter, error)
}

type Shell struct {
	net Network
	in  io.Reader
	out io.Writer
}

func New(net Network, in io.Reader, out io.Writer) *Shell {
	return &Shell{net: net, in: in, out: out}
}

const usage = `commands:
  nodes                 list nodes
  links                 list links
  rules <node>          dump filter and nat tables of a node
  <node> <cmd> [args]   run a command on a node, e.g. h1 ping -c1 10.0.0.4
  help                  this text
  exit                  leave and tear the network down
`

// Run reads commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		fmt.Fprint(s.out, "netlab> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				return <-errc
			}
			if s.Handle(ctx, line) {
				return nil
			}
		}
	}
}

// Handle executes one command line and reports whether the shell should
// exit.
func (s *Shell) Handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "exit", "quit":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	case "help", "?":
		fmt.Fprint(s.out, usage)
	case "nodes":
		pkg.ShowNodes(s.out, s.net.Topology())
	case "links":
		pkg.ShowLinks(s.out, s.net.Topology())
	case "rules":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: rules <node>")
			return false
		}
		s.rules(fields[1])
	default:
		if _, ok := s.net.Topology().Node(fields[0]); !ok {
			fmt.Fprintf(s.out, "unknown command or node %q, try help\n", fields[0])
			return false
		}
		if len(fields) == 1 {
			fmt.Fprintf(s.out, "usage: %s <cmd> [args]\n", fields[0])
			return false
		}
		if err := s.net.Exec(ctx, fields[0], fields[1:], s.out, s.out); err != nil {
			fmt.Fprintln(s.out, "Error:", err)
		}
	}
	return false
}

func (s *Shell) rules(node string) {
	f, err := s.net.Filter(node)
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return
	}
	dump, err := firewall.Dump(f, api.TableFilter, api.TableNAT)
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return
	}
	keys := make([]string, 0, len(dump))
	for k := range dump {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.out, "# %s\n", k)
		for _, l := range dump[k] {
			fmt.Fprintln(s.out, l)
		}
	}
}
