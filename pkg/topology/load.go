package topology

import (
	"os"

	"Netlab/api"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a scenario.
type File struct {
	Name  string           `yaml:"name"`
	Nodes []api.Node       `yaml:"nodes"`
	Links []api.Link       `yaml:"links"`
	NAT   *api.AddressPlan `yaml:"nat,omitempty"`
}

// Load reads a YAML scenario. The returned plan is nil when the file has
// no nat section.
func Load(path string) (*api.Topology, *api.AddressPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error reading topology file")
	}
	return Parse(data)
}

func Parse(data []byte) (*api.Topology, *api.AddressPlan, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, errors.Wrap(err, "error unmarshaling topology")
	}

	b := NewBuilder(f.Name)
	for _, n := range f.Nodes {
		b.AddNode(n)
	}
	for _, l := range f.Links {
		b.AddLink(l.Node1, l.Node2, l.Properties, WithIntfNames(l.Intf1, l.Intf2))
	}
	t, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return t, f.NAT, nil
}
