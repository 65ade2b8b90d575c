package nat

import (
	"testing"

	"Netlab/api"
	"Netlab/pkg/scenario"
	"Netlab/pkg/topology"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTopology(t *testing.T) {
	topo, plan, err := scenario.Segmented()
	require.NoError(t, err)
	require.NoError(t, CheckTopology(plan, topo))

	tests := map[string]func(p *api.AddressPlan){
		"unknown gateway":        func(p *api.AddressPlan) { p.Gateway = "h10" },
		"gateway is a switch":    func(p *api.AddressPlan) { p.Gateway = "s1" },
		"public intf missing":    func(p *api.AddressPlan) { p.PublicIntf = "h9-eth2" },
		"private intf missing":   func(p *api.AddressPlan) { p.PrivateIntf = "h9-eht1" },
		"private host unknown":   func(p *api.AddressPlan) { p.PrivateHosts[0].Name = "h11" },
		"private host intf":      func(p *api.AddressPlan) { p.PrivateHosts[1].Intf = "h2-eth1" },
		"private intf elsewhere": func(p *api.AddressPlan) { p.PrivateHosts[0].Intf = "h2-eth0" },
		"public host unknown":    func(p *api.AddressPlan) { p.PublicHosts = append(p.PublicHosts, "h42") },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			_, p, err := scenario.Segmented()
			require.NoError(t, err)
			mutate(p)
			assert.Error(t, CheckTopology(p, topo))
		})
	}

	_, p, _ := scenario.Segmented()
	p.Gateway = "h10"
	assert.ErrorIs(t, CheckTopology(p, topo), topology.ErrUnknownNode)
}
