package cmd

import (
	"testing"
	"time"

	"Netlab/pkg/convergence"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addScenarioFlags(cmd)
	return cmd
}

func TestLoadScenario(t *testing.T) {
	cmd := newScenarioCmd()
	require.NoError(t, cmd.Flags().Set("stp", "true"))
	require.NoError(t, cmd.Flags().Set("forward-policy", "DROP"))

	sc, err := loadScenario(cmd, []string{"nat"})
	require.NoError(t, err)
	assert.Equal(t, "DROP", sc.Plan.ForwardPolicy)
	for _, n := range sc.Topology.Switches() {
		assert.True(t, n.STP, n.Name)
	}

	sc, err = loadScenario(newScenarioCmd(), []string{"flat"})
	require.NoError(t, err)
	assert.Nil(t, sc.Plan)
	for _, n := range sc.Topology.Switches() {
		assert.False(t, n.STP, n.Name)
	}

	_, err = loadScenario(newScenarioCmd(), nil)
	assert.Error(t, err)
	_, err = loadScenario(newScenarioCmd(), []string{"mesh"})
	assert.Error(t, err)
}

func TestGateFromFlags(t *testing.T) {
	gate, err := gateFromFlags(runCmd)
	require.NoError(t, err)
	d, ok := convergence.Delay(gate.Signal)
	require.True(t, ok)
	assert.Equal(t, convergence.DefaultDelay, d)
	assert.Equal(t, convergence.DefaultTimeout, gate.Timeout)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("wait", "delay", "")
	cmd.Flags().Duration("wait-delay", 90*time.Second, "")
	cmd.Flags().Duration("wait-timeout", time.Minute, "")
	gate, err = gateFromFlags(cmd)
	require.NoError(t, err)
	assert.Greater(t, gate.Timeout, 90*time.Second)

	require.NoError(t, cmd.Flags().Set("wait", "stp"))
	gate, err = gateFromFlags(cmd)
	require.NoError(t, err)
	assert.Nil(t, gate.Signal)

	require.NoError(t, cmd.Flags().Set("wait", "forever"))
	_, err = gateFromFlags(cmd)
	assert.Error(t, err)
}
