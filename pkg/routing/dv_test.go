package routing

import (
	"testing"

	"Netlab/pkg/scenario"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// four routers, the classic textbook costs
func square4(t *testing.T) *Network {
	t.Helper()
	n, err := New([]string{"r0", "r1", "r2", "r3"}, []Edge{
		{A: "r0", B: "r1", Cost: 1},
		{A: "r0", B: "r2", Cost: 3},
		{A: "r0", B: "r3", Cost: 7},
		{A: "r1", B: "r2", Cost: 1},
		{A: "r2", B: "r3", Cost: 2},
	})
	require.NoError(t, err)
	return n
}

func distances(t *testing.T, n *Network, src string) []int {
	t.Helper()
	var out []int
	for _, dst := range n.Routers() {
		d, err := n.Distance(src, dst)
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func TestConverge(t *testing.T) {
	n := square4(t)
	assert.Greater(t, n.Delivered, 0)
	assert.Equal(t, []int{0, 1, 2, 4}, distances(t, n, "r0"))
	assert.Equal(t, []int{1, 0, 1, 3}, distances(t, n, "r1"))
	assert.Equal(t, []int{2, 1, 0, 2}, distances(t, n, "r2"))
	assert.Equal(t, []int{4, 3, 2, 0}, distances(t, n, "r3"))

	table, err := n.Table("r0")
	require.NoError(t, err)
	want := map[string]int{"r1": 4, "r2": 5, "r3": 7}
	if diff := cmp.Diff(want, table["r3"]); diff != "" {
		t.Errorf("Table(r0)[r3] mismatch (-want +got):\n%s", diff)
	}
}

func TestSetLinkCost(t *testing.T) {
	n := square4(t)
	require.NoError(t, n.SetLinkCost("r0", "r1", 20))
	assert.Equal(t, []int{0, 4, 3, 5}, distances(t, n, "r0"))

	routes, err := n.Routes("r0")
	require.NoError(t, err)
	assert.Equal(t, []Route{
		{Dest: "r1", Via: "r2", Cost: 4},
		{Dest: "r2", Via: "r2", Cost: 3},
		{Dest: "r3", Via: "r2", Cost: 5},
	}, routes)

	require.NoError(t, n.SetLinkCost("r0", "r1", 1))
	assert.Equal(t, []int{0, 1, 2, 4}, distances(t, n, "r0"))

	assert.Error(t, n.SetLinkCost("r1", "r3", 2), "no such link")
	assert.Error(t, n.SetLinkCost("r0", "r9", 2))
	assert.Error(t, n.SetLinkCost("r0", "r1", 0))
}

func TestLinkDown(t *testing.T) {
	n, err := New([]string{"a", "b", "c"}, []Edge{{A: "a", B: "b", Cost: 1}, {A: "b", B: "c", Cost: 1}})
	require.NoError(t, err)
	d, _ := n.Distance("a", "c")
	assert.Equal(t, 2, d)

	require.NoError(t, n.SetLinkCost("b", "c", Infinity))
	d, _ = n.Distance("a", "c")
	assert.Equal(t, Infinity, d)
}

func TestNewErrors(t *testing.T) {
	_, err := New([]string{"a", "a"}, nil)
	assert.Error(t, err)
	_, err = New([]string{"a", "b"}, []Edge{{A: "a", B: "x", Cost: 1}})
	assert.Error(t, err)
	_, err = New([]string{"a", "b"}, []Edge{{A: "a", B: "b", Cost: Infinity}})
	assert.Error(t, err)
}

func TestFromTopology(t *testing.T) {
	topo, err := scenario.Flat()
	require.NoError(t, err)
	n, err := FromTopology(topo)
	require.NoError(t, err)

	routes, err := n.Routes("s2")
	require.NoError(t, err)
	assert.Equal(t, []Route{
		{Dest: "s1", Via: "s1", Cost: 7},
		{Dest: "s3", Via: "s3", Cost: 7},
		{Dest: "s4", Via: "s1", Cost: 14},
	}, routes)

	topo, _, err = scenario.Segmented()
	require.NoError(t, err)
	n, err = FromTopology(topo)
	require.NoError(t, err)
	d, err := n.Distance("s1", "s5")
	require.NoError(t, err)
	assert.Equal(t, Infinity, d, "s5 only hangs off the gateway")
}
