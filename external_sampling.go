package cfr

import (
	"math/rand"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/internal/f32"
	"github.com/timpalpant/holdem-cfr/internal/sampling"
)

// ExternalSamplingCFR walks every action of the focal player but samples a
// single action at each opponent node from the current strategy.
type ExternalSamplingCFR struct {
	tree      *holdem.Tree
	table     *StrategyTable
	rng       *rand.Rand
	slicePool *floatSlicePool
}

func NewExternalSampling(table *StrategyTable, rng *rand.Rand) *ExternalSamplingCFR {
	return &ExternalSamplingCFR{
		tree:      table.Tree(),
		table:     table,
		rng:       rng,
		slicePool: &floatSlicePool{},
	}
}

// Run implements Algorithm.
func (c *ExternalSamplingCFR) Run(t Traversal) float32 {
	return c.runHelper(t, c.tree.Root, 1.0)
}

func (c *ExternalSamplingCFR) runHelper(t Traversal, node holdem.NodeID, reachP float32) float32 {
	n := c.tree.Node(node)
	if n.IsTerminal() {
		return terminalValue(n, t, reachP)
	}

	s := c.table.GetStrategy(node, t.Hand, reachP)
	if int(n.Actor) != t.Player {
		return c.handleSampledNode(t, n, s, reachP)
	}

	actionUtils := c.slicePool.alloc(len(n.Children))
	defer c.slicePool.free(actionUtils)
	for i, child := range n.Children {
		actionUtils[i] = c.runHelper(t, child, reachP)
	}

	ev := f32.DotUnitary(s, actionUtils)
	for i, u := range actionUtils {
		c.table.UpdateRegret(node, t.Hand, i, u-ev)
	}

	return ev
}

func (c *ExternalSamplingCFR) handleSampledNode(t Traversal, n *holdem.Node, s []float32, reachP float32) float32 {
	i := sampling.SampleOne(c.rng, s)
	p := s[i]
	if p == 0 {
		return 0
	}

	// Dividing by the sampling probability keeps the estimate unbiased,
	// since leaf values are already scaled by the reach passed down.
	return c.runHelper(t, n.Children[i], reachP*p) / p
}
