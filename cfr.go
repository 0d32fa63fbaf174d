package cfr

import (
	"github.com/golang/glog"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/internal/f32"
)

// CFR implements full-width counterfactual regret minimization over a
// holdem.Tree. Whether regrets are clamped (CFR+) or not (vanilla CFR) is
// determined by the Params of the StrategyTable.
type CFR struct {
	tree      *holdem.Tree
	table     *StrategyTable
	slicePool *floatSlicePool
}

func New(table *StrategyTable) *CFR {
	return &CFR{
		tree:      table.Tree(),
		table:     table,
		slicePool: &floatSlicePool{},
	}
}

// Run implements Algorithm.
func (c *CFR) Run(t Traversal) float32 {
	return c.Compute(t, c.tree.Root, 1.0)
}

// Compute returns the focal player's counterfactual value of the subtree
// rooted at node, weighted by reachP.
func (c *CFR) Compute(t Traversal, node holdem.NodeID, reachP float32) float32 {
	n := c.tree.Node(node)
	if n.IsTerminal() {
		return terminalValue(n, t, reachP)
	}

	s := c.table.GetStrategy(node, t.Hand, reachP)
	if int(n.Actor) != t.Player {
		var ev float32
		for i, child := range n.Children {
			ev += c.Compute(t, child, reachP*s[i])
		}

		return ev
	}

	actionUtils := c.slicePool.alloc(len(n.Children))
	for i, child := range n.Children {
		actionUtils[i] = c.Compute(t, child, reachP)
	}

	ev := f32.DotUnitary(s, actionUtils)
	for i, u := range actionUtils {
		c.table.UpdateRegret(node, t.Hand, i, u-ev)
	}

	c.slicePool.free(actionUtils)
	return ev
}

// terminalValue is the focal player's value at a leaf. A Fold leaf costs
// the folding seat its payoff. A showdown pays the winner.
func terminalValue(n *holdem.Node, t Traversal, reachP float32) float32 {
	payoff := float32(n.Payoff) * reachP
	switch n.Street {
	case holdem.Folded:
		if int(n.Seat) == t.Player {
			return -payoff
		}

		return payoff
	case holdem.Showdown:
		if t.Winner == NoWinner {
			return 0
		} else if t.Winner == t.Player {
			return payoff
		}

		return -payoff
	}

	glog.Fatalf("terminal value requested for non-terminal node %v", n)
	return 0
}
