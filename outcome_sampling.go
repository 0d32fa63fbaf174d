package cfr

import (
	"math/rand"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/internal/f32"
	"github.com/timpalpant/holdem-cfr/internal/sampling"
)

// DefaultExplorationDelta is the exploration used by outcome sampling when
// Params.ExplorationDelta is unset.
const DefaultExplorationDelta = 0.6

// OutcomeSamplingCFR samples a single action at every decision node, so that
// each traversal follows one path to a leaf. Actions of the focal player
// are drawn from a mixture of the current strategy and the uniform
// distribution, and regrets are corrected by the sampling probability.
type OutcomeSamplingCFR struct {
	tree             *holdem.Tree
	table            *StrategyTable
	rng              *rand.Rand
	explorationDelta float32
	slicePool        *floatSlicePool
}

// NewOutcomeSampling creates a new OutcomeSamplingCFR. explorationDelta is
// the fraction of the time in (0.0, 1.0] the focal player explores a
// uniformly random action.
func NewOutcomeSampling(table *StrategyTable, rng *rand.Rand, explorationDelta float32) *OutcomeSamplingCFR {
	if explorationDelta <= 0 || explorationDelta > 1 {
		panic("exploration delta must be in (0, 1]")
	}

	return &OutcomeSamplingCFR{
		tree:             table.Tree(),
		table:            table,
		rng:              rng,
		explorationDelta: explorationDelta,
		slicePool:        &floatSlicePool{},
	}
}

// Run implements Algorithm.
func (c *OutcomeSamplingCFR) Run(t Traversal) float32 {
	return c.runHelper(t, c.tree.Root, 1.0)
}

func (c *OutcomeSamplingCFR) runHelper(t Traversal, node holdem.NodeID, reachP float32) float32 {
	n := c.tree.Node(node)
	if n.IsTerminal() {
		return terminalValue(n, t, reachP)
	}

	s := c.table.GetStrategy(node, t.Hand, reachP)
	if int(n.Actor) != t.Player {
		i := sampling.SampleOne(c.rng, s)
		p := s[i]
		if p == 0 {
			return 0
		}

		return c.runHelper(t, n.Children[i], reachP*p) / p
	}

	nChildren := len(n.Children)
	var selected int
	if c.rng.Float32() < c.explorationDelta {
		selected = c.rng.Intn(nChildren)
	} else {
		selected = sampling.SampleOne(c.rng, s)
	}

	f := c.explorationDelta
	sigmaPrime := f/float32(nChildren) + (1.0-f)*s[selected]

	// Only the sampled action has a nonzero value estimate.
	actionUtils := c.slicePool.alloc(nChildren)
	defer c.slicePool.free(actionUtils)
	actionUtils[selected] = c.runHelper(t, n.Children[selected], reachP) / sigmaPrime

	ev := f32.DotUnitary(s, actionUtils)
	for i, u := range actionUtils {
		c.table.UpdateRegret(node, t.Hand, i, u-ev)
	}

	return ev
}
