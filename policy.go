package cfr

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/internal/f32"
)

// infoSetKey identifies the accumulators of one node for one effective
// hand bucket.
type infoSetKey struct {
	node holdem.NodeID
	hand holdem.HandBucket
}

// StrategyTable implements tabular CFR by storing accumulated regrets and
// strategy sums for each (node, hand bucket) pair, outside of the tree.
//
// Hand buckets are masked to the resolution of the node's street before
// lookup, so all hands that agree on the streets dealt so far share an entry.
type StrategyTable struct {
	params Params
	tree   *holdem.Tree
	iter   int

	index      map[infoSetKey]int
	strategies []strategy
}

// NewStrategyTable creates an empty StrategyTable for the given tree.
func NewStrategyTable(tree *holdem.Tree, params Params) *StrategyTable {
	return &StrategyTable{
		params: params,
		tree:   tree,
		iter:   1,
		index:  make(map[infoSetKey]int),
	}
}

// Update advances the iteration counter. It must be called once per
// training iteration when linear weighting is enabled.
func (st *StrategyTable) Update() {
	st.iter++
}

func (st *StrategyTable) Iter() int {
	return st.iter
}

// Len returns the number of (node, bucket) entries allocated so far.
func (st *StrategyTable) Len() int {
	return len(st.strategies)
}

// Tree returns the tree this table was built for.
func (st *StrategyTable) Tree() *holdem.Tree {
	return st.tree
}

// RiverHands returns the distinct buckets with accumulators on river
// nodes. The river bucket of a hand is the whole hand, so this recovers the
// set of trained hands from a restored table.
func (st *StrategyTable) RiverHands() map[holdem.HandBucket]struct{} {
	hands := make(map[holdem.HandBucket]struct{})
	for key := range st.index {
		if st.tree.Node(key.node).Street == holdem.River {
			hands[key.hand] = struct{}{}
		}
	}

	return hands
}

// EffectiveHand returns the bucket under which the given node stores
// accumulators for hand.
func (st *StrategyTable) EffectiveHand(node holdem.NodeID, hand holdem.HandBucket) holdem.HandBucket {
	street := st.tree.Node(node).Street
	return hand.At(st.tree.Config.Resolution(), street)
}

// GetStrategy returns the current regret-matching strategy for the node,
// and adds it to the strategy sum with the given reach weight.
//
// The returned slice is owned by the table and is only valid until the
// next call that modifies the same entry.
func (st *StrategyTable) GetStrategy(node holdem.NodeID, hand holdem.HandBucket, weight float32) []float32 {
	s := st.getStrategy(node, hand)
	s.regretMatching()
	f32.AxpyUnitary(weight*st.params.strategyWeight(st.iter), s.current, s.strategySum)
	return s.current
}

// GetAverageStrategy returns the normalized strategy sum for the node, or
// the uniform distribution if the entry was never visited.
func (st *StrategyTable) GetAverageStrategy(node holdem.NodeID, hand holdem.HandBucket) []float32 {
	key := st.key(node, hand)
	if idx, ok := st.index[key]; ok {
		return st.strategies[idx].averageStrategy()
	}

	return uniformDist(len(st.tree.Node(node).Children))
}

// UpdateRegret adds delta to the accumulated regret of action i. With
// regret matching+ the result is clamped at zero.
func (st *StrategyTable) UpdateRegret(node holdem.NodeID, hand holdem.HandBucket, i int, delta float32) {
	s := st.getStrategy(node, hand)
	s.regretSum[i] += delta
	if st.params.UseRegretMatchingPlus && s.regretSum[i] < 0 {
		s.regretSum[i] = 0
	}

	s.current[i] = s.regretSum[i]
}

// Regrets returns a copy of the accumulated regrets of an entry, or nil if
// it was never visited.
func (st *StrategyTable) Regrets(node holdem.NodeID, hand holdem.HandBucket) []float32 {
	idx, ok := st.index[st.key(node, hand)]
	if !ok {
		return nil
	}

	return append([]float32(nil), st.strategies[idx].regretSum...)
}

// Visited returns true if the entry for the node and hand has been created.
func (st *StrategyTable) Visited(node holdem.NodeID, hand holdem.HandBucket) bool {
	_, ok := st.index[st.key(node, hand)]
	return ok
}

func (st *StrategyTable) key(node holdem.NodeID, hand holdem.HandBucket) infoSetKey {
	return infoSetKey{node: node, hand: st.EffectiveHand(node, hand)}
}

func (st *StrategyTable) getStrategy(node holdem.NodeID, hand holdem.HandBucket) *strategy {
	key := st.key(node, hand)
	nChildren := len(st.tree.Node(node).Children)
	idx, ok := st.index[key]
	if !ok {
		idx = len(st.strategies)
		st.strategies = append(st.strategies, newStrategy(nChildren))
		st.index[key] = idx
		if len(st.strategies)%100000 == 0 {
			glog.V(2).Infof("%d strategy table entries", len(st.strategies))
		}
	}

	s := &st.strategies[idx]
	if s.numActions() != nChildren {
		panic(fmt.Errorf("strategy has n_actions=%v but node has n_children=%v: %v",
			s.numActions(), nChildren, st.tree.Node(node)))
	}

	return s
}

type strategy struct {
	current     []float32
	regretSum   []float32
	strategySum []float32
}

func newStrategy(nActions int) strategy {
	return strategy{
		current:     make([]float32, nActions),
		regretSum:   make([]float32, nActions),
		strategySum: make([]float32, nActions),
	}
}

func (s *strategy) numActions() int {
	return len(s.regretSum)
}

// regretMatching sets the current strategy proportional to the positive
// part of the accumulated regret, or uniform if no regret is positive.
func (s *strategy) regretMatching() {
	total := f32.PositivePartTo(s.current, s.regretSum)
	if total > 0 {
		f32.ScalUnitaryTo(s.current, 1.0/total, s.current)
	} else if n := len(s.current); n > 0 {
		f32.Fill(1.0/float32(n), s.current)
	}
}

func (s *strategy) averageStrategy() []float32 {
	total := f32.Sum(s.strategySum)
	if total > 0 {
		avgStrat := make([]float32, len(s.strategySum))
		f32.ScalUnitaryTo(avgStrat, 1.0/total, s.strategySum)
		return avgStrat
	}

	return uniformDist(len(s.regretSum))
}

func uniformDist(n int) []float32 {
	result := make([]float32, n)
	if n > 0 {
		f32.Fill(1.0/float32(n), result)
	}
	return result
}
