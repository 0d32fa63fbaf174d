package cfr

import (
	"math/rand"
	"sort"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/holdem"
)

// Trainer repeatedly samples deals and runs the configured Algorithm once
// from each seat's perspective.
//
// The tree is built once by NewTrainer. Successive calls to Train continue
// from the accumulated strategy table.
type Trainer struct {
	params  Params
	sampler HandSampler
	tree    *holdem.Tree
	table   *StrategyTable
	algo    Algorithm
	hands   map[holdem.HandBucket]struct{}
}

// Result is the outcome of a call to Trainer.Train.
type Result struct {
	Tree  *holdem.Tree
	Table *StrategyTable
	// Equity is the sum of the values returned by every traversal.
	Equity float32
	// Hands is the set of distinct hand buckets sampled so far.
	Hands map[holdem.HandBucket]struct{}
}

// SortedHands returns the sampled hand buckets in increasing order.
func (r *Result) SortedHands() []holdem.HandBucket {
	hands := make([]holdem.HandBucket, 0, len(r.Hands))
	for h := range r.Hands {
		hands = append(hands, h)
	}

	sort.Slice(hands, func(i, j int) bool { return hands[i] < hands[j] })
	return hands
}

// NewTrainer builds the betting tree for cfg and prepares an empty
// strategy table.
func NewTrainer(cfg holdem.GameConfig, sampler HandSampler, params Params) (*Trainer, error) {
	tree, err := holdem.NewTree(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "building game tree")
	}

	t := &Trainer{
		params:  params,
		sampler: sampler,
		tree:    tree,
		hands:   make(map[holdem.HandBucket]struct{}),
	}

	t.setTable(NewStrategyTable(tree, params))
	return t, nil
}

func (t *Trainer) setTable(table *StrategyTable) {
	t.table = table
	rng := rand.New(rand.NewSource(t.params.Seed))
	switch {
	case t.params.SampleAllActions:
		t.algo = NewOutcomeSampling(table, rng, t.params.explorationDelta())
	case t.params.SampleOpponentActions:
		t.algo = NewExternalSampling(table, rng)
	default:
		t.algo = New(table)
	}
}

// Tree returns the betting tree being trained.
func (t *Trainer) Tree() *holdem.Tree {
	return t.tree
}

// Table returns the strategy table being trained.
func (t *Trainer) Table() *StrategyTable {
	return t.table
}

// Restore replaces the strategy table, e.g. with one loaded from a
// checkpoint. The table must have been created for the same tree shape.
func (t *Trainer) Restore(table *StrategyTable) error {
	if table.Tree() != t.tree {
		return errors.New("strategy table belongs to a different tree")
	}

	t.setTable(table)
	for h := range table.RiverHands() {
		t.hands[h] = struct{}{}
	}

	glog.V(1).Infof("Restored strategy table at iteration %d with %d hand buckets",
		table.Iter(), len(t.hands))
	return nil
}

// Train runs the given number of iterations. If progress is non-nil it is
// called with the iteration index after each one.
func (t *Trainer) Train(iterations int, progress func(i int)) (*Result, error) {
	if iterations < 0 {
		return nil, errors.Errorf("invalid number of iterations: %d", iterations)
	}

	glog.V(1).Infof("Training %v for %d iterations on %d nodes",
		t.params, iterations, t.tree.Len())
	var equity float32
	for i := 0; i < iterations; i++ {
		deal := t.sampler.Sample()
		t.hands[deal.Hand] = struct{}{}

		for player := 0; player < 2; player++ {
			equity += t.algo.Run(Traversal{
				Player: player,
				Hand:   deal.Hand,
				Winner: winnerSeat(deal.Winner, player),
			})
		}

		t.table.Update()
		if progress != nil {
			progress(i)
		}
	}

	glog.V(1).Infof("Training finished: %d table entries, %d hand buckets",
		t.table.Len(), len(t.hands))
	return &Result{
		Tree:   t.tree,
		Table:  t.table,
		Equity: equity,
		Hands:  t.hands,
	}, nil
}

// winnerSeat converts the winner of a deal, relative to the sampled hand,
// into a seat when that hand is held by player.
func winnerSeat(winner, player int) int {
	switch winner {
	case 0:
		return player
	case 1:
		return 1 - player
	}

	return NoWinner
}
