package cfr

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/timpalpant/holdem-cfr/holdem"
)

type fixedSampler struct {
	deals []Deal
	i     int
}

func (s *fixedSampler) Sample() Deal {
	d := s.deals[s.i%len(s.deals)]
	s.i++
	return d
}

// smallConfig only allows raising pre-flop, which keeps the tree small
// enough to traverse thousands of times in a test.
func smallConfig() holdem.GameConfig {
	cfg := holdem.DefaultConfig()
	cfg.Raises = [][]int{{4}, {}, {}, {}}
	cfg.Bankroll = 10
	return cfg
}

func mustTree(t testing.TB, cfg holdem.GameConfig) *holdem.Tree {
	tree, err := holdem.NewTree(cfg)
	if err != nil {
		t.Fatal(err)
	}

	return tree
}

func openingNode(tree *holdem.Tree) holdem.NodeID {
	return tree.Node(tree.Root).Children[0]
}

func checkDistribution(t *testing.T, p []float32, n int) {
	t.Helper()
	if len(p) != n {
		t.Fatalf("expected %d entries, got %d", n, len(p))
	}

	var total float64
	for _, x := range p {
		if x < 0 {
			t.Errorf("negative probability in %v", p)
		}
		total += float64(x)
	}

	if math.Abs(total-1.0) > 1e-4 {
		t.Errorf("probabilities sum to %v: %v", total, p)
	}
}

func TestStrategyTable_Unvisited(t *testing.T) {
	tree := mustTree(t, smallConfig())
	st := NewStrategyTable(tree, DefaultParams())
	node := openingNode(tree)

	n := len(tree.Node(node).Children)
	avg := st.GetAverageStrategy(node, 0x1234)
	for _, p := range avg {
		if p != 1.0/float32(n) {
			t.Errorf("expected uniform strategy, got %v", avg)
		}
	}

	if st.Visited(node, 0x1234) {
		t.Error("average strategy lookup should not allocate an entry")
	}
}

func TestStrategyTable_RegretMatching(t *testing.T) {
	tree := mustTree(t, smallConfig())
	st := NewStrategyTable(tree, DefaultParams())
	node := openingNode(tree)
	hand := holdem.HandBucket(3)

	st.UpdateRegret(node, hand, 0, 1.0)
	st.UpdateRegret(node, hand, 1, 3.0)
	st.UpdateRegret(node, hand, 2, -5.0)

	s := st.GetStrategy(node, hand, 2.0)
	if s[0] != 0.25 || s[1] != 0.75 || s[2] != 0 {
		t.Errorf("unexpected strategy: %v", s)
	}

	for i, r := range st.Regrets(node, hand) {
		if r < 0 {
			t.Errorf("regret %d is negative: %v", i, r)
		}
	}

	avg := st.GetAverageStrategy(node, hand)
	if avg[0] != 0.25 || avg[1] != 0.75 {
		t.Errorf("unexpected average strategy: %v", avg)
	}
}

func TestStrategyTable_VanillaKeepsNegativeRegret(t *testing.T) {
	tree := mustTree(t, smallConfig())
	st := NewStrategyTable(tree, Params{})
	node := openingNode(tree)

	st.UpdateRegret(node, 0, 0, -2.0)
	if r := st.Regrets(node, 0); r[0] != -2.0 {
		t.Errorf("expected regret -2, got %v", r[0])
	}

	s := st.GetStrategy(node, 0, 1.0)
	checkDistribution(t, s, len(tree.Node(node).Children))
}

func TestStrategyTable_MasksHandByStreet(t *testing.T) {
	tree := mustTree(t, smallConfig())
	st := NewStrategyTable(tree, DefaultParams())
	r := tree.Config.Resolution()

	var flopNode holdem.NodeID = -1
	for id, n := range tree.Nodes {
		if n.Street == holdem.Flop && !n.IsTerminal() && len(n.Children) > 1 {
			flopNode = holdem.NodeID(id)
			break
		}
	}
	if flopNode < 0 {
		t.Fatal("no flop decision node in tree")
	}

	a := holdem.PackBucket(r, [4]int{2, 1, 0, 3})
	b := holdem.PackBucket(r, [4]int{2, 1, 3, 0})
	c := holdem.PackBucket(r, [4]int{2, 2, 0, 3})

	st.UpdateRegret(flopNode, a, 0, 1.0)
	if got := st.Regrets(flopNode, b); got == nil || got[0] != 1.0 {
		t.Errorf("hands agreeing up to the flop should share regrets, got %v", got)
	}

	if st.Visited(flopNode, c) {
		t.Error("hands differing on the flop should not share an entry")
	}
}

func TestTerminalValue(t *testing.T) {
	fold := &holdem.Node{Seat: 0, Actor: holdem.NoActor, Street: holdem.Folded, Payoff: 3}
	if v := terminalValue(fold, Traversal{Player: 0}, 0.5); v != -1.5 {
		t.Errorf("folding seat should lose, got %v", v)
	}

	if v := terminalValue(fold, Traversal{Player: 1}, 0.5); v != 1.5 {
		t.Errorf("other seat should win, got %v", v)
	}

	show := &holdem.Node{Seat: 1, Actor: holdem.NoActor, Street: holdem.Showdown, Payoff: 4}
	if v := terminalValue(show, Traversal{Player: 1, Winner: NoWinner}, 1.0); v != 0 {
		t.Errorf("tie should be worth 0, got %v", v)
	}

	if v := terminalValue(show, Traversal{Player: 1, Winner: 1}, 1.0); v != 4 {
		t.Errorf("winner should gain the payoff, got %v", v)
	}

	if v := terminalValue(show, Traversal{Player: 0, Winner: 1}, 1.0); v != -4 {
		t.Errorf("loser should lose the payoff, got %v", v)
	}
}

func TestWinnerSeat(t *testing.T) {
	for _, tc := range []struct {
		winner, player, expected int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
		{NoWinner, 0, NoWinner},
		{NoWinner, 1, NoWinner},
	} {
		if got := winnerSeat(tc.winner, tc.player); got != tc.expected {
			t.Errorf("winnerSeat(%d, %d) = %d, expected %d",
				tc.winner, tc.player, got, tc.expected)
		}
	}
}

func TestCFRPlus_Invariants(t *testing.T) {
	sampler := &fixedSampler{deals: []Deal{
		{Hand: 0x0003, Winner: 0},
		{Hand: 0x1110, Winner: 1},
		{Hand: 0x2201, Winner: NoWinner},
	}}

	trainer, err := NewTrainer(smallConfig(), sampler, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	result, err := trainer.Train(300, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Hands) != 3 {
		t.Errorf("expected 3 sampled hands, got %d", len(result.Hands))
	}

	checkTable(t, result)
}

func TestExternalSampling_Invariants(t *testing.T) {
	sampler := &fixedSampler{deals: []Deal{
		{Hand: 0x0102, Winner: 0},
		{Hand: 0x0300, Winner: 1},
	}}

	params := DefaultParams()
	params.SampleOpponentActions = true
	params.Seed = 7
	trainer, err := NewTrainer(smallConfig(), sampler, params)
	if err != nil {
		t.Fatal(err)
	}

	result, err := trainer.Train(1000, nil)
	if err != nil {
		t.Fatal(err)
	}

	checkTable(t, result)
}

func TestOutcomeSampling_Invariants(t *testing.T) {
	sampler := &fixedSampler{deals: []Deal{
		{Hand: 0x0102, Winner: 0},
		{Hand: 0x0300, Winner: 1},
		{Hand: 0x0001, Winner: NoWinner},
	}}

	params := DefaultParams()
	params.SampleAllActions = true
	params.Seed = 11
	trainer, err := NewTrainer(smallConfig(), sampler, params)
	if err != nil {
		t.Fatal(err)
	}

	result, err := trainer.Train(2000, nil)
	if err != nil {
		t.Fatal(err)
	}

	checkTable(t, result)
	if !result.Table.Visited(openingNode(result.Tree), 0x0102) {
		t.Error("expected opening node to be visited")
	}
}

func TestOutcomeSampling_Deterministic(t *testing.T) {
	train := func() *Result {
		params := DefaultParams()
		params.SampleAllActions = true
		params.Seed = 3
		sampler := &fixedSampler{deals: []Deal{{Hand: 0x0102, Winner: 0}}}
		trainer, err := NewTrainer(smallConfig(), sampler, params)
		if err != nil {
			t.Fatal(err)
		}

		result, err := trainer.Train(200, nil)
		if err != nil {
			t.Fatal(err)
		}

		return result
	}

	a, b := train(), train()
	node := openingNode(a.Tree)
	pa := a.Table.GetAverageStrategy(node, 0x0102)
	pb := b.Table.GetAverageStrategy(node, 0x0102)
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("runs with the same seed diverged: %v vs %v", pa, pb)
		}
	}
}

func TestNewOutcomeSampling_InvalidExploration(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for zero exploration")
		}
	}()

	NewOutcomeSampling(NewStrategyTable(mustTree(t, smallConfig()), DefaultParams()), rand.New(rand.NewSource(1)), 0)
}

func TestParams_String(t *testing.T) {
	for _, tc := range []struct {
		params   Params
		expected string
	}{
		{Params{}, "vanilla CFR"},
		{DefaultParams(), "CFR+"},
		{Params{UseRegretMatchingPlus: true, SampleOpponentActions: true}, "external sampling CFR+"},
		{Params{SampleAllActions: true}, "outcome sampling CFR"},
	} {
		if got := tc.params.String(); got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, got)
		}
	}
}

func checkTable(t *testing.T, result *Result) {
	tree := result.Tree
	for _, hand := range result.SortedHands() {
		for id, n := range tree.Nodes {
			if n.IsTerminal() {
				continue
			}

			node := holdem.NodeID(id)
			checkDistribution(t, result.Table.GetAverageStrategy(node, hand), len(n.Children))
			for i, r := range result.Table.Regrets(node, hand) {
				if r < 0 {
					t.Errorf("node %v: regret %d is negative: %v", &n, i, r)
				}
			}
		}
	}
}

func TestTrainer_Converges(t *testing.T) {
	cfg := smallConfig()
	hand := holdem.HandBucket(0x0001)
	sampler := &fixedSampler{deals: []Deal{{Hand: hand, Winner: 0}}}
	trainer, err := NewTrainer(cfg, sampler, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := trainer.Train(5000, nil); err != nil {
		t.Fatal(err)
	}

	node := openingNode(trainer.Tree())
	before := trainer.Table().GetAverageStrategy(node, hand)
	if _, err := trainer.Train(5000, nil); err != nil {
		t.Fatal(err)
	}

	after := trainer.Table().GetAverageStrategy(node, hand)
	t.Logf("Opening strategy: %v -> %v", before, after)
	for i := range before {
		if d := math.Abs(float64(after[i] - before[i])); d > 1e-2 {
			t.Errorf("action %d moved by %v after further training", i, d)
		}
	}
}

func TestTrainer_Progress(t *testing.T) {
	sampler := &fixedSampler{deals: []Deal{{Hand: 1}}}
	trainer, err := NewTrainer(smallConfig(), sampler, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	var calls []int
	if _, err := trainer.Train(5, func(i int) { calls = append(calls, i) }); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 5 || calls[4] != 4 {
		t.Errorf("unexpected progress calls: %v", calls)
	}

	if trainer.Table().Iter() != 6 {
		t.Errorf("expected iteration 6, got %d", trainer.Table().Iter())
	}

	if _, err := trainer.Train(-1, nil); err == nil {
		t.Error("expected error for negative iterations")
	}
}

func TestNewTrainer_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Raises = nil
	if _, err := NewTrainer(cfg, &fixedSampler{}, DefaultParams()); err == nil {
		t.Error("expected config error")
	}
}

func TestStrategyTable_Checkpoint(t *testing.T) {
	sampler := &fixedSampler{deals: []Deal{
		{Hand: 0x0011, Winner: 0},
		{Hand: 0x0102, Winner: 1},
	}}

	trainer, err := NewTrainer(smallConfig(), sampler, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	result, err := trainer.Train(200, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := result.Table.MarshalTo(&buf); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadStrategyTable(&buf, result.Tree)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != result.Table.Len() || loaded.Iter() != result.Table.Iter() {
		t.Fatalf("loaded table has %d entries at iter %d, expected %d at %d",
			loaded.Len(), loaded.Iter(), result.Table.Len(), result.Table.Iter())
	}

	// Training must resume from the restored accumulators.
	fresh, err := NewTrainer(smallConfig(), sampler, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	if err := fresh.Restore(loaded); err == nil {
		t.Error("expected error restoring a table for another tree instance")
	}

	if err := trainer.Restore(loaded); err != nil {
		t.Fatal(err)
	}

	hands := loaded.RiverHands()
	if len(hands) != 2 {
		t.Errorf("expected 2 river hands, got %v", hands)
	}

	for _, h := range []holdem.HandBucket{0x0011, 0x0102} {
		if _, ok := hands[h]; !ok {
			t.Errorf("expected hand %v among restored hands %v", h, hands)
		}
	}

	if _, err := trainer.Train(10, nil); err != nil {
		t.Fatal(err)
	}

	other := mustTree(t, smallConfig())
	if err := trainer.Restore(NewStrategyTable(other, DefaultParams())); err == nil {
		t.Error("expected error restoring a table for another tree")
	}
}

func BenchmarkCFRPlus(b *testing.B) {
	tree := mustTree(b, smallConfig())
	st := NewStrategyTable(tree, DefaultParams())
	algo := New(st)
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hand := holdem.HandBucket(rng.Intn(1 << 16))
		algo.Run(Traversal{Player: i % 2, Hand: hand, Winner: rng.Intn(2)})
		st.Update()
	}
}
