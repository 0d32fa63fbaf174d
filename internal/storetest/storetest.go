// Package storetest provides a conformance check shared by the
// store.Store backends.
package storetest

import (
	"context"
	"math"
	"testing"

	"github.com/timpalpant/holdem-cfr"
	"github.com/timpalpant/holdem-cfr/hands"
	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/store"
	"github.com/timpalpant/holdem-cfr/tree"
)

// Config is a small game that only allows raising pre-flop.
func Config() holdem.GameConfig {
	cfg := holdem.DefaultConfig()
	cfg.Raises = [][]int{{4}, {}, {}, {}}
	cfg.Bankroll = 10
	return cfg
}

// Train returns a briefly trained result over a few fixed hands.
func Train(t testing.TB) *cfr.Result {
	sampler := &hands.Fixed{Deals: []cfr.Deal{
		{Hand: 0x0003, Winner: 0},
		{Hand: 0x0013, Winner: 1},
		{Hand: 0x3210, Winner: cfr.NoWinner},
	}}

	trainer, err := cfr.NewTrainer(Config(), sampler, cfr.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	result, err := trainer.Train(50, nil)
	if err != nil {
		t.Fatal(err)
	}

	return result
}

// Run exports a trained result into s and checks that every row can be
// read back.
func Run(t *testing.T, s store.Store) {
	ctx := context.Background()
	result := Train(t)
	n, err := store.Export(ctx, s, result, 64, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Logf("Exported %d rows", n)
	tree.VisitWithHistory(result.Tree, func(id holdem.NodeID, node *holdem.Node, history string) {
		row, err := s.Node(ctx, history)
		if err != nil {
			t.Errorf("node %q: %v", history, err)
			return
		}

		if row.Street != node.Street || row.Seat != int(node.Seat) {
			t.Errorf("node %q: got street %v seat %d, expected %v %d",
				history, row.Street, row.Seat, node.Street, node.Seat)
		}

		for _, hand := range result.SortedHands() {
			effective := result.Table.EffectiveHand(id, hand)
			row, err := s.Strategy(ctx, effective, history)
			if err != nil {
				t.Errorf("strategy %v %q: %v", effective, history, err)
				continue
			}

			checkRow(t, result, id, node, effective, row)
		}
	})

	if _, err := s.Node(ctx, "R1,X"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := s.Strategy(ctx, 0xFFFF, "R1,R1"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func checkRow(t *testing.T, result *cfr.Result, id holdem.NodeID, node *holdem.Node, hand holdem.HandBucket, row *store.Row) {
	if node.IsTerminal() {
		if row.Payoff == nil || *row.Payoff != node.Payoff {
			t.Errorf("%q: expected payoff %d, got %v", row.History, node.Payoff, row.Payoff)
		}

		if row.NextSeat != nil || len(row.Actions) != 0 || len(row.Strategy) != 0 {
			t.Errorf("%q: terminal row has actions: %+v", row.History, row)
		}

		return
	}

	if row.Payoff != nil {
		t.Errorf("%q: non-terminal row has payoff %d", row.History, *row.Payoff)
	}

	if row.NextSeat == nil || *row.NextSeat != int(node.Actor) {
		t.Errorf("%q: expected next seat %d, got %v", row.History, node.Actor, row.NextSeat)
	}

	codes := result.Tree.ChildCodes(id)
	if len(row.Actions) != len(codes) {
		t.Fatalf("%q: expected actions %v, got %v", row.History, codes, row.Actions)
	}

	for i := range codes {
		if row.Actions[i] != codes[i] {
			t.Errorf("%q: expected actions %v, got %v", row.History, codes, row.Actions)
		}
	}

	expected := result.Table.GetAverageStrategy(id, hand)
	if len(row.Strategy) != len(expected) {
		t.Fatalf("%q: expected strategy %v, got %v", row.History, expected, row.Strategy)
	}

	for i := range expected {
		if math.Abs(float64(row.Strategy[i]-expected[i])) > 1e-6 {
			t.Errorf("%q: expected strategy %v, got %v", row.History, expected, row.Strategy)
			break
		}
	}
}
