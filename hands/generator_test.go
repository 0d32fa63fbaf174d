package hands

import (
	"testing"

	"github.com/timpalpant/holdem-cfr"
	"github.com/timpalpant/holdem-cfr/holdem"
)

func c(rank, suit int) Card {
	return Card{Rank: rank, Suit: suit}
}

func TestPreflopLevel(t *testing.T) {
	for _, tc := range []struct {
		hole     [2]Card
		expected int
	}{
		{[2]Card{c(5, 0), c(5, 1)}, 3},
		{[2]Card{c(14, 0), c(12, 1)}, 2},
		{[2]Card{c(9, 2), c(8, 2)}, 2},
		{[2]Card{c(9, 2), c(8, 3)}, 1},
		{[2]Card{c(14, 0), c(7, 0)}, 0},
		{[2]Card{c(2, 0), c(3, 1)}, 0},
	} {
		if got := PreflopLevel(tc.hole); got != tc.expected {
			t.Errorf("%v: expected level %d, got %d", tc.hole, tc.expected, got)
		}
	}
}

func TestScore(t *testing.T) {
	board := []Card{c(2, 0), c(7, 1), c(9, 2), c(13, 3), c(4, 0)}
	pair := append([]Card{c(9, 0), c(3, 1)}, board...)
	high := append([]Card{c(14, 1), c(3, 2)}, board...)
	if Score(pair) <= Score(high) {
		t.Errorf("expected pair of nines to beat ace high")
	}

	flush := []Card{c(2, 1), c(5, 1), c(9, 1), c(11, 1), c(13, 1)}
	straight := []Card{c(5, 0), c(6, 1), c(7, 2), c(8, 3), c(9, 0)}
	if Score(flush) <= Score(straight) {
		t.Errorf("expected flush to beat straight")
	}

	six := []Card{c(5, 0), c(6, 1), c(7, 2), c(8, 3), c(9, 0), c(2, 2)}
	if Score(six) != Score(straight) {
		t.Errorf("expected best five of six cards to be the straight")
	}
}

func TestDeal_Winner(t *testing.T) {
	d := Deal{
		Hero:  [2]Card{c(14, 0), c(14, 1)},
		Opp:   [2]Card{c(3, 2), c(8, 3)},
		Board: [5]Card{c(2, 0), c(7, 1), c(9, 2), c(13, 3), c(4, 0)},
	}
	if w := d.Winner(); w != 0 {
		t.Errorf("expected hero to win, got %d", w)
	}

	d.Hero, d.Opp = d.Opp, d.Hero
	if w := d.Winner(); w != 1 {
		t.Errorf("expected opponent to win, got %d", w)
	}

	d.Hero = [2]Card{c(3, 0), c(2, 1)}
	d.Opp = [2]Card{c(3, 1), c(2, 2)}
	d.Board = [5]Card{c(10, 0), c(11, 1), c(12, 2), c(13, 3), c(14, 0)}
	if w := d.Winner(); w != cfr.NoWinner {
		t.Errorf("expected split pot on board straight, got %d", w)
	}
}

func TestGenerator_Deal(t *testing.T) {
	g := NewGenerator(DefaultParams())
	for i := 0; i < 100; i++ {
		d := g.Deal()
		seen := make(map[Card]bool)
		for _, card := range append(d.HeroCards(5), d.Opp[:]...) {
			if seen[card] {
				t.Fatalf("card %v dealt twice in %+v", card, d)
			}
			seen[card] = true
		}
	}
}

func TestGenerator_Sample(t *testing.T) {
	params := DefaultParams()
	params.TwoPlayer = true
	params.StrengthSamples = 16
	g := NewGenerator(params)
	r := params.Resolution

	for i := 0; i < 200; i++ {
		deal := g.Sample()
		for _, h := range []holdem.HandBucket{deal.Hand, deal.OppHand} {
			for s := holdem.PreFlop; s <= holdem.River; s++ {
				if level := h.Component(r, s); level < 0 || level >= NumLevels {
					t.Errorf("bucket %v has level %d on %v", h, level, s)
				}
			}
		}

		if deal.Winner != 0 && deal.Winner != 1 && deal.Winner != cfr.NoWinner {
			t.Errorf("invalid winner %d", deal.Winner)
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(DefaultParams())
	b := NewGenerator(DefaultParams())
	for i := 0; i < 20; i++ {
		if da, db := a.Sample(), b.Sample(); da != db {
			t.Fatalf("samples diverged at %d: %+v vs %+v", i, da, db)
		}
	}
}

func TestGenerator_StrongHandBucket(t *testing.T) {
	g := NewGenerator(DefaultParams())
	hole := [2]Card{c(14, 0), c(14, 1)}
	board := [5]Card{c(14, 2), c(14, 3), c(2, 0), c(7, 1), c(9, 2)}
	h := g.Bucket(hole, board)
	for s := holdem.PreFlop; s <= holdem.River; s++ {
		if level := h.Component(DefaultParams().Resolution, s); level != NumLevels-1 {
			t.Errorf("expected top level for quad aces on %v, got %d", s, level)
		}
	}
}

func TestFixed(t *testing.T) {
	f := &Fixed{Deals: []cfr.Deal{{Hand: 1}, {Hand: 2}}}
	got := []holdem.HandBucket{f.Sample().Hand, f.Sample().Hand, f.Sample().Hand}
	if got[0] != 1 || got[1] != 2 || got[2] != 1 {
		t.Errorf("unexpected sequence: %v", got)
	}
}
