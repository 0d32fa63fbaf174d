package hands

import (
	"math/rand"

	"github.com/golang/glog"

	"github.com/timpalpant/holdem-cfr"
	"github.com/timpalpant/holdem-cfr/holdem"
)

// NumLevels is the number of strength levels each street is bucketed into.
const NumLevels = 4

// Number of board cards visible on each betting street.
var boardCards = [holdem.NumBettingStreets]int{0, 3, 4, 5}

type Params struct {
	// Resolution is the hand bucket packing base.
	Resolution int
	// TwoPlayer also buckets the opponent's hand.
	TwoPlayer bool
	// StrengthSamples is the number of random opponent holdings used to
	// estimate post-flop hand strength.
	StrengthSamples int
	Seed            int64
}

func DefaultParams() Params {
	return Params{
		Resolution:      holdem.DefaultHandResolution,
		StrengthSamples: 64,
		Seed:            1,
	}
}

// Deal is a fully dealt hand: two hole cards per player and the board.
type Deal struct {
	Hero  [2]Card
	Opp   [2]Card
	Board [5]Card
}

// HeroCards returns the hero's hole cards followed by the first n board cards.
func (d *Deal) HeroCards(n int) []Card {
	return append(d.Hero[:2:2], d.Board[:n]...)
}

// OppCards returns the opponent's hole cards followed by the first n board cards.
func (d *Deal) OppCards(n int) []Card {
	return append(d.Opp[:2:2], d.Board[:n]...)
}

// Winner returns 0 if the hero wins at showdown, 1 if the opponent
// wins, or cfr.NoWinner on a tie.
func (d *Deal) Winner() int {
	hero, opp := Score(d.HeroCards(5)), Score(d.OppCards(5))
	switch {
	case hero > opp:
		return 0
	case opp > hero:
		return 1
	}

	return cfr.NoWinner
}

// Generator deals random hands and abstracts them into hand buckets.
// It implements cfr.HandSampler.
type Generator struct {
	params Params
	rng    *rand.Rand
	deck   [DeckSize]Card
}

func NewGenerator(params Params) *Generator {
	if params.Resolution <= 0 {
		params.Resolution = holdem.DefaultHandResolution
	}

	if params.Resolution < NumLevels {
		glog.Warningf("Hand resolution %d is below %d strength levels, using %d",
			params.Resolution, NumLevels, NumLevels)
		params.Resolution = NumLevels
	}

	return &Generator{
		params: params,
		rng:    rand.New(rand.NewSource(params.Seed)),
		deck:   NewDeck(),
	}
}

// Deal shuffles the deck and deals one hand.
func (g *Generator) Deal() Deal {
	cards := g.deck
	g.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	var d Deal
	copy(d.Hero[:], cards[0:2])
	copy(d.Board[:], cards[2:7])
	copy(d.Opp[:], cards[7:9])
	return d
}

// Sample implements cfr.HandSampler.
func (g *Generator) Sample() cfr.Deal {
	d := g.Deal()
	result := cfr.Deal{
		Hand:   g.Bucket(d.Hero, d.Board),
		Winner: d.Winner(),
	}

	if g.params.TwoPlayer {
		result.OppHand = g.Bucket(d.Opp, d.Board)
	}

	return result
}

// Bucket packs the strength level of the hole cards on every street.
func (g *Generator) Bucket(hole [2]Card, board [5]Card) holdem.HandBucket {
	var levels [holdem.NumBettingStreets]int
	levels[holdem.PreFlop] = PreflopLevel(hole)
	for street := holdem.Flop; street <= holdem.River; street++ {
		levels[street] = g.strengthLevel(hole, board[:boardCards[street]])
	}

	return holdem.PackBucket(g.params.Resolution, levels)
}

// PreflopLevel ranks two hole cards: 3 for a pair, 2 for two cards above
// ten or suited cards above seven, 1 for two cards above seven, 0 otherwise.
func PreflopLevel(hole [2]Card) int {
	a, b := hole[0], hole[1]
	switch {
	case a.Rank == b.Rank:
		return 3
	case a.Rank > 10 && b.Rank > 10,
		a.Rank > 7 && b.Rank > 7 && a.Suit == b.Suit:
		return 2
	case a.Rank > 7 && b.Rank > 7:
		return 1
	}

	return 0
}

// strengthLevel estimates the probability that the hand beats a random
// opponent holding on the current board and quantizes it.
func (g *Generator) strengthLevel(hole [2]Card, board []Card) int {
	strength := g.strength(hole, board)
	level := int(strength * NumLevels)
	if level >= NumLevels {
		level = NumLevels - 1
	}

	return level
}

func (g *Generator) strength(hole [2]Card, board []Card) float64 {
	used := make(map[Card]struct{}, 2+len(board))
	used[hole[0]] = struct{}{}
	used[hole[1]] = struct{}{}
	for _, c := range board {
		used[c] = struct{}{}
	}

	remaining := make([]Card, 0, DeckSize-len(used))
	for _, c := range g.deck {
		if _, ok := used[c]; !ok {
			remaining = append(remaining, c)
		}
	}

	hero := Score(append(hole[:2:2], board...))
	n := g.params.StrengthSamples
	if n <= 0 {
		n = 1
	}

	var wins float64
	opp := make([]Card, 2, 2+len(board))
	for i := 0; i < n; i++ {
		x := g.rng.Intn(len(remaining))
		y := g.rng.Intn(len(remaining) - 1)
		if y >= x {
			y++
		}

		opp = append(opp[:0], remaining[x], remaining[y])
		opp = append(opp, board...)
		switch score := Score(opp); {
		case hero > score:
			wins++
		case hero == score:
			wins += 0.5
		}
	}

	return wins / float64(n)
}

// Fixed replays a fixed sequence of deals. It implements cfr.HandSampler.
type Fixed struct {
	Deals []cfr.Deal
	i     int
}

// Sample implements cfr.HandSampler.
func (f *Fixed) Sample() cfr.Deal {
	d := f.Deals[f.i%len(f.Deals)]
	f.i++
	return d
}
