// Package hands samples random deals and abstracts each player's cards into
// a per-street hand bucket.
package hands

import (
	"fmt"

	"github.com/paulhankin/poker"
)

const (
	numSuits = 4
	numRanks = 13
	// DeckSize is the number of cards in a standard deck.
	DeckSize = numSuits * numRanks
)

// Card is a playing card. Rank runs from 2 to 14 (Ace), Suit from 0 to 3.
type Card struct {
	Rank int
	Suit int
}

var rankStr = "23456789TJQKA"
var suitStr = "cdhs"

// String implements fmt.Stringer.
func (c Card) String() string {
	return fmt.Sprintf("%c%c", rankStr[c.Rank-2], suitStr[c.Suit])
}

// NewDeck returns the 52 cards of a standard deck in a fixed order.
func NewDeck() [DeckSize]Card {
	var deck [DeckSize]Card
	for r := 0; r < numRanks; r++ {
		for s := 0; s < numSuits; s++ {
			deck[r*numSuits+s] = Card{Rank: r + 2, Suit: s}
		}
	}

	return deck
}

var suits = [numSuits]poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade}

// toPoker converts a Card for the evaluator, which numbers the Ace as 1.
func toPoker(c Card) poker.Card {
	r := poker.Rank(c.Rank)
	if c.Rank == 14 {
		r = poker.Rank(1)
	}

	pc, err := poker.MakeCard(suits[c.Suit], r)
	if err != nil {
		panic(fmt.Errorf("invalid card %v: %v", c, err))
	}

	return pc
}

// Score evaluates the best five-card hand among 5 to 7 cards. Higher scores
// win.
func Score(cards []Card) int16 {
	switch len(cards) {
	case 7:
		var a7 [7]poker.Card
		for i, c := range cards {
			a7[i] = toPoker(c)
		}
		return poker.Eval7(&a7)
	case 5:
		var a5 [5]poker.Card
		for i, c := range cards {
			a5[i] = toPoker(c)
		}
		return poker.Eval5(&a5)
	case 6:
		return bestOfFiveSubsets(cards)
	}

	panic(fmt.Errorf("cannot score %d cards", len(cards)))
}

// bestOfFiveSubsets scores six cards by leaving out each card in turn.
func bestOfFiveSubsets(cards []Card) int16 {
	best := int16(-1 << 15)
	var five [5]poker.Card
	for skip := range cards {
		k := 0
		for i, c := range cards {
			if i != skip {
				five[k] = toPoker(c)
				k++
			}
		}

		if score := poker.Eval5(&five); score > best {
			best = score
		}
	}

	return best
}
