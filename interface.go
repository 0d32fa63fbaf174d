// Package cfr trains heads-up betting strategies for a holdem.Tree with
// counterfactual regret minimization.
package cfr

import (
	"github.com/timpalpant/holdem-cfr/holdem"
)

// NoWinner marks a showdown that is tied.
const NoWinner = -1

// Traversal fixes the sampled quantities of a single pass over the tree.
type Traversal struct {
	// Player is the focal seat whose regrets are updated.
	Player int
	// Hand is the packed hand bucket used to look up strategies.
	Hand holdem.HandBucket
	// Winner is the seat that wins at showdown, or NoWinner.
	Winner int
}

// Algorithm computes the counterfactual value of the tree for one
// traversal, updating the focal player's regrets along the way.
type Algorithm interface {
	Run(t Traversal) float32
}

// Deal is one Monte-Carlo sample of the cards, abstracted into buckets.
type Deal struct {
	Hand    holdem.HandBucket
	OppHand holdem.HandBucket
	// Winner is 0 if Hand wins at showdown, 1 if OppHand wins,
	// or NoWinner on a tie.
	Winner int
}

// HandSampler produces the deals used for training.
type HandSampler interface {
	Sample() Deal
}
