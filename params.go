package cfr

// Params are the configuration options for regret matching.
// An empty Params struct is valid and corresponds to "vanilla" CFR.
type Params struct {
	UseRegretMatchingPlus bool // CFR+
	LinearWeighting       bool // Linear averaging of the strategy sum
	SampleOpponentActions bool // External Sampling
	SampleAllActions      bool // Outcome Sampling
	// ExplorationDelta is the off-policy exploration of outcome sampling.
	ExplorationDelta float32
	// Seed of the random source used to sample opponent actions.
	Seed int64
}

// DefaultParams returns the CFR+ configuration.
func DefaultParams() Params {
	return Params{UseRegretMatchingPlus: true}
}

// strategyWeight is the multiplier applied to the reach weight when
// accumulating the strategy sum on the given iteration.
func (p Params) strategyWeight(iter int) float32 {
	if p.LinearWeighting {
		return float32(iter)
	}

	return 1.0
}

func (p Params) String() string {
	switch {
	case p.SampleAllActions && p.UseRegretMatchingPlus:
		return "outcome sampling CFR+"
	case p.SampleAllActions:
		return "outcome sampling CFR"
	case p.SampleOpponentActions && p.UseRegretMatchingPlus:
		return "external sampling CFR+"
	case p.SampleOpponentActions:
		return "external sampling CFR"
	case p.UseRegretMatchingPlus:
		return "CFR+"
	}

	return "vanilla CFR"
}

func (p Params) explorationDelta() float32 {
	if p.ExplorationDelta <= 0 {
		return DefaultExplorationDelta
	}

	return p.ExplorationDelta
}
