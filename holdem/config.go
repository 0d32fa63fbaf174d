package holdem

import (
	"fmt"
)

// DefaultHandResolution is the number of bucket slots reserved per street
// when packing a HandBucket.
const DefaultHandResolution = 16

// GameConfig describes the betting structure of the game.
type GameConfig struct {
	SmallBlind int `yaml:"small_blind" json:"smallBlind"`
	BigBlind   int `yaml:"big_blind" json:"bigBlind"`
	// Raise sizes available on each betting street, indexed by Street.
	Raises   [][]int `yaml:"raises" json:"raises"`
	Reraises int     `yaml:"reraises" json:"reraises"`
	Bankroll int     `yaml:"bankroll" json:"bankroll"`
	Players  int     `yaml:"players" json:"players"`
	// If set, raise sizes are percentages of the pot rather than chips.
	RelativeBetting bool `yaml:"relative_betting" json:"relativeBetting"`
	HandResolution  int  `yaml:"hand_resolution" json:"handResolution"`
}

// DefaultConfig returns the configuration used when none is provided.
func DefaultConfig() GameConfig {
	return GameConfig{
		SmallBlind: 1,
		BigBlind:   2,
		Raises: [][]int{
			{4, 6},
			{6, 12},
			{10, 20},
			{15, 25},
		},
		Reraises:       1,
		Bankroll:       100,
		Players:        2,
		HandResolution: DefaultHandResolution,
	}
}

// Resolution returns the hand-bucket packing base, falling back to
// DefaultHandResolution when unset.
func (c GameConfig) Resolution() int {
	if c.HandResolution <= 0 {
		return DefaultHandResolution
	}

	return c.HandResolution
}

// ConfigError is returned when a GameConfig cannot describe a game tree.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid game config: %s: %s", e.Field, e.Reason)
}

// Validate returns a *ConfigError if the configuration cannot describe a
// heads-up game tree.
func (c GameConfig) Validate() error {
	if len(c.Raises) != NumBettingStreets {
		return &ConfigError{
			Field: "raises",
			Reason: fmt.Sprintf("need %d rows (PreFlop, Flop, Turn, River), got %d",
				NumBettingStreets, len(c.Raises)),
		}
	}

	switch {
	case c.SmallBlind <= 0:
		return &ConfigError{Field: "small_blind", Reason: "must be positive"}
	case c.BigBlind < c.SmallBlind:
		return &ConfigError{Field: "big_blind", Reason: "must be at least the small blind"}
	case c.Bankroll < c.BigBlind:
		return &ConfigError{Field: "bankroll", Reason: "must cover the big blind"}
	case c.Players != 2:
		return &ConfigError{Field: "players", Reason: fmt.Sprintf("only heads-up is supported, got %d", c.Players)}
	case c.Reraises < 0:
		return &ConfigError{Field: "reraises", Reason: "must not be negative"}
	}

	return nil
}
