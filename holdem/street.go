package holdem

type Street uint8

const (
	PreFlop Street = iota
	Flop
	Turn
	River
	Showdown
	Folded
)

// NumBettingStreets is the number of non-terminal streets.
const NumBettingStreets = int(River) + 1

var streetStr = [...]string{
	"PreFlop",
	"Flop",
	"Turn",
	"River",
	"Showdown",
	"Fold",
}

func (s Street) String() string {
	return streetStr[s]
}

// Terminal returns true for the Showdown and Fold streets.
func (s Street) Terminal() bool {
	return s == Showdown || s == Folded
}
