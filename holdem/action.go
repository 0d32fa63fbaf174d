package holdem

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

type ActionType uint8

const (
	Fold ActionType = iota
	Call
	Raise
	AllIn
)

var actionTypeStr = [...]string{
	"Fold",
	"Call",
	"Raise",
	"AllIn",
}

func (t ActionType) String() string {
	return actionTypeStr[t]
}

// Action is a single betting decision. Amount is the chip delta requested
// beyond the current bet. For AllIn it holds the all-in target, which is
// reduced by Saturate to the delta actually committed.
type Action struct {
	Type   ActionType
	Amount int16
}

// Initial is the action stored at the root of the tree: the small blind
// posted as a raise.
func Initial(smallBlind int) Action {
	return Action{Type: Raise, Amount: int16(smallBlind)}
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return fmt.Sprintf("[%v %d]", a.Type, a.Amount)
}

// Code returns the short form used in action histories: the first letter
// of the action type, followed by the amount if it is non-zero.
func (a Action) Code() string {
	c := actionTypeStr[a.Type][:1]
	if a.Amount == 0 {
		return c
	}

	return c + strconv.Itoa(int(a.Amount))
}

// ParseAction is the inverse of Action.Code.
func ParseAction(code string) (Action, error) {
	if code == "" {
		return Action{}, errors.New("empty action code")
	}

	var t ActionType
	switch code[0] {
	case 'F':
		t = Fold
	case 'C':
		t = Call
	case 'R':
		t = Raise
	case 'A':
		t = AllIn
	default:
		return Action{}, errors.Errorf("unknown action code: %q", code)
	}

	var amount int
	if len(code) > 1 {
		var err error
		amount, err = strconv.Atoi(code[1:])
		if err != nil {
			return Action{}, errors.Wrapf(err, "invalid amount in action code %q", code)
		}
	}

	return Action{Type: t, Amount: int16(amount)}, nil
}

// Saturate caps the action at the bankroll given the largest investment
// made so far by any player. AllIn is reduced to the remaining stack; a
// Raise that would take the total past the bankroll is dropped (ok=false)
// since the AllIn alternative always covers it.
func (a Action) Saturate(maxInvested, bankroll int) (Action, bool) {
	switch a.Type {
	case AllIn:
		return Action{Type: AllIn, Amount: a.Amount - int16(maxInvested)}, true
	case Raise:
		if int(a.Amount)+maxInvested > bankroll {
			return Action{}, false
		}
	}

	return a, true
}
