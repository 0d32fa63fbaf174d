// Package replay plays two exported strategies against each other over
// randomly dealt hands and keeps a running bank for each of them.
package replay

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr"
	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/internal/sampling"
	"github.com/timpalpant/holdem-cfr/store"
)

// maxActions bounds the length of a single hand.
const maxActions = 1000

type Params struct {
	SmallBlind int
	// Resolution is the hand bucket packing base the strategies were
	// trained with.
	Resolution int
	Seed       int64
	// History, if non-nil, receives a line for every deal and action.
	History io.Writer
}

func DefaultParams() Params {
	cfg := holdem.DefaultConfig()
	return Params{
		SmallBlind: cfg.SmallBlind,
		Resolution: cfg.Resolution(),
		Seed:       1,
	}
}

// Bank holds the cumulative winnings of the two bots.
type Bank [2]int

// Outcome is the result of one played hand.
type Outcome struct {
	// Button is the bot sitting in seat 0.
	Button int
	// Hands are the hand buckets dealt to each bot.
	Hands  [2]holdem.HandBucket
	Winner int
	// History is the full action history of the hand.
	History string
	Street  holdem.Street
	// Delta is the amount won by each bot.
	Delta [2]int
}

// Player replays hands between two strategy stores. Bot i reads from
// readers[i].
type Player struct {
	params  Params
	readers [2]store.Reader
	sampler cfr.HandSampler
	rng     *rand.Rand
}

// New returns a Player for the bots a and b. The sampler must deal both
// players' hand buckets.
func New(a, b store.Reader, sampler cfr.HandSampler, params Params) *Player {
	return &Player{
		params:  params,
		readers: [2]store.Reader{a, b},
		sampler: sampler,
		rng:     rand.New(rand.NewSource(params.Seed)),
	}
}

// StartHistory is the history of the first node at which a real decision
// is made: the small blind's opening raise followed by the big blind's.
func StartHistory(smallBlind int) string {
	code := holdem.Initial(smallBlind).Code()
	return code + "," + code
}

// Run plays n hands, swapping seats after every hand. If fn is non-nil it
// is called after each hand with the updated bank.
func (p *Player) Run(ctx context.Context, n int, fn func(i int, o *Outcome, bank Bank)) (Bank, error) {
	var bank Bank
	button := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return bank, err
		}

		o, err := p.Play(ctx, button)
		if err != nil {
			return bank, errors.Wrapf(err, "playing hand %d", i+1)
		}

		bank[0] += o.Delta[0]
		bank[1] += o.Delta[1]
		if fn != nil {
			fn(i+1, o, bank)
		}

		button = 1 - button
	}

	return bank, nil
}

// Play deals and plays out a single hand with bot button in seat 0.
func (p *Player) Play(ctx context.Context, button int) (*Outcome, error) {
	deal := p.sampler.Sample()
	o := &Outcome{
		Button:  button,
		Hands:   [2]holdem.HandBucket{deal.Hand, deal.OppHand},
		Winner:  deal.Winner,
		History: StartHistory(p.params.SmallBlind),
	}

	p.logf("START\t%v\t%v\t%d\n", o.Hands[0], o.Hands[1], o.Winner)
	for n := 0; n < maxActions; n++ {
		node, err := p.readers[button].Node(ctx, o.History)
		if err != nil {
			return nil, errors.Wrapf(err, "reading node %q", o.History)
		}

		if node.IsTerminal() {
			p.settle(o, node)
			return o, nil
		}

		if node.NextSeat == nil || len(node.Actions) == 0 {
			return nil, errors.Errorf("node %q has no actions", o.History)
		}

		bot := *node.NextSeat ^ button
		code, err := p.choose(ctx, bot, o.Hands[bot], node)
		if err != nil {
			return nil, err
		}

		p.logf("%v\t%d\t%d\t%s\t%s\n", o.Hands[bot], bot, *node.NextSeat, code, o.History)
		o.History += "," + code
	}

	return nil, errors.Errorf("hand exceeded %d actions: %s", maxActions, o.History)
}

func (p *Player) choose(ctx context.Context, bot int, hand holdem.HandBucket, node *store.Row) (string, error) {
	effective := hand.At(p.params.Resolution, node.Street)
	row, err := p.readers[bot].Strategy(ctx, effective, node.History)
	if err == store.ErrNotFound {
		// Hands never sampled during training have no stored strategy.
		glog.V(2).Infof("Bot %d has no strategy for %v at %q, playing uniformly",
			bot, effective, node.History)
		row = &store.Row{Actions: node.Actions, Strategy: uniform(len(node.Actions))}
	} else if err != nil {
		return "", errors.Wrapf(err, "reading strategy of bot %d", bot)
	}

	if len(row.Strategy) != len(row.Actions) || len(row.Actions) == 0 {
		return "", errors.Errorf("bot %d has malformed strategy at %q: %v over %v",
			bot, node.History, row.Strategy, row.Actions)
	}

	return row.Actions[sampling.SampleOne(p.rng, row.Strategy)], nil
}

func (p *Player) settle(o *Outcome, node *store.Row) {
	o.Street = node.Street
	pay := 0
	if node.Payoff != nil {
		pay = *node.Payoff
	}

	switch node.Street {
	case holdem.Folded:
		folder := node.Seat ^ o.Button
		o.Delta[folder] -= pay
		o.Delta[1-folder] += pay
	case holdem.Showdown:
		if o.Winner != cfr.NoWinner {
			o.Delta[o.Winner] += pay
			o.Delta[1-o.Winner] -= pay
		}
	}

	glog.V(1).Infof("Hand %s ended on %v: %v", o.History, o.Street, o.Delta)
}

func (p *Player) logf(format string, args ...interface{}) {
	if p.params.History != nil {
		fmt.Fprintf(p.params.History, format, args...)
	}
}

func uniform(n int) []float32 {
	p := make([]float32, n)
	for i := range p {
		p[i] = 1.0 / float32(n)
	}

	return p
}
