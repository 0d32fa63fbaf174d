// Command replay plays two exported strategies against each other and
// prints the running bank of each after every hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/config"
	"github.com/timpalpant/holdem-cfr/hands"
	"github.com/timpalpant/holdem-cfr/internal/backends"
	"github.com/timpalpant/holdem-cfr/replay"
	"github.com/timpalpant/holdem-cfr/sqlstore"
	"github.com/timpalpant/holdem-cfr/store"
)

func main() {
	configFile := flag.String("config", "", "Config the strategies were trained with")
	backend := flag.String("store", "", "Storage backend of both strategies (overrides config)")
	dsnA := flag.String("dsn1", "", "Connection string or path of the first strategy")
	tableA := flag.String("table1", "nodes1", "Table of the first strategy")
	dsnB := flag.String("dsn2", "", "Connection string or path of the second strategy (defaults to -dsn1)")
	tableB := flag.String("table2", "nodes1", "Table of the second strategy")
	numHands := flag.Int("n", 1000, "Number of hands to play (0 to play until interrupted)")
	tabular := flag.Bool("tabular", false, "Tab separated output")
	history := flag.Bool("history", false, "Print a detailed playing history")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		glog.Fatal(err)
	}

	if *backend != "" {
		cfg.Store.Backend = *backend
	}

	if *dsnB == "" {
		*dsnB = *dsnA
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a, err := openStrategy(ctx, cfg.Store.Backend, *dsnA, *tableA)
	if err != nil {
		glog.Fatal(err)
	}
	defer a.Close()

	b := a
	if *dsnB != *dsnA || *tableB != *tableA {
		b, err = openStrategy(ctx, cfg.Store.Backend, *dsnB, *tableB)
		if err != nil {
			glog.Fatal(err)
		}
		defer b.Close()
	}

	sampler := hands.NewGenerator(hands.Params{
		Resolution:      cfg.Game.Resolution(),
		TwoPlayer:       true,
		StrengthSamples: cfg.Training.StrengthSamples,
		Seed:            *seed,
	})

	params := replay.Params{
		SmallBlind: cfg.Game.SmallBlind,
		Resolution: cfg.Game.Resolution(),
		Seed:       *seed,
	}

	if *history {
		params.History = os.Stdout
		fmt.Println("LEGEND:")
		fmt.Println("START Player1Hand Player2Hand WinningPlayer")
		fmt.Println("PlayerHand Player Seat NextAction History")
	}

	n := *numHands
	if n <= 0 {
		n = math.MaxInt32
	}

	player := replay.New(a, b, sampler, params)
	bank, err := player.Run(ctx, n, func(i int, o *replay.Outcome, bank replay.Bank) {
		if *tabular {
			fmt.Printf("%d\t%d\t%d\t%d\n", i, o.Button, bank[0], bank[1])
		} else {
			fmt.Printf("%d. Pos=%d P1=%d P2=%d\n", i, o.Button, bank[0], bank[1])
		}
	})
	if err != nil && errors.Cause(err) != context.Canceled {
		glog.Fatal(err)
	}

	glog.Infof("Final bank: P1=%s P2=%s",
		humanize.Comma(int64(bank[0])), humanize.Comma(int64(bank[1])))
}

func openStrategy(ctx context.Context, backend, dsn, table string) (store.Store, error) {
	return backends.Open(ctx, backends.Options{
		Kind:  backend,
		DSN:   dsn,
		Table: table,
		Mode:  sqlstore.Existing,
	})
}
