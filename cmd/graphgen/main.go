// Command graphgen builds the betting tree, trains a CFR strategy over it
// and exports the average strategy to a storage backend.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/timpalpant/holdem-cfr"
	"github.com/timpalpant/holdem-cfr/config"
	"github.com/timpalpant/holdem-cfr/export"
	"github.com/timpalpant/holdem-cfr/hands"
	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/internal/backends"
	"github.com/timpalpant/holdem-cfr/sqlstore"
	"github.com/timpalpant/holdem-cfr/store"
	"github.com/timpalpant/holdem-cfr/tree"
)

type options struct {
	configFile string
	xmlFile    string
	dotFile    string
	dotDepth   int
	genConf    string
	silent     bool

	iterations int
	table      string
	backend    string
	dsn        string
	drop       bool
	variant    string
	seed       int64
	checkpoint string
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "YAML, JSON or TOML config file (defaults if empty)")
	flag.StringVar(&opts.xmlFile, "xml", "", "Only write the betting tree as XML to this file")
	flag.StringVar(&opts.dotFile, "dot", "", "Only render the betting tree to this file (.dot, .svg or .png)")
	flag.IntVar(&opts.dotDepth, "depth", 4, "Maximum depth rendered with -dot (-1 for all)")
	flag.StringVar(&opts.genConf, "genconf", "", "Write the default config to this file and exit")
	flag.BoolVar(&opts.silent, "silent", false, "Do not show progress bars")
	flag.IntVar(&opts.iterations, "iter", 5000, "Number of training iterations")
	flag.StringVar(&opts.table, "table", config.Default().Store.Table, "Output table name")
	flag.StringVar(&opts.backend, "store", config.Default().Store.Backend, "Storage backend: "+strings.Join(backends.Kinds(), ", "))
	flag.StringVar(&opts.dsn, "dsn", "", "Storage connection string or path")
	flag.BoolVar(&opts.drop, "drop", false, "Replace an existing table instead of writing to a new one")
	flag.StringVar(&opts.variant, "variant", config.VariantCFRPlus, "Training variant: cfr+, vanilla, linear, external, outcome")
	flag.Int64Var(&opts.seed, "seed", 1, "Random seed")
	flag.StringVar(&opts.checkpoint, "checkpoint", "", "Strategy table checkpoint to resume from and save to")
	flag.Parse()

	if opts.genConf != "" {
		if err := writeDefaultConfig(opts.genConf); err != nil {
			glog.Fatal(err)
		}
		glog.Infof("Wrote default config to %s", opts.genConf)
		return
	}

	cfg, err := loadConfig(&opts)
	if err != nil {
		glog.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if opts.xmlFile != "" || opts.dotFile != "" {
		if err := writeTree(ctx, cfg, &opts); err != nil {
			glog.Fatal(err)
		}
		return
	}

	result, err := train(cfg, opts.silent)
	if err != nil {
		glog.Fatal(err)
	}

	if err := exportResult(ctx, cfg, result, opts.silent); err != nil {
		glog.Fatal(err)
	}
}

func writeDefaultConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := config.WriteDefault(f); err != nil {
		return err
	}

	return f.Close()
}

// loadConfig reads the config file and applies flags given explicitly on
// the command line on top of it.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "iter":
			cfg.Training.Iterations = opts.iterations
		case "variant":
			cfg.Training.Variant = opts.variant
		case "seed":
			cfg.Training.Seed = opts.seed
		case "checkpoint":
			cfg.Training.Checkpoint = opts.checkpoint
		case "table":
			cfg.Store.Table = opts.table
		case "store":
			cfg.Store.Backend = opts.backend
		case "dsn":
			cfg.Store.DSN = opts.dsn
		case "drop":
			cfg.Store.Drop = opts.drop
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeTree(ctx context.Context, cfg *config.Config, opts *options) error {
	t, err := holdem.NewTree(cfg.Game)
	if err != nil {
		return err
	}

	glog.Infof("Generated betting tree with %s nodes (%s terminal), depth %d",
		humanize.Comma(int64(tree.CountNodes(t))),
		humanize.Comma(int64(tree.CountTerminalNodes(t))),
		tree.MaxDepth(t))

	if opts.xmlFile != "" {
		if err := writeFile(opts.xmlFile, func(f *os.File) error {
			return export.WriteXML(f, t)
		}); err != nil {
			return errors.Wrap(err, "writing xml")
		}
		glog.Infof("Wrote %s", opts.xmlFile)
	}

	if opts.dotFile != "" {
		format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(opts.dotFile), "."))
		if err != nil {
			return err
		}

		if err := writeFile(opts.dotFile, func(f *os.File) error {
			return export.RenderGraph(ctx, f, t, format, opts.dotDepth)
		}); err != nil {
			return errors.Wrap(err, "rendering graph")
		}
		glog.Infof("Wrote %s", opts.dotFile)
	}

	return nil
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}

	return f.Close()
}

func train(cfg *config.Config, silent bool) (*cfr.Result, error) {
	params, err := cfg.Training.Params()
	if err != nil {
		return nil, err
	}

	sampler := hands.NewGenerator(hands.Params{
		Resolution:      cfg.Game.Resolution(),
		StrengthSamples: cfg.Training.StrengthSamples,
		Seed:            cfg.Training.Seed,
	})

	glog.Info("Generating game tree...")
	trainer, err := cfr.NewTrainer(cfg.Game, sampler, params)
	if err != nil {
		return nil, err
	}
	glog.Infof("Game tree has %s nodes", humanize.Comma(int64(trainer.Tree().Len())))

	if path := cfg.Training.Checkpoint; path != "" {
		if err := restoreCheckpoint(trainer, path); err != nil {
			return nil, err
		}
	}

	var progress func(i int)
	if !silent {
		bar := progressbar.Default(int64(cfg.Training.Iterations), "training")
		defer bar.Finish()
		progress = func(i int) { bar.Add(1) }
	}

	start := time.Now()
	result, err := trainer.Train(cfg.Training.Iterations, progress)
	if err != nil {
		return nil, err
	}

	glog.Infof("Trained %v for %s iterations in %v", params,
		humanize.Comma(int64(cfg.Training.Iterations)), time.Since(start))
	glog.Infof("Equity: %v", result.Equity)
	glog.Infof("Strategy table has %s entries over %d hand buckets",
		humanize.Comma(int64(result.Table.Len())), len(result.Hands))

	if path := cfg.Training.Checkpoint; path != "" {
		if err := writeFile(path, func(f *os.File) error {
			return result.Table.MarshalTo(f)
		}); err != nil {
			return nil, errors.Wrapf(err, "saving checkpoint %s", path)
		}
		glog.Infof("Saved checkpoint to %s", path)
	}

	return result, nil
}

func restoreCheckpoint(trainer *cfr.Trainer, path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		glog.Infof("No checkpoint at %s, starting from scratch", path)
		return nil
	} else if err != nil {
		return err
	}
	defer f.Close()

	table, err := cfr.LoadStrategyTable(f, trainer.Tree())
	if err != nil {
		return errors.Wrapf(err, "loading checkpoint %s", path)
	}

	glog.Infof("Resuming from checkpoint %s at iteration %d", path, table.Iter())
	return trainer.Restore(table)
}

func exportResult(ctx context.Context, cfg *config.Config, result *cfr.Result, silent bool) error {
	if !backends.Persistent(cfg.Store.Backend) {
		glog.Warningf("Exporting to the %s backend, nothing will be saved", cfg.Store.Backend)
	}

	mode := sqlstore.Fresh
	if cfg.Store.Drop {
		mode = sqlstore.Drop
	}

	s, err := backends.Open(ctx, backends.Options{
		Kind:  cfg.Store.Backend,
		DSN:   cfg.Store.DSN,
		Table: cfg.Store.Table,
		Mode:  mode,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if t, ok := s.(interface{ Table() string }); ok {
		glog.Infof("Writing to %s table %s", cfg.Store.Backend, t.Table())
	}

	var progress func(n int)
	if !silent {
		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("exporting"),
			progressbar.OptionShowCount())
		defer bar.Finish()
		progress = func(n int) { bar.Set(n) }
	}

	start := time.Now()
	n, err := store.Export(ctx, s, result, cfg.Store.BatchSize, progress)
	if err != nil {
		return errors.Wrapf(err, "exporting after %d rows", n)
	}

	glog.Infof("Wrote %s rows in %v", humanize.Comma(int64(n)), time.Since(start))
	return nil
}
