// Package config loads the settings shared by the commands from a YAML,
// JSON or TOML file, the environment and an optional .env file.
package config

import (
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/timpalpant/holdem-cfr"
	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/internal/backends"
)

// Training variants accepted by Training.Params.
const (
	VariantCFRPlus  = "cfr+"
	VariantVanilla  = "vanilla"
	VariantLinear   = "linear"
	VariantExternal = "external"
	VariantOutcome  = "outcome"
)

type Config struct {
	Game     holdem.GameConfig `yaml:"game" json:"game"`
	Training Training          `yaml:"training" json:"training"`
	Store    Store             `yaml:"store" json:"store"`
	Server   Server            `yaml:"server" json:"server"`
}

type Training struct {
	Iterations int    `yaml:"iterations" json:"iterations" env:"HOLDEM_ITERATIONS" env-description:"number of training iterations"`
	Variant    string `yaml:"variant" json:"variant" env:"HOLDEM_VARIANT" env-description:"cfr+, vanilla, linear, external or outcome"`
	Seed       int64  `yaml:"seed" json:"seed" env:"HOLDEM_SEED"`
	// StrengthSamples is the number of Monte Carlo opponent holdings used
	// to bucket post-flop hands.
	StrengthSamples int `yaml:"strength_samples" json:"strengthSamples" env:"HOLDEM_STRENGTH_SAMPLES"`
	// Checkpoint, if set, is a file the strategy table is restored from
	// and saved to.
	Checkpoint string `yaml:"checkpoint" json:"checkpoint" env:"HOLDEM_CHECKPOINT"`
}

type Store struct {
	Backend   string `yaml:"backend" json:"backend" env:"HOLDEM_STORE" env-description:"storage backend"`
	DSN       string `yaml:"dsn" json:"dsn" env:"HOLDEM_DSN" env-description:"connection string or database path"`
	Table     string `yaml:"table" json:"table" env:"HOLDEM_TABLE"`
	Drop      bool   `yaml:"drop" json:"drop" env:"HOLDEM_DROP"`
	BatchSize int    `yaml:"batch_size" json:"batchSize" env:"HOLDEM_BATCH_SIZE"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr" env:"HOLDEM_ADDR"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Game: holdem.DefaultConfig(),
		Training: Training{
			Iterations:      5000,
			Variant:         VariantCFRPlus,
			Seed:            1,
			StrengthSamples: 64,
		},
		Store: Store{
			Backend:   "sqlite",
			DSN:       "strategy.db",
			Table:     "nodes1",
			BatchSize: 500,
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the configuration file at path, if not empty, on top of the
// defaults and then applies environment overrides. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env")
	}

	cfg := Default()
	if path != "" {
		glog.V(1).Infof("Loading configuration from %s", path)
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the game and the command settings.
func (c *Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}

	if c.Training.Iterations <= 0 {
		return errors.Errorf("iterations must be positive, got %d", c.Training.Iterations)
	}

	if _, err := c.Training.Params(); err != nil {
		return err
	}

	if !backends.Known(c.Store.Backend) {
		return errors.Errorf("unknown store backend %q, expected one of %v",
			c.Store.Backend, backends.Kinds())
	}

	return nil
}

// Params returns the CFR parameters of the training variant.
func (t Training) Params() (cfr.Params, error) {
	params := cfr.DefaultParams()
	params.Seed = t.Seed
	switch t.Variant {
	case VariantCFRPlus, "":
	case VariantVanilla:
		params.UseRegretMatchingPlus = false
	case VariantLinear:
		params.LinearWeighting = true
	case VariantExternal:
		params.SampleOpponentActions = true
	case VariantOutcome:
		params.SampleAllActions = true
	default:
		return params, errors.Errorf("unknown training variant %q", t.Variant)
	}

	return params, nil
}

// WriteDefault writes the default configuration as YAML, as a starting
// point for a custom one.
func WriteDefault(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return errors.Wrap(err, "encoding default config")
	}

	return enc.Close()
}
