// Package backends opens a store.Store by name, so that commands can pick
// the storage backend from configuration.
package backends

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalpant/holdem-cfr/ldbstore"
	"github.com/timpalpant/holdem-cfr/sqlstore"
	"github.com/timpalpant/holdem-cfr/store"
)

// Options select and locate a backend.
type Options struct {
	// Kind is one of Kinds().
	Kind string
	// DSN is a connection string for postgres, or a path for the file
	// based backends.
	DSN string
	// Table is the SQL table name. Ignored by key-value backends.
	Table string
	Mode  sqlstore.TableMode
}

// OpenFunc opens a backend.
type OpenFunc func(ctx context.Context, opts Options) (store.Store, error)

var registry = map[string]OpenFunc{
	"memory":   openMemory,
	"leveldb":  openLevelDB,
	"sqlite":   openSQLite,
	"postgres": openPostgres,
}

// Register makes a backend available under kind.
func Register(kind string, fn OpenFunc) {
	if _, ok := registry[kind]; ok {
		panic("backends: duplicate registration of " + kind)
	}

	registry[kind] = fn
}

// Kinds returns the names of the registered backends.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)
	return kinds
}

// Known returns true if kind is a registered backend.
func Known(kind string) bool {
	_, ok := registry[kind]
	return ok
}

// Persistent returns false for backends that keep nothing once closed.
func Persistent(kind string) bool {
	return kind != "memory"
}

// Open opens the backend described by opts.
func Open(ctx context.Context, opts Options) (store.Store, error) {
	fn, ok := registry[opts.Kind]
	if !ok {
		return nil, errors.Errorf("unknown backend %q, expected one of %s",
			opts.Kind, strings.Join(Kinds(), ", "))
	}

	glog.V(1).Infof("Opening %s backend (%s)", opts.Kind, opts.Mode)
	s, err := fn(ctx, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s backend", opts.Kind)
	}

	return s, nil
}

func openMemory(ctx context.Context, opts Options) (store.Store, error) {
	return store.NewMemory(), nil
}

func openSQLite(ctx context.Context, opts Options) (store.Store, error) {
	return sqlstore.OpenSQLite(ctx, opts.DSN, opts.Table, opts.Mode)
}

func openPostgres(ctx context.Context, opts Options) (store.Store, error) {
	return sqlstore.OpenPostgres(ctx, opts.DSN, opts.Table, opts.Mode)
}

func openLevelDB(ctx context.Context, opts Options) (store.Store, error) {
	path, err := PreparePath(opts.DSN, opts.Mode)
	if err != nil {
		return nil, err
	}

	return ldbstore.New(path, &opt.Options{
		ErrorIfMissing: opts.Mode == sqlstore.Existing,
	})
}

// PreparePath applies the table mode to a directory based database. Drop
// removes the directory and Fresh picks a new sibling path if it exists.
func PreparePath(path string, mode sqlstore.TableMode) (string, error) {
	if path == "" {
		return "", errors.New("no database path given")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	} else if err != nil {
		return "", err
	}

	switch mode {
	case sqlstore.Drop:
		glog.Infof("Removing existing database %s", path)
		if err := os.RemoveAll(path); err != nil {
			return "", err
		}
	case sqlstore.Fresh:
		path = strings.TrimRight(path, "/") + "-" + uuid.NewString()[:8]
		glog.Infof("Database exists, writing to %s instead", path)
	}

	return path, nil
}
