//go:build rocksdb

package backends

import (
	"context"

	"github.com/timpalpant/holdem-cfr/rdbstore"
	"github.com/timpalpant/holdem-cfr/sqlstore"
	"github.com/timpalpant/holdem-cfr/store"
)

func init() {
	Register("rocksdb", openRocksDB)
}

func openRocksDB(ctx context.Context, opts Options) (store.Store, error) {
	path, err := PreparePath(opts.DSN, opts.Mode)
	if err != nil {
		return nil, err
	}

	params := rdbstore.DefaultParams(path)
	if opts.Mode == sqlstore.Existing {
		params.Options.SetCreateIfMissing(false)
	}

	return rdbstore.New(params)
}
