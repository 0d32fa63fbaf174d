package ldbstore

import (
	"context"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/store"
)

// Store implements store.Store backed by a LevelDB database.
type Store struct {
	path string
	db   *leveldb.DB

	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

// New opens (or creates) a LevelDB database at the given directory path.
func New(path string, opts *opt.Options) (*Store, error) {
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %s", path)
	}

	return &Store{
		path: path,
		db:   db,
	}, nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteRows implements store.Writer. All rows are written in one batch.
func (s *Store) WriteRows(ctx context.Context, rows []store.Row) error {
	batch := new(leveldb.Batch)
	for i := range rows {
		value, err := rows[i].MarshalBinary()
		if err != nil {
			return err
		}

		batch.Put(store.NodeKey(rows[i].History), value)
		batch.Put(store.StrategyKey(rows[i].Hand, rows[i].History), value)
	}

	if err := s.db.Write(batch, s.wOpts); err != nil {
		return errors.Wrap(err, "writing batch")
	}

	glog.V(2).Infof("Wrote %d rows to %s", len(rows), s.path)
	return nil
}

// Node implements store.Reader.
func (s *Store) Node(ctx context.Context, history string) (*store.Row, error) {
	return s.get(store.NodeKey(history))
}

// Strategy implements store.Reader.
func (s *Store) Strategy(ctx context.Context, hand holdem.HandBucket, history string) (*store.Row, error) {
	return s.get(store.StrategyKey(hand, history))
}

func (s *Store) get(key []byte) (*store.Row, error) {
	buf, err := s.db.Get(key, s.rOpts)
	if err == leveldb.ErrNotFound {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var row store.Row
	if err := row.UnmarshalBinary(buf); err != nil {
		return nil, errors.Wrapf(err, "decoding row %q", key)
	}

	return &row, nil
}

// Len counts the (hand, node) rows in the database.
func (s *Store) Len() (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte("s:")), s.rOpts)
	n := 0
	for iter.Next() {
		n++
	}

	iter.Release()
	return n, iter.Error()
}
