//go:build rocksdb

package rdbstore

import (
	"context"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	rocksdb "github.com/tecbot/gorocksdb"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/store"
)

// Store implements store.Store backed by a RocksDB database.
type Store struct {
	params Params
	db     *rocksdb.DB
}

// New opens (or creates) the RocksDB database described by params.
func New(params Params) (*Store, error) {
	db, err := rocksdb.OpenDb(params.Options, params.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening rocksdb at %s", params.Path)
	}

	return &Store{params: params, db: db}, nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	s.db.Close()
	s.params.Close()
	return nil
}

// WriteRows implements store.Writer. All rows are written in one batch.
func (s *Store) WriteRows(ctx context.Context, rows []store.Row) error {
	wb := rocksdb.NewWriteBatch()
	defer wb.Destroy()
	for i := range rows {
		value, err := rows[i].MarshalBinary()
		if err != nil {
			return err
		}

		wb.Put(store.NodeKey(rows[i].History), value)
		wb.Put(store.StrategyKey(rows[i].Hand, rows[i].History), value)
	}

	if err := s.db.Write(s.params.WriteOptions, wb); err != nil {
		return errors.Wrap(err, "writing batch")
	}

	glog.V(2).Infof("Wrote %d rows to %s", len(rows), s.params.Path)
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
	result, err := s.db.Get(s.params.ReadOptions, key)
	if err != nil {
		return nil, err
	}
	defer result.Free()

	if len(result.Data()) == 0 {
		return nil, store.ErrNotFound
	}

	var row store.Row
	if err := row.UnmarshalBinary(result.Data()); err != nil {
		return nil, errors.Wrapf(err, "decoding row %q", key)
	}

	return &row, nil
}

// Len counts the (hand, node) rows in the database.
func (s *Store) Len() int {
	prefix := []byte("s:")
	it := s.db.NewIterator(s.params.ReadOptions)
	defer it.Close()

	n := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		n++
	}

	return n
}
