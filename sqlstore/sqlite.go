package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang/glog"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/store"
)

// SQLite implements store.Store on a table in a SQLite database file.
type SQLite struct {
	db    *sqlx.DB
	table string
}

// OpenSQLite opens (or creates) the database at path and prepares the
// table according to mode.
func OpenSQLite(ctx context.Context, path, table string, mode TableMode) (*SQLite, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite database %s", path)
	}

	s := &SQLite{db: db, table: table}
	if err := s.prepare(ctx, mode); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Table returns the name of the table rows are written to.
func (s *SQLite) Table() string {
	return s.table
}

// Close implements io.Closer.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) exists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	return n > 0, err
}

func (s *SQLite) prepare(ctx context.Context, mode TableMode) error {
	exists, err := s.exists(ctx, s.table)
	if err != nil {
		return errors.Wrapf(err, "checking for table %s", s.table)
	}

	switch {
	case mode == Existing:
		if !exists {
			return errors.Errorf("table %s does not exist", s.table)
		}
		return nil
	case exists && mode == Drop:
		glog.Infof("Dropping existing table %s", s.table)
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.table); err != nil {
			return errors.Wrapf(err, "dropping table %s", s.table)
		}
	case exists && mode == Fresh:
		s.table = freshTableName(s.table)
		glog.Infof("Table exists, writing to %s instead", s.table)
	}

	if _, err := s.db.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return errors.Wrapf(err, "creating table %s", s.table)
	}

	if _, err := s.db.ExecContext(ctx, createIndexSQL(s.table)); err != nil {
		return errors.Wrapf(err, "creating index on %s", s.table)
	}

	return nil
}

// WriteRows implements store.Writer. All rows are inserted in a single
// transaction.
func (s *SQLite) WriteRows(ctx context.Context, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}

	sqlRows := make([]sqlRow, len(rows))
	for i := range rows {
		sqlRows[i] = toSQLRow(&rows[i])
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES
		(:player, :hand, :actions, :round, :next_player, :pay, :possible_actions, :cfr)`,
		s.table, columns)
	if _, err := tx.NamedExecContext(ctx, q, sqlRows); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "inserting rows into %s", s.table)
	}

	return tx.Commit()
}

// Node implements store.Reader.
func (s *SQLite) Node(ctx context.Context, history string) (*store.Row, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE actions = ? LIMIT 1", columns, s.table)
	return s.get(ctx, q, history)
}

// Strategy implements store.Reader.
func (s *SQLite) Strategy(ctx context.Context, hand holdem.HandBucket, history string) (*store.Row, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE hand = ? AND actions = ?", columns, s.table)
	return s.get(ctx, q, int64(hand), history)
}

func (s *SQLite) get(ctx context.Context, q string, args ...interface{}) (*store.Row, error) {
	var r sqlRow
	if err := s.db.GetContext(ctx, &r, q, args...); err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return r.toRow()
}

// Len returns the number of rows in the table.
func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT count(*) FROM "+s.table)
	return n, err
}
