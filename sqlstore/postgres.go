package sqlstore

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/store"
)

// Postgres implements store.Store on a Postgres table.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPostgres connects to the database at dsn and prepares the table
// according to mode. The table actually used is returned by Table.
func OpenPostgres(ctx context.Context, dsn, table string, mode TableMode) (*Postgres, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "connecting to postgres")
	}

	p := &Postgres{pool: pool, table: table}
	if err := p.prepare(ctx, mode); err != nil {
		pool.Close()
		return nil, err
	}

	return p, nil
}

// Table returns the name of the table rows are written to.
func (p *Postgres) Table() string {
	return p.table
}

// Close implements io.Closer.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) exists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)",
		table).Scan(&exists)
	return exists, err
}

func (p *Postgres) prepare(ctx context.Context, mode TableMode) error {
	exists, err := p.exists(ctx, p.table)
	if err != nil {
		return errors.Wrapf(err, "checking for table %s", p.table)
	}

	switch {
	case mode == Existing:
		if !exists {
			return errors.Errorf("table %s does not exist", p.table)
		}
		return nil
	case exists && mode == Drop:
		glog.Infof("Dropping existing table %s", p.table)
		if _, err := p.pool.Exec(ctx, "DROP TABLE IF EXISTS "+p.table); err != nil {
			return errors.Wrapf(err, "dropping table %s", p.table)
		}
	case exists && mode == Fresh:
		p.table = freshTableName(p.table)
		glog.Infof("Table exists, writing to %s instead", p.table)
	}

	if _, err := p.pool.Exec(ctx, createTableSQL(p.table)); err != nil {
		return errors.Wrapf(err, "creating table %s", p.table)
	}

	if _, err := p.pool.Exec(ctx, createIndexSQL(p.table)); err != nil {
		return errors.Wrapf(err, "creating index on %s", p.table)
	}

	return nil
}

var columnNames = []string{"player", "hand", "actions", "round", "next_player", "pay", "possible_actions", "cfr"}

// WriteRows implements store.Writer using COPY.
func (p *Postgres) WriteRows(ctx context.Context, rows []store.Row) error {
	n, err := p.pool.CopyFrom(ctx, pgx.Identifier{p.table}, columnNames,
		pgx.CopyFromSlice(len(rows), func(i int) ([]interface{}, error) {
			row := toSQLRow(&rows[i])
			return row.values(), nil
		}))
	if err != nil {
		return errors.Wrapf(err, "copying rows into %s", p.table)
	}

	glog.V(2).Infof("Copied %d rows into %s", n, p.table)
	return nil
}

// Node implements store.Reader.
func (p *Postgres) Node(ctx context.Context, history string) (*store.Row, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE actions = $1 LIMIT 1", columns, p.table)
	return p.queryRow(ctx, q, history)
}

// Strategy implements store.Reader.
func (p *Postgres) Strategy(ctx context.Context, hand holdem.HandBucket, history string) (*store.Row, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE hand = $1 AND actions = $2", columns, p.table)
	return p.queryRow(ctx, q, int64(hand), history)
}

func (p *Postgres) queryRow(ctx context.Context, q string, args ...interface{}) (*store.Row, error) {
	var r sqlRow
	err := p.pool.QueryRow(ctx, q, args...).Scan(
		&r.Player, &r.Hand, &r.Actions, &r.Round,
		&r.NextPlayer, &r.Pay, &r.PossibleActions, &r.Cfr)
	if err == pgx.ErrNoRows {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return r.toRow()
}
