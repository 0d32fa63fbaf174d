// Package sqlstore persists strategy rows in a SQL table with one row per
// (player, hand, action history, street), readable by other tools.
//
// Postgres is accessed through a pgx connection pool, SQLite through sqlx
// with the pure Go modernc.org/sqlite driver.
package sqlstore

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/store"
)

// TableMode controls what happens when the requested table already exists.
type TableMode int

const (
	// Existing opens a table that must already exist, for reading.
	Existing TableMode = iota
	// Drop replaces an existing table.
	Drop
	// Fresh keeps an existing table and creates a new one with a random
	// suffix instead.
	Fresh
)

func (m TableMode) String() string {
	switch m {
	case Existing:
		return "existing"
	case Drop:
		return "drop"
	case Fresh:
		return "fresh"
	}

	return fmt.Sprintf("TableMode(%d)", int(m))
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateTableName(name string) error {
	if !tableNameRe.MatchString(name) {
		return errors.Errorf("invalid table name: %q", name)
	}

	return nil
}

func freshTableName(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return base + "_" + suffix
}

const columns = "player, hand, actions, round, next_player, pay, possible_actions, cfr"

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %[1]s (
	player SMALLINT NOT NULL,
	hand INTEGER NOT NULL,
	actions TEXT NOT NULL,
	round SMALLINT NOT NULL,
	next_player SMALLINT,
	pay INTEGER,
	possible_actions TEXT,
	cfr TEXT,
	PRIMARY KEY (player, hand, actions, round)
)`, table)
}

func createIndexSQL(table string) string {
	return fmt.Sprintf("CREATE INDEX ix_%[1]s_actions ON %[1]s (actions)", table)
}

// sqlRow is the column layout of a stored row.
type sqlRow struct {
	Player          int64          `db:"player"`
	Hand            int64          `db:"hand"`
	Actions         string         `db:"actions"`
	Round           int64          `db:"round"`
	NextPlayer      sql.NullInt64  `db:"next_player"`
	Pay             sql.NullInt64  `db:"pay"`
	PossibleActions sql.NullString `db:"possible_actions"`
	Cfr             sql.NullString `db:"cfr"`
}

func toSQLRow(r *store.Row) sqlRow {
	row := sqlRow{
		Player:  int64(r.Seat),
		Hand:    int64(r.Hand),
		Actions: r.History,
		Round:   int64(r.Street),
	}

	if r.NextSeat != nil {
		row.NextPlayer = sql.NullInt64{Int64: int64(*r.NextSeat), Valid: true}
	}

	if r.Payoff != nil {
		row.Pay = sql.NullInt64{Int64: int64(*r.Payoff), Valid: true}
	}

	if r.Actions != nil {
		row.PossibleActions = sql.NullString{String: store.FormatActions(r.Actions), Valid: true}
	}

	if r.Strategy != nil {
		row.Cfr = sql.NullString{String: store.FormatStrategy(r.Strategy), Valid: true}
	}

	return row
}

func (r *sqlRow) values() []interface{} {
	return []interface{}{
		r.Player, r.Hand, r.Actions, r.Round,
		nullInt(r.NextPlayer), nullInt(r.Pay),
		nullString(r.PossibleActions), nullString(r.Cfr),
	}
}

func nullInt(v sql.NullInt64) interface{} {
	if !v.Valid {
		return nil
	}

	return v.Int64
}

func nullString(v sql.NullString) interface{} {
	if !v.Valid {
		return nil
	}

	return v.String
}

func (r *sqlRow) toRow() (*store.Row, error) {
	row := &store.Row{
		Seat:    int(r.Player),
		Hand:    holdem.HandBucket(r.Hand),
		History: r.Actions,
		Street:  holdem.Street(r.Round),
	}

	if r.NextPlayer.Valid {
		next := int(r.NextPlayer.Int64)
		row.NextSeat = &next
	}

	if r.Pay.Valid {
		pay := int(r.Pay.Int64)
		row.Payoff = &pay
	}

	if r.PossibleActions.Valid {
		row.Actions = store.ParseActions(r.PossibleActions.String)
	}

	if r.Cfr.Valid {
		strategy, err := store.ParseStrategy(r.Cfr.String)
		if err != nil {
			return nil, err
		}
		row.Strategy = strategy
	}

	return row, nil
}
