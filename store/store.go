// Package store defines how trained strategies are persisted and read back
// for play, independently of the storage backend.
//
// Each Row describes one tree node for one effective hand bucket. Rows are
// addressed by the comma-joined action history leading to the node.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/holdem"
)

// ErrNotFound is returned by Readers when no row matches a lookup.
var ErrNotFound = errors.New("not found")

// Row is the persisted view of one node for one hand bucket.
type Row struct {
	// Seat is the player whose action produced the node.
	Seat int
	// Hand is the effective bucket of the node's street.
	Hand    holdem.HandBucket
	History string
	Street  holdem.Street
	// NextSeat is the player choosing among Actions, nil at leaves.
	NextSeat *int
	// Payoff is set on terminal nodes only.
	Payoff *int
	// Actions are the short codes of the child actions, nil at leaves.
	Actions []string
	// Strategy is the average strategy over Actions, nil at leaves.
	Strategy []float32
}

// IsTerminal returns true if the row describes a Showdown or Fold leaf.
func (r *Row) IsTerminal() bool {
	return r.Street.Terminal()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Row) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *Row) UnmarshalBinary(buf []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(buf))
	return dec.Decode(r)
}

// Writer persists rows.
type Writer interface {
	WriteRows(ctx context.Context, rows []Row) error
}

// Reader looks up persisted rows.
type Reader interface {
	// Node returns any row stored for the history. Only the
	// hand-independent fields of the result are meaningful.
	Node(ctx context.Context, history string) (*Row, error)
	// Strategy returns the row stored for the effective hand bucket and
	// history.
	Strategy(ctx context.Context, hand holdem.HandBucket, history string) (*Row, error)
}

// Store is a backend that can be both written and read.
type Store interface {
	Writer
	Reader
	Close() error
}

// NodeKey is the key-value store key of the hand-independent node record.
func NodeKey(history string) []byte {
	return []byte("n:" + history)
}

// StrategyKey is the key-value store key of a (hand, node) row.
func StrategyKey(hand holdem.HandBucket, history string) []byte {
	return []byte(fmt.Sprintf("s:%08x:%s", uint32(hand), history))
}

// FormatStrategy joins probabilities with ';' for text columns.
func FormatStrategy(p []float32) string {
	parts := make([]string, len(p))
	for i, x := range p {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}

	return strings.Join(parts, ";")
}

// ParseStrategy is the inverse of FormatStrategy.
func ParseStrategy(s string) ([]float32, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ";")
	p := make([]float32, len(parts))
	for i, part := range parts {
		x, err := strconv.ParseFloat(part, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing strategy %q", s)
		}
		p[i] = float32(x)
	}

	return p, nil
}

// FormatActions joins action codes with ','.
func FormatActions(codes []string) string {
	return strings.Join(codes, ",")
}

// ParseActions is the inverse of FormatActions.
func ParseActions(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}
