package store

import (
	"context"
	"sync"

	"github.com/timpalpant/holdem-cfr/holdem"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mx    sync.RWMutex
	nodes map[string]Row
	rows  map[string]Row
}

func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[string]Row),
		rows:  make(map[string]Row),
	}
}

// WriteRows implements Writer.
func (m *Memory) WriteRows(ctx context.Context, rows []Row) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	for _, row := range rows {
		m.nodes[row.History] = row
		m.rows[string(StrategyKey(row.Hand, row.History))] = row
	}

	return nil
}

// Node implements Reader.
func (m *Memory) Node(ctx context.Context, history string) (*Row, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()
	row, ok := m.nodes[history]
	if !ok {
		return nil, ErrNotFound
	}

	return &row, nil
}

// Strategy implements Reader.
func (m *Memory) Strategy(ctx context.Context, hand holdem.HandBucket, history string) (*Row, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()
	row, ok := m.rows[string(StrategyKey(hand, history))]
	if !ok {
		return nil, ErrNotFound
	}

	return &row, nil
}

// Len returns the number of (hand, node) rows stored.
func (m *Memory) Len() int {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return len(m.rows)
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	return nil
}
