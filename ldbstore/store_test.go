package ldbstore

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/timpalpant/holdem-cfr/internal/storetest"
	"github.com/timpalpant/holdem-cfr/store"
)

func TestStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "ldbstore-test-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	storetest.Run(t, s)

	n, err := s.Len()
	if err != nil {
		t.Fatal(err)
	}

	if n == 0 {
		t.Error("expected rows in the database")
	}
}

func TestStore_Reopen(t *testing.T) {
	dir, err := ioutil.TempDir("", "ldbstore-test-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	payoff := 3
	rows := []store.Row{{Seat: 0, Hand: 0x21, History: "R1,R1,F", Payoff: &payoff}}
	if err := s.WriteRows(ctx, rows); err != nil {
		t.Fatal(err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = New(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	row, err := s.Strategy(ctx, 0x21, "R1,R1,F")
	if err != nil {
		t.Fatal(err)
	}

	if row.Payoff == nil || *row.Payoff != payoff {
		t.Errorf("unexpected row after reopening: %+v", row)
	}
}
