package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/timpalpant/holdem-cfr/internal/storetest"
	"github.com/timpalpant/holdem-cfr/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	s := store.NewMemory()
	if _, err := store.Export(context.Background(), s, storetest.Train(t), 0, nil); err != nil {
		t.Fatal(err)
	}

	return httptest.NewServer(New(s, storetest.Config().Resolution()).Router())
}

func get(t *testing.T, ts *httptest.Server, path string, query url.Values) (int, RowResponse) {
	resp, err := http.Get(ts.URL + path + "?" + query.Encode())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var row RowResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
			t.Fatal(err)
		}
	}

	return resp.StatusCode, row
}

func TestNodes(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	status, row := get(t, ts, "/nodes", url.Values{"history": {"R1,R1"}})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	if row.History != "R1,R1" || row.NextSeat == nil || len(row.Actions) == 0 {
		t.Errorf("unexpected node: %+v", row)
	}

	if status, _ := get(t, ts, "/nodes", url.Values{"history": {"R1,X"}}); status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}

	if status, _ := get(t, ts, "/nodes", nil); status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
}

func TestStrategy(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	// Pre-flop bucket of hand 0x0013.
	status, row := get(t, ts, "/strategy/0003", url.Values{"history": {"R1,R1"}})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	if len(row.Strategy) != len(row.Actions) || row.Hand != "0003" {
		t.Errorf("unexpected strategy: %+v", row)
	}

	var total float32
	for _, p := range row.Strategy {
		total += p
	}

	if total < 0.999 || total > 1.001 {
		t.Errorf("strategy does not sum to 1: %v", row.Strategy)
	}

	if status, _ := get(t, ts, "/strategy/zz", url.Values{"history": {"R1,R1"}}); status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}

	if status, _ := get(t, ts, "/strategy/FFFF", url.Values{"history": {"R1,R1"}}); status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
}

func TestStrategy_PackedHand(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	// A full packed hand is reduced to its pre-flop bucket at R1,R1.
	status, row := get(t, ts, "/strategy/3213", url.Values{"history": {"R1,R1"}})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	if row.Hand != "0003" || row.History != "R1,R1" || len(row.Strategy) == 0 {
		t.Errorf("unexpected strategy: %+v", row)
	}

	_, short := get(t, ts, "/strategy/0003", url.Values{"history": {"R1,R1"}})
	if len(short.Strategy) != len(row.Strategy) {
		t.Fatalf("expected matching strategies, got %v and %v", short.Strategy, row.Strategy)
	}
	for i := range row.Strategy {
		if short.Strategy[i] != row.Strategy[i] {
			t.Errorf("expected %v, got %v", short.Strategy, row.Strategy)
			break
		}
	}

	if status, _ := get(t, ts, "/strategy/3213", url.Values{"history": {"R1,X"}}); status != http.StatusNotFound {
		t.Errorf("expected 404 for unknown history, got %d", status)
	}
}
