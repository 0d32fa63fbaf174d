// Package server exposes a store.Reader over HTTP so that exported
// strategies can be looked up without access to the database.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/glog"

	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/store"
)

const defaultTimeout = 3 * time.Second

type Server struct {
	reader     store.Reader
	resolution int
	timeout    time.Duration
}

// New serves rows from reader. Hands given to /strategy are masked to the
// node's street using the bucket packing base resolution.
func New(reader store.Reader, resolution int) *Server {
	return &Server{reader: reader, resolution: resolution, timeout: defaultTimeout}
}

// Router returns the HTTP handler:
//
//	GET /healthz
//	GET /nodes?history=R1,R1,C
//	GET /strategy/{hand}?history=R1,R1,C   (packed hand in hex, e.g. 3213)
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/nodes", s.handleNode)
	r.Get("/strategy/{hand}", s.handleStrategy)
	return r
}

// RowResponse is the JSON form of a store.Row.
type RowResponse struct {
	Seat     int       `json:"seat"`
	Hand     string    `json:"hand"`
	History  string    `json:"history"`
	Street   string    `json:"street"`
	NextSeat *int      `json:"next_seat,omitempty"`
	Payoff   *int      `json:"payoff,omitempty"`
	Actions  []string  `json:"actions,omitempty"`
	Strategy []float32 `json:"strategy,omitempty"`
}

func newRowResponse(row *store.Row) RowResponse {
	return RowResponse{
		Seat:     row.Seat,
		Hand:     row.Hand.String(),
		History:  row.History,
		Street:   row.Street.String(),
		NextSeat: row.NextSeat,
		Payoff:   row.Payoff,
		Actions:  row.Actions,
		Strategy: row.Strategy,
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	history := r.URL.Query().Get("history")
	if history == "" {
		writeError(w, http.StatusBadRequest, "history is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	row, err := s.reader.Node(ctx, history)
	s.writeRow(w, row, err)
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	history := r.URL.Query().Get("history")
	if history == "" {
		writeError(w, http.StatusBadRequest, "history is required")
		return
	}

	hand, err := strconv.ParseUint(chi.URLParam(r, "hand"), 16, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid hand: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	node, err := s.reader.Node(ctx, history)
	if err != nil {
		s.writeRow(w, nil, err)
		return
	}

	// Rows are keyed by the bucket effective at the node's street.
	bucket := holdem.HandBucket(hand).At(s.resolution, node.Street)
	row, err := s.reader.Strategy(ctx, bucket, history)
	s.writeRow(w, row, err)
}

func (s *Server) writeRow(w http.ResponseWriter, row *store.Row, err error) {
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, "not found")
		return
	} else if err != nil {
		glog.Errorf("Error reading row: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("store: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, newRowResponse(row))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
