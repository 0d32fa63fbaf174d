package store

import (
	"context"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr"
	"github.com/timpalpant/holdem-cfr/holdem"
	"github.com/timpalpant/holdem-cfr/tree"
)

// DefaultBatchSize is the number of rows sent to a Writer at once.
const DefaultBatchSize = 500

// Export writes one row for every node and every sampled hand bucket of the
// training result. Hands that share an effective bucket at a node produce a
// single row. If progress is non-nil it is called with the running total
// after each batch. Export returns the number of rows written.
func Export(ctx context.Context, w Writer, result *cfr.Result, batchSize int, progress func(n int)) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	ex := &exporter{
		ctx:      ctx,
		w:        w,
		result:   result,
		seen:     make(map[rowKey]struct{}),
		batch:    make([]Row, 0, batchSize),
		progress: progress,
	}

	for _, hand := range result.SortedHands() {
		glog.V(1).Infof("Exporting hand %v", hand)
		tree.VisitWithHistory(result.Tree, func(id holdem.NodeID, node *holdem.Node, history string) {
			if ex.err == nil {
				ex.add(hand, id, node, history)
			}
		})

		if ex.err != nil {
			return ex.total, ex.err
		}
	}

	if err := ex.flush(); err != nil {
		return ex.total, err
	}

	return ex.total, nil
}

type rowKey struct {
	node holdem.NodeID
	hand holdem.HandBucket
}

type exporter struct {
	ctx      context.Context
	w        Writer
	result   *cfr.Result
	seen     map[rowKey]struct{}
	batch    []Row
	total    int
	progress func(n int)
	err      error
}

func (ex *exporter) add(hand holdem.HandBucket, id holdem.NodeID, node *holdem.Node, history string) {
	effective := ex.result.Table.EffectiveHand(id, hand)
	key := rowKey{node: id, hand: effective}
	if _, ok := ex.seen[key]; ok {
		return
	}
	ex.seen[key] = struct{}{}

	ex.batch = append(ex.batch, NewRow(ex.result, id, node, effective, history))
	if len(ex.batch) == cap(ex.batch) {
		ex.err = ex.flush()
	}
}

func (ex *exporter) flush() error {
	if len(ex.batch) == 0 {
		return nil
	}

	if err := ex.ctx.Err(); err != nil {
		return err
	}

	if err := ex.w.WriteRows(ex.ctx, ex.batch); err != nil {
		return errors.Wrapf(err, "writing %d rows", len(ex.batch))
	}

	ex.total += len(ex.batch)
	ex.batch = ex.batch[:0]
	if ex.progress != nil {
		ex.progress(ex.total)
	}

	return nil
}

// NewRow builds the row of a node for an effective hand bucket.
func NewRow(result *cfr.Result, id holdem.NodeID, node *holdem.Node, hand holdem.HandBucket, history string) Row {
	row := Row{
		Seat:    int(node.Seat),
		Hand:    hand,
		History: history,
		Street:  node.Street,
	}

	if node.IsTerminal() {
		payoff := node.Payoff
		row.Payoff = &payoff
		return row
	}

	nextSeat := int(node.Actor)
	row.NextSeat = &nextSeat
	row.Actions = result.Tree.ChildCodes(id)
	row.Strategy = result.Table.GetAverageStrategy(id, hand)
	return row
}
