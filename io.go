package cfr

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/pkg/errors"

	"github.com/timpalpant/holdem-cfr/holdem"
)

// LoadStrategyTable reads a table written by MarshalTo. The tree must have
// been built from the same GameConfig as the one used during training.
func LoadStrategyTable(r io.Reader, tree *holdem.Tree) (*StrategyTable, error) {
	dec := gob.NewDecoder(r)
	var params Params
	if err := dec.Decode(&params); err != nil {
		return nil, errors.Wrap(err, "decoding params")
	}

	var iter int
	if err := dec.Decode(&iter); err != nil {
		return nil, errors.Wrap(err, "decoding iteration")
	}

	var nStrategies int
	if err := dec.Decode(&nStrategies); err != nil {
		return nil, errors.Wrap(err, "decoding table size")
	}

	st := NewStrategyTable(tree, params)
	st.iter = iter
	st.strategies = make([]strategy, 0, nStrategies)
	for i := 0; i < nStrategies; i++ {
		var key infoSetKey
		if err := dec.Decode(&key.node); err != nil {
			return nil, errors.Wrapf(err, "decoding entry %d", i)
		}

		if err := dec.Decode(&key.hand); err != nil {
			return nil, errors.Wrapf(err, "decoding entry %d", i)
		}

		var s strategy
		if err := dec.Decode(&s); err != nil {
			return nil, errors.Wrapf(err, "decoding entry %d", i)
		}

		if int(key.node) >= tree.Len() || s.numActions() != len(tree.Node(key.node).Children) {
			return nil, errors.Errorf("entry %d for node %d does not match the tree", i, key.node)
		}

		st.index[key] = len(st.strategies)
		st.strategies = append(st.strategies, s)
	}

	return st, nil
}

// MarshalTo writes the accumulated regrets and strategy sums to w.
func (st *StrategyTable) MarshalTo(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(st.params); err != nil {
		return err
	}

	if err := enc.Encode(st.iter); err != nil {
		return err
	}

	if err := enc.Encode(len(st.strategies)); err != nil {
		return err
	}

	for key, idx := range st.index {
		if err := enc.Encode(key.node); err != nil {
			return err
		}

		if err := enc.Encode(key.hand); err != nil {
			return err
		}

		if err := enc.Encode(&st.strategies[idx]); err != nil {
			return err
		}
	}

	return nil
}

func (s *strategy) GobDecode(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	var nActions int
	if err := dec.Decode(&nActions); err != nil {
		return err
	}

	regretSum := make([]float32, 0, nActions)
	if err := dec.Decode(&regretSum); err != nil {
		return err
	}

	strategySum := make([]float32, 0, nActions)
	if err := dec.Decode(&strategySum); err != nil {
		return err
	}

	s.regretSum = regretSum
	s.strategySum = strategySum
	s.current = make([]float32, nActions)
	s.regretMatching()
	return nil
}

func (s *strategy) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(s.numActions()); err != nil {
		return nil, err
	}

	if err := enc.Encode(s.regretSum); err != nil {
		return nil, err
	}

	if err := enc.Encode(s.strategySum); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
