package tree

import (
	"strings"
	"testing"

	"github.com/timpalpant/holdem-cfr/holdem"
)

func TestCounts(t *testing.T) {
	tr, err := holdem.NewTree(holdem.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	nNodes := CountNodes(tr)
	if nNodes != tr.Len() {
		t.Errorf("expected %d nodes, got %d", tr.Len(), nNodes)
	}

	nTerminal := CountTerminalNodes(tr)
	if nTerminal == 0 || nTerminal >= nNodes {
		t.Errorf("unexpected number of terminal nodes: %d of %d", nTerminal, nNodes)
	}

	t.Logf("%d nodes, %d terminal, max depth %d", nNodes, nTerminal, MaxDepth(tr))
}

func TestVisitWithHistory(t *testing.T) {
	tr, err := holdem.NewTree(holdem.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]struct{})
	VisitWithHistory(tr, func(id holdem.NodeID, node *holdem.Node, history string) {
		if _, ok := seen[history]; ok {
			t.Errorf("duplicate history %q", history)
		}
		seen[history] = struct{}{}

		if !strings.HasPrefix(history, "R1") {
			t.Errorf("history %q does not start at the root", history)
		}

		found, ok := tr.Find(history)
		if !ok || found != id {
			t.Errorf("history %q does not resolve to node %d", history, id)
		}
	})

	if len(seen) != tr.Len() {
		t.Errorf("expected %d histories, got %d", tr.Len(), len(seen))
	}
}
