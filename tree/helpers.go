// Package tree provides traversal helpers over a holdem.Tree.
package tree

import (
	"github.com/timpalpant/holdem-cfr/holdem"
)

// Visit calls visitor on every node of the tree in depth-first pre-order.
func Visit(t *holdem.Tree, visitor func(id holdem.NodeID, node *holdem.Node)) {
	visit(t, t.Root, visitor)
}

func visit(t *holdem.Tree, id holdem.NodeID, visitor func(id holdem.NodeID, node *holdem.Node)) {
	node := t.Node(id)
	visitor(id, node)
	for _, child := range node.Children {
		visit(t, child, visitor)
	}
}

// VisitWithHistory is like Visit, but also passes the comma-joined short
// codes of the actions leading to each node, starting with the root action.
func VisitWithHistory(t *holdem.Tree, visitor func(id holdem.NodeID, node *holdem.Node, history string)) {
	visitWithHistory(t, t.Root, "", visitor)
}

func visitWithHistory(t *holdem.Tree, id holdem.NodeID, prefix string,
	visitor func(id holdem.NodeID, node *holdem.Node, history string)) {
	node := t.Node(id)
	history := node.Action.Code()
	if prefix != "" {
		history = prefix + "," + history
	}

	visitor(id, node, history)
	for _, child := range node.Children {
		visitWithHistory(t, child, history, visitor)
	}
}

// VisitWithDepth is like Visit, but also passes the depth of each node.
func VisitWithDepth(t *holdem.Tree, visitor func(id holdem.NodeID, node *holdem.Node, depth int)) {
	var rec func(id holdem.NodeID, depth int)
	rec = func(id holdem.NodeID, depth int) {
		node := t.Node(id)
		visitor(id, node, depth)
		for _, child := range node.Children {
			rec(child, depth+1)
		}
	}

	rec(t.Root, 0)
}

func CountTerminalNodes(t *holdem.Tree) int {
	total := 0
	Visit(t, func(id holdem.NodeID, node *holdem.Node) {
		if node.IsTerminal() {
			total++
		}
	})

	return total
}

func CountNodes(t *holdem.Tree) int {
	total := 0
	Visit(t, func(id holdem.NodeID, node *holdem.Node) { total++ })
	return total
}

// MaxDepth returns the length of the longest action history in the tree.
func MaxDepth(t *holdem.Tree) int {
	max := 0
	VisitWithDepth(t, func(id holdem.NodeID, node *holdem.Node, depth int) {
		if depth > max {
			max = depth
		}
	})

	return max
}
