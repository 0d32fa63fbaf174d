// Package holdem builds the betting tree of heads-up limit-style hold'em
// under a configurable raise structure.
//
// Seat 0 is the dealer, seat 1 is the non-dealer. The tree is stored as an
// arena: nodes refer to their children by NodeID and the shape never
// changes after NewTree returns.
package holdem

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// NoActor is the Actor of terminal nodes.
const NoActor = -1

type NodeID int32

// Node is one decision point in the betting tree.
type Node struct {
	// Seat is the player whose action produced this node.
	Seat int8
	// Actor is the player choosing among the children, or NoActor at leaves.
	Actor  int8
	Action Action
	Street Street
	// Payoff is the chip amount at stake, only meaningful on terminal streets.
	Payoff   int
	Children []NodeID
}

// IsTerminal returns true if the node is a Showdown or Fold leaf.
func (n *Node) IsTerminal() bool {
	return n.Street.Terminal()
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	s := fmt.Sprintf("P=%d A=%v S=%v", n.Seat, n.Action, n.Street)
	if n.IsTerminal() {
		s += fmt.Sprintf(" PAY=%d", n.Payoff)
	}

	return s
}

// Tree is the full betting tree for one GameConfig.
type Tree struct {
	Config GameConfig
	Nodes  []Node
	Root   NodeID
}

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// ChildCodes returns the short codes of the actions leading to each child.
func (t *Tree) ChildCodes(id NodeID) []string {
	children := t.Nodes[id].Children
	if len(children) == 0 {
		return nil
	}

	codes := make([]string, len(children))
	for i, child := range children {
		codes[i] = t.Nodes[child].Action.Code()
	}

	return codes
}

// Find follows a comma-joined action history from the root and returns the
// node it ends at.
func (t *Tree) Find(history string) (NodeID, bool) {
	codes := strings.Split(history, ",")
	if len(codes) == 0 || codes[0] != t.Nodes[t.Root].Action.Code() {
		return 0, false
	}

	id := t.Root
	for _, code := range codes[1:] {
		next, ok := t.childByCode(id, code)
		if !ok {
			return 0, false
		}

		id = next
	}

	return id, true
}

func (t *Tree) childByCode(id NodeID, code string) (NodeID, bool) {
	for _, child := range t.Nodes[id].Children {
		if t.Nodes[child].Action.Code() == code {
			return child, true
		}
	}

	return 0, false
}

// NewTree builds the full betting tree for the given configuration.
func NewTree(cfg GameConfig) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		cfg:  cfg,
		tree: &Tree{Config: cfg},
	}

	b.buildRoot()
	glog.V(1).Infof("Built betting tree with %d nodes", len(b.tree.Nodes))
	return b.tree, nil
}

type builder struct {
	cfg  GameConfig
	tree *Tree
}

// state is the betting state carried down the recursion. cur is the action
// that produced the node being built, prev the action before it.
type state struct {
	player     int
	cur        Action
	street     Street
	reraises   int
	prev       Action
	pot        int
	investment [2]int
}

func (b *builder) buildRoot() {
	investment := [2]int{b.cfg.SmallBlind, b.cfg.BigBlind}
	initial := Initial(b.cfg.SmallBlind)
	root := b.alloc(Node{
		Seat:   0,
		Actor:  1,
		Action: initial,
		Street: PreFlop,
	})

	// The big blind gets one extra reaction to the small blind's raise.
	child := b.build(state{
		player:     1,
		cur:        initial,
		street:     PreFlop,
		reraises:   b.cfg.Reraises + 1,
		prev:       initial,
		pot:        b.cfg.SmallBlind + b.cfg.BigBlind,
		investment: investment,
	})

	b.tree.Nodes[root].Children = []NodeID{child}
	b.tree.Root = root
}

func (b *builder) alloc(n Node) NodeID {
	id := NodeID(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, n)
	return id
}

func (b *builder) build(s state) NodeID {
	if b.isLimpReaction(s) {
		s.reraises = b.cfg.Reraises
	}

	id := b.alloc(Node{
		Seat:   int8(s.player),
		Actor:  NoActor,
		Action: s.cur,
		Street: s.street,
		Payoff: payoff(s),
	})

	var children []NodeID
	maxInvested := maxInt(s.investment[0], s.investment[1])
	for _, candidate := range b.legalActions(s) {
		next, ok := candidate.Saturate(maxInvested, b.cfg.Bankroll)
		if !ok {
			continue
		}

		delta := investDelta(next, s.cur)
		street := b.nextStreet(s, candidate)
		newStreet := street < Showdown && street != s.street
		nextPlayer := b.nextPlayer(s.player, newStreet)

		reraises := s.reraises
		if newStreet {
			reraises = b.cfg.Reraises
		} else if s.cur.Type == Raise {
			reraises--
		}

		investment := s.investment
		investment[nextPlayer] += delta

		child := b.build(state{
			player:     nextPlayer,
			cur:        next,
			street:     street,
			reraises:   reraises,
			prev:       s.cur,
			pot:        s.pot + delta,
			investment: investment,
		})

		b.tree.Nodes[id].Actor = int8(nextPlayer)
		children = append(children, child)
	}

	b.tree.Nodes[id].Children = children
	return id
}

// isLimpReaction is true when the small blind has just called the big blind
// pre-flop. The big blind then gets a full raise window.
func (b *builder) isLimpReaction(s state) bool {
	return s.player == 1 && s.cur.Type == Call && s.street == PreFlop
}

func (b *builder) legalActions(s state) []Action {
	if s.street.Terminal() {
		return nil
	}

	if s.cur.Type == AllIn {
		return []Action{{Type: Fold}, {Type: Call}}
	}

	if s.reraises <= 0 {
		if s.cur.Type == Call {
			return []Action{{Type: Call}}
		}

		return []Action{{Type: Fold}, {Type: Call}}
	}

	actions := make([]Action, 0, 3+len(b.cfg.Raises[s.street]))
	if s.cur.Type != Call {
		actions = append(actions, Action{Type: Fold})
	}

	actions = append(actions,
		Action{Type: Call},
		Action{Type: AllIn, Amount: int16(b.cfg.Bankroll)})

	seen := make(map[int]bool, len(b.cfg.Raises[s.street]))
	for _, size := range b.cfg.Raises[s.street] {
		if b.cfg.RelativeBetting {
			size = size * s.pot / 100
		}

		// Pot-relative sizes can round to nothing or to the same chip
		// amount, which would give siblings the same history code.
		if size <= 0 || seen[size] {
			continue
		}
		seen[size] = true

		actions = append(actions, Action{Type: Raise, Amount: int16(size)})
	}

	return actions
}

// nextStreet returns the street reached when the next player answers s.cur
// with the given action.
func (b *builder) nextStreet(s state, next Action) Street {
	if next.Type == Fold {
		return Folded
	}

	nextPlayer := b.nextPlayer(s.player, false)
	if next.Type == Call && s.cur.Type == AllIn ||
		s.street == River && nextPlayer == 0 && next.Type == Call ||
		s.street == River && nextPlayer == 1 && next.Type == Call && s.cur.Type == Raise {
		return Showdown
	}

	if s.street > PreFlop {
		if s.player == 0 && s.cur.Type == Call ||
			s.player == 1 && s.cur.Type == Call && s.prev.Type == Raise {
			return s.street + 1
		}
	} else {
		if s.player == 1 && s.cur.Type == Call ||
			s.player == 0 && s.cur.Type == Call && s.prev.Type == Raise && s.reraises != b.cfg.Reraises {
			return Flop
		}
	}

	return s.street
}

// nextPlayer returns the seat to act after player. The non-dealer opens
// every new street, so after a street change it can act twice in a row.
// TODO: when betting happened on the previous street the non-dealer opens
// the next one with a single Call; rework the street-advance rules to give
// it the full action set.
func (b *builder) nextPlayer(player int, newStreet bool) int {
	if newStreet || player == 0 {
		return 1
	}

	return player - 1
}

func investDelta(next, cur Action) int {
	switch next.Type {
	case Call:
		return int(cur.Amount)
	case Raise, AllIn:
		return int(cur.Amount) + int(next.Amount)
	}

	return 0
}

// payoff is the amount at stake at a leaf: the largest net gain of any
// player from the pot. At a Fold leaf the folding seat is credited with the
// pot first, so the result is what the other seat takes from it.
func payoff(s state) int {
	if !s.street.Terminal() {
		return 0
	}

	investment := s.investment
	if s.street == Folded {
		investment[s.player] += s.pot
	}

	return maxInt(s.pot-investment[0], s.pot-investment[1])
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
