// Package compiler implements the regex construction and compilation core:
// a typed pattern AST, a combinator builder, a dialect-aware linter, a set of
// semantics-preserving optimization passes, per-dialect emitters, a dialect
// converter and a timeout-bounded test harness.
package compiler

// Node is the closed set of pattern AST variants. Every consumer switches
// exhaustively over the concrete types; an unknown type is a programming
// error surfaced as OptimizationError or EmitError rather than a panic.
//
// Nodes are immutable once constructed. All transformations (optimization,
// downgrading) allocate new nodes, so an AST can be shared freely between
// concurrent Validate/Optimize/Emit calls.
type Node interface {
	isNode()
}

// Literal matches one or more characters verbatim.
type Literal struct {
	Text string
}

// ClassItem is a single member of a character class: either an inclusive
// rune range (Lo..Hi, with Lo == Hi for a single character) or a Unicode
// property name such as "L" or "Greek" when Property is non-empty.
type ClassItem struct {
	Lo, Hi   rune
	Property string
}

// CharClass matches any single character in (or, when Negated, not in) the
// union of its items.
type CharClass struct {
	Items   []ClassItem
	Negated bool
}

// Sequence matches its children in order. A canonical sequence has at least
// two children; the optimizer collapses shorter ones.
type Sequence struct {
	Children []Node
}

// Alternation tries its branches left to right; the first branch that
// matches wins under backtracking dialects. Branch order is therefore
// significant and must be preserved by every transformation.
type Alternation struct {
	Branches []Node
}

// Group wraps a subexpression, optionally capturing it, optionally under a
// name. A non-capturing group never carries a name.
type Group struct {
	Body      Node
	Capturing bool
	Name      string
}

// Unbounded marks a Quantifier with no upper repetition bound.
const Unbounded = -1

// Quantifier repeats its body between Min and Max times. Max == Unbounded
// means no upper bound. Possessive quantifiers never give back characters
// on backtracking; only some dialects support them.
type Quantifier struct {
	Body       Node
	Min        int
	Max        int
	Greedy     bool
	Possessive bool
}

// AnchorKind enumerates the zero-width position assertions.
type AnchorKind int

const (
	AnchorStart AnchorKind = iota
	AnchorEnd
	AnchorWordBoundary
	AnchorNonWordBoundary
)

// Anchor is a zero-width position assertion.
type Anchor struct {
	Kind AnchorKind
}

// Backreference matches the text captured by a prior group, referenced by
// index (1-based) or by name. Exactly one of Index/Name is set.
type Backreference struct {
	Index int
	Name  string
}

// Lookaround is a zero-width assertion on the text ahead of (or, when
// Behind is set, before) the current position.
type Lookaround struct {
	Body    Node
	Behind  bool
	Negated bool
}

func (*Literal) isNode()       {}
func (*CharClass) isNode()     {}
func (*Sequence) isNode()      {}
func (*Alternation) isNode()   {}
func (*Group) isNode()         {}
func (*Quantifier) isNode()    {}
func (*Anchor) isNode()        {}
func (*Backreference) isNode() {}
func (*Lookaround) isNode()    {}

// children returns the direct child nodes in left-to-right order.
func children(n Node) []Node {
	switch n := n.(type) {
	case *Sequence:
		return n.Children
	case *Alternation:
		return n.Branches
	case *Group:
		return []Node{n.Body}
	case *Quantifier:
		return []Node{n.Body}
	case *Lookaround:
		return []Node{n.Body}
	default:
		return nil
	}
}

// Walk visits root and all its descendants in pre-order, children left to
// right. The visit order is deterministic so diagnostics built on top of it
// are stable. Walk stops early if fn returns false.
func Walk(root Node, fn func(Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, c := range children(root) {
		Walk(c, fn)
	}
}

// NodeCount returns the total number of nodes in the tree rooted at root.
func NodeCount(root Node) int {
	count := 0
	Walk(root, func(Node) bool {
		count++
		return true
	})
	return count
}

// Equal reports whether two ASTs are structurally identical.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch a := a.(type) {
	case *Literal:
		b, ok := b.(*Literal)
		return ok && a.Text == b.Text
	case *CharClass:
		cb, ok := b.(*CharClass)
		if !ok || a.Negated != cb.Negated || len(a.Items) != len(cb.Items) {
			return false
		}
		for i, it := range a.Items {
			if it != cb.Items[i] {
				return false
			}
		}
		return true
	case *Sequence:
		sb, ok := b.(*Sequence)
		return ok && equalSlices(a.Children, sb.Children)
	case *Alternation:
		ab, ok := b.(*Alternation)
		return ok && equalSlices(a.Branches, ab.Branches)
	case *Group:
		gb, ok := b.(*Group)
		return ok && a.Capturing == gb.Capturing && a.Name == gb.Name && Equal(a.Body, gb.Body)
	case *Quantifier:
		qb, ok := b.(*Quantifier)
		return ok && a.Min == qb.Min && a.Max == qb.Max && a.Greedy == qb.Greedy &&
			a.Possessive == qb.Possessive && Equal(a.Body, qb.Body)
	case *Anchor:
		ab, ok := b.(*Anchor)
		return ok && a.Kind == ab.Kind
	case *Backreference:
		bb, ok := b.(*Backreference)
		return ok && a.Index == bb.Index && a.Name == bb.Name
	case *Lookaround:
		lb, ok := b.(*Lookaround)
		return ok && a.Behind == lb.Behind && a.Negated == lb.Negated && Equal(a.Body, lb.Body)
	default:
		return false
	}
}

func equalSlices(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
