package compiler

import "fmt"

// OptimizeOptions selects which rewrite passes run and bounds the number
// of full sweeps. Logger may be nil.
type OptimizeOptions struct {
	ConstantFolding          bool
	QuantifierSimplification bool
	CharClassMerging         bool
	AlternationDedup         bool
	MaxPasses                int
	Logger                   *Logger
}

// DefaultOptimizeOptions enables every pass with a small sweep budget.
func DefaultOptimizeOptions() OptimizeOptions {
	return OptimizeOptions{
		ConstantFolding:          true,
		QuantifierSimplification: true,
		CharClassMerging:         true,
		AlternationDedup:         true,
		MaxPasses:                8,
	}
}

// OptimizeResult carries the rewritten AST plus reduction bookkeeping.
// NodesReduced is the decrease in total node count over the whole run
// (never negative); PassesApplied counts full sweeps executed.
type OptimizeResult struct {
	AST           Node
	NodesReduced  int
	PassesApplied int
}

type pass struct {
	name string
	fn   func(Node) (Node, bool, error)
}

// Optimize applies the enabled semantics-preserving passes bottom-up,
// sweeping repeatedly until a fixpoint or MaxPasses sweeps, whichever
// comes first. The input AST is never mutated; every change allocates new
// nodes.
func Optimize(root Node, opts OptimizeOptions) (OptimizeResult, error) {
	if root == nil {
		return OptimizeResult{}, fmt.Errorf("nil AST")
	}
	if opts.MaxPasses < 1 {
		return OptimizeResult{}, fmt.Errorf("MaxPasses must be >= 1, got %d", opts.MaxPasses)
	}

	// Fixed pass order per sweep.
	var passes []pass
	if opts.ConstantFolding {
		passes = append(passes, pass{"constant-folding", foldLiterals})
	}
	if opts.QuantifierSimplification {
		passes = append(passes, pass{"quantifier-simplification", simplifyQuantifier})
	}
	if opts.CharClassMerging {
		passes = append(passes, pass{"char-class-merging", mergeCharClasses})
	}
	if opts.AlternationDedup {
		passes = append(passes, pass{"alternation-dedup", dedupAlternation})
	}

	before := NodeCount(root)
	current := root
	sweeps := 0
	for sweeps < opts.MaxPasses {
		sweeps++
		changed := false
		for _, p := range passes {
			next, c, err := rewrite(current, p.fn, p.name)
			if err != nil {
				return OptimizeResult{}, err
			}
			if c {
				changed = true
				opts.Logger.Log("sweep %d: pass %s changed the AST", sweeps, p.name)
			}
			current = next
		}
		if !changed {
			break
		}
	}

	after := NodeCount(current)
	reduced := before - after
	if reduced < 0 {
		reduced = 0
	}
	opts.Logger.Log("optimize done: %d sweeps, %d -> %d nodes", sweeps, before, after)
	return OptimizeResult{AST: current, NodesReduced: reduced, PassesApplied: sweeps}, nil
}

// rewrite applies fn bottom-up: children are rebuilt first, the node is
// re-canonicalized, then fn gets a chance to rewrite it. Unknown node
// types abort with an OptimizationError naming the phase.
func rewrite(n Node, fn func(Node) (Node, bool, error), phase string) (Node, bool, error) {
	rebuilt, childChanged, err := rebuildChildren(n, fn, phase)
	if err != nil {
		return nil, false, err
	}
	canon, canonChanged := canonicalize(rebuilt)
	out, selfChanged, err := fn(canon)
	if err != nil {
		return nil, false, err
	}
	// A rewrite may expose a new canonicalization opportunity (e.g. a
	// quantifier collapsing into a one-child sequence slot).
	out, c2 := canonicalize(out)
	return out, childChanged || canonChanged || selfChanged || c2, nil
}

func rebuildChildren(n Node, fn func(Node) (Node, bool, error), phase string) (Node, bool, error) {
	switch n := n.(type) {
	case *Literal, *CharClass, *Anchor, *Backreference:
		return n, false, nil
	case *Sequence:
		kids, changed, err := rewriteAll(n.Children, fn, phase)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return n, false, nil
		}
		return &Sequence{Children: kids}, true, nil
	case *Alternation:
		branches, changed, err := rewriteAll(n.Branches, fn, phase)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return n, false, nil
		}
		return &Alternation{Branches: branches}, true, nil
	case *Group:
		body, changed, err := rewrite(n.Body, fn, phase)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return n, false, nil
		}
		return &Group{Body: body, Capturing: n.Capturing, Name: n.Name}, true, nil
	case *Quantifier:
		body, changed, err := rewrite(n.Body, fn, phase)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return n, false, nil
		}
		return &Quantifier{Body: body, Min: n.Min, Max: n.Max, Greedy: n.Greedy, Possessive: n.Possessive}, true, nil
	case *Lookaround:
		body, changed, err := rewrite(n.Body, fn, phase)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return n, false, nil
		}
		return &Lookaround{Body: body, Behind: n.Behind, Negated: n.Negated}, true, nil
	default:
		return nil, false, &OptimizationError{Phase: phase, Reason: fmt.Sprintf("unknown node type %T", n)}
	}
}

func rewriteAll(nodes []Node, fn func(Node) (Node, bool, error), phase string) ([]Node, bool, error) {
	out := make([]Node, len(nodes))
	changed := false
	for i, n := range nodes {
		c, ch, err := rewrite(n, fn, phase)
		if err != nil {
			return nil, false, err
		}
		out[i] = c
		changed = changed || ch
	}
	return out, changed, nil
}

// canonicalize restores the structural invariants every pass relies on:
// sequences and alternations are flat, sequences contain no empty-match
// children, and one-child wrappers collapse into their child.
func canonicalize(n Node) (Node, bool) {
	switch n := n.(type) {
	case *Sequence:
		var kids []Node
		changed := false
		for _, c := range n.Children {
			if s, ok := c.(*Sequence); ok {
				kids = append(kids, s.Children...)
				changed = true
				continue
			}
			if isEmptyNode(c) {
				changed = true
				continue
			}
			kids = append(kids, c)
		}
		switch len(kids) {
		case 0:
			if len(n.Children) == 0 {
				return n, false
			}
			return &Sequence{}, true
		case 1:
			return kids[0], true
		}
		if !changed {
			return n, false
		}
		return &Sequence{Children: kids}, true
	case *Alternation:
		var branches []Node
		changed := false
		for _, b := range n.Branches {
			if a, ok := b.(*Alternation); ok {
				branches = append(branches, a.Branches...)
				changed = true
				continue
			}
			branches = append(branches, b)
		}
		if len(branches) == 1 {
			return branches[0], true
		}
		if !changed {
			return n, false
		}
		return &Alternation{Branches: branches}, true
	default:
		return n, false
	}
}

// foldLiterals merges adjacent literal children of a sequence.
func foldLiterals(n Node) (Node, bool, error) {
	seq, ok := n.(*Sequence)
	if !ok {
		return n, false, nil
	}
	var kids []Node
	changed := false
	for _, c := range seq.Children {
		lit, isLit := c.(*Literal)
		if isLit && len(kids) > 0 {
			if prev, prevLit := kids[len(kids)-1].(*Literal); prevLit {
				kids[len(kids)-1] = &Literal{Text: prev.Text + lit.Text}
				changed = true
				continue
			}
		}
		kids = append(kids, c)
	}
	if !changed {
		return seq, false, nil
	}
	return &Sequence{Children: kids}, true, nil
}

// simplifyQuantifier applies the quantifier identities: a wrapper around a
// {1,1} quantifier hoists its body, a {1,1} quantifier collapses into its
// body, and a {0,0} quantifier collapses into an empty match.
func simplifyQuantifier(n Node) (Node, bool, error) {
	q, ok := n.(*Quantifier)
	if !ok {
		return n, false, nil
	}
	if inner, ok := q.Body.(*Quantifier); ok && inner.Min == 1 && inner.Max == 1 && inner.Greedy == q.Greedy {
		return &Quantifier{Body: inner.Body, Min: q.Min, Max: q.Max, Greedy: q.Greedy, Possessive: q.Possessive}, true, nil
	}
	if q.Min == 1 && q.Max == 1 && !q.Possessive {
		return q.Body, true, nil
	}
	if q.Min == 0 && q.Max == 0 {
		return &Sequence{}, true, nil
	}
	return q, false, nil
}

// mergeCharClasses merges runs of adjacent alternation branches that each
// match exactly one character into a single character class. Only
// non-negated, property-free branches qualify; for single characters the
// alternation and the class are exactly equivalent, so first-match-wins
// ordering is preserved.
func mergeCharClasses(n Node) (Node, bool, error) {
	alt, ok := n.(*Alternation)
	if !ok {
		return n, false, nil
	}
	var branches []Node
	changed := false
	i := 0
	for i < len(alt.Branches) {
		items, mergeable := singleCharItems(alt.Branches[i])
		if !mergeable {
			branches = append(branches, alt.Branches[i])
			i++
			continue
		}
		run := append([]ClassItem(nil), items...)
		j := i + 1
		for j < len(alt.Branches) {
			next, ok := singleCharItems(alt.Branches[j])
			if !ok {
				break
			}
			run = append(run, next...)
			j++
		}
		if j-i >= 2 {
			branches = append(branches, &CharClass{Items: run})
			changed = true
		} else {
			branches = append(branches, alt.Branches[i])
		}
		i = j
	}
	if !changed {
		return alt, false, nil
	}
	return &Alternation{Branches: branches}, true, nil
}

// dedupAlternation drops branches that are structurally identical to an
// earlier branch. The first occurrence always survives so left-to-right
// matching semantics are unchanged.
func dedupAlternation(n Node) (Node, bool, error) {
	alt, ok := n.(*Alternation)
	if !ok {
		return n, false, nil
	}
	var branches []Node
	changed := false
	for _, b := range alt.Branches {
		dup := false
		for _, kept := range branches {
			if Equal(b, kept) {
				dup = true
				break
			}
		}
		if dup {
			changed = true
			continue
		}
		branches = append(branches, b)
	}
	if !changed {
		return alt, false, nil
	}
	return &Alternation{Branches: branches}, true, nil
}
