package compiler

import (
	"fmt"
	"regexp"
)

// Builder is an immutable combinator wrapper around an AST node. Every
// combinator returns a new Builder and never mutates the receiver, so
// intermediate builders can be reused as sub-patterns of several larger
// patterns. Invalid combinator arguments (a negative repetition count, a
// malformed group name) are deferred as a CompilationError and surfaced by
// Node(); once a builder carries an error, further combinators are no-ops.
type Builder struct {
	node Node
	err  error
}

var groupNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Node returns the built AST, or the first error recorded while building.
func (b Builder) Node() (Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.node == nil {
		return nil, &CompilationError{Cause: fmt.Errorf("empty builder")}
	}
	return b.node, nil
}

func wrap(n Node) Builder { return Builder{node: n} }

func buildErr(format string, args ...any) Builder {
	return Builder{err: &CompilationError{Cause: fmt.Errorf(format, args...)}}
}

// Lit matches the given text verbatim; metacharacters are escaped at emit
// time, not here.
func Lit(text string) Builder {
	return wrap(&Literal{Text: text})
}

// Digit matches a single ASCII digit.
func Digit() Builder {
	return wrap(&CharClass{Items: []ClassItem{{Lo: '0', Hi: '9'}}})
}

// Word matches a single word character (letter, digit or underscore).
func Word() Builder {
	return wrap(&CharClass{Items: []ClassItem{
		{Lo: '0', Hi: '9'},
		{Lo: 'A', Hi: 'Z'},
		{Lo: '_', Hi: '_'},
		{Lo: 'a', Hi: 'z'},
	}})
}

// Whitespace matches a single whitespace character.
func Whitespace() Builder {
	return wrap(&CharClass{Items: []ClassItem{
		{Lo: '\t', Hi: '\n'},
		{Lo: '\f', Hi: '\r'},
		{Lo: ' ', Hi: ' '},
	}})
}

// AnyChar matches any single character except newline.
func AnyChar() Builder {
	return wrap(&CharClass{Negated: true, Items: []ClassItem{{Lo: '\n', Hi: '\n'}}})
}

// Chars matches any single character from the given set.
func Chars(set string) Builder {
	if set == "" {
		return buildErr("character set cannot be empty")
	}
	cc := &CharClass{}
	for _, r := range set {
		cc.Items = append(cc.Items, ClassItem{Lo: r, Hi: r})
	}
	return wrap(cc)
}

// Range matches any single character in the inclusive range lo..hi.
func Range(lo, hi rune) Builder {
	if hi < lo {
		return buildErr("invalid character range %q-%q", lo, hi)
	}
	return wrap(&CharClass{Items: []ClassItem{{Lo: lo, Hi: hi}}})
}

// UnicodeClass matches any single character with the given Unicode
// property, e.g. "L" or "Greek".
func UnicodeClass(property string) Builder {
	if property == "" {
		return buildErr("unicode property name cannot be empty")
	}
	return wrap(&CharClass{Items: []ClassItem{{Property: property}}})
}

// Negate returns a builder matching any character NOT matched by b, which
// must be a character class.
func (b Builder) Negate() Builder {
	if b.err != nil {
		return b
	}
	cc, ok := b.node.(*CharClass)
	if !ok {
		return buildErr("only character classes can be negated")
	}
	return wrap(&CharClass{Items: cc.Items, Negated: !cc.Negated})
}

// StartOfInput asserts the match starts at the beginning of the input.
func StartOfInput() Builder { return wrap(&Anchor{Kind: AnchorStart}) }

// EndOfInput asserts the match ends at the end of the input.
func EndOfInput() Builder { return wrap(&Anchor{Kind: AnchorEnd}) }

// WordBoundary asserts a word boundary at the current position.
func WordBoundary() Builder { return wrap(&Anchor{Kind: AnchorWordBoundary}) }

// NonWordBoundary asserts the absence of a word boundary.
func NonWordBoundary() Builder { return wrap(&Anchor{Kind: AnchorNonWordBoundary}) }

// BackrefIndex matches the text captured by the n-th capturing group.
func BackrefIndex(n int) Builder {
	if n < 1 {
		return buildErr("backreference index must be >= 1, got %d", n)
	}
	return wrap(&Backreference{Index: n})
}

// BackrefName matches the text captured by the named group.
func BackrefName(name string) Builder {
	if !groupNameRE.MatchString(name) {
		return buildErr("invalid group name %q", name)
	}
	return wrap(&Backreference{Name: name})
}

// Then concatenates b and next. Nested sequences are flattened so that
// a.Then(b).Then(c) yields a single three-child sequence, keeping the AST
// canonical at construction time.
func (b Builder) Then(next Builder) Builder {
	if b.err != nil {
		return b
	}
	if next.err != nil {
		return next
	}
	seq := &Sequence{}
	seq.Children = append(seq.Children, flattenSeq(b.node)...)
	seq.Children = append(seq.Children, flattenSeq(next.node)...)
	return wrap(seq)
}

func flattenSeq(n Node) []Node {
	if s, ok := n.(*Sequence); ok {
		return s.Children
	}
	return []Node{n}
}

// Or alternates between b and next, trying b first. Nested alternations
// are flattened the same way Then flattens sequences.
func (b Builder) Or(next Builder) Builder {
	if b.err != nil {
		return b
	}
	if next.err != nil {
		return next
	}
	alt := &Alternation{}
	alt.Branches = append(alt.Branches, flattenAlt(b.node)...)
	alt.Branches = append(alt.Branches, flattenAlt(next.node)...)
	return wrap(alt)
}

func flattenAlt(n Node) []Node {
	if a, ok := n.(*Alternation); ok {
		return a.Branches
	}
	return []Node{n}
}

// Group wraps b in an unnamed capturing group.
func (b Builder) Group() Builder {
	if b.err != nil {
		return b
	}
	return wrap(&Group{Body: b.node, Capturing: true})
}

// NamedGroup wraps b in a named capturing group.
func (b Builder) NamedGroup(name string) Builder {
	if b.err != nil {
		return b
	}
	if !groupNameRE.MatchString(name) {
		return buildErr("invalid group name %q", name)
	}
	return wrap(&Group{Body: b.node, Capturing: true, Name: name})
}

// NonCapturing wraps b in a non-capturing group.
func (b Builder) NonCapturing() Builder {
	if b.err != nil {
		return b
	}
	return wrap(&Group{Body: b.node})
}

// OneOrMore repeats b one or more times (greedy).
func (b Builder) OneOrMore() Builder { return b.Between(1, Unbounded) }

// ZeroOrMore repeats b zero or more times (greedy).
func (b Builder) ZeroOrMore() Builder { return b.Between(0, Unbounded) }

// Optional matches b zero or one time (greedy).
func (b Builder) Optional() Builder { return b.Between(0, 1) }

// Exactly repeats b exactly n times.
func (b Builder) Exactly(n int) Builder { return b.Between(n, n) }

// AtLeast repeats b at least n times with no upper bound.
func (b Builder) AtLeast(n int) Builder { return b.Between(n, Unbounded) }

// Between repeats b between min and max times. Pass Unbounded as max for
// no upper bound.
func (b Builder) Between(min, max int) Builder {
	if b.err != nil {
		return b
	}
	if min < 0 {
		return buildErr("quantifier minimum must be >= 0, got %d", min)
	}
	if max != Unbounded && max < min {
		return buildErr("quantifier maximum %d is below minimum %d", max, min)
	}
	return wrap(&Quantifier{Body: b.node, Min: min, Max: max, Greedy: true})
}

// NonGreedy makes the outermost quantifier of b lazy. It must directly
// follow a quantifier combinator.
func (b Builder) NonGreedy() Builder {
	if b.err != nil {
		return b
	}
	q, ok := b.node.(*Quantifier)
	if !ok {
		return buildErr("NonGreedy must follow a quantifier")
	}
	return wrap(&Quantifier{Body: q.Body, Min: q.Min, Max: q.Max, Greedy: false, Possessive: q.Possessive})
}

// Possessive makes the outermost quantifier of b possessive. It must
// directly follow a quantifier combinator. Only some dialects support
// possessive quantifiers; the linter reports an error for the rest.
func (b Builder) Possessive() Builder {
	if b.err != nil {
		return b
	}
	q, ok := b.node.(*Quantifier)
	if !ok {
		return buildErr("Possessive must follow a quantifier")
	}
	return wrap(&Quantifier{Body: q.Body, Min: q.Min, Max: q.Max, Greedy: true, Possessive: true})
}

// LookAhead asserts that body matches at the current position without
// consuming input.
func LookAhead(body Builder) Builder { return lookaround(body, false, false) }

// NegLookAhead asserts that body does not match at the current position.
func NegLookAhead(body Builder) Builder { return lookaround(body, false, true) }

// LookBehind asserts that body matches immediately before the current
// position.
func LookBehind(body Builder) Builder { return lookaround(body, true, false) }

// NegLookBehind asserts that body does not match immediately before the
// current position.
func NegLookBehind(body Builder) Builder { return lookaround(body, true, true) }

func lookaround(body Builder, behind, negated bool) Builder {
	if body.err != nil {
		return body
	}
	return wrap(&Lookaround{Body: body.node, Behind: behind, Negated: negated})
}
