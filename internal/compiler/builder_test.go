package compiler

import (
	"errors"
	"testing"
)

func mustNode(t *testing.T, b Builder) Node {
	t.Helper()
	n, err := b.Node()
	if err != nil {
		t.Fatalf("builder failed: %v", err)
	}
	return n
}

func TestThenFlattensSequences(t *testing.T) {
	n := mustNode(t, Lit("a").Then(Lit("b")).Then(Lit("c")))
	seq, ok := n.(*Sequence)
	if !ok {
		t.Fatalf("got %T, want *Sequence", n)
	}
	if len(seq.Children) != 3 {
		t.Fatalf("got %d children, want 3", len(seq.Children))
	}
	for i, want := range []string{"a", "b", "c"} {
		lit, ok := seq.Children[i].(*Literal)
		if !ok || lit.Text != want {
			t.Errorf("child %d = %#v, want literal %q", i, seq.Children[i], want)
		}
	}
}

func TestOrFlattensAlternations(t *testing.T) {
	n := mustNode(t, Lit("a").Or(Lit("b")).Or(Lit("c")))
	alt, ok := n.(*Alternation)
	if !ok {
		t.Fatalf("got %T, want *Alternation", n)
	}
	if len(alt.Branches) != 3 {
		t.Errorf("got %d branches, want 3", len(alt.Branches))
	}
}

func TestBuilderIsImmutable(t *testing.T) {
	base := Lit("a")
	_ = base.Then(Lit("b"))
	_ = base.OneOrMore()

	n := mustNode(t, base)
	if lit, ok := n.(*Literal); !ok || lit.Text != "a" {
		t.Errorf("base builder changed: %#v", n)
	}
}

func TestQuantifierRangeErrors(t *testing.T) {
	tests := []struct {
		name string
		b    Builder
	}{
		{"negative min", Lit("a").Between(-1, 2)},
		{"max below min", Lit("a").Between(3, 2)},
		{"negative exactly", Lit("a").Exactly(-2)},
		{"nongreedy on literal", Lit("a").NonGreedy()},
		{"possessive on literal", Lit("a").Possessive()},
		{"bad group name", Lit("a").NamedGroup("1bad")},
		{"bad backref index", BackrefIndex(0)},
		{"inverted range", Range('z', 'a')},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Node()
			if err == nil {
				t.Fatal("expected error, got none")
			}
			var cerr *CompilationError
			if !errors.As(err, &cerr) {
				t.Errorf("error type = %T, want *CompilationError", err)
			}
		})
	}
}

func TestBuilderErrorPropagates(t *testing.T) {
	b := Lit("a").Between(3, 1).Then(Lit("b")).OneOrMore().Group()
	if _, err := b.Node(); err == nil {
		t.Fatal("expected deferred error to survive chained combinators")
	}
}

func TestUnboundedQuantifiers(t *testing.T) {
	tests := []struct {
		name     string
		b        Builder
		min, max int
	}{
		{"one or more", Lit("a").OneOrMore(), 1, Unbounded},
		{"zero or more", Lit("a").ZeroOrMore(), 0, Unbounded},
		{"optional", Lit("a").Optional(), 0, 1},
		{"exactly", Lit("a").Exactly(4), 4, 4},
		{"at least", Lit("a").AtLeast(2), 2, Unbounded},
		{"between", Lit("a").Between(2, 5), 2, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := mustNode(t, tt.b).(*Quantifier)
			if !ok {
				t.Fatal("not a quantifier")
			}
			if q.Min != tt.min || q.Max != tt.max {
				t.Errorf("bounds = {%d, %d}, want {%d, %d}", q.Min, q.Max, tt.min, tt.max)
			}
			if !q.Greedy {
				t.Error("quantifiers default to greedy")
			}
		})
	}
}

func TestNonGreedyAndPossessive(t *testing.T) {
	q := mustNode(t, Lit("a").OneOrMore().NonGreedy()).(*Quantifier)
	if q.Greedy {
		t.Error("NonGreedy left quantifier greedy")
	}
	q = mustNode(t, Lit("a").OneOrMore().Possessive()).(*Quantifier)
	if !q.Possessive || !q.Greedy {
		t.Errorf("Possessive: got greedy=%v possessive=%v", q.Greedy, q.Possessive)
	}
}

func TestNegate(t *testing.T) {
	cc := mustNode(t, Digit().Negate()).(*CharClass)
	if !cc.Negated {
		t.Error("Negate did not negate")
	}
	if _, err := Lit("ab").Negate().Node(); err == nil {
		t.Error("Negate on a literal should fail")
	}
}
