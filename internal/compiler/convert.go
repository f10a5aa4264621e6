package compiler

import (
	"fmt"
	"regexp/syntax"
)

// Downgrade warning codes. Each rewrite that loses fidelity during a
// conversion is reported under one of these so callers can see exactly
// what was dropped or weakened.
const (
	CodeDowngradedLookaround = "DOWNGRADED_LOOKAROUND"
	CodeDowngradedBackref    = "DOWNGRADED_BACKREF"
	CodeDowngradedPossessive = "DOWNGRADED_POSSESSIVE"
	CodeDowngradedNamedGroup = "DOWNGRADED_NAMED_GROUP"
)

// ConvertOptions controls conversion behavior. With AllowDowngrades set,
// constructs the target dialect cannot express are rewritten or dropped
// and each such change is recorded as a warning; without it any
// incompatibility is a hard failure.
type ConvertOptions struct {
	AllowDowngrades bool
}

// DefaultConvertOptions allows downgrades.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{AllowDowngrades: true}
}

// ConvertResult is a re-targeted pattern plus the fidelity warnings
// accumulated while downgrading.
type ConvertResult struct {
	Pattern  string
	Warnings []Issue
}

// Convert re-targets an emitted pattern string from one dialect to
// another by re-deriving its AST and emitting for the target dialect.
//
// Re-derivation is deliberately scoped: it handles patterns produced via
// the builder/AST path and, more generally, anything expressible in RE2
// syntax. A source pattern using constructs outside that subset (e.g. a
// hand-written PCRE lookbehind) fails with an EmitError directing the
// caller to the AST-based path.
func Convert(pattern string, from, to Dialect, opts ConvertOptions) (ConvertResult, error) {
	if !from.Valid() {
		return ConvertResult{}, fmt.Errorf("unknown source dialect %q", from)
	}
	if !to.Valid() {
		return ConvertResult{}, fmt.Errorf("unknown target dialect %q", to)
	}
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return ConvertResult{}, &EmitError{
			Fragment: pattern,
			Dialect:  from,
			Cause:    fmt.Errorf("pattern cannot be re-derived into an AST; only builder-produced patterns are convertible: %w", err),
		}
	}
	root, err := fromSyntax(re)
	if err != nil {
		return ConvertResult{}, &EmitError{Fragment: pattern, Dialect: from, Cause: err}
	}
	return ConvertAST(root, to, opts)
}

// ConvertAST validates the AST against the target dialect and emits it,
// downgrading unsupported constructs when allowed.
func ConvertAST(root Node, to Dialect, opts ConvertOptions) (ConvertResult, error) {
	if root == nil {
		return ConvertResult{}, fmt.Errorf("nil AST")
	}
	err := ValidateForDialect(root, to)
	if err == nil {
		pattern, err := emitValidated(root, to, EmitOptions{})
		if err != nil {
			return ConvertResult{}, err
		}
		return ConvertResult{Pattern: pattern}, nil
	}
	if !opts.AllowDowngrades {
		return ConvertResult{}, err
	}

	downgraded, warnings, err := downgrade(root, to)
	if err != nil {
		return ConvertResult{}, err
	}
	if err := ValidateForDialect(downgraded, to); err != nil {
		return ConvertResult{}, err
	}
	pattern, err := emitValidated(downgraded, to, EmitOptions{})
	if err != nil {
		return ConvertResult{}, err
	}
	return ConvertResult{Pattern: pattern, Warnings: warnings}, nil
}

// downgrade rewrites the AST bottom-up, replacing constructs the target
// dialect cannot express with a weaker equivalent (or dropping zero-width
// ones), recording one warning per rewrite. Constructs with no safe
// rewrite (a unicode property class on a dialect without them) remain a
// hard DialectIncompatibilityError.
func downgrade(n Node, to Dialect) (Node, []Issue, error) {
	var warnings []Issue

	rebuildKids := func(nodes []Node) ([]Node, error) {
		out := make([]Node, len(nodes))
		for i, c := range nodes {
			nc, w, err := downgrade(c, to)
			if err != nil {
				return nil, err
			}
			warnings = append(warnings, w...)
			out[i] = nc
		}
		return out, nil
	}

	switch n := n.(type) {
	case *Literal, *Anchor:
		return n, nil, nil
	case *CharClass:
		for _, item := range n.Items {
			if item.Property != "" && !to.Supports(FeatureUnicodeClasses) {
				return nil, nil, &DialectIncompatibilityError{
					Dialect: to,
					Feature: FeatureUnicodeClasses,
					Pattern: fragment(n),
				}
			}
		}
		return n, nil, nil
	case *Sequence:
		kids, err := rebuildKids(n.Children)
		if err != nil {
			return nil, nil, err
		}
		return &Sequence{Children: kids}, warnings, nil
	case *Alternation:
		branches, err := rebuildKids(n.Branches)
		if err != nil {
			return nil, nil, err
		}
		return &Alternation{Branches: branches}, warnings, nil
	case *Group:
		body, w, err := downgrade(n.Body, to)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
		name := n.Name
		if name != "" && !to.Supports(FeatureNamedGroups) {
			warnings = append(warnings, Issue{
				Code:     CodeDowngradedNamedGroup,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("named group %q downgraded to an unnamed capturing group", name),
				Node:     n,
			})
			name = ""
		}
		return &Group{Body: body, Capturing: n.Capturing, Name: name}, warnings, nil
	case *Quantifier:
		body, w, err := downgrade(n.Body, to)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
		possessive := n.Possessive
		if possessive && !to.Supports(FeaturePossessive) {
			warnings = append(warnings, Issue{
				Code:     CodeDowngradedPossessive,
				Severity: SeverityWarning,
				Message:  "possessive quantifier downgraded to greedy",
				Node:     n,
			})
			possessive = false
		}
		return &Quantifier{Body: body, Min: n.Min, Max: n.Max, Greedy: n.Greedy, Possessive: possessive}, warnings, nil
	case *Backreference:
		if !to.Supports(FeatureBackreferences) {
			return &Sequence{}, []Issue{{
				Code:     CodeDowngradedBackref,
				Severity: SeverityWarning,
				Message:  "backreference dropped: target dialect does not support backreferences",
				Node:     n,
			}}, nil
		}
		return n, nil, nil
	case *Lookaround:
		feature := FeatureLookahead
		if n.Behind {
			feature = FeatureLookbehind
		}
		if !to.Supports(feature) {
			return &Sequence{}, []Issue{{
				Code:     CodeDowngradedLookaround,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s assertion dropped: unsupported by target dialect", feature),
				Node:     n,
			}}, nil
		}
		body, w, err := downgrade(n.Body, to)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
		return &Lookaround{Body: body, Behind: n.Behind, Negated: n.Negated}, warnings, nil
	default:
		return nil, nil, &EmitError{Dialect: to, Cause: fmt.Errorf("unknown node type %T", n)}
	}
}

// fromSyntax maps a parsed regexp/syntax tree onto the pattern AST.
func fromSyntax(re *syntax.Regexp) (Node, error) {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return &Sequence{}, nil
	case syntax.OpLiteral:
		return &Literal{Text: string(re.Rune)}, nil
	case syntax.OpCharClass:
		cc := &CharClass{}
		for i := 0; i+1 < len(re.Rune); i += 2 {
			cc.Items = append(cc.Items, ClassItem{Lo: re.Rune[i], Hi: re.Rune[i+1]})
		}
		return cc, nil
	case syntax.OpAnyCharNotNL:
		return &CharClass{Negated: true, Items: []ClassItem{{Lo: '\n', Hi: '\n'}}}, nil
	case syntax.OpAnyChar:
		return &CharClass{Items: []ClassItem{{Lo: 0, Hi: 0x10FFFF}}}, nil
	case syntax.OpBeginLine, syntax.OpBeginText:
		return &Anchor{Kind: AnchorStart}, nil
	case syntax.OpEndLine, syntax.OpEndText:
		return &Anchor{Kind: AnchorEnd}, nil
	case syntax.OpWordBoundary:
		return &Anchor{Kind: AnchorWordBoundary}, nil
	case syntax.OpNoWordBoundary:
		return &Anchor{Kind: AnchorNonWordBoundary}, nil
	case syntax.OpCapture:
		body, err := fromSyntax(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return &Group{Body: body, Capturing: true, Name: re.Name}, nil
	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		body, err := fromSyntax(re.Sub[0])
		if err != nil {
			return nil, err
		}
		q := &Quantifier{Body: body, Greedy: re.Flags&syntax.NonGreedy == 0}
		switch re.Op {
		case syntax.OpStar:
			q.Min, q.Max = 0, Unbounded
		case syntax.OpPlus:
			q.Min, q.Max = 1, Unbounded
		case syntax.OpQuest:
			q.Min, q.Max = 0, 1
		default:
			q.Min = re.Min
			q.Max = re.Max
			if re.Max == -1 {
				q.Max = Unbounded
			}
		}
		return q, nil
	case syntax.OpConcat:
		seq := &Sequence{}
		for _, sub := range re.Sub {
			c, err := fromSyntax(sub)
			if err != nil {
				return nil, err
			}
			seq.Children = append(seq.Children, c)
		}
		return seq, nil
	case syntax.OpAlternate:
		alt := &Alternation{}
		for _, sub := range re.Sub {
			b, err := fromSyntax(sub)
			if err != nil {
				return nil, err
			}
			alt.Branches = append(alt.Branches, b)
		}
		return alt, nil
	default:
		return nil, fmt.Errorf("unsupported construct %s", re.Op)
	}
}
