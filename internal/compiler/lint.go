package compiler

import "fmt"

// Severity classifies a diagnostic issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes are stable identifiers: one per feature family plus the
// structural and performance checks. Callers match on codes, never on
// message text.
const (
	CodeUnsupportedLookahead    = "UNSUPPORTED_LOOKAHEAD"
	CodeUnsupportedLookbehind   = "UNSUPPORTED_LOOKBEHIND"
	CodeUnsupportedBackref      = "UNSUPPORTED_BACKREF"
	CodeUnsupportedNamedGroup   = "UNSUPPORTED_NAMED_GROUP"
	CodeUnsupportedPossessive   = "UNSUPPORTED_POSSESSIVE"
	CodeUnsupportedUnicodeClass = "UNSUPPORTED_UNICODE_CLASS"
	CodeInvalidBackref          = "INVALID_BACKREF"
	CodeNestedQuantifier        = "NESTED_QUANTIFIER"
	CodeOverlappingAlternation  = "OVERLAPPING_ALTERNATION"
	CodeEmptyAlternationBranch  = "EMPTY_ALTERNATION_BRANCH"
)

// issueFeature maps feature-family issue codes to the dialect feature that
// was missing. Structural and performance codes are absent.
var issueFeature = map[string]Feature{
	CodeUnsupportedLookahead:    FeatureLookahead,
	CodeUnsupportedLookbehind:   FeatureLookbehind,
	CodeUnsupportedBackref:      FeatureBackreferences,
	CodeUnsupportedNamedGroup:   FeatureNamedGroups,
	CodeUnsupportedPossessive:   FeaturePossessive,
	CodeUnsupportedUnicodeClass: FeatureUnicodeClasses,
}

// Issue is a single lint finding. Node references the offending AST node
// when the finding is tied to one.
type Issue struct {
	Code     string
	Severity Severity
	Message  string
	Node     Node
}

// ValidationResult is the outcome of a lint run. Valid is false iff at
// least one issue has error severity. Issues are ordered by a pre-order
// walk of the AST, so their order is deterministic.
type ValidationResult struct {
	Valid  bool
	Issues []Issue
}

// Validate walks the AST once and reports every construct the dialect
// cannot express (error severity) along with supported-but-risky
// constructs (warning severity). The AST is never mutated.
func Validate(root Node, dialect Dialect) (ValidationResult, error) {
	if !dialect.Valid() {
		return ValidationResult{}, fmt.Errorf("unknown dialect %q", dialect)
	}
	if root == nil {
		return ValidationResult{}, fmt.Errorf("nil AST")
	}

	l := &linter{dialect: dialect}
	l.collectGroups(root)
	l.walk(root)

	valid := true
	for _, issue := range l.issues {
		if issue.Severity == SeverityError {
			valid = false
			break
		}
	}
	return ValidationResult{Valid: valid, Issues: l.issues}, nil
}

// ValidateForDialect is the strict form used by the emitter and converter:
// it returns nil when the AST is expressible in the dialect, a
// DialectIncompatibilityError naming the first missing feature, or a
// ValidationError when the failure is structural rather than a feature gap.
func ValidateForDialect(root Node, dialect Dialect) error {
	result, err := Validate(root, dialect)
	if err != nil {
		return err
	}
	if result.Valid {
		return nil
	}
	for _, issue := range result.Issues {
		if issue.Severity != SeverityError {
			continue
		}
		if feature, ok := issueFeature[issue.Code]; ok {
			return &DialectIncompatibilityError{
				Dialect: dialect,
				Feature: feature,
				Pattern: fragment(issue.Node),
			}
		}
	}
	return &ValidationError{Dialect: dialect, Issues: result.Issues}
}

type linter struct {
	dialect    Dialect
	issues     []Issue
	groupCount int
	groupNames map[string]bool

	// Groups encountered so far during the main walk. A backreference is
	// only valid when its group precedes it in pre-order, so a reference to
	// a group that exists but has not been seen yet is a forward reference.
	seenGroups int
	seenNames  map[string]bool
}

func (l *linter) report(code string, sev Severity, n Node, format string, args ...any) {
	l.issues = append(l.issues, Issue{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Node:     n,
	})
}

func (l *linter) collectGroups(root Node) {
	l.groupNames = make(map[string]bool)
	l.seenNames = make(map[string]bool)
	Walk(root, func(n Node) bool {
		if g, ok := n.(*Group); ok && g.Capturing {
			l.groupCount++
			if g.Name != "" {
				l.groupNames[g.Name] = true
			}
		}
		return true
	})
}

func (l *linter) walk(root Node) {
	Walk(root, func(n Node) bool {
		l.check(n)
		return true
	})
}

func (l *linter) check(n Node) {
	switch n := n.(type) {
	case *Lookaround:
		if n.Behind && !l.dialect.Supports(FeatureLookbehind) {
			l.report(CodeUnsupportedLookbehind, SeverityError, n,
				"dialect %s does not support lookbehind assertions", l.dialect)
		} else if !n.Behind && !l.dialect.Supports(FeatureLookahead) {
			l.report(CodeUnsupportedLookahead, SeverityError, n,
				"dialect %s does not support lookahead assertions", l.dialect)
		}
	case *Backreference:
		if !l.dialect.Supports(FeatureBackreferences) {
			l.report(CodeUnsupportedBackref, SeverityError, n,
				"dialect %s does not support backreferences", l.dialect)
		}
		if n.Name != "" {
			switch {
			case !l.groupNames[n.Name]:
				l.report(CodeInvalidBackref, SeverityError, n,
					"backreference to undefined group %q", n.Name)
			case !l.seenNames[n.Name]:
				l.report(CodeInvalidBackref, SeverityError, n,
					"backreference to group %q before the group is defined", n.Name)
			}
		} else {
			switch {
			case n.Index > l.groupCount:
				l.report(CodeInvalidBackref, SeverityError, n,
					"backreference to group %d but only %d capturing groups exist", n.Index, l.groupCount)
			case n.Index > l.seenGroups:
				l.report(CodeInvalidBackref, SeverityError, n,
					"backreference to group %d before the group is defined", n.Index)
			}
		}
	case *Group:
		if n.Name != "" && !l.dialect.Supports(FeatureNamedGroups) {
			l.report(CodeUnsupportedNamedGroup, SeverityError, n,
				"dialect %s does not support named groups", l.dialect)
		}
		if n.Capturing {
			l.seenGroups++
			if n.Name != "" {
				l.seenNames[n.Name] = true
			}
		}
	case *Quantifier:
		if n.Possessive && !l.dialect.Supports(FeaturePossessive) {
			l.report(CodeUnsupportedPossessive, SeverityError, n,
				"dialect %s does not support possessive quantifiers", l.dialect)
		}
		if n.Max == Unbounded {
			if containsUnboundedQuantifier(n.Body) {
				l.report(CodeNestedQuantifier, SeverityWarning, n,
					"unbounded quantifier over a subexpression containing an unbounded quantifier may backtrack catastrophically")
			}
			if alt := innerAlternation(n.Body); alt != nil && hasOverlappingBranches(alt) {
				l.report(CodeOverlappingAlternation, SeverityWarning, n,
					"unbounded quantifier over alternation branches that match the same characters may backtrack catastrophically")
			}
		}
	case *CharClass:
		for _, item := range n.Items {
			if item.Property != "" && !l.dialect.Supports(FeatureUnicodeClasses) {
				l.report(CodeUnsupportedUnicodeClass, SeverityError, n,
					"dialect %s does not support unicode property classes", l.dialect)
				break
			}
		}
	case *Alternation:
		for _, branch := range n.Branches {
			if isEmptyNode(branch) {
				l.report(CodeEmptyAlternationBranch, SeverityWarning, n,
					"alternation contains an empty branch")
				break
			}
		}
	}
}

func isEmptyNode(n Node) bool {
	switch n := n.(type) {
	case *Literal:
		return n.Text == ""
	case *Sequence:
		return len(n.Children) == 0
	default:
		return false
	}
}

func containsUnboundedQuantifier(root Node) bool {
	found := false
	Walk(root, func(n Node) bool {
		if q, ok := n.(*Quantifier); ok && q.Max == Unbounded {
			found = true
			return false
		}
		return true
	})
	return found
}

// innerAlternation unwraps groups to find a directly quantified
// alternation.
func innerAlternation(n Node) *Alternation {
	for {
		switch t := n.(type) {
		case *Alternation:
			return t
		case *Group:
			n = t.Body
		default:
			return nil
		}
	}
}

// hasOverlappingBranches reports whether two single-character branches of
// the alternation can match the same character.
func hasOverlappingBranches(alt *Alternation) bool {
	var sets [][]ClassItem
	for _, branch := range alt.Branches {
		if items, ok := singleCharItems(branch); ok {
			sets = append(sets, items)
		}
	}
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if itemsOverlap(sets[i], sets[j]) {
				return true
			}
		}
	}
	return false
}

// singleCharItems returns the rune ranges matched by a branch that
// consumes exactly one character, when that is statically known.
func singleCharItems(n Node) ([]ClassItem, bool) {
	switch n := n.(type) {
	case *Literal:
		runes := []rune(n.Text)
		if len(runes) != 1 {
			return nil, false
		}
		return []ClassItem{{Lo: runes[0], Hi: runes[0]}}, true
	case *CharClass:
		if n.Negated {
			return nil, false
		}
		for _, item := range n.Items {
			if item.Property != "" {
				return nil, false
			}
		}
		return n.Items, true
	default:
		return nil, false
	}
}

func itemsOverlap(a, b []ClassItem) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Lo <= y.Hi && y.Lo <= x.Hi {
				return true
			}
		}
	}
	return false
}
