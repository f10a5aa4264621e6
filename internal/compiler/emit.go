package compiler

import (
	"fmt"
	"strings"
)

// EmitOptions controls pattern serialization. When Anchor is set the whole
// pattern is wrapped so it must match the entire input rather than any
// substring.
type EmitOptions struct {
	Anchor bool
}

// Emit serializes the AST into a literal pattern string for the dialect.
// The AST is validated first: a construct the dialect cannot express
// fails with DialectIncompatibilityError before any serialization happens.
// Shapes no dialect can represent (an empty character class, an unknown
// node type) fail with EmitError.
func Emit(root Node, dialect Dialect, opts EmitOptions) (string, error) {
	if !dialect.Valid() {
		return "", &EmitError{Dialect: dialect, Cause: fmt.Errorf("unknown dialect")}
	}
	if root == nil {
		return "", &EmitError{Dialect: dialect, Cause: fmt.Errorf("nil AST")}
	}
	if err := ValidateForDialect(root, dialect); err != nil {
		return "", err
	}
	return emitValidated(root, dialect, opts)
}

// emitValidated serializes without re-linting. The converter uses it
// directly after applying downgrades.
func emitValidated(root Node, dialect Dialect, opts EmitOptions) (string, error) {
	e := &emitter{dialect: dialect}
	if err := e.emit(root); err != nil {
		return "", err
	}
	pattern := e.sb.String()
	if opts.Anchor {
		if _, ok := root.(*Alternation); ok {
			pattern = "^(?:" + pattern + ")$"
		} else {
			pattern = "^" + pattern + "$"
		}
	}
	return pattern, nil
}

// fragment renders a node for error messages and diagnostics. It uses the
// most permissive dialect syntax and swallows failures: a best-effort
// string beats no context in an error.
func fragment(n Node) string {
	if n == nil {
		return ""
	}
	e := &emitter{dialect: DialectPCRE}
	if err := e.emit(n); err != nil {
		return ""
	}
	return e.sb.String()
}

type emitter struct {
	dialect Dialect
	sb      strings.Builder
}

func (e *emitter) emit(n Node) error {
	switch n := n.(type) {
	case *Literal:
		e.sb.WriteString(escapeLiteral(n.Text))
		return nil
	case *CharClass:
		return e.emitClass(n)
	case *Sequence:
		for _, c := range n.Children {
			if _, ok := c.(*Alternation); ok {
				e.sb.WriteString("(?:")
				if err := e.emit(c); err != nil {
					return err
				}
				e.sb.WriteString(")")
				continue
			}
			if err := e.emit(c); err != nil {
				return err
			}
		}
		return nil
	case *Alternation:
		for i, b := range n.Branches {
			if i > 0 {
				e.sb.WriteString("|")
			}
			if err := e.emit(b); err != nil {
				return err
			}
		}
		return nil
	case *Group:
		switch {
		case n.Capturing && n.Name != "":
			fmt.Fprintf(&e.sb, dialects[e.dialect].namedGroupFmt, n.Name)
		case n.Capturing:
			e.sb.WriteString("(")
		default:
			e.sb.WriteString("(?:")
		}
		if err := e.emit(n.Body); err != nil {
			return err
		}
		e.sb.WriteString(")")
		return nil
	case *Quantifier:
		return e.emitQuantifier(n)
	case *Anchor:
		switch n.Kind {
		case AnchorStart:
			e.sb.WriteString("^")
		case AnchorEnd:
			e.sb.WriteString("$")
		case AnchorWordBoundary:
			e.sb.WriteString(`\b`)
		case AnchorNonWordBoundary:
			e.sb.WriteString(`\B`)
		default:
			return &EmitError{Dialect: e.dialect, Cause: fmt.Errorf("unknown anchor kind %d", n.Kind)}
		}
		return nil
	case *Backreference:
		if n.Name != "" {
			fmt.Fprintf(&e.sb, dialects[e.dialect].namedBackrefFmt, n.Name)
		} else {
			fmt.Fprintf(&e.sb, `\%d`, n.Index)
		}
		return nil
	case *Lookaround:
		switch {
		case n.Behind && n.Negated:
			e.sb.WriteString("(?<!")
		case n.Behind:
			e.sb.WriteString("(?<=")
		case n.Negated:
			e.sb.WriteString("(?!")
		default:
			e.sb.WriteString("(?=")
		}
		if err := e.emit(n.Body); err != nil {
			return err
		}
		e.sb.WriteString(")")
		return nil
	default:
		return &EmitError{Dialect: e.dialect, Cause: fmt.Errorf("unknown node type %T", n)}
	}
}

func (e *emitter) emitQuantifier(q *Quantifier) error {
	if needsQuantGroup(q.Body) {
		e.sb.WriteString("(?:")
		if err := e.emit(q.Body); err != nil {
			return err
		}
		e.sb.WriteString(")")
	} else if err := e.emit(q.Body); err != nil {
		return err
	}

	switch {
	case q.Min == 0 && q.Max == Unbounded:
		e.sb.WriteString("*")
	case q.Min == 1 && q.Max == Unbounded:
		e.sb.WriteString("+")
	case q.Min == 0 && q.Max == 1:
		e.sb.WriteString("?")
	case q.Max == Unbounded:
		fmt.Fprintf(&e.sb, "{%d,}", q.Min)
	case q.Min == q.Max:
		fmt.Fprintf(&e.sb, "{%d}", q.Min)
	default:
		fmt.Fprintf(&e.sb, "{%d,%d}", q.Min, q.Max)
	}

	if q.Possessive {
		e.sb.WriteString("+")
	} else if !q.Greedy {
		e.sb.WriteString("?")
	}
	return nil
}

// needsQuantGroup reports whether a quantifier body must be wrapped in a
// non-capturing group to keep the quantifier binding to the whole body.
func needsQuantGroup(body Node) bool {
	switch body := body.(type) {
	case *Literal:
		return len([]rune(body.Text)) != 1
	case *CharClass, *Group:
		return false
	default:
		return true
	}
}

func (e *emitter) emitClass(cc *CharClass) error {
	if len(cc.Items) == 0 {
		return &EmitError{Dialect: e.dialect, Cause: fmt.Errorf("empty character class")}
	}
	e.sb.WriteString("[")
	if cc.Negated {
		e.sb.WriteString("^")
	}
	for _, item := range cc.Items {
		if item.Property != "" {
			fmt.Fprintf(&e.sb, `\p{%s}`, item.Property)
			continue
		}
		if item.Hi < item.Lo {
			return &EmitError{Dialect: e.dialect, Cause: fmt.Errorf("invalid class range %q-%q", item.Lo, item.Hi)}
		}
		e.sb.WriteString(escapeClassRune(item.Lo))
		if item.Hi > item.Lo {
			e.sb.WriteString("-")
			e.sb.WriteString(escapeClassRune(item.Hi))
		}
	}
	e.sb.WriteString("]")
	return nil
}

// escapeLiteral escapes regex metacharacters so the text matches verbatim.
// The metacharacter set is common to all supported dialects.
func escapeLiteral(text string) string {
	var sb strings.Builder
	for _, r := range text {
		switch r {
		case '\\', '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$', '/':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func escapeClassRune(r rune) string {
	switch r {
	case '\\', ']', '^', '-', '[':
		return `\` + string(r)
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\f':
		return `\f`
	default:
		return string(r)
	}
}
