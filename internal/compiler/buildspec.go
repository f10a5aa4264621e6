package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BuildSpec is the declarative form of a pattern: a YAML (or JSON)
// document describing one AST node, with children nested inside. All
// three build inputs — builder calls, a library name and a BuildSpec —
// normalize to the same AST, so every later operation treats them
// identically.
//
// Exactly one of the form fields must be set per node, except that the
// class fields (Class, Chars, Ranges, Unicode) combine into a single
// character class.
type BuildSpec struct {
	Literal *string `yaml:"literal,omitempty"`

	Class   string      `yaml:"class,omitempty"` // digit | word | whitespace | any
	Chars   string      `yaml:"chars,omitempty"`
	Ranges  []RangeSpec `yaml:"ranges,omitempty"`
	Unicode string      `yaml:"unicode,omitempty"`
	Negated bool        `yaml:"negated,omitempty"`

	Library string `yaml:"library,omitempty"`

	Sequence []BuildSpec `yaml:"sequence,omitempty"`
	OneOf    []BuildSpec `yaml:"oneOf,omitempty"`

	Group      *GroupSpec   `yaml:"group,omitempty"`
	Repeat     *RepeatSpec  `yaml:"repeat,omitempty"`
	Anchor     string       `yaml:"anchor,omitempty"` // start | end | word-boundary | non-word-boundary
	Lookahead  *LookSpec    `yaml:"lookahead,omitempty"`
	Lookbehind *LookSpec    `yaml:"lookbehind,omitempty"`
	Backref    *BackrefSpec `yaml:"backref,omitempty"`
}

// RangeSpec is an inclusive character range inside a class form.
type RangeSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// GroupSpec wraps a sub-spec in a group.
type GroupSpec struct {
	Of      BuildSpec `yaml:"of"`
	Capture bool      `yaml:"capture"`
	Name    string    `yaml:"name,omitempty"`
}

// RepeatSpec quantifies a sub-spec. A nil Max means unbounded; a nil
// Greedy defaults to greedy.
type RepeatSpec struct {
	Of         BuildSpec `yaml:"of"`
	Min        int       `yaml:"min"`
	Max        *int      `yaml:"max,omitempty"`
	Greedy     *bool     `yaml:"greedy,omitempty"`
	Possessive bool      `yaml:"possessive,omitempty"`
}

// LookSpec is a lookahead or lookbehind assertion on a sub-spec.
type LookSpec struct {
	Of      BuildSpec `yaml:"of"`
	Negated bool      `yaml:"negated,omitempty"`
}

// BackrefSpec references a prior capturing group by index or name.
type BackrefSpec struct {
	Index int    `yaml:"index,omitempty"`
	Name  string `yaml:"name,omitempty"`
}

// ParseBuildSpec decodes a declarative spec document and builds its AST.
func ParseBuildSpec(data []byte) (Node, error) {
	var spec BuildSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, &CompilationError{Cause: fmt.Errorf("invalid build spec: %w", err)}
	}
	return spec.Build()
}

// Build converts the spec into an AST node.
func (s *BuildSpec) Build() (Node, error) {
	b, err := s.builder()
	if err != nil {
		return nil, err
	}
	return b.Node()
}

func (s *BuildSpec) isClassForm() bool {
	return s.Class != "" || s.Chars != "" || len(s.Ranges) > 0 || s.Unicode != ""
}

func (s *BuildSpec) builder() (Builder, error) {
	forms := 0
	if s.Literal != nil {
		forms++
	}
	if s.isClassForm() {
		forms++
	}
	for _, set := range []bool{
		s.Library != "",
		len(s.Sequence) > 0,
		len(s.OneOf) > 0,
		s.Group != nil,
		s.Repeat != nil,
		s.Anchor != "",
		s.Lookahead != nil,
		s.Lookbehind != nil,
		s.Backref != nil,
	} {
		if set {
			forms++
		}
	}
	if forms != 1 {
		return Builder{}, &CompilationError{Cause: fmt.Errorf("build spec node must use exactly one form, found %d", forms)}
	}

	switch {
	case s.Literal != nil:
		return Lit(*s.Literal), nil
	case s.isClassForm():
		return s.classBuilder()
	case s.Library != "":
		node, err := LookupPattern(s.Library)
		if err != nil {
			return Builder{}, err
		}
		return wrap(node), nil
	case len(s.Sequence) > 0:
		return s.combine(s.Sequence, Builder.Then)
	case len(s.OneOf) > 0:
		return s.combine(s.OneOf, Builder.Or)
	case s.Group != nil:
		body, err := s.Group.Of.builder()
		if err != nil {
			return Builder{}, err
		}
		switch {
		case s.Group.Name != "":
			return body.NamedGroup(s.Group.Name), nil
		case s.Group.Capture:
			return body.Group(), nil
		default:
			return body.NonCapturing(), nil
		}
	case s.Repeat != nil:
		return s.repeatBuilder()
	case s.Anchor != "":
		switch s.Anchor {
		case "start":
			return StartOfInput(), nil
		case "end":
			return EndOfInput(), nil
		case "word-boundary":
			return WordBoundary(), nil
		case "non-word-boundary":
			return NonWordBoundary(), nil
		default:
			return Builder{}, &CompilationError{Cause: fmt.Errorf("unknown anchor %q", s.Anchor)}
		}
	case s.Lookahead != nil:
		body, err := s.Lookahead.Of.builder()
		if err != nil {
			return Builder{}, err
		}
		if s.Lookahead.Negated {
			return NegLookAhead(body), nil
		}
		return LookAhead(body), nil
	case s.Lookbehind != nil:
		body, err := s.Lookbehind.Of.builder()
		if err != nil {
			return Builder{}, err
		}
		if s.Lookbehind.Negated {
			return NegLookBehind(body), nil
		}
		return LookBehind(body), nil
	default: // s.Backref != nil
		if s.Backref.Name != "" {
			return BackrefName(s.Backref.Name), nil
		}
		return BackrefIndex(s.Backref.Index), nil
	}
}

func (s *BuildSpec) combine(specs []BuildSpec, op func(Builder, Builder) Builder) (Builder, error) {
	out, err := specs[0].builder()
	if err != nil {
		return Builder{}, err
	}
	for _, sub := range specs[1:] {
		next, err := sub.builder()
		if err != nil {
			return Builder{}, err
		}
		out = op(out, next)
	}
	return out, nil
}

func (s *BuildSpec) classBuilder() (Builder, error) {
	var items []ClassItem
	switch s.Class {
	case "":
	case "digit":
		items = append(items, ClassItem{Lo: '0', Hi: '9'})
	case "word":
		items = append(items,
			ClassItem{Lo: '0', Hi: '9'},
			ClassItem{Lo: 'A', Hi: 'Z'},
			ClassItem{Lo: '_', Hi: '_'},
			ClassItem{Lo: 'a', Hi: 'z'})
	case "whitespace":
		items = append(items,
			ClassItem{Lo: '\t', Hi: '\n'},
			ClassItem{Lo: '\f', Hi: '\r'},
			ClassItem{Lo: ' ', Hi: ' '})
	case "any":
		if s.Chars != "" || len(s.Ranges) > 0 || s.Unicode != "" {
			return Builder{}, &CompilationError{Cause: fmt.Errorf("class %q cannot combine with other class fields", s.Class)}
		}
		b := AnyChar()
		if s.Negated {
			b = b.Negate()
		}
		return b, nil
	default:
		return Builder{}, &CompilationError{Cause: fmt.Errorf("unknown class shorthand %q", s.Class)}
	}
	for _, r := range s.Chars {
		items = append(items, ClassItem{Lo: r, Hi: r})
	}
	for _, rs := range s.Ranges {
		from := []rune(rs.From)
		to := []rune(rs.To)
		if len(from) != 1 || len(to) != 1 {
			return Builder{}, &CompilationError{Cause: fmt.Errorf("class range bounds must be single characters, got %q-%q", rs.From, rs.To)}
		}
		if to[0] < from[0] {
			return Builder{}, &CompilationError{Cause: fmt.Errorf("invalid class range %q-%q", rs.From, rs.To)}
		}
		items = append(items, ClassItem{Lo: from[0], Hi: to[0]})
	}
	if s.Unicode != "" {
		items = append(items, ClassItem{Property: s.Unicode})
	}
	return wrap(&CharClass{Items: items, Negated: s.Negated}), nil
}

func (s *BuildSpec) repeatBuilder() (Builder, error) {
	body, err := s.Repeat.Of.builder()
	if err != nil {
		return Builder{}, err
	}
	max := Unbounded
	if s.Repeat.Max != nil {
		max = *s.Repeat.Max
	}
	b := body.Between(s.Repeat.Min, max)
	if s.Repeat.Possessive {
		b = b.Possessive()
	} else if s.Repeat.Greedy != nil && !*s.Repeat.Greedy {
		b = b.NonGreedy()
	}
	return b, nil
}
