package compiler

import "fmt"

// Dialect identifies a target regex engine's syntax and semantics.
type Dialect string

const (
	// DialectJS targets ECMAScript regular expressions.
	DialectJS Dialect = "js"
	// DialectRE2 targets Go's linear-time RE2 engine (stdlib regexp).
	DialectRE2 Dialect = "re2"
	// DialectPCRE targets Perl-compatible backtracking engines.
	DialectPCRE Dialect = "pcre"
	// DialectRE2Sim approximates RE2 semantics on a backtracking engine
	// running in RE2 compatibility mode. It shares RE2's feature set and is
	// used by the test harness when native RE2 execution is not wanted.
	DialectRE2Sim Dialect = "re2-sim"
)

// Feature enumerates the dialect capabilities consulted by the linter,
// emitter and converter. The per-dialect feature table below is the single
// source of truth; no component branches on dialect identity directly.
type Feature string

const (
	FeatureLookahead      Feature = "lookahead"
	FeatureLookbehind     Feature = "lookbehind"
	FeatureBackreferences Feature = "backreferences"
	FeatureNamedGroups    Feature = "named-groups"
	FeaturePossessive     Feature = "possessive-quantifiers"
	FeatureUnicodeClasses Feature = "unicode-property-classes"
)

// FeatureSet is the set of features a dialect supports.
type FeatureSet map[Feature]bool

type dialectInfo struct {
	features FeatureSet

	// namedGroupFmt is the fmt verb string opening a named capturing group,
	// e.g. "(?P<%s>". Empty when named groups are unsupported.
	namedGroupFmt string

	// namedBackrefFmt is the fmt verb string for a named backreference,
	// e.g. `\k<%s>`. Empty when backreferences are unsupported.
	namedBackrefFmt string
}

var dialects = map[Dialect]dialectInfo{
	DialectJS: {
		features: FeatureSet{
			FeatureLookahead:      true,
			FeatureLookbehind:     true,
			FeatureBackreferences: true,
			FeatureNamedGroups:    true,
			FeatureUnicodeClasses: true,
		},
		namedGroupFmt:   "(?<%s>",
		namedBackrefFmt: `\k<%s>`,
	},
	DialectPCRE: {
		features: FeatureSet{
			FeatureLookahead:      true,
			FeatureLookbehind:     true,
			FeatureBackreferences: true,
			FeatureNamedGroups:    true,
			FeaturePossessive:     true,
			FeatureUnicodeClasses: true,
		},
		namedGroupFmt:   "(?P<%s>",
		namedBackrefFmt: `\k<%s>`,
	},
	DialectRE2: {
		features: FeatureSet{
			FeatureNamedGroups:    true,
			FeatureUnicodeClasses: true,
		},
		namedGroupFmt: "(?P<%s>",
	},
	DialectRE2Sim: {
		features: FeatureSet{
			FeatureNamedGroups:    true,
			FeatureUnicodeClasses: true,
		},
		namedGroupFmt: "(?P<%s>",
	},
}

// Dialects returns the closed list of known dialect identifiers.
func Dialects() []Dialect {
	return []Dialect{DialectJS, DialectRE2, DialectPCRE, DialectRE2Sim}
}

// ParseDialect converts a string identifier into a Dialect.
func ParseDialect(s string) (Dialect, error) {
	d := Dialect(s)
	if _, ok := dialects[d]; !ok {
		return "", fmt.Errorf("unknown dialect %q", s)
	}
	return d, nil
}

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	_, ok := dialects[d]
	return ok
}

// Supports reports whether the dialect supports the given feature.
func (d Dialect) Supports(f Feature) bool {
	return dialects[d].features[f]
}

// Features returns a copy of the dialect's feature set.
func (d Dialect) Features() FeatureSet {
	fs := make(FeatureSet, len(dialects[d].features))
	for f, ok := range dialects[d].features {
		fs[f] = ok
	}
	return fs
}
