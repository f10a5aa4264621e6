package compiler

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRoundTrip(t *testing.T) {
	// Constructs supported by both dialects survive conversion and keep
	// matching the same inputs.
	builders := map[string]Builder{
		"digits":      Digit().OneOrMore().Then(Lit("-")).Then(Digit().Exactly(2)),
		"words":       Word().OneOrMore().Group().Then(Whitespace().ZeroOrMore()),
		"alternation": Lit("cat").Or(Lit("dog")).Then(Lit("s").Optional()),
		"anchored":    StartOfInput().Then(Chars("xyz").OneOrMore()).Then(EndOfInput()),
	}
	corpus := []string{"", "1-23", "12-34", "cat", "dogs", "cats ", "xyz", "xxyyzz", "abc", "a b"}

	for name, b := range builders {
		t.Run(name, func(t *testing.T) {
			ast := mustNode(t, b)
			re2Pattern, err := Emit(ast, DialectRE2, EmitOptions{})
			require.NoError(t, err)
			jsPattern, err := Emit(ast, DialectJS, EmitOptions{})
			require.NoError(t, err)

			converted, err := Convert(re2Pattern, DialectRE2, DialectJS, DefaultConvertOptions())
			require.NoError(t, err)
			assert.Empty(t, converted.Warnings)

			// The converted pattern must behave like the direct js emission.
			// Both are RE2-expressible here, so the stdlib engine can check
			// the equivalence.
			directRE := regexp.MustCompile(jsPattern)
			convertedRE := regexp.MustCompile(converted.Pattern)
			for _, input := range corpus {
				assert.Equal(t, directRE.MatchString(input), convertedRE.MatchString(input),
					"input %q: direct %q vs converted %q", input, jsPattern, converted.Pattern)
			}
		})
	}
}

func TestConvertASTDowngrades(t *testing.T) {
	tests := []struct {
		name     string
		b        Builder
		to       Dialect
		warnCode string
	}{
		{"lookahead dropped for re2", Lit("a").Then(LookAhead(Digit())), DialectRE2, CodeDowngradedLookaround},
		{"lookbehind dropped for re2-sim", LookBehind(Lit("x")).Then(Lit("y")), DialectRE2Sim, CodeDowngradedLookaround},
		{"backref dropped for re2", Lit("a").Group().Then(BackrefIndex(1)), DialectRE2, CodeDowngradedBackref},
		{"possessive weakened for js", Lit("a").OneOrMore().Possessive(), DialectJS, CodeDowngradedPossessive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ConvertAST(mustNode(t, tt.b), tt.to, DefaultConvertOptions())
			require.NoError(t, err)
			require.Len(t, result.Warnings, 1)
			assert.Equal(t, tt.warnCode, result.Warnings[0].Code)
			assert.Equal(t, SeverityWarning, result.Warnings[0].Severity)

			// The downgraded pattern must be valid for the target dialect.
			require.NoError(t, validTarget(result.Pattern, tt.to))
		})
	}
}

// validTarget compiles the pattern with an engine honoring the dialect.
func validTarget(pattern string, d Dialect) error {
	_, err := newMatcher(pattern, d, MinTestTimeout)
	return err
}

func TestConvertASTWithoutDowngradesFails(t *testing.T) {
	ast := mustNode(t, Lit("a").Then(LookAhead(Digit())))
	_, err := ConvertAST(ast, DialectRE2, ConvertOptions{AllowDowngrades: false})
	var derr *DialectIncompatibilityError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, FeatureLookahead, derr.Feature)
	assert.Equal(t, DialectRE2, derr.Dialect)
}

func TestConvertNoWarningsWhenCompatible(t *testing.T) {
	ast := mustNode(t, Lit("a").Then(LookAhead(Digit())))
	result, err := ConvertAST(ast, DialectPCRE, ConvertOptions{AllowDowngrades: false})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "a(?=[0-9])", result.Pattern)
}

func TestConvertRejectsUnparsablePatterns(t *testing.T) {
	// A hand-written lookbehind cannot be re-derived; only patterns from
	// the builder/AST path are convertible.
	_, err := Convert(`(?<=a)b`, DialectPCRE, DialectRE2, DefaultConvertOptions())
	var eerr *EmitError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, DialectPCRE, eerr.Dialect)
}

func TestConvertUnknownDialects(t *testing.T) {
	_, err := Convert("a", Dialect("nope"), DialectRE2, DefaultConvertOptions())
	assert.Error(t, err)
	_, err = Convert("a", DialectRE2, Dialect("nope"), DefaultConvertOptions())
	assert.Error(t, err)
}

func TestFromSyntaxRebuildsCoreShapes(t *testing.T) {
	// String → AST → string survives for RE2-expressible patterns.
	patterns := []string{
		"abc",
		"[0-9]+",
		"(cat|dog)s?",
		`a\.b`,
		"x{2,5}y*?",
		`\bword\b`,
		"(?P<n>[a-z]+)",
	}
	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			result, err := Convert(pattern, DialectRE2, DialectRE2, DefaultConvertOptions())
			require.NoError(t, err)

			orig := regexp.MustCompile(pattern)
			rebuilt := regexp.MustCompile(result.Pattern)
			for _, input := range []string{"", "abc", "a.b", "axb", "cats", "dog", "word", "words", "xxy", "xxxxxy", "42"} {
				assert.Equal(t, orig.MatchString(input), rebuilt.MatchString(input),
					"input %q: %q vs %q", input, pattern, result.Pattern)
			}
		})
	}
}
