package regexkit_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regexkit/regexkit/pkg/regexkit"
)

func build(t *testing.T, b regexkit.Builder) regexkit.Node {
	t.Helper()
	node, err := b.Node()
	require.NoError(t, err)
	return node
}

func TestBuildEmitTestPipeline(t *testing.T) {
	ast := build(t, regexkit.Digit().OneOrMore())

	pattern, err := regexkit.Emit(ast, regexkit.DialectJS, regexkit.EmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, "[0-9]+", pattern)

	result, err := regexkit.Test(pattern, []regexkit.TestCase{
		{Input: "123", ShouldMatch: true},
		{Input: "abc", ShouldMatch: false},
	}, regexkit.TestOptions{Dialect: regexkit.DialectJS, TimeoutMs: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 0, result.Failed)
}

func TestOptimizeFoldsAdjacentLiterals(t *testing.T) {
	ast := build(t, regexkit.Lit("test").Then(regexkit.Lit("123")))

	result, err := regexkit.Optimize(ast, regexkit.DefaultOptimizeOptions())
	require.NoError(t, err)
	assert.Greater(t, result.NodesReduced, 0)

	pattern, err := regexkit.Emit(result.AST, regexkit.DialectRE2, regexkit.EmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, "test123", pattern)
}

func TestLintReportsDialectGaps(t *testing.T) {
	ast := build(t, regexkit.LookBehind(regexkit.Lit("$")).Then(regexkit.Digit().OneOrMore()))

	result, err := regexkit.Lint(ast, regexkit.DialectRE2)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "UNSUPPORTED_LOOKBEHIND", result.Issues[0].Code)

	result, err = regexkit.Lint(ast, regexkit.DialectPCRE)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestConvertDowngradesWithWarnings(t *testing.T) {
	ast := build(t, regexkit.Lit("a").Then(regexkit.LookAhead(regexkit.Digit())))

	result, err := regexkit.ConvertAST(ast, regexkit.DialectRE2, regexkit.DefaultConvertOptions())
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "DOWNGRADED_LOOKAROUND", result.Warnings[0].Code)
	assert.Equal(t, "a", result.Pattern)
}

func TestBuildFromSpecAndLibraryAgree(t *testing.T) {
	fromSpec, err := regexkit.BuildFromSpec([]byte("library: uuid"))
	require.NoError(t, err)
	fromLib, err := regexkit.BuildFromLibrary("uuid")
	require.NoError(t, err)

	specPattern, err := regexkit.Emit(fromSpec, regexkit.DialectRE2, regexkit.EmitOptions{})
	require.NoError(t, err)
	libPattern, err := regexkit.Emit(fromLib, regexkit.DialectRE2, regexkit.EmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, libPattern, specPattern)
}

func TestLibraryPatternsListed(t *testing.T) {
	infos := regexkit.LibraryPatterns()
	require.NotEmpty(t, infos)
	names := make(map[string]bool, len(infos))
	for _, info := range infos {
		names[info.Name] = true
	}
	for _, want := range []string{"email", "url", "uuid", "ipv4", "semver"} {
		assert.True(t, names[want], "library missing %q", want)
	}
}

func TestTypedErrorsSurviveTheFacade(t *testing.T) {
	_, err := regexkit.Lit("a").Group().Then(regexkit.BackrefIndex(0)).Node()
	var cerr *regexkit.CompilationError
	require.ErrorAs(t, err, &cerr)

	ast := build(t, regexkit.Lit("a").OneOrMore().Possessive())
	_, err = regexkit.Emit(ast, regexkit.DialectJS, regexkit.EmitOptions{})
	var derr *regexkit.DialectIncompatibilityError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, regexkit.DialectJS, derr.Dialect)

	_, err = regexkit.Test("(bad", nil, regexkit.TestOptions{Dialect: regexkit.DialectRE2, TimeoutMs: 100})
	var terr *regexkit.TestExecutionError
	require.ErrorAs(t, err, &terr)
}

func TestTestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts regexkit.TestOptions
		ok   bool
	}{
		{"valid", regexkit.TestOptions{Dialect: regexkit.DialectJS, TimeoutMs: 100}, true},
		{"minimum timeout", regexkit.TestOptions{Dialect: regexkit.DialectRE2, TimeoutMs: 1}, true},
		{"maximum timeout", regexkit.TestOptions{Dialect: regexkit.DialectRE2, TimeoutMs: 30000}, true},
		{"zero timeout", regexkit.TestOptions{Dialect: regexkit.DialectRE2}, false},
		{"timeout too large", regexkit.TestOptions{Dialect: regexkit.DialectRE2, TimeoutMs: 30001}, false},
		{"unknown dialect", regexkit.TestOptions{Dialect: regexkit.Dialect("perl6"), TimeoutMs: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseDialect(t *testing.T) {
	d, err := regexkit.ParseDialect("re2-sim")
	require.NoError(t, err)
	assert.Equal(t, regexkit.DialectRE2Sim, d)

	_, err = regexkit.ParseDialect("posix")
	assert.Error(t, err)
}

func TestGenerateWritesUsableSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iso_date.go")
	ast, err := regexkit.BuildFromLibrary("iso-date")
	require.NoError(t, err)

	err = regexkit.Generate(regexkit.GenerateOptions{
		AST:        ast,
		Name:       "isoDate",
		Package:    "patterns",
		OutputFile: path,
		WithFind:   true,
		Anchor:     true,
	})
	require.NoError(t, err)

	src, err := os.ReadFile(path)
	require.NoError(t, err)
	code := string(src)
	assert.Contains(t, code, "package patterns")
	assert.Contains(t, code, "IsoDateRegexp")
	assert.Contains(t, code, "func IsoDateMatchString(s string) bool")
	assert.Contains(t, code, "func IsoDateFindString(s string)")

	// The embedded pattern must compile and behave as generated code would.
	start := strings.Index(code, `regexp.MustCompile("`)
	require.GreaterOrEqual(t, start, 0)
	rest := code[start+len(`regexp.MustCompile("`):]
	end := strings.Index(rest, `")`)
	require.GreaterOrEqual(t, end, 0)
	re := regexp.MustCompile(rest[:end])
	assert.True(t, re.MatchString("2026-08-30"))
	assert.False(t, re.MatchString("not a date"))
}

func TestGenerateOptionValidation(t *testing.T) {
	ast, err := regexkit.BuildFromLibrary("integer")
	require.NoError(t, err)

	tests := []struct {
		name string
		opts regexkit.GenerateOptions
	}{
		{"nil AST", regexkit.GenerateOptions{Name: "x", Package: "p", OutputFile: "out.go"}},
		{"empty name", regexkit.GenerateOptions{AST: ast, Package: "p", OutputFile: "out.go"}},
		{"empty package", regexkit.GenerateOptions{AST: ast, Name: "x", OutputFile: "out.go"}},
		{"empty output", regexkit.GenerateOptions{AST: ast, Name: "x", Package: "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, regexkit.Generate(tt.opts))
		})
	}
}

func TestGenerateRejectsNonRE2AST(t *testing.T) {
	ast := build(t, regexkit.Lit("a").Then(regexkit.LookAhead(regexkit.Digit())))
	err := regexkit.Generate(regexkit.GenerateOptions{
		AST:        ast,
		Name:       "x",
		Package:    "p",
		OutputFile: filepath.Join(t.TempDir(), "x.go"),
	})
	var derr *regexkit.DialectIncompatibilityError
	require.ErrorAs(t, err, &derr)
}
