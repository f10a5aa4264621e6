// Package regexkit provides the public surface of the regex construction
// and compilation toolkit: building pattern ASTs (from combinators, a
// library name or a declarative spec), linting them against a dialect,
// optimizing them, emitting dialect-specific pattern strings, converting
// between dialects, safety-testing compiled patterns and generating Go
// source for them.
package regexkit

import (
	"fmt"
	"time"

	"github.com/regexkit/regexkit/internal/codegen"
	"github.com/regexkit/regexkit/internal/compiler"
)

// Core types, re-exported from the compiler.
type (
	Node             = compiler.Node
	Builder          = compiler.Builder
	Dialect          = compiler.Dialect
	Feature          = compiler.Feature
	FeatureSet       = compiler.FeatureSet
	Issue            = compiler.Issue
	Severity         = compiler.Severity
	ValidationResult = compiler.ValidationResult
	OptimizeOptions  = compiler.OptimizeOptions
	OptimizeResult   = compiler.OptimizeResult
	EmitOptions      = compiler.EmitOptions
	ConvertOptions   = compiler.ConvertOptions
	ConvertResult    = compiler.ConvertResult
	TestCase         = compiler.TestCase
	CaseResult       = compiler.CaseResult
	RunResult        = compiler.RunResult
	BuildSpec        = compiler.BuildSpec
	LibraryInfo      = compiler.LibraryInfo
)

// Typed errors, re-exported so callers can discriminate with errors.As.
type (
	CompilationError            = compiler.CompilationError
	ValidationError             = compiler.ValidationError
	DialectIncompatibilityError = compiler.DialectIncompatibilityError
	OptimizationError           = compiler.OptimizationError
	EmitError                   = compiler.EmitError
	TestExecutionError          = compiler.TestExecutionError
)

// Supported dialects.
const (
	DialectJS     = compiler.DialectJS
	DialectRE2    = compiler.DialectRE2
	DialectPCRE   = compiler.DialectPCRE
	DialectRE2Sim = compiler.DialectRE2Sim
)

// ParseDialect converts a dialect identifier into a Dialect.
func ParseDialect(s string) (Dialect, error) { return compiler.ParseDialect(s) }

// Dialects lists the known dialect identifiers.
func Dialects() []Dialect { return compiler.Dialects() }

// BuildFromSpec decodes a declarative YAML/JSON build spec into an AST.
func BuildFromSpec(data []byte) (Node, error) { return compiler.ParseBuildSpec(data) }

// BuildFromLibrary resolves a named pattern from the built-in library.
func BuildFromLibrary(name string) (Node, error) { return compiler.LookupPattern(name) }

// LibraryPatterns lists the built-in pattern library.
func LibraryPatterns() []LibraryInfo { return compiler.LibraryPatterns() }

// Lint validates the AST against a dialect, returning every issue found.
// An invalid result is data, not an error; the error return covers only
// malformed input such as an unknown dialect.
func Lint(ast Node, dialect Dialect) (ValidationResult, error) {
	return compiler.Validate(ast, dialect)
}

// Optimize applies the enabled semantics-preserving passes.
func Optimize(ast Node, opts OptimizeOptions) (OptimizeResult, error) {
	return compiler.Optimize(ast, opts)
}

// DefaultOptimizeOptions enables every pass with the default sweep budget.
func DefaultOptimizeOptions() OptimizeOptions { return compiler.DefaultOptimizeOptions() }

// Emit serializes the AST as a pattern string for the dialect.
func Emit(ast Node, dialect Dialect, opts EmitOptions) (string, error) {
	return compiler.Emit(ast, dialect, opts)
}

// Convert re-targets an emitted pattern string to another dialect.
func Convert(pattern string, from, to Dialect, opts ConvertOptions) (ConvertResult, error) {
	return compiler.Convert(pattern, from, to, opts)
}

// ConvertAST re-targets an AST to another dialect.
func ConvertAST(ast Node, to Dialect, opts ConvertOptions) (ConvertResult, error) {
	return compiler.ConvertAST(ast, to, opts)
}

// DefaultConvertOptions allows downgrades.
func DefaultConvertOptions() ConvertOptions { return compiler.DefaultConvertOptions() }

// TestOptions configures a test run.
type TestOptions struct {
	// Dialect selects the native matching engine.
	Dialect Dialect

	// TimeoutMs bounds each case's match attempt (1–30000).
	TimeoutMs int

	// Verbose enables per-run diagnostics on stderr.
	Verbose bool
}

// Validate checks the options at the API boundary.
func (o TestOptions) Validate() error {
	if !o.Dialect.Valid() {
		return fmt.Errorf("unknown dialect %q", o.Dialect)
	}
	timeout := time.Duration(o.TimeoutMs) * time.Millisecond
	if timeout < compiler.MinTestTimeout || timeout > compiler.MaxTestTimeout {
		return fmt.Errorf("timeoutMs %d outside allowed range [1, 30000]", o.TimeoutMs)
	}
	return nil
}

// Test runs the cases against the pattern under the dialect's native
// engine, bounding each case by the configured timeout.
func Test(pattern string, cases []TestCase, opts TestOptions) (RunResult, error) {
	if err := opts.Validate(); err != nil {
		return RunResult{}, fmt.Errorf("invalid options: %w", err)
	}
	h := compiler.Harness{
		Dialect: opts.Dialect,
		Timeout: time.Duration(opts.TimeoutMs) * time.Millisecond,
		Logger:  compiler.NewLogger(opts.Verbose),
	}
	return h.Run(pattern, cases)
}

// GenerateOptions configures Go source generation for a pattern AST.
type GenerateOptions struct {
	// AST is the pattern to generate code for. It must be expressible in
	// the re2 dialect, since the generated code uses the stdlib engine.
	AST Node

	// Name prefixes the generated identifiers.
	Name string

	// Package is the package name of the generated file.
	Package string

	// OutputFile is where the generated source is written.
	OutputFile string

	// WithFind additionally generates a capture-returning helper.
	WithFind bool

	// Anchor makes the generated pattern match the entire input.
	Anchor bool
}

// Validate checks the options.
func (o GenerateOptions) Validate() error {
	if o.AST == nil {
		return fmt.Errorf("AST cannot be nil")
	}
	if o.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	return nil
}

// Generate emits the AST for the re2 dialect and writes a Go source file
// exposing the compiled pattern.
func Generate(opts GenerateOptions) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	pattern, err := compiler.Emit(opts.AST, compiler.DialectRE2, compiler.EmitOptions{Anchor: opts.Anchor})
	if err != nil {
		return err
	}
	return codegen.GenerateFile(codegen.Options{
		Pattern:  pattern,
		Name:     opts.Name,
		Package:  opts.Package,
		WithFind: opts.WithFind,
	}, opts.OutputFile)
}
