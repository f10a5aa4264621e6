package compiler

import (
	"fmt"
	"strings"
)

// CompilationError reports that a pattern string or builder call could not
// be turned into a valid AST or pattern at all. Dialect may be empty when
// the failure happens before a dialect is bound (builder time).
type CompilationError struct {
	Pattern string
	Dialect Dialect
	Cause   error
}

func (e *CompilationError) Error() string {
	msg := fmt.Sprintf("cannot compile pattern %q", e.Pattern)
	if e.Dialect != "" {
		msg += fmt.Sprintf(" for dialect %s", e.Dialect)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CompilationError) Unwrap() error { return e.Cause }

// ValidationError reports a failed lint. It carries the full ordered issue
// list, not just the first error.
type ValidationError struct {
	Pattern string
	Dialect Dialect
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	codes := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Severity == SeverityError {
			codes = append(codes, issue.Code)
		}
	}
	return fmt.Sprintf("validation failed for dialect %s: %s", e.Dialect, strings.Join(codes, ", "))
}

// DialectIncompatibilityError reports that a specific feature required by
// the pattern is not supported by the target dialect.
type DialectIncompatibilityError struct {
	Dialect Dialect
	Feature Feature
	Pattern string
}

func (e *DialectIncompatibilityError) Error() string {
	msg := fmt.Sprintf("dialect %s does not support %s", e.Dialect, e.Feature)
	if e.Pattern != "" {
		msg += fmt.Sprintf(" (pattern fragment %q)", e.Pattern)
	}
	return msg
}

// OptimizationError reports that an optimization pass could not make safe
// progress. Individual unsafe rewrites fall through leaving the node
// unchanged; this error escalates only when a sweep cannot proceed at all.
type OptimizationError struct {
	Phase  string
	Reason string
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("optimization pass %s failed: %s", e.Phase, e.Reason)
}

// EmitError reports an unrecoverable serialization failure: an AST shape
// the target dialect's serializer cannot represent at all, or a pattern
// string that cannot be re-derived into an AST.
type EmitError struct {
	Fragment string
	Dialect  Dialect
	Cause    error
}

func (e *EmitError) Error() string {
	msg := fmt.Sprintf("cannot emit for dialect %s", e.Dialect)
	if e.Fragment != "" {
		msg += fmt.Sprintf(": fragment %q", e.Fragment)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *EmitError) Unwrap() error { return e.Cause }

// TestExecutionError reports that the harness itself failed to execute a
// pattern, as opposed to an ordinary case mismatch (which is data, not an
// error). Case is nil when the failure is not tied to a single case.
type TestExecutionError struct {
	Pattern  string
	Case     *TestCase
	Reason   string
	TimedOut bool
}

func (e *TestExecutionError) Error() string {
	msg := fmt.Sprintf("test execution failed for pattern %q: %s", e.Pattern, e.Reason)
	if e.Case != nil {
		msg += fmt.Sprintf(" (input %q)", e.Case.Input)
	}
	return msg
}
