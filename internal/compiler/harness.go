package compiler

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// Timeout bounds enforced at the harness boundary: a deadline below the
// minimum would busy-loop on timer churn, one above the maximum would let
// a pathological pattern hang a call for too long.
const (
	MinTestTimeout = 1 * time.Millisecond
	MaxTestTimeout = 30 * time.Second
)

// TestCase is one input the compiled pattern is checked against.
// ExpectedCaptures, when non-nil, is compared positionally against the
// capturing groups of the match.
type TestCase struct {
	Input            string
	ShouldMatch      bool
	ExpectedCaptures []string
}

// CaseResult is the outcome of a single test case.
type CaseResult struct {
	Case       TestCase
	Matched    bool
	CapturesOK bool
	TimedOut   bool
	Passed     bool
}

// RunResult aggregates per-case outcomes. Cases preserves the input
// ordering regardless of execution order.
type RunResult struct {
	Passed int
	Failed int
	Cases  []CaseResult
}

// Harness executes a compiled pattern against test cases using the
// dialect's native matching engine, bounding every case by a wall-clock
// deadline so a catastrophically backtracking case cannot hang the run.
type Harness struct {
	Dialect Dialect
	Timeout time.Duration
	Logger  *Logger
}

// Test runs cases against pattern under the dialect's native engine.
// Convenience wrapper around Harness.Run.
func Test(pattern string, cases []TestCase, dialect Dialect, timeout time.Duration) (RunResult, error) {
	return Harness{Dialect: dialect, Timeout: timeout}.Run(pattern, cases)
}

// Run executes all cases. Cases run concurrently; each one owns a worker
// goroutine whose match attempt is bounded by the harness timeout. A case
// exceeding the deadline is recorded as timed out and never affects the
// other cases. Only a malformed pattern (or an out-of-bounds timeout)
// fails the whole call, with a TestExecutionError.
func (h Harness) Run(pattern string, cases []TestCase) (RunResult, error) {
	if h.Timeout < MinTestTimeout || h.Timeout > MaxTestTimeout {
		return RunResult{}, &TestExecutionError{
			Pattern: pattern,
			Reason:  fmt.Sprintf("timeout %v outside allowed range [%v, %v]", h.Timeout, MinTestTimeout, MaxTestTimeout),
		}
	}
	m, err := newMatcher(pattern, h.Dialect, h.Timeout)
	if err != nil {
		return RunResult{}, &TestExecutionError{Pattern: pattern, Reason: err.Error()}
	}

	results := make([]CaseResult, len(cases))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := range cases {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := h.runCase(m, cases[i])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()
	if firstErr != nil {
		return RunResult{}, firstErr
	}

	run := RunResult{Cases: results}
	for _, r := range results {
		if r.Passed {
			run.Passed++
		} else {
			run.Failed++
		}
	}
	h.Logger.Log("test run: %d passed, %d failed (%d cases)", run.Passed, run.Failed, len(cases))
	return run, nil
}

type outcome struct {
	matched  bool
	captures []string
	err      error
}

func (h Harness) runCase(m matcher, tc TestCase) (CaseResult, error) {
	// The worker writes to a buffered channel so it can finish and be
	// collected even after the deadline fired. The regexp2-backed engines
	// carry their own MatchTimeout equal to the harness deadline, so a
	// timed-out worker aborts shortly after and does not leak; the RE2
	// engines run in linear time and always terminate.
	ch := make(chan outcome, 1)
	go func() {
		matched, captures, err := m.match(tc.Input)
		ch <- outcome{matched: matched, captures: captures, err: err}
	}()

	select {
	case o := <-ch:
		if o.err != nil {
			if isMatchTimeout(o.err) {
				return timedOutResult(tc), nil
			}
			return CaseResult{}, &TestExecutionError{Case: &tc, Reason: o.err.Error()}
		}
		capturesOK := tc.ExpectedCaptures == nil ||
			(o.matched && slices.Equal(o.captures, tc.ExpectedCaptures))
		return CaseResult{
			Case:       tc,
			Matched:    o.matched,
			CapturesOK: capturesOK,
			Passed:     o.matched == tc.ShouldMatch && capturesOK,
		}, nil
	case <-time.After(h.Timeout):
		return timedOutResult(tc), nil
	}
}

func timedOutResult(tc TestCase) CaseResult {
	return CaseResult{Case: tc, TimedOut: true}
}

// isMatchTimeout recognizes a regexp2 deadline hit. The library has no
// typed error for it; it reports "match timeout after <duration> on
// input ...", so the harness pins that message prefix.
func isMatchTimeout(err error) bool {
	return strings.Contains(err.Error(), "match timeout")
}

// possessiveToAtomic rewrites possessive quantifiers (x++, x*+, x?+,
// x{m,n}+) into the equivalent atomic-group form (?>x+). regexp2 parses
// atomic groups but not possessive syntax, so without this rewrite the
// pcre engine would reject every possessive pattern this package emits
// for pcre.
func possessiveToAtomic(pattern string) string {
	out := make([]byte, 0, len(pattern)+8)
	var groupStarts []int
	atomStart := -1
	i := 0

	// Called right after a quantifier was copied: when the next byte is
	// the possessive marker, wrap the last atom plus its quantifier in an
	// atomic group instead.
	possessive := func() bool {
		if i >= len(pattern) || pattern[i] != '+' || atomStart < 0 {
			return false
		}
		seg := append([]byte("(?>"), out[atomStart:]...)
		seg = append(seg, ')')
		out = append(out[:atomStart], seg...)
		i++
		return true
	}

	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '\\':
			atomStart = len(out)
			out = append(out, c)
			i++
			if i < len(pattern) {
				e := pattern[i]
				out = append(out, e)
				i++
				switch {
				case (e == 'p' || e == 'P') && i < len(pattern) && pattern[i] == '{':
					for i < len(pattern) && pattern[i] != '}' {
						out = append(out, pattern[i])
						i++
					}
				case e == 'k' && i < len(pattern) && pattern[i] == '<':
					for i < len(pattern) && pattern[i] != '>' {
						out = append(out, pattern[i])
						i++
					}
				}
			}
		case '[':
			atomStart = len(out)
			out = append(out, c)
			i++
			if i < len(pattern) && pattern[i] == '^' {
				out = append(out, '^')
				i++
			}
			if i < len(pattern) && pattern[i] == ']' {
				out = append(out, ']')
				i++
			}
			for i < len(pattern) && pattern[i] != ']' {
				if pattern[i] == '\\' && i+1 < len(pattern) {
					out = append(out, pattern[i], pattern[i+1])
					i += 2
					continue
				}
				out = append(out, pattern[i])
				i++
			}
		case '(':
			groupStarts = append(groupStarts, len(out))
			out = append(out, c)
			i++
			// Copy a group-type prefix so its '?' is never mistaken for a
			// quantifier.
			if i < len(pattern) && pattern[i] == '?' {
				out = append(out, '?')
				i++
				if i < len(pattern) {
					switch pattern[i] {
					case ':', '=', '!', '>', 'P':
						out = append(out, pattern[i])
						i++
					case '<':
						out = append(out, '<')
						i++
						if i < len(pattern) && (pattern[i] == '=' || pattern[i] == '!') {
							out = append(out, pattern[i])
							i++
						}
					}
				}
			}
		case ')':
			out = append(out, c)
			i++
			if n := len(groupStarts); n > 0 {
				atomStart = groupStarts[n-1]
				groupStarts = groupStarts[:n-1]
			}
		case '*', '+', '?':
			out = append(out, c)
			i++
			if !possessive() && i < len(pattern) && pattern[i] == '?' {
				out = append(out, '?')
				i++
			}
		case '{':
			j := i + 1
			for j < len(pattern) && (pattern[j] >= '0' && pattern[j] <= '9' || pattern[j] == ',') {
				j++
			}
			if j > i+1 && j < len(pattern) && pattern[j] == '}' {
				out = append(out, pattern[i:j+1]...)
				i = j + 1
				if !possessive() && i < len(pattern) && pattern[i] == '?' {
					out = append(out, '?')
					i++
				}
			} else {
				atomStart = len(out)
				out = append(out, c)
				i++
			}
		default:
			atomStart = len(out)
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// matcher abstracts a dialect's native engine behind a single submatch
// call.
type matcher interface {
	match(input string) (matched bool, captures []string, err error)
}

// newMatcher builds the engine for a dialect: stdlib regexp for native
// RE2, regexp2 in the appropriate compatibility mode for the backtracking
// dialects and the RE2 simulation.
func newMatcher(pattern string, dialect Dialect, timeout time.Duration) (matcher, error) {
	switch dialect {
	case DialectRE2:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return &stdlibMatcher{re: re}, nil
	case DialectJS:
		return newRegexp2Matcher(pattern, regexp2.ECMAScript, timeout)
	case DialectPCRE:
		return newRegexp2Matcher(possessiveToAtomic(pattern), regexp2.None, timeout)
	case DialectRE2Sim:
		return newRegexp2Matcher(pattern, regexp2.RE2, timeout)
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
}

type stdlibMatcher struct {
	re *regexp.Regexp
}

func (m *stdlibMatcher) match(input string) (bool, []string, error) {
	sm := m.re.FindStringSubmatch(input)
	if sm == nil {
		return false, nil, nil
	}
	return true, sm[1:], nil
}

type regexp2Matcher struct {
	re *regexp2.Regexp
}

func newRegexp2Matcher(pattern string, opts regexp2.RegexOptions, timeout time.Duration) (matcher, error) {
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = timeout
	return &regexp2Matcher{re: re}, nil
}

func (m *regexp2Matcher) match(input string) (bool, []string, error) {
	match, err := m.re.FindStringMatch(input)
	if err != nil {
		return false, nil, err
	}
	if match == nil {
		return false, nil, nil
	}
	groups := match.Groups()
	captures := make([]string, 0, len(groups)-1)
	for _, g := range groups[1:] {
		captures = append(captures, g.String())
	}
	return true, captures, nil
}
