package regexkit

import "github.com/regexkit/regexkit/internal/compiler"

// Builder entry points. Combinator methods (Then, Or, OneOrMore, Group,
// ...) live on the Builder value these return.

// Lit matches the given text verbatim.
func Lit(text string) Builder { return compiler.Lit(text) }

// Digit matches a single ASCII digit.
func Digit() Builder { return compiler.Digit() }

// Word matches a single word character.
func Word() Builder { return compiler.Word() }

// Whitespace matches a single whitespace character.
func Whitespace() Builder { return compiler.Whitespace() }

// AnyChar matches any single character except newline.
func AnyChar() Builder { return compiler.AnyChar() }

// Chars matches any single character from the given set.
func Chars(set string) Builder { return compiler.Chars(set) }

// Range matches any single character in the inclusive range lo..hi.
func Range(lo, hi rune) Builder { return compiler.Range(lo, hi) }

// UnicodeClass matches any character with the given Unicode property.
func UnicodeClass(property string) Builder { return compiler.UnicodeClass(property) }

// StartOfInput asserts the match starts at the beginning of the input.
func StartOfInput() Builder { return compiler.StartOfInput() }

// EndOfInput asserts the match ends at the end of the input.
func EndOfInput() Builder { return compiler.EndOfInput() }

// WordBoundary asserts a word boundary at the current position.
func WordBoundary() Builder { return compiler.WordBoundary() }

// NonWordBoundary asserts the absence of a word boundary.
func NonWordBoundary() Builder { return compiler.NonWordBoundary() }

// BackrefIndex matches the text captured by the n-th capturing group.
func BackrefIndex(n int) Builder { return compiler.BackrefIndex(n) }

// BackrefName matches the text captured by the named group.
func BackrefName(name string) Builder { return compiler.BackrefName(name) }

// LookAhead asserts that body matches at the current position.
func LookAhead(body Builder) Builder { return compiler.LookAhead(body) }

// NegLookAhead asserts that body does not match at the current position.
func NegLookAhead(body Builder) Builder { return compiler.NegLookAhead(body) }

// LookBehind asserts that body matches before the current position.
func LookBehind(body Builder) Builder { return compiler.LookBehind(body) }

// NegLookBehind asserts that body does not match before the current
// position.
func NegLookBehind(body Builder) Builder { return compiler.NegLookBehind(body) }
