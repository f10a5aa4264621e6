// Package codegen turns an emitted RE2-compatible pattern into a Go
// source file exposing a precompiled regexp and typed match helpers.
package codegen

// Identifier suffixes used in generated code.
const (
	RegexpSuffix = "Regexp"
	MatchSuffix  = "MatchString"
	FindSuffix   = "FindString"
)

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}
