package compiler

import "fmt"

// LibraryInfo describes one entry of the built-in pattern library. The
// library is a static, versioned table; there is no mutable pattern
// storage anywhere in the package.
type LibraryInfo struct {
	Name        string
	Description string
	Version     string
}

type libraryEntry struct {
	info  LibraryInfo
	build func() Builder
}

func cls(items ...ClassItem) Builder {
	return wrap(&CharClass{Items: items})
}

func rng(lo, hi rune) ClassItem { return ClassItem{Lo: lo, Hi: hi} }
func one(r rune) ClassItem      { return ClassItem{Lo: r, Hi: r} }

var hexDigit = cls(rng('0', '9'), rng('A', 'F'), rng('a', 'f'))

var patternLibrary = []libraryEntry{
	{
		info: LibraryInfo{Name: "email", Description: "RFC-lite email address", Version: "1"},
		build: func() Builder {
			local := cls(rng('0', '9'), rng('A', 'Z'), rng('a', 'z'), one('.'), one('_'), one('%'), one('+'), one('-'))
			domain := cls(rng('0', '9'), rng('A', 'Z'), rng('a', 'z'), one('.'), one('-'))
			tld := cls(rng('A', 'Z'), rng('a', 'z'))
			return local.OneOrMore().
				Then(Lit("@")).
				Then(domain.OneOrMore()).
				Then(Lit(".")).
				Then(tld.AtLeast(2))
		},
	},
	{
		info: LibraryInfo{Name: "url", Description: "http(s) URL", Version: "1"},
		build: func() Builder {
			return Lit("http").
				Then(Lit("s").Optional()).
				Then(Lit("://")).
				Then(Whitespace().Negate().OneOrMore())
		},
	},
	{
		info: LibraryInfo{Name: "uuid", Description: "hyphenated UUID", Version: "1"},
		build: func() Builder {
			return hexDigit.Exactly(8).
				Then(Lit("-")).
				Then(hexDigit.Exactly(4)).
				Then(Lit("-")).
				Then(hexDigit.Exactly(4)).
				Then(Lit("-")).
				Then(hexDigit.Exactly(4)).
				Then(Lit("-")).
				Then(hexDigit.Exactly(12))
		},
	},
	{
		info: LibraryInfo{Name: "ipv4", Description: "dotted-quad IPv4 address", Version: "1"},
		build: func() Builder {
			octet := Lit("25").Then(Range('0', '5')).
				Or(Lit("2").Then(Range('0', '4')).Then(Digit())).
				Or(Lit("1").Then(Digit()).Then(Digit())).
				Or(Range('1', '9').Then(Digit())).
				Or(Digit()).
				NonCapturing()
			return octet.Then(Lit(".").Then(octet).Exactly(3))
		},
	},
	{
		info: LibraryInfo{Name: "iso-date", Description: "ISO 8601 calendar date (YYYY-MM-DD)", Version: "1"},
		build: func() Builder {
			return Digit().Exactly(4).
				Then(Lit("-")).
				Then(Digit().Exactly(2)).
				Then(Lit("-")).
				Then(Digit().Exactly(2))
		},
	},
	{
		info: LibraryInfo{Name: "iso-time", Description: "ISO 8601 time of day (HH:MM:SS)", Version: "1"},
		build: func() Builder {
			return Digit().Exactly(2).
				Then(Lit(":")).
				Then(Digit().Exactly(2)).
				Then(Lit(":")).
				Then(Digit().Exactly(2))
		},
	},
	{
		info: LibraryInfo{Name: "hex-color", Description: "CSS hex color, 3 or 6 digits", Version: "1"},
		build: func() Builder {
			return Lit("#").Then(hexDigit.Exactly(6).Or(hexDigit.Exactly(3)))
		},
	},
	{
		info: LibraryInfo{Name: "semver", Description: "semantic version, optional pre-release", Version: "1"},
		build: func() Builder {
			pre := cls(rng('0', '9'), rng('A', 'Z'), rng('a', 'z'), one('.'), one('-'))
			return Digit().OneOrMore().
				Then(Lit(".")).
				Then(Digit().OneOrMore()).
				Then(Lit(".")).
				Then(Digit().OneOrMore()).
				Then(Lit("-").Then(pre.OneOrMore()).Optional())
		},
	},
	{
		info: LibraryInfo{Name: "slug", Description: "lowercase URL slug", Version: "1"},
		build: func() Builder {
			word := cls(rng('0', '9'), rng('a', 'z'))
			return word.OneOrMore().
				Then(Lit("-").Then(word.OneOrMore()).ZeroOrMore())
		},
	},
	{
		info: LibraryInfo{Name: "integer", Description: "optionally signed decimal integer", Version: "1"},
		build: func() Builder {
			return Lit("-").Optional().Then(Digit().OneOrMore())
		},
	},
}

// LibraryPatterns lists the built-in patterns in table order.
func LibraryPatterns() []LibraryInfo {
	infos := make([]LibraryInfo, len(patternLibrary))
	for i, e := range patternLibrary {
		infos[i] = e.info
	}
	return infos
}

// LookupPattern resolves a library name to a freshly built AST.
func LookupPattern(name string) (Node, error) {
	for _, e := range patternLibrary {
		if e.info.Name == name {
			return e.build().Node()
		}
	}
	return nil, &CompilationError{Pattern: name, Cause: fmt.Errorf("unknown library pattern")}
}
