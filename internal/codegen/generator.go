package codegen

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/dave/jennifer/jen"
)

// Options configures source generation for one pattern.
type Options struct {
	// Pattern is an RE2-compatible pattern, typically produced by emitting
	// an AST for the re2 dialect.
	Pattern string

	// Name prefixes the generated identifiers (e.g. "Email" generates
	// EmailRegexp and EmailMatchString).
	Name string

	// Package is the package name of the generated file.
	Package string

	// WithFind additionally generates a FindString helper returning the
	// capturing group values.
	WithFind bool
}

// Validate checks the options and that the pattern actually compiles
// under the stdlib engine the generated code will use.
func (o Options) Validate() error {
	if o.Pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if o.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	if _, err := regexp.Compile(o.Pattern); err != nil {
		return fmt.Errorf("pattern does not compile: %w", err)
	}
	return nil
}

// Generate renders the Go source for the pattern.
func Generate(opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	name := UpperFirst(opts.Name)
	reVar := name + RegexpSuffix

	f := jen.NewFile(opts.Package)
	f.HeaderComment("Code generated by regexkit. DO NOT EDIT.")

	f.Commentf("%s matches the pattern %q.", reVar, opts.Pattern)
	f.Var().Id(reVar).Op("=").Qual("regexp", "MustCompile").Call(jen.Lit(opts.Pattern))

	f.Commentf("%s%s reports whether s contains a match.", name, MatchSuffix)
	f.Func().Id(name+MatchSuffix).Params(jen.Id("s").String()).Bool().Block(
		jen.Return(jen.Id(reVar).Dot("MatchString").Call(jen.Id("s"))),
	)

	if opts.WithFind {
		f.Commentf("%s%s returns the capturing group values of the first match.", name, FindSuffix)
		f.Func().Id(name+FindSuffix).Params(jen.Id("s").String()).Params(jen.Index().String(), jen.Bool()).Block(
			jen.Id("m").Op(":=").Id(reVar).Dot("FindStringSubmatch").Call(jen.Id("s")),
			jen.If(jen.Id("m").Op("==").Nil()).Block(
				jen.Return(jen.Nil(), jen.False()),
			),
			jen.Return(jen.Id("m").Index(jen.Lit(1), jen.Empty()), jen.True()),
		)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render generated code: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateFile renders the source and writes it to path.
func GenerateFile(opts Options, path string) error {
	src, err := Generate(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, src, 0o644)
}
