// Command regexkit exposes the toolkit's operations: building a pattern
// from a declarative spec or the library, linting, optimizing, emitting,
// converting between dialects, running test cases and generating Go code.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/regexkit/regexkit/pkg/regexkit"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 2
	}
	var err error
	switch args[0] {
	case "emit":
		err = cmdEmit(args[1:])
	case "lint":
		err = cmdLint(args[1:])
	case "convert":
		err = cmdConvert(args[1:])
	case "test":
		err = cmdTest(args[1:])
	case "gen":
		err = cmdGen(args[1:])
	case "library":
		err = cmdLibrary(args[1:])
	default:
		usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "regexkit: %v\n", err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: regexkit <command> [flags]

commands:
  emit      build a pattern AST and emit it for a dialect
  lint      validate a pattern AST against a dialect
  convert   re-target an emitted pattern to another dialect
  test      run test cases against a pattern
  gen       generate Go source for a pattern
  library   list the built-in pattern library`)
}

// loadAST resolves the build input: a declarative spec file or a library
// pattern name.
func loadAST(specPath, library string) (regexkit.Node, error) {
	switch {
	case specPath != "" && library != "":
		return nil, fmt.Errorf("-spec and -library are mutually exclusive")
	case specPath != "":
		data, err := os.ReadFile(specPath)
		if err != nil {
			return nil, err
		}
		return regexkit.BuildFromSpec(data)
	case library != "":
		return regexkit.BuildFromLibrary(library)
	default:
		return nil, fmt.Errorf("one of -spec or -library is required")
	}
}

func cmdEmit(args []string) error {
	fs := flag.NewFlagSet("emit", flag.ExitOnError)
	specPath := fs.String("spec", "", "path to a declarative build spec (YAML)")
	library := fs.String("library", "", "built-in library pattern name")
	dialect := fs.String("dialect", "re2", "target dialect")
	anchor := fs.Bool("anchor", false, "anchor the pattern to the whole input")
	optimize := fs.Bool("optimize", true, "optimize the AST before emitting")
	fs.Parse(args)

	ast, err := loadAST(*specPath, *library)
	if err != nil {
		return err
	}
	d, err := regexkit.ParseDialect(*dialect)
	if err != nil {
		return err
	}
	if *optimize {
		result, err := regexkit.Optimize(ast, regexkit.DefaultOptimizeOptions())
		if err != nil {
			return err
		}
		ast = result.AST
	}
	pattern, err := regexkit.Emit(ast, d, regexkit.EmitOptions{Anchor: *anchor})
	if err != nil {
		return err
	}
	fmt.Println(pattern)
	return nil
}

func cmdLint(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	specPath := fs.String("spec", "", "path to a declarative build spec (YAML)")
	library := fs.String("library", "", "built-in library pattern name")
	dialect := fs.String("dialect", "re2", "target dialect")
	fs.Parse(args)

	ast, err := loadAST(*specPath, *library)
	if err != nil {
		return err
	}
	d, err := regexkit.ParseDialect(*dialect)
	if err != nil {
		return err
	}
	result, err := regexkit.Lint(ast, d)
	if err != nil {
		return err
	}
	for _, issue := range result.Issues {
		fmt.Printf("%s %s: %s\n", issue.Severity, issue.Code, issue.Message)
	}
	if !result.Valid {
		return fmt.Errorf("pattern is not valid for dialect %s", d)
	}
	fmt.Printf("ok: %d warning(s)\n", len(result.Issues))
	return nil
}

func cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	pattern := fs.String("pattern", "", "pattern string to convert")
	from := fs.String("from", "re2", "source dialect")
	to := fs.String("to", "js", "target dialect")
	noDowngrades := fs.Bool("no-downgrades", false, "fail instead of downgrading unsupported constructs")
	fs.Parse(args)

	if *pattern == "" {
		return fmt.Errorf("-pattern is required")
	}
	fromD, err := regexkit.ParseDialect(*from)
	if err != nil {
		return err
	}
	toD, err := regexkit.ParseDialect(*to)
	if err != nil {
		return err
	}
	result, err := regexkit.Convert(*pattern, fromD, toD, regexkit.ConvertOptions{
		AllowDowngrades: !*noDowngrades,
	})
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning %s: %s\n", w.Code, w.Message)
	}
	fmt.Println(result.Pattern)
	return nil
}

// caseFile is the on-disk shape of a test case list.
type caseFile struct {
	Cases []struct {
		Input            string   `yaml:"input"`
		ShouldMatch      bool     `yaml:"shouldMatch"`
		ExpectedCaptures []string `yaml:"expectedCaptures,omitempty"`
	} `yaml:"cases"`
}

func cmdTest(args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	specPath := fs.String("spec", "", "path to a declarative build spec (YAML)")
	library := fs.String("library", "", "built-in library pattern name")
	pattern := fs.String("pattern", "", "already-emitted pattern (alternative to -spec/-library)")
	dialect := fs.String("dialect", "re2", "dialect whose engine runs the cases")
	casesPath := fs.String("cases", "", "path to a YAML file of test cases")
	timeoutMs := fs.Int("timeout", 1000, "per-case timeout in milliseconds")
	verbose := fs.Bool("v", false, "verbose diagnostics")
	fs.Parse(args)

	d, err := regexkit.ParseDialect(*dialect)
	if err != nil {
		return err
	}
	p := *pattern
	if p == "" {
		ast, err := loadAST(*specPath, *library)
		if err != nil {
			return err
		}
		p, err = regexkit.Emit(ast, d, regexkit.EmitOptions{})
		if err != nil {
			return err
		}
	}
	if *casesPath == "" {
		return fmt.Errorf("-cases is required")
	}
	data, err := os.ReadFile(*casesPath)
	if err != nil {
		return err
	}
	var cf caseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("invalid cases file: %w", err)
	}
	cases := make([]regexkit.TestCase, len(cf.Cases))
	for i, c := range cf.Cases {
		cases[i] = regexkit.TestCase{
			Input:            c.Input,
			ShouldMatch:      c.ShouldMatch,
			ExpectedCaptures: c.ExpectedCaptures,
		}
	}

	result, err := regexkit.Test(p, cases, regexkit.TestOptions{
		Dialect:   d,
		TimeoutMs: *timeoutMs,
		Verbose:   *verbose,
	})
	if err != nil {
		return err
	}
	for _, cr := range result.Cases {
		status := "pass"
		switch {
		case cr.TimedOut:
			status = "timeout"
		case !cr.Passed:
			status = "fail"
		}
		fmt.Printf("%-8s %q\n", status, cr.Case.Input)
	}
	fmt.Printf("%d passed, %d failed\n", result.Passed, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d case(s) failed", result.Failed)
	}
	return nil
}

func cmdGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	specPath := fs.String("spec", "", "path to a declarative build spec (YAML)")
	library := fs.String("library", "", "built-in library pattern name")
	name := fs.String("name", "", "identifier prefix for generated code")
	pkg := fs.String("package", "main", "package name of the generated file")
	out := fs.String("out", "", "output file path")
	withFind := fs.Bool("find", false, "also generate a capture-returning helper")
	anchor := fs.Bool("anchor", false, "anchor the pattern to the whole input")
	fs.Parse(args)

	ast, err := loadAST(*specPath, *library)
	if err != nil {
		return err
	}
	return regexkit.Generate(regexkit.GenerateOptions{
		AST:        ast,
		Name:       *name,
		Package:    *pkg,
		OutputFile: *out,
		WithFind:   *withFind,
		Anchor:     *anchor,
	})
}

func cmdLibrary(args []string) error {
	fs := flag.NewFlagSet("library", flag.ExitOnError)
	fs.Parse(args)
	for _, info := range regexkit.LibraryPatterns() {
		fmt.Printf("%-10s v%s  %s\n", info.Name, info.Version, info.Description)
	}
	return nil
}
