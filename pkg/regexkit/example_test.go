package regexkit_test

import (
	"fmt"

	"github.com/regexkit/regexkit/pkg/regexkit"
)

func ExampleEmit() {
	ast, _ := regexkit.Lit("v").Then(regexkit.Digit().OneOrMore()).Node()
	pattern, _ := regexkit.Emit(ast, regexkit.DialectRE2, regexkit.EmitOptions{Anchor: true})
	fmt.Println(pattern)
	// Output: ^v[0-9]+$
}

func ExampleConvertAST() {
	ast, _ := regexkit.Digit().OneOrMore().NamedGroup("n").Node()

	result, _ := regexkit.ConvertAST(ast, regexkit.DialectJS, regexkit.DefaultConvertOptions())
	fmt.Println(result.Pattern)
	// Output: (?<n>[0-9]+)
}

func ExampleTest() {
	result, _ := regexkit.Test("[0-9]+", []regexkit.TestCase{
		{Input: "123", ShouldMatch: true},
		{Input: "abc", ShouldMatch: false},
	}, regexkit.TestOptions{Dialect: regexkit.DialectJS, TimeoutMs: 100})
	fmt.Printf("passed %d of %d\n", result.Passed, len(result.Cases))
	// Output: passed 2 of 2
}
