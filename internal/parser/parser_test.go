package parser_test

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/lexer"
	"github.com/kieli-lang/kieli/internal/parser"
	"github.com/kieli-lang/kieli/internal/prettyprinter"
)

// reprint runs lexer and parser over input and renders the CST back to
// source through the code printer.
func reprint(t *testing.T, input string) (string, []string) {
	t.Helper()
	database := db.New(db.DefaultConfiguration())
	docId := database.TestDocument(input)

	tokens, _ := lexer.New(input).Lex()
	arena, module := parser.Parse(database, docId, tokens)

	var messages []string
	for _, diagnostic := range database.Documents.Get(docId).Info.Diagnostics {
		messages = append(messages, diagnostic.Message)
	}
	printer := prettyprinter.NewCodePrinter(arena, database.StringPool)
	return printer.PrintModule(module), messages
}

func diff(expected, actual string) string {
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	return text
}

func TestParserReprint(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"simple_function",
			"fn f(x: I32): I32 = x",
			"fn f(x: I32): I32 = x\n",
		},
		{
			"block_body",
			"fn main() = { let x = 5; x }",
			"fn main() = {\n    let x = 5;\n    x\n}\n",
		},
		{
			"while_loop",
			"fn f() = while true { 1 }",
			"fn f() = while true {\n    1\n}\n",
		},
		{
			"if_let",
			"fn f(): I32 = if let (a, b) = (1, 2) { a } else { 0 }",
			"fn f(): I32 = if let (a, b) = (1, 2) {\n    a\n} else {\n    0\n}\n",
		},
		{
			"match_expression",
			"fn f(x: Bool): I32 = match x { true -> 1; false -> 0 }",
			"fn f(x: Bool): I32 = match x {\n    true -> 1;\n    false -> 0;\n}\n",
		},
		{
			"struct_definition",
			"struct Point { x: I32, y: I32 }",
			"struct Point {\n    x: I32,\n    y: I32,\n}\n",
		},
		{
			"enum_definition",
			"enum Option { None, Some(I32) }",
			"enum Option {\n    None,\n    Some(I32),\n}\n",
		},
		{
			"alias_definition",
			"alias Pair = (I32, Bool)",
			"alias Pair = (I32, Bool)\n",
		},
		{
			"reference_types",
			"fn f(a: &I32, b: &mut I32): &mut I32 = b",
			"fn f(a: &I32, b: &mut I32): &mut I32 = b\n",
		},
		{
			"call_and_fields",
			"fn f(p: Point): I32 = g(p.x, p.0)",
			"fn f(p: Point): I32 = g(p.x, p.0)\n",
		},
		{
			"global_path",
			"fn f(): I32 = ::a::b",
			"fn f(): I32 = ::a::b\n",
		},
		{
			"sizeof",
			"fn f(x: I32): U64 = sizeof([I32; 3])",
			"fn f(x: I32): U64 = sizeof([I32; 3])\n",
		},
		{
			"module_definition",
			"module helpers { fn id(x: I32): I32 = x }",
			"module helpers {\n    fn id(x: I32): I32 = x\n}\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, messages := reprint(t, tc.input)
			if len(messages) != 0 {
				t.Fatalf("unexpected diagnostics: %v", messages)
			}
			if actual != tc.expected {
				t.Errorf("reprint mismatch:\n%s", diff(tc.expected, actual))
			}
		})
	}
}

func TestParserRecovery(t *testing.T) {
	// The malformed definition must not swallow the following one.
	input := "fn ??? fn ok(): I32 = 1"
	actual, messages := reprint(t, input)
	if len(messages) == 0 {
		t.Fatal("expected a parse diagnostic")
	}
	expected := "fn ok(): I32 = 1\n"
	if actual != expected {
		t.Errorf("recovery mismatch:\n%s", diff(expected, actual))
	}
}
