package desugar_test

import (
	"strings"
	"testing"

	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/desugar"
	"github.com/kieli-lang/kieli/internal/lexer"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/parser"
	"github.com/kieli-lang/kieli/internal/pipeline"
)

type result struct {
	database *db.Database
	docId    lsp.DocumentId
	ctx      *pipeline.Context
	printed  string
}

func desugarSource(t *testing.T, input string) result {
	t.Helper()
	database := db.New(db.DefaultConfiguration())
	docId := database.TestDocument(input)

	stages := pipeline.New(&lexer.Processor{}, &parser.Processor{}, &desugar.Processor{})
	ctx := stages.Run(pipeline.NewContext(database, docId))

	arena := &database.Documents.Get(docId).Arena.Ast
	printed := ast.ModuleToString(arena, database.StringPool, *ctx.Module)
	return result{database: database, docId: docId, ctx: ctx, printed: printed}
}

func (r result) diagnostics() []lsp.Diagnostic {
	return r.database.Documents.Get(r.docId).Info.Diagnostics
}

// while C { B } becomes loop { if C { B } else { break } }, and a
// constant true condition is reported as informational.
func TestDesugarWhileTrue(t *testing.T) {
	r := desugarSource(t, "fn f() = while true { 1 }")

	expected := "fn f() = loop { if true { { 1 } } else { break () } }\n"
	if r.printed != expected {
		t.Errorf("printed = %q, want %q", r.printed, expected)
	}

	diagnostics := r.diagnostics()
	if len(diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(diagnostics))
	}
	if diagnostics[0].Message != "Use 'loop' instead of 'while true'" {
		t.Errorf("unexpected message: %s", diagnostics[0].Message)
	}
	if diagnostics[0].Severity != lsp.SeverityInformation {
		t.Errorf("severity = %d, want information", diagnostics[0].Severity)
	}
}

func TestDesugarWhileFalse(t *testing.T) {
	r := desugarSource(t, "fn f() = while false { 1 }")
	diagnostics := r.diagnostics()
	if len(diagnostics) != 1 || diagnostics[0].Message != "Loop will never run" {
		t.Fatalf("unexpected diagnostics: %+v", diagnostics)
	}
	if diagnostics[0].Severity != lsp.SeverityWarning {
		t.Errorf("severity = %d, want warning", diagnostics[0].Severity)
	}
}

// if let P = E { T } else { F } becomes match E { P -> T; _ -> F }.
func TestDesugarIfLet(t *testing.T) {
	r := desugarSource(t, "fn f(): I32 = if let (a, b) = (1, 2) { a } else { 0 }")

	expected := "fn f(): I32 = match (1, 2) { (a, b) -> { a }; _ -> { 0 }; }\n"
	if r.printed != expected {
		t.Errorf("printed = %q, want %q", r.printed, expected)
	}
	if len(r.diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", r.diagnostics())
	}
}

// while let P = E { B } becomes loop { match E { P -> B; _ -> break } }.
func TestDesugarWhileLet(t *testing.T) {
	r := desugarSource(t, "fn f() = while let x = next() { x }")

	expected := "fn f() = loop { match next() { x -> { x }; _ -> break (); } }\n"
	if r.printed != expected {
		t.Errorf("printed = %q, want %q", r.printed, expected)
	}
}

func TestDesugarForLoopDiagnostic(t *testing.T) {
	r := desugarSource(t, "fn f() = for x in xs { x }")

	found := false
	for _, diagnostic := range r.diagnostics() {
		if diagnostic.Message == "For loops are not supported yet" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing for-loop diagnostic: %+v", r.diagnostics())
	}
	if !strings.Contains(r.printed, "(ERROR)") {
		t.Errorf("for loop should desugar to an error expression: %q", r.printed)
	}
}

// A block with no trailing result gets a synthetic unit whose range is
// the closing brace, even when effects exist.
func TestDesugarSyntheticUnit(t *testing.T) {
	input := "fn f() = { g(); }"
	r := desugarSource(t, input)

	expected := "fn f() = { g(); () }\n"
	if r.printed != expected {
		t.Errorf("printed = %q, want %q", r.printed, expected)
	}

	// The synthetic unit's range points at the closing brace.
	arena := &r.database.Documents.Get(r.docId).Arena.Ast
	var unitRange *lsp.Range
	for _, node := range arena.Expressions.All() {
		if block, ok := node.Variant.(ast.Block); ok {
			result := arena.Expressions.Get(block.Result)
			if _, isUnit := result.Variant.(ast.Tuple); isUnit {
				r := result.Range
				unitRange = &r
			}
		}
	}
	if unitRange == nil {
		t.Fatal("no synthetic unit found")
	}
	closeBrace := uint32(strings.LastIndexByte(input, '}'))
	if unitRange.Start.Character != closeBrace {
		t.Errorf("unit range starts at %d, want %d", unitRange.Start.Character, closeBrace)
	}
}

// A parameter with no explicit type inherits the type of the next
// parameter to its right.
func TestDesugarParameterTypePropagation(t *testing.T) {
	r := desugarSource(t, "fn f(a, b, c: I32): I32 = c")

	expected := "fn f(a: I32, b: I32, c: I32): I32 = c\n"
	if r.printed != expected {
		t.Errorf("printed = %q, want %q", r.printed, expected)
	}
	if len(r.diagnostics()) != 0 {
		t.Errorf("unexpected diagnostics: %+v", r.diagnostics())
	}
}

// The last parameter must have an explicit type.
func TestDesugarUntypedLastParameter(t *testing.T) {
	r := desugarSource(t, "fn f(a): I32 = 0")
	diagnostics := r.diagnostics()
	if len(diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", diagnostics)
	}
	expected := "The last function parameter must have an explicit type"
	if diagnostics[0].Message != expected {
		t.Errorf("unexpected message: %s", diagnostics[0].Message)
	}
}

// Self parameters become a normal parameter named self typed Self or
// &[mut] Self.
func TestDesugarSelfParameters(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"by_value",
			"impl Point { fn consume(self): I32 = 0 }",
			"fn consume(self: Self): I32 = 0",
		},
		{
			"by_reference",
			"impl Point { fn read(&self): I32 = 0 }",
			"fn read(self: &Self): I32 = 0",
		},
		{
			"by_mutable_reference",
			"impl Point { fn write(&mut self): I32 = 0 }",
			"fn write(self: &mut Self): I32 = 0",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := desugarSource(t, tc.input)
			if !strings.Contains(r.printed, tc.expected) {
				t.Errorf("printed = %q, want it to contain %q", r.printed, tc.expected)
			}
		})
	}
}

// Two struct fields with the same name produce exactly one error
// carrying a related-info pointer to the first.
func TestDesugarDuplicateFields(t *testing.T) {
	input := "struct S { x: I32, x: Bool }"
	r := desugarSource(t, input)

	diagnostics := r.diagnostics()
	if len(diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %+v", diagnostics)
	}
	diagnostic := diagnostics[0]
	if diagnostic.Message != "Multiple definitions for field x" {
		t.Errorf("unexpected message: %s", diagnostic.Message)
	}
	if diagnostic.Severity != lsp.SeverityError {
		t.Errorf("severity = %d, want error", diagnostic.Severity)
	}
	if len(diagnostic.Related) != 1 {
		t.Fatalf("expected related info, got %+v", diagnostic.Related)
	}

	// The error points at the second x, the related info at the first.
	first := uint32(strings.Index(input, "x:"))
	second := uint32(strings.LastIndex(input, "x:"))
	if diagnostic.Range.Start.Character != second {
		t.Errorf("error at %d, want %d", diagnostic.Range.Start.Character, second)
	}
	if diagnostic.Related[0].Location.Range.Start.Character != first {
		t.Errorf("related at %d, want %d",
			diagnostic.Related[0].Location.Range.Start.Character, first)
	}
}

func TestDesugarDuplicateConstructors(t *testing.T) {
	r := desugarSource(t, "enum E { A, A }")
	diagnostics := r.diagnostics()
	if len(diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %+v", diagnostics)
	}
	if diagnostics[0].Message != "Multiple definitions for constructor A" {
		t.Errorf("unexpected message: %s", diagnostics[0].Message)
	}
}

func TestDesugarConstantIfCondition(t *testing.T) {
	r := desugarSource(t, "fn f(): I32 = if true { 1 } else { 2 }")
	diagnostics := r.diagnostics()
	if len(diagnostics) != 1 || diagnostics[0].Message != "Constant condition" {
		t.Fatalf("unexpected diagnostics: %+v", diagnostics)
	}
	if diagnostics[0].Severity != lsp.SeverityInformation {
		t.Errorf("severity = %d, want information", diagnostics[0].Severity)
	}
}
