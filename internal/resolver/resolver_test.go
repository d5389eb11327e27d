package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/desugar"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lexer"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/parser"
	"github.com/kieli-lang/kieli/internal/pipeline"
	"github.com/kieli-lang/kieli/internal/resolver"
)

func resolveSource(t *testing.T, input string) (*db.Database, lsp.DocumentId) {
	t.Helper()
	database := db.New(db.DefaultConfiguration())
	docId := database.TestDocument(input)

	stages := pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&desugar.Processor{},
		&resolver.Processor{},
	)
	stages.Run(pipeline.NewContext(database, docId))
	return database, docId
}

func diagnosticMessages(database *db.Database, docId lsp.DocumentId) []string {
	var messages []string
	for _, diagnostic := range database.Documents.Get(docId).Info.Diagnostics {
		messages = append(messages, diagnostic.Message)
	}
	return messages
}

func errorMessages(database *db.Database, docId lsp.DocumentId) []string {
	var messages []string
	for _, diagnostic := range database.Documents.Get(docId).Info.Diagnostics {
		if diagnostic.Severity == lsp.SeverityError {
			messages = append(messages, diagnostic.Message)
		}
	}
	return messages
}

func functionType(
	t *testing.T, database *db.Database, docId lsp.DocumentId, index uint32,
) (*db.Document, *hir.FunctionInfo) {
	t.Helper()
	document := database.Documents.Get(docId)
	require.Greater(t, document.Arena.Hir.Functions.Len(), int(index))
	return document, document.Arena.Hir.Functions.Get(hir.FunctionId(index))
}

func typeString(document *db.Document, database *db.Database, id hir.TypeId) string {
	return hir.TypeToString(&document.Arena.Hir, database.StringPool, id)
}

// fn f(x: I32): I32 = x resolves without diagnostics; the parameter
// and the body path expression both have type I32.
func TestResolveIdentityFunction(t *testing.T) {
	database, docId := resolveSource(t, "fn f(x: I32): I32 = x")
	assert.Empty(t, diagnosticMessages(database, docId))

	document, info := functionType(t, database, docId, 0)
	require.NotNil(t, info.Signature)
	require.Len(t, info.Signature.Parameters, 1)
	assert.Equal(t, "I32", typeString(document, database, info.Signature.Parameters[0].Type.Id))
	assert.Equal(t, "I32", typeString(document, database, info.Signature.ReturnType.Id))

	require.NotNil(t, info.Body)
	body := document.Arena.Hir.Expressions.Get(*info.Body)
	assert.IsType(t, hir.VariableReference{}, body.Variant)
	assert.Equal(t, "I32", typeString(document, database, body.Type))
	assert.Equal(t, hir.PlaceExpression, body.Kind)
}

// An undefined callee produces one undeclared-identifier error; the
// body is an error expression but the signature still resolves.
func TestResolveUndeclaredIdentifier(t *testing.T) {
	database, docId := resolveSource(t, "fn f() = g()")
	assert.Equal(t, []string{"Undeclared identifier: 'g'"}, errorMessages(database, docId))

	document, info := functionType(t, database, docId, 0)
	require.NotNil(t, info.Signature)
	require.NotNil(t, info.Body)
	body := document.Arena.Hir.Expressions.Get(*info.Body)
	assert.IsType(t, hir.Error{}, body.Variant)
}

// The if-let scenario resolves to I32 after integer-literal defaulting.
func TestResolveIfLetScenario(t *testing.T) {
	database, docId := resolveSource(t,
		"fn f(): I32 = if let (a, b) = (1, 2) { a } else { 0 }")
	assert.Empty(t, errorMessages(database, docId))

	document, info := functionType(t, database, docId, 0)
	require.NotNil(t, info.Body)
	body := document.Arena.Hir.Expressions.Get(*info.Body)
	assert.IsType(t, hir.Match{}, body.Variant)
	assert.Equal(t, "I32", typeString(document, database, body.Type))
}

func TestResolveWhileTrueScenario(t *testing.T) {
	database, docId := resolveSource(t, "fn f() = while true { 1 }")

	messages := diagnosticMessages(database, docId)
	assert.Equal(t, []string{"Use 'loop' instead of 'while true'"}, messages)
}

// Calling with the wrong arity is a type error.
func TestResolveWrongArity(t *testing.T) {
	database, docId := resolveSource(t,
		"fn g(x: I32): I32 = x fn f(): I32 = g(1, 2)")
	assert.Contains(t, errorMessages(database, docId), "Wrong argument count: expected 1, got 2")
}

// Duplicate top-level definitions keep the first and report the second.
func TestResolveDuplicateDefinition(t *testing.T) {
	database, docId := resolveSource(t, "fn f(): I32 = 1 fn f(): I32 = 2")
	messages := errorMessages(database, docId)
	require.Len(t, messages, 1)
	assert.Equal(t, "Duplicate definitions of 'f' in the same module", messages[0])

	diagnostic := database.Documents.Get(docId).Info.Diagnostics[0]
	require.Len(t, diagnostic.Related, 1)
	assert.Equal(t, "First defined here", diagnostic.Related[0].Message)
}

// A recursive alias reports a recursive definition instead of looping.
func TestResolveRecursiveAlias(t *testing.T) {
	database, docId := resolveSource(t, "alias A = (A, I32)")
	assert.Contains(t, errorMessages(database, docId), "Recursive definition: 'A'")
}

// Recursive functions are fine: the signature resolves before bodies.
func TestResolveRecursiveFunction(t *testing.T) {
	database, docId := resolveSource(t, "fn f(x: I32): I32 = f(x)")
	assert.Empty(t, errorMessages(database, docId))
}

func TestResolveEnumConstructorPattern(t *testing.T) {
	database, docId := resolveSource(t, `
enum Option { None, Some(I32) }
fn unwrap(o: Option): I32 = match o { Option::Some(x) -> x; Option::None -> 0 }
`)
	assert.Empty(t, errorMessages(database, docId))
}

func TestResolveStructInitializerAndFieldAccess(t *testing.T) {
	database, docId := resolveSource(t, `
struct Point { x: I32, y: I32 }
fn origin(): Point = Point { x: 0, y: 0 }
fn abscissa(p: Point): I32 = p.x
`)
	assert.Empty(t, errorMessages(database, docId))
}

func TestResolveMissingStructFields(t *testing.T) {
	database, docId := resolveSource(t, `
struct Point { x: I32, y: I32 }
fn broken(): Point = Point { x: 0 }
`)
	assert.Contains(t, errorMessages(database, docId),
		"Struct initializer for 'Point' is missing fields")
}

func TestResolveUnknownStructField(t *testing.T) {
	database, docId := resolveSource(t, `
struct Point { x: I32, y: I32 }
fn broken(p: Point): I32 = p.z
`)
	assert.Contains(t, errorMessages(database, docId), "'Point' has no field 'z'")
}

// Taking the address of a non-place expression is an error; places
// are fine.
func TestResolvePlaceAndValueExpressions(t *testing.T) {
	database, docId := resolveSource(t, "fn f(x: I32): &I32 = &x")
	assert.Empty(t, errorMessages(database, docId))

	database, docId = resolveSource(t, "fn f(): &I32 = &1")
	assert.Contains(t, errorMessages(database, docId),
		"This expression does not identify a place in memory, "+
			"so its address can not be taken")
}

// Dereference produces a place of the referenced type.
func TestResolveDereference(t *testing.T) {
	database, docId := resolveSource(t, "fn f(r: &I32): I32 = *r")
	assert.Empty(t, errorMessages(database, docId))
}

// &mut T is accepted where &T is expected, but not the other way.
func TestResolveMutabilityCoercion(t *testing.T) {
	database, docId := resolveSource(t, "fn f(r: &mut I32): &I32 = r")
	assert.Empty(t, errorMessages(database, docId))

	database, docId = resolveSource(t, "fn f(r: &I32): &mut I32 = r")
	messages := errorMessages(database, docId)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Could not unify")
}

// Unused locals warn, with a silencing code action when enabled.
func TestResolveUnusedLocalWarning(t *testing.T) {
	database, docId := resolveSource(t, "fn f(): I32 = { let x = 1; 2 }")
	messages := diagnosticMessages(database, docId)
	assert.Contains(t, messages, "Unused local variable: 'x'")

	database, docId = resolveSource(t, "fn f(): I32 = { let _x = 1; 2 }")
	assert.Empty(t, diagnosticMessages(database, docId))
}

func TestResolveModulePaths(t *testing.T) {
	database, docId := resolveSource(t, `
module inner { fn id(x: I32): I32 = x }
fn f(): I32 = inner::id(1)
`)
	assert.Empty(t, errorMessages(database, docId))
}

func TestResolveNotAModule(t *testing.T) {
	database, docId := resolveSource(t, `
fn g(): I32 = 0
fn f(): I32 = g::x
`)
	assert.Contains(t, errorMessages(database, docId),
		"Expected a module, but 'g' is a function")
}

func TestResolveMissingModuleMember(t *testing.T) {
	database, docId := resolveSource(t, `
module inner { fn id(x: I32): I32 = x }
fn f(): I32 = inner::missing
`)
	assert.Contains(t, errorMessages(database, docId),
		"Module 'inner' does not contain 'missing'")
}

// Template arguments remain a documented hole.
func TestResolveTemplateArgumentsTodo(t *testing.T) {
	database, docId := resolveSource(t, `
struct Box[T] { value: I32 }
fn f(): I32 = { let b: Box[I32] = Box { value: 1 }; b.value }
`)
	assert.Contains(t, errorMessages(database, docId),
		"Template argument resolution has not been implemented")
}

// Self is only available inside impl blocks.
func TestResolveSelfOutsideImpl(t *testing.T) {
	database, docId := resolveSource(t, "fn f(x: Self): I32 = 0")
	assert.Contains(t, errorMessages(database, docId),
		"The Self type is only accessible within 'impl' blocks")
}

func TestResolveImplSelf(t *testing.T) {
	database, docId := resolveSource(t, `
struct Point { x: I32, y: I32 }
impl Point { fn abscissa(&self): I32 = 0 }
`)
	assert.Empty(t, errorMessages(database, docId))
}

// The HIR node keeps the AST node's source range.
func TestResolveRangePreservation(t *testing.T) {
	input := "fn f(x: I32): I32 = x"
	database, docId := resolveSource(t, input)

	document, info := functionType(t, database, docId, 0)
	require.NotNil(t, info.Body)
	body := document.Arena.Hir.Expressions.Get(*info.Body)

	column := uint32(len(input) - 1)
	assert.Equal(t, lsp.Position{Line: 0, Character: column}, body.Range.Start)
	assert.Equal(t, lsp.Position{Line: 0, Character: column + 1}, body.Range.Stop)
}

// References recorded during resolution stay inside the document.
func TestResolveReferencesEnabled(t *testing.T) {
	configuration := db.ServerConfiguration()
	database := db.New(configuration)
	docId := database.TestDocument("fn f(x: I32): I32 = x")

	stages := pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&desugar.Processor{},
		&resolver.Processor{},
	)
	stages.Run(pipeline.NewContext(database, docId))

	info := &database.Documents.Get(docId).Info
	require.NotEmpty(t, info.References)

	lineLength := uint32(len("fn f(x: I32): I32 = x"))
	for _, reference := range info.References {
		assert.LessOrEqual(t, reference.Reference.Range.Stop.Character, lineLength)
		assert.EqualValues(t, 0, reference.Reference.Range.Start.Line)
	}
	assert.NotNil(t, info.RootEnvId)
}
