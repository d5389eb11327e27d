package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

func newTestContext(t *testing.T) (*Context, *InferenceState) {
	t.Helper()
	database := db.New(db.DefaultConfiguration())
	docId := database.TestDocument("")
	return NewContext(database, docId), NewInferenceState()
}

func testDiagnostics(ctx *Context) []lsp.Diagnostic {
	return ctx.DB.Documents.Get(ctx.DocId).Info.Diagnostics
}

func someRange() lsp.Range {
	return lsp.Range{
		Start: lsp.Position{Line: 0, Character: 0},
		Stop:  lsp.Position{Line: 0, Character: 1},
	}
}

func TestUnifyConcreteTypes(t *testing.T) {
	ctx, state := newTestContext(t)

	ctx.RequireSubtypeRelationship(
		state, someRange(), ctx.Constants.I32Type, ctx.Constants.I32Type)
	assert.Empty(t, testDiagnostics(ctx))

	ctx.RequireSubtypeRelationship(
		state, someRange(), ctx.Constants.I32Type, ctx.Constants.BooleanType)
	require.Len(t, testDiagnostics(ctx), 1)
	assert.Equal(t, "Could not unify I32 ~> Bool", testDiagnostics(ctx)[0].Message)
}

// Solving a variable against a concrete type records the solution for
// every member of its class.
func TestUnifyVariableSolution(t *testing.T) {
	ctx, state := newTestContext(t)

	alpha := ctx.freshGeneralTypeVariable(state, someRange())
	beta := ctx.freshGeneralTypeVariable(state, someRange())

	ctx.RequireSubtypeRelationship(state, someRange(), alpha.Id, beta.Id)
	ctx.RequireSubtypeRelationship(state, someRange(), beta.Id, ctx.Constants.I32Type)
	assert.Empty(t, testDiagnostics(ctx))

	ctx.flattenType(state, alpha.Id)
	ctx.flattenType(state, beta.Id)
	assert.Equal(t, "I32", ctx.typeString(alpha.Id))
	assert.Equal(t, "I32", ctx.typeString(beta.Id))
}

// After any sequence of unifications, Find is idempotent and
// transitively unified variables share a representative.
func TestUnifyUnionFindInvariant(t *testing.T) {
	ctx, state := newTestContext(t)

	a := ctx.freshGeneralTypeVariable(state, someRange())
	b := ctx.freshGeneralTypeVariable(state, someRange())
	c := ctx.freshGeneralTypeVariable(state, someRange())

	ctx.RequireSubtypeRelationship(state, someRange(), a.Id, b.Id)
	ctx.RequireSubtypeRelationship(state, someRange(), b.Id, c.Id)

	repA := state.TypeSet.Find(0)
	assert.Equal(t, repA, state.TypeSet.Find(state.TypeSet.Find(0)))
	assert.Equal(t, repA, state.TypeSet.Find(1))
	assert.Equal(t, repA, state.TypeSet.Find(2))
}

// Unifying a variable with a type containing it reports a recursive
// solution and binds the variable to the error type.
func TestUnifyOccursCheck(t *testing.T) {
	ctx, state := newTestContext(t)

	alpha := ctx.freshGeneralTypeVariable(state, someRange())
	pair := ctx.Arena.Hir.Types.Push(hir.TupleType{Types: []hir.Type{alpha, alpha}})

	ctx.RequireSubtypeRelationship(state, someRange(), alpha.Id, pair)

	require.Len(t, testDiagnostics(ctx), 1)
	assert.Contains(t, testDiagnostics(ctx)[0].Message, "Recursive type variable solution")

	ctx.flattenType(state, alpha.Id)
	assert.Equal(t, "(ERROR)", ctx.typeString(alpha.Id))
}

func referenceType(ctx *Context, element hir.TypeId, mut hir.MutabilityId) hir.TypeId {
	return ctx.Arena.Hir.Types.Push(hir.ReferenceType{
		Referenced: hir.Type{Id: element, Range: someRange()},
		Mut:        hir.Mutability{Id: mut, Range: someRange()},
	})
}

// &mut T may stand in for &T under the subtype goal; the reverse must
// fail, as must both directions under equality.
func TestUnifyMutabilitySubtyping(t *testing.T) {
	ctx, state := newTestContext(t)

	mutRef := referenceType(ctx, ctx.Constants.I32Type, ctx.Constants.MutabilityYes)
	immutRef := referenceType(ctx, ctx.Constants.I32Type, ctx.Constants.MutabilityNo)

	ctx.RequireSubtypeRelationship(state, someRange(), mutRef, immutRef)
	assert.Empty(t, testDiagnostics(ctx))

	ctx.RequireSubtypeRelationship(state, someRange(), immutRef, mutRef)
	require.Len(t, testDiagnostics(ctx), 1)
	assert.Contains(t, testDiagnostics(ctx)[0].Message, "Could not unify")

	ctx2, state2 := newTestContext(t)
	mutRef2 := referenceType(ctx2, ctx2.Constants.I32Type, ctx2.Constants.MutabilityYes)
	immutRef2 := referenceType(ctx2, ctx2.Constants.I32Type, ctx2.Constants.MutabilityNo)
	ctx2.RequireEqualityRelationship(state2, someRange(), mutRef2, immutRef2)
	assert.Len(t, testDiagnostics(ctx2), 1)
}

// The error type unifies with anything without further diagnostics.
func TestUnifyErrorSuppression(t *testing.T) {
	ctx, state := newTestContext(t)

	ctx.RequireSubtypeRelationship(
		state, someRange(), ctx.Constants.ErrorType, ctx.Constants.I32Type)
	ctx.RequireSubtypeRelationship(
		state, someRange(), ctx.Constants.BooleanType, ctx.Constants.ErrorType)
	assert.Empty(t, testDiagnostics(ctx))
}

// An integral variable only solves to an integer type.
func TestUnifyIntegralVariables(t *testing.T) {
	ctx, state := newTestContext(t)

	integral := ctx.freshIntegralTypeVariable(state, someRange())
	ctx.RequireSubtypeRelationship(state, someRange(), integral.Id, ctx.Constants.BooleanType)
	require.Len(t, testDiagnostics(ctx), 1)
	assert.Contains(t, testDiagnostics(ctx)[0].Message, "Could not unify")

	ctx2, state2 := newTestContext(t)
	integral2 := ctx2.freshIntegralTypeVariable(state2, someRange())
	ctx2.RequireSubtypeRelationship(state2, someRange(), integral2.Id, ctx2.Constants.U8Type)
	assert.Empty(t, testDiagnostics(ctx2))
	ctx2.flattenType(state2, integral2.Id)
	assert.Equal(t, "U8", ctx2.typeString(integral2.Id))
}

// A general variable unified with an integral one becomes integral.
func TestUnifyIntegralPropagation(t *testing.T) {
	ctx, state := newTestContext(t)

	general := ctx.freshGeneralTypeVariable(state, someRange())
	integral := ctx.freshIntegralTypeVariable(state, someRange())

	ctx.RequireSubtypeRelationship(state, someRange(), general.Id, integral.Id)
	ctx.RequireSubtypeRelationship(state, someRange(), general.Id, ctx.Constants.StringType)
	require.Len(t, testDiagnostics(ctx), 1)
	assert.Contains(t, testDiagnostics(ctx)[0].Message, "Could not unify")
}

// Unsolved mutability variables default to immut; unsolved general
// variables produce one diagnostic and become the error type; unsolved
// integral variables default to I32 when configured.
func TestUnifyDefaulting(t *testing.T) {
	ctx, state := newTestContext(t)

	mutability := ctx.freshMutabilityVariable(state, someRange())
	general := ctx.freshGeneralTypeVariable(state, someRange())
	integral := ctx.freshIntegralTypeVariable(state, someRange())

	ctx.EnsureNoUnsolvedVariables(state)

	assert.Equal(t, "immut",
		hir.MutabilityToString(&ctx.Arena.Hir, ctx.pool(), mutability.Id))
	assert.Equal(t, "(ERROR)", ctx.typeString(general.Id))
	assert.Equal(t, "I32", ctx.typeString(integral.Id))

	diagnostics := testDiagnostics(ctx)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Message, "Unsolved type variable")
}

// Defaulting with integer defaulting disabled reports the integral
// variable too.
func TestUnifyDefaultingWithoutIntegers(t *testing.T) {
	configuration := db.DefaultConfiguration()
	configuration.DefaultIntegers = false
	database := db.New(configuration)
	docId := database.TestDocument("")
	ctx := NewContext(database, docId)
	state := NewInferenceState()

	ctx.freshIntegralTypeVariable(state, someRange())
	ctx.EnsureNoUnsolvedVariables(state)

	diagnostics := testDiagnostics(ctx)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Message, "Unsolved type variable")
}

// Two solved classes meeting later still unify their solutions.
func TestUnifySolvedClassMerge(t *testing.T) {
	ctx, state := newTestContext(t)

	a := ctx.freshGeneralTypeVariable(state, someRange())
	b := ctx.freshGeneralTypeVariable(state, someRange())

	ctx.RequireSubtypeRelationship(state, someRange(), a.Id, ctx.Constants.I32Type)
	ctx.RequireSubtypeRelationship(state, someRange(), b.Id, ctx.Constants.BooleanType)
	assert.Empty(t, testDiagnostics(ctx))

	// a is already I32, b is Bool: unifying them must fail.
	ctx.RequireSubtypeRelationship(state, someRange(), a.Id, b.Id)
	assert.Len(t, testDiagnostics(ctx), 1)
}
