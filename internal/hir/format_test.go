package hir

import (
	"testing"

	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/utl"
)

func TestTypeFormatting(t *testing.T) {
	arena := &Arena{}
	pool := utl.NewStringPool()

	i32 := arena.Types.Push(IntegerType{Kind: I32})
	boolean := arena.Types.Push(BooleanType{})
	str := arena.Types.Push(StringType{})
	mutYes := arena.Mutabilities.Push(ConcreteMutability{IsMut: true})
	mutNo := arena.Mutabilities.Push(ConcreteMutability{})

	someRange := lsp.Range{}
	typed := func(id TypeId) Type { return Type{Id: id, Range: someRange} }
	mut := func(id MutabilityId) Mutability { return Mutability{Id: id, Range: someRange} }

	tuple := arena.Types.Push(TupleType{Types: []Type{typed(i32), typed(boolean)}})
	mutRef := arena.Types.Push(ReferenceType{Referenced: typed(i32), Mut: mut(mutYes)})
	immutRef := arena.Types.Push(ReferenceType{Referenced: typed(str), Mut: mut(mutNo)})
	slice := arena.Types.Push(SliceType{Element: typed(i32)})
	function := arena.Types.Push(FunctionType{
		Parameters: []Type{typed(i32), typed(boolean)},
		Return:     typed(str),
	})
	variable := arena.Types.Push(TypeVariable{Id: 7})
	errorType := arena.Types.Push(Error{})
	pointer := arena.Types.Push(PointerType{Pointee: typed(i32), Mut: mut(mutYes)})
	unit := arena.Types.Push(TupleType{})

	testCases := []struct {
		name     string
		id       TypeId
		expected string
	}{
		{"integer", i32, "I32"},
		{"boolean", boolean, "Bool"},
		{"string", str, "String"},
		{"tuple", tuple, "(I32, Bool)"},
		{"unit", unit, "()"},
		{"mutable_reference", mutRef, "&mut I32"},
		{"immutable_reference", immutRef, "&String"},
		{"slice", slice, "[I32]"},
		{"function", function, "fn(I32, Bool): String"},
		{"variable", variable, "?7"},
		{"error", errorType, "(ERROR)"},
		{"pointer", pointer, "*mut I32"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := TypeToString(arena, pool, tc.id)
			if actual != tc.expected {
				t.Errorf("TypeToString = %q, want %q", actual, tc.expected)
			}
		})
	}
}

func TestMutabilityFormatting(t *testing.T) {
	arena := &Arena{}
	pool := utl.NewStringPool()

	mutYes := arena.Mutabilities.Push(ConcreteMutability{IsMut: true})
	mutNo := arena.Mutabilities.Push(ConcreteMutability{})
	variable := arena.Mutabilities.Push(MutabilityVariable{Id: 3})

	if actual := MutabilityToString(arena, pool, mutYes); actual != "mut" {
		t.Errorf("mut prints as %q", actual)
	}
	if actual := MutabilityToString(arena, pool, mutNo); actual != "immut" {
		t.Errorf("immut prints as %q", actual)
	}
	if actual := MutabilityToString(arena, pool, variable); actual != "?3" {
		t.Errorf("variable prints as %q", actual)
	}
}

func TestExpressionFormatting(t *testing.T) {
	arena := &Arena{}
	pool := utl.NewStringPool()

	i32 := arena.Types.Push(IntegerType{Kind: I32})
	one := arena.Expressions.Push(Expression{Variant: Integer{Value: 1}, Type: i32})
	two := arena.Expressions.Push(Expression{Variant: Integer{Value: 2}, Type: i32})
	tupleType := arena.Types.Push(TupleType{})
	tuple := arena.Expressions.Push(Expression{
		Variant: Tuple{Fields: []ExpressionId{one, two}},
		Type:    tupleType,
	})

	if actual := ExpressionToString(arena, pool, tuple); actual != "(1, 2)" {
		t.Errorf("ExpressionToString = %q, want %q", actual, "(1, 2)")
	}
}
