package hir

import (
	"fmt"
	"strings"

	"github.com/kieli-lang/kieli/internal/utl"
)

// Formatter renders HIR nodes as stable text for golden tests and the
// resolver REPL. Each variant has a fixed prefix; child nodes are
// rendered by arena id dereference.
type Formatter struct {
	Arena *Arena
	Pool  *utl.StringPool
	out   strings.Builder
}

func NewFormatter(arena *Arena, pool *utl.StringPool) *Formatter {
	return &Formatter{Arena: arena, Pool: pool}
}

func (f *Formatter) String() string {
	return f.out.String()
}

func (f *Formatter) write(format string, args ...any) {
	fmt.Fprintf(&f.out, format, args...)
}

// TypeToString renders the type behind id.
func TypeToString(arena *Arena, pool *utl.StringPool, id TypeId) string {
	f := NewFormatter(arena, pool)
	f.FormatType(id)
	return f.String()
}

// MutabilityToString renders the mutability behind id.
func MutabilityToString(arena *Arena, pool *utl.StringPool, id MutabilityId) string {
	f := NewFormatter(arena, pool)
	f.FormatMutability(id)
	return f.String()
}

// ExpressionToString renders the expression behind id.
func ExpressionToString(arena *Arena, pool *utl.StringPool, id ExpressionId) string {
	f := NewFormatter(arena, pool)
	f.FormatExpression(id)
	return f.String()
}

// PatternToString renders the pattern behind id.
func PatternToString(arena *Arena, pool *utl.StringPool, id PatternId) string {
	f := NewFormatter(arena, pool)
	f.FormatPattern(id)
	return f.String()
}

func (f *Formatter) formatTypes(types []Type, separator string) {
	for i, t := range types {
		if i > 0 {
			f.write("%s", separator)
		}
		f.FormatType(t.Id)
	}
}

func (f *Formatter) FormatType(id TypeId) {
	switch v := (*f.Arena.Types.Get(id)).(type) {
	case IntegerType:
		f.write("%s", v.Kind.String())
	case FloatingType:
		f.write("Float")
	case CharacterType:
		f.write("Char")
	case BooleanType:
		f.write("Bool")
	case StringType:
		f.write("String")
	case ArrayType:
		f.write("[")
		f.FormatType(v.Element.Id)
		f.write("; ")
		f.FormatExpression(v.Length)
		f.write("]")
	case SliceType:
		f.write("[")
		f.FormatType(v.Element.Id)
		f.write("]")
	case TupleType:
		f.write("(")
		f.formatTypes(v.Types, ", ")
		f.write(")")
	case ReferenceType:
		f.write("&")
		f.formatMutPrefix(v.Mut.Id)
		f.FormatType(v.Referenced.Id)
	case PointerType:
		f.write("*")
		f.formatMutPrefix(v.Mut.Id)
		f.FormatType(v.Pointee.Id)
	case FunctionType:
		f.write("fn(")
		f.formatTypes(v.Parameters, ", ")
		f.write("): ")
		f.FormatType(v.Return.Id)
	case EnumerationType:
		f.write("%s", f.Pool.Get(v.Name.Id))
	case StructureType:
		f.write("%s", f.Pool.Get(v.Name.Id))
	case ParameterizedType:
		f.write("%s", f.Pool.Get(v.Name.Id))
	case TypeVariable:
		f.write("?%d", uint32(v.Id))
	case Error:
		f.write("(ERROR)")
	default:
		f.write("(UNKNOWN)")
	}
}

// formatMutPrefix writes "mut " after '&' or '*' when the mutability
// is not immut.
func (f *Formatter) formatMutPrefix(id MutabilityId) {
	switch v := (*f.Arena.Mutabilities.Get(id)).(type) {
	case ConcreteMutability:
		if v.IsMut {
			f.write("mut ")
		}
	case ParameterizedMutability:
		f.write("mut?%d ", uint32(v.Tag))
	case MutabilityVariable:
		f.write("?%d ", uint32(v.Id))
	case Error:
		f.write("(ERROR) ")
	}
}

func (f *Formatter) FormatMutability(id MutabilityId) {
	switch v := (*f.Arena.Mutabilities.Get(id)).(type) {
	case ConcreteMutability:
		if v.IsMut {
			f.write("mut")
		} else {
			f.write("immut")
		}
	case ParameterizedMutability:
		f.write("mut?%d", uint32(v.Tag))
	case MutabilityVariable:
		f.write("?%d", uint32(v.Id))
	case Error:
		f.write("(ERROR)")
	}
}

func (f *Formatter) formatExpressions(ids []ExpressionId, separator string) {
	for i, id := range ids {
		if i > 0 {
			f.write("%s", separator)
		}
		f.FormatExpression(id)
	}
}

func (f *Formatter) FormatExpression(id ExpressionId) {
	switch v := f.Arena.Expressions.Get(id).Variant.(type) {
	case Integer:
		f.write("%d", v.Value)
	case Floating:
		f.write("%v", v.Value)
	case Boolean:
		f.write("%t", v.Value)
	case Character:
		f.write("'%c'", v.Value)
	case String:
		f.write("%q", v.Value)
	case ArrayLiteral:
		f.write("[")
		f.formatExpressions(v.Elements, ", ")
		f.write("]")
	case Tuple:
		f.write("(")
		f.formatExpressions(v.Fields, ", ")
		f.write(")")
	case Loop:
		f.write("loop { ")
		f.FormatExpression(v.Body)
		f.write(" }")
	case Break:
		f.write("break ")
		f.FormatExpression(v.Result)
	case Continue:
		f.write("continue")
	case Block:
		f.write("{ ")
		for _, effect := range v.Effects {
			f.FormatExpression(effect)
			f.write("; ")
		}
		f.FormatExpression(v.Result)
		f.write(" }")
	case Let:
		f.write("let ")
		f.FormatPattern(v.Pattern)
		f.write(": ")
		f.FormatType(v.Type.Id)
		f.write(" = ")
		f.FormatExpression(v.Initializer)
	case Conditional:
		f.write("if ")
		f.FormatExpression(v.Condition)
		f.write(" { ")
		f.FormatExpression(v.TrueBranch)
		f.write(" } else { ")
		f.FormatExpression(v.FalseBranch)
		f.write(" }")
	case Match:
		f.write("match ")
		f.FormatExpression(v.Scrutinee)
		f.write(" { ")
		for _, arm := range v.Arms {
			f.FormatPattern(arm.Pattern)
			f.write(" -> ")
			f.FormatExpression(arm.Expression)
			f.write("; ")
		}
		f.write("}")
	case VariableReference:
		f.write("%s", f.Pool.Get(v.Name.Id))
	case FunctionReference:
		f.write("%s", f.Pool.Get(v.Name.Id))
	case ConstructorReference:
		f.write("%s", f.Pool.Get(v.Name.Id))
	case IndirectInvocation:
		f.FormatExpression(v.Function)
		f.write("(")
		f.formatExpressions(v.Arguments, ", ")
		f.write(")")
	case DirectInvocation:
		f.write("%s(", f.Pool.Get(v.Name.Id))
		f.formatExpressions(v.Arguments, ", ")
		f.write(")")
	case Initializer:
		structure := f.Arena.Structures.Get(v.Structure)
		f.write("%s { ", f.Pool.Get(structure.Name.Id))
		f.formatExpressions(v.Fields, ", ")
		f.write(" }")
	case StructFieldAccess:
		f.FormatExpression(v.Base)
		f.write(".%s", f.Pool.Get(v.Name.Id))
	case TupleFieldAccess:
		f.FormatExpression(v.Base)
		f.write(".%d", v.Index)
	case ArrayIndex:
		f.FormatExpression(v.Base)
		f.write(".[")
		f.FormatExpression(v.Index)
		f.write("]")
	case Sizeof:
		f.write("sizeof(")
		f.FormatType(v.Inspected.Id)
		f.write(")")
	case Addressof:
		f.write("&")
		f.formatMutPrefix(v.Mut.Id)
		f.FormatExpression(v.Place)
	case Dereference:
		f.write("(*")
		f.FormatExpression(v.Reference)
		f.write(")")
	case Defer:
		f.write("defer ")
		f.FormatExpression(v.Effect)
	case Ret:
		f.write("ret ")
		f.FormatExpression(v.Result)
	case Hole:
		f.write("_")
	case Error:
		f.write("(ERROR)")
	default:
		f.write("(UNKNOWN)")
	}
}

func (f *Formatter) FormatPattern(id PatternId) {
	switch v := f.Arena.Patterns.Get(id).Variant.(type) {
	case IntegerPattern:
		f.write("%d", v.Value)
	case FloatingPattern:
		f.write("%v", v.Value)
	case BooleanPattern:
		f.write("%t", v.Value)
	case CharacterPattern:
		f.write("'%c'", v.Value)
	case StringPattern:
		f.write("%q", v.Value)
	case WildcardPattern:
		f.write("_")
	case NamePattern:
		if mut, ok := (*f.Arena.Mutabilities.Get(v.Mut.Id)).(ConcreteMutability); ok && mut.IsMut {
			f.write("mut ")
		}
		f.write("%s", f.Pool.Get(v.Name.Id))
	case TuplePattern:
		f.write("(")
		for i, field := range v.Fields {
			if i > 0 {
				f.write(", ")
			}
			f.FormatPattern(field)
		}
		f.write(")")
	case SlicePattern:
		f.write("[")
		for i, pattern := range v.Patterns {
			if i > 0 {
				f.write(", ")
			}
			f.FormatPattern(pattern)
		}
		f.write("]")
	case ConstructorPattern:
		ctor := f.Arena.Constructors.Get(v.Constructor)
		f.write("%s", f.Pool.Get(ctor.Name.Id))
		if len(v.Fields) != 0 {
			f.write("(")
			for i, field := range v.Fields {
				if i > 0 {
					f.write(", ")
				}
				f.FormatPattern(field)
			}
			f.write(")")
		}
	case GuardedPattern:
		f.FormatPattern(v.Pattern)
		f.write(" if ")
		f.FormatExpression(v.Guard)
	case Error:
		f.write("(ERROR)")
	default:
		f.write("(UNKNOWN)")
	}
}

// FormatFunction renders a resolved function: signature and body.
func (f *Formatter) FormatFunction(id FunctionId) {
	info := f.Arena.Functions.Get(id)
	f.write("fn %s", f.Pool.Get(info.Name.Id))
	if info.Signature != nil {
		f.write("(")
		for i, parameter := range info.Signature.Parameters {
			if i > 0 {
				f.write(", ")
			}
			f.FormatPattern(parameter.Pattern)
			f.write(": ")
			f.FormatType(parameter.Type.Id)
		}
		f.write("): ")
		f.FormatType(info.Signature.ReturnType.Id)
	}
	if info.Body != nil {
		f.write(" = ")
		f.FormatExpression(*info.Body)
	}
}
