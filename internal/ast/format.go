package ast

import (
	"fmt"
	"strings"

	"github.com/kieli-lang/kieli/internal/utl"
)

// Formatter renders AST nodes as stable single-line text. Golden tests
// and the desugarer REPL compare this output byte for byte.
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

// ExpressionToString renders one expression.
func ExpressionToString(arena *Arena, pool *utl.StringPool, id ExpressionId) string {
	f := NewFormatter(arena, pool)
	f.FormatExpression(id)
	return f.String()
}

// ModuleToString renders every definition, one per line.
func ModuleToString(arena *Arena, pool *utl.StringPool, module Module) string {
	f := NewFormatter(arena, pool)
	for _, definition := range module.Definitions {
		f.FormatDefinition(definition)
		f.write("\n")
	}
	return f.String()
}

func (f *Formatter) write(format string, args ...any) {
	fmt.Fprintf(&f.out, format, args...)
}

func (f *Formatter) path(path Path) {
	switch root := path.Root.(type) {
	case GlobalRoot:
		f.write("::")
	case TypeRoot:
		f.FormatType(root.Type)
		f.write("::")
	}
	for i, segment := range path.Segments {
		if i > 0 {
			f.write("::")
		}
		f.write("%s", f.Pool.Get(segment.Name.Id))
		if segment.HasTemplate {
			f.write("[")
			for j, argument := range segment.TemplateArguments {
				if j > 0 {
					f.write(", ")
				}
				f.FormatType(argument)
			}
			f.write("]")
		}
	}
}

func (f *Formatter) expressions(ids []ExpressionId, separator string) {
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
	case Wildcard:
		f.write("_")
	case PathExpression:
		f.path(v.Path)
	case Array:
		f.write("[")
		f.expressions(v.Elements, ", ")
		f.write("]")
	case Tuple:
		f.write("(")
		f.expressions(v.Fields, ", ")
		f.write(")")
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
	case Block:
		f.write("{ ")
		for _, effect := range v.Effects {
			f.FormatExpression(effect)
			f.write("; ")
		}
		f.FormatExpression(v.Result)
		f.write(" }")
	case Loop:
		f.write("loop { ")
		f.FormatExpression(v.Body)
		f.write(" }")
	case FunctionCall:
		f.FormatExpression(v.Invocable)
		f.write("(")
		f.expressions(v.Arguments, ", ")
		f.write(")")
	case StructInitializer:
		f.path(v.Path)
		f.write(" { ")
		for i, field := range v.Fields {
			if i > 0 {
				f.write(", ")
			}
			f.write("%s: ", f.Pool.Get(field.Name.Id))
			f.FormatExpression(field.Expression)
		}
		f.write(" }")
	case InfixCall:
		f.write("(")
		f.FormatExpression(v.Left)
		f.write(" %s ", f.Pool.Get(v.Op.Id))
		f.FormatExpression(v.Right)
		f.write(")")
	case StructField:
		f.FormatExpression(v.Base)
		f.write(".%s", f.Pool.Get(v.Name.Id))
	case TupleField:
		f.FormatExpression(v.Base)
		f.write(".%d", v.Index)
	case ArrayIndex:
		f.FormatExpression(v.Base)
		f.write(".[")
		f.FormatExpression(v.Index)
		f.write("]")
	case Ascription:
		f.write("(")
		f.FormatExpression(v.Expression)
		f.write(": ")
		f.FormatType(v.Type)
		f.write(")")
	case Let:
		f.write("let ")
		f.FormatPattern(v.Pattern)
		if v.Type != nil {
			f.write(": ")
			f.FormatType(*v.Type)
		}
		f.write(" = ")
		f.FormatExpression(v.Initializer)
	case LocalAlias:
		f.write("alias %s = ", f.Pool.Get(v.Name.Id))
		f.FormatType(v.Type)
	case Ret:
		f.write("ret ")
		f.FormatExpression(v.Result)
	case Break:
		f.write("break ")
		f.FormatExpression(v.Result)
	case Continue:
		f.write("continue")
	case Sizeof:
		f.write("sizeof(")
		f.FormatType(v.Type)
		f.write(")")
	case Addressof:
		f.write("&")
		if v.Mutability.IsMut {
			f.write("mut ")
		}
		f.FormatExpression(v.Expression)
	case Deref:
		f.write("(*")
		f.FormatExpression(v.Expression)
		f.write(")")
	case Defer:
		f.write("defer ")
		f.FormatExpression(v.Expression)
	case ErrorExpression:
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
		if v.Mutability.IsMut {
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
		f.path(v.Path)
		if len(v.TupleFields) != 0 {
			f.write("(")
			for i, field := range v.TupleFields {
				if i > 0 {
					f.write(", ")
				}
				f.FormatPattern(field)
			}
			f.write(")")
		}
		if len(v.StructFields) != 0 {
			f.write(" { ")
			for i, field := range v.StructFields {
				if i > 0 {
					f.write(", ")
				}
				f.write("%s: ", f.Pool.Get(field.Name.Id))
				f.FormatPattern(field.Pattern)
			}
			f.write(" }")
		}
	case AliasPattern:
		f.FormatPattern(v.Pattern)
		f.write(" as ")
		if v.Mutability.IsMut {
			f.write("mut ")
		}
		f.write("%s", f.Pool.Get(v.Name.Id))
	case GuardedPattern:
		f.FormatPattern(v.Pattern)
		f.write(" if ")
		f.FormatExpression(v.Guard)
	case ErrorPattern:
		f.write("(ERROR)")
	default:
		f.write("(UNKNOWN)")
	}
}

var builtinNames = [...]string{
	BuiltinI8:     "I8",
	BuiltinI16:    "I16",
	BuiltinI32:    "I32",
	BuiltinI64:    "I64",
	BuiltinU8:     "U8",
	BuiltinU16:    "U16",
	BuiltinU32:    "U32",
	BuiltinU64:    "U64",
	BuiltinFloat:  "Float",
	BuiltinChar:   "Char",
	BuiltinBool:   "Bool",
	BuiltinString: "String",
}

func (f *Formatter) FormatType(id TypeId) {
	switch v := f.Arena.Types.Get(id).Variant.(type) {
	case BuiltinTypename:
		f.write("%s", builtinNames[v.Kind])
	case TupleType:
		f.write("(")
		for i, field := range v.Fields {
			if i > 0 {
				f.write(", ")
			}
			f.FormatType(field)
		}
		f.write(")")
	case ArrayType:
		f.write("[")
		f.FormatType(v.Element)
		f.write("; ")
		f.FormatExpression(v.Length)
		f.write("]")
	case SliceType:
		f.write("[")
		f.FormatType(v.Element)
		f.write("]")
	case ReferenceType:
		f.write("&")
		if v.Mutability.IsMut {
			f.write("mut ")
		}
		f.FormatType(v.Element)
	case PointerType:
		f.write("*")
		if v.Mutability.IsMut {
			f.write("mut ")
		}
		f.FormatType(v.Element)
	case FunctionType:
		f.write("fn(")
		for i, parameter := range v.Parameters {
			if i > 0 {
				f.write(", ")
			}
			f.FormatType(parameter)
		}
		f.write("): ")
		f.FormatType(v.Return)
	case TypeofType:
		f.write("typeof(")
		f.FormatExpression(v.Expression)
		f.write(")")
	case SelfType:
		f.write("Self")
	case WildcardType:
		f.write("_")
	case PathType:
		f.path(v.Path)
	case ErrorType:
		f.write("(ERROR)")
	default:
		f.write("(UNKNOWN)")
	}
}

func (f *Formatter) FormatDefinition(definition Definition) {
	switch v := definition.Variant.(type) {
	case Function:
		f.write("fn %s(", f.Pool.Get(v.Signature.Name.Id))
		for i, parameter := range v.Signature.Parameters {
			if i > 0 {
				f.write(", ")
			}
			f.FormatPattern(parameter.Pattern)
			f.write(": ")
			f.FormatType(parameter.Type)
		}
		f.write(")")
		if v.Signature.ReturnType != nil {
			f.write(": ")
			f.FormatType(*v.Signature.ReturnType)
		}
		f.write(" = ")
		f.FormatExpression(v.Body)
	case Structure:
		f.write("struct %s", f.Pool.Get(v.Name.Id))
		f.constructorBody(v.Body)
	case Enumeration:
		f.write("enum %s { ", f.Pool.Get(v.Name.Id))
		for i, constructor := range v.Constructors {
			if i > 0 {
				f.write(", ")
			}
			f.write("%s", f.Pool.Get(constructor.Name.Id))
			f.constructorBody(constructor.Body)
		}
		f.write(" }")
	case Alias:
		f.write("alias %s = ", f.Pool.Get(v.Name.Id))
		f.FormatType(v.Type)
	case Concept:
		f.write("concept %s", f.Pool.Get(v.Name.Id))
	case Impl:
		f.write("impl ")
		f.FormatType(v.SelfType)
		f.write(" { ")
		for _, inner := range v.Definitions {
			f.FormatDefinition(inner)
			f.write("; ")
		}
		f.write("}")
	case Submodule:
		f.write("module %s { ", f.Pool.Get(v.Name.Id))
		for _, inner := range v.Definitions {
			f.FormatDefinition(inner)
			f.write("; ")
		}
		f.write("}")
	case ErrorDefinition:
		f.write("(ERROR)")
	}
}

func (f *Formatter) constructorBody(body ConstructorBody) {
	switch v := body.(type) {
	case StructConstructorBody:
		f.write(" { ")
		for i, field := range v.Fields {
			if i > 0 {
				f.write(", ")
			}
			f.write("%s: ", f.Pool.Get(field.Name.Id))
			f.FormatType(field.Type)
		}
		f.write(" }")
	case TupleConstructorBody:
		f.write("(")
		for i, fieldType := range v.Types {
			if i > 0 {
				f.write(", ")
			}
			f.FormatType(fieldType)
		}
		f.write(")")
	}
}
