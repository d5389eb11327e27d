package prettyprinter

import (
	"github.com/kieli-lang/kieli/internal/cst"
)

func (p *CodePrinter) printExpression(id cst.ExpressionId) {
	switch v := p.arena.Expressions.Get(id).Variant.(type) {
	case cst.Integer:
		p.write("%d", v.Value)
	case cst.Floating:
		p.write("%v", v.Value)
	case cst.Boolean:
		p.write("%t", v.Value)
	case cst.Character:
		p.write("'%c'", v.Value)
	case cst.String:
		p.write("%q", v.Value)
	case cst.Wildcard:
		p.write("_")
	case cst.PathExpression:
		p.printPath(v.Path)
	case cst.Paren:
		p.write("(")
		p.printExpression(v.Expression)
		p.write(")")
	case cst.Array:
		p.write("[")
		p.printExpressionList(v.Elements)
		p.write("]")
	case cst.Tuple:
		p.write("(")
		p.printExpressionList(v.Fields)
		p.write(")")
	case cst.Conditional:
		p.write("if ")
		p.printExpression(v.Condition)
		p.write(" ")
		p.printExpression(v.TrueBranch)
		if v.FalseBranch != nil {
			p.write(" else ")
			p.printExpression(*v.FalseBranch)
		}
	case cst.Match:
		p.write("match ")
		p.printExpression(v.Scrutinee)
		p.write(" {")
		p.indent++
		for _, arm := range v.Arms {
			p.newline()
			p.printPattern(arm.Pattern)
			p.write(" -> ")
			p.printExpression(arm.Handler)
			p.write(";")
		}
		p.indent--
		p.newline()
		p.write("}")
	case cst.Block:
		p.printBlock(v)
	case cst.WhileLoop:
		p.write("while ")
		p.printExpression(v.Condition)
		p.write(" ")
		p.printExpression(v.Body)
	case cst.Loop:
		p.write("loop ")
		p.printExpression(v.Body)
	case cst.ForLoop:
		p.write("for ")
		p.printPattern(v.Pattern)
		p.write(" in ")
		p.printExpression(v.Iterable)
		p.write(" ")
		p.printExpression(v.Body)
	case cst.FunctionCall:
		p.printExpression(v.Invocable)
		p.write("(")
		p.printExpressionList(v.Arguments)
		p.write(")")
	case cst.StructInitializer:
		p.printPath(v.Path)
		p.write(" { ")
		for i, field := range v.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.write("%s: ", p.name(field.Name))
			p.printExpression(field.Expression)
		}
		p.write(" }")
	case cst.InfixCall:
		p.printExpression(v.Left)
		p.write(" %s ", p.name(v.Op))
		p.printExpression(v.Right)
	case cst.StructField:
		p.printExpression(v.Base)
		p.write(".%s", p.name(v.Name))
	case cst.TupleField:
		p.printExpression(v.Base)
		p.write(".%d", v.Index)
	case cst.ArrayIndex:
		p.printExpression(v.Base)
		p.write("[")
		p.printExpression(v.Index)
		p.write("]")
	case cst.Ascription:
		p.printExpression(v.Expression)
		p.write(": ")
		p.printType(v.Type)
	case cst.Let:
		p.write("let ")
		p.printPattern(v.Pattern)
		if v.Type != nil {
			p.write(": ")
			p.printType(*v.Type)
		}
		p.write(" = ")
		p.printExpression(v.Initializer)
	case cst.LocalAlias:
		p.write("alias %s = ", p.name(v.Name))
		p.printType(v.Type)
	case cst.Ret:
		p.write("ret")
		if v.Result != nil {
			p.write(" ")
			p.printExpression(*v.Result)
		}
	case cst.Break:
		p.write("break")
		if v.Result != nil {
			p.write(" ")
			p.printExpression(*v.Result)
		}
	case cst.Continue:
		p.write("continue")
	case cst.Sizeof:
		p.write("sizeof(")
		p.printType(v.Type)
		p.write(")")
	case cst.Addressof:
		p.write("&")
		p.printMutability(v.Mutability)
		p.printExpression(v.Expression)
	case cst.Deref:
		p.write("*")
		p.printExpression(v.Expression)
	case cst.Defer:
		p.write("defer ")
		p.printExpression(v.Expression)
	case cst.ErrorExpression:
		p.write("/* error */")
	}
}

func (p *CodePrinter) printExpressionList(ids []cst.ExpressionId) {
	for i, id := range ids {
		if i > 0 {
			p.write(", ")
		}
		p.printExpression(id)
	}
}

func (p *CodePrinter) printBlock(v cst.Block) {
	if len(v.Effects) == 0 && v.Result == nil {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	for _, effect := range v.Effects {
		p.newline()
		p.printExpression(effect.Expression)
		p.write(";")
	}
	if v.Result != nil {
		p.newline()
		p.printExpression(*v.Result)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func (p *CodePrinter) printPattern(id cst.PatternId) {
	switch v := p.arena.Patterns.Get(id).Variant.(type) {
	case cst.IntegerPattern:
		p.write("%d", v.Value)
	case cst.FloatingPattern:
		p.write("%v", v.Value)
	case cst.BooleanPattern:
		p.write("%t", v.Value)
	case cst.CharacterPattern:
		p.write("'%c'", v.Value)
	case cst.StringPattern:
		p.write("%q", v.Value)
	case cst.WildcardPattern:
		p.write("_")
	case cst.NamePattern:
		p.printMutability(v.Mutability)
		p.write("%s", p.name(v.Name))
	case cst.TuplePattern:
		p.write("(")
		for i, field := range v.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.printPattern(field)
		}
		p.write(")")
	case cst.SlicePattern:
		p.write("[")
		for i, pattern := range v.Patterns {
			if i > 0 {
				p.write(", ")
			}
			p.printPattern(pattern)
		}
		p.write("]")
	case cst.ConstructorPattern:
		p.printPath(v.Path)
		if len(v.TupleFields) != 0 {
			p.write("(")
			for i, field := range v.TupleFields {
				if i > 0 {
					p.write(", ")
				}
				p.printPattern(field)
			}
			p.write(")")
		} else if len(v.StructFields) != 0 {
			p.write(" { ")
			for i, field := range v.StructFields {
				if i > 0 {
					p.write(", ")
				}
				p.write("%s", p.name(field.Name))
				if field.Pattern != nil {
					p.write(": ")
					p.printPattern(*field.Pattern)
				}
			}
			p.write(" }")
		}
	case cst.AliasPattern:
		p.printPattern(v.Pattern)
		p.write(" as ")
		p.printMutability(v.Mutability)
		p.write("%s", p.name(v.Name))
	case cst.GuardedPattern:
		p.printPattern(v.Pattern)
		p.write(" if ")
		p.printExpression(v.Guard)
	case cst.ErrorPattern:
		p.write("/* error */")
	}
}

var builtinNames = [...]string{
	cst.BuiltinI8:     "I8",
	cst.BuiltinI16:    "I16",
	cst.BuiltinI32:    "I32",
	cst.BuiltinI64:    "I64",
	cst.BuiltinU8:     "U8",
	cst.BuiltinU16:    "U16",
	cst.BuiltinU32:    "U32",
	cst.BuiltinU64:    "U64",
	cst.BuiltinFloat:  "Float",
	cst.BuiltinChar:   "Char",
	cst.BuiltinBool:   "Bool",
	cst.BuiltinString: "String",
}

func (p *CodePrinter) printType(id cst.TypeId) {
	switch v := p.arena.Types.Get(id).Variant.(type) {
	case cst.BuiltinTypename:
		p.write("%s", builtinNames[v.Kind])
	case cst.ParenType:
		p.write("(")
		p.printType(v.Type)
		p.write(")")
	case cst.TupleType:
		p.write("(")
		for i, field := range v.Fields {
			if i > 0 {
				p.write(", ")
			}
			p.printType(field)
		}
		p.write(")")
	case cst.ArrayType:
		p.write("[")
		p.printType(v.Element)
		p.write("; ")
		p.printExpression(v.Length)
		p.write("]")
	case cst.SliceType:
		p.write("[")
		p.printType(v.Element)
		p.write("]")
	case cst.ReferenceType:
		p.write("&")
		p.printMutability(v.Mutability)
		p.printType(v.Element)
	case cst.PointerType:
		p.write("*")
		p.printMutability(v.Mutability)
		p.printType(v.Element)
	case cst.FunctionType:
		p.write("fn(")
		for i, parameter := range v.Parameters {
			if i > 0 {
				p.write(", ")
			}
			p.printType(parameter)
		}
		p.write("): ")
		p.printType(v.Return)
	case cst.TypeofType:
		p.write("typeof(")
		p.printExpression(v.Expression)
		p.write(")")
	case cst.SelfType:
		p.write("Self")
	case cst.WildcardType:
		p.write("_")
	case cst.PathType:
		p.printPath(v.Path)
	case cst.ErrorType:
		p.write("/* error */")
	}
}
