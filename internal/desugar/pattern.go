package desugar

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/cst"
)

func (ctx *Context) pattern(id cst.PatternId) ast.PatternId {
	node := ctx.Cst.Patterns.Get(id)
	variant := ctx.patternVariant(*node)
	return ctx.Ast.Patterns.Push(ast.Pattern{Variant: variant, Range: node.Range})
}

func (ctx *Context) patterns(ids []cst.PatternId) []ast.PatternId {
	var result []ast.PatternId
	for _, id := range ids {
		result = append(result, ctx.pattern(id))
	}
	return result
}

func (ctx *Context) patternVariant(node cst.Pattern) ast.PatternVariant {
	switch v := node.Variant.(type) {
	case cst.IntegerPattern:
		return ast.IntegerPattern{Value: v.Value}
	case cst.FloatingPattern:
		return ast.FloatingPattern{Value: v.Value}
	case cst.BooleanPattern:
		return ast.BooleanPattern{Value: v.Value}
	case cst.CharacterPattern:
		return ast.CharacterPattern{Value: v.Value}
	case cst.StringPattern:
		return ast.StringPattern{Value: v.Value}
	case cst.WildcardPattern:
		return ast.WildcardPattern{}
	case cst.NamePattern:
		return ast.NamePattern{
			Mutability: ctx.mutability(v.Mutability, v.Name.Range),
			Name:       v.Name,
		}
	case cst.TuplePattern:
		return ast.TuplePattern{Fields: ctx.patterns(v.Fields)}
	case cst.SlicePattern:
		return ast.SlicePattern{Patterns: ctx.patterns(v.Patterns)}
	case cst.ConstructorPattern:
		variant := ast.ConstructorPattern{
			Path:        ctx.path(v.Path),
			TupleFields: ctx.patterns(v.TupleFields),
			HasBody:     v.HasBody,
		}
		for _, field := range v.StructFields {
			// `Ctor { x }` is shorthand for `Ctor { x: x }`.
			pattern := ast.StructFieldPattern{Name: field.Name}
			if field.Pattern != nil {
				pattern.Pattern = ctx.pattern(*field.Pattern)
			} else {
				pattern.Pattern = ctx.Ast.Patterns.Push(ast.Pattern{
					Variant: ast.NamePattern{
						Mutability: ctx.mutability(nil, field.Name.Range),
						Name:       field.Name,
					},
					Range: field.Name.Range,
				})
			}
			variant.StructFields = append(variant.StructFields, pattern)
		}
		return variant
	case cst.AliasPattern:
		return ast.AliasPattern{
			Pattern:    ctx.pattern(v.Pattern),
			Mutability: ctx.mutability(v.Mutability, v.Name.Range),
			Name:       v.Name,
		}
	case cst.GuardedPattern:
		return ast.GuardedPattern{
			Pattern: ctx.pattern(v.Pattern),
			Guard:   ctx.expression(v.Guard),
		}
	case cst.ErrorPattern:
		return ast.ErrorPattern{}
	default:
		ctx.error(node.Range, "This pattern can not be desugared yet")
		return ast.ErrorPattern{}
	}
}
