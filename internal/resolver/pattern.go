package resolver

import (
	"strconv"

	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

// ResolvePattern computes a pattern's type bottom-up; the caller
// unifies the matched expression's type against it. Name patterns bind
// local variables into the enclosing scope. Each pattern records
// whether it is exhaustive by itself.
func (ctx *Context) ResolvePattern(
	state *InferenceState, envId hir.EnvironmentId, id ast.PatternId,
) hir.Pattern {
	node := ctx.Arena.Ast.Patterns.Get(id)
	r := node.Range

	switch v := node.Variant.(type) {
	case ast.IntegerPattern:
		return hir.Pattern{
			Variant: hir.IntegerPattern{Value: v.Value},
			Type:    ctx.freshIntegralTypeVariable(state, r).Id,
			Range:   r,
		}
	case ast.FloatingPattern:
		return hir.Pattern{
			Variant: hir.FloatingPattern{Value: v.Value},
			Type:    ctx.Constants.FloatingType,
			Range:   r,
		}
	case ast.BooleanPattern:
		return hir.Pattern{
			Variant: hir.BooleanPattern{Value: v.Value},
			Type:    ctx.Constants.BooleanType,
			Range:   r,
		}
	case ast.CharacterPattern:
		return hir.Pattern{
			Variant: hir.CharacterPattern{Value: v.Value},
			Type:    ctx.Constants.CharacterType,
			Range:   r,
		}
	case ast.StringPattern:
		return hir.Pattern{
			Variant: hir.StringPattern{Value: v.Value},
			Type:    ctx.Constants.StringType,
			Range:   r,
		}
	case ast.WildcardPattern:
		return hir.Pattern{
			Variant:            hir.WildcardPattern{},
			Type:               ctx.freshGeneralTypeVariable(state, r).Id,
			ExhaustiveByItself: true,
			Range:              r,
		}
	case ast.NamePattern:
		patternType := ctx.freshGeneralTypeVariable(state, r)
		mut := ctx.resolveMutability(v.Mutability)
		localId := ctx.bindVariable(envId, v.Name, mut, patternType.Id)
		return hir.Pattern{
			Variant:            hir.NamePattern{Id: localId, Name: v.Name, Mut: mut},
			Type:               patternType.Id,
			ExhaustiveByItself: true,
			Range:              r,
		}
	case ast.TuplePattern:
		var fields []hir.PatternId
		var types []hir.Type
		exhaustive := true
		for _, field := range v.Fields {
			pattern := ctx.ResolvePattern(state, envId, field)
			exhaustive = exhaustive && pattern.ExhaustiveByItself
			types = append(types, hir.Type{Id: pattern.Type, Range: pattern.Range})
			fields = append(fields, ctx.Arena.Hir.Patterns.Push(pattern))
		}
		return hir.Pattern{
			Variant:            hir.TuplePattern{Fields: fields},
			Type:               ctx.Arena.Hir.Types.Push(hir.TupleType{Types: types}),
			ExhaustiveByItself: exhaustive,
			Range:              r,
		}
	case ast.SlicePattern:
		element := ctx.freshGeneralTypeVariable(state, r)
		var patterns []hir.PatternId
		for _, elementPattern := range v.Patterns {
			pattern := ctx.ResolvePattern(state, envId, elementPattern)
			ctx.RequireSubtypeRelationship(state, pattern.Range, pattern.Type, element.Id)
			patterns = append(patterns, ctx.Arena.Hir.Patterns.Push(pattern))
		}
		return hir.Pattern{
			Variant: hir.SlicePattern{Patterns: patterns},
			Type:    ctx.Arena.Hir.Types.Push(hir.SliceType{Element: element}),
			Range:   r,
		}
	case ast.ConstructorPattern:
		return ctx.resolveConstructorPattern(state, envId, v, r)
	case ast.AliasPattern:
		inner := ctx.ResolvePattern(state, envId, v.Pattern)
		mut := ctx.resolveMutability(v.Mutability)
		ctx.bindVariable(envId, v.Name, mut, inner.Type)
		return inner
	case ast.GuardedPattern:
		inner := ctx.ResolvePattern(state, envId, v.Pattern)
		guard := ctx.ResolveExpression(state, envId, v.Guard)
		ctx.RequireSubtypeRelationship(state, guard.Range, guard.Type, ctx.Constants.BooleanType)
		guardId := ctx.Arena.Hir.Expressions.Push(guard)
		innerId := ctx.Arena.Hir.Patterns.Push(inner)
		return hir.Pattern{
			Variant: hir.GuardedPattern{Pattern: innerId, Guard: guardId},
			Type:    inner.Type,
			Range:   r,
		}
	case ast.ErrorPattern:
		return ctx.errorPattern(r)
	default:
		ctx.error(r, "This pattern can not be resolved yet")
		return ctx.errorPattern(r)
	}
}

func (ctx *Context) errorPattern(r lsp.Range) hir.Pattern {
	return hir.Pattern{
		Variant:            hir.Error{},
		Type:               ctx.Constants.ErrorType,
		ExhaustiveByItself: true,
		Range:              r,
	}
}

// resolveConstructorPattern checks that the path names an enum
// constructor and that the pattern body matches the constructor's
// declared form.
func (ctx *Context) resolveConstructorPattern(
	state *InferenceState, envId hir.EnvironmentId, v ast.ConstructorPattern, r lsp.Range,
) hir.Pattern {
	symbolId := ctx.ResolvePath(state, envId, v.Path)
	symbol := ctx.Arena.Symbols.Get(symbolId)

	ctorSymbol, ok := symbol.Variant.(db.ConstructorSymbol)
	if !ok {
		if _, isError := symbol.Variant.(db.ErrorSymbol); !isError {
			message := "Expected a constructor, but '" + ctx.pool().Get(symbol.Name.Id) +
				"' is " + db.DescribeSymbolKind(symbol.Variant)
			ctx.error(v.Path.Range, message)
		}
		return ctx.errorPattern(r)
	}

	ctor := ctx.Arena.Hir.Constructors.Get(ctorSymbol.Id)
	enumeration := ctx.Arena.Hir.Enumerations.Get(ctor.Enumeration)

	variant := hir.ConstructorPattern{Constructor: ctorSymbol.Id}
	exhaustive := len(enumeration.Constructors) == 1

	switch {
	case len(ctor.TupleTypes) != 0:
		if len(v.TupleFields) != len(ctor.TupleTypes) {
			message := "Constructor '" + ctx.pool().Get(ctor.Name.Id) + "' has " +
				countFields(len(ctor.TupleTypes)) + " which must be handled"
			ctx.error(r, message)
			return ctx.errorPattern(r)
		}
		for i, field := range v.TupleFields {
			pattern := ctx.ResolvePattern(state, envId, field)
			ctx.RequireSubtypeRelationship(
				state, pattern.Range, ctor.TupleTypes[i].Id, pattern.Type)
			exhaustive = exhaustive && pattern.ExhaustiveByItself
			variant.Fields = append(variant.Fields, ctx.Arena.Hir.Patterns.Push(pattern))
		}
	case len(ctor.Fields) != 0:
		resolved := make(map[uint32]bool)
		for _, field := range v.StructFields {
			fieldId, ok := ctx.findConstructorField(ctor, field.Name)
			if !ok {
				message := "Constructor '" + ctx.pool().Get(ctor.Name.Id) +
					"' has no field '" + ctx.pool().Get(field.Name.Id) + "'"
				ctx.error(field.Name.Range, message)
				continue
			}
			resolved[uint32(fieldId)] = true
			pattern := ctx.ResolvePattern(state, envId, field.Pattern)
			fieldType := ctx.Arena.Hir.Fields.Get(fieldId).Type
			ctx.RequireSubtypeRelationship(state, pattern.Range, fieldType.Id, pattern.Type)
			exhaustive = exhaustive && pattern.ExhaustiveByItself
			variant.Fields = append(variant.Fields, ctx.Arena.Hir.Patterns.Push(pattern))
		}
		if len(resolved) != len(ctor.Fields) {
			message := "Constructor '" + ctx.pool().Get(ctor.Name.Id) +
				"' has fields which must be handled"
			ctx.error(r, message)
		}
	default:
		if v.HasBody {
			message := "Constructor '" + ctx.pool().Get(ctor.Name.Id) +
				"' has no fields to be handled"
			ctx.error(r, message)
		}
	}

	return hir.Pattern{
		Variant:            variant,
		Type:               enumeration.TypeId,
		ExhaustiveByItself: exhaustive,
		Range:              r,
	}
}

func (ctx *Context) findConstructorField(
	ctor *hir.ConstructorInfo, name lsp.Name,
) (hir.FieldId, bool) {
	for _, fieldId := range ctor.Fields {
		if ctx.Arena.Hir.Fields.Get(fieldId).Name.Id == name.Id {
			return fieldId, true
		}
	}
	return 0, false
}

func countFields(count int) string {
	if count == 1 {
		return "1 field"
	}
	return strconv.Itoa(count) + " fields"
}
