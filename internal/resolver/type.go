package resolver

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

// resolveMutability lowers a mutability specifier to its concrete HIR
// form.
func (ctx *Context) resolveMutability(mutability ast.Mutability) hir.Mutability {
	if mutability.IsMut {
		return hir.Mutability{Id: ctx.Constants.MutabilityYes, Range: mutability.Range}
	}
	return hir.Mutability{Id: ctx.Constants.MutabilityNo, Range: mutability.Range}
}

var builtinConstant = [...]func(c *Constants) hir.TypeId{
	ast.BuiltinI8:     func(c *Constants) hir.TypeId { return c.I8Type },
	ast.BuiltinI16:    func(c *Constants) hir.TypeId { return c.I16Type },
	ast.BuiltinI32:    func(c *Constants) hir.TypeId { return c.I32Type },
	ast.BuiltinI64:    func(c *Constants) hir.TypeId { return c.I64Type },
	ast.BuiltinU8:     func(c *Constants) hir.TypeId { return c.U8Type },
	ast.BuiltinU16:    func(c *Constants) hir.TypeId { return c.U16Type },
	ast.BuiltinU32:    func(c *Constants) hir.TypeId { return c.U32Type },
	ast.BuiltinU64:    func(c *Constants) hir.TypeId { return c.U64Type },
	ast.BuiltinFloat:  func(c *Constants) hir.TypeId { return c.FloatingType },
	ast.BuiltinChar:   func(c *Constants) hir.TypeId { return c.CharacterType },
	ast.BuiltinBool:   func(c *Constants) hir.TypeId { return c.BooleanType },
	ast.BuiltinString: func(c *Constants) hir.TypeId { return c.StringType },
}

// ResolveType lowers an AST type to HIR. Built-in types map to the
// pre-interned constants; wildcards produce fresh general variables.
func (ctx *Context) ResolveType(
	state *InferenceState, envId hir.EnvironmentId, id ast.TypeId,
) hir.Type {
	node := ctx.Arena.Ast.Types.Get(id)
	r := node.Range

	switch v := node.Variant.(type) {
	case ast.BuiltinTypename:
		return hir.Type{Id: builtinConstant[v.Kind](&ctx.Constants), Range: r}
	case ast.TupleType:
		if len(v.Fields) == 0 {
			return hir.Type{Id: ctx.Constants.UnitType, Range: r}
		}
		var types []hir.Type
		for _, field := range v.Fields {
			types = append(types, ctx.ResolveType(state, envId, field))
		}
		return hir.Type{Id: ctx.Arena.Hir.Types.Push(hir.TupleType{Types: types}), Range: r}
	case ast.ArrayType:
		element := ctx.ResolveType(state, envId, v.Element)
		length := ctx.ResolveExpression(state, envId, v.Length)
		ctx.RequireSubtypeRelationship(
			state, length.Range, length.Type, ctx.Constants.U64Type)
		lengthId := ctx.Arena.Hir.Expressions.Push(length)
		return hir.Type{
			Id:    ctx.Arena.Hir.Types.Push(hir.ArrayType{Element: element, Length: lengthId}),
			Range: r,
		}
	case ast.SliceType:
		element := ctx.ResolveType(state, envId, v.Element)
		return hir.Type{Id: ctx.Arena.Hir.Types.Push(hir.SliceType{Element: element}), Range: r}
	case ast.ReferenceType:
		variant := hir.ReferenceType{
			Referenced: ctx.ResolveType(state, envId, v.Element),
			Mut:        ctx.resolveMutability(v.Mutability),
		}
		return hir.Type{Id: ctx.Arena.Hir.Types.Push(variant), Range: r}
	case ast.PointerType:
		variant := hir.PointerType{
			Pointee: ctx.ResolveType(state, envId, v.Element),
			Mut:     ctx.resolveMutability(v.Mutability),
		}
		return hir.Type{Id: ctx.Arena.Hir.Types.Push(variant), Range: r}
	case ast.FunctionType:
		var parameters []hir.Type
		for _, parameter := range v.Parameters {
			parameters = append(parameters, ctx.ResolveType(state, envId, parameter))
		}
		variant := hir.FunctionType{
			Parameters: parameters,
			Return:     ctx.ResolveType(state, envId, v.Return),
		}
		return hir.Type{Id: ctx.Arena.Hir.Types.Push(variant), Range: r}
	case ast.TypeofType:
		// The inspected expression lives in a transient scope that is
		// discarded afterwards; only the type survives.
		scope := ctx.pushScope(envId)
		inspected := ctx.ResolveExpression(state, scope, v.Expression)
		ctx.killScope(scope)
		return hir.Type{Id: inspected.Type, Range: r}
	case ast.SelfType:
		if ctx.SelfType != nil {
			return hir.Type{Id: ctx.SelfType.Id, Range: r}
		}
		ctx.error(r, "The Self type is only accessible within 'impl' blocks")
		return ctx.errorType(r)
	case ast.WildcardType:
		return ctx.freshGeneralTypeVariable(state, r)
	case ast.PathType:
		return ctx.resolveTypePath(state, envId, v.Path, r)
	case ast.ErrorType:
		return ctx.errorType(r)
	default:
		ctx.error(r, "This type can not be resolved yet")
		return ctx.errorType(r)
	}
}

// resolveTypePath resolves a path in type position. Depending on the
// symbol kind the type is returned directly or taken from the alias
// target; template arguments remain a documented hole.
func (ctx *Context) resolveTypePath(
	state *InferenceState, envId hir.EnvironmentId, path ast.Path, r lsp.Range,
) hir.Type {
	symbolId := ctx.ResolvePath(state, envId, path)
	symbol := ctx.Arena.Symbols.Get(symbolId)
	switch variant := symbol.Variant.(type) {
	case db.StructureSymbol:
		ctx.resolveStructure(variant.Id)
		return hir.Type{Id: ctx.Arena.Hir.Structures.Get(variant.Id).TypeId, Range: r}
	case db.EnumerationSymbol:
		ctx.resolveEnumeration(variant.Id)
		return hir.Type{Id: ctx.Arena.Hir.Enumerations.Get(variant.Id).TypeId, Range: r}
	case db.AliasSymbol:
		ctx.resolveAlias(variant.Id)
		if aliased := ctx.Arena.Hir.Aliases.Get(variant.Id).Type; aliased != nil {
			return hir.Type{Id: aliased.Id, Range: r}
		}
		return ctx.errorType(r)
	case db.LocalTypeSymbol:
		return hir.Type{Id: ctx.Arena.Hir.LocalTypes.Get(variant.Id).Type, Range: r}
	case db.ErrorSymbol:
		return ctx.errorType(r)
	default:
		message := "Expected a type, but '" + ctx.pool().Get(symbol.Name.Id) +
			"' is " + db.DescribeSymbolKind(symbol.Variant)
		ctx.error(r, message)
		return ctx.errorType(r)
	}
}
