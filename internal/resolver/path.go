package resolver

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

func (ctx *Context) setCompletion(
	envId hir.EnvironmentId, name lsp.Name, mode db.CompletionMode,
) {
	ctx.DB.AddCompletion(ctx.DocId, name, db.EnvironmentCompletion{EnvId: envId, Mode: mode})
}

func (ctx *Context) environmentName(envId hir.EnvironmentId) string {
	if nameId := ctx.Arena.Environments.Get(envId).NameId; nameId != nil {
		return "Module '" + ctx.pool().Get(*nameId) + "'"
	}
	return "The root module"
}

// symbolEnvironment finds the environment a path may continue into
// through the given symbol: a module's environment, or the associated
// environment of a structure, enumeration, or alias target.
func (ctx *Context) symbolEnvironment(symbolId db.SymbolId) (hir.EnvironmentId, bool) {
	switch variant := ctx.Arena.Symbols.Get(symbolId).Variant.(type) {
	case db.ModuleSymbol:
		return ctx.Arena.Hir.Modules.Get(variant.Id).ModEnvId, true
	case db.StructureSymbol:
		ctx.resolveStructure(variant.Id)
		return ctx.Arena.Hir.Structures.Get(variant.Id).AssociatedEnvId, true
	case db.EnumerationSymbol:
		ctx.resolveEnumeration(variant.Id)
		return ctx.Arena.Hir.Enumerations.Get(variant.Id).AssociatedEnvId, true
	case db.AliasSymbol:
		ctx.resolveAlias(variant.Id)
		if aliased := ctx.Arena.Hir.Aliases.Get(variant.Id).Type; aliased != nil {
			return ctx.typeAssociatedEnvironment(aliased.Id)
		}
		return 0, false
	default:
		return 0, false
	}
}

// applySegment looks one segment up in an environment, counting the
// use and recording a read reference on success.
func (ctx *Context) applySegment(
	envId hir.EnvironmentId, segment ast.PathSegment,
) (db.SymbolId, bool) {
	environment := ctx.Arena.Environments.Get(envId)
	symbolId, ok := environment.Map[segment.Name.Id]
	if !ok {
		return 0, false
	}
	if segment.HasTemplate {
		ctx.error(segment.Name.Range, "Template argument resolution has not been implemented")
	}
	ctx.Arena.Symbols.Get(symbolId).UseCount++
	ctx.DB.AddReference(ctx.DocId, lsp.Read(segment.Name.Range), symbolId)
	ctx.refineSegmentToken(symbolId, segment.Name)
	return symbolId, true
}

// refineSegmentToken upgrades the parser's optimistic classification
// once the symbol kind is known.
func (ctx *Context) refineSegmentToken(symbolId db.SymbolId, name lsp.Name) {
	switch ctx.Arena.Symbols.Get(symbolId).Variant.(type) {
	case db.ModuleSymbol:
		ctx.reclassifyToken(name.Range.Start, lsp.TokenModule)
	case db.ConstructorSymbol:
		ctx.reclassifyToken(name.Range.Start, lsp.TokenConstructor)
	case db.FunctionSymbol:
		ctx.reclassifyToken(name.Range.Start, lsp.TokenFunction)
	case db.EnumerationSymbol:
		ctx.reclassifyToken(name.Range.Start, lsp.TokenEnumeration)
	case db.StructureSymbol:
		ctx.reclassifyToken(name.Range.Start, lsp.TokenStructure)
	}
}

// lookup resolves the remaining segments starting from lookupEnvId.
// Completion candidates are registered per segment: top-level mode for
// the first segment of an implicit path, path mode afterwards.
func (ctx *Context) lookup(
	siteEnvId, lookupEnvId hir.EnvironmentId,
	mode db.CompletionMode,
	segments []ast.PathSegment,
) db.SymbolId {
	for {
		segment := segments[0]
		segments = segments[1:]

		completeEnvId := lookupEnvId
		if mode != db.CompletionPath {
			completeEnvId = siteEnvId
		}
		ctx.setCompletion(completeEnvId, segment.Name, mode)
		mode = db.CompletionPath

		symbolId, found := ctx.applySegment(lookupEnvId, segment)
		if !found {
			message := ctx.environmentName(lookupEnvId) +
				" does not contain '" + ctx.pool().Get(segment.Name.Id) + "'"
			ctx.error(segment.Name.Range, message)
			return ctx.NewSymbol(segment.Name, db.ErrorSymbol{})
		}
		if len(segments) == 0 {
			return symbolId
		}
		nextEnvId, ok := ctx.symbolEnvironment(symbolId)
		if !ok {
			message := "Expected a module, but '" + ctx.pool().Get(segment.Name.Id) +
				"' is " + db.DescribeSymbolKind(ctx.Arena.Symbols.Get(symbolId).Variant)
			ctx.error(segment.Name.Range, message)
			return ctx.NewSymbol(segment.Name, db.ErrorSymbol{})
		}
		lookupEnvId = nextEnvId
	}
}

// findStartingPoint ascends the scope chain until an environment
// contains the name. The first match wins, so shadowing is lexical.
func (ctx *Context) findStartingPoint(
	envId hir.EnvironmentId, name lsp.Name,
) (hir.EnvironmentId, bool) {
	for {
		environment := ctx.Arena.Environments.Get(envId)
		if _, ok := environment.Map[name.Id]; ok {
			return envId, true
		}
		if environment.ParentId == nil {
			return 0, false
		}
		envId = *environment.ParentId
	}
}

// ResolvePath resolves a qualified path from one of its three roots:
// implicit (scope chain), global (document root), or type (the type's
// associated environment).
func (ctx *Context) ResolvePath(
	state *InferenceState, envId hir.EnvironmentId, path ast.Path,
) db.SymbolId {
	switch root := path.Root.(type) {
	case nil:
		front := path.Segments[0].Name
		if startEnvId, ok := ctx.findStartingPoint(envId, front); ok {
			return ctx.lookup(envId, startEnvId, db.CompletionTop, path.Segments)
		}
		ctx.setCompletion(envId, front, db.CompletionTop)
		ctx.error(front.Range, "Undeclared identifier: '"+ctx.pool().Get(front.Id)+"'")
		return ctx.NewSymbol(front, db.ErrorSymbol{})
	case ast.GlobalRoot:
		return ctx.lookup(envId, ctx.RootEnvId, db.CompletionPath, path.Segments)
	case ast.TypeRoot:
		rootType := ctx.ResolveType(state, envId, root.Type)
		if associated, ok := ctx.typeAssociatedEnvironment(rootType.Id); ok {
			return ctx.lookup(envId, associated, db.CompletionPath, path.Segments)
		}
		ctx.error(
			rootType.Range,
			"'"+ctx.typeString(rootType.Id)+"' has no associated environment")
		name := lsp.Name{Id: ctx.pool().Intern("(ERROR)"), Range: rootType.Range}
		return ctx.NewSymbol(name, db.ErrorSymbol{})
	default:
		name := path.Segments[0].Name
		return ctx.NewSymbol(name, db.ErrorSymbol{})
	}
}
