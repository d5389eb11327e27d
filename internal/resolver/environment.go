package resolver

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/utl"
)

func (ctx *Context) NewEnvironment(
	parent *hir.EnvironmentId, nameId *utl.StringId, kind db.EnvironmentKind,
) hir.EnvironmentId {
	return ctx.Arena.Environments.Push(db.Environment{
		Map:      make(map[utl.StringId]db.SymbolId),
		ParentId: parent,
		NameId:   nameId,
		DocId:    ctx.DocId,
		Kind:     kind,
	})
}

func (ctx *Context) NewSymbol(name lsp.Name, variant db.SymbolVariant) db.SymbolId {
	return ctx.Arena.Symbols.Push(db.Symbol{Variant: variant, Name: name})
}

// addToEnvironment inserts a definition symbol, reporting a duplicate
// definition and keeping the first on collision.
func (ctx *Context) addToEnvironment(
	envId hir.EnvironmentId, name lsp.Name, variant db.SymbolVariant,
) db.SymbolId {
	environment := ctx.Arena.Environments.Get(envId)
	if existing, ok := environment.Map[name.Id]; ok {
		diagnostic := lsp.Error(
			name.Range,
			"Duplicate definitions of '"+ctx.pool().Get(name.Id)+"' in the same module")
		diagnostic.Related = []lsp.DiagnosticRelated{{
			Message: "First defined here",
			Location: lsp.Location{
				DocId: ctx.DocId,
				Range: ctx.Arena.Symbols.Get(existing).Name.Range,
			},
		}}
		ctx.addDiagnostic(diagnostic)
		return existing
	}
	symbolId := ctx.NewSymbol(name, variant)
	environment.Map[name.Id] = symbolId
	return symbolId
}

// CollectEnvironment walks the definitions and allocates a symbol for
// each, plus associated environments for structures, enumerations,
// and modules. Impl blocks are deferred until their target type can
// resolve.
func (ctx *Context) CollectEnvironment(definitions []ast.Definition, envId hir.EnvironmentId) {
	for _, definition := range definitions {
		ctx.collectDefinition(definition, envId)
	}
}

func (ctx *Context) collectDefinition(definition ast.Definition, envId hir.EnvironmentId) {
	switch v := definition.Variant.(type) {
	case ast.Function:
		id := ctx.Arena.Hir.Functions.Push(hir.FunctionInfo{
			Name:  v.Signature.Name,
			EnvId: envId,
			Ast:   v,
		})
		ctx.addToEnvironment(envId, v.Signature.Name, db.FunctionSymbol{Id: id})
	case ast.Structure:
		parent := envId
		associated := ctx.NewEnvironment(&parent, &v.Name.Id, db.EnvironmentType)
		id := ctx.Arena.Hir.Structures.Push(hir.StructureInfo{
			Name:            v.Name,
			EnvId:           envId,
			Ast:             v,
			AssociatedEnvId: associated,
		})
		typeId := ctx.Arena.Hir.Types.Push(hir.StructureType{Name: v.Name, Id: id})
		ctx.Arena.Hir.Structures.Get(id).TypeId = typeId
		ctx.addToEnvironment(envId, v.Name, db.StructureSymbol{Id: id})
	case ast.Enumeration:
		parent := envId
		associated := ctx.NewEnvironment(&parent, &v.Name.Id, db.EnvironmentType)
		id := ctx.Arena.Hir.Enumerations.Push(hir.EnumerationInfo{
			Name:            v.Name,
			EnvId:           envId,
			Ast:             v,
			AssociatedEnvId: associated,
		})
		typeId := ctx.Arena.Hir.Types.Push(hir.EnumerationType{Name: v.Name, Id: id})
		ctx.Arena.Hir.Enumerations.Get(id).TypeId = typeId
		ctx.addToEnvironment(envId, v.Name, db.EnumerationSymbol{Id: id})
	case ast.Alias:
		id := ctx.Arena.Hir.Aliases.Push(hir.AliasInfo{Name: v.Name, EnvId: envId, Ast: v})
		ctx.addToEnvironment(envId, v.Name, db.AliasSymbol{Id: id})
	case ast.Concept:
		id := ctx.Arena.Hir.Concepts.Push(hir.ConceptInfo{Name: v.Name, EnvId: envId, Ast: v})
		ctx.addToEnvironment(envId, v.Name, db.ConceptSymbol{Id: id})
	case ast.Submodule:
		parent := envId
		moduleEnv := ctx.NewEnvironment(&parent, &v.Name.Id, db.EnvironmentModule)
		id := ctx.Arena.Hir.Modules.Push(hir.ModuleInfo{
			Name:     v.Name,
			EnvId:    envId,
			ModEnvId: moduleEnv,
		})
		ctx.addToEnvironment(envId, v.Name, db.ModuleSymbol{Id: id})
		ctx.CollectEnvironment(v.Definitions, moduleEnv)
	case ast.Impl:
		ctx.impls = append(ctx.impls, pendingImpl{Def: v, EnvId: envId})
	case ast.ErrorDefinition:
		// Parse error; nothing to collect.
	}
}

// resolveImpls attaches each impl block's definitions to the target
// type's associated environment.
func (ctx *Context) resolveImpls() {
	for _, impl := range ctx.impls {
		state := NewInferenceState()
		scope := ctx.pushScope(impl.EnvId)
		ctx.bindTemplateParameters(state, scope, impl.Def.TemplateParameters)
		selfType := ctx.ResolveType(state, scope, impl.Def.SelfType)
		ctx.EnsureNoUnsolvedVariables(state)
		ctx.popScope(scope)

		associated, ok := ctx.typeAssociatedEnvironment(selfType.Id)
		if !ok {
			ctx.error(
				selfType.Range,
				"'"+ctx.typeString(selfType.Id)+"' has no associated environment")
			continue
		}
		ctx.CollectEnvironment(impl.Def.Definitions, associated)

		saved := ctx.SelfType
		ctx.SelfType = &selfType
		ctx.resolveDefinitionsInOrder(associated)
		ctx.SelfType = saved

		// Function bodies inside the impl still see Self.
		for id := range uint32(ctx.Arena.Hir.Functions.Len()) {
			info := ctx.Arena.Hir.Functions.Get(hir.FunctionId(id))
			if info.EnvId == associated && info.SelfType == nil {
				info.SelfType = &selfType
			}
		}
	}
	ctx.impls = nil
}

// typeAssociatedEnvironment finds the member environment of a
// structure or enumeration type.
func (ctx *Context) typeAssociatedEnvironment(typeId hir.TypeId) (hir.EnvironmentId, bool) {
	switch v := (*ctx.Arena.Hir.Types.Get(typeId)).(type) {
	case hir.StructureType:
		ctx.resolveStructure(v.Id)
		return ctx.Arena.Hir.Structures.Get(v.Id).AssociatedEnvId, true
	case hir.EnumerationType:
		ctx.resolveEnumeration(v.Id)
		return ctx.Arena.Hir.Enumerations.Get(v.Id).AssociatedEnvId, true
	default:
		return 0, false
	}
}

// pushScope opens a nested block scope environment.
func (ctx *Context) pushScope(parent hir.EnvironmentId) hir.EnvironmentId {
	parentCopy := parent
	return ctx.NewEnvironment(&parentCopy, nil, db.EnvironmentScope)
}

// popScope reports unused bindings introduced by the scope. Bindings
// whose names start with an underscore are exempt.
func (ctx *Context) popScope(scopeId hir.EnvironmentId) {
	environment := ctx.Arena.Environments.Get(scopeId)
	for _, symbolId := range sortedSymbols(environment) {
		symbol := ctx.Arena.Symbols.Get(symbolId)
		if _, ok := symbol.Variant.(db.LocalVariableSymbol); !ok {
			continue
		}
		if symbol.UseCount != 0 {
			continue
		}
		name := ctx.pool().Get(symbol.Name.Id)
		if name == "self" || (len(name) != 0 && name[0] == '_') {
			continue
		}
		diagnostic := lsp.Warning(symbol.Name.Range, "Unused local variable: '"+name+"'")
		diagnostic.Tag = lsp.TagUnnecessary
		ctx.addDiagnostic(diagnostic)
		ctx.DB.AddAction(
			ctx.DocId, symbol.Name.Range, db.ActionSilenceUnused{Symbol: symbolId})
	}
}

// killScope discards a transient scope entirely, as used by typeof.
func (ctx *Context) killScope(scopeId hir.EnvironmentId) {
	ctx.Arena.Environments.Kill(scopeId)
}

// bindVariable introduces a local variable binding, shadowing any
// previous binding of the same name in this scope.
func (ctx *Context) bindVariable(
	scopeId hir.EnvironmentId, name lsp.Name, mut hir.Mutability, typeId hir.TypeId,
) hir.LocalVariableId {
	localId := ctx.Arena.Hir.LocalVariables.Push(hir.LocalVariable{
		Name: name,
		Mut:  mut,
		Type: typeId,
	})
	symbolId := ctx.NewSymbol(name, db.LocalVariableSymbol{Id: localId})
	ctx.Arena.Environments.Get(scopeId).Map[name.Id] = symbolId
	ctx.DB.AddReference(ctx.DocId, lsp.Write(name.Range), symbolId)
	return localId
}

// bindType introduces a scope-local type binding: a local alias or a
// template type parameter.
func (ctx *Context) bindType(scopeId hir.EnvironmentId, name lsp.Name, typeId hir.TypeId) {
	localId := ctx.Arena.Hir.LocalTypes.Push(hir.LocalType{Name: name, Type: typeId})
	symbolId := ctx.NewSymbol(name, db.LocalTypeSymbol{Id: localId})
	ctx.Arena.Environments.Get(scopeId).Map[name.Id] = symbolId
	ctx.DB.AddReference(ctx.DocId, lsp.Write(name.Range), symbolId)
}

// bindMutability introduces a template mutability parameter binding.
func (ctx *Context) bindMutability(
	scopeId hir.EnvironmentId, name lsp.Name, mutabilityId hir.MutabilityId,
) {
	localId := ctx.Arena.Hir.LocalMutabilities.Push(hir.LocalMutability{
		Name: name,
		Mut:  mutabilityId,
	})
	symbolId := ctx.NewSymbol(name, db.LocalMutabilitySymbol{Id: localId})
	ctx.Arena.Environments.Get(scopeId).Map[name.Id] = symbolId
}
