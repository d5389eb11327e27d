// Package resolver implements semantic analysis: environment
// collection, path resolution, and the lowering of the AST to the
// type-annotated HIR via subtype unification.
package resolver

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/pipeline"
	"github.com/kieli-lang/kieli/internal/utl"
)

// Constants holds the shared HIR ids of the built-in types, interned
// once per document arena.
type Constants struct {
	I8Type        hir.TypeId
	I16Type       hir.TypeId
	I32Type       hir.TypeId
	I64Type       hir.TypeId
	U8Type        hir.TypeId
	U16Type       hir.TypeId
	U32Type       hir.TypeId
	U64Type       hir.TypeId
	BooleanType   hir.TypeId
	FloatingType  hir.TypeId
	StringType    hir.TypeId
	CharacterType hir.TypeId
	UnitType      hir.TypeId
	ErrorType     hir.TypeId

	MutabilityYes   hir.MutabilityId
	MutabilityNo    hir.MutabilityId
	MutabilityError hir.MutabilityId
}

func MakeConstants(arena *hir.Arena) Constants {
	return Constants{
		I8Type:        arena.Types.Push(hir.IntegerType{Kind: hir.I8}),
		I16Type:       arena.Types.Push(hir.IntegerType{Kind: hir.I16}),
		I32Type:       arena.Types.Push(hir.IntegerType{Kind: hir.I32}),
		I64Type:       arena.Types.Push(hir.IntegerType{Kind: hir.I64}),
		U8Type:        arena.Types.Push(hir.IntegerType{Kind: hir.U8}),
		U16Type:       arena.Types.Push(hir.IntegerType{Kind: hir.U16}),
		U32Type:       arena.Types.Push(hir.IntegerType{Kind: hir.U32}),
		U64Type:       arena.Types.Push(hir.IntegerType{Kind: hir.U64}),
		BooleanType:   arena.Types.Push(hir.BooleanType{}),
		FloatingType:  arena.Types.Push(hir.FloatingType{}),
		StringType:    arena.Types.Push(hir.StringType{}),
		CharacterType: arena.Types.Push(hir.CharacterType{}),
		UnitType:      arena.Types.Push(hir.TupleType{}),
		ErrorType:     arena.Types.Push(hir.Error{}),

		MutabilityYes:   arena.Mutabilities.Push(hir.ConcreteMutability{IsMut: true}),
		MutabilityNo:    arena.Mutabilities.Push(hir.ConcreteMutability{}),
		MutabilityError: arena.Mutabilities.Push(hir.Error{}),
	}
}

type pendingImpl struct {
	Def   ast.Impl
	EnvId hir.EnvironmentId
}

// Context carries everything resolution needs for one document.
type Context struct {
	DB        *db.Database
	DocId     lsp.DocumentId
	Arena     *db.Arena
	Constants Constants
	RootEnvId hir.EnvironmentId

	// The current Self type, present inside impl blocks.
	SelfType *hir.Type

	// The return type of the function body being resolved.
	ReturnType *hir.Type

	impls           []pendingImpl
	nextTemplateTag uint32
}

func NewContext(database *db.Database, docId lsp.DocumentId) *Context {
	arena := &database.Documents.Get(docId).Arena
	ctx := &Context{
		DB:        database,
		DocId:     docId,
		Arena:     arena,
		Constants: MakeConstants(&arena.Hir),
	}
	ctx.RootEnvId = ctx.NewEnvironment(nil, nil, db.EnvironmentRoot)
	return ctx
}

func (ctx *Context) freshTemplateTag() hir.TemplateParameterTag {
	ctx.nextTemplateTag++
	return hir.TemplateParameterTag(ctx.nextTemplateTag)
}

func (ctx *Context) addDiagnostic(diagnostic lsp.Diagnostic) {
	ctx.DB.AddDiagnostic(ctx.DocId, diagnostic)
}

func (ctx *Context) error(r lsp.Range, message string) {
	ctx.DB.AddError(ctx.DocId, r, message)
}

func (ctx *Context) pool() *utl.StringPool {
	return ctx.DB.StringPool
}

func (ctx *Context) errorType(r lsp.Range) hir.Type {
	return hir.Type{Id: ctx.Constants.ErrorType, Range: r}
}

func (ctx *Context) errorExpression(r lsp.Range) hir.Expression {
	return hir.Expression{
		Variant: hir.Error{},
		Type:    ctx.Constants.ErrorType,
		Kind:    hir.PlaceExpression,
		Range:   r,
	}
}

func (ctx *Context) unitExpression(r lsp.Range) hir.Expression {
	return hir.Expression{
		Variant: hir.Tuple{},
		Type:    ctx.Constants.UnitType,
		Kind:    hir.ValueExpression,
		Range:   r,
	}
}

func (ctx *Context) typeString(id hir.TypeId) string {
	return hir.TypeToString(&ctx.Arena.Hir, ctx.pool(), id)
}

// reclassifyToken refines the semantic token at pos, if one exists.
// The parser classifies identifiers optimistically; resolution knows
// whether a name is a module, constructor, or function.
func (ctx *Context) reclassifyToken(pos lsp.Position, kind lsp.SemanticTokenKind) {
	if ctx.DB.Config.SemanticTokens == db.SemanticTokensNone {
		return
	}
	tokens := ctx.DB.Documents.Get(ctx.DocId).Info.SemanticTokens
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Position == pos {
			tokens[i].Kind = kind
			return
		}
	}
}

// Processor is the resolution pipeline stage.
type Processor struct{}

func (p *Processor) Process(pipelineCtx *pipeline.Context) *pipeline.Context {
	if pipelineCtx.Module == nil {
		return pipelineCtx
	}
	ctx := NewContext(pipelineCtx.DB, pipelineCtx.DocId)
	ctx.ResolveModule(*pipelineCtx.Module)
	return pipelineCtx
}

// ResolveModule drives full resolution of one document: environment
// collection, definition resolution, impl attachment, then function
// bodies.
func (ctx *Context) ResolveModule(module ast.Module) {
	ctx.CollectEnvironment(module.Definitions, ctx.RootEnvId)
	root := ctx.RootEnvId
	ctx.DB.Documents.Get(ctx.DocId).Info.RootEnvId = &root

	ctx.resolveDefinitionsInOrder(ctx.RootEnvId)
	ctx.resolveImpls()

	for id := range uint32(ctx.Arena.Hir.Functions.Len()) {
		ctx.resolveFunctionBody(hir.FunctionId(id))
	}
}

// resolveDefinitionsInOrder resolves every definition reachable from
// the environment, without touching function bodies.
func (ctx *Context) resolveDefinitionsInOrder(envId hir.EnvironmentId) {
	environment := ctx.Arena.Environments.Get(envId)
	for _, symbolId := range sortedSymbols(environment) {
		switch variant := ctx.Arena.Symbols.Get(symbolId).Variant.(type) {
		case db.FunctionSymbol:
			ctx.resolveFunctionSignature(variant.Id)
		case db.StructureSymbol:
			ctx.resolveStructure(variant.Id)
		case db.EnumerationSymbol:
			ctx.resolveEnumeration(variant.Id)
		case db.AliasSymbol:
			ctx.resolveAlias(variant.Id)
		case db.ModuleSymbol:
			ctx.resolveDefinitionsInOrder(ctx.Arena.Hir.Modules.Get(variant.Id).ModEnvId)
		}
	}
}

// sortedSymbols returns the environment's symbols in id order so that
// resolution is deterministic regardless of map iteration.
func sortedSymbols(environment *db.Environment) []db.SymbolId {
	symbols := make([]db.SymbolId, 0, len(environment.Map))
	for _, symbolId := range environment.Map {
		symbols = append(symbols, symbolId)
	}
	for i := 1; i < len(symbols); i++ {
		for j := i; j > 0 && symbols[j] < symbols[j-1]; j-- {
			symbols[j], symbols[j-1] = symbols[j-1], symbols[j]
		}
	}
	return symbols
}
