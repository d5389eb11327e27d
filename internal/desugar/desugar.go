// Package desugar lowers the concrete syntax tree to the abstract
// syntax tree: control flow is normalized to loop/match/conditional
// forms, synthetic wildcards and unit values are inserted, and token
// metadata is dropped. Desugaring never aborts; unrecoverable local
// errors produce an Error node and a diagnostic.
package desugar

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/pipeline"
)

type Context struct {
	DB    *db.Database
	DocId lsp.DocumentId
	Cst   *cst.Arena
	Ast   *ast.Arena
}

// Processor is the desugaring pipeline stage. The AST is written into
// the document's arena, where the resolver expects it.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	desugarCtx := &Context{
		DB:    ctx.DB,
		DocId: ctx.DocId,
		Cst:   ctx.Cst,
		Ast:   &ctx.Document().Arena.Ast,
	}
	module := desugarCtx.DesugarModule(*ctx.CstModule)
	ctx.Module = &module
	return ctx
}

func (ctx *Context) DesugarModule(module cst.Module) ast.Module {
	var result ast.Module
	for _, id := range module.Definitions {
		result.Definitions = append(result.Definitions, ctx.definition(id))
	}
	return result
}

func (ctx *Context) addDiagnostic(diagnostic lsp.Diagnostic) {
	ctx.DB.AddDiagnostic(ctx.DocId, diagnostic)
}

func (ctx *Context) error(r lsp.Range, message string) {
	ctx.DB.AddError(ctx.DocId, r, message)
}

// mutability lowers an optional `mut` specifier; absence defaults to
// immutable at the given range.
func (ctx *Context) mutability(mutability *cst.Mutability, defaultRange lsp.Range) ast.Mutability {
	if mutability == nil {
		return ast.Mutability{Range: defaultRange}
	}
	return ast.Mutability{IsMut: mutability.IsMut, Explicit: true, Range: mutability.Range}
}

func (ctx *Context) path(path cst.Path) ast.Path {
	result := ast.Path{Range: path.Range}
	switch root := path.Root.(type) {
	case cst.GlobalRoot:
		result.Root = ast.GlobalRoot{}
	case cst.TypeRoot:
		result.Root = ast.TypeRoot{Type: ctx.typ(root.Type)}
	}
	for _, segment := range path.Segments {
		desugared := ast.PathSegment{Name: segment.Name}
		if segment.TemplateArguments != nil {
			desugared.HasTemplate = true
			for _, argument := range segment.TemplateArguments.Types {
				desugared.TemplateArguments = append(desugared.TemplateArguments, ctx.typ(argument))
			}
		}
		result.Segments = append(result.Segments, desugared)
	}
	return result
}

func (ctx *Context) templateParameters(parameters []cst.TemplateParameter) []ast.TemplateParameter {
	var result []ast.TemplateParameter
	for _, parameter := range parameters {
		result = append(result, ast.TemplateParameter{
			Name:  parameter.Name,
			Range: parameter.Range,
		})
	}
	return result
}
