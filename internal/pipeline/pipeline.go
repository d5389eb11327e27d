// Package pipeline chains the compiler stages. Stages never abort:
// each one does what it can and records diagnostics in the current
// document's info, so the LSP client sees parse and semantic errors
// from one run.
package pipeline

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/token"
)

// Context carries one document through the stages.
type Context struct {
	DB    *db.Database
	DocId lsp.DocumentId

	// Stage products, filled in order.
	Tokens    []token.Token
	Cst       *cst.Arena
	CstModule *cst.Module
	Module    *ast.Module
}

func NewContext(database *db.Database, docId lsp.DocumentId) *Context {
	return &Context{DB: database, DocId: docId}
}

// Document returns the document being processed.
func (ctx *Context) Document() *db.Document {
	return ctx.DB.Documents.Get(ctx.DocId)
}

// Processor is one compiler stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
