// Package parser implements the recursive-descent parser producing the
// concrete syntax tree. Parse failures follow an explicit error-value
// discipline: unexpected input produces an Error node, a diagnostic,
// and recovery advances to the next definition keyword.
package parser

import (
	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/pipeline"
	"github.com/kieli-lang/kieli/internal/token"
)

type Parser struct {
	db     *db.Database
	docId  lsp.DocumentId
	tokens []token.Token
	pos    int
	arena  *cst.Arena

	// Struct initializers are disabled while parsing if/while conditions
	// and match scrutinees, where `name {` starts the body instead.
	structInitAllowed bool

	// Index into the document's semantic tokens of the most recently
	// emitted lower-name path head. A following '(' reclassifies it
	// from variable to function.
	prevPathHead int
}

// Processor is the parsing pipeline stage.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	arena := &cst.Arena{}
	parser := &Parser{
		db:                ctx.DB,
		docId:             ctx.DocId,
		tokens:            ctx.Tokens,
		arena:             arena,
		structInitAllowed: true,
		prevPathHead:      -1,
	}
	module := parser.parseModule()
	ctx.Cst = arena
	ctx.CstModule = &module
	return ctx
}

// Parse parses tokens into a module, for tests and the REPL.
func Parse(
	database *db.Database, docId lsp.DocumentId, tokens []token.Token,
) (*cst.Arena, cst.Module) {
	arena := &cst.Arena{}
	parser := &Parser{
		db:                database,
		docId:             docId,
		tokens:            tokens,
		arena:             arena,
		structInitAllowed: true,
		prevPathHead:      -1,
	}
	return arena, parser.parseModule()
}

func (p *Parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() token.Token {
	t := p.tokens[p.pos]
	if t.Type != token.EndOfInput {
		p.pos++
	}
	return t
}

func (p *Parser) check(t token.Type) bool {
	return p.current().Type == t
}

func (p *Parser) accept(t token.Type) (token.Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(t token.Type) (token.Token, bool) {
	if found, ok := p.accept(t); ok {
		return found, true
	}
	p.error(p.current().Range,
		"Expected "+token.Describe(t)+", but found "+token.Describe(p.current().Type))
	return token.Token{Type: token.Error, Range: p.current().Range}, false
}

func (p *Parser) error(r lsp.Range, message string) {
	p.db.AddError(p.docId, r, message)
}

func (p *Parser) name(t token.Token) lsp.Name {
	return lsp.Name{Id: p.db.StringPool.Intern(t.Lexeme), Range: t.Range}
}

// emitNameToken classifies an identifier occurrence and returns the
// index of the record, or -1 when semantic tokens are disabled.
func (p *Parser) emitNameToken(t token.Token, kind lsp.SemanticTokenKind) int {
	if p.db.Config.SemanticTokens == db.SemanticTokensNone {
		return -1
	}
	info := &p.db.Documents.Get(p.docId).Info
	info.SemanticTokens = append(info.SemanticTokens, lsp.SemanticToken{
		Position: t.Range.Start,
		Length:   t.Range.Stop.Character - t.Range.Start.Character,
		Kind:     kind,
	})
	return len(info.SemanticTokens) - 1
}

// reclassifyPathHead turns the previous lower-name token into a
// function token. A lower name followed by '(' is a call.
func (p *Parser) reclassifyPathHead() {
	if p.prevPathHead < 0 {
		return
	}
	info := &p.db.Documents.Get(p.docId).Info
	info.SemanticTokens[p.prevPathHead].Kind = lsp.TokenFunction
	p.prevPathHead = -1
}

// parseModule parses top-level definitions until end of input,
// recovering at definition keywords after errors.
func (p *Parser) parseModule() cst.Module {
	var module cst.Module
	for !p.check(token.EndOfInput) {
		if definition, ok := p.parseDefinition(); ok {
			module.Definitions = append(module.Definitions, definition)
		} else {
			p.recover()
		}
	}
	return module
}

// recover advances to the next definition keyword so one malformed
// definition does not swallow the rest of the document.
func (p *Parser) recover() {
	for {
		switch p.current().Type {
		case token.EndOfInput,
			token.Fn, token.Struct, token.Enum, token.Alias,
			token.Concept, token.Impl, token.Module:
			return
		default:
			p.advance()
		}
	}
}

func rangeBetween(start, stop lsp.Range) lsp.Range {
	return lsp.Range{Start: start.Start, Stop: stop.Stop}
}

func (p *Parser) previousRange() lsp.Range {
	if p.pos == 0 {
		return p.current().Range
	}
	return p.tokens[p.pos-1].Range
}
