package lexer

import (
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/pipeline"
	"github.com/kieli-lang/kieli/internal/token"
)

// Processor is the lexing pipeline stage. It also emits the primary
// semantic tokens (keywords, numbers, strings, operators); the
// resolver refines identifier classifications later.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	tokens, diagnostics := New(ctx.Document().Text).Lex()
	ctx.Tokens = tokens
	for _, diagnostic := range diagnostics {
		ctx.DB.AddDiagnostic(ctx.DocId, diagnostic)
	}
	for _, t := range tokens {
		if kind, ok := primaryTokenKind(t.Type); ok {
			ctx.DB.AddSemanticToken(ctx.DocId, lsp.SemanticToken{
				Position: t.Range.Start,
				Length:   t.Range.Stop.Character - t.Range.Start.Character,
				Kind:     kind,
			})
		}
	}
	return ctx
}

func primaryTokenKind(t token.Type) (lsp.SemanticTokenKind, bool) {
	switch t {
	case token.IntegerLiteral, token.FloatingLiteral:
		return lsp.TokenNumber, true
	case token.StringLiteral, token.CharacterLiteral:
		return lsp.TokenString, true
	case token.Operator, token.Equals, token.Arrow, token.Asterisk,
		token.Ampersand, token.Bang:
		return lsp.TokenOperator, true
	case token.BuiltinType, token.UpperSelf:
		return lsp.TokenType, true
	default:
		// Keyword token types form a contiguous block.
		if t >= token.Fn && t <= token.As {
			return lsp.TokenKeyword, true
		}
		return 0, false
	}
}
