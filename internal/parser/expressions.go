package parser

import (
	"strconv"
	"strings"

	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/token"
)

func (p *Parser) pushExpression(variant cst.ExpressionVariant, r lsp.Range) cst.ExpressionId {
	return p.arena.Expressions.Push(cst.Expression{Variant: variant, Range: r})
}

func (p *Parser) errorExpression(r lsp.Range) cst.ExpressionId {
	return p.pushExpression(cst.ErrorExpression{}, r)
}

func (p *Parser) parseOptionalMutability() *cst.Mutability {
	if t, ok := p.accept(token.Mut); ok {
		return &cst.Mutability{IsMut: true, Range: t.Range}
	}
	return nil
}

// parseExpression parses one expression, including infix chains and
// postfix ascriptions.
func (p *Parser) parseExpression() cst.ExpressionId {
	left := p.parseInfix()
	if _, ok := p.accept(token.Colon); ok {
		ascribed := p.parseType()
		start := p.arena.Expressions.Get(left).Range
		return p.pushExpression(
			cst.Ascription{Expression: left, Type: ascribed},
			rangeBetween(start, p.previousRange()))
	}
	return left
}

// parseInfix parses a flat left-associative operator chain; operator
// precedence is not structured in the CST.
func (p *Parser) parseInfix() cst.ExpressionId {
	left := p.parsePostfix()
	for p.check(token.Operator) || p.check(token.Asterisk) {
		opToken := p.advance()
		right := p.parsePostfix()
		start := p.arena.Expressions.Get(left).Range
		left = p.pushExpression(cst.InfixCall{
			Left:  left,
			Right: right,
			Op:    p.name(opToken),
		}, rangeBetween(start, p.previousRange()))
	}
	return left
}

func (p *Parser) parsePostfix() cst.ExpressionId {
	expression := p.parsePrimary()
	for {
		start := p.arena.Expressions.Get(expression).Range
		switch {
		case p.check(token.OpenParen):
			p.reclassifyPathHead()
			p.advance()
			var arguments []cst.ExpressionId
			if !p.check(token.CloseParen) {
				for {
					arguments = append(arguments, p.parseSubexpression())
					if _, ok := p.accept(token.Comma); !ok {
						break
					}
				}
			}
			p.expect(token.CloseParen)
			expression = p.pushExpression(cst.FunctionCall{
				Invocable: expression,
				Arguments: arguments,
			}, rangeBetween(start, p.previousRange()))
		case p.check(token.Dot):
			p.advance()
			switch p.current().Type {
			case token.LowerName:
				nameToken := p.advance()
				p.prevPathHead = p.emitNameToken(nameToken, lsp.TokenProperty)
				expression = p.pushExpression(cst.StructField{
					Base: expression,
					Name: p.name(nameToken),
				}, rangeBetween(start, p.previousRange()))
			case token.IntegerLiteral:
				indexToken := p.advance()
				index, _ := strconv.ParseUint(indexToken.Lexeme, 10, 32)
				expression = p.pushExpression(cst.TupleField{
					Base:       expression,
					Index:      uint32(index),
					IndexRange: indexToken.Range,
				}, rangeBetween(start, p.previousRange()))
			default:
				p.error(p.current().Range, "Expected a field name or tuple index after '.'")
				return p.errorExpression(rangeBetween(start, p.current().Range))
			}
		case p.check(token.OpenBracket):
			p.advance()
			index := p.parseSubexpression()
			p.expect(token.CloseBracket)
			expression = p.pushExpression(cst.ArrayIndex{
				Base:  expression,
				Index: index,
			}, rangeBetween(start, p.previousRange()))
		default:
			return expression
		}
	}
}

// parseSubexpression parses an expression with struct initializers
// re-enabled, for contexts delimited by their own brackets.
func (p *Parser) parseSubexpression() cst.ExpressionId {
	saved := p.structInitAllowed
	p.structInitAllowed = true
	expression := p.parseExpression()
	p.structInitAllowed = saved
	return expression
}

// parseConditionExpression parses an expression with struct
// initializers disabled so that `while x { .. }` reads the brace as
// the loop body.
func (p *Parser) parseConditionExpression() cst.ExpressionId {
	saved := p.structInitAllowed
	p.structInitAllowed = false
	expression := p.parseExpression()
	p.structInitAllowed = saved
	return expression
}

func (p *Parser) parsePrimary() cst.ExpressionId {
	start := p.current().Range
	switch p.current().Type {
	case token.IntegerLiteral:
		t := p.advance()
		value, err := strconv.ParseUint(strings.ReplaceAll(t.Lexeme, "_", ""), 10, 64)
		if err != nil {
			p.error(t.Range, "Integer literal is too large")
			return p.errorExpression(t.Range)
		}
		return p.pushExpression(cst.Integer{Value: value, Lexeme: t.Lexeme}, t.Range)
	case token.FloatingLiteral:
		t := p.advance()
		value, err := strconv.ParseFloat(strings.ReplaceAll(t.Lexeme, "_", ""), 64)
		if err != nil {
			p.error(t.Range, "Invalid floating point literal")
			return p.errorExpression(t.Range)
		}
		return p.pushExpression(cst.Floating{Value: value}, t.Range)
	case token.True:
		t := p.advance()
		return p.pushExpression(cst.Boolean{Value: true}, t.Range)
	case token.False:
		t := p.advance()
		return p.pushExpression(cst.Boolean{Value: false}, t.Range)
	case token.CharacterLiteral:
		t := p.advance()
		var value rune
		for _, r := range t.Lexeme {
			value = r
			break
		}
		return p.pushExpression(cst.Character{Value: value}, t.Range)
	case token.StringLiteral:
		t := p.advance()
		return p.pushExpression(cst.String{Value: t.Lexeme}, t.Range)
	case token.Underscore:
		t := p.advance()
		return p.pushExpression(cst.Wildcard{UnderscoreRange: t.Range}, t.Range)
	case token.OpenParen:
		return p.parseParenOrTuple()
	case token.OpenBracket:
		return p.parseArrayLiteral()
	case token.OpenBrace:
		return p.parseBlock(start)
	case token.If:
		return p.parseConditional()
	case token.Match:
		return p.parseMatch()
	case token.While:
		return p.parseWhileLoop()
	case token.Loop:
		p.advance()
		body := p.parseBlock(p.current().Range)
		return p.pushExpression(cst.Loop{Body: body}, rangeBetween(start, p.previousRange()))
	case token.For:
		return p.parseForLoop()
	case token.Let:
		return p.parseLet()
	case token.Alias:
		return p.parseLocalAlias()
	case token.Ret:
		p.advance()
		variant := cst.Ret{}
		if p.startsExpression() {
			result := p.parseExpression()
			variant.Result = &result
		}
		return p.pushExpression(variant, rangeBetween(start, p.previousRange()))
	case token.Break:
		p.advance()
		variant := cst.Break{}
		if p.startsExpression() {
			result := p.parseExpression()
			variant.Result = &result
		}
		return p.pushExpression(variant, rangeBetween(start, p.previousRange()))
	case token.Continue:
		t := p.advance()
		return p.pushExpression(cst.Continue{}, t.Range)
	case token.Sizeof:
		p.advance()
		p.expect(token.OpenParen)
		inspected := p.parseType()
		p.expect(token.CloseParen)
		return p.pushExpression(cst.Sizeof{Type: inspected}, rangeBetween(start, p.previousRange()))
	case token.Ampersand:
		ampersand := p.advance()
		mutability := p.parseOptionalMutability()
		place := p.parsePostfix()
		return p.pushExpression(cst.Addressof{
			AmpersandRange: ampersand.Range,
			Mutability:     mutability,
			Expression:     place,
		}, rangeBetween(start, p.previousRange()))
	case token.Asterisk:
		p.advance()
		reference := p.parsePostfix()
		return p.pushExpression(
			cst.Deref{Expression: reference}, rangeBetween(start, p.previousRange()))
	case token.Defer:
		p.advance()
		effect := p.parseExpression()
		return p.pushExpression(
			cst.Defer{Expression: effect}, rangeBetween(start, p.previousRange()))
	case token.LowerName, token.UpperName, token.DoubleColon, token.LowerSelf:
		return p.parsePathExpression()
	case token.BuiltinType, token.UpperSelf, token.Typeof:
		// A type followed by '::' roots a path at that type.
		return p.parseTypeRootedPath()
	default:
		p.error(start, "Expected an expression, but found "+token.Describe(p.current().Type))
		p.advance()
		return p.errorExpression(start)
	}
}

// startsExpression reports whether the current token can begin an
// expression; used for the optional operands of ret and break.
func (p *Parser) startsExpression() bool {
	switch p.current().Type {
	case token.CloseBrace, token.CloseParen, token.CloseBracket,
		token.Semicolon, token.Comma, token.EndOfInput:
		return false
	default:
		return true
	}
}

func (p *Parser) parseParenOrTuple() cst.ExpressionId {
	open := p.advance()
	if close, ok := p.accept(token.CloseParen); ok {
		// The unit value is the empty tuple.
		return p.pushExpression(cst.Tuple{}, rangeBetween(open.Range, close.Range))
	}
	first := p.parseSubexpression()
	if _, ok := p.accept(token.Comma); !ok {
		p.expect(token.CloseParen)
		return p.pushExpression(
			cst.Paren{Expression: first}, rangeBetween(open.Range, p.previousRange()))
	}
	fields := []cst.ExpressionId{first}
	for !p.check(token.CloseParen) && !p.check(token.EndOfInput) {
		fields = append(fields, p.parseSubexpression())
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.CloseParen)
	return p.pushExpression(cst.Tuple{Fields: fields}, rangeBetween(open.Range, p.previousRange()))
}

func (p *Parser) parseArrayLiteral() cst.ExpressionId {
	open := p.advance()
	var elements []cst.ExpressionId
	for !p.check(token.CloseBracket) && !p.check(token.EndOfInput) {
		elements = append(elements, p.parseSubexpression())
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.CloseBracket)
	return p.pushExpression(
		cst.Array{Elements: elements}, rangeBetween(open.Range, p.previousRange()))
}

func (p *Parser) parseBlock(start lsp.Range) cst.ExpressionId {
	open, ok := p.expect(token.OpenBrace)
	if !ok {
		return p.errorExpression(start)
	}
	var block cst.Block
	saved := p.structInitAllowed
	p.structInitAllowed = true
	for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
		expression := p.parseExpression()
		if semicolon, ok := p.accept(token.Semicolon); ok {
			block.Effects = append(block.Effects, cst.BlockEffect{
				Expression:     expression,
				SemicolonRange: semicolon.Range,
			})
		} else {
			block.Result = &expression
			break
		}
	}
	p.structInitAllowed = saved
	close, ok := p.accept(token.CloseBrace)
	if !ok {
		p.error(open.Range, "Unterminated block")
		close = token.Token{Range: p.current().Range}
	}
	block.CloseBraceRange = close.Range
	return p.pushExpression(block, rangeBetween(start, close.Range))
}

func (p *Parser) parseConditional() cst.ExpressionId {
	ifToken := p.advance()
	condition := p.parseConditionOrLet()
	trueBranch := p.parseBlock(p.current().Range)
	variant := cst.Conditional{
		IfRange:    ifToken.Range,
		Condition:  condition,
		TrueBranch: trueBranch,
	}
	if _, ok := p.accept(token.Else); ok {
		var falseBranch cst.ExpressionId
		if p.check(token.If) {
			falseBranch = p.parseConditional()
		} else {
			falseBranch = p.parseBlock(p.current().Range)
		}
		variant.FalseBranch = &falseBranch
	}
	return p.pushExpression(variant, rangeBetween(ifToken.Range, p.previousRange()))
}

// parseConditionOrLet parses either a plain condition or the `let P =
// E` form used by if-let and while-let. Struct initializers are
// disabled throughout so the brace that follows reads as the body.
func (p *Parser) parseConditionOrLet() cst.ExpressionId {
	saved := p.structInitAllowed
	p.structInitAllowed = false
	defer func() { p.structInitAllowed = saved }()
	if p.check(token.Let) {
		return p.parseLet()
	}
	return p.parseExpression()
}

func (p *Parser) parseMatch() cst.ExpressionId {
	matchToken := p.advance()
	scrutinee := p.parseConditionExpression()
	variant := cst.Match{Scrutinee: scrutinee}
	if open, ok := p.expect(token.OpenBrace); ok {
		for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
			pattern := p.parsePattern()
			p.expect(token.Arrow)
			handler := p.parseExpression()
			variant.Arms = append(variant.Arms, cst.MatchArm{
				Pattern: pattern,
				Handler: handler,
			})
			p.accept(token.Semicolon)
		}
		if _, ok := p.accept(token.CloseBrace); !ok {
			p.error(open.Range, "Unterminated match body")
		}
	}
	return p.pushExpression(variant, rangeBetween(matchToken.Range, p.previousRange()))
}

func (p *Parser) parseWhileLoop() cst.ExpressionId {
	whileToken := p.advance()
	condition := p.parseConditionOrLet()
	body := p.parseBlock(p.current().Range)
	return p.pushExpression(cst.WhileLoop{
		WhileRange: whileToken.Range,
		Condition:  condition,
		Body:       body,
	}, rangeBetween(whileToken.Range, p.previousRange()))
}

func (p *Parser) parseForLoop() cst.ExpressionId {
	forToken := p.advance()
	pattern := p.parsePattern()
	p.expect(token.In)
	iterable := p.parseConditionExpression()
	body := p.parseBlock(p.current().Range)
	return p.pushExpression(cst.ForLoop{
		ForRange: forToken.Range,
		Pattern:  pattern,
		Iterable: iterable,
		Body:     body,
	}, rangeBetween(forToken.Range, p.previousRange()))
}

func (p *Parser) parseLet() cst.ExpressionId {
	letToken := p.advance()
	pattern := p.parsePattern()
	variant := cst.Let{Pattern: pattern}
	if _, ok := p.accept(token.Colon); ok {
		letType := p.parseType()
		variant.Type = &letType
	}
	p.expect(token.Equals)
	variant.Initializer = p.parseExpression()
	return p.pushExpression(variant, rangeBetween(letToken.Range, p.previousRange()))
}

func (p *Parser) parseLocalAlias() cst.ExpressionId {
	aliasToken := p.advance()
	nameToken, ok := p.expect(token.UpperName)
	if !ok {
		return p.errorExpression(aliasToken.Range)
	}
	p.emitNameToken(nameToken, lsp.TokenType)
	p.expect(token.Equals)
	aliased := p.parseType()
	return p.pushExpression(cst.LocalAlias{
		Name: p.name(nameToken),
		Type: aliased,
	}, rangeBetween(aliasToken.Range, p.previousRange()))
}

// parsePathExpression parses a possibly qualified name, and a struct
// initializer when the path is followed by '{' in a permitting
// context.
func (p *Parser) parsePathExpression() cst.ExpressionId {
	start := p.current().Range
	path, ok := p.parsePath(nil)
	if !ok {
		return p.errorExpression(start)
	}
	if p.structInitAllowed && p.check(token.OpenBrace) {
		return p.parseStructInitializer(path, start)
	}
	return p.pushExpression(cst.PathExpression{Path: path}, path.Range)
}

func (p *Parser) parseTypeRootedPath() cst.ExpressionId {
	start := p.current().Range
	root := p.parseType()
	if _, ok := p.expect(token.DoubleColon); !ok {
		return p.errorExpression(rangeBetween(start, p.previousRange()))
	}
	path, ok := p.parsePath(cst.TypeRoot{Type: root})
	if !ok {
		return p.errorExpression(rangeBetween(start, p.previousRange()))
	}
	path.Range = rangeBetween(start, p.previousRange())
	if p.structInitAllowed && p.check(token.OpenBrace) {
		return p.parseStructInitializer(path, start)
	}
	return p.pushExpression(cst.PathExpression{Path: path}, path.Range)
}

func (p *Parser) parseStructInitializer(path cst.Path, start lsp.Range) cst.ExpressionId {
	open := p.advance()
	var fields []cst.FieldInitializer
	for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
		nameToken, ok := p.expect(token.LowerName)
		if !ok {
			break
		}
		p.emitNameToken(nameToken, lsp.TokenProperty)
		p.expect(token.Colon)
		fields = append(fields, cst.FieldInitializer{
			Name:       p.name(nameToken),
			Expression: p.parseSubexpression(),
		})
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.accept(token.CloseBrace); !ok {
		p.error(open.Range, "Unterminated struct initializer")
	}
	return p.pushExpression(cst.StructInitializer{
		Path:   path,
		Fields: fields,
	}, rangeBetween(start, p.previousRange()))
}

// parsePath parses `seg (:: seg)*`, with an optional leading `::` for
// global paths when root is nil.
func (p *Parser) parsePath(root cst.PathRoot) (cst.Path, bool) {
	start := p.current().Range
	if root == nil {
		if t, ok := p.accept(token.DoubleColon); ok {
			root = cst.GlobalRoot{Range: t.Range}
		}
	}
	var segments []cst.PathSegment
	for {
		segment, ok := p.parsePathSegment()
		if !ok {
			return cst.Path{}, false
		}
		segments = append(segments, segment)
		if _, ok := p.accept(token.DoubleColon); !ok {
			break
		}
	}
	return cst.Path{
		Root:     root,
		Segments: segments,
		Range:    rangeBetween(start, p.previousRange()),
	}, true
}

func (p *Parser) parsePathSegment() (cst.PathSegment, bool) {
	var nameToken token.Token
	switch p.current().Type {
	case token.LowerName, token.LowerSelf:
		nameToken = p.advance()
		p.prevPathHead = p.emitNameToken(nameToken, lsp.TokenVariable)
	case token.UpperName:
		nameToken = p.advance()
		p.prevPathHead = -1
		p.emitNameToken(nameToken, lsp.TokenType)
	default:
		p.error(p.current().Range,
			"Expected a name, but found "+token.Describe(p.current().Type))
		return cst.PathSegment{}, false
	}
	segment := cst.PathSegment{Name: p.name(nameToken)}
	// Template arguments: Name[T, U]. Only parsed when the bracket
	// directly follows an upper name, to keep `x[i]` an index.
	if nameToken.Type == token.UpperName && p.check(token.OpenBracket) {
		open := p.advance()
		arguments := cst.TemplateArguments{}
		for !p.check(token.CloseBracket) && !p.check(token.EndOfInput) {
			arguments.Types = append(arguments.Types, p.parseType())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		close, _ := p.expect(token.CloseBracket)
		arguments.Range = rangeBetween(open.Range, close.Range)
		segment.TemplateArguments = &arguments
	}
	return segment, true
}
