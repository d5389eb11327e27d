package parser

import (
	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/token"
)

var builtinKinds = map[string]cst.BuiltinKind{
	"I8":     cst.BuiltinI8,
	"I16":    cst.BuiltinI16,
	"I32":    cst.BuiltinI32,
	"I64":    cst.BuiltinI64,
	"U8":     cst.BuiltinU8,
	"U16":    cst.BuiltinU16,
	"U32":    cst.BuiltinU32,
	"U64":    cst.BuiltinU64,
	"Float":  cst.BuiltinFloat,
	"Char":   cst.BuiltinChar,
	"Bool":   cst.BuiltinBool,
	"String": cst.BuiltinString,
}

func (p *Parser) pushType(variant cst.TypeVariant, r lsp.Range) cst.TypeId {
	return p.arena.Types.Push(cst.Type{Variant: variant, Range: r})
}

func (p *Parser) parseType() cst.TypeId {
	start := p.current().Range
	switch p.current().Type {
	case token.BuiltinType:
		t := p.advance()
		return p.pushType(cst.BuiltinTypename{Kind: builtinKinds[t.Lexeme]}, t.Range)
	case token.UpperSelf:
		t := p.advance()
		return p.pushType(cst.SelfType{}, t.Range)
	case token.Underscore:
		t := p.advance()
		return p.pushType(cst.WildcardType{}, t.Range)
	case token.OpenParen:
		return p.parseTupleType()
	case token.OpenBracket:
		return p.parseArrayOrSliceType()
	case token.Ampersand:
		p.advance()
		mutability := p.parseOptionalMutability()
		element := p.parseType()
		return p.pushType(cst.ReferenceType{
			Mutability: mutability,
			Element:    element,
		}, rangeBetween(start, p.previousRange()))
	case token.Asterisk:
		p.advance()
		mutability := p.parseOptionalMutability()
		element := p.parseType()
		return p.pushType(cst.PointerType{
			Mutability: mutability,
			Element:    element,
		}, rangeBetween(start, p.previousRange()))
	case token.Fn:
		return p.parseFunctionType()
	case token.Typeof:
		p.advance()
		p.expect(token.OpenParen)
		inspected := p.parseSubexpression()
		p.expect(token.CloseParen)
		return p.pushType(
			cst.TypeofType{Expression: inspected}, rangeBetween(start, p.previousRange()))
	case token.UpperName, token.LowerName, token.DoubleColon:
		path, ok := p.parsePath(nil)
		if !ok {
			return p.pushType(cst.ErrorType{}, start)
		}
		return p.pushType(cst.PathType{Path: path}, path.Range)
	default:
		p.error(start, "Expected a type, but found "+token.Describe(p.current().Type))
		p.advance()
		return p.pushType(cst.ErrorType{}, start)
	}
}

func (p *Parser) parseTupleType() cst.TypeId {
	open := p.advance()
	if close, ok := p.accept(token.CloseParen); ok {
		return p.pushType(cst.TupleType{}, rangeBetween(open.Range, close.Range))
	}
	first := p.parseType()
	if _, ok := p.accept(token.Comma); !ok {
		p.expect(token.CloseParen)
		return p.pushType(cst.ParenType{Type: first}, rangeBetween(open.Range, p.previousRange()))
	}
	fields := []cst.TypeId{first}
	for !p.check(token.CloseParen) && !p.check(token.EndOfInput) {
		fields = append(fields, p.parseType())
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.CloseParen)
	return p.pushType(cst.TupleType{Fields: fields}, rangeBetween(open.Range, p.previousRange()))
}

func (p *Parser) parseArrayOrSliceType() cst.TypeId {
	open := p.advance()
	element := p.parseType()
	if _, ok := p.accept(token.Semicolon); ok {
		length := p.parseSubexpression()
		p.expect(token.CloseBracket)
		return p.pushType(cst.ArrayType{
			Element: element,
			Length:  length,
		}, rangeBetween(open.Range, p.previousRange()))
	}
	p.expect(token.CloseBracket)
	return p.pushType(
		cst.SliceType{Element: element}, rangeBetween(open.Range, p.previousRange()))
}

func (p *Parser) parseFunctionType() cst.TypeId {
	fnToken := p.advance()
	p.expect(token.OpenParen)
	var parameters []cst.TypeId
	for !p.check(token.CloseParen) && !p.check(token.EndOfInput) {
		parameters = append(parameters, p.parseType())
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	p.expect(token.CloseParen)
	p.expect(token.Colon)
	returnType := p.parseType()
	return p.pushType(cst.FunctionType{
		Parameters: parameters,
		Return:     returnType,
	}, rangeBetween(fnToken.Range, p.previousRange()))
}
