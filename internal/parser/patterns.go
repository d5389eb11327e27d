package parser

import (
	"strconv"
	"strings"

	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/token"
)

func (p *Parser) pushPattern(variant cst.PatternVariant, r lsp.Range) cst.PatternId {
	return p.arena.Patterns.Push(cst.Pattern{Variant: variant, Range: r})
}

// parsePattern parses one pattern with its optional alias and guard
// postfixes: `p as x` and `p if e`.
func (p *Parser) parsePattern() cst.PatternId {
	pattern := p.parsePrimaryPattern()
	for {
		start := p.arena.Patterns.Get(pattern).Range
		if _, ok := p.accept(token.As); ok {
			mutability := p.parseOptionalMutability()
			nameToken, ok := p.expect(token.LowerName)
			if !ok {
				return p.pushPattern(cst.ErrorPattern{}, start)
			}
			p.emitNameToken(nameToken, lsp.TokenVariable)
			pattern = p.pushPattern(cst.AliasPattern{
				Pattern:    pattern,
				Mutability: mutability,
				Name:       p.name(nameToken),
			}, rangeBetween(start, p.previousRange()))
			continue
		}
		if _, ok := p.accept(token.If); ok {
			guard := p.parseConditionExpression()
			pattern = p.pushPattern(cst.GuardedPattern{
				Pattern: pattern,
				Guard:   guard,
			}, rangeBetween(start, p.previousRange()))
			continue
		}
		return pattern
	}
}

func (p *Parser) parsePrimaryPattern() cst.PatternId {
	start := p.current().Range
	switch p.current().Type {
	case token.IntegerLiteral:
		t := p.advance()
		value, err := strconv.ParseUint(strings.ReplaceAll(t.Lexeme, "_", ""), 10, 64)
		if err != nil {
			p.error(t.Range, "Integer literal is too large")
			return p.pushPattern(cst.ErrorPattern{}, t.Range)
		}
		return p.pushPattern(cst.IntegerPattern{Value: value}, t.Range)
	case token.FloatingLiteral:
		t := p.advance()
		value, _ := strconv.ParseFloat(strings.ReplaceAll(t.Lexeme, "_", ""), 64)
		return p.pushPattern(cst.FloatingPattern{Value: value}, t.Range)
	case token.True:
		t := p.advance()
		return p.pushPattern(cst.BooleanPattern{Value: true}, t.Range)
	case token.False:
		t := p.advance()
		return p.pushPattern(cst.BooleanPattern{Value: false}, t.Range)
	case token.CharacterLiteral:
		t := p.advance()
		var value rune
		for _, r := range t.Lexeme {
			value = r
			break
		}
		return p.pushPattern(cst.CharacterPattern{Value: value}, t.Range)
	case token.StringLiteral:
		t := p.advance()
		return p.pushPattern(cst.StringPattern{Value: t.Lexeme}, t.Range)
	case token.Underscore:
		t := p.advance()
		return p.pushPattern(cst.WildcardPattern{}, t.Range)
	case token.Mut:
		mutToken := p.advance()
		nameToken, ok := p.expect(token.LowerName)
		if !ok {
			return p.pushPattern(cst.ErrorPattern{}, mutToken.Range)
		}
		p.emitNameToken(nameToken, lsp.TokenVariable)
		return p.pushPattern(cst.NamePattern{
			Mutability: &cst.Mutability{IsMut: true, Range: mutToken.Range},
			Name:       p.name(nameToken),
		}, rangeBetween(mutToken.Range, nameToken.Range))
	case token.LowerName:
		nameToken := p.advance()
		p.emitNameToken(nameToken, lsp.TokenVariable)
		return p.pushPattern(cst.NamePattern{Name: p.name(nameToken)}, nameToken.Range)
	case token.OpenParen:
		open := p.advance()
		var fields []cst.PatternId
		for !p.check(token.CloseParen) && !p.check(token.EndOfInput) {
			fields = append(fields, p.parsePattern())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		p.expect(token.CloseParen)
		if len(fields) == 1 {
			return fields[0]
		}
		return p.pushPattern(
			cst.TuplePattern{Fields: fields}, rangeBetween(open.Range, p.previousRange()))
	case token.OpenBracket:
		open := p.advance()
		var patterns []cst.PatternId
		for !p.check(token.CloseBracket) && !p.check(token.EndOfInput) {
			patterns = append(patterns, p.parsePattern())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		p.expect(token.CloseBracket)
		return p.pushPattern(
			cst.SlicePattern{Patterns: patterns}, rangeBetween(open.Range, p.previousRange()))
	case token.UpperName, token.DoubleColon:
		return p.parseConstructorPattern(start)
	default:
		p.error(start, "Expected a pattern, but found "+token.Describe(p.current().Type))
		p.advance()
		return p.pushPattern(cst.ErrorPattern{}, start)
	}
}

func (p *Parser) parseConstructorPattern(start lsp.Range) cst.PatternId {
	path, ok := p.parsePath(nil)
	if !ok {
		return p.pushPattern(cst.ErrorPattern{}, start)
	}
	variant := cst.ConstructorPattern{Path: path}
	if _, ok := p.accept(token.OpenParen); ok {
		variant.HasBody = true
		for !p.check(token.CloseParen) && !p.check(token.EndOfInput) {
			variant.TupleFields = append(variant.TupleFields, p.parsePattern())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		p.expect(token.CloseParen)
	} else if p.structInitAllowed {
		if _, ok := p.accept(token.OpenBrace); ok {
			variant.HasBody = true
			for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
				nameToken, ok := p.expect(token.LowerName)
				if !ok {
					break
				}
				p.emitNameToken(nameToken, lsp.TokenProperty)
				field := cst.StructFieldPattern{Name: p.name(nameToken)}
				if _, ok := p.accept(token.Colon); ok {
					inner := p.parsePattern()
					field.Pattern = &inner
				}
				variant.StructFields = append(variant.StructFields, field)
				if _, ok := p.accept(token.Comma); !ok {
					break
				}
			}
			p.expect(token.CloseBrace)
		}
	}
	return p.pushPattern(variant, rangeBetween(start, p.previousRange()))
}
