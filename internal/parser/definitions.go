package parser

import (
	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/token"
)

func (p *Parser) parseDefinition() (cst.DefinitionId, bool) {
	start := p.current().Range
	switch p.current().Type {
	case token.Fn:
		return p.parseFunction(start)
	case token.Struct:
		return p.parseStruct(start)
	case token.Enum:
		return p.parseEnum(start)
	case token.Alias:
		return p.parseAlias(start)
	case token.Concept:
		return p.parseConcept(start)
	case token.Impl:
		return p.parseImpl(start)
	case token.Module:
		return p.parseSubmodule(start)
	default:
		p.error(start, "Expected a definition, but found "+token.Describe(p.current().Type))
		return 0, false
	}
}

func (p *Parser) pushDefinition(variant cst.DefinitionVariant, start lsp.Range) cst.DefinitionId {
	return p.arena.Definitions.Push(cst.Definition{
		Variant: variant,
		Range:   rangeBetween(start, p.previousRange()),
	})
}

func (p *Parser) parseTemplateParameters() []cst.TemplateParameter {
	open, ok := p.accept(token.OpenBracket)
	if !ok {
		return nil
	}
	var parameters []cst.TemplateParameter
	for {
		switch p.current().Type {
		case token.UpperName, token.LowerName, token.Mut:
			t := p.advance()
			parameters = append(parameters, cst.TemplateParameter{
				Name:  p.name(t),
				Range: t.Range,
			})
		default:
			p.error(p.current().Range, "Expected a template parameter")
		}
		if _, ok := p.accept(token.Comma); !ok {
			break
		}
	}
	if _, ok := p.accept(token.CloseBracket); !ok {
		p.error(open.Range, "Unterminated template parameter list")
	}
	return parameters
}

func (p *Parser) parseFunction(start lsp.Range) (cst.DefinitionId, bool) {
	p.advance() // fn
	nameToken, ok := p.expect(token.LowerName)
	if !ok {
		return 0, false
	}
	p.emitNameToken(nameToken, lsp.TokenFunction)

	signature := cst.FunctionSignature{
		Name:               p.name(nameToken),
		TemplateParameters: p.parseTemplateParameters(),
	}

	if _, ok := p.expect(token.OpenParen); !ok {
		return 0, false
	}
	if !p.check(token.CloseParen) {
		for {
			signature.Parameters = append(signature.Parameters, p.parseFunctionParameter())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
	}
	if _, ok := p.expect(token.CloseParen); !ok {
		return 0, false
	}

	if _, ok := p.accept(token.Colon); ok {
		returnType := p.parseType()
		signature.ReturnType = &returnType
	}

	var body cst.ExpressionId
	switch {
	case p.check(token.Equals):
		p.advance()
		body = p.parseExpression()
	case p.check(token.OpenBrace):
		body = p.parseBlock(p.current().Range)
	default:
		p.error(p.current().Range, "Expected '=' or a block as the function body")
		body = p.arena.Expressions.Push(cst.Expression{
			Variant: cst.ErrorExpression{},
			Range:   p.current().Range,
		})
	}

	return p.pushDefinition(cst.Function{Signature: signature, Body: body}, start), true
}

func (p *Parser) parseFunctionParameter() cst.FunctionParameter {
	// Self parameters: self, &self, &mut self.
	if p.check(token.LowerSelf) {
		t := p.advance()
		return cst.FunctionParameter{Self: &cst.SelfParameter{Range: t.Range}}
	}
	if p.check(token.Ampersand) &&
		(p.peek().Type == token.LowerSelf || p.peek().Type == token.Mut) {
		ampersand := p.advance()
		mutability := p.parseOptionalMutability()
		t, _ := p.expect(token.LowerSelf)
		return cst.FunctionParameter{Self: &cst.SelfParameter{
			IsReference: true,
			Mutability:  mutability,
			Range:       rangeBetween(ampersand.Range, t.Range),
		}}
	}

	parameter := cst.FunctionParameter{Pattern: p.parsePattern()}
	if _, ok := p.accept(token.Colon); ok {
		parameterType := p.parseType()
		parameter.Type = &parameterType
	}
	if _, ok := p.accept(token.Equals); ok {
		defaultArgument := p.parseExpression()
		parameter.Default = &defaultArgument
	}
	return parameter
}

func (p *Parser) parseConstructorBody() cst.ConstructorBody {
	if open, ok := p.accept(token.OpenBrace); ok {
		var fields []cst.Field
		for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
			nameToken, ok := p.expect(token.LowerName)
			if !ok {
				break
			}
			p.emitNameToken(nameToken, lsp.TokenProperty)
			fieldStart := nameToken.Range
			p.expect(token.Colon)
			fieldType := p.parseType()
			fields = append(fields, cst.Field{
				Name:  p.name(nameToken),
				Type:  fieldType,
				Range: rangeBetween(fieldStart, p.previousRange()),
			})
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.accept(token.CloseBrace); !ok {
			p.error(open.Range, "Unterminated field list")
		}
		return cst.StructConstructorBody{Fields: fields}
	}
	if open, ok := p.accept(token.OpenParen); ok {
		var types []cst.TypeId
		for !p.check(token.CloseParen) && !p.check(token.EndOfInput) {
			types = append(types, p.parseType())
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.accept(token.CloseParen); !ok {
			p.error(open.Range, "Unterminated constructor type list")
		}
		return cst.TupleConstructorBody{Types: types}
	}
	return nil
}

func (p *Parser) parseStruct(start lsp.Range) (cst.DefinitionId, bool) {
	p.advance() // struct
	nameToken, ok := p.expect(token.UpperName)
	if !ok {
		return 0, false
	}
	p.emitNameToken(nameToken, lsp.TokenStructure)
	definition := cst.StructDefinition{
		Name:               p.name(nameToken),
		TemplateParameters: p.parseTemplateParameters(),
		Body:               p.parseConstructorBody(),
	}
	return p.pushDefinition(definition, start), true
}

func (p *Parser) parseEnum(start lsp.Range) (cst.DefinitionId, bool) {
	p.advance() // enum
	nameToken, ok := p.expect(token.UpperName)
	if !ok {
		return 0, false
	}
	p.emitNameToken(nameToken, lsp.TokenEnumeration)
	definition := cst.EnumDefinition{
		Name:               p.name(nameToken),
		TemplateParameters: p.parseTemplateParameters(),
	}
	if open, ok := p.expect(token.OpenBrace); ok {
		for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
			ctorToken, ok := p.expect(token.UpperName)
			if !ok {
				break
			}
			p.emitNameToken(ctorToken, lsp.TokenConstructor)
			definition.Constructors = append(definition.Constructors, cst.Constructor{
				Name: p.name(ctorToken),
				Body: p.parseConstructorBody(),
			})
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.accept(token.CloseBrace); !ok {
			p.error(open.Range, "Unterminated constructor list")
		}
	}
	return p.pushDefinition(definition, start), true
}

func (p *Parser) parseAlias(start lsp.Range) (cst.DefinitionId, bool) {
	p.advance() // alias
	nameToken, ok := p.expect(token.UpperName)
	if !ok {
		return 0, false
	}
	p.emitNameToken(nameToken, lsp.TokenType)
	templateParameters := p.parseTemplateParameters()
	if _, ok := p.expect(token.Equals); !ok {
		return 0, false
	}
	definition := cst.AliasDefinition{
		Name:               p.name(nameToken),
		TemplateParameters: templateParameters,
		Type:               p.parseType(),
	}
	return p.pushDefinition(definition, start), true
}

func (p *Parser) parseConcept(start lsp.Range) (cst.DefinitionId, bool) {
	p.advance() // concept
	nameToken, ok := p.expect(token.UpperName)
	if !ok {
		return 0, false
	}
	p.emitNameToken(nameToken, lsp.TokenInterface)
	definition := cst.ConceptDefinition{
		Name:               p.name(nameToken),
		TemplateParameters: p.parseTemplateParameters(),
	}
	if open, ok := p.expect(token.OpenBrace); ok {
		for p.check(token.Fn) {
			p.advance()
			requirementName, ok := p.expect(token.LowerName)
			if !ok {
				break
			}
			p.emitNameToken(requirementName, lsp.TokenFunction)
			requirement := cst.FunctionSignature{Name: p.name(requirementName)}
			if _, ok := p.expect(token.OpenParen); ok {
				for !p.check(token.CloseParen) && !p.check(token.EndOfInput) {
					requirement.Parameters = append(
						requirement.Parameters, p.parseFunctionParameter())
					if _, ok := p.accept(token.Comma); !ok {
						break
					}
				}
				p.expect(token.CloseParen)
			}
			if _, ok := p.accept(token.Colon); ok {
				returnType := p.parseType()
				requirement.ReturnType = &returnType
			}
			definition.Requirements = append(definition.Requirements, requirement)
		}
		if _, ok := p.accept(token.CloseBrace); !ok {
			p.error(open.Range, "Unterminated concept body")
		}
	}
	return p.pushDefinition(definition, start), true
}

func (p *Parser) parseImpl(start lsp.Range) (cst.DefinitionId, bool) {
	p.advance() // impl
	definition := cst.ImplDefinition{
		TemplateParameters: p.parseTemplateParameters(),
		SelfType:           p.parseType(),
	}
	if open, ok := p.expect(token.OpenBrace); ok {
		for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
			if inner, ok := p.parseDefinition(); ok {
				definition.Definitions = append(definition.Definitions, inner)
			} else {
				p.recover()
				if !p.insideBraces() {
					break
				}
			}
		}
		if _, ok := p.accept(token.CloseBrace); !ok {
			p.error(open.Range, "Unterminated impl body")
		}
	}
	return p.pushDefinition(definition, start), true
}

func (p *Parser) parseSubmodule(start lsp.Range) (cst.DefinitionId, bool) {
	p.advance() // module
	nameToken, ok := p.expect(token.LowerName)
	if !ok {
		return 0, false
	}
	p.emitNameToken(nameToken, lsp.TokenModule)
	definition := cst.ModuleDefinition{Name: p.name(nameToken)}
	if open, ok := p.expect(token.OpenBrace); ok {
		for !p.check(token.CloseBrace) && !p.check(token.EndOfInput) {
			if inner, ok := p.parseDefinition(); ok {
				definition.Definitions = append(definition.Definitions, inner)
			} else {
				p.recover()
				if !p.insideBraces() {
					break
				}
			}
		}
		if _, ok := p.accept(token.CloseBrace); !ok {
			p.error(open.Range, "Unterminated module body")
		}
	}
	return p.pushDefinition(definition, start), true
}

// insideBraces reports whether recovery stopped at a token that can
// continue the current brace-delimited definition list.
func (p *Parser) insideBraces() bool {
	switch p.current().Type {
	case token.Fn, token.Struct, token.Enum, token.Alias,
		token.Concept, token.Impl, token.Module:
		return true
	default:
		return false
	}
}
