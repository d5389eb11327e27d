// Package prettyprinter reprints a concrete syntax tree as formatted
// source text. It backs textDocument/formatting and the parser REPL.
package prettyprinter

import (
	"fmt"
	"strings"

	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/utl"
)

// CodePrinter renders a CST back to source code with one canonical
// layout: four-space indents, one definition per blank-line-separated
// block.
type CodePrinter struct {
	arena  *cst.Arena
	pool   *utl.StringPool
	out    strings.Builder
	indent int
}

func NewCodePrinter(arena *cst.Arena, pool *utl.StringPool) *CodePrinter {
	return &CodePrinter{arena: arena, pool: pool}
}

// PrintModule renders every top-level definition.
func (p *CodePrinter) PrintModule(module cst.Module) string {
	for i, definition := range module.Definitions {
		if i > 0 {
			p.write("\n")
		}
		p.printDefinition(definition)
		p.write("\n")
	}
	return p.out.String()
}

func (p *CodePrinter) write(format string, args ...any) {
	fmt.Fprintf(&p.out, format, args...)
}

func (p *CodePrinter) newline() {
	p.write("\n%s", strings.Repeat("    ", p.indent))
}

func (p *CodePrinter) name(name lsp.Name) string {
	return p.pool.Get(name.Id)
}

func (p *CodePrinter) printDefinition(id cst.DefinitionId) {
	switch v := p.arena.Definitions.Get(id).Variant.(type) {
	case cst.Function:
		p.printFunction(v)
	case cst.StructDefinition:
		p.write("struct %s", p.name(v.Name))
		p.printTemplateParameters(v.TemplateParameters)
		p.printConstructorBody(v.Body)
	case cst.EnumDefinition:
		p.write("enum %s", p.name(v.Name))
		p.printTemplateParameters(v.TemplateParameters)
		p.write(" {")
		p.indent++
		for _, constructor := range v.Constructors {
			p.newline()
			p.write("%s", p.name(constructor.Name))
			p.printConstructorBody(constructor.Body)
			p.write(",")
		}
		p.indent--
		p.newline()
		p.write("}")
	case cst.AliasDefinition:
		p.write("alias %s", p.name(v.Name))
		p.printTemplateParameters(v.TemplateParameters)
		p.write(" = ")
		p.printType(v.Type)
	case cst.ConceptDefinition:
		p.write("concept %s", p.name(v.Name))
		p.printTemplateParameters(v.TemplateParameters)
		p.write(" {")
		p.indent++
		for _, requirement := range v.Requirements {
			p.newline()
			p.printSignature(requirement)
		}
		p.indent--
		p.newline()
		p.write("}")
	case cst.ImplDefinition:
		p.write("impl")
		p.printTemplateParameters(v.TemplateParameters)
		p.write(" ")
		p.printType(v.SelfType)
		p.write(" {")
		p.indent++
		for _, inner := range v.Definitions {
			p.newline()
			p.printDefinition(inner)
		}
		p.indent--
		p.newline()
		p.write("}")
	case cst.ModuleDefinition:
		p.write("module %s {", p.name(v.Name))
		p.indent++
		for _, inner := range v.Definitions {
			p.newline()
			p.printDefinition(inner)
		}
		p.indent--
		p.newline()
		p.write("}")
	case cst.ErrorDefinition:
		p.write("/* error */")
	}
}

func (p *CodePrinter) printFunction(v cst.Function) {
	p.printSignature(v.Signature)
	p.write(" = ")
	p.printExpression(v.Body)
}

func (p *CodePrinter) printSignature(signature cst.FunctionSignature) {
	p.write("fn %s", p.name(signature.Name))
	p.printTemplateParameters(signature.TemplateParameters)
	p.write("(")
	for i, parameter := range signature.Parameters {
		if i > 0 {
			p.write(", ")
		}
		p.printParameter(parameter)
	}
	p.write(")")
	if signature.ReturnType != nil {
		p.write(": ")
		p.printType(*signature.ReturnType)
	}
}

func (p *CodePrinter) printParameter(parameter cst.FunctionParameter) {
	if parameter.Self != nil {
		if parameter.Self.IsReference {
			p.write("&")
			p.printMutability(parameter.Self.Mutability)
		}
		p.write("self")
		return
	}
	p.printPattern(parameter.Pattern)
	if parameter.Type != nil {
		p.write(": ")
		p.printType(*parameter.Type)
	}
	if parameter.Default != nil {
		p.write(" = ")
		p.printExpression(*parameter.Default)
	}
}

func (p *CodePrinter) printTemplateParameters(parameters []cst.TemplateParameter) {
	if len(parameters) == 0 {
		return
	}
	p.write("[")
	for i, parameter := range parameters {
		if i > 0 {
			p.write(", ")
		}
		p.write("%s", p.name(parameter.Name))
	}
	p.write("]")
}

func (p *CodePrinter) printConstructorBody(body cst.ConstructorBody) {
	switch v := body.(type) {
	case cst.StructConstructorBody:
		p.write(" {")
		p.indent++
		for _, field := range v.Fields {
			p.newline()
			p.write("%s: ", p.name(field.Name))
			p.printType(field.Type)
			p.write(",")
		}
		p.indent--
		p.newline()
		p.write("}")
	case cst.TupleConstructorBody:
		p.write("(")
		for i, fieldType := range v.Types {
			if i > 0 {
				p.write(", ")
			}
			p.printType(fieldType)
		}
		p.write(")")
	}
}

func (p *CodePrinter) printMutability(mutability *cst.Mutability) {
	if mutability != nil && mutability.IsMut {
		p.write("mut ")
	}
}

func (p *CodePrinter) printPath(path cst.Path) {
	switch root := path.Root.(type) {
	case cst.GlobalRoot:
		p.write("::")
	case cst.TypeRoot:
		p.printType(root.Type)
		p.write("::")
	}
	for i, segment := range path.Segments {
		if i > 0 {
			p.write("::")
		}
		p.write("%s", p.name(segment.Name))
		if segment.TemplateArguments != nil {
			p.write("[")
			for j, argument := range segment.TemplateArguments.Types {
				if j > 0 {
					p.write(", ")
				}
				p.printType(argument)
			}
			p.write("]")
		}
	}
}
