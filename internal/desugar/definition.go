package desugar

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/lsp"
)

func (ctx *Context) definition(id cst.DefinitionId) ast.Definition {
	node := ctx.Cst.Definitions.Get(id)
	return ast.Definition{
		Variant: ctx.definitionVariant(*node),
		Range:   node.Range,
	}
}

func (ctx *Context) definitions(ids []cst.DefinitionId) []ast.Definition {
	var result []ast.Definition
	for _, id := range ids {
		result = append(result, ctx.definition(id))
	}
	return result
}

func (ctx *Context) definitionVariant(node cst.Definition) ast.DefinitionVariant {
	switch v := node.Variant.(type) {
	case cst.Function:
		return ast.Function{
			Signature: ctx.functionSignature(v.Signature),
			Body:      ctx.expression(v.Body),
		}
	case cst.StructDefinition:
		body := ctx.constructorBody(v.Body)
		return ast.Structure{
			Name:               v.Name,
			TemplateParameters: ctx.templateParameters(v.TemplateParameters),
			Body:               body,
		}
	case cst.EnumDefinition:
		ctx.ensureNoDuplicateConstructors(v.Constructors)
		definition := ast.Enumeration{
			Name:               v.Name,
			TemplateParameters: ctx.templateParameters(v.TemplateParameters),
		}
		for _, constructor := range v.Constructors {
			definition.Constructors = append(definition.Constructors, ast.Constructor{
				Name: constructor.Name,
				Body: ctx.constructorBody(constructor.Body),
			})
		}
		return definition
	case cst.AliasDefinition:
		return ast.Alias{
			Name:               v.Name,
			TemplateParameters: ctx.templateParameters(v.TemplateParameters),
			Type:               ctx.typ(v.Type),
		}
	case cst.ConceptDefinition:
		definition := ast.Concept{
			Name:               v.Name,
			TemplateParameters: ctx.templateParameters(v.TemplateParameters),
		}
		for _, requirement := range v.Requirements {
			definition.Requirements = append(
				definition.Requirements, ctx.functionSignature(requirement))
		}
		return definition
	case cst.ImplDefinition:
		return ast.Impl{
			TemplateParameters: ctx.templateParameters(v.TemplateParameters),
			SelfType:           ctx.typ(v.SelfType),
			Definitions:        ctx.definitions(v.Definitions),
		}
	case cst.ModuleDefinition:
		return ast.Submodule{
			Name:        v.Name,
			Definitions: ctx.definitions(v.Definitions),
		}
	case cst.ErrorDefinition:
		return ast.ErrorDefinition{}
	default:
		ctx.error(node.Range, "This definition can not be desugared yet")
		return ast.ErrorDefinition{}
	}
}

// functionSignature lowers parameters with two rewrites: self
// parameters become a normal `self: Self` (or `self: &[mut] Self`)
// parameter, and a parameter with no explicit type inherits the type
// of the next parameter to its right. The propagation is performed by
// walking the reversed parameter list; the last parameter must have an
// explicit type.
func (ctx *Context) functionSignature(signature cst.FunctionSignature) ast.FunctionSignature {
	result := ast.FunctionSignature{
		Name:               signature.Name,
		TemplateParameters: ctx.templateParameters(signature.TemplateParameters),
	}

	parameters := make([]ast.FunctionParameter, len(signature.Parameters))
	var inherited *ast.TypeId
	for i := len(signature.Parameters) - 1; i >= 0; i-- {
		parameter := signature.Parameters[i]

		if parameter.Self != nil {
			parameters[i] = ctx.selfParameter(*parameter.Self)
			inherited = &parameters[i].Type
			continue
		}

		desugared := ast.FunctionParameter{Pattern: ctx.pattern(parameter.Pattern)}
		switch {
		case parameter.Type != nil:
			desugared.Type = ctx.typ(*parameter.Type)
		case inherited != nil:
			desugared.Type = *inherited
		default:
			patternRange := ctx.Ast.Patterns.Get(desugared.Pattern).Range
			ctx.error(patternRange, "The last function parameter must have an explicit type")
			desugared.Type = ctx.Ast.Types.Push(ast.Type{
				Variant: ast.ErrorType{},
				Range:   patternRange,
			})
		}
		if parameter.Default != nil {
			defaultArgument := ctx.expression(*parameter.Default)
			desugared.Default = &defaultArgument
		}
		parameters[i] = desugared
		inherited = &parameters[i].Type
	}
	result.Parameters = parameters

	if signature.ReturnType != nil {
		returnType := ctx.typ(*signature.ReturnType)
		result.ReturnType = &returnType
	}
	return result
}

// selfParameter desugars `self`, `&self`, and `&mut self` to a normal
// parameter named self whose type is Self or &[mut] Self.
func (ctx *Context) selfParameter(self cst.SelfParameter) ast.FunctionParameter {
	selfName := lsp.Name{Id: ctx.DB.StringPool.Intern("self"), Range: self.Range}
	pattern := ctx.Ast.Patterns.Push(ast.Pattern{
		Variant: ast.NamePattern{
			Mutability: ctx.mutability(nil, self.Range),
			Name:       selfName,
		},
		Range: self.Range,
	})

	selfType := ctx.Ast.Types.Push(ast.Type{Variant: ast.SelfType{}, Range: self.Range})
	if self.IsReference {
		selfType = ctx.Ast.Types.Push(ast.Type{
			Variant: ast.ReferenceType{
				Mutability: ctx.mutability(self.Mutability, self.Range),
				Element:    selfType,
			},
			Range: self.Range,
		})
	}
	return ast.FunctionParameter{Pattern: pattern, Type: selfType}
}

func (ctx *Context) constructorBody(body cst.ConstructorBody) ast.ConstructorBody {
	switch v := body.(type) {
	case cst.StructConstructorBody:
		ctx.ensureNoDuplicateFields(v.Fields)
		var fields []ast.Field
		for _, field := range v.Fields {
			fields = append(fields, ast.Field{
				Name:  field.Name,
				Type:  ctx.typ(field.Type),
				Range: field.Range,
			})
		}
		return ast.StructConstructorBody{Fields: fields}
	case cst.TupleConstructorBody:
		return ast.TupleConstructorBody{Types: ctx.types(v.Types)}
	default:
		return nil
	}
}

func (ctx *Context) duplicateDiagnostic(
	description, name string, first, second lsp.Range,
) lsp.Diagnostic {
	diagnostic := lsp.Error(second, "Multiple definitions for "+description+" "+name)
	diagnostic.Related = []lsp.DiagnosticRelated{{
		Message:  "First defined here",
		Location: lsp.Location{DocId: ctx.DocId, Range: first},
	}}
	return diagnostic
}

// ensureNoDuplicateFields reports each struct field whose name repeats
// an earlier one, pointing back at the first occurrence.
func (ctx *Context) ensureNoDuplicateFields(fields []cst.Field) {
	for j := range fields {
		for i := range j {
			if fields[i].Name.Id == fields[j].Name.Id {
				ctx.addDiagnostic(ctx.duplicateDiagnostic(
					"field",
					ctx.DB.StringPool.Get(fields[i].Name.Id),
					fields[i].Name.Range,
					fields[j].Name.Range))
				break
			}
		}
	}
}

func (ctx *Context) ensureNoDuplicateConstructors(constructors []cst.Constructor) {
	for j := range constructors {
		for i := range j {
			if constructors[i].Name.Id == constructors[j].Name.Id {
				ctx.addDiagnostic(ctx.duplicateDiagnostic(
					"constructor",
					ctx.DB.StringPool.Get(constructors[i].Name.Id),
					constructors[i].Name.Range,
					constructors[j].Name.Range))
				break
			}
		}
	}
}
