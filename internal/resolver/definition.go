package resolver

import (
	"unicode"

	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

// enterDefinition flips a definition's state to in-progress, reporting
// a recursive definition when it is already being resolved.
func (ctx *Context) enterDefinition(
	state *hir.DefinitionState, name lsp.Name,
) (proceed bool) {
	switch *state {
	case hir.Resolved:
		return false
	case hir.InProgress:
		ctx.error(name.Range, "Recursive definition: '"+ctx.pool().Get(name.Id)+"'")
		return false
	default:
		*state = hir.InProgress
		return true
	}
}

// bindTemplateParameters introduces template parameters into the
// scope: upper-case names become parameterized types, lower-case names
// parameterized mutabilities.
func (ctx *Context) bindTemplateParameters(
	state *InferenceState, scopeId hir.EnvironmentId, parameters []ast.TemplateParameter,
) {
	for _, parameter := range parameters {
		name := ctx.pool().Get(parameter.Name.Id)
		var first rune
		for _, r := range name {
			first = r
			break
		}
		tag := ctx.freshTemplateTag()
		if unicode.IsUpper(first) {
			typeId := ctx.Arena.Hir.Types.Push(hir.ParameterizedType{
				Tag:  tag,
				Name: parameter.Name,
			})
			ctx.bindType(scopeId, parameter.Name, typeId)
		} else {
			mutabilityId := ctx.Arena.Hir.Mutabilities.Push(hir.ParameterizedMutability{
				Tag: tag,
			})
			ctx.bindMutability(scopeId, parameter.Name, mutabilityId)
		}
	}
}

// resolveFunctionSignature resolves a function's signature on demand
// and returns it, or nil when the signature cannot resolve.
func (ctx *Context) resolveFunctionSignature(id hir.FunctionId) *hir.FunctionSignature {
	info := ctx.Arena.Hir.Functions.Get(id)
	if !ctx.enterDefinition(&info.State, info.Name) {
		return info.Signature
	}

	state := NewInferenceState()
	scope := ctx.pushScope(info.EnvId)
	ctx.bindTemplateParameters(state, scope, info.Ast.Signature.TemplateParameters)

	signature := &hir.FunctionSignature{Name: info.Name}

	var parameterTypes []hir.Type
	for _, parameter := range info.Ast.Signature.Parameters {
		parameterType := ctx.ResolveType(state, scope, parameter.Type)
		pattern := ctx.ResolvePattern(state, scope, parameter.Pattern)
		ctx.RequireSubtypeRelationship(state, pattern.Range, parameterType.Id, pattern.Type)
		signature.Parameters = append(signature.Parameters, hir.FunctionParameter{
			Pattern: ctx.Arena.Hir.Patterns.Push(pattern),
			Type:    parameterType,
		})
		parameterTypes = append(parameterTypes, parameterType)
	}

	if info.Ast.Signature.ReturnType != nil {
		signature.ReturnType = ctx.ResolveType(state, scope, *info.Ast.Signature.ReturnType)
	} else {
		signature.ReturnType = hir.Type{Id: ctx.Constants.UnitType, Range: info.Name.Range}
	}

	signature.FunctionType = hir.Type{
		Id: ctx.Arena.Hir.Types.Push(hir.FunctionType{
			Parameters: parameterTypes,
			Return:     signature.ReturnType,
		}),
		Range: info.Name.Range,
	}

	ctx.EnsureNoUnsolvedVariables(state)

	info = ctx.Arena.Hir.Functions.Get(id)
	info.Signature = signature
	info.SignatureEnvId = scope
	info.State = hir.Resolved
	return signature
}

// resolveFunctionBody resolves a function body against its signature.
// The body is its own resolution unit; parameter bindings come from
// the signature scope.
func (ctx *Context) resolveFunctionBody(id hir.FunctionId) {
	signature := ctx.resolveFunctionSignature(id)
	info := ctx.Arena.Hir.Functions.Get(id)
	if signature == nil || info.Body != nil {
		return
	}

	state := NewInferenceState()
	scope := ctx.pushScope(info.SignatureEnvId)

	savedSelf := ctx.SelfType
	savedReturn := ctx.ReturnType
	if info.SelfType != nil {
		ctx.SelfType = info.SelfType
	}
	returnType := signature.ReturnType
	ctx.ReturnType = &returnType

	body := ctx.ResolveExpression(state, scope, info.Ast.Body)
	ctx.RequireSubtypeRelationship(state, body.Range, body.Type, signature.ReturnType.Id)
	ctx.EnsureNoUnsolvedVariables(state)
	ctx.popScope(scope)
	ctx.popScope(info.SignatureEnvId)

	ctx.SelfType = savedSelf
	ctx.ReturnType = savedReturn

	bodyId := ctx.Arena.Hir.Expressions.Push(body)
	ctx.Arena.Hir.Functions.Get(id).Body = &bodyId
}

// resolveStructure resolves field types and registers field symbols in
// the structure's associated environment.
func (ctx *Context) resolveStructure(id hir.StructureId) {
	info := ctx.Arena.Hir.Structures.Get(id)
	if !ctx.enterDefinition(&info.State, info.Name) {
		return
	}

	state := NewInferenceState()
	scope := ctx.pushScope(info.EnvId)
	ctx.bindTemplateParameters(state, scope, info.Ast.TemplateParameters)

	var fields []hir.FieldId
	if body, ok := info.Ast.Body.(ast.StructConstructorBody); ok {
		typeId := info.TypeId
		associated := info.AssociatedEnvId
		for _, field := range body.Fields {
			fieldType := ctx.ResolveType(state, scope, field.Type)
			fieldId := ctx.Arena.Hir.Fields.Push(hir.FieldInfo{
				Name:  field.Name,
				Type:  fieldType,
				Owner: typeId,
			})
			ctx.addToEnvironment(associated, field.Name, db.FieldSymbol{Id: fieldId})
			fields = append(fields, fieldId)
		}
	}

	ctx.EnsureNoUnsolvedVariables(state)

	info = ctx.Arena.Hir.Structures.Get(id)
	info.Fields = fields
	info.State = hir.Resolved
}

// resolveEnumeration resolves constructor payloads and registers
// constructor symbols in the enumeration's associated environment.
func (ctx *Context) resolveEnumeration(id hir.EnumerationId) {
	info := ctx.Arena.Hir.Enumerations.Get(id)
	if !ctx.enterDefinition(&info.State, info.Name) {
		return
	}

	state := NewInferenceState()
	scope := ctx.pushScope(info.EnvId)
	ctx.bindTemplateParameters(state, scope, info.Ast.TemplateParameters)

	typeId := info.TypeId
	associated := info.AssociatedEnvId

	var constructors []hir.ConstructorId
	for _, constructor := range info.Ast.Constructors {
		ctorInfo := hir.ConstructorInfo{
			Name:        constructor.Name,
			Enumeration: id,
		}
		switch body := constructor.Body.(type) {
		case ast.TupleConstructorBody:
			ctorInfo.HasBody = true
			for _, payload := range body.Types {
				ctorInfo.TupleTypes = append(
					ctorInfo.TupleTypes, ctx.ResolveType(state, scope, payload))
			}
		case ast.StructConstructorBody:
			ctorInfo.HasBody = true
			for _, field := range body.Fields {
				fieldType := ctx.ResolveType(state, scope, field.Type)
				fieldId := ctx.Arena.Hir.Fields.Push(hir.FieldInfo{
					Name:  field.Name,
					Type:  fieldType,
					Owner: typeId,
				})
				ctorInfo.Fields = append(ctorInfo.Fields, fieldId)
			}
		}
		ctorId := ctx.Arena.Hir.Constructors.Push(ctorInfo)
		ctx.addToEnvironment(associated, constructor.Name, db.ConstructorSymbol{Id: ctorId})
		constructors = append(constructors, ctorId)
	}

	ctx.EnsureNoUnsolvedVariables(state)

	info = ctx.Arena.Hir.Enumerations.Get(id)
	info.Constructors = constructors
	info.State = hir.Resolved
}

// resolveAlias resolves the aliased type once.
func (ctx *Context) resolveAlias(id hir.AliasId) {
	info := ctx.Arena.Hir.Aliases.Get(id)
	if !ctx.enterDefinition(&info.State, info.Name) {
		return
	}

	state := NewInferenceState()
	scope := ctx.pushScope(info.EnvId)
	ctx.bindTemplateParameters(state, scope, info.Ast.TemplateParameters)
	aliased := ctx.ResolveType(state, scope, info.Ast.Type)
	ctx.EnsureNoUnsolvedVariables(state)

	info = ctx.Arena.Hir.Aliases.Get(id)
	info.Type = &aliased
	info.State = hir.Resolved
}
