package resolver

import (
	"strconv"

	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

// ResolveExpression lowers an AST expression to HIR, producing either
// an inferred concrete type or a fresh inference variable, plus a
// place/value classification.
func (ctx *Context) ResolveExpression(
	state *InferenceState, envId hir.EnvironmentId, id ast.ExpressionId,
) hir.Expression {
	node := ctx.Arena.Ast.Expressions.Get(id)
	r := node.Range

	value := func(variant hir.ExpressionVariant, typeId hir.TypeId) hir.Expression {
		return hir.Expression{Variant: variant, Type: typeId, Kind: hir.ValueExpression, Range: r}
	}

	switch v := node.Variant.(type) {
	case ast.Integer:
		return value(
			hir.Integer{Value: v.Value}, ctx.freshIntegralTypeVariable(state, r).Id)
	case ast.Floating:
		return value(hir.Floating{Value: v.Value}, ctx.Constants.FloatingType)
	case ast.Boolean:
		return value(hir.Boolean{Value: v.Value}, ctx.Constants.BooleanType)
	case ast.Character:
		return value(hir.Character{Value: v.Value}, ctx.Constants.CharacterType)
	case ast.String:
		return value(hir.String{Value: v.Value}, ctx.Constants.StringType)
	case ast.Wildcard:
		return value(hir.Hole{}, ctx.freshGeneralTypeVariable(state, r).Id)
	case ast.PathExpression:
		return ctx.resolvePathExpression(state, envId, v.Path, r)
	case ast.Array:
		return ctx.resolveArrayLiteral(state, envId, v, r)
	case ast.Tuple:
		var fields []hir.ExpressionId
		var types []hir.Type
		for _, field := range v.Fields {
			expression := ctx.ResolveExpression(state, envId, field)
			types = append(types, hir.Type{Id: expression.Type, Range: expression.Range})
			fields = append(fields, ctx.Arena.Hir.Expressions.Push(expression))
		}
		if len(fields) == 0 {
			return ctx.unitExpression(r)
		}
		return value(
			hir.Tuple{Fields: fields},
			ctx.Arena.Hir.Types.Push(hir.TupleType{Types: types}))
	case ast.Conditional:
		return ctx.resolveConditional(state, envId, v, r)
	case ast.Match:
		return ctx.resolveMatch(state, envId, v, r)
	case ast.Block:
		return ctx.resolveBlock(state, envId, v, r)
	case ast.Loop:
		body := ctx.ResolveExpression(state, envId, v.Body)
		bodyId := ctx.Arena.Hir.Expressions.Push(body)
		return value(hir.Loop{Body: bodyId}, ctx.Constants.UnitType)
	case ast.Break:
		result := ctx.ResolveExpression(state, envId, v.Result)
		ctx.RequireSubtypeRelationship(state, result.Range, result.Type, ctx.Constants.UnitType)
		resultId := ctx.Arena.Hir.Expressions.Push(result)
		// A break never produces a value, so it unifies freely.
		return value(hir.Break{Result: resultId}, ctx.Constants.ErrorType)
	case ast.Continue:
		return value(hir.Continue{}, ctx.Constants.ErrorType)
	case ast.Let:
		return ctx.resolveLet(state, envId, v, r)
	case ast.LocalAlias:
		aliased := ctx.ResolveType(state, envId, v.Type)
		ctx.bindType(envId, v.Name, aliased.Id)
		return ctx.unitExpression(r)
	case ast.Ascription:
		expression := ctx.ResolveExpression(state, envId, v.Expression)
		ascribed := ctx.ResolveType(state, envId, v.Type)
		ctx.RequireSubtypeRelationship(state, expression.Range, expression.Type, ascribed.Id)
		return expression
	case ast.Ret:
		result := ctx.ResolveExpression(state, envId, v.Result)
		if ctx.ReturnType != nil {
			ctx.RequireSubtypeRelationship(
				state, result.Range, result.Type, ctx.ReturnType.Id)
		}
		resultId := ctx.Arena.Hir.Expressions.Push(result)
		return value(hir.Ret{Result: resultId}, ctx.Constants.ErrorType)
	case ast.Sizeof:
		inspected := ctx.ResolveType(state, envId, v.Type)
		return value(
			hir.Sizeof{Inspected: inspected},
			ctx.freshIntegralTypeVariable(state, r).Id)
	case ast.Addressof:
		return ctx.resolveAddressof(state, envId, v, r)
	case ast.Deref:
		return ctx.resolveDereference(state, envId, v, r)
	case ast.Defer:
		// The inner expression's type is unconstrained.
		effect := ctx.ResolveExpression(state, envId, v.Expression)
		effectId := ctx.Arena.Hir.Expressions.Push(effect)
		return value(hir.Defer{Effect: effectId}, ctx.Constants.UnitType)
	case ast.FunctionCall:
		return ctx.resolveFunctionCall(state, envId, v, r)
	case ast.StructInitializer:
		return ctx.resolveStructInitializer(state, envId, v, r)
	case ast.InfixCall:
		// Operators are resolved once concept solving exists.
		ctx.ResolveExpression(state, envId, v.Left)
		ctx.ResolveExpression(state, envId, v.Right)
		ctx.error(r, "Infix calls are not supported yet")
		return ctx.errorExpression(r)
	case ast.StructField:
		return ctx.resolveStructFieldAccess(state, envId, v, r)
	case ast.TupleField:
		return ctx.resolveTupleFieldAccess(state, envId, v, r)
	case ast.ArrayIndex:
		return ctx.resolveArrayIndex(state, envId, v, r)
	case ast.ErrorExpression:
		return ctx.errorExpression(r)
	default:
		ctx.error(r, "Unsupported expression")
		return ctx.errorExpression(r)
	}
}

func (ctx *Context) resolveArrayLiteral(
	state *InferenceState, envId hir.EnvironmentId, v ast.Array, r lsp.Range,
) hir.Expression {
	element := ctx.freshGeneralTypeVariable(state, r)

	var elements []hir.ExpressionId
	for _, elementId := range v.Elements {
		expression := ctx.ResolveExpression(state, envId, elementId)
		ctx.RequireSubtypeRelationship(state, expression.Range, expression.Type, element.Id)
		elements = append(elements, ctx.Arena.Hir.Expressions.Push(expression))
	}

	length := ctx.Arena.Hir.Expressions.Push(hir.Expression{
		Variant: hir.Integer{Value: uint64(len(elements))},
		Type:    ctx.Constants.U64Type,
		Kind:    hir.ValueExpression,
		Range:   r,
	})
	return hir.Expression{
		Variant: hir.ArrayLiteral{Elements: elements},
		Type:    ctx.Arena.Hir.Types.Push(hir.ArrayType{Element: element, Length: length}),
		Kind:    hir.ValueExpression,
		Range:   r,
	}
}

// resolveConditional types an if-expression. While-sourced
// conditionals come from loop desugaring: their branches are effects,
// so branch types are not unified. An if without an explicit else is
// a unit statement.
func (ctx *Context) resolveConditional(
	state *InferenceState, envId hir.EnvironmentId, v ast.Conditional, r lsp.Range,
) hir.Expression {
	condition := ctx.ResolveExpression(state, envId, v.Condition)
	ctx.RequireSubtypeRelationship(
		state, condition.Range, condition.Type, ctx.Constants.BooleanType)

	trueBranch := ctx.ResolveExpression(state, envId, v.TrueBranch)
	falseBranch := ctx.ResolveExpression(state, envId, v.FalseBranch)

	resultType := ctx.Constants.UnitType
	switch {
	case v.Source == ast.ConditionalWhile:
		// Loop body effect; branch types are free.
	case v.HasExplicitFalseBranch:
		result := ctx.freshGeneralTypeVariable(state, r)
		ctx.RequireSubtypeRelationship(state, trueBranch.Range, trueBranch.Type, result.Id)
		ctx.RequireSubtypeRelationship(state, falseBranch.Range, falseBranch.Type, result.Id)
		resultType = result.Id
	default:
		ctx.RequireSubtypeRelationship(
			state, trueBranch.Range, trueBranch.Type, ctx.Constants.UnitType)
	}

	return hir.Expression{
		Variant: hir.Conditional{
			Condition:   ctx.Arena.Hir.Expressions.Push(condition),
			TrueBranch:  ctx.Arena.Hir.Expressions.Push(trueBranch),
			FalseBranch: ctx.Arena.Hir.Expressions.Push(falseBranch),
		},
		Type:  resultType,
		Kind:  hir.ValueExpression,
		Range: r,
	}
}

func (ctx *Context) resolveMatch(
	state *InferenceState, envId hir.EnvironmentId, v ast.Match, r lsp.Range,
) hir.Expression {
	scrutinee := ctx.ResolveExpression(state, envId, v.Scrutinee)
	result := ctx.freshGeneralTypeVariable(state, r)

	var arms []hir.MatchArm
	for _, arm := range v.Arms {
		scope := ctx.pushScope(envId)
		pattern := ctx.ResolvePattern(state, scope, arm.Pattern)
		ctx.RequireSubtypeRelationship(state, scrutinee.Range, scrutinee.Type, pattern.Type)
		expression := ctx.ResolveExpression(state, scope, arm.Expression)
		ctx.RequireSubtypeRelationship(state, expression.Range, expression.Type, result.Id)
		ctx.popScope(scope)
		arms = append(arms, hir.MatchArm{
			Pattern:    ctx.Arena.Hir.Patterns.Push(pattern),
			Expression: ctx.Arena.Hir.Expressions.Push(expression),
		})
	}

	return hir.Expression{
		Variant: hir.Match{
			Scrutinee: ctx.Arena.Hir.Expressions.Push(scrutinee),
			Arms:      arms,
		},
		Type:  result.Id,
		Kind:  hir.ValueExpression,
		Range: r,
	}
}

// resolveBlock opens a child scope; every side effect is unified with
// unit, and the block's type is the type of the trailing result.
func (ctx *Context) resolveBlock(
	state *InferenceState, envId hir.EnvironmentId, v ast.Block, r lsp.Range,
) hir.Expression {
	scope := ctx.pushScope(envId)

	var effects []hir.ExpressionId
	for _, effectId := range v.Effects {
		effect := ctx.ResolveExpression(state, scope, effectId)
		ctx.RequireSubtypeRelationship(state, effect.Range, effect.Type, ctx.Constants.UnitType)
		effects = append(effects, ctx.Arena.Hir.Expressions.Push(effect))
	}

	result := ctx.ResolveExpression(state, scope, v.Result)
	resultType := result.Type
	ctx.popScope(scope)

	return hir.Expression{
		Variant: hir.Block{
			Effects: effects,
			Result:  ctx.Arena.Hir.Expressions.Push(result),
		},
		Type:  resultType,
		Kind:  hir.ValueExpression,
		Range: r,
	}
}

// resolveLet unifies the pattern, the optional ascribed type, and the
// initializer. A type hint is attached when no type was written.
func (ctx *Context) resolveLet(
	state *InferenceState, envId hir.EnvironmentId, v ast.Let, r lsp.Range,
) hir.Expression {
	pattern := ctx.ResolvePattern(state, envId, v.Pattern)

	var letType hir.Type
	if v.Type != nil {
		letType = ctx.ResolveType(state, envId, *v.Type)
	} else {
		letType = ctx.freshGeneralTypeVariable(state, pattern.Range)
	}

	initializer := ctx.ResolveExpression(state, envId, v.Initializer)

	ctx.RequireSubtypeRelationship(state, pattern.Range, pattern.Type, letType.Id)
	ctx.RequireSubtypeRelationship(state, initializer.Range, initializer.Type, letType.Id)

	if v.Type == nil {
		ctx.DB.AddTypeHint(ctx.DocId, pattern.Range.Stop, pattern.Type)
	}

	return hir.Expression{
		Variant: hir.Let{
			Pattern:     ctx.Arena.Hir.Patterns.Push(pattern),
			Type:        letType,
			Initializer: ctx.Arena.Hir.Expressions.Push(initializer),
		},
		Type:  ctx.Constants.UnitType,
		Kind:  hir.ValueExpression,
		Range: r,
	}
}

// resolveAddressof checks that the operand is a place expression
// before building the reference type.
func (ctx *Context) resolveAddressof(
	state *InferenceState, envId hir.EnvironmentId, v ast.Addressof, r lsp.Range,
) hir.Expression {
	place := ctx.ResolveExpression(state, envId, v.Expression)
	mut := ctx.resolveMutability(v.Mutability)

	if place.Kind != hir.PlaceExpression {
		ctx.error(place.Range,
			"This expression does not identify a place in memory, "+
				"so its address can not be taken")
		return ctx.errorExpression(r)
	}

	referenced := hir.Type{Id: place.Type, Range: r}
	return hir.Expression{
		Variant: hir.Addressof{
			Mut:   mut,
			Place: ctx.Arena.Hir.Expressions.Push(place),
		},
		Type: ctx.Arena.Hir.Types.Push(hir.ReferenceType{
			Referenced: referenced,
			Mut:        mut,
		}),
		Kind:  hir.ValueExpression,
		Range: r,
	}
}

// resolveDereference requires the operand to be some reference
// &[mut] T and produces a place expression of type T.
func (ctx *Context) resolveDereference(
	state *InferenceState, envId hir.EnvironmentId, v ast.Deref, r lsp.Range,
) hir.Expression {
	referenced := ctx.freshGeneralTypeVariable(state, r)
	referenceMut := ctx.freshMutabilityVariable(state, r)
	referenceType := ctx.Arena.Hir.Types.Push(hir.ReferenceType{
		Referenced: referenced,
		Mut:        referenceMut,
	})

	reference := ctx.ResolveExpression(state, envId, v.Expression)
	ctx.RequireSubtypeRelationship(state, reference.Range, reference.Type, referenceType)

	return hir.Expression{
		Variant: hir.Dereference{
			Reference: ctx.Arena.Hir.Expressions.Push(reference),
		},
		Type:  referenced.Id,
		Kind:  hir.PlaceExpression,
		Range: r,
	}
}

// resolvePathExpression resolves a name used as a value: a local
// variable read, a function reference, or a unit constructor.
func (ctx *Context) resolvePathExpression(
	state *InferenceState, envId hir.EnvironmentId, path ast.Path, r lsp.Range,
) hir.Expression {
	symbolId := ctx.ResolvePath(state, envId, path)
	symbol := ctx.Arena.Symbols.Get(symbolId)
	name := path.Head().Name

	switch variant := symbol.Variant.(type) {
	case db.LocalVariableSymbol:
		local := ctx.Arena.Hir.LocalVariables.Get(variant.Id)
		return hir.Expression{
			Variant: hir.VariableReference{Id: variant.Id, Name: name},
			Type:    local.Type,
			Kind:    hir.PlaceExpression,
			Range:   r,
		}
	case db.FunctionSymbol:
		signature := ctx.resolveFunctionSignature(variant.Id)
		if signature == nil {
			return ctx.errorExpression(r)
		}
		return hir.Expression{
			Variant: hir.FunctionReference{Id: variant.Id, Name: name},
			Type:    signature.FunctionType.Id,
			Kind:    hir.ValueExpression,
			Range:   r,
		}
	case db.ConstructorSymbol:
		return ctx.resolveConstructorReference(variant.Id, name, r)
	case db.ErrorSymbol:
		return ctx.errorExpression(r)
	default:
		message := "Expected a value, but '" + ctx.pool().Get(symbol.Name.Id) +
			"' is " + db.DescribeSymbolKind(symbol.Variant)
		ctx.error(r, message)
		return ctx.errorExpression(r)
	}
}

// resolveConstructorReference produces the enum value for a unit
// constructor, or a function-typed reference for a tuple constructor.
func (ctx *Context) resolveConstructorReference(
	ctorId hir.ConstructorId, name lsp.Name, r lsp.Range,
) hir.Expression {
	ctor := ctx.Arena.Hir.Constructors.Get(ctorId)
	enumeration := ctx.Arena.Hir.Enumerations.Get(ctor.Enumeration)

	if len(ctor.Fields) != 0 {
		ctx.error(r, "Constructor '"+ctx.pool().Get(ctor.Name.Id)+
			"' has named fields and must be used with an initializer")
		return ctx.errorExpression(r)
	}

	typeId := enumeration.TypeId
	if len(ctor.TupleTypes) != 0 {
		typeId = ctx.Arena.Hir.Types.Push(hir.FunctionType{
			Parameters: ctor.TupleTypes,
			Return:     hir.Type{Id: enumeration.TypeId, Range: r},
		})
	}
	return hir.Expression{
		Variant: hir.ConstructorReference{Id: ctorId, Name: name},
		Type:    typeId,
		Kind:    hir.ValueExpression,
		Range:   r,
	}
}

// resolveFunctionCall handles both direct invocations of a named
// function and indirect invocations through a function-typed value.
func (ctx *Context) resolveFunctionCall(
	state *InferenceState, envId hir.EnvironmentId, v ast.FunctionCall, r lsp.Range,
) hir.Expression {
	var arguments []hir.Expression
	resolveArguments := func() []hir.ExpressionId {
		var ids []hir.ExpressionId
		for _, argument := range v.Arguments {
			expression := ctx.ResolveExpression(state, envId, argument)
			arguments = append(arguments, expression)
			ids = append(ids, ctx.Arena.Hir.Expressions.Push(expression))
		}
		return ids
	}

	// A path naming a function becomes a direct invocation.
	invocableNode := ctx.Arena.Ast.Expressions.Get(v.Invocable)
	if pathExpression, ok := invocableNode.Variant.(ast.PathExpression); ok {
		symbolId := ctx.ResolvePath(state, envId, pathExpression.Path)
		if functionSymbol, ok := ctx.Arena.Symbols.Get(symbolId).Variant.(db.FunctionSymbol); ok {
			return ctx.resolveDirectInvocation(
				state, envId, functionSymbol.Id, pathExpression.Path.Head().Name, v, r)
		}
		invocable := ctx.symbolValueExpression(symbolId, pathExpression.Path, invocableNode.Range)
		return ctx.resolveIndirectInvocation(state, invocable, resolveArguments(), arguments, r)
	}

	invocable := ctx.ResolveExpression(state, envId, v.Invocable)
	return ctx.resolveIndirectInvocation(state, invocable, resolveArguments(), arguments, r)
}

// symbolValueExpression re-reads an already resolved symbol as a value
// expression, without re-resolving the path.
func (ctx *Context) symbolValueExpression(
	symbolId db.SymbolId, path ast.Path, r lsp.Range,
) hir.Expression {
	symbol := ctx.Arena.Symbols.Get(symbolId)
	name := path.Head().Name
	switch variant := symbol.Variant.(type) {
	case db.LocalVariableSymbol:
		local := ctx.Arena.Hir.LocalVariables.Get(variant.Id)
		return hir.Expression{
			Variant: hir.VariableReference{Id: variant.Id, Name: name},
			Type:    local.Type,
			Kind:    hir.PlaceExpression,
			Range:   r,
		}
	case db.ConstructorSymbol:
		return ctx.resolveConstructorReference(variant.Id, name, r)
	case db.ErrorSymbol:
		return ctx.errorExpression(r)
	default:
		message := "Expected a value, but '" + ctx.pool().Get(symbol.Name.Id) +
			"' is " + db.DescribeSymbolKind(symbol.Variant)
		ctx.error(r, message)
		return ctx.errorExpression(r)
	}
}

func (ctx *Context) resolveDirectInvocation(
	state *InferenceState,
	envId hir.EnvironmentId,
	functionId hir.FunctionId,
	name lsp.Name,
	v ast.FunctionCall,
	r lsp.Range,
) hir.Expression {
	signature := ctx.resolveFunctionSignature(functionId)
	if signature == nil {
		return ctx.errorExpression(r)
	}

	if len(v.Arguments) != len(signature.Parameters) {
		message := "Wrong argument count: expected " +
			strconv.Itoa(len(signature.Parameters)) + ", got " +
			strconv.Itoa(len(v.Arguments))
		ctx.error(r, message)
		return ctx.errorExpression(r)
	}

	var arguments []hir.ExpressionId
	for i, argumentId := range v.Arguments {
		argument := ctx.ResolveExpression(state, envId, argumentId)
		parameter := signature.Parameters[i]
		ctx.RequireSubtypeRelationship(state, argument.Range, argument.Type, parameter.Type.Id)
		ctx.DB.AddParamHint(ctx.DocId, argument.Range.Start, parameter.Pattern)
		ctx.DB.AddSignatureHelp(ctx.DocId, argument.Range, functionId, uint32(i))
		arguments = append(arguments, ctx.Arena.Hir.Expressions.Push(argument))
	}

	return hir.Expression{
		Variant: hir.DirectInvocation{
			Function:  functionId,
			Name:      name,
			Arguments: arguments,
		},
		Type:  signature.ReturnType.Id,
		Kind:  hir.ValueExpression,
		Range: r,
	}
}

func (ctx *Context) resolveIndirectInvocation(
	state *InferenceState,
	invocable hir.Expression,
	argumentIds []hir.ExpressionId,
	arguments []hir.Expression,
	r lsp.Range,
) hir.Expression {
	// An invocable that already failed to resolve poisons the whole
	// call; the arguments were still resolved for their diagnostics.
	if _, isError := invocable.Variant.(hir.Error); isError {
		return ctx.errorExpression(r)
	}

	result := ctx.freshGeneralTypeVariable(state, r)

	var parameters []hir.Type
	for _, argument := range arguments {
		parameters = append(parameters, hir.Type{Id: argument.Type, Range: argument.Range})
	}
	expectedType := ctx.Arena.Hir.Types.Push(hir.FunctionType{
		Parameters: parameters,
		Return:     result,
	})
	ctx.RequireSubtypeRelationship(state, invocable.Range, invocable.Type, expectedType)

	return hir.Expression{
		Variant: hir.IndirectInvocation{
			Function:  ctx.Arena.Hir.Expressions.Push(invocable),
			Arguments: argumentIds,
		},
		Type:  result.Id,
		Kind:  hir.ValueExpression,
		Range: r,
	}
}

// resolveStructInitializer checks the path names a structure, resolves
// every field initializer against the declared field type, and offers
// a code action for missing fields.
func (ctx *Context) resolveStructInitializer(
	state *InferenceState, envId hir.EnvironmentId, v ast.StructInitializer, r lsp.Range,
) hir.Expression {
	symbolId := ctx.ResolvePath(state, envId, v.Path)
	symbol := ctx.Arena.Symbols.Get(symbolId)

	structSymbol, ok := symbol.Variant.(db.StructureSymbol)
	if !ok {
		if _, isError := symbol.Variant.(db.ErrorSymbol); !isError {
			message := "Expected a structure, but '" + ctx.pool().Get(symbol.Name.Id) +
				"' is " + db.DescribeSymbolKind(symbol.Variant)
			ctx.error(v.Path.Range, message)
		}
		for _, field := range v.Fields {
			ctx.ResolveExpression(state, envId, field.Expression)
		}
		return ctx.errorExpression(r)
	}

	ctx.resolveStructure(structSymbol.Id)
	structure := ctx.Arena.Hir.Structures.Get(structSymbol.Id)

	initialized := make(map[uint32]bool)
	var fields []hir.ExpressionId
	var finalFieldEnd *lsp.Position

	for _, field := range v.Fields {
		expression := ctx.ResolveExpression(state, envId, field.Expression)
		end := expression.Range.Stop
		finalFieldEnd = &end

		fieldId, ok := ctx.findStructureField(structure, field.Name)
		if !ok {
			message := "'" + ctx.pool().Get(structure.Name.Id) +
				"' has no field '" + ctx.pool().Get(field.Name.Id) + "'"
			ctx.error(field.Name.Range, message)
			continue
		}
		if initialized[uint32(fieldId)] {
			ctx.error(field.Name.Range,
				"Field '"+ctx.pool().Get(field.Name.Id)+"' is initialized twice")
			continue
		}
		initialized[uint32(fieldId)] = true

		fieldInfo := ctx.Arena.Hir.Fields.Get(fieldId)
		ctx.RequireSubtypeRelationship(
			state, expression.Range, expression.Type, fieldInfo.Type.Id)
		fieldSymbol := ctx.fieldSymbol(structure.AssociatedEnvId, field.Name)
		if fieldSymbol != nil {
			ctx.DB.AddReference(ctx.DocId, lsp.Write(field.Name.Range), *fieldSymbol)
		}
		fields = append(fields, ctx.Arena.Hir.Expressions.Push(expression))
	}

	var missing []hir.FieldId
	for _, fieldId := range structure.Fields {
		if !initialized[uint32(fieldId)] {
			missing = append(missing, fieldId)
		}
	}
	if len(missing) != 0 {
		ctx.error(r, "Struct initializer for '"+ctx.pool().Get(structure.Name.Id)+
			"' is missing fields")
		ctx.DB.AddAction(ctx.DocId, r, db.ActionFillInStructInit{
			Fields:        missing,
			FinalFieldEnd: finalFieldEnd,
		})
	}

	return hir.Expression{
		Variant: hir.Initializer{Structure: structSymbol.Id, Fields: fields},
		Type:    structure.TypeId,
		Kind:    hir.ValueExpression,
		Range:   r,
	}
}

func (ctx *Context) findStructureField(
	structure *hir.StructureInfo, name lsp.Name,
) (hir.FieldId, bool) {
	for _, fieldId := range structure.Fields {
		if ctx.Arena.Hir.Fields.Get(fieldId).Name.Id == name.Id {
			return fieldId, true
		}
	}
	return 0, false
}

func (ctx *Context) fieldSymbol(envId hir.EnvironmentId, name lsp.Name) *db.SymbolId {
	if symbolId, ok := ctx.Arena.Environments.Get(envId).Map[name.Id]; ok {
		return &symbolId
	}
	return nil
}

// resolveStructFieldAccess types `base.name`. The base type must be
// known by the time the access is resolved.
func (ctx *Context) resolveStructFieldAccess(
	state *InferenceState, envId hir.EnvironmentId, v ast.StructField, r lsp.Range,
) hir.Expression {
	base := ctx.ResolveExpression(state, envId, v.Base)
	ctx.flattenType(state, base.Type)

	ctx.DB.AddCompletion(ctx.DocId, v.Name, db.FieldCompletion{TypeId: base.Type})

	structureType, ok := (*ctx.Arena.Hir.Types.Get(base.Type)).(hir.StructureType)
	if !ok {
		if _, isError := (*ctx.Arena.Hir.Types.Get(base.Type)).(hir.Error); !isError {
			ctx.error(r, "'"+ctx.typeString(base.Type)+"' has no field '"+
				ctx.pool().Get(v.Name.Id)+"'")
		}
		return ctx.errorExpression(r)
	}

	ctx.resolveStructure(structureType.Id)
	structure := ctx.Arena.Hir.Structures.Get(structureType.Id)
	fieldId, ok := ctx.findStructureField(structure, v.Name)
	if !ok {
		ctx.error(v.Name.Range, "'"+ctx.pool().Get(structure.Name.Id)+
			"' has no field '"+ctx.pool().Get(v.Name.Id)+"'")
		return ctx.errorExpression(r)
	}

	if fieldSymbol := ctx.fieldSymbol(structure.AssociatedEnvId, v.Name); fieldSymbol != nil {
		ctx.Arena.Symbols.Get(*fieldSymbol).UseCount++
		ctx.DB.AddReference(ctx.DocId, lsp.Read(v.Name.Range), *fieldSymbol)
	}

	return hir.Expression{
		Variant: hir.StructFieldAccess{
			Base:  ctx.Arena.Hir.Expressions.Push(base),
			Name:  v.Name,
			Field: fieldId,
		},
		Type:  ctx.Arena.Hir.Fields.Get(fieldId).Type.Id,
		Kind:  base.Kind,
		Range: r,
	}
}

func (ctx *Context) resolveTupleFieldAccess(
	state *InferenceState, envId hir.EnvironmentId, v ast.TupleField, r lsp.Range,
) hir.Expression {
	base := ctx.ResolveExpression(state, envId, v.Base)
	ctx.flattenType(state, base.Type)

	tupleType, ok := (*ctx.Arena.Hir.Types.Get(base.Type)).(hir.TupleType)
	if !ok {
		if _, isError := (*ctx.Arena.Hir.Types.Get(base.Type)).(hir.Error); !isError {
			ctx.error(r, "'"+ctx.typeString(base.Type)+"' is not a tuple")
		}
		return ctx.errorExpression(r)
	}
	if int(v.Index) >= len(tupleType.Types) {
		ctx.error(v.IndexRange, "Tuple field index out of range")
		return ctx.errorExpression(r)
	}

	return hir.Expression{
		Variant: hir.TupleFieldAccess{
			Base:  ctx.Arena.Hir.Expressions.Push(base),
			Index: v.Index,
		},
		Type:  tupleType.Types[v.Index].Id,
		Kind:  base.Kind,
		Range: r,
	}
}

func (ctx *Context) resolveArrayIndex(
	state *InferenceState, envId hir.EnvironmentId, v ast.ArrayIndex, r lsp.Range,
) hir.Expression {
	base := ctx.ResolveExpression(state, envId, v.Base)
	index := ctx.ResolveExpression(state, envId, v.Index)
	ctx.RequireSubtypeRelationship(state, index.Range, index.Type, ctx.Constants.U64Type)
	ctx.flattenType(state, base.Type)

	var elementType hir.TypeId
	switch baseType := (*ctx.Arena.Hir.Types.Get(base.Type)).(type) {
	case hir.ArrayType:
		elementType = baseType.Element.Id
	case hir.SliceType:
		elementType = baseType.Element.Id
	case hir.Error:
		elementType = ctx.Constants.ErrorType
	default:
		ctx.error(r, "'"+ctx.typeString(base.Type)+"' can not be indexed")
		return ctx.errorExpression(r)
	}

	return hir.Expression{
		Variant: hir.ArrayIndex{
			Base:  ctx.Arena.Hir.Expressions.Push(base),
			Index: ctx.Arena.Hir.Expressions.Push(index),
		},
		Type:  elementType,
		Kind:  base.Kind,
		Range: r,
	}
}
