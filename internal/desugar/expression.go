package desugar

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/cst"
	"github.com/kieli-lang/kieli/internal/lsp"
)

func (ctx *Context) push(variant ast.ExpressionVariant, r lsp.Range) ast.ExpressionId {
	return ctx.Ast.Expressions.Push(ast.Expression{Variant: variant, Range: r})
}

func (ctx *Context) unitValue(r lsp.Range) ast.ExpressionId {
	return ctx.push(ast.Tuple{}, r)
}

func (ctx *Context) breakExpression(r lsp.Range) ast.ExpressionId {
	return ctx.push(ast.Break{Result: ctx.unitValue(r)}, r)
}

func (ctx *Context) wildcardPattern(r lsp.Range) ast.PatternId {
	return ctx.Ast.Patterns.Push(ast.Pattern{Variant: ast.WildcardPattern{}, Range: r})
}

// expression lowers one CST expression to the AST.
func (ctx *Context) expression(id cst.ExpressionId) ast.ExpressionId {
	node := ctx.Cst.Expressions.Get(id)
	return ctx.push(ctx.expressionVariant(id, *node), node.Range)
}

func (ctx *Context) expressions(ids []cst.ExpressionId) []ast.ExpressionId {
	var result []ast.ExpressionId
	for _, id := range ids {
		result = append(result, ctx.expression(id))
	}
	return result
}

func (ctx *Context) expressionVariant(
	id cst.ExpressionId, node cst.Expression,
) ast.ExpressionVariant {
	switch v := node.Variant.(type) {
	case cst.Integer:
		return ast.Integer{Value: v.Value}
	case cst.Floating:
		return ast.Floating{Value: v.Value}
	case cst.Boolean:
		return ast.Boolean{Value: v.Value}
	case cst.Character:
		return ast.Character{Value: v.Value}
	case cst.String:
		return ast.String{Value: v.Value}
	case cst.Wildcard:
		return ast.Wildcard{}
	case cst.PathExpression:
		return ast.PathExpression{Path: ctx.path(v.Path)}
	case cst.Paren:
		inner := ctx.Cst.Expressions.Get(v.Expression)
		return ctx.expressionVariant(v.Expression, *inner)
	case cst.Array:
		return ast.Array{Elements: ctx.expressions(v.Elements)}
	case cst.Tuple:
		return ast.Tuple{Fields: ctx.expressions(v.Fields)}
	case cst.Conditional:
		return ctx.conditional(node, v)
	case cst.Match:
		return ctx.match(v)
	case cst.Block:
		return ctx.block(v)
	case cst.WhileLoop:
		return ctx.whileLoop(node, v)
	case cst.Loop:
		return ast.Loop{Body: ctx.expression(v.Body), Source: ast.LoopPlain}
	case cst.ForLoop:
		ctx.error(v.ForRange, "For loops are not supported yet")
		return ast.ErrorExpression{}
	case cst.FunctionCall:
		return ast.FunctionCall{
			Invocable: ctx.expression(v.Invocable),
			Arguments: ctx.expressions(v.Arguments),
		}
	case cst.StructInitializer:
		var fields []ast.FieldInitializer
		for _, field := range v.Fields {
			fields = append(fields, ast.FieldInitializer{
				Name:       field.Name,
				Expression: ctx.expression(field.Expression),
			})
		}
		return ast.StructInitializer{Path: ctx.path(v.Path), Fields: fields}
	case cst.InfixCall:
		return ast.InfixCall{
			Left:  ctx.expression(v.Left),
			Right: ctx.expression(v.Right),
			Op:    v.Op,
		}
	case cst.StructField:
		return ast.StructField{Base: ctx.expression(v.Base), Name: v.Name}
	case cst.TupleField:
		return ast.TupleField{
			Base:       ctx.expression(v.Base),
			Index:      v.Index,
			IndexRange: v.IndexRange,
		}
	case cst.ArrayIndex:
		return ast.ArrayIndex{Base: ctx.expression(v.Base), Index: ctx.expression(v.Index)}
	case cst.Ascription:
		return ast.Ascription{Expression: ctx.expression(v.Expression), Type: ctx.typ(v.Type)}
	case cst.Let:
		variant := ast.Let{
			Pattern:     ctx.pattern(v.Pattern),
			Initializer: ctx.expression(v.Initializer),
		}
		if v.Type != nil {
			letType := ctx.typ(*v.Type)
			variant.Type = &letType
		}
		return variant
	case cst.LocalAlias:
		return ast.LocalAlias{Name: v.Name, Type: ctx.typ(v.Type)}
	case cst.Ret:
		if v.Result != nil {
			return ast.Ret{Result: ctx.expression(*v.Result)}
		}
		return ast.Ret{Result: ctx.unitValue(node.Range)}
	case cst.Break:
		if v.Result != nil {
			return ast.Break{Result: ctx.expression(*v.Result)}
		}
		return ast.Break{Result: ctx.unitValue(node.Range)}
	case cst.Continue:
		return ast.Continue{}
	case cst.Sizeof:
		return ast.Sizeof{Type: ctx.typ(v.Type)}
	case cst.Addressof:
		return ast.Addressof{
			Mutability: ctx.mutability(v.Mutability, v.AmpersandRange),
			Expression: ctx.expression(v.Expression),
		}
	case cst.Deref:
		return ast.Deref{Expression: ctx.expression(v.Expression)}
	case cst.Defer:
		return ast.Defer{Expression: ctx.expression(v.Expression)}
	case cst.ErrorExpression:
		return ast.ErrorExpression{}
	default:
		ctx.error(node.Range, "This expression can not be desugared yet")
		return ast.ErrorExpression{}
	}
}

// conditional handles both plain conditions and if-let:
//
//	if let P = E { T } else { F }   becomes   match E { P -> T; _ -> F }
func (ctx *Context) conditional(node cst.Expression, v cst.Conditional) ast.ExpressionVariant {
	falseBranch := func() ast.ExpressionId {
		if v.FalseBranch != nil {
			return ctx.expression(*v.FalseBranch)
		}
		return ctx.unitValue(node.Range)
	}

	condition := ctx.Cst.Expressions.Get(v.Condition)
	if let, ok := condition.Variant.(cst.Let); ok {
		initializer := ctx.letInitializer(let)
		return ast.Match{
			Scrutinee: initializer,
			Arms: []ast.MatchArm{
				{
					Pattern:    ctx.pattern(let.Pattern),
					Expression: ctx.expression(v.TrueBranch),
				},
				{
					Pattern:    ctx.wildcardPattern(ctx.Cst.Patterns.Get(let.Pattern).Range),
					Expression: falseBranch(),
				},
			},
		}
	}

	desugaredCondition := ctx.expression(v.Condition)
	if _, ok := condition.Variant.(cst.Boolean); ok {
		ctx.addDiagnostic(lsp.Information(condition.Range, "Constant condition"))
	}
	return ast.Conditional{
		Condition:              desugaredCondition,
		TrueBranch:             ctx.expression(v.TrueBranch),
		FalseBranch:            falseBranch(),
		Source:                 ast.ConditionalIf,
		HasExplicitFalseBranch: v.FalseBranch != nil,
	}
}

// letInitializer lowers a let condition's initializer, attaching the
// declared type as an ascription when present.
func (ctx *Context) letInitializer(let cst.Let) ast.ExpressionId {
	initializer := ctx.expression(let.Initializer)
	if let.Type == nil {
		return initializer
	}
	return ctx.push(ast.Ascription{
		Expression: initializer,
		Type:       ctx.typ(*let.Type),
	}, ctx.Cst.Expressions.Get(let.Initializer).Range)
}

func (ctx *Context) match(v cst.Match) ast.ExpressionVariant {
	variant := ast.Match{Scrutinee: ctx.expression(v.Scrutinee)}
	for _, arm := range v.Arms {
		variant.Arms = append(variant.Arms, ast.MatchArm{
			Pattern:    ctx.pattern(arm.Pattern),
			Expression: ctx.expression(arm.Handler),
		})
	}
	return variant
}

// block inserts a synthetic unit result when the block has no trailing
// expression; its range is the closing brace.
func (ctx *Context) block(v cst.Block) ast.ExpressionVariant {
	var effects []ast.ExpressionId
	for _, effect := range v.Effects {
		effects = append(effects, ctx.expression(effect.Expression))
	}

	var result ast.ExpressionId
	if v.Result != nil {
		result = ctx.expression(*v.Result)
	} else {
		result = ctx.unitValue(v.CloseBraceRange)
	}

	return ast.Block{Effects: effects, Result: result}
}

// whileLoop performs the two loop rewrites:
//
//	while let P = E { B }   becomes   loop { match E { P -> B; _ -> break } }
//	while C { B }           becomes   loop { if C { B } else { break } }
func (ctx *Context) whileLoop(node cst.Expression, v cst.WhileLoop) ast.ExpressionVariant {
	bodyRange := ctx.Cst.Expressions.Get(v.Body).Range

	condition := ctx.Cst.Expressions.Get(v.Condition)
	if let, ok := condition.Variant.(cst.Let); ok {
		match := ctx.push(ast.Match{
			Scrutinee: ctx.letInitializer(let),
			Arms: []ast.MatchArm{
				{
					Pattern:    ctx.pattern(let.Pattern),
					Expression: ctx.expression(v.Body),
				},
				{
					Pattern:    ctx.wildcardPattern(node.Range),
					Expression: ctx.breakExpression(node.Range),
				},
			},
		}, bodyRange)
		return ast.Loop{Body: match, Source: ast.LoopWhile}
	}

	desugaredCondition := ctx.expression(v.Condition)
	if boolean, ok := condition.Variant.(cst.Boolean); ok {
		ctx.addDiagnostic(constantLoopConditionDiagnostic(condition.Range, boolean.Value))
	}
	conditional := ctx.push(ast.Conditional{
		Condition:              desugaredCondition,
		TrueBranch:             ctx.expression(v.Body),
		FalseBranch:            ctx.breakExpression(node.Range),
		Source:                 ast.ConditionalWhile,
		HasExplicitFalseBranch: true,
	}, bodyRange)
	return ast.Loop{Body: conditional, Source: ast.LoopWhile}
}

func constantLoopConditionDiagnostic(r lsp.Range, constant bool) lsp.Diagnostic {
	if constant {
		return lsp.Information(r, "Use 'loop' instead of 'while true'")
	}
	return lsp.Warning(r, "Loop will never run")
}
