package desugar

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/cst"
)

func (ctx *Context) typ(id cst.TypeId) ast.TypeId {
	node := ctx.Cst.Types.Get(id)
	variant := ctx.typeVariant(*node)
	return ctx.Ast.Types.Push(ast.Type{Variant: variant, Range: node.Range})
}

func (ctx *Context) types(ids []cst.TypeId) []ast.TypeId {
	var result []ast.TypeId
	for _, id := range ids {
		result = append(result, ctx.typ(id))
	}
	return result
}

func (ctx *Context) typeVariant(node cst.Type) ast.TypeVariant {
	switch v := node.Variant.(type) {
	case cst.BuiltinTypename:
		return ast.BuiltinTypename{Kind: ast.BuiltinKind(v.Kind)}
	case cst.ParenType:
		return ctx.typeVariant(*ctx.Cst.Types.Get(v.Type))
	case cst.TupleType:
		return ast.TupleType{Fields: ctx.types(v.Fields)}
	case cst.ArrayType:
		return ast.ArrayType{Element: ctx.typ(v.Element), Length: ctx.expression(v.Length)}
	case cst.SliceType:
		return ast.SliceType{Element: ctx.typ(v.Element)}
	case cst.ReferenceType:
		return ast.ReferenceType{
			Mutability: ctx.mutability(v.Mutability, node.Range),
			Element:    ctx.typ(v.Element),
		}
	case cst.PointerType:
		return ast.PointerType{
			Mutability: ctx.mutability(v.Mutability, node.Range),
			Element:    ctx.typ(v.Element),
		}
	case cst.FunctionType:
		return ast.FunctionType{
			Parameters: ctx.types(v.Parameters),
			Return:     ctx.typ(v.Return),
		}
	case cst.TypeofType:
		return ast.TypeofType{Expression: ctx.expression(v.Expression)}
	case cst.SelfType:
		return ast.SelfType{}
	case cst.WildcardType:
		return ast.WildcardType{}
	case cst.PathType:
		return ast.PathType{Path: ctx.path(v.Path)}
	case cst.ErrorType:
		return ast.ErrorType{}
	default:
		ctx.error(node.Range, "This type can not be desugared yet")
		return ast.ErrorType{}
	}
}
