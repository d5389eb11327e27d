package resolver

import (
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

type unifyGoal uint8

const (
	goalEquality unifyGoal = iota
	goalSubtype
)

type unifyResult uint8

const (
	unifyOk unifyResult = iota
	unifyMismatch
	unifyRecursive
)

type unifier struct {
	ctx   *Context
	state *InferenceState
	goal  unifyGoal
}

// RequireSubtypeRelationship requires that sub is equal to or a
// subtype of super, reporting a diagnostic at r on failure. The
// subtype relation differs from equality only in mutability: &mut T
// may stand in for &T.
func (ctx *Context) RequireSubtypeRelationship(
	state *InferenceState, r lsp.Range, sub, super hir.TypeId,
) {
	ctx.requireRelationship(state, r, sub, super, goalSubtype)
}

// RequireEqualityRelationship requires that sub and super unify
// exactly.
func (ctx *Context) RequireEqualityRelationship(
	state *InferenceState, r lsp.Range, sub, super hir.TypeId,
) {
	ctx.requireRelationship(state, r, sub, super, goalEquality)
}

func (ctx *Context) requireRelationship(
	state *InferenceState, r lsp.Range, sub, super hir.TypeId, goal unifyGoal,
) {
	u := unifier{ctx: ctx, state: state, goal: goal}
	result := u.types(sub, super)
	if result == unifyOk {
		return
	}
	description := "Could not unify"
	if result == unifyRecursive {
		description = "Recursive type variable solution"
	}
	message := description + " " + ctx.typeString(sub) + " ~> " + ctx.typeString(super)
	ctx.error(r, message)
}

// solution binds a variable after the occurs check. A positive occurs
// check binds the variable to the error type and reports recursion.
func (u *unifier) solution(variableId hir.TypeVariableId, solutionId hir.TypeId, r lsp.Range) unifyResult {
	solution := *u.ctx.Arena.Hir.Types.Get(solutionId)
	if u.ctx.occursCheck(variableId, solution) {
		u.ctx.setTypeSolution(u.state, variableId, hir.Error{}, r)
		return unifyRecursive
	}
	representative := u.state.TypeSet.Find(uint32(variableId))
	if u.state.TypeVariables[representative].Kind == hir.IntegralVariable {
		if result := integralSolution(solution); result != unifyOk {
			return result
		}
	}
	u.ctx.flattenType(u.state, solutionId)
	u.ctx.setTypeSolution(u.state, variableId, *u.ctx.Arena.Hir.Types.Get(solutionId), r)
	return unifyOk
}

// integralSolution checks that a solution for an integral variable is
// an integer type. Error and variables pass through.
func integralSolution(solution hir.TypeVariant) unifyResult {
	switch solution.(type) {
	case hir.IntegerType, hir.Error, hir.TypeVariable:
		return unifyOk
	default:
		return unifyMismatch
	}
}

func (u *unifier) types(subId, superId hir.TypeId) unifyResult {
	u.ctx.flattenType(u.state, subId)
	u.ctx.flattenType(u.state, superId)

	sub := *u.ctx.Arena.Hir.Types.Get(subId)
	super := *u.ctx.Arena.Hir.Types.Get(superId)

	// Variable cases first: union two variables, or solve one side.
	if subVariable, ok := sub.(hir.TypeVariable); ok {
		if superVariable, ok := super.(hir.TypeVariable); ok {
			if subVariable.Id != superVariable.Id {
				u.unionTypeVariables(subVariable.Id, superVariable.Id)
			}
			return unifyOk
		}
		return u.solution(subVariable.Id, superId, u.state.TypeVariables[subVariable.Id].Origin)
	}
	if superVariable, ok := super.(hir.TypeVariable); ok {
		return u.solution(superVariable.Id, subId, u.state.TypeVariables[superVariable.Id].Origin)
	}

	// The error type unifies with anything.
	if _, ok := sub.(hir.Error); ok {
		return unifyOk
	}
	if _, ok := super.(hir.Error); ok {
		return unifyOk
	}

	switch subVariant := sub.(type) {
	case hir.IntegerType:
		if superVariant, ok := super.(hir.IntegerType); ok && subVariant.Kind == superVariant.Kind {
			return unifyOk
		}
		return unifyMismatch
	case hir.FloatingType:
		if _, ok := super.(hir.FloatingType); ok {
			return unifyOk
		}
		return unifyMismatch
	case hir.CharacterType:
		if _, ok := super.(hir.CharacterType); ok {
			return unifyOk
		}
		return unifyMismatch
	case hir.BooleanType:
		if _, ok := super.(hir.BooleanType); ok {
			return unifyOk
		}
		return unifyMismatch
	case hir.StringType:
		if _, ok := super.(hir.StringType); ok {
			return unifyOk
		}
		return unifyMismatch
	case hir.ParameterizedType:
		if superVariant, ok := super.(hir.ParameterizedType); ok &&
			subVariant.Tag == superVariant.Tag {
			return unifyOk
		}
		return unifyMismatch
	case hir.TupleType:
		superVariant, ok := super.(hir.TupleType)
		if !ok {
			return unifyMismatch
		}
		return u.typeLists(subVariant.Types, superVariant.Types)
	case hir.ArrayType:
		superVariant, ok := super.(hir.ArrayType)
		if !ok {
			return unifyMismatch
		}
		if result := u.types(subVariant.Element.Id, superVariant.Element.Id); result != unifyOk {
			return result
		}
		subLength := u.ctx.Arena.Hir.Expressions.Get(subVariant.Length)
		superLength := u.ctx.Arena.Hir.Expressions.Get(superVariant.Length)
		return u.types(subLength.Type, superLength.Type)
	case hir.SliceType:
		superVariant, ok := super.(hir.SliceType)
		if !ok {
			return unifyMismatch
		}
		return u.types(subVariant.Element.Id, superVariant.Element.Id)
	case hir.ReferenceType:
		superVariant, ok := super.(hir.ReferenceType)
		if !ok {
			return unifyMismatch
		}
		if result := u.types(subVariant.Referenced.Id, superVariant.Referenced.Id); result != unifyOk {
			return result
		}
		return u.mutabilities(subVariant.Mut.Id, superVariant.Mut.Id)
	case hir.PointerType:
		superVariant, ok := super.(hir.PointerType)
		if !ok {
			return unifyMismatch
		}
		if result := u.types(subVariant.Pointee.Id, superVariant.Pointee.Id); result != unifyOk {
			return result
		}
		return u.mutabilities(subVariant.Mut.Id, superVariant.Mut.Id)
	case hir.FunctionType:
		superVariant, ok := super.(hir.FunctionType)
		if !ok {
			return unifyMismatch
		}
		if result := u.types(subVariant.Return.Id, superVariant.Return.Id); result != unifyOk {
			return result
		}
		return u.typeLists(subVariant.Parameters, superVariant.Parameters)
	case hir.EnumerationType:
		if superVariant, ok := super.(hir.EnumerationType); ok &&
			subVariant.Id == superVariant.Id {
			return unifyOk
		}
		return unifyMismatch
	case hir.StructureType:
		if superVariant, ok := super.(hir.StructureType); ok &&
			subVariant.Id == superVariant.Id {
			return unifyOk
		}
		return unifyMismatch
	default:
		return unifyMismatch
	}
}

func (u *unifier) typeLists(sub, super []hir.Type) unifyResult {
	if len(sub) != len(super) {
		return unifyMismatch
	}
	for i := range sub {
		if result := u.types(sub[i].Id, super[i].Id); result != unifyOk {
			return result
		}
	}
	return unifyOk
}

// unionTypeVariables merges two variable classes. An integral member
// makes the merged class integral.
func (u *unifier) unionTypeVariables(a, b hir.TypeVariableId) {
	integral := u.state.TypeVariables[a].Kind == hir.IntegralVariable ||
		u.state.TypeVariables[b].Kind == hir.IntegralVariable
	u.state.TypeSet.Union(uint32(a), uint32(b))
	if integral {
		representative := u.state.TypeSet.Find(uint32(a))
		u.state.TypeVariables[representative].Kind = hir.IntegralVariable
	}
}

func (u *unifier) mutabilities(subId, superId hir.MutabilityId) unifyResult {
	u.ctx.flattenMutability(u.state, subId)
	u.ctx.flattenMutability(u.state, superId)

	sub := *u.ctx.Arena.Hir.Mutabilities.Get(subId)
	super := *u.ctx.Arena.Hir.Mutabilities.Get(superId)

	if subVariable, ok := sub.(hir.MutabilityVariable); ok {
		if superVariable, ok := super.(hir.MutabilityVariable); ok {
			if subVariable.Id != superVariable.Id {
				u.state.MutabilitySet.Union(uint32(subVariable.Id), uint32(superVariable.Id))
			}
			return unifyOk
		}
		u.ctx.setMutabilitySolution(u.state, subVariable.Id, super)
		return unifyOk
	}
	if superVariable, ok := super.(hir.MutabilityVariable); ok {
		u.ctx.setMutabilitySolution(u.state, superVariable.Id, sub)
		return unifyOk
	}

	if _, ok := sub.(hir.Error); ok {
		return unifyOk
	}
	if _, ok := super.(hir.Error); ok {
		return unifyOk
	}

	switch subVariant := sub.(type) {
	case hir.ConcreteMutability:
		superVariant, ok := super.(hir.ConcreteMutability)
		if !ok {
			return unifyMismatch
		}
		// mut may stand in for immut under the subtype goal.
		if subVariant.IsMut == superVariant.IsMut ||
			(subVariant.IsMut && u.goal == goalSubtype) {
			return unifyOk
		}
		return unifyMismatch
	case hir.ParameterizedMutability:
		if superVariant, ok := super.(hir.ParameterizedMutability); ok &&
			subVariant.Tag == superVariant.Tag {
			return unifyOk
		}
		return unifyMismatch
	default:
		return unifyMismatch
	}
}
