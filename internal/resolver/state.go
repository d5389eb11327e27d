package resolver

import (
	"fmt"

	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/utl"
)

// TypeVariableData tracks one inference variable. While unsolved, the
// TypeId slot holds the self-referential variable; once solved it
// holds the solution.
type TypeVariableData struct {
	Kind       hir.TypeVariableKind
	VariableId hir.TypeVariableId
	TypeId     hir.TypeId
	Origin     lsp.Range
	IsSolved   bool
}

type MutabilityVariableData struct {
	VariableId   hir.MutabilityVariableId
	MutabilityId hir.MutabilityId
	Origin       lsp.Range
	IsSolved     bool
}

// InferenceState lives for one resolution unit: one top-level
// definition or REPL expression. At unit end any still-unsolved
// variables are defaulted or reported.
type InferenceState struct {
	TypeVariables       []TypeVariableData
	MutabilityVariables []MutabilityVariableData
	TypeSet             utl.DisjointSet
	MutabilitySet       utl.DisjointSet
}

func NewInferenceState() *InferenceState {
	return &InferenceState{}
}

func (ctx *Context) freshTypeVariable(
	state *InferenceState, kind hir.TypeVariableKind, origin lsp.Range,
) hir.Type {
	variableId := hir.TypeVariableId(uint32(len(state.TypeVariables)))
	typeId := ctx.Arena.Hir.Types.Push(hir.TypeVariable{Id: variableId})
	state.TypeVariables = append(state.TypeVariables, TypeVariableData{
		Kind:       kind,
		VariableId: variableId,
		TypeId:     typeId,
		Origin:     origin,
	})
	state.TypeSet.Add()
	return hir.Type{Id: typeId, Range: origin}
}

func (ctx *Context) freshGeneralTypeVariable(state *InferenceState, origin lsp.Range) hir.Type {
	return ctx.freshTypeVariable(state, hir.GeneralVariable, origin)
}

func (ctx *Context) freshIntegralTypeVariable(state *InferenceState, origin lsp.Range) hir.Type {
	return ctx.freshTypeVariable(state, hir.IntegralVariable, origin)
}

func (ctx *Context) freshMutabilityVariable(
	state *InferenceState, origin lsp.Range,
) hir.Mutability {
	variableId := hir.MutabilityVariableId(uint32(len(state.MutabilityVariables)))
	mutabilityId := ctx.Arena.Hir.Mutabilities.Push(hir.MutabilityVariable{Id: variableId})
	state.MutabilityVariables = append(state.MutabilityVariables, MutabilityVariableData{
		VariableId:   variableId,
		MutabilityId: mutabilityId,
		Origin:       origin,
	})
	state.MutabilitySet.Add()
	return hir.Mutability{Id: mutabilityId, Range: origin}
}

// flattenType follows any variable chain at the given slot: a solved
// variable is replaced with its solution; an unsolved one inherits the
// representative's solution when the representative has one. This is
// the find half of union-find, with path compression through the
// arena slots.
func (ctx *Context) flattenType(state *InferenceState, id hir.TypeId) {
	variable, ok := (*ctx.Arena.Hir.Types.Get(id)).(hir.TypeVariable)
	if !ok {
		return
	}
	data := &state.TypeVariables[variable.Id]
	if data.IsSolved {
		if data.TypeId != id {
			ctx.flattenType(state, data.TypeId)
			ctx.Arena.Hir.Types.Set(id, *ctx.Arena.Hir.Types.Get(data.TypeId))
		}
		return
	}
	representative := state.TypeSet.Find(uint32(variable.Id))
	if representative == uint32(variable.Id) {
		return
	}
	representativeData := &state.TypeVariables[representative]
	ctx.flattenType(state, representativeData.TypeId)
	if representativeData.IsSolved {
		solution := *ctx.Arena.Hir.Types.Get(representativeData.TypeId)
		ctx.Arena.Hir.Types.Set(data.TypeId, solution)
		data.IsSolved = true
		if id != data.TypeId {
			ctx.Arena.Hir.Types.Set(id, solution)
		}
	}
}

func (ctx *Context) flattenMutability(state *InferenceState, id hir.MutabilityId) {
	variable, ok := (*ctx.Arena.Hir.Mutabilities.Get(id)).(hir.MutabilityVariable)
	if !ok {
		return
	}
	data := &state.MutabilityVariables[variable.Id]
	if data.IsSolved {
		if data.MutabilityId != id {
			ctx.flattenMutability(state, data.MutabilityId)
			ctx.Arena.Hir.Mutabilities.Set(id, *ctx.Arena.Hir.Mutabilities.Get(data.MutabilityId))
		}
		return
	}
	representative := state.MutabilitySet.Find(uint32(variable.Id))
	if representative == uint32(variable.Id) {
		return
	}
	representativeData := &state.MutabilityVariables[representative]
	ctx.flattenMutability(state, representativeData.MutabilityId)
	if representativeData.IsSolved {
		solution := *ctx.Arena.Hir.Mutabilities.Get(representativeData.MutabilityId)
		ctx.Arena.Hir.Mutabilities.Set(data.MutabilityId, solution)
		data.IsSolved = true
		if id != data.MutabilityId {
			ctx.Arena.Hir.Mutabilities.Set(id, solution)
		}
	}
}

// setTypeSolution stores the solution in the representative's slot.
// If the representative was already solved, the prior solution is
// unified with the new one instead.
func (ctx *Context) setTypeSolution(
	state *InferenceState, variableId hir.TypeVariableId, solution hir.TypeVariant, r lsp.Range,
) {
	representative := state.TypeSet.Find(uint32(variableId))
	data := &state.TypeVariables[representative]
	if data.IsSolved {
		solutionId := ctx.Arena.Hir.Types.Push(solution)
		ctx.RequireSubtypeRelationship(state, r, solutionId, data.TypeId)
		return
	}
	ctx.Arena.Hir.Types.Set(data.TypeId, solution)
	data.IsSolved = true
}

func (ctx *Context) setMutabilitySolution(
	state *InferenceState, variableId hir.MutabilityVariableId, solution hir.MutabilityVariant,
) {
	representative := state.MutabilitySet.Find(uint32(variableId))
	data := &state.MutabilityVariables[representative]
	if data.IsSolved {
		return
	}
	ctx.Arena.Hir.Mutabilities.Set(data.MutabilityId, solution)
	data.IsSolved = true
}

// occursCheck reports whether the variable occurs in the candidate
// solution. Leaf types trivially contain no variable.
func (ctx *Context) occursCheck(tag hir.TypeVariableId, variant hir.TypeVariant) bool {
	occursIn := func(t hir.Type) bool {
		return ctx.occursCheck(tag, *ctx.Arena.Hir.Types.Get(t.Id))
	}
	switch v := variant.(type) {
	case hir.TypeVariable:
		return v.Id == tag
	case hir.ArrayType:
		return occursIn(v.Element)
	case hir.SliceType:
		return occursIn(v.Element)
	case hir.TupleType:
		for _, t := range v.Types {
			if occursIn(t) {
				return true
			}
		}
		return false
	case hir.ReferenceType:
		return occursIn(v.Referenced)
	case hir.PointerType:
		return occursIn(v.Pointee)
	case hir.FunctionType:
		for _, t := range v.Parameters {
			if occursIn(t) {
				return true
			}
		}
		return occursIn(v.Return)
	default:
		return false
	}
}

// EnsureNoUnsolvedVariables runs at the end of a resolution unit:
// unsolved mutability variables default to immut; unsolved integral
// variables default to I32 when configured; remaining unsolved type
// variables are reported and bound to the error type.
func (ctx *Context) EnsureNoUnsolvedVariables(state *InferenceState) {
	for i := range state.MutabilityVariables {
		data := &state.MutabilityVariables[i]
		ctx.flattenMutability(state, data.MutabilityId)
		if !data.IsSolved {
			ctx.setMutabilitySolution(state, data.VariableId, hir.ConcreteMutability{})
			ctx.flattenMutability(state, data.MutabilityId)
		}
	}
	for i := range state.TypeVariables {
		data := &state.TypeVariables[i]
		ctx.flattenType(state, data.TypeId)
		if data.IsSolved {
			continue
		}
		if data.Kind == hir.IntegralVariable && ctx.DB.Config.DefaultIntegers {
			ctx.setTypeSolution(
				state, data.VariableId, hir.IntegerType{Kind: hir.I32}, data.Origin)
			ctx.flattenType(state, data.TypeId)
			continue
		}
		message := fmt.Sprintf("Unsolved type variable: ?%d", uint32(data.VariableId))
		ctx.error(data.Origin, message)
		ctx.setTypeSolution(state, data.VariableId, hir.Error{}, data.Origin)
		ctx.flattenType(state, data.TypeId)
	}
}
