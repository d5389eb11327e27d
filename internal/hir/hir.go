// Package hir defines the high-level intermediate representation: the
// type-annotated, name-resolved form of the AST. Every HIR node keeps
// the source range of the AST node it came from.
package hir

import (
	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/utl"
)

type (
	TypeId       uint32
	MutabilityId uint32
	ExpressionId uint32
	PatternId    uint32

	FunctionId    uint32
	StructureId   uint32
	EnumerationId uint32
	ConstructorId uint32
	FieldId       uint32
	ConceptId     uint32
	AliasId       uint32
	ModuleId      uint32

	LocalVariableId   uint32
	LocalMutabilityId uint32
	LocalTypeId       uint32

	EnvironmentId uint32

	TypeVariableId       uint32
	MutabilityVariableId uint32
	TemplateParameterTag uint32
)

// Arena owns every HIR node and definition info for one document.
type Arena struct {
	Types        utl.Vector[TypeId, TypeVariant]
	Mutabilities utl.Vector[MutabilityId, MutabilityVariant]
	Expressions  utl.Vector[ExpressionId, Expression]
	Patterns     utl.Vector[PatternId, Pattern]

	Functions    utl.Vector[FunctionId, FunctionInfo]
	Structures   utl.Vector[StructureId, StructureInfo]
	Enumerations utl.Vector[EnumerationId, EnumerationInfo]
	Constructors utl.Vector[ConstructorId, ConstructorInfo]
	Fields       utl.Vector[FieldId, FieldInfo]
	Concepts     utl.Vector[ConceptId, ConceptInfo]
	Aliases      utl.Vector[AliasId, AliasInfo]
	Modules      utl.Vector[ModuleId, ModuleInfo]

	LocalVariables    utl.Vector[LocalVariableId, LocalVariable]
	LocalMutabilities utl.Vector[LocalMutabilityId, LocalMutability]
	LocalTypes        utl.Vector[LocalTypeId, LocalType]
}

// Type is a type id paired with the range of its mention.
type Type struct {
	Id    TypeId
	Range lsp.Range
}

// Mutability is a mutability id paired with the range of its mention.
type Mutability struct {
	Id    MutabilityId
	Range lsp.Range
}

// IntegerKind enumerates the built-in integer types.
type IntegerKind uint8

const (
	I8 IntegerKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
)

func (k IntegerKind) String() string {
	switch k {
	case I8:
		return "I8"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U32:
		return "U32"
	default:
		return "U64"
	}
}

// TypeVariableKind distinguishes variables that may solve to any type
// from those restricted to integer types.
type TypeVariableKind uint8

const (
	GeneralVariable TypeVariableKind = iota
	IntegralVariable
)

// TypeVariant is the closed sum of HIR type node kinds.
type TypeVariant interface{ hirType() }

type (
	IntegerType struct {
		Kind IntegerKind
	}
	FloatingType  struct{}
	CharacterType struct{}
	BooleanType   struct{}
	StringType    struct{}
	ArrayType     struct {
		Element Type
		Length  ExpressionId
	}
	SliceType struct {
		Element Type
	}
	TupleType struct {
		Types []Type
	}
	ReferenceType struct {
		Referenced Type
		Mut        Mutability
	}
	PointerType struct {
		Pointee Type
		Mut     Mutability
	}
	FunctionType struct {
		Parameters []Type
		Return     Type
	}
	EnumerationType struct {
		Name lsp.Name
		Id   EnumerationId
	}
	StructureType struct {
		Name lsp.Name
		Id   StructureId
	}
	ParameterizedType struct {
		Tag  TemplateParameterTag
		Name lsp.Name
	}
	TypeVariable struct {
		Id TypeVariableId
	}
)

func (IntegerType) hirType()       {}
func (FloatingType) hirType()      {}
func (CharacterType) hirType()     {}
func (BooleanType) hirType()       {}
func (StringType) hirType()        {}
func (ArrayType) hirType()         {}
func (SliceType) hirType()         {}
func (TupleType) hirType()         {}
func (ReferenceType) hirType()     {}
func (PointerType) hirType()       {}
func (FunctionType) hirType()      {}
func (EnumerationType) hirType()   {}
func (StructureType) hirType()     {}
func (ParameterizedType) hirType() {}
func (TypeVariable) hirType()      {}

// MutabilityVariant is the closed sum of HIR mutability node kinds.
type MutabilityVariant interface{ hirMutability() }

type (
	ConcreteMutability struct {
		IsMut bool
	}
	ParameterizedMutability struct {
		Tag TemplateParameterTag
	}
	MutabilityVariable struct {
		Id MutabilityVariableId
	}
)

func (ConcreteMutability) hirMutability()      {}
func (ParameterizedMutability) hirMutability() {}
func (MutabilityVariable) hirMutability()      {}

// Error is the error sentinel; it implements every variant interface
// so a single value can stand in for a failed type, mutability,
// expression, or pattern.
type Error struct{}

func (Error) hirType()       {}
func (Error) hirMutability() {}
func (Error) hirExpression() {}
func (Error) hirPattern()    {}

// ExpressionKind classifies expressions into places (memory locations
// whose address may be taken) and plain values.
type ExpressionKind uint8

const (
	ValueExpression ExpressionKind = iota
	PlaceExpression
)

type ExpressionVariant interface{ hirExpression() }

type Expression struct {
	Variant ExpressionVariant
	Type    TypeId
	Kind    ExpressionKind
	Range   lsp.Range
}

type (
	Integer struct {
		Value uint64
	}
	Floating struct {
		Value float64
	}
	Boolean struct {
		Value bool
	}
	Character struct {
		Value rune
	}
	String struct {
		Value string
	}
	ArrayLiteral struct {
		Elements []ExpressionId
	}
	Tuple struct {
		Fields []ExpressionId
	}
	Loop struct {
		Body ExpressionId
	}
	Break struct {
		Result ExpressionId
	}
	Continue struct{}
	Block    struct {
		Effects []ExpressionId
		Result  ExpressionId
	}
	Let struct {
		Pattern     PatternId
		Type        Type
		Initializer ExpressionId
	}
	Conditional struct {
		Condition   ExpressionId
		TrueBranch  ExpressionId
		FalseBranch ExpressionId
	}
	MatchArm struct {
		Pattern    PatternId
		Expression ExpressionId
	}
	Match struct {
		Scrutinee ExpressionId
		Arms      []MatchArm
	}
	VariableReference struct {
		Id   LocalVariableId
		Name lsp.Name
	}
	FunctionReference struct {
		Id   FunctionId
		Name lsp.Name
	}
	ConstructorReference struct {
		Id   ConstructorId
		Name lsp.Name
	}
	IndirectInvocation struct {
		Function  ExpressionId
		Arguments []ExpressionId
	}
	DirectInvocation struct {
		Function  FunctionId
		Name      lsp.Name
		Arguments []ExpressionId
	}
	Initializer struct {
		Structure StructureId
		Fields    []ExpressionId
	}
	StructFieldAccess struct {
		Base  ExpressionId
		Name  lsp.Name
		Field FieldId
	}
	TupleFieldAccess struct {
		Base  ExpressionId
		Index uint32
	}
	ArrayIndex struct {
		Base  ExpressionId
		Index ExpressionId
	}
	Sizeof struct {
		Inspected Type
	}
	Addressof struct {
		Mut   Mutability
		Place ExpressionId
	}
	Dereference struct {
		Reference ExpressionId
	}
	Defer struct {
		Effect ExpressionId
	}
	Ret struct {
		Result ExpressionId
	}
	Hole struct{}
)

func (Integer) hirExpression()              {}
func (Floating) hirExpression()             {}
func (Boolean) hirExpression()              {}
func (Character) hirExpression()            {}
func (String) hirExpression()               {}
func (ArrayLiteral) hirExpression()         {}
func (Tuple) hirExpression()                {}
func (Loop) hirExpression()                 {}
func (Break) hirExpression()                {}
func (Continue) hirExpression()             {}
func (Block) hirExpression()                {}
func (Let) hirExpression()                  {}
func (Conditional) hirExpression()          {}
func (Match) hirExpression()                {}
func (VariableReference) hirExpression()    {}
func (FunctionReference) hirExpression()    {}
func (ConstructorReference) hirExpression() {}
func (IndirectInvocation) hirExpression()   {}
func (DirectInvocation) hirExpression()     {}
func (Initializer) hirExpression()          {}
func (StructFieldAccess) hirExpression()    {}
func (TupleFieldAccess) hirExpression()     {}
func (ArrayIndex) hirExpression()           {}
func (Sizeof) hirExpression()               {}
func (Addressof) hirExpression()            {}
func (Dereference) hirExpression()          {}
func (Defer) hirExpression()                {}
func (Ret) hirExpression()                  {}
func (Hole) hirExpression()                 {}

type PatternVariant interface{ hirPattern() }

// Pattern carries its computed type and whether the pattern matches
// every value of that type on its own.
type Pattern struct {
	Variant            PatternVariant
	Type               TypeId
	ExhaustiveByItself bool
	Range              lsp.Range
}

type (
	IntegerPattern struct {
		Value uint64
	}
	FloatingPattern struct {
		Value float64
	}
	BooleanPattern struct {
		Value bool
	}
	CharacterPattern struct {
		Value rune
	}
	StringPattern struct {
		Value string
	}
	WildcardPattern struct{}
	NamePattern     struct {
		Id   LocalVariableId
		Name lsp.Name
		Mut  Mutability
	}
	TuplePattern struct {
		Fields []PatternId
	}
	SlicePattern struct {
		Patterns []PatternId
	}
	ConstructorPattern struct {
		Constructor ConstructorId
		Fields      []PatternId
	}
	GuardedPattern struct {
		Pattern PatternId
		Guard   ExpressionId
	}
)

func (IntegerPattern) hirPattern()     {}
func (FloatingPattern) hirPattern()    {}
func (BooleanPattern) hirPattern()     {}
func (CharacterPattern) hirPattern()   {}
func (StringPattern) hirPattern()      {}
func (WildcardPattern) hirPattern()    {}
func (NamePattern) hirPattern()        {}
func (TuplePattern) hirPattern()       {}
func (SlicePattern) hirPattern()       {}
func (ConstructorPattern) hirPattern() {}
func (GuardedPattern) hirPattern()     {}

// DefinitionState guards against runaway recursion: entering an
// in-progress definition a second time reports a recursive definition.
type DefinitionState uint8

const (
	Unresolved DefinitionState = iota
	InProgress
	Resolved
)

type FunctionParameter struct {
	Pattern PatternId
	Type    Type
}

type FunctionSignature struct {
	Name         lsp.Name
	Parameters   []FunctionParameter
	ReturnType   Type
	FunctionType Type
}

type FunctionInfo struct {
	Name  lsp.Name
	EnvId EnvironmentId
	Ast   ast.Function
	State DefinitionState

	// Set once the signature resolves. SignatureEnvId is the scope
	// holding the parameter bindings; the body scope nests inside it.
	Signature      *FunctionSignature
	SignatureEnvId EnvironmentId
	SelfType       *Type
	Body           *ExpressionId
}

type StructureInfo struct {
	Name            lsp.Name
	EnvId           EnvironmentId
	Ast             ast.Structure
	State           DefinitionState
	TypeId          TypeId
	AssociatedEnvId EnvironmentId
	Fields          []FieldId
}

type EnumerationInfo struct {
	Name            lsp.Name
	EnvId           EnvironmentId
	Ast             ast.Enumeration
	State           DefinitionState
	TypeId          TypeId
	AssociatedEnvId EnvironmentId
	Constructors    []ConstructorId
}

// ConstructorInfo describes one enum constructor: unit, tuple with
// payload types, or struct with named fields.
type ConstructorInfo struct {
	Name        lsp.Name
	Enumeration EnumerationId
	TupleTypes  []Type
	Fields      []FieldId
	HasBody     bool
}

type FieldInfo struct {
	Name  lsp.Name
	Type  Type
	Owner TypeId
}

type ConceptInfo struct {
	Name  lsp.Name
	EnvId EnvironmentId
	Ast   ast.Concept
	State DefinitionState
}

type AliasInfo struct {
	Name  lsp.Name
	EnvId EnvironmentId
	Ast   ast.Alias
	State DefinitionState
	Type  *Type
}

type ModuleInfo struct {
	Name     lsp.Name
	EnvId    EnvironmentId
	ModEnvId EnvironmentId
}

// LocalVariable is a pattern-bound variable in some scope.
type LocalVariable struct {
	Name lsp.Name
	Mut  Mutability
	Type TypeId
}

// LocalMutability is a template mutability parameter bound in a scope.
type LocalMutability struct {
	Name lsp.Name
	Mut  MutabilityId
}

// LocalType is a scope-bound type: a local alias or template parameter.
type LocalType struct {
	Name lsp.Name
	Type TypeId
}
