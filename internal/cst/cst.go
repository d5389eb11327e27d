// Package cst defines the concrete syntax tree. CST nodes retain the
// ranges of individual tokens so that later stages can point synthetic
// nodes at precise source locations (for example the closing brace of
// a block). Nodes live in typed-id arenas and reference each other by
// id only.
package cst

import (
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/utl"
)

type (
	ExpressionId uint32
	PatternId    uint32
	TypeId       uint32
	DefinitionId uint32
)

// Arena owns every CST node for one document.
type Arena struct {
	Expressions utl.Vector[ExpressionId, Expression]
	Patterns    utl.Vector[PatternId, Pattern]
	Types       utl.Vector[TypeId, Type]
	Definitions utl.Vector[DefinitionId, Definition]
}

// Module is the parse result for one document.
type Module struct {
	Definitions []DefinitionId
}

// Mutability is an optional `mut` specifier with the range it occupies.
type Mutability struct {
	IsMut bool
	Range lsp.Range
}

// Path roots: implicit (nil), global (`::`), or type (`T::`).
type PathRoot interface{ cstPathRoot() }

type GlobalRoot struct {
	Range lsp.Range
}

type TypeRoot struct {
	Type TypeId
}

func (GlobalRoot) cstPathRoot() {}
func (TypeRoot) cstPathRoot()   {}

type PathSegment struct {
	Name              lsp.Name
	TemplateArguments *TemplateArguments
}

type TemplateArguments struct {
	Types []TypeId
	Range lsp.Range
}

type Path struct {
	Root     PathRoot // nil for implicit paths
	Segments []PathSegment
	Range    lsp.Range
}

// Head returns the last segment of the path.
func (p Path) Head() PathSegment {
	return p.Segments[len(p.Segments)-1]
}

// ExpressionVariant is the closed sum of CST expression node kinds.
type ExpressionVariant interface{ cstExpression() }

type Expression struct {
	Variant ExpressionVariant
	Range   lsp.Range
}

type (
	Integer struct {
		Value  uint64
		Lexeme string
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
	Wildcard struct {
		UnderscoreRange lsp.Range
	}
	PathExpression struct {
		Path Path
	}
	Paren struct {
		Expression ExpressionId
	}
	Array struct {
		Elements []ExpressionId
	}
	Tuple struct {
		Fields []ExpressionId
	}
	Conditional struct {
		IfRange     lsp.Range
		Condition   ExpressionId
		TrueBranch  ExpressionId
		FalseBranch *ExpressionId
	}
	MatchArm struct {
		Pattern PatternId
		Handler ExpressionId
	}
	Match struct {
		Scrutinee ExpressionId
		Arms      []MatchArm
	}
	BlockEffect struct {
		Expression     ExpressionId
		SemicolonRange lsp.Range
	}
	Block struct {
		Effects         []BlockEffect
		Result          *ExpressionId
		CloseBraceRange lsp.Range
	}
	WhileLoop struct {
		WhileRange lsp.Range
		Condition  ExpressionId
		Body       ExpressionId
	}
	Loop struct {
		Body ExpressionId
	}
	ForLoop struct {
		ForRange lsp.Range
		Pattern  PatternId
		Iterable ExpressionId
		Body     ExpressionId
	}
	FunctionCall struct {
		Invocable ExpressionId
		Arguments []ExpressionId
	}
	FieldInitializer struct {
		Name       lsp.Name
		Expression ExpressionId
	}
	StructInitializer struct {
		Path   Path
		Fields []FieldInitializer
	}
	InfixCall struct {
		Left  ExpressionId
		Right ExpressionId
		Op    lsp.Name
	}
	StructField struct {
		Base ExpressionId
		Name lsp.Name
	}
	TupleField struct {
		Base       ExpressionId
		Index      uint32
		IndexRange lsp.Range
	}
	ArrayIndex struct {
		Base  ExpressionId
		Index ExpressionId
	}
	Ascription struct {
		Expression ExpressionId
		Type       TypeId
	}
	Let struct {
		Pattern     PatternId
		Type        *TypeId
		Initializer ExpressionId
	}
	LocalAlias struct {
		Name lsp.Name
		Type TypeId
	}
	Ret struct {
		Result *ExpressionId
	}
	Break struct {
		Result *ExpressionId
	}
	Continue struct{}
	Sizeof   struct {
		Type TypeId
	}
	Addressof struct {
		AmpersandRange lsp.Range
		Mutability     *Mutability
		Expression     ExpressionId
	}
	Deref struct {
		Expression ExpressionId
	}
	Defer struct {
		Expression ExpressionId
	}
	ErrorExpression struct{}
)

func (Integer) cstExpression()           {}
func (Floating) cstExpression()          {}
func (Boolean) cstExpression()           {}
func (Character) cstExpression()         {}
func (String) cstExpression()            {}
func (Wildcard) cstExpression()          {}
func (PathExpression) cstExpression()    {}
func (Paren) cstExpression()             {}
func (Array) cstExpression()             {}
func (Tuple) cstExpression()             {}
func (Conditional) cstExpression()       {}
func (Match) cstExpression()             {}
func (Block) cstExpression()             {}
func (WhileLoop) cstExpression()         {}
func (Loop) cstExpression()              {}
func (ForLoop) cstExpression()           {}
func (FunctionCall) cstExpression()      {}
func (StructInitializer) cstExpression() {}
func (InfixCall) cstExpression()         {}
func (StructField) cstExpression()       {}
func (TupleField) cstExpression()        {}
func (ArrayIndex) cstExpression()        {}
func (Ascription) cstExpression()        {}
func (Let) cstExpression()               {}
func (LocalAlias) cstExpression()        {}
func (Ret) cstExpression()               {}
func (Break) cstExpression()             {}
func (Continue) cstExpression()          {}
func (Sizeof) cstExpression()            {}
func (Addressof) cstExpression()         {}
func (Deref) cstExpression()             {}
func (Defer) cstExpression()             {}
func (ErrorExpression) cstExpression()   {}

// PatternVariant is the closed sum of CST pattern node kinds.
type PatternVariant interface{ cstPattern() }

type Pattern struct {
	Variant PatternVariant
	Range   lsp.Range
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
		Mutability *Mutability
		Name       lsp.Name
	}
	TuplePattern struct {
		Fields []PatternId
	}
	SlicePattern struct {
		Patterns []PatternId
	}
	// ConstructorPattern covers unit, tuple, and struct constructor forms.
	ConstructorPattern struct {
		Path         Path
		TupleFields  []PatternId
		StructFields []StructFieldPattern
		HasBody      bool
	}
	StructFieldPattern struct {
		Name    lsp.Name
		Pattern *PatternId
	}
	AliasPattern struct {
		Pattern    PatternId
		Mutability *Mutability
		Name       lsp.Name
	}
	GuardedPattern struct {
		Pattern PatternId
		Guard   ExpressionId
	}
	ErrorPattern struct{}
)

func (IntegerPattern) cstPattern()     {}
func (FloatingPattern) cstPattern()    {}
func (BooleanPattern) cstPattern()     {}
func (CharacterPattern) cstPattern()   {}
func (StringPattern) cstPattern()      {}
func (WildcardPattern) cstPattern()    {}
func (NamePattern) cstPattern()        {}
func (TuplePattern) cstPattern()       {}
func (SlicePattern) cstPattern()       {}
func (ConstructorPattern) cstPattern() {}
func (AliasPattern) cstPattern()       {}
func (GuardedPattern) cstPattern()     {}
func (ErrorPattern) cstPattern()       {}

// BuiltinKind enumerates types the lexer recognizes directly.
type BuiltinKind uint8

const (
	BuiltinI8 BuiltinKind = iota
	BuiltinI16
	BuiltinI32
	BuiltinI64
	BuiltinU8
	BuiltinU16
	BuiltinU32
	BuiltinU64
	BuiltinFloat
	BuiltinChar
	BuiltinBool
	BuiltinString
)

// TypeVariant is the closed sum of CST type node kinds.
type TypeVariant interface{ cstType() }

type Type struct {
	Variant TypeVariant
	Range   lsp.Range
}

type (
	BuiltinTypename struct {
		Kind BuiltinKind
	}
	ParenType struct {
		Type TypeId
	}
	TupleType struct {
		Fields []TypeId
	}
	ArrayType struct {
		Element TypeId
		Length  ExpressionId
	}
	SliceType struct {
		Element TypeId
	}
	ReferenceType struct {
		Mutability *Mutability
		Element    TypeId
	}
	PointerType struct {
		Mutability *Mutability
		Element    TypeId
	}
	FunctionType struct {
		Parameters []TypeId
		Return     TypeId
	}
	TypeofType struct {
		Expression ExpressionId
	}
	SelfType     struct{}
	WildcardType struct{}
	PathType     struct {
		Path Path
	}
	ErrorType struct{}
)

func (BuiltinTypename) cstType() {}
func (ParenType) cstType()       {}
func (TupleType) cstType()       {}
func (ArrayType) cstType()       {}
func (SliceType) cstType()       {}
func (ReferenceType) cstType()   {}
func (PointerType) cstType()     {}
func (FunctionType) cstType()    {}
func (TypeofType) cstType()      {}
func (SelfType) cstType()        {}
func (WildcardType) cstType()    {}
func (PathType) cstType()        {}
func (ErrorType) cstType()       {}

// SelfParameter is `self`, `&self`, or `&mut self`.
type SelfParameter struct {
	IsReference bool
	Mutability  *Mutability
	Range       lsp.Range
}

type FunctionParameter struct {
	Self    *SelfParameter
	Pattern PatternId
	Type    *TypeId
	Default *ExpressionId
}

type TemplateParameter struct {
	Name  lsp.Name
	Range lsp.Range
}

type FunctionSignature struct {
	Name               lsp.Name
	TemplateParameters []TemplateParameter
	Parameters         []FunctionParameter
	ReturnType         *TypeId
}

// DefinitionVariant is the closed sum of top-level definition kinds.
type DefinitionVariant interface{ cstDefinition() }

type Definition struct {
	Variant DefinitionVariant
	Range   lsp.Range
}

type Field struct {
	Name  lsp.Name
	Type  TypeId
	Range lsp.Range
}

// ConstructorBody is nil (unit), Tuple, or Struct.
type ConstructorBody interface{ cstConstructorBody() }

type StructConstructorBody struct {
	Fields []Field
}

type TupleConstructorBody struct {
	Types []TypeId
}

func (StructConstructorBody) cstConstructorBody() {}
func (TupleConstructorBody) cstConstructorBody()  {}

type Constructor struct {
	Name lsp.Name
	Body ConstructorBody
}

type (
	Function struct {
		Signature FunctionSignature
		Body      ExpressionId
	}
	StructDefinition struct {
		Name               lsp.Name
		TemplateParameters []TemplateParameter
		Body               ConstructorBody
	}
	EnumDefinition struct {
		Name               lsp.Name
		TemplateParameters []TemplateParameter
		Constructors       []Constructor
	}
	AliasDefinition struct {
		Name               lsp.Name
		TemplateParameters []TemplateParameter
		Type               TypeId
	}
	ConceptDefinition struct {
		Name               lsp.Name
		TemplateParameters []TemplateParameter
		Requirements       []FunctionSignature
	}
	ImplDefinition struct {
		TemplateParameters []TemplateParameter
		SelfType           TypeId
		Definitions        []DefinitionId
	}
	ModuleDefinition struct {
		Name        lsp.Name
		Definitions []DefinitionId
	}
	ErrorDefinition struct{}
)

func (Function) cstDefinition()          {}
func (StructDefinition) cstDefinition()  {}
func (EnumDefinition) cstDefinition()    {}
func (AliasDefinition) cstDefinition()   {}
func (ConceptDefinition) cstDefinition() {}
func (ImplDefinition) cstDefinition()    {}
func (ModuleDefinition) cstDefinition()  {}
func (ErrorDefinition) cstDefinition()   {}
