package token

import "github.com/kieli-lang/kieli/internal/lsp"

type Type uint8

const (
	Error Type = iota
	EndOfInput

	LowerName
	UpperName
	Underscore
	IntegerLiteral
	FloatingLiteral
	CharacterLiteral
	StringLiteral

	Fn
	Struct
	Enum
	Alias
	Concept
	Impl
	Module
	Let
	Mut
	If
	Else
	While
	Loop
	For
	In
	Match
	Break
	Continue
	Ret
	Defer
	Sizeof
	Typeof
	LowerSelf
	UpperSelf
	True
	False
	As

	BuiltinType

	Dot
	Comma
	Colon
	DoubleColon
	Semicolon
	Arrow
	Equals
	Ampersand
	Asterisk
	Bang
	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	OpenBrace
	CloseBrace
	Operator
)

// Token is one lexeme with its source range.
type Token struct {
	Type   Type
	Lexeme string
	Range  lsp.Range
}

var typeNames = map[Type]string{
	Error:            "error",
	EndOfInput:       "end of input",
	LowerName:        "lower name",
	UpperName:        "upper name",
	Underscore:       "'_'",
	IntegerLiteral:   "integer literal",
	FloatingLiteral:  "floating point literal",
	CharacterLiteral: "character literal",
	StringLiteral:    "string literal",
	Fn:               "'fn'",
	Struct:           "'struct'",
	Enum:             "'enum'",
	Alias:            "'alias'",
	Concept:          "'concept'",
	Impl:             "'impl'",
	Module:           "'module'",
	Let:              "'let'",
	Mut:              "'mut'",
	If:               "'if'",
	Else:             "'else'",
	While:            "'while'",
	Loop:             "'loop'",
	For:              "'for'",
	In:               "'in'",
	Match:            "'match'",
	Break:            "'break'",
	Continue:         "'continue'",
	Ret:              "'ret'",
	Defer:            "'defer'",
	Sizeof:           "'sizeof'",
	Typeof:           "'typeof'",
	LowerSelf:        "'self'",
	UpperSelf:        "'Self'",
	True:             "'true'",
	False:            "'false'",
	As:               "'as'",
	BuiltinType:      "built-in type",
	Dot:              "'.'",
	Comma:            "','",
	Colon:            "':'",
	DoubleColon:      "'::'",
	Semicolon:        "';'",
	Arrow:            "'->'",
	Equals:           "'='",
	Ampersand:        "'&'",
	Asterisk:         "'*'",
	Bang:             "'!'",
	OpenParen:        "'('",
	CloseParen:       "')'",
	OpenBracket:      "'['",
	CloseBracket:     "']'",
	OpenBrace:        "'{'",
	CloseBrace:       "'}'",
	Operator:         "operator",
}

// Describe returns a human readable description of the token type for
// use in parse error messages.
func Describe(t Type) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown token"
}

// Keywords maps keyword lexemes to their token types.
var Keywords = map[string]Type{
	"fn":       Fn,
	"struct":   Struct,
	"enum":     Enum,
	"alias":    Alias,
	"concept":  Concept,
	"impl":     Impl,
	"module":   Module,
	"let":      Let,
	"mut":      Mut,
	"if":       If,
	"else":     Else,
	"while":    While,
	"loop":     Loop,
	"for":      For,
	"in":       In,
	"match":    Match,
	"break":    Break,
	"continue": Continue,
	"ret":      Ret,
	"defer":    Defer,
	"sizeof":   Sizeof,
	"typeof":   Typeof,
	"self":     LowerSelf,
	"Self":     UpperSelf,
	"true":     True,
	"false":    False,
	"as":       As,
}

// BuiltinTypes is the set of built-in type names recognized directly
// by the lexer.
var BuiltinTypes = map[string]bool{
	"I8": true, "I16": true, "I32": true, "I64": true,
	"U8": true, "U16": true, "U32": true, "U64": true,
	"Float": true, "Char": true, "Bool": true, "String": true,
}
