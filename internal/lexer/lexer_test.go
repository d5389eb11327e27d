package lexer

import (
	"testing"

	"github.com/kieli-lang/kieli/internal/token"
)

func lexTypes(t *testing.T, input string) []token.Type {
	t.Helper()
	tokens, diagnostics := New(input).Lex()
	for _, diagnostic := range diagnostics {
		t.Fatalf("unexpected diagnostic: %s", diagnostic.Message)
	}
	var types []token.Type
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	return types
}

func TestLexer(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []token.Type
	}{
		{
			"function_header",
			"fn f(x: I32): I32 = x",
			[]token.Type{
				token.Fn, token.LowerName, token.OpenParen, token.LowerName,
				token.Colon, token.BuiltinType, token.CloseParen, token.Colon,
				token.BuiltinType, token.Equals, token.LowerName, token.EndOfInput,
			},
		},
		{
			"keywords_and_literals",
			"while true { 1 }",
			[]token.Type{
				token.While, token.True, token.OpenBrace, token.IntegerLiteral,
				token.CloseBrace, token.EndOfInput,
			},
		},
		{
			"path_and_template",
			"a::B[I32]",
			[]token.Type{
				token.LowerName, token.DoubleColon, token.UpperName,
				token.OpenBracket, token.BuiltinType, token.CloseBracket,
				token.EndOfInput,
			},
		},
		{
			"operators",
			"-> = :: : & * !",
			[]token.Type{
				token.Arrow, token.Equals, token.DoubleColon, token.Colon,
				token.Ampersand, token.Asterisk, token.Bang, token.EndOfInput,
			},
		},
		{
			"floating_and_integer",
			"1.5 42 1_000",
			[]token.Type{
				token.FloatingLiteral, token.IntegerLiteral, token.IntegerLiteral,
				token.EndOfInput,
			},
		},
		{
			"comments_are_trivia",
			"x // line\n/* block */ y",
			[]token.Type{token.LowerName, token.LowerName, token.EndOfInput},
		},
		{
			"string_and_char",
			`"hi" 'a'`,
			[]token.Type{token.StringLiteral, token.CharacterLiteral, token.EndOfInput},
		},
		{
			"underscore_and_self",
			"_ self Self",
			[]token.Type{
				token.Underscore, token.LowerSelf, token.UpperSelf, token.EndOfInput,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := lexTypes(t, tc.input)
			if len(actual) != len(tc.expected) {
				t.Fatalf("token count = %d, want %d (%v)", len(actual), len(tc.expected), actual)
			}
			for i := range actual {
				if actual[i] != tc.expected[i] {
					t.Errorf("token %d = %s, want %s",
						i, token.Describe(actual[i]), token.Describe(tc.expected[i]))
				}
			}
		})
	}
}

func TestLexerRanges(t *testing.T) {
	tokens, _ := New("let x\nlet y").Lex()
	// Second 'let' starts at line 1, character 0.
	if tokens[2].Range.Start.Line != 1 || tokens[2].Range.Start.Character != 0 {
		t.Errorf("second let range = %+v", tokens[2].Range)
	}
	if tokens[3].Range.Start.Character != 4 {
		t.Errorf("y should start at character 4, got %+v", tokens[3].Range)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, diagnostics := New(`"abc`).Lex()
	if len(diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(diagnostics))
	}
	if diagnostics[0].Message != "Unterminated string literal" {
		t.Errorf("unexpected message: %s", diagnostics[0].Message)
	}
}
