package lexer

import (
	"testing"

	"github.com/xirelogy/go-lox/internal/token"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `
fun add(a, b) {
  var c = a + b;
  if (c >= 10 and a != b) {
    return c;
  }
}
`

	tests := []token.Token{
		{Type: token.Fun, Lexeme: "fun"},
		{Type: token.Ident, Lexeme: "add"},
		{Type: token.LParen, Lexeme: "("},
		{Type: token.Ident, Lexeme: "a"},
		{Type: token.Comma, Lexeme: ","},
		{Type: token.Ident, Lexeme: "b"},
		{Type: token.RParen, Lexeme: ")"},
		{Type: token.LBrace, Lexeme: "{"},
		{Type: token.Var, Lexeme: "var"},
		{Type: token.Ident, Lexeme: "c"},
		{Type: token.Assign, Lexeme: "="},
		{Type: token.Ident, Lexeme: "a"},
		{Type: token.Plus, Lexeme: "+"},
		{Type: token.Ident, Lexeme: "b"},
		{Type: token.Semicolon, Lexeme: ";"},
		{Type: token.If, Lexeme: "if"},
		{Type: token.LParen, Lexeme: "("},
		{Type: token.Ident, Lexeme: "c"},
		{Type: token.GreaterEqual, Lexeme: ">="},
		{Type: token.Number, Lexeme: "10"},
		{Type: token.And, Lexeme: "and"},
		{Type: token.Ident, Lexeme: "a"},
		{Type: token.NotEqual, Lexeme: "!="},
		{Type: token.Ident, Lexeme: "b"},
		{Type: token.RParen, Lexeme: ")"},
		{Type: token.LBrace, Lexeme: "{"},
		{Type: token.Return, Lexeme: "return"},
		{Type: token.Ident, Lexeme: "c"},
		{Type: token.Semicolon, Lexeme: ";"},
		{Type: token.RBrace, Lexeme: "}"},
		{Type: token.RBrace, Lexeme: "}"},
		{Type: token.EOF, Lexeme: ""},
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected.Type || tok.Lexeme != expected.Lexeme {
			t.Fatalf("token %d: expected %v %q, got %v %q", i, expected.Type, expected.Lexeme, tok.Type, tok.Lexeme)
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	cases := []struct {
		input string
		want  token.Type
	}{
		{"and", token.And},
		{"class", token.Class},
		{"else", token.Else},
		{"false", token.False},
		{"for", token.For},
		{"fun", token.Fun},
		{"if", token.If},
		{"nil", token.Nil},
		{"or", token.Or},
		{"print", token.Print},
		{"return", token.Return},
		{"super", token.Super},
		{"this", token.This},
		{"true", token.True},
		{"var", token.Var},
		{"while", token.While},
		// near-keywords fall through to identifiers
		{"classy", token.Ident},
		{"vars", token.Ident},
		{"fo", token.Ident},
		{"fal", token.Ident},
		{"trueish", token.Ident},
		{"_for", token.Ident},
	}
	for _, tc := range cases {
		tok := New(tc.input).NextToken()
		if tok.Type != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.input, tc.want, tok.Type)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	l := New("123 3.14 5.")
	expected := []token.Token{
		{Type: token.Number, Lexeme: "123"},
		{Type: token.Number, Lexeme: "3.14"},
		// a trailing dot is not part of the number
		{Type: token.Number, Lexeme: "5"},
		{Type: token.Dot, Lexeme: "."},
		{Type: token.EOF},
	}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.Type || tok.Lexeme != want.Lexeme {
			t.Fatalf("token %d: expected %v %q, got %v %q", i, want.Type, want.Lexeme, tok.Type, tok.Lexeme)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	l := New("\"hello\" \"multi\nline\"")
	tok := l.NextToken()
	if tok.Type != token.String || tok.Lexeme != "\"hello\"" {
		t.Fatalf("expected string token, got %v %q", tok.Type, tok.Lexeme)
	}
	if tok.Line != 1 {
		t.Fatalf("expected line 1, got %d", tok.Line)
	}
	tok = l.NextToken()
	if tok.Type != token.String || tok.Lexeme != "\"multi\nline\"" {
		t.Fatalf("expected multi-line string, got %v %q", tok.Type, tok.Lexeme)
	}
	if next := l.NextToken(); next.Type != token.EOF || next.Line != 2 {
		t.Fatalf("expected EOF on line 2, got %v on line %d", next.Type, next.Line)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	tok := New("\"oops").NextToken()
	if tok.Type != token.Error || tok.Lexeme != "Unterminated string." {
		t.Fatalf("expected unterminated string error, got %v %q", tok.Type, tok.Lexeme)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	tok := New("@").NextToken()
	if tok.Type != token.Error || tok.Lexeme != "Unexpected character." {
		t.Fatalf("expected unexpected character error, got %v %q", tok.Type, tok.Lexeme)
	}
}

func TestLexerCommentsAndLines(t *testing.T) {
	input := `// leading comment
var a = 1; // trailing comment
// only comment
var b = 2;`

	l := New(input)
	expected := []struct {
		typ  token.Type
		line int
	}{
		{token.Var, 2},
		{token.Ident, 2},
		{token.Assign, 2},
		{token.Number, 2},
		{token.Semicolon, 2},
		{token.Var, 4},
		{token.Ident, 4},
		{token.Assign, 4},
		{token.Number, 4},
		{token.Semicolon, 4},
		{token.EOF, 4},
	}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Line != want.line {
			t.Fatalf("token %d: expected %v line %d, got %v line %d", i, want.typ, want.line, tok.Type, tok.Line)
		}
	}
}
