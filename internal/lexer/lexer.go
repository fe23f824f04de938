package lexer

import (
	"github.com/xirelogy/go-lox/internal/token"
)

// Lexer converts source text into a stream of tokens on demand.
// Tokens are produced lazily: each NextToken call scans exactly one token.
type Lexer struct {
	input   string
	start   int // start of the token being scanned
	current int // current position in bytes
	line    int
}

// New creates a lexer for the provided source text.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.start = l.current

	if l.isAtEnd() {
		return l.makeToken(token.EOF)
	}

	ch := l.advance()

	if isAlpha(ch) {
		return l.readIdentifier()
	}
	if isDigit(ch) {
		return l.readNumber()
	}

	switch ch {
	case '(':
		return l.makeToken(token.LParen)
	case ')':
		return l.makeToken(token.RParen)
	case '{':
		return l.makeToken(token.LBrace)
	case '}':
		return l.makeToken(token.RBrace)
	case ';':
		return l.makeToken(token.Semicolon)
	case ',':
		return l.makeToken(token.Comma)
	case '.':
		return l.makeToken(token.Dot)
	case '-':
		return l.makeToken(token.Minus)
	case '+':
		return l.makeToken(token.Plus)
	case '/':
		return l.makeToken(token.Slash)
	case '*':
		return l.makeToken(token.Star)
	case '!':
		if l.match('=') {
			return l.makeToken(token.NotEqual)
		}
		return l.makeToken(token.Bang)
	case '=':
		if l.match('=') {
			return l.makeToken(token.Equal)
		}
		return l.makeToken(token.Assign)
	case '<':
		if l.match('=') {
			return l.makeToken(token.LessEqual)
		}
		return l.makeToken(token.Less)
	case '>':
		if l.match('=') {
			return l.makeToken(token.GreaterEqual)
		}
		return l.makeToken(token.Greater)
	case '"':
		return l.readString()
	}

	return l.errorToken("Unexpected character.")
}

func (l *Lexer) makeToken(t token.Type) token.Token {
	return token.Token{
		Type:   t,
		Lexeme: l.input[l.start:l.current],
		Line:   l.line,
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{
		Type:   token.Error,
		Lexeme: message,
		Line:   l.line,
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.line++
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	return l.makeToken(l.identifierType())
}

// identifierType recognizes keywords with a hand-coded trie over the
// identifier's bytes, branching on the shortest unique prefix.
func (l *Lexer) identifierType() token.Type {
	switch l.input[l.start] {
	case 'a':
		return l.checkKeyword(1, "nd", token.And)
	case 'c':
		return l.checkKeyword(1, "lass", token.Class)
	case 'e':
		return l.checkKeyword(1, "lse", token.Else)
	case 'f':
		if l.current-l.start > 1 {
			switch l.input[l.start+1] {
			case 'a':
				return l.checkKeyword(2, "lse", token.False)
			case 'o':
				return l.checkKeyword(2, "r", token.For)
			case 'u':
				return l.checkKeyword(2, "n", token.Fun)
			}
		}
	case 'i':
		return l.checkKeyword(1, "f", token.If)
	case 'n':
		return l.checkKeyword(1, "il", token.Nil)
	case 'o':
		return l.checkKeyword(1, "r", token.Or)
	case 'p':
		return l.checkKeyword(1, "rint", token.Print)
	case 'r':
		return l.checkKeyword(1, "eturn", token.Return)
	case 's':
		return l.checkKeyword(1, "uper", token.Super)
	case 't':
		if l.current-l.start > 1 {
			switch l.input[l.start+1] {
			case 'h':
				return l.checkKeyword(2, "is", token.This)
			case 'r':
				return l.checkKeyword(2, "ue", token.True)
			}
		}
	case 'v':
		return l.checkKeyword(1, "ar", token.Var)
	case 'w':
		return l.checkKeyword(1, "hile", token.While)
	}
	return token.Ident
}

func (l *Lexer) checkKeyword(offset int, rest string, t token.Type) token.Type {
	if l.input[l.start+offset:l.current] == rest {
		return t
	}
	return token.Ident
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	// fractional part only when a digit follows the dot
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(token.Number)
}

func (l *Lexer) readString() token.Token {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.isAtEnd() {
		return l.errorToken("Unterminated string.")
	}
	l.advance() // closing quote
	return l.makeToken(token.String)
}

func (l *Lexer) advance() byte {
	ch := l.input[l.current]
	l.current++
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.input[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.input[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.input) {
		return 0
	}
	return l.input[l.current+1]
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.input)
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
