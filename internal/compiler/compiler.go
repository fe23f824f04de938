package compiler

import (
	"fmt"
	"strconv"

	"github.com/xirelogy/go-lox/internal/bytecode"
	"github.com/xirelogy/go-lox/internal/lexer"
	"github.com/xirelogy/go-lox/internal/token"
)

// maxLocals bounds the local slots of one function; slot indices are one
// byte and slot 0 is reserved for the callee.
const maxLocals = 256

// maxJump bounds the distance of a single jump or loop operand.
const maxJump = 65535

// Compile translates source text into the top-level script prototype in a
// single pass: the parser emits bytecode as it goes, with no intermediate
// tree. On any compile error it returns the collected diagnostics instead.
func Compile(source string) (*bytecode.Prototype, []error) {
	p := &parser{lex: lexer.New(source)}
	p.fc = newFuncCompiler(nil, kindScript, "")

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	proto := p.endFunction()
	if p.hadError {
		return nil, p.errors
	}
	return proto, nil
}

type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
)

// local is one declared local variable. A depth of -1 marks a local whose
// initializer is still being compiled; reading it is a compile error.
type local struct {
	name  string
	depth int
}

// funcCompiler carries the per-function compilation state. Nested function
// declarations push a child compiler linked through enclosing, mirroring
// the nesting of the source.
type funcCompiler struct {
	enclosing  *funcCompiler
	proto      *bytecode.Prototype
	kind       funcKind
	locals     []local
	scopeDepth int
}

func newFuncCompiler(enclosing *funcCompiler, kind funcKind, name string) *funcCompiler {
	fc := &funcCompiler{
		enclosing: enclosing,
		proto:     &bytecode.Prototype{Name: name, Chunk: &bytecode.Chunk{}},
		kind:      kind,
		locals:    make([]local, 0, 8),
	}
	// slot 0 holds the callee itself
	fc.locals = append(fc.locals, local{name: "", depth: 0})
	return fc
}

// parser holds the token window and error state shared by every function
// compiler in the chain.
type parser struct {
	lex       *lexer.Lexer
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	errors    []error
	fc        *funcCompiler
}

// precedence levels, lowest binding first.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LParen:       {prefix: (*parser).grouping, infix: (*parser).call, prec: precCall},
		token.Minus:        {prefix: (*parser).unary, infix: (*parser).binary, prec: precTerm},
		token.Plus:         {infix: (*parser).binary, prec: precTerm},
		token.Slash:        {infix: (*parser).binary, prec: precFactor},
		token.Star:         {infix: (*parser).binary, prec: precFactor},
		token.Bang:         {prefix: (*parser).unary},
		token.NotEqual:     {infix: (*parser).binary, prec: precEquality},
		token.Equal:        {infix: (*parser).binary, prec: precEquality},
		token.Greater:      {infix: (*parser).binary, prec: precComparison},
		token.GreaterEqual: {infix: (*parser).binary, prec: precComparison},
		token.Less:         {infix: (*parser).binary, prec: precComparison},
		token.LessEqual:    {infix: (*parser).binary, prec: precComparison},
		token.Ident:        {prefix: (*parser).variable},
		token.String:       {prefix: (*parser).stringLiteral},
		token.Number:       {prefix: (*parser).number},
		token.And:          {infix: (*parser).and, prec: precAnd},
		token.Or:           {infix: (*parser).or, prec: precOr},
		token.False:        {prefix: (*parser).literal},
		token.True:         {prefix: (*parser).literal},
		token.Nil:          {prefix: (*parser).literal},
	}
}

// parsePrecedence compiles everything at the given precedence or tighter.
// canAssign threads through the parselets so that only an identifier parsed
// at assignment level may consume a trailing '='; a leftover '=' afterwards
// is an invalid assignment target.
func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := rules[p.previous.Type].prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= rules[p.current.Type].prec {
		p.advance()
		rules[p.previous.Type].infix(p, canAssign)
	}

	if canAssign && p.match(token.Assign) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) expression() {
	p.parsePrecedence(precAssignment)
}

// ---- declarations and statements ----

func (p *parser) declaration() {
	if p.match(token.Fun) {
		p.funDeclaration()
	} else if p.match(token.Var) {
		p.varDeclaration()
	} else {
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	// the name is usable inside the body so the function can recurse
	p.markInitialized()
	p.function(kindFunction)
	p.defineVariable(global)
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(token.Assign) {
		p.expression()
	} else {
		p.emitByte(OP_NIL)
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *parser) statement() {
	switch {
	case p.match(token.Print):
		p.printStatement()
	case p.match(token.If):
		p.ifStatement()
	case p.match(token.While):
		p.whileStatement()
	case p.match(token.For):
		p.forStatement()
	case p.match(token.Return):
		p.returnStatement()
	case p.match(token.LBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	p.emitByte(OP_PRINT)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	p.emitByte(OP_POP)
}

func (p *parser) block() {
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBrace, "Expect '}' after block.")
}

func (p *parser) ifStatement() {
	p.consume(token.LParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RParen, "Expect ')' after condition.")

	thenJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitByte(OP_POP)
	p.statement()
	elseJump := p.emitJump(OP_JUMP)

	p.patchJump(thenJump)
	p.emitByte(OP_POP)
	if p.match(token.Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := p.currentOffset()
	p.consume(token.LParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RParen, "Expect ')' after condition.")

	exitJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitByte(OP_POP)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitByte(OP_POP)
}

func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LParen, "Expect '(' after 'for'.")
	if p.match(token.Semicolon) {
		// no initializer
	} else if p.match(token.Var) {
		p.varDeclaration()
	} else {
		p.expressionStatement()
	}

	loopStart := p.currentOffset()
	exitJump := -1
	if !p.match(token.Semicolon) {
		p.expression()
		p.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(OP_JUMP_IF_FALSE)
		p.emitByte(OP_POP)
	}

	if !p.match(token.RParen) {
		// the increment runs after the body: jump over it now, loop back
		// to it from the body's end
		bodyJump := p.emitJump(OP_JUMP)
		incrementStart := p.currentOffset()
		p.expression()
		p.emitByte(OP_POP)
		p.consume(token.RParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitByte(OP_POP)
	}
	p.endScope()
}

func (p *parser) returnStatement() {
	if p.fc.kind == kindScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.Semicolon) {
		p.emitReturn()
	} else {
		p.expression()
		p.consume(token.Semicolon, "Expect ';' after return value.")
		p.emitByte(OP_RETURN)
	}
}

// function compiles a declaration body into a fresh prototype and emits it
// into the enclosing chunk as a constant. The body's scope is never closed
// explicitly; OP_RETURN discards the function's stack window at runtime.
func (p *parser) function(kind funcKind) {
	p.fc = newFuncCompiler(p.fc, kind, p.previous.Lexeme)
	p.beginScope()

	p.consume(token.LParen, "Expect '(' after function name.")
	if !p.check(token.RParen) {
		for {
			p.fc.proto.Arity++
			if p.fc.proto.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			idx := p.parseVariable("Expect parameter name.")
			p.defineVariable(idx)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RParen, "Expect ')' after parameters.")
	p.consume(token.LBrace, "Expect '{' before function body.")
	p.block()

	proto := p.endFunction()
	p.emitBytes(OP_CONSTANT, p.makeConstant(proto))
}

func (p *parser) endFunction() *bytecode.Prototype {
	p.emitReturn()
	proto := p.fc.proto
	p.fc = p.fc.enclosing
	return proto
}

// ---- scope and variable bookkeeping ----

func (p *parser) beginScope() {
	p.fc.scopeDepth++
}

func (p *parser) endScope() {
	p.fc.scopeDepth--
	for len(p.fc.locals) > 0 && p.fc.locals[len(p.fc.locals)-1].depth > p.fc.scopeDepth {
		p.emitByte(OP_POP)
		p.fc.locals = p.fc.locals[:len(p.fc.locals)-1]
	}
}

// parseVariable consumes an identifier and returns its constant-pool index
// for globals; locals live in stack slots and need no constant.
func (p *parser) parseVariable(message string) byte {
	p.consume(token.Ident, message)
	p.declareVariable()
	if p.fc.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *parser) declareVariable() {
	if p.fc.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := len(p.fc.locals) - 1; i >= 0; i-- {
		l := &p.fc.locals[i]
		if l.depth != -1 && l.depth < p.fc.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name token.Token) {
	if len(p.fc.locals) == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.fc.locals = append(p.fc.locals, local{name: name.Lexeme, depth: -1})
}

// markInitialized completes a local declaration once its initializer has
// been compiled; globals are defined by the emitted instruction instead.
func (p *parser) markInitialized() {
	if p.fc.scopeDepth == 0 {
		return
	}
	p.fc.locals[len(p.fc.locals)-1].depth = p.fc.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.fc.scopeDepth > 0 {
		// the initializer's value already sits in the local's slot
		p.markInitialized()
		return
	}
	p.emitBytes(OP_DEFINE_GLOBAL, global)
}

// resolveLocal scans the locals most recent first so shadowing finds the
// innermost declaration.
func (p *parser) resolveLocal(name token.Token) (int, bool) {
	for i := len(p.fc.locals) - 1; i >= 0; i-- {
		l := &p.fc.locals[i]
		if l.name == name.Lexeme {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i, true
		}
	}
	return 0, false
}

func (p *parser) identifierConstant(name token.Token) byte {
	return p.makeConstant(name.Lexeme)
}

// ---- expression parselets ----

func (p *parser) grouping(_ bool) {
	p.expression()
	p.consume(token.RParen, "Expect ')' after expression.")
}

func (p *parser) number(_ bool) {
	v, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(v)
}

func (p *parser) stringLiteral(_ bool) {
	lex := p.previous.Lexeme
	// string content is the raw bytes between the quotes
	p.emitConstant(lex[1 : len(lex)-1])
}

func (p *parser) literal(_ bool) {
	switch p.previous.Type {
	case token.False:
		p.emitByte(OP_FALSE)
	case token.True:
		p.emitByte(OP_TRUE)
	default:
		p.emitByte(OP_NIL)
	}
}

func (p *parser) unary(_ bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case token.Minus:
		p.emitByte(OP_NEGATE)
	case token.Bang:
		p.emitByte(OP_NOT)
	}
}

func (p *parser) binary(_ bool) {
	opType := p.previous.Type
	// compile the right operand one level tighter for left associativity
	p.parsePrecedence(rules[opType].prec + 1)

	switch opType {
	case token.Plus:
		p.emitByte(OP_ADD)
	case token.Minus:
		p.emitByte(OP_SUBTRACT)
	case token.Star:
		p.emitByte(OP_MULTIPLY)
	case token.Slash:
		p.emitByte(OP_DIVIDE)
	case token.Equal:
		p.emitByte(OP_EQUAL)
	case token.NotEqual:
		p.emitBytes(OP_EQUAL, OP_NOT)
	case token.Greater:
		p.emitByte(OP_GREATER)
	case token.GreaterEqual:
		p.emitBytes(OP_LESS, OP_NOT)
	case token.Less:
		p.emitByte(OP_LESS)
	case token.LessEqual:
		p.emitBytes(OP_GREATER, OP_NOT)
	}
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp, arg byte
	if slot, ok := p.resolveLocal(name); ok {
		getOp, setOp, arg = OP_GET_LOCAL, OP_SET_LOCAL, byte(slot)
	} else {
		getOp, setOp, arg = OP_GET_GLOBAL, OP_SET_GLOBAL, p.identifierConstant(name)
	}
	if canAssign && p.match(token.Assign) {
		p.expression()
		p.emitBytes(setOp, arg)
	} else {
		p.emitBytes(getOp, arg)
	}
}

// and short-circuits: with a falsey left operand the jump skips the right
// operand and the left value remains as the result.
func (p *parser) and(_ bool) {
	endJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitByte(OP_POP)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *parser) or(_ bool) {
	elseJump := p.emitJump(OP_JUMP_IF_FALSE)
	endJump := p.emitJump(OP_JUMP)
	p.patchJump(elseJump)
	p.emitByte(OP_POP)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *parser) call(_ bool) {
	argc := p.argumentList()
	p.emitBytes(OP_CALL, argc)
}

func (p *parser) argumentList() byte {
	count := 0
	if !p.check(token.RParen) {
		for {
			p.expression()
			if count == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			count++
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RParen, "Expect ')' after arguments.")
	return byte(count)
}

// ---- token plumbing ----

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.NextToken()
		if p.current.Type != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) consume(t token.Type, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *parser) check(t token.Type) bool {
	return p.current.Type == t
}

func (p *parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

// synchronize skips forward to a likely statement boundary so one mistake
// does not cascade into a wall of diagnostics.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Type != token.EOF {
		if p.previous.Type == token.Semicolon {
			return
		}
		switch p.current.Type {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// ---- error reporting ----

func (p *parser) error(message string) {
	p.errorAt(p.previous, message)
}

func (p *parser) errorAtCurrent(message string) {
	p.errorAt(p.current, message)
}

func (p *parser) errorAt(tok token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	var where string
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.Error:
		// scanner errors carry their own message; no location suffix
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	p.errors = append(p.errors, fmt.Errorf("[line %d] Error%s: %s", tok.Line, where, message))
}

// ---- code emission ----

func (p *parser) chunk() *bytecode.Chunk {
	return p.fc.proto.Chunk
}

func (p *parser) currentOffset() int {
	return len(p.chunk().Code)
}

func (p *parser) emitByte(b byte) {
	p.chunk().Write(b, p.previous.Line)
}

func (p *parser) emitBytes(bs ...byte) {
	for _, b := range bs {
		p.emitByte(b)
	}
}

func (p *parser) emitReturn() {
	p.emitByte(OP_NIL)
	p.emitByte(OP_RETURN)
}

func (p *parser) emitConstant(v interface{}) {
	p.emitBytes(OP_CONSTANT, p.makeConstant(v))
}

func (p *parser) makeConstant(v interface{}) byte {
	idx := p.chunk().AddConstant(v)
	if idx >= bytecode.MaxConsts {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

// emitJump writes the opcode with a two-byte placeholder and returns the
// placeholder's offset for patchJump.
func (p *parser) emitJump(op byte) int {
	p.emitByte(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return p.currentOffset() - 2
}

func (p *parser) patchJump(pos int) {
	jump := p.currentOffset() - pos - 2
	if jump > maxJump {
		p.error("Too much code to jump over.")
	}
	p.chunk().Code[pos] = byte(jump >> 8)
	p.chunk().Code[pos+1] = byte(jump)
}

func (p *parser) emitLoop(loopStart int) {
	p.emitByte(OP_LOOP)
	offset := p.currentOffset() - loopStart + 2
	if offset > maxJump {
		p.error("Loop body too large.")
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset))
}
