package compiler

import (
	"github.com/elyk/loxvm/lang/token"
	"github.com/elyk/loxvm/lang/value"
)

func declaration(p *parser) {
	switch {
	case p.match(token.CLASS):
		classDecl(p)
	case p.match(token.FUN):
		funDecl(p)
	case p.match(token.VAR):
		varDecl(p)
	default:
		statement(p)
	}
	if p.panicMode {
		p.synchronize()
	}
}

func statement(p *parser) {
	switch {
	case p.match(token.PRINT):
		printStatement(p)
	case p.match(token.IF):
		ifStatement(p)
	case p.match(token.RETURN):
		returnStatement(p)
	case p.match(token.WHILE):
		whileStatement(p)
	case p.match(token.FOR):
		forStatement(p)
	case p.match(token.LBRACE):
		p.cur.beginScope()
		block(p)
		p.cur.endScope()
	default:
		expressionStatement(p)
	}
}

func block(p *parser) {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		declaration(p)
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func printStatement(p *parser) {
	expression(p)
	p.consume(token.SEMI, "Expect ';' after value.")
	p.cur.emitByte(value.OpPrint)
}

func expressionStatement(p *parser) {
	expression(p)
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.cur.emitByte(value.OpPop)
}

func ifStatement(p *parser) {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	expression(p)
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.cur.emitJump(value.OpJumpIfFalse)
	p.cur.emitByte(value.OpPop)
	statement(p)

	elseJump := p.cur.emitJump(value.OpJump)
	p.cur.patchJump(thenJump)
	p.cur.emitByte(value.OpPop)

	if p.match(token.ELSE) {
		statement(p)
	}
	p.cur.patchJump(elseJump)
}

func whileStatement(p *parser) {
	loopStart := len(p.cur.chunk().Code)
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	expression(p)
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.cur.emitJump(value.OpJumpIfFalse)
	p.cur.emitByte(value.OpPop)
	statement(p)
	p.cur.emitLoop(loopStart)

	p.cur.patchJump(exitJump)
	p.cur.emitByte(value.OpPop)
}

func forStatement(p *parser) {
	p.cur.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMI):
		// no initializer
	case p.match(token.VAR):
		varDecl(p)
	default:
		expressionStatement(p)
	}

	loopStart := len(p.cur.chunk().Code)
	exitJump := -1
	if !p.match(token.SEMI) {
		expression(p)
		p.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = p.cur.emitJump(value.OpJumpIfFalse)
		p.cur.emitByte(value.OpPop)
	}

	if !p.check(token.RPAREN) {
		bodyJump := p.cur.emitJump(value.OpJump)
		incStart := len(p.cur.chunk().Code)
		expression(p)
		p.cur.emitByte(value.OpPop)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.cur.emitLoop(loopStart)
		loopStart = incStart
		p.cur.patchJump(bodyJump)
	} else {
		p.consume(token.RPAREN, "Expect ')' after for clauses.")
	}

	statement(p)
	p.cur.emitLoop(loopStart)

	if exitJump != -1 {
		p.cur.patchJump(exitJump)
		p.cur.emitByte(value.OpPop)
	}
	p.cur.endScope()
}

func returnStatement(p *parser) {
	if p.cur.typ == funcTypeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.SEMI) {
		p.cur.emitReturn()
		return
	}
	if p.cur.typ == funcTypeInitializer {
		p.error("Can't return a value from an initializer.")
	}
	expression(p)
	p.consume(token.SEMI, "Expect ';' after return value.")
	p.cur.emitByte(value.OpReturn)
}

// --- declarations ----------------------------------------------------------

func parseVariable(p *parser, errMsg string) byte {
	p.consume(token.IDENT, errMsg)
	declareVariable(p)
	if p.cur.scopeDepth > 0 {
		return 0 // locals aren't looked up by name at runtime
	}
	return identifierConstant(p, p.previous.Lexeme)
}

func declareVariable(p *parser) {
	if p.cur.scopeDepth == 0 {
		return
	}
	name := p.previous.Lexeme
	for i := len(p.cur.locals) - 1; i >= 0; i-- {
		l := p.cur.locals[i]
		if l.depth != localDepthUndefined && l.depth < p.cur.scopeDepth {
			break
		}
		if l.name == name {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.cur.addLocal(name)
}

func defineVariable(p *parser, global byte) {
	if p.cur.scopeDepth > 0 {
		p.cur.markInitialized()
		return
	}
	p.cur.emitBytes(value.OpDefineGlobal, global)
}

func varDecl(p *parser) {
	global := parseVariable(p, "Expect variable name.")
	if p.match(token.EQ) {
		expression(p)
	} else {
		p.cur.emitByte(value.OpNil)
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")
	defineVariable(p, global)
}

func funDecl(p *parser) {
	global := parseVariable(p, "Expect function name.")
	p.cur.markInitialized()
	function(p, funcTypeFunction)
	defineVariable(p, global)
}

// function compiles the parameter list and body of a fun/method as a
// nested Compiler, then emits CLOSURE followed by one (isLocal, index)
// byte pair per upvalue so the VM can wire up captures at runtime.
func function(p *parser, typ funcType) {
	name := p.heap.CopyString(p.previous.Lexeme)
	enclosing := p.cur
	c := newCompiler(p, enclosing, typ, name)
	p.cur = c
	c.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			c.fn.Arity++
			if c.fn.Arity > maxParams {
				p.error("Can't have more than 255 parameters.")
			}
			constant := parseVariable(p, "Expect parameter name.")
			defineVariable(p, constant)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	block(p)

	fn := finishCompiler(p)
	p.cur = enclosing

	p.cur.emitBytes(value.OpClosure, p.cur.makeConstant(fn))
	for _, uv := range c.upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		p.cur.emitRawByte(isLocal)
		p.cur.emitRawByte(uv.index)
	}
}

func classDecl(p *parser) {
	p.consume(token.IDENT, "Expect class name.")
	nameTok := p.previous
	nameConstant := identifierConstant(p, nameTok.Lexeme)
	declareVariable(p)

	p.cur.emitBytes(value.OpClass, nameConstant)
	defineVariable(p, nameConstant)

	cc := &classCompiler{enclosing: p.class}
	p.class = cc

	if p.match(token.LT) {
		p.consume(token.IDENT, "Expect superclass name.")
		variable(p, false)
		if nameTok.Lexeme == p.previous.Lexeme {
			p.error("A class can't inherit from itself.")
		}

		p.cur.beginScope()
		p.cur.addLocal("super")
		p.cur.markInitialized()

		namedVariable(p, nameTok.Lexeme, false)
		p.cur.emitByte(value.OpInherit)
		cc.hasSuperclass = true
	}

	namedVariable(p, nameTok.Lexeme, false)
	p.consume(token.LBRACE, "Expect '{' before class body.")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		method(p)
	}
	p.consume(token.RBRACE, "Expect '}' after class body.")
	p.cur.emitByte(value.OpPop) // the class itself

	if cc.hasSuperclass {
		p.cur.endScope()
	}
	p.class = cc.enclosing
}

func method(p *parser) {
	p.consume(token.IDENT, "Expect method name.")
	name := p.previous.Lexeme
	constant := identifierConstant(p, name)

	typ := funcTypeMethod
	if name == "init" {
		typ = funcTypeInitializer
	}
	function(p, typ)
	p.cur.emitBytes(value.OpMethod, constant)
}
