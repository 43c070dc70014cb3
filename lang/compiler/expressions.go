package compiler

import (
	"strconv"

	"github.com/elyk/loxvm/lang/token"
	"github.com/elyk/loxvm/lang/value"
)

func grouping(p *parser, _ bool) {
	expression(p)
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func numberLit(p *parser, _ bool) {
	f, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.cur.emitConstant(value.Number(f))
}

func stringLit(p *parser, _ bool) {
	// Lexeme includes the surrounding quotes.
	raw := p.previous.Lexeme
	chars := raw[1 : len(raw)-1]
	p.cur.emitConstant(p.heap.CopyString(chars))
}

func literal(p *parser, _ bool) {
	switch p.previous.Kind {
	case token.FALSE:
		p.cur.emitByte(value.OpFalse)
	case token.TRUE:
		p.cur.emitByte(value.OpTrue)
	case token.NIL:
		p.cur.emitByte(value.OpNil)
	}
}

func unary(p *parser, _ bool) {
	opKind := p.previous.Kind
	parsePrecedence(p, PrecUnary)
	switch opKind {
	case token.MINUS:
		p.cur.emitByte(value.OpNegate)
	case token.BANG:
		p.cur.emitByte(value.OpNot)
	}
}

func binary(p *parser, _ bool) {
	opKind := p.previous.Kind
	r := getRule(opKind)
	parsePrecedence(p, r.precedence+1)

	switch opKind {
	case token.BANG_EQ:
		p.cur.emitByte(value.OpNotEqual)
	case token.EQ_EQ:
		p.cur.emitByte(value.OpEqual)
	case token.GT:
		p.cur.emitByte(value.OpGreater)
	case token.GT_EQ:
		p.cur.emitByte(value.OpGreaterEqual)
	case token.LT:
		p.cur.emitByte(value.OpLess)
	case token.LT_EQ:
		p.cur.emitByte(value.OpLessEqual)
	case token.PLUS:
		p.cur.emitByte(value.OpAdd)
	case token.MINUS:
		p.cur.emitByte(value.OpSubtract)
	case token.STAR:
		p.cur.emitByte(value.OpMultiply)
	case token.SLASH:
		p.cur.emitByte(value.OpDivide)
	}
}

func and_(p *parser, _ bool) {
	endJump := p.cur.emitJump(value.OpJumpIfFalse)
	p.cur.emitByte(value.OpPop)
	parsePrecedence(p, PrecAnd)
	p.cur.patchJump(endJump)
}

func or_(p *parser, _ bool) {
	elseJump := p.cur.emitJump(value.OpJumpIfFalse)
	endJump := p.cur.emitJump(value.OpJump)
	p.cur.patchJump(elseJump)
	p.cur.emitByte(value.OpPop)
	parsePrecedence(p, PrecOr)
	p.cur.patchJump(endJump)
}

func argumentList(p *parser) byte {
	argc := 0
	if !p.check(token.RPAREN) {
		for {
			expression(p)
			if argc == maxParams {
				p.error("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return byte(argc)
}

func call(p *parser, _ bool) {
	argc := argumentList(p)
	p.cur.emitBytes(value.OpCall, argc)
}

func dot(p *parser, canAssign bool) {
	p.consume(token.IDENT, "Expect property name after '.'.")
	name := identifierConstant(p, p.previous.Lexeme)

	switch {
	case canAssign && p.match(token.EQ):
		expression(p)
		p.cur.emitBytes(value.OpSetProperty, name)
	case p.match(token.LPAREN):
		argc := argumentList(p)
		p.cur.emitBytes(value.OpInvoke, name)
		p.cur.emitRawByte(argc)
	default:
		p.cur.emitBytes(value.OpGetProperty, name)
	}
}

func variable(p *parser, canAssign bool) {
	namedVariable(p, p.previous.Lexeme, canAssign)
}

func this_(p *parser, _ bool) {
	if p.class == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	namedVariable(p, "this", false)
}

func super_(p *parser, _ bool) {
	switch {
	case p.class == nil:
		p.error("Can't use 'super' outside of a class.")
	case !p.class.hasSuperclass:
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENT, "Expect superclass method name.")
	name := identifierConstant(p, p.previous.Lexeme)

	// `this` goes on the stack first, then (for a call) the arguments, then
	// the superclass — matching the CALL convention of receiver/callee at
	// depth argc below the arguments.
	namedVariable(p, "this", false)
	if p.match(token.LPAREN) {
		argc := argumentList(p)
		namedVariable(p, "super", false)
		p.cur.emitBytes(value.OpSuperInvoke, name)
		p.cur.emitRawByte(argc)
		return
	}
	namedVariable(p, "super", false)
	p.cur.emitBytes(value.OpGetSuper, name)
}

// namedVariable resolves name to a local slot, an upvalue, or a global and
// emits the matching get (or, when canAssign and '=' follows, set) opcode.
func namedVariable(p *parser, name string, canAssign bool) {
	var getOp, setOp value.OpCode
	var arg int

	if slot := p.cur.resolveLocal(name); slot != -1 {
		getOp, setOp, arg = value.OpGetLocal, value.OpSetLocal, slot
	} else if slot := p.cur.resolveUpvalue(name); slot != -1 {
		getOp, setOp, arg = value.OpGetUpvalue, value.OpSetUpvalue, slot
	} else {
		arg = int(identifierConstant(p, name))
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	if canAssign && p.match(token.EQ) {
		expression(p)
		p.cur.emitBytes(setOp, byte(arg))
	} else {
		p.cur.emitBytes(getOp, byte(arg))
	}
}

func identifierConstant(p *parser, name string) byte {
	return p.cur.makeConstant(p.heap.CopyString(name))
}
