// Package compiler implements the single forward pass that turns a token
// stream directly into bytecode: there is no intermediate AST. Parsing
// follows Pratt precedence climbing, with scope and upvalue resolution
// folded into the same pass (see Compiler, in compiler.go).
package compiler

import (
	"fmt"
	gotoken "go/token"

	"github.com/elyk/loxvm/lang/scanner"
	"github.com/elyk/loxvm/lang/token"
	"github.com/elyk/loxvm/lang/value"
)

// debug, like the teacher's compiler package, gates trace output without
// a build tag: flip it in a debugger session, never in committed code.
var debug = false

// parser holds the state shared by every nested function compiler during
// one source compilation: the token cursor, accumulated diagnostics, and
// the top of the function-compiler and class-compiler stacks.
type parser struct {
	sc       *scanner.Scanner
	filename string

	previous token.Token
	current  token.Token

	errs      ErrorList
	panicMode bool
	hadError  bool

	heap *value.Heap

	cur   *Compiler      // innermost function compiler
	class *classCompiler // innermost class compiler, nil outside any class
}

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.sc.Scan()
		if p.current.Kind != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(k token.Kind) bool { return p.current.Kind == k }

func (p *parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(k token.Kind, msg string) {
	if p.current.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }

func (p *parser) error(msg string) { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	var desc string
	switch tok.Kind {
	case token.EOF:
		desc = "Error at end: " + msg
	case token.ILLEGAL:
		// The scanner's lexeme for an error token is the diagnostic itself,
		// not source text, so there is nothing meaningful to quote.
		desc = "Error: " + msg
	default:
		desc = fmt.Sprintf("Error at '%s': %s", tok.Lexeme, msg)
	}
	p.errs.Add(gotoken.Position{Filename: p.filename, Line: tok.Line}, desc)
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so a single error does not cascade into a flood of spurious ones.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.SEMI {
			return
		}
		switch p.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
