package compiler

import "github.com/elyk/loxvm/lang/token"

// Precedence levels, ascending.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(p *parser, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LPAREN:  {prefix: grouping, infix: call, precedence: PrecCall},
		token.DOT:     {infix: dot, precedence: PrecCall},
		token.MINUS:   {prefix: unary, infix: binary, precedence: PrecTerm},
		token.PLUS:    {infix: binary, precedence: PrecTerm},
		token.SLASH:   {infix: binary, precedence: PrecFactor},
		token.STAR:    {infix: binary, precedence: PrecFactor},
		token.BANG:    {prefix: unary},
		token.BANG_EQ:  {infix: binary, precedence: PrecEquality},
		token.EQ_EQ:    {infix: binary, precedence: PrecEquality},
		token.GT:      {infix: binary, precedence: PrecComparison},
		token.GT_EQ:   {infix: binary, precedence: PrecComparison},
		token.LT:      {infix: binary, precedence: PrecComparison},
		token.LT_EQ:   {infix: binary, precedence: PrecComparison},
		token.IDENT:   {prefix: variable},
		token.STRING:  {prefix: stringLit},
		token.NUMBER:  {prefix: numberLit},
		token.AND:     {infix: and_, precedence: PrecAnd},
		token.OR:      {infix: or_, precedence: PrecOr},
		token.FALSE:   {prefix: literal},
		token.TRUE:    {prefix: literal},
		token.NIL:     {prefix: literal},
		token.THIS:    {prefix: this_},
		token.SUPER:   {prefix: super_},
	}
}

func getRule(k token.Kind) rule { return rules[k] }

// parsePrecedence parses an expression of at least the given precedence,
// threading canAssign through the prefix rule so `=` is only consumed by
// an assignable target at the top of the precedence climb.
func parsePrecedence(p *parser, prec Precedence) {
	p.advance()
	prefixRule := getRule(p.previous.Kind).prefix
	if prefixRule == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefixRule(p, canAssign)

	for prec <= getRule(p.current.Kind).precedence {
		p.advance()
		infixRule := getRule(p.previous.Kind).infix
		infixRule(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func expression(p *parser) { parsePrecedence(p, PrecAssignment) }
