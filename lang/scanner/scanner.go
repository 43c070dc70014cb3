// Package scanner tokenizes source text for the compiler. It produces
// tokens on demand. Every Token.Lexeme is a Go string copied out of the
// source buffer, so each token allocates its own lexeme and does not share
// memory with the source.
package scanner

import (
	"github.com/elyk/loxvm/lang/token"
)

// Scanner tokenizes a single source buffer. The zero value is not usable;
// call Init first.
type Scanner struct {
	src     []byte
	start   int // start of the lexeme currently being scanned
	current int // offset of the next byte to read
	line    int
}

// Init prepares s to scan src from the beginning.
func (s *Scanner) Init(src []byte) {
	s.src = src
	s.start = 0
	s.current = 0
	s.line = 1
}

// Scan returns the next token. Once it returns a token.EOF token, every
// subsequent call keeps returning token.EOF.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespaceAndComments()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case ';':
		return s.make(token.SEMI)
	case '*':
		return s.make(token.STAR)
	case '/':
		return s.make(token.SLASH)
	case '!':
		return s.makeIf('=', token.BANG_EQ, token.BANG)
	case '=':
		return s.makeIf('=', token.EQ_EQ, token.EQ)
	case '<':
		return s.makeIf('=', token.LT_EQ, token.LT)
	case '>':
		return s.makeIf('=', token.GT_EQ, token.GT)
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.current] != want {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lit := string(s.src[s.start:s.current])
	return s.make(token.Lookup(lit))
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

// string scans a "..." literal. There is no escape processing: the spec
// defines strings as raw byte sequences between quotes.
func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // the closing quote
	return s.make(token.STRING)
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: string(s.src[s.start:s.current]), Line: s.line}
}

func (s *Scanner) makeIf(next byte, matched, unmatched token.Kind) token.Token {
	if s.match(next) {
		return s.make(matched)
	}
	return s.make(unmatched)
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Kind: token.ILLEGAL, Lexeme: msg, Line: s.line}
}
