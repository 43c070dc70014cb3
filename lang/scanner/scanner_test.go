package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elyk/loxvm/lang/scanner"
	"github.com/elyk/loxvm/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s scanner.Scanner
	s.Init([]byte(src))
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	toks := scanAll(t, "var a = 1 + 2;\nprint a;")
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	require.Equal(t, []token.Kind{
		token.VAR, token.IDENT, token.EQ, token.NUMBER, token.PLUS, token.NUMBER, token.SEMI,
		token.PRINT, token.IDENT, token.SEMI, token.EOF,
	}, kinds)
	require.Equal(t, 2, toks[len(toks)-1].Line)
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `"foo bar"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `"foo bar"`, toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"foo`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Equal(t, "Unterminated string.", toks[0].Lexeme)
}

func TestScanNumber(t *testing.T) {
	toks := scanAll(t, "123 1.5")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "1.5", toks[1].Lexeme)
}

func TestScanSkipsComments(t *testing.T) {
	toks := scanAll(t, "// a comment\nvar")
	require.Equal(t, token.VAR, toks[0].Kind)
	require.Equal(t, 2, toks[0].Line)
}

func TestScanTwoCharOperators(t *testing.T) {
	toks := scanAll(t, "!= == <= >= ! = < >")
	kinds := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.BANG_EQ, token.EQ_EQ, token.LT_EQ, token.GT_EQ,
		token.BANG, token.EQ, token.LT, token.GT, token.EOF,
	}, kinds)
}
