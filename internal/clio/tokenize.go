package clio

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mna/mainer"

	"github.com/elyk/loxvm/lang/scanner"
	"github.com/elyk/loxvm/lang/token"
)

// Tokenize implements the `tokenize` subcommand: scan the file and print
// one line per token as KIND LEXEME LITERAL, matching printToken's three
// columns (LITERAL is the string "null" for anything without its own
// literal value).
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return tokenizeFile(stdio, args[0])
}

func tokenizeFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &compileError{err}
	}

	var sc scanner.Scanner
	sc.Init(src)
	for {
		tok := sc.Scan()
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", tok.Kind, tok.Lexeme, literalOf(tok))
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.ILLEGAL {
			err = &compileError{fmt.Errorf("%s: line %d: %s", path, tok.Line, tok.Lexeme)}
		}
	}
	return err
}

// literalOf renders the LITERAL column: the unquoted contents for STRING,
// the parsed value for NUMBER (one fractional digit for whole numbers, nine
// significant digits otherwise), and "null" for everything else.
func literalOf(tok token.Token) string {
	switch tok.Kind {
	case token.STRING:
		return tok.Lexeme[1 : len(tok.Lexeme)-1]
	case token.NUMBER:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return "null"
		}
		if v == float64(int64(v)) {
			return strconv.FormatFloat(v, 'f', 1, 64)
		}
		return strconv.FormatFloat(v, 'g', 9, 64)
	default:
		return "null"
	}
}
