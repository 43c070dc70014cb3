package clio_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/elyk/loxvm/internal/clio"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.lox")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestTokenizePrintsOneLinePerToken(t *testing.T) {
	path := writeTemp(t, `var a = 1;`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{}
	err := c.Tokenize(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	require.Contains(t, out.String(), "VAR var null")
	require.Contains(t, out.String(), "NUMBER 1 1.0")
	require.Contains(t, out.String(), "EOF  null")
}

func TestRunExecutesProgram(t *testing.T) {
	path := writeTemp(t, `print "hello";`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	require.Equal(t, "hello\n", out.String())
}

func TestRunReportsCompileError(t *testing.T) {
	path := writeTemp(t, `var a = ;`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.Error(t, err)
	require.NotEmpty(t, errOut.String())
}

func TestRunReportsRuntimeError(t *testing.T) {
	path := writeTemp(t, `print 1 + "two";`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{}
	err := c.Run(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.Error(t, err)
	require.Contains(t, errOut.String(), "Operands must be two numbers or two strings.")
}

func TestEvaluatePrintsExpressionValue(t *testing.T) {
	path := writeTemp(t, `1 + 2 * 3`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{}
	err := c.Evaluate(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	require.Equal(t, "7\n", out.String())
}

func TestParsePrintsBytecodeListing(t *testing.T) {
	path := writeTemp(t, `print 1 + 2;`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{}
	err := c.Parse(context.Background(), mainer.Stdio{Stdout: &out, Stderr: &errOut}, []string{path})
	require.NoError(t, err)
	require.Contains(t, out.String(), "OP_ADD")
	require.Contains(t, out.String(), "OP_PRINT")
}

func TestMainMapsCompileErrorToExit65(t *testing.T) {
	path := writeTemp(t, `var a = ;`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{BuildVersion: "0.0.0", BuildDate: "2026-01-01"}
	code := c.Main([]string{"loxvm", "run", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.EqualValues(t, 65, code)
}

func TestMainMapsRuntimeErrorToExit70(t *testing.T) {
	path := writeTemp(t, `print 1 + "two";`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{BuildVersion: "0.0.0", BuildDate: "2026-01-01"}
	code := c.Main([]string{"loxvm", "run", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.EqualValues(t, 70, code)
}

func TestMainSuccessIsZero(t *testing.T) {
	path := writeTemp(t, `print "ok";`)
	var out, errOut bytes.Buffer
	c := &clio.Cmd{BuildVersion: "0.0.0", BuildDate: "2026-01-01"}
	code := c.Main([]string{"loxvm", "run", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.EqualValues(t, 0, code)
	require.Equal(t, "ok\n", out.String())
}

func TestMainUnknownCommandIsInvalidArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &clio.Cmd{}
	code := c.Main([]string{"loxvm", "bogus", "whatever"}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.NotEqualValues(t, 0, code)
}
