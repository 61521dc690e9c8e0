package eval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pontaoski/tinyscript/ast"
	"github.com/pontaoski/tinyscript/errors"
	"github.com/pontaoski/tinyscript/parser"
	"github.com/pontaoski/tinyscript/value"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, *Context, error) {
	t.Helper()
	prog, diags, err := parser.Parse(strings.NewReader(src), "test")
	require.NoError(t, err)
	require.Empty(t, diags.List(), "source: %q", src)

	var out bytes.Buffer
	ctx := NewContext(&out)
	err = Run(ctx, prog)
	return out.String(), ctx, err
}

func requireRuntimeError(t *testing.T, err error, kind errors.RuntimeErrorKind, msg string, line int) {
	t.Helper()
	require.Error(t, err)
	rerr, ok := err.(*errors.RuntimeError)
	require.True(t, ok, "got %T, want *errors.RuntimeError", err)
	require.Equal(t, kind, rerr.Kind)
	require.Equal(t, msg, rerr.Message)
	require.Equal(t, line, rerr.Line)
}

func TestPrograms(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print 1+2*3\n", "7"},
		{"set x 5; print x-1\n", "4"},
		{"print \"ab\"*3\n", "ababab"},
		{"print 3*\"ab\"\n", "ababab"},
		{"print \"ab\"*1; print \"|\"; print \"ab\"*0; print \"|\"\n", "ab||"},
		{"if 0 begin print 1 end\n", ""},
		{"if 2 begin print 1 end\n", "1"},
		{"loop 0 begin print 1 end\n", ""},
		{"print (1+2)*3; print \" \"; print 7/2; print \" \"; print 0-7/2\n", "9 3 -3"},
		{"print 10-4-3; print \",\"; print 100/10/5\n", "3,2"},
		{"set s \"a\"; set s s+\"b\"; print s\n", "ab"},
		{"set i 3\nloop i begin\n\tprint i\n\tprint \"\\n\"\n\tset i i-1\nend\n", "3\n2\n1\n"},
		{"set n 0\nloop 5-n begin\n\tif n-2 begin print n end\n\tset n n+1\nend\n", "0134"},
	}
	for _, c := range cases {
		got, _, err := run(t, c.src)
		require.NoError(t, err, "source: %q", c.src)
		require.Equal(t, c.want, got, "source: %q", c.src)
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		src  string
		kind errors.RuntimeErrorKind
		msg  string
		line int
	}{
		{"print 1/0\n", errors.DivideByZero, "Divide by zero error", 1},
		{"print 1+\"a\"\n", errors.TypeMismatch, "Type mismatch for arguments of +", 1},
		{"print \"a\"-\"a\"\n", errors.TypeMismatch, "Type mismatch for arguments of -", 1},
		{"print \"a\"*\"a\"\n", errors.TypeMismatch, "Type mismatch for arguments of *", 1},
		{"print \"a\"/1\n", errors.TypeMismatch, "Type mismatch for arguments of /", 1},
		{"print \"a\"*(0-1)\n", errors.NegativeRepetition, "Repetition count less than 0", 1},
		{"\nprint y\n", errors.UndefinedSymbol, "Symbol y not defined", 2},
		{"if \"yes\" begin print 1 end\n", errors.TypeMismatch, "Conditional is not an integer", 1},
		{"set i 1\nloop i begin set i \"x\" end\n", errors.TypeMismatch, "Loop conditional is not an integer", 2},
	}
	for _, c := range cases {
		_, _, err := run(t, c.src)
		requireRuntimeError(t, err, c.kind, c.msg, c.line)
	}
}

func TestFirstRuntimeErrorStopsWithSideEffectsKept(t *testing.T) {
	out, ctx, err := run(t, "set a 1\nprint \"before\"\nset b a/0\nprint \"after\"\nset c 3\n")
	requireRuntimeError(t, err, errors.DivideByZero, "Divide by zero error", 3)
	require.Equal(t, "before", out)

	a, err := ctx.Symbols.Get("a")
	require.NoError(t, err)
	require.Equal(t, value.NewInt(1), a)
	_, ok := ctx.Symbols.Lookup("b")
	require.False(t, ok)
	_, ok = ctx.Symbols.Lookup("c")
	require.False(t, ok)
}

func TestSetThenReadYieldsSameValue(t *testing.T) {
	exprs := []ast.Expression{
		ast.IntLiteral{Value: 42},
		ast.StringLiteral{Value: "hi"},
		ast.Multiplication{Left: ast.StringLiteral{Value: "ab"}, Right: ast.IntLiteral{Value: 2}},
	}
	for _, e := range exprs {
		ctx := NewContext(&bytes.Buffer{})
		want, err := Eval(ctx, e)
		require.NoError(t, err)

		stored, err := Exec(ctx, ast.Set{Name: "x", Value: e})
		require.NoError(t, err)
		require.Equal(t, want, stored)

		got, err := Eval(ctx, ast.Identifier{Name: "x"})
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPrintReturnsValue(t *testing.T) {
	var out bytes.Buffer
	ctx := NewContext(&out)
	got, err := Exec(ctx, ast.Print{Value: ast.IntLiteral{Value: 9}})
	require.NoError(t, err)
	require.Equal(t, value.NewInt(9), got)
	require.Equal(t, "9", out.String())
}

func TestIfRunsBodyOnce(t *testing.T) {
	var out bytes.Buffer
	ctx := NewContext(&out)
	ctx.Symbols.Set("x", value.NewInt(1))
	calls := 0
	ctx.Out = writerFunc(func(p []byte) (int, error) {
		calls++
		return out.Write(p)
	})

	prog := ast.NewStmtList(ast.If{
		Cond: ast.Identifier{Name: "x"},
		Body: ast.NewStmtList(ast.Print{Value: ast.StringLiteral{Value: "once"}}),
	})
	require.NoError(t, Run(ctx, prog))
	require.Equal(t, 1, calls)
	require.Equal(t, "once", out.String())
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestIndependentContexts(t *testing.T) {
	_, first, err := run(t, "set x 1\n")
	require.NoError(t, err)
	_, second, err := run(t, "set y 2\n")
	require.NoError(t, err)

	_, ok := second.Symbols.Lookup("x")
	require.False(t, ok)
	require.Equal(t, 1, first.Symbols.Len())
}
