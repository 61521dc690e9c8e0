// Package eval executes a parsed program by walking its tree.
package eval

import (
	"fmt"
	"io"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/tinyscript/ast"
	"github.com/pontaoski/tinyscript/errors"
	"github.com/pontaoski/tinyscript/symbols"
	"github.com/pontaoski/tinyscript/value"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/tinyscript", "eval")

// Context is everything a running program can touch. A Context must not be
// shared between goroutines.
type Context struct {
	Symbols *symbols.Table
	Out     io.Writer
}

func NewContext(out io.Writer) *Context {
	return &Context{Symbols: symbols.New(), Out: out}
}

// Run evaluates prog. The first runtime error stops evaluation and is
// returned as an *errors.RuntimeError; anything printed or set before it
// stays in effect.
func Run(ctx *Context, prog *ast.StmtList) error {
	_, err := Exec(ctx, prog)
	if err != nil {
		if rerr, ok := err.(*errors.RuntimeError); ok {
			plog.Debugf("line %d: %s: %s", rerr.Line, rerr.Kind, rerr.Message)
		}
	}
	return err
}

// at attaches the line of the failing node to a runtime error that does not
// have one yet.
func at(n ast.Node, err error) error {
	if rerr, ok := err.(*errors.RuntimeError); ok && rerr.Line == 0 {
		rerr.Line = n.SourceLine()
	}
	return err
}

// Exec runs a statement. The returned value is the one the statement
// produced; lists and control flow produce the zero Value.
func Exec(ctx *Context, stmt ast.Statement) (value.Value, error) {
	switch v := stmt.(type) {
	case *ast.StmtList:
		for l := v; l != nil; l = l.Rest {
			if _, err := Exec(ctx, l.Stmt); err != nil {
				return value.Value{}, err
			}
		}
		return value.Value{}, nil

	case ast.If:
		ok, err := condition(ctx, v.Cond, "Conditional is not an integer")
		if err != nil || !ok {
			return value.Value{}, err
		}
		if _, err := Exec(ctx, v.Body); err != nil {
			return value.Value{}, err
		}
		return value.Value{}, nil

	case ast.Loop:
		for {
			ok, err := condition(ctx, v.Cond, "Loop conditional is not an integer")
			if err != nil || !ok {
				return value.Value{}, err
			}
			if _, err := Exec(ctx, v.Body); err != nil {
				return value.Value{}, err
			}
		}

	case ast.Set:
		val, err := Eval(ctx, v.Value)
		if err != nil {
			return value.Value{}, err
		}
		ctx.Symbols.Set(v.Name, val)
		return val, nil

	case ast.Print:
		val, err := Eval(ctx, v.Value)
		if err != nil {
			return value.Value{}, err
		}
		if _, err := io.WriteString(ctx.Out, val.String()); err != nil {
			return value.Value{}, tracerr.Wrap(err)
		}
		return val, nil
	}

	panic(fmt.Sprintf("eval: unhandled statement %T", stmt))
}

// condition evaluates e once and reports whether it is a nonzero integer.
func condition(ctx *Context, e ast.Expression, msg string) (bool, error) {
	val, err := Eval(ctx, e)
	if err != nil {
		return false, err
	}
	if !val.IsInt() {
		return false, at(e, errors.NewRuntimeError(errors.TypeMismatch, msg))
	}
	i, _ := val.AsInt()
	return i != 0, nil
}

func operands(ctx *Context, left, right ast.Expression) (value.Value, value.Value, error) {
	l, err := Eval(ctx, left)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	r, err := Eval(ctx, right)
	if err != nil {
		return value.Value{}, value.Value{}, err
	}
	return l, r, nil
}

func binary(ctx *Context, n ast.Node, left, right ast.Expression, op func(value.Value, value.Value) (value.Value, error)) (value.Value, error) {
	l, r, err := operands(ctx, left, right)
	if err != nil {
		return value.Value{}, err
	}
	ret, err := op(l, r)
	if err != nil {
		return value.Value{}, at(n, err)
	}
	return ret, nil
}

// Eval computes an expression. Expressions have no side effects.
func Eval(ctx *Context, e ast.Expression) (value.Value, error) {
	switch v := e.(type) {
	case ast.IntLiteral:
		return value.NewInt(v.Value), nil
	case ast.StringLiteral:
		return value.NewStr(v.Value), nil
	case ast.Identifier:
		val, err := ctx.Symbols.Get(v.Name)
		if err != nil {
			return value.Value{}, at(v, err)
		}
		return val, nil
	case ast.Addition:
		return binary(ctx, v, v.Left, v.Right, value.Value.Add)
	case ast.Subtraction:
		return binary(ctx, v, v.Left, v.Right, value.Value.Sub)
	case ast.Multiplication:
		return binary(ctx, v, v.Left, v.Right, value.Value.Mul)
	case ast.Division:
		return binary(ctx, v, v.Left, v.Right, value.Value.Div)
	}

	panic(fmt.Sprintf("eval: unhandled expression %T", e))
}
