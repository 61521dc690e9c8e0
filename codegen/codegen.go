// Package codegen compiles the integer subset of the language to LLVM IR.
//
// Integers, variables, if, loop and print are supported. Strings may only
// appear as literal print arguments. Runtime checks for undefined symbols
// and division by zero print the same RUNTIME ERROR line the interpreter
// does and end the program.
package codegen

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/coreos/pkg/capnslog"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/tinyscript/ast"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/tinyscript", "codegen")

// UnsupportedError reports a construct outside the compilable subset.
type UnsupportedError struct {
	Line   int
	Reason string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func unsupported(n ast.Node, msg string, fmts ...interface{}) UnsupportedError {
	return UnsupportedError{Line: n.SourceLine(), Reason: fmt.Sprintf(msg, fmts...)}
}

var (
	i8ptr = types.NewPointer(types.I8)
	zero  = constant.NewInt(types.I64, 0)
	one   = constant.NewInt(types.I64, 1)
)

type variable struct {
	val     *ir.Global
	defined *ir.Global
}

type ctx struct {
	m      *ir.Module
	fn     *ir.Func
	b      *ir.Block
	printf *ir.Func

	vars            map[string]variable
	stringConstants map[string]*ir.Global
	failures        map[string]*ir.Block
	blocks          int
}

func hash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

// Compile lowers prog into a module with a C-style main function.
func Compile(prog *ast.StmtList) (m *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			uerr, ok := r.(UnsupportedError)
			if !ok {
				panic(r)
			}
			m, err = nil, uerr
		}
	}()

	c := &ctx{
		m:               ir.NewModule(),
		vars:            map[string]variable{},
		stringConstants: map[string]*ir.Global{},
		failures:        map[string]*ir.Block{},
	}

	c.printf = c.m.NewFunc("printf", types.I32, ir.NewParam("format", i8ptr))
	c.printf.Sig.Variadic = true

	c.fn = c.m.NewFunc("main", types.I32)
	c.b = c.fn.NewBlock("entry")

	c.statements(prog)
	c.b.NewRet(constant.NewInt(types.I32, 0))

	plog.Debugf("compiled %d variable(s), %d block(s)", len(c.vars), len(c.fn.Blocks))
	return c.m, nil
}

func (c *ctx) newBlock(kind string) *ir.Block {
	c.blocks++
	return c.fn.NewBlock(fmt.Sprintf("%s.%d", kind, c.blocks))
}

func (c *ctx) str(s string) value.Value {
	g, ok := c.stringConstants[s]
	if !ok {
		g = c.m.NewGlobalDef("_str_"+hash(s), constant.NewCharArrayFromString(s+"\x00"))
		g.Immutable = true
		c.stringConstants[s] = g
	}
	return c.b.NewBitCast(g, i8ptr)
}

func (c *ctx) variable(name string) variable {
	v, ok := c.vars[name]
	if !ok {
		v = variable{
			val:     c.m.NewGlobalDef("var."+name, zero),
			defined: c.m.NewGlobalDef("var."+name+".defined", constant.False),
		}
		c.vars[name] = v
	}
	return v
}

// failure returns the block that reports msg and leaves main.
func (c *ctx) failure(msg string) *ir.Block {
	if blk, ok := c.failures[msg]; ok {
		return blk
	}
	blk := c.newBlock("fail")
	saved := c.b
	c.b = blk
	blk.NewCall(c.printf, c.str("RUNTIME ERROR %s\n"), c.str(msg))
	blk.NewRet(constant.NewInt(types.I32, 0))
	c.b = saved
	c.failures[msg] = blk
	return blk
}

// check continues in a fresh block when ok holds and fails with msg
// otherwise.
func (c *ctx) check(ok value.Value, msg string) {
	next := c.newBlock("ok")
	c.b.NewCondBr(ok, next, c.failure(msg))
	c.b = next
}

func (c *ctx) statements(l *ast.StmtList) {
	for ; l != nil; l = l.Rest {
		c.statement(l.Stmt)
	}
}

func (c *ctx) truthy(cond ast.Expression) value.Value {
	return c.b.NewICmp(enum.IPredNE, c.expression(cond), zero)
}

func (c *ctx) statement(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.StmtList:
		c.statements(stmt)

	case ast.If:
		then := c.newBlock("if.then")
		cont := c.newBlock("if.end")
		c.b.NewCondBr(c.truthy(stmt.Cond), then, cont)
		c.b = then
		c.statements(stmt.Body)
		c.b.NewBr(cont)
		c.b = cont

	case ast.Loop:
		head := c.newBlock("loop.cond")
		body := c.newBlock("loop.body")
		exit := c.newBlock("loop.end")
		c.b.NewBr(head)
		c.b = head
		c.b.NewCondBr(c.truthy(stmt.Cond), body, exit)
		c.b = body
		c.statements(stmt.Body)
		c.b.NewBr(head)
		c.b = exit

	case ast.Set:
		if _, ok := stmt.Value.(ast.StringLiteral); ok {
			panic(unsupported(stmt, "cannot store string in %s: strings are only supported as print arguments", stmt.Name))
		}
		val := c.expression(stmt.Value)
		v := c.variable(stmt.Name)
		c.b.NewStore(val, v.val)
		c.b.NewStore(constant.True, v.defined)

	case ast.Print:
		if lit, ok := stmt.Value.(ast.StringLiteral); ok {
			c.b.NewCall(c.printf, c.str("%s"), c.str(lit.Value))
			return
		}
		c.b.NewCall(c.printf, c.str("%lld"), c.expression(stmt.Value))

	default:
		panic(unsupported(s, "unhandled statement %T", s))
	}
}

func (c *ctx) expression(e ast.Expression) value.Value {
	switch expr := e.(type) {
	case ast.IntLiteral:
		return constant.NewInt(types.I64, expr.Value)

	case ast.Identifier:
		v := c.variable(expr.Name)
		c.check(c.b.NewLoad(types.I1, v.defined), fmt.Sprintf("Symbol %s not defined", expr.Name))
		return c.b.NewLoad(types.I64, v.val)

	case ast.Addition:
		l, r := c.expression(expr.Left), c.expression(expr.Right)
		return c.b.NewAdd(l, r)

	case ast.Subtraction:
		l, r := c.expression(expr.Left), c.expression(expr.Right)
		return c.b.NewSub(l, r)

	case ast.Multiplication:
		l, r := c.expression(expr.Left), c.expression(expr.Right)
		return c.b.NewMul(l, r)

	case ast.Division:
		l, r := c.expression(expr.Left), c.expression(expr.Right)
		c.check(c.b.NewICmp(enum.IPredNE, r, zero), "Divide by zero error")
		// sdiv by -1 overflows on the minimum integer, so negate instead
		negOne := c.b.NewICmp(enum.IPredEQ, r, constant.NewInt(types.I64, -1))
		divisor := c.b.NewSelect(negOne, one, r)
		quot := c.b.NewSDiv(l, divisor)
		return c.b.NewSelect(negOne, c.b.NewSub(zero, l), quot)

	case ast.StringLiteral:
		panic(unsupported(e, "string %q is only supported as a print argument", expr.Value))
	}

	panic(unsupported(e, "unhandled expression %T", e))
}
