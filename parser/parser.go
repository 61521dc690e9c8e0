// Package parser turns a token stream into an ast.StmtList by recursive
// descent, one method per grammar rule. Problems are collected as
// diagnostics rather than stopping the parse, so one pass reports every
// independent error in the program.
package parser

import (
	"io"
	"strconv"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/tinyscript/ast"
	"github.com/pontaoski/tinyscript/errors"
	"github.com/pontaoski/tinyscript/lexer"
	"github.com/pontaoski/tinyscript/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/tinyscript", "parser")

type Parser struct {
	l     *lexer.Lexer
	diags errors.Diagnostics

	// depth is the begin/end nesting of the rule being parsed. errDepth
	// remembers it for the first error since the last resynchronisation.
	depth    int
	errDepth int
	failed   bool
}

func NewParser(l *lexer.Lexer) *Parser {
	return &Parser{l: l}
}

// Parse parses a whole program from r.
func Parse(r io.Reader, filename string) (*ast.StmtList, *errors.Diagnostics, error) {
	return NewParser(lexer.NewLexer(r, filename)).Parse()
}

// Parse consumes the whole input. The program is nil whenever any diagnostic
// was recorded. err is only set when reading the input failed.
func (p *Parser) Parse() (prog *ast.StmtList, diags *errors.Diagnostics, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				panic(r)
			}
			prog, diags, err = nil, &p.diags, tracerr.Wrap(rerr)
		}
	}()

	prog = p.prog()
	if lerr := p.l.Err(); lerr != nil {
		return nil, &p.diags, tracerr.Wrap(lerr)
	}

	plog.Debugf("%s: parsed with %d diagnostic(s)", p.l.Position().Filename, p.diags.Len())
	return prog, &p.diags, nil
}

func (p *Parser) errorf(msg string, fmts ...interface{}) {
	p.diags.Add(p.l.Line(), msg, fmts...)
	if !p.failed {
		p.failed = true
		p.errDepth = p.depth
	}
}

// missing reports msg unless something already went wrong since mark, in
// which case that diagnostic explains the failure.
func (p *Parser) missing(mark int, msg string, fmts ...interface{}) {
	if p.diags.Len() == mark {
		p.errorf(msg, fmts...)
	}
}

// expect consumes a token of kind k, or pushes the mismatch back.
func (p *Parser) expect(k types.TokenKind) (types.Token, bool) {
	tok := p.l.Next()
	if tok.Kind != k {
		p.l.Pushback(tok)
		return tok, false
	}
	return tok, true
}

// Prog := Slist EOF
func (p *Parser) prog() *ast.StmtList {
	var stmts []ast.Statement
	for {
		mark := p.diags.Len()
		stmts = append(stmts, p.slist().Statements()...)

		tok := p.l.Next()
		if tok.Kind == types.EOF {
			break
		}
		if p.diags.Len() == mark {
			p.errorf("Unrecognized statement")
		}
		p.synchronize(tok)
	}

	if len(stmts) == 0 && p.diags.Len() == 0 {
		p.errorf("No statements in program")
	}
	if p.diags.Len() > 0 {
		return nil
	}
	return ast.NewStmtList(stmts...)
}

// synchronize skips from tok to the next statement separator at the nesting
// depth the last error happened at, so parsing can resume after it.
func (p *Parser) synchronize(tok types.Token) {
	depth := p.errDepth
	for ; tok.Kind != types.EOF; tok = p.l.Next() {
		switch {
		case tok.Kind == types.BEGIN:
			depth++
		case tok.Kind == types.END && depth > 0:
			depth--
		case tok.Kind.IsSeparator() && depth == 0:
			p.failed = false
			return
		}
	}
	p.l.Pushback(tok)
	p.failed = false
}

// Slist := Stmt (SEMICOLON|NEWLINE) Slist | Stmt (SEMICOLON|NEWLINE)
//
// A nil list means no statement matched or one failed; callers tell the two
// apart by whether a diagnostic was recorded.
func (p *Parser) slist() *ast.StmtList {
	var stmts []ast.Statement
	for {
		s := p.stmt()
		if s == nil {
			break
		}
		stmts = append(stmts, s)

		// the separator may be left out before END and at end of input
		tok := p.l.Next()
		if tok.Kind.IsSeparator() {
			continue
		}
		p.l.Pushback(tok)
		if tok.Kind != types.END && tok.Kind != types.EOF {
			p.errorf("Missing statement separator")
			break
		}
	}
	return ast.NewStmtList(stmts...)
}

// Stmt := IfStmt | PrintStmt | SetStmt | LoopStmt | ε
func (p *Parser) stmt() ast.Statement {
	for {
		tok := p.l.Next()
		switch tok.Kind {
		case types.IF:
			return p.ifStmt(tok)
		case types.LOOP:
			return p.loopStmt(tok)
		case types.SET:
			return p.setStmt(tok)
		case types.PRINT:
			return p.printStmt(tok)
		case types.NEWLINE, types.SEMICOLON:
			// empty statement
			continue
		case types.ERROR:
			p.errorf("Invalid token %s", tok.Lexeme)
			return nil
		default:
			p.l.Pushback(tok)
			return nil
		}
	}
}

// block parses BEGIN Slist END for the statement introduced by kw.
func (p *Parser) block(kw string) *ast.StmtList {
	if _, ok := p.expect(types.BEGIN); !ok {
		p.errorf("Expected BEGIN after %s", kw)
		return nil
	}

	p.depth++
	defer func() { p.depth-- }()

	mark := p.diags.Len()
	body := p.slist()
	if p.diags.Len() != mark {
		return nil
	}
	if body == nil {
		p.errorf("Expected statement(s) after BEGIN")
		return nil
	}
	if _, ok := p.expect(types.END); !ok {
		p.errorf("Expected END after statement")
		return nil
	}
	return body
}

// cond parses the expression after IF or LOOP.
func (p *Parser) cond(kw string) ast.Expression {
	mark := p.diags.Len()
	e := p.expr()
	if e == nil {
		p.missing(mark, "Expected expression after %s", kw)
	}
	return e
}

// IfStmt := IF Expr BEGIN Slist END
func (p *Parser) ifStmt(kw types.Token) ast.Statement {
	cond := p.cond("IF")
	if cond == nil {
		return nil
	}
	body := p.block("IF")
	if body == nil {
		return nil
	}
	return ast.If{Cond: cond, Body: body, Line: kw.Line}
}

// LoopStmt := LOOP Expr BEGIN Slist END
func (p *Parser) loopStmt(kw types.Token) ast.Statement {
	cond := p.cond("LOOP")
	if cond == nil {
		return nil
	}
	body := p.block("LOOP")
	if body == nil {
		return nil
	}
	return ast.Loop{Cond: cond, Body: body, Line: kw.Line}
}

// SetStmt := SET IDENT Expr
func (p *Parser) setStmt(kw types.Token) ast.Statement {
	id, ok := p.expect(types.IDENT)
	if !ok {
		p.errorf("Expected identifier after SET")
		return nil
	}

	mark := p.diags.Len()
	e := p.expr()
	if e == nil {
		p.missing(mark, "Expected expression after SET")
		return nil
	}
	return ast.Set{Name: id.Lexeme, Value: e, Line: kw.Line}
}

// PrintStmt := PRINT Expr
func (p *Parser) printStmt(kw types.Token) ast.Statement {
	mark := p.diags.Len()
	e := p.expr()
	if e == nil {
		p.missing(mark, "Expected expression after PRINT")
		return nil
	}
	return ast.Print{Value: e, Line: kw.Line}
}

// Expr := Prod ((PLUS|MINUS) Prod)*
func (p *Parser) expr() ast.Expression {
	left := p.prod()
	if left == nil {
		return nil
	}

	for {
		op := p.l.Next()
		if op.Kind != types.PLUS && op.Kind != types.MINUS {
			p.l.Pushback(op)
			return left
		}

		mark := p.diags.Len()
		right := p.prod()
		if right == nil {
			p.missing(mark, "Missing expression after operator")
			return nil
		}

		if op.Kind == types.PLUS {
			left = ast.Addition{Left: left, Right: right, Line: op.Line}
		} else {
			left = ast.Subtraction{Left: left, Right: right, Line: op.Line}
		}
	}
}

// Prod := Primary ((STAR|SLASH) Primary)*
func (p *Parser) prod() ast.Expression {
	left := p.primary()
	if left == nil {
		return nil
	}

	for {
		op := p.l.Next()
		if op.Kind != types.STAR && op.Kind != types.SLASH {
			p.l.Pushback(op)
			return left
		}

		mark := p.diags.Len()
		right := p.primary()
		if right == nil {
			p.missing(mark, "Missing expression after operator")
			return nil
		}

		if op.Kind == types.STAR {
			left = ast.Multiplication{Left: left, Right: right, Line: op.Line}
		} else {
			left = ast.Division{Left: left, Right: right, Line: op.Line}
		}
	}
}

// Primary := IDENT | STRING | INT | LPAREN Expr RPAREN
func (p *Parser) primary() ast.Expression {
	tok := p.l.Next()

	switch tok.Kind {
	case types.IDENT:
		return ast.Identifier{Name: tok.Lexeme, Line: tok.Line}
	case types.STRING:
		return ast.StringLiteral{Value: tok.Lexeme, Line: tok.Line}
	case types.INT:
		parsed, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.errorf("Integer literal out of range")
			return nil
		}
		return ast.IntLiteral{Value: parsed, Line: tok.Line}
	case types.LPAREN:
		mark := p.diags.Len()
		e := p.expr()
		if e == nil {
			p.missing(mark, "Missing expression after (")
			return nil
		}
		if _, ok := p.expect(types.RPAREN); !ok {
			p.errorf("Missing ) after expression")
			return nil
		}
		return e
	case types.ERROR:
		p.errorf("Invalid token %s", tok.Lexeme)
		return nil
	}

	p.l.Pushback(tok)
	return nil
}
