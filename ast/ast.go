// Package ast defines the syntax tree the parser builds and the evaluator
// walks. The tree is never modified after parsing.
package ast

type Node interface {
	SourceLine() int
}

type Statement interface {
	Node
	is_Statement()
}

type Expression interface {
	Node
	is_Expression()
}

// StmtList is a cons list of statements. Rest is nil on the last element.
type StmtList struct {
	Stmt Statement
	Rest *StmtList
	Line int
}

func (v *StmtList) is_Statement()   {}
func (v *StmtList) SourceLine() int { return v.Line }

// Statements flattens the list.
func (v *StmtList) Statements() []Statement {
	var ret []Statement
	for l := v; l != nil; l = l.Rest {
		ret = append(ret, l.Stmt)
	}
	return ret
}

// NewStmtList links stmts into a list, returning nil for none.
func NewStmtList(stmts ...Statement) *StmtList {
	var head *StmtList
	for i := len(stmts) - 1; i >= 0; i-- {
		head = &StmtList{Stmt: stmts[i], Rest: head, Line: stmts[i].SourceLine()}
	}
	return head
}

type If struct {
	Cond Expression
	Body *StmtList
	Line int
}

func (v If) is_Statement()   {}
func (v If) SourceLine() int { return v.Line }

type Loop struct {
	Cond Expression
	Body *StmtList
	Line int
}

func (v Loop) is_Statement()   {}
func (v Loop) SourceLine() int { return v.Line }

type Set struct {
	Name  string
	Value Expression
	Line  int
}

func (v Set) is_Statement()   {}
func (v Set) SourceLine() int { return v.Line }

type Print struct {
	Value Expression
	Line  int
}

func (v Print) is_Statement()   {}
func (v Print) SourceLine() int { return v.Line }

type Addition struct {
	Left  Expression
	Right Expression
	Line  int
}

func (v Addition) is_Expression()  {}
func (v Addition) SourceLine() int { return v.Line }

type Subtraction struct {
	Left  Expression
	Right Expression
	Line  int
}

func (v Subtraction) is_Expression()  {}
func (v Subtraction) SourceLine() int { return v.Line }

type Multiplication struct {
	Left  Expression
	Right Expression
	Line  int
}

func (v Multiplication) is_Expression()  {}
func (v Multiplication) SourceLine() int { return v.Line }

type Division struct {
	Left  Expression
	Right Expression
	Line  int
}

func (v Division) is_Expression()  {}
func (v Division) SourceLine() int { return v.Line }

type IntLiteral struct {
	Value int64
	Line  int
}

func (v IntLiteral) is_Expression()  {}
func (v IntLiteral) SourceLine() int { return v.Line }

type StringLiteral struct {
	Value string
	Line  int
}

func (v StringLiteral) is_Expression()  {}
func (v StringLiteral) SourceLine() int { return v.Line }

type Identifier struct {
	Name string
	Line int
}

func (v Identifier) is_Expression()  {}
func (v Identifier) SourceLine() int { return v.Line }
