package errors

import (
	"fmt"
	"io"
)

// Diagnostic is a parse-time problem. Line is 1-indexed.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%d: %s", d.Line, d.Message)
}

// Diagnostics collects parse problems in the order they were found.
type Diagnostics struct {
	list []Diagnostic
}

func (d *Diagnostics) Add(line int, msg string, fmts ...interface{}) {
	if len(fmts) > 0 {
		msg = fmt.Sprintf(msg, fmts...)
	}
	d.list = append(d.list, Diagnostic{Line: line, Message: msg})
}

func (d *Diagnostics) Len() int {
	return len(d.list)
}

func (d *Diagnostics) List() []Diagnostic {
	return append([]Diagnostic(nil), d.list...)
}

// WriteTo prints one diagnostic per line.
func (d *Diagnostics) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, diag := range d.list {
		c, err := fmt.Fprintln(w, diag.Error())
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

type RuntimeErrorKind int

const (
	TypeMismatch RuntimeErrorKind = iota
	DivideByZero
	UndefinedSymbol
	NegativeRepetition
	RepetitionOverflow
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case DivideByZero:
		return "divide by zero"
	case UndefinedSymbol:
		return "undefined symbol"
	case NegativeRepetition:
		return "negative repetition"
	case RepetitionOverflow:
		return "repetition overflow"
	}
	return fmt.Sprintf("RuntimeErrorKind(%d)", int(k))
}

// RuntimeError halts evaluation. Line is 0 until the evaluator attaches the
// line of the node that failed.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return e.Message
}

func NewRuntimeError(kind RuntimeErrorKind, msg string, fmts ...interface{}) *RuntimeError {
	if len(fmts) > 0 {
		msg = fmt.Sprintf(msg, fmts...)
	}
	return &RuntimeError{Kind: kind, Message: msg}
}

func TypeMismatchFor(op string) *RuntimeError {
	return NewRuntimeError(TypeMismatch, "Type mismatch for arguments of %s", op)
}
