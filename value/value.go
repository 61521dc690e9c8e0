// Package value holds the runtime values scripts compute with.
package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/pontaoski/tinyscript/errors"
)

type Kind int

const (
	Err Kind = iota
	Int
	Str
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Str:
		return "string"
	}
	return "error"
}

// Value is a tagged int, string or error. The zero Value is an error with an
// empty message. Values are plain data and are copied on assignment.
type Value struct {
	kind Kind
	i    int64
	s    string
}

func NewInt(i int64) Value {
	return Value{kind: Int, i: i}
}

func NewStr(s string) Value {
	return Value{kind: Str, s: s}
}

func NewErr(msg string) Value {
	return Value{kind: Err, s: msg}
}

func (v Value) Kind() Kind  { return v.kind }
func (v Value) IsInt() bool { return v.kind == Int }
func (v Value) IsStr() bool { return v.kind == Str }
func (v Value) IsErr() bool { return v.kind == Err }

func (v Value) AsInt() (int64, error) {
	if v.IsInt() {
		return v.i, nil
	}
	return 0, errors.NewRuntimeError(errors.TypeMismatch, "This Value is not an int")
}

func (v Value) AsStr() (string, error) {
	if v.IsStr() {
		return v.s, nil
	}
	return "", errors.NewRuntimeError(errors.TypeMismatch, "This Value is not a string")
}

// String is the text print writes for v.
func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Str:
		return v.s
	}
	return "RUNTIME ERROR: " + v.s
}

// Interface returns v as a plain Go value, for encoders.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Int:
		return v.i
	case Str:
		return v.s
	}
	return v.String()
}

func (v Value) Add(o Value) (Value, error) {
	switch {
	case v.IsInt() && o.IsInt():
		return NewInt(v.i + o.i), nil
	case v.IsStr() && o.IsStr():
		return NewStr(v.s + o.s), nil
	}
	return Value{}, errors.TypeMismatchFor("+")
}

func (v Value) Sub(o Value) (Value, error) {
	if v.IsInt() && o.IsInt() {
		return NewInt(v.i - o.i), nil
	}
	return Value{}, errors.TypeMismatchFor("-")
}

func (v Value) Mul(o Value) (Value, error) {
	switch {
	case v.IsInt() && o.IsInt():
		return NewInt(v.i * o.i), nil
	case v.IsStr() && o.IsInt():
		return repeat(v.s, o.i)
	case v.IsInt() && o.IsStr():
		return repeat(o.s, v.i)
	}
	return Value{}, errors.TypeMismatchFor("*")
}

// maxRepeatLen caps the byte length of a repeated string.
const maxRepeatLen = math.MaxInt32

func repeat(s string, n int64) (Value, error) {
	if n < 0 {
		return Value{}, errors.NewRuntimeError(errors.NegativeRepetition, "Repetition count less than 0")
	}
	if n > 0 && int64(len(s)) > maxRepeatLen/n {
		return Value{}, errors.NewRuntimeError(errors.RepetitionOverflow, "Repetition result too large")
	}
	return NewStr(strings.Repeat(s, int(n))), nil
}

// Div truncates toward zero.
func (v Value) Div(o Value) (Value, error) {
	if v.IsInt() && o.IsInt() {
		if o.i == 0 {
			return Value{}, errors.NewRuntimeError(errors.DivideByZero, "Divide by zero error")
		}
		return NewInt(v.i / o.i), nil
	}
	return Value{}, errors.TypeMismatchFor("/")
}
