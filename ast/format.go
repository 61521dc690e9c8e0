package ast

import (
	"fmt"
	"strconv"
	"strings"
)

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

func precedence(e Expression) int {
	switch e.(type) {
	case Addition, Subtraction:
		return 1
	case Multiplication, Division:
		return 2
	}
	return 3
}

func binary(op string, self, left, right Expression) string {
	p := precedence(self)
	l := FormatExpr(left)
	if precedence(left) < p {
		l = "(" + l + ")"
	}
	r := FormatExpr(right)
	// operators are left associative, so an equal precedence right operand
	// needs grouping too
	if precedence(right) <= p {
		r = "(" + r + ")"
	}
	return l + " " + op + " " + r
}

// FormatExpr renders e as source text with the minimum of parentheses.
func FormatExpr(e Expression) string {
	switch v := e.(type) {
	case Addition:
		return binary("+", v, v.Left, v.Right)
	case Subtraction:
		return binary("-", v, v.Left, v.Right)
	case Multiplication:
		return binary("*", v, v.Left, v.Right)
	case Division:
		return binary("/", v, v.Left, v.Right)
	case IntLiteral:
		return strconv.FormatInt(v.Value, 10)
	case StringLiteral:
		return `"` + escaper.Replace(v.Value) + `"`
	case Identifier:
		return v.Name
	}
	panic(fmt.Sprintf("ast: unhandled expression %T", e))
}

// Format renders a statement list as a program, one statement per line.
func Format(l *StmtList) string {
	var sb strings.Builder
	format(&sb, l, 0)
	return sb.String()
}

func format(sb *strings.Builder, l *StmtList, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, stmt := range l.Statements() {
		if nested, ok := stmt.(*StmtList); ok {
			format(sb, nested, depth)
			continue
		}

		sb.WriteString(indent)
		switch v := stmt.(type) {
		case If:
			fmt.Fprintf(sb, "if %s begin\n", FormatExpr(v.Cond))
			format(sb, v.Body, depth+1)
			sb.WriteString(indent + "end")
		case Loop:
			fmt.Fprintf(sb, "loop %s begin\n", FormatExpr(v.Cond))
			format(sb, v.Body, depth+1)
			sb.WriteString(indent + "end")
		case Set:
			fmt.Fprintf(sb, "set %s %s", v.Name, FormatExpr(v.Value))
		case Print:
			fmt.Fprintf(sb, "print %s", FormatExpr(v.Value))
		default:
			panic(fmt.Sprintf("ast: unhandled statement %T", stmt))
		}
		sb.WriteString("\n")
	}
}
