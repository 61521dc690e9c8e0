package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Filename string
}

type TokenKind int

const (
	EOF TokenKind = iota
	ERROR

	IDENT
	INT
	STRING

	IF
	LOOP
	SET
	PRINT
	BEGIN
	END

	PLUS
	MINUS
	STAR
	SLASH
	LPAREN
	RPAREN

	NEWLINE
	SEMICOLON
)

var kindNames = map[TokenKind]string{
	EOF:       "EOF",
	ERROR:     "ERROR",
	IDENT:     "IDENT",
	INT:       "INT",
	STRING:    "STRING",
	IF:        "IF",
	LOOP:      "LOOP",
	SET:       "SET",
	PRINT:     "PRINT",
	BEGIN:     "BEGIN",
	END:       "END",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	STAR:      "STAR",
	SLASH:     "SLASH",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	NEWLINE:   "NEWLINE",
	SEMICOLON: "SEMICOLON",
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// IsSeparator reports whether t ends a statement.
func (t TokenKind) IsSeparator() bool {
	return t == NEWLINE || t == SEMICOLON
}

var Keywords = map[string]TokenKind{
	"if":    IF,
	"loop":  LOOP,
	"set":   SET,
	"print": PRINT,
	"begin": BEGIN,
	"end":   END,
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// Token is immutable once the lexer hands it out.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT, INT, STRING, ERROR:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Lexeme)
	}
	return t.Kind.String()
}
