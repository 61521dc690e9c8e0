package lexer

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/tinyscript/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/tinyscript", "lexer")

type Lexer struct {
	pos    types.Position
	reader *bufio.Reader
	pushed *types.Token
	err    error
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		pos:    types.Position{Line: 1, Filename: filename},
		reader: bufio.NewReader(reader),
	}
}

// Position is where the lexer currently is, counting every newline consumed
// so far, including the one carried by a pushed back NEWLINE token.
func (l *Lexer) Position() types.Position {
	return l.pos
}

func (l *Lexer) Line() int {
	return l.pos.Line
}

// Err returns the first read error other than io.EOF. Once set the lexer
// reports EOF forever.
func (l *Lexer) Err() error {
	return l.err
}

// Pushback makes the next call to Next return t. Only one token may be
// pending at a time.
func (l *Lexer) Pushback(t types.Token) {
	if l.pushed != nil {
		panic("lexer: pushback with a token already pending")
	}
	l.pushed = &t
}

func (l *Lexer) read() (rune, bool) {
	if l.err != nil {
		return 0, false
	}
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err != io.EOF {
			l.err = err
		}
		return 0, false
	}
	return r, true
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}
}

func (l *Lexer) kinded(k types.TokenKind, lexeme string) types.Token {
	return types.Token{Kind: k, Lexeme: lexeme, Line: l.pos.Line}
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || unicode.IsDigit(r)
}

func (l *Lexer) lexWhile(first rune, pred func(rune) bool) string {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, ok := l.read()
		if !ok {
			return sb.String()
		}
		if !pred(r) {
			l.backup()
			return sb.String()
		}
		sb.WriteRune(r)
	}
}

// lexString is called past the opening quote.
func (l *Lexer) lexString() types.Token {
	var sb strings.Builder
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			if ok {
				l.backup()
			}
			return l.kinded(types.ERROR, "\""+sb.String())
		}

		switch r {
		case '"':
			return l.kinded(types.STRING, sb.String())
		case '\\':
			esc, ok := l.read()
			if !ok {
				return l.kinded(types.ERROR, "\""+sb.String()+"\\")
			}
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"':
				sb.WriteRune(esc)
			default:
				return l.kinded(types.ERROR, "\\"+string(esc))
			}
		default:
			sb.WriteRune(r)
		}
	}
}

func (l *Lexer) skipComment() {
	for {
		r, ok := l.read()
		if !ok {
			return
		}
		if r == '\n' {
			l.backup()
			return
		}
	}
}

var punctuation = map[rune]types.TokenKind{
	'+': types.PLUS,
	'-': types.MINUS,
	'*': types.STAR,
	'/': types.SLASH,
	'(': types.LPAREN,
	')': types.RPAREN,
	';': types.SEMICOLON,
}

// Next returns the next token, or the pushed back one if there is one.
func (l *Lexer) Next() types.Token {
	if l.pushed != nil {
		t := *l.pushed
		l.pushed = nil
		return t
	}

	t := l.lex()
	if plog.LevelAt(capnslog.TRACE) {
		plog.Tracef("%s: %s", l.pos, t)
	}
	return t
}

func (l *Lexer) lex() types.Token {
	for {
		r, ok := l.read()
		if !ok {
			return l.kinded(types.EOF, "")
		}

		if kind, ok := punctuation[r]; ok {
			return l.kinded(kind, string(r))
		}

		switch {
		case r == '\n':
			t := l.kinded(types.NEWLINE, "\n")
			l.pos.Line++
			return t
		case r == '#':
			l.skipComment()
		case r == '"':
			return l.lexString()
		case unicode.IsSpace(r):
			continue
		case unicode.IsDigit(r):
			return l.kinded(types.INT, l.lexWhile(r, unicode.IsDigit))
		case firstChar(r):
			lit := l.lexWhile(r, otherChar)
			if kind, ok := types.Keywords[lit]; ok {
				return l.kinded(kind, lit)
			}
			return l.kinded(types.IDENT, lit)
		default:
			return l.kinded(types.ERROR, string(r))
		}
	}
}

// All drains the lexer up to and including EOF.
func (l *Lexer) All() []types.Token {
	var ret []types.Token
	for {
		t := l.Next()
		ret = append(ret, t)
		if t.Kind == types.EOF {
			return ret
		}
	}
}
