package asm

import "fmt"

// Pos is a location in the source text. Line and Column are 1-based;
// Offset is the byte offset.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type token struct {
	text string
	pos  Pos
}

// lexer splits the source into whitespace separated words.
type lexer struct {
	src    []byte
	off    int
	line   int
	col    int
	peeked *token
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func (l *lexer) advance() {
	if l.src[l.off] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.off++
}

// pos returns the position just past the last consumed byte.
func (l *lexer) pos() Pos {
	return Pos{Line: l.line, Column: l.col, Offset: l.off}
}

func (l *lexer) scan() (token, bool) {
	for l.off < len(l.src) && isSpace(l.src[l.off]) {
		l.advance()
	}
	if l.off >= len(l.src) {
		return token{}, false
	}
	start := l.pos()
	for l.off < len(l.src) && !isSpace(l.src[l.off]) {
		l.advance()
	}
	return token{text: string(l.src[start.Offset:l.off]), pos: start}, true
}

func (l *lexer) next() (token, bool) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, true
	}
	return l.scan()
}

func (l *lexer) peek() (token, bool) {
	if l.peeked != nil {
		return *l.peeked, true
	}
	tok, ok := l.scan()
	if !ok {
		return token{}, false
	}
	l.peeked = &tok
	return tok, true
}
