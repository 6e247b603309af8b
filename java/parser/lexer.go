package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input  []byte
	file   string
	pos    int
	line   int
	column int
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{input: input, file: file, line: 1, column: 1}
}

func (l *Lexer) Position() Position {
	return Position{File: l.file, Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) peek() byte { return l.peekN(0) }

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) peekRune() (rune, int) {
	if l.pos >= len(l.input) {
		return 0, 0
	}
	return utf8.DecodeRune(l.input[l.pos:])
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	_, size := l.peekRune()
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos += size
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	return Token{
		Kind:    kind,
		Literal: string(l.input[start.Offset:l.pos]),
		Span:    Span{Start: start, End: l.Position()},
	}
}

// NextToken returns the next token, skipping whitespace. Comments are
// returned as tokens; the Parser decides what to do with them.
func (l *Lexer) NextToken() Token {
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' {
			l.advance()
			continue
		}
		break
	}

	start := l.Position()
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}
	}

	ch := l.peek()
	switch {
	case ch == '/' && l.peekN(1) == '/':
		for l.pos < len(l.input) && l.peek() != '\n' {
			l.advance()
		}
		return l.token(TokenLineComment, start)
	case ch == '/' && l.peekN(1) == '*':
		return l.scanBlockComment(start)
	case ch == '"':
		if l.peekN(1) == '"' && l.peekN(2) == '"' {
			return l.scanTextBlock(start)
		}
		return l.scanQuoted(start, '"', TokenStringLiteral)
	case ch == '\'':
		return l.scanQuoted(start, '\'', TokenCharLiteral)
	case isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))):
		return l.scanNumber(start)
	}

	if r, _ := l.peekRune(); isJavaLetter(r) {
		for {
			r, _ := l.peekRune()
			if !isJavaLetterOrDigit(r) {
				break
			}
			l.advance()
		}
		tok := l.token(TokenIdent, start)
		tok.Kind = LookupKeyword(tok.Literal)
		return tok
	}

	return l.scanOperator(start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for l.pos < len(l.input) {
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			return l.token(TokenComment, start)
		}
		l.advance()
	}
	tok := l.token(TokenError, start)
	tok.Literal = "unterminated comment"
	return tok
}

func (l *Lexer) scanQuoted(start Position, quote byte, kind TokenKind) Token {
	l.advance()
	for l.pos < len(l.input) {
		switch l.peek() {
		case '\\':
			l.advanceN(2)
			continue
		case '\n':
			return l.errorToken(start, "unterminated literal")
		case quote:
			l.advance()
			return l.token(kind, start)
		}
		l.advance()
	}
	return l.errorToken(start, "unterminated literal")
}

func (l *Lexer) scanTextBlock(start Position) Token {
	l.advanceN(3)
	for l.pos < len(l.input) {
		if l.peek() == '\\' {
			l.advanceN(2)
			continue
		}
		if l.peek() == '"' && l.peekN(1) == '"' && l.peekN(2) == '"' {
			l.advanceN(3)
			return l.token(TokenTextBlock, start)
		}
		l.advance()
	}
	return l.errorToken(start, "unterminated text block")
}

func (l *Lexer) errorToken(start Position, msg string) Token {
	tok := l.token(TokenError, start)
	tok.Literal = msg
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	kind := TokenIntLiteral
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' || l.peek() == '.' {
			if l.peek() == '.' {
				kind = TokenFloatLiteral
			}
			l.advance()
		}
		if l.peek() == 'p' || l.peek() == 'P' {
			kind = TokenFloatLiteral
			l.scanExponent()
		}
	} else if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		for l.peek() == '0' || l.peek() == '1' || l.peek() == '_' {
			l.advance()
		}
	} else {
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		if l.peek() == '.' && isFractionStart(l.peekN(1)) {
			kind = TokenFloatLiteral
			l.advance()
			for isDigit(l.peek()) || l.peek() == '_' {
				l.advance()
			}
		}
		if l.peek() == 'e' || l.peek() == 'E' {
			kind = TokenFloatLiteral
			l.scanExponent()
		}
	}
	switch l.peek() {
	case 'l', 'L':
		l.advance()
	case 'f', 'F', 'd', 'D':
		kind = TokenFloatLiteral
		l.advance()
	}
	return l.token(kind, start)
}

func (l *Lexer) scanExponent() {
	l.advance()
	if l.peek() == '+' || l.peek() == '-' {
		l.advance()
	}
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
}

var singleCharTokens = map[byte]TokenKind{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	';': TokenSemicolon,
	',': TokenComma,
	'@': TokenAt,
	'?': TokenQuestion,
	'<': TokenLT,
	'>': TokenGT,
}

const operatorChars = "=!~:&|+-*/^%"

var twoCharOperators = map[string]bool{
	"==": true, "!=": true, "&&": true, "||": true, "++": true, "--": true,
	"->": true, "::": true, "+=": true, "-=": true, "*=": true, "/=": true,
	"&=": true, "|=": true, "^=": true, "%=": true,
}

// scanOperator never merges '<' or '>' with their neighbours so that
// nested type arguments close one bracket per token. Expression text is
// recovered from source offsets, not from token literals.
func (l *Lexer) scanOperator(start Position) Token {
	ch := l.peek()
	if ch == '.' {
		if l.peekN(1) == '.' && l.peekN(2) == '.' {
			l.advanceN(3)
			return l.token(TokenEllipsis, start)
		}
		l.advance()
		return l.token(TokenDot, start)
	}
	if kind, ok := singleCharTokens[ch]; ok {
		l.advance()
		return l.token(kind, start)
	}
	if strings.IndexByte(operatorChars, ch) < 0 {
		l.advance()
		return l.errorToken(start, "unexpected character")
	}
	if twoCharOperators[string([]byte{ch, l.peekN(1)})] {
		l.advanceN(2)
		return l.token(TokenOperator, start)
	}
	l.advance()
	tok := l.token(TokenOperator, start)
	switch ch {
	case '=':
		tok.Kind = TokenAssign
	case '&':
		tok.Kind = TokenAmp
	case '-':
		tok.Kind = TokenMinus
	case '+':
		tok.Kind = TokenPlus
	}
	return tok
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isJavaLetter(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isJavaLetterOrDigit(r rune) bool {
	return isJavaLetter(r) || unicode.IsDigit(r)
}

// isFractionStart reports whether the byte after a '.' that follows
// integer digits continues a floating point literal (1.5, 1., 1.e3) rather
// than starting a member access or an ellipsis.
func isFractionStart(ch byte) bool {
	switch {
	case isDigit(ch), strings.IndexByte("eEfFdD", ch) >= 0:
		return true
	case ch == '.', ch == '_', ch == '$', ch >= 0x80:
		return false
	case (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z'):
		return false
	}
	return true
}
