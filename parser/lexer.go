package parser

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Lexer turns source text into tokens, one call at a time.
type Lexer struct {
	src  string
	pos  int  // byte offset of ch
	next int  // byte offset just after ch
	ch   rune // current character, 0 once pos reaches the end
}

// NewLexer returns a lexer positioned at the first character of src.
func NewLexer(src string) *Lexer {
	lx := &Lexer{src: src}
	lx.readChar()
	return lx
}

func (lx *Lexer) readChar() {
	lx.pos = lx.next
	if lx.next >= len(lx.src) {
		lx.ch = 0
		return
	}
	r, w := utf8.DecodeRuneInString(lx.src[lx.next:])
	lx.ch = r
	lx.next += w
}

func (lx *Lexer) peekChar() rune {
	if lx.next >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.next:])
	return r
}

func (lx *Lexer) atEnd() bool {
	return lx.pos >= len(lx.src)
}

// Tokens yields every token of the source up to, but not including, EOF.
// Each call starts again from the beginning of the source. Lexical errors
// are yielded alongside the offending token; the caller decides whether to stop.
func (lx *Lexer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		scan := NewLexer(lx.src)
		for {
			tok, err := scan.NextToken()
			if err == nil && tok.Type == TokenEOF {
				return
			}
			if !yield(tok, err) {
				return
			}
		}
	}
}

// NextToken scans the next token. Lexical errors are returned together with
// an illegal token spanning the offending input, which has been consumed.
func (lx *Lexer) NextToken() (Token, error) {
	lx.skipWhitespace()

	if lx.atEnd() {
		end := len(lx.src)
		return Token{Type: TokenEOF, Span: Span{Start: end, End: end}}, nil
	}

	start := lx.pos
	switch {
	case isLetter(lx.ch):
		return lx.scanIdentifier(start), nil
	case isDigit(lx.ch):
		return lx.scanInteger(start)
	case lx.ch == '"':
		return lx.scanString(start)
	}

	var tt TokenType
	switch lx.ch {
	case '+':
		tt = lx.either('+', TokenIncrement, TokenPlus)
	case '-':
		tt = lx.either('-', TokenDecrement, TokenMinus)
	case '*':
		tt = TokenAsterisk
	case '/':
		tt = TokenSlash
	case '%':
		tt = TokenPercent
	case '=':
		tt = lx.either('=', TokenEqual, TokenAssign)
	case '!':
		tt = lx.either('=', TokenNotEqual, TokenBang)
	case '<':
		tt = lx.either('=', TokenLessEqual, TokenLess)
	case '>':
		tt = lx.either('=', TokenGreaterEqual, TokenGreater)
	case '&':
		if lx.peekChar() != '&' {
			return lx.illegal(start)
		}
		lx.readChar()
		tt = TokenAndAnd
	case '|':
		if lx.peekChar() != '|' {
			return lx.illegal(start)
		}
		lx.readChar()
		tt = TokenOrOr
	case '(':
		tt = TokenLParen
	case ')':
		tt = TokenRParen
	case '{':
		tt = TokenLBrace
	case '}':
		tt = TokenRBrace
	case '[':
		tt = TokenLBracket
	case ']':
		tt = TokenRBracket
	case ',':
		tt = TokenComma
	case ';':
		tt = TokenSemicolon
	case '#':
		tt = TokenHash
	default:
		return lx.illegal(start)
	}

	lx.readChar()
	return Token{Type: tt, Span: lx.spanFrom(start)}, nil
}

// either consumes the current character and, when the following one is
// expected, that one too.
func (lx *Lexer) either(expected rune, two, one TokenType) TokenType {
	if lx.peekChar() == expected {
		lx.readChar()
		return two
	}
	return one
}

// spanFrom covers everything consumed since start.
func (lx *Lexer) spanFrom(start int) Span {
	return Span{Start: start, End: lx.pos - 1}
}

func (lx *Lexer) skipWhitespace() {
	for {
		for !lx.atEnd() && isWhitespace(lx.ch) {
			lx.readChar()
		}
		if lx.ch == '/' && lx.peekChar() == '/' {
			for !lx.atEnd() && lx.ch != '\n' {
				lx.readChar()
			}
			continue
		}
		return
	}
}

func (lx *Lexer) scanIdentifier(start int) Token {
	for !lx.atEnd() && isIdentifierPart(lx.ch) {
		lx.readChar()
	}
	lexeme := lx.src[start:lx.pos]
	span := lx.spanFrom(start)
	if keywordType, ok := keywordToken(lexeme); ok {
		return Token{Type: keywordType, Lexeme: lexeme, Span: span}
	}
	return Token{Type: TokenIdentifier, Lexeme: lexeme, Span: span}
}

func (lx *Lexer) scanInteger(start int) (Token, error) {
	for !lx.atEnd() && isDigit(lx.ch) {
		lx.readChar()
	}
	lexeme := lx.src[start:lx.pos]
	span := lx.spanFrom(start)
	value, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			err = fmt.Errorf("%w: %s does not fit in 64 bits", ErrIntegerOverflow, lexeme)
		}
		return Token{Type: TokenIllegal, Lexeme: lexeme, Span: span}, newLexicalError(span, err)
	}
	return Token{Type: TokenInteger, Lexeme: lexeme, Int: value, Span: span}, nil
}

func (lx *Lexer) scanString(start int) (Token, error) {
	lx.readChar() // opening quote
	contentStart := lx.pos
	for !lx.atEnd() && lx.ch != '"' {
		lx.readChar()
	}
	if lx.atEnd() {
		span := lx.spanFrom(start)
		return Token{Type: TokenIllegal, Lexeme: lx.src[contentStart:], Span: span},
			newIncompleteError(LexicalError, span, ErrUnterminatedString)
	}
	text := lx.src[contentStart:lx.pos]
	lx.readChar() // closing quote
	return Token{Type: TokenString, Lexeme: text, Span: lx.spanFrom(start)}, nil
}

func (lx *Lexer) illegal(start int) (Token, error) {
	r := lx.ch
	lx.readChar()
	span := lx.spanFrom(start)
	return Token{Type: TokenIllegal, Lexeme: lx.src[start:lx.pos], Span: span},
		newLexicalError(span, fmt.Errorf("%w %q", ErrIllegalCharacter, r))
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
