package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAllTokens(t *testing.T, src string) []Token {
	t.Helper()
	lx := NewLexer(src)
	var tokens []Token
	for {
		tok, err := lx.NextToken()
		if err != nil {
			t.Fatalf("unexpected lexer error after %d tokens: %v", len(tokens), err)
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return tokens
}

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexerSpansForSimpleTokens(t *testing.T) {
	tokens := lexAllTokens(t, "1 + 2")
	require.Len(t, tokens, 4)

	assert.Equal(t, []TokenType{TokenInteger, TokenPlus, TokenInteger, TokenEOF}, tokenTypes(tokens))
	assert.Equal(t, Span{Start: 0, End: 0}, tokens[0].Span)
	assert.Equal(t, Span{Start: 2, End: 2}, tokens[1].Span)
	assert.Equal(t, Span{Start: 4, End: 4}, tokens[2].Span)
	assert.Equal(t, Span{Start: 5, End: 5}, tokens[3].Span, "EOF is the empty range at the end")
}

func TestLexerIdentifiersAndKeywords(t *testing.T) {
	src := "fn match if else ret for break continue true false foo bar_baz x1"
	tokens := lexAllTokens(t, src)
	tokens = tokens[:len(tokens)-1] // drop EOF

	want := []struct {
		typ    TokenType
		lexeme string
	}{
		{TokenFunction, "fn"},
		{TokenMatch, "match"},
		{TokenIf, "if"},
		{TokenElse, "else"},
		{TokenReturn, "ret"},
		{TokenFor, "for"},
		{TokenBreak, "break"},
		{TokenContinue, "continue"},
		{TokenTrue, "true"},
		{TokenFalse, "false"},
		{TokenIdentifier, "foo"},
		{TokenIdentifier, "bar_baz"},
		{TokenIdentifier, "x1"},
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, tt := range want {
		tok := tokens[i]
		if tok.Type != tt.typ {
			t.Errorf("token %d: expected type %v, got %v", i, tt.typ, tok.Type)
		}
		if tok.Lexeme != tt.lexeme {
			t.Errorf("token %d: expected lexeme %q, got %q", i, tt.lexeme, tok.Lexeme)
		}
	}
}

func TestLexerOperatorsPreferLongestMatch(t *testing.T) {
	src := "== = != ! <= < >= > && || ++ + -- - * / % ( ) { } [ ] , ; #"
	tokens := lexAllTokens(t, src)

	want := []TokenType{
		TokenEqual, TokenAssign, TokenNotEqual, TokenBang,
		TokenLessEqual, TokenLess, TokenGreaterEqual, TokenGreater,
		TokenAndAnd, TokenOrOr, TokenIncrement, TokenPlus, TokenDecrement, TokenMinus,
		TokenAsterisk, TokenSlash, TokenPercent,
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket,
		TokenComma, TokenSemicolon, TokenHash,
		TokenEOF,
	}
	assert.Equal(t, want, tokenTypes(tokens))
}

func TestLexerTwoCharacterSpans(t *testing.T) {
	tokens := lexAllTokens(t, "a<=b")
	require.Len(t, tokens, 4)
	assert.Equal(t, Span{Start: 1, End: 2}, tokens[1].Span)
	assert.Equal(t, Span{Start: 3, End: 3}, tokens[2].Span)
}

func TestLexerIntegerLiterals(t *testing.T) {
	tokens := lexAllTokens(t, "0 42 9223372036854775807")
	require.Len(t, tokens, 4)

	assert.Equal(t, int64(0), tokens[0].Int)
	assert.Equal(t, int64(42), tokens[1].Int)
	assert.Equal(t, int64(9223372036854775807), tokens[2].Int)
	assert.Equal(t, Span{Start: 5, End: 23}, tokens[2].Span)
}

func TestLexerIntegerOverflow(t *testing.T) {
	lx := NewLexer("9223372036854775808 1")
	tok, err := lx.NextToken()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegerOverflow), "got %v", err)
	assert.Equal(t, TokenIllegal, tok.Type)
	assert.Equal(t, Span{Start: 0, End: 18}, tok.Span)

	next, err := lx.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenInteger, next.Type, "lexer resumes after the bad literal")
}

func TestLexerStringLiterals(t *testing.T) {
	tokens := lexAllTokens(t, `"hello world" ""`)
	require.Len(t, tokens, 3)

	assert.Equal(t, TokenString, tokens[0].Type)
	assert.Equal(t, "hello world", tokens[0].Lexeme)
	assert.Equal(t, Span{Start: 0, End: 12}, tokens[0].Span)
	assert.Equal(t, "", tokens[1].Lexeme)
	assert.Equal(t, Span{Start: 14, End: 15}, tokens[1].Span)
}

func TestLexerUnterminatedString(t *testing.T) {
	lx := NewLexer(`"never closed`)
	_, err := lx.NextToken()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnterminatedString))
	assert.True(t, IsIncomplete(err))

	tok, err := lx.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenEOF, tok.Type)
}

func TestLexerIllegalCharacter(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"dollar", "$"},
		{"single ampersand", "&"},
		{"single pipe", "|"},
		{"underscore start", "_x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLexer(tc.src).NextToken()
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, LexicalError, perr.Kind)
			assert.ErrorIs(t, err, ErrIllegalCharacter)
			assert.False(t, perr.Incomplete)
		})
	}
}

func TestLexerSkipsComments(t *testing.T) {
	src := "// leading comment\n  x // trailing\n// another\n\t+ 1 //"
	tokens := lexAllTokens(t, src)
	assert.Equal(t, []TokenType{TokenIdentifier, TokenPlus, TokenInteger, TokenEOF}, tokenTypes(tokens))
	assert.Equal(t, Span{Start: 21, End: 21}, tokens[0].Span)
}

func TestLexerSlashIsNotComment(t *testing.T) {
	tokens := lexAllTokens(t, "6 / 2")
	assert.Equal(t, []TokenType{TokenInteger, TokenSlash, TokenInteger, TokenEOF}, tokenTypes(tokens))
}

func TestLexerTokensIsRestartable(t *testing.T) {
	lx := NewLexer("# x = 1;")
	collect := func() []TokenType {
		var types []TokenType
		for tok, err := range lx.Tokens() {
			require.NoError(t, err)
			types = append(types, tok.Type)
		}
		return types
	}

	want := []TokenType{TokenHash, TokenIdentifier, TokenAssign, TokenInteger, TokenSemicolon}
	assert.Equal(t, want, collect())
	assert.Equal(t, want, collect(), "a second range starts from the beginning")
}

func TestLexerTokensYieldsErrors(t *testing.T) {
	var errs []error
	var count int
	for _, err := range NewLexer("1 $ 2").Tokens() {
		count++
		if err != nil {
			errs = append(errs, err)
		}
	}
	assert.Equal(t, 3, count)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrIllegalCharacter)
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("f(1)")
	require.NoError(t, err)
	assert.Equal(t, []TokenType{TokenIdentifier, TokenLParen, TokenInteger, TokenRParen, TokenEOF}, tokenTypes(tokens))

	tokens, err = Tokenize("a @")
	assert.ErrorIs(t, err, ErrIllegalCharacter)
	assert.Len(t, tokens, 1)
}
