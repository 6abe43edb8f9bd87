package parser

import "fmt"

// TokenType enumerates lexical categories recognised by the lexer.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdentifier
	TokenInteger
	TokenString

	// Keywords
	TokenFunction
	TokenMatch
	TokenIf
	TokenElse
	TokenReturn
	TokenFor
	TokenBreak
	TokenContinue
	TokenTrue
	TokenFalse

	// Operators and punctuation
	TokenAssign       // =
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenPlus         // +
	TokenMinus        // -
	TokenIncrement    // ++
	TokenDecrement    // --
	TokenAsterisk     // *
	TokenSlash        // /
	TokenPercent      // %
	TokenBang         // !
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenAndAnd       // &&
	TokenOrOr         // ||

	TokenComma     // ,
	TokenSemicolon // ;
	TokenHash      // #
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
)

func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "illegal"
	case TokenIdentifier:
		return "identifier"
	case TokenInteger:
		return "integer"
	case TokenString:
		return "string"
	case TokenFunction:
		return "fn"
	case TokenMatch:
		return "match"
	case TokenIf:
		return "if"
	case TokenElse:
		return "else"
	case TokenReturn:
		return "ret"
	case TokenFor:
		return "for"
	case TokenBreak:
		return "break"
	case TokenContinue:
		return "continue"
	case TokenTrue:
		return "true"
	case TokenFalse:
		return "false"
	case TokenAssign:
		return "="
	case TokenEqual:
		return "=="
	case TokenNotEqual:
		return "!="
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenIncrement:
		return "++"
	case TokenDecrement:
		return "--"
	case TokenAsterisk:
		return "*"
	case TokenSlash:
		return "/"
	case TokenPercent:
		return "%"
	case TokenBang:
		return "!"
	case TokenLess:
		return "<"
	case TokenLessEqual:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEqual:
		return ">="
	case TokenAndAnd:
		return "&&"
	case TokenOrOr:
		return "||"
	case TokenComma:
		return ","
	case TokenSemicolon:
		return ";"
	case TokenHash:
		return "#"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	default:
		return "unknown"
	}
}

// Span locates a token or node in the source as inclusive byte offsets.
// The zero Span is used for synthesized nodes.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d]", s.Start, s.End)
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type   TokenType
	Lexeme string // identifier name or decoded string literal text
	Int    int64  // value of integer literals
	Span   Span
}

// String renders the token the way it appeared in the source.
func (t Token) String() string {
	switch t.Type {
	case TokenIdentifier:
		return t.Lexeme
	case TokenInteger:
		return fmt.Sprintf("%d", t.Int)
	case TokenString:
		return fmt.Sprintf("%q", t.Lexeme)
	default:
		return t.Type.String()
	}
}

func keywordToken(lexeme string) (TokenType, bool) {
	switch lexeme {
	case "fn":
		return TokenFunction, true
	case "match":
		return TokenMatch, true
	case "if":
		return TokenIf, true
	case "else":
		return TokenElse, true
	case "ret":
		return TokenReturn, true
	case "for":
		return TokenFor, true
	case "break":
		return TokenBreak, true
	case "continue":
		return TokenContinue, true
	case "true":
		return TokenTrue, true
	case "false":
		return TokenFalse, true
	default:
		return TokenIllegal, false
	}
}
