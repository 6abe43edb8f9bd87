package parser

import "io"

// ParseReader consumes source from an io.Reader and parses it.
func ParseReader(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Tokenize lexes src completely, stopping at the first lexical error.
// The returned slice ends with the EOF token when no error occurred.
func Tokenize(src string) ([]Token, error) {
	lx := NewLexer(src)
	var tokens []Token
	for {
		tok, err := lx.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
