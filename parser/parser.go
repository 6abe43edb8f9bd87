package parser

import "fmt"

// Parse translates source text into a Program AST.
//
// Errors are collected per top-level statement: a failed statement is
// recorded, the parser skips to the end of that statement and carries on,
// so one call can report several independent mistakes as an ErrorList.
// Inside a statement there is no recovery; the first error in an expression
// or nested block abandons the whole statement.
func Parse(src string) (*Program, error) {
	p := newParser(NewLexer(src))
	return p.parseProgram()
}

type parser struct {
	lx      *Lexer
	curr    Token
	currErr error
	peekTok Token
	peekErr error
	errs    ErrorList
	depth   int // blocks opened and not yet closed
}

func newParser(lx *Lexer) *parser {
	p := &parser{lx: lx}
	p.peekTok, p.peekErr = lx.NextToken()
	p.advance()
	return p
}

// advance moves the lookahead into curr and returns the lexical error, if
// any, of the token that just became current.
func (p *parser) advance() error {
	p.curr, p.currErr = p.peekTok, p.peekErr
	p.peekTok, p.peekErr = p.lx.NextToken()
	return p.currErr
}

func (p *parser) expectPeek(tt TokenType) error {
	if p.peekTok.Type != tt {
		return p.unexpectedPeek(tt.String())
	}
	return p.advance()
}

func (p *parser) expectPeekIdentifier(what string) error {
	if p.peekTok.Type != TokenIdentifier {
		if p.peekErr != nil {
			return p.peekErr
		}
		return p.errorAt(p.peekTok, fmt.Errorf("%w as %s, got %s", ErrExpectedIdentifier, what, describe(p.peekTok)))
	}
	return p.advance()
}

func (p *parser) unexpectedPeek(want string) error {
	if p.peekErr != nil {
		return p.peekErr
	}
	return p.errorAt(p.peekTok, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedToken, want, describe(p.peekTok)))
}

func (p *parser) skipSemicolon() error {
	if p.peekTok.Type == TokenSemicolon {
		return p.advance()
	}
	return nil
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for p.curr.Type != TokenEOF {
		if p.curr.Type == TokenSemicolon && p.currErr == nil {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			p.record(err)
			p.synchronize()
			continue
		}
		prog.Body = append(prog.Body, stmt)
		// A lexical error on the next token is reported when it is parsed.
		_ = p.advance()
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	if n := len(prog.Body); n > 0 {
		prog.Posn = Span{Start: prog.Body[0].Span().Start, End: prog.Body[n-1].Span().End}
	}
	return prog, nil
}

func (p *parser) record(err error) {
	perr, ok := err.(*Error)
	if !ok {
		perr = &Error{Kind: SyntaxError, Span: p.curr.Span, Err: err}
	}
	p.errs = append(p.errs, perr)
}

// synchronize skips the rest of a failed statement: up to the next ';' at
// top level, or past the '}' closing every block the statement left open.
func (p *parser) synchronize() {
	depth := p.depth
	p.depth = 0
	for p.curr.Type != TokenEOF {
		switch p.curr.Type {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			if depth > 0 {
				depth--
				if depth == 0 {
					_ = p.advance()
					return
				}
			}
		case TokenSemicolon:
			if depth == 0 {
				_ = p.advance()
				return
			}
		}
		_ = p.advance()
	}
}

func (p *parser) parseStatement() (Statement, error) {
	if p.currErr != nil {
		return nil, p.currErr
	}
	switch p.curr.Type {
	case TokenHash:
		decl, err := p.parseVariableDeclaration()
		if err != nil {
			return nil, err
		}
		return decl, nil
	case TokenFunction:
		return p.parseFunctionStatement()
	case TokenIf:
		return p.parseIfStatement()
	case TokenReturn:
		return p.parseReturnStatement()
	case TokenFor:
		return p.parseForStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseVariableDeclaration() (*VariableDeclaration, error) {
	start := p.curr.Span.Start
	if err := p.expectPeekIdentifier("variable name"); err != nil {
		return nil, err
	}
	name := p.curr
	if err := p.expectPeek(TokenAssign); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolon(); err != nil {
		return nil, err
	}
	return &VariableDeclaration{
		Identifier:  name,
		Initializer: value,
		Posn:        Span{Start: start, End: p.curr.Span.End},
	}, nil
}

func (p *parser) parseFunctionStatement() (Statement, error) {
	start := p.curr.Span.Start
	if err := p.expectPeekIdentifier("function name"); err != nil {
		return nil, err
	}
	name := &Identifier{Name: p.curr.Lexeme, Posn: p.curr.Span}
	if err := p.expectPeek(TokenLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenLBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolon(); err != nil {
		return nil, err
	}
	return &FunctionStatement{
		Name:   name,
		Params: params,
		Body:   body,
		Posn:   Span{Start: start, End: p.curr.Span.End},
	}, nil
}

// parseParams reads identifiers up to the closing ')', which becomes current.
// A trailing comma is allowed.
func (p *parser) parseParams() ([]*Identifier, error) {
	var params []*Identifier
	for {
		if p.peekTok.Type == TokenRParen {
			return params, p.advance()
		}
		if err := p.expectPeekIdentifier("parameter"); err != nil {
			return nil, err
		}
		params = append(params, &Identifier{Name: p.curr.Lexeme, Posn: p.curr.Span})
		switch p.peekTok.Type {
		case TokenComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
		case TokenRParen:
			return params, p.advance()
		default:
			return nil, p.unexpectedPeek(", or )")
		}
	}
}

// parseBlock expects curr to be '{' and leaves the closing '}' current.
func (p *parser) parseBlock() (*BlockStatement, error) {
	start := p.curr.Span.Start
	block := &BlockStatement{}
	p.depth++
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.curr.Type != TokenRBrace {
		switch p.curr.Type {
		case TokenEOF:
			return nil, p.errorAt(p.curr, fmt.Errorf("%w: expected } to close block, got EOF", ErrUnexpectedToken))
		case TokenSemicolon:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Body = append(block.Body, stmt)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	p.depth--
	block.Posn = Span{Start: start, End: p.curr.Span.End}
	return block, nil
}

func (p *parser) parseIfStatement() (Statement, error) {
	stmt, err := p.parseIfClause()
	if err != nil {
		return nil, err
	}
	for p.peekTok.Type == TokenElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.peekTok.Type == TokenIf {
			if err := p.advance(); err != nil {
				return nil, err
			}
			branch, err := p.parseIfClause()
			if err != nil {
				return nil, err
			}
			stmt.Branches = append(stmt.Branches, branch)
			continue
		}
		if err := p.expectPeek(TokenLBrace); err != nil {
			return nil, err
		}
		alt, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alt
		break
	}
	if err := p.skipSemicolon(); err != nil {
		return nil, err
	}
	stmt.Posn.End = p.curr.Span.End
	return stmt, nil
}

// parseIfClause parses `if (cond) { ... }` with curr on the if keyword.
func (p *parser) parseIfClause() (*IfStatement, error) {
	start := p.curr.Span.Start
	if err := p.expectPeek(TokenLParen); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenRParen); err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenLBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &IfStatement{
		Condition:  cond,
		Consequent: body,
		Posn:       Span{Start: start, End: p.curr.Span.End},
	}, nil
}

func (p *parser) parseReturnStatement() (Statement, error) {
	start := p.curr.Span.Start
	if err := p.advance(); err != nil {
		return nil, err
	}
	arg, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolon(); err != nil {
		return nil, err
	}
	return &ReturnStatement{
		Argument: arg,
		Posn:     Span{Start: start, End: p.curr.Span.End},
	}, nil
}

// parseForStatement reads `for # i = 0; cond; step { ... }`.
func (p *parser) parseForStatement() (Statement, error) {
	start := p.curr.Span.Start
	if err := p.expectPeek(TokenHash); err != nil {
		return nil, err
	}
	init, err := p.parseVariableDeclaration()
	if err != nil {
		return nil, err
	}
	if p.curr.Type != TokenSemicolon {
		return nil, p.unexpectedPeek(";")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenSemicolon); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	step, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(TokenLBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStatement{
		Initializer: init,
		Condition:   cond,
		Increment:   step,
		Body:        body,
		Posn:        Span{Start: start, End: p.curr.Span.End},
	}, nil
}

func (p *parser) parseExpressionStatement() (Statement, error) {
	start := p.curr.Span.Start
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolon(); err != nil {
		return nil, err
	}
	return &ExpressionStatement{
		Expression: expr,
		Posn:       Span{Start: start, End: p.curr.Span.End},
	}, nil
}

// parseExpression folds infix operators binding tighter than prec onto the
// prefix term at curr. Equal precedence stops the loop, so chains of the
// same operator associate to the left.
func (p *parser) parseExpression(prec precedence) (Expression, error) {
	start := p.curr.Span.Start
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for prec < precedenceOf(p.peekTok.Type) {
		if p.peekTok.Type == TokenLBracket {
			// Index expressions are reserved.
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curr.Type == TokenLParen {
			left, err = p.parseCall(left, start)
		} else {
			left, err = p.parseInfix(left, start)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parsePrefix() (Expression, error) {
	tok := p.curr
	switch tok.Type {
	case TokenIdentifier:
		ident := &Identifier{Name: tok.Lexeme, Posn: tok.Span}
		var kind UnaryKind
		switch p.peekTok.Type {
		case TokenIncrement:
			kind = PostIncrement
		case TokenDecrement:
			kind = PostDecrement
		default:
			return ident, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &UnaryOperator{
			Target: ident,
			Kind:   kind,
			Posn:   Span{Start: tok.Span.Start, End: p.curr.Span.End},
		}, nil
	case TokenInteger:
		return &IntegerLiteral{Value: tok.Int, Posn: tok.Span}, nil
	case TokenString:
		return &StringLiteral{Value: tok.Lexeme, Posn: tok.Span}, nil
	case TokenTrue, TokenFalse:
		return &BooleanLiteral{Value: tok.Type == TokenTrue, Posn: tok.Span}, nil
	case TokenIncrement, TokenDecrement:
		kind := PreIncrement
		if tok.Type == TokenDecrement {
			kind = PreDecrement
		}
		if err := p.expectPeekIdentifier(fmt.Sprintf("%s target", tok.Type)); err != nil {
			return nil, err
		}
		return &UnaryOperator{
			Target: &Identifier{Name: p.curr.Lexeme, Posn: p.curr.Span},
			Kind:   kind,
			Posn:   Span{Start: tok.Span.Start, End: p.curr.Span.End},
		}, nil
	case TokenMinus, TokenBang:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		return &PrefixExpression{
			Operator: tok,
			Operand:  operand,
			Posn:     Span{Start: tok.Span.Start, End: p.curr.Span.End},
		}, nil
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorAt(tok, fmt.Errorf("%w for %s", ErrNoPrefixParse, describe(tok)))
	}
}

func (p *parser) parseInfix(left Expression, start int) (Expression, error) {
	op := p.curr
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(precedenceOf(op.Type))
	if err != nil {
		return nil, err
	}
	return &InfixExpression{
		Operator: op,
		Left:     left,
		Right:    right,
		Posn:     Span{Start: start, End: p.curr.Span.End},
	}, nil
}

func (p *parser) parseCall(callee Expression, start int) (Expression, error) {
	args, err := p.parseExpressionSeries(TokenRParen)
	if err != nil {
		return nil, err
	}
	return &CallExpression{
		Callee:    callee,
		Arguments: args,
		Posn:      Span{Start: start, End: p.curr.Span.End},
	}, nil
}

// parseExpressionSeries reads comma separated expressions after the opening
// delimiter at curr, leaving the closing delimiter current. Empty series and
// a trailing comma are accepted.
func (p *parser) parseExpressionSeries(end TokenType) ([]Expression, error) {
	var series []Expression
	if p.peekTok.Type == end {
		return series, p.advance()
	}
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		series = append(series, expr)
		switch p.peekTok.Type {
		case TokenComma:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.peekTok.Type == end {
				return series, p.advance()
			}
		case end:
			return series, p.advance()
		default:
			if p.peekErr != nil {
				return nil, p.peekErr
			}
			return nil, p.errorAt(p.peekTok, fmt.Errorf("%w: expected , or %s, got %s", ErrUnterminatedSeries, end, describe(p.peekTok)))
		}
	}
}

func (p *parser) errorAt(tok Token, err error) *Error {
	if tok.Type == TokenEOF {
		return newIncompleteError(SyntaxError, tok.Span, err)
	}
	return &Error{Kind: SyntaxError, Span: tok.Span, Err: err}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenIdentifier, TokenInteger, TokenString:
		return fmt.Sprintf("%s %s", tok.Type, tok)
	default:
		return tok.Type.String()
	}
}
