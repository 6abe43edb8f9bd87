package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Node represents any AST node with a source span.
type Node interface {
	Span() Span
	String() string
}

// Statement represents a statement at top level or inside a block.
type Statement interface {
	Node
	stmtNode()
}

// Expression represents an expression.
type Expression interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Body []Statement
	Posn Span
}

func (p *Program) Span() Span { return p.Posn }

func (p *Program) String() string {
	return joinStatements(p.Body, "\n")
}

// VariableDeclaration binds a name in the current scope: # name = expr;
type VariableDeclaration struct {
	Identifier  Token
	Initializer Expression
	Posn        Span
}

func (s *VariableDeclaration) Span() Span { return s.Posn }
func (*VariableDeclaration) stmtNode()    {}

func (s *VariableDeclaration) String() string {
	return fmt.Sprintf("# %s = %s;", s.Identifier.Lexeme, s.Initializer)
}

// ExpressionStatement evaluates an expression for its value or side effects.
type ExpressionStatement struct {
	Expression Expression
	Posn       Span
}

func (s *ExpressionStatement) Span() Span { return s.Posn }
func (*ExpressionStatement) stmtNode()    {}

func (s *ExpressionStatement) String() string {
	return s.Expression.String()
}

// IfStatement is an if / else if / else chain. Branches holds the else-if
// clauses in source order; they never carry branches or alternates of their own.
type IfStatement struct {
	Condition  Expression
	Consequent *BlockStatement
	Branches   []*IfStatement
	Alternate  *BlockStatement // may be nil
	Posn       Span
}

func (s *IfStatement) Span() Span { return s.Posn }
func (*IfStatement) stmtNode()    {}

func (s *IfStatement) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "if (%s) %s", s.Condition, s.Consequent)
	for _, branch := range s.Branches {
		fmt.Fprintf(&b, " else if (%s) %s", branch.Condition, branch.Consequent)
	}
	if s.Alternate != nil {
		fmt.Fprintf(&b, " else %s", s.Alternate)
	}
	return b.String()
}

// ReturnStatement exits the enclosing function with a value.
type ReturnStatement struct {
	Argument Expression
	Posn     Span
}

func (s *ReturnStatement) Span() Span { return s.Posn }
func (*ReturnStatement) stmtNode()    {}

func (s *ReturnStatement) String() string {
	return fmt.Sprintf("ret %s;", s.Argument)
}

// FunctionStatement declares a named function in the current scope.
type FunctionStatement struct {
	Name   *Identifier
	Params []*Identifier
	Body   *BlockStatement
	Posn   Span
}

func (s *FunctionStatement) Span() Span { return s.Posn }
func (*FunctionStatement) stmtNode()    {}

func (s *FunctionStatement) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Name
	}
	return fmt.Sprintf("fn %s(%s) %s", s.Name, strings.Join(params, ", "), s.Body)
}

// ForStatement is parsed but has no evaluation semantics yet.
type ForStatement struct {
	Initializer *VariableDeclaration
	Condition   Expression
	Increment   Expression
	Body        *BlockStatement
	Posn        Span
}

func (s *ForStatement) Span() Span { return s.Posn }
func (*ForStatement) stmtNode()    {}

func (s *ForStatement) String() string {
	init := strings.TrimSuffix(s.Initializer.String(), ";")
	return fmt.Sprintf("for %s; %s; %s %s", init, s.Condition, s.Increment, s.Body)
}

// BlockStatement is a braced statement sequence.
type BlockStatement struct {
	Body []Statement
	Posn Span
}

func (s *BlockStatement) Span() Span { return s.Posn }
func (*BlockStatement) stmtNode()    {}

func (s *BlockStatement) String() string {
	if len(s.Body) == 0 {
		return "{ }"
	}
	return "{ " + joinStatements(s.Body, " ") + " }"
}

// Identifier refers to a variable or function name.
type Identifier struct {
	Name string
	Posn Span
}

func (e *Identifier) Span() Span     { return e.Posn }
func (*Identifier) exprNode()        {}
func (e *Identifier) String() string { return e.Name }

// IntegerLiteral is a decimal integer literal.
type IntegerLiteral struct {
	Value int64
	Posn  Span
}

func (e *IntegerLiteral) Span() Span     { return e.Posn }
func (*IntegerLiteral) exprNode()        {}
func (e *IntegerLiteral) String() string { return strconv.FormatInt(e.Value, 10) }

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
	Posn  Span
}

func (e *BooleanLiteral) Span() Span     { return e.Posn }
func (*BooleanLiteral) exprNode()        {}
func (e *BooleanLiteral) String() string { return strconv.FormatBool(e.Value) }

// StringLiteral is a double-quoted string literal.
type StringLiteral struct {
	Value string
	Posn  Span
}

func (e *StringLiteral) Span() Span     { return e.Posn }
func (*StringLiteral) exprNode()        {}
func (e *StringLiteral) String() string { return e.Value }

// PrefixExpression applies unary - or ! to its operand.
type PrefixExpression struct {
	Operator Token
	Operand  Expression
	Posn     Span
}

func (e *PrefixExpression) Span() Span { return e.Posn }
func (*PrefixExpression) exprNode()    {}

func (e *PrefixExpression) String() string {
	return fmt.Sprintf("(%s%s)", e.Operator.Type, e.Operand)
}

// InfixExpression applies a binary operator.
type InfixExpression struct {
	Operator    Token
	Left, Right Expression
	Posn        Span
}

func (e *InfixExpression) Span() Span { return e.Posn }
func (*InfixExpression) exprNode()    {}

func (e *InfixExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Operator.Type, e.Right)
}

// CallExpression invokes an expression with arguments.
type CallExpression struct {
	Callee    Expression
	Arguments []Expression
	Posn      Span
}

func (e *CallExpression) Span() Span { return e.Posn }
func (*CallExpression) exprNode()    {}

func (e *CallExpression) String() string {
	args := make([]string, len(e.Arguments))
	for i, arg := range e.Arguments {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(args, ", "))
}

// UnaryKind distinguishes the four increment/decrement forms.
type UnaryKind int

const (
	PreIncrement UnaryKind = iota
	PreDecrement
	PostIncrement
	PostDecrement
)

// IsPrefix reports whether the operator precedes its target.
func (k UnaryKind) IsPrefix() bool {
	return k == PreIncrement || k == PreDecrement
}

// Delta is the amount added to the target.
func (k UnaryKind) Delta() int64 {
	if k == PreDecrement || k == PostDecrement {
		return -1
	}
	return 1
}

func (k UnaryKind) String() string {
	if k.Delta() < 0 {
		return "--"
	}
	return "++"
}

// UnaryOperator increments or decrements a named integer binding.
type UnaryOperator struct {
	Target *Identifier
	Kind   UnaryKind
	Posn   Span
}

func (e *UnaryOperator) Span() Span { return e.Posn }
func (*UnaryOperator) exprNode()    {}

func (e *UnaryOperator) String() string {
	if e.Kind.IsPrefix() {
		return e.Kind.String() + e.Target.Name
	}
	return e.Target.Name + e.Kind.String()
}

func joinStatements(stmts []Statement, sep string) string {
	parts := make([]string, len(stmts))
	for i, stmt := range stmts {
		parts[i] = stmt.String()
	}
	return strings.Join(parts, sep)
}
