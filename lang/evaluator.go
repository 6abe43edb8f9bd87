package lang

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/sergev/minion/parser"
)

// DefaultMaxDepth bounds nested user-function calls unless overridden.
const DefaultMaxDepth = 10000

// Evaluator walks parsed programs.
type Evaluator struct {
	Global *Env

	builtins *Registry
	stdout   io.Writer
	stdin    *bufio.Reader
	logger   *slog.Logger
	maxDepth int
	depth    int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithBuiltins sets the registry consulted after the environment chain.
func WithBuiltins(r *Registry) Option {
	return func(ev *Evaluator) { ev.builtins = r }
}

// WithStdout redirects builtin output.
func WithStdout(w io.Writer) Option {
	return func(ev *Evaluator) { ev.stdout = w }
}

// WithStdin replaces the reader used by input.
func WithStdin(r io.Reader) Option {
	return func(ev *Evaluator) { ev.stdin = bufio.NewReader(r) }
}

// WithMaxDepth limits nested function calls. Zero disables the limit.
func WithMaxDepth(n int) Option {
	return func(ev *Evaluator) { ev.maxDepth = n }
}

// WithLogger sets the logger used for call tracing.
func WithLogger(l *slog.Logger) Option {
	return func(ev *Evaluator) { ev.logger = l }
}

// NewEvaluator constructs an evaluator rooted at a new global environment.
func NewEvaluator(opts ...Option) *Evaluator {
	ev := &Evaluator{
		Global:   NewEnv(nil),
		stdout:   os.Stdout,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(ev)
	}
	if ev.stdin == nil {
		ev.stdin = bufio.NewReader(os.Stdin)
	}
	if ev.logger == nil {
		ev.logger = slog.Default()
	}
	return ev
}

// Builtins returns the registry in use, which may be nil.
func (ev *Evaluator) Builtins() *Registry { return ev.builtins }

// Stdout is where builtins write output.
func (ev *Evaluator) Stdout() io.Writer { return ev.stdout }

// Stdin is where builtins read input.
func (ev *Evaluator) Stdin() *bufio.Reader { return ev.stdin }

// Eval evaluates node within env, or within Global when env is nil.
// A return at program level yields the returned value.
func (ev *Evaluator) Eval(node parser.Node, env *Env) (Value, error) {
	if env == nil {
		env = ev.Global
	}
	val, err := ev.eval(node, env)
	if err != nil {
		return Value{}, err
	}
	return val.Unwrap(), nil
}

// Apply invokes a function or builtin with already evaluated arguments.
func (ev *Evaluator) Apply(fn Value, args []Value) (Value, error) {
	return ev.apply(fn, args, parser.Span{})
}

func (ev *Evaluator) eval(node parser.Node, env *Env) (Value, error) {
	switch n := node.(type) {
	case *parser.Program:
		return ev.evalStatements(n.Body, env, true)
	case *parser.BlockStatement:
		return ev.evalStatements(n.Body, env, false)
	case *parser.ExpressionStatement:
		return ev.eval(n.Expression, env)
	case *parser.VariableDeclaration:
		val, err := ev.eval(n.Initializer, env)
		if err != nil {
			return Value{}, err
		}
		env.Set(n.Identifier.Lexeme, val)
		return Null, nil
	case *parser.ReturnStatement:
		if n.Argument == nil {
			return ReturnValue(Null), nil
		}
		val, err := ev.eval(n.Argument, env)
		if err != nil {
			return Value{}, err
		}
		return ReturnValue(val), nil
	case *parser.IfStatement:
		return ev.evalIf(n, env)
	case *parser.FunctionStatement:
		return ev.evalFunctionStatement(n, env)
	case *parser.ForStatement:
		return Value{}, errorf(n.Span(), ErrUnsupported, "for")
	case *parser.Identifier:
		return ev.evalIdentifier(n, env)
	case *parser.IntegerLiteral:
		return IntValue(n.Value), nil
	case *parser.BooleanLiteral:
		return BoolValue(n.Value), nil
	case *parser.StringLiteral:
		return StringValue(n.Value), nil
	case *parser.PrefixExpression:
		operand, err := ev.eval(n.Operand, env)
		if err != nil {
			return Value{}, err
		}
		return evalPrefix(n, operand)
	case *parser.InfixExpression:
		left, err := ev.eval(n.Left, env)
		if err != nil {
			return Value{}, err
		}
		right, err := ev.eval(n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return evalInfix(n, left, right)
	case *parser.CallExpression:
		return ev.evalCall(n, env)
	case *parser.UnaryOperator:
		return evalUnary(n, env)
	case nil:
		return Null, nil
	default:
		return Value{}, errorf(node.Span(), ErrUnsupported, "%T", node)
	}
}

// evalStatements runs stmts in order and stops at the first return.
// The program level unwraps the returned value; blocks pass the wrapper up.
func (ev *Evaluator) evalStatements(stmts []parser.Statement, env *Env, top bool) (Value, error) {
	result := Null
	for _, stmt := range stmts {
		val, err := ev.eval(stmt, env)
		if err != nil {
			return Value{}, err
		}
		if val.Type == TypeReturn {
			if top {
				return val.Unwrap(), nil
			}
			return val, nil
		}
		result = val
	}
	return result, nil
}

func (ev *Evaluator) evalIf(stmt *parser.IfStatement, env *Env) (Value, error) {
	clauses := append([]*parser.IfStatement{stmt}, stmt.Branches...)
	for _, clause := range clauses {
		cond, err := ev.eval(clause.Condition, env)
		if err != nil {
			return Value{}, err
		}
		if IsTruthy(cond) {
			return ev.eval(clause.Consequent, env)
		}
	}
	if stmt.Alternate != nil {
		return ev.eval(stmt.Alternate, env)
	}
	return Null, nil
}

func (ev *Evaluator) evalFunctionStatement(stmt *parser.FunctionStatement, env *Env) (Value, error) {
	name := stmt.Name.Name
	if ev.builtins.Has(name) {
		return Value{}, errorf(stmt.Name.Span(), ErrBuiltinRedeclared, "%s", name)
	}
	env.Set(name, FunctionValue(name, stmt.Params, stmt.Body, env))
	return Null, nil
}

func (ev *Evaluator) evalIdentifier(id *parser.Identifier, env *Env) (Value, error) {
	if val, ok := env.Get(id.Name); ok {
		return val, nil
	}
	if val, ok := ev.builtins.Lookup(id.Name); ok {
		return val, nil
	}
	return Value{}, errorf(id.Span(), ErrUnknownIdentifier, "%s", id.Name)
}

func (ev *Evaluator) evalCall(call *parser.CallExpression, env *Env) (Value, error) {
	callee, err := ev.eval(call.Callee, env)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		val, err := ev.eval(arg, env)
		if err != nil {
			return Value{}, err
		}
		args = append(args, val)
	}
	return ev.apply(callee, args, call.Span())
}

func (ev *Evaluator) apply(callee Value, args []Value, span parser.Span) (Value, error) {
	switch callee.Type {
	case TypeBuiltin:
		b := callee.Builtin()
		ev.logger.Debug("builtin call",
			slog.String("function", b.Name),
			slog.Int("args", len(args)))
		val, err := b.Fn(ev, args)
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) {
				return Value{}, err
			}
			return Value{}, &RuntimeError{Span: span, Err: err}
		}
		return val, nil
	case TypeFunction:
		return ev.callFunction(callee.Function(), args, span)
	default:
		return Value{}, errorf(span, ErrNotCallable, "%s", callee.TypeName())
	}
}

func (ev *Evaluator) callFunction(fn *Function, args []Value, span parser.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return Value{}, errorf(span, ErrArity, "%s expects %d, got %d", fn.Name, len(fn.Params), len(args))
	}
	if ev.maxDepth > 0 && ev.depth >= ev.maxDepth {
		return Value{}, errorf(span, ErrCallDepth, "%d", ev.maxDepth)
	}
	ev.depth++
	defer func() { ev.depth-- }()

	ev.logger.Debug("call",
		slog.String("function", fn.Name),
		slog.Int("args", len(args)),
		slog.Int("depth", ev.depth))
	scope := NewEnv(fn.Env)
	for i, param := range fn.Params {
		scope.Set(param.Name, args[i])
	}
	val, err := ev.eval(fn.Body, scope)
	if err != nil {
		return Value{}, err
	}
	result := val.Unwrap()
	ev.logger.Debug("return",
		slog.String("function", fn.Name),
		slog.String("value", result.String()),
		slog.Int("depth", ev.depth))
	return result, nil
}

func evalPrefix(expr *parser.PrefixExpression, operand Value) (Value, error) {
	switch expr.Operator.Type {
	case parser.TokenBang:
		return BoolValue(!IsTruthy(operand)), nil
	case parser.TokenMinus:
		if operand.Type != TypeInt {
			return Value{}, errorf(expr.Span(), ErrTypeMismatch, "-%s", operand.TypeName())
		}
		return IntValue(-operand.Int()), nil
	default:
		return Value{}, errorf(expr.Span(), ErrUnknownOperator, "%s%s", expr.Operator.Type, operand.TypeName())
	}
}

func evalUnary(expr *parser.UnaryOperator, env *Env) (Value, error) {
	name := expr.Target.Name
	scope := env.Resolve(name)
	if scope == nil {
		return Value{}, errorf(expr.Target.Span(), ErrUnknownIdentifier, "%s", name)
	}
	old, _ := scope.Get(name)
	if old.Type != TypeInt {
		return Value{}, errorf(expr.Span(), ErrInvalidIncrement, "%s is %s", name, old.TypeName())
	}
	updated := IntValue(old.Int() + expr.Kind.Delta())
	scope.Set(name, updated)
	if expr.Kind.IsPrefix() {
		return updated, nil
	}
	return old, nil
}

// coercible reports whether v may be stringified next to a string operand.
func coercible(v Value) bool {
	return v.Type == TypeInt || v.Type == TypeBool
}

func evalInfix(expr *parser.InfixExpression, left, right Value) (Value, error) {
	switch {
	case left.Type == TypeInt && right.Type == TypeInt:
		return intInfix(expr, left.Int(), right.Int())
	case left.Type == TypeBool && right.Type == TypeBool:
		return boolInfix(expr, left.Bool(), right.Bool())
	case left.Type == TypeString && right.Type == TypeString,
		left.Type == TypeString && coercible(right),
		coercible(left) && right.Type == TypeString:
		return stringInfix(expr, left.String(), right.String())
	case left.Type != right.Type:
		return Value{}, errorf(expr.Span(), ErrTypeMismatch, "%s %s %s",
			left.TypeName(), expr.Operator.Type, right.TypeName())
	default:
		return Value{}, unknownOperator(expr, left.Type)
	}
}

func unknownOperator(expr *parser.InfixExpression, t ValueType) error {
	return errorf(expr.Span(), ErrUnknownOperator, "%s %s %s", t, expr.Operator.Type, t)
}

func intInfix(expr *parser.InfixExpression, a, b int64) (Value, error) {
	switch expr.Operator.Type {
	case parser.TokenPlus:
		return IntValue(a + b), nil
	case parser.TokenMinus:
		return IntValue(a - b), nil
	case parser.TokenAsterisk:
		return IntValue(a * b), nil
	case parser.TokenSlash, parser.TokenPercent:
		if b == 0 {
			return Value{}, errorf(expr.Span(), ErrDivisionByZero, "")
		}
		if expr.Operator.Type == parser.TokenSlash {
			return IntValue(a / b), nil
		}
		return IntValue(a % b), nil
	case parser.TokenLess:
		return BoolValue(a < b), nil
	case parser.TokenLessEqual:
		return BoolValue(a <= b), nil
	case parser.TokenGreater:
		return BoolValue(a > b), nil
	case parser.TokenGreaterEqual:
		return BoolValue(a >= b), nil
	case parser.TokenEqual:
		return BoolValue(a == b), nil
	case parser.TokenNotEqual:
		return BoolValue(a != b), nil
	default:
		return Value{}, unknownOperator(expr, TypeInt)
	}
}

func boolInfix(expr *parser.InfixExpression, a, b bool) (Value, error) {
	switch expr.Operator.Type {
	case parser.TokenEqual:
		return BoolValue(a == b), nil
	case parser.TokenNotEqual:
		return BoolValue(a != b), nil
	default:
		return Value{}, unknownOperator(expr, TypeBool)
	}
}

func stringInfix(expr *parser.InfixExpression, a, b string) (Value, error) {
	switch expr.Operator.Type {
	case parser.TokenPlus:
		return StringValue(a + b), nil
	case parser.TokenEqual:
		return BoolValue(a == b), nil
	case parser.TokenNotEqual:
		return BoolValue(a != b), nil
	default:
		return Value{}, unknownOperator(expr, TypeString)
	}
}
