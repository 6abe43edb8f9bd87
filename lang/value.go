package lang

import (
	"strconv"

	"github.com/sergev/minion/parser"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInt
	TypeBool
	TypeString
	TypeReturn
	TypeFunction
	TypeBuiltin
	TypeError
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeReturn:
		return "return"
	case TypeFunction:
		return "function"
	case TypeBuiltin:
		return "builtin"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Function is a user-defined function together with the scope it closes over.
type Function struct {
	Name   string
	Params []*parser.Identifier
	Body   *parser.BlockStatement
	Env    *Env
}

// BuiltinFunc is a named native function.
type BuiltinFunc struct {
	Name string
	Fn   Builtin
}

// Null is the singleton null value.
var Null = Value{Type: TypeNull}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// IntValue constructs an integer Value.
func IntValue(i int64) Value {
	return Value{Type: TypeInt, payload: i}
}

// StringValue constructs a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// ErrorValue constructs an error object carrying msg. Error objects are
// ordinary values; they do not abort evaluation.
func ErrorValue(msg string) Value {
	return Value{Type: TypeError, payload: msg}
}

// ReturnValue wraps v so that enclosing blocks stop executing.
func ReturnValue(v Value) Value {
	return Value{Type: TypeReturn, payload: &v}
}

// FunctionValue wraps a user-defined function.
func FunctionValue(name string, params []*parser.Identifier, body *parser.BlockStatement, env *Env) Value {
	return Value{
		Type:    TypeFunction,
		payload: &Function{Name: name, Params: params, Body: body, Env: env},
	}
}

// BuiltinValue wraps a native function under name.
func BuiltinValue(name string, fn Builtin) Value {
	return Value{
		Type:    TypeBuiltin,
		payload: &BuiltinFunc{Name: name, Fn: fn},
	}
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Int() int64 {
	if i, ok := v.payload.(int64); ok {
		return i
	}
	return 0
}

func (v Value) Str() string {
	if v.Type != TypeString {
		return ""
	}
	s, _ := v.payload.(string)
	return s
}

// ErrorMessage returns the message of an error object.
func (v Value) ErrorMessage() string {
	if v.Type != TypeError {
		return ""
	}
	s, _ := v.payload.(string)
	return s
}

// Unwrap returns the value inside a Return wrapper, or v itself.
func (v Value) Unwrap() Value {
	if p, ok := v.payload.(*Value); ok && v.Type == TypeReturn {
		return *p
	}
	return v
}

func (v Value) Function() *Function {
	if f, ok := v.payload.(*Function); ok {
		return f
	}
	return nil
}

func (v Value) Builtin() *BuiltinFunc {
	if b, ok := v.payload.(*BuiltinFunc); ok {
		return b
	}
	return nil
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// TypeName names the value's type for messages.
func (v Value) TypeName() string {
	return v.Type.String()
}

// String returns the display form used by print and string coercion.
func (v Value) String() string {
	switch v.Type {
	case TypeNull:
		return "null"
	case TypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeString:
		return v.Str()
	case TypeReturn:
		return v.Unwrap().String()
	case TypeFunction:
		if f := v.Function(); f != nil {
			return "<fn " + f.Name + ">"
		}
		return "<fn>"
	case TypeBuiltin:
		if b := v.Builtin(); b != nil {
			return "<builtin " + b.Name + ">"
		}
		return "<builtin>"
	case TypeError:
		return v.ErrorMessage()
	default:
		return "<unknown>"
	}
}

// IsTruthy reports whether v counts as true in a condition.
// Only null and false are falsy.
func IsTruthy(v Value) bool {
	switch v.Type {
	case TypeNull:
		return false
	case TypeBool:
		return v.Bool()
	default:
		return true
	}
}
