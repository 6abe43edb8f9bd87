package parser

// precedence orders operator binding strength, lowest first.
type precedence int

const (
	precLowest      precedence = iota
	precEquals                 // == !=
	precLessGreater            // < <= > >=
	precSum                    // + -
	precProduct                // * / %
	precPrefix                 // -x !x
	precCall                   // f(x)
	precIndex                  // a[i], reserved
)

func (p precedence) String() string {
	switch p {
	case precLowest:
		return "lowest"
	case precEquals:
		return "equals"
	case precLessGreater:
		return "less_greater"
	case precSum:
		return "sum"
	case precProduct:
		return "product"
	case precPrefix:
		return "prefix"
	case precCall:
		return "call"
	case precIndex:
		return "index"
	default:
		return "unknown"
	}
}

func precedenceOf(tt TokenType) precedence {
	switch tt {
	case TokenEqual, TokenNotEqual:
		return precEquals
	case TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		return precLessGreater
	case TokenPlus, TokenMinus:
		return precSum
	case TokenAsterisk, TokenSlash, TokenPercent:
		return precProduct
	case TokenLParen:
		return precCall
	case TokenLBracket:
		return precIndex
	default:
		return precLowest
	}
}
