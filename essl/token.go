package essl

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenUIntLiteral
	TokenFloatLiteral
	TokenTrue
	TokenFalse

	// A whole preprocessor line, '#' included.
	TokenDirective

	// Type names: void, float, vec3, mat2x4, sampler2D, ...
	TokenTypeName

	// Operators
	TokenPlus                // +
	TokenMinus               // -
	TokenStar                // *
	TokenSlash               // /
	TokenPercent             // %
	TokenAmpersand           // &
	TokenPipe                // |
	TokenCaret               // ^
	TokenTilde               // ~
	TokenBang                // !
	TokenEqual               // =
	TokenLess                // <
	TokenGreater             // >
	TokenDot                 // .
	TokenComma               // ,
	TokenColon               // :
	TokenSemicolon           // ;
	TokenQuestion            // ?
	TokenPlusPlus            // ++
	TokenMinusMinus          // --
	TokenEqualEqual          // ==
	TokenBangEqual           // !=
	TokenLessEqual           // <=
	TokenGreaterEqual        // >=
	TokenAmpAmp              // &&
	TokenPipePipe            // ||
	TokenCaretCaret          // ^^
	TokenLessLess            // <<
	TokenGreaterGreater      // >>
	TokenPlusEqual           // +=
	TokenMinusEqual          // -=
	TokenStarEqual           // *=
	TokenSlashEqual          // /=
	TokenPercentEqual        // %=
	TokenAmpEqual            // &=
	TokenPipeEqual           // |=
	TokenCaretEqual          // ^=
	TokenLessLessEqual       // <<=
	TokenGreaterGreaterEqual // >>=

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]

	// Qualifiers
	TokenAttribute
	TokenConst
	TokenUniform
	TokenVarying
	TokenIn
	TokenOut
	TokenInOut
	TokenCentroid
	TokenFlat
	TokenSmooth
	TokenInvariant
	TokenLayout
	TokenShared
	TokenPrecision
	TokenLowp
	TokenMediump
	TokenHighp

	// Statements
	TokenBreak
	TokenContinue
	TokenDo
	TokenFor
	TokenWhile
	TokenIf
	TokenElse
	TokenDiscard
	TokenReturn

	// Recognized but unsupported
	TokenStruct
	TokenSwitch
	TokenCase
	TokenDefault
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "Error"
	case TokenIdent:
		return "Ident"
	case TokenIntLiteral, TokenUIntLiteral:
		return "IntLiteral"
	case TokenFloatLiteral:
		return "FloatLiteral"
	case TokenTypeName:
		return "TypeName"
	case TokenDirective:
		return "Directive"
	case TokenSemicolon:
		return ";"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	case TokenLeftBrace:
		return "{"
	case TokenRightBrace:
		return "}"
	case TokenLeftBracket:
		return "["
	case TokenRightBracket:
		return "]"
	case TokenComma:
		return ","
	case TokenEqual:
		return "="
	default:
		for word, kind := range keywords {
			if kind == k {
				return word
			}
		}
		return "Unknown"
	}
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

var keywords = map[string]TokenKind{
	"true":      TokenTrue,
	"false":     TokenFalse,
	"attribute": TokenAttribute,
	"const":     TokenConst,
	"uniform":   TokenUniform,
	"varying":   TokenVarying,
	"in":        TokenIn,
	"out":       TokenOut,
	"inout":     TokenInOut,
	"centroid":  TokenCentroid,
	"flat":      TokenFlat,
	"smooth":    TokenSmooth,
	"invariant": TokenInvariant,
	"layout":    TokenLayout,
	"shared":    TokenShared,
	"precision": TokenPrecision,
	"lowp":      TokenLowp,
	"mediump":   TokenMediump,
	"highp":     TokenHighp,
	"break":     TokenBreak,
	"continue":  TokenContinue,
	"do":        TokenDo,
	"for":       TokenFor,
	"while":     TokenWhile,
	"if":        TokenIf,
	"else":      TokenElse,
	"discard":   TokenDiscard,
	"return":    TokenReturn,
	"struct":    TokenStruct,
	"switch":    TokenSwitch,
	"case":      TokenCase,
	"default":   TokenDefault,
}
