package lexer

type Type int

const (
	TokenIllegal Type = iota
	TokenEOF
	TokenIdent
	TokenCon
	TokenTVar
	TokenNumber
	TokenString
	TokenUnterminated
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenColon
	TokenComma
	TokenDot
	TokenBar
	TokenArrow
	TokenFatArrow
	TokenAssign
	TokenEq
	TokenNe
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenBang
	TokenAndAnd
	TokenOrOr
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenCaret
	TokenKwContract
	TokenKwFunction
	TokenKwType
	TokenKwDatatype
	TokenKwLet
	TokenKwIf
	TokenKwElse
)

func (t Type) String() string {
	switch t {
	case TokenIllegal:
		return "ILLEGAL"
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "IDENT"
	case TokenCon:
		return "CON"
	case TokenTVar:
		return "TVAR"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenUnterminated:
		return "UNTERMINATED-STRING"
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
	case TokenColon:
		return ":"
	case TokenComma:
		return ","
	case TokenDot:
		return "."
	case TokenBar:
		return "|"
	case TokenArrow:
		return "->"
	case TokenFatArrow:
		return "=>"
	case TokenAssign:
		return "="
	case TokenEq:
		return "=="
	case TokenNe:
		return "!="
	case TokenLT:
		return "<"
	case TokenLE:
		return "<="
	case TokenGT:
		return ">"
	case TokenGE:
		return ">="
	case TokenBang:
		return "!"
	case TokenAndAnd:
		return "&&"
	case TokenOrOr:
		return "||"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenPercent:
		return "%"
	case TokenCaret:
		return "^"
	case TokenKwContract:
		return "contract"
	case TokenKwFunction:
		return "function"
	case TokenKwType:
		return "type"
	case TokenKwDatatype:
		return "datatype"
	case TokenKwLet:
		return "let"
	case TokenKwIf:
		return "if"
	case TokenKwElse:
		return "else"
	default:
		return "UNKNOWN"
	}
}

type Position struct {
	Offset int
	Line   int
	Column int
}

type Token struct {
	Type    Type
	Literal string
	Start   Position
	End     Position
}

func keywordType(lit string) Type {
	switch lit {
	case "contract":
		return TokenKwContract
	case "function":
		return TokenKwFunction
	case "type":
		return TokenKwType
	case "datatype":
		return TokenKwDatatype
	case "let":
		return TokenKwLet
	case "if":
		return TokenKwIf
	case "else":
		return TokenKwElse
	default:
		return TokenIdent
	}
}
