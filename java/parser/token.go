package parser

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenComment
	TokenLineComment

	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenCharLiteral
	TokenStringLiteral
	TokenTextBlock
	TokenTrue
	TokenFalse
	TokenNull

	// Keywords the declaration grammar needs.
	TokenAbstract
	TokenBoolean
	TokenByte
	TokenChar
	TokenClass
	TokenDefault
	TokenDouble
	TokenEnum
	TokenExtends
	TokenFinal
	TokenFloat
	TokenImplements
	TokenImport
	TokenInt
	TokenInterface
	TokenLong
	TokenNative
	TokenNew
	TokenPackage
	TokenPrivate
	TokenProtected
	TokenPublic
	TokenShort
	TokenStatic
	TokenStrictfp
	TokenSuper
	TokenSynchronized
	TokenThis
	TokenThrows
	TokenTransient
	TokenVoid
	TokenVolatile

	// Any other reserved word. They only occur inside bodies and
	// initializers, which are skipped.
	TokenKeyword

	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenEllipsis
	TokenAt
	TokenAssign
	TokenLT
	TokenGT
	TokenQuestion
	TokenAmp
	TokenMinus
	TokenPlus
	TokenOperator
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenComment:       "Comment",
	TokenLineComment:   "LineComment",
	TokenIdent:         "Ident",
	TokenIntLiteral:    "IntLiteral",
	TokenFloatLiteral:  "FloatLiteral",
	TokenCharLiteral:   "CharLiteral",
	TokenStringLiteral: "StringLiteral",
	TokenTextBlock:     "TextBlock",
	TokenKeyword:       "Keyword",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenEllipsis:      "...",
	TokenAt:            "@",
	TokenAssign:        "=",
	TokenLT:            "<",
	TokenGT:            ">",
	TokenQuestion:      "?",
	TokenAmp:           "&",
	TokenMinus:         "-",
	TokenPlus:          "+",
	TokenOperator:      "Operator",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	for word, kind := range keywords {
		if kind == k {
			return word
		}
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

var keywords = map[string]TokenKind{
	"abstract":     TokenAbstract,
	"boolean":      TokenBoolean,
	"byte":         TokenByte,
	"char":         TokenChar,
	"class":        TokenClass,
	"default":      TokenDefault,
	"double":       TokenDouble,
	"enum":         TokenEnum,
	"extends":      TokenExtends,
	"final":        TokenFinal,
	"float":        TokenFloat,
	"implements":   TokenImplements,
	"import":       TokenImport,
	"int":          TokenInt,
	"interface":    TokenInterface,
	"long":         TokenLong,
	"native":       TokenNative,
	"new":          TokenNew,
	"package":      TokenPackage,
	"private":      TokenPrivate,
	"protected":    TokenProtected,
	"public":       TokenPublic,
	"short":        TokenShort,
	"static":       TokenStatic,
	"strictfp":     TokenStrictfp,
	"super":        TokenSuper,
	"synchronized": TokenSynchronized,
	"this":         TokenThis,
	"throws":       TokenThrows,
	"transient":    TokenTransient,
	"void":         TokenVoid,
	"volatile":     TokenVolatile,
	"true":         TokenTrue,
	"false":        TokenFalse,
	"null":         TokenNull,

	"assert":     TokenKeyword,
	"break":      TokenKeyword,
	"case":       TokenKeyword,
	"catch":      TokenKeyword,
	"const":      TokenKeyword,
	"continue":   TokenKeyword,
	"do":         TokenKeyword,
	"else":       TokenKeyword,
	"finally":    TokenKeyword,
	"for":        TokenKeyword,
	"goto":       TokenKeyword,
	"if":         TokenKeyword,
	"instanceof": TokenKeyword,
	"return":     TokenKeyword,
	"switch":     TokenKeyword,
	"throw":      TokenKeyword,
	"try":        TokenKeyword,
	"while":      TokenKeyword,
}

// LookupKeyword returns the kind of ident, TokenIdent when it is not a
// reserved word. Contextual keywords (record, sealed, permits, var, ...)
// are identifiers.
func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

var primitiveKinds = map[TokenKind]bool{
	TokenBoolean: true,
	TokenByte:    true,
	TokenChar:    true,
	TokenDouble:  true,
	TokenFloat:   true,
	TokenInt:     true,
	TokenLong:    true,
	TokenShort:   true,
}

var modifierKinds = map[TokenKind]bool{
	TokenPublic:       true,
	TokenProtected:    true,
	TokenPrivate:      true,
	TokenStatic:       true,
	TokenAbstract:     true,
	TokenFinal:        true,
	TokenNative:       true,
	TokenSynchronized: true,
	TokenTransient:    true,
	TokenVolatile:     true,
	TokenStrictfp:     true,
	TokenDefault:      true,
}

// Token is a lexical token. Doc holds the text of the closest /** */
// comment that precedes the token with only other comments in between.
type Token struct {
	Kind    TokenKind
	Literal string
	Span    Span
	Doc     string
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Kind, t.Literal, t.Span.Start)
}
