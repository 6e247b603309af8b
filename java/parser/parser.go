// Package parser reads Java source at the declaration level: package,
// imports, types, fields, methods, constructors and annotations with their
// element values. Method bodies, initializer blocks and field initializers
// are skipped by bracket matching; their source text stays reachable
// through node spans.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// SyntaxError is a recoverable parse problem. The parser records it and
// continues with the next declaration.
type SyntaxError struct {
	Pos     Position
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

type Parser struct {
	file   string
	reader io.Reader
	input  []byte
	tokens []Token
	pos    int
	errors []SyntaxError
}

// ParseCompilationUnit prepares a parser for r. Nothing is read until
// Finish is called.
func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser {
	p := &Parser{reader: r}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is a shorthand for ParseCompilationUnit(...).Finish() on an in
// memory source.
func Parse(src []byte, opts ...Option) (*Node, []SyntaxError, error) {
	p := ParseCompilationUnit(bytes.NewReader(src), opts...)
	unit, err := p.Finish()
	return unit, p.Errors(), err
}

// Finish reads the whole input and parses it. The returned error is only
// set when reading fails; syntax problems are reported by Errors and as
// KindError nodes in the tree.
func (p *Parser) Finish() (*Node, error) {
	input, err := io.ReadAll(p.reader)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	p.input = input
	p.tokenize()
	return p.parseCompilationUnit(), nil
}

func (p *Parser) Errors() []SyntaxError {
	return p.errors
}

// Source returns the input text covered by span.
func (p *Parser) Source(span Span) string {
	if span.Start.Offset < 0 || span.End.Offset > len(p.input) || span.Start.Offset > span.End.Offset {
		return ""
	}
	return string(p.input[span.Start.Offset:span.End.Offset])
}

func (p *Parser) tokenize() {
	lexer := NewLexer(p.input, p.file)
	doc := ""
	p.tokens = p.tokens[:0]
	for {
		tok := lexer.NextToken()
		switch tok.Kind {
		case TokenLineComment:
			continue
		case TokenComment:
			if strings.HasPrefix(tok.Literal, "/**") && tok.Literal != "/**/" {
				doc = tok.Literal
			}
			continue
		case TokenError:
			p.errors = append(p.errors, SyntaxError{Pos: tok.Span.Start, Message: tok.Literal})
		}
		tok.Doc = doc
		doc = ""
		p.tokens = append(p.tokens, tok)
		if tok.Kind == TokenEOF {
			return
		}
	}
}

func (p *Parser) peek() Token { return p.peekN(0) }

func (p *Parser) peekN(n int) Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind TokenKind) bool { return p.peek().Kind == kind }

func (p *Parser) atIdent(literal string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Literal == literal
}

func (p *Parser) accept(kind TokenKind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind) (Token, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	p.errorf("expected %s, got %s", kind, describe(p.peek()))
	return p.peek(), false
}

func describe(tok Token) string {
	if tok.Kind == TokenEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, SyntaxError{Pos: p.peek().Span.Start, Message: fmt.Sprintf(format, args...)})
}

// prev returns the last consumed token.
func (p *Parser) prev() Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{Kind: kind, Span: Span{Start: p.peek().Span.Start}}
}

func (p *Parser) finishNode(n *Node) *Node {
	n.Span.End = p.prev().Span.End
	if n.Span.End.Offset < n.Span.Start.Offset {
		n.Span.End = n.Span.Start
	}
	return n
}

func (p *Parser) tokenNode(kind NodeKind, tok Token) *Node {
	t := tok
	return &Node{Kind: kind, Span: tok.Span, Token: &t}
}

func (p *Parser) errorNode(msg string) *Node {
	tok := p.peek()
	n := p.startNode(KindError)
	n.Error = &Error{Message: msg, Got: &tok}
	p.errorf("%s", msg)
	return n
}

// skipBalanced consumes from an opening token to its matching closing
// token. Only the given pair is counted.
func (p *Parser) skipBalanced(open, close TokenKind) {
	depth := 0
	for !p.at(TokenEOF) {
		tok := p.advance()
		switch tok.Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
	p.errorf("unbalanced %s", open)
}

// recoverMember skips to the end of the current member: past a ';' at
// depth 0, past a balanced block, or up to the '}' closing the body.
func (p *Parser) recoverMember() {
	for !p.at(TokenEOF) {
		switch p.peek().Kind {
		case TokenSemicolon:
			p.advance()
			return
		case TokenRBrace:
			return
		case TokenLBrace:
			p.skipBalanced(TokenLBrace, TokenRBrace)
			return
		case TokenLParen:
			p.skipBalanced(TokenLParen, TokenRParen)
		default:
			p.advance()
		}
	}
}

func (p *Parser) parseCompilationUnit() *Node {
	unit := p.startNode(KindCompilationUnit)

	if p.isPackageDecl() {
		unit.AddChild(p.parsePackageDecl())
	}
	for p.at(TokenImport) {
		unit.AddChild(p.parseImportDecl())
	}
	for !p.at(TokenEOF) {
		if p.accept(TokenSemicolon) {
			continue
		}
		start := p.pos
		doc := p.peek().Doc
		modifiers := p.parseModifiers()
		decl := p.parseTypeDecl(modifiers, doc)
		if decl == nil {
			decl = p.errorNode(fmt.Sprintf("expected type declaration, got %s", describe(p.peek())))
			p.recoverMember()
			if p.pos == start {
				p.advance()
			}
			p.finishNode(decl)
		}
		unit.AddChild(decl)
	}
	return p.finishNode(unit)
}

// isPackageDecl looks past package annotations for the package keyword.
func (p *Parser) isPackageDecl() bool {
	i := 0
	for p.peekN(i).Kind == TokenAt && p.peekN(i+1).Kind != TokenInterface {
		i += 2
		for p.peekN(i).Kind == TokenIdent || p.peekN(i).Kind == TokenDot {
			i++
		}
		if p.peekN(i).Kind == TokenLParen {
			depth := 0
			for {
				kind := p.peekN(i).Kind
				i++
				if kind == TokenLParen {
					depth++
				} else if kind == TokenRParen {
					depth--
					if depth == 0 {
						break
					}
				} else if kind == TokenEOF {
					return false
				}
			}
		}
	}
	return p.peekN(i).Kind == TokenPackage
}

func (p *Parser) parsePackageDecl() *Node {
	n := p.startNode(KindPackageDecl)
	n.Doc = p.peek().Doc
	n.AddChild(p.parseModifiers())
	p.expect(TokenPackage)
	n.AddChild(p.parseQualifiedName())
	p.expect(TokenSemicolon)
	return p.finishNode(n)
}

// parseImportDecl produces an ImportDecl whose token holds the imported
// name, ending in ".*" for on-demand imports. Static imports carry a
// static Modifier child.
func (p *Parser) parseImportDecl() *Node {
	n := p.startNode(KindImportDecl)
	p.advance()
	if p.at(TokenStatic) {
		n.AddChild(p.tokenNode(KindModifier, p.advance()))
	}
	name := p.parseQualifiedName()
	literal := name.TokenLiteral()
	if p.at(TokenDot) && p.peekN(1).Kind == TokenOperator && p.peekN(1).Literal == "*" {
		p.advance()
		p.advance()
		literal += ".*"
	}
	p.expect(TokenSemicolon)
	p.finishNode(n)
	n.Token = &Token{Kind: TokenIdent, Literal: literal, Span: n.Span}
	n.AddChild(name)
	return n
}

// parseQualifiedName reads Ident{.Ident} into a single node whose token
// literal is the dotted name.
func (p *Parser) parseQualifiedName() *Node {
	n := p.startNode(KindQualifiedName)
	var parts []string
	tok, ok := p.expect(TokenIdent)
	if !ok {
		return p.finishNode(n)
	}
	parts = append(parts, tok.Literal)
	for p.at(TokenDot) && p.peekN(1).Kind == TokenIdent {
		p.advance()
		parts = append(parts, p.advance().Literal)
	}
	p.finishNode(n)
	n.Token = &Token{Kind: TokenIdent, Literal: strings.Join(parts, "."), Span: n.Span}
	return n
}

func (p *Parser) isModifierStart() bool {
	tok := p.peek()
	switch {
	case tok.Kind == TokenAt:
		return p.peekN(1).Kind != TokenInterface
	case modifierKinds[tok.Kind]:
		return true
	case tok.Kind == TokenIdent && tok.Literal == "sealed":
		return true
	case tok.Kind == TokenIdent && tok.Literal == "non":
		return p.peekN(1).Kind == TokenMinus && p.peekN(2).Literal == "sealed"
	}
	return false
}

// parseModifiers always returns a Modifiers node, possibly empty.
func (p *Parser) parseModifiers() *Node {
	n := p.startNode(KindModifiers)
	for p.isModifierStart() {
		if p.at(TokenAt) {
			n.AddChild(p.parseAnnotation())
			continue
		}
		if p.atIdent("non") {
			first := p.advance()
			p.advance()
			last := p.advance()
			n.AddChild(p.tokenNode(KindModifier, Token{
				Kind:    TokenIdent,
				Literal: "non-sealed",
				Span:    Span{Start: first.Span.Start, End: last.Span.End},
			}))
			continue
		}
		n.AddChild(p.tokenNode(KindModifier, p.advance()))
	}
	return p.finishNode(n)
}

// parseAnnotation reads @Name, @Name(value) or @Name(k = v, ...). A single
// unnamed value becomes an AnnotationElement without a token.
func (p *Parser) parseAnnotation() *Node {
	n := p.startNode(KindAnnotation)
	p.expect(TokenAt)
	n.AddChild(p.parseQualifiedName())
	if !p.accept(TokenLParen) {
		return p.finishNode(n)
	}
	if p.accept(TokenRParen) {
		return p.finishNode(n)
	}
	if p.at(TokenIdent) && p.peekN(1).Kind == TokenAssign {
		for {
			el := p.startNode(KindAnnotationElement)
			name := p.advance()
			el.Token = &name
			p.advance()
			el.AddChild(p.parseElementValue())
			n.AddChild(p.finishNode(el))
			if !p.accept(TokenComma) {
				break
			}
			if !p.at(TokenIdent) {
				n.AddChild(p.errorNode(fmt.Sprintf("expected element name, got %s", describe(p.peek()))))
				break
			}
		}
	} else {
		el := p.startNode(KindAnnotationElement)
		el.AddChild(p.parseElementValue())
		n.AddChild(p.finishNode(el))
	}
	if !p.accept(TokenRParen) {
		n.AddChild(p.errorNode(fmt.Sprintf("expected ) to close annotation, got %s", describe(p.peek()))))
		p.skipToAnnotationEnd()
	}
	return p.finishNode(n)
}

func (p *Parser) skipToAnnotationEnd() {
	depth := 1
	for !p.at(TokenEOF) {
		tok := p.advance()
		switch tok.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// parseElementValue reads an annotation element value. Forms with a
// structural meaning (literals, names, class literals, nested annotations
// and array initializers) get their own nodes; any other expression is
// kept as an Expression node holding its source text.
func (p *Parser) parseElementValue() *Node {
	switch {
	case p.at(TokenAt):
		return p.parseAnnotation()
	case p.at(TokenLBrace):
		n := p.startNode(KindArrayInit)
		p.advance()
		for !p.at(TokenRBrace) && !p.at(TokenEOF) {
			start := p.pos
			n.AddChild(p.parseElementValue())
			if !p.accept(TokenComma) {
				break
			}
			if p.pos == start {
				break
			}
		}
		if !p.accept(TokenRBrace) {
			n.AddChild(p.errorNode(fmt.Sprintf("expected } to close array, got %s", describe(p.peek()))))
		}
		return p.finishNode(n)
	}

	start := p.pos
	if n := p.parseSimpleValue(); n != nil && p.atValueEnd() {
		return n
	}
	p.pos = start
	return p.parseRawExpression()
}

func (p *Parser) atValueEnd() bool {
	switch p.peek().Kind {
	case TokenComma, TokenRParen, TokenRBrace, TokenSemicolon, TokenEOF:
		return true
	}
	return false
}

func isLiteralKind(kind TokenKind) bool {
	switch kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral, TokenStringLiteral,
		TokenTextBlock, TokenTrue, TokenFalse, TokenNull:
		return true
	}
	return false
}

func (p *Parser) parseSimpleValue() *Node {
	tok := p.peek()
	switch {
	case isLiteralKind(tok.Kind):
		return p.tokenNode(KindLiteral, p.advance())
	case (tok.Kind == TokenMinus || tok.Kind == TokenPlus) &&
		(p.peekN(1).Kind == TokenIntLiteral || p.peekN(1).Kind == TokenFloatLiteral):
		sign := p.advance()
		num := p.advance()
		return p.tokenNode(KindLiteral, Token{
			Kind:    num.Kind,
			Literal: sign.Literal + num.Literal,
			Span:    Span{Start: sign.Span.Start, End: num.Span.End},
		})
	case primitiveKinds[tok.Kind] || tok.Kind == TokenVoid:
		n := p.startNode(KindClassLiteral)
		n.AddChild(p.parseType())
		if !p.acceptClassSuffix() {
			return nil
		}
		return p.finishNode(n)
	case tok.Kind == TokenIdent:
		start := p.pos
		name := p.parseQualifiedName()
		if p.at(TokenLBracket) || (p.at(TokenDot) && p.peekN(1).Kind == TokenClass) {
			p.pos = start
			n := p.startNode(KindClassLiteral)
			n.AddChild(p.parseType())
			if !p.acceptClassSuffix() {
				return nil
			}
			return p.finishNode(n)
		}
		name.Kind = KindName
		return name
	}
	return nil
}

func (p *Parser) acceptClassSuffix() bool {
	if p.at(TokenDot) && p.peekN(1).Kind == TokenClass {
		p.advance()
		p.advance()
		return true
	}
	return false
}

// parseRawExpression consumes tokens up to the next ',' ')' '}' or ';' at
// nesting depth zero and returns their source text.
func (p *Parser) parseRawExpression() *Node {
	n := p.startNode(KindExpression)
	depth := 0
loop:
	for !p.at(TokenEOF) {
		switch p.peek().Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket, TokenRBrace:
			if depth == 0 {
				break loop
			}
			depth--
		case TokenComma, TokenSemicolon:
			if depth == 0 {
				break loop
			}
		}
		p.advance()
	}
	p.finishNode(n)
	n.Token = &Token{Kind: TokenOperator, Literal: strings.TrimSpace(p.Source(n.Span)), Span: n.Span}
	return n
}

func (p *Parser) isTypeDeclStart() bool {
	switch {
	case p.at(TokenClass), p.at(TokenInterface), p.at(TokenEnum):
		return true
	case p.at(TokenAt):
		return p.peekN(1).Kind == TokenInterface
	case p.atIdent("record"):
		return p.peekN(1).Kind == TokenIdent && (p.peekN(2).Kind == TokenLParen || p.peekN(2).Kind == TokenLT)
	}
	return false
}

// parseTypeDecl returns nil when the next tokens do not start a type
// declaration.
func (p *Parser) parseTypeDecl(modifiers *Node, doc string) *Node {
	if !p.isTypeDeclStart() {
		return nil
	}
	var n *Node
	switch {
	case p.at(TokenClass):
		n = p.parseClassLike(KindClassDecl, modifiers)
	case p.at(TokenInterface):
		n = p.parseClassLike(KindInterfaceDecl, modifiers)
	case p.at(TokenEnum):
		n = p.parseClassLike(KindEnumDecl, modifiers)
	case p.at(TokenAt):
		p.advance()
		n = p.parseClassLike(KindAnnotationDecl, modifiers)
	default:
		n = p.parseClassLike(KindRecordDecl, modifiers)
	}
	n.Span.Start = modifiers.Span.Start
	n.Doc = doc
	return n
}

// parseClassLike parses the part of a type declaration after the
// modifiers, starting at the class/interface/enum/record keyword.
func (p *Parser) parseClassLike(kind NodeKind, modifiers *Node) *Node {
	n := p.startNode(kind)
	n.AddChild(modifiers)
	p.advance()
	name, ok := p.expect(TokenIdent)
	if !ok {
		n.AddChild(p.errorNode("missing type name"))
		p.recoverMember()
		return p.finishNode(n)
	}
	n.Token = &name

	if p.at(TokenLT) {
		n.AddChild(p.parseTypeParameters())
	}
	if kind == KindRecordDecl {
		components := p.startNode(KindRecordComponents)
		components.Children = p.parseParameters().Children
		n.AddChild(p.finishNode(components))
	}
	for {
		switch {
		case p.at(TokenExtends):
			n.AddChild(p.parseTypeList(KindExtendsClause))
			continue
		case p.at(TokenImplements):
			n.AddChild(p.parseTypeList(KindImplementsClause))
			continue
		case p.atIdent("permits"):
			n.AddChild(p.parseTypeList(KindPermitsClause))
			continue
		}
		break
	}
	n.AddChild(p.parseClassBody(kind, name.Literal))
	return p.finishNode(n)
}

func (p *Parser) parseTypeList(kind NodeKind) *Node {
	n := p.startNode(kind)
	p.advance()
	for {
		n.AddChild(p.parseType())
		if !p.accept(TokenComma) {
			break
		}
	}
	return p.finishNode(n)
}

func (p *Parser) parseTypeParameters() *Node {
	n := p.startNode(KindTypeParameters)
	p.expect(TokenLT)
	for !p.at(TokenGT) && !p.at(TokenEOF) {
		param := p.startNode(KindTypeParameter)
		for p.at(TokenAt) {
			p.parseAnnotation()
		}
		name, ok := p.expect(TokenIdent)
		if !ok {
			n.AddChild(p.errorNode("expected type parameter name"))
			break
		}
		param.Token = &name
		if p.accept(TokenExtends) {
			param.AddChild(p.parseType())
			for p.accept(TokenAmp) {
				param.AddChild(p.parseType())
			}
		}
		n.AddChild(p.finishNode(param))
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenGT)
	return p.finishNode(n)
}

// parseType reads a primitive, class or array type. Type annotations are
// consumed and dropped.
func (p *Parser) parseType() *Node {
	for p.at(TokenAt) && p.peekN(1).Kind != TokenInterface {
		p.parseAnnotation()
	}
	var n *Node
	tok := p.peek()
	switch {
	case primitiveKinds[tok.Kind] || tok.Kind == TokenVoid:
		n = p.tokenNode(KindPrimitiveType, p.advance())
	case tok.Kind == TokenIdent:
		n = p.startNode(KindClassType)
		for {
			seg := p.startNode(KindTypeSegment)
			name := p.advance()
			seg.Token = &name
			if p.at(TokenLT) {
				seg.AddChild(p.parseTypeArguments())
			}
			n.AddChild(p.finishNode(seg))
			if !(p.at(TokenDot) && (p.peekN(1).Kind == TokenIdent || p.peekN(1).Kind == TokenAt)) {
				break
			}
			p.advance()
			for p.at(TokenAt) {
				p.parseAnnotation()
			}
			if !p.at(TokenIdent) {
				break
			}
		}
		p.finishNode(n)
	default:
		return p.errorNode(fmt.Sprintf("expected type, got %s", describe(tok)))
	}
	return p.parseDims(n)
}

// parseDims wraps elem in one ArrayType per [] pair that follows.
func (p *Parser) parseDims(elem *Node) *Node {
	for {
		for p.at(TokenAt) {
			p.parseAnnotation()
		}
		if !(p.at(TokenLBracket) && p.peekN(1).Kind == TokenRBracket) {
			return elem
		}
		p.advance()
		p.advance()
		arr := &Node{Kind: KindArrayType, Span: Span{Start: elem.Span.Start, End: p.prev().Span.End}}
		arr.AddChild(elem)
		elem = arr
	}
}

func (p *Parser) parseTypeArguments() *Node {
	n := p.startNode(KindTypeArguments)
	p.expect(TokenLT)
	for !p.at(TokenGT) && !p.at(TokenEOF) {
		for p.at(TokenAt) {
			p.parseAnnotation()
		}
		if p.at(TokenQuestion) {
			w := p.tokenNode(KindWildcard, p.advance())
			if p.at(TokenExtends) || p.at(TokenSuper) {
				bound := p.tokenNode(KindWildcardBound, p.advance())
				bound.AddChild(p.parseType())
				w.AddChild(p.finishNode(bound))
			}
			n.AddChild(p.finishNode(w))
		} else {
			start := p.pos
			n.AddChild(p.parseType())
			if p.pos == start {
				break
			}
		}
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenGT)
	return p.finishNode(n)
}

func (p *Parser) parseClassBody(kind NodeKind, className string) *Node {
	body := p.startNode(KindClassBody)
	if _, ok := p.expect(TokenLBrace); !ok {
		return p.finishNode(body)
	}
	if kind == KindEnumDecl {
		p.parseEnumConstants(body)
	}
	for !p.at(TokenRBrace) && !p.at(TokenEOF) {
		start := p.pos
		body.AddChild(p.parseMember(kind, className))
		if p.pos == start {
			p.advance()
		}
	}
	p.expect(TokenRBrace)
	return p.finishNode(body)
}

func (p *Parser) parseEnumConstants(body *Node) {
	for p.at(TokenIdent) || p.at(TokenAt) {
		c := p.startNode(KindEnumConstant)
		c.Doc = p.peek().Doc
		c.AddChild(p.parseModifiers())
		name, ok := p.expect(TokenIdent)
		if !ok {
			body.AddChild(p.finishNode(c))
			p.recoverMember()
			return
		}
		c.Token = &name
		if p.at(TokenLParen) {
			p.skipBalanced(TokenLParen, TokenRParen)
		}
		if p.at(TokenLBrace) {
			b := p.startNode(KindBody)
			p.skipBalanced(TokenLBrace, TokenRBrace)
			c.AddChild(p.finishNode(b))
		}
		body.AddChild(p.finishNode(c))
		if !p.accept(TokenComma) {
			break
		}
	}
	p.accept(TokenSemicolon)
}

// parseMember parses one class body declaration. It may return nil for a
// stray semicolon.
func (p *Parser) parseMember(kind NodeKind, className string) *Node {
	doc := p.peek().Doc
	if p.accept(TokenSemicolon) {
		return nil
	}
	if p.at(TokenLBrace) || (p.at(TokenStatic) && p.peekN(1).Kind == TokenLBrace) {
		n := p.startNode(KindInitializer)
		if p.at(TokenStatic) {
			n.AddChild(p.tokenNode(KindModifier, p.advance()))
		}
		p.skipBalanced(TokenLBrace, TokenRBrace)
		return p.finishNode(n)
	}

	modifiers := p.parseModifiers()
	if decl := p.parseTypeDecl(modifiers, doc); decl != nil {
		return decl
	}

	var typeParams *Node
	if p.at(TokenLT) {
		typeParams = p.parseTypeParameters()
	}

	if p.at(TokenIdent) && p.peek().Literal == className {
		next := p.peekN(1).Kind
		if next == TokenLParen || (next == TokenLBrace && kind == KindRecordDecl) {
			return p.parseConstructor(modifiers, typeParams, doc)
		}
	}

	start := p.pos
	typ := p.parseType()
	if typ.IsError() || !p.at(TokenIdent) {
		if p.pos == start && !p.at(TokenRBrace) {
			p.advance()
		}
		n := typ
		if !n.IsError() {
			n = p.errorNode(fmt.Sprintf("expected member name, got %s", describe(p.peek())))
		}
		p.recoverMember()
		return p.finishNode(n)
	}

	if p.peekN(1).Kind == TokenLParen {
		return p.parseMethod(modifiers, typeParams, typ, doc)
	}
	return p.parseField(modifiers, typ, doc)
}

func (p *Parser) parseConstructor(modifiers, typeParams *Node, doc string) *Node {
	n := &Node{Kind: KindConstructorDecl, Span: Span{Start: modifiers.Span.Start}, Doc: doc}
	n.AddChild(modifiers)
	n.AddChild(typeParams)
	name := p.advance()
	n.Token = &name
	if p.at(TokenLParen) {
		n.AddChild(p.parseParameters())
	}
	if p.at(TokenThrows) {
		n.AddChild(p.parseTypeList(KindThrowsList))
	}
	p.parseMethodBody(n)
	return p.finishNode(n)
}

func (p *Parser) parseMethod(modifiers, typeParams, result *Node, doc string) *Node {
	n := &Node{Kind: KindMethodDecl, Span: Span{Start: modifiers.Span.Start}, Doc: doc}
	n.AddChild(modifiers)
	n.AddChild(typeParams)
	name := p.advance()
	n.Token = &name
	params := p.parseParameters()
	// int values()[] declares an array result.
	n.AddChild(p.parseDims(result))
	n.AddChild(params)
	if p.at(TokenThrows) {
		n.AddChild(p.parseTypeList(KindThrowsList))
	}
	if p.at(TokenDefault) {
		d := p.startNode(KindDefaultValue)
		p.advance()
		d.AddChild(p.parseElementValue())
		n.AddChild(p.finishNode(d))
	}
	p.parseMethodBody(n)
	return p.finishNode(n)
}

func (p *Parser) parseMethodBody(n *Node) {
	switch {
	case p.accept(TokenSemicolon):
	case p.at(TokenLBrace):
		b := p.startNode(KindBody)
		p.skipBalanced(TokenLBrace, TokenRBrace)
		n.AddChild(p.finishNode(b))
	default:
		n.AddChild(p.errorNode(fmt.Sprintf("expected method body, got %s", describe(p.peek()))))
		p.recoverMember()
	}
}

func (p *Parser) parseParameters() *Node {
	n := p.startNode(KindParameters)
	if _, ok := p.expect(TokenLParen); !ok {
		return p.finishNode(n)
	}
	for !p.at(TokenRParen) && !p.at(TokenEOF) {
		start := p.pos
		if param := p.parseParameter(); param != nil {
			n.AddChild(param)
		}
		if p.pos == start {
			n.AddChild(p.errorNode(fmt.Sprintf("unexpected %s in parameters", describe(p.peek()))))
			p.advance()
		}
		if !p.accept(TokenComma) {
			break
		}
	}
	if _, ok := p.expect(TokenRParen); !ok {
		p.skipToAnnotationEnd()
	}
	return p.finishNode(n)
}

// parseParameter returns nil for a receiver parameter (Foo this).
func (p *Parser) parseParameter() *Node {
	n := p.startNode(KindParameter)
	n.AddChild(p.parseModifiers())
	typ := p.parseType()
	if typ.IsError() {
		return typ
	}
	varargs := false
	for p.at(TokenAt) {
		p.parseAnnotation()
	}
	if p.accept(TokenEllipsis) {
		varargs = true
	}
	if p.at(TokenThis) || (p.at(TokenIdent) && p.peekN(1).Kind == TokenDot && p.peekN(2).Kind == TokenThis) {
		for !p.at(TokenThis) {
			p.advance()
		}
		p.advance()
		return nil
	}
	name, ok := p.expect(TokenIdent)
	if !ok {
		return p.finishNode(n)
	}
	n.Token = &name
	typ = p.parseDims(typ)
	if varargs {
		arr := &Node{Kind: KindArrayType, Span: typ.Span}
		arr.AddChild(typ)
		typ = arr
		n.AddChild(&Node{Kind: KindVarargs, Span: name.Span})
	}
	n.AddChild(typ)
	return p.finishNode(n)
}

// parseField reads one or more variable declarators. A declarator with
// extra dimensions (int a[]) gets its own array type child; initializers
// are kept as Expression children.
func (p *Parser) parseField(modifiers, typ *Node, doc string) *Node {
	n := &Node{Kind: KindFieldDecl, Span: Span{Start: modifiers.Span.Start}, Doc: doc}
	n.AddChild(modifiers)
	n.AddChild(typ)
	for {
		d := p.startNode(KindVariableDeclarator)
		name, ok := p.expect(TokenIdent)
		if !ok {
			n.AddChild(p.errorNode("expected variable name"))
			p.recoverMember()
			return p.finishNode(n)
		}
		d.Token = &name
		if p.at(TokenLBracket) {
			d.AddChild(p.parseDims(typ))
		}
		if p.accept(TokenAssign) {
			d.AddChild(p.parseInitializer())
		}
		n.AddChild(p.finishNode(d))
		if !p.accept(TokenComma) {
			break
		}
	}
	if _, ok := p.expect(TokenSemicolon); !ok {
		p.recoverMember()
	}
	return p.finishNode(n)
}

// parseInitializer skips a variable initializer. A ',' at depth zero ends
// it only when it is followed by another declarator (name then '=', ',',
// ';' or '['), which keeps generic arguments like new HashMap<A, B>()
// inside the initializer.
func (p *Parser) parseInitializer() *Node {
	n := p.startNode(KindExpression)
	depth := 0
loop:
	for !p.at(TokenEOF) {
		switch p.peek().Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			depth++
		case TokenRParen, TokenRBracket:
			depth--
		case TokenRBrace:
			if depth == 0 {
				break loop
			}
			depth--
		case TokenSemicolon:
			if depth == 0 {
				break loop
			}
		case TokenComma:
			if depth == 0 && p.peekN(1).Kind == TokenIdent {
				switch p.peekN(2).Kind {
				case TokenAssign, TokenComma, TokenSemicolon, TokenLBracket:
					break loop
				}
			}
		}
		p.advance()
	}
	p.finishNode(n)
	n.Token = &Token{Kind: TokenOperator, Literal: strings.TrimSpace(p.Source(n.Span)), Span: n.Span}
	return n
}
