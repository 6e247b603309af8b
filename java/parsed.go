package java

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/dhamidi/javamodel/java/javadoc"
	"github.com/dhamidi/javamodel/java/parser"
)

// ErrNoTypeDeclaration is returned when a compilation unit does not
// declare the requested type.
var ErrNoTypeDeclaration = errors.New("no type declaration")

// ParsedSource describes one type declaration of a parsed compilation
// unit. Type strings keep their generic arguments as written.
type ParsedSource struct {
	unit      *parser.Node
	decl      *parser.Node
	resolver  *typeResolver
	path      []string
	canonical string

	typeParams []TypeParameter
	// bindings covers the type variables of this declaration and of its
	// enclosing declarations.
	bindings bindings
}

type parsedOptions struct {
	typeName string
	index    TypeIndex
}

type ParsedOption func(*parsedOptions)

// WithTypeName selects the declaration to describe by simple name, or by
// dotted path for nested types (Outer.Inner). The default is the first
// top-level type.
func WithTypeName(name string) ParsedOption {
	return func(o *parsedOptions) { o.typeName = name }
}

// WithIndex lets the resolver confirm star imports and same-package types.
func WithIndex(index TypeIndex) ParsedOption {
	return func(o *parsedOptions) { o.index = index }
}

func NewParsedSource(unit *parser.Node, opts ...ParsedOption) (*ParsedSource, error) {
	var o parsedOptions
	for _, opt := range opts {
		opt(&o)
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: empty compilation unit", ErrNoTypeDeclaration)
	}

	decls, path := findTypeDecl(unit, o.typeName)
	if decls == nil {
		if o.typeName == "" {
			return nil, ErrNoTypeDeclaration
		}
		return nil, fmt.Errorf("%w: %s", ErrNoTypeDeclaration, o.typeName)
	}

	r := newTypeResolver(unit, o.index)
	s := &ParsedSource{unit: unit, resolver: r, path: path, bindings: bindings{}}
	s.canonical = strings.Join(path, ".")
	if r.pkg != "" {
		s.canonical = r.pkg + "." + s.canonical
	}
	for _, decl := range decls {
		var own bindings
		s.typeParams, own = r.typeParameters(decl.FirstChildOfKind(parser.KindTypeParameters), s.bindings)
		s.bindings = s.bindings.with(own)
	}
	s.decl = decls[len(decls)-1]
	return s, nil
}

// findTypeDecl returns the chain of declarations from the top-level type
// down to the one named by path, and the simple names along it.
func findTypeDecl(unit *parser.Node, name string) ([]*parser.Node, []string) {
	if name == "" {
		for _, child := range unit.Children {
			if child.Kind.IsTypeDecl() && child.TokenLiteral() != "" {
				return []*parser.Node{child}, []string{child.TokenLiteral()}
			}
		}
		return nil, nil
	}
	want := strings.Split(name, ".")
	var chain []*parser.Node
	scope := unit.Children
	for _, segment := range want {
		found := lo.FindOrElse(scope, nil, func(n *parser.Node) bool {
			return n.Kind.IsTypeDecl() && n.TokenLiteral() == segment
		})
		if found == nil {
			return nil, nil
		}
		chain = append(chain, found)
		scope = childrenOf(found.FirstChildOfKind(parser.KindClassBody))
	}
	return chain, want
}

// Nested returns the source for a type declared directly inside s.
func (s *ParsedSource) Nested(name string) (*ParsedSource, error) {
	path := strings.Join(s.path, ".") + "." + name
	return NewParsedSource(s.unit, WithTypeName(path), WithIndex(s.resolver.index))
}

// NestedNames lists the simple names of the types declared inside s.
func (s *ParsedSource) NestedNames() []string {
	var names []string
	for _, member := range childrenOf(s.body()) {
		if member.Kind.IsTypeDecl() && member.TokenLiteral() != "" {
			names = append(names, member.TokenLiteral())
		}
	}
	return names
}

func (s *ParsedSource) Unit() *parser.Node { return s.unit }

func (s *ParsedSource) CanonicalName() string { return s.canonical }

// Specialize returns a view of s in which the type parameters stand for
// args, as seen from a subtype that extends S<args>. Missing arguments
// leave the parameter unbound.
func (s *ParsedSource) Specialize(args []ResolvedType) *ParsedSource {
	if len(args) == 0 {
		return s
	}
	out := *s
	more := bindings{}
	for i, tp := range s.typeParams {
		if i < len(args) && !args[i].IsZero() {
			more[tp.Name] = args[i]
		}
	}
	out.bindings = s.bindings.with(more)
	return &out
}

func (s *ParsedSource) body() *parser.Node {
	return s.decl.FirstChildOfKind(parser.KindClassBody)
}

func (s *ParsedSource) kind() TypeKind {
	switch s.decl.Kind {
	case parser.KindInterfaceDecl:
		return TypeKindInterface
	case parser.KindEnumDecl:
		return TypeKindEnum
	case parser.KindRecordDecl:
		return TypeKindRecord
	case parser.KindAnnotationDecl:
		return TypeKindAnnotation
	}
	return TypeKindClass
}

func (s *ParsedSource) Header() TypeHeader {
	mods := s.decl.FirstChildOfKind(parser.KindModifiers)
	return TypeHeader{
		Name:           s.decl.TokenLiteral(),
		CanonicalName:  s.canonical,
		Package:        s.resolver.pkg,
		Kind:           s.kind(),
		Modifiers:      modifiersFromNode(mods),
		TypeParameters: s.typeParams,
		Annotations:    annotationsFromModifiers(mods, s.resolver),
		JavaDoc:        docTags(s.decl.Doc),
	}
}

func modifiersFromNode(mods *parser.Node) Modifiers {
	var m Modifiers
	for _, child := range mods.ChildrenOfKind(parser.KindModifier) {
		m |= ParseModifier(child.TokenLiteral())
	}
	return m
}

func docTags(doc string) javadoc.Tags {
	if doc == "" {
		return nil
	}
	return javadoc.Parse(doc)
}

func (s *ParsedSource) Fields() []FieldDescriptor {
	var fields []FieldDescriptor
	for _, member := range childrenOf(s.body()) {
		switch member.Kind {
		case parser.KindEnumConstant:
			fields = append(fields, FieldDescriptor{
				Name:          member.TokenLiteral(),
				Type:          s.selfType(),
				Annotations:   annotationsFromModifiers(member.FirstChildOfKind(parser.KindModifiers), s.resolver),
				JavaDoc:       docTags(member.Doc),
				DeclaringType: s.canonical,
			})
		case parser.KindFieldDecl:
			fields = append(fields, s.fieldsFromDecl(member)...)
		}
	}
	for _, component := range s.decl.FirstChildOfKind(parser.KindRecordComponents).ChildrenOfKind(parser.KindParameter) {
		p := s.parameter(component, s.bindings)
		fields = append(fields, FieldDescriptor{
			Name:          p.Name,
			Type:          p.Type,
			Annotations:   p.Annotations,
			DeclaringType: s.canonical,
		})
	}
	return fields
}

func (s *ParsedSource) selfType() ResolvedType {
	return ResolvedType{
		Declared:  strings.Join(s.path, "."),
		Canonical: s.canonical,
		Erased:    s.canonical,
	}
}

func (s *ParsedSource) fieldsFromDecl(decl *parser.Node) []FieldDescriptor {
	mods := decl.FirstChildOfKind(parser.KindModifiers)
	modifiers := modifiersFromNode(mods)
	annotations := annotationsFromModifiers(mods, s.resolver)
	typ := decl.TypeChild()

	var fields []FieldDescriptor
	for _, d := range decl.ChildrenOfKind(parser.KindVariableDeclarator) {
		declType := typ
		if own := d.TypeChild(); own != nil {
			declType = own
		}
		f := FieldDescriptor{
			Name:          d.TokenLiteral(),
			Type:          s.resolver.resolve(declType, s.bindings),
			Modifiers:     modifiers,
			Annotations:   annotations,
			JavaDoc:       docTags(decl.Doc),
			DeclaringType: s.canonical,
		}
		if modifiers.Has(ModFinal) {
			f.ConstantValue = constantFromInitializer(d.FirstChildOfKind(parser.KindExpression).TokenLiteral(), f.Type)
		}
		fields = append(fields, f)
	}
	return fields
}

// constantFromInitializer returns the value of an initializer that is a
// single, optionally negated, literal of a primitive or String field.
// Anything else yields nil.
func constantFromInitializer(src string, t ResolvedType) any {
	if src == "" || !(t.IsPrimitive() || t.Canonical == "java.lang.String") {
		return nil
	}
	lexer := parser.NewLexer([]byte(src), "")
	tok := lexer.NextToken()
	negative := tok.Kind == parser.TokenMinus
	if negative {
		tok = lexer.NextToken()
	}
	if lexer.NextToken().Kind != parser.TokenEOF {
		return nil
	}
	switch tok.Kind {
	case parser.TokenIntLiteral, parser.TokenFloatLiteral:
	case parser.TokenStringLiteral, parser.TokenTextBlock, parser.TokenCharLiteral, parser.TokenTrue, parser.TokenFalse:
		if negative {
			return nil
		}
	default:
		return nil
	}
	v := literalValue(&tok)
	if negative {
		switch n := v.(type) {
		case int64:
			return -n
		case float64:
			return -n
		}
	}
	return v
}

func (s *ParsedSource) Methods() []MethodDescriptor {
	var methods []MethodDescriptor
	for _, member := range s.body().ChildrenOfKind(parser.KindMethodDecl) {
		methods = append(methods, s.method(member))
	}
	return methods
}

func (s *ParsedSource) Constructors() []MethodDescriptor {
	var ctors []MethodDescriptor
	for _, member := range s.body().ChildrenOfKind(parser.KindConstructorDecl) {
		ctors = append(ctors, s.method(member))
	}
	return ctors
}

// method describes a MethodDecl or ConstructorDecl. Constructors have no
// return type.
func (s *ParsedSource) method(node *parser.Node) MethodDescriptor {
	mods := node.FirstChildOfKind(parser.KindModifiers)
	typeParams, own := s.resolver.typeParameters(node.FirstChildOfKind(parser.KindTypeParameters), s.bindings)
	scope := s.bindings.with(own)

	m := MethodDescriptor{
		Name:           node.TokenLiteral(),
		Modifiers:      modifiersFromNode(mods),
		TypeParameters: typeParams,
		Annotations:    annotationsFromModifiers(mods, s.resolver),
		JavaDoc:        docTags(node.Doc),
		DeclaringType:  s.canonical,
	}
	if node.Kind == parser.KindMethodDecl {
		m.ReturnType = s.resolver.resolve(node.TypeChild(), scope)
	}
	for _, p := range node.FirstChildOfKind(parser.KindParameters).ChildrenOfKind(parser.KindParameter) {
		m.Parameters = append(m.Parameters, s.parameter(p, scope))
	}
	for _, t := range childrenOf(node.FirstChildOfKind(parser.KindThrowsList)) {
		m.Exceptions = append(m.Exceptions, s.resolver.resolve(t, scope))
	}
	if def := node.FirstChildOfKind(parser.KindDefaultValue); def != nil && len(def.Children) > 0 {
		m.Default = annotationValueFromNode(def.Children[0], s.resolver)
	}
	return m
}

func (s *ParsedSource) parameter(node *parser.Node, scope bindings) ParameterDescriptor {
	return ParameterDescriptor{
		Name:        node.TokenLiteral(),
		Type:        s.resolver.resolve(node.TypeChild(), scope),
		Varargs:     node.FirstChildOfKind(parser.KindVarargs) != nil,
		Annotations: annotationsFromModifiers(node.FirstChildOfKind(parser.KindModifiers), s.resolver),
	}
}

// Supertypes reports the written extends and implements clauses. The
// extends list of an interface counts as implemented types.
func (s *ParsedSource) Supertypes() (*TypeRef, []TypeRef) {
	var extended *TypeRef
	var implemented []TypeRef
	for _, t := range childrenOf(s.decl.FirstChildOfKind(parser.KindExtendsClause)) {
		ref := s.typeRef(t)
		if ref.IsZero() {
			continue
		}
		if s.kind() == TypeKindInterface || extended != nil {
			implemented = append(implemented, ref)
			continue
		}
		extended = &ref
	}
	for _, t := range childrenOf(s.decl.FirstChildOfKind(parser.KindImplementsClause)) {
		if ref := s.typeRef(t); !ref.IsZero() {
			implemented = append(implemented, ref)
		}
	}
	return extended, implemented
}

func (s *ParsedSource) typeRef(node *parser.Node) TypeRef {
	if node == nil || node.Kind != parser.KindClassType {
		return TypeRef{}
	}
	segments := node.ChildrenOfKind(parser.KindTypeSegment)
	if len(segments) == 0 {
		return TypeRef{}
	}
	t := s.resolver.resolve(node, s.bindings)
	_, simple := splitClassName(t.Erased)
	ref := TypeRef{
		Name:          simple,
		CanonicalName: t.Erased,
		Package:       packageOf(t.Erased),
		Guessed:       t.Guessed,
	}
	args := segments[len(segments)-1].FirstChildOfKind(parser.KindTypeArguments)
	for _, arg := range childrenOf(args) {
		ref.Arguments = append(ref.Arguments, s.resolver.resolve(arg, s.bindings))
	}
	return ref
}

// packageOf takes the leading lower-case segments of a canonical name as
// its package, following Java naming conventions.
func packageOf(canonical string) string {
	var pkg []string
	for _, segment := range strings.Split(canonical, ".") {
		r := []rune(segment)
		if len(r) == 0 || !unicode.IsLower(r[0]) {
			break
		}
		pkg = append(pkg, segment)
	}
	if len(pkg) == len(strings.Split(canonical, ".")) {
		pkg = pkg[:len(pkg)-1]
	}
	return strings.Join(pkg, ".")
}

func childrenOf(n *parser.Node) []*parser.Node {
	if n == nil {
		return nil
	}
	return n.Children
}
