package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota

	KindCompilationUnit
	KindPackageDecl
	KindImportDecl
	KindQualifiedName

	KindClassDecl
	KindInterfaceDecl
	KindEnumDecl
	KindRecordDecl
	KindAnnotationDecl

	KindClassBody
	KindFieldDecl
	KindVariableDeclarator
	KindMethodDecl
	KindConstructorDecl
	KindEnumConstant
	KindRecordComponents
	KindInitializer

	KindModifiers
	KindModifier
	KindAnnotation
	KindAnnotationElement
	KindTypeParameters
	KindTypeParameter
	KindExtendsClause
	KindImplementsClause
	KindPermitsClause

	KindParameters
	KindParameter
	KindVarargs
	KindThrowsList
	KindDefaultValue
	KindBody

	// Types
	KindPrimitiveType
	KindClassType
	KindTypeSegment
	KindArrayType
	KindTypeArguments
	KindWildcard
	KindWildcardBound

	// Annotation element values
	KindLiteral
	KindName
	KindClassLiteral
	KindArrayInit
	KindExpression
)

var nodeKindNames = map[NodeKind]string{
	KindError:              "Error",
	KindCompilationUnit:    "CompilationUnit",
	KindPackageDecl:        "PackageDecl",
	KindImportDecl:         "ImportDecl",
	KindQualifiedName:      "QualifiedName",
	KindClassDecl:          "ClassDecl",
	KindInterfaceDecl:      "InterfaceDecl",
	KindEnumDecl:           "EnumDecl",
	KindRecordDecl:         "RecordDecl",
	KindAnnotationDecl:     "AnnotationDecl",
	KindClassBody:          "ClassBody",
	KindFieldDecl:          "FieldDecl",
	KindVariableDeclarator: "VariableDeclarator",
	KindMethodDecl:         "MethodDecl",
	KindConstructorDecl:    "ConstructorDecl",
	KindEnumConstant:       "EnumConstant",
	KindRecordComponents:   "RecordComponents",
	KindInitializer:        "Initializer",
	KindModifiers:          "Modifiers",
	KindModifier:           "Modifier",
	KindAnnotation:         "Annotation",
	KindAnnotationElement:  "AnnotationElement",
	KindTypeParameters:     "TypeParameters",
	KindTypeParameter:      "TypeParameter",
	KindExtendsClause:      "ExtendsClause",
	KindImplementsClause:   "ImplementsClause",
	KindPermitsClause:      "PermitsClause",
	KindParameters:         "Parameters",
	KindParameter:          "Parameter",
	KindVarargs:            "Varargs",
	KindThrowsList:         "ThrowsList",
	KindDefaultValue:       "DefaultValue",
	KindBody:               "Body",
	KindPrimitiveType:      "PrimitiveType",
	KindClassType:          "ClassType",
	KindTypeSegment:        "TypeSegment",
	KindArrayType:          "ArrayType",
	KindTypeArguments:      "TypeArguments",
	KindWildcard:           "Wildcard",
	KindWildcardBound:      "WildcardBound",
	KindLiteral:            "Literal",
	KindName:               "Name",
	KindClassLiteral:       "ClassLiteral",
	KindArrayInit:          "ArrayInit",
	KindExpression:         "Expression",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTypeDecl reports whether k declares a class, interface, enum, record
// or annotation type.
func (k NodeKind) IsTypeDecl() bool {
	switch k {
	case KindClassDecl, KindInterfaceDecl, KindEnumDecl, KindRecordDecl, KindAnnotationDecl:
		return true
	}
	return false
}

type Error struct {
	Message string
	Got     *Token
}

// Node is a syntax tree node. Declarations carry the doc comment that
// precedes their first token in Doc.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Doc      string
	Error    *Error
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	if n == nil {
		return nil
	}
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// TypeChild returns the first child that is a type node.
func (n *Node) TypeChild() *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		switch child.Kind {
		case KindPrimitiveType, KindClassType, KindArrayType:
			return child
		}
	}
	return nil
}

func (n *Node) TokenLiteral() string {
	if n != nil && n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Walk visits n and its descendants depth first, stopping at subtrees for
// which fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Kind.String())
	if n.Token != nil {
		sb.WriteString(" ")
		sb.WriteString(n.Token.Literal)
	}
	if n.Error != nil {
		sb.WriteString(" ERROR: ")
		sb.WriteString(n.Error.Message)
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		child.write(sb, indent+1)
	}
}
