package java

import (
	"strings"

	"github.com/dhamidi/javamodel/java/javadoc"
)

type TypeKind string

const (
	TypeKindClass      TypeKind = "class"
	TypeKindInterface  TypeKind = "interface"
	TypeKindEnum       TypeKind = "enum"
	TypeKindAnnotation TypeKind = "annotation"
	TypeKindRecord     TypeKind = "record"
)

// IsAbstract reports whether a type of this kind can never be instantiated
// directly, regardless of its modifiers.
func (k TypeKind) IsAbstract() bool {
	return k == TypeKindInterface || k == TypeKindAnnotation
}

// ResolvedType is a type as written in a declaration together with its
// fully qualified and erased forms.
//
//	Declared   List<String>
//	Canonical  java.util.List<java.lang.String>
//	Erased     java.util.List
//
// Guessed is set when the name could only be attributed to the current
// or default package without confirmation.
type ResolvedType struct {
	Declared  string
	Canonical string
	Erased    string
	Guessed   bool
}

func (t ResolvedType) IsZero() bool { return t.Declared == "" && t.Canonical == "" }

func (t ResolvedType) IsPrimitive() bool {
	switch t.Canonical {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double":
		return true
	}
	return false
}

func (t ResolvedType) IsVoid() bool { return t.Canonical == "void" }

// suffix returns everything after the outer type name: type arguments and
// array dimensions.
func (t ResolvedType) suffix() string {
	if i := strings.IndexAny(t.Declared, "<["); i >= 0 {
		return t.Declared[i:]
	}
	return ""
}

// TypeRef names a supertype. Arguments holds the actual type arguments
// when the reference came from source.
type TypeRef struct {
	Name          string
	CanonicalName string
	Package       string
	Arguments     []ResolvedType
	// Guessed is set when the source named a type no import or index
	// confirmed and the current package was assumed.
	Guessed bool
}

func (r TypeRef) IsZero() bool { return r.CanonicalName == "" }

type TypeParameter struct {
	Name   string
	Bounds []ResolvedType
}

type AnnotationDescriptor struct {
	Name          string
	CanonicalName string
	Properties    []AnnotationProperty
}

// Property returns the value of the named property.
func (a AnnotationDescriptor) Property(name string) (AnnotationValue, bool) {
	for _, p := range a.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

type AnnotationProperty struct {
	Name  string
	Value AnnotationValue
}

// AnnotationValue is one of Scalar, Sequence or Nested.
type AnnotationValue interface {
	annotationValue()
}

// Scalar holds a string, bool, int64, float64 or nil. Enum constants and
// class literals are canonical name strings.
type Scalar struct {
	V any
}

type Sequence struct {
	Items []AnnotationValue
}

type Nested struct {
	Annotation AnnotationDescriptor
}

func (Scalar) annotationValue()   {}
func (Sequence) annotationValue() {}
func (Nested) annotationValue()   {}

type FieldDescriptor struct {
	Name          string
	Type          ResolvedType
	Modifiers     Modifiers
	Annotations   []AnnotationDescriptor
	JavaDoc       javadoc.Tags
	DeclaringType string
	ConstantValue any
}

type ParameterDescriptor struct {
	Name        string
	Type        ResolvedType
	Varargs     bool
	Annotations []AnnotationDescriptor
}

type MethodDescriptor struct {
	Name           string
	ReturnType     ResolvedType
	Parameters     []ParameterDescriptor
	Exceptions     []ResolvedType
	Modifiers      Modifiers
	TypeParameters []TypeParameter
	Annotations    []AnnotationDescriptor
	JavaDoc        javadoc.Tags
	DeclaringType  string
	// Default is the default value of an annotation type element.
	Default AnnotationValue
}

// ErasedSignature identifies a method for override and merge purposes:
// its name and erased parameter types.
func (m MethodDescriptor) ErasedSignature() string {
	parts := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		parts[i] = p.Type.Erased
	}
	return m.Name + "(" + strings.Join(parts, ",") + ")"
}

// TypeHeader is the part of a type description that is not a member list.
type TypeHeader struct {
	Name           string
	CanonicalName  string
	Package        string
	Kind           TypeKind
	Modifiers      Modifiers
	TypeParameters []TypeParameter
	Annotations    []AnnotationDescriptor
	JavaDoc        javadoc.Tags
}

// TypeDescriptor is the complete description of one type, as produced by
// a MemberSource or by Merge.
type TypeDescriptor struct {
	TypeHeader
	Fields           []FieldDescriptor
	Methods          []MethodDescriptor
	Constructors     []MethodDescriptor
	ExtendedType     *TypeRef
	ImplementedTypes []TypeRef
	// MethodAccessibleFields is filled by MethodAccessibleFields, not by
	// the sources themselves.
	MethodAccessibleFields []FieldDescriptor
}

// Ref returns a reference to the described type itself.
func (d *TypeDescriptor) Ref() TypeRef {
	return TypeRef{Name: d.Name, CanonicalName: d.CanonicalName, Package: d.Package}
}

// MemberSource enumerates the members and supertypes of one type. Parsed
// and reflected sources implement it; Merge combines them.
type MemberSource interface {
	Header() TypeHeader
	Fields() []FieldDescriptor
	Methods() []MethodDescriptor
	Constructors() []MethodDescriptor
	Supertypes() (extended *TypeRef, implemented []TypeRef)
}

// Describe collects everything src knows into one descriptor.
func Describe(src MemberSource) *TypeDescriptor {
	d := &TypeDescriptor{
		TypeHeader:   src.Header(),
		Fields:       src.Fields(),
		Methods:      src.Methods(),
		Constructors: src.Constructors(),
	}
	d.ExtendedType, d.ImplementedTypes = src.Supertypes()
	return d
}

func splitClassName(fullName string) (pkg, simpleName string) {
	lastDot := strings.LastIndex(fullName, ".")
	if lastDot == -1 {
		return "", fullName
	}
	return fullName[:lastDot], fullName[lastDot+1:]
}
