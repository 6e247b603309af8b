// Package classfile decodes the parts of a JVM class file that describe a
// type's shape: its supertypes, fields, methods and their annotations.
// Code attributes are skipped.
package classfile

const Magic = 0xCAFEBABE

type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

// Has reports whether all bits of mask are set.
func (f AccessFlags) Has(mask AccessFlags) bool { return f&mask == mask }

// ClassFile holds a decoded class. Class names are kept in internal form
// (java/util/Map$Entry); use InternalToSourceName for the dotted form.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         ConstantPool
	AccessFlags  AccessFlags
	ThisClass    string
	SuperClass   string
	Interfaces   []string
	Fields       []Member
	Methods      []Member
	Attributes   Attributes
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.Has(AccInterface) && !cf.AccessFlags.Has(AccAnnotation)
}

func (cf *ClassFile) IsAnnotation() bool { return cf.AccessFlags.Has(AccAnnotation) }

func (cf *ClassFile) IsEnum() bool { return cf.AccessFlags.Has(AccEnum) }

func (cf *ClassFile) IsRecord() bool { return cf.Attributes.Record }

// SourceName returns the dotted, canonical name of the class.
func (cf *ClassFile) SourceName() string {
	return InternalToSourceName(cf.ThisClass)
}

// Method returns the first method with the given name and, when descriptor
// is not empty, the given descriptor.
func (cf *ClassFile) Method(name, descriptor string) *Member {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.Name == name && (descriptor == "" || m.Descriptor == descriptor) {
			return m
		}
	}
	return nil
}

func (cf *ClassFile) Field(name string) *Member {
	for i := range cf.Fields {
		if cf.Fields[i].Name == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

// Member is a field_info or method_info structure with its name and
// descriptor already resolved from the constant pool.
type Member struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  Attributes
}

func (m *Member) IsSynthetic() bool {
	return m.AccessFlags.Has(AccSynthetic) || m.Attributes.Synthetic
}

// Attributes collects the attributes this package understands. Anything
// else is recorded by name in Skipped.
type Attributes struct {
	Signature            string
	SourceFile           string
	ConstantValue        any
	Exceptions           []string
	Deprecated           bool
	Synthetic            bool
	Record               bool
	VisibleAnnotations   []Annotation
	InvisibleAnnotations []Annotation
	ParameterAnnotations [][]Annotation
	ParameterNames       []string
	AnnotationDefault    *ElementValue
	InnerClasses         []InnerClass
	Skipped              []string
}

// Annotations returns visible and invisible annotations in that order.
func (a *Attributes) Annotations() []Annotation {
	out := make([]Annotation, 0, len(a.VisibleAnnotations)+len(a.InvisibleAnnotations))
	out = append(out, a.VisibleAnnotations...)
	return append(out, a.InvisibleAnnotations...)
}

type InnerClass struct {
	Inner       string
	Outer       string
	SimpleName  string
	AccessFlags AccessFlags
}

// Annotation is one annotation usage. Type is a field descriptor such as
// Ljava/lang/Deprecated;.
type Annotation struct {
	Type     string
	Elements []ElementPair
}

// TypeName returns the dotted name of the annotation type.
func (a *Annotation) TypeName() string {
	return DescriptorToSourceName(a.Type)
}

type ElementPair struct {
	Name  string
	Value ElementValue
}

// ElementValue is the element_value union. Tag selects which field is
// meaningful:
//
//	B C D F I J S Z s   Const (int32, int64, float32, float64 or string)
//	e                   EnumType, EnumConst
//	c                   Class (a return descriptor)
//	@                   Annotation
//	[                   Array
type ElementValue struct {
	Tag        byte
	Const      any
	EnumType   string
	EnumConst  string
	Class      string
	Annotation *Annotation
	Array      []ElementValue
}
