package java

import (
	"fmt"

	"github.com/dhamidi/javamodel/classfile"
)

const objectInternalName = "java/lang/Object"

// ReflectedSource describes a type from its compiled class file. Generic
// information is erased: every type carries its raw class name only.
type ReflectedSource struct {
	class     *classfile.ClassFile
	classPath *ClassPath
	inherit   bool
}

// NewReflectedSource wraps cf. When cp is not nil, Methods also reports the
// non-private methods inherited from every supertype cp can load.
func NewReflectedSource(cf *classfile.ClassFile, cp *ClassPath) *ReflectedSource {
	return &ReflectedSource{class: cf, classPath: cp, inherit: cp != nil}
}

// DeclaredOnly returns a view of s that reports declared methods only.
func (s *ReflectedSource) DeclaredOnly() *ReflectedSource {
	return &ReflectedSource{class: s.class, classPath: s.classPath}
}

func (s *ReflectedSource) Class() *classfile.ClassFile { return s.class }

func (s *ReflectedSource) Header() TypeHeader {
	cf := s.class
	h := TypeHeader{
		Name:          classfile.SimpleName(cf.ThisClass),
		CanonicalName: cf.SourceName(),
		Package:       classfile.PackageName(cf.ThisClass),
		Kind:          kindFromClassFile(cf),
		Modifiers:     modifiersFromAccessFlags(s.typeAccessFlags(), memberType),
		Annotations:   annotationsFromClassfile(cf.Attributes.Annotations()),
	}
	if h.Kind == TypeKindInterface || h.Kind == TypeKindAnnotation {
		h.Modifiers &^= ModAbstract
	}
	return h
}

// typeAccessFlags prefers the flags of the InnerClasses entry describing
// the class itself: only they record private, protected and static for
// nested types.
func (s *ReflectedSource) typeAccessFlags() classfile.AccessFlags {
	for _, ic := range s.class.Attributes.InnerClasses {
		if ic.Inner == s.class.ThisClass {
			return ic.AccessFlags
		}
	}
	return s.class.AccessFlags
}

func kindFromClassFile(cf *classfile.ClassFile) TypeKind {
	switch {
	case cf.IsAnnotation():
		return TypeKindAnnotation
	case cf.IsInterface():
		return TypeKindInterface
	case cf.IsEnum():
		return TypeKindEnum
	case cf.IsRecord():
		return TypeKindRecord
	}
	return TypeKindClass
}

func (s *ReflectedSource) Fields() []FieldDescriptor {
	var fields []FieldDescriptor
	for i := range s.class.Fields {
		f := &s.class.Fields[i]
		if f.IsSynthetic() {
			continue
		}
		ft, err := classfile.ParseFieldDescriptor(f.Descriptor)
		if err != nil {
			log.Warningf("%s: field %s: %v", s.class.SourceName(), f.Name, err)
			continue
		}
		fields = append(fields, FieldDescriptor{
			Name:          f.Name,
			Type:          erasedType(ft),
			Modifiers:     modifiersFromAccessFlags(f.AccessFlags, memberField),
			Annotations:   annotationsFromClassfile(f.Attributes.Annotations()),
			DeclaringType: s.class.SourceName(),
			ConstantValue: constantValue(f.Attributes.ConstantValue, ft),
		})
	}
	return fields
}

func erasedType(ft classfile.FieldType) ResolvedType {
	canonical := ft.SourceName()
	return ResolvedType{Declared: ft.SimpleName(), Canonical: canonical, Erased: canonical}
}

// constantValue converts a ConstantValue attribute to the Go value the
// field's source literal would produce.
func constantValue(v any, ft classfile.FieldType) any {
	switch c := v.(type) {
	case int32:
		switch ft.Base {
		case "boolean":
			return c != 0
		case "char":
			return string(rune(c))
		}
		return int64(c)
	case float32:
		return widenFloat32(c)
	}
	return v
}

func (s *ReflectedSource) Methods() []MethodDescriptor {
	declared := s.declaredMethods(s.class, false)
	if !s.inherit {
		return declared
	}
	seen := make(map[string]bool, len(declared))
	for _, m := range declared {
		seen[m.ErasedSignature()] = true
	}
	for _, super := range s.supertypeClasses() {
		for _, m := range s.declaredMethods(super, false) {
			if m.Modifiers.Has(ModPrivate) || (m.Modifiers.Has(ModStatic) && super.IsInterface()) {
				continue
			}
			sig := m.ErasedSignature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			declared = append(declared, m)
		}
	}
	return declared
}

func (s *ReflectedSource) Constructors() []MethodDescriptor {
	return s.declaredMethods(s.class, true)
}

// declaredMethods returns the methods (or, with ctors set, the
// constructors) that cf declares itself.
func (s *ReflectedSource) declaredMethods(cf *classfile.ClassFile, ctors bool) []MethodDescriptor {
	var methods []MethodDescriptor
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.IsSynthetic() || m.AccessFlags.Has(classfile.AccBridge) || m.Name == "<clinit>" {
			continue
		}
		if (m.Name == "<init>") != ctors {
			continue
		}
		desc, err := methodFromClassfile(cf, m)
		if err != nil {
			log.Warningf("%s: method %s: %v", cf.SourceName(), m.Name, err)
			continue
		}
		methods = append(methods, desc)
	}
	return methods
}

func methodFromClassfile(cf *classfile.ClassFile, m *classfile.Member) (MethodDescriptor, error) {
	mt, err := classfile.ParseMethodDescriptor(m.Descriptor)
	if err != nil {
		return MethodDescriptor{}, err
	}
	desc := MethodDescriptor{
		Name:          m.Name,
		ReturnType:    erasedType(mt.Return),
		Modifiers:     modifiersFromAccessFlags(m.AccessFlags, memberMethod),
		Annotations:   annotationsFromClassfile(m.Attributes.Annotations()),
		DeclaringType: cf.SourceName(),
	}
	if m.Name == "<init>" {
		desc.Name = classfile.SimpleName(cf.ThisClass)
		desc.ReturnType = ResolvedType{}
	}
	if cf.IsInterface() && !desc.Modifiers.Has(ModAbstract) &&
		!desc.Modifiers.Has(ModStatic) && !desc.Modifiers.Has(ModPrivate) {
		desc.Modifiers |= ModDefault
	}
	names := m.Attributes.ParameterNames
	for i, p := range mt.Params {
		param := ParameterDescriptor{Name: fmt.Sprintf("arg%d", i), Type: erasedType(p)}
		if i < len(names) && names[i] != "" {
			param.Name = names[i]
		}
		if i < len(m.Attributes.ParameterAnnotations) {
			param.Annotations = annotationsFromClassfile(m.Attributes.ParameterAnnotations[i])
		}
		desc.Parameters = append(desc.Parameters, param)
	}
	if n := len(desc.Parameters); n > 0 && m.AccessFlags.Has(classfile.AccVarargs) {
		desc.Parameters[n-1].Varargs = true
	}
	for _, internal := range m.Attributes.Exceptions {
		desc.Exceptions = append(desc.Exceptions, erasedType(classfile.FieldType{ClassName: internal}))
	}
	if m.Attributes.AnnotationDefault != nil {
		desc.Default = elementValueFromClassfile(*m.Attributes.AnnotationDefault)
	}
	return desc, nil
}

// supertypeClasses loads every proper supertype of the class, breadth
// first, superclass before interfaces. java.lang.Object and types the
// classpath cannot supply are left out.
func (s *ReflectedSource) supertypeClasses() []*classfile.ClassFile {
	var result []*classfile.ClassFile
	visited := map[string]bool{s.class.ThisClass: true}
	queue := directSupertypes(s.class)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] || name == objectInternalName {
			continue
		}
		visited[name] = true
		cf, err := s.classPath.LoadInternal(name)
		if err != nil {
			continue
		}
		result = append(result, cf)
		queue = append(queue, directSupertypes(cf)...)
	}
	return result
}

func directSupertypes(cf *classfile.ClassFile) []string {
	var names []string
	if cf.SuperClass != "" {
		names = append(names, cf.SuperClass)
	}
	return append(names, cf.Interfaces...)
}

func (s *ReflectedSource) Supertypes() (*TypeRef, []TypeRef) {
	var extended *TypeRef
	cf := s.class
	if !cf.IsInterface() && !cf.IsAnnotation() && cf.SuperClass != "" && cf.SuperClass != objectInternalName {
		ref := typeRefFromInternal(cf.SuperClass)
		extended = &ref
	}
	var implemented []TypeRef
	for _, iface := range cf.Interfaces {
		if cf.IsAnnotation() && iface == "java/lang/annotation/Annotation" {
			continue
		}
		implemented = append(implemented, typeRefFromInternal(iface))
	}
	return extended, implemented
}

func typeRefFromInternal(internal string) TypeRef {
	return TypeRef{
		Name:          classfile.SimpleName(internal),
		CanonicalName: classfile.InternalToSourceName(internal),
		Package:       classfile.PackageName(internal),
	}
}
