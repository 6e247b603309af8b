package java

import (
	"unicode"
	"unicode/utf8"
)

// SourceLookup finds the parse tree of a type by canonical name, usually
// among the sibling files of a package folder.
type SourceLookup interface {
	LookupSource(canonicalName string) (*ParsedSource, bool)
}

// Hierarchy walks supertypes. Sources are preferred over class files so
// that inherited generic members can be specialised with the type
// arguments the subtype supplies.
type Hierarchy struct {
	Sources   SourceLookup
	ClassPath *ClassPath
}

// Supertypes returns a source for every proper supertype of desc that can
// be found, nearest first. java.lang.Object is left out.
func (h *Hierarchy) Supertypes(desc *TypeDescriptor) []MemberSource {
	var result []MemberSource
	visited := map[string]bool{desc.CanonicalName: true}

	var visit func(extended *TypeRef, implemented []TypeRef)
	visit = func(extended *TypeRef, implemented []TypeRef) {
		refs := implemented
		if extended != nil {
			refs = append([]TypeRef{*extended}, implemented...)
		}
		var found []MemberSource
		for _, ref := range refs {
			if visited[ref.CanonicalName] || ref.CanonicalName == "java.lang.Object" {
				continue
			}
			visited[ref.CanonicalName] = true
			if src := h.lookup(ref); src != nil {
				result = append(result, src)
				found = append(found, src)
			}
		}
		for _, src := range found {
			visit(src.Supertypes())
		}
	}
	visit(desc.ExtendedType, desc.ImplementedTypes)
	return result
}

func (h *Hierarchy) lookup(ref TypeRef) MemberSource {
	if h == nil {
		return nil
	}
	if h.Sources != nil {
		if src, ok := h.Sources.LookupSource(ref.CanonicalName); ok {
			return src.Specialize(ref.Arguments)
		}
	}
	if h.ClassPath != nil {
		if cf, err := h.ClassPath.Load(ref.CanonicalName); err == nil {
			return NewReflectedSource(cf, h.ClassPath).DeclaredOnly()
		}
	}
	return nil
}

// MethodAccessibleFields returns the non-static fields of desc and its
// supertypes that have a public getter (getX, or isX for booleans) or a
// public setter (setX) anywhere in the hierarchy. The first field with a
// given name wins.
func MethodAccessibleFields(desc *TypeDescriptor, supers []MemberSource) []FieldDescriptor {
	accessors := accessorSet{}
	addMethods := func(methods []MethodDescriptor, kind TypeKind) {
		for _, m := range methods {
			if m.Modifiers.Has(ModPublic) || kind.IsAbstract() {
				accessors[accessorKey{m.Name, len(m.Parameters)}] = true
			}
		}
	}
	addMethods(desc.Methods, desc.Kind)
	fields := append([]FieldDescriptor{}, desc.Fields...)
	for _, src := range supers {
		addMethods(src.Methods(), src.Header().Kind)
		fields = append(fields, src.Fields()...)
	}

	var result []FieldDescriptor
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f.Name] || f.Modifiers.Has(ModStatic) {
			continue
		}
		if !hasAccessor(accessors, f) {
			continue
		}
		seen[f.Name] = true
		result = append(result, f)
	}
	return result
}

// accessorKey is a method name with its parameter count.
type accessorKey struct {
	name  string
	arity int
}

type accessorSet map[accessorKey]bool

func hasAccessor(accessors accessorSet, f FieldDescriptor) bool {
	property := capitalize(f.Name)
	if accessors[accessorKey{"get" + property, 0}] || accessors[accessorKey{"set" + property, 1}] {
		return true
	}
	isBoolean := f.Type.Erased == "boolean" || f.Type.Erased == "java.lang.Boolean"
	return isBoolean && accessors[accessorKey{"is" + property, 0}]
}

func capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
