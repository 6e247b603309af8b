package java

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

// ErrNothingToMerge is returned by Merge when both sources are nil.
var ErrNothingToMerge = errors.New("neither a parsed nor a reflected source")

// Merge combines what a parse tree and a class file say about the same
// type. Either side may be nil, in which case the other passes through
// unchanged.
//
// Parsed type strings win since they keep generic arguments; reflection
// contributes modifiers, annotation values and the members the source
// does not declare, which keep their erased types.
func Merge(parsed, reflected MemberSource) (*TypeDescriptor, error) {
	switch {
	case isNilSource(parsed) && isNilSource(reflected):
		return nil, ErrNothingToMerge
	case isNilSource(reflected):
		return Describe(parsed), nil
	case isNilSource(parsed):
		return Describe(reflected), nil
	}

	p, r := Describe(parsed), Describe(reflected)
	d := &TypeDescriptor{TypeHeader: mergeHeader(p.TypeHeader, r.TypeHeader)}

	d.Fields = mergeFields(p.Fields, r.Fields)
	d.Methods = mergeMethods(p.Methods, r.Methods)
	d.Constructors = mergeMethods(p.Constructors, r.Constructors)

	switch {
	case p.ExtendedType == nil:
		d.ExtendedType = r.ExtendedType
	case r.ExtendedType == nil:
		d.ExtendedType = p.ExtendedType
	default:
		ref := mergeTypeRef(*p.ExtendedType, *r.ExtendedType)
		d.ExtendedType = &ref
	}
	implemented := make([]TypeRef, 0, len(p.ImplementedTypes)+len(r.ImplementedTypes))
	for _, ref := range p.ImplementedTypes {
		implemented = append(implemented, mergeTypeRef(ref, r.ImplementedTypes...))
	}
	d.ImplementedTypes = lo.UniqBy(append(implemented, r.ImplementedTypes...),
		func(ref TypeRef) string { return ref.CanonicalName })
	if len(d.ImplementedTypes) == 0 {
		d.ImplementedTypes = nil
	}
	return d, nil
}

// mergeTypeRef replaces a guessed parsed reference with the reflected one
// of the same simple name. The parsed type arguments are kept.
func mergeTypeRef(p TypeRef, reflected ...TypeRef) TypeRef {
	if !p.Guessed {
		return p
	}
	for _, r := range reflected {
		if r.Name == p.Name {
			return TypeRef{Name: r.Name, CanonicalName: r.CanonicalName, Package: r.Package, Arguments: p.Arguments}
		}
	}
	return p
}

func isNilSource(src MemberSource) bool {
	switch s := src.(type) {
	case nil:
		return true
	case *ParsedSource:
		return s == nil
	case *ReflectedSource:
		return s == nil
	}
	return false
}

func mergeHeader(p, r TypeHeader) TypeHeader {
	h := p
	if h.CanonicalName == "" {
		h.CanonicalName, h.Package = r.CanonicalName, r.Package
	}
	if h.Kind == "" {
		h.Kind = r.Kind
	}
	h.Modifiers |= r.Modifiers
	h.Annotations = mergeAnnotations(p.Annotations, r.Annotations)
	return h
}

func mergeFields(parsed, reflected []FieldDescriptor) []FieldDescriptor {
	byName := lo.KeyBy(reflected, func(f FieldDescriptor) string { return f.Name })
	used := make(map[string]bool, len(reflected))

	var out []FieldDescriptor
	for _, pf := range parsed {
		rf, ok := byName[pf.Name]
		if !ok || used[pf.Name] {
			out = append(out, pf)
			continue
		}
		used[pf.Name] = true
		f := pf
		f.Type = mergeType(pf.Type, rf.Type)
		f.Modifiers |= rf.Modifiers
		f.Annotations = mergeAnnotations(pf.Annotations, rf.Annotations)
		if f.ConstantValue == nil {
			f.ConstantValue = rf.ConstantValue
		}
		out = append(out, f)
	}
	for _, rf := range reflected {
		if !used[rf.Name] {
			out = append(out, rf)
		}
	}
	return out
}

// mergeMethods correlates methods by erased signature, then by signature
// with guessed parameter types compared by simple name, and finally by
// name and arity. The last two only count when exactly one unclaimed
// reflected method fits.
func mergeMethods(parsed, reflected []MethodDescriptor) []MethodDescriptor {
	used := make([]bool, len(reflected))
	bySignature := make(map[string]int, len(reflected))
	for i, rm := range reflected {
		if _, dup := bySignature[rm.ErasedSignature()]; !dup {
			bySignature[rm.ErasedSignature()] = i
		}
	}

	match := func(pm MethodDescriptor) int {
		if i, ok := bySignature[pm.ErasedSignature()]; ok && !used[i] {
			return i
		}
		if i := unique(reflected, used, func(rm MethodDescriptor) bool { return sameGuessedSignature(pm, rm) }); i >= 0 {
			return i
		}
		return unique(reflected, used, func(rm MethodDescriptor) bool {
			return rm.Name == pm.Name && len(rm.Parameters) == len(pm.Parameters)
		})
	}

	var out []MethodDescriptor
	for _, pm := range parsed {
		i := match(pm)
		if i < 0 {
			out = append(out, pm)
			continue
		}
		used[i] = true
		out = append(out, mergeMethod(pm, reflected[i]))
	}
	for i, rm := range reflected {
		if !used[i] {
			out = append(out, rm)
		}
	}
	return out
}

// unique returns the index of the only unclaimed method that fits, or -1.
func unique(methods []MethodDescriptor, used []bool, fits func(MethodDescriptor) bool) int {
	found := -1
	for i, m := range methods {
		if used[i] || !fits(m) {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = i
	}
	return found
}

// sameGuessedSignature compares erased parameter types, except that a
// guessed parsed type only has to agree on its simple name.
func sameGuessedSignature(pm, rm MethodDescriptor) bool {
	if pm.Name != rm.Name || len(pm.Parameters) != len(rm.Parameters) {
		return false
	}
	for i, pp := range pm.Parameters {
		pt, rt := pp.Type, rm.Parameters[i].Type
		if pt.Erased == rt.Erased {
			continue
		}
		if !pt.Guessed {
			return false
		}
		_, ps := splitClassName(pt.Erased)
		_, rs := splitClassName(rt.Erased)
		if ps != rs {
			return false
		}
	}
	return true
}

func mergeMethod(pm, rm MethodDescriptor) MethodDescriptor {
	m := pm
	if !pm.ReturnType.IsZero() || !rm.ReturnType.IsZero() {
		m.ReturnType = mergeType(pm.ReturnType, rm.ReturnType)
	}
	m.Parameters = make([]ParameterDescriptor, len(pm.Parameters))
	for i, pp := range pm.Parameters {
		rp := rm.Parameters[i]
		pp.Type = mergeType(pp.Type, rp.Type)
		pp.Varargs = pp.Varargs || rp.Varargs
		pp.Annotations = mergeAnnotations(pp.Annotations, rp.Annotations)
		m.Parameters[i] = pp
	}
	if len(m.Parameters) == 0 {
		m.Parameters = nil
	}
	if len(m.Exceptions) == 0 {
		m.Exceptions = rm.Exceptions
	}
	m.Modifiers |= rm.Modifiers
	m.Annotations = mergeAnnotations(pm.Annotations, rm.Annotations)
	if m.Default == nil {
		m.Default = rm.Default
	}
	return m
}

// mergeType keeps the parsed rendering. When the parsed name was only a
// guess and the class file disagrees, the class file's outer type replaces
// the guess and the parsed arguments and dimensions are kept.
func mergeType(p, r ResolvedType) ResolvedType {
	if p.IsZero() {
		return r
	}
	if !p.Guessed || r.IsZero() || p.Erased == r.Erased {
		return p
	}
	outer := strings.TrimRight(r.Erased, "[]")
	return ResolvedType{
		Declared:  p.Declared,
		Canonical: outer + canonicalSuffix(p.Canonical),
		Erased:    r.Erased,
	}
}

func canonicalSuffix(canonical string) string {
	if i := strings.IndexAny(canonical, "<["); i >= 0 {
		return canonical[i:]
	}
	return ""
}

// mergeAnnotations unites two annotation lists. Annotations match by
// canonical name, or by simple name when the parsed name was guessed
// wrongly. For a match the reflected values win per property and
// parsed-only properties follow them.
func mergeAnnotations(parsed, reflected []AnnotationDescriptor) []AnnotationDescriptor {
	used := make([]bool, len(reflected))
	find := func(pa AnnotationDescriptor) int {
		for i, ra := range reflected {
			if !used[i] && ra.CanonicalName == pa.CanonicalName {
				return i
			}
		}
		for i, ra := range reflected {
			if !used[i] && ra.Name == pa.Name {
				return i
			}
		}
		return -1
	}

	var out []AnnotationDescriptor
	for _, pa := range parsed {
		i := find(pa)
		if i < 0 {
			out = append(out, pa)
			continue
		}
		used[i] = true
		ra := reflected[i]
		merged := AnnotationDescriptor{
			Name:          pa.Name,
			CanonicalName: ra.CanonicalName,
			Properties:    append([]AnnotationProperty{}, ra.Properties...),
		}
		for _, prop := range pa.Properties {
			if _, ok := ra.Property(prop.Name); !ok {
				merged.Properties = append(merged.Properties, prop)
			}
		}
		if len(merged.Properties) == 0 {
			merged.Properties = nil
		}
		out = append(out, merged)
	}
	for i, ra := range reflected {
		if !used[i] {
			out = append(out, ra)
		}
	}
	return out
}
