package inputreader

import (
	"errors"
	"fmt"
	"text/template"

	"github.com/spf13/cast"

	"github.com/dhamidi/javamodel/java"
	"github.com/dhamidi/javamodel/model"
)

const objectName = "java.lang.Object"

// ErrUnknownType is returned by template methods for types that are
// neither in the package folder, on the class path, nor the model itself.
var ErrUnknownType = errors.New("unknown type")

// TemplateMethod is a function a template can call: it returns one value,
// or a value and an error.
type TemplateMethod any

// TemplateMethods maps names to template methods in registration order.
type TemplateMethods struct {
	names   []string
	methods map[string]TemplateMethod
}

func NewTemplateMethods() *TemplateMethods {
	return &TemplateMethods{methods: make(map[string]TemplateMethod)}
}

// Register adds or replaces the method called name.
func (t *TemplateMethods) Register(name string, method TemplateMethod) *TemplateMethods {
	if _, exists := t.methods[name]; !exists {
		t.names = append(t.names, name)
	}
	t.methods[name] = method
	return t
}

func (t *TemplateMethods) Get(name string) (TemplateMethod, bool) {
	if t == nil {
		return nil, false
	}
	m, ok := t.methods[name]
	return m, ok
}

func (t *TemplateMethods) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

func (t *TemplateMethods) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

func (t *TemplateMethods) FuncMap() template.FuncMap {
	funcs := make(template.FuncMap, t.Len())
	for _, name := range t.Names() {
		funcs[name] = t.methods[name]
	}
	return funcs
}

// DefaultTemplateMethods registers isAbstract and isSubtypeOf over graph.
func DefaultTemplateMethods(graph TypeLookup) *TemplateMethods {
	return NewTemplateMethods().
		Register("isAbstract", func(ref any) (bool, error) {
			return IsAbstract(graph, ref)
		}).
		Register("isSubtypeOf", func(ref, candidate any) (bool, error) {
			return IsSubtypeOf(graph, ref, candidate)
		})
}

// TypeInfo is what the template methods need to know about a type.
type TypeInfo struct {
	Kind       java.TypeKind
	Modifiers  java.Modifiers
	Supertypes []string
}

// TypeLookup finds types by canonical name.
type TypeLookup interface {
	LookupType(canonicalName string) (TypeInfo, bool)
}

func typeInfo(h java.TypeHeader, extended *java.TypeRef, implemented []java.TypeRef) TypeInfo {
	info := TypeInfo{Kind: h.Kind, Modifiers: h.Modifiers}
	if extended != nil {
		info.Supertypes = append(info.Supertypes, extended.CanonicalName)
	}
	for _, ref := range implemented {
		info.Supertypes = append(info.Supertypes, ref.CanonicalName)
	}
	return info
}

// typeGraph describes a type from its source in the package folder and
// its class on the class path, merged so the class file corrects
// supertypes the source could only guess. The type the model was built
// from is the last resort.
type typeGraph struct {
	self      *java.TypeDescriptor
	sources   *SourceIndex
	classPath *java.ClassPath
}

func (g *typeGraph) LookupType(name string) (TypeInfo, bool) {
	var (
		parsed    *java.ParsedSource
		reflected *java.ReflectedSource
	)
	if src, ok := g.sources.LookupSource(name); ok {
		parsed = src
	}
	if cf, err := g.classPath.Load(name); err == nil {
		reflected = java.NewReflectedSource(cf, nil)
	}
	if parsed != nil || reflected != nil {
		if desc, err := java.Merge(parsed, reflected); err == nil {
			return typeInfo(desc.TypeHeader, desc.ExtendedType, desc.ImplementedTypes), true
		}
	}
	if g.self != nil && g.self.CanonicalName == name {
		return typeInfo(g.self.TypeHeader, g.self.ExtendedType, g.self.ImplementedTypes), true
	}
	return TypeInfo{}, false
}

// IsAbstract reports whether ref is an interface, an annotation type or an
// abstract class.
func IsAbstract(types TypeLookup, ref any) (bool, error) {
	name, err := typeName(ref)
	if err != nil {
		return false, err
	}
	info, ok := types.LookupType(name)
	if !ok {
		return false, fmt.Errorf("isAbstract: %w: %s", ErrUnknownType, name)
	}
	return info.Kind.IsAbstract() || info.Modifiers.Has(java.ModAbstract), nil
}

// IsSubtypeOf reports whether ref is candidate or extends or implements it,
// directly or through its supertypes. Supertypes that cannot be looked up
// end the walk along their branch.
func IsSubtypeOf(types TypeLookup, ref, candidate any) (bool, error) {
	name, err := typeName(ref)
	if err != nil {
		return false, err
	}
	target, err := typeName(candidate)
	if err != nil {
		return false, err
	}
	info, ok := types.LookupType(name)
	if !ok {
		return false, fmt.Errorf("isSubtypeOf: %w: %s", ErrUnknownType, name)
	}
	if name == target || target == objectName {
		return true, nil
	}

	visited := map[string]bool{name: true}
	queue := info.Supertypes
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == target {
			return true, nil
		}
		if visited[next] {
			continue
		}
		visited[next] = true
		if super, ok := types.LookupType(next); ok {
			queue = append(queue, super.Supertypes...)
		}
	}
	return false, nil
}

// typeName accepts a canonical name, a typeRef map from a Model, or a
// java.TypeRef. Anything else is converted with cast.
func typeName(ref any) (string, error) {
	var name string
	switch r := ref.(type) {
	case string:
		name = r
	case java.TypeRef:
		name = r.CanonicalName
	case *java.TypeRef:
		if r != nil {
			name = r.CanonicalName
		}
	case *model.Map:
		name = model.GetCanonicalName(r)
	case model.Value:
		if m := r.Map(); m != nil {
			name = model.GetCanonicalName(m)
		} else {
			name = r.String()
		}
	case map[string]any:
		name = cast.ToString(r[model.KeyCanonicalName])
	default:
		s, err := cast.ToStringE(ref)
		if err != nil {
			return "", fmt.Errorf("%w: not a type reference: %v", ErrInvalidInput, err)
		}
		name = s
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty type reference", ErrInvalidInput)
	}
	return name, nil
}
