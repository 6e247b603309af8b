package classfile

import (
	"fmt"
	"strings"
)

// FieldType is a decoded field descriptor. Exactly one of Base and
// ClassName is set; Base holds the primitive keyword (int, boolean, ...)
// and ClassName the internal class name.
type FieldType struct {
	Base       string
	ClassName  string
	ArrayDepth int
}

// SourceName renders the type the way Java source spells it, fully
// qualified: java.lang.String[].
func (ft FieldType) SourceName() string {
	name := ft.Base
	if name == "" {
		name = InternalToSourceName(ft.ClassName)
	}
	return name + strings.Repeat("[]", ft.ArrayDepth)
}

// SimpleName is SourceName without the package or enclosing classes.
func (ft FieldType) SimpleName() string {
	name := ft.Base
	if name == "" {
		name = SimpleName(ft.ClassName)
	}
	return name + strings.Repeat("[]", ft.ArrayDepth)
}

func (ft FieldType) IsPrimitive() bool { return ft.Base != "" && ft.ArrayDepth == 0 }

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

func ParseFieldDescriptor(desc string) (FieldType, error) {
	ft, n, err := parseFieldType(desc)
	if err != nil {
		return FieldType{}, err
	}
	if n != len(desc) {
		return FieldType{}, fmt.Errorf("field descriptor %q: trailing data", desc)
	}
	return ft, nil
}

// MethodType is a decoded method descriptor. Return.Base is "void" for
// methods without a result.
type MethodType struct {
	Params []FieldType
	Return FieldType
}

func ParseMethodDescriptor(desc string) (MethodType, error) {
	var mt MethodType
	if !strings.HasPrefix(desc, "(") {
		return mt, fmt.Errorf("method descriptor %q: missing '('", desc)
	}
	rest := desc[1:]
	for !strings.HasPrefix(rest, ")") {
		ft, n, err := parseFieldType(rest)
		if err != nil {
			return mt, fmt.Errorf("method descriptor %q: %w", desc, err)
		}
		mt.Params = append(mt.Params, ft)
		rest = rest[n:]
	}
	rest = rest[1:]
	if rest == "V" {
		mt.Return = FieldType{Base: "void"}
		return mt, nil
	}
	ret, n, err := parseFieldType(rest)
	if err != nil {
		return mt, fmt.Errorf("method descriptor %q: %w", desc, err)
	}
	if n != len(rest) {
		return mt, fmt.Errorf("method descriptor %q: trailing data", desc)
	}
	mt.Return = ret
	return mt, nil
}

func parseFieldType(desc string) (FieldType, int, error) {
	var ft FieldType
	i := 0
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return ft, 0, fmt.Errorf("truncated descriptor %q", desc)
	}
	if base, ok := baseTypes[desc[i]]; ok {
		ft.Base = base
		return ft, i + 1, nil
	}
	if desc[i] != 'L' {
		return ft, 0, fmt.Errorf("unexpected %q in descriptor %q", desc[i], desc)
	}
	end := strings.IndexByte(desc[i:], ';')
	if end < 0 {
		return ft, 0, fmt.Errorf("unterminated class name in descriptor %q", desc)
	}
	ft.ClassName = desc[i+1 : i+end]
	return ft, i + end + 1, nil
}

// InternalToSourceName turns java/util/Map$Entry into java.util.Map.Entry.
func InternalToSourceName(name string) string {
	return strings.NewReplacer("/", ".", "$", ".").Replace(name)
}

// DescriptorToSourceName accepts either a field descriptor or a bare
// internal name and returns the dotted type name. It is used for
// annotation types and class literals, whose descriptors are usually but
// not always of the L...; form.
func DescriptorToSourceName(desc string) string {
	if ft, err := ParseFieldDescriptor(desc); err == nil {
		return ft.SourceName()
	}
	if desc == "V" {
		return "void"
	}
	return InternalToSourceName(desc)
}

// SimpleName returns the last segment of an internal name, after both '/'
// and '$'.
func SimpleName(internal string) string {
	if i := strings.LastIndexAny(internal, "/$"); i >= 0 {
		return internal[i+1:]
	}
	return internal
}

// PackageName returns the dotted package of an internal name, or "" for
// the default package.
func PackageName(internal string) string {
	if i := strings.LastIndexByte(internal, '/'); i >= 0 {
		return strings.ReplaceAll(internal[:i], "/", ".")
	}
	return ""
}
