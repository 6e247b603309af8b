package java

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/javamodel/java/parser"
)

// TypeIndex answers whether a type with the given canonical name exists.
// It backs on-demand (star) import probing. ClassPath implements it.
type TypeIndex interface {
	HasType(canonicalName string) bool
}

// TypeIndexes consults several indexes in order.
type TypeIndexes []TypeIndex

func (ix TypeIndexes) HasType(canonicalName string) bool {
	for _, index := range ix {
		if index != nil && index.HasType(canonicalName) {
			return true
		}
	}
	return false
}

// bindings maps type variable names to what they stand for in the current
// context: themselves for declared type parameters, or the actual type
// arguments of a specialised supertype.
type bindings map[string]ResolvedType

func (b bindings) with(more bindings) bindings {
	out := make(bindings, len(b)+len(more))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range more {
		out[k] = v
	}
	return out
}

type importInfo struct {
	qualifiedName string
	isStatic      bool
	isWildcard    bool
}

func importsFromCompilationUnit(cu *parser.Node) []importInfo {
	var imports []importInfo
	for _, child := range cu.ChildrenOfKind(parser.KindImportDecl) {
		name := child.TokenLiteral()
		imp := importInfo{qualifiedName: strings.TrimSuffix(name, ".*")}
		imp.isWildcard = strings.HasSuffix(name, ".*")
		imp.isStatic = child.FirstChildOfKind(parser.KindModifier) != nil
		imports = append(imports, imp)
	}
	return imports
}

func packageFromCompilationUnit(cu *parser.Node) string {
	pkgDecl := cu.FirstChildOfKind(parser.KindPackageDecl)
	return pkgDecl.FirstChildOfKind(parser.KindQualifiedName).TokenLiteral()
}

// typeResolver turns type names written in one compilation unit into
// canonical names. It knows the unit's package, imports and nested types
// and may consult a TypeIndex for star imports.
type typeResolver struct {
	pkg          string
	imports      []importInfo
	innerClasses map[string]string // simple or dotted nested name -> canonical name
	index        TypeIndex
}

func newTypeResolver(cu *parser.Node, index TypeIndex) *typeResolver {
	r := &typeResolver{
		pkg:          packageFromCompilationUnit(cu),
		imports:      importsFromCompilationUnit(cu),
		innerClasses: make(map[string]string),
		index:        index,
	}
	for _, decl := range cu.Children {
		if decl.Kind.IsTypeDecl() {
			r.registerTypes(decl, "", nil)
		}
	}
	return r
}

// registerTypes records decl and its nested types. Nested types are
// visible by their simple name and by their path below the top-level
// type (Outer.Inner).
func (r *typeResolver) registerTypes(decl *parser.Node, outer string, path []string) {
	name := decl.TokenLiteral()
	if name == "" {
		return
	}
	canonical := name
	if outer != "" {
		canonical = outer + "." + name
	} else if r.pkg != "" {
		canonical = r.pkg + "." + name
	}
	path = append(path, name)
	if len(path) > 1 {
		if _, taken := r.innerClasses[name]; !taken {
			r.innerClasses[name] = canonical
		}
		r.innerClasses[strings.Join(path[1:], ".")] = canonical
	}
	r.innerClasses[strings.Join(path, ".")] = canonical
	for _, member := range childrenOf(decl.FirstChildOfKind(parser.KindClassBody)) {
		if member.Kind.IsTypeDecl() {
			r.registerTypes(member, canonical, path)
		}
	}
}

// resolveName returns the canonical name for a class name as written,
// following Java's scoping order: nested types, single-type imports,
// star imports, java.lang, then the current package.
func (r *typeResolver) resolveName(name string) (canonical string, guessed bool) {
	if name == "" {
		return "", false
	}
	if fullName, ok := r.innerClasses[name]; ok {
		return fullName, false
	}

	if first, rest, dotted := strings.Cut(name, "."); dotted {
		// Map.Entry resolves its qualifier; java.util.List is taken as
		// already qualified.
		outer, outerGuessed := r.resolveName(first)
		if !outerGuessed {
			return outer + "." + rest, false
		}
		if q, _ := utf8.DecodeRuneInString(first); unicode.IsLower(q) {
			return name, false
		}
		return outer + "." + rest, true
	}

	for _, imp := range r.imports {
		if imp.isWildcard || imp.isStatic {
			continue
		}
		if _, simple := splitClassName(imp.qualifiedName); simple == name {
			return imp.qualifiedName, false
		}
	}

	if r.index != nil {
		for _, imp := range r.imports {
			if !imp.isWildcard || imp.isStatic {
				continue
			}
			candidate := imp.qualifiedName + "." + name
			if r.index.HasType(candidate) {
				return candidate, false
			}
		}
	}

	if javaLangTypes[name] {
		return "java.lang." + name, false
	}

	candidate := name
	if r.pkg != "" {
		candidate = r.pkg + "." + name
	}
	if r.index != nil && r.index.HasType(candidate) {
		return candidate, false
	}
	return candidate, true
}

// resolveStatic resolves a bare name used as a constant, for example an
// enum constant in an annotation value, through static imports. It
// returns the canonical Owner.NAME form, or "" when no import covers it.
func (r *typeResolver) resolveStatic(name string) string {
	for _, imp := range r.imports {
		if !imp.isStatic || imp.isWildcard {
			continue
		}
		if _, member := splitClassName(imp.qualifiedName); member == name {
			return imp.qualifiedName
		}
	}
	for _, imp := range r.imports {
		if imp.isStatic && imp.isWildcard {
			return imp.qualifiedName + "." + name
		}
	}
	return ""
}

// resolveConstant renders a constant reference such as ElementType.FIELD
// with its owner type made canonical.
func (r *typeResolver) resolveConstant(ref string) string {
	owner, member := splitClassName(ref)
	if owner == "" {
		if canonical := r.resolveStatic(member); canonical != "" {
			return canonical
		}
		return member
	}
	canonical, guessed := r.resolveName(owner)
	if guessed {
		return ref
	}
	return canonical + "." + member
}

// resolve renders a type node. Type variables found in b resolve to their
// binding.
func (r *typeResolver) resolve(node *parser.Node, b bindings) ResolvedType {
	if node == nil {
		return ResolvedType{}
	}
	switch node.Kind {
	case parser.KindPrimitiveType:
		name := node.TokenLiteral()
		return ResolvedType{Declared: name, Canonical: name, Erased: name}
	case parser.KindArrayType:
		elem := r.resolve(node.TypeChild(), b)
		return ResolvedType{
			Declared:  elem.Declared + "[]",
			Canonical: elem.Canonical + "[]",
			Erased:    elem.Erased + "[]",
			Guessed:   elem.Guessed,
		}
	case parser.KindClassType:
		return r.resolveClassType(node, b)
	case parser.KindWildcard:
		return r.resolveWildcard(node, b)
	}
	return ResolvedType{}
}

func (r *typeResolver) resolveClassType(node *parser.Node, b bindings) ResolvedType {
	segments := node.ChildrenOfKind(parser.KindTypeSegment)
	if len(segments) == 0 {
		return ResolvedType{}
	}
	names := make([]string, len(segments))
	for i, seg := range segments {
		names[i] = seg.TokenLiteral()
	}
	name := strings.Join(names, ".")
	args := segments[len(segments)-1].FirstChildOfKind(parser.KindTypeArguments)

	if len(segments) == 1 && args == nil {
		if bound, ok := b[name]; ok {
			return bound
		}
	}

	canonical, guessed := r.resolveName(name)
	t := ResolvedType{Declared: name, Canonical: canonical, Erased: canonical, Guessed: guessed}
	if args == nil {
		return t
	}
	var declared, canon []string
	for _, arg := range args.Children {
		resolved := r.resolve(arg, b)
		declared = append(declared, resolved.Declared)
		canon = append(canon, resolved.Canonical)
	}
	t.Declared += "<" + strings.Join(declared, ",") + ">"
	t.Canonical += "<" + strings.Join(canon, ",") + ">"
	return t
}

func (r *typeResolver) resolveWildcard(node *parser.Node, b bindings) ResolvedType {
	bound := node.FirstChildOfKind(parser.KindWildcardBound)
	if bound == nil {
		return ResolvedType{Declared: "?", Canonical: "?", Erased: "java.lang.Object"}
	}
	kw := bound.TokenLiteral()
	t := r.resolve(bound.TypeChild(), b)
	erased := "java.lang.Object"
	if kw == "extends" {
		erased = t.Erased
	}
	return ResolvedType{
		Declared:  "? " + kw + " " + t.Declared,
		Canonical: "? " + kw + " " + t.Canonical,
		Erased:    erased,
		Guessed:   t.Guessed,
	}
}

// typeParameters resolves a TypeParameters node and returns the bindings
// it introduces. Each variable is bound to itself and erases to its first
// bound.
func (r *typeResolver) typeParameters(node *parser.Node, b bindings) ([]TypeParameter, bindings) {
	if node == nil {
		return nil, nil
	}
	params := node.ChildrenOfKind(parser.KindTypeParameter)
	own := make(bindings, len(params))
	for _, p := range params {
		name := p.TokenLiteral()
		own[name] = ResolvedType{Declared: name, Canonical: name, Erased: "java.lang.Object"}
	}
	scope := b.with(own)
	result := make([]TypeParameter, 0, len(params))
	for _, p := range params {
		tp := TypeParameter{Name: p.TokenLiteral()}
		for _, child := range p.Children {
			if bound := r.resolve(child, scope); !bound.IsZero() {
				tp.Bounds = append(tp.Bounds, bound)
			}
		}
		if len(tp.Bounds) > 0 {
			v := own[tp.Name]
			v.Erased = tp.Bounds[0].Erased
			own[tp.Name] = v
		}
		result = append(result, tp)
	}
	return result, own
}

var javaLangTypes = map[string]bool{
	"Object": true, "String": true, "Class": true, "ClassLoader": true, "System": true,
	"Runtime": true, "Process": true, "ProcessBuilder": true, "Package": true, "Module": true,
	"Throwable": true, "Exception": true, "RuntimeException": true, "Error": true,
	"Integer": true, "Long": true, "Short": true, "Byte": true, "Void": true,
	"Float": true, "Double": true, "Character": true, "Boolean": true,
	"Number": true, "Comparable": true, "CharSequence": true, "Appendable": true, "Readable": true,
	"Iterable": true, "Cloneable": true, "Runnable": true, "AutoCloseable": true,
	"Thread": true, "ThreadGroup": true, "ThreadLocal": true, "InheritableThreadLocal": true,
	"StringBuilder": true, "StringBuffer": true, "StackTraceElement": true,
	"Math": true, "StrictMath": true, "Enum": true, "Record": true,
	"Override": true, "Deprecated": true, "SuppressWarnings": true, "FunctionalInterface": true,
	"SafeVarargs":         true,
	"ArithmeticException": true, "ArrayIndexOutOfBoundsException": true,
	"ArrayStoreException": true, "ClassCastException": true, "ClassNotFoundException": true,
	"CloneNotSupportedException": true, "IllegalAccessException": true,
	"IllegalArgumentException": true, "IllegalStateException": true,
	"IndexOutOfBoundsException": true, "InstantiationException": true,
	"InterruptedException": true, "NegativeArraySizeException": true,
	"NoSuchFieldException": true, "NoSuchMethodException": true, "NullPointerException": true,
	"NumberFormatException": true, "ReflectiveOperationException": true,
	"SecurityException": true, "StringIndexOutOfBoundsException": true,
	"UnsupportedOperationException": true,
	"AssertionError":                true, "LinkageError": true, "NoClassDefFoundError": true,
	"OutOfMemoryError": true, "StackOverflowError": true, "VirtualMachineError": true,
	"ExceptionInInitializerError": true,
}
