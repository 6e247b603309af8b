package java

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const docSource = `package com.example;

/**
 * Class Doc.
 * @author mbrunnli (30.01.2015)
 */
public class DocClass {

    /** Field Doc. */
    private String field;

    /**
     * Returns the field 'field'.
     * @return value of field
     */
    public String getField() {
        return field;
    }

    /**
     * Sets the field 'field'.
     * @param field
     *            new value of field
     */
    public void setField(String field) {
        this.field = field;
    }
}
`

func TestParsedJavaDoc(t *testing.T) {
	src, err := NewParsedSource(parseUnit(t, docSource))
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}

	header := src.Header()
	if got := header.JavaDoc.Comment(); got != "Class Doc." {
		t.Errorf("class comment = %q, want %q", got, "Class Doc.")
	}
	if got, _ := header.JavaDoc.Get("author"); got != "mbrunnli (30.01.2015)" {
		t.Errorf("author = %q, want %q", got, "mbrunnli (30.01.2015)")
	}

	fields := src.Fields()
	if len(fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(fields))
	}
	if got := fields[0].JavaDoc.Comment(); got != "Field Doc." {
		t.Errorf("field comment = %q, want %q", got, "Field Doc.")
	}

	methods := src.Methods()
	if len(methods) != 2 {
		t.Fatalf("Expected 2 methods, got %d", len(methods))
	}
	t.Run("getter", func(t *testing.T) {
		doc := methods[0].JavaDoc
		if got := doc.Comment(); got != "Returns the field 'field'." {
			t.Errorf("comment = %q, want %q", got, "Returns the field 'field'.")
		}
		if got, _ := doc.Get("return"); got != "value of field" {
			t.Errorf("return = %q, want %q", got, "value of field")
		}
	})
	t.Run("setter", func(t *testing.T) {
		want := "field\n           new value of field"
		if got, _ := methods[1].JavaDoc.Get("param"); got != want {
			t.Errorf("param = %q, want %q", got, want)
		}
	})
}

func TestParsedMembers(t *testing.T) {
	unit := parseUnit(t, `package com.example;

import java.io.IOException;
import java.util.List;

public abstract class Service<T> extends Base<T> implements Runnable, Comparable<Service<T>> {
    public static final int LIMIT = -10;
    protected static final String NAME = "svc";
    private final long created = System.currentTimeMillis();
    int a, b[];

    public Service(String name, int... ports) throws IOException {}

    public abstract <R extends T> List<R> convert(List<? super T> in, R[] out) throws IOException, InterruptedException;

    @Override
    public void run() {}

    private static native void init();
}
`)
	src, err := NewParsedSource(unit)
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}

	t.Run("header", func(t *testing.T) {
		h := src.Header()
		if h.Name != "Service" || h.CanonicalName != "com.example.Service" || h.Package != "com.example" {
			t.Errorf("Unexpected header names: %+v", h)
		}
		if h.Kind != TypeKindClass {
			t.Errorf("Kind = %q, want %q", h.Kind, TypeKindClass)
		}
		if got := h.Modifiers.List(); !cmp.Equal(got, []string{"public", "abstract"}) {
			t.Errorf("Modifiers = %v", got)
		}
	})

	t.Run("fields", func(t *testing.T) {
		fields := src.Fields()
		var names []string
		for _, f := range fields {
			names = append(names, f.Name)
		}
		if diff := cmp.Diff([]string{"LIMIT", "NAME", "created", "a", "b"}, names); diff != "" {
			t.Fatalf("field names mismatch (-want +got):\n%s", diff)
		}
		if fields[0].ConstantValue != int64(-10) {
			t.Errorf("LIMIT constant = %#v, want -10", fields[0].ConstantValue)
		}
		if fields[1].ConstantValue != "svc" {
			t.Errorf("NAME constant = %#v, want %q", fields[1].ConstantValue, "svc")
		}
		if fields[2].ConstantValue != nil {
			t.Errorf("created constant = %#v, want nil", fields[2].ConstantValue)
		}
		if fields[3].Type.Declared != "int" || fields[4].Type.Declared != "int[]" {
			t.Errorf("a, b types = %q, %q, want int, int[]", fields[3].Type.Declared, fields[4].Type.Declared)
		}
	})

	t.Run("constructor", func(t *testing.T) {
		ctors := src.Constructors()
		if len(ctors) != 1 {
			t.Fatalf("Expected 1 constructor, got %d", len(ctors))
		}
		c := ctors[0]
		if c.Name != "Service" || !c.ReturnType.IsZero() {
			t.Errorf("Unexpected constructor: %+v", c)
		}
		if len(c.Parameters) != 2 || !c.Parameters[1].Varargs || c.Parameters[1].Type.Declared != "int[]" {
			t.Errorf("Unexpected parameters: %+v", c.Parameters)
		}
		if len(c.Exceptions) != 1 || c.Exceptions[0].Canonical != "java.io.IOException" {
			t.Errorf("Exceptions = %+v", c.Exceptions)
		}
	})

	t.Run("generic method", func(t *testing.T) {
		m := src.Methods()[0]
		if m.Name != "convert" {
			t.Fatalf("Expected convert, got %s", m.Name)
		}
		if m.ReturnType.Declared != "List<R>" || m.ReturnType.Canonical != "java.util.List<R>" {
			t.Errorf("ReturnType = %+v", m.ReturnType)
		}
		if got := m.ErasedSignature(); got != "convert(java.util.List,java.lang.Object[])" {
			t.Errorf("ErasedSignature() = %q", got)
		}
		if m.Parameters[0].Type.Canonical != "java.util.List<? super T>" {
			t.Errorf("in type = %q", m.Parameters[0].Type.Canonical)
		}
		if len(m.Exceptions) != 2 {
			t.Errorf("Expected 2 exceptions, got %d", len(m.Exceptions))
		}
	})

	t.Run("annotations and modifiers", func(t *testing.T) {
		methods := src.Methods()
		run := methods[1]
		if len(run.Annotations) != 1 || run.Annotations[0].CanonicalName != "java.lang.Override" {
			t.Errorf("run annotations = %+v", run.Annotations)
		}
		init := methods[2]
		if got := init.Modifiers.List(); !cmp.Equal(got, []string{"private", "static", "native"}) {
			t.Errorf("init modifiers = %v", got)
		}
	})

	t.Run("supertypes", func(t *testing.T) {
		extended, implemented := src.Supertypes()
		wantExtended := &TypeRef{
			Name:          "Base",
			CanonicalName: "com.example.Base",
			Package:       "com.example",
			Arguments:     []ResolvedType{{Declared: "T", Canonical: "T", Erased: "java.lang.Object"}},
			Guessed:       true,
		}
		if diff := cmp.Diff(wantExtended, extended); diff != "" {
			t.Errorf("extended mismatch (-want +got):\n%s", diff)
		}
		if len(implemented) != 2 {
			t.Fatalf("Expected 2 implemented types, got %d", len(implemented))
		}
		if implemented[0].CanonicalName != "java.lang.Runnable" || implemented[0].Package != "java.lang" {
			t.Errorf("implemented[0] = %+v", implemented[0])
		}
		if implemented[1].Arguments[0].Canonical != "com.example.Service<T>" {
			t.Errorf("Comparable argument = %q", implemented[1].Arguments[0].Canonical)
		}
	})
}

func TestParsedInterfaceExtends(t *testing.T) {
	src, err := NewParsedSource(parseUnit(t, `interface Child extends Parent, java.io.Serializable {
    String name();
    default int size() { return 0; }
}
`))
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}
	extended, implemented := src.Supertypes()
	if extended != nil {
		t.Errorf("Expected no extended type for an interface, got %+v", extended)
	}
	want := []TypeRef{
		{Name: "Parent", CanonicalName: "Parent", Guessed: true},
		{Name: "Serializable", CanonicalName: "java.io.Serializable", Package: "java.io"},
	}
	if diff := cmp.Diff(want, implemented); diff != "" {
		t.Errorf("implemented mismatch (-want +got):\n%s", diff)
	}

	methods := src.Methods()
	if methods[0].Modifiers != 0 {
		t.Errorf("name() should carry no implicit modifiers, got %v", methods[0].Modifiers.List())
	}
	if !methods[1].Modifiers.Has(ModDefault) {
		t.Errorf("size() modifiers = %v, want default", methods[1].Modifiers.List())
	}
}

func TestParsedEnumAndRecord(t *testing.T) {
	unit := parseUnit(t, `package p;

public enum Color {
    /** The red one. */
    RED,
    @Deprecated GREEN;

    private final int code = 0;
}

record Point(int x, @Deprecated int y) {}
`)

	color, err := NewParsedSource(unit)
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}
	if color.Header().Kind != TypeKindEnum {
		t.Errorf("Kind = %q, want enum", color.Header().Kind)
	}
	fields := color.Fields()
	if len(fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(fields))
	}
	if fields[0].Name != "RED" || fields[0].Type.Canonical != "p.Color" || fields[0].JavaDoc.Comment() != "The red one." {
		t.Errorf("RED = %+v", fields[0])
	}
	if len(fields[1].Annotations) != 1 {
		t.Errorf("GREEN annotations = %+v", fields[1].Annotations)
	}

	point, err := NewParsedSource(unit, WithTypeName("Point"))
	if err != nil {
		t.Fatalf("NewParsedSource(Point) failed: %v", err)
	}
	if point.Header().Kind != TypeKindRecord {
		t.Errorf("Kind = %q, want record", point.Header().Kind)
	}
	fields = point.Fields()
	if len(fields) != 2 || fields[1].Name != "y" || len(fields[1].Annotations) != 1 {
		t.Errorf("record components = %+v", fields)
	}
}

func TestParsedNestedTypes(t *testing.T) {
	unit := parseUnit(t, `package p;
class Outer<T> {
    class Inner {
        T item;
    }
    static class Other {}
}
`)
	outer, err := NewParsedSource(unit)
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Inner", "Other"}, outer.NestedNames()); diff != "" {
		t.Errorf("NestedNames mismatch (-want +got):\n%s", diff)
	}

	inner, err := outer.Nested("Inner")
	if err != nil {
		t.Fatalf("Nested failed: %v", err)
	}
	h := inner.Header()
	if h.Name != "Inner" || h.CanonicalName != "p.Outer.Inner" {
		t.Errorf("Unexpected header: %+v", h)
	}
	if got := inner.Fields()[0].Type; got.Canonical != "T" {
		t.Errorf("item type = %+v, want the outer type variable", got)
	}

	if _, err := outer.Nested("Missing"); !errors.Is(err, ErrNoTypeDeclaration) {
		t.Errorf("Nested(Missing) error = %v, want ErrNoTypeDeclaration", err)
	}
}

func TestNewParsedSourceWithoutTypes(t *testing.T) {
	_, err := NewParsedSource(parseUnit(t, "package p;\n"))
	if !errors.Is(err, ErrNoTypeDeclaration) {
		t.Errorf("error = %v, want ErrNoTypeDeclaration", err)
	}
}

func TestSpecialize(t *testing.T) {
	unit := parseUnit(t, `package p;
import java.util.List;
class Base<T> {
    private List<T> items;
    public List<T> getItems() { return items; }
}
`)
	base, err := NewParsedSource(unit)
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}
	str := ResolvedType{Declared: "String", Canonical: "java.lang.String", Erased: "java.lang.String"}
	specialised := base.Specialize([]ResolvedType{str})

	want := ResolvedType{Declared: "List<String>", Canonical: "java.util.List<java.lang.String>", Erased: "java.util.List"}
	if got := specialised.Fields()[0].Type; got != want {
		t.Errorf("specialised type = %+v, want %+v", got, want)
	}
	if got := specialised.Methods()[0].ReturnType; got != want {
		t.Errorf("specialised return type = %+v, want %+v", got, want)
	}
	if got := base.Fields()[0].Type.Declared; got != "List<T>" {
		t.Errorf("original type = %q, want List<T>", got)
	}
}
