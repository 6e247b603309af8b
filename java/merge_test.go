package java

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/javamodel/classfile"
	"github.com/dhamidi/javamodel/classfile/classfiletest"
)

const mergeSource = `package com.example;

import java.util.List;

@Entity(name = "child", schema = "s")
public class Child extends Base implements Named {
    public static final int MAX = 5;
    private List<String> tags;
    private Helper helper;

    public Child(String name) {}

    public String name() { return "child"; }

    public void join(int n, String... parts) {}

    public void rename(Label label) {}
}
`

var compiledChild = classfiletest.Class{
	Name:       "com/example/Child",
	Super:      "com/example/Base",
	Interfaces: []string{"com/example/Named", "java/io/Serializable"},
	Annotations: []classfile.Annotation{
		classfiletest.Ann("Lcom/example/Entity;",
			"name", classfiletest.String("CHILD"),
			"table", classfiletest.String("T"),
		),
	},
	Fields: []classfiletest.Member{
		{Access: pub | static | final, Name: "MAX", Descriptor: "I", ConstantValue: int32(5)},
		{Access: classfile.AccPrivate, Name: "tags", Descriptor: "Ljava/util/List;"},
		{Access: classfile.AccPrivate, Name: "helper", Descriptor: "Lcom/other/Helper;"},
		{Access: classfile.AccPrivate | static | final, Name: "serialVersionUID", Descriptor: "J", ConstantValue: int64(1)},
	},
	Methods: []classfiletest.Member{
		{Access: pub, Name: "<init>", Descriptor: "(Ljava/lang/String;)V"},
		{Access: pub | final, Name: "name", Descriptor: "()Ljava/lang/String;"},
		{Access: pub | classfile.AccVarargs, Name: "join", Descriptor: "(I[Ljava/lang/String;)V"},
		{Access: pub, Name: "rename", Descriptor: "(Lcom/other/Label;)V"},
		{Access: pub, Name: "generated", Descriptor: "()V"},
	},
}

func mergeSources(t *testing.T) (*ParsedSource, *ReflectedSource) {
	t.Helper()
	parsed, err := NewParsedSource(parseUnit(t, mergeSource))
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}
	return parsed, NewReflectedSource(decodeClass(t, compiledChild), nil)
}

func TestMergeHeader(t *testing.T) {
	parsed, reflected := mergeSources(t)
	d, err := Merge(parsed, reflected)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if d.CanonicalName != "com.example.Child" || d.Kind != TypeKindClass {
		t.Errorf("Unexpected header: %+v", d.TypeHeader)
	}
	wantAnnotations := []AnnotationDescriptor{{
		Name:          "Entity",
		CanonicalName: "com.example.Entity",
		Properties: []AnnotationProperty{
			{Name: "name", Value: Scalar{V: "CHILD"}},
			{Name: "table", Value: Scalar{V: "T"}},
			{Name: "schema", Value: Scalar{V: "s"}},
		},
	}}
	if diff := cmp.Diff(wantAnnotations, d.Annotations); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}

	wantExtended := &TypeRef{Name: "Base", CanonicalName: "com.example.Base", Package: "com.example"}
	if diff := cmp.Diff(wantExtended, d.ExtendedType); diff != "" {
		t.Errorf("extended mismatch (-want +got):\n%s", diff)
	}
	var implemented []string
	for _, ref := range d.ImplementedTypes {
		implemented = append(implemented, ref.CanonicalName)
	}
	if diff := cmp.Diff([]string{"com.example.Named", "java.io.Serializable"}, implemented); diff != "" {
		t.Errorf("implemented mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFields(t *testing.T) {
	parsed, reflected := mergeSources(t)
	d, err := Merge(parsed, reflected)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	want := []FieldDescriptor{
		{
			Name:          "MAX",
			Type:          ResolvedType{Declared: "int", Canonical: "int", Erased: "int"},
			Modifiers:     ModPublic | ModStatic | ModFinal,
			DeclaringType: "com.example.Child",
			ConstantValue: int64(5),
		},
		{
			Name:          "tags",
			Type:          ResolvedType{Declared: "List<String>", Canonical: "java.util.List<java.lang.String>", Erased: "java.util.List"},
			Modifiers:     ModPrivate,
			DeclaringType: "com.example.Child",
		},
		{
			Name:          "helper",
			Type:          ResolvedType{Declared: "Helper", Canonical: "com.other.Helper", Erased: "com.other.Helper"},
			Modifiers:     ModPrivate,
			DeclaringType: "com.example.Child",
		},
		{
			Name:          "serialVersionUID",
			Type:          ResolvedType{Declared: "long", Canonical: "long", Erased: "long"},
			Modifiers:     ModPrivate | ModStatic | ModFinal,
			DeclaringType: "com.example.Child",
			ConstantValue: int64(1),
		},
	}
	if diff := cmp.Diff(want, d.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeMethods(t *testing.T) {
	parsed, reflected := mergeSources(t)
	d, err := Merge(parsed, reflected)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	var names []string
	for _, m := range d.Methods {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"name", "join", "rename", "generated"}, names); diff != "" {
		t.Fatalf("method names mismatch (-want +got):\n%s", diff)
	}

	if got := d.Methods[0].Modifiers.List(); !cmp.Equal(got, []string{"public", "final"}) {
		t.Errorf("name() modifiers = %v, want [public final]", got)
	}
	join := d.Methods[1]
	if len(join.Parameters) != 2 || join.Parameters[1].Name != "parts" || !join.Parameters[1].Varargs {
		t.Errorf("join parameters = %+v", join.Parameters)
	}
	rename := d.Methods[2].Parameters[0]
	wantLabel := ResolvedType{Declared: "Label", Canonical: "com.other.Label", Erased: "com.other.Label"}
	if rename.Name != "label" || rename.Type != wantLabel {
		t.Errorf("rename parameter = %+v, want label of %+v", rename, wantLabel)
	}
	if generated := d.Methods[3]; generated.DeclaringType != "com.example.Child" || generated.ReturnType.Canonical != "void" {
		t.Errorf("Unexpected reflect-only method: %+v", generated)
	}

	if len(d.Constructors) != 1 || d.Constructors[0].Parameters[0].Name != "name" {
		t.Errorf("constructors = %+v", d.Constructors)
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	parsed, reflected := mergeSources(t)
	first, err := Merge(parsed, reflected)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Merge(parsed, reflected)
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestMergeSingleSide(t *testing.T) {
	parsed, reflected := mergeSources(t)

	d, err := Merge(nil, reflected)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if diff := cmp.Diff(Describe(reflected), d); diff != "" {
		t.Errorf("reflected passthrough mismatch (-want +got):\n%s", diff)
	}

	var noReflection *ReflectedSource
	d, err = Merge(parsed, noReflection)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if diff := cmp.Diff(Describe(parsed), d); diff != "" {
		t.Errorf("parsed passthrough mismatch (-want +got):\n%s", diff)
	}

	var noSource *ParsedSource
	if _, err := Merge(noSource, nil); !errors.Is(err, ErrNothingToMerge) {
		t.Errorf("Merge(nil, nil) error = %v, want ErrNothingToMerge", err)
	}
}

func TestMergeType(t *testing.T) {
	tests := []struct {
		name string
		p, r ResolvedType
		want ResolvedType
	}{
		{
			name: "parsed wins",
			p:    ResolvedType{Declared: "List<String>", Canonical: "java.util.List<java.lang.String>", Erased: "java.util.List"},
			r:    ResolvedType{Declared: "List", Canonical: "java.util.List", Erased: "java.util.List"},
			want: ResolvedType{Declared: "List<String>", Canonical: "java.util.List<java.lang.String>", Erased: "java.util.List"},
		},
		{
			name: "guess confirmed",
			p:    ResolvedType{Declared: "Box", Canonical: "com.example.Box", Erased: "com.example.Box", Guessed: true},
			r:    ResolvedType{Declared: "Box", Canonical: "com.example.Box", Erased: "com.example.Box"},
			want: ResolvedType{Declared: "Box", Canonical: "com.example.Box", Erased: "com.example.Box", Guessed: true},
		},
		{
			name: "generic guess corrected",
			p:    ResolvedType{Declared: "Box<String>", Canonical: "com.example.Box<java.lang.String>", Erased: "com.example.Box", Guessed: true},
			r:    ResolvedType{Declared: "Box", Canonical: "com.other.Box", Erased: "com.other.Box"},
			want: ResolvedType{Declared: "Box<String>", Canonical: "com.other.Box<java.lang.String>", Erased: "com.other.Box"},
		},
		{
			name: "array guess corrected",
			p:    ResolvedType{Declared: "Box[]", Canonical: "com.example.Box[]", Erased: "com.example.Box[]", Guessed: true},
			r:    ResolvedType{Declared: "Box[]", Canonical: "com.other.Box[]", Erased: "com.other.Box[]"},
			want: ResolvedType{Declared: "Box[]", Canonical: "com.other.Box[]", Erased: "com.other.Box[]"},
		},
		{
			name: "reflected only",
			r:    ResolvedType{Declared: "int", Canonical: "int", Erased: "int"},
			want: ResolvedType{Declared: "int", Canonical: "int", Erased: "int"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeType(tt.p, tt.r); got != tt.want {
				t.Errorf("mergeType = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeAnnotationsBySimpleName(t *testing.T) {
	parsed := []AnnotationDescriptor{{
		Name:          "Column",
		CanonicalName: "com.example.Column",
		Properties:    []AnnotationProperty{{Name: "length", Value: Scalar{V: int64(10)}}},
	}}
	reflected := []AnnotationDescriptor{
		{Name: "Column", CanonicalName: "javax.persistence.Column"},
		{Name: "Id", CanonicalName: "javax.persistence.Id"},
	}
	want := []AnnotationDescriptor{
		{
			Name:          "Column",
			CanonicalName: "javax.persistence.Column",
			Properties:    []AnnotationProperty{{Name: "length", Value: Scalar{V: int64(10)}}},
		},
		{Name: "Id", CanonicalName: "javax.persistence.Id"},
	}
	if diff := cmp.Diff(want, mergeAnnotations(parsed, reflected)); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
}

const starImportSource = `package com.example;

import java.util.*;
import com.other.*;

public class Handler extends Base<String> implements Named, Runnable {
    private Map.Entry<String, String> entry;

    public void handle(Foo foo) {}

    public void handle(Bar bar) {}

    public void run() {}
}
`

var compiledHandler = classfiletest.Class{
	Name:       "com/example/Handler",
	Super:      "com/other/Base",
	Interfaces: []string{"com/other/Named", "java/lang/Runnable"},
	Fields: []classfiletest.Member{
		{Access: classfile.AccPrivate, Name: "entry", Descriptor: "Ljava/util/Map$Entry;"},
	},
	Methods: []classfiletest.Member{
		{Access: pub, Name: "handle", Descriptor: "(Lcom/other/Foo;)V"},
		{Access: pub, Name: "handle", Descriptor: "(Lcom/other/Bar;)V"},
		{Access: pub, Name: "run", Descriptor: "()V"},
	},
}

func mergeStarImports(t *testing.T) *TypeDescriptor {
	t.Helper()
	parsed, err := NewParsedSource(parseUnit(t, starImportSource))
	if err != nil {
		t.Fatalf("NewParsedSource failed: %v", err)
	}
	d, err := Merge(parsed, NewReflectedSource(decodeClass(t, compiledHandler), nil))
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	return d
}

func TestMergeCorrectsGuessedSupertypes(t *testing.T) {
	d := mergeStarImports(t)

	wantExtended := &TypeRef{
		Name:          "Base",
		CanonicalName: "com.other.Base",
		Package:       "com.other",
		Arguments:     []ResolvedType{{Declared: "String", Canonical: "java.lang.String", Erased: "java.lang.String"}},
	}
	if diff := cmp.Diff(wantExtended, d.ExtendedType); diff != "" {
		t.Errorf("extended mismatch (-want +got):\n%s", diff)
	}
	var implemented []string
	for _, ref := range d.ImplementedTypes {
		implemented = append(implemented, ref.CanonicalName)
	}
	if diff := cmp.Diff([]string{"com.other.Named", "java.lang.Runnable"}, implemented); diff != "" {
		t.Errorf("implemented mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeCorrelatesGuessedOverloads(t *testing.T) {
	d := mergeStarImports(t)

	var signatures []string
	for _, m := range d.Methods {
		signatures = append(signatures, m.ErasedSignature())
	}
	want := []string{"handle(com.other.Foo)", "handle(com.other.Bar)", "run()"}
	if diff := cmp.Diff(want, signatures); diff != "" {
		t.Errorf("methods mismatch (-want +got):\n%s", diff)
	}
	if got := d.Methods[0].Parameters[0].Name; got != "foo" {
		t.Errorf("handle parameter = %q, want foo", got)
	}
}

func TestMergeCorrectsGuessedQualifier(t *testing.T) {
	d := mergeStarImports(t)

	if len(d.Fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(d.Fields))
	}
	want := ResolvedType{
		Declared:  "Map.Entry<String,String>",
		Canonical: "java.util.Map.Entry<java.lang.String,java.lang.String>",
		Erased:    "java.util.Map.Entry",
	}
	if got := d.Fields[0].Type; got != want {
		t.Errorf("entry type = %+v, want %+v", got, want)
	}
}

func TestMergeTypeRef(t *testing.T) {
	reflected := []TypeRef{
		{Name: "Base", CanonicalName: "com.other.Base", Package: "com.other"},
		{Name: "Named", CanonicalName: "com.other.Named", Package: "com.other"},
	}
	tests := []struct {
		name string
		p    TypeRef
		want TypeRef
	}{
		{
			name: "confirmed kept",
			p:    TypeRef{Name: "Base", CanonicalName: "com.example.Base", Package: "com.example"},
			want: TypeRef{Name: "Base", CanonicalName: "com.example.Base", Package: "com.example"},
		},
		{
			name: "guess replaced",
			p:    TypeRef{Name: "Named", CanonicalName: "com.example.Named", Package: "com.example", Guessed: true},
			want: TypeRef{Name: "Named", CanonicalName: "com.other.Named", Package: "com.other"},
		},
		{
			name: "no counterpart",
			p:    TypeRef{Name: "Other", CanonicalName: "com.example.Other", Package: "com.example", Guessed: true},
			want: TypeRef{Name: "Other", CanonicalName: "com.example.Other", Package: "com.example", Guessed: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, mergeTypeRef(tt.p, reflected...)); diff != "" {
				t.Errorf("mergeTypeRef mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
