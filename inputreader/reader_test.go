package inputreader

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"testing"
	"text/template"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/dhamidi/javamodel/classfile"
	"github.com/dhamidi/javamodel/classfile/classfiletest"
	"github.com/dhamidi/javamodel/java/javadoc"
	"github.com/dhamidi/javamodel/model"
)

const baseSource = `package com.example;

import java.util.List;

/**
 * Base type.
 * @param <T> element type
 */
public abstract class Base<T> {
    private List<T> items;

    public List<T> getItems() { return items; }
}
`

const childSource = `package com.example;

import java.util.*;

/**
 * A child.
 * @author someone
 */
public class Child extends Base<String> implements Comparable<Child> {
    private Map<String, Integer> counts;
    /** The name. */
    private String name;

    public String getName() { return name; }

    /**
     * Compares.
     * @param other the other child
     */
    public int compareTo(Child other) { return 0; }
}
`

var compiledChild = classfiletest.Class{
	Name:       "com/example/Child",
	Super:      "com/example/Base",
	Interfaces: []string{"java/lang/Comparable"},
	Fields: []classfiletest.Member{
		{Access: classfile.AccPrivate, Name: "counts", Descriptor: "Ljava/util/Map;"},
		{Access: classfile.AccPrivate, Name: "name", Descriptor: "Ljava/lang/String;"},
	},
	Methods: []classfiletest.Member{
		{Access: classfile.AccPublic, Name: "<init>", Descriptor: "()V"},
		{Access: classfile.AccPublic, Name: "getName", Descriptor: "()Ljava/lang/String;"},
		{Access: classfile.AccPublic, Name: "compareTo", Descriptor: "(Lcom/example/Child;)I"},
		{
			Access:     classfile.AccPublic | classfile.AccBridge | classfile.AccSynthetic,
			Name:       "compareTo",
			Descriptor: "(Ljava/lang/Object;)I",
		},
	},
}

func writeFile(t *testing.T, fsys afero.Fs, name string, data []byte) {
	t.Helper()
	if err := fsys.MkdirAll(path.Dir(name), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := afero.WriteFile(fsys, name, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// newTestReader lays out a package folder under /src/com/example and a
// class directory under /classes holding the compiled Child.
func newTestReader(t *testing.T) *Reader {
	t.Helper()
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/com/example/Base.java", []byte(baseSource))
	writeFile(t, fsys, "/src/com/example/Child.java", []byte(childSource))
	writeFile(t, fsys, "/src/com/example/notes.txt", []byte("not java"))
	writeFile(t, fsys, "/src/com/example/gen/Generated.java", []byte("package com.example.gen; class Generated {}"))
	writeFile(t, fsys, "/classes/com/example/Child.class", compiledChild.Bytes())

	cfg := DefaultConfig()
	cfg.ClassPath = []string{"/classes"}
	cfg.Exclude = []string{"gen/**"}
	return NewReader(fsys, cfg)
}

var exampleFolder = PackageFolder{Root: "/src/com/example", BasePackage: "com.example"}

func scanModels(t *testing.T, r *Reader, folder PackageFolder) map[string]*Model {
	t.Helper()
	items, count, err := r.GetInputObjects(folder, "")
	if err != nil {
		t.Fatalf("Failed to scan %s: %v", folder.Root, err)
	}
	models := map[string]*Model{}
	n := 0
	for in, err := range items {
		n++
		if err != nil {
			t.Fatalf("Failed to read item %d: %v", n, err)
		}
		m, err := r.CreateModel(in)
		if err != nil {
			t.Fatalf("Failed to create model for item %d: %v", n, err)
		}
		models[model.GetName(m.Root)] = m
	}
	if n != count {
		t.Errorf("scan yielded %d items, count = %d", n, count)
	}
	return models
}

func TestGetInputObjects(t *testing.T) {
	r := newTestReader(t)
	items, count, err := r.GetInputObjects(exampleFolder, "")
	if err != nil {
		t.Fatalf("Failed to scan: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	var kinds []string
	for in, err := range items {
		if err != nil {
			t.Fatalf("Failed to read item: %v", err)
		}
		switch in := in.(type) {
		case SourceInput:
			kinds = append(kinds, "source:"+path.Base(in.Path))
		case PairInput:
			kinds = append(kinds, "pair:"+path.Base(in.Source.Path))
		default:
			t.Errorf("unexpected input %T", in)
		}
		if !IsValidInput(in) {
			t.Errorf("IsValidInput(%T) = false", in)
		}
	}
	if diff := cmp.Diff([]string{"source:Base.java", "pair:Child.java"}, kinds); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	models := scanModels(t, r, exampleFolder)
	for _, name := range []string{"Base", "Child"} {
		m, ok := models[name]
		if !ok {
			t.Fatalf("Expected a model for %s", name)
		}
		if m.Root.Len() == 0 || len(model.GetFields(m.Root)) == 0 {
			t.Errorf("model for %s is empty", name)
		}
	}
}

func TestScanIsLazyAndStoppable(t *testing.T) {
	r := newTestReader(t)
	items, _, err := r.GetInputObjects(exampleFolder, "")
	if err != nil {
		t.Fatalf("Failed to scan: %v", err)
	}
	n := 0
	for range items {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterated %d items after break, want 1", n)
	}
}

func TestScanIsolatesFailures(t *testing.T) {
	r := newTestReader(t)
	writeFile(t, r.fs, "/src/com/example/package-info.java", []byte("package com.example;\n"))
	writeFile(t, r.fs, "/src/com/example/module-info.java", []byte("module com.example {}\n"))
	writeFile(t, r.fs, "/src/com/example/Broken.java", []byte("package com.example;\n// nothing declared\n"))

	items, count, err := r.GetInputObjects(exampleFolder, "")
	if err != nil {
		t.Fatalf("Failed to scan: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	var ok, failed int
	for _, err := range items {
		if err != nil {
			failed++
			if !strings.Contains(err.Error(), "Broken.java") {
				t.Errorf("error %q does not name the file", err)
			}
			continue
		}
		ok++
	}
	if ok != 2 || failed != 1 {
		t.Errorf("ok = %d, failed = %d, want 2 and 1", ok, failed)
	}
}

func TestGetInputObjectsErrors(t *testing.T) {
	r := newTestReader(t)

	if _, _, err := r.GetInputObjects(PackageFolder{Root: "/nowhere"}, ""); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing root error = %v, want fs.ErrNotExist", err)
	}
	if _, _, err := r.GetInputObjects(PackageFolder{Root: "/src/com/example/Base.java"}, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("file root error = %v, want ErrInvalidInput", err)
	}
	if _, _, err := r.GetInputObjects(exampleFolder, "no-such-charset"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown encoding error = %v, want ErrInvalidInput", err)
	}
}

func TestMergedModel(t *testing.T) {
	child := scanModels(t, newTestReader(t), exampleFolder)["Child"].Root

	counts := model.GetField(child, "counts")
	if got := counts.GetString(model.KeyType); got != "Map<String,Integer>" {
		t.Errorf("counts type = %q, want %q", got, "Map<String,Integer>")
	}
	if got := counts.GetString(model.KeyCanonicalType); got != "java.util.Map<java.lang.String,java.lang.Integer>" {
		t.Errorf("counts canonicalType = %q, want %q", got, "java.util.Map<java.lang.String,java.lang.Integer>")
	}

	var methods []string
	for _, m := range model.GetMethods(child) {
		methods = append(methods, model.GetName(m))
	}
	if diff := cmp.Diff([]string{"getName", "compareTo"}, methods); diff != "" {
		t.Errorf("methods mismatch (-want +got):\n%s", diff)
	}

	var accessible []string
	for _, f := range model.GetMethodAccessibleFields(child) {
		accessible = append(accessible, model.GetName(f))
	}
	if diff := cmp.Diff([]string{"name", "items"}, accessible); diff != "" {
		t.Errorf("methodAccessibleFields mismatch (-want +got):\n%s", diff)
	}
	items := model.GetMethodAccessibleField(child, "items")
	if got := items.GetString(model.KeyType); got != "List<String>" {
		t.Errorf("items type = %q, want %q", got, "List<String>")
	}
	if got := items.GetString(model.KeyDeclaringType); got != "com.example.Base" {
		t.Errorf("items declaringType = %q, want com.example.Base", got)
	}

	if got := model.GetExtendedType(child).GetString(model.KeyCanonicalName); got != "com.example.Base" {
		t.Errorf("extendedType = %q, want com.example.Base", got)
	}
}

func TestModelJavaDoc(t *testing.T) {
	child := scanModels(t, newTestReader(t), exampleFolder)["Child"].Root

	doc := model.GetJavaDoc(child)
	if got := doc.GetString(javadoc.CommentKey); got != "A child." {
		t.Errorf("comment = %q, want %q", got, "A child.")
	}
	if got := doc.GetString("author"); got != "someone" {
		t.Errorf("author = %q, want %q", got, "someone")
	}
	if got := model.GetJavaDoc(model.GetField(child, "name")).GetString(javadoc.CommentKey); got != "The name." {
		t.Errorf("name comment = %q, want %q", got, "The name.")
	}
	if got := model.GetJavaDoc(model.GetMethod(child, "compareTo")).GetString("param"); got != "other the other child" {
		t.Errorf("compareTo param = %q, want %q", got, "other the other child")
	}
	if model.GetJavaDoc(model.GetField(child, "counts")) != nil {
		t.Error("counts should have no javaDoc")
	}
}

func TestModelsAreDeterministic(t *testing.T) {
	r := newTestReader(t)
	first := scanModels(t, r, exampleFolder)
	second := scanModels(t, r, exampleFolder)
	for name, m := range first {
		if !m.Root.Equal(second[name].Root) {
			t.Errorf("%s: models differ between runs", name)
		}
		if diff := cmp.Diff(m.Root.Any(), second[name].Root.Any()); diff != "" {
			t.Errorf("%s: model mismatch (-first +second):\n%s", name, diff)
		}
	}
}

func TestCreateModelInputs(t *testing.T) {
	r := newTestReader(t)

	t.Run("class only", func(t *testing.T) {
		cf, err := r.ClassPath().Load("com.example.Child")
		if err != nil {
			t.Fatalf("Failed to load class: %v", err)
		}
		m, err := r.CreateModel(ClassInput{Class: cf})
		if err != nil {
			t.Fatalf("Failed to create model: %v", err)
		}
		counts := model.GetField(m.Root, "counts")
		if got := counts.GetString(model.KeyType); got != "Map" {
			t.Errorf("counts type = %q, want Map", got)
		}
		if got := counts.GetString(model.KeyCanonicalType); got != "java.util.Map" {
			t.Errorf("counts canonicalType = %q, want java.util.Map", got)
		}
		if m.Root.Has(model.KeyJavaDoc) {
			t.Error("a class-only model should have no javaDoc")
		}
	})

	t.Run("source only", func(t *testing.T) {
		in, err := r.ParseSourceFile("/src/com/example/Child.java", "")
		if err != nil {
			t.Fatalf("Failed to parse source: %v", err)
		}
		m, err := r.CreateModel(in)
		if err != nil {
			t.Fatalf("Failed to create model: %v", err)
		}
		if got := model.GetCanonicalName(m.Root); got != "com.example.Child" {
			t.Errorf("canonicalName = %q, want com.example.Child", got)
		}
		counts := model.GetField(m.Root, "counts")
		if got := counts.GetString(model.KeyCanonicalType); got != "com.example.Map<java.lang.String,java.lang.Integer>" {
			t.Errorf("counts canonicalType = %q, want the same-package guess", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []Input{nil, exampleFolder, SourceInput{}, ClassInput{}} {
			if _, err := r.CreateModel(in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("CreateModel(%#v) error = %v, want ErrInvalidInput", in, err)
			}
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := r.ParseSourceFile("/src/com/example/Missing.java", ""); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ParseSourceFile error = %v, want fs.ErrNotExist", err)
		}
	})
}

func TestDefaultPackage(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/NoPackageClass.java", []byte("public class NoPackageClass extends Parent {}\n"))
	r := NewReader(fsys, DefaultConfig())

	models := scanModels(t, r, PackageFolder{Root: "/src"})
	m := models["NoPackageClass"].Root
	if v, ok := m.Get(model.KeyPackage); !ok || v.String() != "" {
		t.Errorf("package = %v, %v, want an empty string", v, ok)
	}
	extended := model.GetExtendedType(m)
	if extended == nil {
		t.Fatal("Expected an extended type")
	}
	if v, ok := extended.Get(model.KeyPackage); !ok || v.String() != "" {
		t.Errorf("extendedType package = %v, %v, want an empty string", v, ok)
	}
	if got := extended.GetString(model.KeyCanonicalName); got != "Parent" {
		t.Errorf("extendedType canonicalName = %q, want Parent", got)
	}
}

func TestEncodings(t *testing.T) {
	fsys := afero.NewMemMapFs()
	latin1 := []byte("package p;\nclass Greeting {\n    static final String WORD = \"caf\xe9\";\n}\n")
	writeFile(t, fsys, "/src/Greeting.java", latin1)
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("package p;\nclass Marked {}\n")...)
	writeFile(t, fsys, "/src/Marked.java", bom)
	r := NewReader(fsys, DefaultConfig())

	in, err := r.ParseSourceFile("/src/Greeting.java", "ISO-8859-1")
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}
	m, err := r.CreateModel(in)
	if err != nil {
		t.Fatalf("Failed to create model: %v", err)
	}
	word := model.GetField(m.Root, "WORD")
	if got := word.GetString(model.KeyConstantValue); got != "café" {
		t.Errorf("WORD = %q, want %q", got, "café")
	}

	in, err = r.ParseSourceFile("/src/Marked.java", "")
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}
	m, err = r.CreateModel(in)
	if err != nil {
		t.Fatalf("Failed to create model: %v", err)
	}
	if got := model.GetCanonicalName(m.Root); got != "p.Marked" {
		t.Errorf("canonicalName = %q, want p.Marked", got)
	}
}

func TestIsValidInput(t *testing.T) {
	unit := SourceInput{}
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"string", "Foo.java", false},
		{"empty source", unit, false},
		{"empty class", ClassInput{}, false},
		{"folder", exampleFolder, true},
		{"folder pointer", &exampleFolder, true},
		{"empty folder", PackageFolder{}, false},
		{"class", ClassInput{Class: &classfile.ClassFile{}}, true},
		{"half pair", PairInput{Class: ClassInput{Class: &classfile.ClassFile{}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidInput(tt.in); got != tt.want {
				t.Errorf("IsValidInput(%#v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTemplateMethods(t *testing.T) {
	models := scanModels(t, newTestReader(t), exampleFolder)
	child := models["Child"]

	if diff := cmp.Diff([]string{"isAbstract", "isSubtypeOf"}, child.TemplateMethods.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	fn, ok := child.TemplateMethods.Get("isAbstract")
	if !ok {
		t.Fatal("Expected isAbstract to be registered")
	}
	isAbstract := fn.(func(any) (bool, error))
	fn, ok = child.TemplateMethods.Get("isSubtypeOf")
	if !ok {
		t.Fatal("Expected isSubtypeOf to be registered")
	}
	isSubtypeOf := fn.(func(any, any) (bool, error))

	abstractTests := []struct {
		ref  any
		want bool
	}{
		{"com.example.Base", true},
		{"com.example.Child", false},
		{model.GetExtendedType(child.Root), true},
	}
	for _, tt := range abstractTests {
		got, err := isAbstract(tt.ref)
		if err != nil {
			t.Fatalf("isAbstract(%v) failed: %v", tt.ref, err)
		}
		if got != tt.want {
			t.Errorf("isAbstract(%v) = %v, want %v", tt.ref, got, tt.want)
		}
	}

	subtypeTests := []struct {
		ref, candidate string
		want           bool
	}{
		{"com.example.Child", "com.example.Base", true},
		{"com.example.Child", "com.example.Child", true},
		{"com.example.Child", "java.lang.Comparable", true},
		{"com.example.Child", "java.lang.Object", true},
		{"com.example.Base", "com.example.Child", false},
		{"com.example.Base", "java.lang.Comparable", false},
	}
	for _, tt := range subtypeTests {
		got, err := isSubtypeOf(tt.ref, tt.candidate)
		if err != nil {
			t.Fatalf("isSubtypeOf(%s, %s) failed: %v", tt.ref, tt.candidate, err)
		}
		if got != tt.want {
			t.Errorf("isSubtypeOf(%s, %s) = %v, want %v", tt.ref, tt.candidate, got, tt.want)
		}
	}

	if _, err := isAbstract("com.example.Missing"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("isAbstract(missing) error = %v, want ErrUnknownType", err)
	}
	if _, err := isSubtypeOf("", "com.example.Base"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("isSubtypeOf(\"\") error = %v, want ErrInvalidInput", err)
	}
}

func TestTemplateMethodsUseClassSupertypes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/src/com/example/Widget.java", []byte(`package com.example;

import com.other.*;

public class Widget extends Part implements Named {}
`))
	writeFile(t, fsys, "/classes/com/example/Widget.class", classfiletest.Class{
		Name:       "com/example/Widget",
		Access:     classfile.AccPublic,
		Super:      "com/other/Part",
		Interfaces: []string{"com/other/Named"},
	}.Bytes())
	cfg := DefaultConfig()
	cfg.ClassPath = []string{"/classes"}

	widget := scanModels(t, NewReader(fsys, cfg), exampleFolder)["Widget"]
	if got := model.GetExtendedType(widget.Root).GetString(model.KeyCanonicalName); got != "com.other.Part" {
		t.Errorf("extendedType = %q, want com.other.Part", got)
	}

	fn, _ := widget.TemplateMethods.Get("isSubtypeOf")
	isSubtypeOf := fn.(func(any, any) (bool, error))
	tests := []struct {
		candidate string
		want      bool
	}{
		{"com.other.Part", true},
		{"com.other.Named", true},
		{"com.example.Part", false},
		{"com.example.Named", false},
	}
	for _, tt := range tests {
		got, err := isSubtypeOf("com.example.Widget", tt.candidate)
		if err != nil {
			t.Fatalf("isSubtypeOf(Widget, %s) failed: %v", tt.candidate, err)
		}
		if got != tt.want {
			t.Errorf("isSubtypeOf(Widget, %s) = %v, want %v", tt.candidate, got, tt.want)
		}
	}
}

func TestTemplateMethodsInTemplates(t *testing.T) {
	child := scanModels(t, newTestReader(t), exampleFolder)["Child"]

	tmpl, err := template.New("t").Funcs(child.TemplateMethods.FuncMap()).Parse(
		`{{.name}}:{{if isSubtypeOf .canonicalName "com.example.Base"}}sub{{end}}:{{if isAbstract .extendedType}}abstract{{end}}`)
	if err != nil {
		t.Fatalf("Failed to parse template: %v", err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, child.Root.Any()); err != nil {
		t.Fatalf("Failed to execute template: %v", err)
	}
	if got := out.String(); got != "Child:sub:abstract" {
		t.Errorf("output = %q, want %q", got, "Child:sub:abstract")
	}

	bad, err := template.New("bad").Funcs(child.TemplateMethods.FuncMap()).Parse(`{{isAbstract "com.example.Missing"}}`)
	if err != nil {
		t.Fatalf("Failed to parse template: %v", err)
	}
	if err := bad.Execute(&out, nil); err == nil {
		t.Error("Expected an error for an unknown type")
	}
}

func TestTemplateMethodsRegistry(t *testing.T) {
	tm := NewTemplateMethods().
		Register("first", func() string { return "1" }).
		Register("second", func() string { return "2" }).
		Register("first", func() string { return "one" })

	if diff := cmp.Diff([]string{"first", "second"}, tm.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if tm.Len() != 2 || len(tm.FuncMap()) != 2 {
		t.Errorf("Len() = %d, FuncMap has %d entries, want 2", tm.Len(), len(tm.FuncMap()))
	}
	fn, _ := tm.Get("first")
	if got := fn.(func() string)(); got != "one" {
		t.Errorf("first() = %q, want one", got)
	}
	if _, ok := tm.Get("third"); ok {
		t.Error("Get(third) should fail")
	}
}
