package java

import (
	"archive/zip"
	"bytes"
	"errors"
	"path"
	"testing"

	"github.com/spf13/afero"

	"github.com/dhamidi/javamodel/classfile"
	"github.com/dhamidi/javamodel/classfile/classfiletest"
)

func decodeClass(t *testing.T, c classfiletest.Class) *classfile.ClassFile {
	t.Helper()
	cf, err := classfile.Parse(bytes.NewReader(c.Bytes()))
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", c.Name, err)
	}
	return cf
}

func writeClassDir(t *testing.T, fs afero.Fs, dir string, classes ...classfiletest.Class) {
	t.Helper()
	for _, c := range classes {
		p := path.Join(dir, c.Name+".class")
		if err := fs.MkdirAll(path.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := afero.WriteFile(fs, p, c.Bytes(), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
}

func writeJar(t *testing.T, fs afero.Fs, jarPath string, classes ...classfiletest.Class) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if _, err := w.Create("META-INF/"); err != nil {
		t.Fatalf("zip Create failed: %v", err)
	}
	for _, c := range classes {
		f, err := w.Create(c.Name + ".class")
		if err != nil {
			t.Fatalf("zip Create failed: %v", err)
		}
		if _, err := f.Write(c.Bytes()); err != nil {
			t.Fatalf("zip Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip Close failed: %v", err)
	}
	if err := fs.MkdirAll(path.Dir(jarPath), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := afero.WriteFile(fs, jarPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestClassPathLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeClassDir(t, fs, "/classes",
		classfiletest.Class{Name: "com/example/Child", Super: "com/example/Base"},
		classfiletest.Class{Name: "com/example/Outer$Inner"},
	)
	writeJar(t, fs, "/lib/base.jar",
		classfiletest.Class{Name: "com/example/Base"},
		classfiletest.Class{Name: "Top"},
	)
	if err := afero.WriteFile(fs, "/lib/notes.txt", []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cp := NewClassPath(fs, "/classes", "/lib/base.jar", "/missing", "/lib/notes.txt", "")
	if got := cp.Entries(); len(got) != 2 || got[0] != "/classes" || got[1] != "/lib/base.jar" {
		t.Errorf("Entries() = %v, want [/classes /lib/base.jar]", got)
	}

	tests := []struct {
		name     string
		wantThis string
	}{
		{"com.example.Child", "com/example/Child"},
		{"com.example.Base", "com/example/Base"},
		{"com.example.Outer.Inner", "com/example/Outer$Inner"},
		{"Top", "Top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf, err := cp.Load(tt.name)
			if err != nil {
				t.Fatalf("Load(%q) failed: %v", tt.name, err)
			}
			if cf.ThisClass != tt.wantThis {
				t.Errorf("ThisClass = %q, want %q", cf.ThisClass, tt.wantThis)
			}
			if !cp.HasType(tt.name) {
				t.Errorf("HasType(%q) = false", tt.name)
			}
		})
	}

	if _, err := cp.Load("com.example.Missing"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrClassNotFound", err)
	}
	if cp.HasType("com.example.Missing") {
		t.Error("HasType(missing) = true")
	}
}

func TestClassPathReportsCorruptClasses(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/classes", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := afero.WriteFile(fs, "/classes/Bad.class", []byte{0xCA, 0xFE}, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cp := NewClassPath(fs, "/classes")
	_, err := cp.Load("Bad")
	if err == nil || errors.Is(err, ErrClassNotFound) {
		t.Errorf("Load(Bad) error = %v, want a decode error", err)
	}
}

func TestNilClassPath(t *testing.T) {
	var cp *ClassPath
	if _, err := cp.LoadInternal("java/lang/String"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("LoadInternal on nil ClassPath error = %v, want ErrClassNotFound", err)
	}
	if cp.Entries() != nil {
		t.Error("Entries() on nil ClassPath should be nil")
	}
}

func TestInternalNameCandidates(t *testing.T) {
	got := internalNameCandidates("a.b.C.D")
	want := []string{"a/b/C/D", "a/b/C$D", "a/b$C$D", "a$b$C$D"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
