package java

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/javamodel/classfile"
)

var log = commonlog.GetLogger("javamodel.java")

// ErrClassNotFound is returned when no classpath entry holds a class.
var ErrClassNotFound = errors.New("class not found")

// ClassPath loads class files by name from an ordered list of directories
// and jar (zip) archives. Every Load reads and decodes the class anew, so
// results never outlive the call that asked for them.
type ClassPath struct {
	entries []classPathEntry
}

type classPathEntry interface {
	readClass(internalName string) ([]byte, error)
	String() string
}

// NewClassPath opens the given entries on fs. A path ending in .jar or
// .zip is read as an archive; anything else is a class directory. Entries
// that cannot be opened are skipped with a warning.
func NewClassPath(fs afero.Fs, paths ...string) *ClassPath {
	cp := &ClassPath{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		entry, err := openClassPathEntry(fs, p)
		if err != nil {
			log.Warningf("skipping classpath entry %s: %v", p, err)
			continue
		}
		cp.entries = append(cp.entries, entry)
	}
	return cp
}

func openClassPathEntry(fs afero.Fs, p string) (classPathEntry, error) {
	ext := strings.ToLower(path.Ext(p))
	if ext == ".jar" || ext == ".zip" {
		data, err := afero.ReadFile(fs, p)
		if err != nil {
			return nil, err
		}
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("open %s as zip: %w", p, err)
		}
		return newJarEntry(p, r), nil
	}
	isDir, err := afero.IsDir(fs, p)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, fmt.Errorf("%s is neither a directory nor an archive", p)
	}
	return dirEntry{fs: fs, root: p}, nil
}

type dirEntry struct {
	fs   afero.Fs
	root string
}

func (d dirEntry) readClass(internalName string) ([]byte, error) {
	return afero.ReadFile(d.fs, path.Join(d.root, internalName+".class"))
}

func (d dirEntry) String() string { return d.root }

type jarEntry struct {
	path  string
	files map[string]*zip.File
}

func newJarEntry(p string, r *zip.Reader) jarEntry {
	j := jarEntry{path: p, files: make(map[string]*zip.File)}
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".class") && !f.FileInfo().IsDir() {
			j.files[strings.TrimSuffix(f.Name, ".class")] = f
		}
	}
	return j
}

func (j jarEntry) readClass(internalName string) ([]byte, error) {
	f, ok := j.files[internalName]
	if !ok {
		return nil, ErrClassNotFound
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s in %s: %w", f.Name, j.path, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (j jarEntry) String() string { return j.path }

// Entries returns the names of the usable entries in search order.
func (cp *ClassPath) Entries() []string {
	if cp == nil {
		return nil
	}
	names := make([]string, len(cp.entries))
	for i, e := range cp.entries {
		names[i] = e.String()
	}
	return names
}

// Load finds a class by canonical name (java.util.Map.Entry). Because a
// dot may separate either packages or nesting levels, every split is
// tried, longest package first.
func (cp *ClassPath) Load(canonicalName string) (*classfile.ClassFile, error) {
	var firstErr error
	for _, internal := range internalNameCandidates(canonicalName) {
		cf, err := cp.LoadInternal(internal)
		if err == nil {
			return cf, nil
		}
		if !errors.Is(err, ErrClassNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("%w: %s", ErrClassNotFound, canonicalName)
}

// LoadInternal finds a class by its internal name (java/util/Map$Entry).
func (cp *ClassPath) LoadInternal(internalName string) (*classfile.ClassFile, error) {
	if cp == nil {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, internalName)
	}
	for _, entry := range cp.entries {
		data, err := entry.readClass(internalName)
		if err != nil {
			continue
		}
		cf, err := classfile.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s from %s: %w", internalName, entry, err)
		}
		return cf, nil
	}
	log.Debugf("class %s not found on classpath", internalName)
	return nil, fmt.Errorf("%w: %s", ErrClassNotFound, internalName)
}

// HasType implements TypeIndex.
func (cp *ClassPath) HasType(canonicalName string) bool {
	_, err := cp.Load(canonicalName)
	return err == nil
}

func internalNameCandidates(canonicalName string) []string {
	parts := strings.Split(canonicalName, ".")
	candidates := make([]string, 0, len(parts))
	for k := len(parts) - 1; k >= 0; k-- {
		pkg := strings.Join(parts[:k], "/")
		name := strings.Join(parts[k:], "$")
		if pkg != "" {
			name = pkg + "/" + name
		}
		candidates = append(candidates, name)
	}
	return candidates
}
