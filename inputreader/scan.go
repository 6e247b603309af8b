package inputreader

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"

	"github.com/dhamidi/javamodel/java"
)

// GetInputObjects lists the type-declaring .java files below folder.Root and returns a
// lazy sequence of inputs for them together with their count. Each item is
// read and parsed when the sequence reaches it; when its class can be
// loaded from the class path the item is a PairInput, otherwise a
// SourceInput. A file that cannot be read or parsed yields an error for
// that item and the sequence goes on.
//
// A missing root, a root that is not a directory and an unknown encoding
// fail the whole call.
func (r *Reader) GetInputObjects(folder PackageFolder, encodingName string) (iter.Seq2[Input, error], int, error) {
	enc, err := r.encoding(encodingName)
	if err != nil {
		return nil, 0, err
	}
	if folder.Root == "" {
		return nil, 0, fmt.Errorf("%w: package folder without a root", ErrInvalidInput)
	}
	info, err := r.fs.Stat(folder.Root)
	if err != nil {
		return nil, 0, fmt.Errorf("package folder: %w", err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: package folder %s is not a directory", ErrInvalidInput, folder.Root)
	}

	files, err := r.sourceFiles(folder.Root)
	if err != nil {
		return nil, 0, err
	}
	siblings := newSourceIndex(r, folder, files, enc)

	seq := func(yield func(Input, error) bool) {
		for _, path := range files {
			log.Debugf("reading %s", path)
			in, err := r.scanItem(path, siblings)
			if err != nil {
				log.Warningf("%v", err)
			}
			if !yield(in, err) {
				return
			}
		}
	}
	return seq, len(files), nil
}

// sourceFiles walks root in lexical order and collects the .java files
// the exclude patterns let through. package-info.java and
// module-info.java are never collected.
func (r *Reader) sourceFiles(root string) ([]string, error) {
	var files []string
	err := afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warningf("skipping %s: %v", path, err)
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if r.excluded(filepath.ToSlash(rel)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(path, ".java") && !descriptorFiles[info.Name()] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// descriptorFiles declare a package or module rather than a type.
var descriptorFiles = map[string]bool{
	"package-info.java": true,
	"module-info.java":  true,
}

func (r *Reader) excluded(rel string) bool {
	for _, pattern := range r.config.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (r *Reader) scanItem(path string, siblings *SourceIndex) (Input, error) {
	in, err := r.parseSourceFile(path, siblings.encoding)
	if err != nil {
		return nil, err
	}
	in.siblings = siblings
	return r.Pair(in)
}

// SourceIndex knows the types a package folder declares. Names are derived
// from file paths, so answering HasType reads nothing; LookupSource parses
// the file on every call.
type SourceIndex struct {
	reader   *Reader
	encoding encoding.Encoding
	files    map[string]string
}

func newSourceIndex(r *Reader, folder PackageFolder, files []string, enc encoding.Encoding) *SourceIndex {
	idx := &SourceIndex{reader: r, encoding: enc, files: make(map[string]string, len(files))}
	for _, path := range files {
		rel, err := filepath.Rel(folder.Root, path)
		if err != nil {
			continue
		}
		segments := strings.Split(strings.TrimSuffix(filepath.ToSlash(rel), ".java"), "/")
		if folder.BasePackage != "" {
			segments = append([]string{folder.BasePackage}, segments...)
		}
		idx.files[strings.Join(segments, ".")] = path
	}
	return idx
}

// file finds the file declaring canonicalName, which may name a nested
// type, and the dotted path of the type inside that file.
func (idx *SourceIndex) file(canonicalName string) (path, typePath string, ok bool) {
	if idx == nil {
		return "", "", false
	}
	name := canonicalName
	for {
		if path, ok := idx.files[name]; ok {
			top := name[strings.LastIndexByte(name, '.')+1:]
			return path, top + strings.TrimPrefix(canonicalName, name), true
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return "", "", false
		}
		name = name[:i]
	}
}

func (idx *SourceIndex) HasType(canonicalName string) bool {
	_, _, ok := idx.file(canonicalName)
	return ok
}

func (idx *SourceIndex) LookupSource(canonicalName string) (*java.ParsedSource, bool) {
	path, typePath, ok := idx.file(canonicalName)
	if !ok {
		return nil, false
	}
	in, err := idx.reader.parseSourceFile(path, idx.encoding)
	if err != nil {
		log.Debugf("%v", err)
		return nil, false
	}
	src, err := java.NewParsedSource(in.Unit, java.WithTypeName(typePath), java.WithIndex(idx.reader.typeIndex(idx)))
	if err != nil || src.CanonicalName() != canonicalName {
		return nil, false
	}
	return src, true
}
