package inputreader

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dhamidi/javamodel/java"
	"github.com/dhamidi/javamodel/java/parser"
	"github.com/dhamidi/javamodel/model"
)

// Model is the result of converting one input: the type map and the
// template methods bound to the type graph it was built from.
type Model struct {
	Root            *model.Map
	TemplateMethods *TemplateMethods
}

// Reader converts inputs into Models. It holds no state between calls
// besides its configuration: every conversion reads and parses anew.
type Reader struct {
	fs        afero.Fs
	config    Config
	classPath *java.ClassPath
}

// NewReader creates a Reader over fs. The class path entries of cfg are
// opened right away; entries that cannot be opened are logged and left
// out.
func NewReader(fs afero.Fs, cfg Config) *Reader {
	return &Reader{
		fs:        fs,
		config:    cfg,
		classPath: java.NewClassPath(fs, cfg.ClassPath...),
	}
}

func (r *Reader) Config() Config { return r.config }

func (r *Reader) ClassPath() *java.ClassPath { return r.classPath }

// CreateModel converts a single input. A PackageFolder must be expanded
// with GetInputObjects first.
func (r *Reader) CreateModel(in Input) (*Model, error) {
	var (
		parsed    *java.ParsedSource
		reflected *java.ReflectedSource
		siblings  *SourceIndex
		err       error
	)
	switch in := in.(type) {
	case SourceInput:
		siblings = in.siblings
		if parsed, err = r.parsedSource(in); err != nil {
			return nil, err
		}
	case ClassInput:
		if reflected, err = r.reflectedSource(in); err != nil {
			return nil, err
		}
	case PairInput:
		siblings = in.Source.siblings
		if parsed, err = r.parsedSource(in.Source); err != nil {
			return nil, err
		}
		if reflected, err = r.reflectedSource(in.Class); err != nil {
			return nil, err
		}
	case PackageFolder:
		return nil, fmt.Errorf("%w: package folder %s must be expanded with GetInputObjects", ErrInvalidInput, in.Root)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidInput, in)
	}

	desc, err := java.Merge(parsed, reflected)
	if err != nil {
		return nil, err
	}
	h := &java.Hierarchy{ClassPath: r.classPath}
	if siblings != nil {
		h.Sources = siblings
	}
	desc.MethodAccessibleFields = java.MethodAccessibleFields(desc, h.Supertypes(desc))

	graph := &typeGraph{self: desc, sources: siblings, classPath: r.classPath}
	return &Model{
		Root:            java.ToModel(desc),
		TemplateMethods: DefaultTemplateMethods(graph),
	}, nil
}

func (r *Reader) parsedSource(in SourceInput) (*java.ParsedSource, error) {
	if in.Unit == nil {
		return nil, fmt.Errorf("%w: source input without a compilation unit", ErrInvalidInput)
	}
	opts := []java.ParsedOption{java.WithIndex(r.typeIndex(in.siblings))}
	if in.TypeName != "" {
		opts = append(opts, java.WithTypeName(in.TypeName))
	}
	src, err := java.NewParsedSource(in.Unit, opts...)
	if err != nil {
		if in.Path != "" {
			return nil, fmt.Errorf("%s: %w", in.Path, err)
		}
		return nil, err
	}
	return src, nil
}

func (r *Reader) reflectedSource(in ClassInput) (*java.ReflectedSource, error) {
	if in.Class == nil {
		return nil, fmt.Errorf("%w: class input without a class", ErrInvalidInput)
	}
	return java.NewReflectedSource(in.Class, r.classPath), nil
}

func (r *Reader) typeIndex(siblings *SourceIndex) java.TypeIndex {
	if siblings == nil {
		return r.classPath
	}
	return java.TypeIndexes{siblings, r.classPath}
}

// Pair looks up the compiled class of the type in declares. It returns a
// PairInput when the class path has it and in itself otherwise.
func (r *Reader) Pair(in SourceInput) (Input, error) {
	src, err := r.parsedSource(in)
	if err != nil {
		return nil, err
	}
	cf, err := r.classPath.Load(src.CanonicalName())
	if err != nil {
		if !errors.Is(err, java.ErrClassNotFound) {
			log.Warningf("%s: %v", in.Path, err)
		}
		return in, nil
	}
	return PairInput{Source: in, Class: ClassInput{Class: cf}}, nil
}

// ParseSourceFile reads and parses one .java file. An empty encoding
// falls back to the configured one, then to UTF-8.
func (r *Reader) ParseSourceFile(path, encodingName string) (SourceInput, error) {
	enc, err := r.encoding(encodingName)
	if err != nil {
		return SourceInput{}, err
	}
	return r.parseSourceFile(path, enc)
}

func (r *Reader) parseSourceFile(path string, enc encoding.Encoding) (SourceInput, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return SourceInput{}, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	p := parser.ParseCompilationUnit(transform.NewReader(f, unicode.BOMOverride(enc.NewDecoder())), parser.WithFile(path))
	unit, err := p.Finish()
	if err != nil {
		return SourceInput{}, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, syntaxErr := range p.Errors() {
		log.Debugf("%s: %v", path, syntaxErr)
	}
	return SourceInput{Unit: unit, Path: path}, nil
}

// encoding resolves an IANA charset name.
func (r *Reader) encoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = r.config.Encoding
	}
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %w", ErrInvalidInput, name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: encoding %q is not supported", ErrInvalidInput, name)
	}
	return enc, nil
}
