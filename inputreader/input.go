// Package inputreader turns Java inputs into Models: a parsed source file,
// a compiled class, both of them, or a whole package folder.
package inputreader

import (
	"errors"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/javamodel/classfile"
	"github.com/dhamidi/javamodel/java/parser"
)

var log = commonlog.GetLogger("javamodel.inputreader")

// ErrInvalidInput is returned for inputs CreateModel cannot convert.
var ErrInvalidInput = errors.New("invalid input")

// Input is one of SourceInput, ClassInput, PairInput or PackageFolder.
type Input interface {
	input()
}

// SourceInput is a parsed compilation unit. TypeName selects a type other
// than the first top-level one, using a dotted path for nested types.
type SourceInput struct {
	Unit     *parser.Node
	Path     string
	TypeName string

	// siblings is set for inputs produced by a package folder scan.
	siblings *SourceIndex
}

// ClassInput is a compiled class.
type ClassInput struct {
	Class *classfile.ClassFile
}

// PairInput is the source and the compiled class of the same type.
type PairInput struct {
	Source SourceInput
	Class  ClassInput
}

// PackageFolder is a directory holding the sources of BasePackage. It is
// expanded into per-file inputs by Reader.GetInputObjects.
type PackageFolder struct {
	Root        string
	BasePackage string
}

func (SourceInput) input()   {}
func (ClassInput) input()    {}
func (PairInput) input()     {}
func (PackageFolder) input() {}

// IsValidInput reports whether v is an input the Reader accepts: a
// SourceInput, ClassInput or PairInput with its handles set, or a
// PackageFolder with a root.
func IsValidInput(v any) bool {
	switch in := v.(type) {
	case SourceInput:
		return in.Unit != nil
	case *SourceInput:
		return in != nil && in.Unit != nil
	case ClassInput:
		return in.Class != nil
	case *ClassInput:
		return in != nil && in.Class != nil
	case PairInput:
		return in.Source.Unit != nil && in.Class.Class != nil
	case *PairInput:
		return in != nil && IsValidInput(*in)
	case PackageFolder:
		return in.Root != ""
	case *PackageFolder:
		return in != nil && in.Root != ""
	}
	return false
}
