package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"unicode/utf16"
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return nil
	}
	return buf
}

func (r *reader) u1() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u2() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *reader) u4() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	if magic := r.u4(); r.err != nil {
		return nil, fmt.Errorf("read magic: %w", r.err)
	} else if magic != Magic {
		return nil, fmt.Errorf("invalid magic number: 0x%X", magic)
	}

	cf := &ClassFile{}
	cf.MinorVersion = r.u2()
	cf.MajorVersion = r.u2()

	pool, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}
	cf.Pool = pool

	cf.AccessFlags = AccessFlags(r.u2())
	thisIndex := r.u2()
	superIndex := r.u2()
	if r.err != nil {
		return nil, fmt.Errorf("read class header: %w", r.err)
	}
	if cf.ThisClass, err = pool.ClassName(thisIndex); err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	if superIndex != 0 {
		if cf.SuperClass, err = pool.ClassName(superIndex); err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
	}

	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		name, err := pool.ClassName(r.u2())
		if err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
		cf.Interfaces = append(cf.Interfaces, name)
	}

	if cf.Fields, err = readMembers(r, pool); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	if cf.Methods, err = readMembers(r, pool); err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}
	if err := readAttributes(r, pool, &cf.Attributes); err != nil {
		return nil, fmt.Errorf("class attributes: %w", err)
	}
	if r.err != nil {
		return nil, fmt.Errorf("read class file: %w", r.err)
	}
	return cf, nil
}

func readConstantPool(r *reader) (ConstantPool, error) {
	count := int(r.u2())
	if r.err != nil {
		return nil, fmt.Errorf("read constant pool count: %w", r.err)
	}
	pool := make(ConstantPool, count)
	for i := 1; i < count; i++ {
		c := Constant{Tag: ConstantTag(r.u1())}
		wide := false
		switch c.Tag {
		case ConstantUtf8:
			c.Utf8 = decodeModifiedUTF8(r.bytes(int(r.u2())))
		case ConstantInteger:
			c.Value = int32(r.u4())
		case ConstantFloat:
			c.Value = math.Float32frombits(r.u4())
		case ConstantLong:
			c.Value = int64(uint64(r.u4())<<32 | uint64(r.u4()))
			wide = true
		case ConstantDouble:
			c.Value = math.Float64frombits(uint64(r.u4())<<32 | uint64(r.u4()))
			wide = true
		case ConstantClass, ConstantString, ConstantMethodType, ConstantModule, ConstantPackage:
			c.Ref1 = r.u2()
		case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref,
			ConstantNameAndType, ConstantDynamic, ConstantInvokeDynamic:
			c.Ref1 = r.u2()
			c.Ref2 = r.u2()
		case ConstantMethodHandle:
			c.Ref1 = uint16(r.u1())
			c.Ref2 = r.u2()
		default:
			r.fail(fmt.Errorf("unknown constant tag %d", c.Tag))
		}
		if r.err != nil {
			return nil, fmt.Errorf("constant pool entry %d: %w", i, r.err)
		}
		pool[i] = c
		if wide {
			i++
		}
	}
	return pool, nil
}

func readMembers(r *reader, pool ConstantPool) ([]Member, error) {
	count := int(r.u2())
	members := make([]Member, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		m := Member{AccessFlags: AccessFlags(r.u2())}
		nameIndex, descIndex := r.u2(), r.u2()
		if r.err != nil {
			break
		}
		var err error
		if m.Name, err = pool.Utf8(nameIndex); err != nil {
			return nil, fmt.Errorf("member %d name: %w", i, err)
		}
		if m.Descriptor, err = pool.Utf8(descIndex); err != nil {
			return nil, fmt.Errorf("member %s descriptor: %w", m.Name, err)
		}
		if err := readAttributes(r, pool, &m.Attributes); err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Name, err)
		}
		members = append(members, m)
	}
	if r.err != nil {
		return nil, r.err
	}
	return members, nil
}

func readAttributes(r *reader, pool ConstantPool, attrs *Attributes) error {
	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		nameIndex := r.u2()
		info := r.bytes(int(r.u4()))
		if r.err != nil {
			break
		}
		name, err := pool.Utf8(nameIndex)
		if err != nil {
			return fmt.Errorf("attribute %d name: %w", i, err)
		}
		if err := decodeAttribute(name, info, pool, attrs); err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
	}
	return r.err
}

func decodeAttribute(name string, info []byte, pool ConstantPool, attrs *Attributes) error {
	r := &reader{r: bytes.NewReader(info)}
	var err error
	switch name {
	case "Signature":
		attrs.Signature, err = pool.Utf8(r.u2())
	case "SourceFile":
		attrs.SourceFile, err = pool.Utf8(r.u2())
	case "ConstantValue":
		attrs.ConstantValue, err = pool.Literal(r.u2())
	case "Exceptions":
		n := int(r.u2())
		for i := 0; i < n && err == nil && r.err == nil; i++ {
			var class string
			class, err = pool.ClassName(r.u2())
			attrs.Exceptions = append(attrs.Exceptions, class)
		}
	case "Deprecated":
		attrs.Deprecated = true
	case "Synthetic":
		attrs.Synthetic = true
	case "Record":
		attrs.Record = true
	case "RuntimeVisibleAnnotations":
		attrs.VisibleAnnotations, err = readAnnotations(r, pool)
	case "RuntimeInvisibleAnnotations":
		attrs.InvisibleAnnotations, err = readAnnotations(r, pool)
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		n := int(r.u1())
		for i := 0; i < n && err == nil && r.err == nil; i++ {
			var anns []Annotation
			anns, err = readAnnotations(r, pool)
			for len(attrs.ParameterAnnotations) <= i {
				attrs.ParameterAnnotations = append(attrs.ParameterAnnotations, nil)
			}
			attrs.ParameterAnnotations[i] = append(attrs.ParameterAnnotations[i], anns...)
		}
	case "MethodParameters":
		n := int(r.u1())
		for i := 0; i < n && err == nil && r.err == nil; i++ {
			nameIndex := r.u2()
			r.u2()
			param := ""
			if nameIndex != 0 {
				param, err = pool.Utf8(nameIndex)
			}
			attrs.ParameterNames = append(attrs.ParameterNames, param)
		}
	case "AnnotationDefault":
		var v ElementValue
		v, err = readElementValue(r, pool)
		attrs.AnnotationDefault = &v
	case "InnerClasses":
		n := int(r.u2())
		for i := 0; i < n && err == nil && r.err == nil; i++ {
			innerIndex, outerIndex, nameIndex := r.u2(), r.u2(), r.u2()
			ic := InnerClass{AccessFlags: AccessFlags(r.u2())}
			if ic.Inner, err = pool.ClassName(innerIndex); err != nil {
				break
			}
			if outerIndex != 0 {
				if ic.Outer, err = pool.ClassName(outerIndex); err != nil {
					break
				}
			}
			if nameIndex != 0 {
				if ic.SimpleName, err = pool.Utf8(nameIndex); err != nil {
					break
				}
			}
			attrs.InnerClasses = append(attrs.InnerClasses, ic)
		}
	default:
		attrs.Skipped = append(attrs.Skipped, name)
	}
	if err != nil {
		return err
	}
	return r.err
}

func readAnnotations(r *reader, pool ConstantPool) ([]Annotation, error) {
	n := int(r.u2())
	anns := make([]Annotation, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		a, err := readAnnotation(r, pool)
		if err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	return anns, r.err
}

func readAnnotation(r *reader, pool ConstantPool) (Annotation, error) {
	var a Annotation
	var err error
	if a.Type, err = pool.Utf8(r.u2()); err != nil {
		return a, fmt.Errorf("annotation type: %w", err)
	}
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		var pair ElementPair
		if pair.Name, err = pool.Utf8(r.u2()); err != nil {
			return a, fmt.Errorf("annotation %s element name: %w", a.Type, err)
		}
		if pair.Value, err = readElementValue(r, pool); err != nil {
			return a, fmt.Errorf("annotation %s element %s: %w", a.Type, pair.Name, err)
		}
		a.Elements = append(a.Elements, pair)
	}
	return a, r.err
}

func readElementValue(r *reader, pool ConstantPool) (ElementValue, error) {
	v := ElementValue{Tag: r.u1()}
	if r.err != nil {
		return v, r.err
	}
	var err error
	switch v.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		v.Const, err = pool.Literal(r.u2())
	case 's':
		v.Const, err = pool.Utf8(r.u2())
	case 'e':
		if v.EnumType, err = pool.Utf8(r.u2()); err == nil {
			v.EnumConst, err = pool.Utf8(r.u2())
		}
	case 'c':
		v.Class, err = pool.Utf8(r.u2())
	case '@':
		var nested Annotation
		nested, err = readAnnotation(r, pool)
		v.Annotation = &nested
	case '[':
		n := int(r.u2())
		v.Array = make([]ElementValue, 0, n)
		for i := 0; i < n && err == nil && r.err == nil; i++ {
			var item ElementValue
			item, err = readElementValue(r, pool)
			v.Array = append(v.Array, item)
		}
	default:
		err = fmt.Errorf("unknown element value tag %q", v.Tag)
	}
	if err != nil {
		return v, err
	}
	return v, r.err
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: NUL is encoded in
// two bytes and supplementary characters as surrogate pairs of three bytes
// each.
func decodeModifiedUTF8(b []byte) string {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, uint16(c))
			i++
		}
	}
	return string(utf16.Decode(units))
}
