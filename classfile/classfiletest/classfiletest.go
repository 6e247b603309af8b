// Package classfiletest writes small class files in memory so tests can
// exercise class-file consumers without binary fixtures.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dhamidi/javamodel/classfile"
)

// Class describes the class file to write. Names are internal names
// (com/example/Foo). Super defaults to java/lang/Object; set NoSuper for
// java/lang/Object itself.
type Class struct {
	Name        string
	Super       string
	NoSuper     bool
	Interfaces  []string
	Access      classfile.AccessFlags
	Fields      []Member
	Methods     []Member
	Annotations []classfile.Annotation
	Invisible   []classfile.Annotation
	Signature   string
	SourceFile  string
	Record      bool
}

type Member struct {
	Access               classfile.AccessFlags
	Name                 string
	Descriptor           string
	Signature            string
	ConstantValue        any
	Exceptions           []string
	Annotations          []classfile.Annotation
	Invisible            []classfile.Annotation
	ParameterNames       []string
	ParameterAnnotations [][]classfile.Annotation
	Default              *classfile.ElementValue
}

func Int(v int32) classfile.ElementValue      { return classfile.ElementValue{Tag: 'I', Const: v} }
func Long(v int64) classfile.ElementValue     { return classfile.ElementValue{Tag: 'J', Const: v} }
func Double(v float64) classfile.ElementValue { return classfile.ElementValue{Tag: 'D', Const: v} }
func String(v string) classfile.ElementValue  { return classfile.ElementValue{Tag: 's', Const: v} }
func ClassRef(desc string) classfile.ElementValue {
	return classfile.ElementValue{Tag: 'c', Class: desc}
}

func Bool(v bool) classfile.ElementValue {
	var i int32
	if v {
		i = 1
	}
	return classfile.ElementValue{Tag: 'Z', Const: i}
}

func Char(r rune) classfile.ElementValue {
	return classfile.ElementValue{Tag: 'C', Const: int32(r)}
}

func Enum(typeDesc, constant string) classfile.ElementValue {
	return classfile.ElementValue{Tag: 'e', EnumType: typeDesc, EnumConst: constant}
}

func Nested(a classfile.Annotation) classfile.ElementValue {
	return classfile.ElementValue{Tag: '@', Annotation: &a}
}

func Array(items ...classfile.ElementValue) classfile.ElementValue {
	return classfile.ElementValue{Tag: '[', Array: items}
}

// Ann builds an annotation from alternating name and value arguments.
func Ann(typeDesc string, pairs ...any) classfile.Annotation {
	a := classfile.Annotation{Type: typeDesc}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Elements = append(a.Elements, classfile.ElementPair{
			Name:  pairs[i].(string),
			Value: pairs[i+1].(classfile.ElementValue),
		})
	}
	return a
}

type pool struct {
	entries bytes.Buffer
	count   uint16
	index   map[string]uint16
}

func newPool() *pool {
	return &pool{count: 1, index: map[string]uint16{}}
}

func (p *pool) add(key string, wide bool, write func(*bytes.Buffer)) uint16 {
	if i, ok := p.index[key]; ok {
		return i
	}
	i := p.count
	write(&p.entries)
	p.index[key] = i
	p.count++
	if wide {
		p.count++
	}
	return i
}

func (p *pool) utf8(s string) uint16 {
	return p.add("u:"+s, false, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantUtf8))
		writeU2(b, uint16(len(s)))
		b.WriteString(s)
	})
}

func (p *pool) class(name string) uint16 {
	ref := p.utf8(name)
	return p.add("c:"+name, false, func(b *bytes.Buffer) {
		b.WriteByte(byte(classfile.ConstantClass))
		writeU2(b, ref)
	})
}

func (p *pool) literal(v any) uint16 {
	switch v := v.(type) {
	case int32:
		return p.add(fmt.Sprintf("i:%d", v), false, func(b *bytes.Buffer) {
			b.WriteByte(byte(classfile.ConstantInteger))
			writeU4(b, uint32(v))
		})
	case int64:
		return p.add(fmt.Sprintf("j:%d", v), true, func(b *bytes.Buffer) {
			b.WriteByte(byte(classfile.ConstantLong))
			writeU4(b, uint32(uint64(v)>>32))
			writeU4(b, uint32(v))
		})
	case float32:
		return p.add(fmt.Sprintf("f:%v", v), false, func(b *bytes.Buffer) {
			b.WriteByte(byte(classfile.ConstantFloat))
			writeU4(b, math.Float32bits(v))
		})
	case float64:
		return p.add(fmt.Sprintf("d:%v", v), true, func(b *bytes.Buffer) {
			b.WriteByte(byte(classfile.ConstantDouble))
			bits := math.Float64bits(v)
			writeU4(b, uint32(bits>>32))
			writeU4(b, uint32(bits))
		})
	case string:
		ref := p.utf8(v)
		return p.add("s:"+v, false, func(b *bytes.Buffer) {
			b.WriteByte(byte(classfile.ConstantString))
			writeU2(b, ref)
		})
	}
	panic(fmt.Sprintf("classfiletest: unsupported literal %T", v))
}

// Bytes encodes the class. It panics on values it cannot encode, which
// only happens for malformed test input.
func (c Class) Bytes() []byte {
	p := newPool()
	var body bytes.Buffer

	access := c.Access
	if access == 0 {
		access = classfile.AccPublic | classfile.AccSuper
	}
	writeU2(&body, uint16(access))
	writeU2(&body, p.class(c.Name))
	switch {
	case c.NoSuper:
		writeU2(&body, 0)
	case c.Super == "":
		writeU2(&body, p.class("java/lang/Object"))
	default:
		writeU2(&body, p.class(c.Super))
	}
	writeU2(&body, uint16(len(c.Interfaces)))
	for _, iface := range c.Interfaces {
		writeU2(&body, p.class(iface))
	}
	for _, members := range [][]Member{c.Fields, c.Methods} {
		writeU2(&body, uint16(len(members)))
		for _, m := range members {
			writeU2(&body, uint16(m.Access))
			writeU2(&body, p.utf8(m.Name))
			writeU2(&body, p.utf8(m.Descriptor))
			writeAttributes(&body, p, memberAttributes(p, m))
		}
	}

	var attrs []attribute
	if c.Signature != "" {
		attrs = append(attrs, u2Attribute(p, "Signature", p.utf8(c.Signature)))
	}
	if c.SourceFile != "" {
		attrs = append(attrs, u2Attribute(p, "SourceFile", p.utf8(c.SourceFile)))
	}
	if c.Record {
		attrs = append(attrs, attribute{name: p.utf8("Record"), info: []byte{0, 0}})
	}
	attrs = append(attrs, annotationAttributes(p, c.Annotations, c.Invisible)...)
	writeAttributes(&body, p, attrs)

	var out bytes.Buffer
	writeU4(&out, classfile.Magic)
	writeU2(&out, 0)
	writeU2(&out, 52)
	writeU2(&out, p.count)
	out.Write(p.entries.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}

type attribute struct {
	name uint16
	info []byte
}

func u2Attribute(p *pool, name string, value uint16) attribute {
	var b bytes.Buffer
	writeU2(&b, value)
	return attribute{name: p.utf8(name), info: b.Bytes()}
}

func memberAttributes(p *pool, m Member) []attribute {
	var attrs []attribute
	if m.Signature != "" {
		attrs = append(attrs, u2Attribute(p, "Signature", p.utf8(m.Signature)))
	}
	if m.ConstantValue != nil {
		attrs = append(attrs, u2Attribute(p, "ConstantValue", p.literal(m.ConstantValue)))
	}
	if len(m.Exceptions) > 0 {
		var b bytes.Buffer
		writeU2(&b, uint16(len(m.Exceptions)))
		for _, e := range m.Exceptions {
			writeU2(&b, p.class(e))
		}
		attrs = append(attrs, attribute{name: p.utf8("Exceptions"), info: b.Bytes()})
	}
	if len(m.ParameterNames) > 0 {
		var b bytes.Buffer
		b.WriteByte(byte(len(m.ParameterNames)))
		for _, name := range m.ParameterNames {
			writeU2(&b, p.utf8(name))
			writeU2(&b, 0)
		}
		attrs = append(attrs, attribute{name: p.utf8("MethodParameters"), info: b.Bytes()})
	}
	if len(m.ParameterAnnotations) > 0 {
		var b bytes.Buffer
		b.WriteByte(byte(len(m.ParameterAnnotations)))
		for _, anns := range m.ParameterAnnotations {
			writeAnnotations(&b, p, anns)
		}
		attrs = append(attrs, attribute{name: p.utf8("RuntimeVisibleParameterAnnotations"), info: b.Bytes()})
	}
	if m.Default != nil {
		var b bytes.Buffer
		writeElementValue(&b, p, *m.Default)
		attrs = append(attrs, attribute{name: p.utf8("AnnotationDefault"), info: b.Bytes()})
	}
	return append(attrs, annotationAttributes(p, m.Annotations, m.Invisible)...)
}

func annotationAttributes(p *pool, visible, invisible []classfile.Annotation) []attribute {
	var attrs []attribute
	for _, set := range []struct {
		name string
		anns []classfile.Annotation
	}{
		{"RuntimeVisibleAnnotations", visible},
		{"RuntimeInvisibleAnnotations", invisible},
	} {
		if len(set.anns) == 0 {
			continue
		}
		var b bytes.Buffer
		writeAnnotations(&b, p, set.anns)
		attrs = append(attrs, attribute{name: p.utf8(set.name), info: b.Bytes()})
	}
	return attrs
}

func writeAttributes(b *bytes.Buffer, p *pool, attrs []attribute) {
	writeU2(b, uint16(len(attrs)))
	for _, a := range attrs {
		writeU2(b, a.name)
		writeU4(b, uint32(len(a.info)))
		b.Write(a.info)
	}
}

func writeAnnotations(b *bytes.Buffer, p *pool, anns []classfile.Annotation) {
	writeU2(b, uint16(len(anns)))
	for _, a := range anns {
		writeAnnotation(b, p, a)
	}
}

func writeAnnotation(b *bytes.Buffer, p *pool, a classfile.Annotation) {
	writeU2(b, p.utf8(a.Type))
	writeU2(b, uint16(len(a.Elements)))
	for _, e := range a.Elements {
		writeU2(b, p.utf8(e.Name))
		writeElementValue(b, p, e.Value)
	}
}

func writeElementValue(b *bytes.Buffer, p *pool, v classfile.ElementValue) {
	b.WriteByte(v.Tag)
	switch v.Tag {
	case 'B', 'C', 'I', 'S', 'Z':
		writeU2(b, p.literal(toInt32(v.Const)))
	case 'J', 'D', 'F':
		writeU2(b, p.literal(v.Const))
	case 's':
		writeU2(b, p.utf8(v.Const.(string)))
	case 'e':
		writeU2(b, p.utf8(v.EnumType))
		writeU2(b, p.utf8(v.EnumConst))
	case 'c':
		writeU2(b, p.utf8(v.Class))
	case '@':
		writeAnnotation(b, p, *v.Annotation)
	case '[':
		writeU2(b, uint16(len(v.Array)))
		for _, item := range v.Array {
			writeElementValue(b, p, item)
		}
	default:
		panic(fmt.Sprintf("classfiletest: unknown element value tag %q", v.Tag))
	}
}

func toInt32(v any) int32 {
	switch v := v.(type) {
	case int32:
		return v
	case int:
		return int32(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	panic(fmt.Sprintf("classfiletest: unsupported integral constant %T", v))
}

func writeU2(b *bytes.Buffer, v uint16) {
	_ = binary.Write(b, binary.BigEndian, v)
}

func writeU4(b *bytes.Buffer, v uint32) {
	_ = binary.Write(b, binary.BigEndian, v)
}
