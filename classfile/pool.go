package classfile

import "fmt"

type ConstantTag uint8

const (
	ConstantUtf8               ConstantTag = 1
	ConstantInteger            ConstantTag = 3
	ConstantFloat              ConstantTag = 4
	ConstantLong               ConstantTag = 5
	ConstantDouble             ConstantTag = 6
	ConstantClass              ConstantTag = 7
	ConstantString             ConstantTag = 8
	ConstantFieldref           ConstantTag = 9
	ConstantMethodref          ConstantTag = 10
	ConstantInterfaceMethodref ConstantTag = 11
	ConstantNameAndType        ConstantTag = 12
	ConstantMethodHandle       ConstantTag = 15
	ConstantMethodType         ConstantTag = 16
	ConstantDynamic            ConstantTag = 17
	ConstantInvokeDynamic      ConstantTag = 18
	ConstantModule             ConstantTag = 19
	ConstantPackage            ConstantTag = 20
)

// Constant is one constant pool slot. Only the fields relevant to Tag are
// set: Utf8 for ConstantUtf8, Value for the numeric kinds, Ref1 and Ref2
// for the kinds that point at other slots.
type Constant struct {
	Tag   ConstantTag
	Utf8  string
	Value any
	Ref1  uint16
	Ref2  uint16
}

// ConstantPool is indexed the way the class file indexes it: slot 0 and the
// second slot of long and double entries are zero Constants.
type ConstantPool []Constant

func (p ConstantPool) entry(index uint16, tag ConstantTag) (*Constant, error) {
	if index == 0 || int(index) >= len(p) {
		return nil, fmt.Errorf("constant pool index %d out of range", index)
	}
	c := &p[index]
	if c.Tag != tag {
		return nil, fmt.Errorf("constant pool index %d: tag %d, want %d", index, c.Tag, tag)
	}
	return c, nil
}

func (p ConstantPool) Utf8(index uint16) (string, error) {
	c, err := p.entry(index, ConstantUtf8)
	if err != nil {
		return "", err
	}
	return c.Utf8, nil
}

// ClassName resolves a CONSTANT_Class slot to its internal name.
func (p ConstantPool) ClassName(index uint16) (string, error) {
	c, err := p.entry(index, ConstantClass)
	if err != nil {
		return "", err
	}
	return p.Utf8(c.Ref1)
}

// Literal resolves a loadable constant: Integer, Float, Long, Double or
// String.
func (p ConstantPool) Literal(index uint16) (any, error) {
	if index == 0 || int(index) >= len(p) {
		return nil, fmt.Errorf("constant pool index %d out of range", index)
	}
	c := p[index]
	switch c.Tag {
	case ConstantInteger, ConstantFloat, ConstantLong, ConstantDouble:
		return c.Value, nil
	case ConstantString:
		return p.Utf8(c.Ref1)
	}
	return nil, fmt.Errorf("constant pool index %d: tag %d is not a literal", index, c.Tag)
}
