package java

import "github.com/dhamidi/javamodel/classfile"

// Modifiers is a set of Java modifier keywords.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModAbstract
	ModDefault
	ModStatic
	ModFinal
	ModSealed
	ModNonSealed
	ModTransient
	ModVolatile
	ModSynchronized
	ModNative
	ModStrictfp
)

// modifierOrder is the order in which Java style guides list modifiers.
var modifierOrder = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModAbstract, "abstract"},
	{ModDefault, "default"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModSealed, "sealed"},
	{ModNonSealed, "non-sealed"},
	{ModTransient, "transient"},
	{ModVolatile, "volatile"},
	{ModSynchronized, "synchronized"},
	{ModNative, "native"},
	{ModStrictfp, "strictfp"},
}

// ParseModifier returns the modifier spelled keyword, or 0.
func ParseModifier(keyword string) Modifiers {
	for _, m := range modifierOrder {
		if m.name == keyword {
			return m.mod
		}
	}
	return 0
}

func (m Modifiers) Has(mod Modifiers) bool { return m&mod == mod }

// List returns the modifier keywords in canonical order.
func (m Modifiers) List() []string {
	list := make([]string, 0, 4)
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			list = append(list, o.name)
		}
	}
	return list
}

// Visibility returns public, protected, private or package.
func (m Modifiers) Visibility() string {
	switch {
	case m.Has(ModPublic):
		return "public"
	case m.Has(ModProtected):
		return "protected"
	case m.Has(ModPrivate):
		return "private"
	}
	return "package"
}

type memberKind int

const (
	memberType memberKind = iota
	memberField
	memberMethod
)

// modifiersFromAccessFlags maps class-file access flags to modifiers.
// Several flags share bits, so the member kind decides their meaning.
func modifiersFromAccessFlags(flags classfile.AccessFlags, kind memberKind) Modifiers {
	var m Modifiers
	set := func(flag classfile.AccessFlags, mod Modifiers) {
		if flags.Has(flag) {
			m |= mod
		}
	}
	set(classfile.AccPublic, ModPublic)
	set(classfile.AccProtected, ModProtected)
	set(classfile.AccPrivate, ModPrivate)
	set(classfile.AccStatic, ModStatic)
	set(classfile.AccFinal, ModFinal)
	switch kind {
	case memberType:
		if !flags.Has(classfile.AccInterface) {
			set(classfile.AccAbstract, ModAbstract)
		}
	case memberField:
		set(classfile.AccVolatile, ModVolatile)
		set(classfile.AccTransient, ModTransient)
	case memberMethod:
		set(classfile.AccAbstract, ModAbstract)
		set(classfile.AccSynchronized, ModSynchronized)
		set(classfile.AccNative, ModNative)
		set(classfile.AccStrict, ModStrictfp)
	}
	return m
}
