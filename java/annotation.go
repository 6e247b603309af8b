package java

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/dhamidi/javamodel/classfile"
	"github.com/dhamidi/javamodel/java/parser"
)

// ValueProperty is the element name used for @A(x).
const ValueProperty = "value"

func annotationsFromClassfile(anns []classfile.Annotation) []AnnotationDescriptor {
	if len(anns) == 0 {
		return nil
	}
	return lo.Map(anns, func(a classfile.Annotation, _ int) AnnotationDescriptor {
		return annotationFromClassfile(a)
	})
}

func annotationFromClassfile(a classfile.Annotation) AnnotationDescriptor {
	canonical := a.TypeName()
	_, simple := splitClassName(canonical)
	desc := AnnotationDescriptor{Name: simple, CanonicalName: canonical}
	for _, pair := range a.Elements {
		desc.Properties = append(desc.Properties, AnnotationProperty{
			Name:  pair.Name,
			Value: elementValueFromClassfile(pair.Value),
		})
	}
	return desc
}

// elementValueFromClassfile converts an element_value. Values whose
// constant does not match their tag become an empty Scalar.
func elementValueFromClassfile(ev classfile.ElementValue) AnnotationValue {
	switch ev.Tag {
	case 'B', 'S', 'I':
		if v, ok := ev.Const.(int32); ok {
			return Scalar{V: int64(v)}
		}
	case 'J':
		if v, ok := ev.Const.(int64); ok {
			return Scalar{V: v}
		}
	case 'C':
		if v, ok := ev.Const.(int32); ok {
			return Scalar{V: string(rune(v))}
		}
	case 'Z':
		if v, ok := ev.Const.(int32); ok {
			return Scalar{V: v != 0}
		}
	case 'F':
		if v, ok := ev.Const.(float32); ok {
			return Scalar{V: widenFloat32(v)}
		}
	case 'D':
		if v, ok := ev.Const.(float64); ok {
			return Scalar{V: v}
		}
	case 's':
		if v, ok := ev.Const.(string); ok {
			return Scalar{V: v}
		}
	case 'e':
		return Scalar{V: classfile.DescriptorToSourceName(ev.EnumType) + "." + ev.EnumConst}
	case 'c':
		return Scalar{V: classfile.DescriptorToSourceName(ev.Class)}
	case '@':
		if ev.Annotation != nil {
			return Nested{Annotation: annotationFromClassfile(*ev.Annotation)}
		}
	case '[':
		items := make([]AnnotationValue, len(ev.Array))
		for i, item := range ev.Array {
			items[i] = elementValueFromClassfile(item)
		}
		return Sequence{Items: items}
	}
	return Scalar{}
}

// widenFloat32 converts through the shortest decimal form so that 0.1f
// compares equal to the literal written in source.
func widenFloat32(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}

// annotationsFromModifiers extracts the annotations of a Modifiers node.
func annotationsFromModifiers(mods *parser.Node, r *typeResolver) []AnnotationDescriptor {
	var result []AnnotationDescriptor
	for _, child := range mods.ChildrenOfKind(parser.KindAnnotation) {
		result = append(result, annotationFromNode(child, r))
	}
	return result
}

func annotationFromNode(node *parser.Node, r *typeResolver) AnnotationDescriptor {
	written := node.FirstChildOfKind(parser.KindQualifiedName).TokenLiteral()
	canonical, _ := r.resolveName(written)
	_, simple := splitClassName(written)
	desc := AnnotationDescriptor{Name: simple, CanonicalName: canonical}

	for _, el := range node.ChildrenOfKind(parser.KindAnnotationElement) {
		name := ValueProperty
		if el.Token != nil {
			name = el.Token.Literal
		}
		var value AnnotationValue = Scalar{}
		if len(el.Children) > 0 {
			value = annotationValueFromNode(el.Children[0], r)
		}
		desc.Properties = append(desc.Properties, AnnotationProperty{Name: name, Value: value})
	}
	return desc
}

func annotationValueFromNode(node *parser.Node, r *typeResolver) AnnotationValue {
	switch node.Kind {
	case parser.KindLiteral:
		return Scalar{V: literalValue(node.Token)}
	case parser.KindName:
		return Scalar{V: r.resolveConstant(node.TokenLiteral())}
	case parser.KindClassLiteral:
		return Scalar{V: r.resolve(node.TypeChild(), nil).Canonical}
	case parser.KindAnnotation:
		return Nested{Annotation: annotationFromNode(node, r)}
	case parser.KindArrayInit:
		items := []AnnotationValue{}
		for _, child := range node.Children {
			if child.IsError() {
				continue
			}
			items = append(items, annotationValueFromNode(child, r))
		}
		return Sequence{Items: items}
	case parser.KindExpression:
		return Scalar{V: node.TokenLiteral()}
	}
	return Scalar{}
}

// literalValue converts a Java literal token to its Go value: int64,
// float64, bool, string (chars are one-rune strings) or nil.
func literalValue(tok *parser.Token) any {
	if tok == nil {
		return nil
	}
	lit := tok.Literal
	switch tok.Kind {
	case parser.TokenIntLiteral:
		if v, ok := parseIntLiteral(lit); ok {
			return v
		}
	case parser.TokenFloatLiteral:
		if v, ok := parseFloatLiteral(lit); ok {
			return v
		}
	case parser.TokenTrue:
		return true
	case parser.TokenFalse:
		return false
	case parser.TokenNull:
		return nil
	case parser.TokenCharLiteral, parser.TokenStringLiteral:
		return unescapeJava(lit[1 : len(lit)-1])
	case parser.TokenTextBlock:
		return textBlockValue(lit)
	}
	return lit
}

func parseIntLiteral(lit string) (int64, bool) {
	s := strings.ReplaceAll(lit, "_", "")
	s = strings.TrimRight(s, "lL")
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}
	// Hex and binary literals may use all 64 bits (0xFFFFFFFFFFFFFFFFL).
	u, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, false
	}
	v := int64(u)
	if base == 10 && u > 1<<63 {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// parseFloatLiteral accepts decimal and hexadecimal floating point
// literals. A hex float always ends in exponent digits, so trimming the
// type suffix never eats a mantissa digit.
func parseFloatLiteral(lit string) (float64, bool) {
	s := strings.TrimRight(strings.ReplaceAll(lit, "_", ""), "fFdD")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// unescapeJava resolves Java escape sequences: \b \t \n \f \r \s \" \' \\,
// octal escapes and \uXXXX. Unknown escapes are kept as written.
func unescapeJava(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'b':
			sb.WriteByte('\b')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'f':
			sb.WriteByte('\f')
		case 'r':
			sb.WriteByte('\r')
		case 's':
			sb.WriteByte(' ')
		case '"', '\'', '\\':
			sb.WriteByte(e)
		case '\n':
			// line continuation in text blocks
		case 'u':
			for i+1 < len(s) && s[i+1] == 'u' {
				i++
			}
			if i+4 < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					sb.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			sb.WriteString(`\u`)
		default:
			if e >= '0' && e <= '7' {
				end := i + 1
				maxLen := 2
				if e <= '3' {
					maxLen = 3
				}
				for end < len(s) && end-i < maxLen && s[end] >= '0' && s[end] <= '7' {
					end++
				}
				v, _ := strconv.ParseUint(s[i:end], 8, 8)
				sb.WriteRune(rune(v))
				i = end - 1
				continue
			}
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String()
}

// textBlockValue returns the content of a """ text block: the lines after
// the opening delimiter with their common indentation and trailing spaces
// removed, then escapes resolved.
func textBlockValue(lit string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(lit, `"""`), `"""`)
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	indent := -1
	for i, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && i != len(lines)-1 {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			line = line[indent:]
		} else {
			line = strings.TrimLeft(line, " \t")
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	return unescapeJava(strings.Join(lines, "\n"))
}
