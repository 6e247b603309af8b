package java

import (
	"strings"

	"github.com/samber/lo"

	"github.com/dhamidi/javamodel/java/javadoc"
	"github.com/dhamidi/javamodel/model"
)

// ToModel renders a descriptor as a Model type map. Sequences are always
// present, possibly empty; extendedType, javaDoc, constantValue and
// defaultValue only appear when there is something to say.
func ToModel(d *TypeDescriptor) *model.Map {
	m := model.NewMap(model.EntityType).
		SetString(model.KeyName, d.Name).
		SetString(model.KeyCanonicalName, d.CanonicalName).
		SetString(model.KeyPackage, d.Package).
		SetString(model.KeyKind, string(d.Kind)).
		Set(model.KeyModifiers, model.Strings(d.Modifiers.List()...)).
		Set(model.KeyTypeParameters, model.Strings(lo.Map(d.TypeParameters, renderTypeParameter)...)).
		Set(model.KeyFields, model.Maps(lo.Map(d.Fields, fieldModel)...)).
		Set(model.KeyMethodAccessibleFields, model.Maps(lo.Map(d.MethodAccessibleFields, fieldModel)...)).
		Set(model.KeyMethods, model.Maps(lo.Map(d.Methods, methodModel)...)).
		Set(model.KeyConstructors, model.Maps(lo.Map(d.Constructors, methodModel)...))
	if d.ExtendedType != nil {
		m.SetMap(model.KeyExtendedType, typeRefModel(*d.ExtendedType, 0))
	}
	m.Set(model.KeyImplementedTypes, model.Maps(lo.Map(d.ImplementedTypes, typeRefModel)...))
	m.Set(model.KeyAnnotations, annotationsModel(d.Annotations))
	setJavaDoc(m, d.JavaDoc)
	return m
}

// renderTypeParameter renders T, or T extends A & B with canonical bounds.
func renderTypeParameter(tp TypeParameter, _ int) string {
	if len(tp.Bounds) == 0 {
		return tp.Name
	}
	bounds := lo.Map(tp.Bounds, func(b ResolvedType, _ int) string { return b.Canonical })
	return tp.Name + " extends " + strings.Join(bounds, " & ")
}

func fieldModel(f FieldDescriptor, _ int) *model.Map {
	m := model.NewMap(model.EntityField).
		SetString(model.KeyName, f.Name).
		SetString(model.KeyType, f.Type.Declared).
		SetString(model.KeyCanonicalType, f.Type.Canonical).
		Set(model.KeyModifiers, model.Strings(f.Modifiers.List()...)).
		Set(model.KeyAnnotations, annotationsModel(f.Annotations))
	setJavaDoc(m, f.JavaDoc)
	m.SetString(model.KeyDeclaringType, f.DeclaringType)
	if f.ConstantValue != nil {
		m.Set(model.KeyConstantValue, model.Scalar(f.ConstantValue))
	}
	return m
}

func methodModel(md MethodDescriptor, _ int) *model.Map {
	m := model.NewMap(model.EntityMethod).
		SetString(model.KeyName, md.Name).
		Set(model.KeyTypeParameters, model.Strings(lo.Map(md.TypeParameters, renderTypeParameter)...))
	if !md.ReturnType.IsZero() {
		m.SetString(model.KeyReturnType, md.ReturnType.Declared).
			SetString(model.KeyCanonicalReturnType, md.ReturnType.Canonical)
	}
	m.Set(model.KeyParameters, model.Maps(lo.Map(md.Parameters, parameterModel)...)).
		Set(model.KeyExceptions, model.Strings(lo.Map(md.Exceptions, func(t ResolvedType, _ int) string {
			return t.Canonical
		})...)).
		Set(model.KeyModifiers, model.Strings(md.Modifiers.List()...)).
		Set(model.KeyAnnotations, annotationsModel(md.Annotations))
	setJavaDoc(m, md.JavaDoc)
	m.SetString(model.KeyDeclaringType, md.DeclaringType)
	if md.Default != nil {
		m.Set(model.KeyDefaultValue, annotationValueModel(md.Default))
	}
	return m
}

func parameterModel(p ParameterDescriptor, _ int) *model.Map {
	return model.NewMap(model.EntityParameter).
		SetString(model.KeyName, p.Name).
		SetString(model.KeyType, p.Type.Declared).
		SetString(model.KeyCanonicalType, p.Type.Canonical).
		Set(model.KeyVarargs, model.Scalar(p.Varargs)).
		Set(model.KeyAnnotations, annotationsModel(p.Annotations))
}

func typeRefModel(ref TypeRef, _ int) *model.Map {
	return model.NewMap(model.EntityTypeRef).
		SetString(model.KeyName, ref.Name).
		SetString(model.KeyCanonicalName, ref.CanonicalName).
		SetString(model.KeyPackage, ref.Package)
}

func annotationsModel(anns []AnnotationDescriptor) model.Value {
	return model.Maps(lo.Map(anns, func(a AnnotationDescriptor, _ int) *model.Map {
		return annotationModel(a)
	})...)
}

func annotationModel(a AnnotationDescriptor) *model.Map {
	props := model.NewMap(model.EntityFree)
	for _, p := range a.Properties {
		props.Set(p.Name, annotationValueModel(p.Value))
	}
	return model.NewMap(model.EntityAnnotation).
		SetString(model.KeyName, a.Name).
		SetString(model.KeyCanonicalName, a.CanonicalName).
		SetMap(model.KeyProperties, props)
}

func annotationValueModel(v AnnotationValue) model.Value {
	switch v := v.(type) {
	case Sequence:
		return model.Sequence(lo.Map(v.Items, func(item AnnotationValue, _ int) model.Value {
			return annotationValueModel(item)
		})...)
	case Nested:
		return model.Mapping(annotationModel(v.Annotation))
	case Scalar:
		return model.Scalar(v.V)
	}
	return model.Scalar(nil)
}

func setJavaDoc(m *model.Map, tags javadoc.Tags) {
	if tags.Len() == 0 {
		return
	}
	doc := model.NewMap(model.EntityFree)
	for _, tag := range tags {
		doc.SetString(tag.Name, tag.Text)
	}
	m.SetMap(model.KeyJavaDoc, doc)
}
