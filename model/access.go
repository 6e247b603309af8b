package model

// Accessors over a type Map. They return zero values when a key is absent
// so templates can tolerate partial models.

func GetName(m *Map) string          { return m.GetString(KeyName) }
func GetCanonicalName(m *Map) string { return m.GetString(KeyCanonicalName) }
func GetPackage(m *Map) string       { return m.GetString(KeyPackage) }

func GetFields(m *Map) []*Map  { return m.Lookup(KeyFields).Maps() }
func GetMethods(m *Map) []*Map { return m.Lookup(KeyMethods).Maps() }

func GetMethodAccessibleFields(m *Map) []*Map {
	return m.Lookup(KeyMethodAccessibleFields).Maps()
}

func GetImplementedTypes(m *Map) []*Map { return m.Lookup(KeyImplementedTypes).Maps() }
func GetAnnotations(m *Map) []*Map      { return m.Lookup(KeyAnnotations).Maps() }

// GetField returns the first field named name, or nil.
func GetField(m *Map, name string) *Map {
	return byName(GetFields(m), name)
}

// GetMethod returns the first method named name, or nil. Overloads are
// reachable through GetMethods.
func GetMethod(m *Map, name string) *Map {
	return byName(GetMethods(m), name)
}

func GetMethodAccessibleField(m *Map, name string) *Map {
	return byName(GetMethodAccessibleFields(m), name)
}

func GetExtendedType(m *Map) *Map {
	return m.Lookup(KeyExtendedType).Map()
}

// GetJavaDoc returns the tag map of a type, field or method, or nil when
// no doc comment was attached.
func GetJavaDoc(m *Map) *Map {
	return m.Lookup(KeyJavaDoc).Map()
}

// GetAnnotation returns the annotation with the given canonical name, or nil.
func GetAnnotation(m *Map, canonicalName string) *Map {
	for _, a := range GetAnnotations(m) {
		if GetCanonicalName(a) == canonicalName {
			return a
		}
	}
	return nil
}

func byName(maps []*Map, name string) *Map {
	for _, m := range maps {
		if GetName(m) == name {
			return m
		}
	}
	return nil
}
