package model

// Keys of the model vocabulary. Renaming one breaks every template that
// reads it.
const (
	KeyName                   = "name"
	KeyCanonicalName          = "canonicalName"
	KeyPackage                = "package"
	KeyKind                   = "kind"
	KeyModifiers              = "modifiers"
	KeyTypeParameters         = "typeParameters"
	KeyFields                 = "fields"
	KeyMethodAccessibleFields = "methodAccessibleFields"
	KeyMethods                = "methods"
	KeyConstructors           = "constructors"
	KeyExtendedType           = "extendedType"
	KeyImplementedTypes       = "implementedTypes"
	KeyAnnotations            = "annotations"
	KeyJavaDoc                = "javaDoc"

	// KeyType holds a member's declared type string.
	KeyType          = "type"
	KeyCanonicalType = "canonicalType"
	KeyDeclaringType = "declaringType"
	KeyConstantValue = "constantValue"

	KeyReturnType          = "returnType"
	KeyCanonicalReturnType = "canonicalReturnType"
	KeyParameters          = "parameters"
	KeyExceptions          = "exceptions"
	// KeyDefaultValue holds the default of an annotation type element.
	KeyDefaultValue = "defaultValue"

	KeyVarargs = "varargs"

	KeyProperties = "properties"

	KeyComment = "comment"
)

// Entity selects the key vocabulary a Map accepts.
type Entity int

const (
	// EntityFree accepts any key. Used for javaDoc tag maps and annotation
	// properties.
	EntityFree Entity = iota
	EntityType
	EntityField
	EntityMethod
	EntityParameter
	EntityTypeRef
	EntityAnnotation
)

var entityNames = map[Entity]string{
	EntityFree:       "free",
	EntityType:       "type",
	EntityField:      "field",
	EntityMethod:     "method",
	EntityParameter:  "parameter",
	EntityTypeRef:    "typeRef",
	EntityAnnotation: "annotation",
}

func (e Entity) String() string {
	if name, ok := entityNames[e]; ok {
		return name
	}
	return "unknown"
}

var vocabulary = map[Entity][]string{
	EntityType: {
		KeyName, KeyCanonicalName, KeyPackage, KeyKind, KeyModifiers, KeyTypeParameters,
		KeyFields, KeyMethodAccessibleFields, KeyMethods, KeyConstructors,
		KeyExtendedType, KeyImplementedTypes, KeyAnnotations, KeyJavaDoc,
	},
	EntityField: {
		KeyName, KeyType, KeyCanonicalType, KeyModifiers, KeyAnnotations, KeyJavaDoc,
		KeyDeclaringType, KeyConstantValue,
	},
	EntityMethod: {
		KeyName, KeyTypeParameters, KeyReturnType, KeyCanonicalReturnType, KeyParameters, KeyExceptions,
		KeyModifiers, KeyAnnotations, KeyJavaDoc, KeyDeclaringType, KeyDefaultValue,
	},
	EntityParameter:  {KeyName, KeyType, KeyCanonicalType, KeyVarargs, KeyAnnotations},
	EntityTypeRef:    {KeyName, KeyCanonicalName, KeyPackage},
	EntityAnnotation: {KeyName, KeyCanonicalName, KeyProperties},
}

// Keys returns the vocabulary of e, or nil for EntityFree.
func (e Entity) Keys() []string {
	return vocabulary[e]
}

func (e Entity) accepts(key string) bool {
	if e == EntityFree {
		return true
	}
	for _, k := range vocabulary[e] {
		if k == key {
			return true
		}
	}
	return false
}
