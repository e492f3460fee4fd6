// Package content contains data structures that describe records, field values
// and navigation structures in a content repository
package content

const (
	// Indent for json indentation
	Indent string = "\t"
	// PathSeparator separator for paths in URIs
	PathSeparator = "/"
)

type (
	// Augmentable is implemented by everything that can describe itself as an
	// augmented, field type aware tree
	Augmentable interface {
		ToAugmentedArray() map[string]interface{}
	}
	// JSONSerializer is implemented by values that know their own serializable form
	JSONSerializer interface {
		JSONSerialize() interface{}
	}
	// Lister is implemented by ordered collections
	Lister interface {
		All() []interface{}
	}
	// FieldValue is a lazily resolved field box
	FieldValue interface {
		Raw() interface{}
	}
	// Resolver looks up records by id for relationship fields
	Resolver interface {
		Resolve(id string) *Record
	}
	// ResolverFunc adapter
	ResolverFunc func(id string) *Record
)

func (fn ResolverFunc) Resolve(id string) *Record {
	return fn(id)
}
