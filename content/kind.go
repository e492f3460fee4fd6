package content

// Kind of a record
type Kind string

const (
	// KindPage a hierarchical page
	KindPage Kind = "page"
	// KindEntry a flat collection entry
	KindEntry Kind = "entry"
	// KindTerm a taxonomy term
	KindTerm Kind = "term"
)

// FieldType how a data field is augmented
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeMarkdown FieldType = "markdown"
	FieldTypeDate     FieldType = "date"
	// FieldTypeEntries relationship to other records by id
	FieldTypeEntries FieldType = "entries"
	// FieldTypePages relationship to pages by id
	FieldTypePages FieldType = "pages"
)

// IsRelationship field types hold record ids
func (t FieldType) IsRelationship() bool {
	return t == FieldTypeEntries || t == FieldTypePages
}
