package content

import (
	"fmt"
	"strings"
	"time"
)

// Record a page or an entry in a content repository
type Record struct {
	ID       string                 `json:"id"`       // unique identifier - it is your responsibility, that they are unique
	Kind     Kind                   `json:"kind"`     // page, entry, term ...
	URI      string                 `json:"uri"`      // the uri the record is resolved by
	Slug     string                 `json:"slug"`     // last uri segment, derived from the title when empty
	Title    string                 `json:"title"`    // human readable title
	Template string                 `json:"template"` // the template the record is rendered with
	Date     *time.Time             `json:"date,omitempty"`
	Fields   map[string]FieldType   `json:"fields"` // field types of the data fields, undeclared fields stay raw
	Data     map[string]interface{} `json:"data"`   // the payload you want to attach to a record
	Nodes    map[string]*Record     `json:"nodes"`  // child pages
	Index    []string               `json:"index"`  // defines the order of the child pages
	parent   *Record                // parent page - helps to resolve a path / bread crumb
	resolver Resolver               // resolves relationship fields
}

// NewRecord constructor
func NewRecord(id string, kind Kind) *Record {
	return &Record{
		ID:     id,
		Kind:   kind,
		Fields: map[string]FieldType{},
		Data:   map[string]interface{}{},
		Nodes:  map[string]*Record{},
	}
}

// WireParents helper method to reference from child to parent in a tree
// recursively
func (r *Record) WireParents() {
	for _, childNode := range r.Nodes {
		childNode.parent = r
		childNode.WireParents()
	}
}

// Walk visits the record and all of its children, parents first
func (r *Record) Walk(fn func(record *Record) error) error {
	if err := fn(r); err != nil {
		return err
	}
	for _, id := range r.childIDs() {
		if err := r.Nodes[id].Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Parent get the parent page of a page
func (r *Record) Parent() *Record {
	return r.parent
}

// Ancestors from the parent up to the root
func (r *Record) Ancestors() []*Record {
	var ret []*Record
	for p := r.parent; p != nil; p = p.parent {
		ret = append(ret, p)
	}
	return ret
}

// AddNode adds a named child page
func (r *Record) AddNode(name string, childNode *Record) *Record {
	if r.Nodes == nil {
		r.Nodes = map[string]*Record{}
	}
	r.Nodes[name] = childNode
	r.Index = append(r.Index, name)
	childNode.parent = r
	return r
}

// SetResolver sets the resolver for relationship fields
func (r *Record) SetResolver(v Resolver) {
	r.resolver = v
}

func (r *Record) IsPage() bool {
	return r.Kind == KindPage
}

func (r *Record) IsEntry() bool {
	return r.Kind == KindEntry
}

// ToAugmentedArray returns the field type aware representation of the record.
// Declared fields and system fields are wrapped into values, relationship
// fields become collections of records and undeclared fields stay raw.
func (r *Record) ToAugmentedArray() map[string]interface{} {
	values := make(map[string]interface{}, len(r.Data)+8)
	for key, raw := range r.Data {
		fieldType, ok := r.Fields[key]
		switch {
		case !ok:
			values[key] = raw
		case fieldType.IsRelationship():
			values[key] = NewCollection(r.relations(raw)...)
		default:
			values[key] = NewValue(key, fieldType, augment(fieldType, raw))
		}
	}

	values["id"] = NewValue("id", FieldTypeText, r.ID)
	values["kind"] = NewValue("kind", FieldTypeText, string(r.Kind))
	values["uri"] = NewValue("uri", FieldTypeText, r.URI)
	values["url"] = NewValue("url", FieldTypeText, r.URI)
	values["slug"] = NewValue("slug", FieldTypeText, r.Slug)
	values["title"] = NewValue("title", FieldTypeText, r.Title)
	values["template"] = NewValue("template", FieldTypeText, r.Template)
	if r.Date != nil {
		values["date"] = NewValue("date", FieldTypeDate, *r.Date)
	}
	if r.parent != nil {
		values["parent"] = r.parent
	}
	return values
}

// PrintNode essentially a recursive dump
func (r *Record) PrintNode(id string, level int) string {
	var b strings.Builder
	r.printNode(&b, id, level)
	return b.String()
}

func (r *Record) printNode(b *strings.Builder, id string, level int) {
	prefix := strings.Repeat(Indent, level)
	fmt.Fprintf(b, "%s %s %s:\n", prefix, id, r.Title)
	for _, key := range r.childIDs() {
		r.Nodes[key].printNode(b, key, level+1)
	}
}

// childIDs returns the ids in index order, children missing in the index last
func (r *Record) childIDs() []string {
	ids := make([]string, 0, len(r.Nodes))
	seen := make(map[string]bool, len(r.Nodes))
	for _, id := range r.Index {
		if _, ok := r.Nodes[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range r.Nodes {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Record) relations(raw interface{}) []interface{} {
	var ids []string
	switch v := raw.(type) {
	case string:
		ids = []string{v}
	case []string:
		ids = v
	case []interface{}:
		for _, id := range v {
			if s, ok := id.(string); ok {
				ids = append(ids, s)
			}
		}
	}
	ret := make([]interface{}, 0, len(ids))
	if r.resolver == nil {
		return ret
	}
	for _, id := range ids {
		if related := r.resolver.Resolve(id); related != nil {
			ret = append(ret, related)
		}
	}
	return ret
}

func augment(fieldType FieldType, raw interface{}) interface{} {
	if fieldType == FieldTypeDate {
		if s, ok := raw.(string); ok {
			if t, err := ParseDate(s); err == nil {
				return t
			}
		}
	}
	return raw
}
