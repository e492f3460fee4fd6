package content

import (
	"time"
)

// Value a field value of a record - the augmented "payload" of a field
type Value struct {
	handle    string
	fieldType FieldType
	raw       interface{}
}

// NewValue value constructor
func NewValue(handle string, fieldType FieldType, raw interface{}) *Value {
	return &Value{
		handle:    handle,
		fieldType: fieldType,
		raw:       raw,
	}
}

// Raw returns the underlying value
func (v *Value) Raw() interface{} {
	return v.raw
}

func (v *Value) Handle() string {
	return v.handle
}

func (v *Value) FieldType() FieldType {
	return v.fieldType
}

// Collection an ordered list of values, i.e. related records
type Collection struct {
	items []interface{}
}

// NewCollection constructor
func NewCollection(items ...interface{}) *Collection {
	return &Collection{
		items: items,
	}
}

// All returns a copy of the items
func (c *Collection) All() []interface{} {
	ret := make([]interface{}, len(c.items))
	copy(ret, c.items)
	return ret
}

func (c *Collection) Len() int {
	return len(c.items)
}

// JSONSerialize returns the serializable form of the collection
func (c *Collection) JSONSerialize() interface{} {
	return c.All()
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses the date formats used in repository json
func ParseDate(v string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
