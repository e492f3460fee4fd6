package props

import (
	"reflect"
	"time"

	"github.com/foomo/inertiacms/content"
	"github.com/google/uuid"
)

// Kind closed set of value shapes the normalizer knows about
type Kind int

// Order reflects the priority in which shapes are matched
const (
	KindScalar Kind = iota
	KindDate
	KindSerializable
	KindCollection
	KindGenericArray
	KindFieldValue
	KindAugmentable
	KindString
)

var kindNames = map[Kind]string{
	KindScalar:       "scalar",
	KindDate:         "date",
	KindSerializable: "serializable",
	KindCollection:   "collection",
	KindGenericArray: "array",
	KindFieldValue:   "value",
	KindAugmentable:  "augmentable",
	KindString:       "string",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Shape a classified value, the payload carries the value typed for its kind
type Shape struct {
	Kind    Kind
	Payload interface{}
}

// Classify assigns exactly one kind to v. A value implementing more than one
// capability gets the first matching kind: date, serializable, collection,
// array, field value, augmentable, string, scalar.
func Classify(v interface{}) Shape {
	if isNil(v) {
		return Shape{Kind: KindScalar}
	}
	switch t := v.(type) {
	case time.Time, *time.Time:
		return Shape{Kind: KindDate, Payload: t}
	case content.JSONSerializer:
		return Shape{Kind: KindSerializable, Payload: t}
	case content.Lister:
		return Shape{Kind: KindCollection, Payload: t}
	case []interface{}, map[string]interface{}:
		return Shape{Kind: KindGenericArray, Payload: t}
	case content.FieldValue:
		return Shape{Kind: KindFieldValue, Payload: t}
	case content.Augmentable:
		return Shape{Kind: KindAugmentable, Payload: t}
	case string:
		return Shape{Kind: KindString, Payload: t}
	case []byte:
		return Shape{Kind: KindScalar, Payload: t}
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Array:
		return Shape{Kind: KindGenericArray, Payload: sliceOf(rv)}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return Shape{Kind: KindGenericArray, Payload: mapOf(rv)}
		}
	}
	return Shape{Kind: KindScalar, Payload: v}
}

// IsUUID canonical 8-4-4-4-12 hex syntax, any version
func IsUUID(v string) bool {
	if len(v) != 36 {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func sliceOf(rv reflect.Value) []interface{} {
	ret := make([]interface{}, rv.Len())
	for i := range ret {
		ret[i] = rv.Index(i).Interface()
	}
	return ret
}

func mapOf(rv reflect.Value) map[string]interface{} {
	ret := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		ret[iter.Key().String()] = iter.Value().Interface()
	}
	return ret
}
