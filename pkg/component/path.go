// Package component derives the name of the frontend component a record is
// rendered with from its uri and slug
package component

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/foomo/inertiacms/content"
)

// Separator between the segments of a component path
const Separator = "/"

// Path builds the component path from the augmented uri and slug of a record:
// "blog/posts" + "hello-world" => "Blog/Posts/HelloWorld".
// A record without uri and slug yields an empty path.
func Path(record content.Augmentable) string {
	values := record.ToAugmentedArray()
	segments := strings.Split(stringValue(values["uri"]), content.PathSeparator)
	segments = append(segments, stringValue(values["slug"]))
	segments = unique(segments)
	for i, segment := range segments {
		segments[i] = Studly(segment)
	}
	return strings.Join(segments, Separator)
}

// Studly upper cases the first letter of every word and removes the
// delimiters "-", "_" and " " in between: "hello-world" => "HelloWorld"
func Studly(v string) string {
	words := strings.FieldsFunc(v, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	var b strings.Builder
	b.Grow(len(v))
	for _, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError && size == 1 {
			// invalid utf-8 is kept as is
			b.WriteString(word)
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	return b.String()
}

// unique drops empty segments and duplicates, keeping the first occurrence
func unique(segments []string) []string {
	seen := make(map[string]struct{}, len(segments))
	ret := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if _, ok := seen[segment]; ok {
			continue
		}
		seen[segment] = struct{}{}
		ret = append(ret, segment)
	}
	return ret
}

func stringValue(v interface{}) string {
	if fv, ok := v.(content.FieldValue); ok {
		v = fv.Raw()
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
