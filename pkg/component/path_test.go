package component

import (
	"testing"

	"github.com/foomo/inertiacms/content"
	"github.com/stretchr/testify/assert"
)

func record(uri, slug string) *content.Record {
	r := content.NewRecord("id", content.KindEntry)
	r.URI = uri
	r.Slug = slug
	return r
}

func TestPath(t *testing.T) {
	tests := []struct {
		uri, slug, want string
	}{
		{"blog/posts", "hello-world", "Blog/Posts/HelloWorld"},
		{"shop/shop", "shop", "Shop"},
		{"/blog/hello_world", "hello_world", "Blog/HelloWorld"},
		{"/", "", ""},
		{"", "", ""},
		{"/about/", "team members", "About/TeamMembers"},
		{"/a/b/a", "c", "A/B/C"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Path(record(test.uri, test.slug)), "uri %q slug %q", test.uri, test.slug)
	}
}

type augmented map[string]interface{}

func (a augmented) ToAugmentedArray() map[string]interface{} {
	return a
}

func TestPathWithRawValues(t *testing.T) {
	assert.Equal(t, "News/42", Path(augmented{"uri": "news", "slug": 42}))
	assert.Equal(t, "News", Path(augmented{"uri": "news"}))
}

func TestStudly(t *testing.T) {
	assert.Equal(t, "HelloWorld", Studly("hello-world"))
	assert.Equal(t, "FooBarBaz", Studly("foo_bar baz"))
	assert.Equal(t, "HelloWorld", Studly("helloWorld"))
	assert.Equal(t, "ÜberUns", Studly("über-uns"))
	assert.Equal(t, "", Studly("--"))
}

func TestStudlyInvalidUTF8(t *testing.T) {
	assert.Equal(t, "\xffoo", Studly("\xffoo"))
	assert.Equal(t, "Hello\xfe", Studly("hello-\xfe"))
	assert.Equal(t, "\xfeBar", Studly("\xfe-bar"))
}
