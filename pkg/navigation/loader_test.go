package navigation

import (
	"context"
	"testing"

	"github.com/foomo/inertiacms/content"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func finder(structures map[string]*content.Structure) StructureFinderFunc {
	return func(ctx context.Context, handle string) (*content.Structure, error) {
		return structures[handle], nil
	}
}

func TestLoadWithoutStructure(t *testing.T) {
	l := New(zaptest.NewLogger(t), finder(nil))
	nav, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, nav)
	assert.Empty(t, nav)
}

func TestLoadWithoutTree(t *testing.T) {
	l := New(zaptest.NewLogger(t), finder(map[string]*content.Structure{
		Handle: {Handle: Handle, Trees: map[string]*content.Tree{"de": {}}},
	}))
	nav, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, nav)
}

func TestLoad(t *testing.T) {
	l := New(zaptest.NewLogger(t), finder(map[string]*content.Structure{
		Handle: {
			Handle: Handle,
			Trees: map[string]*content.Tree{
				TreeName: {Pages: []*content.Page{
					{ID: "a", Title: "A", URL: "/a"},
					{ID: "b", Title: "B", URL: "/b", Children: []*content.Page{{ID: "c", Title: "C", URL: "/b/c"}}},
				}},
			},
		},
		"footer": {Handle: "footer"},
	}))
	nav, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, nav, 2)
	assert.Equal(t, "A", nav[0].(map[string]interface{})["title"])
	children := nav[1].(map[string]interface{})["children"].([]interface{})
	require.Len(t, children, 1)
	assert.Equal(t, "/b/c", children[0].(map[string]interface{})["url"])
}

func TestLoadError(t *testing.T) {
	l := New(zaptest.NewLogger(t), StructureFinderFunc(func(ctx context.Context, handle string) (*content.Structure, error) {
		return nil, errors.New("boom")
	}))
	_, err := l.Load(context.Background())
	assert.Error(t, err)
}
