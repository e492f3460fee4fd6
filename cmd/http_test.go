package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewUpstream(t *testing.T) {
	l := zaptest.NewLogger(t)

	h, err := newUpstream(l, "")
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("upstream " + r.URL.Path))
	}))
	defer upstream.Close()

	h, err = newUpstream(l, upstream.URL)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/legacy", nil))
	assert.Equal(t, "upstream /legacy", w.Body.String())
}

func TestNewRenderer(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "root.html")
	require.NoError(t, os.WriteFile(filename, []byte(`<main>{{ .Page.Component }}</main>`), 0o600))

	v := newViper()
	v.Set("inertia.root_template", filename)
	renderer, err := newRenderer(zaptest.NewLogger(t), v)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, renderer.Render(w, httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil))
	assert.Equal(t, "<main>Home</main>", w.Body.String())

	v.Set("inertia.root_template", filepath.Join(t.TempDir(), "missing.html"))
	_, err = newRenderer(zaptest.NewLogger(t), v)
	require.Error(t, err)
}

func TestHTTPCommandArgs(t *testing.T) {
	cmd := NewHTTPCommand()
	require.Error(t, cmd.Args(cmd, []string{}))
	require.Error(t, cmd.Args(cmd, []string{"not a url"}))
	require.NoError(t, cmd.Args(cmd, []string{"http://cms.local/export.json"}))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, version+"\n", out.String())
}

func TestHTTPCommandBasePath(t *testing.T) {
	for basePath, valid := range map[string]bool{
		"/inertiacms": true,
		"/cms/admin":  true,
		"/":           false,
		"//":          false,
		"":            false,
		"cms":         false,
	} {
		cmd := NewHTTPCommand()
		require.NoError(t, cmd.Flags().Set("base-path", basePath))
		err := cmd.Args(cmd, []string{"http://cms.local/export.json"})
		if valid {
			assert.NoError(t, err, basePath)
		} else {
			assert.Error(t, err, basePath)
		}
	}
}

func TestNewSharedProps(t *testing.T) {
	props, err := newSharedProps("")
	require.NoError(t, err)
	assert.Nil(t, props)

	props, err = newSharedProps(`{"appName":"shop","features":{"search":true}}`)
	require.NoError(t, err)
	assert.Equal(t, "shop", props["appName"])
	assert.Equal(t, map[string]interface{}{"search": true}, props["features"])

	_, err = newSharedProps(`["not","an","object"]`)
	require.Error(t, err)
}
