package client_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foomo/inertiacms/client"
	"github.com/foomo/inertiacms/pkg/handler"
	"github.com/foomo/inertiacms/pkg/repo"
	"github.com/foomo/inertiacms/pkg/repo/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const pathInertiaCMS = "/inertiacms"

func TestInvalidHTTPClientInit(t *testing.T) {
	for _, server := range []string{"", "bogus", "htt:/notaurl", "htts://notaurl", "/path/segment/only"} {
		c, err := client.NewHTTPClient(server)
		assert.Nil(t, c, server)
		assert.Error(t, err, server)
	}
}

func TestUpdate(t *testing.T) {
	c := newTestClient(t)
	response, err := c.Update(t.Context())
	require.NoError(t, err)
	require.True(t, response.Success, response.ErrorMessage)
	assert.Greater(t, response.Stats.RepoRuntime, 0.0)
	assert.Equal(t, 5, response.Stats.NumberOfURIs)
}

func TestGetRepo(t *testing.T) {
	c := newTestClient(t)
	sites, err := c.GetRepo(t.Context())
	require.NoError(t, err)
	require.Contains(t, sites, "default")

	site := sites["default"]
	require.NotNil(t, site.Pages)
	assert.Equal(t, "Home", site.Pages.Title)
	assert.Len(t, site.Entries, 2)
	assert.Contains(t, site.Structures, "home")
}

func TestGetHistory(t *testing.T) {
	c := newTestClient(t)
	versions, err := c.GetHistory(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, versions)
}

func TestCallError(t *testing.T) {
	c, err := client.NewHTTPClient("http://127.0.0.1:1" + pathInertiaCMS)
	require.NoError(t, err)
	_, err = c.Update(t.Context())
	require.Error(t, err)
}

func newTestClient(t *testing.T) *client.Client {
	t.Helper()
	l := zaptest.NewLogger(t)
	mockServer, varDir := mock.GetMockData(t)

	h, err := repo.NewHistory(l, repo.HistoryWithHistoryDir(varDir))
	require.NoError(t, err)
	r := repo.New(l, mockServer.URL+"/repo-ok.json", h)
	go r.Start(t.Context()) //nolint:errcheck
	require.Eventually(t, func() bool {
		versions, err := h.Versions(t.Context())
		return err == nil && len(versions) > 0
	}, 5*time.Second, 10*time.Millisecond)

	server := httptest.NewServer(handler.NewHTTP(l, r))
	t.Cleanup(server.Close)

	c, err := client.NewHTTPClient(server.URL + pathInertiaCMS)
	require.NoError(t, err)
	t.Cleanup(c.ShutDown)
	return c
}
