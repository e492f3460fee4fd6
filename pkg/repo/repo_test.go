package repo

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/foomo/inertiacms/content"
	"github.com/foomo/inertiacms/pkg/repo/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func NewTestRepo(ctx context.Context, l *zap.Logger, url, varDir string) *Repo {
	h, err := NewHistory(l, HistoryWithHistoryLimit(2), HistoryWithHistoryDir(varDir))
	if err != nil {
		panic(err)
	}
	r := New(l, url, h)
	go r.Start(ctx) //nolint:errcheck
	time.Sleep(100 * time.Millisecond)
	return r
}

func getTestRepo(t *testing.T, path string) *Repo {
	t.Helper()
	mockServer, varDir := mock.GetMockData(t)
	r := NewTestRepo(t.Context(), zaptest.NewLogger(t), mockServer.URL+path, varDir)
	response := r.Update(t.Context())
	require.True(t, response.Success, response.ErrorMessage)
	return r
}

func TestLoad404(t *testing.T) {
	var (
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), zaptest.NewLogger(t), mockServer.URL+"/repo-no-have", varDir)
	)
	response := r.Update(t.Context())
	assert.False(t, response.Success, "can not get a repo, if the server responds with a 404")
	assert.Equal(t, -1, response.Stats.NumberOfRecords)
}

func TestLoadBrokenRepo(t *testing.T) {
	var (
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), zaptest.NewLogger(t), mockServer.URL+"/repo-broken-json.json", varDir)
	)
	response := r.Update(t.Context())
	assert.False(t, response.Success, "how could we load a broken json")
	assert.False(t, r.Loaded())

	_, err := r.FindByRequestURL(t.Context(), "default", "/")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadRepo(t *testing.T) {
	var (
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), zaptest.NewLogger(t), mockServer.URL+"/repo-ok.json", varDir)
	)
	require.True(t, r.Loaded(), "initial update on start")

	response := r.Update(t.Context())
	require.True(t, response.Success, response.ErrorMessage)
	assert.Equal(t, 6, response.Stats.NumberOfRecords)
	assert.Equal(t, 5, response.Stats.NumberOfURIs, "entries without uri are not routed")
	assert.GreaterOrEqual(t, response.Stats.RepoRuntime, 0.05, "the server was too fast")

	versions, err := r.History().Versions(t.Context())
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestLoadRepoDuplicateUris(t *testing.T) {
	var (
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), zaptest.NewLogger(t), mockServer.URL+"/repo-duplicate-uris.json", varDir)
	)
	response := r.Update(t.Context())
	require.False(t, response.Success, "there are duplicates, this repo update should have failed")
	assert.Contains(t, response.ErrorMessage, "duplicate uri: /a")
}

func TestLoadRepoDanglingStructurePage(t *testing.T) {
	var (
		mockServer, varDir = mock.GetMockData(t)
		r                  = NewTestRepo(t.Context(), zaptest.NewLogger(t), mockServer.URL+"/repo-dangling-page.json", varDir)
	)
	response := r.Update(t.Context())
	require.False(t, response.Success)
	assert.Contains(t, response.ErrorMessage, "points nowhere missing")
}

func TestRestoreAfterFailedUpdate(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	r.url = r.url[:len(r.url)-len("/repo-ok.json")] + "/repo-broken-json.json"
	response := r.Update(t.Context())
	require.False(t, response.Success)

	record, err := r.FindByRequestURL(t.Context(), "default", "/blog")
	require.NoError(t, err)
	require.NotNil(t, record, "previous content restored from history")
	assert.Equal(t, "Blog", record.Title)
}

func TestSiteHygiene(t *testing.T) {
	r := getTestRepo(t, "/repo-two-sites.json")
	assert.ElementsMatch(t, []string{"default", "de"}, r.Sites())

	r.url = r.url[:len(r.url)-len("/repo-two-sites.json")] + "/repo-ok.json"
	response := r.Update(t.Context())
	require.True(t, response.Success, "it is called repo ok")
	assert.Len(t, r.Directory(), 1, "site hygiene failed")

	record, err := r.FindByRequestURL(t.Context(), "de", "/laden")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestFindByRequestURL(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")
	ctx := t.Context()

	for url, id := range map[string]string{
		"/":                   "a0000000-0000-4000-8000-000000000001",
		"":                    "a0000000-0000-4000-8000-000000000001",
		"/blog/":              "a0000000-0000-4000-8000-000000000002",
		"/blog/hello-world":   "a0000000-0000-4000-8000-000000000003",
		"/blog?page=2":        "a0000000-0000-4000-8000-000000000002",
		"/news/launch":        "a0000000-0000-4000-8000-000000000011",
		"blog/hello-world#me": "a0000000-0000-4000-8000-000000000003",
	} {
		record, err := r.FindByRequestURL(ctx, "default", url)
		require.NoError(t, err, url)
		require.NotNil(t, record, url)
		assert.Equal(t, id, record.ID, url)
	}

	record, err := r.FindByRequestURL(ctx, "default", "/nope")
	require.NoError(t, err)
	assert.Nil(t, record)

	record, err = r.FindByRequestURL(ctx, "unknown", "/")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestFindRecords(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")
	ctx := t.Context()

	author, err := r.Find(ctx, "default", "a0000000-0000-4000-8000-000000000010")
	require.NoError(t, err)
	require.NotNil(t, author)
	assert.Equal(t, content.KindEntry, author.Kind)
	assert.Equal(t, "jane-doe", author.Slug, "slug derived from the title")

	hello, err := r.Find(ctx, "default", "a0000000-0000-4000-8000-000000000003")
	require.NoError(t, err)
	require.NotNil(t, hello)
	assert.Equal(t, content.KindPage, hello.Kind)
	require.NotNil(t, hello.Parent())
	assert.Equal(t, "Blog", hello.Parent().Title)

	authors, ok := hello.ToAugmentedArray()["author"].(*content.Collection)
	require.True(t, ok)
	require.Equal(t, 1, authors.Len())
	assert.Same(t, author, authors.All()[0])

	missing, err := r.Find(ctx, "default", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindStructureByHandle(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	structure, err := r.FindStructureByHandle(t.Context(), "default", "home")
	require.NoError(t, err)
	require.NotNil(t, structure)
	assert.Equal(t, "home", structure.Handle)

	pages := structure.Tree("default").All()
	require.Len(t, pages, 2)
	require.NotNil(t, pages[0].Record())
	assert.Equal(t, "/blog", pages[0].Record().URI)
	assert.Nil(t, pages[1].Record())

	structure, err = r.FindStructureByHandle(t.Context(), "default", "footer")
	require.NoError(t, err)
	assert.Nil(t, structure)
}

func TestWriteRepoBytes(t *testing.T) {
	r := getTestRepo(t, "/repo-two-sites.json")
	var buf bytes.Buffer
	require.NoError(t, r.WriteRepoBytes(t.Context(), &buf))

	var reply struct {
		Reply map[string]*content.Site `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reply))
	assert.Len(t, reply.Reply, 2)
}

func TestWriteRepoBytesRace(t *testing.T) {
	r := getTestRepo(t, "/repo-ok.json")

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				var buf bytes.Buffer
				_ = r.WriteRepoBytes(ctx, &buf)
			}
		}()
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				r.SetJSONBuffer(bytes.NewBufferString(`{"test":"data"}`))
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeURI(t *testing.T) {
	for in, want := range map[string]string{
		"":              "/",
		"/":             "/",
		"/blog/":        "/blog",
		"blog":          "/blog",
		"/blog?page=2":  "/blog",
		"/blog/#anchor": "/blog",
	} {
		assert.Equal(t, want, NormalizeURI(in), in)
	}
}

func BenchmarkLoadRepo(b *testing.B) {
	var (
		mockServer, varDir = mock.GetMockData(b)
		r                  = NewTestRepo(b.Context(), zaptest.NewLogger(b), mockServer.URL+"/repo-ok.json", varDir)
	)

	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if response := r.Update(b.Context()); !response.Success {
			b.Fatal("could not load valid repo")
		}
	}
}
