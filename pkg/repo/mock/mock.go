package mock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"runtime"
	"testing"
	"time"

	"github.com/foomo/inertiacms/content"
)

// GetMockData serves the json fixtures of this package and returns a var dir for the history
func GetMockData(tb testing.TB) (*httptest.Server, string) {
	tb.Helper()
	_, filename, _, _ := runtime.Caller(0)
	mockDir := path.Dir(filename)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(time.Millisecond * 50)
		http.ServeFile(w, req, path.Join(mockDir, path.Clean(req.URL.Path)))
	}))
	tb.Cleanup(server.Close)

	return server, tb.TempDir()
}

// Store in memory lookups of a single site
type Store struct {
	Records    map[string]*content.Record
	URIs       map[string]*content.Record
	Structures map[string]*content.Structure
	Err        error
}

// NewStore indexes the given records by id and uri and wires their relationships
func NewStore(records ...*content.Record) *Store {
	s := &Store{
		Records:    map[string]*content.Record{},
		URIs:       map[string]*content.Record{},
		Structures: map[string]*content.Structure{},
	}
	resolver := content.ResolverFunc(func(id string) *content.Record {
		return s.Records[id]
	})
	for _, record := range records {
		record.SetResolver(resolver)
		s.Records[record.ID] = record
		if record.URI != "" {
			s.URIs[record.URI] = record
		}
	}
	return s
}

func (s *Store) FindByRequestURL(ctx context.Context, site, url string) (*content.Record, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.URIs[url], nil
}

func (s *Store) Find(ctx context.Context, site, id string) (*content.Record, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records[id], nil
}

func (s *Store) FindStructureByHandle(ctx context.Context, site, handle string) (*content.Structure, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Structures[handle], nil
}
