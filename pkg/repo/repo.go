package repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foomo/inertiacms/content"
	"github.com/foomo/inertiacms/pkg/metrics"
	"github.com/foomo/inertiacms/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotLoaded is returned by lookups before any content has been loaded
var ErrNotLoaded = errors.New("repo not loaded yet")

// Repo content repository
type (
	Repo struct {
		l                       *zap.Logger
		url                     string
		poll                    bool
		pollInterval            time.Duration
		pollVersion             string
		onLoaded                func()
		loaded                  *atomic.Bool
		history                 *History
		httpClient              *http.Client
		siteUpdateChannel       chan *siteUpdate
		siteUpdateDoneChannel   chan error
		updateInProgressChannel chan chan updateResponse
		directory               map[string]*Directory
		directoryLock           sync.RWMutex
		jsonBuffer              *bytes.Buffer
		jsonBufferLock          sync.RWMutex
	}
	Option func(*Repo)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, url string, history *History, opts ...Option) *Repo {
	inst := &Repo{
		l:                       l.Named("repo"),
		url:                     url,
		poll:                    false,
		loaded:                  &atomic.Bool{},
		pollInterval:            time.Minute,
		history:                 history,
		httpClient:              http.DefaultClient,
		directory:               map[string]*Directory{},
		siteUpdateChannel:       make(chan *siteUpdate),
		siteUpdateDoneChannel:   make(chan error),
		updateInProgressChannel: make(chan chan updateResponse),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Repo) {
		o.httpClient = v
	}
}

func WithPoll(v bool) Option {
	return func(o *Repo) {
		o.poll = v
	}
}

func WithPollInterval(v time.Duration) Option {
	return func(o *Repo) {
		o.pollInterval = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (r *Repo) Loaded() bool {
	return r.loaded.Load()
}

func (r *Repo) Directory() map[string]*Directory {
	r.directoryLock.RLock()
	defer r.directoryLock.RUnlock()
	return r.directory
}

func (r *Repo) SetDirectory(v map[string]*Directory) {
	r.directoryLock.Lock()
	defer r.directoryLock.Unlock()
	r.directory = v
}

func (r *Repo) JSONBufferBytes() []byte {
	r.jsonBufferLock.RLock()
	defer r.jsonBufferLock.RUnlock()
	if r.jsonBuffer == nil {
		return nil
	}
	return r.jsonBuffer.Bytes()
}

func (r *Repo) SetJSONBuffer(v *bytes.Buffer) {
	r.jsonBufferLock.Lock()
	defer r.jsonBufferLock.Unlock()
	r.jsonBuffer = v
}

func (r *Repo) History() *History {
	return r.history
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) OnLoaded(fn func()) {
	r.onLoaded = fn
}

// FindByRequestURL resolves the record of a site by its uri. Unknown sites
// and uris resolve to nil.
func (r *Repo) FindByRequestURL(ctx context.Context, site, url string) (*content.Record, error) {
	d, err := r.site(site)
	if d == nil || err != nil {
		return nil, err
	}
	uri := NormalizeURI(url)
	record, ok := d.URIs[uri]
	if !ok {
		r.l.Debug("record not found", zap.String("site", site), zap.String("uri", uri))
		return nil, nil
	}
	return record, nil
}

// Find looks up any record of a site by its id
func (r *Repo) Find(ctx context.Context, site, id string) (*content.Record, error) {
	d, err := r.site(site)
	if d == nil || err != nil {
		return nil, err
	}
	return d.Records[id], nil
}

// FindStructureByHandle looks up a navigation structure of a site
func (r *Repo) FindStructureByHandle(ctx context.Context, site, handle string) (*content.Structure, error) {
	d, err := r.site(site)
	if d == nil || err != nil {
		return nil, err
	}
	return d.Structures[handle], nil
}

// Sites returns the names of all loaded sites
func (r *Repo) Sites() []string {
	directory := r.Directory()
	ret := make([]string, 0, len(directory))
	for site := range directory {
		ret = append(ret, site)
	}
	return ret
}

// WriteRepoBytes writes the whole repo in all sites to the provided writer.
// It serves from the in-memory buffer, falling back to storage only when empty.
// The result is wrapped as service response, e.g: {"reply": <contentData>}
func (r *Repo) WriteRepoBytes(ctx context.Context, w io.Writer) error {
	data := r.JSONBufferBytes()
	if len(data) == 0 {
		// cold start or not yet loaded
		var buf bytes.Buffer
		if err := r.history.GetCurrent(ctx, &buf); err != nil {
			return errors.Wrap(err, "failed to read repo from storage")
		}
		data = buf.Bytes()
	}

	for _, b := range [][]byte{[]byte(`{"reply":`), data, []byte(`}`)} {
		if _, err := w.Write(b); err != nil {
			return errors.Wrap(err, "failed to write repo JSON")
		}
	}
	return nil
}

// Update loads the repo from its url, restoring the current snapshot from the
// history when the new content can not be loaded.
func (r *Repo) Update(ctx context.Context) *responses.Update {
	floatSeconds := func(nanoSeconds int64) float64 {
		return float64(nanoSeconds) / float64(time.Second)
	}

	r.l.Info("update triggered")

	start := time.Now()
	repoRuntime, err := r.tryUpdate()
	updateResponse := &responses.Update{}
	updateResponse.Stats.RepoRuntime = floatSeconds(repoRuntime)

	if err != nil {
		updateResponse.Success = false
		updateResponse.Stats.NumberOfRecords = -1
		updateResponse.Stats.NumberOfURIs = -1

		// only try to restore if the update failed during processing
		if !errors.Is(err, ErrUpdateRejected) {
			updateResponse.ErrorMessage = err.Error()
			r.l.Error("failed to update repository", zap.Error(err))

			if restoreErr := r.tryToRestoreCurrent(ctx); restoreErr != nil {
				r.l.Error("failed to restore preceding repository version", zap.Error(restoreErr))
			} else {
				r.l.Info("successfully restored current repository from history")
			}
		} else {
			updateResponse.ErrorMessage = err.Error()
		}
	} else {
		updateResponse.Success = true
		if historyErr := r.history.Add(ctx, r.JSONBufferBytes()); historyErr != nil {
			r.l.Error("could not persist current repo in history", zap.Error(historyErr))
			metrics.HistoryPersistFailedCounter.WithLabelValues().Inc()
		} else {
			r.l.Info("successfully persisted current repo to history")
		}
		for _, d := range r.Directory() {
			updateResponse.Stats.NumberOfRecords += len(d.Records)
			updateResponse.Stats.NumberOfURIs += len(d.URIs)
		}
	}
	updateResponse.Stats.OwnRuntime = floatSeconds(time.Since(start).Nanoseconds()) - updateResponse.Stats.RepoRuntime
	return updateResponse
}

func (r *Repo) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := r.l.Named("start")

	up := make(chan bool, 1)
	g.Go(func() error {
		l.Debug("starting update routine")
		up <- true
		return r.UpdateRoutine(gCtx)
	})
	l.Debug("waiting for UpdateRoutine")
	<-up

	g.Go(func() error {
		l.Debug("starting site update routine")
		up <- true
		return r.SiteUpdateRoutine(gCtx)
	})
	l.Debug("waiting for SiteUpdateRoutine")
	<-up

	l.Debug("trying to restore previous repo")
	if err := r.tryToRestoreCurrent(ctx); errors.Is(err, os.ErrNotExist) {
		l.Info("previous repo content file does not exist")
	} else if err != nil {
		l.Warn("could not restore previous repo content", zap.Error(err))
	} else {
		l.Info("restored previous repo")
	}

	if r.poll {
		g.Go(func() error {
			l.Debug("starting poll routine")
			return r.PollRoutine(gCtx)
		})
	}

	if !r.Loaded() {
		l.Debug("trying to update initial state")
		if resp := r.Update(ctx); !resp.Success {
			l.Error("failed to update initial state",
				zap.String("error", resp.ErrorMessage),
				zap.Int("num_records", resp.Stats.NumberOfRecords),
				zap.Int("num_uris", resp.Stats.NumberOfURIs),
				zap.Float64("own_runtime", resp.Stats.OwnRuntime),
				zap.Float64("repo_runtime", resp.Stats.RepoRuntime),
			)
		}
	}

	return g.Wait()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// site returns the directory of a site, content restored from the history
// counts as loaded
func (r *Repo) site(site string) (*Directory, error) {
	directory := r.Directory()
	if !r.Loaded() && len(directory) == 0 {
		return nil, ErrNotLoaded
	}
	d, ok := directory[site]
	if !ok {
		r.l.Debug("unknown site", zap.String("site", site))
		return nil, nil
	}
	return d, nil
}
