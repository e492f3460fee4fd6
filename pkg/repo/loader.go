package repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/foomo/inertiacms/content"
	"github.com/foomo/inertiacms/pkg/metrics"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	json              = jsoniter.ConfigCompatibleWithStandardLibrary
	ErrUpdateRejected = errors.New("update rejected: queue full")
)

type (
	updateResponse struct {
		repoRuntime int64
		err         error
	}
	siteUpdate struct {
		name string
		site *content.Site
	}
)

func (r *Repo) PollRoutine(ctx context.Context) error {
	l := r.l.Named("routine.poll")
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			resChan := make(chan updateResponse)
			select {
			case <-ctx.Done():
				return nil
			case r.updateInProgressChannel <- resChan:
			}
			if res := <-resChan; res.err != nil {
				l.Error("update failed", zap.Error(res.err))
			} else {
				l.Info("update success", zap.String("revision", r.pollVersion))
			}
		}
	}
}

func (r *Repo) UpdateRoutine(ctx context.Context) error {
	l := r.l.Named("routine.update")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case resChan := <-r.updateInProgressChannel:
			start := time.Now()
			l := l.With(zap.String("run_id", uuid.New().String()))
			l.Info("update started")

			repoRuntime, err := r.update(context.WithoutCancel(ctx))
			if err != nil {
				l.Error("update failed", zap.Error(err))
				metrics.UpdatesFailedCounter.WithLabelValues().Inc()
			} else {
				r.markLoaded(l)
				metrics.UpdatesCompletedCounter.WithLabelValues().Inc()
			}

			resChan <- updateResponse{
				repoRuntime: repoRuntime,
				err:         err,
			}

			metrics.UpdateDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		}
	}
}

// SiteUpdateRoutine serializes directory swaps
func (r *Repo) SiteUpdateRoutine(ctx context.Context) error {
	l := r.l.Named("routine.siteUpdate")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case u := <-r.siteUpdateChannel:
			l.Debug("received site", zap.String("site", u.name))
			err := r._updateSite(u.name, u.site)
			if err != nil {
				l.Debug("update failed", zap.String("site", u.name), zap.Error(err))
			}
			r.siteUpdateDoneChannel <- err
		}
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) markLoaded(l *zap.Logger) {
	if r.Loaded() {
		l.Info("update success")
		return
	}
	r.loaded.Store(true)
	l.Info("initial update success")
	if r.onLoaded != nil {
		r.onLoaded()
	}
}

func (r *Repo) updateSite(name string, site *content.Site) error {
	r.l.Debug("pushing site into update channel", zap.String("site", name))
	r.siteUpdateChannel <- &siteUpdate{name: name, site: site}
	return <-r.siteUpdateDoneChannel
}

// do not call directly, but only through channel
func (r *Repo) _updateSite(name string, site *content.Site) error {
	if site == nil {
		return errors.Errorf("update site %q failed: empty site", name)
	}
	d, err := newDirectory(site)
	if err != nil {
		return errors.Wrapf(err, "update site %q failed when building its directory", name)
	}

	// copy to keep readers of the old directory safe
	directory := map[string]*Directory{}
	for k, v := range r.Directory() {
		if k != name {
			directory[k] = v
		}
	}
	directory[name] = d
	r.SetDirectory(directory)

	metrics.RecordsGauge.WithLabelValues(name).Set(float64(len(d.Records)))
	return nil
}

func (r *Repo) loadSitesFromJSON() (map[string]*content.Site, error) {
	sites := map[string]*content.Site{}
	if err := json.Unmarshal(r.JSONBufferBytes(), &sites); err != nil {
		r.l.Error("failed to deserialize sites", zap.Error(err))
		return nil, errors.Wrap(err, "failed to deserialize sites")
	}
	return sites, nil
}

func (r *Repo) loadJSONBytes() error {
	sites, err := r.loadSitesFromJSON()
	if err != nil {
		if data := r.JSONBufferBytes(); len(data) > 10 {
			r.l.Debug("could not parse json",
				zap.String("jsonStart", string(data[:10])),
				zap.String("jsonEnd", string(data[len(data)-10:])),
			)
		}
		return err
	}
	return r.loadSites(sites)
}

func (r *Repo) loadSites(sites map[string]*content.Site) error {
	var err error
	for name, site := range sites {
		r.l.Debug("loading site", zap.String("site", name))
		err = multierr.Append(err, r.updateSite(name, site))
	}
	if err != nil {
		return errors.Wrap(err, "failed to update site")
	}

	// throw away orphaned sites
	directory := map[string]*Directory{}
	for name, d := range r.Directory() {
		if _, ok := sites[name]; !ok {
			r.l.Info("removing orphaned site", zap.String("site", name))
			metrics.RecordsGauge.DeleteLabelValues(name)
			continue
		}
		directory[name] = d
	}
	r.SetDirectory(directory)
	return nil
}

func (r *Repo) tryToRestoreCurrent(ctx context.Context) error {
	buffer := &bytes.Buffer{}
	if err := r.history.GetCurrent(ctx, buffer); err != nil {
		return err
	}
	r.SetJSONBuffer(buffer)
	return r.loadJSONBytes()
}

func (r *Repo) get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create get repo request")
	}
	response, err := r.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to get repo")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("bad response code from repository %q want %d", response.Status, http.StatusOK)
	}

	buffer := &bytes.Buffer{}
	if _, err := io.Copy(buffer, response.Body); err != nil {
		return errors.Wrap(err, "failed to copy IO stream")
	}
	r.SetJSONBuffer(buffer)
	return nil
}

// pollURL resolves the current download url, an unchanged url means the content is up to date
func (r *Repo) pollURL(ctx context.Context) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", false, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", false, errors.Wrap(err, "could not poll latest repo download url")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false, errors.Errorf("could not poll latest repo download url: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, errors.Wrap(err, "could not poll latest repo download url, could not read body")
	}
	repoURL := strings.TrimSpace(string(body))
	return repoURL, repoURL == r.pollVersion, nil
}

func (r *Repo) update(ctx context.Context) (repoRuntime int64, err error) {
	start := time.Now()

	repoURL := r.url
	if r.poll {
		var upToDate bool
		repoURL, upToDate, err = r.pollURL(ctx)
		if err != nil {
			return 0, err
		}
		if upToDate {
			r.l.Info("repo is up to date", zap.String("pollVersion", r.pollVersion))
			return 0, nil
		}
		r.l.Info("new repo poll version", zap.String("pollVersion", repoURL))
	}

	err = r.get(ctx, repoURL)
	repoRuntime = time.Since(start).Nanoseconds()
	if err != nil {
		return repoRuntime, err
	}
	r.l.Debug("loading json", zap.String("server", repoURL), zap.Int("length", len(r.JSONBufferBytes())))
	if err := r.loadJSONBytes(); err != nil {
		return repoRuntime, err
	}
	if r.poll {
		r.pollVersion = repoURL
	}
	return repoRuntime, nil
}

// tryUpdate allows only one update at once
func (r *Repo) tryUpdate() (repoRuntime int64, err error) {
	c := make(chan updateResponse)
	select {
	case r.updateInProgressChannel <- c:
		r.l.Debug("update request added to queue")
		ur := <-c
		return ur.repoRuntime, ur.err
	default:
		r.l.Info("update request rejected, another update is in progress")
		return 0, ErrUpdateRejected
	}
}
