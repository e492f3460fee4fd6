package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/foomo/inertiacms/pkg/metrics"
	"github.com/foomo/inertiacms/pkg/repo"
	"github.com/foomo/inertiacms/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const sourceWebserver = "webserver"

type (
	// HTTP admin api of the repo
	HTTP struct {
		l      *zap.Logger
		path   string
		repo   *repo.Repo
		router chi.Router
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns the admin api, routes are served below the base path
func NewHTTP(l *zap.Logger, repo *repo.Repo, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:    l.Named("http"),
		path: "/inertiacms",
		repo: repo,
	}

	for _, opt := range opts {
		opt(inst)
	}

	inst.router = chi.NewRouter()
	inst.router.Route(strings.TrimRight(inst.path, "/"), func(r chi.Router) {
		r.Post("/"+string(RouteUpdate), inst.handle(RouteUpdate, inst.update))
		r.Post("/"+string(RouteGetRepo), inst.handle(RouteGetRepo, inst.getRepo))
		r.Get("/"+string(RouteGetHistory), inst.handle(RouteGetHistory, inst.getHistory))
	})
	inst.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputils.ServerError(inst.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath(v string) HTTPOption {
	return func(o *HTTP) {
		o.path = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) handle(route Route, fn func(ctx context.Context, w *bytes.Buffer) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var buf bytes.Buffer
		err := fn(r.Context(), &buf)

		result := "success"
		if err != nil {
			result = "error"
		}
		metrics.ServiceRequestCounter.WithLabelValues(string(route), result, sourceWebserver).Inc()
		metrics.ServiceRequestDuration.WithLabelValues(string(route), result, sourceWebserver).Observe(time.Since(start).Seconds())

		if err != nil {
			httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = buf.WriteTo(w)
	}
}

func (h *HTTP) update(ctx context.Context, w *bytes.Buffer) error {
	return h.encodeReply(w, h.repo.Update(ctx))
}

func (h *HTTP) getRepo(ctx context.Context, w *bytes.Buffer) error {
	return h.repo.WriteRepoBytes(ctx, w)
}

func (h *HTTP) getHistory(ctx context.Context, w *bytes.Buffer) error {
	versions, err := h.repo.History().Versions(ctx)
	if err != nil {
		h.l.Error("could not list history", zap.Error(err))
		return h.encodeReply(w, responses.NewErrorf(http.StatusInternalServerError, 3, "could not list history: %s", err))
	}
	return h.encodeReply(w, versions)
}

// encodeReply wraps the reply, e.g: {"reply": <reply>}
func (h *HTTP) encodeReply(w *bytes.Buffer, reply interface{}) error {
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"reply": reply,
	}); err != nil {
		h.l.Error("could not encode reply", zap.Error(err))
		return errors.Wrap(err, "could not encode reply")
	}
	return nil
}
