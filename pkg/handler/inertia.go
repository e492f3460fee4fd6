package handler

import (
	"context"
	"net/http"
	"time"

	"dario.cat/mergo"
	"github.com/foomo/inertiacms/content"
	"github.com/foomo/inertiacms/pkg/component"
	"github.com/foomo/inertiacms/pkg/metrics"
	"github.com/foomo/inertiacms/pkg/navigation"
	"github.com/foomo/inertiacms/pkg/props"
	"github.com/foomo/inertiacms/pkg/render"
	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultSite     = "default"
	DefaultTemplate = "app"
	// NavigationProp key of the navigation in the props
	NavigationProp = "navigation"

	resultRendered    = "rendered"
	resultPassthrough = "passthrough"
	resultError       = "error"
)

type (
	// Store looks up the content of a site
	Store interface {
		FindByRequestURL(ctx context.Context, site, url string) (*content.Record, error)
		Find(ctx context.Context, site, id string) (*content.Record, error)
		FindStructureByHandle(ctx context.Context, site, handle string) (*content.Structure, error)
	}
	// Inertia hands requests for records with the app template to the frontend
	Inertia struct {
		l           *zap.Logger
		store       Store
		renderer    render.Renderer
		site        string
		template    string
		sharedProps map[string]interface{}
		normalizer  *props.Normalizer
		navigation  *navigation.Loader
	}
	InertiaOption func(*Inertia)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewInertia returns a middleware rendering app records and passing everything else on
func NewInertia(l *zap.Logger, store Store, renderer render.Renderer, opts ...InertiaOption) func(next http.Handler) http.Handler {
	inst := &Inertia{
		l:        l.Named("inertia"),
		store:    store,
		renderer: renderer,
		site:     DefaultSite,
		template: DefaultTemplate,
	}

	for _, opt := range opts {
		opt(inst)
	}

	inst.normalizer = props.New(props.FinderFunc(inst.find), props.WithLogger(inst.l))
	inst.navigation = navigation.New(inst.l, navigation.StructureFinderFunc(inst.findStructure))

	return inst.Middleware
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithSite(v string) InertiaOption {
	return func(o *Inertia) {
		o.site = v
	}
}

func WithTemplate(v string) InertiaOption {
	return func(o *Inertia) {
		o.template = v
	}
}

// WithSharedProps sets props every page gets, record props win
func WithSharedProps(v map[string]interface{}) InertiaOption {
	return func(o *Inertia) {
		o.sharedProps = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (i *Inertia) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := i.l.With(zap.String("site", i.site), zap.String("path", r.URL.Path))

		record, err := i.store.FindByRequestURL(r.Context(), i.site, r.URL.Path)
		if err != nil {
			i.observe(resultError, start)
			httputils.ServerError(l, w, r, http.StatusInternalServerError, errors.Wrap(err, "failed to find record"))
			return
		}

		if !i.renders(record) {
			l.Debug("passing request on")
			metrics.ContentRequestCounter.WithLabelValues(resultPassthrough).Inc()
			next.ServeHTTP(w, r)
			return
		}

		componentPath, pageProps, err := i.props(r.Context(), record)
		if err != nil {
			i.observe(resultError, start)
			httputils.ServerError(l, w, r, http.StatusInternalServerError, err)
			return
		}

		if err := i.renderer.Render(w, r, componentPath, pageProps); err != nil {
			i.observe(resultError, start)
			httputils.ServerError(l, w, r, http.StatusInternalServerError, errors.Wrap(err, "failed to render"))
			return
		}

		l.Info("rendered",
			zap.String("id", record.ID),
			zap.String("component", componentPath),
		)
		i.observe(resultRendered, start)
	})
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (i *Inertia) renders(record *content.Record) bool {
	return record != nil &&
		(record.IsPage() || record.IsEntry()) &&
		record.Template == i.template
}

// props returns the component path and the props: navigation over record
// props, shared props fill what the record leaves empty
func (i *Inertia) props(ctx context.Context, record *content.Record) (string, map[string]interface{}, error) {
	componentPath := component.Path(record)

	pageProps, err := i.normalizer.NormalizeRecord(ctx, record)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to normalize props")
	}

	nav, err := i.navigation.Load(ctx)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to load navigation")
	}

	if len(i.sharedProps) > 0 {
		if err := mergo.Merge(&pageProps, i.sharedProps); err != nil {
			return "", nil, errors.Wrap(err, "failed to merge shared props")
		}
	}
	pageProps[NavigationProp] = nav

	return componentPath, pageProps, nil
}

func (i *Inertia) find(ctx context.Context, id string) (interface{}, error) {
	record, err := i.store.Find(ctx, i.site, id)
	if err != nil || record == nil {
		return nil, err
	}
	return record, nil
}

func (i *Inertia) findStructure(ctx context.Context, handle string) (*content.Structure, error) {
	return i.store.FindStructureByHandle(ctx, i.site, handle)
}

func (i *Inertia) observe(result string, start time.Time) {
	metrics.ContentRequestCounter.WithLabelValues(result).Inc()
	metrics.RenderDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
