package render

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	HeaderInertia          = "X-Inertia"
	HeaderVersion          = "X-Inertia-Version"
	HeaderLocation         = "X-Inertia-Location"
	HeaderPartialComponent = "X-Inertia-Partial-Component"
	HeaderPartialData      = "X-Inertia-Partial-Data"
)

// DefaultRootTemplate renders the page object into the element the client side app mounts on
var DefaultRootTemplate = template.Must(template.New("root").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
	<div id="app" data-page="{{ .PageJSON }}"></div>
</body>
</html>
`))

type (
	// Renderer hands a component and its props to the frontend
	Renderer interface {
		Render(w http.ResponseWriter, r *http.Request, component string, props map[string]interface{}) error
	}
	// Page object of the inertia protocol
	Page struct {
		Component string                 `json:"component"`
		Props     map[string]interface{} `json:"props"`
		URL       string                 `json:"url"`
		Version   string                 `json:"version"`
	}
	// RootData is passed to the root template
	RootData struct {
		Page     *Page
		PageJSON string
	}
	Inertia struct {
		l            *zap.Logger
		version      string
		rootTemplate *template.Template
	}
	Option func(*Inertia)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, opts ...Option) *Inertia {
	inst := &Inertia{
		l:            l.Named("render"),
		rootTemplate: DefaultRootTemplate,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithVersion sets the asset version, clients with another version reload the page
func WithVersion(v string) Option {
	return func(o *Inertia) {
		o.version = v
	}
}

func WithRootTemplate(v *template.Template) Option {
	return func(o *Inertia) {
		o.rootTemplate = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// IsInertiaRequest requests made by the client side app
func IsInertiaRequest(r *http.Request) bool {
	return r.Header.Get(HeaderInertia) == "true"
}

func (i *Inertia) Render(w http.ResponseWriter, r *http.Request, component string, props map[string]interface{}) error {
	page := &Page{
		Component: component,
		Props:     props,
		URL:       r.URL.RequestURI(),
		Version:   i.version,
	}

	w.Header().Add("Vary", HeaderInertia)

	if !IsInertiaRequest(r) {
		return i.renderHTML(w, page)
	}

	if r.Method == http.MethodGet && r.Header.Get(HeaderVersion) != i.version {
		i.l.Debug("asset version changed",
			zap.String("client", r.Header.Get(HeaderVersion)),
			zap.String("server", i.version),
		)
		w.Header().Set(HeaderLocation, r.URL.RequestURI())
		w.WriteHeader(http.StatusConflict)
		return nil
	}

	if r.Header.Get(HeaderPartialComponent) == component {
		page.Props = only(page.Props, r.Header.Get(HeaderPartialData))
	}

	return i.renderJSON(w, page)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (i *Inertia) renderJSON(w http.ResponseWriter, page *Page) error {
	bytes, err := json.Marshal(page)
	if err != nil {
		return errors.Wrap(err, "failed to encode page")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderInertia, "true")
	_, err = w.Write(bytes)
	return err
}

func (i *Inertia) renderHTML(w http.ResponseWriter, page *Page) error {
	pageJSON, err := json.Marshal(page)
	if err != nil {
		return errors.Wrap(err, "failed to encode page")
	}
	var buf bytes.Buffer
	if err := i.rootTemplate.Execute(&buf, &RootData{Page: page, PageJSON: string(pageJSON)}); err != nil {
		return errors.Wrap(err, "failed to execute root template")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

// only keeps the props listed in a comma separated partial data header
func only(props map[string]interface{}, keys string) map[string]interface{} {
	if keys == "" {
		return props
	}
	ret := map[string]interface{}{}
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if v, ok := props[key]; ok {
			ret[key] = v
		}
	}
	return ret
}
