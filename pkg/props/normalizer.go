package props

import (
	"context"

	"github.com/foomo/inertiacms/content"
	"github.com/foomo/inertiacms/pkg/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultMaxDepth = 1000
	// IDKey names the map it is part of, its value is never resolved
	IDKey = "id"
)

// ErrMaxDepth is returned for trees nested deeper than the configured limit
var ErrMaxDepth = errors.New("max normalization depth reached")

type (
	// Finder resolves a record id. Nothing found is reported as a nil value
	// without an error.
	Finder interface {
		Find(ctx context.Context, id string) (interface{}, error)
	}
	// FinderFunc adapter
	FinderFunc func(ctx context.Context, id string) (interface{}, error)

	// Normalizer converts augmented content into plain props
	Normalizer struct {
		l        *zap.Logger
		finder   Finder
		maxDepth int
	}
	Option func(*Normalizer)

	// path ids of the records being normalized from the root down
	path map[string]struct{}
)

func (fn FinderFunc) Find(ctx context.Context, id string) (interface{}, error) {
	return fn(ctx, id)
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// New returns a normalizer resolving uuid references with the given finder.
// Without a finder uuid strings are kept as they are.
func New(finder Finder, opts ...Option) *Normalizer {
	inst := &Normalizer{
		l:        zap.NewNop(),
		finder:   finder,
		maxDepth: defaultMaxDepth,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithLogger(v *zap.Logger) Option {
	return func(o *Normalizer) {
		o.l = v.Named("props")
	}
}

func WithMaxDepth(v int) Option {
	return func(o *Normalizer) {
		o.maxDepth = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// NormalizeRecord normalizes the augmented representation of a record
func (n *Normalizer) NormalizeRecord(ctx context.Context, record content.Augmentable) (map[string]interface{}, error) {
	p := path{}
	if id := recordID(record); id != "" {
		p[id] = struct{}{}
	}
	v, err := n.normalize(ctx, record.ToAugmentedArray(), 0, p)
	if err != nil {
		return nil, err
	}
	props, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("unexpected props type %T", v)
	}
	return props, nil
}

// Normalize returns a structurally equivalent tree without content specific types.
// A record relating back to a record it is nested in becomes nil, so does
// a dangling reference. Normalizing the result again yields an equal tree.
func (n *Normalizer) Normalize(ctx context.Context, v interface{}) (interface{}, error) {
	return n.normalize(ctx, v, 0, path{})
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (n *Normalizer) normalize(ctx context.Context, v interface{}, depth int, p path) (interface{}, error) {
	if depth > n.maxDepth {
		return nil, ErrMaxDepth
	}

	shape := Classify(v)
	switch shape.Kind {
	case KindDate:
		return shape.Payload, nil
	case KindSerializable:
		return n.normalize(ctx, shape.Payload.(content.JSONSerializer).JSONSerialize(), depth+1, p)
	case KindCollection:
		return n.normalize(ctx, shape.Payload.(content.Lister).All(), depth+1, p)
	case KindGenericArray:
		return n.normalizeArray(ctx, shape.Payload, depth, p)
	case KindFieldValue:
		// field values are leaves, their raw value is not normalized any further
		return shape.Payload.(content.FieldValue).Raw(), nil
	case KindAugmentable:
		return n.normalizeAugmentable(ctx, shape.Payload.(content.Augmentable), depth, p)
	case KindString:
		return n.normalizeString(ctx, shape.Payload.(string), depth, p)
	case KindScalar:
		return shape.Payload, nil
	default:
		return nil, errors.Errorf("unhandled shape %q", shape.Kind)
	}
}

func (n *Normalizer) normalizeArray(ctx context.Context, v interface{}, depth int, p path) (interface{}, error) {
	switch t := v.(type) {
	case []interface{}:
		ret := make([]interface{}, len(t))
		for i, value := range t {
			normalized, err := n.normalize(ctx, value, depth+1, p)
			if err != nil {
				return nil, err
			}
			ret[i] = normalized
		}
		return ret, nil
	case map[string]interface{}:
		ret := make(map[string]interface{}, len(t))
		for key, value := range t {
			if id, ok := value.(string); ok && key == IDKey {
				ret[key] = id
				continue
			}
			normalized, err := n.normalize(ctx, value, depth+1, p)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to normalize %q", key)
			}
			ret[key] = normalized
		}
		return ret, nil
	default:
		return nil, errors.Errorf("unexpected array type %T", v)
	}
}

// normalizeAugmentable normalizes a record unless it is already on the path
func (n *Normalizer) normalizeAugmentable(ctx context.Context, v content.Augmentable, depth int, p path) (interface{}, error) {
	if id := recordID(v); id != "" {
		if _, ok := p[id]; ok {
			n.l.Debug("circular reference", zap.String("id", id))
			metrics.ReferenceLookupCounter.WithLabelValues("circular").Inc()
			return nil, nil
		}
		p[id] = struct{}{}
		defer delete(p, id)
	}
	return n.normalize(ctx, v.ToAugmentedArray(), depth+1, p)
}

// normalizeString replaces uuid references with the normalized record they
// point at. A reference that can not be resolved becomes nil.
func (n *Normalizer) normalizeString(ctx context.Context, v string, depth int, p path) (interface{}, error) {
	if n.finder == nil || !IsUUID(v) {
		return v, nil
	}
	found, err := n.finder.Find(ctx, v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find reference %q", v)
	}
	if isNil(found) {
		n.l.Debug("dangling reference", zap.String("id", v))
		metrics.ReferenceLookupCounter.WithLabelValues("missing").Inc()
		return nil, nil
	}
	metrics.ReferenceLookupCounter.WithLabelValues("found").Inc()
	return n.normalize(ctx, found, depth+1, p)
}

func recordID(v content.Augmentable) string {
	if record, ok := v.(*content.Record); ok && record != nil {
		return record.ID
	}
	return ""
}
