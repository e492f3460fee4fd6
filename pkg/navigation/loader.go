package navigation

import (
	"context"

	"github.com/foomo/inertiacms/content"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// Handle of the structure the navigation is built from
	Handle = "home"
	// TreeName of the tree variant the navigation is built from
	TreeName = "default"
)

type (
	StructureFinder interface {
		FindStructureByHandle(ctx context.Context, handle string) (*content.Structure, error)
	}
	StructureFinderFunc func(ctx context.Context, handle string) (*content.Structure, error)

	// Loader builds the navigation props
	Loader struct {
		l      *zap.Logger
		finder StructureFinder
	}
)

func (fn StructureFinderFunc) FindStructureByHandle(ctx context.Context, handle string) (*content.Structure, error) {
	return fn(ctx, handle)
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, finder StructureFinder) *Loader {
	return &Loader{
		l:      l.Named("navigation"),
		finder: finder,
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Load returns the plain pages of the default tree of the home structure.
// Navigation is optional: without the structure or its tree the result is
// an empty list.
func (l *Loader) Load(ctx context.Context) ([]interface{}, error) {
	structure, err := l.finder.FindStructureByHandle(ctx, Handle)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find navigation structure")
	}
	if structure == nil {
		l.l.Debug("no navigation structure", zap.String("handle", Handle))
		return []interface{}{}, nil
	}
	tree := structure.Tree(TreeName)
	if tree == nil {
		l.l.Warn("navigation structure without tree",
			zap.String("handle", Handle),
			zap.String("tree", TreeName),
		)
		return []interface{}{}, nil
	}
	return tree.ToArray(), nil
}
