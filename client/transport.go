package client

import (
	"context"

	"github.com/foomo/inertiacms/pkg/handler"
)

type transport interface {
	call(ctx context.Context, route handler.Route, response interface{}) error
	shutdown()
}
