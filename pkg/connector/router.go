package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// Router is C7: the top-level connector. It dispatches by URI scheme to a
// configured sub-connector, optionally wrapping every sub-connector with a
// timeout (C8).
type Router struct {
	schemes map[string]Connector // nil entry means explicitly disabled
	timeout time.Duration
}

// NewRouter builds an empty router; register schemes with Register.
func NewRouter() *Router {
	return &Router{schemes: make(map[string]Connector)}
}

// Register wires a sub-connector for scheme. Passing a nil connector
// explicitly disables the scheme (distinct from never registering it,
// though both produce the same EINVAL today).
func (r *Router) Register(scheme string, c Connector) *Router {
	r.schemes[scheme] = c
	return r
}

// WithTimeout sets the C8 deadline applied to every dispatched connect.
// Zero disables the wrapper.
func (r *Router) WithTimeout(d time.Duration) *Router {
	r.timeout = d
	return r
}

func (r *Router) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	parts, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}

	scheme := parts.Scheme
	if scheme == "" {
		scheme = uri.DefaultScheme
	}

	sub, ok := r.schemes[scheme]
	if !ok || sub == nil {
		return nil, dialerr.InvalidArgument(fmt.Sprintf("No connector available for URI scheme %q (EINVAL)", scheme))
	}

	wrapped := NewTimeoutConnector(sub, r.timeout)
	return wrapped.Connect(ctx, rawURI)
}
