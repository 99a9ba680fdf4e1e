// Package connector implements the composition pipeline above the Happy
// Eyeballs dialer: C5 (DNS-dispatching connector), C6 (secure connector),
// C7 (scheme router), and C8 (timeout wrapper). Each layer is a Connector;
// C7 composes the others per a scheme → Connector map.
package connector

import (
	"context"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
)

// Connector is the contract every layer of the pipeline satisfies (§6
// "Connector contract"): connect a URI to a live Connection or fail with an
// *dialerr.Error.
type Connector interface {
	Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error)
}

// Func adapts a plain function to the Connector interface.
type Func func(ctx context.Context, rawURI string) (*endpoint.Conn, error)

func (f Func) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	return f(ctx, rawURI)
}
