// Package transport defines the C2 transport-dial contract shared by the
// tcp and unix sub-packages, and the Handler type used by pkg/listener on
// the accept side.
//
// Dialer implementations:
//   - Accept a context (for cancellation) and a rendered endpoint URI, e.g.
//     "tcp://<ip-or-bracketed-v6>:<port>[?hostname=<name>]" or
//     "unix://<path>".
//   - Return an *endpoint.Conn or a *dialerr.Error.
//   - Never resolve hostnames themselves — that's C4/C5's job. A hostname=
//     query parameter, if present, is carried through for TLS SNI/
//     verification but must not affect the transport destination.
//
// Timeout handling: dialers set no deadlines of their own; callers cancel
// ctx to bound a dial attempt, and the dialer aborts the in-progress
// syscall and returns ECONNABORTED.
package transport

import (
	"context"
	"net"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
)

// Dialer is the C2 contract: open a single connection to the endpoint named
// by rawURI.
type Dialer interface {
	Dial(ctx context.Context, rawURI string) (*endpoint.Conn, error)
}

// Handler processes an accepted connection. It should handle the
// connection and return when done; the connection is closed after the
// handler returns.
type Handler func(net.Conn) error
