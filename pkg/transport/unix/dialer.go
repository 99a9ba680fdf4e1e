// Package unix implements the C2 transport dialer for Unix domain sockets.
package unix

import (
	"context"
	"net"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// Dialer implements C2 for "unix://<path>" destinations.
type Dialer struct{}

// NewDialer constructs a C2 Unix domain socket dialer.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Dial opens a connection to the Unix socket path named by rawURI.
// Cancelling ctx before the connection completes surfaces ECONNABORTED.
func (d *Dialer) Dial(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	p, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}

	nd := &net.Dialer{}
	raw, err := nd.DialContext(ctx, "unix", p.Host)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dialerr.ConnectionCancelled(rawURI, "")
		}
		return nil, dialerr.ConnectionFailed(rawURI, err)
	}

	remote := endpoint.UnixEndpoint(p.Host)
	local := endpoint.UnixEndpoint(p.Host)

	return endpoint.New(raw, remote, local, true, ""), nil
}
