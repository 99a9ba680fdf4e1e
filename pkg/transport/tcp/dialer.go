// Package tcp implements the C2 transport dialer for TCP.
package tcp

import (
	"context"
	"fmt"
	"net"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
	"github.com/eyeballnet/eyeball/pkg/uri"
)

// Dialer implements C2 for "tcp://<ip-or-bracketed-v6>:<port>[?hostname=<name>]"
// destinations. It never resolves hostnames itself: Host must already be a
// literal IP, per the Transport-dial contract (§6).
type Dialer struct{}

// NewDialer constructs a C2 TCP dialer. It takes no arguments because, unlike
// the teacher's fixed-address dialer, this one dials whatever endpoint URI
// it's handed — it's reused across every candidate address a DialAttempt
// produces.
func NewDialer() *Dialer {
	return &Dialer{}
}

// Dial opens a TCP connection to the literal IP named by rawURI. Cancelling
// ctx before the connection completes aborts the in-progress syscall and
// surfaces ECONNABORTED.
func (d *Dialer) Dial(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	p, err := uri.Parse(rawURI)
	if err != nil {
		return nil, err
	}
	if !p.IsLiteralIP() {
		return nil, dialerr.InvalidArgument(fmt.Sprintf("tcp dialer requires a literal IP, got %q", p.Host))
	}
	if !p.HasPort() {
		return nil, dialerr.InvalidArgument(fmt.Sprintf("tcp dialer requires a port: %q", rawURI))
	}

	nd := &net.Dialer{}
	addr := net.JoinHostPort(p.Host, fmt.Sprint(p.Port))

	raw, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dialerr.ConnectionCancelled(rawURI, "")
		}
		return nil, dialerr.ConnectionFailed(rawURI, err)
	}

	remote := endpoint.TCPEndpoint(p.Host, p.Port)
	local := localEndpointOf(raw)

	return endpoint.New(raw, remote, local, false, p.Hostname()), nil
}

func localEndpointOf(conn net.Conn) endpoint.Endpoint {
	if tcpAddr, ok := conn.LocalAddr().(*net.TCPAddr); ok {
		return endpoint.TCPEndpoint(tcpAddr.IP.String(), tcpAddr.Port)
	}
	return endpoint.Endpoint{IP: "unknown"}
}
