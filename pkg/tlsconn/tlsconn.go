// Package tlsconn implements C3: upgrading an established transport
// connection to TLS, client- or server-side, with a cancellable handshake.
package tlsconn

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/muesli/cancelreader"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
	"github.com/eyeballnet/eyeball/pkg/endpoint"
)

// Role selects which side of the handshake to perform.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// Enable upgrades conn from plaintext to encrypted. On success conn's
// endpoint metadata is preserved, IsEncrypted becomes true, and the
// returned Conn reports the tls:// scheme. On any failure conn is closed;
// on success it is not (ownership of the live stream transfers to the
// returned Conn, which now wraps the original).
//
// uriForMsg is the outer URI used to render error messages ("Connection to
// <uri> failed during TLS handshake: ...").
func Enable(ctx context.Context, conn *endpoint.Conn, role Role, cfg *tls.Config, uriForMsg string) (*endpoint.Conn, error) {
	cr, err := cancelreader.NewReader(conn)
	if err != nil {
		conn.Close()
		return nil, dialerr.Wrap(dialerr.ClassifySyscallError(err),
			fmt.Sprintf("Connection to %s failed during TLS handshake: %s", uriForMsg, err), err)
	}

	cancellable := &cancellableConn{Conn: conn, r: cr}

	var tlsConn *tls.Conn
	if role == RoleServer {
		tlsConn = tls.Server(cancellable, cfg)
	} else {
		serverCfg := cfg
		if serverCfg == nil {
			serverCfg = &tls.Config{}
		}
		if serverCfg.ServerName == "" && conn.Hostname() != "" {
			clone := serverCfg.Clone()
			clone.ServerName = conn.Hostname()
			serverCfg = clone
		}
		tlsConn = tls.Client(cancellable, serverCfg)
	}

	done := make(chan error, 1)
	go func() {
		done <- tlsConn.HandshakeContext(ctx)
	}()

	select {
	case <-ctx.Done():
		cr.Cancel()
		<-done // best-effort: let the handshake goroutine unwind before we close
		conn.Close()
		return nil, dialerr.ConnectionCancelled(uriForMsg, "TLS handshake")

	case err := <-done:
		if err != nil {
			conn.Close()
			code := dialerr.ClassifySyscallError(err)
			return nil, dialerr.Wrap(code,
				fmt.Sprintf("Connection to %s failed during TLS handshake: %s", uriForMsg, err), err)
		}
	}

	return conn.Rewrap(tlsConn), nil
}

// cancellableConn routes Read through a cancelreader.CancelReader so a
// blocking handshake read can be aborted by Cancel() without closing the
// underlying socket out from under a concurrent Write.
type cancellableConn struct {
	net.Conn
	r cancelreader.CancelReader
}

func (c *cancellableConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
